package tensor

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"runtime"
	"unsafe"
)

// nativeLittleEndian reports whether Go memory already has the wire layout,
// which allows raw copies and borrowing instead of per-element encoding.
var nativeLittleEndian = binary.NativeEndian.Uint16([]byte{1, 0}) == 1

// NewRaw creates a tensor with a zeroed engine-owned buffer sized for shape.
//
// Example:
//
//	t, _ := tensor.NewRaw(tensor.Float32, tensor.Shape{3, 4})
//	defer t.Release()
func NewRaw(dtype DataType, shape Shape) (*Tensor, error) {
	size, err := byteLength(dtype, shape)
	if err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return allocate(dtype, shape, size), nil
}

// Allocate creates a tensor with a zeroed engine-owned buffer of size bytes.
// For fixed-width dtypes size must equal the element count times the element
// width; string and opaque dtypes accept any non-negative size.
func Allocate(dtype DataType, shape Shape, size int) (*Tensor, error) {
	if err := checkBuffer(dtype, shape, size); err != nil {
		return nil, err
	}
	return allocate(dtype, shape, size), nil
}

func allocate(dtype DataType, shape Shape, size int) *Tensor {
	buf := newOwnedBuffer(size)
	return newTensor(dtype, shape, buf.data, ownedDeallocator{}, buf, Owned)
}

// NewWithDeallocator wraps data, which the caller keeps responsible for.
// When the tensor is released d.Release(data, ctx) is called exactly once.
func NewWithDeallocator(dtype DataType, shape Shape, data []byte, d Deallocator, ctx any) (*Tensor, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: nil deallocator", ErrInvalidArgument)
	}
	if err := checkBuffer(dtype, shape, len(data)); err != nil {
		return nil, err
	}
	return newTensor(dtype, shape, data, d, ctx, External), nil
}

// checkBuffer validates a dtype, shape and buffer size combination.
func checkBuffer(dtype DataType, shape Shape, size int) error {
	if !dtype.IsValid() {
		return fmt.Errorf("%w: %d", ErrUnsupportedDType, int(dtype))
	}
	if shape == nil {
		return fmt.Errorf("%w: nil shape", ErrInvalidArgument)
	}
	if err := shape.Validate(); err != nil {
		return err
	}
	if size < 0 {
		return fmt.Errorf("%w: negative buffer size %d", ErrInvalidArgument, size)
	}
	if dtype.Size() == VariableSize {
		return nil
	}
	want, err := byteLength(dtype, shape)
	if err != nil {
		return err
	}
	if size != want {
		return fmt.Errorf("%w: %s%v requires %d bytes, got %d", ErrInvalidArgument, dtype, shape, want, size)
	}
	return nil
}

// borrow wraps size bytes of pinned Go memory starting at ptr.
func borrow(dtype DataType, shape Shape, ptr unsafe.Pointer, size int) *Tensor {
	pinner := new(runtime.Pinner)
	pinner.Pin(ptr)
	//nolint:gosec // unsafe.Slice over pinned caller memory, bounds computed from shape
	data := unsafe.Slice((*byte)(ptr), size)
	return newTensor(dtype, shape, data, pinnedDeallocator{}, pinner, Borrowed)
}

// FromSlice creates a tensor over a Go slice.
//
// By default the slice is borrowed: the tensor aliases and pins its backing
// array until Release, and writes through either view are visible in the
// other. WithCopy makes an engine-owned copy instead. A nil shape means a
// 1-D tensor of len(data) elements.
func FromSlice[T DType](data []T, shape Shape, opts ...Option) (*Tensor, error) {
	o := buildOptions(opts)
	dtype := inferDataType[T]()
	if shape == nil {
		shape = Shape{len(data)}
	}
	n, err := shape.Elements()
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: shape %v requires %d elements, but got %d", ErrInvalidArgument, shape, n, len(data))
	}

	size := n * dtype.Size()
	if size > 0 && nativeLittleEndian && !o.Copy {
		return borrow(dtype, shape, unsafe.Pointer(unsafe.SliceData(data)), size), nil
	}
	t := allocate(dtype, shape, size)
	if err := encodeSlice(t.h.data, dtype, data); err != nil {
		t.Release()
		return nil, err
	}
	return t, nil
}

// FromSliceRange creates a tensor holding a copy of data[start:start+count].
func FromSliceRange[T DType](data []T, start, count int, shape Shape) (*Tensor, error) {
	if shape == nil {
		return nil, fmt.Errorf("%w: nil shape", ErrInvalidArgument)
	}
	if start < 0 || count < 0 || start > len(data) || count > len(data)-start {
		return nil, fmt.Errorf("%w: range [%d, %d+%d) exceeds source length %d", ErrInvalidArgument, start, start, count, len(data))
	}
	return FromSlice(data[start:start+count], shape, WithCopy())
}

// FromScalar creates a rank-0 tensor holding v.
func FromScalar[T DType](v T) (*Tensor, error) {
	return FromSlice([]T{v}, Shape{}, WithCopy())
}

// encodeSlice writes data into dst in wire layout.
func encodeSlice[T DType](dst []byte, dtype DataType, data []T) error {
	if len(data) == 0 {
		return nil
	}
	if nativeLittleEndian {
		//nolint:gosec // unsafe.Slice for zero-copy view, bounds from len(data)
		copy(dst, unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(data))), len(dst)))
		return nil
	}
	rv := reflect.ValueOf(data)
	size := dtype.Size()
	for i := range data {
		if err := encodeLeaf(dst[i*size:], dtype, rv.Index(i)); err != nil {
			return err
		}
	}
	return nil
}
