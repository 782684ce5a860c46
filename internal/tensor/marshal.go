package tensor

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"unsafe"

	"github.com/born-ml/tensorbuf/internal/ndarray"
	"github.com/born-ml/tensorbuf/internal/parallel"
)

// FromValue converts a Go value into a tensor.
//
// Accepted values:
//   - scalars of a mapped kind (rank 0)
//   - rectangular arrays: []T, [][N]T, [N][M]T, or a pointer to a fixed array
//   - jagged arrays: [][]T and deeper nestings
//   - strings and arrays of strings
//
// Rectangular slices and addressable arrays are borrowed without copying
// unless WithCopy is given. Jagged input is densified into an engine-owned
// buffer shaped as the smallest rectangle enclosing every leaf; ragged rows
// are rejected with ErrInvalidArgument unless WithPadding(true) is given, in
// which case missing elements are zero.
func FromValue(v any, opts ...Option) (*Tensor, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil value", ErrInvalidArgument)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, fmt.Errorf("%w: nil pointer", ErrInvalidArgument)
	}
	o := buildOptions(opts)

	leafType := ndarray.InnermostElementType(rv.Type())
	dtype, err := FromHostType(leafType)
	if err != nil {
		return nil, conversionError("encode", Invalid, nil, err, "element type %v", leafType)
	}

	switch {
	case dtype == String:
		return fromStringValue(rv, o)
	case !ndarray.IsArray(rv):
		return fromScalarValue(ndarray.Indirect(rv), dtype)
	case ndarray.IsJagged(rv):
		return densify(ndarray.Indirect(rv), dtype, o)
	default:
		return fromRectangular(ndarray.Indirect(rv), dtype, o)
	}
}

func fromScalarValue(rv reflect.Value, dtype DataType) (*Tensor, error) {
	t := allocate(dtype, Shape{}, dtype.Size())
	if err := encodeLeaf(t.h.data, dtype, rv); err != nil {
		t.Release()
		return nil, err
	}
	return t, nil
}

func fromRectangular(rv reflect.Value, dtype DataType, o Options) (*Tensor, error) {
	shape := Shape(ndarray.Length(rv, false, false))
	if !ndarray.IsRectangularType(rv.Type()) {
		// Only empty values get here, e.g. [][]int32{}; keep the type's rank.
		shape = make(Shape, ndarray.Rank(rv.Type()))
	}
	size, err := byteLength(dtype, shape)
	if err != nil {
		return nil, conversionError("encode", dtype, shape, err, "buffer size")
	}

	ptr, contiguous := contiguousPointer(rv)
	// int and uint are 4 bytes on 32-bit platforms and must be widened.
	contiguous = contiguous && ndarray.InnermostElementType(rv.Type()).Size() == uintptr(dtype.Size())
	if contiguous && size > 0 && nativeLittleEndian && !o.Copy {
		return borrow(dtype, shape, ptr, size), nil
	}

	t := allocate(dtype, shape, size)
	if contiguous && nativeLittleEndian {
		if size > 0 {
			//nolint:gosec // unsafe.Slice over the source's contiguous backing array
			copy(t.h.data, unsafe.Slice((*byte)(ptr), size))
		}
		return t, nil
	}

	elemSize := dtype.Size()
	k := 0
	err = ndarray.Walk(rv, func(_ []int, leaf reflect.Value) error {
		if err := encodeLeaf(t.h.data[k*elemSize:], dtype, leaf); err != nil {
			return err
		}
		k++
		return nil
	})
	if err != nil {
		t.Release()
		return nil, err
	}
	return t, nil
}

// contiguousPointer returns the address of the first element of a rectangular
// value when its elements are laid out in one block.
func contiguousPointer(rv reflect.Value) (unsafe.Pointer, bool) {
	switch rv.Kind() {
	case reflect.Slice:
		return rv.UnsafePointer(), true
	case reflect.Array:
		if rv.CanAddr() {
			return rv.Addr().UnsafePointer(), true
		}
	}
	return nil, false
}

// densify copies a jagged value into a row-major buffer shaped as the smallest
// rectangle that holds every leaf. Top-level rows are copied in parallel.
func densify(rv reflect.Value, dtype DataType, o Options) (*Tensor, error) {
	shape := Shape(ndarray.Length(rv, true, true))
	n, err := shape.Elements()
	if err != nil {
		return nil, conversionError("densify", dtype, shape, err, "element count")
	}
	size, err := byteLength(dtype, shape)
	if err != nil {
		return nil, conversionError("densify", dtype, shape, err, "buffer size")
	}

	total := ndarray.TotalLength(rv, true, false)
	ragged := total != n
	if ragged && !o.Pad {
		return nil, conversionError("densify", dtype, shape, ErrInvalidArgument,
			"ragged input holds %d of %d elements; enable padding to zero-fill", total, n)
	}

	t := allocate(dtype, shape, size)
	buf := t.h.data
	elemSize := dtype.Size()
	strides := shape.ComputeStrides()

	err = parallel.ForErr(rv.Len(), func(i int) error {
		base := i * strides[0]
		if !ragged {
			for j, leaf := range ndarray.Flatten(rv.Index(i)) {
				if err := encodeLeaf(buf[(base+j)*elemSize:], dtype, leaf); err != nil {
					return err
				}
			}
			return nil
		}
		return ndarray.Walk(rv.Index(i), func(index []int, leaf reflect.Value) error {
			off := base
			for k, idx := range index {
				off += idx * strides[k+1]
			}
			return encodeLeaf(buf[off*elemSize:], dtype, leaf)
		})
	}, o.Parallel)
	if err != nil {
		t.Release()
		return nil, err
	}
	return t, nil
}

// encodeLeaf writes one element in wire layout at the start of dst.
func encodeLeaf(dst []byte, dtype DataType, v reflect.Value) error {
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	got, err := FromHostType(v.Type())
	if err != nil || got != dtype {
		return fmt.Errorf("%w: cannot store %v as %s", ErrTypeMismatch, v.Type(), dtype)
	}

	le := binary.LittleEndian
	switch dtype {
	case Bool:
		dst[0] = 0
		if v.Bool() {
			dst[0] = 1
		}
	case Int8:
		dst[0] = byte(v.Int())
	case Int16:
		le.PutUint16(dst, uint16(v.Int()))
	case Int32:
		le.PutUint32(dst, uint32(v.Int()))
	case Int64:
		le.PutUint64(dst, uint64(v.Int()))
	case Uint8:
		dst[0] = byte(v.Uint())
	case Uint16:
		le.PutUint16(dst, uint16(v.Uint()))
	case Uint32:
		le.PutUint32(dst, uint32(v.Uint()))
	case Uint64:
		le.PutUint64(dst, v.Uint())
	case Float32:
		le.PutUint32(dst, math.Float32bits(float32(v.Float())))
	case Float64:
		le.PutUint64(dst, math.Float64bits(v.Float()))
	case Complex64:
		c := v.Complex()
		le.PutUint32(dst, math.Float32bits(float32(real(c))))
		le.PutUint32(dst[4:], math.Float32bits(float32(imag(c))))
	case Complex128:
		c := v.Complex()
		le.PutUint64(dst, math.Float64bits(real(c)))
		le.PutUint64(dst[8:], math.Float64bits(imag(c)))
	default:
		return fmt.Errorf("%w: encoding %s", ErrNotImplemented, dtype)
	}
	return nil
}

// decodeLeaf reads one element from the start of src into the settable dst.
func decodeLeaf(src []byte, dtype DataType, dst reflect.Value) {
	le := binary.LittleEndian
	switch dtype {
	case Bool:
		dst.SetBool(src[0] != 0)
	case Int8:
		dst.SetInt(int64(int8(src[0])))
	case Int16:
		dst.SetInt(int64(int16(le.Uint16(src))))
	case Int32:
		dst.SetInt(int64(int32(le.Uint32(src))))
	case Int64:
		dst.SetInt(int64(le.Uint64(src)))
	case Uint8:
		dst.SetUint(uint64(src[0]))
	case Uint16:
		dst.SetUint(uint64(le.Uint16(src)))
	case Uint32:
		dst.SetUint(uint64(le.Uint32(src)))
	case Uint64:
		dst.SetUint(le.Uint64(src))
	case Float32:
		dst.SetFloat(float64(math.Float32frombits(le.Uint32(src))))
	case Float64:
		dst.SetFloat(math.Float64frombits(le.Uint64(src)))
	case Complex64:
		re := math.Float32frombits(le.Uint32(src))
		im := math.Float32frombits(le.Uint32(src[4:]))
		dst.SetComplex(complex(float64(re), float64(im)))
	case Complex128:
		re := math.Float64frombits(le.Uint64(src))
		im := math.Float64frombits(le.Uint64(src[8:]))
		dst.SetComplex(complex(re, im))
	}
}

// Value converts a tensor back into a Go value of its dtype's host type.
//
// Rank 0 yields a scalar, rank 1 a slice. Higher ranks yield a slice of
// fixed-size arrays (e.g. [][3]int32 for shape [2 3]) filled by striding the
// buffer in row-major order, or nested slices built one rank at a time when
// WithJagged is given. String tensors are not handled here; use Strings.
func Value(t *Tensor, opts ...Option) (any, error) {
	data, err := t.Bytes()
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	dtype, shape := t.dtype, t.shape

	if dtype == String {
		return nil, conversionError("decode", dtype, shape, ErrNotImplemented, "string tensors decode through Strings")
	}
	ht, ok := dtype.HostType()
	if !ok {
		return nil, conversionError("decode", dtype, shape, ErrNoMapping, "no Go type for %s", dtype)
	}

	switch {
	case len(shape) == 0:
		out := reflect.New(ht).Elem()
		decodeLeaf(data, dtype, out)
		return out.Interface(), nil
	case len(shape) == 1:
		return decodeFlat(data, dtype, ht, shape[0]).Interface(), nil
	case o.Jagged:
		return decodeJagged(data, dtype, ht, shape, o.Parallel).Interface(), nil
	default:
		out, err := decodeRectangular(data, dtype, ht, shape)
		if err != nil {
			return nil, err
		}
		return out.Interface(), nil
	}
}

// decodeFlat decodes n elements into a new []ht.
func decodeFlat(data []byte, dtype DataType, ht reflect.Type, n int) reflect.Value {
	out := reflect.MakeSlice(reflect.SliceOf(ht), n, n)
	size := dtype.Size()
	if rawCopyable(dtype) {
		if n > 0 {
			//nolint:gosec // unsafe.Slice over a freshly allocated slice of n elements
			copy(unsafe.Slice((*byte)(out.UnsafePointer()), n*size), data)
		}
		return out
	}
	for i := 0; i < n; i++ {
		decodeLeaf(data[i*size:], dtype, out.Index(i))
	}
	return out
}

// rawCopyable reports whether buffer bytes of dtype can be copied straight
// into Go memory. Bool is excluded: any nonzero byte is true, while a Go bool
// must hold exactly 0 or 1.
func rawCopyable(dtype DataType) bool {
	return nativeLittleEndian && dtype != Bool
}

// decodeRectangular decodes into a slice of nested fixed-size arrays, walking
// a per-dimension index vector whose last dimension varies fastest.
func decodeRectangular(data []byte, dtype DataType, ht reflect.Type, shape Shape) (reflect.Value, error) {
	for i, d := range shape {
		if d > maxExtractDim {
			return reflect.Value{}, conversionError("decode", dtype, shape, ErrShapeOverflow,
				"dimension %d is %d, limit is %d", i, d, maxExtractDim)
		}
	}
	if _, err := byteLength(dtype, shape[1:]); err != nil {
		return reflect.Value{}, conversionError("decode", dtype, shape, err, "row of %v", shape[1:])
	}

	typ := ht
	for i := len(shape) - 1; i >= 1; i-- {
		typ = reflect.ArrayOf(shape[i], typ)
	}
	out := reflect.MakeSlice(reflect.SliceOf(typ), shape[0], shape[0])

	n := shape.NumElements()
	size := dtype.Size()
	index := make([]int, len(shape))
	for k := 0; k < n; k++ {
		elem := out
		for _, idx := range index {
			elem = elem.Index(idx)
		}
		decodeLeaf(data[k*size:], dtype, elem)

		for d := len(index) - 1; d >= 0; d-- {
			index[d]++
			if index[d] < shape[d] {
				break
			}
			index[d] = 0
		}
	}
	return out, nil
}

// decodeJagged builds nested slices bottom-up: first every innermost row,
// then each enclosing level from the one below, so every level is an
// independent slice rather than a view into one block. Innermost rows are
// decoded in parallel.
func decodeJagged(data []byte, dtype DataType, ht reflect.Type, shape Shape, cfg parallel.Config) reflect.Value {
	rank := len(shape)
	rowLen := shape[rank-1]
	rows := Shape(shape[:rank-1]).NumElements()
	size := dtype.Size()

	level := make([]reflect.Value, rows)
	parallel.For(rows, func(r int) {
		level[r] = decodeFlat(data[r*rowLen*size:], dtype, ht, rowLen)
	}, cfg)

	typ := reflect.SliceOf(ht)
	for j := rank - 2; j >= 0; j-- {
		typ = reflect.SliceOf(typ)
		count := Shape(shape[:j]).NumElements()
		next := make([]reflect.Value, count)
		for g := range next {
			s := reflect.MakeSlice(typ, shape[j], shape[j])
			for k := 0; k < shape[j]; k++ {
				s.Index(k).Set(level[g*shape[j]+k])
			}
			next[g] = s
		}
		level = next
	}
	return level[0]
}

// Values returns a copy of the tensor's elements as []T.
// It fails with ErrTypeMismatch when T does not match the tensor's dtype.
func Values[T DType](t *Tensor) ([]T, error) {
	data, err := t.Bytes()
	if err != nil {
		return nil, err
	}
	want := inferDataType[T]()
	if t.dtype != want {
		return nil, fmt.Errorf("%w: tensor is %s, requested %s", ErrTypeMismatch, t.dtype, want)
	}

	n := len(data) / want.Size()
	out := make([]T, n)
	if n == 0 {
		return out, nil
	}
	if rawCopyable(want) {
		//nolint:gosec // unsafe.Slice over out, which holds exactly len(data) bytes
		copy(unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(out))), len(data)), data)
		return out, nil
	}
	rv := reflect.ValueOf(out)
	for i := 0; i < n; i++ {
		decodeLeaf(data[i*want.Size():], want, rv.Index(i))
	}
	return out, nil
}

// Scalar returns the single element of a one-element tensor.
func Scalar[T DType](t *Tensor) (T, error) {
	var zero T
	values, err := Values[T](t)
	if err != nil {
		return zero, err
	}
	if len(values) != 1 {
		return zero, fmt.Errorf("%w: tensor holds %d elements, not 1", ErrInvalidArgument, len(values))
	}
	return values[0], nil
}
