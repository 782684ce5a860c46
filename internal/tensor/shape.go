package tensor

import (
	"fmt"
	"math"
)

// Shape represents the dimensions of a tensor. An empty shape is a scalar.
type Shape []int

// maxExtractDim bounds each dimension of a rectangular extraction to the
// 32-bit index range of the execution engine's array views.
const maxExtractDim = math.MaxInt32

// NumElements returns the total number of elements in the tensor.
// It does not check for overflow; use Elements for untrusted shapes.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Elements returns the total number of elements, failing with
// ErrInvalidArgument for negative dimensions and ErrShapeOverflow when the
// product does not fit in an int.
func (s Shape) Elements() (int, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	n := 1
	for _, dim := range s {
		if dim == 0 {
			return 0, nil
		}
		if n > math.MaxInt/dim {
			return 0, fmt.Errorf("%w: element count of %v exceeds addressable range", ErrShapeOverflow, s)
		}
		n *= dim
	}
	return n, nil
}

// Validate checks that every dimension is non-negative.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("%w: dimension %d is %d (must be >= 0)", ErrInvalidArgument, i, dim)
		}
	}
	return nil
}

// Rank returns the number of dimensions.
func (s Shape) Rank() int {
	return len(s)
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape, in elements.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// Offset returns the element offset of index using row-major strides.
func (s Shape) Offset(index []int) (int, error) {
	if len(index) != len(s) {
		return 0, fmt.Errorf("%w: expected %d indices, got %d", ErrInvalidArgument, len(s), len(index))
	}
	offset := 0
	strides := s.ComputeStrides()
	for i, idx := range index {
		if idx < 0 || idx >= s[i] {
			return 0, fmt.Errorf("%w: index %d out of bounds for dimension %d (size %d)", ErrInvalidArgument, idx, i, s[i])
		}
		offset += idx * strides[i]
	}
	return offset, nil
}

// Dims64 returns the shape in its wire form.
func (s Shape) Dims64() []int64 {
	dims := make([]int64, len(s))
	for i, d := range s {
		dims[i] = int64(d)
	}
	return dims
}

// ShapeFromDims64 converts a wire-form shape. Negative dimensions fail with
// ErrInvalidArgument and dimensions that do not fit in an int fail with
// ErrShapeOverflow.
func ShapeFromDims64(dims []int64) (Shape, error) {
	s := make(Shape, len(dims))
	for i, d := range dims {
		if d < 0 {
			return nil, fmt.Errorf("%w: dimension %d is %d (must be >= 0)", ErrInvalidArgument, i, d)
		}
		if d > math.MaxInt {
			return nil, fmt.Errorf("%w: dimension %d is %d", ErrShapeOverflow, i, d)
		}
		s[i] = int(d)
	}
	return s, nil
}

// String returns the shape as e.g. "[2 3]".
func (s Shape) String() string {
	return fmt.Sprint([]int(s))
}

// byteLength returns the buffer size for count elements of dt, checking for
// overflow.
func byteLength(dt DataType, s Shape) (int, error) {
	size, err := dt.ByteSize()
	if err != nil {
		return 0, err
	}
	n, err := s.Elements()
	if err != nil {
		return 0, err
	}
	if n > 0 && n > math.MaxInt/size {
		return 0, fmt.Errorf("%w: %d elements of %s exceed addressable range", ErrShapeOverflow, n, dt)
	}
	return n * size, nil
}
