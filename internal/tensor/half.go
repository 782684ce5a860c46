package tensor

import (
	"encoding/binary"
	"fmt"

	"github.com/x448/float16"
)

// NewHalf creates an IEEE 754 half precision tensor from float32 values,
// rounding each to the nearest float16. A nil shape means 1-D.
func NewHalf(values []float32, shape Shape) (*Tensor, error) {
	if shape == nil {
		shape = Shape{len(values)}
	}
	n, err := shape.Elements()
	if err != nil {
		return nil, err
	}
	if n != len(values) {
		return nil, fmt.Errorf("%w: shape %v requires %d elements, but got %d", ErrInvalidArgument, shape, n, len(values))
	}

	t := allocate(Half, shape, n*Half.Size())
	for i, v := range values {
		binary.LittleEndian.PutUint16(t.h.data[i*2:], float16.Fromfloat32(v).Bits())
	}
	return t, nil
}

// HalfValues widens the elements of a half precision tensor to float32.
func HalfValues(t *Tensor) ([]float32, error) {
	data, err := t.Bytes()
	if err != nil {
		return nil, err
	}
	if t.dtype != Half {
		return nil, fmt.Errorf("%w: tensor is %s, requested %s", ErrTypeMismatch, t.dtype, Half)
	}

	out := make([]float32, len(data)/2)
	for i := range out {
		out[i] = float16.Frombits(binary.LittleEndian.Uint16(data[i*2:])).Float32()
	}
	return out, nil
}
