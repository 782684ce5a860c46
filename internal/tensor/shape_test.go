package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeNumElements(t *testing.T) {
	assert.Equal(t, 1, Shape{}.NumElements(), "scalar")
	assert.Equal(t, 6, Shape{2, 3}.NumElements())
	assert.Equal(t, 0, Shape{4, 0, 2}.NumElements())
}

func TestShapeElements(t *testing.T) {
	n, err := Shape{2, 3, 4}.Elements()
	require.NoError(t, err)
	assert.Equal(t, 24, n)

	n, err = Shape{0, math.MaxInt}.Elements()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = Shape{math.MaxInt, 2}.Elements()
	assert.ErrorIs(t, err, ErrShapeOverflow)

	_, err = Shape{2, -1}.Elements()
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestShapeEqualAndClone(t *testing.T) {
	s := Shape{2, 3}
	c := s.Clone()
	assert.True(t, s.Equal(c))

	c[0] = 5
	assert.Equal(t, 2, s[0], "clone must not alias")
	assert.False(t, s.Equal(c))
	assert.False(t, s.Equal(Shape{2}))
	assert.True(t, Shape{}.Equal(Shape{}))
}

func TestShapeComputeStrides(t *testing.T) {
	assert.Equal(t, []int{12, 4, 1}, Shape{2, 3, 4}.ComputeStrides())
	assert.Equal(t, []int{1}, Shape{5}.ComputeStrides())
	assert.Empty(t, Shape{}.ComputeStrides())
}

func TestShapeOffset(t *testing.T) {
	s := Shape{2, 3, 4}

	off, err := s.Offset([]int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 23, off)

	off, err = Shape{}.Offset(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, off)

	_, err = s.Offset([]int{1, 2})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = s.Offset([]int{2, 0, 0})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestShapeDims64(t *testing.T) {
	dims := Shape{2, 0, 7}.Dims64()
	assert.Equal(t, []int64{2, 0, 7}, dims)

	s, err := ShapeFromDims64(dims)
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 0, 7}, s)

	s, err = ShapeFromDims64(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Rank(), "empty wire shape is a scalar")

	_, err = ShapeFromDims64([]int64{3, -2})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "[2 3]", Shape{2, 3}.String())
	assert.Equal(t, "[]", Shape{}.String())
}

func TestByteLength(t *testing.T) {
	n, err := byteLength(Float64, Shape{2, 3})
	require.NoError(t, err)
	assert.Equal(t, 48, n)

	_, err = byteLength(String, Shape{2})
	assert.ErrorIs(t, err, ErrUnsupportedDType)

	_, err = byteLength(Complex128, Shape{math.MaxInt / 8})
	assert.ErrorIs(t, err, ErrShapeOverflow)
}
