package ndarray

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

func TestIsJagged(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"scalar", int32(1), false},
		{"flat", []float64{1, 2, 3}, false},
		{"slice of arrays", [][3]int32{{1, 2, 3}}, false},
		{"fixed 2d", [2][3]int32{}, false},
		{"pointer to fixed 2d", &[2][3]int32{}, false},
		{"jagged", [][]int32{{1}, {2, 3}}, true},
		{"array of slices", [2][]int32{{1}, {2}}, true},
		{"empty jagged type", [][]int32{}, false},
		{"deep jagged", [][][]float32{{{1}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsJagged(reflect.ValueOf(tt.value)))
		})
	}
}

func TestIsRectangularType(t *testing.T) {
	assert.True(t, IsRectangularType(reflect.TypeOf([]int8{})))
	assert.True(t, IsRectangularType(reflect.TypeOf([][4]uint16{})))
	assert.True(t, IsRectangularType(reflect.TypeOf(&[2][2]bool{})))
	assert.False(t, IsRectangularType(reflect.TypeOf([][]int8{})))
	assert.False(t, IsRectangularType(reflect.TypeOf([][2][]int8{})))
	assert.False(t, IsRectangularType(reflect.TypeOf(int8(0))))
}

func TestInnermostElementType(t *testing.T) {
	assert.Equal(t, reflect.TypeOf(float32(0)), InnermostElementType(reflect.TypeOf([][][2]float32{})))
	assert.Equal(t, reflect.TypeOf(""), InnermostElementType(reflect.TypeOf([]string{})))
	assert.Equal(t, reflect.TypeOf(int64(0)), InnermostElementType(reflect.TypeOf(int64(0))))
	assert.Equal(t, reflect.TypeOf(uint8(0)), InnermostElementType(reflect.TypeOf(&[3][]uint8{})))
	assert.Equal(t, reflect.TypeOf(new(int16)), InnermostElementType(reflect.TypeOf([]*int16{})))
}

func TestRank(t *testing.T) {
	assert.Equal(t, 0, Rank(reflect.TypeOf(1.5)))
	assert.Equal(t, 1, Rank(reflect.TypeOf([]int32{})))
	assert.Equal(t, 3, Rank(reflect.TypeOf([][2][]int32{})))
	assert.Equal(t, 2, Rank(reflect.TypeOf(&[2][3]int32{})))
}

func TestLength(t *testing.T) {
	t.Run("Scalar", func(t *testing.T) {
		assert.Empty(t, Length(reflect.ValueOf(int32(7)), true, true))
	})

	t.Run("Rectangular", func(t *testing.T) {
		v := reflect.ValueOf([][3]int32{{1, 2, 3}, {4, 5, 6}})
		assert.Equal(t, []int{2, 3}, Length(v, false, false))
		assert.Equal(t, []int{2, 3}, Length(v, true, true))
	})

	t.Run("Fixed3D", func(t *testing.T) {
		assert.Equal(t, []int{2, 3, 4}, Length(reflect.ValueOf([2][3][4]float32{}), false, false))
	})

	t.Run("JaggedShallow", func(t *testing.T) {
		v := reflect.ValueOf([][]int32{{1, 2}, {3, 4, 5}})
		assert.Equal(t, []int{2}, Length(v, false, false))
	})

	t.Run("JaggedFirstChild", func(t *testing.T) {
		v := reflect.ValueOf([][]int32{{1, 2}, {3, 4, 5}})
		assert.Equal(t, []int{2, 2}, Length(v, true, false))
	})

	t.Run("JaggedMax", func(t *testing.T) {
		v := reflect.ValueOf([][]int32{{1, 2}, {3, 4, 5}})
		assert.Equal(t, []int{2, 3}, Length(v, true, true))
	})

	t.Run("DeepJaggedMax", func(t *testing.T) {
		v := reflect.ValueOf([][][]int32{
			{{1}},
			{{1, 2, 3}, {4}},
			{},
		})
		assert.Equal(t, []int{3, 2, 3}, Length(v, true, true))
	})

	t.Run("AllChildrenEmpty", func(t *testing.T) {
		assert.Equal(t, []int{2, 0, 0}, Length(reflect.ValueOf([][][]int32{{}, {}}), true, true))
		assert.Equal(t, []int{1, 0, 0}, Length(reflect.ValueOf([][][]int32{{}}), true, false))
		assert.Equal(t, []int{2, 1, 0}, Length(reflect.ValueOf([][][]int32{{{}}, {}}), true, true))
	})

	t.Run("EmptyKeepsRank", func(t *testing.T) {
		v := reflect.ValueOf([][][]int32{})
		assert.Equal(t, []int{0}, Length(v, false, false))
		assert.Equal(t, []int{0, 0, 0}, Length(v, true, true))
	})

	t.Run("JaggedOfArrays", func(t *testing.T) {
		v := reflect.ValueOf([][][2]int8{{{1, 2}}, {{3, 4}, {5, 6}}})
		assert.Equal(t, []int{2, 2, 2}, Length(v, true, true))
	})
}

func TestTotalLength(t *testing.T) {
	uniform := reflect.ValueOf([][]float64{{1, 2, 3}, {4, 5, 6}})
	assert.Equal(t, 6, TotalLength(uniform, true, true))
	assert.Equal(t, 6, TotalLength(uniform, true, false))
	assert.Equal(t, 2, TotalLength(uniform, false, false))

	ragged := reflect.ValueOf([][]float64{{1, 2}, {3, 4, 5}})
	assert.Equal(t, 5, TotalLength(ragged, true, false))
	assert.Equal(t, 4, TotalLength(ragged, true, true), "rectangular assumption multiplies by the first child")

	assert.Equal(t, 1, TotalLength(reflect.ValueOf(uint8(3)), true, false))
	assert.Equal(t, 0, TotalLength(reflect.ValueOf([]int16{}), true, false))
}

func TestTotalLengthMatchesLengthProduct(t *testing.T) {
	values := []any{
		[]int32{1, 2, 3},
		[][3]int32{{1, 2, 3}, {4, 5, 6}},
		[2][2][2]uint8{},
		[][]float32{{1, 2}, {3, 4}, {5, 6}},
		[][][]bool{{{true}, {false}}, {{true}, {true}}},
	}

	for _, value := range values {
		v := reflect.ValueOf(value)
		assert.Equal(t, product(Length(v, true, false)), TotalLength(v, true, true), "%T", value)
	}
}

func TestFlatten(t *testing.T) {
	t.Run("RowMajor", func(t *testing.T) {
		leaves := Flatten(reflect.ValueOf([][3]int32{{1, 2, 3}, {4, 5, 6}}))
		require.Len(t, leaves, 6)
		for i, leaf := range leaves {
			assert.Equal(t, int64(i+1), leaf.Int())
		}
	})

	t.Run("Ragged", func(t *testing.T) {
		leaves := Flatten(reflect.ValueOf([][]int32{{1, 2}, {}, {3, 4, 5}}))
		got := make([]int64, len(leaves))
		for i, leaf := range leaves {
			got[i] = leaf.Int()
		}
		assert.Equal(t, []int64{1, 2, 3, 4, 5}, got)
	})

	t.Run("Scalar", func(t *testing.T) {
		leaves := Flatten(reflect.ValueOf(2.5))
		require.Len(t, leaves, 1)
		assert.Equal(t, 2.5, leaves[0].Float())
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Empty(t, Flatten(reflect.ValueOf([]string{})))
	})
}

func TestFlattenLengthMatchesTotalLength(t *testing.T) {
	values := []any{
		[]string{"a", "b"},
		[][]int64{{1}, {2, 3}, {}, {4, 5, 6}},
		[][][2]float64{{{1, 2}}, {{3, 4}, {5, 6}}},
		[3][]uint32{{1}, {}, {2, 3}},
	}

	for _, value := range values {
		v := reflect.ValueOf(value)
		assert.Len(t, Flatten(v), TotalLength(v, true, false), "%T", value)
	}
}

func TestFlattenDeepNesting(t *testing.T) {
	// Build a value nested far deeper than any realistic tensor to make sure
	// the traversal does not depend on recursion.
	const depth = 2000
	typ := reflect.TypeOf(int32(0))
	v := reflect.ValueOf(int32(42))
	for i := 0; i < depth; i++ {
		typ = reflect.SliceOf(typ)
		s := reflect.MakeSlice(typ, 1, 1)
		s.Index(0).Set(v)
		v = s
	}

	leaves := Flatten(v)
	require.Len(t, leaves, 1)
	assert.Equal(t, int64(42), leaves[0].Int())
}

func TestWalkIndex(t *testing.T) {
	var got [][]int
	err := Walk(reflect.ValueOf([][]int8{{1, 2}, {3}}), func(index []int, _ reflect.Value) error {
		got = append(got, append([]int(nil), index...))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 0}, {0, 1}, {1, 0}}, got)
}

func TestWalkStopsOnError(t *testing.T) {
	stop := errors.New("stop")
	visited := 0
	err := Walk(reflect.ValueOf([]int{1, 2, 3}), func(_ []int, _ reflect.Value) error {
		visited++
		if visited == 2 {
			return stop
		}
		return nil
	})
	require.ErrorIs(t, err, stop)
	assert.Equal(t, 2, visited)
}
