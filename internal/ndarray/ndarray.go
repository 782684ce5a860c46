// Package ndarray inspects arbitrary Go array values for the tensor buffer engine.
//
// Two shapes of host array are recognized:
//   - rectangular: a slice or array whose nested element types are fixed-size
//     arrays down to a scalar leaf, e.g. []float32, [][3]int32, [2][3]int64.
//     Such values occupy one contiguous block of memory.
//   - jagged: a non-empty slice or array whose element type contains a slice,
//     e.g. [][]int32. Children may differ in length.
//
// The package knows nothing about dtypes; leaves are handled as opaque
// reflect.Values.
package ndarray

import "reflect"

// IsArrayKind reports whether k is a slice or fixed-size array kind.
func IsArrayKind(k reflect.Kind) bool {
	return k == reflect.Slice || k == reflect.Array
}

// Indirect follows non-nil pointers until a non-pointer value is reached.
func Indirect(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}
	return v
}

// IsArray reports whether v (after Indirect) is a slice or array.
func IsArray(v reflect.Value) bool {
	return IsArrayKind(Indirect(v).Kind())
}

// IsJagged reports whether v is a non-empty array whose elements are themselves
// variable-length arrays. Rectangular values, empty values and scalars are
// never jagged.
func IsJagged(v reflect.Value) bool {
	v = Indirect(v)
	if !IsArrayKind(v.Kind()) || v.Len() == 0 {
		return false
	}
	return hasSlice(v.Type().Elem())
}

// hasSlice reports whether t or any of its nested element types is a slice.
func hasSlice(t reflect.Type) bool {
	for IsArrayKind(t.Kind()) {
		if t.Kind() == reflect.Slice {
			return true
		}
		t = t.Elem()
	}
	return false
}

// IsRectangularType reports whether t is a slice or array whose nested element
// types are fixed-size arrays down to a non-array leaf.
func IsRectangularType(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if !IsArrayKind(t.Kind()) {
		return false
	}
	return !hasSlice(t.Elem())
}

// InnermostElementType descends through nested slice and array types until a
// non-array element type is reached. A top-level pointer is followed; pointers
// below the top are leaves.
func InnermostElementType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	for IsArrayKind(t.Kind()) {
		t = t.Elem()
	}
	return t
}

// Rank returns the number of nested slice/array levels of t.
func Rank(t reflect.Type) int {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	n := 0
	for IsArrayKind(t.Kind()) {
		n++
		t = t.Elem()
	}
	return n
}

// Length returns the per-dimension lengths of v.
//
// Scalars yield an empty result. Rectangular values report their own bounds.
// For jagged values only the top-level length is reported unless deep is set,
// in which case the tail dimensions come from element 0, or, when useMax is
// set, from the per-dimension maximum over all children. The useMax result is
// the smallest rectangular shape that can hold every leaf. A deep result
// always has one entry per nesting level of v's type; levels that no child
// reaches are reported as 0.
func Length(v reflect.Value, deep, useMax bool) []int {
	v = Indirect(v)
	if !IsArrayKind(v.Kind()) {
		return []int{}
	}

	dims := []int{v.Len()}
	if !IsJagged(v) {
		for t := v.Type().Elem(); t.Kind() == reflect.Array; t = t.Elem() {
			dims = append(dims, t.Len())
		}
		if deep {
			return padRank(dims, v.Type())
		}
		return dims
	}
	if !deep {
		return dims
	}

	tail := Length(v.Index(0), true, useMax)
	if useMax {
		for i := 1; i < v.Len(); i++ {
			tail = maxDims(tail, Length(v.Index(i), true, true))
		}
	}
	return padRank(append(dims, tail...), v.Type())
}

// padRank appends zero dimensions to dims until it has one per nesting level
// of t. Empty children leave the deeper levels unvisited.
func padRank(dims []int, t reflect.Type) []int {
	for rank := Rank(t); len(dims) < rank; {
		dims = append(dims, 0)
	}
	return dims
}

// maxDims merges b into a taking the element-wise maximum. Dimensions present
// in only one of them are kept as is.
func maxDims(a, b []int) []int {
	for i, d := range b {
		if i >= len(a) {
			a = append(a, d)
			continue
		}
		if d > a[i] {
			a[i] = d
		}
	}
	return a
}

// TotalLength returns the number of leaves in v.
//
// When rectangular is set the children of a jagged value are assumed to share
// the shape of element 0, so only the first child is visited. Otherwise every
// child is summed, which handles ragged input. Without deep only the top-level
// length of a jagged value is returned.
func TotalLength(v reflect.Value, deep, rectangular bool) int {
	v = Indirect(v)
	if !IsArrayKind(v.Kind()) {
		return 1
	}

	if !IsJagged(v) {
		n := 1
		for _, d := range Length(v, false, false) {
			n *= d
		}
		return n
	}
	if !deep {
		return v.Len()
	}
	if rectangular {
		return v.Len() * TotalLength(v.Index(0), true, true)
	}

	n := 0
	for i := 0; i < v.Len(); i++ {
		n += TotalLength(v.Index(i), true, false)
	}
	return n
}

// frame is one level of the explicit traversal stack.
type frame struct {
	arr    reflect.Value
	cursor int
}

// Walk visits every non-array leaf of v in row-major order. The index passed
// to fn holds the position of the leaf along each nesting level; it is reused
// between calls and must not be retained. A scalar v is visited once with an
// empty index. Walk stops at the first error returned by fn.
//
// The traversal keeps its own stack of (array, cursor) frames, so nesting
// depth is bounded by memory rather than by the goroutine stack.
func Walk(v reflect.Value, fn func(index []int, leaf reflect.Value) error) error {
	v = Indirect(v)
	if !IsArrayKind(v.Kind()) {
		return fn(nil, v)
	}

	stack := []frame{{arr: v}}
	index := make([]int, 0, 8)
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.cursor >= top.arr.Len() {
			stack = stack[:len(stack)-1]
			continue
		}

		i := top.cursor
		top.cursor++
		elem := top.arr.Index(i)
		if IsArrayKind(elem.Kind()) {
			stack = append(stack, frame{arr: elem})
			continue
		}

		index = index[:0]
		for _, f := range stack {
			index = append(index, f.cursor-1)
		}
		if err := fn(index, elem); err != nil {
			return err
		}
	}
	return nil
}

// Flatten returns every leaf of v in row-major order.
func Flatten(v reflect.Value) []reflect.Value {
	var leaves []reflect.Value
	_ = Walk(v, func(_ []int, leaf reflect.Value) error {
		leaves = append(leaves, leaf)
		return nil
	})
	return leaves
}
