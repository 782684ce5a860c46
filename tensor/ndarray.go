// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"reflect"

	"github.com/born-ml/tensorbuf/internal/ndarray"
)

// Array introspection helpers. They accept any Go value and never allocate
// tensor buffers.

// IsJagged reports whether v is a non-empty array whose elements are
// variable-length arrays, e.g. [][]int32.
func IsJagged(v any) bool {
	return ndarray.IsJagged(reflect.ValueOf(v))
}

// InnermostElementType returns the leaf element type of v's nested array type.
func InnermostElementType(v any) reflect.Type {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil
	}
	return ndarray.InnermostElementType(t)
}

// Length returns the per-dimension lengths of v. See FromValue for how deep
// and useMax shape jagged input.
//
// Example:
//
//	tensor.Length([][]int{{1, 2}, {3, 4, 5}}, true, true) // [2 3]
func Length(v any, deep, useMax bool) []int {
	return ndarray.Length(reflect.ValueOf(v), deep, useMax)
}

// TotalLength returns the number of leaves in v. With rectangular set only
// the first child of each jagged level is visited.
func TotalLength(v any, deep, rectangular bool) int {
	return ndarray.TotalLength(reflect.ValueOf(v), deep, rectangular)
}

// Flatten returns every leaf of v in row-major order.
func Flatten(v any) []any {
	if v == nil {
		return nil
	}
	leaves := ndarray.Flatten(reflect.ValueOf(v))
	out := make([]any, len(leaves))
	for i, leaf := range leaves {
		out[i] = leaf.Interface()
	}
	return out
}
