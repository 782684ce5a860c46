// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API of the tensor buffer engine.
//
// # Overview
//
// A Tensor owns exactly one contiguous byte buffer tagged with a DataType and
// a Shape. This package converts between Go values and such buffers:
//   - Scalars of a mapped kind become rank-0 tensors
//   - Rectangular arrays ([]T, [][N]T, [N][M]T) become row-major buffers
//   - Jagged arrays ([][]T and deeper) are densified first
//   - Strings use a dedicated offset-table encoding
//
// # Basic Usage
//
//	import "github.com/born-ml/tensorbuf/tensor"
//
//	func main() {
//	    t, err := tensor.FromValue([][3]int32{{1, 2, 3}, {4, 5, 6}})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer t.Release()
//
//	    shape, _ := t.Shape() // [2 3]
//	    v, _ := tensor.Value(t) // [][3]int32{{1, 2, 3}, {4, 5, 6}}
//	}
//
// # Supported Data Types
//
// Every Go kind with a fixed width maps to a DataType:
//   - bool
//   - int8, int16, int32, int64
//   - uint8, uint16, uint32, uint64
//   - float32, float64
//   - complex64, complex128
//   - string (variable length)
//
// Platform-sized int, uint and uintptr have no mapping. Half precision
// tensors are built with NewHalf and read with HalfValues.
//
// # Memory Management
//
// Rectangular slices and addressable arrays are borrowed by default: the
// tensor aliases and pins the caller's memory until Release. WithCopy forces
// an engine-owned copy. NewWithDeallocator wraps caller memory together with
// a Deallocator that runs exactly once on release.
//
// Every tensor should be released explicitly:
//
//	t, _ := tensor.FromSlice([]float32{1, 2, 3}, nil)
//	defer t.Release()
//
// A tensor that becomes unreachable without Release is reclaimed by a GC
// cleanup and a warning is logged. After release every accessor fails with
// ErrUseAfterFree.
//
// # Ragged Input
//
// Jagged input whose rows differ in length is rejected with
// ErrInvalidArgument. WithPadding(true) instead zero-fills (or, for strings,
// fills with "") the smallest rectangle that holds every element:
//
//	t, _ := tensor.FromValue([][]int32{{1, 2}, {3, 4, 5}}, tensor.WithPadding(true))
//	// shape [2 3], elements [1 2 0 3 4 5]
package tensor
