// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/tensorbuf/internal/mapped"
	"github.com/born-ml/tensorbuf/internal/tensor"
)

// Ownership tells which party supplied a tensor's memory.
type Ownership = tensor.Ownership

// Ownership modes.
const (
	Owned    Ownership = tensor.Owned
	Borrowed Ownership = tensor.Borrowed
	External Ownership = tensor.External
)

// Deallocator releases the memory behind a tensor buffer.
// Release is called exactly once and must not fail.
type Deallocator = tensor.Deallocator

// DeallocatorFunc adapts a function to the Deallocator interface.
type DeallocatorFunc = tensor.DeallocatorFunc

// NewRaw creates a tensor with a zeroed engine-owned buffer sized for shape.
//
// This is a low-level function. Most users should use FromValue or FromSlice.
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Float32, tensor.Shape{2, 3})
//	data, _ := raw.Bytes() // 24 zero bytes
func NewRaw(dtype DataType, shape Shape) (*Tensor, error) {
	return tensor.NewRaw(dtype, shape)
}

// Allocate creates a tensor with a zeroed engine-owned buffer of size bytes.
func Allocate(dtype DataType, shape Shape, size int) (*Tensor, error) {
	return tensor.Allocate(dtype, shape, size)
}

// NewWithDeallocator wraps caller memory. d.Release(data, ctx) runs exactly
// once when the tensor is released.
//
// Example:
//
//	buf := make([]byte, 16)
//	t, _ := tensor.NewWithDeallocator(tensor.Float32, tensor.Shape{4}, buf,
//	    tensor.DeallocatorFunc(func(data []byte, ctx any) { pool.Put(ctx) }), handle)
func NewWithDeallocator(dtype DataType, shape Shape, data []byte, d Deallocator, ctx any) (*Tensor, error) {
	return tensor.NewWithDeallocator(dtype, shape, data, d, ctx)
}

// MapFile memory-maps the file at path and returns a read-only tensor over
// the bytes starting at offset. Releasing the tensor unmaps the file.
func MapFile(path string, dtype DataType, shape Shape, offset int64) (*Tensor, error) {
	return mapped.Open(path, dtype, shape, offset)
}

// String codec

// StringOffsetSize is the width of one string offset table entry.
const StringOffsetSize = tensor.StringOffsetSize

// EncodedStringSize returns the length-prefixed size of s.
func EncodedStringSize(s string) int {
	return tensor.EncodedStringSize(s)
}

// EncodeStrings returns the string tensor encoding of values.
func EncodeStrings(values []string) []byte {
	return tensor.EncodeStrings(values)
}

// StringOffset reads entry i of a string tensor's offset table.
func StringOffset(buf []byte, i int) (uint64, error) {
	return tensor.StringOffset(buf, i)
}

// DecodeString decodes one length-prefixed string at offset and returns it
// with the number of bytes consumed.
func DecodeString(buf []byte, offset int) (string, int, error) {
	return tensor.DecodeString(buf, offset)
}

// DecodeStrings decodes n strings from a string tensor buffer.
func DecodeStrings(buf []byte, n int) ([]string, error) {
	return tensor.DecodeStrings(buf, n)
}
