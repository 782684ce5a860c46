// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"log/slog"
	"reflect"

	"github.com/born-ml/tensorbuf/internal/parallel"
	"github.com/born-ml/tensorbuf/internal/tensor"
)

// Type aliases for public API

// DType is a constraint for element types with a fixed-width dtype.
type DType = tensor.DType

// DataType identifies a tensor's element kind. Values match the execution
// engine's wire tags.
type DataType = tensor.DataType

// Data type constants.
const (
	Invalid    DataType = tensor.Invalid
	Float32    DataType = tensor.Float32
	Float64    DataType = tensor.Float64
	Int32      DataType = tensor.Int32
	Uint8      DataType = tensor.Uint8
	Int16      DataType = tensor.Int16
	Int8       DataType = tensor.Int8
	String     DataType = tensor.String
	Complex64  DataType = tensor.Complex64
	Int64      DataType = tensor.Int64
	Bool       DataType = tensor.Bool
	QInt8      DataType = tensor.QInt8
	QUint8     DataType = tensor.QUint8
	QInt32     DataType = tensor.QInt32
	BFloat16   DataType = tensor.BFloat16
	QInt16     DataType = tensor.QInt16
	QUint16    DataType = tensor.QUint16
	Uint16     DataType = tensor.Uint16
	Complex128 DataType = tensor.Complex128
	Half       DataType = tensor.Half
	Resource   DataType = tensor.Resource
	Variant    DataType = tensor.Variant
	Uint32     DataType = tensor.Uint32
	Uint64     DataType = tensor.Uint64
)

// VariableSize is returned by DataType.Size for dtypes without a fixed width.
const VariableSize = tensor.VariableSize

// Class is the broad category of a data type.
type Class = tensor.Class

// Data type classes.
const (
	ClassOpaque      Class = tensor.ClassOpaque
	ClassFloat       Class = tensor.ClassFloat
	ClassSignedInt   Class = tensor.ClassSignedInt
	ClassUnsignedInt Class = tensor.ClassUnsignedInt
	ClassBool        Class = tensor.ClassBool
	ClassComplex     Class = tensor.ClassComplex
	ClassString      Class = tensor.ClassString
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
// An empty Shape is a scalar.
type Shape = tensor.Shape

// Tensor owns one buffer tagged with a DataType and a Shape.
//
// Example:
//
//	t, _ := tensor.FromValue([]float64{1, 2, 3})
//	defer t.Release()
//	n, _ := t.NumElements() // 3
type Tensor = tensor.Tensor

// Options controls conversion between Go values and tensors.
type Options = tensor.Options

// Option configures Options.
type Option = tensor.Option

// ParallelConfig controls how many goroutines densify jagged input.
type ParallelConfig = parallel.Config

// Stats is a snapshot of engine-wide buffer accounting.
type Stats = tensor.Stats

// ConversionError describes a failed conversion.
type ConversionError = tensor.ConversionError

// Errors returned by the engine. Use errors.Is to test for them.
var (
	ErrUnsupportedDType = tensor.ErrUnsupportedDType
	ErrNoMapping        = tensor.ErrNoMapping
	ErrTypeMismatch     = tensor.ErrTypeMismatch
	ErrShapeOverflow    = tensor.ErrShapeOverflow
	ErrNotImplemented   = tensor.ErrNotImplemented
	ErrInvalidArgument  = tensor.ErrInvalidArgument
	ErrUseAfterFree     = tensor.ErrUseAfterFree
)

// ParseDataType returns the DataType named s, e.g. "float32".
func ParseDataType(s string) (DataType, error) {
	return tensor.ParseDataType(s)
}

// FromHostType returns the DataType for Go type t.
func FromHostType(t reflect.Type) (DataType, error) {
	return tensor.FromHostType(t)
}

// ShapeFromDims64 converts a wire-form shape.
func ShapeFromDims64(dims []int64) (Shape, error) {
	return tensor.ShapeFromDims64(dims)
}

// Options

// DefaultParallelConfig returns worker defaults sized to the machine.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}

// WithParallel sets the worker configuration used when densifying jagged input.
func WithParallel(cfg ParallelConfig) Option {
	return tensor.WithParallel(cfg)
}

// WithPadding enables or disables filling of ragged rows.
func WithPadding(pad bool) Option {
	return tensor.WithPadding(pad)
}

// WithCopy forces an engine-owned copy even when the input could be borrowed.
func WithCopy() Option {
	return tensor.WithCopy()
}

// WithJagged makes Value return nested slices instead of arrays.
func WithJagged() Option {
	return tensor.WithJagged()
}

// SetLogger sets the logger for allocation and release events.
// A nil logger restores slog.Default().
func SetLogger(l *slog.Logger) {
	tensor.SetLogger(l)
}

// ReadStats returns the current buffer accounting.
func ReadStats() Stats {
	return tensor.ReadStats()
}

// Creation functions

// FromValue converts a scalar, rectangular array, jagged array, string or
// array of strings into a tensor.
//
// Example:
//
//	t, err := tensor.FromValue([][]float32{{1, 2}, {3, 4}})
func FromValue(v any, opts ...Option) (*Tensor, error) {
	return tensor.FromValue(v, opts...)
}

// FromSlice creates a tensor over a Go slice. A nil shape means 1-D.
//
// Example:
//
//	data := []float32{1, 2, 3, 4, 5, 6}
//	t, err := tensor.FromSlice(data, tensor.Shape{2, 3})
func FromSlice[T DType](data []T, shape Shape, opts ...Option) (*Tensor, error) {
	return tensor.FromSlice(data, shape, opts...)
}

// FromSliceRange creates a tensor holding a copy of data[start:start+count].
func FromSliceRange[T DType](data []T, start, count int, shape Shape) (*Tensor, error) {
	return tensor.FromSliceRange(data, start, count, shape)
}

// FromScalar creates a rank-0 tensor holding v.
func FromScalar[T DType](v T) (*Tensor, error) {
	return tensor.FromScalar(v)
}

// FromString creates a scalar string tensor.
func FromString(s string) (*Tensor, error) {
	return tensor.FromString(s)
}

// FromStrings creates a string tensor of the given shape.
func FromStrings(values []string, shape Shape) (*Tensor, error) {
	return tensor.FromStrings(values, shape)
}

// NewHalf creates a half precision tensor from float32 values.
func NewHalf(values []float32, shape Shape) (*Tensor, error) {
	return tensor.NewHalf(values, shape)
}

// Extraction functions

// Value converts a tensor back into a Go value: a scalar for rank 0, a slice
// for rank 1, and a slice of fixed-size arrays (or nested slices with
// WithJagged) above that.
func Value(t *Tensor, opts ...Option) (any, error) {
	return tensor.Value(t, opts...)
}

// Values returns a copy of the tensor's elements as []T.
func Values[T DType](t *Tensor) ([]T, error) {
	return tensor.Values[T](t)
}

// Scalar returns the single element of a one-element tensor.
func Scalar[T DType](t *Tensor) (T, error) {
	return tensor.Scalar[T](t)
}

// Strings decodes every element of a string tensor.
func Strings(t *Tensor) ([]string, error) {
	return tensor.Strings(t)
}

// HalfValues widens a half precision tensor to float32.
func HalfValues(t *Tensor) ([]float32, error) {
	return tensor.HalfValues(t)
}
