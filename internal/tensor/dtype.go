// Package tensor implements the tensor buffer engine: dtype registry, shapes,
// owned and borrowed byte buffers, and conversion between Go arrays and
// row-major tensor buffers.
package tensor

import (
	"fmt"
	"reflect"
)

// DType is a constraint for element types that have a fixed-width dtype.
// It uses Go generics to ensure compile-time type safety.
type DType interface {
	~bool |
		~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 |
		~complex64 | ~complex128
}

// DataType represents runtime type information for tensors.
// Values match the execution engine's wire tags.
type DataType int

// Supported data types for tensors.
const (
	Invalid    DataType = 0
	Float32    DataType = 1
	Float64    DataType = 2
	Int32      DataType = 3
	Uint8      DataType = 4
	Int16      DataType = 5
	Int8       DataType = 6
	String     DataType = 7
	Complex64  DataType = 8
	Int64      DataType = 9
	Bool       DataType = 10
	QInt8      DataType = 11
	QUint8     DataType = 12
	QInt32     DataType = 13
	BFloat16   DataType = 14
	QInt16     DataType = 15
	QUint16    DataType = 16
	Uint16     DataType = 17
	Complex128 DataType = 18
	Half       DataType = 19
	Resource   DataType = 20
	Variant    DataType = 21
	Uint32     DataType = 22
	Uint64     DataType = 23
)

// VariableSize is returned by Size for dtypes without a fixed element width.
const VariableSize = -1

// Class is the broad category of a data type.
type Class int

// Data type classes.
const (
	ClassOpaque Class = iota
	ClassFloat
	ClassSignedInt
	ClassUnsignedInt
	ClassBool
	ClassComplex
	ClassString
)

// String returns a human-readable name for the class.
func (c Class) String() string {
	switch c {
	case ClassFloat:
		return "float"
	case ClassSignedInt:
		return "signed-int"
	case ClassUnsignedInt:
		return "unsigned-int"
	case ClassBool:
		return "bool"
	case ClassComplex:
		return "complex"
	case ClassString:
		return "string"
	default:
		return "opaque"
	}
}

// Size returns the byte size of one element, or VariableSize for strings,
// opaque kinds and unknown values.
func (dt DataType) Size() int {
	switch dt {
	case Int8, Uint8, Bool:
		return 1
	case Int16, Uint16, Half, BFloat16:
		return 2
	case Float32, Int32, Uint32:
		return 4
	case Float64, Int64, Uint64, Complex64:
		return 8
	case Complex128:
		return 16
	default:
		return VariableSize
	}
}

// ByteSize returns the fixed element width of dt.
// It fails with ErrUnsupportedDType when dt has no fixed width.
func (dt DataType) ByteSize() (int, error) {
	size := dt.Size()
	if size == VariableSize {
		return 0, fmt.Errorf("%w: %s has no fixed element width", ErrUnsupportedDType, dt)
	}
	return size, nil
}

// Class returns the category of dt.
func (dt DataType) Class() Class {
	switch dt {
	case Float32, Float64, Half, BFloat16:
		return ClassFloat
	case Int8, Int16, Int32, Int64:
		return ClassSignedInt
	case Uint8, Uint16, Uint32, Uint64:
		return ClassUnsignedInt
	case Bool:
		return ClassBool
	case Complex64, Complex128:
		return ClassComplex
	case String:
		return ClassString
	default:
		return ClassOpaque
	}
}

// IsValid reports whether dt is a known tag.
func (dt DataType) IsValid() bool {
	return dt > Invalid && dt <= Uint64
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Uint8:
		return "uint8"
	case Int16:
		return "int16"
	case Int8:
		return "int8"
	case String:
		return "string"
	case Complex64:
		return "complex64"
	case Int64:
		return "int64"
	case Bool:
		return "bool"
	case QInt8:
		return "qint8"
	case QUint8:
		return "quint8"
	case QInt32:
		return "qint32"
	case BFloat16:
		return "bfloat16"
	case QInt16:
		return "qint16"
	case QUint16:
		return "quint16"
	case Uint16:
		return "uint16"
	case Complex128:
		return "complex128"
	case Half:
		return "float16"
	case Resource:
		return "resource"
	case Variant:
		return "variant"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	default:
		return "unknown"
	}
}

// ParseDataType returns the DataType named s, as printed by String.
func ParseDataType(s string) (DataType, error) {
	for dt := Float32; dt <= Uint64; dt++ {
		if dt.String() == s {
			return dt, nil
		}
	}
	return Invalid, fmt.Errorf("%w: unknown dtype %q", ErrInvalidArgument, s)
}

var hostTypes = map[DataType]reflect.Type{
	Bool:       reflect.TypeFor[bool](),
	Int8:       reflect.TypeFor[int8](),
	Int16:      reflect.TypeFor[int16](),
	Int32:      reflect.TypeFor[int32](),
	Int64:      reflect.TypeFor[int64](),
	Uint8:      reflect.TypeFor[uint8](),
	Uint16:     reflect.TypeFor[uint16](),
	Uint32:     reflect.TypeFor[uint32](),
	Uint64:     reflect.TypeFor[uint64](),
	Float32:    reflect.TypeFor[float32](),
	Float64:    reflect.TypeFor[float64](),
	Complex64:  reflect.TypeFor[complex64](),
	Complex128: reflect.TypeFor[complex128](),
	String:     reflect.TypeFor[string](),
}

// HostType returns the Go type that holds one element of dt.
// The boolean is false for dtypes that have no Go representation, such as
// quantized, half precision, resource and variant kinds.
func (dt DataType) HostType() (reflect.Type, bool) {
	t, ok := hostTypes[dt]
	return t, ok
}

// FromHostType returns the dtype for Go type t. Named types are mapped by
// their underlying kind. int and uint widen to Int64 and Uint64. uintptr and
// all composite kinds fail with ErrNoMapping.
func FromHostType(t reflect.Type) (DataType, error) {
	if t == nil {
		return Invalid, fmt.Errorf("%w: nil type", ErrNoMapping)
	}

	switch t.Kind() {
	case reflect.Bool:
		return Bool, nil
	case reflect.Int8:
		return Int8, nil
	case reflect.Int16:
		return Int16, nil
	case reflect.Int32:
		return Int32, nil
	case reflect.Int64, reflect.Int:
		return Int64, nil
	case reflect.Uint8:
		return Uint8, nil
	case reflect.Uint16:
		return Uint16, nil
	case reflect.Uint32:
		return Uint32, nil
	case reflect.Uint64, reflect.Uint:
		return Uint64, nil
	case reflect.Float32:
		return Float32, nil
	case reflect.Float64:
		return Float64, nil
	case reflect.Complex64:
		return Complex64, nil
	case reflect.Complex128:
		return Complex128, nil
	case reflect.String:
		return String, nil
	default:
		return Invalid, fmt.Errorf("%w: %v", ErrNoMapping, t)
	}
}

// inferDataType infers DataType from a generic type T.
func inferDataType[T DType]() DataType {
	dt, err := FromHostType(reflect.TypeFor[T]())
	if err != nil {
		// Unreachable: the DType constraint only admits mapped kinds.
		panic(err)
	}
	return dt
}
