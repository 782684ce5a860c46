package tensor

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrUnsupportedDType = errors.New("unsupported dtype")
	ErrNoMapping        = errors.New("no host type mapping")
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrShapeOverflow    = errors.New("shape overflow")
	ErrNotImplemented   = errors.New("not implemented")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrUseAfterFree     = errors.New("tensor used after release")
)

// ConversionError provides detailed information about a failed conversion
// between a host value and a tensor buffer.
type ConversionError struct {
	Op      string   // Operation (e.g., "encode", "decode", "densify")
	DType   DataType // Data type involved
	Shape   Shape    // Shape involved, nil when unknown
	Details string   // Additional details
	Err     error    // Underlying sentinel error
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	if e.Shape != nil {
		return fmt.Sprintf("%s %s%v: %s: %v", e.Op, e.DType, e.Shape, e.Details, e.Err)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.DType, e.Details, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *ConversionError) Unwrap() error {
	return e.Err
}

func conversionError(op string, dt DataType, shape Shape, err error, format string, args ...any) error {
	return &ConversionError{
		Op:      op,
		DType:   dt,
		Shape:   shape,
		Details: fmt.Sprintf(format, args...),
		Err:     err,
	}
}
