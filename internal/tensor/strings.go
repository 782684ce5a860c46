package tensor

import (
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/born-ml/tensorbuf/internal/ndarray"
)

// String tensor layout
//
// A string tensor of n elements is an offset table of n little-endian uint64
// values followed by the element payloads. Offset i is relative to the end of
// the table. Each payload is an unsigned varint byte count followed by the
// bytes themselves. A scalar string is the n = 1 case: an 8-byte zero header
// and one length-prefixed run.

// StringOffsetSize is the width of one offset table entry.
const StringOffsetSize = 8

// EncodedStringSize returns the payload size of s: its varint length prefix
// plus its bytes.
func EncodedStringSize(s string) int {
	var prefix [binary.MaxVarintLen64]byte
	return binary.PutUvarint(prefix[:], uint64(len(s))) + len(s)
}

// StringsByteLength returns the buffer size needed to encode values.
func StringsByteLength(values []string) int {
	n := len(values) * StringOffsetSize
	for _, s := range values {
		n += EncodedStringSize(s)
	}
	return n
}

// EncodeStrings returns the string tensor encoding of values.
func EncodeStrings(values []string) []byte {
	buf := make([]byte, StringsByteLength(values))
	encodeStringsInto(buf, values)
	return buf
}

// encodeStringsInto writes values into buf, which must be exactly
// StringsByteLength(values) bytes.
func encodeStringsInto(buf []byte, values []string) {
	table := len(values) * StringOffsetSize
	off := 0
	for i, s := range values {
		binary.LittleEndian.PutUint64(buf[i*StringOffsetSize:], uint64(off))
		n := binary.PutUvarint(buf[table+off:], uint64(len(s)))
		copy(buf[table+off+n:], s)
		off += n + len(s)
	}
}

// StringOffset reads entry i of the offset table.
func StringOffset(buf []byte, i int) (uint64, error) {
	start := i * StringOffsetSize
	if i < 0 || start+StringOffsetSize > len(buf) {
		return 0, fmt.Errorf("%w: offset entry %d outside %d-byte buffer", ErrInvalidArgument, i, len(buf))
	}
	return binary.LittleEndian.Uint64(buf[start:]), nil
}

// DecodeString decodes the length-prefixed run starting at offset and returns
// the string and the number of bytes consumed.
func DecodeString(buf []byte, offset int) (string, int, error) {
	if offset < 0 || offset >= len(buf) {
		return "", 0, fmt.Errorf("%w: string offset %d outside %d-byte buffer", ErrInvalidArgument, offset, len(buf))
	}
	length, k := binary.Uvarint(buf[offset:])
	if k <= 0 {
		return "", 0, fmt.Errorf("%w: malformed length prefix at offset %d", ErrInvalidArgument, offset)
	}
	start := offset + k
	if length > uint64(len(buf)-start) {
		return "", 0, fmt.Errorf("%w: string of %d bytes at offset %d exceeds buffer", ErrInvalidArgument, length, offset)
	}
	end := start + int(length)
	return string(buf[start:end]), end - offset, nil
}

// DecodeStrings decodes n strings from a string tensor buffer.
func DecodeStrings(buf []byte, n int) ([]string, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative element count %d", ErrInvalidArgument, n)
	}
	table := n * StringOffsetSize
	if table > len(buf) {
		return nil, fmt.Errorf("%w: %d-byte buffer too short for %d offsets", ErrInvalidArgument, len(buf), n)
	}

	values := make([]string, n)
	for i := range values {
		off, err := StringOffset(buf, i)
		if err != nil {
			return nil, err
		}
		if off > uint64(len(buf)-table) {
			return nil, fmt.Errorf("%w: offset %d of element %d exceeds payload", ErrInvalidArgument, off, i)
		}
		s, _, err := DecodeString(buf[table:], int(off))
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		values[i] = s
	}
	return values, nil
}

// FromString creates a scalar string tensor.
func FromString(s string) (*Tensor, error) {
	return FromStrings([]string{s}, Shape{})
}

// FromStrings creates a string tensor of the given shape from values in
// row-major order.
func FromStrings(values []string, shape Shape) (*Tensor, error) {
	if shape == nil {
		return nil, fmt.Errorf("%w: nil shape", ErrInvalidArgument)
	}
	n, err := shape.Elements()
	if err != nil {
		return nil, err
	}
	if n != len(values) {
		return nil, fmt.Errorf("%w: shape %v requires %d strings, but got %d", ErrInvalidArgument, shape, n, len(values))
	}

	t := allocate(String, shape, StringsByteLength(values))
	encodeStringsInto(t.h.data, values)
	return t, nil
}

// Strings decodes every element of a string tensor in row-major order.
func Strings(t *Tensor) ([]string, error) {
	data, err := t.Bytes()
	if err != nil {
		return nil, err
	}
	if t.dtype != String {
		return nil, fmt.Errorf("%w: tensor is %s, requested string", ErrTypeMismatch, t.dtype)
	}
	return DecodeStrings(data, t.shape.NumElements())
}

// fromStringValue converts a string or an array of strings. Ragged arrays
// are padded with empty strings when padding is enabled.
func fromStringValue(rv reflect.Value, o Options) (*Tensor, error) {
	rv = ndarray.Indirect(rv)
	if !ndarray.IsArray(rv) {
		return FromString(rv.String())
	}

	shape := Shape(ndarray.Length(rv, true, true))
	n, err := shape.Elements()
	if err != nil {
		return nil, conversionError("encode", String, shape, err, "element count")
	}
	if total := ndarray.TotalLength(rv, true, false); total != n && !o.Pad {
		return nil, conversionError("densify", String, shape, ErrInvalidArgument,
			"ragged input holds %d of %d elements; enable padding to fill with empty strings", total, n)
	}

	values := make([]string, n)
	strides := shape.ComputeStrides()
	err = ndarray.Walk(rv, func(index []int, leaf reflect.Value) error {
		if leaf.Kind() != reflect.String {
			return fmt.Errorf("%w: cannot store %v as string", ErrTypeMismatch, leaf.Type())
		}
		off := 0
		for k, idx := range index {
			off += idx * strides[k]
		}
		values[off] = leaf.String()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromStrings(values, shape)
}
