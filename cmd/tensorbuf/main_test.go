package main

import (
	"bytes"
	"testing"

	"github.com/born-ml/tensorbuf/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), err
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "tensorbuf "+version+"\n", out)
}

func TestUsage(t *testing.T) {
	out, err := runCLI(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Commands:")

	_, err = runCLI(t, "train")
	assert.ErrorIs(t, err, errUsage)
}

func TestEncodeRectangular(t *testing.T) {
	out, err := runCLI(t, "encode", "-dtype", "int32", "[[1,2,3],[4,5,6]]")
	require.NoError(t, err)

	assert.Contains(t, out, "dtype:  int32 (signed-int)")
	assert.Contains(t, out, "shape:  [2 3]")
	assert.Contains(t, out, "bytes:  24 (owned)")
	assert.Contains(t, out, "hex:    01000000 02000000 03000000")
	assert.Contains(t, out, "value:  [[1 2 3] [4 5 6]]")
}

func TestEncodeFlatIsBorrowed(t *testing.T) {
	out, err := runCLI(t, "encode", "-dtype", "float64", "[1.5, 2]")
	require.NoError(t, err)
	assert.Contains(t, out, "bytes:  16 (borrowed)")
	assert.Contains(t, out, "value:  [1.5 2]")

	out, err = runCLI(t, "encode", "-dtype", "float64", "-copy", "[1.5, 2]")
	require.NoError(t, err)
	assert.Contains(t, out, "bytes:  16 (owned)")
}

func TestEncodeScalar(t *testing.T) {
	out, err := runCLI(t, "encode", "-dtype", "bool", "true")
	require.NoError(t, err)
	assert.Contains(t, out, "shape:  []")
	assert.Contains(t, out, "hex:    01")
	assert.Contains(t, out, "value:  true")
}

func TestEncodeRagged(t *testing.T) {
	_, err := runCLI(t, "encode", "-dtype", "int32", "[[1,2],[3,4,5]]")
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument)

	out, err := runCLI(t, "encode", "-dtype", "int32", "-pad", "-jagged", "[[1,2],[3,4,5]]")
	require.NoError(t, err)
	assert.Contains(t, out, "shape:  [2 3]")
	assert.Contains(t, out, "value:  [[1 2 0] [3 4 5]]")
}

func TestEncodeHalf(t *testing.T) {
	out, err := runCLI(t, "encode", "-dtype", "float16", "[1, 0.5]")
	require.NoError(t, err)
	assert.Contains(t, out, "dtype:  float16 (float)")
	assert.Contains(t, out, "hex:    003c 0038")
	assert.Contains(t, out, "value:  [1 0.5]")
}

func TestEncodeStrings(t *testing.T) {
	out, err := runCLI(t, "encode", "-dtype", "string", `[["a","bc"],["d","e"]]`)
	require.NoError(t, err)
	assert.Contains(t, out, "shape:  [2 2]")
	assert.Contains(t, out, `value:  ["a" "bc" "d" "e"]`)
}

func TestEncodeErrors(t *testing.T) {
	_, err := runCLI(t, "encode", "-dtype", "uint8", "[300]")
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument)

	_, err = runCLI(t, "encode", "-dtype", "complex64", "[1]")
	assert.ErrorIs(t, err, tensor.ErrNotImplemented)

	_, err = runCLI(t, "encode", "-dtype", "qint8", "[1]")
	assert.ErrorIs(t, err, tensor.ErrNoMapping)

	_, err = runCLI(t, "encode", "-dtype", "float128", "[1]")
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument)

	_, err = runCLI(t, "encode", "-dtype", "int32")
	assert.ErrorIs(t, err, errUsage)

	_, err = runCLI(t, "encode", "-dtype", "int32", "[1,")
	assert.Error(t, err)
}

func TestStringCommand(t *testing.T) {
	out, err := runCLI(t, "string", "hi")
	require.NoError(t, err)
	assert.Contains(t, out, "offset[0]: 0")
	assert.Contains(t, out, "bytes:  11 (owned)")
	assert.Contains(t, out, `value:  ["hi"]`)

	out, err = runCLI(t, "string", "a", "bcd")
	require.NoError(t, err)
	assert.Contains(t, out, "offset[1]: 2")
	assert.Contains(t, out, "shape:  [2]")

	_, err = runCLI(t, "string")
	assert.ErrorIs(t, err, errUsage)
}

func TestVerboseLogging(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"encode", "-v", "-dtype", "int8", "[1,2]"}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "tensor created")
	assert.Contains(t, stderr.String(), "tensor released")
}
