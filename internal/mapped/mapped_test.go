package mapped

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/born-ml/tensorbuf/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile writes data to a temporary file and returns its path.
func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "buf.bin")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func float32Bytes(values ...float32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func TestOpenFloat32(t *testing.T) {
	header := []byte("TBUF0000")
	path := writeFile(t, append(header, float32Bytes(1, 2, 3, 4)...))

	before := tensor.ReadStats()
	tt, err := Open(path, tensor.Float32, tensor.Shape{2, 2}, int64(len(header)))
	require.NoError(t, err)

	assert.Equal(t, tensor.External, tt.Ownership())
	v, err := tensor.Value(tt)
	require.NoError(t, err)
	assert.Equal(t, [][2]float32{{1, 2}, {3, 4}}, v)
	assert.Equal(t, before.LiveTensors+1, tensor.ReadStats().LiveTensors)

	tt.Release()
	_, err = tt.Bytes()
	assert.ErrorIs(t, err, tensor.ErrUseAfterFree)
	assert.Equal(t, before, tensor.ReadStats(), "mapped memory is not engine-owned")
}

func TestOpenStrings(t *testing.T) {
	values := []string{"alpha", "", "gamma"}
	path := writeFile(t, tensor.EncodeStrings(values))

	tt, err := Open(path, tensor.String, tensor.Shape{3}, 0)
	require.NoError(t, err)
	defer tt.Release()

	got, err := tensor.Strings(tt)
	require.NoError(t, err)
	assert.Equal(t, values, got)
}

func TestOpenErrors(t *testing.T) {
	path := writeFile(t, float32Bytes(1, 2, 3))

	_, err := Open(path, tensor.Float32, tensor.Shape{4}, 0)
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument, "file too short")

	_, err = Open(path, tensor.Float32, tensor.Shape{3}, 4)
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument, "offset leaves too few bytes")

	_, err = Open(path, tensor.Float32, tensor.Shape{1}, -1)
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument)

	_, err = Open(path, tensor.Float32, tensor.Shape{1}, 100)
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument)

	_, err = Open(path, tensor.Float32, nil, 0)
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument, "nil shape")

	_, err = Open(writeFile(t, nil), tensor.Uint8, tensor.Shape{0}, 0)
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument, "empty file")

	_, err = Open(filepath.Join(t.TempDir(), "missing.bin"), tensor.Uint8, tensor.Shape{1}, 0)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenPrefix(t *testing.T) {
	path := writeFile(t, []byte{1, 2, 3, 4, 5, 6})

	tt, err := Open(path, tensor.Uint8, tensor.Shape{2}, 1)
	require.NoError(t, err)
	defer tt.Release()

	got, err := tensor.Values[uint8](tt)
	require.NoError(t, err)
	assert.Equal(t, []uint8{2, 3}, got)
}
