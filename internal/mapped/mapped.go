// Package mapped wraps read-only memory-mapped file regions as tensors.
//
// The mapping is owned by the tensor: releasing it unmaps the region. The
// buffer returned by Tensor.Bytes is read-only; writing to it faults.
package mapped

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/born-ml/tensorbuf/internal/tensor"
)

// unmapper is the deallocator for mapped regions. Its context value is the
// whole mapping, which may start before the tensor's data.
type unmapper struct{}

func (unmapper) Release(_ []byte, ctx any) {
	region, ok := ctx.([]byte)
	if !ok || len(region) == 0 {
		return
	}
	if err := munmapFile(region); err != nil {
		tensor.Logger().Error("munmap failed", slog.Int("bytes", len(region)), slog.Any("error", err))
	}
}

// Open maps the file at path and returns a tensor over the bytes starting at
// offset. Fixed-width dtypes take exactly as many bytes as shape requires;
// string and opaque dtypes take the rest of the file.
//
// Example:
//
//	t, err := mapped.Open("weights.bin", tensor.Float32, tensor.Shape{1024, 768}, 0)
//	if err != nil {
//	    return err
//	}
//	defer t.Release()
func Open(path string, dtype tensor.DataType, shape tensor.Shape, offset int64) (*tensor.Tensor, error) {
	if offset < 0 {
		return nil, fmt.Errorf("%w: negative offset %d", tensor.ErrInvalidArgument, offset)
	}

	//nolint:gosec // G304: path is supplied by the caller by design of the API
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	// The mapping stays valid after the descriptor is closed.
	defer func() { _ = file.Close() }()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	size := stat.Size()
	if size == 0 {
		return nil, fmt.Errorf("%w: %s is empty", tensor.ErrInvalidArgument, path)
	}
	if offset > size {
		return nil, fmt.Errorf("%w: offset %d beyond file size %d", tensor.ErrInvalidArgument, offset, size)
	}

	want := size - offset
	if elemSize := dtype.Size(); elemSize != tensor.VariableSize {
		n, err := shape.Elements()
		if err != nil {
			return nil, err
		}
		if int64(n) > (size-offset)/int64(elemSize) {
			return nil, fmt.Errorf("%w: %s%v needs %d bytes at offset %d, file has %d",
				tensor.ErrInvalidArgument, dtype, shape, int64(n)*int64(elemSize), offset, size)
		}
		want = int64(n) * int64(elemSize)
	}

	region, err := mmapFile(file, size)
	if err != nil {
		return nil, fmt.Errorf("mmap failed: %w", err)
	}

	t, err := tensor.NewWithDeallocator(dtype, shape, region[offset:offset+want], unmapper{}, region)
	if err != nil {
		_ = munmapFile(region)
		return nil, err
	}
	return t, nil
}
