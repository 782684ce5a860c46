//go:build !unix && !windows

package mapped

import (
	"fmt"
	"os"
	"runtime"

	"github.com/born-ml/tensorbuf/internal/tensor"
)

func mmapFile(_ *os.File, _ int64) ([]byte, error) {
	return nil, fmt.Errorf("%w: mmap on %s", tensor.ErrNotImplemented, runtime.GOOS)
}

func munmapFile(_ []byte) error {
	return nil
}
