//go:build unix

package mapped

import (
	"os"
	"syscall"
)

// mmapFile maps the first size bytes of f read-only. Open slices the tensor
// region out of the result and hands the whole mapping to unmapper.
func mmapFile(f *os.File, size int64) ([]byte, error) {
	return syscall.Mmap(
		int(f.Fd()), //nolint:gosec // G115: file descriptor fits in int
		0,
		int(size), //nolint:gosec // G115: file size validated by caller
		syscall.PROT_READ,
		syscall.MAP_SHARED,
	)
}

// munmapFile unmaps a region returned by mmapFile.
func munmapFile(data []byte) error {
	return syscall.Munmap(data)
}
