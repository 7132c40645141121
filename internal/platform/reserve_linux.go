//go:build linux

package platform

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// Reserve allocates size bytes of disk space for f without changing what
// reads return: the reserved range reads back as zeros.
//
// Filesystems that do not implement fallocate return ErrUnsupported so the
// caller can fall back to a sparse file.
func Reserve(f *os.File, size int64) error {
	if size == 0 {
		return nil
	}
	err := unix.Fallocate(int(f.Fd()), 0, 0, size)
	if errors.Is(err, unix.EOPNOTSUPP) || errors.Is(err, unix.ENOSYS) {
		return ErrUnsupported
	}
	return err
}
