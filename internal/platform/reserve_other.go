//go:build !linux

package platform

import "os"

// Reserve is not implemented on this platform.
func Reserve(*os.File, int64) error {
	return ErrUnsupported
}
