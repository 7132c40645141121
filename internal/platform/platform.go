// Package platform isolates OS specific file operations.
package platform

import "errors"

// ErrUnsupported is returned when the platform or filesystem cannot perform
// the requested operation.
var ErrUnsupported = errors.New("operation not supported on this platform")
