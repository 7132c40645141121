package vfs

import "log/slog"

// Option configures an Archive.
type Option func(*Archive)

// WithLogger sets the logger used for operation events.
// A nil logger discards all output.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archive) {
		a.logger = logger
	}
}

// WithAtomicCommit controls how the structure store is rewritten.
//
// When true (the default), metadata is written to a temporary file in the
// same directory and renamed over the structure store, so a crash leaves
// either the old or the new metadata. When false, the structure store is
// truncated and rewritten in place.
func WithAtomicCommit(enabled bool) Option {
	return func(a *Archive) {
		a.atomicCommit = enabled
	}
}

// WithPreallocate reserves disk space for the whole block store at
// creation time where the platform supports it. By default the block store
// is created sparse. Only Create consults this option.
func WithPreallocate(enabled bool) Option {
	return func(a *Archive) {
		a.preallocate = enabled
	}
}
