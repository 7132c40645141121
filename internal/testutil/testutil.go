// Package testutil provides helpers shared by the archive tests.
package testutil

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

// ErrInjected is returned by the failing readers and writers.
var ErrInjected = errors.New("testutil: injected failure")

// Payload returns n deterministic pseudo-random bytes for seed.
func Payload(seed int64, n int) []byte {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible test data
	data := make([]byte, n)
	rng.Read(data)
	return data
}

// ArchivePath returns a fresh archive path inside a temporary directory.
func ArchivePath(tb testing.TB) string {
	tb.Helper()
	return filepath.Join(tb.TempDir(), "archive")
}

// Snapshot holds the raw bytes of both archive stores.
type Snapshot struct {
	Structure []byte
	Store     []byte
}

// ReadStores returns the current bytes of the stores belonging to path.
func ReadStores(tb testing.TB, path string) Snapshot {
	tb.Helper()
	structure, err := os.ReadFile(path + ".structure")
	if err != nil {
		tb.Fatalf("read structure store: %v", err)
	}
	store, err := os.ReadFile(path + ".store")
	if err != nil {
		tb.Fatalf("read block store: %v", err)
	}
	return Snapshot{Structure: structure, Store: store}
}

// WriteSource writes data to a file named name in a temporary directory and
// returns its path.
func WriteSource(tb testing.TB, name string, data []byte) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatalf("write source: %v", err)
	}
	return path
}

// FailingReader yields its data and then fails with ErrInjected instead of
// io.EOF.
type FailingReader struct {
	Data []byte
}

// Read implements io.Reader.
func (r *FailingReader) Read(p []byte) (int, error) {
	if len(r.Data) == 0 {
		return 0, ErrInjected
	}
	n := copy(p, r.Data)
	r.Data = r.Data[n:]
	return n, nil
}

// FailingWriter accepts Limit bytes and then fails with ErrInjected.
type FailingWriter struct {
	Limit   int
	written int
}

// Write implements io.Writer.
func (w *FailingWriter) Write(p []byte) (int, error) {
	room := w.Limit - w.written
	if room <= 0 {
		return 0, ErrInjected
	}
	if len(p) > room {
		w.written += room
		return room, ErrInjected
	}
	w.written += len(p)
	return len(p), nil
}
