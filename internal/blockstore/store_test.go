package blockstore

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/vfs/internal/vfstype"
)

func newStore(t *testing.T, blockSize, blockCount uint64) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.store")
	require.NoError(t, Initialize(path, blockSize, blockCount, false))
	s, err := Open(path, blockSize, blockCount, true)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestInitializeZeroFills(t *testing.T) {
	t.Parallel()

	for _, prealloc := range []bool{false, true} {
		path := filepath.Join(t.TempDir(), "archive.store")
		require.NoError(t, Initialize(path, 4, 4, prealloc))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, make([]byte, 16), data)
	}
}

func TestInitializeRefusesExisting(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "archive.store")
	require.NoError(t, os.WriteFile(path, []byte("keep"), 0o644))

	err := Initialize(path, 4, 4, false)
	require.ErrorIs(t, err, vfstype.ErrAlreadyExists)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("keep"), data)
}

func TestInitializeErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.ErrorIs(t, Initialize(filepath.Join(dir, "zero"), 0, 4, false), vfstype.ErrInvalidSize)
	require.ErrorIs(t, Initialize(filepath.Join(dir, "missing", "x.store"), 4, 4, false), vfstype.ErrStoreNotWritable)
}

func TestWriteReadBlock(t *testing.T) {
	t.Parallel()

	s, path := newStore(t, 4, 4)
	require.NoError(t, s.WriteBlock(1, []byte("abcd")))
	require.NoError(t, s.WriteBlock(3, []byte("z")))

	buf := make([]byte, 4)
	require.NoError(t, s.ReadBlock(1, buf))
	assert.Equal(t, []byte("abcd"), buf)

	short := make([]byte, 2)
	require.NoError(t, s.ReadBlock(3, short))
	assert.Equal(t, []byte{'z', 0}, short)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x00\x00\x00\x00abcd\x00\x00\x00\x00z\x00\x00\x00"), data)

	size, err := s.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(16), size)
}

func TestBlockBounds(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t, 4, 2)
	require.ErrorIs(t, s.WriteBlock(2, []byte("a")), vfstype.ErrStoreNotWritable)
	require.ErrorIs(t, s.WriteBlock(-1, []byte("a")), vfstype.ErrStoreNotWritable)
	require.ErrorIs(t, s.WriteBlock(0, []byte("abcde")), vfstype.ErrStoreNotWritable)
	require.ErrorIs(t, s.ReadBlock(5, make([]byte, 1)), vfstype.ErrStoreNotReadable)
}

func TestReadOnlyStoreRejectsWrites(t *testing.T) {
	t.Parallel()

	_, path := newStore(t, 4, 2)
	ro, err := Open(path, 4, 2, false)
	require.NoError(t, err)
	defer ro.Close()

	require.ErrorIs(t, ro.WriteBlock(0, []byte("a")), vfstype.ErrStoreNotWritable)
}

func TestOpenMissing(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope.store")
	_, err := Open(missing, 4, 2, false)
	require.ErrorIs(t, err, vfstype.ErrStoreNotReadable)
	_, err = Open(missing, 4, 2, true)
	require.ErrorIs(t, err, vfstype.ErrStoreNotWritable)
}

func TestSwap(t *testing.T) {
	t.Parallel()

	s, path := newStore(t, 3, 3)
	require.NoError(t, s.WriteBlock(0, []byte("aaa")))
	require.NoError(t, s.WriteBlock(2, []byte("ccc")))

	bufA, bufB := make([]byte, 3), make([]byte, 3)
	require.NoError(t, s.Swap(0, 2, bufA, bufB))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("ccc\x00\x00\x00aaa"), data)

	require.ErrorIs(t, s.Swap(0, 1, make([]byte, 2), bufB), vfstype.ErrInvalidSize)
	assert.True(t, bytes.Equal(bufA, []byte("aaa")))
}
