// Package blockstore reads and writes fixed-size blocks in the block store
// file.
//
// The store has no header: block i occupies bytes
// [i*blockSize, (i+1)*blockSize) and a new store is exactly
// blockCount*blockSize zero bytes long.
package blockstore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/meigma/vfs/internal/platform"
	"github.com/meigma/vfs/internal/sizing"
	"github.com/meigma/vfs/internal/vfstype"
)

// Store is an open block store file.
type Store struct {
	f          *os.File
	blockSize  uint64
	blockCount uint64
}

// Initialize creates a zero-filled block store at path.
//
// The file is created exclusively; an existing file fails with
// vfstype.ErrAlreadyExists. When preallocate is set, disk space is reserved
// up front where the platform supports it; otherwise the store is sparse.
func Initialize(path string, blockSize, blockCount uint64, preallocate bool) (err error) {
	capacity, ok := sizing.MulUint64(blockSize, blockCount)
	if !ok || blockSize == 0 || blockCount == 0 {
		return fmt.Errorf("%w: block size %d, block count %d", vfstype.ErrInvalidSize, blockSize, blockCount)
	}
	size, err := sizing.ToInt64(capacity, vfstype.ErrInvalidSize)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", vfstype.ErrAlreadyExists, path)
		}
		return fmt.Errorf("%w: %w", vfstype.ErrStoreNotWritable, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", vfstype.ErrStoreNotWritable, cerr)
		}
	}()

	if preallocate {
		if rerr := platform.Reserve(f, size); rerr != nil && !errors.Is(rerr, platform.ErrUnsupported) {
			return fmt.Errorf("%w: reserve %d bytes: %w", vfstype.ErrStoreNotWritable, size, rerr)
		}
	}
	if err := f.Truncate(size); err != nil {
		return fmt.Errorf("%w: %w", vfstype.ErrStoreNotWritable, err)
	}
	return nil
}

// Open opens an existing block store. Read-only stores reject writes with
// vfstype.ErrStoreNotWritable.
func Open(path string, blockSize, blockCount uint64, writable bool) (*Store, error) {
	flag := os.O_RDONLY
	if writable {
		flag = os.O_RDWR
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		if writable {
			return nil, fmt.Errorf("%w: %w", vfstype.ErrStoreNotWritable, err)
		}
		return nil, fmt.Errorf("%w: %w", vfstype.ErrStoreNotReadable, err)
	}
	return &Store{f: f, blockSize: blockSize, blockCount: blockCount}, nil
}

// Close releases the underlying file.
func (s *Store) Close() error {
	return s.f.Close()
}

// BlockSize returns the size of one block in bytes.
func (s *Store) BlockSize() uint64 {
	return s.blockSize
}

// Size returns the current length of the store file.
func (s *Store) Size() (int64, error) {
	info, err := s.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", vfstype.ErrStoreNotReadable, err)
	}
	return info.Size(), nil
}

// WriteBlock writes p at the start of block index. p must not be longer
// than one block.
func (s *Store) WriteBlock(index int, p []byte) error {
	off, err := s.offset(index, len(p))
	if err != nil {
		return fmt.Errorf("%w: %w", vfstype.ErrStoreNotWritable, err)
	}
	if _, err := s.f.WriteAt(p, off); err != nil {
		return fmt.Errorf("%w: block %d: %w", vfstype.ErrStoreNotWritable, index, err)
	}
	return nil
}

// ReadBlock fills p from the start of block index. p must not be longer
// than one block.
func (s *Store) ReadBlock(index int, p []byte) error {
	off, err := s.offset(index, len(p))
	if err != nil {
		return fmt.Errorf("%w: %w", vfstype.ErrStoreNotReadable, err)
	}
	if _, err := s.f.ReadAt(p, off); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("%w: block %d: %w", vfstype.ErrStoreNotReadable, index, err)
	}
	return nil
}

// Swap exchanges the full contents of blocks a and b. bufA and bufB must
// each be exactly one block long; they are scratch space owned by the caller.
func (s *Store) Swap(a, b int, bufA, bufB []byte) error {
	if uint64(len(bufA)) != s.blockSize || uint64(len(bufB)) != s.blockSize {
		return fmt.Errorf("%w: swap buffers must be %d bytes", vfstype.ErrInvalidSize, s.blockSize)
	}
	if err := s.ReadBlock(a, bufA); err != nil {
		return err
	}
	if err := s.ReadBlock(b, bufB); err != nil {
		return err
	}
	if err := s.WriteBlock(a, bufB); err != nil {
		return err
	}
	return s.WriteBlock(b, bufA)
}

func (s *Store) offset(index, length int) (int64, error) {
	if index < 0 || uint64(index) >= s.blockCount {
		return 0, fmt.Errorf("block %d out of range [0, %d)", index, s.blockCount)
	}
	if uint64(length) > s.blockSize {
		return 0, fmt.Errorf("%d bytes exceed block size %d", length, s.blockSize)
	}
	return sizing.Offset(index, s.blockSize, vfstype.ErrInvalidSize)
}
