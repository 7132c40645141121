package vfs

import (
	"fmt"

	"github.com/meigma/vfs/internal/blockstore"
	"github.com/meigma/vfs/internal/sizing"
)

// Stats summarizes archive capacity and layout.
type Stats struct {
	BlockSize  uint64
	BlockCount uint64
	FreeBlocks uint64
	UsedBlocks uint64
	FreeBytes  uint64
	UsedBytes  uint64
	Files      int

	// Fragmented counts files whose blocks are not physically adjacent.
	Fragmented int
}

// Stats returns capacity and layout figures computed from the metadata.
func (a *Archive) Stats() Stats {
	free := a.info.FreeBlockCount()
	s := Stats{
		BlockSize:  a.info.BlockSize,
		BlockCount: a.info.BlockCount,
		FreeBlocks: free,
		UsedBlocks: a.info.BlockCount - free,
		FreeBytes:  a.info.FreeBytes(),
		UsedBytes:  a.info.UsedBytes(),
		Files:      len(a.info.Files),
	}
	for i := range a.info.Files {
		if !a.info.Contiguous(i) {
			s.Fragmented++
		}
	}
	return s
}

// Check verifies that the metadata is self-consistent and that the block
// store has exactly the expected length. Failures match ErrCorruptMetadata.
func (a *Archive) Check() error {
	if err := a.info.Validate(); err != nil {
		return err
	}

	store, err := blockstore.Open(a.storePath, a.info.BlockSize, a.info.BlockCount, false)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrArchiveNotReadable, err)
	}
	defer store.Close()

	size, err := store.Size()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrArchiveNotReadable, err)
	}
	want, err := sizing.ToInt64(a.info.Capacity(), ErrCorruptMetadata)
	if err != nil {
		return err
	}
	if size != want {
		return fmt.Errorf("%w: block store is %d bytes, want %d", ErrCorruptMetadata, size, want)
	}
	return nil
}
