package vfs

import (
	"errors"
	"fmt"

	"github.com/meigma/vfs/internal/blockstore"
	"github.com/meigma/vfs/internal/meta"
)

// DefragStats summarizes a defragmentation run.
type DefragStats struct {
	// Swaps is the number of adjacent block exchanges performed.
	Swaps int

	// Moved is the number of blocks that were pushed down to the cursor.
	Moved int
}

// Defrag compacts the block store so that the blocks of the first file
// occupy the lowest indices, followed by the blocks of the second file, and
// so on, with free blocks at the end. See DefragWithStats.
func (a *Archive) Defrag() error {
	_, err := a.DefragWithStats()
	return err
}

// DefragWithStats compacts the block store and reports the work done.
//
// Blocks are moved only by exchanging physically adjacent blocks, payload
// and ownership together, so the run needs two block-sized buffers and no
// spare blocks. A second run on a compacted archive performs no swaps.
//
// If a swap fails, the run stops with ErrArchiveNotReadable or
// ErrArchiveNotWritable. Swaps that completed are kept and committed on a
// best effort basis; nothing is rolled back.
func (a *Archive) DefragWithStats() (stats DefragStats, err error) {
	store, err := blockstore.Open(a.storePath, a.info.BlockSize, a.info.BlockCount, true)
	if err != nil {
		return stats, fmt.Errorf("%w: %w", ErrArchiveNotWritable, err)
	}
	defer store.Close()

	a.log().Info("defragmenting archive", "path", a.path, "files", len(a.info.Files))

	d := defragmenter{
		info:  a.info,
		store: store,
		bufA:  make([]byte, a.info.BlockSize),
		bufB:  make([]byte, a.info.BlockSize),
	}
	runErr := d.run()
	stats = d.stats

	if runErr != nil {
		if stats.Swaps > 0 {
			if cerr := a.commit(a.info); cerr != nil {
				a.log().Warn("defrag progress not committed", "swaps", stats.Swaps, "error", cerr)
			}
		}
		return stats, runErr
	}
	if err := a.commit(a.info); err != nil {
		return stats, err
	}

	a.log().Info("archive defragmented", "swaps", stats.Swaps, "moved", stats.Moved)
	return stats, nil
}

// defragmenter performs an insertion sort of the block table keyed by file
// index, using adjacent block swaps as the only primitive.
type defragmenter struct {
	info  *meta.Info
	store *blockstore.Store
	bufA  []byte
	bufB  []byte
	stats DefragStats
}

func (d *defragmenter) run() error {
	cursor := 0
	for i := range d.info.Files {
		owner := int64(i)
		for j := cursor; j < len(d.info.Blocks); j++ {
			if d.info.Blocks[j] != owner {
				continue
			}
			if j > cursor {
				if err := d.pushDown(j, cursor); err != nil {
					return err
				}
				d.stats.Moved++
			}
			cursor++
		}
	}
	return nil
}

// pushDown moves block from to position to by swapping it with each lower
// neighbour in turn. Blocks in [to, from) shift up by one.
func (d *defragmenter) pushDown(from, to int) error {
	for k := from; k > to; k-- {
		if err := d.store.Swap(k-1, k, d.bufA, d.bufB); err != nil {
			if errors.Is(err, ErrStoreNotReadable) {
				return fmt.Errorf("%w: swap %d/%d: %w", ErrArchiveNotReadable, k-1, k, err)
			}
			return fmt.Errorf("%w: swap %d/%d: %w", ErrArchiveNotWritable, k-1, k, err)
		}
		d.info.SwapBlocks(k-1, k)
		d.stats.Swaps++
	}
	return nil
}
