// Package meta implements the in-memory archive metadata: the block
// ownership table and the file table.
//
// Info is pure data. Nothing in this package performs I/O; the archive
// facade mutates an Info, moves payload bytes through the block store, and
// persists the result through the codec.
package meta

import (
	"fmt"

	"github.com/meigma/vfs/internal/sizing"
	"github.com/meigma/vfs/internal/vfstype"
)

// Free marks an ownership slot that belongs to no file.
const Free int64 = -1

// Entry is a file table record.
type Entry struct {
	// Name is the unique, case-sensitive file name.
	Name string

	// Size is the payload length in bytes.
	Size uint64
}

// Info is the complete persisted archive metadata.
//
// Blocks is indexed by physical block number and holds either Free or the
// position of the owning entry in Files. Positions in Files are the file
// identities, so any change to Files must renumber Blocks in lockstep.
type Info struct {
	BlockSize  uint64
	BlockCount uint64
	Blocks     []int64
	Files      []Entry
}

// New returns an empty Info with every block free.
func New(blockSize, blockCount uint64) (*Info, error) {
	if blockSize == 0 || blockCount == 0 {
		return nil, fmt.Errorf("%w: block size %d, block count %d", vfstype.ErrInvalidSize, blockSize, blockCount)
	}
	if _, ok := sizing.MulUint64(blockSize, blockCount); !ok {
		return nil, fmt.Errorf("%w: capacity overflows", vfstype.ErrInvalidSize)
	}
	n, err := sizing.ToInt(blockCount, vfstype.ErrInvalidSize)
	if err != nil {
		return nil, err
	}
	blocks := make([]int64, n)
	for i := range blocks {
		blocks[i] = Free
	}
	return &Info{
		BlockSize:  blockSize,
		BlockCount: blockCount,
		Blocks:     blocks,
	}, nil
}

// Clone returns a deep copy of the metadata.
func (m *Info) Clone() *Info {
	c := &Info{
		BlockSize:  m.BlockSize,
		BlockCount: m.BlockCount,
		Blocks:     make([]int64, len(m.Blocks)),
		Files:      make([]Entry, len(m.Files)),
	}
	copy(c.Blocks, m.Blocks)
	copy(c.Files, m.Files)
	return c
}

// Capacity returns BlockCount * BlockSize.
func (m *Info) Capacity() uint64 {
	return m.BlockCount * m.BlockSize
}

// HasFile reports whether name is stored.
func (m *Info) HasFile(name string) bool {
	_, ok := m.FileIndex(name)
	return ok
}

// FileIndex returns the position of name in the file table.
func (m *Info) FileIndex(name string) (int, bool) {
	for i := range m.Files {
		if m.Files[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

// FreeBlockCount returns the number of unowned blocks.
func (m *Info) FreeBlockCount() uint64 {
	var n uint64
	for _, owner := range m.Blocks {
		if owner == Free {
			n++
		}
	}
	return n
}

// NeededBlocks returns the number of blocks a payload of size bytes occupies.
func (m *Info) NeededBlocks(size uint64) uint64 {
	return sizing.CeilDiv(size, m.BlockSize)
}

// SelectFreeBlocks returns the first count free blocks in ascending
// physical order. The blocks need not be adjacent.
func (m *Info) SelectFreeBlocks(count uint64) ([]int, error) {
	if count > m.FreeBlockCount() {
		return nil, fmt.Errorf("%w: need %d, have %d", vfstype.ErrInsufficientBlocks, count, m.FreeBlockCount())
	}
	selected := make([]int, 0, count)
	for i, owner := range m.Blocks {
		if uint64(len(selected)) == count {
			break
		}
		if owner == Free {
			selected = append(selected, i)
		}
	}
	return selected, nil
}

// AddFile appends an entry and assigns blocks to it.
//
// blocks must be free and hold exactly NeededBlocks(size) indices, normally
// the result of SelectFreeBlocks.
func (m *Info) AddFile(name string, size uint64, blocks []int) error {
	if name == "" {
		return vfstype.ErrInvalidName
	}
	if m.HasFile(name) {
		return fmt.Errorf("%w: %s", vfstype.ErrFileAlreadyExists, name)
	}
	if uint64(len(blocks)) != m.NeededBlocks(size) {
		return fmt.Errorf("%w: %d blocks given for %d bytes", vfstype.ErrInsufficientBlocks, len(blocks), size)
	}
	for _, b := range blocks {
		if b < 0 || b >= len(m.Blocks) || m.Blocks[b] != Free {
			return fmt.Errorf("%w: block %d is not free", vfstype.ErrInsufficientBlocks, b)
		}
	}

	idx := int64(len(m.Files))
	m.Files = append(m.Files, Entry{Name: name, Size: size})
	for _, b := range blocks {
		m.Blocks[b] = idx
	}
	return nil
}

// AllocatedBlocks returns the blocks owned by name in ascending physical
// order, which is also the order its payload was written in.
func (m *Info) AllocatedBlocks(name string) []int {
	idx, ok := m.FileIndex(name)
	if !ok {
		return nil
	}
	return m.blocksOf(idx)
}

func (m *Info) blocksOf(idx int) []int {
	var blocks []int
	for i, owner := range m.Blocks {
		if owner == int64(idx) {
			blocks = append(blocks, i)
		}
	}
	return blocks
}

// DeleteFile removes name, frees its blocks and renumbers the owners of
// every later entry. It reports whether name was present.
func (m *Info) DeleteFile(name string) bool {
	idx, ok := m.FileIndex(name)
	if !ok {
		return false
	}
	m.Files = append(m.Files[:idx], m.Files[idx+1:]...)

	removed := int64(idx)
	for i, owner := range m.Blocks {
		switch {
		case owner == removed:
			m.Blocks[i] = Free
		case owner > removed:
			m.Blocks[i] = owner - 1
		}
	}
	return true
}

// SwapBlocks exchanges the owners of two physical blocks.
func (m *Info) SwapBlocks(a, b int) {
	m.Blocks[a], m.Blocks[b] = m.Blocks[b], m.Blocks[a]
}

// Contiguous reports whether the file at idx occupies adjacent blocks.
// Files with zero or one block are always contiguous.
func (m *Info) Contiguous(idx int) bool {
	blocks := m.blocksOf(idx)
	for i := 1; i < len(blocks); i++ {
		if blocks[i] != blocks[i-1]+1 {
			return false
		}
	}
	return true
}

// UsedBytes returns the sum of all file sizes.
func (m *Info) UsedBytes() uint64 {
	var n uint64
	for _, f := range m.Files {
		n += f.Size
	}
	return n
}

// FreeBytes returns Capacity minus UsedBytes.
func (m *Info) FreeBytes() uint64 {
	return m.Capacity() - m.UsedBytes()
}

// Validate checks the structural invariants tying the two tables together.
func (m *Info) Validate() error {
	if m.BlockSize == 0 || m.BlockCount == 0 {
		return fmt.Errorf("%w: block size %d, block count %d", vfstype.ErrCorruptMetadata, m.BlockSize, m.BlockCount)
	}
	if _, ok := sizing.MulUint64(m.BlockSize, m.BlockCount); !ok {
		return fmt.Errorf("%w: capacity overflows", vfstype.ErrCorruptMetadata)
	}
	if uint64(len(m.Blocks)) != m.BlockCount {
		return fmt.Errorf("%w: block table has %d slots, want %d", vfstype.ErrCorruptMetadata, len(m.Blocks), m.BlockCount)
	}

	counts := make([]uint64, len(m.Files))
	for i, owner := range m.Blocks {
		if owner == Free {
			continue
		}
		if owner < 0 || owner >= int64(len(m.Files)) {
			return fmt.Errorf("%w: block %d owned by unknown file %d", vfstype.ErrCorruptMetadata, i, owner)
		}
		counts[owner]++
	}

	seen := make(map[string]struct{}, len(m.Files))
	for i, f := range m.Files {
		if f.Name == "" {
			return fmt.Errorf("%w: file %d has an empty name", vfstype.ErrCorruptMetadata, i)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: duplicate file name %q", vfstype.ErrCorruptMetadata, f.Name)
		}
		seen[f.Name] = struct{}{}
		if want := m.NeededBlocks(f.Size); counts[i] != want {
			return fmt.Errorf("%w: file %q owns %d blocks, want %d", vfstype.ErrCorruptMetadata, f.Name, counts[i], want)
		}
	}
	return nil
}
