package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/vfs/internal/vfstype"
)

func newInfo(t *testing.T, blockSize, blockCount uint64) *Info {
	t.Helper()
	m, err := New(blockSize, blockCount)
	require.NoError(t, err)
	return m
}

// add allocates and registers a file the way the archive facade does.
func add(t *testing.T, m *Info, name string, size uint64) []int {
	t.Helper()
	blocks, err := m.SelectFreeBlocks(m.NeededBlocks(size))
	require.NoError(t, err)
	require.NoError(t, m.AddFile(name, size, blocks))
	return blocks
}

func TestNew(t *testing.T) {
	t.Parallel()

	m := newInfo(t, 4, 4)
	assert.Equal(t, []int64{Free, Free, Free, Free}, m.Blocks)
	assert.Empty(t, m.Files)
	assert.Equal(t, uint64(16), m.Capacity())
	assert.Equal(t, uint64(4), m.FreeBlockCount())
	require.NoError(t, m.Validate())
}

func TestNewRejectsInvalidSizes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		blockSize  uint64
		blockCount uint64
	}{
		{"zero block size", 0, 4},
		{"zero block count", 4, 0},
		{"both zero", 0, 0},
		{"capacity overflow", 1 << 40, 1 << 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.blockSize, tt.blockCount)
			require.ErrorIs(t, err, vfstype.ErrInvalidSize)
		})
	}
}

func TestNeededBlocks(t *testing.T) {
	t.Parallel()

	m := newInfo(t, 4, 8)
	assert.Equal(t, uint64(0), m.NeededBlocks(0))
	assert.Equal(t, uint64(1), m.NeededBlocks(1))
	assert.Equal(t, uint64(1), m.NeededBlocks(4))
	assert.Equal(t, uint64(2), m.NeededBlocks(5))
	assert.Equal(t, uint64(5), m.NeededBlocks(20))
}

func TestSelectFreeBlocksScatters(t *testing.T) {
	t.Parallel()

	m := newInfo(t, 1, 6)
	add(t, m, "a", 2) // 0,1
	add(t, m, "b", 1) // 2
	add(t, m, "c", 1) // 3
	require.True(t, m.DeleteFile("a"))

	blocks, err := m.SelectFreeBlocks(3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 4}, blocks)

	_, err = m.SelectFreeBlocks(5)
	require.ErrorIs(t, err, vfstype.ErrInsufficientBlocks)

	blocks, err = m.SelectFreeBlocks(0)
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestAddFile(t *testing.T) {
	t.Parallel()

	m := newInfo(t, 4, 4)
	blocks := add(t, m, "a", 5)
	assert.Equal(t, []int{0, 1}, blocks)
	assert.Equal(t, []int64{0, 0, Free, Free}, m.Blocks)
	assert.True(t, m.HasFile("a"))
	assert.False(t, m.HasFile("A"))
	assert.Equal(t, []int{0, 1}, m.AllocatedBlocks("a"))

	err := m.AddFile("a", 1, []int{2})
	require.ErrorIs(t, err, vfstype.ErrFileAlreadyExists)

	err = m.AddFile("b", 9, []int{2})
	require.ErrorIs(t, err, vfstype.ErrInsufficientBlocks)

	err = m.AddFile("b", 1, []int{0})
	require.ErrorIs(t, err, vfstype.ErrInsufficientBlocks)

	err = m.AddFile("", 0, nil)
	require.ErrorIs(t, err, vfstype.ErrInvalidName)

	require.NoError(t, m.AddFile("empty", 0, nil))
	assert.Empty(t, m.AllocatedBlocks("empty"))
	require.NoError(t, m.Validate())
}

func TestDeleteFileRenumbers(t *testing.T) {
	t.Parallel()

	m := newInfo(t, 2, 6)
	add(t, m, "a", 3) // 0,1
	add(t, m, "b", 2) // 2
	add(t, m, "c", 4) // 3,4
	require.Equal(t, []int64{0, 0, 1, 2, 2, Free}, m.Blocks)

	require.True(t, m.DeleteFile("b"))
	assert.Equal(t, []int64{0, 0, Free, 1, 1, Free}, m.Blocks)
	assert.Equal(t, []Entry{{Name: "a", Size: 3}, {Name: "c", Size: 4}}, m.Files)
	assert.Equal(t, []int{3, 4}, m.AllocatedBlocks("c"))
	require.NoError(t, m.Validate())

	assert.False(t, m.DeleteFile("b"))
	assert.Nil(t, m.AllocatedBlocks("b"))
}

func TestByteAccountingInvariants(t *testing.T) {
	t.Parallel()

	m := newInfo(t, 3, 10)
	for _, f := range []struct {
		name string
		size uint64
	}{{"a", 1}, {"b", 7}, {"c", 0}, {"d", 6}} {
		add(t, m, f.name, f.size)
	}
	require.True(t, m.DeleteFile("b"))

	var sum uint64
	for _, f := range m.Files {
		sum += f.Size
		assert.Equal(t, m.NeededBlocks(f.Size), uint64(len(m.AllocatedBlocks(f.Name))))
	}
	assert.Equal(t, sum, m.UsedBytes())
	assert.Equal(t, m.Capacity(), m.UsedBytes()+m.FreeBytes())
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	m := newInfo(t, 1, 2)
	add(t, m, "a", 1)

	c := m.Clone()
	add(t, c, "b", 1)
	c.Files[0].Size = 99

	assert.Len(t, m.Files, 1)
	assert.Equal(t, uint64(1), m.Files[0].Size)
	assert.Equal(t, []int64{0, Free}, m.Blocks)
}

func TestSwapBlocksAndContiguous(t *testing.T) {
	t.Parallel()

	m := newInfo(t, 1, 4)
	add(t, m, "a", 1) // 0
	add(t, m, "b", 1) // 1
	require.True(t, m.DeleteFile("a"))
	add(t, m, "c", 2) // 0,2
	require.Equal(t, []int64{1, 0, 1, Free}, m.Blocks)

	idx, ok := m.FileIndex("c")
	require.True(t, ok)
	assert.False(t, m.Contiguous(idx))

	m.SwapBlocks(0, 1)
	assert.Equal(t, []int64{0, 1, 1, Free}, m.Blocks)
	assert.True(t, m.Contiguous(idx))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(m *Info)
	}{
		{"short table", func(m *Info) { m.Blocks = m.Blocks[:2] }},
		{"owner out of range", func(m *Info) { m.Blocks[3] = 7 }},
		{"negative owner", func(m *Info) { m.Blocks[3] = -5 }},
		{"block count mismatch", func(m *Info) { m.Files[0].Size = 100 }},
		{"duplicate name", func(m *Info) { m.Files = append(m.Files, m.Files[0]) }},
		{"empty name", func(m *Info) { m.Files[0].Name = "" }},
		{"zero block size", func(m *Info) { m.BlockSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newInfo(t, 4, 4)
			add(t, m, "a", 5)
			tt.mutate(m)
			require.ErrorIs(t, m.Validate(), vfstype.ErrCorruptMetadata)
		})
	}
}
