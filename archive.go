package vfs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/meigma/vfs/internal/blockstore"
	"github.com/meigma/vfs/internal/codec"
	"github.com/meigma/vfs/internal/meta"
)

// FileInfo describes a stored file.
type FileInfo struct {
	// Name is the unique file name.
	Name string

	// Size is the payload length in bytes.
	Size uint64

	// Blocks lists the owned blocks in ascending physical order.
	Blocks []int
}

// Archive is a loaded virtual archive.
//
// The zero value is not usable; obtain an Archive from Create or Open.
type Archive struct {
	path          string
	structurePath string
	storePath     string
	info          *meta.Info
	atomicCommit  bool
	preallocate   bool
	logger        *slog.Logger
}

func newArchive(path string, opts []Option) *Archive {
	structure, store := StorePaths(path)
	a := &Archive{
		path:          path,
		structurePath: structure,
		storePath:     store,
		atomicCommit:  true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// log returns the logger, falling back to a discard logger if nil.
func (a *Archive) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger
}

// Create initializes a new, empty archive at path.
//
// It fails with ErrAlreadyExists if either store exists and with
// ErrInvalidSize if blockSize or blockCount is zero. The structure store is
// written first; if the block store cannot be initialized afterwards, the
// structure store is removed again and ErrStoreNotWritable is returned.
func Create(path string, blockSize, blockCount uint64, opts ...Option) (*Archive, error) {
	a := newArchive(path, opts)

	for _, p := range []string{a.structurePath, a.storePath} {
		if _, err := os.Lstat(p); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, p)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrArchiveNotReadable, err)
		}
	}

	info, err := meta.New(blockSize, blockCount)
	if err != nil {
		return nil, err
	}

	a.log().Info("creating archive", "path", path, "block_size", blockSize, "block_count", blockCount)

	data, err := codec.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchiveNotWritable, err)
	}
	if err := writeFileExclusive(a.structurePath, data); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, a.structurePath)
		}
		return nil, fmt.Errorf("%w: %w", ErrArchiveNotWritable, err)
	}

	if err := blockstore.Initialize(a.storePath, blockSize, blockCount, a.preallocate); err != nil {
		if rmErr := os.Remove(a.structurePath); rmErr != nil {
			a.log().Warn("archive left partially created", "path", a.structurePath, "error", rmErr)
		}
		return nil, err
	}

	a.info = info
	return a, nil
}

// Open loads the archive at path.
//
// Both stores must exist. A structure store that cannot be read or decoded,
// or whose tables contradict each other, fails with ErrArchiveNotReadable;
// decoding failures additionally match ErrCorruptMetadata.
func Open(path string, opts ...Option) (*Archive, error) {
	a := newArchive(path, opts)

	if _, err := os.Stat(a.storePath); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchiveNotReadable, err)
	}
	data, err := os.ReadFile(a.structurePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchiveNotReadable, err)
	}
	info, err := codec.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchiveNotReadable, err)
	}
	if err := info.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchiveNotReadable, err)
	}

	a.info = info
	a.log().Debug("archive opened", "path", path, "files", len(info.Files), "free_blocks", info.FreeBlockCount())
	return a, nil
}

// Path returns the archive path the stores were derived from.
func (a *Archive) Path() string {
	return a.path
}

// BlockSize returns the size of one block in bytes.
func (a *Archive) BlockSize() uint64 {
	return a.info.BlockSize
}

// BlockCount returns the number of blocks in the archive.
func (a *Archive) BlockCount() uint64 {
	return a.info.BlockCount
}

// FreeBytes returns capacity minus the sum of stored file sizes.
func (a *Archive) FreeBytes() uint64 {
	return a.info.FreeBytes()
}

// UsedBytes returns the sum of stored file sizes.
func (a *Archive) UsedBytes() uint64 {
	return a.info.UsedBytes()
}

// Exists reports whether name is stored.
func (a *Archive) Exists(name string) bool {
	return a.info.HasFile(name)
}

// List returns every stored file in file table order.
func (a *Archive) List() []FileInfo {
	files := make([]FileInfo, 0, len(a.info.Files))
	for _, f := range a.info.Files {
		files = append(files, FileInfo{
			Name:   f.Name,
			Size:   f.Size,
			Blocks: a.info.AllocatedBlocks(f.Name),
		})
	}
	return files
}

// Add stores size bytes read from src under name.
//
// The payload is written to the first free blocks in ascending order before
// the metadata is committed. On any failure the in-memory metadata is left
// unchanged; payload already written to free blocks stays unreferenced.
func (a *Archive) Add(name string, src io.Reader, size uint64) (err error) {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if a.info.HasFile(name) {
		return fmt.Errorf("%w: %s", ErrFileAlreadyExists, name)
	}
	needed := a.info.NeededBlocks(size)
	if free := a.info.FreeBlockCount(); free < needed {
		return fmt.Errorf("%w: %s needs %d blocks, %d free", ErrFileTooBig, name, needed, free)
	}
	blocks, err := a.info.SelectFreeBlocks(needed)
	if err != nil {
		return err
	}

	if len(blocks) > 0 {
		var store *blockstore.Store
		store, err = blockstore.Open(a.storePath, a.info.BlockSize, a.info.BlockCount, true)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := store.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("%w: %w", ErrStoreNotWritable, cerr)
			}
		}()
		if err := a.writePayload(store, src, size, blocks); err != nil {
			return err
		}
	}

	next := a.info.Clone()
	if err := next.AddFile(name, size, blocks); err != nil {
		return err
	}
	if err := a.commit(next); err != nil {
		return err
	}
	a.info = next

	a.log().Info("file added", "name", name, "size", size, "blocks", len(blocks))
	return nil
}

// writePayload streams size bytes from src into blocks, one block-sized
// chunk at a time, in the order given.
func (a *Archive) writePayload(store *blockstore.Store, src io.Reader, size uint64, blocks []int) error {
	buf := make([]byte, min(a.info.BlockSize, size))
	remaining := size
	for _, b := range blocks {
		chunk := buf[:min(remaining, a.info.BlockSize)]
		if _, err := io.ReadFull(src, chunk); err != nil {
			return fmt.Errorf("%w: %w", ErrSourceNotReadable, err)
		}
		if err := store.WriteBlock(b, chunk); err != nil {
			return err
		}
		remaining -= uint64(len(chunk))
	}
	return nil
}

// AddFile stores the contents of the file at srcPath under name.
func (a *Archive) AddFile(name, srcPath string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSourceNotReadable, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSourceNotReadable, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: not a regular file: %s", ErrSourceNotReadable, srcPath)
	}
	return a.Add(name, f, uint64(info.Size())) //nolint:gosec // regular file sizes are non-negative
}

// Get writes the payload of name to dst.
func (a *Archive) Get(name string, dst io.Writer) (err error) {
	if !a.info.HasFile(name) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	idx, _ := a.info.FileIndex(name)
	size := a.info.Files[idx].Size
	blocks := a.info.AllocatedBlocks(name)
	if len(blocks) == 0 {
		return nil
	}

	store, err := blockstore.Open(a.storePath, a.info.BlockSize, a.info.BlockCount, false)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrArchiveNotReadable, err)
	}
	defer store.Close()

	buf := make([]byte, min(a.info.BlockSize, size))
	remaining := size
	for _, b := range blocks {
		chunk := buf[:min(remaining, a.info.BlockSize)]
		if err := store.ReadBlock(b, chunk); err != nil {
			return fmt.Errorf("%w: %w", ErrArchiveNotReadable, err)
		}
		if _, err := dst.Write(chunk); err != nil {
			return fmt.Errorf("%w: %w", ErrDestinationNotWritable, err)
		}
		remaining -= uint64(len(chunk))
	}
	return nil
}

// GetFile writes the payload of name to a new or truncated file at dstPath.
// The destination is only created once name is known to exist.
func (a *Archive) GetFile(name, dstPath string) (err error) {
	if !a.info.HasFile(name) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	f, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, storeFileMode)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDestinationNotWritable, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrDestinationNotWritable, cerr)
		}
	}()
	return a.Get(name, f)
}

// Delete removes name from the archive. Its blocks become free; their
// payload bytes are left in place until a later allocation overwrites them.
func (a *Archive) Delete(name string) error {
	if !a.info.HasFile(name) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	next := a.info.Clone()
	next.DeleteFile(name)
	if err := a.commit(next); err != nil {
		return err
	}
	a.info = next

	a.log().Info("file deleted", "name", name)
	return nil
}
