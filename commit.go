package vfs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/meigma/vfs/internal/codec"
	"github.com/meigma/vfs/internal/meta"
)

const storeFileMode = 0o644

// commit persists info to the structure store.
//
// The block store is never touched here; callers write payload first and
// commit afterwards so the structure store only advertises complete files.
func (a *Archive) commit(info *meta.Info) error {
	data, err := codec.Marshal(info)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrArchiveNotWritable, err)
	}

	if a.atomicCommit {
		err = writeFileAtomic(a.structurePath, data)
	} else {
		err = os.WriteFile(a.structurePath, data, storeFileMode)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrArchiveNotWritable, err)
	}
	a.log().Debug("metadata committed", "path", a.structurePath, "bytes", len(data), "files", len(info.Files))
	return nil
}

// writeFileExclusive creates target and writes data to it, failing if
// target already exists.
func writeFileExclusive(target string, data []byte) error {
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, storeFileMode)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeFileAtomic writes data to a temp file then renames to target,
// ensuring atomic replacement of the target file.
func writeFileAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, ".vfs-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := tmp.Chmod(storeFileMode); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
