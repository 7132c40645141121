package vfs

import "github.com/meigma/vfs/internal/vfstype"

// Errors re-exported from internal/vfstype.
var (
	// ErrAlreadyExists is returned by Create when either store already exists.
	ErrAlreadyExists = vfstype.ErrAlreadyExists

	// ErrArchiveNotReadable is returned when the archive cannot be loaded or read.
	ErrArchiveNotReadable = vfstype.ErrArchiveNotReadable

	// ErrArchiveNotWritable is returned when the structure store cannot be persisted.
	ErrArchiveNotWritable = vfstype.ErrArchiveNotWritable

	// ErrCorruptMetadata is returned when the structure store is truncated or inconsistent.
	ErrCorruptMetadata = vfstype.ErrCorruptMetadata

	// ErrFileAlreadyExists is returned when adding a name that is already stored.
	ErrFileAlreadyExists = vfstype.ErrFileAlreadyExists

	// ErrFileTooBig is returned when a file needs more blocks than are free.
	ErrFileTooBig = vfstype.ErrFileTooBig

	// ErrFileNotFound is returned when a name is not stored in the archive.
	ErrFileNotFound = vfstype.ErrFileNotFound

	// ErrSourceNotReadable is returned when the payload source fails.
	ErrSourceNotReadable = vfstype.ErrSourceNotReadable

	// ErrDestinationNotWritable is returned when extracted bytes cannot be written.
	ErrDestinationNotWritable = vfstype.ErrDestinationNotWritable

	// ErrInsufficientBlocks is returned when an allocation asks for more free blocks than exist.
	ErrInsufficientBlocks = vfstype.ErrInsufficientBlocks

	// ErrInvalidSize is returned for a zero block size or block count.
	ErrInvalidSize = vfstype.ErrInvalidSize

	// ErrInvalidName is returned for an empty or oversized file name.
	ErrInvalidName = vfstype.ErrInvalidName

	// ErrStoreNotWritable is returned when the block store cannot be created or written.
	ErrStoreNotWritable = vfstype.ErrStoreNotWritable

	// ErrStoreNotReadable is returned when the block store cannot be read.
	ErrStoreNotReadable = vfstype.ErrStoreNotReadable
)
