// Package vfstype holds the types shared between the archive facade and
// its internal packages.
package vfstype

import "errors"

// Sentinel errors for archive operations.
//
// The set is closed: every failure returned by the engine wraps exactly one
// (occasionally two) of these kinds, so callers classify with errors.Is.
var (
	// ErrAlreadyExists is returned when creating an archive whose stores already exist.
	ErrAlreadyExists = errors.New("vfs: archive already exists")

	// ErrArchiveNotReadable is returned when the archive stores cannot be opened or read.
	ErrArchiveNotReadable = errors.New("vfs: archive not readable")

	// ErrArchiveNotWritable is returned when the structure store cannot be persisted.
	ErrArchiveNotWritable = errors.New("vfs: archive not writable")

	// ErrCorruptMetadata is returned when the structure store is truncated or inconsistent.
	ErrCorruptMetadata = errors.New("vfs: corrupt metadata")

	// ErrFileAlreadyExists is returned when adding a name that is already stored.
	ErrFileAlreadyExists = errors.New("vfs: file already exists")

	// ErrFileTooBig is returned when a file needs more blocks than are free.
	ErrFileTooBig = errors.New("vfs: file too big")

	// ErrFileNotFound is returned when a name is not stored in the archive.
	ErrFileNotFound = errors.New("vfs: file not found")

	// ErrSourceNotReadable is returned when the payload source fails.
	ErrSourceNotReadable = errors.New("vfs: source not readable")

	// ErrDestinationNotWritable is returned when extracted bytes cannot be written.
	ErrDestinationNotWritable = errors.New("vfs: destination not writable")

	// ErrInsufficientBlocks is returned when an allocation asks for more free blocks than exist.
	ErrInsufficientBlocks = errors.New("vfs: insufficient free blocks")

	// ErrInvalidSize is returned for a zero block size or block count, or a capacity overflow.
	ErrInvalidSize = errors.New("vfs: invalid size")

	// ErrInvalidName is returned for an empty or oversized file name.
	ErrInvalidName = errors.New("vfs: invalid name")

	// ErrStoreNotWritable is returned when the block store cannot be created or written.
	ErrStoreNotWritable = errors.New("vfs: block store not writable")

	// ErrStoreNotReadable is returned when the block store cannot be read.
	ErrStoreNotReadable = errors.New("vfs: block store not readable")
)
