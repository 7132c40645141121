package main

import (
	"errors"

	"github.com/meigma/vfs"
)

// Process exit codes. The values are part of the command's interface.
const (
	exitOK               = 0
	exitWriteFailed      = 1
	exitNotReadable      = 2
	exitArchiveExists    = 3
	exitDuplicateName    = 11
	exitFileTooBig       = 12
	exitSourceUnreadable = 13
	exitNameNotFound     = 21
	exitOutputUnwritable = 30
	exitUsage            = 66
)

// usageError reports malformed command lines.
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

// exitRule maps an error kind to its exit code. Rules are checked in
// order, so kinds that can be wrapped together with a more generic kind
// come first.
type exitRule struct {
	err  error
	code int
}

var exitRules = []exitRule{
	{vfs.ErrDestinationNotWritable, exitOutputUnwritable},
	{vfs.ErrSourceNotReadable, exitSourceUnreadable},
	{vfs.ErrFileAlreadyExists, exitDuplicateName},
	{vfs.ErrFileTooBig, exitFileTooBig},
	{vfs.ErrFileNotFound, exitNameNotFound},
	{vfs.ErrAlreadyExists, exitArchiveExists},
	{vfs.ErrInvalidSize, exitUsage},
	{vfs.ErrInvalidName, exitUsage},
	{vfs.ErrArchiveNotReadable, exitNotReadable},
	{vfs.ErrCorruptMetadata, exitNotReadable},
	{vfs.ErrStoreNotReadable, exitNotReadable},
}

// exitCode returns the process exit code for err. Anything not listed,
// including ErrArchiveNotWritable and ErrStoreNotWritable, is a generic
// write failure.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var usage *usageError
	if errors.As(err, &usage) {
		return exitUsage
	}
	for _, rule := range exitRules {
		if errors.Is(err, rule.err) {
			return rule.code
		}
	}
	return exitWriteFailed
}
