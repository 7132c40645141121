// Package vfs implements a block-addressed virtual archive.
//
// An archive is a fixed-capacity container of BlockCount blocks of
// BlockSize bytes, kept in two files next to each other:
//   - Structure store (P.structure): block ownership table and file table
//   - Block store (P.store): raw block payload, exactly BlockCount*BlockSize bytes
//
// Files are stored under a flat namespace of unique names. Their payload is
// scattered across the first free blocks in ascending order, so a file
// added after deletions may occupy non-adjacent blocks. [Archive.Defrag]
// compacts the block store so that blocks follow file table order from
// block 0.
//
// # Quick Start
//
//	a, err := vfs.Create("data/archive", 4096, 256)
//	if err != nil {
//	    return err
//	}
//	if err := a.AddFile("notes.txt", "./notes.txt"); err != nil {
//	    return err
//	}
//
// Later, from another process:
//
//	a, err := vfs.Open("data/archive")
//	if err != nil {
//	    return err
//	}
//	err = a.Get("notes.txt", os.Stdout)
//
// An Archive holds only the decoded metadata between calls; every
// operation opens the block store it needs and closes it before returning.
// Archives are not safe for concurrent use, and concurrent processes must
// not operate on the same archive path.
package vfs
