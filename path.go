package vfs

const (
	// StructureSuffix is appended to the archive path to name the structure store.
	StructureSuffix = ".structure"

	// StoreSuffix is appended to the archive path to name the block store.
	StoreSuffix = ".store"
)

// StorePaths returns the structure store and block store paths for the
// archive at path.
func StorePaths(path string) (structure, store string) {
	return path + StructureSuffix, path + StoreSuffix
}
