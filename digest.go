package vfs

import (
	_ "crypto/sha256" // registers the canonical digest algorithm

	"github.com/opencontainers/go-digest"
)

// Digest returns the canonical (sha256) content digest of the payload
// stored under name.
//
// The archive format stores no checksums, so the digest is computed by
// reading the payload back from the block store.
func (a *Archive) Digest(name string) (digest.Digest, error) {
	digester := digest.Canonical.Digester()
	if err := a.Get(name, digester.Hash()); err != nil {
		return "", err
	}
	return digester.Digest(), nil
}
