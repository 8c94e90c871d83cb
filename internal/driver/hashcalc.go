package driver

import (
	"crypto/sha256"
	"encoding/binary"
)

// Digest is a SHA-256 value, compatible with source.File.Hash.
type Digest [32]byte

// combineDigest: H(content || salt1 || salt2 ...).
func combineDigest(content Digest, salts ...[]byte) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, s := range salts {
		_, _ = h.Write(s)
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// cacheKey identifies a checked file: its content plus every option that
// changes the outcome.
func cacheKey(content Digest, opts DiagnoseOptions) Digest {
	var schema [2]byte
	binary.BigEndian.PutUint16(schema[:], diskCacheSchemaVersion)
	flags := []byte{0}
	if opts.RequireDocs {
		flags[0] |= 1
	}
	if opts.WarningsAsErrors {
		flags[0] |= 2
	}
	return combineDigest(content, schema[:], flags)
}
