package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// CacheKey identifies a cached gateway response, derived from the endpoint
// and the canonicalized parameter set.
type CacheKey Hash

// NewCacheKey hashes an endpoint together with canonical parameter bytes
func NewCacheKey(endpoint string, params []byte) CacheKey {
	data := make([]byte, 0, len(endpoint)+1+len(params))
	data = append(data, endpoint...)
	data = append(data, 0)
	data = append(data, params...)
	return CacheKey(NewHash(data))
}

// String returns the string representation
func (k CacheKey) String() string { return Hash(k).String() }
