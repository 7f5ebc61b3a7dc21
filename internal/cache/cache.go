package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching fetched documents and
// embedding vectors
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a stable cache key from arbitrary input (URLs, texts)
func Key(input string) string {
	hash := sha256.Sum256([]byte(input))
	return "policyq:v1:" + hex.EncodeToString(hash[:])
}

// Nop is a cache that stores nothing, used when caching is disabled
type Nop struct{}

func (Nop) Get(string) ([]byte, bool)                { return nil, false }
func (Nop) Set(string, []byte, time.Duration) error  { return nil }
func (Nop) Delete(string) error                      { return nil }
func (Nop) Clear() error                             { return nil }
