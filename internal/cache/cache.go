package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for verdict caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from the oracle model and the exact prompt
// sent to it. Two calls with the same model and prompt are expected to
// verify the same claim.
func Key(oracleModel, prompt string) string {
	hash := sha256.Sum256([]byte(oracleModel + "\x00" + prompt))
	return "uradori:v1:" + hex.EncodeToString(hash[:])
}
