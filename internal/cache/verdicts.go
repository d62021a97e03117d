package cache

import (
	"encoding/json"
	"time"

	"github.com/uradori/uradori/internal/model"
)

// VerdictCache stores parsed verifications keyed by oracle model and
// prompt, so repeat checks of the same claim skip the oracle call.
// A decode failure is treated as a miss; the cache never surfaces a
// stale or corrupt verdict.
type VerdictCache struct {
	backend Cache
	model   string
	ttl     time.Duration
}

// NewVerdictCache wraps a Cache backend for a specific oracle model
func NewVerdictCache(backend Cache, oracleModel string, ttl time.Duration) *VerdictCache {
	return &VerdictCache{
		backend: backend,
		model:   oracleModel,
		ttl:     ttl,
	}
}

// Get returns the cached verification for a prompt, if present
func (c *VerdictCache) Get(prompt string) (*model.Verification, bool) {
	if c == nil {
		return nil, false
	}
	data, found := c.backend.Get(Key(c.model, prompt))
	if !found {
		return nil, false
	}
	var v model.Verification
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, false
	}
	return &v, true
}

// Put stores a verification for a prompt
func (c *VerdictCache) Put(prompt string, v *model.Verification) {
	if c == nil || v == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.backend.Set(Key(c.model, prompt), data, c.ttl)
}
