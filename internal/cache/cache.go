package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/fnd/internal/model"
)

// Store is a byte-level cache backend
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey derives a key from the scored input and the lexicon it was scored with.
// Changing any word or domain list changes the fingerprint and so the key.
func CacheKey(source, text, fingerprint string) string {
	h := sha256.New()
	h.Write([]byte(source))
	h.Write([]byte{0})
	h.Write([]byte(text))
	h.Write([]byte{0})
	h.Write([]byte(fingerprint))
	return "fnd:v1:" + hex.EncodeToString(h.Sum(nil))
}

// ResultCache stores analysis results as JSON in a Store
type ResultCache struct {
	store Store
	ttl   time.Duration
}

// NewResultCache wraps a store; ttl is used for every Put
func NewResultCache(store Store, ttl time.Duration) *ResultCache {
	return &ResultCache{
		store: store,
		ttl:   ttl,
	}
}

// New builds the cache described by cfg.
// Without a directory only the memory layer is used.
// Returns nil when caching is disabled.
func New(cfg model.CacheConfig) (*ResultCache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	memoryTTL := cfg.MemoryTTL
	if memoryTTL <= 0 {
		memoryTTL = 30 * time.Minute
	}

	if cfg.Dir == "" {
		return NewResultCache(NewMemoryCache(memoryTTL, 10*time.Minute), memoryTTL), nil
	}

	dir, err := expandHome(cfg.Dir)
	if err != nil {
		return nil, err
	}

	diskTTL := cfg.DiskTTL
	if diskTTL <= 0 {
		diskTTL = 7 * 24 * time.Hour
	}

	return NewResultCache(NewLayeredCache(memoryTTL, dir, diskTTL), 0), nil
}

// Get returns a cached result. Entries that no longer decode are treated as misses.
func (c *ResultCache) Get(key string) (model.AnalysisResult, bool) {
	if c == nil {
		return model.AnalysisResult{}, false
	}

	data, found := c.store.Get(key)
	if !found {
		return model.AnalysisResult{}, false
	}

	var result model.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		_ = c.store.Delete(key)
		return model.AnalysisResult{}, false
	}

	return result, true
}

// Put stores a result
func (c *ResultCache) Put(key string, result model.AnalysisResult) error {
	if c == nil {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	return c.store.Set(key, data, c.ttl)
}

// Clear drops every cached result
func (c *ResultCache) Clear() error {
	if c == nil {
		return nil
	}
	return c.store.Clear()
}

func expandHome(dir string) (string, error) {
	if len(dir) < 2 || dir[:2] != "~/" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dir[2:]), nil
}
