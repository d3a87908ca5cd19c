package discovery

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Cache stores discovery results as one JSON file per key. Entries
// older than the TTL are treated as absent.
type Cache struct {
	dir   string
	ttl   time.Duration
	clock func() time.Time
}

type cacheEnvelope struct {
	CachedAt time.Time       `json:"cached_at"`
	Results  json.RawMessage `json:"results"`
}

// NewCache returns a cache rooted at dir. A non-positive TTL disables
// expiry.
func NewCache(dir string, ttl time.Duration) *Cache {
	return &Cache{dir: dir, ttl: ttl, clock: time.Now}
}

// WithClock overrides the time source, used by tests to age entries.
func (c *Cache) WithClock(clock func() time.Time) *Cache {
	c.clock = clock
	return c
}

// Get loads the entry for key into out. It reports false when the
// entry is missing, unreadable, or stale.
func (c *Cache) Get(key string, out any) bool {
	if c == nil {
		return false
	}
	raw, err := os.ReadFile(c.path(key))
	if err != nil {
		return false
	}
	var env cacheEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return false
	}
	if c.ttl > 0 && c.clock().Sub(env.CachedAt) >= c.ttl {
		return false
	}
	return json.Unmarshal(env.Results, out) == nil
}

// Put stores val under key, stamping it with the current time.
func (c *Cache) Put(key string, val any) error {
	if c == nil {
		return nil
	}
	results, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("discovery: encode cache entry %s: %w", key, err)
	}
	env := cacheEnvelope{CachedAt: c.clock().UTC(), Results: results}
	raw, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("discovery: encode cache entry %s: %w", key, err)
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("discovery: create cache dir: %w", err)
	}
	raw = append(raw, '\n')
	if err := os.WriteFile(c.path(key), raw, 0o644); err != nil {
		return fmt.Errorf("discovery: write cache entry %s: %w", key, err)
	}
	return nil
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// DomainKey derives the cache key for a domain footprint scan.
func DomainKey(domain string) string {
	return "domain_" + strings.ReplaceAll(strings.ToLower(domain), ".", "_")
}

// ProbeKey derives the cache key for an API probe over a tool list.
// The key depends only on the set of tools, not their order.
func ProbeKey(tools []string) string {
	sorted := make([]string, len(tools))
	copy(sorted, tools)
	sort.Strings(sorted)
	h := fnv.New64a()
	h.Write([]byte(strings.Join(sorted, "_")))
	return fmt.Sprintf("api_check_%x", h.Sum64())
}
