package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"taskapp/internal/utils"
)

// Store is the minimal backend contract: redis in production, the memory
// store in tests and redis-less deployments. All methods must be safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Incr(ctx context.Context, key string) (int64, error)
}

// Cache implements the read-side cache-aside pattern with
// generation-versioned list keys (resource:v{gen}:{digest}). Bumping the
// generation on any write makes every previous list key unreachable, so
// invalidation never needs pattern deletion; stale entries age out via TTL.
//
// Store failures are advisory: a failing read is a miss, a failing write is
// logged and dropped. Concurrent readers may race to recompute the same
// key; recompute is idempotent so last-write-wins is fine.
type Cache struct {
	store  Store
	prefix string
}

func New(store Store) *Cache {
	return &Cache{store: store, prefix: "taskapp"}
}

// GetOrCompute returns the cached payload for the resource+fingerprint
// pair, computing and caching it on a miss. Only successful computes are
// cached.
func (c *Cache) GetOrCompute(ctx context.Context, resource, fingerprint string, ttl time.Duration, compute func() (any, error)) (json.RawMessage, error) {
	key := c.listKey(ctx, resource, fingerprint)
	if raw, ok := c.get(ctx, key); ok {
		return raw, nil
	}

	value, err := compute()
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, raw, ttl)
	return raw, nil
}

// GetOrComputeItem is the single-resource variant. Item keys are
// generation-independent and are deleted point-wise on write.
func (c *Cache) GetOrComputeItem(ctx context.Context, resource string, id int64, ttl time.Duration, compute func() (any, error)) (json.RawMessage, error) {
	key := c.itemKey(resource, id)
	if raw, ok := c.get(ctx, key); ok {
		return raw, nil
	}

	value, err := compute()
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, raw, ttl)
	return raw, nil
}

// Invalidate bumps the resource generation, retiring every cached list
// variant at once.
func (c *Cache) Invalidate(ctx context.Context, resource string) {
	if _, err := c.store.Incr(ctx, c.genKey(resource)); err != nil {
		utils.LogEvent("", "cache", "invalidate_failed", resource+": "+err.Error())
	}
}

// InvalidateItem drops the single-item entry for id.
func (c *Cache) InvalidateItem(ctx context.Context, resource string, id int64) {
	if err := c.store.Del(ctx, c.itemKey(resource, id)); err != nil {
		utils.LogEvent("", "cache", "invalidate_item_failed", resource+": "+err.Error())
	}
}

func (c *Cache) get(ctx context.Context, key string) (json.RawMessage, bool) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		utils.LogEvent("", "cache", "get_failed", key+": "+err.Error())
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return json.RawMessage(raw), true
}

func (c *Cache) set(ctx context.Context, key string, raw []byte, ttl time.Duration) {
	if err := c.store.Set(ctx, key, raw, ttl); err != nil {
		utils.LogEvent("", "cache", "set_failed", key+": "+err.Error())
	}
}

func (c *Cache) listKey(ctx context.Context, resource, fingerprint string) string {
	gen := c.generation(ctx, resource)
	digest := xxhash.Sum64String(fingerprint)
	return fmt.Sprintf("%s:%s:v%d:%016x", c.prefix, resource, gen, digest)
}

func (c *Cache) itemKey(resource string, id int64) string {
	return fmt.Sprintf("%s:%s:item:%d", c.prefix, resource, id)
}

func (c *Cache) genKey(resource string) string {
	return fmt.Sprintf("%s:%s:gen", c.prefix, resource)
}

func (c *Cache) generation(ctx context.Context, resource string) int64 {
	raw, ok, err := c.store.Get(ctx, c.genKey(resource))
	if err != nil || !ok {
		return 0
	}
	gen, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0
	}
	return gen
}

// Fingerprint normalizes request parameters into a deterministic string so
// logically identical queries share a cache key regardless of parameter
// order.
func Fingerprint(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		vs := append([]string(nil), values[k]...)
		sort.Strings(vs)
		parts = append(parts, k+"="+strings.Join(vs, ","))
	}
	return strings.Join(parts, "&")
}
