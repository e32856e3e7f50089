package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"
	"time"
)

func TestFingerprintOrderIndependent(t *testing.T) {
	a := url.Values{}
	a.Set("status", "completed")
	a.Set("per_page", "2")

	b := url.Values{}
	b.Set("per_page", "2")
	b.Set("status", "completed")

	if Fingerprint(a) != Fingerprint(b) {
		t.Fatalf("fingerprints differ: %q vs %q", Fingerprint(a), Fingerprint(b))
	}

	c := url.Values{}
	c.Set("status", "pending")
	c.Set("per_page", "2")
	if Fingerprint(a) == Fingerprint(c) {
		t.Fatal("different queries must not collide")
	}
}

func TestGetOrComputeCachesSuccess(t *testing.T) {
	ctx := context.Background()
	cache := New(NewMemoryStore())

	calls := 0
	compute := func() (any, error) {
		calls++
		return map[string]int{"count": calls}, nil
	}

	first, err := cache.GetOrCompute(ctx, "tasks", "q=1", time.Minute, compute)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := cache.GetOrCompute(ctx, "tasks", "q=1", time.Minute, compute)
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	if calls != 1 {
		t.Fatalf("compute ran %d times, want 1", calls)
	}
	if string(first) != string(second) {
		t.Fatalf("payload changed between hits: %s vs %s", first, second)
	}
}

func TestGetOrComputeNeverCachesErrors(t *testing.T) {
	ctx := context.Background()
	cache := New(NewMemoryStore())

	calls := 0
	failing := func() (any, error) {
		calls++
		return nil, errors.New("db down")
	}

	if _, err := cache.GetOrCompute(ctx, "tasks", "q=1", time.Minute, failing); err == nil {
		t.Fatal("expected error")
	}
	if _, err := cache.GetOrCompute(ctx, "tasks", "q=1", time.Minute, failing); err == nil {
		t.Fatal("expected error")
	}
	if calls != 2 {
		t.Fatalf("errors must not be cached, compute ran %d times", calls)
	}
}

// Writes bump the resource generation; every previously cached list
// variant becomes unreachable.
func TestInvalidateRetiresListKeys(t *testing.T) {
	ctx := context.Background()
	cache := New(NewMemoryStore())

	version := 0
	compute := func() (any, error) {
		version++
		return map[string]int{"version": version}, nil
	}

	first, _ := cache.GetOrCompute(ctx, "tasks", "q=1", time.Minute, compute)
	cache.Invalidate(ctx, "tasks")
	second, _ := cache.GetOrCompute(ctx, "tasks", "q=1", time.Minute, compute)

	if string(first) == string(second) {
		t.Fatal("stale payload served after invalidation")
	}

	var decoded map[string]int
	if err := json.Unmarshal(second, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["version"] != 2 {
		t.Fatalf("expected recompute, got %v", decoded)
	}
}

func TestInvalidateOnlyNamedResource(t *testing.T) {
	ctx := context.Background()
	cache := New(NewMemoryStore())

	calls := 0
	compute := func() (any, error) {
		calls++
		return calls, nil
	}

	cache.GetOrCompute(ctx, "users", "q=1", time.Minute, compute)
	cache.Invalidate(ctx, "tasks")
	cache.GetOrCompute(ctx, "users", "q=1", time.Minute, compute)

	if calls != 1 {
		t.Fatalf("users cache should survive a tasks write, compute ran %d times", calls)
	}
}

func TestItemInvalidation(t *testing.T) {
	ctx := context.Background()
	cache := New(NewMemoryStore())

	calls := 0
	compute := func() (any, error) {
		calls++
		return map[string]int{"id": 7, "rev": calls}, nil
	}

	cache.GetOrComputeItem(ctx, "tasks", 7, time.Minute, compute)
	cache.GetOrComputeItem(ctx, "tasks", 7, time.Minute, compute)
	if calls != 1 {
		t.Fatalf("item should be cached, compute ran %d times", calls)
	}

	cache.InvalidateItem(ctx, "tasks", 7)
	cache.GetOrComputeItem(ctx, "tasks", 7, time.Minute, compute)
	if calls != 2 {
		t.Fatalf("item should recompute after invalidation, compute ran %d times", calls)
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	_, ok, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("expired entry served")
	}
}

func TestMemoryStoreIncr(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for want := int64(1); want <= 3; want++ {
		got, err := store.Incr(ctx, "gen")
		if err != nil {
			t.Fatalf("incr: %v", err)
		}
		if got != want {
			t.Fatalf("incr = %d, want %d", got, want)
		}
	}
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("store down")
}
func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("store down")
}
func (failingStore) Del(context.Context, string) error { return errors.New("store down") }
func (failingStore) Incr(context.Context, string) (int64, error) {
	return 0, errors.New("store down")
}

// A broken store degrades to pass-through: every read recomputes, the
// request still succeeds.
func TestStoreErrorsAreAdvisory(t *testing.T) {
	ctx := context.Background()
	cache := New(failingStore{})

	calls := 0
	compute := func() (any, error) {
		calls++
		return calls, nil
	}

	raw, err := cache.GetOrCompute(ctx, "tasks", "q=1", time.Minute, compute)
	if err != nil {
		t.Fatalf("GetOrCompute must not fail on store errors: %v", err)
	}
	if string(raw) != "1" {
		t.Fatalf("payload: %s", raw)
	}

	cache.Invalidate(ctx, "tasks")
	cache.InvalidateItem(ctx, "tasks", 1)
}
