package statuscache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// memoryStore is a map-backed Store for tests.
type memoryStore struct {
	mu      sync.Mutex
	entries map[Key]Entry
	getErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: make(map[Key]Entry)}
}

func (s *memoryStore) Get(_ context.Context, key Key) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return Entry{}, false, s.getErr
	}
	entry, ok := s.entries[key]
	return entry, ok, nil
}

func (s *memoryStore) Put(_ context.Context, key Key, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	return nil
}

func (s *memoryStore) DeleteExpired(_ context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for key, entry := range s.entries {
		if entry.ComputedAt.Before(olderThan) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

// syncRunner executes enqueued tasks inline so tests observe results
// deterministically.
func syncRunner(task func()) { task() }

func TestFetchMissEnqueuesComputation(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	calls := 0
	calc := CalculatorFunc(func(context.Context, Key) (Status, error) {
		calls++
		return StatusSuccess, nil
	})
	cache := New(store, calc, time.Minute, WithRunner(syncRunner))

	key := Key{IntegrationID: 1, SHA: "abc", Ref: "main"}
	result, err := cache.Fetch(context.Background(), key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Pending || result.Value != "" {
		t.Fatalf("miss must report pending, got %+v", result)
	}
	if calls != 1 {
		t.Fatalf("expected one computation, got %d", calls)
	}

	result, err = cache.Fetch(context.Background(), key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Pending || result.Stale || result.Value != StatusSuccess {
		t.Fatalf("second fetch must serve the computed value, got %+v", result)
	}
	if calls != 1 {
		t.Fatalf("fresh entry must not recompute, got %d calls", calls)
	}
}

func TestFetchStaleServesOldValueAndRefreshes(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	key := Key{IntegrationID: 1, SHA: "abc", Ref: "main"}
	store.entries[key] = Entry{Value: StatusRunning, ComputedAt: time.Now().Add(-2 * time.Minute)}

	calls := 0
	calc := CalculatorFunc(func(context.Context, Key) (Status, error) {
		calls++
		return StatusSuccess, nil
	})
	cache := New(store, calc, time.Minute, WithRunner(syncRunner))

	result, err := cache.Fetch(context.Background(), key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Stale || result.Value != StatusRunning {
		t.Fatalf("stale fetch must serve the previous value, got %+v", result)
	}
	if calls != 1 {
		t.Fatalf("stale fetch must refresh once, got %d calls", calls)
	}

	result, _ = cache.Fetch(context.Background(), key)
	if result.Stale || result.Value != StatusSuccess {
		t.Fatalf("refresh must replace the value, got %+v", result)
	}
}

func TestFetchDeduplicatesInFlightComputations(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	started := 0
	var pending []func()
	// Collect tasks without running them to simulate a slow computation.
	runner := func(task func()) {
		started++
		pending = append(pending, task)
	}
	calc := CalculatorFunc(func(context.Context, Key) (Status, error) {
		return StatusSuccess, nil
	})
	cache := New(store, calc, time.Minute, WithRunner(runner))

	key := Key{IntegrationID: 1, SHA: "abc", Ref: "main"}
	for i := 0; i < 5; i++ {
		result, err := cache.Fetch(context.Background(), key)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Pending {
			t.Fatalf("fetch %d: expected pending, got %+v", i, result)
		}
	}
	if started != 1 {
		t.Fatalf("expected one in-flight computation, got %d", started)
	}

	for _, task := range pending {
		task()
	}
	result, _ := cache.Fetch(context.Background(), key)
	if result.Value != StatusSuccess {
		t.Fatalf("expected computed value after drain, got %+v", result)
	}
}

func TestComputeErrorStoresErrorSentinel(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	calc := CalculatorFunc(func(context.Context, Key) (Status, error) {
		return "", errors.New("remote unreachable")
	})
	cache := New(store, calc, time.Minute, WithRunner(syncRunner))

	key := Key{IntegrationID: 1, SHA: "abc", Ref: "main"}
	cache.Fetch(context.Background(), key)

	result, err := cache.Fetch(context.Background(), key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Value != StatusError {
		t.Fatalf("calculator errors must collapse to the sentinel, got %+v", result)
	}
}

func TestComputePanicStoresErrorSentinel(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	calc := CalculatorFunc(func(context.Context, Key) (Status, error) {
		panic("remote library bug")
	})
	cache := New(store, calc, time.Minute, WithRunner(syncRunner))

	key := Key{IntegrationID: 1, SHA: "abc", Ref: "main"}
	cache.Fetch(context.Background(), key)

	result, err := cache.Fetch(context.Background(), key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Value != StatusError {
		t.Fatalf("panics must collapse to the sentinel, got %+v", result)
	}
}

func TestFetchStoreErrorPropagates(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.getErr = errors.New("disk gone")
	cache := New(store, CalculatorFunc(func(context.Context, Key) (Status, error) {
		return StatusSuccess, nil
	}), time.Minute, WithRunner(syncRunner))

	_, err := cache.Fetch(context.Background(), Key{IntegrationID: 1})
	if err == nil {
		t.Fatal("store failures must surface to the caller")
	}
}

func TestEvictExpiredKeepsEntriesWithinTwiceTTL(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	fresh := Key{IntegrationID: 1, SHA: "fresh"}
	stale := Key{IntegrationID: 1, SHA: "stale"}
	ancient := Key{IntegrationID: 1, SHA: "ancient"}
	store.entries[fresh] = Entry{Value: StatusSuccess, ComputedAt: time.Now()}
	store.entries[stale] = Entry{Value: StatusSuccess, ComputedAt: time.Now().Add(-90 * time.Second)}
	store.entries[ancient] = Entry{Value: StatusSuccess, ComputedAt: time.Now().Add(-5 * time.Minute)}

	cache := New(store, CalculatorFunc(func(context.Context, Key) (Status, error) {
		return StatusSuccess, nil
	}), time.Minute, WithRunner(syncRunner))

	removed, err := cache.EvictExpired(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected one eviction, got %d", removed)
	}
	if _, ok := store.entries[stale]; !ok {
		t.Fatal("entries within twice the TTL must survive the sweep")
	}
	if _, ok := store.entries[ancient]; ok {
		t.Fatal("entries past twice the TTL must be evicted")
	}
}
