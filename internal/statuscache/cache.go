package statuscache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Key identifies one cached status lookup.
type Key struct {
	IntegrationID int64
	SHA           string
	Ref           string
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%s/%s", k.IntegrationID, k.SHA, k.Ref)
}

// Entry is one stored computation result.
type Entry struct {
	Value      Status
	ComputedAt time.Time
}

// Result is what a Fetch returns to the caller.
type Result struct {
	Value Status
	// Pending is set when no value exists yet and a computation was
	// enqueued; the caller polls or accepts a temporary unknown state.
	Pending bool
	// Stale is set when the returned value is past its TTL and a refresh
	// is in flight.
	Stale bool
}

// Store persists cache entries with TTL-based expiry.
type Store interface {
	Get(ctx context.Context, key Key) (Entry, bool, error)
	Put(ctx context.Context, key Key, entry Entry) error
	DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

// Calculator performs the actual external computation for a key.
type Calculator interface {
	Calculate(ctx context.Context, key Key) (Status, error)
}

// CalculatorFunc adapts a function to the Calculator interface.
type CalculatorFunc func(ctx context.Context, key Key) (Status, error)

// Calculate implements Calculator.
func (f CalculatorFunc) Calculate(ctx context.Context, key Key) (Status, error) {
	return f(ctx, key)
}

// Runner offloads a computation to the async boundary. The default runs
// in a goroutine; tests substitute a synchronous runner.
type Runner func(task func())

// Cache serves status lookups without ever blocking the reader on the
// network: misses and stale entries enqueue an asynchronous refresh,
// guarded so at most one computation per key is in flight.
type Cache struct {
	store      Store
	calculator Calculator
	ttl        time.Duration
	run        Runner
	log        *slog.Logger

	mu       sync.Mutex
	inFlight map[Key]struct{}
}

// Option customizes cache construction.
type Option func(*Cache)

// WithRunner replaces the async runner.
func WithRunner(run Runner) Option {
	return func(c *Cache) { c.run = run }
}

// WithLogger replaces the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Cache) { c.log = log }
}

// New constructs a reactive cache with the given TTL.
func New(store Store, calculator Calculator, ttl time.Duration, opts ...Option) *Cache {
	cache := &Cache{
		store:      store,
		calculator: calculator,
		ttl:        ttl,
		run:        func(task func()) { go task() },
		log:        slog.Default(),
		inFlight:   make(map[Key]struct{}),
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache
}

// Fetch returns the cached value for the key, enqueueing a refresh when
// the entry is missing or stale. It never blocks on the computation.
func (c *Cache) Fetch(ctx context.Context, key Key) (Result, error) {
	entry, found, err := c.store.Get(ctx, key)
	if err != nil {
		return Result{}, err
	}

	if !found {
		c.enqueue(key)
		return Result{Pending: true}, nil
	}

	if time.Since(entry.ComputedAt) > c.ttl {
		c.enqueue(key)
		return Result{Value: entry.Value, Stale: true}, nil
	}

	return Result{Value: entry.Value}, nil
}

// enqueue schedules one computation for the key unless one is already in
// flight. Later callers observe the marker and keep the previous value.
func (c *Cache) enqueue(key Key) {
	c.mu.Lock()
	if _, busy := c.inFlight[key]; busy {
		c.mu.Unlock()
		return
	}
	c.inFlight[key] = struct{}{}
	c.mu.Unlock()

	c.run(func() {
		defer func() {
			c.mu.Lock()
			delete(c.inFlight, key)
			c.mu.Unlock()
		}()
		c.compute(key)
	})
}

// compute runs the external calculation and stores its result. Any error
// or panic collapses to the error sentinel.
func (c *Cache) compute(key Key) {
	ctx := context.Background()

	value := func() Status {
		defer func() {
			if recovered := recover(); recovered != nil {
				c.log.Error("status computation panicked", "key", key.String(), "panic", recovered)
			}
		}()
		computed, err := c.calculator.Calculate(ctx, key)
		if err != nil {
			c.log.Warn("status computation failed", "key", key.String(), "error", err)
			return StatusError
		}
		return computed
	}()
	if value == "" {
		value = StatusError
	}

	if err := c.store.Put(ctx, key, Entry{Value: value, ComputedAt: time.Now()}); err != nil {
		c.log.Error("failed to store computed status", "key", key.String(), "error", err)
	}
}

// EvictExpired removes entries older than twice the TTL. Wired to the
// periodic sweep job.
func (c *Cache) EvictExpired(ctx context.Context) (int64, error) {
	return c.store.DeleteExpired(ctx, time.Now().Add(-2*c.ttl))
}
