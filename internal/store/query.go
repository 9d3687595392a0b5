package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/saadjs/habitdash/internal/api"
	"github.com/saadjs/habitdash/internal/clock"
)

const DefaultFreshFor = 30 * time.Second

var ErrNotAuthenticated = errors.New("not authenticated: log in first")

// Key identifies one server-backed resource.
type Key string

const (
	KeyHabits       Key = "habits"
	KeyDailyStats   Key = "stats.daily"
	KeyWeeklyStats  Key = "stats.weekly"
	KeyMonthlyStats Key = "stats.monthly"
	KeyStreak       Key = "stats.streak"
	KeyDiets        Key = "diets"
	KeyDietProgress Key = "diets.progress"
	KeyStatus       Key = "status"
	KeyWater        Key = "water"
)

// Env is the state shared by every store: the session token, time source,
// freshness window and optional persistence.
type Env struct {
	Tokens    api.TokenSource
	Clock     clock.Clock
	Logger    *slog.Logger
	FreshFor  time.Duration
	Persister Persister
}

func (e *Env) token() string {
	if e == nil || e.Tokens == nil {
		return ""
	}
	return e.Tokens.Token()
}

func (e *Env) now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock.Now()
}

func (e *Env) freshFor() time.Duration {
	if e.FreshFor <= 0 {
		return DefaultFreshFor
	}
	return e.FreshFor
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e.Logger
}

// Snapshot is what a read hands to a view. IsLoading is true only while the
// first fetch of an empty cache is in flight.
type Snapshot[T any] struct {
	Data      T
	IsLoading bool
	FetchedAt time.Time
	Stale     bool
	Err       error
}

type FetchFunc[T any] func(ctx context.Context, token string) (T, error)

type pending[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Query caches one resource. Reads never block on the network: a missing or
// expired value triggers at most one background fetch while the last known
// value keeps being served.
type Query[T any] struct {
	key   Key
	env   *Env
	fetch FetchFunc[T]
	empty func() T

	mu        sync.Mutex
	data      T
	has       bool
	fetchedAt time.Time
	stale     bool
	lastErr   error
	gen       uint64
	epoch     uint64
	hydrated  bool
	inflight  *pending[T]
	wg        sync.WaitGroup
}

func NewQuery[T any](key Key, env *Env, fetch FetchFunc[T], empty func() T) *Query[T] {
	if empty == nil {
		empty = func() T {
			var zero T
			return zero
		}
	}
	return &Query[T]{key: key, env: env, fetch: fetch, empty: empty}
}

func (q *Query[T]) Key() Key { return q.key }

// Read returns the cached snapshot. Without a token the query is inert: it
// returns the default value and performs no request.
func (q *Query[T]) Read(ctx context.Context) Snapshot[T] {
	token := q.env.token()
	if token == "" {
		return Snapshot[T]{Data: q.empty()}
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.hydrateLocked()
	if !q.freshLocked() {
		q.startLocked(ctx, token)
	}
	return q.snapshotLocked()
}

// Peek returns the cached snapshot without triggering a fetch.
func (q *Query[T]) Peek() Snapshot[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshotLocked()
}

// Fetch returns fresh data, waiting for a network round trip only when the
// cache is missing or outside the freshness window.
func (q *Query[T]) Fetch(ctx context.Context) (T, error) {
	token := q.env.token()
	if token == "" {
		return q.empty(), nil
	}
	q.mu.Lock()
	q.hydrateLocked()
	if q.freshLocked() {
		data := q.data
		q.mu.Unlock()
		return data, nil
	}
	p := q.startLocked(ctx, token)
	q.mu.Unlock()

	select {
	case <-p.done:
		if p.err != nil {
			return q.empty(), p.err
		}
		return p.val, nil
	case <-ctx.Done():
		return q.empty(), ctx.Err()
	}
}

// Refetch discards freshness and fetches.
func (q *Query[T]) Refetch(ctx context.Context) (T, error) {
	q.Invalidate()
	return q.Fetch(ctx)
}

// Invalidate marks the cached value stale so the next read refetches. The
// data itself is kept for stale-while-revalidate.
func (q *Query[T]) Invalidate() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.hydrateLocked()
	q.stale = true
	q.gen++
	if q.has {
		q.persistLocked()
	}
}

// Set stores a server-confirmed value as fresh.
func (q *Query[T]) Set(v T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.hydrated = true
	q.data = v
	q.has = true
	q.fetchedAt = q.env.now()
	q.stale = false
	q.lastErr = nil
	q.gen++
	q.persistLocked()
}

// Update edits the cached value in place with server-confirmed changes. It
// reports false when nothing is cached. Freshness is unchanged.
func (q *Query[T]) Update(fn func(T) T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.hydrateLocked()
	if !q.has {
		return false
	}
	q.data = fn(q.data)
	q.persistLocked()
	return true
}

// Reset drops the cached value and any persisted copy. In-flight fetches
// that settle afterwards are discarded.
func (q *Query[T]) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	q.data = zero
	q.has = false
	q.fetchedAt = time.Time{}
	q.stale = false
	q.lastErr = nil
	q.epoch++
	q.gen++
	q.inflight = nil
	q.hydrated = true
	if p := q.env.Persister; p != nil {
		if err := p.Delete(q.key); err != nil {
			q.env.logger().Warn("delete cache entry", "key", q.key, "error", err)
		}
	}
}

// Wait blocks until background fetches started so far have settled.
func (q *Query[T]) Wait() {
	q.wg.Wait()
}

// Stale reports whether the value was invalidated since it was last stored.
func (q *Query[T]) Stale() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stale
}

// Fresh reports whether a read right now would be served without a request.
func (q *Query[T]) Fresh() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.freshLocked()
}

func (q *Query[T]) HasData() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.has
}

func (q *Query[T]) freshLocked() bool {
	if !q.has || q.stale {
		return false
	}
	return q.env.now().Sub(q.fetchedAt) < q.env.freshFor()
}

func (q *Query[T]) snapshotLocked() Snapshot[T] {
	snap := Snapshot[T]{
		Data:      q.empty(),
		IsLoading: !q.has && q.inflight != nil,
		FetchedAt: q.fetchedAt,
		Stale:     q.has && !q.freshLocked(),
		Err:       q.lastErr,
	}
	if q.has {
		snap.Data = q.data
	}
	return snap
}

// startLocked joins the in-flight fetch or starts one. The fetch is detached
// from the caller's cancellation: a response that arrives after the caller
// went away still updates the cache.
func (q *Query[T]) startLocked(ctx context.Context, token string) *pending[T] {
	if q.inflight != nil {
		return q.inflight
	}
	p := &pending[T]{done: make(chan struct{})}
	q.inflight = p
	gen, epoch := q.gen, q.epoch
	bg := context.WithoutCancel(ctx)
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		val, err := q.fetch(bg, token)
		q.settle(p, gen, epoch, val, err)
	}()
	return p
}

func (q *Query[T]) settle(p *pending[T], gen, epoch uint64, val T, err error) {
	q.mu.Lock()
	if q.inflight == p {
		q.inflight = nil
	}
	switch {
	case epoch != q.epoch:
		// The cache was reset (logout) while the request was in flight.
	case err != nil:
		q.lastErr = err
		q.env.logger().Warn("refresh failed", "key", q.key, "error", err)
	default:
		q.data = val
		q.has = true
		q.fetchedAt = q.env.now()
		q.lastErr = nil
		// Invalidated while in flight: keep the response but refetch next read.
		q.stale = gen != q.gen
		q.persistLocked()
	}
	q.mu.Unlock()

	p.val, p.err = val, err
	close(p.done)
}

func (q *Query[T]) hydrateLocked() {
	if q.hydrated {
		return
	}
	q.hydrated = true
	persister := q.env.Persister
	if persister == nil || q.has {
		return
	}
	entry, ok, err := persister.Load(q.key)
	if err != nil {
		q.env.logger().Warn("load cache entry", "key", q.key, "error", err)
		return
	}
	if !ok {
		return
	}
	var data T
	if err := unmarshalPayload(entry.Payload, &data); err != nil {
		q.env.logger().Warn("decode cache entry", "key", q.key, "error", err)
		return
	}
	q.data = data
	q.has = true
	q.fetchedAt = entry.FetchedAt
	q.stale = entry.Stale
}

func (q *Query[T]) persistLocked() {
	persister := q.env.Persister
	if persister == nil {
		return
	}
	payload, err := marshalPayload(q.data)
	if err != nil {
		q.env.logger().Warn("encode cache entry", "key", q.key, "error", err)
		return
	}
	if err := persister.Save(q.key, Entry{Payload: payload, FetchedAt: q.fetchedAt, Stale: q.stale}); err != nil {
		q.env.logger().Warn("save cache entry", "key", q.key, "error", fmt.Errorf("persist: %w", err))
	}
}
