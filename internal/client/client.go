// Package client wires the transport, session and resource stores into one
// container with a start and teardown lifecycle.
package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/saadjs/habitdash/internal/api"
	"github.com/saadjs/habitdash/internal/clock"
	"github.com/saadjs/habitdash/internal/service"
	"github.com/saadjs/habitdash/internal/session"
	"github.com/saadjs/habitdash/internal/store"
)

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	FreshFor   time.Duration
	UserAgent  string
	HTTPClient *http.Client

	// DB enables persisted session and cache state. Without it everything
	// lives in memory for the life of the process.
	DB *sql.DB

	Clock  clock.Clock
	Logger *slog.Logger

	RefetchOnInvalidate bool
}

type Client struct {
	API     *api.Client
	Session *session.Session
	Stores  *store.Stores

	clock  clock.Clock
	logger *slog.Logger

	mu    sync.Mutex
	owner string
}

func New(cfg Config) *Client {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := &Client{clock: cfg.Clock, logger: cfg.Logger}

	var storage session.Storage = session.NewMemoryStorage()
	if cfg.DB != nil {
		storage = session.NewSQLiteStorage(cfg.DB)
	}
	transport := &api.Client{
		BaseURL:    cfg.BaseURL,
		HTTPClient: cfg.HTTPClient,
		Timeout:    cfg.Timeout,
		UserAgent:  cfg.UserAgent,
		Logger:     cfg.Logger.With("component", "api"),
	}
	sess := session.New(transport, storage, session.Options{
		Clock:  cfg.Clock,
		Logger: cfg.Logger.With("component", "session"),
	})
	transport.Tokens = sess

	env := &store.Env{
		Tokens:   sess,
		Clock:    cfg.Clock,
		Logger:   cfg.Logger.With("component", "store"),
		FreshFor: cfg.FreshFor,
	}
	if cfg.DB != nil {
		env.Persister = store.NewSQLitePersister(cfg.DB, c.currentOwner)
	}
	stores := store.New(env, transport, env.Logger)
	stores.Coord.RefetchOnInvalidate = cfg.RefetchOnInvalidate

	c.API = transport
	c.Session = sess
	c.Stores = stores
	sess.Subscribe(c.onSessionChange)
	return c
}

func (c *Client) currentOwner() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.owner
}

// onSessionChange drops every cache when the user goes away or changes, so
// one account never reads another's data.
func (c *Client) onSessionChange(st session.State) {
	next := ""
	if st.Identity != nil {
		next = st.Identity.ID
	}
	c.mu.Lock()
	prev := c.owner
	c.owner = next
	c.mu.Unlock()
	if prev != "" && prev != next {
		c.logger.Debug("resetting caches", "previous_user", prev, "user", next)
		c.Stores.Reset()
	}
}

// Start restores the persisted session. Call it once before reading.
func (c *Client) Start() error {
	return c.Session.Restore()
}

func (c *Client) Login(ctx context.Context, email, password string) error {
	return c.Session.Login(ctx, email, password)
}

func (c *Client) Register(ctx context.Context, name, email, password string) error {
	return c.Session.Register(ctx, name, email, password)
}

// Logout clears the session; the subscription tears down the caches.
func (c *Client) Logout() error {
	return c.Session.Logout()
}

// Close waits for background fetches so their results reach the cache
// before the process exits.
func (c *Client) Close() {
	c.Stores.Wait()
}

func (c *Client) Today() string {
	return clock.DayKey(c.clock.Now())
}

// LoadDashboard fetches every resource concurrently and assembles the
// dashboard. Panels whose fetch failed fall back to cached data; the
// failures are joined into the returned error.
func (c *Client) LoadDashboard(ctx context.Context) (service.Dashboard, error) {
	if !c.Session.Authenticated() {
		return service.Dashboard{}, store.ErrNotAuthenticated
	}
	s := c.Stores
	in := service.DashboardInput{Today: c.Today()}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	load := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}
	load(func() (err error) { in.Habits, err = fetchOrCached(ctx, s.Habits.Query); return })
	load(func() (err error) { in.Daily, err = fetchOrCached(ctx, s.Stats.Daily); return })
	load(func() (err error) { in.Weekly, err = fetchOrCached(ctx, s.Stats.Weekly); return })
	load(func() (err error) { in.Monthly, err = fetchOrCached(ctx, s.Stats.Monthly); return })
	load(func() (err error) { in.Streak, err = fetchOrCached(ctx, s.Stats.Streak); return })
	load(func() (err error) { in.Diets, err = fetchOrCached(ctx, s.Diets.Query); return })
	load(func() (err error) { in.Progress, err = fetchOrCached(ctx, s.Diets.Progress); return })
	load(func() (err error) { in.Status, err = fetchOrCached(ctx, s.Status.Query); return })
	load(func() (err error) { in.Water, err = fetchOrCached(ctx, s.Water.Query); return })
	wg.Wait()

	return service.BuildDashboard(in), errors.Join(errs...)
}

func fetchOrCached[T any](ctx context.Context, q *store.Query[T]) (T, error) {
	v, err := q.Fetch(ctx)
	if err != nil {
		return q.Peek().Data, fmt.Errorf("load %s: %w", q.Key(), err)
	}
	return v, nil
}
