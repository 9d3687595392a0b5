package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/saadjs/habitdash/internal/client"
	"github.com/saadjs/habitdash/internal/clock"
	"github.com/saadjs/habitdash/internal/db"
	"github.com/saadjs/habitdash/internal/mockapi"
	"github.com/saadjs/habitdash/internal/model"
	"github.com/saadjs/habitdash/internal/store"
)

var now = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func newBackend(t *testing.T) (*mockapi.Server, *httptest.Server, *clock.FakeClock) {
	t.Helper()
	clk := clock.Fake(now)
	srv := mockapi.New(mockapi.Options{Secret: []byte("test-secret"), Clock: clk})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return srv, ts, clk
}

func newClient(t *testing.T, ts *httptest.Server, clk clock.Clock, cfg client.Config) *client.Client {
	t.Helper()
	cfg.BaseURL = ts.URL
	cfg.HTTPClient = ts.Client()
	cfg.Clock = clk
	c := client.New(cfg)
	t.Cleanup(c.Close)
	if err := c.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	return c
}

func TestLoginCreateToggleScenario(t *testing.T) {
	t.Parallel()
	srv, ts, clk := newBackend(t)
	c := newClient(t, ts, clk, client.Config{})
	ctx := context.Background()

	if err := c.Register(ctx, "Ana", "ana@example.com", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	c.Logout()
	if err := c.Login(ctx, "ana@example.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	habit, err := c.Stores.Habits.Create(ctx, model.NewHabit{Title: "Run", Frequency: model.FrequencyDaily})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := c.Stores.Habits.Toggle(ctx, habit.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	got := c.Stores.Stats.Daily.Peek().Data
	if got != (model.DailyStats{CompletedToday: 1, TotalHabits: 1, Percent: 100}) {
		t.Fatalf("unexpected daily stats %+v", got)
	}
	if hits := srv.Hits("GET /api/stat/daily"); hits != 0 {
		t.Fatalf("expected daily stats without a read, got %d requests", hits)
	}
}

func TestLogoutResetsCaches(t *testing.T) {
	t.Parallel()
	_, ts, clk := newBackend(t)
	c := newClient(t, ts, clk, client.Config{})
	ctx := context.Background()

	if err := c.Register(ctx, "Ana", "ana@example.com", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := c.Stores.Habits.Create(ctx, model.NewHabit{Title: "Run"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := c.Stores.Habits.Fetch(ctx); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if err := c.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if c.Stores.Habits.HasData() {
		t.Fatalf("expected habits cache dropped on logout")
	}
	if snap := c.Stores.Habits.Read(ctx); len(snap.Data) != 0 {
		t.Fatalf("expected inert read after logout, got %+v", snap.Data)
	}

	if err := c.Register(ctx, "Bea", "bea@example.com", "pw"); err != nil {
		t.Fatalf("register second user: %v", err)
	}
	habits, err := c.Stores.Habits.Fetch(ctx)
	if err != nil {
		t.Fatalf("fetch as second user: %v", err)
	}
	if len(habits) != 0 {
		t.Fatalf("second user saw first user's habits: %+v", habits)
	}
}

func TestPersistedSessionAndCacheSurviveRestart(t *testing.T) {
	t.Parallel()
	srv, ts, clk := newBackend(t)
	sqldb, err := db.OpenMigrated(filepath.Join(t.TempDir(), "habitdash.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()
	ctx := context.Background()

	first := newClient(t, ts, clk, client.Config{DB: sqldb})
	if err := first.Register(ctx, "Ana", "ana@example.com", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := first.Stores.Stats.Streak.Fetch(ctx); err != nil {
		t.Fatalf("fetch streak: %v", err)
	}
	first.Close()

	clk.Advance(10 * time.Second)
	second := newClient(t, ts, clk, client.Config{DB: sqldb})
	if !second.Session.Authenticated() || second.Session.Identity().Email != "ana@example.com" {
		t.Fatalf("expected restored session, got %+v", second.Session.State())
	}
	if _, err := second.Stores.Stats.Streak.Fetch(ctx); err != nil {
		t.Fatalf("fetch streak: %v", err)
	}
	if hits := srv.Hits("GET /api/stat/streak"); hits != 1 {
		t.Fatalf("expected persisted streak reused, got %d requests", hits)
	}

	if err := second.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	third := newClient(t, ts, clk, client.Config{DB: sqldb})
	if third.Session.Authenticated() {
		t.Fatalf("expected logged out after restart")
	}
}

func TestLoadDashboard(t *testing.T) {
	t.Parallel()
	srv, ts, clk := newBackend(t)
	c := newClient(t, ts, clk, client.Config{})
	ctx := context.Background()

	if _, err := c.LoadDashboard(ctx); !errors.Is(err, store.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if err := c.Register(ctx, "Ana", "ana@example.com", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	habit, err := c.Stores.Habits.Create(ctx, model.NewHabit{Title: "Run"})
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}
	if _, err := c.Stores.Habits.Toggle(ctx, habit.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := c.Stores.Diets.SetGoal(ctx, 2000); err != nil {
		t.Fatalf("set goal: %v", err)
	}
	if _, err := c.Stores.Status.Create(ctx, store.StatusInput{Weight: 80, Height: 1.8, Age: 30, Genere: model.GenereMasculine}); err != nil {
		t.Fatalf("create status: %v", err)
	}

	srv.FailNext("GET /api/stat/monthly", http.StatusBadGateway, "upstream down")
	d, err := c.LoadDashboard(ctx)
	if err == nil || !strings.Contains(err.Error(), "stats.monthly") {
		t.Fatalf("expected monthly failure reported, got %v", err)
	}
	if d.Habits.CompletedToday != 1 || d.Habits.TotalHabits != 1 {
		t.Fatalf("unexpected habit panel: %+v", d.Habits)
	}
	if d.Diet.Goal != 2000 || d.Diet.WeeklyGoal != 14000 {
		t.Fatalf("unexpected diet panel: %+v", d.Diet)
	}
	if !d.Water.Tracked || d.Water.Goal != 2800 {
		t.Fatalf("unexpected water panel: %+v", d.Water)
	}
	if d.Body.Class != "normal" {
		t.Fatalf("expected normal bmi class, got %q", d.Body.Class)
	}
}
