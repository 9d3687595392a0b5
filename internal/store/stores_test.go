package store_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/saadjs/habitdash/internal/api"
	"github.com/saadjs/habitdash/internal/clock"
	"github.com/saadjs/habitdash/internal/db"
	"github.com/saadjs/habitdash/internal/mockapi"
	"github.com/saadjs/habitdash/internal/model"
	"github.com/saadjs/habitdash/internal/store"
)

var now = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

type tokenHolder struct {
	mu  sync.Mutex
	tok string
}

func (h *tokenHolder) Token() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tok
}

func (h *tokenHolder) set(tok string) {
	h.mu.Lock()
	h.tok = tok
	h.mu.Unlock()
}

type fixture struct {
	srv    *mockapi.Server
	api    *api.Client
	tokens *tokenHolder
	clock  *clock.FakeClock
	env    *store.Env
	stores *store.Stores
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := clock.Fake(now)
	srv := mockapi.New(mockapi.Options{Secret: []byte("test-secret"), Clock: clk})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	tokens := &tokenHolder{}
	client := &api.Client{BaseURL: ts.URL, HTTPClient: ts.Client(), Tokens: tokens}
	env := &store.Env{Tokens: tokens, Clock: clk}
	f := &fixture{srv: srv, api: client, tokens: tokens, clock: clk, env: env, stores: store.New(env, client, nil)}
	t.Cleanup(f.stores.Wait)
	return f
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	resp, err := f.api.Register(context.Background(), "Ana", "ana@example.com", "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	f.tokens.set(resp.Token)
}

func TestStoresInertWithoutToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	if snap := f.stores.Habits.Read(ctx); len(snap.Data) != 0 || snap.IsLoading {
		t.Fatalf("expected empty habits, got %+v", snap)
	}
	f.stores.Stats.Daily.Read(ctx)
	f.stores.Diets.Read(ctx)
	f.stores.Water.Read(ctx)

	if _, err := f.stores.Habits.Create(ctx, model.NewHabit{Title: "Run"}); !errors.Is(err, store.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := f.stores.Habits.Toggle(ctx, "h1"); !errors.Is(err, store.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := f.stores.Water.Add(ctx, 250); !errors.Is(err, store.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	f.stores.Wait()
	if got := f.srv.TotalHits(); got != 0 {
		t.Fatalf("expected no requests without a token, got %d", got)
	}
}

func TestToggleWritesDailyStatsWithoutRead(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	habit, err := f.stores.Habits.Create(ctx, model.NewHabit{Title: "Run", Frequency: model.FrequencyDaily})
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}
	if _, err := f.stores.Stats.Streak.Fetch(ctx); err != nil {
		t.Fatalf("prime streak: %v", err)
	}
	if _, err := f.stores.Stats.Weekly.Fetch(ctx); err != nil {
		t.Fatalf("prime weekly: %v", err)
	}

	if _, err := f.stores.Habits.Toggle(ctx, habit.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	daily := f.stores.Stats.Daily.Peek()
	want := model.DailyStats{CompletedToday: 1, TotalHabits: 1, Percent: 100}
	if daily.Data != want || daily.Stale {
		t.Fatalf("expected daily %+v fresh, got %+v", want, daily)
	}
	if got := f.srv.Hits("GET /api/stat/daily"); got != 0 {
		t.Fatalf("expected no daily stats request, got %d", got)
	}
	if !f.stores.Stats.Weekly.Stale() || !f.stores.Stats.Streak.Stale() || !f.stores.Stats.Monthly.Stale() {
		t.Fatalf("expected multi-day stats invalidated after toggle")
	}

	habits, err := f.stores.Habits.Fetch(ctx)
	if err != nil {
		t.Fatalf("fetch habits: %v", err)
	}
	if len(habits) != 1 || !habits[0].TodayStatus {
		t.Fatalf("expected toggled habit in cache, got %+v", habits)
	}
}

func TestToggleFailureInvalidatesAllStats(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	habit, err := f.stores.Habits.Create(ctx, model.NewHabit{Title: "Run"})
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}
	before, err := f.stores.Habits.Fetch(ctx)
	if err != nil {
		t.Fatalf("fetch habits: %v", err)
	}
	if _, err := f.stores.Stats.Daily.Fetch(ctx); err != nil {
		t.Fatalf("prime daily: %v", err)
	}

	f.srv.FailNext("POST /api/habit/{id}/logs/toggle", http.StatusInternalServerError, "db down")
	_, err = f.stores.Habits.Toggle(ctx, habit.ID)
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "db down" {
		t.Fatalf("expected surfaced api error, got %v", err)
	}
	if after := f.stores.Habits.Peek().Data; !reflect.DeepEqual(before, after) {
		t.Fatalf("failed toggle changed cache:\nbefore=%+v\nafter=%+v", before, after)
	}
	if !f.stores.Stats.Daily.Stale() {
		t.Fatalf("expected daily stats invalidated after failed toggle")
	}
}

func TestFailedMutationsLeaveCacheUntouched(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	if _, err := f.stores.Habits.Create(ctx, model.NewHabit{Title: "Run"}); err != nil {
		t.Fatalf("create habit: %v", err)
	}
	before, err := f.stores.Habits.Refetch(ctx)
	if err != nil {
		t.Fatalf("refetch: %v", err)
	}

	f.srv.FailNext("POST /api/habit", http.StatusBadRequest, "title taken")
	if _, err := f.stores.Habits.Create(ctx, model.NewHabit{Title: "Run"}); !api.IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("expected create failure, got %v", err)
	}
	f.srv.FailNext("DELETE /api/habit/{id}", http.StatusNotFound, "missing")
	if err := f.stores.Habits.Delete(ctx, before[0].ID); !api.IsStatus(err, http.StatusNotFound) {
		t.Fatalf("expected delete failure, got %v", err)
	}
	after := f.stores.Habits.Peek()
	if !reflect.DeepEqual(before, after.Data) || after.Stale {
		t.Fatalf("failed mutations changed cache:\nbefore=%+v\nafter=%+v", before, after)
	}
}

func TestCreateAppendsAndRefetches(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	if _, err := f.stores.Habits.Fetch(ctx); err != nil {
		t.Fatalf("fetch habits: %v", err)
	}
	created, err := f.stores.Habits.Create(ctx, model.NewHabit{Title: "Read"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	snap := f.stores.Habits.Peek()
	if len(snap.Data) != 1 || snap.Data[0].ID != created.ID || !snap.Stale {
		t.Fatalf("expected appended habit marked stale, got %+v", snap)
	}
	if _, err := f.stores.Habits.Fetch(ctx); err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if got := f.srv.Hits("GET /api/habit"); got != 2 {
		t.Fatalf("expected refetch after create, got %d list requests", got)
	}

	if err := f.stores.Habits.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if snap := f.stores.Habits.Peek(); len(snap.Data) != 0 {
		t.Fatalf("expected habit removed by id, got %+v", snap.Data)
	}
}

func TestFreshReadsShareOneRequest(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	for i := 0; i < 3; i++ {
		if _, err := f.stores.Stats.Streak.Fetch(ctx); err != nil {
			t.Fatalf("fetch streak: %v", err)
		}
		f.clock.Advance(10 * time.Second)
	}
	if got := f.srv.Hits("GET /api/stat/streak"); got != 1 {
		t.Fatalf("expected 1 request inside the window, got %d", got)
	}
	f.clock.Advance(time.Second)
	if _, err := f.stores.Stats.Streak.Fetch(ctx); err != nil {
		t.Fatalf("fetch streak: %v", err)
	}
	if got := f.srv.Hits("GET /api/stat/streak"); got != 2 {
		t.Fatalf("expected refetch after 31s, got %d", got)
	}
}

func TestDietAggregatesComeFromServer(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	diet, err := f.stores.Diets.Create(ctx, model.NewDiet{
		Type:        model.DietCutting,
		Description: "Lunch",
		Period:      model.PeriodMidday,
		DateKey:     "2025-01-10",
	})
	if err != nil {
		t.Fatalf("create diet: %v", err)
	}
	resp, err := f.stores.Diets.Fetch(ctx)
	if err != nil {
		t.Fatalf("fetch diets: %v", err)
	}
	if len(resp.Diets) != 1 || resp.Diets[0].Calories != 0 {
		t.Fatalf("expected one empty diet, got %+v", resp)
	}
	if _, err := f.stores.Diets.Progress.Fetch(ctx); err != nil {
		t.Fatalf("fetch progress: %v", err)
	}

	if err := f.stores.Diets.AddFood(ctx, diet.ID, model.NewFood{Description: "Chicken", Grams: 150, Calories: 250}); err != nil {
		t.Fatalf("add food: %v", err)
	}
	if cached := f.stores.Diets.Peek(); cached.Data.Diets[0].Calories != 0 || !cached.Stale {
		t.Fatalf("expected no local aggregate math and a stale list, got %+v", cached)
	}
	if !f.stores.Diets.Progress.Stale() {
		t.Fatalf("expected diet progress invalidated")
	}
	resp, err = f.stores.Diets.Fetch(ctx)
	if err != nil {
		t.Fatalf("refetch diets: %v", err)
	}
	if resp.Diets[0].Calories != 250 || resp.TotalCalories != 250 {
		t.Fatalf("expected server aggregate 250, got %+v", resp)
	}

	progress, err := f.stores.Diets.SetGoal(ctx, 2000)
	if err != nil {
		t.Fatalf("set goal: %v", err)
	}
	if got := f.stores.Diets.Progress.Peek(); got.Data != progress || got.Stale {
		t.Fatalf("expected goal response written into progress cache, got %+v", got)
	}
	if !f.stores.Diets.Stale() {
		t.Fatalf("expected diet list invalidated after goal update")
	}
}

func TestStatusAndWater(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	if _, err := f.stores.Water.Add(ctx, 250); !errors.Is(err, store.ErrNoWaterToday) {
		t.Fatalf("expected ErrNoWaterToday, got %v", err)
	}
	status, err := f.stores.Status.Create(ctx, store.StatusInput{Weight: 80, Height: 1.8, Age: 30, Genere: model.GenereMasculine})
	if err != nil {
		t.Fatalf("create status: %v", err)
	}
	if status.IMC < 24.69 || status.IMC > 24.70 || status.TMB < 1863.7 || status.TMB > 1863.8 {
		t.Fatalf("expected computed imc/tmb in payload, got %+v", status)
	}
	if !f.stores.Water.Stale() {
		t.Fatalf("expected water invalidated after status create")
	}

	if _, err := f.stores.Water.Add(ctx, 250); err != nil {
		t.Fatalf("add water: %v", err)
	}
	progress, err := f.stores.Water.Add(ctx, 500)
	if err != nil {
		t.Fatalf("add water: %v", err)
	}
	if progress.Water != 750 {
		t.Fatalf("expected cumulative 750ml, got %v", progress.Water)
	}

	if err := f.stores.Status.Delete(ctx, status.ID); err != nil {
		t.Fatalf("delete status: %v", err)
	}
	if list := f.stores.Status.Peek().Data; len(list) != 0 {
		t.Fatalf("expected status removed, got %+v", list)
	}
}

func TestBuildStatusValidation(t *testing.T) {
	t.Parallel()
	cases := []store.StatusInput{
		{Weight: 0, Height: 1.7, Age: 30, Genere: model.GenereFeminine},
		{Weight: 60, Height: 170, Age: 30, Genere: model.GenereFeminine},
		{Weight: 60, Height: 1.7, Age: 0, Genere: model.GenereFeminine},
		{Weight: 60, Height: 1.7, Age: 30, Genere: "x"},
	}
	for _, in := range cases {
		if _, err := store.BuildStatus(in); err == nil {
			t.Fatalf("expected validation error for %+v", in)
		}
	}
	out, err := store.BuildStatus(store.StatusInput{Weight: 60, Height: 1.65, Age: 25, Genere: " Feminine "})
	if err != nil || out.Genere != model.GenereFeminine || out.IMC == 0 {
		t.Fatalf("expected normalized payload, got %+v err=%v", out, err)
	}
}

func TestResetDropsEveryCache(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	if _, err := f.stores.Habits.Fetch(ctx); err != nil {
		t.Fatalf("fetch habits: %v", err)
	}
	if _, err := f.stores.Stats.Daily.Fetch(ctx); err != nil {
		t.Fatalf("fetch daily: %v", err)
	}
	f.stores.Reset()
	if f.stores.Habits.HasData() || f.stores.Stats.Daily.HasData() {
		t.Fatalf("expected caches dropped after reset")
	}
}

func TestPersistedCacheServesNextProcess(t *testing.T) {
	t.Parallel()
	sqldb, err := db.OpenMigrated(filepath.Join(t.TempDir(), "habitdash.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()

	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	if _, err := f.stores.Habits.Create(ctx, model.NewHabit{Title: "Run"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	owner := func() string { return "u1" }
	env := &store.Env{Tokens: f.tokens, Clock: f.clock, Persister: store.NewSQLitePersister(sqldb, owner)}
	first := store.New(env, f.api, nil)
	if _, err := first.Habits.Fetch(ctx); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	hits := f.srv.Hits("GET /api/habit")

	f.clock.Advance(5 * time.Second)
	second := store.New(&store.Env{Tokens: f.tokens, Clock: f.clock, Persister: store.NewSQLitePersister(sqldb, owner)}, f.api, nil)
	habits, err := second.Habits.Fetch(ctx)
	if err != nil {
		t.Fatalf("fetch from persisted cache: %v", err)
	}
	if len(habits) != 1 || habits[0].Title != "Run" {
		t.Fatalf("expected persisted habits, got %+v", habits)
	}
	if got := f.srv.Hits("GET /api/habit"); got != hits {
		t.Fatalf("expected no request inside the window, got %d (was %d)", got, hits)
	}

	other := store.New(&store.Env{Tokens: f.tokens, Clock: f.clock, Persister: store.NewSQLitePersister(sqldb, func() string { return "u2" })}, f.api, nil)
	if _, err := other.Habits.Fetch(ctx); err != nil {
		t.Fatalf("fetch as another user: %v", err)
	}
	if got := f.srv.Hits("GET /api/habit"); got != hits+1 {
		t.Fatalf("expected another user to miss the cached entry, got %d requests (was %d)", got, hits)
	}

	items, err := store.ListCache(sqldb, 0)
	if err != nil || len(items) == 0 {
		t.Fatalf("expected cache entries listed, got %v err=%v", items, err)
	}
	n, err := store.PurgeCache(sqldb, "habits", false)
	if err != nil || n != 1 {
		t.Fatalf("expected one purged entry, got %d err=%v", n, err)
	}
}
