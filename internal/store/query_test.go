package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/saadjs/habitdash/internal/clock"
)

type tokenFunc func() string

func (f tokenFunc) Token() string { return f() }

func staticToken(tok string) tokenFunc {
	return func() string { return tok }
}

var now = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func TestQueryInertWithoutToken(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	env := &Env{Tokens: staticToken(""), Clock: clock.Fake(now)}
	q := NewQuery(KeyHabits, env, func(ctx context.Context, token string) ([]string, error) {
		calls.Add(1)
		return []string{"x"}, nil
	}, func() []string { return []string{} })

	snap := q.Read(context.Background())
	if snap.IsLoading || snap.Data == nil || len(snap.Data) != 0 {
		t.Fatalf("expected inert empty snapshot, got %+v", snap)
	}
	if _, err := q.Fetch(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	q.Wait()
	if calls.Load() != 0 {
		t.Fatalf("expected no requests without a token, got %d", calls.Load())
	}
}

func TestQueryDedupesConcurrentFetches(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	var calls atomic.Int32
	env := &Env{Tokens: staticToken("tok"), Clock: clock.Fake(now)}
	q := NewQuery(KeyStreak, env, func(ctx context.Context, token string) (int, error) {
		calls.Add(1)
		<-release
		return 7, nil
	}, nil)

	snap := q.Read(context.Background())
	if !snap.IsLoading {
		t.Fatalf("expected loading snapshot for empty cache")
	}
	var wg sync.WaitGroup
	results := make([]int, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := q.Fetch(context.Background())
			if err != nil {
				t.Errorf("fetch: %v", err)
			}
			results[i] = v
		}(i)
	}
	close(release)
	wg.Wait()
	q.Wait()
	if calls.Load() != 1 {
		t.Fatalf("expected one shared request, got %d", calls.Load())
	}
	for i, v := range results {
		if v != 7 {
			t.Fatalf("reader %d got %d", i, v)
		}
	}
}

func TestQueryFreshnessWindow(t *testing.T) {
	t.Parallel()
	clk := clock.Fake(now)
	var calls atomic.Int32
	env := &Env{Tokens: staticToken("tok"), Clock: clk, FreshFor: 30 * time.Second}
	q := NewQuery(KeyDailyStats, env, func(ctx context.Context, token string) (int32, error) {
		return calls.Add(1), nil
	}, nil)

	ctx := context.Background()
	if v, _ := q.Fetch(ctx); v != 1 {
		t.Fatalf("expected first fetch, got %d", v)
	}
	clk.Advance(29 * time.Second)
	q.Read(ctx)
	if v, _ := q.Fetch(ctx); v != 1 || calls.Load() != 1 {
		t.Fatalf("expected cached value inside window, got %d after %d calls", v, calls.Load())
	}
	clk.Advance(2 * time.Second)
	snap := q.Read(ctx)
	if snap.Data != 1 || !snap.Stale {
		t.Fatalf("expected stale value served while revalidating, got %+v", snap)
	}
	q.Wait()
	if calls.Load() != 2 {
		t.Fatalf("expected refetch after window, got %d calls", calls.Load())
	}
	if got := q.Peek(); got.Data != 2 || got.Stale {
		t.Fatalf("expected fresh value 2, got %+v", got)
	}
}

func TestQueryInvalidateDuringFlightKeepsStale(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	env := &Env{Tokens: staticToken("tok"), Clock: clock.Fake(now)}
	q := NewQuery(KeyWater, env, func(ctx context.Context, token string) (string, error) {
		<-release
		return "old", nil
	}, nil)

	q.Read(context.Background())
	q.Invalidate()
	close(release)
	q.Wait()
	snap := q.Peek()
	if snap.Data != "old" || !snap.Stale {
		t.Fatalf("expected response written but stale, got %+v", snap)
	}
}

func TestQueryResetDiscardsInflight(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	env := &Env{Tokens: staticToken("tok"), Clock: clock.Fake(now)}
	q := NewQuery(KeyStatus, env, func(ctx context.Context, token string) (string, error) {
		<-release
		return "previous user", nil
	}, nil)

	q.Read(context.Background())
	q.Reset()
	close(release)
	q.Wait()
	if q.HasData() {
		t.Fatalf("expected reset cache to drop late response, got %+v", q.Peek())
	}
}

func TestQueryFetchErrorKeepsData(t *testing.T) {
	t.Parallel()
	fail := atomic.Bool{}
	env := &Env{Tokens: staticToken("tok"), Clock: clock.Fake(now)}
	q := NewQuery(KeyDiets, env, func(ctx context.Context, token string) (string, error) {
		if fail.Load() {
			return "", errors.New("boom")
		}
		return "data", nil
	}, nil)
	if _, err := q.Fetch(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	fail.Store(true)
	if _, err := q.Refetch(context.Background()); err == nil {
		t.Fatalf("expected refetch error")
	}
	snap := q.Peek()
	if snap.Data != "data" || snap.Err == nil {
		t.Fatalf("expected last good data with error, got %+v", snap)
	}
}

type fakeCache struct {
	key         Key
	invalidated int
	has         bool
	refetched   atomic.Int32
}

func (f *fakeCache) Key() Key      { return f.key }
func (f *fakeCache) Invalidate()   { f.invalidated++ }
func (f *fakeCache) HasData() bool { return f.has }
func (f *fakeCache) revalidate(ctx context.Context) error {
	f.refetched.Add(1)
	return errors.New("offline")
}

func TestCoordinatorFanOut(t *testing.T) {
	t.Parallel()
	cases := []struct {
		m    Mutation
		want []Key
	}{
		{HabitCreated, []Key{KeyDailyStats, KeyWeeklyStats, KeyMonthlyStats, KeyStreak}},
		{HabitDeleted, []Key{KeyDailyStats, KeyWeeklyStats, KeyMonthlyStats, KeyStreak}},
		{HabitToggled, []Key{KeyDailyStats, KeyWeeklyStats, KeyMonthlyStats, KeyStreak}},
		{DietCreated, []Key{KeyDiets, KeyDietProgress}},
		{DietUpdated, []Key{KeyDiets, KeyDietProgress}},
		{DietDeleted, []Key{KeyDiets, KeyDietProgress}},
		{FoodAdded, []Key{KeyDiets, KeyDietProgress}},
		{FoodUpdated, []Key{KeyDiets, KeyDietProgress}},
		{FoodDeleted, []Key{KeyDiets, KeyDietProgress}},
		{DietGoalUpdated, []Key{KeyDiets, KeyDietProgress}},
		{StatusCreated, []Key{KeyStatus, KeyWater}},
		{StatusDeleted, []Key{KeyStatus, KeyWater}},
		{WaterUpdated, []Key{KeyWater}},
	}
	all := []Key{KeyHabits, KeyDailyStats, KeyWeeklyStats, KeyMonthlyStats, KeyStreak, KeyDiets, KeyDietProgress, KeyStatus, KeyWater}
	for _, tc := range cases {
		coord := NewCoordinator(nil)
		caches := map[Key]*fakeCache{}
		for _, k := range all {
			c := &fakeCache{key: k}
			caches[k] = c
			coord.Register(c)
		}
		coord.Notify(context.Background(), tc.m)
		for _, k := range all {
			want := 0
			for _, w := range tc.want {
				if w == k {
					want = 1
				}
			}
			if caches[k].invalidated != want {
				t.Fatalf("%s: key %s invalidated %d times, want %d", tc.m, k, caches[k].invalidated, want)
			}
		}
	}
}

func TestCoordinatorSkipsConfirmedAndSwallowsRefetchErrors(t *testing.T) {
	t.Parallel()
	coord := NewCoordinator(nil)
	coord.RefetchOnInvalidate = true
	daily := &fakeCache{key: KeyDailyStats, has: true}
	weekly := &fakeCache{key: KeyWeeklyStats, has: true}
	streak := &fakeCache{key: KeyStreak}
	coord.Register(daily, weekly, streak)

	marked := coord.Notify(context.Background(), HabitToggled, KeyDailyStats)
	coord.Wait()
	if daily.invalidated != 0 {
		t.Fatalf("confirmed key should not be invalidated")
	}
	if weekly.invalidated != 1 || streak.invalidated != 1 || len(marked) != 2 {
		t.Fatalf("expected weekly and streak marked, got %v", marked)
	}
	if weekly.refetched.Load() != 1 || streak.refetched.Load() != 0 {
		t.Fatalf("expected background refetch only for caches holding data")
	}
}
