package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/saadjs/habitdash/internal/model"
)

type HabitAPI interface {
	ListHabits(ctx context.Context, token string) ([]model.Habit, error)
	CreateHabit(ctx context.Context, token string, in model.NewHabit) (model.Habit, error)
	DeleteHabit(ctx context.Context, token, id string) error
	ToggleHabit(ctx context.Context, token, id string) (model.ToggleResponse, error)
}

type StatsAPI interface {
	DailyStats(ctx context.Context, token string) (model.DailyStats, error)
	WeeklyStats(ctx context.Context, token string) ([]model.WeeklyStat, error)
	MonthlyStats(ctx context.Context, token string) ([]model.MonthlyStat, error)
	Streak(ctx context.Context, token string) (model.Streak, error)
}

// Stats holds the habit statistics caches. They are read-only on the client
// and only change through invalidation or the toggle shortcut.
type Stats struct {
	Daily   *Query[model.DailyStats]
	Weekly  *Query[[]model.WeeklyStat]
	Monthly *Query[[]model.MonthlyStat]
	Streak  *Query[model.Streak]
}

func NewStats(env *Env, backend StatsAPI) *Stats {
	return &Stats{
		Daily:   NewQuery(KeyDailyStats, env, backend.DailyStats, nil),
		Weekly:  NewQuery(KeyWeeklyStats, env, backend.WeeklyStats, func() []model.WeeklyStat { return []model.WeeklyStat{} }),
		Monthly: NewQuery(KeyMonthlyStats, env, backend.MonthlyStats, func() []model.MonthlyStat { return []model.MonthlyStat{} }),
		Streak:  NewQuery(KeyStreak, env, backend.Streak, nil),
	}
}

func (s *Stats) queries() []Invalidatable {
	return []Invalidatable{s.Daily, s.Weekly, s.Monthly, s.Streak}
}

type Habits struct {
	*Query[[]model.Habit]
	env     *Env
	backend HabitAPI
	stats   *Stats
	coord   *Coordinator
}

func NewHabits(env *Env, backend HabitAPI, stats *Stats, coord *Coordinator) *Habits {
	return &Habits{
		Query:   NewQuery(KeyHabits, env, backend.ListHabits, func() []model.Habit { return []model.Habit{} }),
		env:     env,
		backend: backend,
		stats:   stats,
		coord:   coord,
	}
}

// Create adds a habit. The server's copy is appended once confirmed and the
// list is marked stale so the next read picks up server-side defaults.
func (h *Habits) Create(ctx context.Context, in model.NewHabit) (model.Habit, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" {
		return model.Habit{}, fmt.Errorf("habit title is required")
	}
	if in.Frequency == "" {
		in.Frequency = model.FrequencyDaily
	}
	if !in.Frequency.Valid() {
		return model.Habit{}, fmt.Errorf("invalid frequency %q (use daily, weekly or monthly)", in.Frequency)
	}
	token := h.env.token()
	if token == "" {
		return model.Habit{}, ErrNotAuthenticated
	}
	created, err := h.backend.CreateHabit(ctx, token, in)
	if err != nil {
		return model.Habit{}, err
	}
	h.Update(func(list []model.Habit) []model.Habit {
		return append(cloneHabits(list), created)
	})
	h.Invalidate()
	h.coord.Notify(ctx, HabitCreated)
	return created, nil
}

func (h *Habits) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("habit id is required")
	}
	token := h.env.token()
	if token == "" {
		return ErrNotAuthenticated
	}
	if err := h.backend.DeleteHabit(ctx, token, id); err != nil {
		return err
	}
	h.Update(func(list []model.Habit) []model.Habit {
		out := make([]model.Habit, 0, len(list))
		for _, habit := range list {
			if habit.ID != id {
				out = append(out, habit)
			}
		}
		return out
	})
	h.coord.Notify(ctx, HabitDeleted)
	return nil
}

// Toggle flips today's completion. On success the returned habit replaces
// the cached one and the returned daily stats are written straight into the
// daily cache. The multi-day statistics are invalidated whatever the outcome.
func (h *Habits) Toggle(ctx context.Context, id string) (model.ToggleResponse, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.ToggleResponse{}, fmt.Errorf("habit id is required")
	}
	token := h.env.token()
	if token == "" {
		return model.ToggleResponse{}, ErrNotAuthenticated
	}
	resp, err := h.backend.ToggleHabit(ctx, token, id)
	if err != nil {
		h.coord.Notify(ctx, HabitToggled)
		return model.ToggleResponse{}, err
	}

	updated := *resp.Habit
	if !h.Update(func(list []model.Habit) []model.Habit {
		return replaceHabit(list, updated)
	}) {
		h.Set([]model.Habit{updated})
		h.Invalidate()
	}
	if resp.Stats != nil {
		h.stats.Daily.Set(*resp.Stats)
		h.coord.Notify(ctx, HabitToggled, KeyDailyStats)
	} else {
		h.coord.Notify(ctx, HabitToggled)
	}
	return resp, nil
}

func replaceHabit(list []model.Habit, updated model.Habit) []model.Habit {
	out := cloneHabits(list)
	for i := range out {
		if out[i].ID == updated.ID {
			out[i] = updated
			return out
		}
	}
	return append(out, updated)
}

func cloneHabits(list []model.Habit) []model.Habit {
	out := make([]model.Habit, len(list), len(list)+1)
	copy(out, list)
	return out
}
