package service_test

import (
	"testing"

	"github.com/saadjs/habitdash/internal/model"
	"github.com/saadjs/habitdash/internal/service"
)

func TestHabitsCompletedToday(t *testing.T) {
	t.Parallel()
	habits := []model.Habit{
		{ID: "a", Logs: []model.HabitLog{{DayKey: "2025-01-10", Status: true}}},
		{ID: "b", Logs: []model.HabitLog{{DayKey: "2025-01-10", Status: false}}},
		{ID: "c", Logs: []model.HabitLog{{DayKey: "2025-01-09", Status: true}}},
		{ID: "d", Logs: []model.HabitLog{{DayKey: "2025-01-10", Status: true}, {DayKey: "2025-01-10", Status: true}}},
		{ID: "e"},
	}
	if got := service.HabitsCompletedToday(habits, "2025-01-10"); got != 2 {
		t.Fatalf("expected 2 completed habits, got %d", got)
	}
	if got := service.HabitsCompletedToday(nil, "2025-01-10"); got != 0 {
		t.Fatalf("expected 0 for no habits, got %d", got)
	}
}

func TestAverages(t *testing.T) {
	t.Parallel()
	weekly := []model.WeeklyStat{{Day: "mon", Percent: 100}, {Day: "tue", Percent: 50}, {Day: "wed", Percent: 0}}
	if got := service.WeeklyAverage(weekly); got != 50 {
		t.Fatalf("expected weekly average 50, got %d", got)
	}
	if got := service.WeeklyAverage(nil); got != 0 {
		t.Fatalf("expected 0 for empty weekly stats, got %d", got)
	}
	monthly := []model.MonthlyStat{{Week: "1", Percent: 33.3}, {Week: "2", Percent: 66.7}, {Week: "3", Percent: 67}}
	if got := service.MonthlyAverage(monthly); got != 56 {
		t.Fatalf("expected monthly average 56, got %d", got)
	}
}

func TestDietHelpers(t *testing.T) {
	t.Parallel()
	if got := service.DietWeeklyGoal(2000); got != 14000 {
		t.Fatalf("expected weekly goal 14000, got %v", got)
	}
	diets := []model.Diet{
		{ID: "1", DateKey: "2025-01-10", Calories: 250, Foods: []model.Food{{Calories: 999}}},
		{ID: "2", DateKey: "2025-01-10", Calories: 400},
		{ID: "3", DateKey: "2025-01-09", Calories: 800},
	}
	if got := service.DietCalories(diets, "2025-01-10"); got != 650 {
		t.Fatalf("expected server aggregates 650, got %v", got)
	}
}

func TestBuildDashboard(t *testing.T) {
	t.Parallel()
	d := service.BuildDashboard(service.DashboardInput{
		Today: "2025-01-10",
		Habits: []model.Habit{
			{ID: "h1", Title: "Run", TodayStatus: true, Logs: []model.HabitLog{{DayKey: "2025-01-10", Status: true}}},
			{ID: "h2", Title: "Read"},
		},
		Daily:    model.DailyStats{CompletedToday: 1, TotalHabits: 2, Percent: 50},
		Weekly:   []model.WeeklyStat{{Day: "fri", Percent: 50}},
		Streak:   model.Streak{CurrentStreak: 3, MaxStreak: 7},
		Diets:    model.DietResponse{Diets: []model.Diet{{ID: "d1", DateKey: "2025-01-10", Calories: 500}}, Goal: 2000},
		Progress: model.DietProgress{Date: "2025-01-10", Calories: 500, Goal: 2000, Percentage: 25},
		Status:   []model.PhysicalStatus{{ID: "s1", IMC: 31}, {ID: "s2", IMC: 22}},
		Water:    model.WaterResponse{Today: &model.WaterProgress{ID: "w1", Water: 1500, Goal: 3000}},
	})
	if d.Habits.CompletedToday != 1 || len(d.Habits.Done) != 1 || len(d.Habits.Pending) != 1 {
		t.Fatalf("unexpected habit panel: %+v", d.Habits)
	}
	if d.Habits.WeeklyAverage != 50 || d.Habits.Streak.MaxStreak != 7 {
		t.Fatalf("unexpected habit stats: %+v", d.Habits)
	}
	if d.Diet.WeeklyGoal != 14000 || d.Diet.Calories != 500 || d.Diet.Meals != 1 || !d.Diet.HasGoal {
		t.Fatalf("unexpected diet panel: %+v", d.Diet)
	}
	if !d.Water.Tracked || d.Water.Percentage != 50 {
		t.Fatalf("unexpected water panel: %+v", d.Water)
	}
	if d.Body.Latest == nil || d.Body.Latest.ID != "s2" || d.Body.Class != service.BMINormal {
		t.Fatalf("unexpected body panel: %+v", d.Body)
	}
}

func TestBuildDashboardEmpty(t *testing.T) {
	t.Parallel()
	d := service.BuildDashboard(service.DashboardInput{Today: "2025-01-10"})
	if d.Habits.TotalHabits != 0 || d.Diet.HasGoal || d.Water.Tracked || d.Body.Latest != nil {
		t.Fatalf("expected empty panels, got %+v", d)
	}
}
