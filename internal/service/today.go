package service

import "github.com/saadjs/habitdash/internal/model"

// DashboardInput is whatever the caches currently hold. Nil or empty fields
// render as empty panels.
type DashboardInput struct {
	Today    string
	Habits   []model.Habit
	Daily    model.DailyStats
	Weekly   []model.WeeklyStat
	Monthly  []model.MonthlyStat
	Streak   model.Streak
	Diets    model.DietResponse
	Progress model.DietProgress
	Status   []model.PhysicalStatus
	Water    model.WaterResponse
}

type HabitPanel struct {
	CompletedToday int           `json:"completed_today" yaml:"completed_today"`
	TotalHabits    int           `json:"total_habits" yaml:"total_habits"`
	DailyPercent   float64       `json:"daily_percent" yaml:"daily_percent"`
	WeeklyAverage  int           `json:"weekly_average" yaml:"weekly_average"`
	MonthlyAverage int           `json:"monthly_average" yaml:"monthly_average"`
	Streak         model.Streak  `json:"streak" yaml:"streak"`
	Pending        []model.Habit `json:"pending" yaml:"pending"`
	Done           []model.Habit `json:"done" yaml:"done"`
}

type DietPanel struct {
	Calories   float64 `json:"calories" yaml:"calories"`
	Goal       float64 `json:"goal" yaml:"goal"`
	WeeklyGoal float64 `json:"weekly_goal" yaml:"weekly_goal"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
	Achieved   bool    `json:"achieved" yaml:"achieved"`
	Meals      int     `json:"meals" yaml:"meals"`
	HasGoal    bool    `json:"has_goal" yaml:"has_goal"`
}

type WaterPanel struct {
	Water      float64 `json:"water_ml" yaml:"water_ml"`
	Goal       float64 `json:"goal_ml" yaml:"goal_ml"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
	Achieved   bool    `json:"achieved" yaml:"achieved"`
	Tracked    bool    `json:"tracked" yaml:"tracked"`
}

type BodyPanel struct {
	Latest *model.PhysicalStatus `json:"latest,omitempty" yaml:"latest,omitempty"`
	Class  BMIClass              `json:"bmi_class,omitempty" yaml:"bmi_class,omitempty"`
}

type Dashboard struct {
	Date   string     `json:"date" yaml:"date"`
	Habits HabitPanel `json:"habits" yaml:"habits"`
	Diet   DietPanel  `json:"diet" yaml:"diet"`
	Water  WaterPanel `json:"water" yaml:"water"`
	Body   BodyPanel  `json:"body" yaml:"body"`
}

// BuildDashboard assembles every panel from cached data. It is recomputed on
// each call and holds no state.
func BuildDashboard(in DashboardInput) Dashboard {
	d := Dashboard{Date: in.Today}

	d.Habits = HabitPanel{
		CompletedToday: HabitsCompletedToday(in.Habits, in.Today),
		TotalHabits:    len(in.Habits),
		DailyPercent:   in.Daily.Percent,
		WeeklyAverage:  WeeklyAverage(in.Weekly),
		MonthlyAverage: MonthlyAverage(in.Monthly),
		Streak:         in.Streak,
		Pending:        []model.Habit{},
		Done:           []model.Habit{},
	}
	for _, h := range in.Habits {
		if h.TodayStatus {
			d.Habits.Done = append(d.Habits.Done, h)
		} else {
			d.Habits.Pending = append(d.Habits.Pending, h)
		}
	}

	goal := in.Progress.Goal
	if goal == 0 {
		goal = in.Diets.Goal
	}
	d.Diet = DietPanel{
		Calories:   in.Progress.Calories,
		Goal:       goal,
		WeeklyGoal: DietWeeklyGoal(goal),
		Percentage: in.Progress.Percentage,
		Achieved:   in.Progress.Achieved,
		HasGoal:    goal > 0,
	}
	if in.Progress.Date == "" {
		d.Diet.Calories = DietCalories(in.Diets.Diets, in.Today)
		d.Diet.Achieved = in.Diets.GoalReached
	}
	for _, diet := range in.Diets.Diets {
		if diet.DateKey == in.Today {
			d.Diet.Meals++
		}
	}

	if today := in.Water.Today; today != nil {
		d.Water = WaterPanel{
			Water:      today.Water,
			Goal:       today.Goal,
			Percentage: WaterPercent(today),
			Achieved:   today.Achieved,
			Tracked:    true,
		}
	}

	if latest := LatestStatus(in.Status); latest != nil {
		d.Body = BodyPanel{Latest: latest, Class: ClassifyBMI(latest.IMC)}
	}
	return d
}
