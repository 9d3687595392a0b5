package service

import (
	"math"

	"github.com/saadjs/habitdash/internal/model"
)

// HabitsCompletedToday counts habits with a completed log for todayKey.
func HabitsCompletedToday(habits []model.Habit, todayKey string) int {
	count := 0
	for _, h := range habits {
		for _, log := range h.Logs {
			if log.DayKey == todayKey && log.Status {
				count++
				break
			}
		}
	}
	return count
}

func WeeklyAverage(weekly []model.WeeklyStat) int {
	values := make([]float64, 0, len(weekly))
	for _, w := range weekly {
		values = append(values, w.Percent)
	}
	return roundedMean(values)
}

func MonthlyAverage(monthly []model.MonthlyStat) int {
	values := make([]float64, 0, len(monthly))
	for _, m := range monthly {
		values = append(values, m.Percent)
	}
	return roundedMean(values)
}

func roundedMean(values []float64) int {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return int(math.Round(total / float64(len(values))))
}

func DietWeeklyGoal(dailyGoal float64) float64 {
	return dailyGoal * 7
}

// DietCalories returns the server aggregate for diets on dateKey. Food
// entries are never summed locally.
func DietCalories(diets []model.Diet, dateKey string) float64 {
	total := 0.0
	for _, d := range diets {
		if dateKey == "" || d.DateKey == dateKey {
			total += d.Calories
		}
	}
	return total
}

// WaterPercent is the share of goal reached, capped at 100.
func WaterPercent(p *model.WaterProgress) float64 {
	if p == nil || p.Goal <= 0 {
		return 0
	}
	return math.Min(100, math.Round(p.Water/p.Goal*1000)/10)
}
