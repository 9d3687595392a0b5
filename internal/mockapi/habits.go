package mockapi

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/saadjs/habitdash/internal/clock"
	"github.com/saadjs/habitdash/internal/model"
)

func (s *Server) handleListHabits(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	s.mu.Lock()
	out := s.habitsLocked(uid)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateHabit(w http.ResponseWriter, r *http.Request) {
	var in model.NewHabit
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if in.Frequency == "" {
		in.Frequency = model.FrequencyDaily
	}
	if !in.Frequency.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid frequency %q", in.Frequency))
		return
	}
	habit := &model.Habit{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Frequency:   in.Frequency,
		Logs:        []model.HabitLog{},
	}
	uid := userID(r)
	s.mu.Lock()
	s.habits[uid] = append(s.habits[uid], habit)
	out := *habit
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleDeleteHabit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	uid := userID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.habits[uid]
	for i, h := range list {
		if h.ID == id {
			s.habits[uid] = append(list[:i:i], list[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "habit not found")
}

func (s *Server) handleToggleHabit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	uid := userID(r)
	today := s.today()

	s.mu.Lock()
	defer s.mu.Unlock()
	var habit *model.Habit
	for _, h := range s.habits[uid] {
		if h.ID == id {
			habit = h
			break
		}
	}
	if habit == nil {
		writeError(w, http.StatusNotFound, "habit not found")
		return
	}
	toggled := false
	for i := range habit.Logs {
		if habit.Logs[i].DayKey == today {
			habit.Logs[i].Status = !habit.Logs[i].Status
			toggled = true
			break
		}
	}
	if !toggled {
		habit.Logs = append(habit.Logs, model.HabitLog{ID: uuid.NewString(), DayKey: today, Status: true})
	}
	habit.TodayStatus = doneOn(habit, today)

	stats := s.dailyLocked(uid, today)
	out := *habit
	out.Logs = append([]model.HabitLog(nil), habit.Logs...)
	writeJSON(w, http.StatusOK, model.ToggleResponse{Habit: &out, Stats: &stats})
}

func (s *Server) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stats := s.dailyLocked(userID(r), s.today())
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, stats)
}

// handleWeeklyStats reports the last seven days, oldest first.
func (s *Server) handleWeeklyStats(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	now := s.clock.Now()
	s.mu.Lock()
	out := make([]model.WeeklyStat, 0, 7)
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		out = append(out, model.WeeklyStat{
			Day:     day.Weekday().String()[:3],
			Percent: s.percentOnLocked(uid, clock.DayKey(day)),
		})
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

// handleMonthlyStats reports the last four seven-day windows, oldest first.
func (s *Server) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	now := s.clock.Now()
	s.mu.Lock()
	out := make([]model.MonthlyStat, 0, 4)
	for week := 3; week >= 0; week-- {
		total := 0.0
		for d := 0; d < 7; d++ {
			total += s.percentOnLocked(uid, clock.DayKey(now.AddDate(0, 0, -(week*7+d))))
		}
		out = append(out, model.MonthlyStat{
			Week:    fmt.Sprintf("W%d", 4-week),
			Percent: math.Round(total / 7),
		})
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

// handleStreak counts consecutive days with at least one completed habit.
// The current streak may end yesterday if today has nothing done yet.
func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	days := map[string]bool{}
	earliest := now
	for _, h := range s.habits[uid] {
		for _, log := range h.Logs {
			if !log.Status {
				continue
			}
			days[log.DayKey] = true
			if t, err := time.ParseInLocation("2006-01-02", log.DayKey, now.Location()); err == nil && t.Before(earliest) {
				earliest = t
			}
		}
	}

	var streak model.Streak
	run := 0
	for day := earliest; !day.After(now); day = day.AddDate(0, 0, 1) {
		if days[clock.DayKey(day)] {
			run++
			streak.MaxStreak = max(streak.MaxStreak, run)
		} else {
			run = 0
		}
	}
	current := 0
	day := now
	if !days[clock.DayKey(day)] {
		day = day.AddDate(0, 0, -1)
	}
	for days[clock.DayKey(day)] {
		current++
		day = day.AddDate(0, 0, -1)
	}
	streak.CurrentStreak = current
	writeJSON(w, http.StatusOK, streak)
}

func (s *Server) habitsLocked(uid string) []model.Habit {
	today := s.today()
	out := make([]model.Habit, 0, len(s.habits[uid]))
	for _, h := range s.habits[uid] {
		cp := *h
		cp.Logs = append([]model.HabitLog{}, h.Logs...)
		cp.TodayStatus = doneOn(h, today)
		out = append(out, cp)
	}
	return out
}

func (s *Server) dailyLocked(uid, day string) model.DailyStats {
	stats := model.DailyStats{TotalHabits: len(s.habits[uid])}
	for _, h := range s.habits[uid] {
		if doneOn(h, day) {
			stats.CompletedToday++
		}
	}
	if stats.TotalHabits > 0 {
		stats.Percent = math.Round(float64(stats.CompletedToday) / float64(stats.TotalHabits) * 100)
	}
	return stats
}

func (s *Server) percentOnLocked(uid, day string) float64 {
	return s.dailyLocked(uid, day).Percent
}

func doneOn(h *model.Habit, day string) bool {
	for _, log := range h.Logs {
		if log.DayKey == day && log.Status {
			return true
		}
	}
	return false
}
