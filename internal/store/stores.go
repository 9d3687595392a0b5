package store

import "log/slog"

// Backend is the full set of endpoints the stores read and write through.
type Backend interface {
	HabitAPI
	StatsAPI
	DietAPI
	StatusAPI
	WaterAPI
}

// Stores groups every resource store behind one coordinator.
type Stores struct {
	Habits *Habits
	Stats  *Stats
	Diets  *Diets
	Status *Status
	Water  *Water
	Coord  *Coordinator
}

func New(env *Env, backend Backend, logger *slog.Logger) *Stores {
	coord := NewCoordinator(logger)
	stats := NewStats(env, backend)
	s := &Stores{
		Habits: NewHabits(env, backend, stats, coord),
		Stats:  stats,
		Diets:  NewDiets(env, backend, coord),
		Status: NewStatus(env, backend, coord),
		Water:  NewWater(env, backend, coord),
		Coord:  coord,
	}
	coord.Register(s.all()...)
	return s
}

func (s *Stores) all() []Invalidatable {
	out := []Invalidatable{s.Habits}
	out = append(out, s.Stats.queries()...)
	return append(out, s.Diets.Query, s.Diets.Progress, s.Status, s.Water)
}

// Reset drops every cached value. Used on logout.
func (s *Stores) Reset() {
	s.Habits.Reset()
	s.Stats.Daily.Reset()
	s.Stats.Weekly.Reset()
	s.Stats.Monthly.Reset()
	s.Stats.Streak.Reset()
	s.Diets.Reset()
	s.Diets.Progress.Reset()
	s.Status.Reset()
	s.Water.Reset()
}

// Wait blocks until every background fetch has settled.
func (s *Stores) Wait() {
	s.Coord.Wait()
	s.Habits.Wait()
	s.Stats.Daily.Wait()
	s.Stats.Weekly.Wait()
	s.Stats.Monthly.Wait()
	s.Stats.Streak.Wait()
	s.Diets.Wait()
	s.Diets.Progress.Wait()
	s.Status.Wait()
	s.Water.Wait()
}
