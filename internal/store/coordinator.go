package store

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
)

// Mutation names a successful (or settled) write that other caches depend on.
type Mutation string

const (
	HabitCreated    Mutation = "habit.create"
	HabitDeleted    Mutation = "habit.delete"
	HabitToggled    Mutation = "habit.toggle"
	DietCreated     Mutation = "diet.create"
	DietUpdated     Mutation = "diet.update"
	DietDeleted     Mutation = "diet.delete"
	FoodAdded       Mutation = "food.add"
	FoodUpdated     Mutation = "food.update"
	FoodDeleted     Mutation = "food.delete"
	DietGoalUpdated Mutation = "diet.goal"
	StatusCreated   Mutation = "status.create"
	StatusDeleted   Mutation = "status.delete"
	WaterUpdated    Mutation = "water.update"
)

var habitStats = []Key{KeyDailyStats, KeyWeeklyStats, KeyMonthlyStats, KeyStreak}

var dietViews = []Key{KeyDiets, KeyDietProgress}

// dependencies is the cross-store invalidation table.
var dependencies = map[Mutation][]Key{
	HabitCreated:    habitStats,
	HabitDeleted:    habitStats,
	HabitToggled:    habitStats,
	DietCreated:     dietViews,
	DietUpdated:     dietViews,
	DietDeleted:     dietViews,
	FoodAdded:       dietViews,
	FoodUpdated:     dietViews,
	FoodDeleted:     dietViews,
	DietGoalUpdated: dietViews,
	StatusCreated:   {KeyStatus, KeyWater},
	StatusDeleted:   {KeyStatus, KeyWater},
	WaterUpdated:    {KeyWater},
}

// Dependents returns the keys a mutation marks stale.
func Dependents(m Mutation) []Key {
	return slices.Clone(dependencies[m])
}

// Invalidatable is the slice of a cache the coordinator may touch: it can
// flip staleness and ask for a background refresh, never write data.
type Invalidatable interface {
	Key() Key
	Invalidate()
	HasData() bool
	revalidate(ctx context.Context) error
}

func (q *Query[T]) revalidate(ctx context.Context) error {
	_, err := q.Fetch(ctx)
	return err
}

type Coordinator struct {
	mu     sync.RWMutex
	stores map[Key]Invalidatable
	logger *slog.Logger
	wg     sync.WaitGroup

	// RefetchOnInvalidate starts a background refresh for invalidated
	// caches that already hold data. Failures are logged only.
	RefetchOnInvalidate bool
}

func NewCoordinator(logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Coordinator{stores: map[Key]Invalidatable{}, logger: logger}
}

func (c *Coordinator) Register(stores ...Invalidatable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range stores {
		c.stores[s.Key()] = s
	}
}

// Notify marks every dependent of m stale, except keys the caller already
// refreshed from the mutation's own response. It never blocks on the network.
func (c *Coordinator) Notify(ctx context.Context, m Mutation, confirmed ...Key) []Key {
	keys := dependencies[m]
	marked := make([]Key, 0, len(keys))
	c.mu.RLock()
	targets := make([]Invalidatable, 0, len(keys))
	for _, key := range keys {
		if slices.Contains(confirmed, key) {
			continue
		}
		s, ok := c.stores[key]
		if !ok {
			continue
		}
		targets = append(targets, s)
		marked = append(marked, key)
	}
	c.mu.RUnlock()

	for _, s := range targets {
		s.Invalidate()
	}
	c.logger.Debug("invalidated", "mutation", m, "keys", marked)

	if c.RefetchOnInvalidate {
		bg := context.WithoutCancel(ctx)
		for _, s := range targets {
			if !s.HasData() {
				continue
			}
			s := s
			c.wg.Add(1)
			go func() {
				defer c.wg.Done()
				if err := s.revalidate(bg); err != nil {
					c.logger.Warn("background refetch failed", "key", s.Key(), "mutation", m, "error", err)
				}
			}()
		}
	}
	return marked
}

// Wait blocks until background refetches started by Notify have finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}
