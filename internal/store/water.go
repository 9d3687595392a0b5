package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/saadjs/habitdash/internal/model"
)

var ErrNoWaterToday = errors.New("no water progress for today: record a physical status first")

type WaterAPI interface {
	Water(ctx context.Context, token string) (model.WaterResponse, error)
	UpdateWater(ctx context.Context, token, id string, water float64) (model.WaterProgress, error)
}

type Water struct {
	*Query[model.WaterResponse]
	env     *Env
	backend WaterAPI
	coord   *Coordinator
}

func NewWater(env *Env, backend WaterAPI, coord *Coordinator) *Water {
	return &Water{
		Query:   NewQuery(KeyWater, env, backend.Water, func() model.WaterResponse { return model.WaterResponse{History: []model.WaterProgress{}} }),
		env:     env,
		backend: backend,
		coord:   coord,
	}
}

// Update records ml as the total consumed for the progress entry id.
func (w *Water) Update(ctx context.Context, id string, ml float64) (model.WaterProgress, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.WaterProgress{}, fmt.Errorf("water progress id is required")
	}
	if ml < 0 {
		return model.WaterProgress{}, fmt.Errorf("water must be >= 0")
	}
	token := w.env.token()
	if token == "" {
		return model.WaterProgress{}, ErrNotAuthenticated
	}
	progress, err := w.backend.UpdateWater(ctx, token, id, ml)
	if err != nil {
		return model.WaterProgress{}, err
	}
	w.coord.Notify(ctx, WaterUpdated)
	return progress, nil
}

// Add adds ml to today's total.
func (w *Water) Add(ctx context.Context, ml float64) (model.WaterProgress, error) {
	if ml <= 0 {
		return model.WaterProgress{}, fmt.Errorf("water must be > 0")
	}
	if w.env.token() == "" {
		return model.WaterProgress{}, ErrNotAuthenticated
	}
	resp, err := w.Fetch(ctx)
	if err != nil {
		return model.WaterProgress{}, fmt.Errorf("load today's water: %w", err)
	}
	if resp.Today == nil || resp.Today.ID == "" {
		return model.WaterProgress{}, ErrNoWaterToday
	}
	return w.Update(ctx, resp.Today.ID, resp.Today.Water+ml)
}
