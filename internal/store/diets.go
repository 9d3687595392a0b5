package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/saadjs/habitdash/internal/model"
)

type DietAPI interface {
	ListDiets(ctx context.Context, token string) (model.DietResponse, error)
	CreateDiet(ctx context.Context, token string, in model.NewDiet) (model.Diet, error)
	UpdateDiet(ctx context.Context, token, id string, in model.NewDiet) (model.Diet, error)
	DeleteDiet(ctx context.Context, token, id string) error
	DietProgress(ctx context.Context, token string) (model.DietProgress, error)
	SetDietGoal(ctx context.Context, token string, goal float64) (model.DietProgress, error)
	AddFood(ctx context.Context, token, dietID string, in model.NewFood) error
	UpdateFood(ctx context.Context, token, dietID, id string, grams float64) error
	DeleteFood(ctx context.Context, token, dietID, id string) error
}

// Diets owns the diet list and today's calorie progress. Diet aggregates are
// computed by the server, so food edits never touch cached totals; they only
// mark the views stale.
type Diets struct {
	*Query[model.DietResponse]
	Progress *Query[model.DietProgress]

	env     *Env
	backend DietAPI
	coord   *Coordinator
}

func NewDiets(env *Env, backend DietAPI, coord *Coordinator) *Diets {
	return &Diets{
		Query:    NewQuery(KeyDiets, env, backend.ListDiets, func() model.DietResponse { return model.DietResponse{Diets: []model.Diet{}} }),
		Progress: NewQuery(KeyDietProgress, env, backend.DietProgress, nil),
		env:      env,
		backend:  backend,
		coord:    coord,
	}
}

func validateDiet(in *model.NewDiet) error {
	in.Description = strings.TrimSpace(in.Description)
	in.DateKey = strings.TrimSpace(in.DateKey)
	if !in.Type.Valid() {
		return fmt.Errorf("invalid diet type %q (use bulking or cutting)", in.Type)
	}
	if !in.Period.Valid() {
		return fmt.Errorf("invalid period %q (use morning, midday or night)", in.Period)
	}
	if in.DateKey == "" {
		return fmt.Errorf("diet date is required")
	}
	for i := range in.Foods {
		if err := validateFood(&in.Foods[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateFood(in *model.NewFood) error {
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return fmt.Errorf("food description is required")
	}
	if in.Grams <= 0 {
		return fmt.Errorf("grams must be > 0")
	}
	if in.Calories < 0 || in.Protein < 0 || in.Carbs < 0 {
		return fmt.Errorf("nutrients must be >= 0")
	}
	return nil
}

// Create adds a diet. The confirmed diet is appended to the cached list and
// the list is left stale so totals come from the next fetch.
func (d *Diets) Create(ctx context.Context, in model.NewDiet) (model.Diet, error) {
	if err := validateDiet(&in); err != nil {
		return model.Diet{}, err
	}
	token := d.env.token()
	if token == "" {
		return model.Diet{}, ErrNotAuthenticated
	}
	created, err := d.backend.CreateDiet(ctx, token, in)
	if err != nil {
		return model.Diet{}, err
	}
	d.Update(func(resp model.DietResponse) model.DietResponse {
		diets := make([]model.Diet, len(resp.Diets), len(resp.Diets)+1)
		copy(diets, resp.Diets)
		resp.Diets = append(diets, created)
		return resp
	})
	d.coord.Notify(ctx, DietCreated)
	return created, nil
}

func (d *Diets) Edit(ctx context.Context, id string, in model.NewDiet) (model.Diet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Diet{}, fmt.Errorf("diet id is required")
	}
	if err := validateDiet(&in); err != nil {
		return model.Diet{}, err
	}
	token := d.env.token()
	if token == "" {
		return model.Diet{}, ErrNotAuthenticated
	}
	updated, err := d.backend.UpdateDiet(ctx, token, id, in)
	if err != nil {
		return model.Diet{}, err
	}
	d.coord.Notify(ctx, DietUpdated)
	return updated, nil
}

func (d *Diets) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("diet id is required")
	}
	token := d.env.token()
	if token == "" {
		return ErrNotAuthenticated
	}
	if err := d.backend.DeleteDiet(ctx, token, id); err != nil {
		return err
	}
	d.Update(func(resp model.DietResponse) model.DietResponse {
		diets := make([]model.Diet, 0, len(resp.Diets))
		for _, diet := range resp.Diets {
			if diet.ID != id {
				diets = append(diets, diet)
			}
		}
		resp.Diets = diets
		return resp
	})
	d.coord.Notify(ctx, DietDeleted)
	return nil
}

func (d *Diets) AddFood(ctx context.Context, dietID string, in model.NewFood) error {
	dietID = strings.TrimSpace(dietID)
	if dietID == "" {
		return fmt.Errorf("diet id is required")
	}
	if err := validateFood(&in); err != nil {
		return err
	}
	return d.mutate(ctx, FoodAdded, func(token string) error {
		return d.backend.AddFood(ctx, token, dietID, in)
	})
}

func (d *Diets) UpdateFood(ctx context.Context, dietID, id string, grams float64) error {
	if strings.TrimSpace(dietID) == "" || strings.TrimSpace(id) == "" {
		return fmt.Errorf("diet id and food id are required")
	}
	if grams <= 0 {
		return fmt.Errorf("grams must be > 0")
	}
	return d.mutate(ctx, FoodUpdated, func(token string) error {
		return d.backend.UpdateFood(ctx, token, strings.TrimSpace(dietID), strings.TrimSpace(id), grams)
	})
}

func (d *Diets) DeleteFood(ctx context.Context, dietID, id string) error {
	if strings.TrimSpace(dietID) == "" || strings.TrimSpace(id) == "" {
		return fmt.Errorf("diet id and food id are required")
	}
	return d.mutate(ctx, FoodDeleted, func(token string) error {
		return d.backend.DeleteFood(ctx, token, strings.TrimSpace(dietID), strings.TrimSpace(id))
	})
}

// SetGoal stores a new daily calorie goal. The returned progress is written
// into the progress cache; the diet list still refetches for its goal fields.
func (d *Diets) SetGoal(ctx context.Context, goal float64) (model.DietProgress, error) {
	if goal <= 0 {
		return model.DietProgress{}, fmt.Errorf("goal must be > 0")
	}
	token := d.env.token()
	if token == "" {
		return model.DietProgress{}, ErrNotAuthenticated
	}
	progress, err := d.backend.SetDietGoal(ctx, token, goal)
	if err != nil {
		return model.DietProgress{}, err
	}
	if progress.Date == "" {
		d.coord.Notify(ctx, DietGoalUpdated)
		return progress, nil
	}
	d.Progress.Set(progress)
	d.coord.Notify(ctx, DietGoalUpdated, KeyDietProgress)
	return progress, nil
}

func (d *Diets) mutate(ctx context.Context, m Mutation, call func(token string) error) error {
	token := d.env.token()
	if token == "" {
		return ErrNotAuthenticated
	}
	if err := call(token); err != nil {
		return err
	}
	d.coord.Notify(ctx, m)
	return nil
}
