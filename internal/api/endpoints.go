package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/saadjs/habitdash/internal/model"
)

type AuthResponse struct {
	Token string          `json:"token"`
	User  *model.Identity `json:"user"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	r := Request{Method: http.MethodPost, Path: "/auth/login", Body: map[string]string{
		"email":    email,
		"password": password,
	}}
	return c.auth(ctx, r)
}

func (c *Client) Register(ctx context.Context, name, email, password string) (AuthResponse, error) {
	r := Request{Method: http.MethodPost, Path: "/auth/register", Body: map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}}
	return c.auth(ctx, r)
}

func (c *Client) auth(ctx context.Context, r Request) (AuthResponse, error) {
	resp, ok, err := decode[AuthResponse](ctx, c, r)
	if err != nil {
		return AuthResponse{}, err
	}
	if !ok || strings.TrimSpace(resp.Token) == "" {
		return AuthResponse{}, malformed(r, "missing token")
	}
	if resp.User == nil {
		return AuthResponse{}, malformed(r, "missing user")
	}
	return resp, nil
}

func (c *Client) ListHabits(ctx context.Context, token string) ([]model.Habit, error) {
	habits, _, err := decode[[]model.Habit](ctx, c, Request{Method: http.MethodGet, Path: "/api/habit", Token: token})
	if err != nil {
		return nil, err
	}
	if habits == nil {
		habits = []model.Habit{}
	}
	for i := range habits {
		if habits[i].Logs == nil {
			habits[i].Logs = []model.HabitLog{}
		}
	}
	return habits, nil
}

func (c *Client) CreateHabit(ctx context.Context, token string, in model.NewHabit) (model.Habit, error) {
	r := Request{Method: http.MethodPost, Path: "/api/habit", Body: in, Token: token}
	habit, ok, err := decode[model.Habit](ctx, c, r)
	if err != nil {
		return model.Habit{}, err
	}
	if !ok || habit.ID == "" {
		return model.Habit{}, malformed(r, "missing habit id")
	}
	if habit.Logs == nil {
		habit.Logs = []model.HabitLog{}
	}
	return habit, nil
}

func (c *Client) DeleteHabit(ctx context.Context, token, id string) error {
	_, err := c.Do(ctx, Request{Method: http.MethodDelete, Path: "/api/habit/" + url.PathEscape(id), Token: token})
	return err
}

func (c *Client) ToggleHabit(ctx context.Context, token, id string) (model.ToggleResponse, error) {
	r := Request{Method: http.MethodPost, Path: "/api/habit/" + url.PathEscape(id) + "/logs/toggle", Token: token}
	resp, ok, err := decode[model.ToggleResponse](ctx, c, r)
	if err != nil {
		return model.ToggleResponse{}, err
	}
	if !ok || resp.Habit == nil {
		return model.ToggleResponse{}, malformed(r, "missing habit")
	}
	if resp.Habit.Logs == nil {
		resp.Habit.Logs = []model.HabitLog{}
	}
	return resp, nil
}

func (c *Client) DailyStats(ctx context.Context, token string) (model.DailyStats, error) {
	stats, _, err := decode[model.DailyStats](ctx, c, Request{Method: http.MethodGet, Path: "/api/stat/daily", Token: token})
	return stats, err
}

func (c *Client) WeeklyStats(ctx context.Context, token string) ([]model.WeeklyStat, error) {
	stats, _, err := decode[[]model.WeeklyStat](ctx, c, Request{Method: http.MethodGet, Path: "/api/stat/weekly", Token: token})
	if stats == nil && err == nil {
		stats = []model.WeeklyStat{}
	}
	return stats, err
}

func (c *Client) MonthlyStats(ctx context.Context, token string) ([]model.MonthlyStat, error) {
	stats, _, err := decode[[]model.MonthlyStat](ctx, c, Request{Method: http.MethodGet, Path: "/api/stat/monthly", Token: token})
	if stats == nil && err == nil {
		stats = []model.MonthlyStat{}
	}
	return stats, err
}

func (c *Client) Streak(ctx context.Context, token string) (model.Streak, error) {
	streak, _, err := decode[model.Streak](ctx, c, Request{Method: http.MethodGet, Path: "/api/stat/streak", Token: token})
	return streak, err
}

func (c *Client) ListDiets(ctx context.Context, token string) (model.DietResponse, error) {
	resp, _, err := decode[model.DietResponse](ctx, c, Request{Method: http.MethodGet, Path: "/api/diet", Token: token})
	if err != nil {
		return model.DietResponse{}, err
	}
	if resp.Diets == nil {
		resp.Diets = []model.Diet{}
	}
	for i := range resp.Diets {
		if resp.Diets[i].Foods == nil {
			resp.Diets[i].Foods = []model.Food{}
		}
	}
	return resp, nil
}

func (c *Client) CreateDiet(ctx context.Context, token string, in model.NewDiet) (model.Diet, error) {
	r := Request{Method: http.MethodPost, Path: "/api/diet", Body: in, Token: token}
	diet, ok, err := decode[model.Diet](ctx, c, r)
	if err != nil {
		return model.Diet{}, err
	}
	if !ok || diet.ID == "" {
		return model.Diet{}, malformed(r, "missing diet id")
	}
	if diet.Foods == nil {
		diet.Foods = []model.Food{}
	}
	return diet, nil
}

func (c *Client) UpdateDiet(ctx context.Context, token, id string, in model.NewDiet) (model.Diet, error) {
	diet, _, err := decode[model.Diet](ctx, c, Request{Method: http.MethodPut, Path: "/api/diet/" + url.PathEscape(id), Body: in, Token: token})
	return diet, err
}

func (c *Client) DeleteDiet(ctx context.Context, token, id string) error {
	_, _, err := decode[SuccessResponse](ctx, c, Request{Method: http.MethodDelete, Path: "/api/diet/" + url.PathEscape(id), Token: token})
	return err
}

func (c *Client) DietProgress(ctx context.Context, token string) (model.DietProgress, error) {
	progress, _, err := decode[model.DietProgress](ctx, c, Request{Method: http.MethodGet, Path: "/api/diet/progress", Token: token})
	return progress, err
}

func (c *Client) SetDietGoal(ctx context.Context, token string, goal float64) (model.DietProgress, error) {
	progress, _, err := decode[model.DietProgress](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/api/diet/progress",
		Body:   map[string]float64{"goal": goal},
		Token:  token,
	})
	return progress, err
}

func (c *Client) AddFood(ctx context.Context, token, dietID string, in model.NewFood) error {
	_, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/diet/" + url.PathEscape(dietID) + "/food", Body: in, Token: token})
	return err
}

func (c *Client) UpdateFood(ctx context.Context, token, dietID, id string, grams float64) error {
	_, err := c.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   "/api/diet/" + url.PathEscape(dietID) + "/food/" + url.PathEscape(id),
		Body:   map[string]float64{"grams": grams},
		Token:  token,
	})
	return err
}

func (c *Client) DeleteFood(ctx context.Context, token, dietID, id string) error {
	_, err := c.Do(ctx, Request{Method: http.MethodDelete, Path: "/api/diet/" + url.PathEscape(dietID) + "/food/" + url.PathEscape(id), Token: token})
	return err
}

func (c *Client) ListStatus(ctx context.Context, token string) ([]model.PhysicalStatus, error) {
	items, _, err := decode[[]model.PhysicalStatus](ctx, c, Request{Method: http.MethodGet, Path: "/api/status", Token: token})
	if items == nil && err == nil {
		items = []model.PhysicalStatus{}
	}
	return items, err
}

func (c *Client) CreateStatus(ctx context.Context, token string, in model.NewStatus) (model.PhysicalStatus, error) {
	r := Request{Method: http.MethodPost, Path: "/api/status", Body: in, Token: token}
	status, ok, err := decode[model.PhysicalStatus](ctx, c, r)
	if err != nil {
		return model.PhysicalStatus{}, err
	}
	if !ok || status.ID == "" {
		return model.PhysicalStatus{}, malformed(r, "missing status id")
	}
	return status, nil
}

func (c *Client) DeleteStatus(ctx context.Context, token, id string) error {
	_, err := c.Do(ctx, Request{Method: http.MethodDelete, Path: "/api/status/" + url.PathEscape(id), Token: token})
	return err
}

func (c *Client) Water(ctx context.Context, token string) (model.WaterResponse, error) {
	resp, _, err := decode[model.WaterResponse](ctx, c, Request{Method: http.MethodGet, Path: "/api/status/water", Token: token})
	if resp.History == nil && err == nil {
		resp.History = []model.WaterProgress{}
	}
	return resp, err
}

func (c *Client) UpdateWater(ctx context.Context, token, id string, water float64) (model.WaterProgress, error) {
	progress, _, err := decode[model.WaterProgress](ctx, c, Request{
		Method: http.MethodPut,
		Path:   "/api/status/" + url.PathEscape(id) + "/water",
		Body:   map[string]float64{"water": water},
		Token:  token,
	})
	return progress, err
}
