package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/saadjs/habitdash/internal/model"
	"github.com/saadjs/habitdash/internal/service"
)

type StatusAPI interface {
	ListStatus(ctx context.Context, token string) ([]model.PhysicalStatus, error)
	CreateStatus(ctx context.Context, token string, in model.NewStatus) (model.PhysicalStatus, error)
	DeleteStatus(ctx context.Context, token, id string) error
}

// StatusInput is what a user enters. BMI and basal metabolic rate are
// computed from it before submission.
type StatusInput struct {
	Weight float64
	Height float64
	Age    int
	Genere model.Genere
}

type Status struct {
	*Query[[]model.PhysicalStatus]
	env     *Env
	backend StatusAPI
	coord   *Coordinator
}

func NewStatus(env *Env, backend StatusAPI, coord *Coordinator) *Status {
	return &Status{
		Query:   NewQuery(KeyStatus, env, backend.ListStatus, func() []model.PhysicalStatus { return []model.PhysicalStatus{} }),
		env:     env,
		backend: backend,
		coord:   coord,
	}
}

// BuildStatus validates in and fills the computed fields of the payload.
func BuildStatus(in StatusInput) (model.NewStatus, error) {
	if in.Weight <= 0 {
		return model.NewStatus{}, fmt.Errorf("weight must be > 0")
	}
	if in.Height <= 0 {
		return model.NewStatus{}, fmt.Errorf("height must be > 0")
	}
	if in.Height >= 3 {
		return model.NewStatus{}, fmt.Errorf("height is in meters (e.g. 1.70), got %.2f", in.Height)
	}
	if in.Age <= 0 {
		return model.NewStatus{}, fmt.Errorf("age must be > 0")
	}
	in.Genere = model.Genere(strings.ToLower(strings.TrimSpace(string(in.Genere))))
	if !in.Genere.Valid() {
		return model.NewStatus{}, fmt.Errorf("invalid genere %q (use masculine or feminine)", in.Genere)
	}
	tmb, err := service.TMB(in.Weight, in.Height, in.Age, in.Genere)
	if err != nil {
		return model.NewStatus{}, err
	}
	return model.NewStatus{
		Weight: in.Weight,
		Height: in.Height,
		Age:    in.Age,
		Genere: in.Genere,
		IMC:    service.BMI(in.Weight, in.Height),
		TMB:    tmb,
	}, nil
}

func (s *Status) Create(ctx context.Context, in StatusInput) (model.PhysicalStatus, error) {
	payload, err := BuildStatus(in)
	if err != nil {
		return model.PhysicalStatus{}, err
	}
	token := s.env.token()
	if token == "" {
		return model.PhysicalStatus{}, ErrNotAuthenticated
	}
	created, err := s.backend.CreateStatus(ctx, token, payload)
	if err != nil {
		return model.PhysicalStatus{}, err
	}
	s.Update(func(list []model.PhysicalStatus) []model.PhysicalStatus {
		out := make([]model.PhysicalStatus, len(list), len(list)+1)
		copy(out, list)
		return append(out, created)
	})
	s.coord.Notify(ctx, StatusCreated)
	return created, nil
}

func (s *Status) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("status id is required")
	}
	token := s.env.token()
	if token == "" {
		return ErrNotAuthenticated
	}
	if err := s.backend.DeleteStatus(ctx, token, id); err != nil {
		return err
	}
	s.Update(func(list []model.PhysicalStatus) []model.PhysicalStatus {
		out := make([]model.PhysicalStatus, 0, len(list))
		for _, item := range list {
			if item.ID != id {
				out = append(out, item)
			}
		}
		return out
	})
	s.coord.Notify(ctx, StatusDeleted)
	return nil
}
