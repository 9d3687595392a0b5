package mockapi

import (
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/saadjs/habitdash/internal/model"
)

type goalRequest struct {
	Goal float64 `json:"goal"`
}

type gramsRequest struct {
	Grams float64 `json:"grams"`
}

func (s *Server) handleListDiets(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	today := s.today()
	s.mu.Lock()
	defer s.mu.Unlock()
	resp := model.DietResponse{Diets: make([]model.Diet, 0, len(s.diets[uid])), Goal: s.goals[uid]}
	for _, d := range s.diets[uid] {
		resp.Diets = append(resp.Diets, copyDiet(d))
		if d.DateKey == today {
			resp.TotalCalories += d.Calories
		}
	}
	resp.GoalReached = resp.Goal > 0 && resp.TotalCalories >= resp.Goal
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateDiet(w http.ResponseWriter, r *http.Request) {
	var in model.NewDiet
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateDiet(in); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	diet := &model.Diet{
		ID:          uuid.NewString(),
		Type:        in.Type,
		Description: strings.TrimSpace(in.Description),
		Period:      in.Period,
		DateKey:     in.DateKey,
		Foods:       []model.Food{},
	}
	for _, f := range in.Foods {
		diet.Foods = append(diet.Foods, newFood(f))
	}
	recompute(diet)

	uid := userID(r)
	s.mu.Lock()
	s.diets[uid] = append(s.diets[uid], diet)
	out := copyDiet(diet)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleUpdateDiet(w http.ResponseWriter, r *http.Request) {
	var in model.NewDiet
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateDiet(in); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	diet := s.dietLocked(userID(r), mux.Vars(r)["id"])
	if diet == nil {
		writeError(w, http.StatusNotFound, "diet not found")
		return
	}
	diet.Type = in.Type
	diet.Description = strings.TrimSpace(in.Description)
	diet.Period = in.Period
	diet.DateKey = in.DateKey
	writeJSON(w, http.StatusOK, copyDiet(diet))
}

func (s *Server) handleDeleteDiet(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.diets[uid]
	for i, d := range list {
		if d.ID == id {
			s.diets[uid] = append(list[:i:i], list[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
	}
	writeError(w, http.StatusNotFound, "diet not found")
}

func (s *Server) handleDietProgress(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	progress := s.progressLocked(userID(r))
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleSetDietGoal(w http.ResponseWriter, r *http.Request) {
	var in goalRequest
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Goal <= 0 {
		writeError(w, http.StatusBadRequest, "goal must be > 0")
		return
	}
	uid := userID(r)
	s.mu.Lock()
	s.goals[uid] = in.Goal
	progress := s.progressLocked(uid)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleAddFood(w http.ResponseWriter, r *http.Request) {
	var in model.NewFood
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(in.Description) == "" || in.Grams <= 0 {
		writeError(w, http.StatusBadRequest, "description and grams are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	diet := s.dietLocked(userID(r), mux.Vars(r)["dietId"])
	if diet == nil {
		writeError(w, http.StatusNotFound, "diet not found")
		return
	}
	food := newFood(in)
	diet.Foods = append(diet.Foods, food)
	recompute(diet)
	writeJSON(w, http.StatusCreated, food)
}

// handleUpdateFood rescales the food's nutrients to the new weight.
func (s *Server) handleUpdateFood(w http.ResponseWriter, r *http.Request) {
	var in gramsRequest
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Grams <= 0 {
		writeError(w, http.StatusBadRequest, "grams must be > 0")
		return
	}
	vars := mux.Vars(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	diet := s.dietLocked(userID(r), vars["dietId"])
	if diet == nil {
		writeError(w, http.StatusNotFound, "diet not found")
		return
	}
	for i := range diet.Foods {
		f := &diet.Foods[i]
		if f.ID != vars["id"] {
			continue
		}
		factor := in.Grams / f.Grams
		f.Calories = round1(f.Calories * factor)
		f.Protein = round1(f.Protein * factor)
		f.Carbs = round1(f.Carbs * factor)
		f.Grams = in.Grams
		recompute(diet)
		writeJSON(w, http.StatusOK, *f)
		return
	}
	writeError(w, http.StatusNotFound, "food not found")
}

func (s *Server) handleDeleteFood(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	diet := s.dietLocked(userID(r), vars["dietId"])
	if diet == nil {
		writeError(w, http.StatusNotFound, "diet not found")
		return
	}
	for i, f := range diet.Foods {
		if f.ID == vars["id"] {
			diet.Foods = append(diet.Foods[:i:i], diet.Foods[i+1:]...)
			recompute(diet)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "food not found")
}

func (s *Server) dietLocked(uid, id string) *model.Diet {
	for _, d := range s.diets[uid] {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func (s *Server) progressLocked(uid string) model.DietProgress {
	today := s.today()
	p := model.DietProgress{Date: today, Goal: s.goals[uid]}
	for _, d := range s.diets[uid] {
		if d.DateKey == today {
			p.Calories += d.Calories
		}
	}
	if p.Goal > 0 {
		p.Achieved = p.Calories >= p.Goal
		p.Percentage = math.Min(100, round1(p.Calories/p.Goal*100))
	}
	return p
}

func validateDiet(in model.NewDiet) string {
	switch {
	case !in.Type.Valid():
		return fmt.Sprintf("invalid diet type %q", in.Type)
	case !in.Period.Valid():
		return fmt.Sprintf("invalid period %q", in.Period)
	case strings.TrimSpace(in.DateKey) == "":
		return "datekey is required"
	}
	return ""
}

func newFood(in model.NewFood) model.Food {
	return model.Food{
		ID:          uuid.NewString(),
		Description: strings.TrimSpace(in.Description),
		Grams:       in.Grams,
		Calories:    in.Calories,
		Protein:     in.Protein,
		Carbs:       in.Carbs,
	}
}

// recompute refreshes the diet aggregates from its foods.
func recompute(d *model.Diet) {
	d.Calories, d.Grams = 0, 0
	for _, f := range d.Foods {
		d.Calories += f.Calories
		d.Grams += f.Grams
	}
}

func copyDiet(d *model.Diet) model.Diet {
	out := *d
	out.Foods = append([]model.Food{}, d.Foods...)
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
