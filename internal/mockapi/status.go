package mockapi

import (
	"math"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/saadjs/habitdash/internal/model"
)

// mlPerKg derives the daily water goal from the latest recorded weight.
const mlPerKg = 35

type waterRequest struct {
	Water float64 `json:"water"`
}

func (s *Server) handleListStatus(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	s.mu.Lock()
	out := append([]model.PhysicalStatus{}, s.statuses[uid]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

// handleCreateStatus stores the payload as given, including the client
// computed imc and tmb.
func (s *Server) handleCreateStatus(w http.ResponseWriter, r *http.Request) {
	var in model.NewStatus
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Weight <= 0 || in.Height <= 0 || in.Age <= 0 || !in.Genere.Valid() {
		writeError(w, http.StatusBadRequest, "weight, height, age and genere are required")
		return
	}
	status := model.PhysicalStatus{
		ID:     uuid.NewString(),
		Weight: in.Weight,
		Height: in.Height,
		Age:    in.Age,
		Genere: in.Genere,
		IMC:    in.IMC,
		TMB:    in.TMB,
	}
	uid := userID(r)
	s.mu.Lock()
	s.statuses[uid] = append(s.statuses[uid], status)
	if today := s.waterTodayLocked(uid, false); today != nil {
		today.Goal = waterGoal(status.Weight)
		settleWater(today)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, status)
}

func (s *Server) handleDeleteStatus(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.statuses[uid]
	for i, st := range list {
		if st.ID == id {
			s.statuses[uid] = append(list[:i:i], list[i+1:]...)
			writeJSON(w, http.StatusOK, st)
			return
		}
	}
	writeError(w, http.StatusNotFound, "status not found")
}

// handleWater returns today's entry (created on demand once a status
// exists) and the earlier days, newest first.
func (s *Server) handleWater(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	resp := model.WaterResponse{History: []model.WaterProgress{}}
	today := s.waterTodayLocked(uid, true)
	if today != nil {
		cp := *today
		resp.Today = &cp
	}
	entries := s.water[uid]
	for i := len(entries) - 1; i >= 0; i-- {
		if today != nil && entries[i].ID == today.ID {
			continue
		}
		resp.History = append(resp.History, *entries[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateWater(w http.ResponseWriter, r *http.Request) {
	var in waterRequest
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Water < 0 {
		writeError(w, http.StatusBadRequest, "water must be >= 0")
		return
	}
	uid := userID(r)
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.water[uid] {
		if entry.ID == id {
			entry.Water = in.Water
			settleWater(entry)
			writeJSON(w, http.StatusOK, *entry)
			return
		}
	}
	writeError(w, http.StatusNotFound, "water progress not found")
}

func (s *Server) waterTodayLocked(uid string, create bool) *model.WaterProgress {
	today := s.today()
	for _, entry := range s.water[uid] {
		if entry.Date == today {
			return entry
		}
	}
	statuses := s.statuses[uid]
	if !create || len(statuses) == 0 {
		return nil
	}
	entry := &model.WaterProgress{
		ID:   uuid.NewString(),
		Date: today,
		Goal: waterGoal(statuses[len(statuses)-1].Weight),
	}
	s.water[uid] = append(s.water[uid], entry)
	return entry
}

func waterGoal(weightKg float64) float64 {
	return math.Round(weightKg * mlPerKg)
}

func settleWater(p *model.WaterProgress) {
	p.Achieved = p.Goal > 0 && p.Water >= p.Goal
	p.Percentage = 0
	if p.Goal > 0 {
		p.Percentage = math.Min(100, round1(p.Water/p.Goal*100))
	}
}
