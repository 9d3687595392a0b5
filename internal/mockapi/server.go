// Package mockapi is an in-memory implementation of the habitdash backend
// HTTP contract. It backs the tests and `habitdash mock serve`.
package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/saadjs/habitdash/internal/clock"
	"github.com/saadjs/habitdash/internal/model"
)

const DefaultTokenTTL = 72 * time.Hour

type Options struct {
	Secret   []byte
	Clock    clock.Clock
	Logger   *slog.Logger
	TokenTTL time.Duration
}

type user struct {
	identity model.Identity
	hash     []byte
}

type failure struct {
	status  int
	message string
}

type Server struct {
	mu       sync.Mutex
	secret   []byte
	clock    clock.Clock
	logger   *slog.Logger
	tokenTTL time.Duration
	router   *mux.Router

	users    map[string]*user // by email
	habits   map[string][]*model.Habit
	diets    map[string][]*model.Diet
	goals    map[string]float64
	statuses map[string][]model.PhysicalStatus
	water    map[string][]*model.WaterProgress

	hits     map[string]int
	failures map[string][]failure
}

func New(opts Options) *Server {
	if len(opts.Secret) == 0 {
		opts.Secret = []byte(uuid.NewString())
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = DefaultTokenTTL
	}
	s := &Server{
		secret:   opts.Secret,
		clock:    opts.Clock,
		logger:   opts.Logger,
		tokenTTL: opts.TokenTTL,
		users:    map[string]*user{},
		habits:   map[string][]*model.Habit{},
		diets:    map[string][]*model.Diet{},
		goals:    map[string]float64{},
		statuses: map[string][]model.PhysicalStatus{},
		water:    map[string][]*model.WaterProgress{},
		hits:     map[string]int{},
		failures: map[string][]failure{},
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.track)
	r.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.requireAuth)
	api.HandleFunc("/habit", s.handleListHabits).Methods(http.MethodGet)
	api.HandleFunc("/habit", s.handleCreateHabit).Methods(http.MethodPost)
	api.HandleFunc("/habit/{id}", s.handleDeleteHabit).Methods(http.MethodDelete)
	api.HandleFunc("/habit/{id}/logs/toggle", s.handleToggleHabit).Methods(http.MethodPost)

	api.HandleFunc("/stat/daily", s.handleDailyStats).Methods(http.MethodGet)
	api.HandleFunc("/stat/weekly", s.handleWeeklyStats).Methods(http.MethodGet)
	api.HandleFunc("/stat/monthly", s.handleMonthlyStats).Methods(http.MethodGet)
	api.HandleFunc("/stat/streak", s.handleStreak).Methods(http.MethodGet)

	api.HandleFunc("/diet", s.handleListDiets).Methods(http.MethodGet)
	api.HandleFunc("/diet", s.handleCreateDiet).Methods(http.MethodPost)
	api.HandleFunc("/diet/progress", s.handleDietProgress).Methods(http.MethodGet)
	api.HandleFunc("/diet/progress", s.handleSetDietGoal).Methods(http.MethodPost)
	api.HandleFunc("/diet/{id}", s.handleUpdateDiet).Methods(http.MethodPut)
	api.HandleFunc("/diet/{id}", s.handleDeleteDiet).Methods(http.MethodDelete)
	api.HandleFunc("/diet/{dietId}/food", s.handleAddFood).Methods(http.MethodPost)
	api.HandleFunc("/diet/{dietId}/food/{id}", s.handleUpdateFood).Methods(http.MethodPut)
	api.HandleFunc("/diet/{dietId}/food/{id}", s.handleDeleteFood).Methods(http.MethodDelete)

	api.HandleFunc("/status", s.handleListStatus).Methods(http.MethodGet)
	api.HandleFunc("/status", s.handleCreateStatus).Methods(http.MethodPost)
	api.HandleFunc("/status/water", s.handleWater).Methods(http.MethodGet)
	api.HandleFunc("/status/{id}", s.handleDeleteStatus).Methods(http.MethodDelete)
	api.HandleFunc("/status/{id}/water", s.handleUpdateWater).Methods(http.MethodPut)
	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Hits returns how many requests reached route, written as
// "METHOD /path/template" (e.g. "GET /api/stat/daily").
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// TotalHits counts every request served.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.hits {
		total += n
	}
	return total
}

// FailNext makes the next request to route fail with status and message.
func (s *Server) FailNext(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], failure{status: status, message: message})
}

func (s *Server) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = r.Method + " " + tpl
			}
		}
		s.mu.Lock()
		s.hits[route]++
		var fail *failure
		if queued := s.failures[route]; len(queued) > 0 {
			fail = &queued[0]
			s.failures[route] = queued[1:]
		}
		s.mu.Unlock()

		s.logger.Debug("mock request", "route", route, "request_id", r.Header.Get("X-Request-ID"))
		if fail != nil {
			writeError(w, fail.status, fail.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type ctxKey struct{}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKey{}).(string)
	return id
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}
		token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return s.secret, nil
		}, jwt.WithTimeFunc(s.clock.Now))
		if err != nil || !token.Valid {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			writeError(w, http.StatusUnauthorized, "invalid claims")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sub)))
	})
}

func (s *Server) issueToken(id model.Identity) (string, error) {
	now := s.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   id.ID,
		"email": id.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	})
	return token.SignedString(s.secret)
}

func (s *Server) today() string {
	return clock.DayKey(s.clock.Now())
}

func decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) == 0 {
		return errors.New("request body is required")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
