package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/saadjs/habitdash/internal/api"
	"github.com/saadjs/habitdash/internal/clock"
	"github.com/saadjs/habitdash/internal/model"
)

// State is a consistent view of the session. Token and Identity are either
// both set or both empty.
type State struct {
	Token    string
	Identity *model.Identity
	Loading  bool
}

func (s State) Authenticated() bool {
	return s.Token != "" && s.Identity != nil
}

type Authenticator interface {
	Login(ctx context.Context, email, password string) (api.AuthResponse, error)
	Register(ctx context.Context, name, email, password string) (api.AuthResponse, error)
}

type Options struct {
	Clock  clock.Clock
	Logger *slog.Logger
}

type Session struct {
	mu          sync.RWMutex
	token       string
	identity    *model.Identity
	loading     bool
	restored    bool
	auth        Authenticator
	storage     Storage
	clock       clock.Clock
	logger      *slog.Logger
	subscribers []func(State)
}

// New returns a session in the loading state. Call Restore once before
// treating it as logged out.
func New(auth Authenticator, storage Storage, opts Options) *Session {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		loading: true,
		auth:    auth,
		storage: storage,
		clock:   opts.Clock,
		logger:  opts.Logger,
	}
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	st := State{Token: s.token, Loading: s.loading}
	if s.identity != nil {
		id := *s.identity
		st.Identity = &id
	}
	return st
}

// Token implements api.TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Identity() *model.Identity {
	return s.State().Identity
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) Authenticated() bool {
	return s.State().Authenticated()
}

// Subscribe registers fn to run after every state change. fn runs outside the
// session lock and may read the session.
func (s *Session) Subscribe(fn func(State)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// Restore loads the persisted token and identity. Partial, malformed or
// expired persisted state is cleared and the session starts logged out.
func (s *Session) Restore() error {
	s.mu.Lock()
	if s.restored {
		s.mu.Unlock()
		return nil
	}
	s.restored = true
	token, userRaw, loadErr := s.storage.Load()
	var identity *model.Identity
	if loadErr == nil {
		identity = s.validatePersisted(token, userRaw)
	}
	if identity == nil {
		stored := strings.TrimSpace(token) != "" || strings.TrimSpace(userRaw) != ""
		if loadErr == nil && stored {
			if err := s.storage.Clear(); err != nil {
				s.logger.Warn("clear persisted session", "error", err)
			}
		}
		token = ""
	}
	s.token = strings.TrimSpace(token)
	s.identity = identity
	s.loading = false
	st := s.stateLocked()
	subs := append([]func(State){}, s.subscribers...)
	s.mu.Unlock()

	notify(subs, st)
	if loadErr != nil {
		return fmt.Errorf("restore session: %w", loadErr)
	}
	return nil
}

func (s *Session) validatePersisted(token, userRaw string) *model.Identity {
	token = strings.TrimSpace(token)
	userRaw = strings.TrimSpace(userRaw)
	if token == "" || userRaw == "" {
		if token != "" || userRaw != "" {
			s.logger.Warn("discarding partial persisted session")
		}
		return nil
	}
	var identity model.Identity
	if err := json.Unmarshal([]byte(userRaw), &identity); err != nil {
		s.logger.Warn("discarding malformed persisted user", "error", err)
		return nil
	}
	if exp, ok := TokenExpiry(token); ok && !exp.After(s.clock.Now()) {
		s.logger.Info("persisted token expired", "expired_at", exp)
		return nil
	}
	return &identity
}

func (s *Session) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return fmt.Errorf("email and password are required")
	}
	resp, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.establish(resp)
}

func (s *Session) Register(ctx context.Context, name, email, password string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return fmt.Errorf("name, email and password are required")
	}
	resp, err := s.auth.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	return s.establish(resp)
}

// establish persists first so a storage failure leaves the in-memory state
// untouched.
func (s *Session) establish(resp api.AuthResponse) error {
	if resp.Token == "" || resp.User == nil {
		return fmt.Errorf("auth response is missing token or user")
	}
	userRaw, err := json.Marshal(resp.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	identity := *resp.User

	s.mu.Lock()
	if err := s.storage.Save(resp.Token, string(userRaw)); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persist session: %w", err)
	}
	s.token = resp.Token
	s.identity = &identity
	s.loading = false
	s.restored = true
	st := s.stateLocked()
	subs := append([]func(State){}, s.subscribers...)
	s.mu.Unlock()

	s.logger.Info("session established", "user_id", identity.ID)
	notify(subs, st)
	return nil
}

// Logout clears the in-memory session and persisted storage. It never calls
// the network.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.identity = nil
	s.loading = false
	clearErr := s.storage.Clear()
	st := s.stateLocked()
	subs := append([]func(State){}, s.subscribers...)
	s.mu.Unlock()

	notify(subs, st)
	if clearErr != nil {
		return fmt.Errorf("clear persisted session: %w", clearErr)
	}
	return nil
}

// ExpiresAt reports the token's exp claim when it is a JWT carrying one.
func (s *Session) ExpiresAt() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}
	return TokenExpiry(token)
}

// TokenExpiry reads the exp claim without verifying the signature; the
// client never holds the signing key. Opaque tokens report false.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func notify(subs []func(State), st State) {
	for _, fn := range subs {
		fn(st)
	}
}
