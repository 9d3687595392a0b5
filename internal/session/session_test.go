package session_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/saadjs/habitdash/internal/api"
	"github.com/saadjs/habitdash/internal/clock"
	"github.com/saadjs/habitdash/internal/db"
	"github.com/saadjs/habitdash/internal/model"
	"github.com/saadjs/habitdash/internal/session"
)

type fakeAuth struct {
	token string
	fail  bool
	calls int
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (api.AuthResponse, error) {
	f.calls++
	if f.fail {
		return api.AuthResponse{}, &api.APIError{Status: 401, Message: "invalid credentials"}
	}
	return api.AuthResponse{Token: f.token, User: &model.Identity{ID: "u1", Name: "Ana", Email: email}}, nil
}

func (f *fakeAuth) Register(ctx context.Context, name, email, password string) (api.AuthResponse, error) {
	f.calls++
	if f.fail {
		return api.AuthResponse{}, &api.APIError{Status: 409, Message: "email already registered"}
	}
	return api.AuthResponse{Token: f.token, User: &model.Identity{ID: "u2", Name: name, Email: email}}, nil
}

var now = time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1", "exp": exp.Unix()}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func checkPair(t *testing.T, st session.State) {
	t.Helper()
	if (st.Token == "") != (st.Identity == nil) {
		t.Fatalf("token/identity invariant broken: token=%q identity=%+v", st.Token, st.Identity)
	}
}

func TestSessionTokenAndIdentityMoveTogether(t *testing.T) {
	t.Parallel()
	auth := &fakeAuth{token: "tok-1"}
	s := session.New(auth, session.NewMemoryStorage(), session.Options{Clock: clock.Fake(now)})
	s.Subscribe(func(st session.State) { checkPair(t, st) })
	if err := s.Restore(); err != nil {
		t.Fatalf("restore: %v", err)
	}

	steps := []func() error{
		func() error { return s.Login(context.Background(), "ana@example.com", "pw") },
		s.Logout,
		func() error { return s.Register(context.Background(), "Bea", "bea@example.com", "pw") },
		func() error { auth.fail = true; return s.Login(context.Background(), "ana@example.com", "bad") },
		s.Logout,
		s.Logout,
		func() error { auth.fail = false; return s.Login(context.Background(), "ana@example.com", "pw") },
	}
	for i, step := range steps {
		_ = step()
		st := s.State()
		checkPair(t, st)
		if st.Loading {
			t.Fatalf("step %d: session should not be loading", i)
		}
	}
	if !s.Authenticated() || s.Identity().Email != "ana@example.com" {
		t.Fatalf("expected final login to stick, got %+v", s.State())
	}
}

func TestSessionLoginFailureLeavesStateUnchanged(t *testing.T) {
	t.Parallel()
	auth := &fakeAuth{token: "tok-1"}
	storage := session.NewMemoryStorage()
	s := session.New(auth, storage, session.Options{})
	_ = s.Restore()
	if err := s.Login(context.Background(), "ana@example.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	before := s.State()

	auth.fail = true
	err := s.Register(context.Background(), "Ana", "ana@example.com", "pw")
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "email already registered" {
		t.Fatalf("expected surfaced api error, got %v", err)
	}
	after := s.State()
	if after.Token != before.Token || after.Identity.ID != before.Identity.ID {
		t.Fatalf("failed register changed state: before=%+v after=%+v", before, after)
	}
	token, user, _ := storage.Load()
	if token != "tok-1" || user == "" {
		t.Fatalf("failed register changed storage: token=%q user=%q", token, user)
	}
}

func TestSessionLogoutClearsStorageWithoutNetwork(t *testing.T) {
	t.Parallel()
	auth := &fakeAuth{token: "tok-1"}
	storage := session.NewMemoryStorage()
	s := session.New(auth, storage, session.Options{})
	_ = s.Restore()
	if err := s.Login(context.Background(), "ana@example.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	calls := auth.calls
	if err := s.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if auth.calls != calls {
		t.Fatalf("logout should not call the backend")
	}
	if s.Token() != "" || s.Identity() != nil {
		t.Fatalf("expected empty session, got %+v", s.State())
	}
	token, user, _ := storage.Load()
	if token != "" || user != "" {
		t.Fatalf("expected cleared storage, got token=%q user=%q", token, user)
	}
}

func TestSessionRestore(t *testing.T) {
	t.Parallel()
	valid := signedToken(t, now.Add(time.Hour))
	expired := signedToken(t, now.Add(-time.Minute))

	cases := []struct {
		name      string
		token     string
		user      string
		wantToken string
	}{
		{name: "valid jwt", token: valid, user: `{"id":"u1","name":"Ana","email":"ana@example.com"}`, wantToken: valid},
		{name: "opaque token", token: "opaque", user: `{"id":"u1","name":"Ana","email":"ana@example.com"}`, wantToken: "opaque"},
		{name: "expired jwt", token: expired, user: `{"id":"u1","name":"Ana","email":"ana@example.com"}`},
		{name: "token without user", token: valid},
		{name: "user without token", user: `{"id":"u1"}`},
		{name: "malformed user", token: valid, user: `{not json`},
		{name: "empty"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			storage := session.NewMemoryStorage()
			if tc.token != "" || tc.user != "" {
				_ = storage.Save(tc.token, tc.user)
			}
			s := session.New(&fakeAuth{}, storage, session.Options{Clock: clock.Fake(now)})
			if !s.Loading() {
				t.Fatalf("expected loading before restore")
			}
			if err := s.Restore(); err != nil {
				t.Fatalf("restore: %v", err)
			}
			st := s.State()
			checkPair(t, st)
			if st.Loading {
				t.Fatalf("expected loading=false after restore")
			}
			if st.Token != tc.wantToken {
				t.Fatalf("expected token %q, got %q", tc.wantToken, st.Token)
			}
			if tc.wantToken == "" {
				token, user, _ := storage.Load()
				if token != "" || user != "" {
					t.Fatalf("expected invalid persisted session to be cleared")
				}
			}
		})
	}
}

func TestSQLiteStorageRoundTrip(t *testing.T) {
	t.Parallel()
	sqldb, err := db.OpenMigrated(filepath.Join(t.TempDir(), "habitdash.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()

	storage := session.NewSQLiteStorage(sqldb)
	if err := storage.Save("tok", `{"id":"u1"}`); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := storage.Save("tok-2", `{"id":"u2"}`); err != nil {
		t.Fatalf("save again: %v", err)
	}
	token, user, err := storage.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if token != "tok-2" || user != `{"id":"u2"}` {
		t.Fatalf("unexpected stored session token=%q user=%q", token, user)
	}
	if err := storage.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	token, user, _ = storage.Load()
	if token != "" || user != "" {
		t.Fatalf("expected cleared session")
	}
}

func TestTokenExpiry(t *testing.T) {
	t.Parallel()
	exp := now.Add(72 * time.Hour).Truncate(time.Second)
	got, ok := session.TokenExpiry(signedToken(t, exp))
	if !ok || !got.Equal(exp) {
		t.Fatalf("expected expiry %v, got %v ok=%v", exp, got, ok)
	}
	if _, ok := session.TokenExpiry("not-a-jwt"); ok {
		t.Fatalf("expected opaque token to have no expiry")
	}
}
