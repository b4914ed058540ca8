package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/abrezinsky/clubdash/internal/models"
)

type fakeMembers map[string]models.Member

func (f fakeMembers) GetMember(_ context.Context, number string) (*models.Member, error) {
	m, ok := f[number]
	if !ok {
		return nil, errors.New("not found")
	}
	return &m, nil
}

var club = fakeMembers{
	"101": {Number: "101", FirstName: "Pablo", LastName: "Garcia", Role: models.RoleSwimmer},
	"104": {Number: "104", FirstName: "Andres", LastName: "Ruiz", Role: models.RoleCoach},
}

func newTestAuth(t *testing.T) *Auth {
	t.Helper()
	a, err := New("club-secret", club)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return a
}

func TestGeneratePassword_Format(t *testing.T) {
	pw := GeneratePassword()

	parts := strings.Split(pw, "-")
	if len(parts) != 3 {
		t.Fatalf("expected 3 words separated by dashes, got %s", pw)
	}
	for _, part := range parts {
		found := false
		for _, word := range swimWords {
			if part == word {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("word %q not in swimWords list", part)
		}
	}
}

func TestLogin(t *testing.T) {
	a := newTestAuth(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		number   string
		password string
		wantErr  error
		wantRole string
	}{
		{"swimmer by number", "101", "", nil, models.RoleSwimmer},
		{"swimmer ignores password", " 101 ", "whatever", nil, models.RoleSwimmer},
		{"coach with password", "104", "club-secret", nil, models.RoleCoach},
		{"coach without password", "104", "", ErrPasswordRequired, ""},
		{"coach wrong password", "104", "nope", ErrInvalidCredentials, ""},
		{"unknown number", "999", "", ErrInvalidCredentials, ""},
		{"empty number", "", "club-secret", ErrInvalidCredentials, ""},
		{"admin bootstrap", "ADMIN", "club-secret", nil, models.RoleAdmin},
		{"admin wrong password", "admin", "x", ErrInvalidCredentials, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := a.Login(ctx, tt.number, tt.password)
			if err != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if err != nil {
				return
			}
			if s.Role != tt.wantRole {
				t.Errorf("expected role %q, got %q", tt.wantRole, s.Role)
			}
			if got, ok := a.ValidateSession(s.Token); !ok || got.Number != s.Number {
				t.Error("expected session to validate")
			}
		})
	}
}

func TestLogin_DisplayName(t *testing.T) {
	a := newTestAuth(t)
	s, err := a.Login(context.Background(), "101", "")
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "GARCIA, Pablo" {
		t.Errorf("unexpected name %q", s.Name)
	}
}

func TestSessionExpiry(t *testing.T) {
	a := newTestAuth(t)
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	s, _ := a.Login(context.Background(), "101", "")
	now = now.Add(SessionExpiry + time.Second)

	if _, ok := a.ValidateSession(s.Token); ok {
		t.Error("expected expired session to be rejected")
	}
	if len(a.sessions) != 0 {
		t.Error("expected expired session to be removed")
	}
}

func TestSessionExpiry_NotifiesOnExpire(t *testing.T) {
	a := newTestAuth(t)
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	var ended []string
	a.OnExpire(func(token string) { ended = append(ended, token) })

	s, _ := a.Login(context.Background(), "101", "")
	now = now.Add(SessionExpiry + time.Second)
	a.ValidateSession(s.Token)

	if len(ended) != 1 || ended[0] != s.Token {
		t.Errorf("expected the expired token to be reported, got %v", ended)
	}
}

func TestSweep(t *testing.T) {
	a := newTestAuth(t)
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	var ended []string
	a.OnExpire(func(token string) { ended = append(ended, token) })

	old, _ := a.Login(context.Background(), "101", "")
	now = now.Add(SessionExpiry - time.Minute)
	fresh, _ := a.Login(context.Background(), "104", "club-secret")
	now = now.Add(2 * time.Minute)

	if n := a.Sweep(); n != 1 {
		t.Fatalf("expected one expired session, got %d", n)
	}
	if len(ended) != 1 || ended[0] != old.Token {
		t.Errorf("expected only the old token to be reported, got %v", ended)
	}
	if _, ok := a.ValidateSession(fresh.Token); !ok {
		t.Error("expected the fresh session to survive the sweep")
	}
	if a.Sweep() != 0 {
		t.Error("expected a second sweep to find nothing")
	}
}

func TestLogout(t *testing.T) {
	a := newTestAuth(t)
	s, _ := a.Login(context.Background(), "101", "")
	a.Logout(s.Token)
	if _, ok := a.ValidateSession(s.Token); ok {
		t.Error("expected logged-out session to be rejected")
	}
}

func TestMiddleware(t *testing.T) {
	a := newTestAuth(t)
	swimmer, _ := a.Login(context.Background(), "101", "")
	coach, _ := a.Login(context.Background(), "104", "club-secret")

	var seen Session
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	request := func(h http.Handler, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/x", nil)
		if token != "" {
			req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := request(a.RequireMember(ok), ""); rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Errorf("expected redirect to /login, got %d %s", rec.Code, rec.Header().Get("Location"))
	}
	if rec := request(a.RequireMemberAPI(ok), "bogus"); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if rec := request(a.RequireMemberAPI(ok), swimmer.Token); rec.Code != http.StatusOK || seen.Number != "101" {
		t.Errorf("expected session in context, got %d %+v", rec.Code, seen)
	}

	staffOnly := a.RequireMemberAPI(RequireStaff(ok))
	if rec := request(staffOnly, swimmer.Token); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for swimmer, got %d", rec.Code)
	}
	if rec := request(staffOnly, coach.Token); rec.Code != http.StatusOK {
		t.Errorf("expected coach to pass, got %d", rec.Code)
	}
}

func TestCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "tok")
	c := rec.Result().Cookies()[0]
	if c.Name != CookieName || c.Value != "tok" || !c.HttpOnly {
		t.Errorf("unexpected cookie %+v", c)
	}

	rec = httptest.NewRecorder()
	ClearSessionCookie(rec)
	if rec.Result().Cookies()[0].MaxAge != -1 {
		t.Error("expected cookie to be cleared")
	}
}
