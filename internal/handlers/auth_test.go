package handlers_test

import (
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/abrezinsky/clubdash/internal/auth"
)

var csrfField = regexp.MustCompile(`name="gorilla.csrf.Token" value="([^"]+)"`)

// loginForm fetches the login page and returns the CSRF token and cookies it set
func loginForm(t *testing.T, setup *testSetup) (string, []*http.Cookie) {
	t.Helper()
	rec := setup.do(http.MethodGet, "/login", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected login page, got %d", rec.Code)
	}
	m := csrfField.FindStringSubmatch(rec.Body.String())
	if m == nil {
		t.Fatalf("no csrf token in %q", rec.Body.String())
	}
	return html.UnescapeString(m[1]), rec.Result().Cookies()
}

func postLogin(t *testing.T, setup *testSetup, form url.Values, withToken bool) *httptest.ResponseRecorder {
	t.Helper()
	token, cookies := loginForm(t, setup)
	if withToken {
		form.Set("gorilla.csrf.Token", token)
	}

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	setup.router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	return nil
}

// ==================== Login page ====================

func TestHandleLoginPage_AlreadyLoggedIn(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(http.MethodGet, "/login", "", setup.swimmerCookie)

	if rec.Code != http.StatusFound {
		t.Errorf("expected status %d, got %d", http.StatusFound, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("expected redirect to /, got %s", loc)
	}
}

func TestHandleLoginPage_PrefillsNumberFromCard(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(http.MethodGet, "/login?number=202", "", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `name="number" value="202"`) {
		t.Errorf("expected number to be prefilled, got %s", rec.Body.String())
	}
}

// ==================== Form login ====================

func TestHandleLogin_SwimmerByNumber(t *testing.T) {
	setup := newTestSetup(t)

	rec := postLogin(t, setup, url.Values{"number": {"201"}}, true)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("expected redirect to /, got %s", loc)
	}
	cookie := sessionCookie(rec)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected session cookie")
	}
	if s, ok := setup.auth.ValidateSession(cookie.Value); !ok || s.Number != "201" {
		t.Errorf("expected a session for 201, got %+v", s)
	}
}

func TestHandleLogin_Failures(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		message string
	}{
		{"unknown number", url.Values{"number": {"999"}}, "Unknown membership number"},
		{"coach without password", url.Values{"number": {"104"}}, "Coaches must enter the club password"},
		{"coach wrong password", url.Values{"number": {"104"}, "password": {"nope"}}, "wrong password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup := newTestSetup(t)
			rec := postLogin(t, setup, tt.form, true)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.message) {
				t.Errorf("expected %q in body, got %s", tt.message, rec.Body.String())
			}
			if sessionCookie(rec) != nil {
				t.Error("expected no session cookie")
			}
		})
	}
}

func TestHandleLogin_RejectsMissingCSRFToken(t *testing.T) {
	setup := newTestSetup(t)

	rec := postLogin(t, setup, url.Values{"number": {"201"}}, false)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status 403 without csrf token, got %d", rec.Code)
	}
}

// ==================== JSON login ====================

func TestHandleAPILogin(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(http.MethodPost, "/api/login", `{"number":"104","password":"test-password"}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var session auth.Session
	decodeBody(t, rec, &session)
	if session.Number != "104" || session.Role != "coach" {
		t.Errorf("unexpected session %+v", session)
	}
	if session.Name != "RUIZ, Andres" {
		t.Errorf("expected display name, got %q", session.Name)
	}
	if sessionCookie(rec) == nil {
		t.Error("expected session cookie")
	}
}

func TestHandleAPILogin_Errors(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(http.MethodPost, "/api/login", `{"number":"104"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "UNAUTHORIZED" {
		t.Errorf("expected UNAUTHORIZED, got %s", code)
	}

	rec = setup.do(http.MethodPost, "/api/login", `{not json`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad json, got %d", rec.Code)
	}
}

func TestHandleMe(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(http.MethodGet, "/api/me", "", setup.swimmerCookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var session auth.Session
	decodeBody(t, rec, &session)
	if session.Number != "101" || session.Role != "swimmer" {
		t.Errorf("unexpected session %+v", session)
	}

	rec = setup.do(http.MethodGet, "/api/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without session, got %d", rec.Code)
	}
}

// ==================== Logout ====================

func TestHandleAPILogout_EndsSessionAndSimulator(t *testing.T) {
	setup := newTestSetup(t)

	// leave simulator state behind
	rec := setup.do(http.MethodPost, "/api/relay/search",
		`{"swimmer_ids":["101","102","103","104"],"mode":"freestyle","gender":"male"}`, setup.coachCookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("search failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = setup.do(http.MethodPost, "/api/logout", `{}`, setup.coachCookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if _, ok := setup.auth.ValidateSession(setup.coachCookie.Value); ok {
		t.Error("expected session to be invalidated")
	}

	state, err := setup.svc.Relay.State(t.Context(), setup.coachCookie.Value)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if len(state.Candidates) != 0 {
		t.Error("expected simulator session to be dropped on logout")
	}
}

func TestHandleLogout_FormRedirects(t *testing.T) {
	setup := newTestSetup(t)

	token, cookies := loginForm(t, setup)
	form := url.Values{"gorilla.csrf.Token": {token}}
	req := httptest.NewRequest(http.MethodPost, "/logout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	req.AddCookie(setup.swimmerCookie)
	rec := httptest.NewRecorder()
	setup.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %s", loc)
	}
	if _, ok := setup.auth.ValidateSession(setup.swimmerCookie.Value); ok {
		t.Error("expected session to be invalidated")
	}
}
