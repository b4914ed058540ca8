package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/abrezinsky/clubdash/internal/auth"
	"github.com/abrezinsky/clubdash/internal/handlers"
	"github.com/abrezinsky/clubdash/internal/services"
	"github.com/abrezinsky/clubdash/internal/testutil"
	"github.com/abrezinsky/clubdash/internal/websocket"
	"github.com/abrezinsky/clubdash/pkg/sheets"
)

const (
	testPassword = "test-password"
	testCSRFKey  = "0123456789abcdef0123456789abcdef"
)

var (
	men   = []string{"101", "102", "103", "104"}
	women = []string{"201", "202", "203", "204"}
)

type testSetup struct {
	handlers *handlers.Handlers
	router   http.Handler
	client   *sheets.MockClient
	svc      handlers.Services
	auth     *auth.Auth

	swimmerCookie *http.Cookie // member 101
	coachCookie   *http.Cookie // member 104
}

func createTestTemplatesFS() fstest.MapFS {
	page := func(name string) *fstest.MapFile {
		return &fstest.MapFile{Data: []byte(`{{define "content"}}` + name + `{{end}}`)}
	}
	return fstest.MapFS{
		"login.html": &fstest.MapFile{
			Data: []byte(`<html><body>Login{{if .Error}} - {{.Error}}{{end}}<input name="gorilla.csrf.Token" value="{{.CSRFToken}}"><input name="number" value="{{.Number}}"></body></html>`),
		},
		"layout.html": &fstest.MapFile{
			Data: []byte(`<html><body>{{.Session.Name}}|{{template "content" .}}</body></html>{{define "content"}}{{end}}`),
		},
		"dashboard.html":  page("Dashboard"),
		"rankings.html":   &fstest.MapFile{Data: []byte(`{{define "content"}}Rankings{{range .Data.Entries}}[{{.Position}} {{.Name}} {{.Formatted}}]{{end}}{{end}}`)},
		"categories.html": page("Categories"),
		"relays.html":     &fstest.MapFile{Data: []byte(`{{define "content"}}Relays {{len .Data.State.Eligible}} eligible{{end}}`)},
		"entries.html":    page("Entries"),
		"swimmer.html":    &fstest.MapFile{Data: []byte(`{{define "content"}}Swimmer {{.Data.Member.Number}}{{end}}`)},
		"settings.html":   page("Settings"),
	}
}

func newServices(t *testing.T, client sheets.Client) handlers.Services {
	t.Helper()

	repo := testutil.NewTestRepository(t)
	testutil.SeedRoster(t, repo)
	log := testutil.NewTestLogger()

	settings := services.NewSettingsService(log, repo, "rfen")
	roster := services.NewRosterService(log, repo, client, 2025, 50)
	return handlers.Services{
		Roster:   roster,
		Relay:    services.NewRelayService(log, roster, repo, settings, nil, nil),
		Rankings: services.NewRankingService(log, repo, settings, 2025, 50),
		Entries:  services.NewEntryService(log, repo, client),
		Members:  services.NewMemberService(log, repo, settings),
		Settings: settings,
	}
}

func newTestSetup(t *testing.T) *testSetup {
	t.Helper()
	return newTestSetupWithClient(t, sheets.NewMockClient())
}

func newTestSetupWithClient(t *testing.T, client *sheets.MockClient) *testSetup {
	t.Helper()

	var c sheets.Client
	if client != nil {
		c = client
	}
	svc := newServices(t, c)

	memberAuth, err := auth.New(testPassword, svc.Members)
	if err != nil {
		t.Fatalf("auth: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := websocket.New(testutil.NewTestLogger(), svc.Settings)
	hub.Start(ctx)

	h, err := handlers.New(
		svc,
		createTestTemplatesFS(),
		handlers.NewStaticServer(fstest.MapFS{"css/app.css": &fstest.MapFile{Data: []byte("body{}")}}),
		memberAuth,
		hub,
		http.NotFoundHandler(),
		[]byte(testCSRFKey),
		handlers.NoopHTTPLogger{},
	)
	if err != nil {
		t.Fatalf("failed to create handlers: %v", err)
	}

	s := &testSetup{
		handlers: h,
		router:   h.Router(),
		client:   client,
		svc:      svc,
		auth:     memberAuth,
	}
	s.swimmerCookie = s.login(t, "101", "")
	s.coachCookie = s.login(t, "104", testPassword)
	return s
}

func (s *testSetup) login(t *testing.T, number, password string) *http.Cookie {
	t.Helper()
	session, err := s.auth.Login(context.Background(), number, password)
	if err != nil {
		t.Fatalf("login %s: %v", number, err)
	}
	return &http.Cookie{Name: auth.CookieName, Value: session.Token}
}

// do sends a request through the router; JSON bodies get the JSON content type
func (s *testSetup) do(method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(target); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code  string `json:"code"`
		Error string `json:"error"`
	}
	decodeBody(t, rec, &body)
	return body.Code
}
