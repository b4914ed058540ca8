package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/abrezinsky/clubdash/internal/auth"
	"github.com/abrezinsky/clubdash/internal/services"
	"github.com/abrezinsky/clubdash/internal/websocket"
)

// NewStaticServer creates a static file server from an fs.FS
func NewStaticServer(staticFS fs.FS) http.Handler {
	return http.FileServer(http.FS(staticFS))
}

// PageData holds the data passed to page templates
type PageData struct {
	Title     string
	ActiveNav string
	Session   auth.Session
	CSRFToken string
	Data      interface{}
}

// Templates holds all parsed HTML templates
type Templates struct {
	Login      *template.Template
	Dashboard  *template.Template
	Rankings   *template.Template
	Categories *template.Template
	Relays     *template.Template
	Entries    *template.Template
	Swimmer    *template.Template
	Settings   *template.Template
}

// Services bundles the service layer the handlers call into
type Services struct {
	Roster   services.RosterServicer
	Relay    services.RelayServicer
	Rankings services.RankingServicer
	Entries  services.EntryServicer
	Members  services.MemberServicer
	Settings services.SettingsServicer
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Roster       services.RosterServicer
	Relay        services.RelayServicer
	Rankings     services.RankingServicer
	Entries      services.EntryServicer
	Members      services.MemberServicer
	Settings     services.SettingsServicer
	Auth         *auth.Auth
	Hub          *websocket.Hub
	Metrics      http.Handler
	Log          HTTPLogger
	csrfKey      []byte
	templates    *Templates
	staticServer http.Handler
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies
func New(
	svc Services,
	templatesFS fs.FS,
	staticServer http.Handler,
	memberAuth *auth.Auth,
	hub *websocket.Hub,
	metrics http.Handler,
	csrfKey []byte,
	log HTTPLogger,
) (*Handlers, error) {
	templates, err := loadTemplates(templatesFS)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	if len(csrfKey) != 32 {
		return nil, fmt.Errorf("csrf key must be 32 bytes, got %d", len(csrfKey))
	}

	h := withServices(svc)
	h.Auth = memberAuth
	h.Hub = hub
	h.Metrics = metrics
	h.Log = log
	h.csrfKey = csrfKey
	h.templates = templates
	h.staticServer = staticServer
	return h, nil
}

func withServices(svc Services) *Handlers {
	return &Handlers{
		Roster:   svc.Roster,
		Relay:    svc.Relay,
		Rankings: svc.Rankings,
		Entries:  svc.Entries,
		Members:  svc.Members,
		Settings: svc.Settings,
	}
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance without loading templates (for testing API endpoints)
func NewForTesting(svc Services, memberAuth *auth.Auth) *Handlers {
	h := withServices(svc)
	h.Auth = memberAuth
	h.Log = NoopHTTPLogger{}
	h.csrfKey = []byte("0123456789abcdef0123456789abcdef")
	// templates left nil - API endpoints don't use templates
	return h
}

var templateFuncs = template.FuncMap{
	"legs": func() []int { return []int{1, 2, 3, 4} },
}

func parsePage(templatesFS fs.FS, page string) (*template.Template, error) {
	t, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templatesFS, "layout.html", page)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", page, err)
	}
	return t, nil
}

// loadTemplates parses all templates once at startup
func loadTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{}
	var err error

	if t.Login, err = template.ParseFS(templatesFS, "login.html"); err != nil {
		return nil, fmt.Errorf("login template: %w", err)
	}
	pages := []struct {
		dst  **template.Template
		file string
	}{
		{&t.Dashboard, "dashboard.html"},
		{&t.Rankings, "rankings.html"},
		{&t.Categories, "categories.html"},
		{&t.Relays, "relays.html"},
		{&t.Entries, "entries.html"},
		{&t.Swimmer, "swimmer.html"},
		{&t.Settings, "settings.html"},
	}
	for _, p := range pages {
		if *p.dst, err = parsePage(templatesFS, p.file); err != nil {
			return nil, err
		}
	}

	return t, nil
}
