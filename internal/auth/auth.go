package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/abrezinsky/clubdash/internal/models"
)

const (
	CookieName    = "clubdash_session"
	SessionExpiry = 12 * time.Hour

	// AdminLogin is the membership number that logs in with the club
	// password alone, so the dashboard is usable before the first sync.
	AdminLogin = "admin"
)

var (
	ErrInvalidCredentials = errors.New("unknown membership number or wrong password")
	ErrPasswordRequired   = errors.New("coaches and admins must enter the club password")
)

// Swim-themed words for password generation
var swimWords = []string{
	"butterfly", "backstroke", "freestyle", "medley", "relay",
	"lane", "flipturn", "streamline", "goggles", "kickboard",
	"dolphin", "pullbuoy", "splash", "anchor", "touchpad",
	"sprint", "taper", "lap", "wave",
}

// MemberLookup finds members by membership number
type MemberLookup interface {
	GetMember(ctx context.Context, number string) (*models.Member, error)
}

// Session is a logged-in member
type Session struct {
	Token   string    `json:"-"`
	Number  string    `json:"number"`
	Name    string    `json:"name"`
	Role    string    `json:"role"`
	Expires time.Time `json:"expires"`
}

// IsStaff reports whether the session may use coach-only features
func (s Session) IsStaff() bool {
	return s.Role == models.RoleCoach || s.Role == models.RoleAdmin
}

// Auth handles member login and sessions
type Auth struct {
	passwordHash []byte
	members      MemberLookup
	sessions     map[string]Session
	mu           sync.RWMutex
	now          func() time.Time
	onExpire     func(token string)
}

// New creates an Auth checking staff logins against password
func New(password string, members MemberLookup) (*Auth, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &Auth{
		passwordHash: hash,
		members:      members,
		sessions:     make(map[string]Session),
		now:          time.Now,
	}, nil
}

// GeneratePassword creates a random 3-word password
func GeneratePassword() string {
	words := make([]string, 3)
	for i := range words {
		words[i] = swimWords[randomInt(len(swimWords))]
	}
	return strings.Join(words, "-")
}

// Login checks the membership number (and the password for staff) and opens a session
func (a *Auth) Login(ctx context.Context, number, password string) (Session, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return Session{}, ErrInvalidCredentials
	}

	var s Session
	if strings.EqualFold(number, AdminLogin) {
		if !a.checkPassword(password) {
			return Session{}, ErrInvalidCredentials
		}
		s = Session{Number: AdminLogin, Name: "Administrator", Role: models.RoleAdmin}
	} else {
		if a.members == nil {
			return Session{}, ErrInvalidCredentials
		}
		m, err := a.members.GetMember(ctx, number)
		if err != nil {
			return Session{}, ErrInvalidCredentials
		}
		if m.IsStaff() {
			if password == "" {
				return Session{}, ErrPasswordRequired
			}
			if !a.checkPassword(password) {
				return Session{}, ErrInvalidCredentials
			}
		}
		s = Session{Number: m.Number, Name: m.DisplayName(), Role: m.Role}
	}

	s.Token = generateToken()
	s.Expires = a.now().Add(SessionExpiry)
	a.mu.Lock()
	a.sessions[s.Token] = s
	a.mu.Unlock()
	return s, nil
}

func (a *Auth) checkPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
}

// Logout invalidates a session token
func (a *Auth) Logout(token string) {
	a.mu.Lock()
	delete(a.sessions, token)
	a.mu.Unlock()
}

// ValidateSession returns the session for token if it has not expired
func (a *Auth) ValidateSession(token string) (Session, bool) {
	a.mu.RLock()
	s, exists := a.sessions[token]
	a.mu.RUnlock()

	if !exists {
		return Session{}, false
	}
	if a.now().After(s.Expires) {
		a.Logout(token)
		a.expired(token)
		return Session{}, false
	}
	return s, true
}

// OnExpire registers fn to run for every session that expires, whether it
// is noticed on a request or by Sweep
func (a *Auth) OnExpire(fn func(token string)) {
	a.mu.Lock()
	a.onExpire = fn
	a.mu.Unlock()
}

func (a *Auth) expired(token string) {
	a.mu.RLock()
	fn := a.onExpire
	a.mu.RUnlock()
	if fn != nil {
		fn(token)
	}
}

// Sweep drops every expired session and returns how many were removed
func (a *Auth) Sweep() int {
	now := a.now()
	var gone []string
	a.mu.Lock()
	for token, s := range a.sessions {
		if now.After(s.Expires) {
			delete(a.sessions, token)
			gone = append(gone, token)
		}
	}
	a.mu.Unlock()

	for _, token := range gone {
		a.expired(token)
	}
	return len(gone)
}

// GetSessionFromRequest extracts and validates the session from a request
func (a *Auth) GetSessionFromRequest(r *http.Request) (Session, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Session{}, false
	}
	return a.ValidateSession(cookie.Value)
}

type ctxKey struct{}

// WithSession returns a context carrying s
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by the auth middleware
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}

// RequireMember middleware for pages (redirects to login)
func (a *Auth) RequireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s, ok := a.GetSessionFromRequest(r); ok {
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
			return
		}
		http.Redirect(w, r, "/login", http.StatusFound)
	})
}

// RequireMemberAPI middleware for API endpoints (returns 401)
func (a *Auth) RequireMemberAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s, ok := a.GetSessionFromRequest(r); ok {
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
			return
		}
		writeJSONError(w, http.StatusUnauthorized, `{"code":"UNAUTHORIZED","error":"Unauthorized - please log in"}`)
	})
}

// RequireStaff must run after RequireMember or RequireMemberAPI
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := FromContext(r.Context())
		if ok && s.IsStaff() {
			next.ServeHTTP(w, r)
			return
		}
		writeJSONError(w, http.StatusForbidden, `{"code":"FORBIDDEN","error":"Coaches only"}`)
	})
}

func writeJSONError(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// SetSessionCookie sets the session cookie on the response
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionExpiry.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func generateToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// randomInt returns a random int in [0, max)
func randomInt(max int) int {
	bytes := make([]byte, 1)
	rand.Read(bytes)
	return int(bytes[0]) % max
}
