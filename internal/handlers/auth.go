package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/csrf"

	"github.com/abrezinsky/clubdash/internal/auth"
)

// LoginPageData holds data for the login template
type LoginPageData struct {
	Error     string
	Number    string
	CSRFToken string
}

func (h *Handlers) renderLogin(w http.ResponseWriter, r *http.Request, data LoginPageData) {
	data.CSRFToken = csrf.Token(r)
	h.templates.Login.Execute(w, data)
}

// handleLoginPage renders the login form; login cards link here with ?number=
func (h *Handlers) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.Auth.GetSessionFromRequest(r); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	h.renderLogin(w, r, LoginPageData{Number: r.URL.Query().Get("number")})
}

// handleLogin processes login form submission
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	number := r.FormValue("number")

	session, err := h.Auth.Login(r.Context(), number, r.FormValue("password"))
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		h.renderLogin(w, r, LoginPageData{Error: loginMessage(err), Number: number})
		return
	}

	auth.SetSessionCookie(w, session.Token)
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleLogout clears the session, drops its simulator state and redirects to login
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.endSession(r)
	auth.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// handleAPILogin is the JSON form of handleLogin
func (h *Handlers) handleAPILogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	session, err := h.Auth.Login(r.Context(), req.Number, req.Password)
	if err != nil {
		respondError(w, Unauthorized(loginMessage(err)))
		return
	}

	auth.SetSessionCookie(w, session.Token)
	respondOK(w, session)
}

func (h *Handlers) handleAPILogout(w http.ResponseWriter, r *http.Request) {
	h.endSession(r)
	auth.ClearSessionCookie(w)
	respondSuccess(w, "Logged out")
}

// handleMe returns the current session
func (h *Handlers) handleMe(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.FromContext(r.Context())
	respondOK(w, session)
}

func (h *Handlers) endSession(r *http.Request) {
	cookie, err := r.Cookie(auth.CookieName)
	if err != nil {
		return
	}
	if h.Relay != nil {
		h.Relay.EndSession(cookie.Value)
	}
	h.Auth.Logout(cookie.Value)
}

func loginMessage(err error) string {
	if errors.Is(err, auth.ErrPasswordRequired) {
		return "Coaches must enter the club password"
	}
	return "Unknown membership number or wrong password"
}
