package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"journal/internal/auth"
	"journal/internal/config"
)

const sessionCookie = "journal_session"

type session struct {
	user    string
	expires time.Time
}

type Auth struct {
	users *auth.Users
	ttl   time.Duration

	mu       sync.Mutex
	sessions map[string]session
}

// newAuth returns nil when no users are configured, which disables gating.
func newAuth(cfg config.Config) (*Auth, error) {
	users := auth.NewUsers()
	if cfg.AuthFile != "" {
		fileUsers, err := auth.LoadFile(cfg.AuthFile)
		if err != nil {
			return nil, err
		}
		users = fileUsers
	}

	if cfg.AuthUser != "" || cfg.AuthPass != "" {
		if cfg.AuthUser == "" || cfg.AuthPass == "" {
			return nil, errors.New("JOURNAL_AUTH_USER and JOURNAL_AUTH_PASS must be set together")
		}
		users.AddPlain(cfg.AuthUser, cfg.AuthPass)
	}

	if users.Len() == 0 {
		return nil, nil
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 720 * time.Hour
	}
	return &Auth{users: users, ttl: ttl, sessions: make(map[string]session)}, nil
}

func (a *Auth) startSession(user string, now time.Time) (string, time.Time) {
	id := uuid.NewString()
	expires := now.Add(a.ttl)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessions[id] = session{user: user, expires: expires}
	for key, sess := range a.sessions {
		if now.After(sess.expires) {
			delete(a.sessions, key)
		}
	}
	return id, expires
}

func (a *Auth) lookup(id string, now time.Time) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	sess, ok := a.sessions[id]
	if !ok {
		return "", false
	}
	if now.After(sess.expires) {
		delete(a.sessions, id)
		return "", false
	}
	return sess.user, true
}

func (a *Auth) endSession(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, id)
}

// userFromRequest accepts a session cookie or HTTP Basic credentials.
func (a *Auth) userFromRequest(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		if user, ok := a.lookup(cookie.Value, time.Now()); ok {
			return user, true
		}
	}
	if user, pass, ok := r.BasicAuth(); ok && a.users.Verify(user, pass) {
		return user, true
	}
	return "", false
}

func isLoginPath(path string) bool {
	return path == "/login"
}

func (s *Server) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil {
			next.ServeHTTP(w, r)
			return
		}
		if user, ok := s.auth.userFromRequest(r); ok {
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), User{Name: user})))
			return
		}
		if isLoginPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		s.renderLogin(w, r, http.StatusUnauthorized, r.URL.RequestURI(), "")
	})
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, status int, next, message string) {
	s.render(w, r, status, ViewData{
		Title:           "Login",
		ContentTemplate: "login",
		LoginNext:       next,
		Error:           message,
	})
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if s.auth == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if _, ok := CurrentUser(r.Context()); ok {
		http.Redirect(w, r, safeNext(r.URL.Query().Get("next")), http.StatusSeeOther)
		return
	}
	s.renderLogin(w, r, http.StatusOK, r.URL.Query().Get("next"), "")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.auth == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	user := strings.TrimSpace(r.PostForm.Get("username"))
	pass := r.PostForm.Get("password")
	next := r.PostForm.Get("next")
	if !s.auth.users.Verify(user, pass) {
		slog.Warn("login failed", "user", user, "remote", r.RemoteAddr)
		s.renderLogin(w, r, http.StatusUnauthorized, next, "Invalid username or password.")
		return
	}
	id, expires := s.auth.startSession(user, time.Now())
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	slog.Info("login", "user", user)
	http.Redirect(w, r, safeNext(next), http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s.auth != nil {
		if cookie, err := r.Cookie(sessionCookie); err == nil {
			s.auth.endSession(cookie.Value)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// safeNext keeps redirects on this host.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Host != "" || u.Scheme != "" || u.Path == "/login" {
		return "/"
	}
	return next
}
