package main

import (
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

const sessionCookieName = "hotseat_session"

// defaultUsers seeds contestant credentials when no --users file is
// given, matching the out-of-the-box demo roster.
var defaultUsers = map[string]string{
	"participant1": "pass1",
	"participant2": "pass2",
	"participant3": "pass3",
	"participant4": "pass4",
	"participant5": "pass5",
}

func loadUsers(path string) (map[string]string, error) {
	if path == "" {
		users := make(map[string]string, len(defaultUsers))
		for name, pass := range defaultUsers {
			users[name] = pass
		}
		return users, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var users map[string]string
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, err
	}

	return users, nil
}

type session struct {
	role     Role
	username string
}

// SessionStore maps bearer tokens to authenticated roles. Sessions are
// in-memory only and die with the process, like the rest of the game.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]session
}

func newSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]session),
	}
}

func (s *SessionStore) create(role Role, username string) string {
	token := uuid.NewString()

	s.mu.Lock()
	s.sessions[token] = session{role: role, username: username}
	s.mu.Unlock()

	return token
}

func (s *SessionStore) lookup(token string) (session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[token]

	return sess, ok
}

func (s *SessionStore) fromRequest(r *http.Request) (session, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return session{}, false
	}

	return s.lookup(cookie.Value)
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeJSON(cfg *Config, w http.ResponseWriter, status int, body any, errs chan<- error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	data, err := json.Marshal(body)
	if err != nil {
		errs <- err

		return
	}

	if _, err := w.Write(append(data, '\n')); err != nil {
		errs <- err
	}
}

type loginRequest struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success  bool   `json:"success"`
	Username string `json:"username,omitempty"`
}

// serveAdminLogin exchanges the moderator password for an admin session.
func serveAdminLogin(cfg *Config, sessions *SessionStore, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(cfg, w, http.StatusBadRequest, loginResponse{}, errs)

			return
		}

		if req.Password != cfg.adminPassword {
			logf(cfg, "AUTH: Failed admin login from %s", realIP(r))
			writeJSON(cfg, w, http.StatusUnauthorized, loginResponse{}, errs)

			return
		}

		setSessionCookie(w, sessions.create(RoleAdmin, ""))
		writeJSON(cfg, w, http.StatusOK, loginResponse{Success: true}, errs)

		logf(cfg, "AUTH: Admin logged in from %s in %s",
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

// serveParticipantLogin exchanges contestant credentials for a
// participant session bound to that username.
func serveParticipantLogin(cfg *Config, users map[string]string, sessions *SessionStore, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(cfg, w, http.StatusBadRequest, loginResponse{}, errs)

			return
		}

		pass, ok := users[req.Username]
		if !ok || pass != req.Password {
			logf(cfg, "AUTH: Failed participant login for %q from %s", req.Username, realIP(r))
			writeJSON(cfg, w, http.StatusUnauthorized, loginResponse{}, errs)

			return
		}

		setSessionCookie(w, sessions.create(RoleParticipant, req.Username))
		writeJSON(cfg, w, http.StatusOK, loginResponse{Success: true, Username: req.Username}, errs)

		logf(cfg, "AUTH: Participant %q logged in from %s in %s",
			req.Username,
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}
