package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
)

func TestSessionStoreLifecycle(t *testing.T) {
	sessions := newSessionStore()

	token := sessions.create(RoleParticipant, "p1")
	if token == "" {
		t.Fatalf("expected non-empty session token")
	}

	sess, ok := sessions.lookup(token)
	if !ok {
		t.Fatalf("expected session for freshly created token")
	}
	if sess.role != RoleParticipant || sess.username != "p1" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	if _, ok := sessions.lookup("bogus"); ok {
		t.Fatalf("expected no session for unknown token")
	}
}

func TestLoadUsersDefaults(t *testing.T) {
	users, err := loadUsers("")
	if err != nil {
		t.Fatalf("loadUsers returned error: %v", err)
	}
	if len(users) == 0 {
		t.Fatalf("expected default users to be non-empty")
	}
	if users["participant1"] == "" {
		t.Fatalf("expected participant1 in default roster")
	}
}

func postLogin(t *testing.T, handler httprouter.Handle, body string) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler(w, r, nil)

	return w
}

func TestAdminLogin(t *testing.T) {
	cfg := &Config{adminPassword: "hunter2"}
	sessions := newSessionStore()
	errs := make(chan error, 8)
	handler := serveAdminLogin(cfg, sessions, errs)

	w := postLogin(t, handler, `{"password":"wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", w.Code)
	}

	w = postLogin(t, handler, `{"password":"hunter2"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for good password, got %d", w.Code)
	}

	cookies := w.Result().Cookies()
	var token string
	for _, c := range cookies {
		if c.Name == sessionCookieName {
			token = c.Value
		}
	}
	if token == "" {
		t.Fatalf("expected session cookie to be set")
	}

	sess, ok := sessions.lookup(token)
	if !ok || sess.role != RoleAdmin {
		t.Fatalf("expected admin session for token, got %+v (ok=%v)", sess, ok)
	}
}

func TestParticipantLogin(t *testing.T) {
	cfg := &Config{}
	users := map[string]string{"p1": "secret"}
	sessions := newSessionStore()
	errs := make(chan error, 8)
	handler := serveParticipantLogin(cfg, users, sessions, errs)

	for _, body := range []string{
		`{"username":"p1","password":"wrong"}`,
		`{"username":"nobody","password":"secret"}`,
	} {
		if w := postLogin(t, handler, body); w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s, got %d", body, w.Code)
		}
	}

	w := postLogin(t, handler, `{"username":"p1","password":"secret"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp loginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success || resp.Username != "p1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestQuestionEndpointRequiresAdmin(t *testing.T) {
	cfg := &Config{}
	sessions := newSessionStore()
	errs := make(chan error, 8)
	handler := serveQuestion(cfg, testBank(t), sessions, errs)

	params := httprouter.Params{{Key: "id", Value: "1"}}

	r := httptest.NewRequest(http.MethodGet, "/api/questions/1", nil)
	w := httptest.NewRecorder()
	handler(w, r, params)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", w.Code)
	}

	token := sessions.create(RoleAdmin, "")
	r = httptest.NewRequest(http.MethodGet, "/api/questions/1", nil)
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	w = httptest.NewRecorder()
	handler(w, r, params)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with admin session, got %d", w.Code)
	}

	var question struct {
		Index   int         `json:"index"`
		Prompt  string      `json:"question"`
		Correct OptionLabel `json:"correct"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &question); err != nil {
		t.Fatalf("failed to decode question: %v", err)
	}
	if question.Index != 1 || question.Prompt != "two" || question.Correct != OptionB {
		t.Fatalf("unexpected question payload: %+v", question)
	}

	// Participant sessions are not enough.
	token = sessions.create(RoleParticipant, "p1")
	r = httptest.NewRequest(http.MethodGet, "/api/questions/1", nil)
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	w = httptest.NewRecorder()
	handler(w, r, params)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for participant session, got %d", w.Code)
	}

	// Unknown indexes are a structured 404, not a fault.
	token = sessions.create(RoleAdmin, "")
	r = httptest.NewRequest(http.MethodGet, "/api/questions/99", nil)
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	w = httptest.NewRecorder()
	handler(w, r, httprouter.Params{{Key: "id", Value: "99"}})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for out-of-range index, got %d", w.Code)
	}
}
