package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tasktracker/internal/auth"
	"tasktracker/internal/server"
	"tasktracker/internal/storage/memory"
)

// ---------------------------------------------------------------------------
// Test harness: real gin engine over the in-memory store
// ---------------------------------------------------------------------------

type testEnv struct {
	store  *memory.Store
	tokens *auth.Tokens
	srv    *server.Server
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.New()
	tokens := auth.NewTokens("test-secret")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &testEnv{
		store:  store,
		tokens: tokens,
		srv:    server.New(store, tokens, logger, ""),
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	w := httptest.NewRecorder()
	e.srv.Engine().ServeHTTP(w, req)
	return w
}

func (e *testEnv) register(t *testing.T, username, password string) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username, "password": password,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", username, w.Code, w.Body)
	}
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username, "password": password,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d, body %s", username, w.Code, w.Body)
	}
	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, w, &resp)
	if resp.Token == "" {
		t.Fatalf("login %s returned an empty token", username)
	}
	return resp.Token
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %s: %v", w.Body, err)
	}
}

// ---------------------------------------------------------------------------
// Auth endpoints
// ---------------------------------------------------------------------------

func TestRegisterDuplicateUsername(t *testing.T) {
	env := newEnv(t)
	env.register(t, "alice", "pw1")

	w := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "password": "other",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: status %d, want 400", w.Code)
	}
	var resp struct {
		Error string `json:"error"`
	}
	decodeBody(t, w, &resp)
	if resp.Error != "User already exists" {
		t.Fatalf("duplicate register error %q", resp.Error)
	}
}

func TestRegisterStoresHashNotPlaintext(t *testing.T) {
	env := newEnv(t)
	env.register(t, "alice", "pw1")

	user, err := env.store.UserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("UserByUsername: %v", err)
	}
	if user.Password == "pw1" {
		t.Fatal("password stored in plaintext")
	}
	if !strings.HasPrefix(user.Password, "$2") {
		t.Fatalf("stored password %q is not a bcrypt hash", user.Password)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	env := newEnv(t)

	for _, body := range []map[string]string{
		{"username": "alice"},
		{"password": "pw1"},
		{"username": "   ", "password": "pw1"},
	} {
		w := env.do(t, http.MethodPost, "/api/auth/register", "", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("register %v: status %d, want 400", body, w.Code)
		}
	}
}

func TestLoginFailureIsUniform(t *testing.T) {
	env := newEnv(t)
	env.register(t, "alice", "pw1")

	wrongPassword := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	unknownUser := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "nobody", "password": "pw1",
	})

	if wrongPassword.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status %d, want 401", wrongPassword.Code)
	}
	if unknownUser.Code != wrongPassword.Code {
		t.Fatalf("status differs: unknown user %d, wrong password %d", unknownUser.Code, wrongPassword.Code)
	}
	if unknownUser.Body.String() != wrongPassword.Body.String() {
		t.Fatalf("body differs: %s vs %s", unknownUser.Body, wrongPassword.Body)
	}
}

func TestLogout(t *testing.T) {
	env := newEnv(t)
	env.register(t, "alice", "pw1")
	token := env.login(t, "alice", "pw1")

	// No credential supplied.
	w := env.do(t, http.MethodPost, "/api/auth/logout", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("logout without token: status %d, want 400", w.Code)
	}

	// Garbage is rejected, not silently blacklisted.
	w = env.do(t, http.MethodPost, "/api/auth/logout", "Bearer not-a-token", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("logout with garbage: status %d, want 400", w.Code)
	}

	w = env.do(t, http.MethodPost, "/api/auth/logout", "Bearer "+token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: status %d, body %s", w.Code, w.Body)
	}

	// The token no longer opens the gate.
	w = env.do(t, http.MethodGet, "/api/tasks", "Bearer "+token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("tasks with revoked token: status %d, want 401", w.Code)
	}
	var resp struct {
		Message string `json:"message"`
	}
	decodeBody(t, w, &resp)
	if resp.Message != "Token has been revoked" {
		t.Fatalf("revoked token message %q", resp.Message)
	}

	// Logging out twice is a no-op success.
	w = env.do(t, http.MethodPost, "/api/auth/logout", "Bearer "+token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("second logout: status %d, body %s", w.Code, w.Body)
	}
}

func TestCORSHeaders(t *testing.T) {
	env := newEnv(t)

	// Preflight for a cross-origin task call.
	req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	w := httptest.NewRecorder()
	env.srv.Engine().ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight: status %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("preflight allow-origin %q, want *", got)
	}

	// Simple cross-origin request carries the header too.
	req = httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w = httptest.NewRecorder()
	env.srv.Engine().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("healthz: status %d, want 200", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin %q, want *", got)
	}
}

// ---------------------------------------------------------------------------
// Access guard
// ---------------------------------------------------------------------------

func TestGuardRejectsMissingAndInvalidTokens(t *testing.T) {
	env := newEnv(t)

	w := env.do(t, http.MethodGet, "/api/tasks", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no header: status %d, want 401", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/tasks", "Bearer garbage", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("garbage token: status %d, want 400", w.Code)
	}
}

func TestGuardAcceptsBareToken(t *testing.T) {
	env := newEnv(t)
	env.register(t, "alice", "pw1")
	token := env.login(t, "alice", "pw1")

	// Authorization header without the "Bearer " scheme prefix.
	w := env.do(t, http.MethodGet, "/api/tasks", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("bare token: status %d, body %s", w.Code, w.Body)
	}
}
