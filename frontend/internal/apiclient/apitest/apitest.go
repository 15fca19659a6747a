// Package apitest runs a scripted forum backend for client tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/forumstartup/forum/frontend/internal/apiclient"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// Backend is an httptest server routing the paths under /api to handlers
// registered by the test. Unregistered routes answer 404.
type Backend struct {
	Server *httptest.Server

	mux   *chi.Mux
	mu    sync.Mutex
	calls map[string]int
}

func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{mux: chi.NewRouter(), calls: make(map[string]int)}
	b.mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	})
	root := chi.NewRouter()
	root.Mount("/api", b.mux)
	b.Server = httptest.NewServer(root)
	t.Cleanup(b.Server.Close)
	return b
}

// Handle registers h for method and a chi pattern relative to /api.
func (b *Backend) Handle(method, pattern string, h http.HandlerFunc) {
	key := method + " " + pattern
	b.mux.MethodFunc(method, pattern, func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[key]++
		b.mu.Unlock()
		h(w, r)
	})
}

// Reply registers a handler that always answers status with v as JSON.
func (b *Backend) Reply(method, pattern string, status int, v any) {
	b.Handle(method, pattern, func(w http.ResponseWriter, r *http.Request) {
		JSON(w, status, v)
	})
}

// Calls returns how many requests reached method and pattern.
func (b *Backend) Calls(method, pattern string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method+" "+pattern]
}

func (b *Backend) URL() string {
	return b.Server.URL + "/api"
}

// Client returns a client talking to the backend.
func (b *Backend) Client(t *testing.T, opts ...apiclient.Option) *apiclient.APIClient {
	t.Helper()
	c, err := apiclient.New(b.URL(), opts...)
	require.NoError(t, err)
	return c
}

// SetSession answers with a session cookie, as a successful login does.
func SetSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{Name: "jwt", Value: token, Path: "/", HttpOnly: true})
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// Decode reads the request body into v, failing the handler with 400.
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}
	return true
}
