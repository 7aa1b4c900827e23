package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gharbazaar/backend/internal/api/handlers"
	"github.com/gharbazaar/backend/internal/api/middleware"
	"github.com/gharbazaar/backend/internal/infrastructure/identity"
)

// newEventsServer wires the stream routes the way the router does, with no
// event bus configured. The server degrades to this shape when Redis is down.
func newEventsServer(t *testing.T) (http.Handler, *identity.Manager) {
	t.Helper()

	manager, err := identity.NewManager("test-signing-key")
	assert.NoError(t, err)

	handler := handlers.NewEventsHandler(nil)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/events", handler.StreamUpdates)
	mux.HandleFunc("GET /api/my/events", handler.StreamMyUpdates)

	return middleware.AuthMiddleware(manager)(mux), manager
}

func TestStreamUpdates_NoEventBusIsUnavailable(t *testing.T) {
	server, _ := newEventsServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	rec := httptest.NewRecorder()

	assert.NotPanics(t, func() {
		server.ServeHTTP(rec, req)
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStreamMyUpdates_NoEventBusIsUnavailable(t *testing.T) {
	server, manager := newEventsServer(t)

	token, err := manager.Issue("user-1", "user", time.Hour)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/my/events", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	assert.NotPanics(t, func() {
		server.ServeHTTP(rec, req)
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStreamMyUpdates_RequiresAuth(t *testing.T) {
	server, _ := newEventsServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/my/events", nil)
	rec := httptest.NewRecorder()

	server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
