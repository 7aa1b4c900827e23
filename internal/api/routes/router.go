package routes

import (
	"net/http"

	"github.com/gharbazaar/backend/internal/api/handlers"
	"github.com/gharbazaar/backend/internal/api/middleware"
	"github.com/gharbazaar/backend/internal/infrastructure/identity"
	"github.com/gharbazaar/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	propertyHandler *handlers.PropertyHandler
	profileHandler  *handlers.ProfileHandler
	mediaHandler    *handlers.MediaHandler
	eventsHandler   *handlers.EventsHandler

	identityManager *identity.Manager
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	propertyHandler *handlers.PropertyHandler,
	profileHandler *handlers.ProfileHandler,
	mediaHandler *handlers.MediaHandler,
	eventsHandler *handlers.EventsHandler,
	identityManager *identity.Manager,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		propertyHandler: propertyHandler,
		profileHandler:  profileHandler,
		mediaHandler:    mediaHandler,
		eventsHandler:   eventsHandler,
		identityManager: identityManager,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Listing endpoints
	r.mux.HandleFunc("GET /api/properties", r.propertyHandler.ListProperties)
	r.mux.HandleFunc("GET /api/properties/available", r.propertyHandler.ListAvailableProperties)
	r.mux.HandleFunc("GET /api/properties/search", r.propertyHandler.SearchProperties)
	r.mux.HandleFunc("GET /api/properties/{id}", r.propertyHandler.GetProperty)
	r.mux.HandleFunc("POST /api/properties", r.propertyHandler.CreateProperty)
	r.mux.HandleFunc("PUT /api/properties/{id}", r.propertyHandler.UpdateProperty)
	r.mux.HandleFunc("DELETE /api/properties/{id}", r.propertyHandler.DeleteProperty)

	// Owner-scoped endpoints
	r.mux.HandleFunc("GET /api/my/properties", r.propertyHandler.ListMyProperties)
	r.mux.HandleFunc("GET /api/my/events", r.eventsHandler.StreamMyUpdates)

	// Profile endpoints
	r.mux.HandleFunc("GET /api/profile", r.profileHandler.GetProfile)
	r.mux.HandleFunc("PUT /api/profile", r.profileHandler.SaveProfile)
	r.mux.HandleFunc("POST /api/admin/roles", r.profileHandler.SetRole)

	// Media endpoints
	if r.mediaHandler != nil {
		r.mux.HandleFunc("POST /api/media", r.mediaHandler.Upload)
		r.mux.HandleFunc("GET /api/media/{key...}", r.mediaHandler.Get)
	}

	// Event stream
	r.mux.HandleFunc("GET /api/events", r.eventsHandler.StreamUpdates)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.RecoveryMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.AuthMiddleware(r.identityManager)(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// CORS wraps everything so even rejected requests get headers
	handler = middleware.CORSMiddleware(handler)

	return handler
}
