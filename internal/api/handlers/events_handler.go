package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gharbazaar/backend/internal/api/middleware"
	"github.com/gharbazaar/backend/internal/domain/providers"
	"github.com/gharbazaar/backend/internal/infrastructure/observability"
)

// EventsHandler streams listing mutation events to clients over Server-Sent
// Events
type EventsHandler struct {
	eventBus providers.EventBus
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(eventBus providers.EventBus) *EventsHandler {
	return &EventsHandler{eventBus: eventBus}
}

// StreamUpdates handles GET /api/events. All listing mutations are streamed;
// clients use them to refresh stale views.
func (h *EventsHandler) StreamUpdates(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, providers.EventChannelPropertyUpdates)
}

// StreamMyUpdates handles GET /api/my/events, streaming only events for the
// authenticated caller's own listings
func (h *EventsHandler) StreamMyUpdates(w http.ResponseWriter, r *http.Request) {
	principal := middleware.Principal(r.Context())
	if principal == "" {
		respondWithError(w, http.StatusUnauthorized, "authentication required to stream your updates")
		return
	}
	h.stream(w, r, providers.GetOwnerChannel(principal))
}

func (h *EventsHandler) stream(w http.ResponseWriter, r *http.Request, channel string) {
	// The server runs without an event bus when Redis is down; reads and
	// mutations still work, only streaming is unavailable.
	if h.eventBus == nil {
		respondWithError(w, http.StatusServiceUnavailable, "event streaming is unavailable")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	eventChan, err := h.eventBus.Subscribe(r.Context(), channel)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().
			Str("channel", channel).Err(err).
			Msg("failed to subscribe for streaming")
		respondWithError(w, http.StatusInternalServerError, "failed to subscribe")
		return
	}

	sendEvent(w, "connected", map[string]interface{}{
		"channel":   channel,
		"timestamp": time.Now().UTC(),
	})
	flusher.Flush()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now().UTC(),
			})
			flusher.Flush()
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			sendEvent(w, string(event.EventType), event)
			flusher.Flush()
		}
	}
}

// sendEvent writes one SSE frame
func sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		observability.GetLogger().Error().Err(err).Msg("failed to marshal event data")
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}
