package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"scholarship-fund.backend/internal/interfaces/http/response"
	"scholarship-fund.backend/internal/usecases"
	"scholarship-fund.backend/pkg/utils"
)

// keepAliveInterval spaces SSE comments on idle streams
var keepAliveInterval = 25 * time.Second

// EventHandler exposes the registry event log
type EventHandler struct {
	events *usecases.EventUsecase
}

// NewEventHandler creates a new event handler
func NewEventHandler(events *usecases.EventUsecase) *EventHandler {
	return &EventHandler{events: events}
}

// ListEvents GET /api/v1/events?offset=&limit=&type=&address=
func (h *EventHandler) ListEvents(c *gin.Context) {
	offset, err := queryInt64(c, "offset", 0)
	if err != nil {
		response.Error(c, err)
		return
	}
	limit, err := queryInt64(c, "limit", utils.DefaultPageLimit)
	if err != nil {
		response.Error(c, err)
		return
	}

	events, meta, err := h.events.ListEvents(c.Request.Context(), usecases.EventQuery{
		Type:    c.Query("type"),
		Address: c.Query("address"),
		Offset:  offset,
		Limit:   limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, http.StatusOK, events, meta)
}

// StreamEvents sends live events as Server-Sent Events until the client leaves
// GET /api/v1/events/stream
func (h *EventHandler) StreamEvents(c *gin.Context) {
	stream, err := h.events.Stream(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case e, ok := <-stream:
			if !ok {
				return false
			}
			c.SSEvent(string(e.Type), e)
			return true
		case <-ticker.C:
			_, _ = io.WriteString(w, ": keep-alive\n\n")
			return true
		}
	})
}
