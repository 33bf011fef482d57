package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ai3d-studio/internal/service"
)

const defaultHeartbeat = 25 * time.Second

// EventsHandler mantiene una conexión SSE por pestaña. Cada conexión es dueña de
// una NavigationShell suscrita al bus de su perfil.
type EventsHandler struct {
	logger    *zap.Logger
	store     service.CredentialStore
	bus       *service.AuthEventBus
	guard     *service.PageGuard
	heartbeat time.Duration
}

func NewEventsHandler(logger *zap.Logger, store service.CredentialStore, bus *service.AuthEventBus, guard *service.PageGuard, heartbeat time.Duration) *EventsHandler {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &EventsHandler{
		logger:    logger,
		store:     store,
		bus:       bus,
		guard:     guard,
		heartbeat: heartbeat,
	}
}

type redirectEvent struct {
	To string `json:"to"`
}

// Stream maneja GET /events. Emite "nav" con el estado inicial y en cada cambio.
// Con guarded=true emite "redirect" y cierra en cuanto el perfil deja de estar autenticado.
func (h *EventsHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	profileID := ProfileID(c)
	guarded := c.Query("guarded") == "true"

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	if guarded && !h.guard.Check(ctx, profileID) {
		h.send(c, "redirect", redirectEvent{To: loginPath})
		return
	}

	shell := service.NewNavigationShell(ctx, h.store, h.bus, profileID)
	defer shell.Close()

	var signedOut <-chan struct{}
	if guarded {
		ch, stop := h.guard.Watch(ctx, profileID)
		defer stop()
		signedOut = ch
	}

	h.send(c, "nav", shell.State())

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-shell.Signals():
			if state, changed := shell.Refresh(ctx); changed {
				h.send(c, "nav", state)
			}
		case <-signedOut:
			h.send(c, "redirect", redirectEvent{To: loginPath})
			return
		case <-ticker.C:
			h.send(c, "ping", time.Now().UTC().Unix())
		}
	}
}

func (h *EventsHandler) send(c *gin.Context, event string, data any) {
	c.SSEvent(event, data)
	c.Writer.Flush()
}
