package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gradedesk/gradedesk/internal/model"
	"github.com/gradedesk/gradedesk/internal/response"
	"github.com/rs/zerolog"
)

const keepAliveInterval = 30 * time.Second

// StatusSource exposes the health monitor. Implemented by health.Monitor.
type StatusSource interface {
	Status() model.ServerStatus
	Subscribe() (<-chan model.ServerStatus, func())
}

// StatusHandler reports gateway liveness and grading backend status.
type StatusHandler struct {
	monitor StatusSource
	log     zerolog.Logger
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(monitor StatusSource, log zerolog.Logger) *StatusHandler {
	return &StatusHandler{
		monitor: monitor,
		log:     log.With().Str("component", "status_handler").Logger(),
	}
}

// Health godoc
// GET /api/health
// Gateway liveness, in the same shape as the grading backend's health endpoint.
func (h *StatusHandler) Health(c *gin.Context) {
	response.Contract(c, http.StatusOK, model.HealthResponse{Status: model.HealthyStatus})
}

// GetStatus godoc
// GET /api/status
func (h *StatusHandler) GetStatus(c *gin.Context) {
	response.Success(c, http.StatusOK, h.monitor.Status())
}

// StreamStatus godoc
// GET /api/status/stream
// Server-sent events: the current status, then every transition.
func (h *StatusHandler) StreamStatus(c *gin.Context) {
	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)

	updates, unsubscribe := h.monitor.Subscribe()
	defer unsubscribe()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	pingPayload, _ := json.Marshal(map[string]string{"type": "ping"})

	h.log.Debug().Str("client_ip", c.ClientIP()).Msg("Status stream attached")

	for {
		select {
		case <-reqCtx.Done():
			h.log.Debug().Str("client_ip", c.ClientIP()).Msg("Status stream detached")
			return

		case st, ok := <-updates:
			if !ok {
				return
			}
			payload, err := json.Marshal(st)
			if err != nil {
				h.log.Error().Err(err).Msg("Encode status failed")
				continue
			}
			writeEvent(c, "status", payload)

		case <-keepAlive.C:
			writeEvent(c, "", pingPayload)
		}
	}
}

func writeEvent(c *gin.Context, event string, payload []byte) {
	if event != "" {
		c.Writer.Write([]byte("event: " + event + "\n"))
	}
	c.Writer.Write([]byte("data: "))
	c.Writer.Write(payload)
	c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}
