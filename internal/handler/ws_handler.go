package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/gradedesk/gradedesk/internal/client"
	"github.com/gradedesk/gradedesk/internal/middleware"
	"github.com/gradedesk/gradedesk/internal/service"
	ws "github.com/gradedesk/gradedesk/internal/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler runs the interactive grading session over a WebSocket.
type WSHandler struct {
	gradingService  *service.GradingService
	questionService *service.QuestionService
	monitor         StatusSource
	log             zerolog.Logger
	upgrader        websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(
	gradingService *service.GradingService,
	questionService *service.QuestionService,
	monitor StatusSource,
	log zerolog.Logger,
	allowedOrigins []string,
) *WSHandler {
	return &WSHandler{
		gradingService:  gradingService,
		questionService: questionService,
		monitor:         monitor,
		log:             log.With().Str("component", "ws_handler").Logger(),
		upgrader:        buildUpgrader(allowedOrigins),
	}
}

// GradeStream godoc
// WS /ws/grade?token=...
// Requests are handled one at a time; status transitions are pushed as they happen.
func (h *WSHandler) GradeStream(c *gin.Context) {
	workspaceID := middleware.GetWorkspaceID(c)

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(raw)
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wsLog := h.log.With().Str("workspace_id", workspaceID.String()).Logger()
	wsLog.Info().Msg("Client connected")

	go h.pushStatus(ctx, conn)

	for {
		var msg ws.RequestPayload
		if err := conn.ReadPayload(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionGrade:
			h.handleGrade(ctx, conn, workspaceID, &msg)
		case ws.ActionGenerate:
			h.handleGenerate(ctx, conn, &msg)
		case ws.ActionStatus:
			conn.WriteTyped(ws.StatusResponse{Event: ws.EventStatus, Status: h.monitor.Status()})
		case ws.ActionPing:
			conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			conn.WriteError("unknown action: " + string(msg.Action))
		}
	}
}

// pushStatus forwards monitor transitions until ctx ends. Write errors are
// ignored; the read loop notices the broken connection.
func (h *WSHandler) pushStatus(ctx context.Context, conn *ws.Conn) {
	updates, unsubscribe := h.monitor.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-updates:
			if !ok {
				return
			}
			conn.WriteTyped(ws.StatusResponse{Event: ws.EventStatus, Status: st})
		}
	}
}

func (h *WSHandler) handleGrade(ctx context.Context, conn *ws.Conn, workspaceID uuid.UUID, msg *ws.RequestPayload) {
	conn.WriteTyped(ws.GradingResponse{Event: ws.EventGrading})

	res, err := h.gradingService.Grade(ctx, workspaceID, msg.Question, msg.Code)
	if err != nil {
		conn.WriteError(wsErrorMessage(err))
		return
	}
	conn.WriteTyped(ws.GradedResponse{Event: ws.EventGraded, Result: res})
}

func (h *WSHandler) handleGenerate(ctx context.Context, conn *ws.Conn, msg *ws.RequestPayload) {
	res, err := h.questionService.Generate(ctx, msg.Topic)
	if err != nil {
		conn.WriteError(wsErrorMessage(err))
		return
	}
	conn.WriteTyped(ws.QuestionResponse{Event: ws.EventQuestion, Question: res.Question})
}

func wsErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrBlankSubmission):
		return "question and code are required"
	case errors.Is(err, client.ErrRequestFailed):
		return "grading service request failed"
	default:
		return "internal error"
	}
}
