package websocket

import "github.com/gradedesk/gradedesk/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionGrade    Action = "grade"
	ActionGenerate Action = "generate"
	ActionStatus   Action = "status"
	ActionPing     Action = "ping"
)

// RequestPayload is the single client message shape; fields depend on Action.
type RequestPayload struct {
	Action   Action `json:"action"`
	Question string `json:"question,omitempty"`
	Code     string `json:"code,omitempty"`
	Topic    string `json:"topic,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventGrading  Event = "grading"
	EventGraded   Event = "graded"
	EventQuestion Event = "question"
	EventStatus   Event = "status"
	EventPong     Event = "pong"
)

type GradingResponse struct {
	Event Event `json:"event"`
}

type GradedResponse struct {
	Event  Event              `json:"event"`
	Result *model.GradeResult `json:"result"`
}

type QuestionResponse struct {
	Event    Event  `json:"event"`
	Question string `json:"question"`
}

type StatusResponse struct {
	Event  Event              `json:"event"`
	Status model.ServerStatus `json:"status"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
