package handler

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/gradedesk/gradedesk/internal/client"
	"github.com/gradedesk/gradedesk/internal/config"
	"github.com/gradedesk/gradedesk/internal/service"
	ws "github.com/gradedesk/gradedesk/internal/websocket"
	"github.com/rs/zerolog"
)

// wsReply is a loose decoding of every server event.
type wsReply struct {
	Event    ws.Event `json:"event"`
	Error    string   `json:"error"`
	Question string   `json:"question"`
	Result   *struct {
		Grade    int    `json:"grade"`
		Feedback string `json:"feedback"`
	} `json:"result"`
}

func dialGradeStream(t *testing.T, backend *fakeBackend) *websocket.Conn {
	t.Helper()

	upstream := httptest.NewServer(backend)
	t.Cleanup(upstream.Close)

	log := zerolog.Nop()
	c := client.New(upstream.URL+"/api", 2*time.Second, log)
	h := NewWSHandler(
		service.NewGradingService(c, &recordedAttempts{}, log),
		service.NewQuestionService(c, config.DefaultTopic, log),
		onlineStatus(), log, nil,
	)

	r := gin.New()
	r.GET("/ws/grade", h.GradeStream)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/grade", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// nextEvent reads until an event other than a pushed status arrives.
func nextEvent(t *testing.T, conn *websocket.Conn) wsReply {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var r wsReply
		if err := conn.ReadJSON(&r); err != nil {
			t.Fatalf("read: %v", err)
		}
		if r.Event != ws.EventStatus {
			return r
		}
	}
}

func TestWSPing(t *testing.T) {
	conn := dialGradeStream(t, &fakeBackend{})

	conn.WriteJSON(ws.RequestPayload{Action: ws.ActionPing})
	if r := nextEvent(t, conn); r.Event != ws.EventPong {
		t.Errorf("expected pong, got %q", r.Event)
	}
}

func TestWSGrade(t *testing.T) {
	backend := &fakeBackend{gradeStatus: 200, gradeBody: `{"grade": {"grade": 92, "feedback": "Clean recursive solution."}}`}
	conn := dialGradeStream(t, backend)

	conn.WriteJSON(ws.RequestPayload{Action: ws.ActionGrade, Question: "factorial", Code: "def f(n): ..."})

	if r := nextEvent(t, conn); r.Event != ws.EventGrading {
		t.Fatalf("expected grading, got %q", r.Event)
	}
	r := nextEvent(t, conn)
	if r.Event != ws.EventGraded || r.Result == nil {
		t.Fatalf("expected graded, got %+v", r)
	}
	if r.Result.Grade != 92 || r.Result.Feedback != "Clean recursive solution." {
		t.Errorf("unexpected result %+v", *r.Result)
	}
}

func TestWSGradeErrors(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
		payload ws.RequestPayload
		wantErr string
	}{
		{
			name:    "upstream failure",
			backend: &fakeBackend{gradeStatus: 500},
			payload: ws.RequestPayload{Action: ws.ActionGrade, Question: "q", Code: "c"},
			wantErr: "grading service request failed",
		},
		{
			name:    "blank code",
			backend: &fakeBackend{gradeStatus: 200},
			payload: ws.RequestPayload{Action: ws.ActionGrade, Question: "q", Code: "   "},
			wantErr: "question and code are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := dialGradeStream(t, tt.backend)
			conn.WriteJSON(tt.payload)

			nextEvent(t, conn) // grading
			r := nextEvent(t, conn)
			if r.Event != ws.EventError || r.Error != tt.wantErr {
				t.Errorf("expected error %q, got %+v", tt.wantErr, r)
			}
		})
	}
}

func TestWSGenerate(t *testing.T) {
	backend := &fakeBackend{question: "Reverse a linked list."}
	conn := dialGradeStream(t, backend)

	conn.WriteJSON(ws.RequestPayload{Action: ws.ActionGenerate})
	r := nextEvent(t, conn)
	if r.Event != ws.EventQuestion || r.Question != "Reverse a linked list." {
		t.Errorf("unexpected reply %+v", r)
	}
}

func TestWSUnknownAction(t *testing.T) {
	conn := dialGradeStream(t, &fakeBackend{})

	conn.WriteJSON(ws.RequestPayload{Action: "dance"})
	r := nextEvent(t, conn)
	if r.Event != ws.EventError || !strings.Contains(r.Error, "dance") {
		t.Errorf("unexpected reply %+v", r)
	}
}
