package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gradedesk/gradedesk/internal/client"
	"github.com/gradedesk/gradedesk/internal/config"
	"github.com/gradedesk/gradedesk/internal/middleware"
	"github.com/gradedesk/gradedesk/internal/model"
	"github.com/gradedesk/gradedesk/internal/service"
	"github.com/gradedesk/gradedesk/internal/validator"
	"github.com/rs/zerolog"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validator.Setup()
	os.Exit(m.Run())
}

// fakeBackend stands in for the external grading service.
type fakeBackend struct {
	gradeStatus int
	gradeBody   string
	question    string
	lastTopic   string
	gradeCalls  int
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/grade":
		b.gradeCalls++
		w.WriteHeader(b.gradeStatus)
		w.Write([]byte(b.gradeBody))
	case "/api/generate-question":
		var req model.GenerateQuestionRequest
		json.NewDecoder(r.Body).Decode(&req)
		b.lastTopic = req.Topic
		json.NewEncoder(w).Encode(model.GenerateQuestionResponse{Question: b.question})
	case "/api/health":
		w.Write([]byte(`{"status":"healthy"}`))
	default:
		http.NotFound(w, r)
	}
}

type recordedAttempts struct {
	attempts []*model.GradeAttempt
}

func (r *recordedAttempts) Record(_ context.Context, a *model.GradeAttempt) error {
	r.attempts = append(r.attempts, a)
	return nil
}

// testEnv wires handlers the way cmd/server does, minus Redis and PostgreSQL.
type testEnv struct {
	backend    *fakeBackend
	recorder   *recordedAttempts
	engine     *gin.Engine
	workspaces *service.WorkspaceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	backend := &fakeBackend{gradeStatus: http.StatusOK, question: "Implement binary search."}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	log := zerolog.Nop()
	c := client.New(srv.URL+"/api", 2*time.Second, log)
	recorder := &recordedAttempts{}
	grading := service.NewGradingService(c, recorder, log)
	questions := service.NewQuestionService(c, config.DefaultTopic, log)
	workspaces := service.NewWorkspaceService(&config.Config{JWTSecret: "test", JWTExpiry: time.Hour})

	gh := NewGradeHandler(grading, questions)
	wh := NewWorkspaceHandler(workspaces)

	r := gin.New()
	r.POST("/api/grade", middleware.OptionalWorkspace(workspaces), gh.Grade)
	r.POST("/api/generate-question", gh.GenerateQuestion)
	r.POST("/api/workspaces", wh.CreateWorkspace)

	return &testEnv{backend: backend, recorder: recorder, engine: r, workspaces: workspaces}
}

func (e *testEnv) do(method, path string, body interface{}, header http.Header) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}
