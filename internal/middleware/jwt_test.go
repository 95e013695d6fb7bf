package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gradedesk/gradedesk/internal/config"
	"github.com/gradedesk/gradedesk/internal/service"
)

func newWorkspaceEngine(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/", mw, func(c *gin.Context) {
		c.String(http.StatusOK, GetWorkspaceID(c).String())
	})
	return r
}

func TestWorkspaceMiddleware(t *testing.T) {
	svc := service.NewWorkspaceService(&config.Config{JWTSecret: "secret", JWTExpiry: time.Hour})
	ws, err := svc.Issue()
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := []struct {
		name     string
		mw       gin.HandlerFunc
		header   string
		query    string
		wantCode int
		wantBody string
	}{
		{"required with header", RequireWorkspace(svc), "Bearer " + ws.Token, "", http.StatusOK, ws.ID.String()},
		{"required with query", RequireWorkspace(svc), "", ws.Token, http.StatusOK, ws.ID.String()},
		{"required missing", RequireWorkspace(svc), "", "", http.StatusUnauthorized, ""},
		{"required invalid", RequireWorkspace(svc), "Bearer nope", "", http.StatusUnauthorized, ""},
		{"optional missing", OptionalWorkspace(svc), "", "", http.StatusOK, uuid.Nil.String()},
		{"optional with header", OptionalWorkspace(svc), "bearer " + ws.Token, "", http.StatusOK, ws.ID.String()},
		{"optional invalid", OptionalWorkspace(svc), "Bearer nope", "", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			newWorkspaceEngine(tt.mw).ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("expected body %q, got %q", tt.wantBody, w.Body.String())
			}
		})
	}
}
