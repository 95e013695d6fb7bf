package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gradedesk/gradedesk/internal/response"
	"github.com/gradedesk/gradedesk/internal/service"
)

const (
	// ContextKeyWorkspaceID is the Gin context key for the authenticated workspace.
	ContextKeyWorkspaceID = "workspace_id"
)

// RequireWorkspace rejects requests without a valid workspace token.
func RequireWorkspace(workspaceService *service.WorkspaceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		claims, err := workspaceService.ValidateToken(tokenStr)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, tokenErrCode(err))
			return
		}

		c.Set(ContextKeyWorkspaceID, claims.WorkspaceID)
		c.Next()
	}
}

// OptionalWorkspace attaches the workspace when a token is sent. A bad token is
// still rejected so a client never silently loses attribution.
func OptionalWorkspace(workspaceService *service.WorkspaceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			c.Next()
			return
		}

		claims, err := workspaceService.ValidateToken(tokenStr)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, tokenErrCode(err))
			return
		}

		c.Set(ContextKeyWorkspaceID, claims.WorkspaceID)
		c.Next()
	}
}

// GetWorkspaceID returns the workspace bound to the request, or uuid.Nil.
func GetWorkspaceID(c *gin.Context) uuid.UUID {
	val, exists := c.Get(ContextKeyWorkspaceID)
	if !exists {
		return uuid.Nil
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

func tokenErrCode(err error) response.ErrCode {
	if errors.Is(err, service.ErrTokenExpired) {
		return response.ErrTokenExpired
	}
	return response.ErrTokenInvalid
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	// Fallback for EventSource and WebSocket clients, which cannot send headers.
	return c.Query("token")
}
