package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gradedesk/gradedesk/internal/response"
	"github.com/gradedesk/gradedesk/internal/service"
)

// WorkspaceHandler issues anonymous workspace tokens.
type WorkspaceHandler struct {
	workspaceService *service.WorkspaceService
}

// NewWorkspaceHandler creates a new WorkspaceHandler.
func NewWorkspaceHandler(workspaceService *service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService: workspaceService}
}

// CreateWorkspace godoc
// POST /api/workspaces
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	ws, err := h.workspaceService.Issue()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"workspace": ws})
}
