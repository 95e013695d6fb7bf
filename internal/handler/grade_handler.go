package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gradedesk/gradedesk/internal/client"
	"github.com/gradedesk/gradedesk/internal/middleware"
	"github.com/gradedesk/gradedesk/internal/model"
	"github.com/gradedesk/gradedesk/internal/response"
	"github.com/gradedesk/gradedesk/internal/service"
	"github.com/gradedesk/gradedesk/internal/validator"
)

// GradeHandler handles the grading and question generation endpoints.
// Success bodies keep the grading backend's shapes.
type GradeHandler struct {
	gradingService  *service.GradingService
	questionService *service.QuestionService
}

// NewGradeHandler creates a new GradeHandler.
func NewGradeHandler(gradingService *service.GradingService, questionService *service.QuestionService) *GradeHandler {
	return &GradeHandler{gradingService: gradingService, questionService: questionService}
}

// Grade godoc
// POST /api/grade
// Grades code against a question. Responds with the flat {grade, feedback} shape
// plus summary and attempt_id.
func (h *GradeHandler) Grade(c *gin.Context) {
	var req model.GradeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.gradingService.Grade(c.Request.Context(), middleware.GetWorkspaceID(c), req.Question, req.Code)
	if err != nil {
		failUpstream(c, err)
		return
	}

	response.Contract(c, http.StatusOK, res)
}

// GenerateQuestion godoc
// POST /api/generate-question
// Returns {question} for the requested topic, or the default topic.
func (h *GradeHandler) GenerateQuestion(c *gin.Context) {
	var req model.GenerateQuestionRequest
	if c.Request.ContentLength != 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	res, err := h.questionService.Generate(c.Request.Context(), req.Topic)
	if err != nil {
		failUpstream(c, err)
		return
	}

	response.Contract(c, http.StatusOK, res)
}

// failUpstream maps service errors to responses. Nothing is written when the
// caller already went away.
func failUpstream(c *gin.Context, err error) {
	switch {
	case c.Request.Context().Err() != nil:
		c.Abort()
	case errors.Is(err, service.ErrBlankSubmission):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"detail": err.Error(),
		})
	case errors.Is(err, client.ErrRequestFailed):
		response.Fail(c, http.StatusBadGateway, response.ErrUpstreamFailed)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
