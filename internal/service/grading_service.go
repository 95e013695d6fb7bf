package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gradedesk/gradedesk/internal/model"
	"github.com/rs/zerolog"
)

// ErrBlankSubmission is returned when the question or code is empty after trimming.
var ErrBlankSubmission = errors.New("question and code are required")

// Grader submits code for grading. Implemented by client.Client.
type Grader interface {
	SubmitGrade(ctx context.Context, question, code string) (*model.GradeResponse, error)
}

// AttemptRecorder stores a successful grading.
type AttemptRecorder interface {
	Record(ctx context.Context, attempt *model.GradeAttempt) error
}

// GradingService grades submissions and records the successful ones.
type GradingService struct {
	grader   Grader
	recorder AttemptRecorder
	log      zerolog.Logger
}

// NewGradingService creates a new GradingService. recorder may be nil.
func NewGradingService(grader Grader, recorder AttemptRecorder, log zerolog.Logger) *GradingService {
	return &GradingService{
		grader:   grader,
		recorder: recorder,
		log:      log.With().Str("component", "grading_service").Logger(),
	}
}

// Grade trims and submits question and code. Failures from the grading backend
// are returned unchanged and nothing is recorded for them.
func (s *GradingService) Grade(ctx context.Context, workspaceID uuid.UUID, question, code string) (*model.GradeResult, error) {
	question = strings.TrimSpace(question)
	code = strings.TrimSpace(code)
	if question == "" || code == "" {
		return nil, ErrBlankSubmission
	}

	res, err := s.grader.SubmitGrade(ctx, question, code)
	if err != nil {
		s.log.Error().Err(err).Str("workspace_id", workspaceID.String()).Msg("Grading failed")
		return nil, err
	}

	attempt := &model.GradeAttempt{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Question:    question,
		Code:        code,
		Grade:       res.Grade,
		Feedback:    res.Feedback,
		CreatedAt:   time.Now().UTC(),
	}

	if s.recorder != nil {
		// The grade is already earned; a client hanging up must not drop the record.
		if err := s.recorder.Record(context.WithoutCancel(ctx), attempt); err != nil {
			s.log.Error().Err(err).Str("attempt_id", attempt.ID.String()).Msg("Failed to record attempt")
		}
	}

	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Str("workspace_id", workspaceID.String()).
		Int("grade", res.Grade).
		Msg("Code graded")

	return &model.GradeResult{
		GradeResponse: *res,
		Summary:       model.Summarize(res.Grade),
		AttemptID:     attempt.ID.String(),
	}, nil
}
