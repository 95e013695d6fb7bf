package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/gradedesk/gradedesk/internal/config"
	"github.com/gradedesk/gradedesk/internal/model"
	"github.com/gradedesk/gradedesk/internal/repository"
	"github.com/gradedesk/gradedesk/internal/response"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
)

// AttemptService queues new attempts for persistence and reads attempt history.
type AttemptService struct {
	attemptRepo *repository.AttemptRepository
	rdb         *redis.Client
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(attemptRepo *repository.AttemptRepository, rdb *redis.Client) *AttemptService {
	return &AttemptService{attemptRepo: attemptRepo, rdb: rdb}
}

// Record pushes the attempt onto the persistence queue drained by worker.AttemptWorker.
func (s *AttemptService) Record(ctx context.Context, attempt *model.GradeAttempt) error {
	payload, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("encode attempt: %w", err)
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistAttemptsQueue, payload).Err(); err != nil {
		return fmt.Errorf("enqueue attempt: %w", err)
	}
	return nil
}

// List returns a page of the workspace's attempts, newest first.
func (s *AttemptService) List(ctx context.Context, workspaceID uuid.UUID, page, perPage int) ([]model.AttemptListItem, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	attempts, total, err := s.attemptRepo.ListByWorkspace(ctx, workspaceID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}

	items := lo.Map(attempts, func(a model.GradeAttempt, _ int) model.AttemptListItem {
		return model.AttemptListItem{
			ID:        a.ID,
			Question:  a.Question,
			Grade:     a.Grade,
			Level:     model.Summarize(a.Grade).Level,
			CreatedAt: a.CreatedAt,
		}
	})

	return items, response.NewPagination(page, perPage, total), nil
}

// Get returns one attempt of the workspace.
func (s *AttemptService) Get(ctx context.Context, id, workspaceID uuid.UUID) (*model.GradeAttempt, error) {
	return s.attemptRepo.GetByID(ctx, id, workspaceID)
}
