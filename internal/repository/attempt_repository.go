package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gradedesk/gradedesk/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// AttemptRepository handles grade_attempts persistence.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// InsertBatch inserts all attempts in one statement. Already stored IDs are skipped,
// so a requeued batch is safe to replay.
func (r *AttemptRepository) InsertBatch(ctx context.Context, attempts []model.GradeAttempt) error {
	n := len(attempts)
	if n == 0 {
		return nil
	}

	ids := make([]uuid.UUID, n)
	workspaces := make([]uuid.UUID, n)
	questions := make([]string, n)
	codes := make([]string, n)
	grades := make([]int32, n)
	feedbacks := make([]string, n)
	createdAts := make([]time.Time, n)

	for i, a := range attempts {
		ids[i] = a.ID
		workspaces[i] = a.WorkspaceID
		questions[i] = a.Question
		codes[i] = a.Code
		grades[i] = int32(a.Grade)
		feedbacks[i] = a.Feedback
		createdAts[i] = a.CreatedAt
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO grade_attempts (id, workspace_id, question, code, grade, feedback, created_at)
		SELECT * FROM UNNEST(
			$1::uuid[],
			$2::uuid[],
			$3::text[],
			$4::text[],
			$5::int[],
			$6::text[],
			$7::timestamptz[]
		)
		ON CONFLICT (id) DO NOTHING`,
		ids, workspaces, questions, codes, grades, feedbacks, createdAts,
	)
	return err
}

// Insert stores a single attempt.
func (r *AttemptRepository) Insert(ctx context.Context, a *model.GradeAttempt) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO grade_attempts (id, workspace_id, question, code, grade, feedback, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING`,
		a.ID, a.WorkspaceID, a.Question, a.Code, a.Grade, a.Feedback, a.CreatedAt,
	)
	return err
}

// ListByWorkspace returns a page of attempts, newest first, and the total count.
func (r *AttemptRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]model.GradeAttempt, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM grade_attempts WHERE workspace_id = $1`, workspaceID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, workspace_id, question, code, grade, feedback, created_at
		 FROM grade_attempts
		 WHERE workspace_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		workspaceID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var attempts []model.GradeAttempt
	for rows.Next() {
		var a model.GradeAttempt
		if err := rows.Scan(&a.ID, &a.WorkspaceID, &a.Question, &a.Code, &a.Grade, &a.Feedback, &a.CreatedAt); err != nil {
			return nil, 0, err
		}
		attempts = append(attempts, a)
	}
	return attempts, total, rows.Err()
}

// GetByID returns one attempt owned by workspaceID.
func (r *AttemptRepository) GetByID(ctx context.Context, id, workspaceID uuid.UUID) (*model.GradeAttempt, error) {
	a := &model.GradeAttempt{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, workspace_id, question, code, grade, feedback, created_at
		 FROM grade_attempts
		 WHERE id = $1 AND workspace_id = $2`,
		id, workspaceID,
	).Scan(&a.ID, &a.WorkspaceID, &a.Question, &a.Code, &a.Grade, &a.Feedback, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}
