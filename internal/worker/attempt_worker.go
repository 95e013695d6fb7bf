package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gradedesk/gradedesk/internal/config"
	"github.com/gradedesk/gradedesk/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	AttemptBatchSize    = 50
	AttemptBatchTimeout = 2 * time.Second
	AttemptPollTimeout  = 1 * time.Second
)

// AttemptStore persists attempts. Implemented by repository.AttemptRepository.
type AttemptStore interface {
	InsertBatch(ctx context.Context, attempts []model.GradeAttempt) error
	Insert(ctx context.Context, a *model.GradeAttempt) error
}

// AttemptWorker drains the attempt queue into PostgreSQL in batches.
type AttemptWorker struct {
	store AttemptStore
	rdb   *redis.Client
	log   zerolog.Logger
}

func NewAttemptWorker(store AttemptStore, rdb *redis.Client, log zerolog.Logger) *AttemptWorker {
	return &AttemptWorker{
		store: store,
		rdb:   rdb,
		log:   log.With().Str("component", "attempt_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

// Start blocks until ctx is cancelled, then flushes what it holds.
func (w *AttemptWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AttemptWorker started")

	batch := make([]model.GradeAttempt, 0, AttemptBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= AttemptBatchSize || time.Since(lastFlush) >= AttemptBatchTimeout) {
			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, AttemptPollTimeout, config.WorkerKey.PersistAttemptsQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
					time.Sleep(AttemptPollTimeout)
				}
				continue
			}
			if len(item) < 2 {
				continue
			}

			a, ok := w.decode(item[1])
			if !ok {
				continue
			}
			batch = append(batch, a)
		}
	}
}

func (w *AttemptWorker) decode(raw string) (model.GradeAttempt, bool) {
	var a model.GradeAttempt
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		w.log.Error().Err(err).Msg("Invalid JSON payload")
		return a, false
	}
	return a, true
}

// ----------------------------------------------------------------
// Batch insert with single-row fallback
// ----------------------------------------------------------------

func (w *AttemptWorker) flushSafe(ctx context.Context, batch []model.GradeAttempt) {
	if len(batch) == 0 {
		return
	}

	err := w.store.InsertBatch(ctx, batch)
	if err == nil {
		w.log.Debug().Int("count", len(batch)).Msg("Attempts persisted")
		return
	}

	w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk attempt insert failed, using fallback")
	for i := range batch {
		a := &batch[i]
		if err := w.store.Insert(ctx, a); err != nil {
			w.log.Error().Err(err).Str("attempt_id", a.ID.String()).Msg("Insert failed, requeueing")
			raw, _ := json.Marshal(a)
			w.rdb.RPush(context.Background(), config.WorkerKey.PersistAttemptsQueue, raw)
		}
	}
}
