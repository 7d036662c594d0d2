// Package history persists served recommendations off the request path.
package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sahoo-ansu/I-MED/internal/models"
)

const DefaultWriteTimeout = 5 * time.Second

type Store interface {
	SaveRecommendation(ctx context.Context, rec *models.Recommendation) error
}

// PersistenceError is a failed history write. It is only ever logged.
type PersistenceError struct {
	RecommendationID string
	UserID           string
	Err              error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("save recommendation %s for user %s: %v", e.RecommendationID, e.UserID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Recorder writes recommendations on background goroutines. Writes use their
// own context so a finished request does not cancel them.
type Recorder struct {
	store   Store
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewRecorder(store Store, timeout time.Duration, logger *zap.Logger) *Recorder {
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}
	return &Recorder{
		store:   store,
		timeout: timeout,
		logger:  logger,
	}
}

// Record schedules rec for persistence and returns immediately. The caller's
// value is copied, ID and CreatedAt are filled in when missing.
func (r *Recorder) Record(rec *models.Recommendation) {
	if rec == nil {
		return
	}

	c := *rec
	c.MedicineIDs = append([]int64(nil), rec.MedicineIDs...)
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.logger.Warn("Recorder closed, dropping recommendation",
			zap.String("recommendation_id", c.ID),
			zap.String("user_id", c.UserID))
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go r.write(&c)
}

func (r *Recorder) write(rec *models.Recommendation) {
	defer r.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.store.SaveRecommendation(ctx, rec); err != nil {
		r.logger.Error("Failed to save recommendation",
			zap.Error(&PersistenceError{RecommendationID: rec.ID, UserID: rec.UserID, Err: err}))
		return
	}

	r.logger.Debug("Recommendation saved",
		zap.String("recommendation_id", rec.ID),
		zap.String("user_id", rec.UserID),
		zap.String("strategy", rec.Strategy))
}

// Wait blocks until every scheduled write has finished.
func (r *Recorder) Wait() {
	r.wg.Wait()
}

// Close stops accepting records and drains in-flight writes until ctx ends.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain history writes: %w", ctx.Err())
	}
}
