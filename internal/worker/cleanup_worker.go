package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/internal/metrics"
	"github.com/kingrain94/tenant-auth-api/internal/repository"
	"github.com/kingrain94/tenant-auth-api/pkg/logger"
)

// Archiver keeps a copy of refresh-token rows before they are purged
type Archiver interface {
	Archive(ctx context.Context, tokens []domain.RefreshToken, cutoff time.Time) error
}

// CleanupWorker purges expired refresh tokens on a fixed interval. Each sweep
// lists up to workerCount batches, archives and deletes them in parallel, and
// repeats until a short page shows the table is drained.
type CleanupWorker struct {
	repository   repository.RefreshTokenRepository
	archiver     Archiver
	metrics      *metrics.Collector
	logger       *logger.Logger
	workerCount  int
	batchSize    int
	pollInterval time.Duration
	now          func() time.Time
	shutdownChan chan struct{}
	waitGroup    sync.WaitGroup
}

// NewCleanupWorker builds the sweeper. A nil archiver deletes without archiving.
func NewCleanupWorker(
	repository repository.RefreshTokenRepository,
	archiver Archiver,
	metrics *metrics.Collector,
	logger *logger.Logger,
	workerCount int,
	batchSize int,
	pollInterval time.Duration,
) *CleanupWorker {
	if workerCount < 1 {
		workerCount = 1
	}
	if batchSize < 1 {
		batchSize = 500
	}
	return &CleanupWorker{
		repository:   repository,
		archiver:     archiver,
		metrics:      metrics,
		logger:       logger,
		workerCount:  workerCount,
		batchSize:    batchSize,
		pollInterval: pollInterval,
		now:          time.Now,
		shutdownChan: make(chan struct{}),
	}
}

func (w *CleanupWorker) Start() {
	w.logger.Info("Starting refresh token cleanup worker...")

	w.waitGroup.Add(1)
	go w.run()
}

func (w *CleanupWorker) Stop() {
	w.logger.Info("Stopping refresh token cleanup worker...")
	close(w.shutdownChan)
	w.waitGroup.Wait()
	w.logger.Info("Refresh token cleanup worker stopped")
}

func (w *CleanupWorker) run() {
	defer w.waitGroup.Done()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.shutdownChan:
			return
		case <-ticker.C:
			if _, err := w.Sweep(context.Background()); err != nil {
				w.logger.Error("Refresh token sweep failed", err)
			}
		}
	}
}

// Sweep removes every refresh token that expired before the sweep started and
// returns how many rows were deleted.
func (w *CleanupWorker) Sweep(ctx context.Context) (int64, error) {
	cutoff := w.now()
	pageSize := w.batchSize * w.workerCount
	var total int64

	for {
		tokens, err := w.repository.ListExpired(ctx, cutoff, pageSize)
		if err != nil {
			return total, fmt.Errorf("failed to list expired refresh tokens: %w", err)
		}
		if len(tokens) == 0 {
			break
		}

		purged, err := w.purgePage(ctx, tokens, cutoff)
		total += purged
		if err != nil {
			return total, err
		}
		if len(tokens) < pageSize {
			break
		}
	}

	if total > 0 {
		w.logger.Info("Purged expired refresh tokens", zap.Int64("count", total), zap.Time("cutoff", cutoff))
	}
	return total, nil
}

func (w *CleanupWorker) purgePage(ctx context.Context, tokens []domain.RefreshToken, cutoff time.Time) (int64, error) {
	var (
		mu     sync.Mutex
		purged int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.workerCount)
	for start := 0; start < len(tokens); start += w.batchSize {
		end := min(start+w.batchSize, len(tokens))
		batch := tokens[start:end]

		g.Go(func() error {
			n, err := w.purgeBatch(gctx, batch, cutoff)
			mu.Lock()
			purged += n
			mu.Unlock()
			return err
		})
	}

	err := g.Wait()
	return purged, err
}

// purgeBatch deletes nothing it could not archive
func (w *CleanupWorker) purgeBatch(ctx context.Context, batch []domain.RefreshToken, cutoff time.Time) (int64, error) {
	if w.archiver != nil {
		if err := w.archiver.Archive(ctx, batch, cutoff); err != nil {
			return 0, fmt.Errorf("failed to archive %d refresh tokens: %w", len(batch), err)
		}
	}

	ids := make([]string, len(batch))
	for i, t := range batch {
		ids[i] = t.ID
	}

	n, err := w.repository.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete %d refresh tokens: %w", len(ids), err)
	}
	w.metrics.RecordRefreshTokensPurged(n)
	return n, nil
}
