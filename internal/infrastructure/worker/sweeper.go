package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrSweeperRunning is returned by Start when the sweeper is already polling
var ErrSweeperRunning = errors.New("sweeper already running")

// OrphanRemover deletes receipt drafts that were uploaded but never completed
type OrphanRemover interface {
	SweepOrphans(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

// SweeperConfig holds the orphan sweeper settings
type SweeperConfig struct {
	PollInterval time.Duration
	MaxAge       time.Duration
	BatchSize    int
}

// DefaultSweeperConfig returns the default sweeper settings
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		PollInterval: 10 * time.Minute,
		MaxAge:       24 * time.Hour,
		BatchSize:    50,
	}
}

// SweeperStats are the cumulative counters of a sweeper
type SweeperStats struct {
	Runs      int
	Removed   int
	LastRun   time.Time
	LastError error
}

// OrphanSweeper periodically removes uploaded receipts whose bill was
// never submitted
type OrphanSweeper struct {
	remover OrphanRemover
	config  SweeperConfig
	logger  *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	stats   SweeperStats
}

// NewOrphanSweeper creates a sweeper. Zero config fields take their defaults.
func NewOrphanSweeper(remover OrphanRemover, config SweeperConfig, logger *zap.Logger) *OrphanSweeper {
	defaults := DefaultSweeperConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.MaxAge <= 0 {
		config.MaxAge = defaults.MaxAge
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}

	return &OrphanSweeper{
		remover: remover,
		config:  config,
		logger:  logger,
	}
}

// Name returns the worker name
func (s *OrphanSweeper) Name() string {
	return "orphan-sweeper"
}

// Start launches the poll loop
func (s *OrphanSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrSweeperRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	s.logger.Info("Orphan sweeper starting",
		zap.Duration("poll_interval", s.config.PollInterval),
		zap.Duration("max_age", s.config.MaxAge),
		zap.Int("batch_size", s.config.BatchSize))

	go s.pollLoop(loopCtx, s.done)
	return nil
}

// Stop cancels the poll loop and waits for the sweep in progress to finish
func (s *OrphanSweeper) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
	return nil
}

// Stats returns a copy of the sweeper counters
func (s *OrphanSweeper) Stats() SweeperStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *OrphanSweeper) pollLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Orphan sweeper stopped")
			return
		case <-ticker.C:
			_, _ = s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep and records its outcome
func (s *OrphanSweeper) RunOnce(ctx context.Context) (int, error) {
	removed, err := s.remover.SweepOrphans(ctx, s.config.MaxAge, s.config.BatchSize)

	s.mu.Lock()
	s.stats.Runs++
	s.stats.Removed += removed
	s.stats.LastRun = time.Now()
	s.stats.LastError = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Orphan sweep failed", zap.Error(err))
		return removed, err
	}
	if removed > 0 {
		s.logger.Info("Orphan receipts removed", zap.Int("count", removed))
	}
	return removed, nil
}
