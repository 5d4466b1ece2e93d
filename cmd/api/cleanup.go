package main

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StaleUploadCleaner removes upload sessions that stopped receiving chunks
type StaleUploadCleaner interface {
	CleanupStale(ctx context.Context, maxAge time.Duration) (int, error)
}

// CleanupScheduler runs stale upload cleanup on a cron schedule
type CleanupScheduler struct {
	cron    *cron.Cron
	cleaner StaleUploadCleaner
	maxAge  time.Duration
	logger  *zap.Logger
}

// NewCleanupScheduler creates a scheduler for schedule, a standard cron expression or descriptor like "@hourly"
func NewCleanupScheduler(schedule string, cleaner StaleUploadCleaner, maxAge time.Duration, logger *zap.Logger) (*CleanupScheduler, error) {
	s := &CleanupScheduler{
		cron:    cron.New(),
		cleaner: cleaner,
		maxAge:  maxAge,
		logger:  logger,
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start starts the scheduler
func (s *CleanupScheduler) Start() {
	s.logger.Info("Upload cleanup scheduled", zap.Duration("max_age", s.maxAge))
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running cleanup
func (s *CleanupScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Upload cleanup stopped")
}

func (s *CleanupScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	removed, err := s.cleaner.CleanupStale(ctx, s.maxAge)
	if err != nil {
		s.logger.Error("Failed to clean stale uploads", zap.Error(err))
		return
	}
	s.logger.Debug("Stale upload cleanup finished", zap.Int("removed", removed))
}
