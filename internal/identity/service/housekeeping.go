package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/kelas/internal/identity/metrics"
	"github.com/aussiebroadwan/kelas/internal/identity/store"
)

// HousekeepingService periodically deletes expired outstanding tokens and
// signing keys so the tables do not grow without bound.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService returns a stopped service. A non-positive interval
// defaults to one hour.
func NewHousekeepingService(s store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &HousekeepingService{
		Store:    s,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the worker in the background. It cleans once right away.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", slog.Duration("interval", s.Interval))
}

// Stop blocks until the worker has finished any cleanup in progress.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background(), time.Now().UTC())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background(), time.Now().UTC())
		case <-s.stopCh:
			return
		}
	}
}

// CleanupResult is what a single Cleanup pass removed.
type CleanupResult struct {
	OutstandingTokens int64
	SigningKeys       int64
}

// Cleanup deletes rows expired at now. Each table is cleaned independently,
// a failure on one does not stop the other.
func (s *HousekeepingService) Cleanup(ctx context.Context, now time.Time) CleanupResult {
	var res CleanupResult

	n, err := s.Store.OutstandingTokens().DeleteExpiredOutstandingTokens(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired outstanding tokens", slog.Any("error", err))
	} else {
		res.OutstandingTokens = n
		metrics.HousekeepingDeletedTotal.WithLabelValues("outstanding_tokens").Add(float64(n))
	}

	n, err = s.Store.SigningKeys().DeleteExpiredSigningKeys(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired signing keys", slog.Any("error", err))
	} else {
		res.SigningKeys = n
		metrics.HousekeepingDeletedTotal.WithLabelValues("signing_keys").Add(float64(n))
	}

	s.Logger.Info("housekeeping cleanup completed",
		slog.Int64("outstanding_tokens", res.OutstandingTokens),
		slog.Int64("signing_keys", res.SigningKeys),
	)
	return res
}
