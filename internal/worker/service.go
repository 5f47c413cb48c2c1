package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

type purchaseStore interface {
	PurgeStale(maxAge time.Duration) int
}

type paymentService interface {
	ExpireStale(ctx context.Context, olderThan time.Duration) (int, error)
}

// Service runs the housekeeping jobs: abandoned purchase sessions are purged
// hourly and ledger rows stuck in pending are expired once a day.
type Service struct {
	purchases  purchaseStore
	payments   paymentService
	sessionTTL time.Duration
	pendingTTL time.Duration
	logger     *slog.Logger
	cron       *cron.Cron
}

func NewService(purchases purchaseStore, payments paymentService, sessionTTL, pendingTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		purchases:  purchases,
		payments:   payments,
		sessionTTL: sessionTTL,
		pendingTTL: pendingTTL,
		logger:     logger,
		cron:       cron.New(),
	}
}

// Start starts the cron workers
func (s *Service) Start() error {
	s.logger.Info("Starting worker service")

	// Session purge: hourly
	_, err := s.cron.AddFunc("@hourly", func() {
		removed := s.purchases.PurgeStale(s.sessionTTL)
		if removed > 0 {
			s.logger.Info("Purged stale purchase sessions", "count", removed)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add session purge worker: %w", err)
	}

	// Charge expiry: daily at 03:30
	_, err = s.cron.AddFunc("30 3 * * *", func() {
		ctx := context.Background()
		expired, err := s.payments.ExpireStale(ctx, s.pendingTTL)
		if err != nil {
			s.logger.Error("Charge expiry worker failed", "error", err)
			return
		}
		if expired > 0 {
			s.logger.Info("Expired stale pending charges", "count", expired)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add charge expiry worker: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Worker service started successfully")

	return nil
}

// Stop stops the cron workers
func (s *Service) Stop() {
	s.logger.Info("Stopping worker service")
	s.cron.Stop()
	s.logger.Info("Worker service stopped")
}
