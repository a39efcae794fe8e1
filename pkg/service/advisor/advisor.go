// Package advisor answers "how much can I save right now, and into which goal".
package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/monegment/monegment/pkg/config"
	"github.com/monegment/monegment/pkg/domain/allocation"
	"github.com/monegment/monegment/pkg/domain/ledger"
	"github.com/monegment/monegment/pkg/repository"
)

// Service is read only; acting on a recommendation goes through the wallet service.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
	buffer int64
	loc    *time.Location
	now    func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now when deciding the current month.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates an advisor. A nil cfg uses the default buffer and local time.
func New(uow repository.UnitOfWork, cfg *config.Advisor, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		uow:    uow,
		logger: logger,
		buffer: allocation.DefaultBuffer,
		loc:    cfg.Location(),
		now:    time.Now,
	}
	if cfg != nil && cfg.Buffer >= 0 {
		s.buffer = cfg.Buffer
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecommendAllocation evaluates this month's cash flow against the user's goals.
func (s *Service) RecommendAllocation(ctx context.Context, userID int64) (allocation.Recommendation, error) {
	logger := s.logger.With("userID", userID)
	now := s.now().In(s.loc)

	txRepo, err := s.uow.TransactionRepository()
	if err != nil {
		return allocation.Recommendation{}, err
	}
	goalRepo, err := s.uow.GoalRepository()
	if err != nil {
		return allocation.Recommendation{}, err
	}
	txs, err := txRepo.ListByUser(ctx, userID, 0)
	if err != nil {
		logger.Error("RecommendAllocation failed: list transactions", "error", err)
		return allocation.Recommendation{}, fmt.Errorf("list transactions: %w", err)
	}
	goals, err := goalRepo.ListByUser(ctx, userID)
	if err != nil {
		logger.Error("RecommendAllocation failed: list goals", "error", err)
		return allocation.Recommendation{}, fmt.Errorf("list goals: %w", err)
	}

	rec := allocation.Recommend(allocation.Input{
		Month:      ledger.MonthToDate(txs, now),
		DayOfMonth: now.Day(),
		Goals:      goals,
		Balances:   ledger.Compute(txs),
		TopExpense: ledger.TopExpenseCategory(txs, now),
		Buffer:     s.buffer,
	})
	logger.Debug("RecommendAllocation computed", "hasAction", rec.Action != nil, "note", rec.Note)
	return rec, nil
}
