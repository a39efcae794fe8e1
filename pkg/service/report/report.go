// Package report builds the dashboard summary and manages the monthly budget.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/monegment/monegment/pkg/domain"
	"github.com/monegment/monegment/pkg/domain/ledger"
	"github.com/monegment/monegment/pkg/domain/transaction"
	"github.com/monegment/monegment/pkg/repository"
)

const (
	// MonthsShown is the number of monthly buckets in a summary.
	MonthsShown = 6
	// RecentShown is the number of newest transactions in a summary.
	RecentShown = 50
)

// Summary is everything the dashboard shows at once.
type Summary struct {
	Balances          ledger.Balances            `json:"balances"`
	Income            int64                      `json:"income"`
	Expense           int64                      `json:"expense"`
	ExpenseByCategory []ledger.CategoryTotal     `json:"expense_by_category"`
	Monthly           []ledger.MonthFlow         `json:"monthly"`
	Recent            []*transaction.Transaction `json:"recent"`
	BudgetLimit       int64                      `json:"budget_limit"`
	MonthExpense      int64                      `json:"month_expense"`
}

type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
	loc    *time.Location
	now    func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now when deciding the current month.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the timezone months are cut in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func New(uow repository.UnitOfWork, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{uow: uow, logger: logger, loc: time.Local, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summary aggregates the whole log of userID.
func (s *Service) Summary(ctx context.Context, userID int64) (*Summary, error) {
	logger := s.logger.With("userID", userID)
	txRepo, err := s.uow.TransactionRepository()
	if err != nil {
		return nil, err
	}
	budgets, err := s.uow.BudgetRepository()
	if err != nil {
		return nil, err
	}
	txs, err := txRepo.ListByUser(ctx, userID, 0)
	if err != nil {
		logger.Error("Summary failed: list transactions", "error", err)
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	limit, err := budgets.Get(ctx, userID)
	if err != nil {
		logger.Error("Summary failed: get budget", "error", err)
		return nil, fmt.Errorf("get budget: %w", err)
	}

	totals := ledger.Totals(txs)
	recent := txs
	if len(recent) > RecentShown {
		recent = recent[:RecentShown]
	}
	return &Summary{
		Balances:          ledger.Compute(txs),
		Income:            totals.Income,
		Expense:           totals.Expense,
		ExpenseByCategory: ledger.ExpenseByCategory(txs),
		Monthly:           ledger.Monthly(txs, MonthsShown),
		Recent:            recent,
		BudgetLimit:       limit,
		MonthExpense:      ledger.MonthToDate(txs, s.now().In(s.loc)).Expense,
	}, nil
}

// SetBudget stores the monthly spending limit. Zero clears it.
func (s *Service) SetBudget(ctx context.Context, userID int64, limit int64) error {
	logger := s.logger.With("userID", userID, "limit", limit)
	if limit < 0 {
		logger.Warn("SetBudget rejected: negative limit")
		return domain.ErrInvalidAmount
	}
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.BudgetRepository()
		if err != nil {
			return err
		}
		return repo.Set(ctx, userID, limit)
	})
	if err != nil {
		logger.Error("SetBudget failed", "error", err)
		return err
	}
	logger.Info("SetBudget successful")
	return nil
}

// GetBudget returns the monthly limit, 0 when unset.
func (s *Service) GetBudget(ctx context.Context, userID int64) (int64, error) {
	repo, err := s.uow.BudgetRepository()
	if err != nil {
		return 0, err
	}
	return repo.Get(ctx, userID)
}
