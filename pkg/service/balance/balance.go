// Package balance serves wallet balances derived from the transaction log.
package balance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/monegment/monegment/pkg/domain/ledger"
	"github.com/monegment/monegment/pkg/repository"
)

// Service recomputes balances from the log on every call.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// GetBalances returns the total and per-wallet balances of userID. An empty log yields zeros.
func (s *Service) GetBalances(ctx context.Context, userID int64) (ledger.Balances, error) {
	logger := s.logger.With("userID", userID)
	repo, err := s.uow.TransactionRepository()
	if err != nil {
		logger.Error("GetBalances failed: TransactionRepository error", "error", err)
		return ledger.Balances{}, err
	}
	b, err := Of(ctx, repo, userID)
	if err != nil {
		logger.Error("GetBalances failed", "error", err)
		return ledger.Balances{}, err
	}
	return b, nil
}

// GetWalletBalance normalizes a free-text wallet label and returns that bucket's balance.
func (s *Service) GetWalletBalance(ctx context.Context, userID int64, label string) (int64, error) {
	b, err := s.GetBalances(ctx, userID)
	if err != nil {
		return 0, err
	}
	return b.ForLabel(label), nil
}

// Of computes balances through repo, so callers inside a unit of work read the same
// snapshot they are about to write to.
func Of(ctx context.Context, repo repository.TransactionRepository, userID int64) (ledger.Balances, error) {
	txs, err := repo.ListByUser(ctx, userID, 0)
	if err != nil {
		return ledger.Balances{}, fmt.Errorf("list transactions: %w", err)
	}
	return ledger.Compute(txs), nil
}
