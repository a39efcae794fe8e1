// Package wallet owns every write to a user's transaction log: manual and imported
// entries, transfers between wallets and savings deposits into goals.
//
// A debit is only written when the source wallet covers it. The balance is read inside
// the same unit of work as the writes, and writes for one user are serialized, so a
// wallet never goes negative through an operation this package authorizes.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/monegment/monegment/pkg/domain"
	"github.com/monegment/monegment/pkg/domain/events"
	"github.com/monegment/monegment/pkg/domain/goal"
	"github.com/monegment/monegment/pkg/domain/ledger"
	"github.com/monegment/monegment/pkg/domain/transaction"
	"github.com/monegment/monegment/pkg/domain/wallet"
	"github.com/monegment/monegment/pkg/eventbus"
	"github.com/monegment/monegment/pkg/repository"
	"github.com/monegment/monegment/pkg/service/balance"
)

// Service validates and applies ledger writes.
type Service struct {
	uow    repository.UnitOfWork
	bus    eventbus.Bus
	logger *slog.Logger
	locks  *userLocks
	now    func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a wallet service. bus may be nil when no one listens for events.
func New(uow repository.UnitOfWork, bus eventbus.Bus, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		uow:    uow,
		bus:    bus,
		logger: logger,
		locks:  newUserLocks(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TransferResult holds the two legs of a completed transfer.
type TransferResult struct {
	Out *transaction.Transaction `json:"out"`
	In  *transaction.Transaction `json:"in"`
}

// Transfer moves amount from source to target. Labels are normalized first; equal
// wallets fail with ErrSameWallet before anything else is checked.
func (s *Service) Transfer(
	ctx context.Context,
	userID int64,
	source, target string,
	amount int64,
) (*TransferResult, error) {
	src, dst := wallet.Normalize(source), wallet.Normalize(target)
	logger := s.logger.With("userID", userID, "source", src, "target", dst, "amount", amount)
	logger.Info("Transfer started")

	if src == dst {
		logger.Warn("Transfer rejected: same wallet")
		return nil, domain.ErrSameWallet
	}
	if amount <= 0 {
		logger.Warn("Transfer rejected: invalid amount")
		return nil, domain.ErrInvalidAmount
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	now := s.now()
	var res TransferResult
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		bal, err := balance.Of(ctx, repo, userID)
		if err != nil {
			return err
		}
		if err := cover(bal, src, amount); err != nil {
			return err
		}
		res.Out, err = transaction.New().
			WithUserID(userID).
			WithDirection(transaction.Out).
			WithAmount(amount).
			WithCategory(transaction.CategoryTransfer).
			WithWallet(src).
			WithDescription(fmt.Sprintf("Transfer to %s", dst)).
			WithCreatedAt(now).
			Build()
		if err != nil {
			return err
		}
		res.In, err = transaction.New().
			WithUserID(userID).
			WithDirection(transaction.In).
			WithAmount(amount).
			WithCategory(transaction.CategoryTransfer).
			WithWallet(dst).
			WithDescription(fmt.Sprintf("Received from %s", src)).
			WithCreatedAt(now).
			Build()
		if err != nil {
			return err
		}
		if err := repo.Create(ctx, res.Out); err != nil {
			return fmt.Errorf("create outgoing leg: %w", err)
		}
		if err := repo.Create(ctx, res.In); err != nil {
			return fmt.Errorf("create incoming leg: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Error("Transfer failed", "error", err)
		return nil, err
	}

	s.emit(ctx, events.TransferCompleted{
		Base:   events.Base{UserID: userID, OccurredAt: now},
		Source: src,
		Target: dst,
		Amount: amount,
	})
	logger.Info("Transfer successful")
	return &res, nil
}

// DepositToGoal records a savings OUT from source and raises the goal's saved amount in
// one unit of work.
func (s *Service) DepositToGoal(
	ctx context.Context,
	userID int64,
	goalID uuid.UUID,
	source string,
	amount int64,
) (*goal.Goal, error) {
	src := wallet.Normalize(source)
	logger := s.logger.With("userID", userID, "goalID", goalID, "source", src, "amount", amount)
	logger.Info("DepositToGoal started")

	if amount <= 0 {
		logger.Warn("DepositToGoal rejected: invalid amount")
		return nil, domain.ErrInvalidAmount
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	now := s.now()
	var g *goal.Goal
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		goals, err := uow.GoalRepository()
		if err != nil {
			return err
		}
		g, err = goals.GetForUpdate(ctx, userID, goalID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrGoalNotFound
		}
		if err != nil {
			return err
		}

		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		bal, err := balance.Of(ctx, txs, userID)
		if err != nil {
			return err
		}
		if err := cover(bal, src, amount); err != nil {
			return err
		}

		saving, err := transaction.New().
			WithUserID(userID).
			WithDirection(transaction.Out).
			WithAmount(amount).
			WithCategory(transaction.CategorySavings).
			WithWallet(src).
			WithDescription(fmt.Sprintf("Saving toward %s", g.Title)).
			WithCreatedAt(now).
			Build()
		if err != nil {
			return err
		}
		if err := txs.Create(ctx, saving); err != nil {
			return fmt.Errorf("create savings transaction: %w", err)
		}
		if err := g.Deposit(amount); err != nil {
			return err
		}
		if err := goals.UpdateCurrent(ctx, g); err != nil {
			return fmt.Errorf("update goal: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Error("DepositToGoal failed", "error", err)
		return nil, err
	}

	s.emit(ctx, events.GoalDeposited{
		Base:      events.Base{UserID: userID, OccurredAt: now},
		GoalID:    g.ID,
		GoalTitle: g.Title,
		Wallet:    src,
		Amount:    amount,
		Current:   g.Current,
		Target:    g.Target,
	})
	logger.Info("DepositToGoal successful", "current", g.Current, "target", g.Target)
	return g, nil
}

// RecordTransaction saves a manual entry. OUT entries must be covered by their wallet.
func (s *Service) RecordTransaction(
	ctx context.Context,
	userID int64,
	c transaction.Candidate,
) (*transaction.Transaction, error) {
	logger := s.logger.With("userID", userID, "amount", c.Amount, "wallet", c.Wallet)
	logger.Info("RecordTransaction started")

	tx, err := c.Build(userID, s.now())
	if err != nil {
		logger.Warn("RecordTransaction rejected", "error", err)
		return nil, err
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		if tx.Direction == transaction.Out {
			bal, err := balance.Of(ctx, repo, userID)
			if err != nil {
				return err
			}
			if err := cover(bal, tx.Wallet, tx.Amount); err != nil {
				return err
			}
		}
		return repo.Create(ctx, tx)
	})
	if err != nil {
		logger.Error("RecordTransaction failed", "error", err)
		return nil, err
	}

	s.emit(ctx, events.TransactionRecorded{
		Base:           events.Base{UserID: userID, OccurredAt: tx.CreatedAt},
		TransactionIDs: []uuid.UUID{tx.ID},
		Source:         "manual",
	})
	logger.Info("RecordTransaction successful", "transactionID", tx.ID)
	return tx, nil
}

// Rejection explains why a candidate was not imported.
type Rejection struct {
	Candidate transaction.Candidate `json:"candidate"`
	Reason    string                `json:"reason"`
}

// ImportResult is the outcome of ImportCandidates.
type ImportResult struct {
	Saved    []*transaction.Transaction `json:"saved"`
	Rejected []Rejection                `json:"rejected"`
}

// ImportCandidates saves extractor output. Each candidate is checked against the running
// balances of the batch; invalid or overdrawing ones are rejected with a reason and the
// rest are stored together.
func (s *Service) ImportCandidates(
	ctx context.Context,
	userID int64,
	candidates []transaction.Candidate,
) (*ImportResult, error) {
	logger := s.logger.With("userID", userID, "candidates", len(candidates))
	logger.Info("ImportCandidates started")

	unlock := s.locks.lock(userID)
	defer unlock()

	now := s.now()
	var res ImportResult
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		res = ImportResult{Saved: []*transaction.Transaction{}, Rejected: []Rejection{}}
		repo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		bal, err := balance.Of(ctx, repo, userID)
		if err != nil {
			return err
		}
		for _, c := range candidates {
			tx, err := c.Build(userID, now)
			if err != nil {
				res.Rejected = append(res.Rejected, Rejection{Candidate: c, Reason: err.Error()})
				continue
			}
			if tx.Direction == transaction.Out {
				if err := cover(bal, tx.Wallet, tx.Amount); err != nil {
					res.Rejected = append(res.Rejected, Rejection{Candidate: c, Reason: err.Error()})
					continue
				}
			}
			if err := repo.Create(ctx, tx); err != nil {
				return fmt.Errorf("create imported transaction: %w", err)
			}
			bal = bal.Apply(tx)
			res.Saved = append(res.Saved, tx)
		}
		return nil
	})
	if err != nil {
		logger.Error("ImportCandidates failed", "error", err)
		return nil, err
	}

	if len(res.Saved) > 0 {
		ids := make([]uuid.UUID, 0, len(res.Saved))
		for _, tx := range res.Saved {
			ids = append(ids, tx.ID)
		}
		s.emit(ctx, events.TransactionRecorded{
			Base:           events.Base{UserID: userID, OccurredAt: now},
			TransactionIDs: ids,
			Source:         "extractor",
		})
	}
	logger.Info("ImportCandidates successful", "saved", len(res.Saved), "rejected", len(res.Rejected))
	return &res, nil
}

// ListTransactions returns the newest limit entries of userID. limit <= 0 returns all.
func (s *Service) ListTransactions(ctx context.Context, userID int64, limit int) ([]*transaction.Transaction, error) {
	repo, err := s.uow.TransactionRepository()
	if err != nil {
		return nil, err
	}
	txs, err := repo.ListByUser(ctx, userID, limit)
	if err != nil {
		s.logger.Error("ListTransactions failed", "userID", userID, "error", err)
		return nil, err
	}
	return txs, nil
}

// UpdateTransaction overwrites amount, category, wallet and description of an owned entry.
// The direction is kept. An OUT edit may not leave its wallet negative.
func (s *Service) UpdateTransaction(
	ctx context.Context,
	userID int64,
	id uuid.UUID,
	c transaction.Candidate,
) (*transaction.Transaction, error) {
	logger := s.logger.With("userID", userID, "transactionID", id)
	logger.Info("UpdateTransaction started")
	if c.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	var tx *transaction.Transaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		tx, err = repo.Get(ctx, userID, id)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrTransactionNotFound
		}
		if err != nil {
			return err
		}
		bal, err := balance.Of(ctx, repo, userID)
		if err != nil {
			return err
		}
		before := *tx
		if err := tx.Edit(c.Amount, c.Category, c.Wallet, c.Description); err != nil {
			return err
		}
		if tx.Direction == transaction.Out {
			without := bal.Apply(reverse(&before))
			if err := cover(without, tx.Wallet, tx.Amount); err != nil {
				return err
			}
		}
		return repo.Update(ctx, tx)
	})
	if err != nil {
		logger.Error("UpdateTransaction failed", "error", err)
		return nil, err
	}
	logger.Info("UpdateTransaction successful")
	return tx, nil
}

// DeleteTransaction removes an owned entry.
func (s *Service) DeleteTransaction(ctx context.Context, userID int64, id uuid.UUID) error {
	logger := s.logger.With("userID", userID, "transactionID", id)
	unlock := s.locks.lock(userID)
	defer unlock()

	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		err = repo.Delete(ctx, userID, id)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrTransactionNotFound
		}
		return err
	})
	if err != nil {
		logger.Error("DeleteTransaction failed", "error", err)
		return err
	}
	logger.Info("DeleteTransaction successful")
	return nil
}

// ResetAccount deletes every transaction and goal of userID atomically.
func (s *Service) ResetAccount(ctx context.Context, userID int64) error {
	logger := s.logger.With("userID", userID)
	logger.Info("ResetAccount started")
	unlock := s.locks.lock(userID)
	defer unlock()

	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		goals, err := uow.GoalRepository()
		if err != nil {
			return err
		}
		if err := txs.DeleteByUser(ctx, userID); err != nil {
			return fmt.Errorf("delete transactions: %w", err)
		}
		if err := goals.DeleteByUser(ctx, userID); err != nil {
			return fmt.Errorf("delete goals: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Error("ResetAccount failed", "error", err)
		return err
	}
	s.emit(ctx, events.AccountReset{Base: events.Base{UserID: userID, OccurredAt: s.now()}})
	logger.Info("ResetAccount successful")
	return nil
}

// cover fails with an InsufficientFundsError when w cannot pay amount.
func cover(bal ledger.Balances, w wallet.Wallet, amount int64) error {
	if have := bal.Of(w); have < amount {
		return &domain.InsufficientFundsError{Wallet: string(w), Balance: have, Requested: amount}
	}
	return nil
}

func reverse(tx *transaction.Transaction) *transaction.Transaction {
	r := *tx
	if r.Direction == transaction.Out {
		r.Direction = transaction.In
	} else {
		r.Direction = transaction.Out
	}
	return &r
}

func (s *Service) emit(ctx context.Context, e events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Emit(ctx, e); err != nil {
		s.logger.Warn("event not published", "type", e.Type(), "error", err)
	}
}
