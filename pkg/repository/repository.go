package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/monegment/monegment/pkg/domain/goal"
	"github.com/monegment/monegment/pkg/domain/transaction"
)

// TransactionRepository is the per-user transaction log.
type TransactionRepository interface {
	Create(ctx context.Context, tx *transaction.Transaction) error
	// Get returns domain.ErrNotFound when the id does not exist for userID.
	Get(ctx context.Context, userID int64, id uuid.UUID) (*transaction.Transaction, error)
	// ListByUser returns the user's log newest first. limit <= 0 means no limit.
	ListByUser(ctx context.Context, userID int64, limit int) ([]*transaction.Transaction, error)
	Update(ctx context.Context, tx *transaction.Transaction) error
	Delete(ctx context.Context, userID int64, id uuid.UUID) error
	DeleteByUser(ctx context.Context, userID int64) error
}

// GoalRepository stores savings goals.
type GoalRepository interface {
	Create(ctx context.Context, g *goal.Goal) error
	// Get returns domain.ErrNotFound when the id does not exist for userID.
	Get(ctx context.Context, userID int64, id uuid.UUID) (*goal.Goal, error)
	// GetForUpdate is Get with the row locked until the unit of work ends.
	GetForUpdate(ctx context.Context, userID int64, id uuid.UUID) (*goal.Goal, error)
	// ListByUser orders by deadline, then creation time.
	ListByUser(ctx context.Context, userID int64) ([]*goal.Goal, error)
	// UpdateDetails writes title, target, deadline and priority. The saved
	// amount is never written here.
	UpdateDetails(ctx context.Context, g *goal.Goal) error
	// UpdateCurrent writes only the saved amount.
	UpdateCurrent(ctx context.Context, g *goal.Goal) error
	Delete(ctx context.Context, userID int64, id uuid.UUID) error
	DeleteByUser(ctx context.Context, userID int64) error
}

// BudgetRepository stores the monthly spending limit of a user.
type BudgetRepository interface {
	// Get returns 0 when no limit was set.
	Get(ctx context.Context, userID int64) (int64, error)
	Set(ctx context.Context, userID int64, limit int64) error
}
