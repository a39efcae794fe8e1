// Package notify turns committed domain events into user-facing notices.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/monegment/monegment/pkg/domain/events"
	"github.com/monegment/monegment/pkg/domain/ledger"
	"github.com/monegment/monegment/pkg/eventbus"
	"github.com/monegment/monegment/pkg/repository"
)

// Notifier delivers a message to a user.
type Notifier interface {
	Notify(ctx context.Context, userID int64, message string) error
}

// LogNotifier writes notices to the log. It is the default when no chat transport is wired.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(_ context.Context, userID int64, message string) error {
	n.Logger.Info("📣 notice", "userID", userID, "message", message)
	return nil
}

// HandleTransferCompleted confirms a wallet transfer.
func HandleTransferCompleted(n Notifier, logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		log := logger.With("handler", "notify.HandleTransferCompleted", "event_type", e.Type())
		te, ok := e.(events.TransferCompleted)
		if !ok {
			log.Error("❌ [DISCARD] Unexpected event type", "event", e)
			return fmt.Errorf("unexpected event type: %T", e)
		}
		return n.Notify(ctx, te.UserID,
			fmt.Sprintf("Moved %d from %s to %s.", te.Amount, te.Source, te.Target))
	}
}

// HandleGoalDeposited confirms a savings deposit and celebrates a completed goal.
func HandleGoalDeposited(n Notifier, logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		log := logger.With("handler", "notify.HandleGoalDeposited", "event_type", e.Type())
		ge, ok := e.(events.GoalDeposited)
		if !ok {
			log.Error("❌ [DISCARD] Unexpected event type", "event", e)
			return fmt.Errorf("unexpected event type: %T", e)
		}
		msg := fmt.Sprintf("Saved %d toward %q (%d/%d).", ge.Amount, ge.GoalTitle, ge.Current, ge.Target)
		if ge.GoalReached() {
			msg += fmt.Sprintf(" Goal %q reached!", ge.GoalTitle)
		}
		return n.Notify(ctx, ge.UserID, msg)
	}
}

// HandleAccountReset confirms a reset.
func HandleAccountReset(n Notifier) eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		re, ok := e.(events.AccountReset)
		if !ok {
			return fmt.Errorf("unexpected event type: %T", e)
		}
		return n.Notify(ctx, re.UserID, "All of your transactions and goals were deleted.")
	}
}

// HandleBudgetCheck warns when recorded spending pushed the month over the user's budget.
// Months are cut in loc.
func HandleBudgetCheck(
	uow repository.UnitOfWork,
	n Notifier,
	loc *time.Location,
	logger *slog.Logger,
) eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		log := logger.With("handler", "notify.HandleBudgetCheck", "event_type", e.Type())
		re, ok := e.(events.TransactionRecorded)
		if !ok {
			log.Error("❌ [DISCARD] Unexpected event type", "event", e)
			return fmt.Errorf("unexpected event type: %T", e)
		}
		budgets, err := uow.BudgetRepository()
		if err != nil {
			return err
		}
		limit, err := budgets.Get(ctx, re.UserID)
		if err != nil {
			return fmt.Errorf("get budget: %w", err)
		}
		if limit <= 0 {
			return nil
		}
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		history, err := txs.ListByUser(ctx, re.UserID, 0)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		spent := ledger.MonthToDate(history, re.OccurredAt.In(loc)).Expense
		if spent <= limit {
			return nil
		}
		log.Info("budget exceeded", "userID", re.UserID, "spent", spent, "limit", limit)
		return n.Notify(ctx, re.UserID,
			fmt.Sprintf("Spending this month (%d) is over your budget of %d.", spent, limit))
	}
}
