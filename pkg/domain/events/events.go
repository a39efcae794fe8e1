// Package events defines the domain events published after a ledger write commits.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/monegment/monegment/pkg/domain/wallet"
)

// EventType identifies an event for handler registration.
type EventType string

const (
	EventTypeTransactionRecorded EventType = "Transaction.Recorded"
	EventTypeTransferCompleted   EventType = "Transfer.Completed"
	EventTypeGoalDeposited       EventType = "Goal.Deposited"
	EventTypeAccountReset        EventType = "Account.Reset"
)

// Event is implemented by every domain event.
type Event interface {
	Type() EventType
}

// Base carries the fields shared by every event.
type Base struct {
	UserID     int64     `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// TransactionRecorded is published after manual entries or extractor imports are saved.
type TransactionRecorded struct {
	Base
	TransactionIDs []uuid.UUID `json:"transaction_ids"`
	Source         string      `json:"source"`
}

func (TransactionRecorded) Type() EventType { return EventTypeTransactionRecorded }

// TransferCompleted is published after both legs of a wallet transfer are stored.
type TransferCompleted struct {
	Base
	Source wallet.Wallet `json:"source"`
	Target wallet.Wallet `json:"target"`
	Amount int64         `json:"amount"`
}

func (TransferCompleted) Type() EventType { return EventTypeTransferCompleted }

// GoalDeposited is published after a savings deposit updated a goal.
type GoalDeposited struct {
	Base
	GoalID    uuid.UUID     `json:"goal_id"`
	GoalTitle string        `json:"goal_title"`
	Wallet    wallet.Wallet `json:"wallet"`
	Amount    int64         `json:"amount"`
	Current   int64         `json:"current"`
	Target    int64         `json:"target"`
}

func (GoalDeposited) Type() EventType { return EventTypeGoalDeposited }

// GoalReached reports whether the deposit completed the goal.
func (e GoalDeposited) GoalReached() bool {
	return e.Current >= e.Target
}

// AccountReset is published after all of a user's data was removed.
type AccountReset struct {
	Base
}

func (AccountReset) Type() EventType { return EventTypeAccountReset }
