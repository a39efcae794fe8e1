package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrValidation is returned when input validation fails
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized is returned when a user is not authorized to perform an action
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when a user is not allowed to perform an action
	ErrForbidden = errors.New("forbidden")
)

// Ledger errors
var (
	// ErrInvalidAmount is returned when a zero or negative amount is supplied.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInsufficientFunds is returned when a wallet balance is lower than a requested debit.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrSameWallet is returned when a transfer names the same wallet as source and target.
	ErrSameWallet = errors.New("cannot transfer to the same wallet")
	// ErrGoalNotFound is returned when a goal does not exist for the requesting user.
	ErrGoalNotFound = errors.New("goal not found")
	// ErrTransactionNotFound is returned when a transaction does not exist for the requesting user.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// InsufficientFundsError carries the context of a rejected debit. It matches
// ErrInsufficientFunds with errors.Is.
type InsufficientFundsError struct {
	Wallet    string
	Balance   int64
	Requested int64
}

// Shortfall is the amount missing from the wallet to cover the request.
func (e *InsufficientFundsError) Shortfall() int64 {
	return e.Requested - e.Balance
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in %s: balance %d, requested %d (short %d)",
		e.Wallet, e.Balance, e.Requested, e.Shortfall())
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}
