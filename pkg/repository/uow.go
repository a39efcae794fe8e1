package repository

import (
	"context"
	"reflect"
)

// UnitOfWork defines the contract for transactional work and type-safe repository access.
//
// Do runs fn inside one transaction; every repository obtained from the uow passed to fn
// shares that transaction, so compound writes either all commit or all roll back.
//
//	repoAny, err := uow.GetRepository(reflect.TypeOf((*GoalRepository)(nil)).Elem())
//	repo := repoAny.(GoalRepository)
type UnitOfWork interface {
	// Do executes fn within a transaction boundary. A returned error rolls back.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	// GetRepository returns a repository of the requested interface type bound to the
	// current session.
	GetRepository(repoType reflect.Type) (any, error)

	TransactionRepository() (TransactionRepository, error)
	GoalRepository() (GoalRepository, error)
	BudgetRepository() (BudgetRepository, error)
}

// TypeOf returns the reflect.Type of the interface T, for use with GetRepository.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
