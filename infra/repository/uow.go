package repository

import (
	"context"
	"fmt"
	"reflect"

	"github.com/monegment/monegment/pkg/codec"
	"github.com/monegment/monegment/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides the transaction boundary and repository access in one abstraction.
// Repositories handed out inside Do share the transaction session.
type UoW struct {
	db           *gorm.DB
	tx           *gorm.DB
	repoRegistry map[reflect.Type]func(*gorm.DB) any
}

// NewUoW creates a new UoW for db. Sensitive columns go through c.
func NewUoW(db *gorm.DB, c codec.Codec) *UoW {
	if c == nil {
		c = codec.Plain{}
	}
	return &UoW{
		db: db,
		repoRegistry: map[reflect.Type]func(*gorm.DB) any{
			repository.TypeOf[repository.TransactionRepository](): func(db *gorm.DB) any { return NewTransactionRepository(db, c) },
			repository.TypeOf[repository.GoalRepository]():        func(db *gorm.DB) any { return NewGoalRepository(db, c) },
			repository.TypeOf[repository.BudgetRepository]():      func(db *gorm.DB) any { return NewBudgetRepository(db) },
		},
	}
}

// Do runs fn in a database transaction. An error from fn rolls the whole unit back.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx, repoRegistry: u.repoRegistry})
	})
}

// GetRepository returns the repository registered for repoType bound to the current
// session: the transaction inside Do, the plain connection outside it.
func (u *UoW) GetRepository(repoType reflect.Type) (any, error) {
	constructor, ok := u.repoRegistry[repoType]
	if !ok {
		return nil, fmt.Errorf("unsupported repository type: %v", repoType)
	}
	return constructor(u.session()), nil
}

func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	return get[repository.TransactionRepository](u)
}

func (u *UoW) GoalRepository() (repository.GoalRepository, error) {
	return get[repository.GoalRepository](u)
}

func (u *UoW) BudgetRepository() (repository.BudgetRepository, error) {
	return get[repository.BudgetRepository](u)
}

func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func get[T any](u *UoW) (T, error) {
	var zero T
	repoAny, err := u.GetRepository(repository.TypeOf[T]())
	if err != nil {
		return zero, err
	}
	repo, ok := repoAny.(T)
	if !ok {
		return zero, fmt.Errorf("repository %v has unexpected type %T", repository.TypeOf[T](), repoAny)
	}
	return repo, nil
}
