// Package memory is an in-memory UnitOfWork used by service and handler tests.
// Work done inside Do is staged on a copy and only becomes visible when fn succeeds,
// matching the all-or-nothing behavior of the database implementation.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/monegment/monegment/pkg/domain"
	"github.com/monegment/monegment/pkg/domain/goal"
	"github.com/monegment/monegment/pkg/domain/transaction"
	"github.com/monegment/monegment/pkg/repository"
)

// Operation names accepted by FailOn.
const (
	OpCreateTransaction = "transactions.Create"
	OpUpdateTransaction = "transactions.Update"
	OpDeleteTransaction = "transactions.Delete"
	OpListTransactions  = "transactions.ListByUser"
	OpCreateGoal        = "goals.Create"
	OpUpdateGoal        = "goals.UpdateDetails"
	OpUpdateGoalCurrent = "goals.UpdateCurrent"
	OpDeleteGoal        = "goals.Delete"
	OpListGoals         = "goals.ListByUser"
	OpSetBudget         = "budgets.Set"
)

type state struct {
	txs     []transaction.Transaction
	goals   []goal.Goal
	budgets map[int64]int64
}

func (s *state) clone() *state {
	c := &state{
		txs:     append([]transaction.Transaction(nil), s.txs...),
		goals:   append([]goal.Goal(nil), s.goals...),
		budgets: make(map[int64]int64, len(s.budgets)),
	}
	for k, v := range s.budgets {
		c.budgets[k] = v
	}
	return c
}

// Store holds the committed state.
type Store struct {
	mu      sync.Mutex
	doMu    sync.Mutex
	state   *state
	failOn  map[string]error
	commits int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		state:  &state{budgets: map[int64]int64{}},
		failOn: map[string]error{},
	}
}

// FailOn makes every later call of op return err. A nil err clears it.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failOn, op)
		return
	}
	s.failOn[op] = err
}

// Commits counts successful Do calls.
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// Seed appends transactions directly to the committed state.
func (s *Store) Seed(txs ...*transaction.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range txs {
		s.state.txs = append(s.state.txs, *tx)
	}
}

// SeedGoals appends goals directly to the committed state.
func (s *Store) SeedGoals(goals ...*goal.Goal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range goals {
		s.state.goals = append(s.state.goals, *g)
	}
}

// Transactions returns a copy of the committed log of userID in insertion order.
func (s *Store) Transactions(userID int64) []*transaction.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*transaction.Transaction
	for _, tx := range s.state.txs {
		if tx.UserID == userID {
			tx := tx
			out = append(out, &tx)
		}
	}
	return out
}

// Goal returns a copy of a committed goal, or nil.
func (s *Store) Goal(id uuid.UUID) *goal.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.state.goals {
		if g.ID == id {
			g := g
			return &g
		}
	}
	return nil
}

// UoW returns a UnitOfWork over the store.
func (s *Store) UoW() *UoW {
	return &UoW{store: s}
}

// UoW implements repository.UnitOfWork. staged is set inside Do.
type UoW struct {
	store  *Store
	staged *state
}

func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u.store.doMu.Lock()
	defer u.store.doMu.Unlock()

	u.store.mu.Lock()
	staged := u.store.state.clone()
	u.store.mu.Unlock()

	if err := fn(&UoW{store: u.store, staged: staged}); err != nil {
		return err
	}

	u.store.mu.Lock()
	u.store.state = staged
	u.store.commits++
	u.store.mu.Unlock()
	return nil
}

func (u *UoW) GetRepository(repoType reflect.Type) (any, error) {
	switch repoType {
	case repository.TypeOf[repository.TransactionRepository]():
		return &transactionRepo{u}, nil
	case repository.TypeOf[repository.GoalRepository]():
		return &goalRepo{u}, nil
	case repository.TypeOf[repository.BudgetRepository]():
		return &budgetRepo{u}, nil
	}
	return nil, fmt.Errorf("unsupported repository type: %v", repoType)
}

func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	return &transactionRepo{u}, nil
}

func (u *UoW) GoalRepository() (repository.GoalRepository, error) {
	return &goalRepo{u}, nil
}

func (u *UoW) BudgetRepository() (repository.BudgetRepository, error) {
	return &budgetRepo{u}, nil
}

// with runs f against the staged state inside Do, or the committed state under lock.
func (u *UoW) with(op string, f func(st *state) error) error {
	u.store.mu.Lock()
	err := u.store.failOn[op]
	u.store.mu.Unlock()
	if err != nil {
		return err
	}
	if u.staged != nil {
		return f(u.staged)
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	return f(u.store.state)
}

type transactionRepo struct{ u *UoW }

func (r *transactionRepo) Create(_ context.Context, tx *transaction.Transaction) error {
	return r.u.with(OpCreateTransaction, func(st *state) error {
		for _, existing := range st.txs {
			if existing.ID == tx.ID {
				return domain.ErrAlreadyExists
			}
		}
		st.txs = append(st.txs, *tx)
		return nil
	})
}

func (r *transactionRepo) Get(_ context.Context, userID int64, id uuid.UUID) (*transaction.Transaction, error) {
	var out *transaction.Transaction
	err := r.u.with("transactions.Get", func(st *state) error {
		for _, tx := range st.txs {
			if tx.ID == id && tx.UserID == userID {
				tx := tx
				out = &tx
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

func (r *transactionRepo) ListByUser(_ context.Context, userID int64, limit int) ([]*transaction.Transaction, error) {
	var out []*transaction.Transaction
	err := r.u.with(OpListTransactions, func(st *state) error {
		for i := len(st.txs) - 1; i >= 0; i-- {
			if st.txs[i].UserID == userID {
				tx := st.txs[i]
				out = append(out, &tx)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *transactionRepo) Update(_ context.Context, tx *transaction.Transaction) error {
	return r.u.with(OpUpdateTransaction, func(st *state) error {
		for i := range st.txs {
			if st.txs[i].ID == tx.ID && st.txs[i].UserID == tx.UserID {
				st.txs[i] = *tx
				return nil
			}
		}
		return domain.ErrNotFound
	})
}

func (r *transactionRepo) Delete(_ context.Context, userID int64, id uuid.UUID) error {
	return r.u.with(OpDeleteTransaction, func(st *state) error {
		for i := range st.txs {
			if st.txs[i].ID == id && st.txs[i].UserID == userID {
				st.txs = append(st.txs[:i], st.txs[i+1:]...)
				return nil
			}
		}
		return domain.ErrNotFound
	})
}

func (r *transactionRepo) DeleteByUser(_ context.Context, userID int64) error {
	return r.u.with("transactions.DeleteByUser", func(st *state) error {
		kept := st.txs[:0:0]
		for _, tx := range st.txs {
			if tx.UserID != userID {
				kept = append(kept, tx)
			}
		}
		st.txs = kept
		return nil
	})
}

type goalRepo struct{ u *UoW }

func (r *goalRepo) Create(_ context.Context, g *goal.Goal) error {
	return r.u.with(OpCreateGoal, func(st *state) error {
		st.goals = append(st.goals, *g)
		return nil
	})
}

func (r *goalRepo) Get(_ context.Context, userID int64, id uuid.UUID) (*goal.Goal, error) {
	var out *goal.Goal
	err := r.u.with("goals.Get", func(st *state) error {
		for _, g := range st.goals {
			if g.ID == id && g.UserID == userID {
				g := g
				out = &g
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

func (r *goalRepo) ListByUser(_ context.Context, userID int64) ([]*goal.Goal, error) {
	var out []*goal.Goal
	err := r.u.with(OpListGoals, func(st *state) error {
		for _, g := range st.goals {
			if g.UserID == userID {
				g := g
				out = append(out, &g)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Deadline.Equal(out[j].Deadline) {
			return out[i].Deadline.Before(out[j].Deadline)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *goalRepo) GetForUpdate(ctx context.Context, userID int64, id uuid.UUID) (*goal.Goal, error) {
	return r.Get(ctx, userID, id)
}

func (r *goalRepo) UpdateDetails(_ context.Context, g *goal.Goal) error {
	return r.update(OpUpdateGoal, g, func(dst *goal.Goal) {
		dst.Title = g.Title
		dst.Target = g.Target
		dst.Deadline = g.Deadline
		dst.Priority = g.Priority
	})
}

func (r *goalRepo) UpdateCurrent(_ context.Context, g *goal.Goal) error {
	return r.update(OpUpdateGoalCurrent, g, func(dst *goal.Goal) {
		dst.Current = g.Current
	})
}

func (r *goalRepo) update(op string, g *goal.Goal, apply func(*goal.Goal)) error {
	return r.u.with(op, func(st *state) error {
		for i := range st.goals {
			if st.goals[i].ID == g.ID && st.goals[i].UserID == g.UserID {
				apply(&st.goals[i])
				return nil
			}
		}
		return domain.ErrNotFound
	})
}

func (r *goalRepo) Delete(_ context.Context, userID int64, id uuid.UUID) error {
	return r.u.with(OpDeleteGoal, func(st *state) error {
		for i := range st.goals {
			if st.goals[i].ID == id && st.goals[i].UserID == userID {
				st.goals = append(st.goals[:i], st.goals[i+1:]...)
				return nil
			}
		}
		return domain.ErrNotFound
	})
}

func (r *goalRepo) DeleteByUser(_ context.Context, userID int64) error {
	return r.u.with("goals.DeleteByUser", func(st *state) error {
		kept := st.goals[:0:0]
		for _, g := range st.goals {
			if g.UserID != userID {
				kept = append(kept, g)
			}
		}
		st.goals = kept
		return nil
	})
}

type budgetRepo struct{ u *UoW }

func (r *budgetRepo) Get(_ context.Context, userID int64) (int64, error) {
	var out int64
	err := r.u.with("budgets.Get", func(st *state) error {
		out = st.budgets[userID]
		return nil
	})
	return out, err
}

func (r *budgetRepo) Set(_ context.Context, userID int64, limit int64) error {
	return r.u.with(OpSetBudget, func(st *state) error {
		st.budgets[userID] = limit
		return nil
	})
}

var _ repository.UnitOfWork = (*UoW)(nil)
