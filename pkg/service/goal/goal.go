// Package goal manages savings goals. Saved amounts only move through the wallet
// service's deposit path; this package never touches them.
package goal

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/monegment/monegment/pkg/domain"
	"github.com/monegment/monegment/pkg/domain/goal"
	"github.com/monegment/monegment/pkg/repository"
)

// Service provides owner-scoped goal CRUD.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
	now    func() time.Time
}

func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger, now: time.Now}
}

// Params are the user-editable fields of a goal.
type Params struct {
	Title    string        `json:"title"`
	Target   int64         `json:"target_amount"`
	Deadline time.Time     `json:"deadline"`
	Priority goal.Priority `json:"priority"`
}

// CreateGoal stores a new goal with nothing saved yet. An empty priority means P2.
func (s *Service) CreateGoal(ctx context.Context, userID int64, p Params) (*goal.Goal, error) {
	logger := s.logger.With("userID", userID, "title", p.Title)
	logger.Info("CreateGoal started")

	b := goal.New().
		WithUserID(userID).
		WithTitle(p.Title).
		WithTarget(p.Target).
		WithDeadline(p.Deadline).
		WithCreatedAt(s.now())
	if p.Priority != "" {
		b = b.WithPriority(p.Priority)
	}
	g, err := b.Build()
	if err != nil {
		logger.Warn("CreateGoal rejected", "error", err)
		return nil, err
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.GoalRepository()
		if err != nil {
			return err
		}
		return repo.Create(ctx, g)
	})
	if err != nil {
		logger.Error("CreateGoal failed", "error", err)
		return nil, err
	}
	logger.Info("CreateGoal successful", "goalID", g.ID)
	return g, nil
}

// UpdateGoal overwrites title, target, deadline and priority. The saved amount is kept.
func (s *Service) UpdateGoal(ctx context.Context, userID int64, id uuid.UUID, p Params) (*goal.Goal, error) {
	logger := s.logger.With("userID", userID, "goalID", id)
	logger.Info("UpdateGoal started")

	priority := p.Priority
	if priority == "" {
		priority = goal.P2
	}
	var g *goal.Goal
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.GoalRepository()
		if err != nil {
			return err
		}
		g, err = repo.Get(ctx, userID, id)
		if err != nil {
			return notFound(err)
		}
		if err := g.Edit(p.Title, p.Target, p.Deadline, priority); err != nil {
			return err
		}
		return notFound(repo.UpdateDetails(ctx, g))
	})
	if err != nil {
		logger.Error("UpdateGoal failed", "error", err)
		return nil, err
	}
	logger.Info("UpdateGoal successful")
	return g, nil
}

// DeleteGoal removes a goal. Savings transactions recorded for it stay in the log.
func (s *Service) DeleteGoal(ctx context.Context, userID int64, id uuid.UUID) error {
	logger := s.logger.With("userID", userID, "goalID", id)
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.GoalRepository()
		if err != nil {
			return err
		}
		return notFound(repo.Delete(ctx, userID, id))
	})
	if err != nil {
		logger.Error("DeleteGoal failed", "error", err)
		return err
	}
	logger.Info("DeleteGoal successful")
	return nil
}

// ListGoals returns the user's goals by deadline, then creation time.
func (s *Service) ListGoals(ctx context.Context, userID int64) ([]*goal.Goal, error) {
	repo, err := s.uow.GoalRepository()
	if err != nil {
		return nil, err
	}
	goals, err := repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("ListGoals failed", "userID", userID, "error", err)
		return nil, err
	}
	return goals, nil
}

// GetGoal returns one owned goal.
func (s *Service) GetGoal(ctx context.Context, userID int64, id uuid.UUID) (*goal.Goal, error) {
	repo, err := s.uow.GoalRepository()
	if err != nil {
		return nil, err
	}
	g, err := repo.Get(ctx, userID, id)
	if err != nil {
		return nil, notFound(err)
	}
	return g, nil
}

func notFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrGoalNotFound
	}
	return err
}
