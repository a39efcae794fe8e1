package repository

import (
	"context"
	"errors"

	"github.com/monegment/monegment/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type budgetRepository struct {
	db *gorm.DB
}

// NewBudgetRepository creates a budget repository bound to db.
func NewBudgetRepository(db *gorm.DB) repository.BudgetRepository {
	return &budgetRepository{db: db}
}

func (r *budgetRepository) Get(ctx context.Context, userID int64) (int64, error) {
	var m Budget
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, MapGormErrorToDomain(err)
	}
	return m.LimitAmount, nil
}

func (r *budgetRepository) Set(ctx context.Context, userID int64, limit int64) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"limit_amount", "updated_at"}),
			}).
			Create(&Budget{UserID: userID, LimitAmount: limit}).Error
	})
}
