package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/monegment/monegment/pkg/codec"
	"github.com/monegment/monegment/pkg/domain/goal"
	"github.com/monegment/monegment/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type goalRepository struct {
	db    *gorm.DB
	codec codec.Codec
}

// NewGoalRepository creates a goal repository bound to db.
func NewGoalRepository(db *gorm.DB, c codec.Codec) repository.GoalRepository {
	return &goalRepository{db: db, codec: c}
}

func (r *goalRepository) Create(ctx context.Context, g *goal.Goal) error {
	m, err := r.toModel(g)
	if err != nil {
		return err
	}
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(m).Error
	})
}

func (r *goalRepository) Get(ctx context.Context, userID int64, id uuid.UUID) (*goal.Goal, error) {
	return r.get(r.db.WithContext(ctx), userID, id)
}

func (r *goalRepository) GetForUpdate(ctx context.Context, userID int64, id uuid.UUID) (*goal.Goal, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), userID, id)
}

func (r *goalRepository) get(db *gorm.DB, userID int64, id uuid.UUID) (*goal.Goal, error) {
	var m Goal
	err := WrapError(func() error {
		return db.Where("id = ? AND user_id = ?", id, userID).First(&m).Error
	})
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m)
}

func (r *goalRepository) ListByUser(ctx context.Context, userID int64) ([]*goal.Goal, error) {
	var rows []Goal
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("deadline ASC").
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*goal.Goal, 0, len(rows))
	for i := range rows {
		g, err := r.toDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func (r *goalRepository) UpdateDetails(ctx context.Context, g *goal.Goal) error {
	m, err := r.toModel(g)
	if err != nil {
		return err
	}
	return r.update(ctx, g, map[string]any{
		"title":    m.Title,
		"target":   m.Target,
		"deadline": m.Deadline,
		"priority": m.Priority,
	})
}

func (r *goalRepository) UpdateCurrent(ctx context.Context, g *goal.Goal) error {
	m, err := r.toModel(g)
	if err != nil {
		return err
	}
	return r.update(ctx, g, map[string]any{"current": m.Current})
}

func (r *goalRepository) update(ctx context.Context, g *goal.Goal, cols map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&Goal{}).
		Where("id = ? AND user_id = ?", g.ID, g.UserID).
		Updates(cols)
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return MapGormErrorToDomain(gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *goalRepository) Delete(ctx context.Context, userID int64, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&Goal{})
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return MapGormErrorToDomain(gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *goalRepository) DeleteByUser(ctx context.Context, userID int64) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).
			Where("user_id = ?", userID).
			Delete(&Goal{}).Error
	})
}

func (r *goalRepository) toModel(g *goal.Goal) (*Goal, error) {
	enc, err := encodeAll(r.codec,
		g.Title,
		strconv.FormatInt(g.Target, 10),
		strconv.FormatInt(g.Current, 10),
	)
	if err != nil {
		return nil, fmt.Errorf("encode goal %s: %w", g.ID, err)
	}
	return &Goal{
		ID:        g.ID,
		UserID:    g.UserID,
		Title:     enc[0],
		Target:    enc[1],
		Current:   enc[2],
		Deadline:  g.Deadline,
		Priority:  string(g.Priority),
		CreatedAt: g.CreatedAt,
	}, nil
}

func (r *goalRepository) toDomain(m *Goal) (*goal.Goal, error) {
	dec, err := decodeAll(r.codec, m.Title, m.Target, m.Current)
	if err != nil {
		return nil, fmt.Errorf("decode goal %s: %w", m.ID, err)
	}
	target, err := strconv.ParseInt(dec[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode goal %s target: %w", m.ID, err)
	}
	current, err := strconv.ParseInt(dec[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode goal %s current: %w", m.ID, err)
	}
	return goal.NewFromData(
		m.ID,
		m.UserID,
		dec[0],
		target,
		current,
		m.Deadline,
		goal.Priority(m.Priority),
		m.CreatedAt,
	), nil
}
