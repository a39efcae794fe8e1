package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/monegment/monegment/pkg/codec"
	"github.com/monegment/monegment/pkg/domain/transaction"
	"github.com/monegment/monegment/pkg/domain/wallet"
	"github.com/monegment/monegment/pkg/repository"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db    *gorm.DB
	codec codec.Codec
}

// NewTransactionRepository creates a transaction repository bound to db.
func NewTransactionRepository(db *gorm.DB, c codec.Codec) repository.TransactionRepository {
	return &transactionRepository{db: db, codec: c}
}

func (r *transactionRepository) Create(ctx context.Context, tx *transaction.Transaction) error {
	m, err := r.toModel(tx)
	if err != nil {
		return err
	}
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(m).Error
	})
}

func (r *transactionRepository) Get(ctx context.Context, userID int64, id uuid.UUID) (*transaction.Transaction, error) {
	var m Transaction
	err := WrapError(func() error {
		return r.db.WithContext(ctx).
			Where("id = ? AND user_id = ?", id, userID).
			First(&m).Error
	})
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m)
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*transaction.Transaction, error) {
	var rows []Transaction
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*transaction.Transaction, 0, len(rows))
	for i := range rows {
		tx, err := r.toDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func (r *transactionRepository) Update(ctx context.Context, tx *transaction.Transaction) error {
	m, err := r.toModel(tx)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).
		Model(&Transaction{}).
		Where("id = ? AND user_id = ?", tx.ID, tx.UserID).
		Updates(map[string]any{
			"amount":      m.Amount,
			"category":    m.Category,
			"wallet":      m.Wallet,
			"description": m.Description,
			"direction":   m.Direction,
		})
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return MapGormErrorToDomain(gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *transactionRepository) Delete(ctx context.Context, userID int64, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&Transaction{})
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return MapGormErrorToDomain(gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *transactionRepository) DeleteByUser(ctx context.Context, userID int64) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).
			Where("user_id = ?", userID).
			Delete(&Transaction{}).Error
	})
}

func (r *transactionRepository) toModel(tx *transaction.Transaction) (*Transaction, error) {
	enc, err := encodeAll(r.codec,
		strconv.FormatInt(tx.Amount, 10),
		string(tx.Category),
		string(tx.Wallet),
		tx.Description,
	)
	if err != nil {
		return nil, fmt.Errorf("encode transaction %s: %w", tx.ID, err)
	}
	return &Transaction{
		ID:          tx.ID,
		UserID:      tx.UserID,
		Direction:   string(tx.Direction),
		Amount:      enc[0],
		Category:    enc[1],
		Wallet:      enc[2],
		Description: enc[3],
		CreatedAt:   tx.CreatedAt,
	}, nil
}

func (r *transactionRepository) toDomain(m *Transaction) (*transaction.Transaction, error) {
	dec, err := decodeAll(r.codec, m.Amount, m.Category, m.Wallet, m.Description)
	if err != nil {
		return nil, fmt.Errorf("decode transaction %s: %w", m.ID, err)
	}
	amount, err := strconv.ParseInt(dec[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode transaction %s amount: %w", m.ID, err)
	}
	return transaction.NewFromData(
		m.ID,
		m.UserID,
		transaction.Direction(m.Direction),
		amount,
		transaction.Category(dec[1]),
		wallet.Wallet(dec[2]),
		dec[3],
		m.CreatedAt,
	), nil
}

func encodeAll(c codec.Codec, values ...string) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		enc, err := c.Encode(v)
		if err != nil {
			return nil, err
		}
		out[i] = enc
	}
	return out, nil
}

func decodeAll(c codec.Codec, values ...string) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		dec, err := c.Decode(v)
		if err != nil {
			return nil, err
		}
		out[i] = dec
	}
	return out, nil
}
