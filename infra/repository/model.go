package repository

import (
	"time"

	"github.com/google/uuid"
)

// Transaction is a persisted log entry. Amount, category, wallet and description hold
// codec-encoded text so they can be sealed at rest.
type Transaction struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      int64     `gorm:"index;not null"`
	Direction   string    `gorm:"type:varchar(3);not null"`
	Amount      string    `gorm:"not null"`
	Category    string    `gorm:"not null"`
	Wallet      string    `gorm:"not null"`
	Description string
	CreatedAt   time.Time `gorm:"index"`
}

// Goal is a persisted savings goal. Target and current are codec-encoded.
type Goal struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    int64     `gorm:"index;not null"`
	Title     string    `gorm:"not null"`
	Target    string    `gorm:"not null"`
	Current   string    `gorm:"not null"`
	Deadline  time.Time `gorm:"type:date"`
	Priority  string    `gorm:"type:varchar(2);not null;default:'P2'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Budget is the monthly spending limit of a user.
type Budget struct {
	UserID      int64 `gorm:"primaryKey;autoIncrement:false"`
	LimitAmount int64 `gorm:"not null;default:0"`
	UpdatedAt   time.Time
}

// Models lists every table managed by AutoMigrate.
func Models() []any {
	return []any{&Transaction{}, &Goal{}, &Budget{}}
}
