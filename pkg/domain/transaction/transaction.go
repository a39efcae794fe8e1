// Package transaction models the append-only log of signed money movements a user records.
package transaction

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/monegment/monegment/pkg/domain"
	"github.com/monegment/monegment/pkg/domain/wallet"
)

var (
	// ErrInvalidDirection is returned when a direction is neither IN nor OUT.
	ErrInvalidDirection = errors.New("direction must be IN or OUT")
	// ErrMissingUser is returned when a transaction is built without an owner.
	ErrMissingUser = errors.New("userID is required")
)

// Direction is the sign of a transaction.
type Direction string

const (
	In  Direction = "IN"
	Out Direction = "OUT"
)

// Valid reports whether d is IN or OUT.
func (d Direction) Valid() bool {
	return d == In || d == Out
}

// Category classifies a transaction.
type Category string

// User-facing categories, as offered to manual entry and the extractor.
const (
	Makanan   Category = "Makanan"
	Transport Category = "Transport"
	Tagihan   Category = "Tagihan"
	Belanja   Category = "Belanja"
	Kesehatan Category = "Kesehatan"
	Hiburan   Category = "Hiburan"
	Pemasukan Category = "Pemasukan"
	Lainnya   Category = "Lainnya"
)

// System categories written by transfers and goal deposits.
const (
	CategoryTransfer Category = "Transfer"
	CategorySavings  Category = "Tabungan"
)

// UserCategories lists the categories a user or the extractor may pick.
var UserCategories = []Category{Makanan, Transport, Tagihan, Belanja, Kesehatan, Hiburan, Pemasukan, Lainnya}

var userCategories = func() map[string]Category {
	m := make(map[string]Category, len(UserCategories))
	for _, c := range UserCategories {
		m[strings.ToLower(string(c))] = c
	}
	return m
}()

// ParseCategory resolves a user-supplied label case-insensitively against
// UserCategories. Unknown labels and the system categories Transfer and
// Tabungan become Lainnya.
func ParseCategory(s string) Category {
	if c, ok := userCategories[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c
	}
	return Lainnya
}

// IsSystem reports whether c is only ever written by transfers or goal deposits.
func (c Category) IsSystem() bool {
	return c == CategoryTransfer || c == CategorySavings
}

// DefaultDirection is IN for income and OUT for everything else.
func DefaultDirection(c Category) Direction {
	if c == Pemasukan {
		return In
	}
	return Out
}

// Transaction is one immutable record in a user's log. Amount is always positive and
// expressed in the smallest currency unit; Direction carries the sign.
type Transaction struct {
	ID          uuid.UUID     `json:"id"`
	UserID      int64         `json:"user_id"`
	Direction   Direction     `json:"type"`
	Amount      int64         `json:"amount"`
	Category    Category      `json:"category"`
	Wallet      wallet.Wallet `json:"wallet"`
	Description string        `json:"description"`
	CreatedAt   time.Time     `json:"timestamp"`
}

// Signed returns the amount with the sign implied by the direction.
func (t *Transaction) Signed() int64 {
	if t.Direction == Out {
		return -t.Amount
	}
	return t.Amount
}

// Edit overwrites the user-editable fields. The wallet label is normalized. A
// transfer or savings entry keeps its category only while the label still names it.
func (t *Transaction) Edit(amount int64, category, walletLabel, description string) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	t.Amount = amount
	if !t.Category.IsSystem() || !strings.EqualFold(strings.TrimSpace(category), string(t.Category)) {
		t.Category = ParseCategory(category)
	}
	t.Wallet = wallet.Normalize(walletLabel)
	t.Description = description
	return nil
}

// NewFromData creates a Transaction from stored data. It bypasses validation and should
// only be used for repository hydration or tests.
func NewFromData(
	id uuid.UUID,
	userID int64,
	direction Direction,
	amount int64,
	category Category,
	w wallet.Wallet,
	description string,
	created time.Time,
) *Transaction {
	return &Transaction{
		ID:          id,
		UserID:      userID,
		Direction:   direction,
		Amount:      amount,
		Category:    category,
		Wallet:      w,
		Description: description,
		CreatedAt:   created,
	}
}

// Builder provides a fluent API for constructing valid transactions.
type Builder struct {
	id          uuid.UUID
	userID      int64
	direction   Direction
	amount      int64
	category    Category
	wallet      wallet.Wallet
	description string
	createdAt   time.Time
}

// New creates a Builder with a fresh ID, the current time and the Cash wallet.
func New() *Builder {
	return &Builder{
		id:        uuid.New(),
		wallet:    wallet.Cash,
		category:  Lainnya,
		createdAt: time.Now(),
	}
}

// WithUserID sets the owner. This is a mandatory field.
func (b *Builder) WithUserID(userID int64) *Builder {
	b.userID = userID
	return b
}

// WithDirection sets the direction. When unset it is derived from the category.
func (b *Builder) WithDirection(d Direction) *Builder {
	b.direction = d
	return b
}

// WithAmount sets the amount in the smallest currency unit.
func (b *Builder) WithAmount(amount int64) *Builder {
	b.amount = amount
	return b
}

// WithCategory sets the category.
func (b *Builder) WithCategory(c Category) *Builder {
	b.category = c
	return b
}

// WithWallet sets an already canonical wallet.
func (b *Builder) WithWallet(w wallet.Wallet) *Builder {
	b.wallet = w
	return b
}

// WithWalletLabel normalizes a free-text label before setting it.
func (b *Builder) WithWalletLabel(label string) *Builder {
	b.wallet = wallet.Normalize(label)
	return b
}

// WithDescription sets the free-text description.
func (b *Builder) WithDescription(desc string) *Builder {
	b.description = desc
	return b
}

// WithCreatedAt sets the timestamp.
func (b *Builder) WithCreatedAt(t time.Time) *Builder {
	b.createdAt = t
	return b
}

// Build validates the invariants and returns the transaction.
func (b *Builder) Build() (*Transaction, error) {
	if b.userID == 0 {
		return nil, ErrMissingUser
	}
	if b.amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	dir := b.direction
	if dir == "" {
		dir = DefaultDirection(b.category)
	}
	if !dir.Valid() {
		return nil, ErrInvalidDirection
	}
	return &Transaction{
		ID:          b.id,
		UserID:      b.userID,
		Direction:   dir,
		Amount:      b.amount,
		Category:    b.category,
		Wallet:      b.wallet,
		Description: b.description,
		CreatedAt:   b.createdAt,
	}, nil
}
