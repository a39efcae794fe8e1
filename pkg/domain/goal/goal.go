package goal

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/monegment/monegment/pkg/domain"
)

var (
	// ErrTitleRequired is returned when a goal has an empty title.
	ErrTitleRequired = errors.New("goal title is required")
	// ErrInvalidTarget is returned when the target amount is not positive.
	ErrInvalidTarget = errors.New("goal target must be positive")
	// ErrInvalidPriority is returned for an unknown priority tier.
	ErrInvalidPriority = errors.New("goal priority must be P1, P2 or P3")
	// ErrMissingUser is returned when a goal is built without an owner.
	ErrMissingUser = errors.New("userID is required")
)

// Priority is the tier of a goal. P1 goals are funded ahead of deadline ordering.
type Priority string

const (
	P1 Priority = "P1"
	P2 Priority = "P2"
	P3 Priority = "P3"
)

// Valid reports whether p is a known tier.
func (p Priority) Valid() bool {
	switch p {
	case P1, P2, P3:
		return true
	}
	return false
}

// Goal is a named savings target.
//
// Invariants:
//   - Target is positive and Current never negative.
//   - Current only changes through Deposit, which the deposit path of the wallet service
//     calls in the same unit of work that records the matching savings transaction.
type Goal struct {
	ID        uuid.UUID `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Target    int64     `json:"target_amount"`
	Current   int64     `json:"current_amount"`
	Deadline  time.Time `json:"deadline"`
	Priority  Priority  `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

// Met reports whether the saved amount reached the target.
func (g *Goal) Met() bool {
	return g.Current >= g.Target
}

// Remaining is the amount still needed, never negative.
func (g *Goal) Remaining() int64 {
	if g.Met() {
		return 0
	}
	return g.Target - g.Current
}

// Deposit adds a validated amount to the saved balance.
func (g *Goal) Deposit(amount int64) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	g.Current += amount
	return nil
}

// Edit overwrites title, target, deadline and priority. Current is left untouched.
func (g *Goal) Edit(title string, target int64, deadline time.Time, priority Priority) error {
	if err := validate(title, target, priority); err != nil {
		return err
	}
	g.Title = strings.TrimSpace(title)
	g.Target = target
	g.Deadline = deadline
	g.Priority = priority
	return nil
}

func validate(title string, target int64, priority Priority) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	if target <= 0 {
		return ErrInvalidTarget
	}
	if !priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}

// NewFromData creates a Goal from stored data (used for DB hydration or test fixtures).
func NewFromData(
	id uuid.UUID,
	userID int64,
	title string,
	target, current int64,
	deadline time.Time,
	priority Priority,
	created time.Time,
) *Goal {
	return &Goal{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Target:    target,
		Current:   current,
		Deadline:  deadline,
		Priority:  priority,
		CreatedAt: created,
	}
}

// Builder provides a fluent API for constructing goals.
type Builder struct {
	id        uuid.UUID
	userID    int64
	title     string
	target    int64
	deadline  time.Time
	priority  Priority
	createdAt time.Time
}

// New creates a Builder with a fresh ID and P2 priority.
func New() *Builder {
	return &Builder{
		id:        uuid.New(),
		priority:  P2,
		createdAt: time.Now(),
	}
}

func (b *Builder) WithUserID(userID int64) *Builder {
	b.userID = userID
	return b
}

func (b *Builder) WithTitle(title string) *Builder {
	b.title = title
	return b
}

func (b *Builder) WithTarget(target int64) *Builder {
	b.target = target
	return b
}

func (b *Builder) WithDeadline(deadline time.Time) *Builder {
	b.deadline = deadline
	return b
}

func (b *Builder) WithPriority(p Priority) *Builder {
	b.priority = p
	return b
}

func (b *Builder) WithCreatedAt(t time.Time) *Builder {
	b.createdAt = t
	return b
}

// Build validates the goal and returns it with Current set to zero.
func (b *Builder) Build() (*Goal, error) {
	if b.userID == 0 {
		return nil, ErrMissingUser
	}
	if err := validate(b.title, b.target, b.priority); err != nil {
		return nil, err
	}
	return &Goal{
		ID:        b.id,
		UserID:    b.userID,
		Title:     strings.TrimSpace(b.title),
		Target:    b.target,
		Deadline:  b.deadline,
		Priority:  b.priority,
		CreatedAt: b.createdAt,
	}, nil
}
