package goal_test

import (
	"testing"
	"time"

	"github.com/monegment/monegment/pkg/domain"
	"github.com/monegment/monegment/pkg/domain/goal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	t.Parallel()
	deadline := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	g, err := goal.New().
		WithUserID(7).
		WithTitle("  Laptop ").
		WithTarget(10_000_000).
		WithDeadline(deadline).
		WithPriority(goal.P1).
		Build()
	require.NoError(t, err)
	assert.Equal(t, "Laptop", g.Title)
	assert.Zero(t, g.Current, "goals start empty")
	assert.Equal(t, int64(10_000_000), g.Remaining())
	assert.False(t, g.Met())
}

func TestBuild_Validation(t *testing.T) {
	t.Parallel()
	_, err := goal.New().WithUserID(7).WithTarget(10).Build()
	assert.ErrorIs(t, err, goal.ErrTitleRequired)

	_, err = goal.New().WithUserID(7).WithTitle("x").WithTarget(0).Build()
	assert.ErrorIs(t, err, goal.ErrInvalidTarget)

	_, err = goal.New().WithUserID(7).WithTitle("x").WithTarget(1).WithPriority("P9").Build()
	assert.ErrorIs(t, err, goal.ErrInvalidPriority)

	_, err = goal.New().WithTitle("x").WithTarget(1).Build()
	assert.ErrorIs(t, err, goal.ErrMissingUser)
}

func TestDepositAndMet(t *testing.T) {
	t.Parallel()
	g, err := goal.New().WithUserID(1).WithTitle("Trip").WithTarget(1000).Build()
	require.NoError(t, err)

	require.NoError(t, g.Deposit(400))
	assert.Equal(t, int64(600), g.Remaining())

	require.NoError(t, g.Deposit(600))
	assert.True(t, g.Met())
	assert.Zero(t, g.Remaining())

	assert.ErrorIs(t, g.Deposit(0), domain.ErrInvalidAmount)
}

func TestEdit_KeepsCurrent(t *testing.T) {
	t.Parallel()
	g, err := goal.New().WithUserID(1).WithTitle("Trip").WithTarget(1000).Build()
	require.NoError(t, err)
	require.NoError(t, g.Deposit(300))

	deadline := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, g.Edit("Bali trip", 5000, deadline, goal.P1))
	assert.Equal(t, "Bali trip", g.Title)
	assert.Equal(t, int64(5000), g.Target)
	assert.Equal(t, int64(300), g.Current)
	assert.Equal(t, goal.P1, g.Priority)

	assert.ErrorIs(t, g.Edit("", 5000, deadline, goal.P1), goal.ErrTitleRequired)
}
