package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/monegment/monegment/pkg/domain/goal"
	"github.com/monegment/monegment/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoalUpdateDetails_StaleReadKeepsDeposit(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	g := goal.NewFromData(uuid.New(), 1, "Laptop", 5_000_000, 0, time.Now(), goal.P2, time.Now())
	store.SeedGoals(g)

	stale := *g
	stale.Title = "Gaming laptop"
	stale.Target = 8_000_000

	err := store.UoW().Do(ctx, func(uow repository.UnitOfWork) error {
		goals, err := uow.GoalRepository()
		require.NoError(t, err)
		fresh, err := goals.GetForUpdate(ctx, 1, g.ID)
		require.NoError(t, err)
		require.NoError(t, fresh.Deposit(300_000))
		return goals.UpdateCurrent(ctx, fresh)
	})
	require.NoError(t, err)

	err = store.UoW().Do(ctx, func(uow repository.UnitOfWork) error {
		goals, err := uow.GoalRepository()
		require.NoError(t, err)
		return goals.UpdateDetails(ctx, &stale)
	})
	require.NoError(t, err)

	got := store.Goal(g.ID)
	require.NotNil(t, got)
	assert.Equal(t, "Gaming laptop", got.Title)
	assert.Equal(t, int64(8_000_000), got.Target)
	assert.Equal(t, int64(300_000), got.Current)
}
