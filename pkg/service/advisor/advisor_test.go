package advisor_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/monegment/monegment/internal/fixtures/memory"
	"github.com/monegment/monegment/pkg/config"
	"github.com/monegment/monegment/pkg/domain/goal"
	"github.com/monegment/monegment/pkg/domain/transaction"
	"github.com/monegment/monegment/pkg/domain/wallet"
	"github.com/monegment/monegment/pkg/service/advisor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func entry(dir transaction.Direction, amount int64, cat transaction.Category, w wallet.Wallet, at time.Time) *transaction.Transaction {
	return transaction.NewFromData(uuid.New(), 1, dir, amount, cat, w, "", at)
}

func newAdvisor(store *memory.Store, now time.Time, buffer int64) *advisor.Service {
	cfg := &config.Advisor{Buffer: buffer, Timezone: "UTC"}
	return advisor.New(store.UoW(), cfg, quiet, advisor.WithClock(func() time.Time { return now }))
}

func TestRecommendAllocation(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	store.Seed(
		entry(transaction.In, 2_000_000, transaction.Pemasukan, wallet.Bank, now.AddDate(0, 0, -15)),
		entry(transaction.Out, 600_000, transaction.Makanan, wallet.Bank, now.AddDate(0, 0, -2)),
		// last month's spending does not count
		entry(transaction.Out, 300_000, transaction.Belanja, wallet.Bank, now.AddDate(0, -1, 0)),
		entry(transaction.In, 500_000, transaction.Pemasukan, wallet.Bank, now.AddDate(0, -1, 0)),
		// transfers are not cash flow
		entry(transaction.Out, 100_000, transaction.CategoryTransfer, wallet.Bank, now),
		entry(transaction.In, 100_000, transaction.CategoryTransfer, wallet.Cash, now),
	)
	laptop := goal.NewFromData(uuid.New(), 1, "Laptop", 1_000_000, 200_000,
		time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), goal.P1, now)
	store.SeedGoals(laptop)

	rec, err := newAdvisor(store, now, 50_000).RecommendAllocation(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, rec.Action)
	assert.Equal(t, int64(800_000), rec.Action.Amount)
	assert.Equal(t, laptop.ID, rec.Action.GoalID)
	assert.Equal(t, wallet.Bank, rec.Action.Wallet)
	assert.Contains(t, rec.Note, "free_to_spend=1400000")
	assert.Contains(t, rec.Note, "weekly_needs=210000")

	assert.Equal(t, int64(200_000), store.Goal(laptop.ID).Current, "advice never writes")
	assert.Zero(t, store.Commits())
}

func TestRecommendAllocation_ThinMonth(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	store.Seed(
		entry(transaction.In, 100_000, transaction.Pemasukan, wallet.Cash, now),
		entry(transaction.Out, 20_000, transaction.Makanan, wallet.Cash, now),
		entry(transaction.Out, 45_000, transaction.Hiburan, wallet.Cash, now),
	)
	store.SeedGoals(goal.NewFromData(uuid.New(), 1, "Trip", 500_000, 0, now.AddDate(0, 2, 0), goal.P2, now))

	rec, err := newAdvisor(store, now, 50_000).RecommendAllocation(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, rec.Action)
	assert.Contains(t, rec.Advice, "Largest expense category: Hiburan.")
}

func TestRecommendAllocation_NoGoals(t *testing.T) {
	t.Parallel()
	store := memory.NewStore()
	rec, err := newAdvisor(store, time.Now(), 50_000).RecommendAllocation(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, rec.Action)
	assert.NotEmpty(t, rec.Advice)
	assert.Empty(t, rec.Note)
}

func TestRecommendAllocation_ConfiguredBuffer(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 10, 28, 0, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	store.Seed(entry(transaction.In, 300_000, transaction.Pemasukan, wallet.Cash, now))
	store.SeedGoals(goal.NewFromData(uuid.New(), 1, "Fund", 10_000_000, 0, now, goal.P1, now))

	rec, err := newAdvisor(store, now, 250_000).RecommendAllocation(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, rec.Action)
	assert.Equal(t, int64(50_000), rec.Action.Amount)
	assert.Equal(t, wallet.Cash, rec.Action.Wallet)

	rec, err = newAdvisor(store, now, 300_000).RecommendAllocation(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, rec.Action)
}

func TestRecommendAllocation_StoreError(t *testing.T) {
	t.Parallel()
	store := memory.NewStore()
	store.FailOn(memory.OpListGoals, assert.AnError)
	_, err := newAdvisor(store, time.Now(), 0).RecommendAllocation(context.Background(), 1)
	assert.ErrorIs(t, err, assert.AnError)
}
