package allocation_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/monegment/monegment/pkg/domain/allocation"
	"github.com/monegment/monegment/pkg/domain/goal"
	"github.com/monegment/monegment/pkg/domain/ledger"
	"github.com/monegment/monegment/pkg/domain/transaction"
	"github.com/monegment/monegment/pkg/domain/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoal(title string, target, current int64, deadline time.Time, p goal.Priority) *goal.Goal {
	return goal.NewFromData(uuid.New(), 1, title, target, current, deadline, p, time.Now())
}

var deadline = time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

func TestCompute(t *testing.T) {
	t.Parallel()
	fig := allocation.Compute(ledger.Flow{Income: 2_000_000, Expense: 600_000}, 20, 50_000)
	assert.Equal(t, int64(1_400_000), fig.FreeToSpend)
	assert.Equal(t, "30000", fig.DailyBurn.String())
	assert.Equal(t, int64(210_000), fig.WeeklyNeeds)
	assert.Equal(t, int64(1_140_000), fig.SafeToSave)

	fig = allocation.Compute(ledger.Flow{Income: 100, Expense: 700}, 0, 50_000)
	assert.Equal(t, int64(4_900), fig.WeeklyNeeds, "day zero is treated as day one")
	assert.Zero(t, fig.SafeToSave)
}

func TestRecommend_Scenario(t *testing.T) {
	t.Parallel()
	g := newGoal("Laptop", 1_000_000, 200_000, deadline, goal.P1)
	rec := allocation.Recommend(allocation.Input{
		Month:      ledger.Flow{Income: 2_000_000, Expense: 600_000},
		DayOfMonth: 20,
		Goals:      []*goal.Goal{g},
		Balances:   ledger.Balances{Total: 1_400_000, Cash: 100_000, Bank: 1_300_000},
		Buffer:     allocation.DefaultBuffer,
	})
	require.NotNil(t, rec.Action)
	assert.Equal(t, int64(800_000), rec.Action.Amount)
	assert.Equal(t, g.ID, rec.Action.GoalID)
	assert.Equal(t, "Laptop", rec.Action.GoalTitle)
	assert.Equal(t, wallet.Bank, rec.Action.Wallet)
	assert.Contains(t, rec.Note, "free_to_spend=1400000")
	assert.Contains(t, rec.Note, "weekly_needs=210000")
	assert.Contains(t, rec.Note, "buffer=50000")
}

func TestRecommend_NoAction(t *testing.T) {
	t.Parallel()
	month := ledger.Flow{Income: 2_000_000, Expense: 600_000}

	tests := []struct {
		name  string
		month ledger.Flow
		goals []*goal.Goal
	}{
		{name: "no goals", month: month},
		{
			name:  "cash flow too thin",
			month: ledger.Flow{Income: 100_000, Expense: 60_000},
			goals: []*goal.Goal{newGoal("Trip", 500_000, 0, deadline, goal.P1)},
		},
		{
			name:  "save below minimum",
			month: month,
			goals: []*goal.Goal{newGoal("Shoes", 1_000_000, 990_500, deadline, goal.P1)},
		},
		{
			name:  "all goals met",
			month: month,
			goals: []*goal.Goal{newGoal("Done", 100, 100, deadline, goal.P1)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := allocation.Recommend(allocation.Input{
				Month:      tt.month,
				DayOfMonth: 20,
				Goals:      tt.goals,
				TopExpense: transaction.Makanan,
				Buffer:     allocation.DefaultBuffer,
			})
			assert.Nil(t, rec.Action)
			assert.NotEmpty(t, rec.Advice)
		})
	}
}

func TestRecommend_ThinMentionsTopCategory(t *testing.T) {
	t.Parallel()
	rec := allocation.Recommend(allocation.Input{
		Month:      ledger.Flow{Income: 10, Expense: 50},
		DayOfMonth: 3,
		Goals:      []*goal.Goal{newGoal("Trip", 500_000, 0, deadline, goal.P2)},
		TopExpense: transaction.Hiburan,
		Buffer:     allocation.DefaultBuffer,
	})
	assert.Contains(t, rec.Advice, "Largest expense category: Hiburan.")
}

func TestTarget(t *testing.T) {
	t.Parallel()
	early := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC)

	metP1 := newGoal("met", 100, 100, early, goal.P1)
	lateP2 := newGoal("late", 100, 0, late, goal.P2)
	earlyP3 := newGoal("early", 100, 0, early, goal.P3)
	earlyP2 := newGoal("early twin", 100, 0, early, goal.P2)

	assert.Same(t, earlyP3, allocation.Target([]*goal.Goal{metP1, lateP2, earlyP3, earlyP2}),
		"met goals are skipped and deadline ties keep list order")

	p1 := newGoal("p1", 100, 10, late, goal.P1)
	assert.Same(t, p1, allocation.Target([]*goal.Goal{earlyP3, p1}))

	assert.Nil(t, allocation.Target([]*goal.Goal{metP1}))
	assert.Nil(t, allocation.Target(nil))
}

func TestFloorStep(t *testing.T) {
	t.Parallel()
	assert.Equal(t, int64(12_000), allocation.FloorStep(12_999))
	assert.Equal(t, int64(800_000), allocation.FloorStep(800_000))
	assert.Zero(t, allocation.FloorStep(999))
	assert.Zero(t, allocation.FloorStep(-5))
}

// Whatever the inputs, a proposal never exceeds the goal's remaining amount or the safe amount.
func TestRecommend_Bounds(t *testing.T) {
	t.Parallel()
	for income := int64(0); income <= 3_000_000; income += 250_000 {
		for expense := int64(0); expense <= 1_500_000; expense += 300_000 {
			g := newGoal("g", 700_000, 123_456, deadline, goal.P1)
			month := ledger.Flow{Income: income, Expense: expense}
			rec := allocation.Recommend(allocation.Input{
				Month: month, DayOfMonth: 11, Goals: []*goal.Goal{g}, Buffer: allocation.DefaultBuffer,
			})
			if rec.Action == nil {
				continue
			}
			fig := allocation.Compute(month, 11, allocation.DefaultBuffer)
			assert.LessOrEqual(t, rec.Action.Amount, g.Remaining())
			assert.LessOrEqual(t, rec.Action.Amount, fig.SafeToSave)
			assert.Greater(t, rec.Action.Amount, allocation.MinSave)
			assert.Zero(t, rec.Action.Amount%allocation.Step)
		}
	}
}
