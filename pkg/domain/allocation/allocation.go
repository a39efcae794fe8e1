// Package allocation computes how much of this month's free cash can safely be moved into a
// savings goal. It is a pure computation over aggregates; callers act on the result through
// the goal deposit path.
package allocation

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/monegment/monegment/pkg/domain/goal"
	"github.com/monegment/monegment/pkg/domain/ledger"
	"github.com/monegment/monegment/pkg/domain/transaction"
	"github.com/monegment/monegment/pkg/domain/wallet"
	"github.com/shopspring/decimal"
)

const (
	// DefaultBuffer is the cash kept aside before anything is considered saveable.
	DefaultBuffer int64 = 50_000
	// MinSave is the smallest amount worth proposing; proposals must exceed it.
	MinSave int64 = 10_000
	// Step is the granularity proposals are floored to.
	Step int64 = 1_000

	daysPerWeek = 7
)

// Input is everything the advisor needs. Goals must be in list order.
type Input struct {
	Month      ledger.Flow
	DayOfMonth int
	Goals      []*goal.Goal
	Balances   ledger.Balances
	TopExpense transaction.Category
	Buffer     int64
}

// Action is a proposed goal deposit.
type Action struct {
	Amount    int64         `json:"amount"`
	GoalID    uuid.UUID     `json:"goal_id"`
	GoalTitle string        `json:"goal_title"`
	Wallet    wallet.Wallet `json:"wallet"`
}

// Recommendation is the advisor output. Action is nil when nothing should be moved.
type Recommendation struct {
	Advice []string `json:"advice"`
	Action *Action  `json:"action"`
	Note   string   `json:"note"`
}

// Figures are the intermediate numbers of one computation.
type Figures struct {
	FreeToSpend int64
	DailyBurn   decimal.Decimal
	WeeklyNeeds int64
	Buffer      int64
	SafeToSave  int64
}

// Compute derives the saving figures from a month flow.
func Compute(month ledger.Flow, dayOfMonth int, buffer int64) Figures {
	days := dayOfMonth
	if days < 1 {
		days = 1
	}
	free := month.Net()
	daily := decimal.NewFromInt(month.Expense).Div(decimal.NewFromInt(int64(days)))
	weekly := daily.Mul(decimal.NewFromInt(daysPerWeek)).Floor().IntPart()

	safe := free - weekly - buffer
	if safe < 0 {
		safe = 0
	}
	return Figures{
		FreeToSpend: free,
		DailyBurn:   daily,
		WeeklyNeeds: weekly,
		Buffer:      buffer,
		SafeToSave:  safe,
	}
}

// Target picks the goal to fund: the first unmet P1 goal, otherwise the unmet goal with the
// earliest deadline (ties keep list order). Nil when every goal is met.
func Target(goals []*goal.Goal) *goal.Goal {
	for _, g := range goals {
		if g.Priority == goal.P1 && !g.Met() {
			return g
		}
	}
	var best *goal.Goal
	for _, g := range goals {
		if g.Met() {
			continue
		}
		if best == nil || g.Deadline.Before(best.Deadline) {
			best = g
		}
	}
	return best
}

// FloorStep rounds v down to a multiple of Step.
func FloorStep(v int64) int64 {
	if v <= 0 {
		return 0
	}
	return decimal.NewFromInt(v).
		Div(decimal.NewFromInt(Step)).
		Floor().
		Mul(decimal.NewFromInt(Step)).
		IntPart()
}

// Recommend runs the allocation heuristic.
func Recommend(in Input) Recommendation {
	rec := Recommendation{Advice: []string{}}
	if len(in.Goals) == 0 {
		rec.Advice = append(rec.Advice,
			"You have no savings goals yet.",
			"Create a goal to start getting allocation advice.")
		return rec
	}

	fig := Compute(in.Month, in.DayOfMonth, in.Buffer)
	if fig.FreeToSpend <= in.Buffer {
		top := in.TopExpense
		if top == "" {
			top = transaction.Lainnya
		}
		rec.Advice = append(rec.Advice,
			"Cash flow this month is too thin to save.",
			fmt.Sprintf("Largest expense category: %s.", top),
			"Focus on reducing spending before saving.")
		return rec
	}

	target := Target(in.Goals)
	if target == nil {
		rec.Advice = append(rec.Advice, "All of your savings goals are met.")
		return rec
	}

	save := fig.SafeToSave
	if rem := target.Remaining(); rem < save {
		save = rem
	}
	save = FloorStep(save)
	rec.Note = fmt.Sprintf("free_to_spend=%d weekly_needs=%d buffer=%d safe_to_save=%d",
		fig.FreeToSpend, fig.WeeklyNeeds, fig.Buffer, fig.SafeToSave)
	if save <= MinSave {
		rec.Advice = append(rec.Advice, "Finances are stable but not yet optimal for auto-saving.")
		return rec
	}

	w, _ := in.Balances.Best()
	rec.Advice = append(rec.Advice,
		fmt.Sprintf("Cash flow is positive (free to spend: %d).", fig.FreeToSpend),
		fmt.Sprintf("Speed up %q.", target.Title))
	rec.Action = &Action{
		Amount:    save,
		GoalID:    target.ID,
		GoalTitle: target.Title,
		Wallet:    w,
	}
	return rec
}
