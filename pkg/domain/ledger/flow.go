package ledger

import (
	"sort"
	"time"

	"github.com/monegment/monegment/pkg/domain/transaction"
)

// Flow is the income and expense of a period. Every aggregate in this file
// skips transfer legs: moving money between the user's own wallets is not cash
// flow. Savings deposits leave the spendable balance and count as expense.
type Flow struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
}

// Net is income minus expense.
func (f Flow) Net() int64 {
	return f.Income - f.Expense
}

// CategoryTotal is the expense total of one category.
type CategoryTotal struct {
	Category transaction.Category `json:"category"`
	Amount   int64                `json:"amount"`
}

// MonthFlow is the flow of one calendar month keyed as YYYY-MM.
type MonthFlow struct {
	Month string `json:"month"`
	Flow
}

// Totals sums income and expense over the whole log.
func Totals(txs []*transaction.Transaction) Flow {
	var f Flow
	for _, tx := range txs {
		f.add(tx)
	}
	return f
}

// MonthToDate sums the calendar month containing now.
func MonthToDate(txs []*transaction.Transaction, now time.Time) Flow {
	return Totals(inMonth(txs, now))
}

// ExpenseByCategory groups OUT amounts by category, largest first. Ties keep category name order.
func ExpenseByCategory(txs []*transaction.Transaction) []CategoryTotal {
	sums := make(map[transaction.Category]int64)
	for _, tx := range txs {
		if tx.Direction == transaction.Out && tx.Category != transaction.CategoryTransfer {
			sums[tx.Category] += tx.Amount
		}
	}
	out := make([]CategoryTotal, 0, len(sums))
	for c, v := range sums {
		out = append(out, CategoryTotal{Category: c, Amount: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// TopExpenseCategory returns the largest expense category of the month containing now.
// It falls back to Lainnya.
func TopExpenseCategory(txs []*transaction.Transaction, now time.Time) transaction.Category {
	totals := ExpenseByCategory(inMonth(txs, now))
	if len(totals) == 0 {
		return transaction.Lainnya
	}
	return totals[0].Category
}

// Monthly returns the flow of the last n months that have activity, oldest first.
func Monthly(txs []*transaction.Transaction, n int) []MonthFlow {
	byMonth := make(map[string]*Flow)
	for _, tx := range txs {
		key := tx.CreatedAt.Format("2006-01")
		f, ok := byMonth[key]
		if !ok {
			f = &Flow{}
			byMonth[key] = f
		}
		f.add(tx)
	}
	keys := make([]string, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if n > 0 && len(keys) > n {
		keys = keys[len(keys)-n:]
	}
	out := make([]MonthFlow, 0, len(keys))
	for _, k := range keys {
		out = append(out, MonthFlow{Month: k, Flow: *byMonth[k]})
	}
	return out
}

func inMonth(txs []*transaction.Transaction, now time.Time) []*transaction.Transaction {
	y, m, _ := now.Date()
	var out []*transaction.Transaction
	for _, tx := range txs {
		ty, tm, _ := tx.CreatedAt.In(now.Location()).Date()
		if ty == y && tm == m {
			out = append(out, tx)
		}
	}
	return out
}

func (f *Flow) add(tx *transaction.Transaction) {
	if tx == nil || tx.Category == transaction.CategoryTransfer {
		return
	}
	switch tx.Direction {
	case transaction.In:
		f.Income += tx.Amount
	case transaction.Out:
		f.Expense += tx.Amount
	}
}
