// Package ledger derives balances and cash-flow aggregates from a user's transaction log.
// Everything here is a pure function of the log: nothing is cached or stored.
package ledger

import (
	"github.com/monegment/monegment/pkg/domain/transaction"
	"github.com/monegment/monegment/pkg/domain/wallet"
)

// Balances holds the total and per-wallet balances in the smallest currency unit.
type Balances struct {
	Total   int64 `json:"total"`
	Cash    int64 `json:"Cash"`
	Bank    int64 `json:"Bank"`
	EWallet int64 `json:"E-Wallet"`
}

// Compute sums the signed amounts of txs. Total ignores the wallet; the buckets only take
// transactions whose stored wallet is exactly one of the canonical names. An empty log
// yields all zeros.
func Compute(txs []*transaction.Transaction) Balances {
	var b Balances
	for _, tx := range txs {
		if tx == nil {
			continue
		}
		signed := tx.Signed()
		b.Total += signed
		w, ok := wallet.Parse(string(tx.Wallet))
		if !ok {
			continue
		}
		b.add(w, signed)
	}
	return b
}

// Of returns the balance of a canonical wallet.
func (b Balances) Of(w wallet.Wallet) int64 {
	switch w {
	case wallet.Cash:
		return b.Cash
	case wallet.Bank:
		return b.Bank
	case wallet.EWallet:
		return b.EWallet
	}
	return 0
}

// ForLabel normalizes a free-text label and returns that bucket's balance.
func (b Balances) ForLabel(label string) int64 {
	return b.Of(wallet.Normalize(label))
}

// Best returns the wallet holding the largest positive balance, scanning Cash, E-Wallet
// and Bank in that order. Cash is returned when no wallet is positive.
func (b Balances) Best() (wallet.Wallet, int64) {
	best, max := wallet.Cash, int64(0)
	for _, w := range wallet.All {
		if v := b.Of(w); v > max {
			best, max = w, v
		}
	}
	return best, max
}

// Apply returns b with tx folded in, used to keep a running balance while validating a batch.
func (b Balances) Apply(tx *transaction.Transaction) Balances {
	signed := tx.Signed()
	b.Total += signed
	if w, ok := wallet.Parse(string(tx.Wallet)); ok {
		b.add(w, signed)
	}
	return b
}

func (b *Balances) add(w wallet.Wallet, v int64) {
	switch w {
	case wallet.Cash:
		b.Cash += v
	case wallet.Bank:
		b.Bank += v
	case wallet.EWallet:
		b.EWallet += v
	}
}
