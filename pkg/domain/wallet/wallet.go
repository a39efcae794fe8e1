// Package wallet defines the three canonical money-holding buckets and the single
// normalization routine that maps free-text wallet labels onto them.
package wallet

import "strings"

// Wallet is one of the canonical buckets a transaction is recorded against.
type Wallet string

const (
	Cash    Wallet = "Cash"
	Bank    Wallet = "Bank"
	EWallet Wallet = "E-Wallet"
)

// All lists the canonical wallets in their display order.
var All = []Wallet{Cash, EWallet, Bank}

// Keyword lists are checked in order: cash first, then bank, then the E-Wallet fallback.
var (
	cashKeywords = []string{"cash", "tunai", "uang"}
	bankKeywords = []string{"bank", "bca", "mandiri", "bri", "bni", "atm", "debit"}
)

// Normalize maps a free-text label such as "GoPay", "BCA Transfer" or "tunai" to a
// canonical wallet. Anything that matches neither keyword list is an E-Wallet.
func Normalize(label string) Wallet {
	l := strings.ToLower(strings.TrimSpace(label))
	if containsAny(l, cashKeywords) {
		return Cash
	}
	if containsAny(l, bankKeywords) {
		return Bank
	}
	return EWallet
}

// Parse matches a stored wallet value exactly (case-insensitive, trimmed) against the
// canonical names. Unlike Normalize it does not guess.
func Parse(s string) (Wallet, bool) {
	l := strings.ToLower(strings.TrimSpace(s))
	for _, w := range All {
		if strings.ToLower(string(w)) == l {
			return w, true
		}
	}
	return "", false
}

func (w Wallet) String() string {
	return string(w)
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
