package wallet_test

import (
	"testing"

	"github.com/monegment/monegment/pkg/domain/wallet"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		label string
		want  wallet.Wallet
	}{
		{"GoPay", wallet.EWallet},
		{"BCA Transfer", wallet.Bank},
		{"tunai", wallet.Cash},
		{"Crypto", wallet.EWallet},
		{"  CASH ", wallet.Cash},
		{"Uang saku", wallet.Cash},
		{"ATM Mandiri", wallet.Bank},
		{"kartu debit", wallet.Bank},
		{"E-Wallet", wallet.EWallet},
		{"Bank", wallet.Bank},
		{"", wallet.EWallet},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, wallet.Normalize(tt.label))
		})
	}
}

func TestNormalize_CashBeforeBank(t *testing.T) {
	t.Parallel()
	// Both keyword lists match; cash wins.
	assert.Equal(t, wallet.Cash, wallet.Normalize("cash from atm"))
}

func TestParse(t *testing.T) {
	t.Parallel()
	w, ok := wallet.Parse(" e-wallet ")
	assert.True(t, ok)
	assert.Equal(t, wallet.EWallet, w)

	w, ok = wallet.Parse("BANK")
	assert.True(t, ok)
	assert.Equal(t, wallet.Bank, w)

	_, ok = wallet.Parse("GoPay")
	assert.False(t, ok, "Parse must not guess")
}
