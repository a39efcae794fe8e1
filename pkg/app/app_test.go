package app_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/monegment/monegment/infra/eventbus"
	"github.com/monegment/monegment/internal/fixtures/memory"
	"github.com/monegment/monegment/pkg/app"
	"github.com/monegment/monegment/pkg/config"
	"github.com/monegment/monegment/pkg/domain/transaction"
	"github.com/monegment/monegment/pkg/domain/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu  sync.Mutex
	got []string
}

func (r *recorder) Notify(_ context.Context, _ int64, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, message)
	return nil
}

func TestNew_WiresHandlers(t *testing.T) {
	t.Parallel()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	store.Seed(transaction.NewFromData(uuid.New(), 1, transaction.In, 100_000, transaction.Pemasukan, wallet.Cash, "", time.Now()))
	rec := &recorder{}
	cfg := &config.App{
		Auth:    &config.Auth{Jwt: &config.Jwt{Secret: "s", Expiry: time.Hour}},
		Advisor: &config.Advisor{Buffer: 50_000, Timezone: "UTC"},
		Access:  &config.Access{},
	}
	a := app.New(&app.Deps{
		Uow:      store.UoW(),
		EventBus: eventbus.NewWithMemory(quiet),
		Notifier: rec,
		Logger:   quiet,
	}, cfg)

	_, err := a.WalletService.Transfer(context.Background(), 1, "Cash", "OVO", 20_000)
	require.NoError(t, err)
	assert.Equal(t, []string{"Moved 20000 from Cash to E-Wallet."}, rec.got)

	b, err := a.BalanceService.GetBalances(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(20_000), b.EWallet)
	assert.NotNil(t, a.AdvisorService)
	assert.NotNil(t, a.ReportService)
	assert.NotNil(t, a.GoalService)
	assert.NotNil(t, a.ExtractorService)
}
