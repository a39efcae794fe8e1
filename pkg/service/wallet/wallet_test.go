package wallet_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/monegment/monegment/infra/eventbus"
	"github.com/monegment/monegment/internal/fixtures/memory"
	"github.com/monegment/monegment/pkg/domain"
	"github.com/monegment/monegment/pkg/domain/events"
	"github.com/monegment/monegment/pkg/domain/goal"
	"github.com/monegment/monegment/pkg/domain/ledger"
	"github.com/monegment/monegment/pkg/domain/transaction"
	"github.com/monegment/monegment/pkg/domain/wallet"
	walletsvc "github.com/monegment/monegment/pkg/service/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const user int64 = 1001

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type fixture struct {
	store *memory.Store
	svc   *walletsvc.Service

	mu     sync.Mutex
	events []events.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	bus := eventbus.NewWithMemory(quiet)
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	f := &fixture{
		store: store,
		svc:   walletsvc.New(store.UoW(), bus, quiet, walletsvc.WithClock(func() time.Time { return now })),
	}
	for _, et := range []events.EventType{
		events.EventTypeTransactionRecorded,
		events.EventTypeTransferCompleted,
		events.EventTypeGoalDeposited,
		events.EventTypeAccountReset,
	} {
		bus.Register(et, f.record)
	}
	return f
}

func (f *fixture) record(_ context.Context, e events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func (f *fixture) published() []events.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]events.Event(nil), f.events...)
}

func (f *fixture) fund(w wallet.Wallet, amount int64) {
	f.store.Seed(transaction.NewFromData(uuid.New(), user, transaction.In, amount, transaction.Pemasukan, w, "seed", time.Now()))
}

func (f *fixture) balances() ledger.Balances {
	return ledger.Compute(f.store.Transactions(user))
}

func (f *fixture) addGoal(t *testing.T, owner int64, title string, target int64) *goal.Goal {
	t.Helper()
	g, err := goal.New().WithUserID(owner).WithTitle(title).WithTarget(target).
		WithDeadline(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)).Build()
	require.NoError(t, err)
	f.store.SeedGoals(g)
	return g
}

func TestTransfer(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.fund(wallet.Cash, 100_000)

	res, err := f.svc.Transfer(context.Background(), user, "cash", "GoPay", 40_000)
	require.NoError(t, err)
	assert.Equal(t, "Transfer to E-Wallet", res.Out.Description)
	assert.Equal(t, "Received from Cash", res.In.Description)
	assert.Equal(t, transaction.CategoryTransfer, res.Out.Category)
	assert.Equal(t, transaction.CategoryTransfer, res.In.Category)

	b := f.balances()
	assert.Equal(t, int64(60_000), b.Cash)
	assert.Equal(t, int64(40_000), b.EWallet)
	assert.Equal(t, int64(100_000), b.Total, "transfers never change the total")

	published := f.published()
	require.Len(t, published, 1)
	evt, ok := published[0].(events.TransferCompleted)
	require.True(t, ok)
	assert.Equal(t, wallet.Cash, evt.Source)
	assert.Equal(t, wallet.EWallet, evt.Target)
}

func TestTransfer_SameWalletFirst(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	for _, amount := range []int64{-1, 0, 10, 1_000_000} {
		_, err := f.svc.Transfer(context.Background(), user, "tunai", "Cash", amount)
		assert.ErrorIs(t, err, domain.ErrSameWallet)
	}
	_, err := f.svc.Transfer(context.Background(), user, "BCA", "atm mandiri", 5)
	assert.ErrorIs(t, err, domain.ErrSameWallet)
	assert.Empty(t, f.store.Transactions(user))
}

func TestTransfer_InvalidAmount(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.fund(wallet.Cash, 100)
	for _, amount := range []int64{0, -50} {
		_, err := f.svc.Transfer(context.Background(), user, "Cash", "Bank", amount)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	}
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.fund(wallet.Cash, 30_000)
	f.fund(wallet.Bank, 1_000_000)

	_, err := f.svc.Transfer(context.Background(), user, "Cash", "Bank", 50_000)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	var insufficient *domain.InsufficientFundsError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, "Cash", insufficient.Wallet)
	assert.Equal(t, int64(30_000), insufficient.Balance)
	assert.Equal(t, int64(20_000), insufficient.Shortfall())

	assert.Len(t, f.store.Transactions(user), 2, "nothing appended")
	assert.Zero(t, f.store.Commits())
	assert.Empty(t, f.published())
}

// Random transfer sequences never push a wallet below zero and never move the total.
func TestTransfer_NeverOverdraws(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.fund(wallet.Cash, 300_000)
	f.fund(wallet.Bank, 200_000)
	labels := []string{"cash", "bank", "ovo", "BRI", "uang"}
	r := rand.New(rand.NewSource(3))

	for i := 0; i < 300; i++ {
		before := f.balances()
		src, dst := labels[r.Intn(len(labels))], labels[r.Intn(len(labels))]
		amount := int64(r.Intn(250_000))
		_, err := f.svc.Transfer(context.Background(), user, src, dst, amount)
		after := f.balances()
		for _, w := range wallet.All {
			assert.GreaterOrEqual(t, after.Of(w), int64(0))
		}
		assert.Equal(t, int64(500_000), after.Total)
		if err != nil {
			assert.Equal(t, before, after)
			continue
		}
		assert.Equal(t, before.Of(wallet.Normalize(src))-amount, after.Of(wallet.Normalize(src)))
		assert.Equal(t, before.Of(wallet.Normalize(dst))+amount, after.Of(wallet.Normalize(dst)))
	}
}

func TestTransfer_ConcurrentDebitsAreSerialized(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.fund(wallet.Cash, 100_000)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Transfer(context.Background(), user, "Cash", "Bank", 20_000); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 5, ok)
	assert.Zero(t, f.balances().Cash)
}

func TestDepositToGoal(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.fund(wallet.Bank, 1_000_000)
	g := f.addGoal(t, user, "Laptop", 5_000_000)

	updated, err := f.svc.DepositToGoal(context.Background(), user, g.ID, "BCA", 800_000)
	require.NoError(t, err)
	assert.Equal(t, int64(800_000), updated.Current)
	assert.Equal(t, int64(800_000), f.store.Goal(g.ID).Current)

	txs := f.store.Transactions(user)
	last := txs[len(txs)-1]
	assert.Equal(t, transaction.Out, last.Direction)
	assert.Equal(t, transaction.CategorySavings, last.Category)
	assert.Equal(t, wallet.Bank, last.Wallet)
	assert.Equal(t, int64(800_000), last.Amount)
	assert.Equal(t, "Saving toward Laptop", last.Description)
	assert.Equal(t, int64(200_000), f.balances().Bank)

	published := f.published()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventTypeGoalDeposited, published[0].Type())
}

func TestDepositToGoal_Errors(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.fund(wallet.Cash, 10_000)
	mine := f.addGoal(t, user, "Trip", 100_000)
	theirs := f.addGoal(t, 2002, "Theirs", 100_000)

	_, err := f.svc.DepositToGoal(context.Background(), user, mine.ID, "Cash", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.svc.DepositToGoal(context.Background(), user, theirs.ID, "Cash", 1_000)
	assert.ErrorIs(t, err, domain.ErrGoalNotFound)

	_, err = f.svc.DepositToGoal(context.Background(), user, uuid.New(), "Cash", 1_000)
	assert.ErrorIs(t, err, domain.ErrGoalNotFound)

	_, err = f.svc.DepositToGoal(context.Background(), user, mine.ID, "Cash", 10_001)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	assert.Zero(t, f.store.Goal(mine.ID).Current)
	assert.Len(t, f.store.Transactions(user), 1)
}

func TestDepositToGoal_RollsBackBothWrites(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.fund(wallet.Cash, 50_000)
	g := f.addGoal(t, user, "Phone", 100_000)
	f.store.FailOn(memory.OpUpdateGoalCurrent, errors.New("disk full"))

	_, err := f.svc.DepositToGoal(context.Background(), user, g.ID, "Cash", 20_000)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInsufficientFunds)

	assert.Len(t, f.store.Transactions(user), 1, "savings transaction rolled back")
	assert.Zero(t, f.store.Goal(g.ID).Current)
	assert.Equal(t, int64(50_000), f.balances().Cash)
}

func TestRecordTransaction(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	in, err := f.svc.RecordTransaction(context.Background(), user, transaction.Candidate{
		Amount: 200_000, Category: "Pemasukan", Wallet: "dana", Description: "freelance",
	})
	require.NoError(t, err)
	assert.Equal(t, transaction.In, in.Direction)
	assert.Equal(t, wallet.EWallet, in.Wallet)

	_, err = f.svc.RecordTransaction(context.Background(), user, transaction.Candidate{
		Amount: 50_000, Category: "Makanan", Wallet: "cash",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	out, err := f.svc.RecordTransaction(context.Background(), user, transaction.Candidate{
		Amount: 50_000, Category: "makanan", Wallet: "shopeepay",
	})
	require.NoError(t, err)
	assert.Equal(t, transaction.Makanan, out.Category)
	assert.Equal(t, int64(150_000), f.balances().EWallet)

	_, err = f.svc.RecordTransaction(context.Background(), user, transaction.Candidate{Amount: 0, Category: "Makanan"})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestImportCandidates(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.fund(wallet.Cash, 50_000)

	res, err := f.svc.ImportCandidates(context.Background(), user, []transaction.Candidate{
		{Amount: 100_000, Category: "Pemasukan", Direction: transaction.In, Wallet: "BNI", Description: "refund"},
		{Amount: 30_000, Category: "Makanan", Direction: transaction.Out, Wallet: "Cash", Description: "dinner"},
		{Amount: 30_000, Category: "Belanja", Direction: transaction.Out, Wallet: "tunai", Description: "groceries"},
		{Amount: 0, Category: "Lainnya", Direction: transaction.Out, Wallet: "Cash"},
		{Amount: 80_000, Category: "Tagihan", Direction: transaction.Out, Wallet: "bca", Description: "internet"},
	})
	require.NoError(t, err)
	require.Len(t, res.Saved, 3)
	require.Len(t, res.Rejected, 2)
	assert.Equal(t, "groceries", res.Rejected[0].Candidate.Description)
	assert.Contains(t, res.Rejected[0].Reason, "insufficient funds")

	b := f.balances()
	assert.Equal(t, int64(20_000), b.Cash)
	assert.Equal(t, int64(20_000), b.Bank)

	published := f.published()
	require.Len(t, published, 1)
	assert.Len(t, published[0].(events.TransactionRecorded).TransactionIDs, 3)
}

func TestUpdateTransaction(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.fund(wallet.Cash, 100_000)
	spent, err := f.svc.RecordTransaction(context.Background(), user, transaction.Candidate{
		Amount: 40_000, Category: "Makanan", Wallet: "Cash",
	})
	require.NoError(t, err)

	updated, err := f.svc.UpdateTransaction(context.Background(), user, spent.ID, transaction.Candidate{
		Amount: 90_000, Category: "Hiburan", Wallet: "uang", Description: "concert",
	})
	require.NoError(t, err)
	assert.Equal(t, transaction.Hiburan, updated.Category)
	assert.Equal(t, transaction.Out, updated.Direction)
	assert.Equal(t, int64(10_000), f.balances().Cash)

	_, err = f.svc.UpdateTransaction(context.Background(), user, spent.ID, transaction.Candidate{
		Amount: 100_001, Category: "Hiburan", Wallet: "Cash",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	_, err = f.svc.UpdateTransaction(context.Background(), 9, spent.ID, transaction.Candidate{Amount: 1, Wallet: "Cash"})
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)

	_, err = f.svc.UpdateTransaction(context.Background(), user, spent.ID, transaction.Candidate{Amount: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestDeleteAndReset(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.fund(wallet.Cash, 100_000)
	f.store.Seed(transaction.NewFromData(uuid.New(), 77, transaction.In, 5, transaction.Lainnya, wallet.Cash, "", time.Now()))
	f.addGoal(t, user, "Car", 10_000_000)
	other := f.addGoal(t, 77, "Bike", 1_000)

	txs, err := f.svc.ListTransactions(context.Background(), user, 10)
	require.NoError(t, err)
	require.Len(t, txs, 1)

	assert.ErrorIs(t, f.svc.DeleteTransaction(context.Background(), 77, txs[0].ID), domain.ErrTransactionNotFound)
	require.NoError(t, f.svc.DeleteTransaction(context.Background(), user, txs[0].ID))
	assert.Empty(t, f.store.Transactions(user))

	f.fund(wallet.Bank, 1)
	require.NoError(t, f.svc.ResetAccount(context.Background(), user))
	assert.Empty(t, f.store.Transactions(user))
	assert.Len(t, f.store.Transactions(77), 1, "other users keep their data")
	assert.NotNil(t, f.store.Goal(other.ID))
}
