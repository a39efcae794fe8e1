package eventbus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/monegment/monegment/pkg/domain/events"
	"github.com/monegment/monegment/pkg/domain/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestMemoryEventBus_Emit(t *testing.T) {
	t.Parallel()
	bus := NewWithMemory(quiet)
	var got []events.Event
	bus.Register(events.EventTypeTransferCompleted, func(_ context.Context, e events.Event) error {
		got = append(got, e)
		return nil
	})
	bus.Register(events.EventTypeTransferCompleted, func(context.Context, events.Event) error {
		return errors.New("notifier offline")
	})
	bus.Register(events.EventTypeTransferCompleted, func(context.Context, events.Event) error {
		panic("boom")
	})

	evt := events.TransferCompleted{Source: wallet.Cash, Target: wallet.Bank, Amount: 10}
	require.NoError(t, bus.Emit(context.Background(), evt))
	require.NoError(t, bus.Emit(context.Background(), events.AccountReset{}))

	assert.Equal(t, []events.Event{evt}, got)
}

func TestMemoryAsyncEventBus_DrainsOnClose(t *testing.T) {
	t.Parallel()
	bus := NewWithMemoryAsync(quiet, 4)
	var n atomic.Int32
	bus.Register(events.EventTypeGoalDeposited, func(context.Context, events.Event) error {
		n.Add(1)
		return nil
	})

	for i := 0; i < 10; i++ {
		require.NoError(t, bus.Emit(context.Background(), events.GoalDeposited{Amount: int64(i)}))
	}
	bus.Close()
	assert.Equal(t, int32(10), n.Load())
}

func TestMemoryAsyncEventBus_EmitAfterClose(t *testing.T) {
	t.Parallel()
	bus := NewWithMemoryAsync(quiet, 2)
	require.NoError(t, bus.Emit(context.Background(), events.AccountReset{}))
	bus.Close()

	assert.NotPanics(t, func() {
		assert.ErrorIs(t, bus.Emit(context.Background(), events.AccountReset{}), ErrBusClosed)
	})
	assert.NotPanics(t, bus.Close)
}

func TestMemoryAsyncEventBus_EmitCancelled(t *testing.T) {
	t.Parallel()
	bus := NewWithMemoryAsync(quiet, 1)
	block := make(chan struct{})
	bus.Register(events.EventTypeAccountReset, func(context.Context, events.Event) error {
		<-block
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.Emit(ctx, events.AccountReset{}))
	cancel()

	// The worker holds at most one event and the queue one more, so a cancelled
	// publisher must give up within a few attempts.
	var err error
	for i := 0; i < 3 && err == nil; i++ {
		err = bus.Emit(ctx, events.AccountReset{})
	}
	assert.ErrorIs(t, err, context.Canceled)
	close(block)
	bus.Close()
}

func TestGoalDeposited_GoalReached(t *testing.T) {
	t.Parallel()
	assert.True(t, events.GoalDeposited{Current: 100, Target: 100}.GoalReached())
	assert.False(t, events.GoalDeposited{Current: 99, Target: 100}.GoalReached())
}
