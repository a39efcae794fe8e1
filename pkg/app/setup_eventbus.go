// Package app wires services and event handlers together.
package app

import (
	"github.com/monegment/monegment/pkg/domain/events"
	"github.com/monegment/monegment/pkg/handler/notify"
)

// setupEventBus registers the post-commit handlers. Nothing is registered without a bus.
func (a *App) setupEventBus() {
	bus := a.Deps.EventBus
	if bus == nil {
		return
	}
	n := a.Deps.Notifier
	logger := a.Deps.Logger

	bus.Register(
		events.EventTypeTransferCompleted,
		notify.HandleTransferCompleted(n, logger),
	)
	bus.Register(
		events.EventTypeGoalDeposited,
		notify.HandleGoalDeposited(n, logger),
	)
	bus.Register(
		events.EventTypeTransactionRecorded,
		notify.HandleBudgetCheck(a.Deps.Uow, n, a.Config.Advisor.Location(), logger),
	)
	bus.Register(
		events.EventTypeAccountReset,
		notify.HandleAccountReset(n),
	)
}
