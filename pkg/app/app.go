package app

import (
	"log/slog"

	"github.com/monegment/monegment/pkg/config"
	"github.com/monegment/monegment/pkg/eventbus"
	"github.com/monegment/monegment/pkg/handler/notify"
	"github.com/monegment/monegment/pkg/repository"
	"github.com/monegment/monegment/pkg/service/advisor"
	"github.com/monegment/monegment/pkg/service/auth"
	"github.com/monegment/monegment/pkg/service/balance"
	"github.com/monegment/monegment/pkg/service/extract"
	"github.com/monegment/monegment/pkg/service/goal"
	"github.com/monegment/monegment/pkg/service/report"
	"github.com/monegment/monegment/pkg/service/wallet"
)

// Deps contains the infrastructure the services are built on.
type Deps struct {
	Uow       repository.UnitOfWork
	EventBus  eventbus.Bus
	Extractor extract.Extractor
	Notifier  notify.Notifier
	Logger    *slog.Logger
}

type App struct {
	Deps             *Deps
	Config           *config.App
	AuthService      *auth.Service
	BalanceService   *balance.Service
	WalletService    *wallet.Service
	GoalService      *goal.Service
	AdvisorService   *advisor.Service
	ReportService    *report.Service
	ExtractorService *extract.Service
}

func New(deps *Deps, cfg *config.App) *App {
	if deps.Notifier == nil {
		deps.Notifier = notify.LogNotifier{Logger: deps.Logger}
	}
	app := &App{
		Deps:   deps,
		Config: cfg,
	}
	app.setupEventBus()

	app.AuthService = auth.New(cfg.Auth.Jwt, deps.Logger)
	app.BalanceService = balance.New(deps.Uow, deps.Logger)
	app.WalletService = wallet.New(deps.Uow, deps.EventBus, deps.Logger)
	app.GoalService = goal.New(deps.Uow, deps.Logger)
	app.AdvisorService = advisor.New(deps.Uow, cfg.Advisor, deps.Logger)
	app.ReportService = report.New(deps.Uow, deps.Logger, report.WithLocation(cfg.Advisor.Location()))
	app.ExtractorService = extract.New(deps.Extractor, cfg.Access, deps.Logger)
	return app
}
