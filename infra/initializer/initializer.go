// Package initializer builds the concrete infrastructure behind app.Deps from configuration.
package initializer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/monegment/monegment/infra"
	infra_crypto "github.com/monegment/monegment/infra/crypto"
	infra_eventbus "github.com/monegment/monegment/infra/eventbus"
	infra_extractor "github.com/monegment/monegment/infra/extractor"
	infra_repository "github.com/monegment/monegment/infra/repository"
	"github.com/monegment/monegment/pkg/app"
	"github.com/monegment/monegment/pkg/config"
	"github.com/monegment/monegment/pkg/eventbus"
	"github.com/monegment/monegment/pkg/service/extract"
)

// InitializeDependencies connects to the database, migrates it and builds the unit of
// work, event bus and extractor. The returned cleanup stops background workers.
func InitializeDependencies(ctx context.Context, cfg *config.App) (deps *app.Deps, cleanup func(), err error) {
	logger := setupLogger(cfg.Log)
	deps = &app.Deps{Logger: logger}
	cleanup = func() {}

	fieldCodec, err := infra_crypto.NewCodec(cfg.Security.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize field codec: %w", err)
	}
	if cfg.Security.EncryptionKey == "" {
		logger.Warn("SECURITY_ENCRYPTION_KEY is empty, storing fields in plaintext")
	}

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := infra.AutoMigrate(db); err != nil {
		return nil, nil, err
	}
	deps.Uow = infra_repository.NewUoW(db, fieldCodec)

	bus, closeBus, err := initEventBus(cfg.EventBus, logger)
	if err != nil {
		return nil, nil, err
	}
	deps.EventBus = bus
	cleanup = closeBus

	deps.Extractor, err = initExtractor(ctx, cfg.Extractor, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	logger.Info("Dependencies initialized", "env", cfg.Env, "eventBus", cfg.EventBus.Driver)
	return deps, cleanup, nil
}

func initEventBus(cfg *config.EventBus, logger *slog.Logger) (eventbus.Bus, func(), error) {
	driver := "memory"
	if cfg != nil && cfg.Driver != "" {
		driver = cfg.Driver
	}
	switch driver {
	case "memory":
		return infra_eventbus.NewWithMemory(logger), func() {}, nil
	case "memory-async":
		size := 0
		if cfg != nil {
			size = cfg.QueueSize
		}
		bus := infra_eventbus.NewWithMemoryAsync(logger, size)
		return bus, bus.Close, nil
	}
	return nil, nil, fmt.Errorf("unsupported event bus driver: %q", driver)
}

// initExtractor returns a nil extractor when none is configured; extraction then fails
// with extract.ErrUnavailable while the rest of the app works.
func initExtractor(ctx context.Context, cfg *config.Extractor, logger *slog.Logger) (extract.Extractor, error) {
	if cfg == nil || cfg.ApiKey == "" {
		logger.Warn("EXTRACTOR_API_KEY is empty, transaction extraction disabled")
		return nil, nil
	}
	switch cfg.Provider {
	case "", "gemini":
		g, err := infra_extractor.NewGemini(ctx, cfg, logger)
		if errors.Is(err, extract.ErrUnavailable) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to initialize extractor: %w", err)
		}
		return g, nil
	}
	return nil, fmt.Errorf("unsupported extractor provider: %q", cfg.Provider)
}
