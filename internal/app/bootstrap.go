package app

import (
	"log/slog"

	"matchbook/internal/engine"
	"matchbook/internal/infra"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config *infra.Config
	Book   *engine.Book
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads configuration, installs the logger and builds the
// order book.
func (b *Bootstrap) Initialize(configPath string) error {
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	b.Book = engine.NewBook(
		engine.WithLogger(logger),
		engine.WithMetrics(infra.GlobalMetrics),
	)
	slog.Info("order book initialized",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version))

	return nil
}
