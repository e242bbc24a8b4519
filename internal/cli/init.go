// Package cli provides common CLI initialization utilities shared by
// cmd/gastos and cmd/gastos-sync.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"gastos/internal/backend"
	"gastos/internal/config"
	"gastos/internal/core"
	"gastos/internal/log"
)

// Process exit codes.
const (
	ExitConfig           = 1
	ExitStoreUnavailable = 3
)

// exit is replaced in tests.
var exit = os.Exit

// SetupLogger builds the process logger for the given LOG_LEVEL and makes it
// the slog default. Unknown levels fall back to info.
func SetupLogger(level string) *log.Logger {
	cfg := log.DefaultConfig()
	if l, err := log.ParseLevel(level); err == nil {
		cfg.Level = l
	}
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it with validate.
// The process exits with ExitConfig on failure.
func LoadAndValidateConfig(logger *log.Logger, validate ...func(*config.Config) error) *config.Config {
	cfg := config.Load()
	checks := append([]func(*config.Config) error{(*config.Config).Validate}, validate...)
	for _, check := range checks {
		if err := check(cfg); err != nil {
			logger.Error("Configuration validation failed", "error", err)
			exit(ExitConfig)
			return nil
		}
	}
	return cfg
}

// InitBackend opens the configured store. A store that cannot be opened
// exits with ExitStoreUnavailable, any other failure with ExitConfig.
func InitBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) *backend.BackendResult {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		exit(ExitConfig)
		return nil
	}

	result, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		code := ExitConfig
		if errors.Is(err, core.ErrStoreUnavailable) {
			code = ExitStoreUnavailable
		}
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend, "exit_code", code)
		exit(code)
		return nil
	}
	return result
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
