package main

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"gastos/internal/cache"
	"gastos/internal/cli"
	"gastos/internal/core"
	apphttp "gastos/internal/http"
	"gastos/internal/log"
	"gastos/internal/services"
)

const categoryCacheSize = 16

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger("info")
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	result := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	categories := cache.NewLRUCache[[]core.Category](categoryCacheSize, cfg.CacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(categories)
	cacheManager.Start(ctx, cfg.CacheTTL)

	var publisher services.SummaryPublisher
	if result.Events != nil {
		publisher = result.Events
	}

	ledger := services.NewLedgerService(result.Store, categories)
	summaries := services.NewSummaryService(result.Store, publisher).
		WithLogger(logger.WithComponent(log.ComponentSummary))

	srv := apphttp.NewServer(":"+cfg.Port, ledger, summaries, logger, apphttp.Options{})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting gastos server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"amqp", result.Events != nil)
		return srv.ListenAndServe()
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				logger.Warn("Shutdown timeout reached", "timeout", cfg.ShutdownTimeout)
			}
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
	}

	cancel()
	waitCache(cacheManager, time.Second)
	logger.Info("Server stopped gracefully")
}

func waitCache(m *cache.Manager, timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		m.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
