package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"prospect/internal/backend"
	"prospect/internal/cache"
	"prospect/internal/cli"
	"prospect/internal/config"
	apphttp "prospect/internal/http"
	applog "prospect/internal/log"
	"prospect/internal/services"

	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 30 * time.Second
	sweepInterval   = 10 * time.Minute
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.SignalContext(logger)
	err := run(ctx, logger, cfg)
	cancel()
	if err != nil {
		cli.Fatal(logger, "Server stopped with error", err)
	}
	logger.Info("Server stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}

func run(ctx context.Context, logger *applog.Logger, cfg *config.Config) error {
	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		return fmt.Errorf("backend configuration: %w", err)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendConfig)
	if err != nil {
		return fmt.Errorf("initialize %s backend: %w", cfg.DataBackend, err)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	financeService := services.NewFinanceService(result.Store, cfg.CacheSize, cfg.CacheTTL)
	var publisher services.ChangePublisher
	if result.AMQP != nil {
		publisher = result.AMQP
	}
	recordService := services.NewRecordService(result.Store, financeService, publisher)

	var ready func(context.Context) error
	if p, ok := result.Store.(backend.Pinger); ok {
		ready = p.Ping
	}
	srv := apphttp.NewServer(apphttp.Options{
		Addr:   ":" + cfg.Port,
		Logger: logger,
		Ready:  ready,
	}, recordService, financeService)

	janitor := cache.NewJanitor(logger.WithComponent(applog.ComponentCache).Logger, financeService.Cleaners()...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting prospect server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			applog.FieldOperation, applog.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return janitor.Run(gctx, sweepInterval)
	})
	if result.AMQP != nil {
		g.Go(func() error {
			err := result.AMQP.ConsumeRecordChanges(gctx, financeService.HandleRecordChanged)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	return g.Wait()
}
