package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"partyplnr/internal/common/camunda"
	"partyplnr/internal/common/config"
	"partyplnr/internal/common/logger"
	"partyplnr/internal/server"
	matchvendors "partyplnr/internal/workers/chat/match-vendors"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat HTTP API (and the workflow worker when enabled)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer logger.Unwrap(log).Sync()

	log.Info("Starting partyplnr...", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"catalog":     cfg.Catalog.Source,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Camunda.Enabled {
		w, err := startWorker(ctx, cfg, a, log)
		if err != nil {
			return err
		}
		defer w.Stop(context.Background())
	}

	srv := server.New(cfg.Server, a.chat, log, server.WithReadiness(func() bool {
		return a.catalog != nil && a.catalog.Len() > 0
	}))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received, stopping server...", nil)
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during HTTP shutdown", map[string]interface{}{"error": err})
	}

	log.Info("partyplnr stopped gracefully", nil)
	return nil
}

func startWorker(ctx context.Context, cfg *config.Config, a *app, log logger.Logger) (*camunda.CamundaWorker, error) {
	var client *camunda.Client
	err := retryWithBackoff(ctx, func() error {
		var err error
		client, err = camunda.NewClientWithConfig(camunda.ClientConfigFrom(cfg.Camunda))
		return err
	}, connectRetries, config.GetDuration(2000), log, "Zeebe client initialization")
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)

	handler := matchvendors.NewHandler(&matchvendors.Config{
		Timeout: config.GetDuration(cfg.Camunda.RequestTimeout),
	}, a.chat, log)

	w := camunda.NewWorker(
		client.GetClient(),
		matchvendors.TaskType,
		cfg.Camunda.MaxJobsActive,
		config.GetDuration(cfg.Camunda.Timeout),
		handler,
		log,
	)
	w.Start()
	return w, nil
}
