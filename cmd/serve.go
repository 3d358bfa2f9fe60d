package main

import (
	"betblocker/internal/api"
	"betblocker/internal/api/handler/v1handler"
	"betblocker/internal/config"
	"betblocker/pkg/logger"
	"betblocker/pkg/metrics"
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func setupServer(ctx context.Context, cfg *config.Config) func(ctx context.Context) {
	metrics.Register()

	server, err := api.NewServer(ctx, api.Deps{Deps: v1handler.Deps{
		Blocklist:        newBlocklist(cfg),
		Builder:          newBuilder(cfg),
		Signer:           newSigner(cfg),
		DefaultProfileID: cfg.NextDNS.ProfileID,
		RemovalPassword:  cfg.Profile.RemovalPassword,
		HasAPIKey:        cfg.NextDNS.APIKey != "",
	}}, api.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...",
			zap.String("addr", cfg.HTTP.Addr),
			zap.Bool("api_key_configured", cfg.NextDNS.APIKey != ""),
			zap.Bool("signing_configured", cfg.SigningConfigured()))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts the API server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			stopWebserver := setupServer(ctx, cfg)

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)
		},
	}

	return cmd
}
