package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/point-forecast/internal/api/http"
	"github.com/i474232898/point-forecast/internal/geocode"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP API with graceful shutdown on SIGINT/SIGTERM.

Rate-limit state and fetched payloads are shared by every request and live
for the lifetime of the process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rt, err := newStack(ctx, cfg, log)
		if err != nil {
			return err
		}

		var resolver geocode.Resolver
		if cfg.GeocoderEnabled() {
			resolver = geocode.NewGoogleResolver(cfg.GeocoderAPIKey)
		}

		app := fiber.New(fiber.Config{
			AppName:               "point-forecast",
			DisableStartupMessage: true,
			ReadTimeout:           10 * time.Second,
			// A cold request may sit through every fetch retry.
			WriteTimeout: cfg.FetchTimeout*time.Duration(cfg.FetchRetries+1) +
				cfg.FetchRetryCooldown*time.Duration(cfg.FetchRetries) + 10*time.Second,
			ErrorHandler: httpapi.ErrorHandler,
		})

		app.Use(logger.New())
		app.Use(recover.New())

		httpapi.RegisterRoutes(app, httpapi.Options{
			Deps:     rt.deps,
			Resolver: resolver,
			Registry: rt.recorder.Registry(),
			Stats:    rt.stats,
		})

		go func() {
			log.Info("listening", zap.String("port", cfg.Port))
			if err := app.Listen(":" + cfg.Port); err != nil {
				log.Error("fiber server stopped", zap.Error(err))
				stop()
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Warn("error during shutdown", zap.Error(err))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
