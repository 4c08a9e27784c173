package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mrops-br/restyle-storefront/internal/app/service"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/auth"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/config"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/http"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/http/handler"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/http/view"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/repository/file"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/telemetry"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "ReStyle second-hand fashion storefront",
	Long: `storefront serves the ReStyle marketplace: catalog pages, search,
product details and a per-visitor favorites list kept in the browser's
favorites-storage cookie.

Run without a subcommand to start the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", os.Getenv("STOREFRONT_CONFIG"),
		"Config file (yaml, json or toml); env: STOREFRONT_CONFIG")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(catalogCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}

	var telem *telemetry.Telemetry
	if cfg.OTLP.Enabled {
		telem, err = telemetry.NewTelemetry(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize telemetry: %w", err)
		}
	} else {
		telem = telemetry.NewNoOpTelemetry(cfg)
	}

	// Ensure telemetry is flushed on exit
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telem.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Error shutting down telemetry: %v\n", err)
		}
	}()

	tracer := telem.TracerProvider.Tracer(http.InstrumentationName)
	meter := telem.MeterProvider.Meter(http.InstrumentationName)
	logger := telem.Logger

	logger.Info("Starting ReStyle storefront",
		slog.Bool("favorites.persist", cfg.Favorites.Persist),
		slog.Bool("otel.enabled", cfg.OTLP.Enabled),
	)

	repo, err := file.NewProductRepository(cfg.Catalog.Path, tracer, logger)
	if err != nil {
		return err
	}

	authenticator, err := auth.NewAuthenticator(&cfg.Auth, cfg.Favorites.CookieSecure, logger)
	if err != nil {
		return err
	}

	renderer, err := view.NewRenderer()
	if err != nil {
		return err
	}

	productService := service.NewProductService(repo, tracer, meter, logger)
	favoritesService := service.NewFavoritesService(repo, tracer, meter, logger)

	server := http.NewServer(cfg, http.Handlers{
		Pages:     handler.NewPageHandler(productService, favoritesService, renderer, logger),
		Products:  handler.NewProductHandler(productService, logger),
		Favorites: handler.NewFavoritesHandler(favoritesService, logger),
		Auth:      handler.NewAuthHandler(authenticator, favoritesService, renderer, logger),
	}, authenticator, telem)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped")
	return nil
}
