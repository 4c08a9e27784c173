package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/mrops-br/restyle-storefront/internal/infrastructure/config"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/repository/file"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/telemetry"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Catalog maintenance commands",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a product catalog",
	Long: `Loads and validates a product catalog. Without an argument the configured
catalog.path is checked, falling back to the embedded catalog.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCatalogValidate,
}

func init() {
	catalogCmd.AddCommand(catalogValidateCmd)
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}

	path := cfg.Catalog.Path
	if len(args) == 1 {
		path = args[0]
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: telemetry.ParseLevel(cfg.Log.Level),
	}))

	repo, err := file.NewProductRepository(path, noop.NewTracerProvider().Tracer("catalog"), logger)
	if err != nil {
		return err
	}

	products, err := repo.FindAll(context.Background())
	if err != nil {
		return err
	}

	categories := make(map[string]int)
	for _, p := range products {
		categories[p.CategorySlug()]++
	}

	fmt.Fprintf(cmd.OutOrStdout(), "OK: %d products in %d categories\n", len(products), len(categories))
	return nil
}
