// Command gallery maintains the painting gallery stored in PostgreSQL.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/pea/internal/config"
	"github.com/saturnino-fabrica-de-software/pea/internal/database"
	"github.com/saturnino-fabrica-de-software/pea/internal/geometry"
	"github.com/saturnino-fabrica-de-software/pea/internal/repository"
)

var (
	// dbURL overrides DATABASE_URL
	dbURL string

	pool *pgxpool.Pool
	repo *repository.GalleryRepository
	cfg  *config.ToolConfig
)

var rootCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Import, inspect and export the portrait gallery",
	Long: `gallery moves painted-face entries between YAML manifests and the
gallery_entries table the server loads when GALLERY_SOURCE=postgres.
Raw landmarks in a manifest are normalized on import.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if dbURL != "" {
			if err := os.Setenv("DATABASE_URL", dbURL); err != nil {
				return err
			}
		}

		var err error
		cfg, err = config.LoadTool()
		if err != nil {
			return err
		}

		pool, err = database.NewPgxPool(cmd.Context(), database.DefaultPoolConfig(cfg.DatabaseURL))
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		repo = repository.NewGalleryRepository(pool)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if pool != nil {
			pool.Close()
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "PostgreSQL connection string (default: $DATABASE_URL)")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

func normalizer() (*geometry.Normalizer, error) {
	layout := geometry.DefaultLayout()
	if cfg != nil && cfg.LayoutFile != "" {
		var err error
		layout, err = geometry.LoadLayout(cfg.LayoutFile)
		if err != nil {
			return nil, err
		}
	}
	return geometry.NewNormalizer(layout)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
