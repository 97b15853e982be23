package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qenex-ai/epp-registry-platform/internal/logger"
	"github.com/qenex-ai/epp-registry-platform/pkg/config"
	"github.com/qenex-ai/epp-registry-platform/pkg/store/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending postgres schema migrations",
	Long: `Apply pending schema migrations to the postgres store configured
under store.postgres. A no-op for the memory driver, which has no schema to
migrate.`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if cfg.Store.Driver != "postgres" {
		fmt.Println("store.driver is not \"postgres\"; nothing to migrate")
		return nil
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	if err := postgres.RunMigrations(context.Background(), &cfg.Store.Postgres, logger.With("component", "migrate")); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	fmt.Println("migrations applied")
	return nil
}
