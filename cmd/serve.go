package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soteriahealth/soteria/config"
	"github.com/soteriahealth/soteria/routes"
	"github.com/soteriahealth/soteria/utils"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Migrate the schema, seed the milestone catalog and serve the API
until SIGINT or SIGTERM.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db)
	if err := config.Migrate(db); err != nil {
		return err
	}

	engine := newEngine(cfg, db)
	if err := engine.SeedCatalog(cmd.Context()); err != nil {
		return fmt.Errorf("seeding milestone catalog: %w", err)
	}

	r := routes.SetupRouter(cfg, db, engine)
	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(cmd.Context(), ":"+cfg.AppPort, r); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}
