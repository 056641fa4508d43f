package cmd

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/soteriahealth/soteria/config"
	"github.com/soteriahealth/soteria/services"
	"github.com/soteriahealth/soteria/utils"
)

var configPath string

// NewRootCmd creates the soteria root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "soteria",
		Short: "Soteria progress engine",
		Long: `Soteria tracks daily mind, body and soul routines and derives
streaks, the harmony score, avatar light states and milestones.

Run "soteria serve" to start the HTTP API.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to the JSON config file")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewResetCmd())
	cmd.AddCommand(NewHashKeyCmd())
	cmd.AddCommand(NewTokenCmd())
	cmd.AddCommand(NewVersionCmd())
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig reads .env, the config file and the environment, then starts
// the logger.
func loadConfig() (config.AppConfig, error) {
	_ = godotenv.Load()
	cfg := config.LoadFrom(configPath)
	if err := utils.InitLogger(cfg); err != nil {
		return cfg, fmt.Errorf("initializing logger: %w", err)
	}
	return cfg, nil
}

func openDatabase(cfg config.AppConfig) (*gorm.DB, error) {
	db, err := config.OpenDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

func closeDatabase(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func newEngine(cfg config.AppConfig, db *gorm.DB) *services.Engine {
	rc := utils.GetRedis()
	return services.NewEngine(db, services.EngineConfig{
		Sessions:        utils.NewSessionStore(rc, time.Duration(cfg.SessionTTLMinutes)*time.Minute),
		Cache:           utils.NewRedisCache(rc),
		CacheTTL:        time.Duration(cfg.CacheTTLSeconds) * time.Second,
		DefaultTimezone: cfg.DefaultTimezone,
	})
}
