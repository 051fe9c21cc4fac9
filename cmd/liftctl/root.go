package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/2beens/liftdiary/internal/cache"
	"github.com/2beens/liftdiary/internal/config"
	"github.com/2beens/liftdiary/internal/db"
	"github.com/2beens/liftdiary/internal/logging"
	"github.com/2beens/liftdiary/internal/telemetry/metrics"
	"github.com/2beens/liftdiary/internal/workouts"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const connectTimeout = 10 * time.Second

var (
	envName    string
	configPath string
	envFile    string
	logLevel   string

	cfg             *config.Config
	dbPool          *pgxpool.Pool
	workoutsService *workouts.Service
)

var rootCmd = &cobra.Command{
	Use:           "liftctl",
	Short:         "liftdiary operations and data tool",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `liftctl talks directly to the liftdiary database.

EXAMPLES:

  $ liftctl schema apply                                   # Create the tables if missing
  $ liftctl exercises add "Bench Press"                    # Add to the exercise catalog
  $ liftctl exercises list
  $ liftctl workouts list --user user_123                  # All workouts, most recent first
  $ liftctl workouts day --user user_123 --date 2024-01-15 # One day, with exercises and sets
  $ liftctl workouts stats --user user_123                 # Today's summary
  $ liftctl mcp                                            # MCP server over stdio

Secrets (LIFTDIARY_POSTGRES_PASS) are read from the environment or the --env-file.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file: %w", err)
		}

		var err error
		cfg, err = config.Load(envName, configPath)
		if err != nil {
			return err
		}

		// stdout belongs to the command output (and to the MCP protocol)
		logging.Setup(logging.LoggerSetupParams{
			LogLevel:    logLevel,
			Environment: cfg.Environment,
		})
		log.SetOutput(os.Stderr)

		ctx, cancel := context.WithTimeout(cmd.Context(), connectTimeout)
		defer cancel()

		dbPool, err = db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:     cfg.PostgresHost,
			DBPort:     cfg.PostgresPort,
			DBName:     cfg.PostgresDBName,
			DBUser:     cfg.PostgresUser,
			DBPassword: os.Getenv("LIFTDIARY_POSTGRES_PASS"),
		})
		if err != nil {
			return fmt.Errorf("db pool: %w", err)
		}

		loc, err := cfg.Location()
		if err != nil {
			return err
		}
		boundary, err := workouts.ParseBoundary(cfg.DayBoundary)
		if err != nil {
			return err
		}

		workoutsService = workouts.NewService(
			workouts.NewRepo(dbPool),
			cache.NewFreeCache(cfg.CatalogCacheMB),
			metrics.NewManager("liftdiary", "liftctl", prometheus.NewRegistry()),
			loc,
			boundary,
		)
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if dbPool != nil {
			dbPool.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", "development", "environment [prod | production | dev | development]")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./config.toml", "path for the TOML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional file with secrets")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")
}
