package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-optimiser/cmd/cli/commands"
	"github.com/jakechorley/shift-optimiser/internal/config"
	"github.com/jakechorley/shift-optimiser/pkg/db"
	"github.com/jakechorley/shift-optimiser/pkg/postgres"
	"github.com/jakechorley/shift-optimiser/pkg/utils/logging"
)

var (
	env     string
	verbose bool
	app     = &commands.AppContext{}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	app.Ctx = ctx

	rootCmd := &cobra.Command{
		Use:   "shift-optimiser",
		Short: "Shift Optimiser CLI - Build staff schedules with a genetic algorithm",
		Long: `A CLI tool for optimising hourly staff schedules against coverage, working-hour,
preference and compatibility rules, saving runs and publishing schedules to Google Sheets.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Database != nil {
				app.Database.Close()
			}
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (selects shift_config.<env>.yaml, e.g. test, prod)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to the console")

	rootCmd.AddCommand(commands.OptimiseCmd(app))
	rootCmd.AddCommand(commands.ValidateRosterCmd(app))
	rootCmd.AddCommand(commands.ViewRunsCmd(app))
	rootCmd.AddCommand(commands.PlotRunCmd(app))
	rootCmd.AddCommand(commands.PublishScheduleCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config and, when configured, the database
func initApp() error {
	var err error
	app.Env = env

	app.Logger, err = logging.InitLogger(logging.Options{Env: logFilePrefix(env), Verbose: verbose})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Debug("Starting application", zap.String("environment", env))

	app.Logger.Debug("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully", zap.String("roster_file", app.Cfg.RosterFile))

	switch {
	case app.Cfg.DatabaseURL != "":
		app.Logger.Info("Connecting to database")
		database, err := postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := database.RunMigrations(app.Ctx); err != nil {
			database.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		app.Database = database

	case app.Cfg.DatabaseSheetID != "":
		client, err := app.SheetsClient()
		if err != nil {
			return err
		}

		app.Logger.Info("Opening sheets database", zap.String("spreadsheet_id", app.Cfg.DatabaseSheetID))
		database, err := db.NewSheetsDB(client, app.Cfg.DatabaseSheetID)
		if err != nil {
			return err
		}
		app.Database = database

	default:
		app.Logger.Debug("No database configured, runs will not be saved")
		return nil
	}

	app.Logger.Debug("Database initialized successfully")

	return nil
}

func logFilePrefix(env string) string {
	if env == "" {
		return "shift"
	}
	return "shift_" + env
}
