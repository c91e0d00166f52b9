package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-optimiser/pkg/core/services"
	"github.com/jakechorley/shift-optimiser/pkg/report"
)

// OptimiseCmd creates the optimise command
func OptimiseCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimise",
		Short: "Optimise a schedule for the roster and save the run",
		Long: `Runs the genetic optimiser over the configured horizon and prints the best schedule,
its fitness breakdown and the rules it still breaks.

The run is saved when a database is configured, unless --dry-run is set.
Press Ctrl-C to stop early; the best schedule found so far is still printed and saved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rosterPath, _ := cmd.Flags().GetString("roster")
			seed, _ := cmd.Flags().GetUint64("seed")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			plotPath, _ := cmd.Flags().GetString("plot")

			opts := services.OptimiseOptions{Seed: seed, DryRun: dryRun}
			if cmd.Flags().Changed("generations") {
				generations, _ := cmd.Flags().GetInt("generations")
				if generations < 0 {
					return fmt.Errorf("generations must not be negative, got %d", generations)
				}
				opts.Generations = &generations
			}

			app.Logger.Debug("optimise command",
				zap.String("roster", rosterPath),
				zap.Uint64("seed", seed),
				zap.Bool("dry_run", dryRun),
				zap.String("plot", plotPath))

			roster, err := services.LoadRoster(app.Cfg, rosterPath)
			if err != nil {
				return err
			}

			out, err := services.OptimiseSchedule(app.Ctx, app.RunWriter(), app.Cfg, roster, app.Logger, opts)
			if err != nil {
				return err
			}

			start, err := app.Cfg.Horizon.Start()
			if err != nil {
				return err
			}

			result := out.Result
			w := cmd.OutOrStdout()

			fmt.Fprintf(w, "\n✓ Optimisation finished: %s\n\n", result)
			writeSchedule(w, result.Schedule, roster, start, app.Cfg.Horizon.StartHour)

			fmt.Fprintf(w, "\nFitness breakdown (total %.1f):\n", result.Fitness)
			writeBreakdown(w, result.Breakdown)

			fmt.Fprintf(w, "\nViolations (%d):\n", len(result.Violations))
			writeViolations(w, result.Violations, roster, start, app.Cfg.Horizon.StartHour, maxViolationsShown)

			fmt.Fprintf(w, "\nSeed: %d\n", result.Seed)
			switch {
			case out.Persisted:
				fmt.Fprintf(w, "Run ID: %s (saved)\n", out.RunID)
			case dryRun:
				fmt.Fprintf(w, "%sDry run: not saved%s\n", colorDim, colorReset)
			default:
				fmt.Fprintf(w, "%sNo database configured: not saved%s\n", colorDim, colorReset)
			}

			if plotPath != "" {
				title := fmt.Sprintf("Fitness by generation (seed %d)", result.Seed)
				if err := report.PlotEvolution(result.Stats, title, plotPath); err != nil {
					return fmt.Errorf("failed to plot evolution: %w", err)
				}
				fmt.Fprintf(w, "Evolution chart written to %s\n", plotPath)
			}
			fmt.Fprintln(w)

			return nil
		},
	}

	cmd.Flags().String("roster", "", "Roster file (defaults to rosterFile from the config)")
	cmd.Flags().Uint64("seed", 0, "Seed for the random source (0 draws one)")
	cmd.Flags().Int("generations", 0, "Override the configured generation budget")
	cmd.Flags().Bool("dry-run", false, "Run without saving to database")
	cmd.Flags().String("plot", "", "Write a chart of fitness by generation to this file (.png, .svg, .pdf)")

	return cmd
}
