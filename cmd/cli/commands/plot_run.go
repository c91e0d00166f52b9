package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-optimiser/pkg/core/services"
	"github.com/jakechorley/shift-optimiser/pkg/report"
)

// PlotRunCmd creates the plotRun command
func PlotRunCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plotRun <run_id>",
		Short: "Chart the fitness evolution of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := args[0]
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				out = fmt.Sprintf("evolution_%s.png", runID)
			}

			database, err := app.RequireDatabase()
			if err != nil {
				return err
			}

			app.Logger.Debug("plotRun command", zap.String("run_id", runID), zap.String("out", out))

			run, stats, err := services.RunEvolution(app.Ctx, database, app.Logger, runID)
			if err != nil {
				return err
			}

			title := fmt.Sprintf("Fitness by generation (seed %d)", run.Seed)
			if err := report.PlotEvolution(stats, title, out); err != nil {
				return fmt.Errorf("failed to plot evolution: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n✓ Evolution chart for %d generations written to %s\n\n", len(stats), out)
			return nil
		},
	}

	cmd.Flags().StringP("out", "o", "", "Output file (.png, .svg, .pdf), defaults to evolution_<run_id>.png")

	return cmd
}
