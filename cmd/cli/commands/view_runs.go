package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-optimiser/pkg/core/services"
)

// ViewRunsCmd creates the viewRuns command
func ViewRunsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "viewRuns <count>",
		Short: "List the most recent optimisation runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.Atoi(args[0])
			if err != nil || count < 1 {
				return fmt.Errorf("count must be a positive integer, got: %s", args[0])
			}

			database, err := app.RequireDatabase()
			if err != nil {
				return err
			}

			app.Logger.Debug("viewRuns command", zap.Int("count", count))

			runs, err := services.ViewRuns(app.Ctx, database, app.Logger, count)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(w, "No runs found.")
				return nil
			}

			fmt.Fprintf(w, "\nLast %d runs:\n\n", len(runs))
			fmt.Fprintf(w, "%-38s %-17s %-12s %-8s %-12s %-18s %s\n",
				"Run ID", "Created", "Horizon", "Gens", "Fitness", "Stopped", "Published")
			for _, r := range runs {
				published := colorDim + "no" + colorReset
				if r.PublishedDatetime != "" {
					published = colorGreen + "yes" + colorReset
				}
				fitnessColor := colorYellow
				if r.BestFitness == 0 {
					fitnessColor = colorGreen
				}
				fmt.Fprintf(w, "%-38s %-17s %-12s %-8d %s%-12.1f%s %-18s %s\n",
					r.ID,
					r.CreatedAt.Local().Format("2006-01-02 15:04"),
					fmt.Sprintf("%dx%dx%d", r.NumStaff, r.NumDays, r.NumHours),
					r.Generations,
					fitnessColor, r.BestFitness, colorReset,
					r.StopReason,
					published,
				)
			}
			fmt.Fprintln(w)

			return nil
		},
	}
}
