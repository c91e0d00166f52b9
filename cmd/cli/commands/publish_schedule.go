package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-optimiser/pkg/core/model"
	"github.com/jakechorley/shift-optimiser/pkg/core/services"
)

// PublishScheduleCmd creates the publishSchedule command
func PublishScheduleCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publishSchedule [run_id]",
		Short: "Publish a saved run's schedule to the schedule sheet (defaults to latest run)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var runID string
			if len(args) > 0 {
				runID = args[0]
			}
			rosterPath, _ := cmd.Flags().GetString("roster")

			database, err := app.RequireDatabase()
			if err != nil {
				return err
			}

			app.Logger.Debug("publishSchedule command", zap.String("run_id", runID))

			// Names are a nicety; publish with staff IDs if the roster cannot be read
			var roster *model.Roster
			if loaded, err := services.LoadRoster(app.Cfg, rosterPath); err != nil {
				app.Logger.Warn("Failed to load roster, publishing staff IDs", zap.Error(err))
			} else {
				roster = loaded
			}

			client, err := app.SheetsClient()
			if err != nil {
				return err
			}

			published, err := services.PublishSchedule(app.Ctx, database, client, app.Cfg, roster, app.Logger, runID)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n✓ Schedule published to tab %q\n\n", published.Title)
			return nil
		},
	}

	cmd.Flags().String("roster", "", "Roster file used for staff names (defaults to rosterFile from the config)")

	return cmd
}
