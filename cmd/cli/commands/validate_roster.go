package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/shift-optimiser/pkg/core/services"
)

// ValidateRosterCmd creates the validateRoster command
func ValidateRosterCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validateRoster",
		Short: "Check the roster file can be optimised with the current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rosterPath, _ := cmd.Flags().GetString("roster")

			summary, err := services.ValidateRoster(app.Cfg, rosterPath, app.Logger)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "\n✓ Roster is valid: %d staff, %d incompatible pairs\n\n",
				len(summary.Roster.Staff), len(summary.Roster.Incompatible))

			fmt.Fprintf(w, "%-24s %-10s %s\n", "Staff", "Desired", "Unavailable")
			for _, s := range summary.Roster.Staff {
				fmt.Fprintf(w, "%-24s %-10s %s\n",
					s.DisplayName(),
					fmt.Sprintf("%dh", summary.DesiredHours[s.ID]),
					fmt.Sprintf("%dh", summary.UnavailableHours[s.ID]))
			}

			fmt.Fprintf(w, "\nSlots: %d, staff-hours needed for minimum cover: %d, available: %d\n",
				summary.Slots, summary.MinCoverHours, summary.AvailableHours)
			if summary.AvailableHours < summary.MinCoverHours {
				fmt.Fprintf(w, "%s⚠ Minimum staffing cannot be met in every slot%s\n", colorYellow, colorReset)
			}
			fmt.Fprintln(w)

			return nil
		},
	}

	cmd.Flags().String("roster", "", "Roster file (defaults to rosterFile from the config)")

	return cmd
}
