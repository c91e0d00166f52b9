package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-optimiser/internal/config"
	"github.com/jakechorley/shift-optimiser/pkg/core/model"
	"github.com/jakechorley/shift-optimiser/pkg/core/optimiser"
)

// RosterSummary describes a loaded roster
type RosterSummary struct {
	Roster *model.Roster

	// DesiredHours and UnavailableHours are keyed by staff ID
	DesiredHours     map[string]int
	UnavailableHours map[string]int

	// Slots is the number of (day, hour) slots in the horizon
	Slots int

	// MinCoverHours is the staff-hours needed to meet the minimum staffing in every slot
	MinCoverHours int

	// AvailableHours is the staff-hours not marked unavailable
	AvailableHours int
}

// ValidateRoster loads the roster and checks it can be optimised with the current configuration
func ValidateRoster(cfg *config.Config, path string, logger *zap.Logger) (*RosterSummary, error) {
	roster, err := LoadRoster(cfg, path)
	if err != nil {
		return nil, err
	}

	if _, err := optimiser.NewProblem(BuildOptimiserConfig(cfg, len(roster.Staff)), *roster); err != nil {
		return nil, fmt.Errorf("roster cannot be optimised with this configuration: %w", err)
	}

	days, hours := cfg.Horizon.NumDays, cfg.Horizon.NumHours
	summary := &RosterSummary{
		Roster:           roster,
		DesiredHours:     make(map[string]int),
		UnavailableHours: make(map[string]int),
		Slots:            days * hours,
		MinCoverHours:    days * hours * cfg.Staffing.MinStaffPerHour,
	}

	for _, s := range roster.Staff {
		for d := range days {
			for h := range hours {
				switch s.Preference(d, h) {
				case model.Desired:
					summary.DesiredHours[s.ID]++
				case model.Unavailable:
					summary.UnavailableHours[s.ID]++
				}
			}
		}
		summary.AvailableHours += days*hours - summary.UnavailableHours[s.ID]
	}

	if summary.AvailableHours < summary.MinCoverHours {
		logger.Warn("Roster cannot meet minimum staffing in every slot",
			zap.Int("available_hours", summary.AvailableHours),
			zap.Int("min_cover_hours", summary.MinCoverHours))
	}

	return summary, nil
}
