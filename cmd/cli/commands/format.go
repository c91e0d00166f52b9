package commands

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/jakechorley/shift-optimiser/pkg/core/model"
	"github.com/jakechorley/shift-optimiser/pkg/core/optimiser"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
)

const maxViolationsShown = 20

// hourRanges renders the hours staff works on day as clock ranges, e.g. "09-12, 14-16"
func hourRanges(schedule *optimiser.Schedule, staff, day, startHour int) string {
	var ranges []string
	hours := schedule.Shape().Hours
	for h := 0; h < hours; {
		if !schedule.Assigned(staff, day, h) {
			h++
			continue
		}
		from := h
		for h < hours && schedule.Assigned(staff, day, h) {
			h++
		}
		ranges = append(ranges, fmt.Sprintf("%02d-%02d", (startHour+from)%24, (startHour+h)%24))
	}
	return strings.Join(ranges, ", ")
}

// dayLabel names day d of the horizon, by date when the start date is known
func dayLabel(start time.Time, d int) string {
	if start.IsZero() {
		return fmt.Sprintf("Day %d", d+1)
	}
	return start.AddDate(0, 0, d).Format("Mon 02")
}

func staffName(roster *model.Roster, i int) string {
	if roster == nil || i < 0 || i >= len(roster.Staff) {
		return "-"
	}
	return roster.Staff[i].DisplayName()
}

// writeSchedule prints one row per staff member with their worked hours on each day
func writeSchedule(w io.Writer, schedule *optimiser.Schedule, roster *model.Roster, start time.Time, startHour int) {
	shape := schedule.Shape()

	nameColWidth := 12
	for i := range shape.Staff {
		nameColWidth = max(nameColWidth, len(staffName(roster, i))+2)
	}

	dayColWidth := 14
	for st := range shape.Staff {
		for d := range shape.Days {
			dayColWidth = max(dayColWidth, len(hourRanges(schedule, st, d, startHour))+2)
		}
	}

	fmt.Fprintf(w, "%-*s", nameColWidth, "")
	for d := range shape.Days {
		fmt.Fprintf(w, "%-*s", dayColWidth, dayLabel(start, d))
	}
	fmt.Fprintln(w, "Total")

	fmt.Fprintln(w, strings.Repeat("-", nameColWidth+dayColWidth*shape.Days+5))

	for st := range shape.Staff {
		fmt.Fprintf(w, "%-*s", nameColWidth, staffName(roster, st))
		for d := range shape.Days {
			cell := hourRanges(schedule, st, d, startHour)
			if cell == "" {
				fmt.Fprintf(w, "%s%-*s%s", colorDim, dayColWidth, "off", colorReset)
				continue
			}
			fmt.Fprintf(w, "%-*s", dayColWidth, cell)
		}
		fmt.Fprintf(w, "%dh\n", schedule.HoursFor(st))
	}
}

// writeBreakdown prints the fitness contribution of each penalty category, worst first
func writeBreakdown(w io.Writer, breakdown map[optimiser.Category]float64) {
	categories := make([]optimiser.Category, 0, len(breakdown))
	for c := range breakdown {
		categories = append(categories, c)
	}
	slices.SortFunc(categories, func(a, b optimiser.Category) int {
		if breakdown[a] != breakdown[b] {
			if breakdown[a] < breakdown[b] {
				return -1
			}
			return 1
		}
		return strings.Compare(string(a), string(b))
	})

	for _, c := range categories {
		value := breakdown[c]
		color := colorGreen
		if value < 0 {
			color = colorRed
		}
		fmt.Fprintf(w, "  %-18s %s%10.1f%s\n", c, color, value, colorReset)
	}
}

// describeViolation explains a violation in one line
func describeViolation(v optimiser.Violation, roster *model.Roster, start time.Time, startHour int) string {
	var parts []string
	if v.Staff >= 0 {
		who := staffName(roster, v.Staff)
		if v.OtherStaff >= 0 {
			who += " & " + staffName(roster, v.OtherStaff)
		}
		parts = append(parts, who)
	}
	if v.Day >= 0 {
		when := dayLabel(start, v.Day)
		if v.Hour >= 0 {
			when += fmt.Sprintf(" %02d:00", (startHour+v.Hour)%24)
		}
		parts = append(parts, when)
	}

	where := ""
	if len(parts) > 0 {
		where = " (" + strings.Join(parts, ", ") + ")"
	}

	cost := 0.0
	if v.Penalty != 0 {
		cost = -v.Penalty
	}
	return fmt.Sprintf("%s x%d%s: %.1f", v.Kind, v.Magnitude, where, cost)
}

// writeViolations prints the costliest violations, up to limit
func writeViolations(w io.Writer, violations []optimiser.Violation, roster *model.Roster, start time.Time, startHour, limit int) {
	if len(violations) == 0 {
		fmt.Fprintf(w, "  %sNo rules broken%s\n", colorGreen, colorReset)
		return
	}

	sorted := slices.Clone(violations)
	slices.SortStableFunc(sorted, func(a, b optimiser.Violation) int {
		switch {
		case a.Penalty > b.Penalty:
			return -1
		case a.Penalty < b.Penalty:
			return 1
		}
		return 0
	})

	for i, v := range sorted {
		if i == limit {
			fmt.Fprintf(w, "  %s... and %d more%s\n", colorDim, len(sorted)-limit, colorReset)
			break
		}
		color := colorYellow
		if v.Penalty == 0 {
			color = colorDim
		}
		fmt.Fprintf(w, "  %s%s%s\n", color, describeViolation(v, roster, start, startHour), colorReset)
	}
}
