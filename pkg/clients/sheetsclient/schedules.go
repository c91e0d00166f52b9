package sheetsclient

import (
	"fmt"
	"strings"
)

// PublishedSchedule is a schedule laid out as a grid: one row per hour, one column per day
type PublishedSchedule struct {
	// Title names the tab, e.g. "Schedule Mon Oct 06 2025 (1a2b3c4d)"
	Title string

	// DayLabels head the day columns
	DayLabels []string

	// HourLabels head the hour rows, e.g. "09:00"
	HourLabels []string

	// Cells[hour][day] lists the names working that slot
	Cells [][][]string

	// Summary rows are written under the grid, one label/value pair per row
	Summary [][2]string
}

// PublishSchedule writes the schedule to its own tab, creating the tab if needed.
// An existing tab with the same title is overwritten.
func (c *Client) PublishSchedule(spreadsheetID string, schedule *PublishedSchedule) error {
	exists, err := c.HasSheet(spreadsheetID, schedule.Title)
	if err != nil {
		return err
	}

	if !exists {
		if _, err := c.CreateSheet(spreadsheetID, schedule.Title); err != nil {
			return fmt.Errorf("failed to create tab: %w", err)
		}
	}

	rows, err := BuildScheduleRows(schedule)
	if err != nil {
		return err
	}

	if err := c.ReplaceValues(spreadsheetID, schedule.Title, rows); err != nil {
		return fmt.Errorf("failed to publish schedule: %w", err)
	}

	return nil
}

// BuildScheduleRows renders the sheet values for a schedule: a header of day labels,
// one row per hour with comma separated names, then a blank row and the summary
func BuildScheduleRows(schedule *PublishedSchedule) ([][]interface{}, error) {
	if len(schedule.Cells) != len(schedule.HourLabels) {
		return nil, fmt.Errorf("schedule has %d hour rows but %d hour labels", len(schedule.Cells), len(schedule.HourLabels))
	}

	header := []interface{}{"Hour"}
	for _, label := range schedule.DayLabels {
		header = append(header, label)
	}

	rows := [][]interface{}{header}
	for h, hourCells := range schedule.Cells {
		if len(hourCells) != len(schedule.DayLabels) {
			return nil, fmt.Errorf("hour row %d has %d days but %d day labels", h, len(hourCells), len(schedule.DayLabels))
		}

		row := []interface{}{schedule.HourLabels[h]}
		for _, names := range hourCells {
			row = append(row, strings.Join(names, ", "))
		}
		rows = append(rows, row)
	}

	if len(schedule.Summary) > 0 {
		rows = append(rows, []interface{}{})
		for _, pair := range schedule.Summary {
			rows = append(rows, []interface{}{pair[0], pair[1]})
		}
	}

	return rows, nil
}
