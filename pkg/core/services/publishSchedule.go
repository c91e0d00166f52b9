package services

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-optimiser/internal/config"
	"github.com/jakechorley/shift-optimiser/pkg/clients/sheetsclient"
	"github.com/jakechorley/shift-optimiser/pkg/core/model"
	"github.com/jakechorley/shift-optimiser/pkg/db"
)

// PublishScheduleStore defines the database operations needed for publishing a schedule
type PublishScheduleStore interface {
	GetRuns(ctx context.Context) ([]db.Run, error)
	GetRun(ctx context.Context, runID string) (*db.Run, error)
	GetAssignments(ctx context.Context, runID string) ([]db.Assignment, error)
	SetRunPublishedDatetime(ctx context.Context, runID string, datetime time.Time) error
}

// SchedulePublisher writes a laid-out schedule to a spreadsheet
type SchedulePublisher interface {
	PublishSchedule(spreadsheetID string, schedule *sheetsclient.PublishedSchedule) error
}

// PublishSchedule publishes a persisted run's best schedule to the configured sheet and
// records when it was published. If runID is empty, it defaults to the latest run.
// Staff are shown by name when the roster knows them, otherwise by ID.
func PublishSchedule(
	ctx context.Context,
	store PublishScheduleStore,
	publisher SchedulePublisher,
	cfg *config.Config,
	roster *model.Roster,
	logger *zap.Logger,
	runID string,
) (*sheetsclient.PublishedSchedule, error) {
	if cfg.ScheduleSheetID == "" {
		return nil, fmt.Errorf("no schedule sheet configured (set scheduleSheetID or %sSCHEDULE_SHEET_ID)", config.EnvPrefix)
	}

	logger.Debug("Starting publishSchedule", zap.String("run_id", runID))

	run, err := findRun(ctx, store, runID)
	if err != nil {
		return nil, err
	}

	logger.Debug("Found run",
		zap.String("id", run.ID),
		zap.Int("days", run.NumDays),
		zap.Int("hours", run.NumHours))

	assignments, err := store.GetAssignments(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	published, err := BuildPublishedSchedule(run, assignments, roster)
	if err != nil {
		return nil, err
	}

	logger.Info("Publishing schedule", zap.String("run_id", run.ID), zap.String("tab", published.Title))
	if err := publisher.PublishSchedule(cfg.ScheduleSheetID, published); err != nil {
		return nil, fmt.Errorf("failed to publish schedule: %w", err)
	}

	if err := store.SetRunPublishedDatetime(ctx, run.ID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to record publish time: %w", err)
	}

	return published, nil
}

func findRun(ctx context.Context, store PublishScheduleStore, runID string) (*db.Run, error) {
	if runID != "" {
		run, err := store.GetRun(ctx, runID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch run: %w", err)
		}
		return run, nil
	}

	runs, err := store.GetRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch runs: %w", err)
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no runs found")
	}

	sortRunsNewestFirst(runs)
	return &runs[0], nil
}

// BuildPublishedSchedule lays out a run's assignments as an hours × days grid of staff names
func BuildPublishedSchedule(run *db.Run, assignments []db.Assignment, roster *model.Roster) (*sheetsclient.PublishedSchedule, error) {
	if run.NumDays <= 0 || run.NumHours <= 0 {
		return nil, fmt.Errorf("run %s has an empty horizon", run.ID)
	}

	var start time.Time
	if run.StartDate != "" {
		var err error
		start, err = time.Parse("2006-01-02", run.StartDate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse run start date: %w", err)
		}
	}

	names := make(map[string]string)
	if roster != nil {
		for _, s := range roster.Staff {
			names[s.ID] = s.DisplayName()
		}
	}

	cells := make([][][]string, run.NumHours)
	for h := range cells {
		cells[h] = make([][]string, run.NumDays)
		for d := range cells[h] {
			cells[h][d] = []string{}
		}
	}

	for _, a := range assignments {
		if a.Day < 0 || a.Day >= run.NumDays || a.Hour < 0 || a.Hour >= run.NumHours {
			return nil, fmt.Errorf("assignment for %s at day %d hour %d is outside the run horizon", a.StaffID, a.Day, a.Hour)
		}
		name, ok := names[a.StaffID]
		if !ok {
			name = a.StaffID
		}
		cells[a.Hour][a.Day] = append(cells[a.Hour][a.Day], name)
	}

	for h := range cells {
		for d := range cells[h] {
			slices.Sort(cells[h][d])
		}
	}

	dayLabels := make([]string, run.NumDays)
	for d := range dayLabels {
		if start.IsZero() {
			dayLabels[d] = fmt.Sprintf("Day %d", d+1)
		} else {
			dayLabels[d] = start.AddDate(0, 0, d).Format("Mon Jan 02")
		}
	}

	hourLabels := make([]string, run.NumHours)
	for h := range hourLabels {
		hourLabels[h] = fmt.Sprintf("%02d:00", (run.StartHour+h)%24)
	}

	return &sheetsclient.PublishedSchedule{
		Title:      scheduleTabTitle(run, start),
		DayLabels:  dayLabels,
		HourLabels: hourLabels,
		Cells:      cells,
		Summary: [][2]string{
			{"Run", run.ID},
			{"Seed", strconv.FormatUint(run.Seed, 10)},
			{"Fitness", strconv.FormatFloat(run.BestFitness, 'f', 1, 64)},
			{"Stopped", fmt.Sprintf("%s (%s) after %d generations", run.State, run.StopReason, run.Generations)},
		},
	}, nil
}

// scheduleTabTitle names a run's tab, e.g. "Schedule Mon Oct 06 2025 (1a2b3c4d)"
func scheduleTabTitle(run *db.Run, start time.Time) string {
	shortID := run.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	if start.IsZero() {
		return fmt.Sprintf("Schedule (%s)", shortID)
	}
	return fmt.Sprintf("Schedule %s (%s)", start.Format("Mon Jan 02 2006"), shortID)
}
