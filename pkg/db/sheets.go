package db

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jakechorley/shift-optimiser/pkg/sheetssql"
)

// SheetsDB stores runs in a Google spreadsheet, one tab per table.
// It implements Database for setups without Postgres.
type SheetsDB struct {
	ssql *sheetssql.DB
}

var _ Database = (*SheetsDB)(nil)

// Schema returns the tables SheetsDB keeps in the spreadsheet
func Schema() (*sheetssql.Schema, error) {
	return sheetssql.SchemaFromModels(Run{}, GenerationStat{}, Assignment{}, Violation{})
}

// NewSheetsDB opens the run tables in spreadsheetID, creating any that are missing
func NewSheetsDB(client sheetssql.SheetsClient, spreadsheetID string) (*SheetsDB, error) {
	schema, err := Schema()
	if err != nil {
		return nil, fmt.Errorf("failed to build schema: %w", err)
	}

	ssql, err := sheetssql.NewDB(client, spreadsheetID, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to open sheets database: %w", err)
	}

	return &SheetsDB{ssql: ssql}, nil
}

// SaveRun appends a run and its child records.
// The run row is written last so a partially written run is never listed.
func (db *SheetsDB) SaveRun(ctx context.Context, record *RunRecord) error {
	run := record.Run
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	stats := slices.Clone(record.Stats)
	for i := range stats {
		stats[i].RunID = run.ID
	}
	if err := sheetssql.Insert(db.ssql, stats); err != nil {
		return fmt.Errorf("failed to insert generation stats: %w", err)
	}

	assignments := slices.Clone(record.Assignments)
	for i := range assignments {
		assignments[i].RunID = run.ID
	}
	if err := sheetssql.Insert(db.ssql, assignments); err != nil {
		return fmt.Errorf("failed to insert assignments: %w", err)
	}

	violations := slices.Clone(record.Violations)
	for i := range violations {
		violations[i].RunID = run.ID
	}
	if err := sheetssql.Insert(db.ssql, violations); err != nil {
		return fmt.Errorf("failed to insert violations: %w", err)
	}

	if err := sheetssql.Insert(db.ssql, []Run{run}); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// GetRuns returns every run, newest first
func (db *SheetsDB) GetRuns(ctx context.Context) ([]Run, error) {
	runs, err := sheetssql.Select[Run](db.ssql)
	if err != nil {
		return nil, fmt.Errorf("failed to get runs: %w", err)
	}

	slices.SortStableFunc(runs, func(a, b Run) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return runs, nil
}

// GetRun returns a single run, or ErrRunNotFound
func (db *SheetsDB) GetRun(ctx context.Context, runID string) (*Run, error) {
	runs, err := sheetssql.Select[Run](db.ssql)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	for i := range runs {
		if runs[i].ID == runID {
			return &runs[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
}

// GetAssignments returns the worked hours of a run ordered by day, hour and staff
func (db *SheetsDB) GetAssignments(ctx context.Context, runID string) ([]Assignment, error) {
	all, err := sheetssql.Select[Assignment](db.ssql)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignments: %w", err)
	}

	assignments := slices.DeleteFunc(all, func(a Assignment) bool { return a.RunID != runID })
	slices.SortFunc(assignments, func(a, b Assignment) int {
		return cmp.Or(
			cmp.Compare(a.Day, b.Day),
			cmp.Compare(a.Hour, b.Hour),
			cmp.Compare(a.StaffID, b.StaffID),
		)
	})
	return assignments, nil
}

// GetGenerationStats returns the statistics of a run ordered by generation
func (db *SheetsDB) GetGenerationStats(ctx context.Context, runID string) ([]GenerationStat, error) {
	all, err := sheetssql.Select[GenerationStat](db.ssql)
	if err != nil {
		return nil, fmt.Errorf("failed to get generation stats: %w", err)
	}

	stats := slices.DeleteFunc(all, func(s GenerationStat) bool { return s.RunID != runID })
	slices.SortFunc(stats, func(a, b GenerationStat) int {
		return cmp.Compare(a.Generation, b.Generation)
	})
	return stats, nil
}

// SetRunPublishedDatetime records when a run's schedule was published
func (db *SheetsDB) SetRunPublishedDatetime(ctx context.Context, runID string, datetime time.Time) error {
	n, err := db.ssql.UpdateWhere(sheetssql.TableName[Run](), "id", runID, "published_datetime", datetime.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to set published datetime: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// Close is a no-op; the spreadsheet holds no connection
func (db *SheetsDB) Close() {}
