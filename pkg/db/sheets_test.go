package db

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/shift-optimiser/pkg/sheetssql/sheetssqltest"
)

func newSheetsDB(t *testing.T) (*SheetsDB, *sheetssqltest.Spreadsheet) {
	t.Helper()
	sheet := sheetssqltest.NewSpreadsheet()
	database, err := NewSheetsDB(sheet, "runs-sheet")
	require.NoError(t, err)
	return database, sheet
}

func testRecord(id string, createdAt time.Time) *RunRecord {
	return &RunRecord{
		Run: Run{
			ID:             id,
			CreatedAt:      createdAt,
			Seed:           math.MaxUint64 - 1,
			StartDate:      "2025-10-06",
			StartHour:      9,
			NumStaff:       3,
			NumDays:        2,
			NumHours:       4,
			PopulationSize: 10,
			Generations:    2,
			BestFitness:    -150.5,
			State:          "converged",
			StopReason:     "generation budget reached",
		},
		Stats: []GenerationStat{
			{Generation: 1, MaxFitness: -150.5, MeanFitness: -300, Variance: 12.25, MutationProb: 0.15},
			{Generation: 0, MaxFitness: -400, MeanFitness: -900, Variance: 80, MutationProb: 0.15},
		},
		Assignments: []Assignment{
			{StaffID: "carol", Day: 1, Hour: 0},
			{StaffID: "bob", Day: 0, Hour: 1},
			{StaffID: "alice", Day: 0, Hour: 1},
		},
		Violations: []Violation{
			{Category: "coverage", Kind: "understaffed", Day: 1, Hour: 3, Magnitude: 1, Penalty: 2000},
		},
	}
}

func TestNewSheetsDB_CreatesTables(t *testing.T) {
	_, sheet := newSheetsDB(t)

	titles, err := sheet.SheetTitles("runs-sheet")
	require.NoError(t, err)
	assert.Equal(t, []string{"run", "generation_stat", "assignment", "violation"}, titles)
	assert.Equal(t, []interface{}{"run_id", "staff_id", "day", "hour"}, sheet.Rows("assignment")[0])
}

func TestSheetsDB_SaveAndRead(t *testing.T) {
	database, _ := newSheetsDB(t)
	ctx := context.Background()
	created := time.Date(2025, 10, 6, 8, 0, 0, 0, time.UTC)

	require.NoError(t, database.SaveRun(ctx, testRecord("run-1", created)))

	run, err := database.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, testRecord("run-1", created).Run, *run)

	assignments, err := database.GetAssignments(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, []Assignment{
		{RunID: "run-1", StaffID: "alice", Day: 0, Hour: 1},
		{RunID: "run-1", StaffID: "bob", Day: 0, Hour: 1},
		{RunID: "run-1", StaffID: "carol", Day: 1, Hour: 0},
	}, assignments)

	stats, err := database.GetGenerationStats(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, 0, stats[0].Generation)
	assert.Equal(t, 12.25, stats[1].Variance)
	assert.Equal(t, "run-1", stats[1].RunID)
}

func TestSheetsDB_SaveRunDefaultsCreatedAt(t *testing.T) {
	database, _ := newSheetsDB(t)
	ctx := context.Background()

	before := time.Now().Add(-time.Second)
	require.NoError(t, database.SaveRun(ctx, testRecord("run-1", time.Time{})))

	run, err := database.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.True(t, run.CreatedAt.After(before))
}

func TestSheetsDB_GetRunsNewestFirst(t *testing.T) {
	database, _ := newSheetsDB(t)
	ctx := context.Background()
	base := time.Date(2025, 10, 6, 8, 0, 0, 0, time.UTC)

	require.NoError(t, database.SaveRun(ctx, testRecord("old", base)))
	require.NoError(t, database.SaveRun(ctx, testRecord("new", base.Add(2*time.Hour))))
	require.NoError(t, database.SaveRun(ctx, testRecord("middle", base.Add(time.Hour))))

	runs, err := database.GetRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "middle", runs[1].ID)
	assert.Equal(t, "old", runs[2].ID)

	// children of other runs are filtered out
	assignments, err := database.GetAssignments(ctx, "middle")
	require.NoError(t, err)
	assert.Len(t, assignments, 3)
}

func TestSheetsDB_GetRunNotFound(t *testing.T) {
	database, _ := newSheetsDB(t)

	_, err := database.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSheetsDB_SetRunPublishedDatetime(t *testing.T) {
	database, _ := newSheetsDB(t)
	ctx := context.Background()
	require.NoError(t, database.SaveRun(ctx, testRecord("run-1", time.Now())))
	require.NoError(t, database.SaveRun(ctx, testRecord("run-2", time.Now())))

	published := time.Date(2025, 10, 7, 12, 30, 0, 0, time.UTC)
	require.NoError(t, database.SetRunPublishedDatetime(ctx, "run-2", published))

	run, err := database.GetRun(ctx, "run-2")
	require.NoError(t, err)
	assert.Equal(t, "2025-10-07T12:30:00Z", run.PublishedDatetime)

	other, err := database.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Empty(t, other.PublishedDatetime)

	err = database.SetRunPublishedDatetime(ctx, "missing", published)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSheetsDB_SaveRunError(t *testing.T) {
	database, sheet := newSheetsDB(t)
	sheet.Err = errors.New("quota exceeded")

	err := database.SaveRun(context.Background(), testRecord("run-1", time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert generation stats")

	sheet.Err = nil
	runs, err := database.GetRuns(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)
}
