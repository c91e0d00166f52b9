package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-optimiser/pkg/db"
)

func publishFixture() *mockRunStore {
	older := runAt("0a1b2c3d-older", 1)
	latest := runAt("9f8e7d6c-latest", 2)
	latest.StartDate = "2025-10-06"
	latest.StartHour = 9
	latest.Seed = 7
	latest.BestFitness = -150
	latest.State = "converged"
	latest.StopReason = "generation_budget"
	latest.Generations = 3

	return &mockRunStore{
		runs: []db.Run{older, latest},
		assignments: map[string][]db.Assignment{
			latest.ID: {
				{RunID: latest.ID, StaffID: "bob", Day: 0, Hour: 0},
				{RunID: latest.ID, StaffID: "alice", Day: 0, Hour: 0},
				{RunID: latest.ID, StaffID: "carol", Day: 1, Hour: 3},
			},
			older.ID: {
				{RunID: older.ID, StaffID: "dave", Day: 1, Hour: 1},
			},
		},
	}
}

func TestPublishSchedule_LatestRun(t *testing.T) {
	cfg := testConfig(t)
	store := publishFixture()
	publisher := &mockPublisher{}

	published, err := PublishSchedule(context.Background(), store, publisher, cfg, testRoster(t, cfg), zap.NewNop(), "")
	require.NoError(t, err)

	assert.Equal(t, "sheet-1", publisher.spreadsheetID)
	assert.Same(t, published, publisher.published)
	assert.Equal(t, "Schedule Mon Oct 06 2025 (9f8e7d6c)", published.Title)
	assert.Equal(t, []string{"Mon Oct 06", "Tue Oct 07"}, published.DayLabels)
	assert.Equal(t, []string{"09:00", "10:00", "11:00", "12:00"}, published.HourLabels)
	assert.Equal(t, []string{"Alice", "Bob"}, published.Cells[0][0])
	assert.Equal(t, []string{"Carol"}, published.Cells[3][1])
	assert.Empty(t, published.Cells[1][1])

	assert.Contains(t, store.published, "9f8e7d6c-latest")
	assert.NotContains(t, store.published, "0a1b2c3d-older")
}

func TestPublishSchedule_SpecificRun(t *testing.T) {
	cfg := testConfig(t)
	store := publishFixture()
	publisher := &mockPublisher{}

	published, err := PublishSchedule(context.Background(), store, publisher, cfg, nil, zap.NewNop(), "0a1b2c3d-older")
	require.NoError(t, err)

	assert.Equal(t, "Schedule (0a1b2c3d)", published.Title)
	assert.Equal(t, []string{"Day 1", "Day 2"}, published.DayLabels)
	assert.Equal(t, "00:00", published.HourLabels[0])
	// Without a roster staff are shown by ID
	assert.Equal(t, []string{"dave"}, published.Cells[1][1])
	assert.Contains(t, store.published, "0a1b2c3d-older")
}

func TestPublishSchedule_NoSheetConfigured(t *testing.T) {
	cfg := testConfig(t)
	cfg.ScheduleSheetID = ""

	_, err := PublishSchedule(context.Background(), publishFixture(), &mockPublisher{}, cfg, nil, zap.NewNop(), "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no schedule sheet configured")
}

func TestPublishSchedule_RunNotFound(t *testing.T) {
	cfg := testConfig(t)

	_, err := PublishSchedule(context.Background(), publishFixture(), &mockPublisher{}, cfg, nil, zap.NewNop(), "missing")
	assert.ErrorIs(t, err, db.ErrRunNotFound)
}

func TestPublishSchedule_NoRuns(t *testing.T) {
	cfg := testConfig(t)

	_, err := PublishSchedule(context.Background(), &mockRunStore{}, &mockPublisher{}, cfg, nil, zap.NewNop(), "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no runs found")
}

func TestPublishSchedule_PublisherError(t *testing.T) {
	cfg := testConfig(t)
	store := publishFixture()

	_, err := PublishSchedule(context.Background(), store, &mockPublisher{err: errStore}, cfg, nil, zap.NewNop(), "")
	assert.ErrorIs(t, err, errStore)
	assert.Empty(t, store.published)
}

func TestBuildPublishedSchedule_Summary(t *testing.T) {
	store := publishFixture()
	run := store.runs[1]

	published, err := BuildPublishedSchedule(&run, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, [][2]string{
		{"Run", "9f8e7d6c-latest"},
		{"Seed", "7"},
		{"Fitness", "-150.0"},
		{"Stopped", "converged (generation_budget) after 3 generations"},
	}, published.Summary)
}

func TestBuildPublishedSchedule_HoursWrapPastMidnight(t *testing.T) {
	run := db.Run{ID: "r", NumDays: 1, NumHours: 3, StartHour: 22}

	published, err := BuildPublishedSchedule(&run, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"22:00", "23:00", "00:00"}, published.HourLabels)
}

func TestBuildPublishedSchedule_Errors(t *testing.T) {
	_, err := BuildPublishedSchedule(&db.Run{ID: "r"}, nil, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "empty horizon")

	run := db.Run{ID: "r", NumDays: 1, NumHours: 1}
	_, err = BuildPublishedSchedule(&run, []db.Assignment{{StaffID: "a", Day: 1, Hour: 0}}, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "outside the run horizon")

	run.StartDate = "06/10/2025"
	_, err = BuildPublishedSchedule(&run, nil, nil)
	assert.Error(t, err)
}
