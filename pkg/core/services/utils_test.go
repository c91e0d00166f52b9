package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jakechorley/shift-optimiser/internal/config"
	"github.com/jakechorley/shift-optimiser/pkg/clients/sheetsclient"
	"github.com/jakechorley/shift-optimiser/pkg/core/model"
	"github.com/jakechorley/shift-optimiser/pkg/db"
)

const testRosterYAML = `staff:
  - id: alice
    name: Alice
    desired:
      - {day: 1, from: 9, to: 11}
  - id: bob
    name: Bob
    unavailable:
      - {day: 2}
  - id: carol
    name: Carol
  - id: dave
incompatible:
  - [alice, dave]
`

// testConfig returns a small, fast configuration over 2 days of 4 hours starting at 09:00
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Horizon = config.Horizon{StartDate: "2025-10-06", NumDays: 2, NumHours: 4, StartHour: 9}
	cfg.Staffing.MinStaffPerHour = 1
	cfg.Staffing.MaxStaffPerHour = 2
	cfg.Staffing.MaxWorkHoursPerDay = 4
	cfg.Genetic.PopulationSize = 10
	cfg.Genetic.Generations = 3
	cfg.Genetic.Parallelism = 2
	cfg.Genetic.Seed = 7
	cfg.ScheduleSheetID = "sheet-1"
	cfg.RosterFile = writeRoster(t, testRosterYAML)
	return cfg
}

func writeRoster(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func testRoster(t *testing.T, cfg *config.Config) *model.Roster {
	t.Helper()
	roster, err := LoadRoster(cfg, "")
	require.NoError(t, err)
	return roster
}

// mockRunStore is an in-memory run store
type mockRunStore struct {
	saved       []*db.RunRecord
	runs        []db.Run
	assignments map[string][]db.Assignment
	published   map[string]time.Time

	saveErr   error
	saveCtxOK bool
	getErr    error
}

func (m *mockRunStore) SaveRun(ctx context.Context, record *db.RunRecord) error {
	m.saveCtxOK = ctx.Err() == nil
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, record)
	return nil
}

func (m *mockRunStore) GetRuns(ctx context.Context) ([]db.Run, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := make([]db.Run, len(m.runs))
	copy(out, m.runs)
	return out, nil
}

func (m *mockRunStore) GetRun(ctx context.Context, runID string) (*db.Run, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for i := range m.runs {
		if m.runs[i].ID == runID {
			run := m.runs[i]
			return &run, nil
		}
	}
	return nil, db.ErrRunNotFound
}

func (m *mockRunStore) GetAssignments(ctx context.Context, runID string) ([]db.Assignment, error) {
	return m.assignments[runID], nil
}

func (m *mockRunStore) SetRunPublishedDatetime(ctx context.Context, runID string, datetime time.Time) error {
	if m.published == nil {
		m.published = make(map[string]time.Time)
	}
	m.published[runID] = datetime
	return nil
}

// mockPublisher records what would have been written to the sheet
type mockPublisher struct {
	spreadsheetID string
	published     *sheetsclient.PublishedSchedule
	err           error
}

func (m *mockPublisher) PublishSchedule(spreadsheetID string, schedule *sheetsclient.PublishedSchedule) error {
	if m.err != nil {
		return m.err
	}
	m.spreadsheetID = spreadsheetID
	m.published = schedule
	return nil
}

var errStore = errors.New("store unavailable")

func (m *mockRunStore) GetGenerationStats(ctx context.Context, runID string) ([]db.GenerationStat, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var out []db.GenerationStat
	for _, record := range m.saved {
		if record.Run.ID == runID {
			out = append(out, record.Stats...)
		}
	}
	return out, nil
}
