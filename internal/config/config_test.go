package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shift_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestValidate_DefaultConfig(t *testing.T) {
	err := Validate(Default())
	assert.NoError(t, err)
}

func TestValidate_MissingRosterFile(t *testing.T) {
	cfg := Default()
	cfg.RosterFile = ""

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_MinAboveMax(t *testing.T) {
	cfg := Default()
	cfg.Staffing.MinStaffPerHour = 5
	cfg.Staffing.MaxStaffPerHour = 2

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "MaxStaffPerHour")
}

func TestValidate_ProbabilityOutOfRange(t *testing.T) {
	cfg := Default()
	cfg.Genetic.MutationProb = 1.5

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "MutationProb")
}

func TestValidate_UnknownSelection(t *testing.T) {
	cfg := Default()
	cfg.Genetic.Selection = "rank"

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Selection")
}

func TestValidate_BadStartDate(t *testing.T) {
	cfg := Default()
	cfg.Horizon.StartDate = "01/10/2025"

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_HorizonPastMidnight(t *testing.T) {
	cfg := Default()
	cfg.Horizon.StartHour = 20
	cfg.Horizon.NumHours = 6

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "past midnight")
}

func TestValidate_MinWeeklyAboveMax(t *testing.T) {
	cfg := Default()
	cfg.Staffing.MinWorkHoursPerWeek = 50

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "MinWorkHoursPerWeek")
}

func TestValidate_BothDatabases(t *testing.T) {
	cfg := Default()
	cfg.DatabaseURL = "postgres://localhost/shifts"
	cfg.DatabaseSheetID = "runsSheet"

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DatabaseSheetID")

	cfg.DatabaseURL = ""
	assert.NoError(t, Validate(cfg))
}

func TestLoadFromPath_DatabaseSheetFromEnvironment(t *testing.T) {
	t.Setenv("SHIFT_DATABASE_SHEET_ID", "runsSheet")

	cfg, err := LoadFromPath(writeConfig(t, `rosterFile: "roster.yaml"`))
	require.NoError(t, err)
	assert.Equal(t, "runsSheet", cfg.DatabaseSheetID)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoadFromPath_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
rosterFile: "staff.yaml"
databaseURL: "postgres://localhost/shifts"
scheduleSheetID: "sheet123"
horizon:
  startDate: "2025-10-01"
  numDays: 5
  numHours: 10
  startHour: 8
staffing:
  minStaffPerHour: 2
  maxStaffPerHour: 4
  maxWorkHoursPerDay: 6
  maxWorkHoursPerWeek: 30
  minWorkHoursPerWeek: 10
genetic:
  generations: 250
  selection: roulette
  crossover: day_block
  timeLimit: 90s
  seed: 1234
weights:
  splitShift: 0
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "staff.yaml", cfg.RosterFile)
	assert.Equal(t, "postgres://localhost/shifts", cfg.DatabaseURL)
	assert.Equal(t, "sheet123", cfg.ScheduleSheetID)
	assert.Equal(t, 5, cfg.Horizon.NumDays)
	assert.Equal(t, 8, cfg.Horizon.StartHour)
	assert.Equal(t, 2, cfg.Staffing.MinStaffPerHour)
	assert.Equal(t, 10, cfg.Staffing.MinWorkHoursPerWeek)
	assert.Equal(t, 250, cfg.Genetic.Generations)
	assert.Equal(t, "roulette", cfg.Genetic.Selection)
	assert.Equal(t, 90*time.Second, cfg.Genetic.TimeLimit)
	assert.Equal(t, uint64(1234), cfg.Genetic.Seed)
	assert.Equal(t, 0.0, cfg.Weights.SplitShift)

	start, err := cfg.Horizon.Start()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), start)
}

func TestLoadFromPath_MinimalConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `rosterFile: "roster.yaml"`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	defaults := Default()
	assert.Equal(t, defaults.Genetic, cfg.Genetic)
	assert.Equal(t, defaults.Weights, cfg.Weights)
	assert.Empty(t, cfg.DatabaseURL)

	start, err := cfg.Horizon.Start()
	require.NoError(t, err)
	assert.True(t, start.IsZero())
}

func TestLoadFromPath_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SHIFT_DATABASE_URL", "postgres://env/db")
	t.Setenv("SHIFT_SCHEDULE_SHEET_ID", "envSheet")
	t.Setenv("SHIFT_SEED", "99")
	t.Setenv("SHIFT_ROSTER_FILE", "env_roster.yaml")

	path := writeConfig(t, `
rosterFile: "file_roster.yaml"
databaseURL: "postgres://file/db"
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env/db", cfg.DatabaseURL)
	assert.Equal(t, "envSheet", cfg.ScheduleSheetID)
	assert.Equal(t, uint64(99), cfg.Genetic.Seed)
	assert.Equal(t, "env_roster.yaml", cfg.RosterFile)
}

func TestLoadFromPath_BadEnvironmentOverride(t *testing.T) {
	t.Setenv("SHIFT_SEED", "not-a-number")

	_, err := LoadFromPath(writeConfig(t, `rosterFile: "roster.yaml"`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to apply environment overrides")
}

func TestLoadFromPath_InvalidValue(t *testing.T) {
	path := writeConfig(t, `
rosterFile: "roster.yaml"
genetic:
  populationSize: 0
`)

	_, err := LoadFromPath(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromPath_InvalidYAML(t *testing.T) {
	path := writeConfig(t, `
rosterFile: "roster.yaml"
  invalid indentation
horizon: 3
`)

	_, err := LoadFromPath(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadFromPath_FileNotFound(t *testing.T) {
	_, err := LoadFromPath("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadWithEnv_FindsEnvironmentFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	require.NoError(t, os.WriteFile("shift_config.staging.yaml", []byte(`rosterFile: "staging.yaml"`), 0644))

	cfg, err := LoadWithEnv("staging")
	require.NoError(t, err)
	assert.Equal(t, "staging.yaml", cfg.RosterFile)

	_, err = LoadWithEnv("prod")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "shift_config.prod.yaml not found")
}
