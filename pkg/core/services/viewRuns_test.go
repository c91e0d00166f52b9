package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-optimiser/pkg/db"
)

func runAt(id string, day int) db.Run {
	return db.Run{ID: id, CreatedAt: time.Date(2025, 10, day, 12, 0, 0, 0, time.UTC), NumDays: 2, NumHours: 4}
}

func TestViewRuns_NewestFirstAndLimited(t *testing.T) {
	store := &mockRunStore{runs: []db.Run{runAt("run-1", 1), runAt("run-3", 3), runAt("run-2", 2)}}

	runs, err := ViewRuns(context.Background(), store, zap.NewNop(), 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-3", runs[0].ID)
	assert.Equal(t, "run-2", runs[1].ID)
}

func TestViewRuns_FewerThanCount(t *testing.T) {
	store := &mockRunStore{runs: []db.Run{runAt("run-1", 1)}}

	runs, err := ViewRuns(context.Background(), store, zap.NewNop(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestViewRuns_Empty(t *testing.T) {
	runs, err := ViewRuns(context.Background(), &mockRunStore{}, zap.NewNop(), 5)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestViewRuns_InvalidCount(t *testing.T) {
	_, err := ViewRuns(context.Background(), &mockRunStore{}, zap.NewNop(), 0)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "count must be positive")
}

func TestViewRuns_StoreError(t *testing.T) {
	_, err := ViewRuns(context.Background(), &mockRunStore{getErr: errStore}, zap.NewNop(), 5)
	assert.ErrorIs(t, err, errStore)
}

func TestRunEvolution(t *testing.T) {
	store := &mockRunStore{
		runs: []db.Run{runAt("run-1", 1)},
		saved: []*db.RunRecord{{
			Run: db.Run{ID: "run-1"},
			Stats: []db.GenerationStat{
				{RunID: "run-1", Generation: 1, MaxFitness: -50, MeanFitness: -80},
				{RunID: "run-1", Generation: 0, MaxFitness: -100, MeanFitness: -300, Variance: 12, MutationProb: 0.15},
			},
		}},
	}

	run, stats, err := RunEvolution(context.Background(), store, zap.NewNop(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	require.Len(t, stats, 2)
	assert.Equal(t, 0, stats[0].Generation)
	assert.Equal(t, -100.0, stats[0].Max)
	assert.Equal(t, -300.0, stats[0].Mean)
	assert.Equal(t, 12.0, stats[0].Variance)
	assert.Equal(t, 0.15, stats[0].MutationProb)
	assert.Equal(t, 1, stats[1].Generation)
}

func TestRunEvolution_NotFound(t *testing.T) {
	_, _, err := RunEvolution(context.Background(), &mockRunStore{}, zap.NewNop(), "missing")
	assert.ErrorIs(t, err, db.ErrRunNotFound)
}
