package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-optimiser/pkg/core/optimiser"
	"github.com/jakechorley/shift-optimiser/pkg/db"
)

// ViewRuns returns the most recent count runs, newest first
func ViewRuns(ctx context.Context, store db.RunReader, logger *zap.Logger, count int) ([]db.Run, error) {
	if count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", count)
	}

	logger.Debug("Fetching runs", zap.Int("count", count))

	runs, err := store.GetRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch runs: %w", err)
	}

	logger.Debug("Found runs", zap.Int("total", len(runs)))

	sortRunsNewestFirst(runs)
	if len(runs) > count {
		runs = runs[:count]
	}

	return runs, nil
}

func sortRunsNewestFirst(runs []db.Run) {
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
}

// RunStatsStore defines the database operations needed to read a run's evolution
type RunStatsStore interface {
	GetRun(ctx context.Context, runID string) (*db.Run, error)
	GetGenerationStats(ctx context.Context, runID string) ([]db.GenerationStat, error)
}

// RunEvolution returns a persisted run and its per-generation statistics in generation order
func RunEvolution(ctx context.Context, store RunStatsStore, logger *zap.Logger, runID string) (*db.Run, []optimiser.GenerationStats, error) {
	run, err := store.GetRun(ctx, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch run: %w", err)
	}

	rows, err := store.GetGenerationStats(ctx, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch generation stats: %w", err)
	}

	logger.Debug("Found generation stats", zap.String("run_id", runID), zap.Int("count", len(rows)))

	stats := make([]optimiser.GenerationStats, len(rows))
	for i, r := range rows {
		stats[i] = optimiser.GenerationStats{
			Generation:   r.Generation,
			Max:          r.MaxFitness,
			Mean:         r.MeanFitness,
			Variance:     r.Variance,
			MutationProb: r.MutationProb,
		}
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Generation < stats[j].Generation
	})

	return run, stats, nil
}
