package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-optimiser/internal/config"
	"github.com/jakechorley/shift-optimiser/pkg/core/model"
	"github.com/jakechorley/shift-optimiser/pkg/core/optimiser"
	"github.com/jakechorley/shift-optimiser/pkg/db"
	"github.com/jakechorley/shift-optimiser/pkg/rosterfile"
)

// OptimiseOptions overrides parts of the configuration for a single run
type OptimiseOptions struct {
	// Seed replaces the configured seed when non-zero
	Seed uint64

	// Generations replaces the configured generation budget when set
	Generations *int

	// DryRun skips persisting the run
	DryRun bool
}

// OptimiseScheduleResult is a completed run and where it was stored
type OptimiseScheduleResult struct {
	RunID     string
	Roster    *model.Roster
	Result    *optimiser.Result
	Persisted bool
}

// OptimiseSchedule runs the optimiser for the roster and, unless this is a dry run or no
// store is configured, persists the run with its stats, best schedule and violations.
// Cancelling ctx stops the evolution early; the best schedule so far is still returned and saved.
func OptimiseSchedule(
	ctx context.Context,
	store db.RunWriter,
	cfg *config.Config,
	roster *model.Roster,
	logger *zap.Logger,
	opts OptimiseOptions,
) (*OptimiseScheduleResult, error) {
	optCfg := BuildOptimiserConfig(cfg, len(roster.Staff))
	if opts.Seed != 0 {
		optCfg.Seed = opts.Seed
	}
	if opts.Generations != nil {
		optCfg.Generations = *opts.Generations
	}

	runID := uuid.New().String()
	logger.Info("Starting optimisation",
		zap.String("run_id", runID),
		zap.Int("staff", optCfg.NumStaff),
		zap.Int("days", optCfg.NumDays),
		zap.Int("hours", optCfg.NumHours),
		zap.Int("population", optCfg.PopulationSize),
		zap.Int("generations", optCfg.Generations))

	result, err := optimiser.Optimise(ctx, optCfg, *roster, logger.With(zap.String("run_id", runID)))
	if err != nil {
		return nil, fmt.Errorf("failed to optimise schedule: %w", err)
	}

	logger.Info("Optimisation finished", zap.String("run_id", runID), zap.Stringer("result", result))

	out := &OptimiseScheduleResult{
		RunID:  runID,
		Roster: roster,
		Result: result,
	}

	if opts.DryRun || store == nil {
		logger.Debug("Not persisting run", zap.Bool("dry_run", opts.DryRun), zap.Bool("has_store", store != nil))
		return out, nil
	}

	record := BuildRunRecord(runID, cfg, optCfg, result, time.Now())

	// The caller's context may already be cancelled when the run was interrupted
	saveCtx := context.WithoutCancel(ctx)
	if err := store.SaveRun(saveCtx, record); err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}
	out.Persisted = true

	logger.Info("Run saved",
		zap.String("run_id", runID),
		zap.Int("assignments", len(record.Assignments)),
		zap.Int("violations", len(record.Violations)))

	return out, nil
}

// BuildOptimiserConfig maps the application configuration onto an optimiser config for numStaff staff
func BuildOptimiserConfig(cfg *config.Config, numStaff int) optimiser.Config {
	g := cfg.Genetic
	s := cfg.Staffing
	w := cfg.Weights

	return optimiser.Config{
		NumStaff:            numStaff,
		NumDays:             cfg.Horizon.NumDays,
		NumHours:            cfg.Horizon.NumHours,
		MinStaffPerHour:     s.MinStaffPerHour,
		MaxStaffPerHour:     s.MaxStaffPerHour,
		MaxWorkHoursPerDay:  s.MaxWorkHoursPerDay,
		MaxWorkHoursPerWeek: s.MaxWorkHoursPerWeek,
		MinWorkHoursPerWeek: s.MinWorkHoursPerWeek,
		PopulationSize:      g.PopulationSize,
		Generations:         g.Generations,
		CrossoverProb:       g.CrossoverProb,
		MutationProb:        g.MutationProb,
		GeneFlipProb:        g.GeneFlipProb,
		Selection:           optimiser.SelectionMethod(g.Selection),
		TournamentSize:      g.TournamentSize,
		Crossover:           optimiser.CrossoverMode(g.Crossover),
		SmartSeedRatio:      g.SmartSeedRatio,
		SeedRetries:         g.SeedRetries,
		RepairProb:          g.RepairProb,
		Parallelism:         g.Parallelism,
		Seed:                g.Seed,
		PlateauGenerations:  g.PlateauGenerations,
		TimeLimit:           g.TimeLimit,
		LogInterval:         g.LogInterval,
		Adaptive: optimiser.AdaptiveMutation{
			VarianceThreshold: g.VarianceThreshold,
			Boost:             g.MutationBoost,
			Decay:             g.MutationDecay,
		},
		Weights: optimiser.Weights{
			Understaffed:   w.Understaffed,
			Overstaffed:    w.Overstaffed,
			Overwork:       w.Overwork,
			WeeklyOverwork: w.WeeklyOverwork,
			Underwork:      w.Underwork,
			Unavailable:    w.Unavailable,
			MissedDesired:  w.MissedDesired,
			Incompatible:   w.Incompatible,
			SplitShift:     w.SplitShift,
		},
	}
}

// RosterHorizon returns the horizon roster files are expanded over
func RosterHorizon(cfg *config.Config) (rosterfile.Horizon, error) {
	start, err := cfg.Horizon.Start()
	if err != nil {
		return rosterfile.Horizon{}, err
	}

	return rosterfile.Horizon{
		StartDate: start,
		NumDays:   cfg.Horizon.NumDays,
		NumHours:  cfg.Horizon.NumHours,
		StartHour: cfg.Horizon.StartHour,
	}, nil
}

// LoadRoster reads the roster file at path, or the configured roster file when path is empty
func LoadRoster(cfg *config.Config, path string) (*model.Roster, error) {
	if path == "" {
		path = cfg.RosterFile
	}

	horizon, err := RosterHorizon(cfg)
	if err != nil {
		return nil, err
	}

	roster, err := rosterfile.Load(path, horizon)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster %s: %w", path, err)
	}

	return roster, nil
}

// BuildRunRecord converts an optimiser result into the rows persisted for a run
func BuildRunRecord(runID string, cfg *config.Config, optCfg optimiser.Config, result *optimiser.Result, now time.Time) *db.RunRecord {
	record := &db.RunRecord{
		Run: db.Run{
			ID:             runID,
			CreatedAt:      now,
			Seed:           result.Seed,
			StartDate:      cfg.Horizon.StartDate,
			StartHour:      cfg.Horizon.StartHour,
			NumStaff:       optCfg.NumStaff,
			NumDays:        optCfg.NumDays,
			NumHours:       optCfg.NumHours,
			PopulationSize: optCfg.PopulationSize,
			Generations:    result.Generations,
			BestFitness:    result.Fitness,
			State:          string(result.State),
			StopReason:     string(result.StopReason),
		},
	}

	for _, s := range result.Stats {
		record.Stats = append(record.Stats, db.GenerationStat{
			RunID:        runID,
			Generation:   s.Generation,
			MaxFitness:   s.Max,
			MeanFitness:  s.Mean,
			Variance:     s.Variance,
			MutationProb: s.MutationProb,
		})
	}

	schedule := result.Schedule
	for _, a := range schedule.Assignments() {
		record.Assignments = append(record.Assignments, db.Assignment{
			RunID:   runID,
			StaffID: a.StaffID,
			Day:     a.Day,
			Hour:    a.Hour,
		})
	}

	for _, v := range result.Violations {
		record.Violations = append(record.Violations, db.Violation{
			RunID:        runID,
			Category:     string(v.Category),
			Kind:         string(v.Kind),
			StaffID:      schedule.StaffID(v.Staff),
			OtherStaffID: schedule.StaffID(v.OtherStaff),
			Day:          v.Day,
			Hour:         v.Hour,
			Magnitude:    v.Magnitude,
			Penalty:      v.Penalty,
		})
	}

	return record
}
