package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/shift-optimiser/pkg/db"
)

const runColumns = `id, created_at, seed, start_date, start_hour, num_staff, num_days, num_hours,
	population_size, generations, best_fitness, state, stop_reason, published_datetime`

// SaveRun writes a run with its stats, assignments and violations in one transaction
func (d *DB) SaveRun(ctx context.Context, record *db.RunRecord) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	r := record.Run
	var startDate *string
	if r.StartDate != "" {
		startDate = &r.StartDate
	}
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO run (id, created_at, seed, start_date, start_hour, num_staff, num_days, num_hours,
			population_size, generations, best_fitness, state, stop_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, r.ID, createdAt.UTC(), formatSeed(r.Seed), startDate, r.StartHour, r.NumStaff, r.NumDays, r.NumHours,
		r.PopulationSize, r.Generations, r.BestFitness, r.State, r.StopReason)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if len(record.Stats) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"generation_stat"},
			[]string{"run_id", "generation", "max_fitness", "mean_fitness", "variance", "mutation_prob"},
			pgx.CopyFromSlice(len(record.Stats), func(i int) ([]any, error) {
				s := record.Stats[i]
				return []any{r.ID, s.Generation, s.MaxFitness, s.MeanFitness, s.Variance, s.MutationProb}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("failed to insert generation stats: %w", err)
		}
	}

	if len(record.Assignments) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"assignment"},
			[]string{"run_id", "staff_id", "day", "hour"},
			pgx.CopyFromSlice(len(record.Assignments), func(i int) ([]any, error) {
				a := record.Assignments[i]
				return []any{r.ID, a.StaffID, a.Day, a.Hour}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("failed to insert assignments: %w", err)
		}
	}

	for _, v := range record.Violations {
		_, err := tx.Exec(ctx, `
			INSERT INTO violation (run_id, category, kind, staff_id, other_staff_id, day, hour, magnitude, penalty)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, r.ID, v.Category, v.Kind, nullable(v.StaffID), nullable(v.OtherStaffID), v.Day, v.Hour, v.Magnitude, v.Penalty)
		if err != nil {
			return fmt.Errorf("failed to insert violation: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetRuns retrieves all run records, newest first
func (d *DB) GetRuns(ctx context.Context) ([]db.Run, error) {
	rows, err := d.pool.Query(ctx, `SELECT `+runColumns+` FROM run ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []db.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// GetRun retrieves a single run, returning db.ErrRunNotFound when it does not exist
func (d *DB) GetRun(ctx context.Context, runID string) (*db.Run, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM run WHERE id = $1`, runID)
	r, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", db.ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// GetAssignments retrieves the assignments of a run ordered by day, hour then staff
func (d *DB) GetAssignments(ctx context.Context, runID string) ([]db.Assignment, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT run_id, staff_id, day, hour
		FROM assignment
		WHERE run_id = $1
		ORDER BY day, hour, staff_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []db.Assignment
	for rows.Next() {
		var a db.Assignment
		if err := rows.Scan(&a.RunID, &a.StaffID, &a.Day, &a.Hour); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}

	return assignments, nil
}

// GetGenerationStats retrieves the per-generation statistics of a run in generation order
func (d *DB) GetGenerationStats(ctx context.Context, runID string) ([]db.GenerationStat, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT run_id, generation, max_fitness, mean_fitness, variance, mutation_prob
		FROM generation_stat
		WHERE run_id = $1
		ORDER BY generation
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query generation stats: %w", err)
	}
	defer rows.Close()

	var stats []db.GenerationStat
	for rows.Next() {
		var s db.GenerationStat
		if err := rows.Scan(&s.RunID, &s.Generation, &s.MaxFitness, &s.MeanFitness, &s.Variance, &s.MutationProb); err != nil {
			return nil, fmt.Errorf("failed to scan generation stat: %w", err)
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating generation stats: %w", err)
	}

	return stats, nil
}

// SetRunPublishedDatetime sets the published_datetime for a run
func (d *DB) SetRunPublishedDatetime(ctx context.Context, runID string, datetime time.Time) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE run SET published_datetime = $2 WHERE id = $1
	`, runID, datetime.UTC())
	if err != nil {
		return fmt.Errorf("failed to set run published_datetime: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", db.ErrRunNotFound, runID)
	}
	return nil
}

func scanRun(row pgx.Row) (*db.Run, error) {
	var r db.Run
	var seed string
	var startDate, publishedDatetime *time.Time
	err := row.Scan(&r.ID, &r.CreatedAt, &seed, &startDate, &r.StartHour, &r.NumStaff, &r.NumDays, &r.NumHours,
		&r.PopulationSize, &r.Generations, &r.BestFitness, &r.State, &r.StopReason, &publishedDatetime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	if r.Seed, err = parseSeed(seed); err != nil {
		return nil, err
	}
	if startDate != nil {
		r.StartDate = startDate.Format("2006-01-02")
	}
	if publishedDatetime != nil {
		r.PublishedDatetime = publishedDatetime.UTC().Format(time.RFC3339)
	}

	return &r, nil
}

// Postgres has no unsigned 64-bit integer type
func formatSeed(seed uint64) string {
	return strconv.FormatUint(seed, 10)
}

func parseSeed(s string) (uint64, error) {
	seed, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse run seed %q: %w", s, err)
	}
	return seed, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
