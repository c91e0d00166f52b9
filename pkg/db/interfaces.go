package db

import (
	"context"
	"errors"
	"time"
)

// RunWriter persists completed optimisation runs
type RunWriter interface {
	SaveRun(ctx context.Context, record *RunRecord) error
}

// RunReader reads persisted runs
type RunReader interface {
	// GetRuns returns runs newest first
	GetRuns(ctx context.Context) ([]Run, error)
	GetRun(ctx context.Context, runID string) (*Run, error)
	GetAssignments(ctx context.Context, runID string) ([]Assignment, error)
}

// Database defines the interface for all database operations.
// postgres.DB and SheetsDB implement this interface.
type Database interface {
	RunWriter
	RunReader
	GetGenerationStats(ctx context.Context, runID string) ([]GenerationStat, error)
	SetRunPublishedDatetime(ctx context.Context, runID string, datetime time.Time) error
	Close()
}

// ErrRunNotFound is returned by GetRun when no run has the requested ID
var ErrRunNotFound = errors.New("run not found")
