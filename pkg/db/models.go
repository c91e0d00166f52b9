package db

import "time"

// Run represents a persisted optimisation run
type Run struct {
	ID        string    `ssql_header:"id" ssql_type:"uuid"`
	CreatedAt time.Time `ssql_header:"created_at" ssql_type:"timestamp"`

	// Seed reproduces the run; stored as text since it is an unsigned 64-bit value
	Seed uint64 `ssql_header:"seed" ssql_type:"uint"`

	// StartDate is the first horizon day (YYYY-MM-DD), empty for undated horizons
	StartDate string `ssql_header:"start_date" ssql_type:"date"`
	StartHour int    `ssql_header:"start_hour" ssql_type:"int"`

	NumStaff       int `ssql_header:"num_staff" ssql_type:"int"`
	NumDays        int `ssql_header:"num_days" ssql_type:"int"`
	NumHours       int `ssql_header:"num_hours" ssql_type:"int"`
	PopulationSize int `ssql_header:"population_size" ssql_type:"int"`
	Generations    int `ssql_header:"generations" ssql_type:"int"`

	BestFitness float64 `ssql_header:"best_fitness" ssql_type:"float"`
	State       string  `ssql_header:"state" ssql_type:"text"`
	StopReason  string  `ssql_header:"stop_reason" ssql_type:"text"`

	// PublishedDatetime is set once the schedule has been pushed to the sheet (RFC3339)
	PublishedDatetime string `ssql_header:"published_datetime" ssql_type:"timestamp"`
}

// GenerationStat represents fitness statistics for one generation of a run
type GenerationStat struct {
	RunID        string  `ssql_header:"run_id" ssql_type:"uuid"`
	Generation   int     `ssql_header:"generation" ssql_type:"int"`
	MaxFitness   float64 `ssql_header:"max_fitness" ssql_type:"float"`
	MeanFitness  float64 `ssql_header:"mean_fitness" ssql_type:"float"`
	Variance     float64 `ssql_header:"variance" ssql_type:"float"`
	MutationProb float64 `ssql_header:"mutation_prob" ssql_type:"float"`
}

// Assignment represents one worked hour of a run's best schedule
type Assignment struct {
	RunID   string `ssql_header:"run_id" ssql_type:"uuid"`
	StaffID string `ssql_header:"staff_id" ssql_type:"text"`
	Day     int    `ssql_header:"day" ssql_type:"int"`
	Hour    int    `ssql_header:"hour" ssql_type:"int"`
}

// Violation represents a rule the best schedule of a run still breaks
type Violation struct {
	RunID        string  `ssql_header:"run_id" ssql_type:"uuid"`
	Category     string  `ssql_header:"category" ssql_type:"text"`
	Kind         string  `ssql_header:"kind" ssql_type:"text"`
	StaffID      string  `ssql_header:"staff_id" ssql_type:"text"`
	OtherStaffID string  `ssql_header:"other_staff_id" ssql_type:"text"`
	Day          int     `ssql_header:"day" ssql_type:"int"`
	Hour         int     `ssql_header:"hour" ssql_type:"int"`
	Magnitude    int     `ssql_header:"magnitude" ssql_type:"int"`
	Penalty      float64 `ssql_header:"penalty" ssql_type:"float"`
}

// RunRecord is everything written for a single run
type RunRecord struct {
	Run         Run
	Stats       []GenerationStat
	Assignments []Assignment
	Violations  []Violation
}
