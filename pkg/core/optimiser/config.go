package optimiser

import (
	"errors"
	"fmt"
	"runtime"
	"time"
)

// ErrInvalidConfig is wrapped by every configuration error returned from Validate
var ErrInvalidConfig = errors.New("invalid optimiser config")

// SelectionMethod chooses how parents are picked from the population
type SelectionMethod string

const (
	SelectionTournament SelectionMethod = "tournament"
	SelectionRoulette   SelectionMethod = "roulette"
)

// CrossoverMode chooses which block of the schedule is exchanged between parents
type CrossoverMode string

const (
	// CrossoverMixed picks a day-block or staff-block exchange at random for each pair
	CrossoverMixed      CrossoverMode = "mixed"
	CrossoverDayBlock   CrossoverMode = "day_block"
	CrossoverStaffBlock CrossoverMode = "staff_block"
)

// Weights holds the multiplier applied to each penalty term.
// A zero weight keeps the term reporting violations but removes it from fitness.
type Weights struct {
	Understaffed   float64
	Overstaffed    float64
	Overwork       float64
	WeeklyOverwork float64
	Underwork      float64
	Unavailable    float64
	MissedDesired  float64
	Incompatible   float64
	SplitShift     float64
}

// DefaultWeights returns the weights used when none are configured.
// Hard constraints (coverage, availability, hour caps) dominate soft ones.
func DefaultWeights() Weights {
	return Weights{
		Understaffed:   2000,
		Overstaffed:    500,
		Overwork:       1000,
		WeeklyOverwork: 1000,
		Underwork:      100,
		Unavailable:    5000,
		MissedDesired:  50,
		Incompatible:   100,
		SplitShift:     300,
	}
}

// AdaptiveMutation controls how the mutation probability reacts to a loss of diversity
type AdaptiveMutation struct {
	// VarianceThreshold is the fitness variance below which the population is considered stagnant
	VarianceThreshold float64

	// Boost multiplies the base mutation probability while stagnant (capped at 1)
	Boost float64

	// Decay pulls a boosted rate back towards the base rate each healthy generation (0 resets immediately)
	Decay float64
}

// Config contains all parameters for a single optimisation run
type Config struct {
	// Problem shape
	NumStaff int
	NumDays  int
	NumHours int

	// Staffing limits
	MinStaffPerHour     int
	MaxStaffPerHour     int
	MaxWorkHoursPerDay  int
	MaxWorkHoursPerWeek int

	// MinWorkHoursPerWeek penalises staff rostered for fewer hours. 0 disables the term.
	MinWorkHoursPerWeek int

	// Genetic algorithm parameters
	PopulationSize int

	// Generations counts evaluated generations, the initial population included:
	// a run records Generations stats and breeds Generations-1 times.
	Generations   int
	CrossoverProb float64
	MutationProb  float64

	// GeneFlipProb is the per-gene flip probability inside a mutated chromosome. 0 means 1/L.
	GeneFlipProb float64

	Selection      SelectionMethod
	TournamentSize int
	Crossover      CrossoverMode

	// SmartSeedRatio is the share of the initial population built greedily from preferences
	SmartSeedRatio float64

	// SeedRetries bounds how often a duplicate initial individual is redrawn
	SeedRetries int

	// RepairProb is the chance each offspring is passed through the repair operator
	RepairProb float64

	// Parallelism bounds the number of concurrent fitness evaluations
	Parallelism int

	// Seed for the random source. 0 draws a fresh seed, which is reported in the result.
	Seed uint64

	// PlateauGenerations stops the run once the best fitness has not improved
	// for this many generations. 0 disables plateau detection.
	PlateauGenerations int

	// TimeLimit caps the wall-clock duration of a run. 0 disables the cap.
	TimeLimit time.Duration

	// LogInterval is how often (in generations) progress is logged at info level
	LogInterval int

	Adaptive AdaptiveMutation
	Weights  Weights
}

// DefaultConfig returns a Config with sensible GA defaults and no problem shape
func DefaultConfig() Config {
	return Config{
		MaxWorkHoursPerDay:  8,
		MaxWorkHoursPerWeek: 40,
		MinStaffPerHour:     1,
		MaxStaffPerHour:     3,
		PopulationSize:      150,
		Generations:         100,
		CrossoverProb:       0.8,
		MutationProb:        0.15,
		Selection:           SelectionTournament,
		TournamentSize:      3,
		Crossover:           CrossoverMixed,
		SmartSeedRatio:      0.7,
		SeedRetries:         10,
		RepairProb:          1.0,
		Parallelism:         runtime.NumCPU(),
		LogInterval:         10,
		Adaptive: AdaptiveMutation{
			VarianceThreshold: 100,
			Boost:             3,
			Decay:             0.5,
		},
		Weights: DefaultWeights(),
	}
}

// Validate checks the configuration is usable before any optimisation work starts
func (c Config) Validate() error {
	if c.NumStaff < 0 {
		return invalid("num_staff must not be negative, got %d", c.NumStaff)
	}
	if c.NumDays <= 0 {
		return invalid("num_days must be positive, got %d", c.NumDays)
	}
	if c.NumHours <= 0 {
		return invalid("num_hours must be positive, got %d", c.NumHours)
	}
	if c.MinStaffPerHour < 0 {
		return invalid("min_staff_per_hour must not be negative, got %d", c.MinStaffPerHour)
	}
	if c.MinStaffPerHour > c.MaxStaffPerHour {
		return invalid("min_staff_per_hour (%d) must not exceed max_staff_per_hour (%d)", c.MinStaffPerHour, c.MaxStaffPerHour)
	}
	// Zero staff is a degenerate problem rather than a misconfiguration
	if c.NumStaff > 0 && c.MaxStaffPerHour > c.NumStaff {
		return invalid("max_staff_per_hour (%d) must not exceed num_staff (%d)", c.MaxStaffPerHour, c.NumStaff)
	}
	if c.MaxWorkHoursPerDay < 0 {
		return invalid("max_work_hours_per_day must not be negative, got %d", c.MaxWorkHoursPerDay)
	}
	if c.MaxWorkHoursPerWeek < 0 {
		return invalid("max_work_hours_per_week must not be negative, got %d", c.MaxWorkHoursPerWeek)
	}
	if c.MinWorkHoursPerWeek < 0 {
		return invalid("min_work_hours_per_week must not be negative, got %d", c.MinWorkHoursPerWeek)
	}
	if c.PopulationSize <= 0 {
		return invalid("population_size must be positive, got %d", c.PopulationSize)
	}
	if c.Generations < 0 {
		return invalid("generations must not be negative, got %d", c.Generations)
	}

	probs := []struct {
		name  string
		value float64
	}{
		{"crossover_prob", c.CrossoverProb},
		{"mutation_prob", c.MutationProb},
		{"gene_flip_prob", c.GeneFlipProb},
		{"smart_seed_ratio", c.SmartSeedRatio},
		{"repair_prob", c.RepairProb},
	}
	for _, p := range probs {
		if p.value < 0 || p.value > 1 {
			return invalid("%s must be within [0, 1], got %v", p.name, p.value)
		}
	}

	switch c.Selection {
	case SelectionTournament:
		if c.TournamentSize < 1 {
			return invalid("tournament_size must be at least 1, got %d", c.TournamentSize)
		}
	case SelectionRoulette:
	default:
		return invalid("unknown selection method %q", c.Selection)
	}

	switch c.Crossover {
	case CrossoverMixed, CrossoverDayBlock, CrossoverStaffBlock:
	default:
		return invalid("unknown crossover mode %q", c.Crossover)
	}

	if c.SeedRetries < 0 {
		return invalid("seed_retries must not be negative, got %d", c.SeedRetries)
	}
	if c.Parallelism < 1 {
		return invalid("parallelism must be at least 1, got %d", c.Parallelism)
	}
	if c.PlateauGenerations < 0 {
		return invalid("plateau_generations must not be negative, got %d", c.PlateauGenerations)
	}
	if c.TimeLimit < 0 {
		return invalid("time_limit must not be negative, got %s", c.TimeLimit)
	}
	if c.Adaptive.VarianceThreshold < 0 || c.Adaptive.Boost < 1 || c.Adaptive.Decay < 0 || c.Adaptive.Decay > 1 {
		return invalid("adaptive mutation needs variance_threshold >= 0, boost >= 1 and decay within [0, 1]")
	}
	w := c.Weights
	for _, v := range []float64{w.Understaffed, w.Overstaffed, w.Overwork, w.WeeklyOverwork, w.Underwork, w.Unavailable, w.MissedDesired, w.Incompatible, w.SplitShift} {
		if v < 0 {
			return invalid("penalty weights must not be negative")
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
