package optimiser

import "fmt"

// Result is the outcome of an optimisation run
type Result struct {
	// Schedule is the best schedule found
	Schedule *Schedule

	// Fitness of Schedule (<= 0, 0 when no weighted rule is broken)
	Fitness float64

	// Breakdown is the fitness contribution of each penalty category
	Breakdown map[Category]float64

	// Violations explains the fitness: every rule Schedule still breaks
	Violations []Violation

	// Stats has one entry per evaluated generation, generation 0 being the initial population
	Stats []GenerationStats

	State       State
	StopReason  StopReason
	Generations int

	// Seed reproduces this run when set as the config seed
	Seed uint64
}

// String describes the result in one line for logs and CLI output
func (r *Result) String() string {
	return fmt.Sprintf("fitness %.1f after %d generations (%s, %s), %d violations",
		r.Fitness, r.Generations, r.State, r.StopReason, len(r.Violations))
}

// Assignment is one worked hour in a schedule
type Assignment struct {
	Staff   int
	StaffID string
	Day     int
	Hour    int
}

// Schedule is a decoded chromosome indexable by (staff, day, hour)
type Schedule struct {
	shape    Shape
	staffIDs []string
	genes    Chromosome
}

// NewSchedule decodes genes of the given shape. The genes are copied.
func NewSchedule(shape Shape, staffIDs []string, genes Chromosome) *Schedule {
	return &Schedule{shape: shape, staffIDs: staffIDs, genes: genes.Clone()}
}

func (s *Schedule) Shape() Shape {
	return s.shape
}

// StaffID returns the roster ID of staff index i
func (s *Schedule) StaffID(i int) string {
	if i < 0 || i >= len(s.staffIDs) {
		return ""
	}
	return s.staffIDs[i]
}

// Assigned reports whether staff works hour of day. Out-of-range lookups report false.
func (s *Schedule) Assigned(staff, day, hour int) bool {
	if staff < 0 || staff >= s.shape.Staff || day < 0 || day >= s.shape.Days || hour < 0 || hour >= s.shape.Hours {
		return false
	}
	return s.genes[s.shape.Index(staff, day, hour)]
}

// StaffOn returns the staff indices working (day, hour) in roster order
func (s *Schedule) StaffOn(day, hour int) []int {
	var out []int
	for st := range s.shape.Staff {
		if s.Assigned(st, day, hour) {
			out = append(out, st)
		}
	}
	return out
}

// DailyHours returns the hours staff works on day
func (s *Schedule) DailyHours(staff, day int) int {
	n := 0
	for h := range s.shape.Hours {
		if s.Assigned(staff, day, h) {
			n++
		}
	}
	return n
}

// HoursFor returns the total hours staff works across the horizon
func (s *Schedule) HoursFor(staff int) int {
	n := 0
	for d := range s.shape.Days {
		n += s.DailyHours(staff, d)
	}
	return n
}

// Assignments lists every worked hour ordered by staff, day then hour
func (s *Schedule) Assignments() []Assignment {
	var out []Assignment
	for i, g := range s.genes {
		if !g {
			continue
		}
		st, d, h := s.shape.Coords(i)
		out = append(out, Assignment{Staff: st, StaffID: s.StaffID(st), Day: d, Hour: h})
	}
	return out
}

// Chromosome returns a copy of the underlying genes
func (s *Schedule) Chromosome() Chromosome {
	return s.genes.Clone()
}
