package optimiser

import (
	"fmt"

	"github.com/jakechorley/shift-optimiser/pkg/core/model"
)

// DaysPerWeek is the length of the window the weekly hour limits apply to.
// Horizons longer than a week are split into consecutive 7-day windows, each
// capped separately: a 14-day horizon allows 2*MaxWorkHoursPerWeek in total.
const DaysPerWeek = 7

// Problem is the immutable, pre-indexed view of a roster and config shared by every operator.
// It is read concurrently during fitness evaluation and must not be modified after NewProblem.
type Problem struct {
	Config Config
	Shape  Shape
	Roster model.Roster

	// desired and unavailable are flattened with the same indexing as a chromosome
	desired     []bool
	unavailable []bool

	// pairs lists incompatible staff as roster indices, each pair once with a < b
	pairs [][2]int

	// conflicts[s] lists the staff incompatible with s
	conflicts [][]int
}

// NewProblem validates the config against the roster and builds the shared problem view.
// A zero NumStaff in the config is taken from the roster.
func NewProblem(cfg Config, roster model.Roster) (*Problem, error) {
	if cfg.NumStaff == 0 {
		cfg.NumStaff = len(roster.Staff)
	}
	if cfg.NumStaff != len(roster.Staff) {
		return nil, fmt.Errorf("%w: num_staff is %d but the roster has %d staff", ErrInvalidConfig, cfg.NumStaff, len(roster.Staff))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := roster.Validate(cfg.NumDays, cfg.NumHours); err != nil {
		return nil, fmt.Errorf("invalid roster: %w", err)
	}

	shape := Shape{Staff: cfg.NumStaff, Days: cfg.NumDays, Hours: cfg.NumHours}
	p := &Problem{
		Config:      cfg,
		Shape:       shape,
		Roster:      roster,
		desired:     make([]bool, shape.Len()),
		unavailable: make([]bool, shape.Len()),
		conflicts:   make([][]int, shape.Staff),
	}

	for s, staff := range roster.Staff {
		for d := range shape.Days {
			for h := range shape.Hours {
				idx := shape.Index(s, d, h)
				switch staff.Preference(d, h) {
				case model.Unavailable:
					p.unavailable[idx] = true
				case model.Desired:
					p.desired[idx] = true
				}
			}
		}
	}

	seen := make(map[[2]int]bool)
	for _, pair := range roster.Incompatible {
		a, b := roster.IndexOf(pair.A), roster.IndexOf(pair.B)
		if a > b {
			a, b = b, a
		}
		key := [2]int{a, b}
		if seen[key] {
			continue
		}
		seen[key] = true
		p.pairs = append(p.pairs, key)
		p.conflicts[a] = append(p.conflicts[a], b)
		p.conflicts[b] = append(p.conflicts[b], a)
	}

	return p, nil
}

// Desired reports whether staff s wants to work (d, h)
func (p *Problem) Desired(s, d, h int) bool {
	return p.desired[p.Shape.Index(s, d, h)]
}

// Unavailable reports whether staff s cannot work (d, h)
func (p *Problem) Unavailable(s, d, h int) bool {
	return p.unavailable[p.Shape.Index(s, d, h)]
}

// Pairs returns the incompatible staff index pairs
func (p *Problem) Pairs() [][2]int {
	return p.pairs
}

// Conflicts returns the staff incompatible with s
func (p *Problem) Conflicts(s int) []int {
	return p.conflicts[s]
}

// Degenerate reports whether there is nothing to schedule
func (p *Problem) Degenerate() bool {
	return p.Shape.Len() == 0 || p.Config.Generations == 0
}

// weekOf returns the 0-based week window a day falls into
func weekOf(day int) int {
	return day / DaysPerWeek
}

func (p *Problem) numWeeks() int {
	return (p.Shape.Days + DaysPerWeek - 1) / DaysPerWeek
}

// slotCount returns how many staff are assigned to (d, h)
func (p *Problem) slotCount(ch Chromosome, d, h int) int {
	n := 0
	for s := range p.Shape.Staff {
		if ch[p.Shape.Index(s, d, h)] {
			n++
		}
	}
	return n
}

// dailyHours returns how many hours staff s works on day d
func (p *Problem) dailyHours(ch Chromosome, s, d int) int {
	n := 0
	base := p.Shape.Index(s, d, 0)
	for h := range p.Shape.Hours {
		if ch[base+h] {
			n++
		}
	}
	return n
}

// weeklyHours returns the hours staff s works in each week window
func (p *Problem) weeklyHours(ch Chromosome, s int) []int {
	weeks := make([]int, p.numWeeks())
	for d := range p.Shape.Days {
		weeks[weekOf(d)] += p.dailyHours(ch, s, d)
	}
	return weeks
}

// gaps returns the number of split-shift gaps (worked, idle run, worked) for staff s on day d
func (p *Problem) gaps(ch Chromosome, s, d int) int {
	base := p.Shape.Index(s, d, 0)
	gaps := 0
	worked := false
	idle := false
	for h := range p.Shape.Hours {
		if ch[base+h] {
			if worked && idle {
				gaps++
			}
			worked = true
			idle = false
		} else if worked {
			idle = true
		}
	}
	return gaps
}
