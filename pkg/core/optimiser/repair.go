package optimiser

import (
	"math/rand/v2"
	"slices"
)

// Repairer moves offspring towards feasibility with local, mechanical fixes.
//
// Repair runs a fixed sequence of passes:
//  1. clear assignments to unavailable hours
//  2. trim overstaffed slots, removing the staff with the lowest affinity first
//  3. fill understaffed slots from available, compatible staff under their hour caps
//  4. close split-shift gaps where the whole gap can be worked
//
// Each pass works on a copy and is only kept when it does not lower fitness,
// so a repaired chromosome never scores worse than its input.
type Repairer struct {
	evaluator *Evaluator
}

// NewRepairer creates a Repairer scoring candidate fixes with the given evaluator
func NewRepairer(evaluator *Evaluator) *Repairer {
	return &Repairer{evaluator: evaluator}
}

type repairPass func(r *Repairer, ch Chromosome, rng *rand.Rand)

var repairPasses = []repairPass{
	(*Repairer).clearUnavailable,
	(*Repairer).trimOverstaffed,
	(*Repairer).fillUnderstaffed,
	(*Repairer).closeGaps,
}

// Repair returns a repaired copy of ch. The input is never modified.
// A chromosome of the wrong length is returned as an unchanged copy.
func (r *Repairer) Repair(ch Chromosome, rng *rand.Rand) Chromosome {
	best := ch.Clone()
	if len(ch) != r.problem().Shape.Len() || len(ch) == 0 {
		return best
	}

	bestFitness := r.evaluator.Evaluate(best)
	for _, pass := range repairPasses {
		candidate := best.Clone()
		pass(r, candidate, rng)

		fitness := r.evaluator.Evaluate(candidate)
		if fitness >= bestFitness {
			best = candidate
			bestFitness = fitness
		}
	}
	return best
}

func (r *Repairer) problem() *Problem {
	return r.evaluator.Problem()
}

func (r *Repairer) clearUnavailable(ch Chromosome, _ *rand.Rand) {
	p := r.problem()
	for i := range ch {
		if ch[i] && p.unavailable[i] {
			ch[i] = false
		}
	}
}

func (r *Repairer) trimOverstaffed(ch Chromosome, rng *rand.Rand) {
	p := r.problem()
	maxStaff := p.Config.MaxStaffPerHour

	for d := range p.Shape.Days {
		for h := range p.Shape.Hours {
			excess := p.slotCount(ch, d, h) - maxStaff
			if excess <= 0 {
				continue
			}

			assigned := make([]int, 0, p.Shape.Staff)
			for s := range p.Shape.Staff {
				if ch[p.Shape.Index(s, d, h)] {
					assigned = append(assigned, s)
				}
			}
			rng.Shuffle(len(assigned), func(i, j int) {
				assigned[i], assigned[j] = assigned[j], assigned[i]
			})

			// Remove lowest affinity first, preferring removals that do not split a
			// working block, then staff with the longest day
			slices.SortStableFunc(assigned, func(a, b int) int {
				if c := boolRank(p.Desired(a, d, h), p.Desired(b, d, h)); c != 0 {
					return c
				}
				if c := boolRank(createsGap(p, ch, a, d, h), createsGap(p, ch, b, d, h)); c != 0 {
					return c
				}
				return p.dailyHours(ch, b, d) - p.dailyHours(ch, a, d)
			})

			for _, s := range assigned[:excess] {
				ch[p.Shape.Index(s, d, h)] = false
			}
		}
	}
}

func (r *Repairer) fillUnderstaffed(ch Chromosome, rng *rand.Rand) {
	p := r.problem()
	minStaff := p.Config.MinStaffPerHour

	for d := range p.Shape.Days {
		for h := range p.Shape.Hours {
			shortfall := minStaff - p.slotCount(ch, d, h)
			if shortfall <= 0 {
				continue
			}

			candidates := make([]int, 0, p.Shape.Staff)
			for s := range p.Shape.Staff {
				if canTake(p, ch, s, d, h) {
					candidates = append(candidates, s)
				}
			}
			rng.Shuffle(len(candidates), func(i, j int) {
				candidates[i], candidates[j] = candidates[j], candidates[i]
			})

			week := weekOf(d)
			slices.SortStableFunc(candidates, func(a, b int) int {
				if c := boolRank(p.Desired(b, d, h), p.Desired(a, d, h)); c != 0 {
					return c
				}
				if c := placement(p, ch, a, d, h) - placement(p, ch, b, d, h); c != 0 {
					return c
				}
				return p.weeklyHours(ch, a)[week] - p.weeklyHours(ch, b)[week]
			})

			for _, s := range candidates {
				if shortfall == 0 {
					break
				}
				// Earlier picks in this slot can introduce a conflict
				if conflictsAt(p, ch, s, d, h) {
					continue
				}
				ch[p.Shape.Index(s, d, h)] = true
				shortfall--
			}
		}
	}
}

func (r *Repairer) closeGaps(ch Chromosome, _ *rand.Rand) {
	p := r.problem()
	for s := range p.Shape.Staff {
		for d := range p.Shape.Days {
			for _, gap := range gapRuns(p, ch, s, d) {
				if canFillGap(p, ch, s, d, gap[0], gap[1]) {
					for h := gap[0]; h < gap[1]; h++ {
						ch[p.Shape.Index(s, d, h)] = true
					}
				}
			}
		}
	}
}

// canTake reports whether staff s can be added to (d, h) without breaking a hard rule
func canTake(p *Problem, ch Chromosome, s, d, h int) bool {
	idx := p.Shape.Index(s, d, h)
	if ch[idx] || p.unavailable[idx] {
		return false
	}
	if p.dailyHours(ch, s, d) >= p.Config.MaxWorkHoursPerDay {
		return false
	}
	if p.weeklyHours(ch, s)[weekOf(d)] >= p.Config.MaxWorkHoursPerWeek {
		return false
	}
	return !conflictsAt(p, ch, s, d, h)
}

// conflictsAt reports whether anyone incompatible with s already works (d, h)
func conflictsAt(p *Problem, ch Chromosome, s, d, h int) bool {
	for _, other := range p.conflicts[s] {
		if ch[p.Shape.Index(other, d, h)] {
			return true
		}
	}
	return false
}

// placement ranks how well adding (d, h) fits staff s's day:
// 0 extends an existing block, 1 starts a fresh day, 2 opens a split shift
func placement(p *Problem, ch Chromosome, s, d, h int) int {
	if (h > 0 && ch[p.Shape.Index(s, d, h-1)]) || (h+1 < p.Shape.Hours && ch[p.Shape.Index(s, d, h+1)]) {
		return 0
	}
	if p.dailyHours(ch, s, d) == 0 {
		return 1
	}
	return 2
}

// createsGap reports whether removing (d, h) from staff s would split their day
func createsGap(p *Problem, ch Chromosome, s, d, h int) bool {
	before, after := false, false
	for hh := range h {
		if ch[p.Shape.Index(s, d, hh)] {
			before = true
			break
		}
	}
	for hh := h + 1; hh < p.Shape.Hours; hh++ {
		if ch[p.Shape.Index(s, d, hh)] {
			after = true
			break
		}
	}
	return before && after
}

// gapRuns returns the idle [from, to) runs between worked hours for staff s on day d
func gapRuns(p *Problem, ch Chromosome, s, d int) [][2]int {
	var runs [][2]int
	lastWorked := -1
	for h := range p.Shape.Hours {
		if !ch[p.Shape.Index(s, d, h)] {
			continue
		}
		if lastWorked >= 0 && h-lastWorked > 1 {
			runs = append(runs, [2]int{lastWorked + 1, h})
		}
		lastWorked = h
	}
	return runs
}

func canFillGap(p *Problem, ch Chromosome, s, d, from, to int) bool {
	if p.dailyHours(ch, s, d)+(to-from) > p.Config.MaxWorkHoursPerDay {
		return false
	}
	if p.weeklyHours(ch, s)[weekOf(d)]+(to-from) > p.Config.MaxWorkHoursPerWeek {
		return false
	}
	for h := from; h < to; h++ {
		if p.Unavailable(s, d, h) {
			return false
		}
		if p.slotCount(ch, d, h) >= p.Config.MaxStaffPerHour {
			return false
		}
		if conflictsAt(p, ch, s, d, h) {
			return false
		}
	}
	return true
}

// boolRank orders false before true
func boolRank(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}
