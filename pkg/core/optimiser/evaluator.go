package optimiser

import "math"

// Evaluator computes the fitness of chromosomes for one problem.
// It holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	problem   *Problem
	penalties []Penalty
}

// NewEvaluator creates an Evaluator. With no penalties given, DefaultPenalties of the problem's weights are used.
func NewEvaluator(problem *Problem, penalties ...Penalty) *Evaluator {
	if len(penalties) == 0 {
		penalties = DefaultPenalties(problem.Config.Weights)
	}
	return &Evaluator{problem: problem, penalties: penalties}
}

// Problem returns the problem being evaluated
func (e *Evaluator) Problem() *Problem {
	return e.problem
}

// Evaluate returns the fitness of ch: the negated sum of all weighted penalties.
// Fitness is always <= 0, and 0 only when no weighted rule is broken.
// A chromosome of the wrong length scores -math.MaxFloat64.
func (e *Evaluator) Evaluate(ch Chromosome) float64 {
	if len(ch) != e.problem.Shape.Len() {
		return -math.MaxFloat64
	}

	total := 0.0
	emit := func(v Violation) {
		total += v.Penalty
	}
	for _, pen := range e.penalties {
		pen.Visit(e.problem, ch, emit)
	}

	if total == 0 {
		return 0
	}
	return -total
}

// Breakdown returns the (non-positive) fitness contribution of each penalty category
func (e *Evaluator) Breakdown(ch Chromosome) map[Category]float64 {
	out := make(map[Category]float64, len(e.penalties))
	if len(ch) != e.problem.Shape.Len() {
		return out
	}

	for _, pen := range e.penalties {
		cat := pen.Category()
		sum := 0.0
		pen.Visit(e.problem, ch, func(v Violation) {
			sum += v.Penalty
		})
		if sum == 0 {
			out[cat] += 0
			continue
		}
		out[cat] -= sum
	}
	return out
}

// Violations lists every broken rule in ch, including those with zero weight
func (e *Evaluator) Violations(ch Chromosome) []Violation {
	if len(ch) != e.problem.Shape.Len() {
		return nil
	}

	var out []Violation
	for _, pen := range e.penalties {
		pen.Visit(e.problem, ch, func(v Violation) {
			out = append(out, v)
		})
	}
	return out
}
