package optimiser

// PreferencePenalty scores a schedule against staff availability.
//
// Assigning a staff member to an hour they are unavailable costs the
// unavailable weight (effectively a hard constraint at the default weights).
// Leaving a desired hour unassigned costs the missed-desired weight.
type PreferencePenalty struct {
	unavailable   float64
	missedDesired float64
}

// NewPreferencePenalty creates a PreferencePenalty with the given weights
func NewPreferencePenalty(unavailable, missedDesired float64) *PreferencePenalty {
	return &PreferencePenalty{unavailable: unavailable, missedDesired: missedDesired}
}

func (c *PreferencePenalty) Category() Category {
	return CategoryPreference
}

func (c *PreferencePenalty) Visit(p *Problem, ch Chromosome, emit func(Violation)) {
	for i, assigned := range ch {
		switch {
		case assigned && p.unavailable[i]:
			s, d, h := p.Shape.Coords(i)
			emit(staffViolation(CategoryPreference, KindUnavailable, s, d, h, 1, c.unavailable))
		case !assigned && p.desired[i]:
			s, d, h := p.Shape.Coords(i)
			emit(staffViolation(CategoryPreference, KindMissedDesired, s, d, h, 1, c.missedDesired))
		}
	}
}
