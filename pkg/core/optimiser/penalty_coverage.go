package optimiser

// CoveragePenalty keeps every hourly slot within the staffing limits.
//
// Each slot staffed below MinStaffPerHour costs the shortfall times the
// understaffed weight; each slot above MaxStaffPerHour costs the excess
// times the overstaffed weight.
type CoveragePenalty struct {
	understaffed float64
	overstaffed  float64
}

// NewCoveragePenalty creates a CoveragePenalty with the given weights
func NewCoveragePenalty(understaffed, overstaffed float64) *CoveragePenalty {
	return &CoveragePenalty{understaffed: understaffed, overstaffed: overstaffed}
}

func (c *CoveragePenalty) Category() Category {
	return CategoryCoverage
}

func (c *CoveragePenalty) Visit(p *Problem, ch Chromosome, emit func(Violation)) {
	minStaff := p.Config.MinStaffPerHour
	maxStaff := p.Config.MaxStaffPerHour

	for d := range p.Shape.Days {
		for h := range p.Shape.Hours {
			count := p.slotCount(ch, d, h)
			if count < minStaff {
				emit(slotViolation(CategoryCoverage, KindUnderstaffed, d, h, minStaff-count, c.understaffed))
			} else if count > maxStaff {
				emit(slotViolation(CategoryCoverage, KindOverstaffed, d, h, count-maxStaff, c.overstaffed))
			}
		}
	}
}
