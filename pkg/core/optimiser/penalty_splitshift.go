package optimiser

// SplitShiftPenalty discourages broken days.
//
// Every idle run between two worked hours on the same day is one gap. For
// example working 9-11 and 14-16 has one gap, 9-10, 12-13 and 15-16 has two.
type SplitShiftPenalty struct {
	weight float64
}

// NewSplitShiftPenalty creates a SplitShiftPenalty with the given weight
func NewSplitShiftPenalty(weight float64) *SplitShiftPenalty {
	return &SplitShiftPenalty{weight: weight}
}

func (c *SplitShiftPenalty) Category() Category {
	return CategorySplitShift
}

func (c *SplitShiftPenalty) Visit(p *Problem, ch Chromosome, emit func(Violation)) {
	for s := range p.Shape.Staff {
		for d := range p.Shape.Days {
			if gaps := p.gaps(ch, s, d); gaps > 0 {
				emit(staffViolation(CategorySplitShift, KindSplitShift, s, d, -1, gaps, c.weight))
			}
		}
	}
}
