package optimiser

// IncompatibilityPenalty charges every slot where both members of an incompatible pair are working
type IncompatibilityPenalty struct {
	weight float64
}

// NewIncompatibilityPenalty creates an IncompatibilityPenalty with the given weight
func NewIncompatibilityPenalty(weight float64) *IncompatibilityPenalty {
	return &IncompatibilityPenalty{weight: weight}
}

func (c *IncompatibilityPenalty) Category() Category {
	return CategoryIncompatibility
}

func (c *IncompatibilityPenalty) Visit(p *Problem, ch Chromosome, emit func(Violation)) {
	for _, pair := range p.pairs {
		for d := range p.Shape.Days {
			for h := range p.Shape.Hours {
				if ch[p.Shape.Index(pair[0], d, h)] && ch[p.Shape.Index(pair[1], d, h)] {
					v := staffViolation(CategoryIncompatibility, KindIncompatible, pair[0], d, h, 1, c.weight)
					v.OtherStaff = pair[1]
					emit(v)
				}
			}
		}
	}
}
