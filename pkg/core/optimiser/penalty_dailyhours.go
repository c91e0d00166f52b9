package optimiser

// DailyHoursPenalty charges each hour a staff member works beyond MaxWorkHoursPerDay
type DailyHoursPenalty struct {
	overwork float64
}

// NewDailyHoursPenalty creates a DailyHoursPenalty with the given weight
func NewDailyHoursPenalty(overwork float64) *DailyHoursPenalty {
	return &DailyHoursPenalty{overwork: overwork}
}

func (c *DailyHoursPenalty) Category() Category {
	return CategoryDailyHours
}

func (c *DailyHoursPenalty) Visit(p *Problem, ch Chromosome, emit func(Violation)) {
	limit := p.Config.MaxWorkHoursPerDay
	for s := range p.Shape.Staff {
		for d := range p.Shape.Days {
			if worked := p.dailyHours(ch, s, d); worked > limit {
				emit(staffViolation(CategoryDailyHours, KindOverwork, s, d, -1, worked-limit, c.overwork))
			}
		}
	}
}
