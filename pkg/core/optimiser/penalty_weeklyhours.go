package optimiser

// WeeklyHoursPenalty bounds the hours each staff member works per 7-day window.
//
// Hours above MaxWorkHoursPerWeek cost the excess times the overwork weight.
// When MinWorkHoursPerWeek is set, hours below it cost the shortfall times the
// underwork weight. The Day of a weekly violation is the first day of the window.
// Limits apply per window, not to the horizon total, so a 14-day horizon may
// hold up to twice MaxWorkHoursPerWeek.
type WeeklyHoursPenalty struct {
	overwork  float64
	underwork float64
}

// NewWeeklyHoursPenalty creates a WeeklyHoursPenalty with the given weights
func NewWeeklyHoursPenalty(overwork, underwork float64) *WeeklyHoursPenalty {
	return &WeeklyHoursPenalty{overwork: overwork, underwork: underwork}
}

func (c *WeeklyHoursPenalty) Category() Category {
	return CategoryWeeklyHours
}

func (c *WeeklyHoursPenalty) Visit(p *Problem, ch Chromosome, emit func(Violation)) {
	maxHours := p.Config.MaxWorkHoursPerWeek
	minHours := p.Config.MinWorkHoursPerWeek

	for s := range p.Shape.Staff {
		for w, worked := range p.weeklyHours(ch, s) {
			day := w * DaysPerWeek
			if worked > maxHours {
				emit(staffViolation(CategoryWeeklyHours, KindWeeklyOverwork, s, day, -1, worked-maxHours, c.overwork))
			} else if minHours > 0 && worked < minHours {
				emit(staffViolation(CategoryWeeklyHours, KindUnderwork, s, day, -1, minHours-worked, c.underwork))
			}
		}
	}
}
