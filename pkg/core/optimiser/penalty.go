package optimiser

// Category groups penalties for reporting
type Category string

const (
	CategoryCoverage        Category = "coverage"
	CategoryDailyHours      Category = "daily_hours"
	CategoryWeeklyHours     Category = "weekly_hours"
	CategoryPreference      Category = "preference"
	CategoryIncompatibility Category = "incompatibility"
	CategorySplitShift      Category = "split_shift"
)

// Kind identifies the specific rule a violation breaks
type Kind string

const (
	KindUnderstaffed   Kind = "understaffed"
	KindOverstaffed    Kind = "overstaffed"
	KindOverwork       Kind = "overwork"
	KindWeeklyOverwork Kind = "weekly_overwork"
	KindUnderwork      Kind = "underwork"
	KindUnavailable    Kind = "unavailable"
	KindMissedDesired  Kind = "missed_desired"
	KindIncompatible   Kind = "incompatible"
	KindSplitShift     Kind = "split_shift"
)

// Violation is one broken rule in a schedule.
// Staff, OtherStaff, Day and Hour are -1 when they do not apply to the rule.
type Violation struct {
	Category   Category
	Kind       Kind
	Staff      int
	OtherStaff int
	Day        int
	Hour       int

	// Magnitude is the size of the breach (missing staff, excess hours, gap count...)
	Magnitude int

	// Penalty is the weighted cost, Magnitude times the rule's weight
	Penalty float64
}

// Penalty scores one category of rule against a chromosome.
// Implementations must be pure: they are called concurrently on shared problem data.
type Penalty interface {
	// Category returns the reporting group of this penalty
	Category() Category

	// Visit reports every violation of the rule in ch
	Visit(p *Problem, ch Chromosome, emit func(Violation))
}

// DefaultPenalties returns the full set of penalty terms for the given weights
func DefaultPenalties(w Weights) []Penalty {
	return []Penalty{
		NewCoveragePenalty(w.Understaffed, w.Overstaffed),
		NewDailyHoursPenalty(w.Overwork),
		NewWeeklyHoursPenalty(w.WeeklyOverwork, w.Underwork),
		NewPreferencePenalty(w.Unavailable, w.MissedDesired),
		NewIncompatibilityPenalty(w.Incompatible),
		NewSplitShiftPenalty(w.SplitShift),
	}
}

func slotViolation(c Category, k Kind, d, h, magnitude int, weight float64) Violation {
	return Violation{
		Category:   c,
		Kind:       k,
		Staff:      -1,
		OtherStaff: -1,
		Day:        d,
		Hour:       h,
		Magnitude:  magnitude,
		Penalty:    float64(magnitude) * weight,
	}
}

func staffViolation(c Category, k Kind, s, d, h, magnitude int, weight float64) Violation {
	return Violation{
		Category:   c,
		Kind:       k,
		Staff:      s,
		OtherStaff: -1,
		Day:        d,
		Hour:       h,
		Magnitude:  magnitude,
		Penalty:    float64(magnitude) * weight,
	}
}
