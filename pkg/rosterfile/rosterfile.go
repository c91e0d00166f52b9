package rosterfile

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/shift-optimiser/pkg/core/model"
)

const dateLayout = "2006-01-02"

// Horizon describes the days and opening hours a roster file is read against
type Horizon struct {
	// StartDate is the calendar date of day 1. Only needed for date and rrule windows.
	StartDate time.Time

	NumDays  int
	NumHours int

	// StartHour is the clock hour of slot 0 (e.g. 9 when the first slot is 09:00-10:00)
	StartHour int
}

// Window selects a set of days and a clock-hour range.
// Exactly one of Day, Date or RRule picks the days; omitted hours mean the whole day.
type Window struct {
	Day   int    `yaml:"day,omitempty" validate:"omitempty,min=1"`
	Date  string `yaml:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	RRule string `yaml:"rrule,omitempty"`
	From  *int   `yaml:"from,omitempty" validate:"omitempty,min=0,max=24"`
	To    *int   `yaml:"to,omitempty" validate:"omitempty,min=0,max=24"`
}

// StaffEntry is one staff member in a roster file
type StaffEntry struct {
	ID          string   `yaml:"id" validate:"required"`
	Name        string   `yaml:"name,omitempty"`
	Desired     []Window `yaml:"desired,omitempty" validate:"dive"`
	Unavailable []Window `yaml:"unavailable,omitempty" validate:"dive"`
}

// File is the on-disk roster format
type File struct {
	Staff        []StaffEntry `yaml:"staff" validate:"dive"`
	Incompatible [][]string   `yaml:"incompatible,omitempty" validate:"dive,len=2,dive,required"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load reads a roster file and expands it over the horizon
func Load(path string, horizon Horizon) (*model.Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}

	return Parse(data, horizon)
}

// Parse decodes roster YAML and expands it over the horizon
func Parse(data []byte, horizon Horizon) (*model.Roster, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse roster file: %w", err)
	}

	if err := validate.Struct(&file); err != nil {
		return nil, fmt.Errorf("roster validation failed: %w", err)
	}

	return file.Roster(horizon)
}

// Roster converts the file into a domain roster for the horizon
func (f *File) Roster(horizon Horizon) (*model.Roster, error) {
	if horizon.NumDays <= 0 || horizon.NumHours <= 0 {
		return nil, fmt.Errorf("horizon must have positive days and hours, got %d days and %d hours", horizon.NumDays, horizon.NumHours)
	}

	roster := &model.Roster{}
	for _, entry := range f.Staff {
		staff := model.NewStaff(entry.ID, entry.Name, horizon.NumDays, horizon.NumHours)

		for i, w := range entry.Desired {
			if err := apply(&staff, w, model.Desired, horizon); err != nil {
				return nil, fmt.Errorf("staff %q desired[%d]: %w", entry.ID, i, err)
			}
		}
		for i, w := range entry.Unavailable {
			if err := apply(&staff, w, model.Unavailable, horizon); err != nil {
				return nil, fmt.Errorf("staff %q unavailable[%d]: %w", entry.ID, i, err)
			}
		}

		roster.Staff = append(roster.Staff, staff)
	}

	for _, pair := range f.Incompatible {
		roster.Incompatible = append(roster.Incompatible, model.IncompatiblePair{A: pair[0], B: pair[1]})
	}

	if err := roster.Validate(horizon.NumDays, horizon.NumHours); err != nil {
		return nil, fmt.Errorf("invalid roster: %w", err)
	}

	return roster, nil
}

func apply(staff *model.Staff, w Window, pref model.Preference, horizon Horizon) error {
	days, err := w.Days(horizon)
	if err != nil {
		return err
	}
	from, to, err := w.Slots(horizon)
	if err != nil {
		return err
	}

	for _, d := range days {
		for h := from; h < to; h++ {
			staff.SetPreference(d, h, pref)
		}
	}
	return nil
}

// Days returns the 0-based horizon days the window selects.
// Dates and occurrences outside the horizon are ignored.
func (w Window) Days(horizon Horizon) ([]int, error) {
	selectors := 0
	for _, set := range []bool{w.Day != 0, w.Date != "", w.RRule != ""} {
		if set {
			selectors++
		}
	}
	if selectors != 1 {
		return nil, fmt.Errorf("window must set exactly one of day, date or rrule")
	}

	switch {
	case w.Day != 0:
		if w.Day > horizon.NumDays {
			return nil, fmt.Errorf("day %d is outside the %d-day horizon", w.Day, horizon.NumDays)
		}
		return []int{w.Day - 1}, nil

	case w.Date != "":
		if horizon.StartDate.IsZero() {
			return nil, fmt.Errorf("date windows need a horizon start date")
		}
		date, err := time.Parse(dateLayout, w.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date %q: %w", w.Date, err)
		}
		if d, ok := dayOffset(horizon, date); ok {
			return []int{d}, nil
		}
		return nil, nil

	default:
		if horizon.StartDate.IsZero() {
			return nil, fmt.Errorf("rrule windows need a horizon start date")
		}
		rule, err := rrule.StrToRRule(w.RRule)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rrule %q: %w", w.RRule, err)
		}

		start := midnight(horizon.StartDate)
		end := start.AddDate(0, 0, horizon.NumDays).Add(-time.Second)
		rule.DTStart(start)

		var days []int
		for _, occurrence := range rule.Between(start, end, true) {
			if d, ok := dayOffset(horizon, occurrence); ok {
				days = append(days, d)
			}
		}
		return days, nil
	}
}

// Slots converts the window's clock hours into a half-open slot range clamped to the horizon
func (w Window) Slots(horizon Horizon) (int, int, error) {
	from, to := 0, horizon.NumHours
	if w.From != nil {
		from = *w.From - horizon.StartHour
	}
	if w.To != nil {
		to = *w.To - horizon.StartHour
	}
	if w.From != nil && w.To != nil && *w.From >= *w.To {
		return 0, 0, fmt.Errorf("window from (%d) must be before to (%d)", *w.From, *w.To)
	}
	return max(from, 0), min(to, horizon.NumHours), nil
}

func dayOffset(horizon Horizon, t time.Time) (int, bool) {
	start := midnight(horizon.StartDate)
	d := int(midnight(t).Sub(start).Hours() / 24)
	if midnight(t).Before(start) || d >= horizon.NumDays {
		return 0, false
	}
	return d, true
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
