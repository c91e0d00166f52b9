package model

import "fmt"

// Preference is a staff member's stance on working a single (day, hour) slot
type Preference int8

const (
	Neutral Preference = iota
	Desired
	Unavailable
)

func (p Preference) String() string {
	switch p {
	case Desired:
		return "desired"
	case Unavailable:
		return "unavailable"
	default:
		return "neutral"
	}
}

// Staff represents a member of staff and their preferences across the horizon
type Staff struct {
	ID   string
	Name string

	// Preferences is indexed [day][hour]
	Preferences [][]Preference
}

// NewStaff creates a staff member with an all-neutral preference matrix
func NewStaff(id, name string, days, hours int) Staff {
	prefs := make([][]Preference, days)
	for d := range prefs {
		prefs[d] = make([]Preference, hours)
	}
	return Staff{ID: id, Name: name, Preferences: prefs}
}

// DisplayName returns the name if set, otherwise the ID
func (s Staff) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

// Preference returns the preference for the slot, Neutral when out of range
func (s Staff) Preference(day, hour int) Preference {
	if day < 0 || day >= len(s.Preferences) {
		return Neutral
	}
	if hour < 0 || hour >= len(s.Preferences[day]) {
		return Neutral
	}
	return s.Preferences[day][hour]
}

func (s Staff) Desired(day, hour int) bool {
	return s.Preference(day, hour) == Desired
}

func (s Staff) Unavailable(day, hour int) bool {
	return s.Preference(day, hour) == Unavailable
}

// SetPreference records a preference for a slot. Unavailable is never downgraded to Desired.
func (s *Staff) SetPreference(day, hour int, p Preference) {
	if day < 0 || day >= len(s.Preferences) || hour < 0 || hour >= len(s.Preferences[day]) {
		return
	}
	if s.Preferences[day][hour] == Unavailable && p == Desired {
		return
	}
	s.Preferences[day][hour] = p
}

// IncompatiblePair is an unordered pair of staff IDs who should not work the same slot
type IncompatiblePair struct {
	A string
	B string
}

// Roster is the full set of staff and their pairwise incompatibilities
type Roster struct {
	Staff        []Staff
	Incompatible []IncompatiblePair
}

// IndexOf returns the position of the staff member with the given ID, or -1
func (r *Roster) IndexOf(id string) int {
	for i, s := range r.Staff {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// StaffIDs returns the staff IDs in roster order
func (r *Roster) StaffIDs() []string {
	ids := make([]string, len(r.Staff))
	for i, s := range r.Staff {
		ids[i] = s.ID
	}
	return ids
}

// Validate checks the roster is consistent with a horizon of the given shape
func (r *Roster) Validate(days, hours int) error {
	seen := make(map[string]bool, len(r.Staff))
	for i, s := range r.Staff {
		if s.ID == "" {
			return fmt.Errorf("staff[%d] has an empty id", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate staff id %q", s.ID)
		}
		seen[s.ID] = true

		if len(s.Preferences) != days {
			return fmt.Errorf("staff %q has preferences for %d days, expected %d", s.ID, len(s.Preferences), days)
		}
		for d, row := range s.Preferences {
			if len(row) != hours {
				return fmt.Errorf("staff %q has preferences for %d hours on day %d, expected %d", s.ID, len(row), d, hours)
			}
		}
	}

	for i, pair := range r.Incompatible {
		if pair.A == pair.B {
			return fmt.Errorf("incompatible[%d] pairs %q with itself", i, pair.A)
		}
		if !seen[pair.A] {
			return fmt.Errorf("incompatible[%d] references unknown staff %q", i, pair.A)
		}
		if !seen[pair.B] {
			return fmt.Errorf("incompatible[%d] references unknown staff %q", i, pair.B)
		}
	}

	return nil
}
