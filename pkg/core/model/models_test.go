package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPreference_UnavailableWins(t *testing.T) {
	s := NewStaff("a", "Alice", 1, 3)

	s.SetPreference(0, 1, Unavailable)
	s.SetPreference(0, 1, Desired)
	s.SetPreference(0, 2, Desired)

	assert.True(t, s.Unavailable(0, 1))
	assert.False(t, s.Desired(0, 1))
	assert.True(t, s.Desired(0, 2))
	assert.Equal(t, Neutral, s.Preference(0, 0))
}

func TestPreference_OutOfRangeIsNeutral(t *testing.T) {
	s := NewStaff("a", "", 1, 1)

	assert.Equal(t, Neutral, s.Preference(5, 0))
	assert.Equal(t, Neutral, s.Preference(0, -1))
	assert.Equal(t, "a", s.DisplayName())
}

func TestRosterValidate(t *testing.T) {
	valid := func() Roster {
		return Roster{
			Staff: []Staff{
				NewStaff("a", "Alice", 2, 3),
				NewStaff("b", "Bob", 2, 3),
			},
			Incompatible: []IncompatiblePair{{A: "a", B: "b"}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(r *Roster)
		wantErr string
	}{
		{"valid", func(r *Roster) {}, ""},
		{"empty id", func(r *Roster) { r.Staff[0].ID = "" }, "empty id"},
		{"duplicate id", func(r *Roster) { r.Staff[1].ID = "a"; r.Incompatible = nil }, "duplicate staff id"},
		{"wrong day count", func(r *Roster) { r.Staff[0].Preferences = r.Staff[0].Preferences[:1] }, "expected 2"},
		{"wrong hour count", func(r *Roster) { r.Staff[1].Preferences[1] = nil }, "expected 3"},
		{"self pair", func(r *Roster) { r.Incompatible[0].B = "a" }, "with itself"},
		{"unknown pair member", func(r *Roster) { r.Incompatible[0].B = "zed" }, "unknown staff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(&r)
			err := r.Validate(2, 3)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIndexOf(t *testing.T) {
	r := Roster{Staff: []Staff{NewStaff("a", "", 1, 1), NewStaff("b", "", 1, 1)}}

	assert.Equal(t, 1, r.IndexOf("b"))
	assert.Equal(t, -1, r.IndexOf("c"))
	assert.Equal(t, []string{"a", "b"}, r.StaffIDs())
}
