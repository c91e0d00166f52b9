package optimiser

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jakechorley/shift-optimiser/pkg/core/model"
)

// newRoster creates n staff with neutral preferences, IDs s0..s(n-1)
func newRoster(n, days, hours int) model.Roster {
	roster := model.Roster{}
	for i := range n {
		id := fmt.Sprintf("s%d", i)
		roster.Staff = append(roster.Staff, model.NewStaff(id, id, days, hours))
	}
	return roster
}

func testConfig(staff, days, hours, minStaff, maxStaff int) Config {
	cfg := DefaultConfig()
	cfg.NumStaff = staff
	cfg.NumDays = days
	cfg.NumHours = hours
	cfg.MinStaffPerHour = minStaff
	cfg.MaxStaffPerHour = maxStaff
	cfg.PopulationSize = 20
	cfg.Generations = 10
	cfg.Parallelism = 2
	cfg.Seed = 42
	return cfg
}

func mustProblem(t *testing.T, cfg Config, roster model.Roster) *Problem {
	t.Helper()
	p, err := NewProblem(cfg, roster)
	require.NoError(t, err)
	return p
}

// assign builds a chromosome with the given (staff, day, hour) genes set
func assign(shape Shape, genes ...[3]int) Chromosome {
	ch := make(Chromosome, shape.Len())
	for _, g := range genes {
		ch[shape.Index(g[0], g[1], g[2])] = true
	}
	return ch
}

func randomChromosome(shape Shape, rng *rand.Rand) Chromosome {
	ch := make(Chromosome, shape.Len())
	for i := range ch {
		ch[i] = rng.IntN(2) == 1
	}
	return ch
}

// richProblem has preferences, unavailability and an incompatible pair across two days
func richProblem(t *testing.T) *Problem {
	t.Helper()
	roster := newRoster(5, 2, 6)
	roster.Staff[0].SetPreference(0, 0, model.Desired)
	roster.Staff[0].SetPreference(0, 1, model.Desired)
	roster.Staff[1].SetPreference(0, 2, model.Unavailable)
	roster.Staff[1].SetPreference(1, 2, model.Unavailable)
	roster.Staff[2].SetPreference(1, 4, model.Desired)
	roster.Staff[3].SetPreference(1, 0, model.Unavailable)
	roster.Incompatible = []model.IncompatiblePair{{A: "s3", B: "s4"}}

	cfg := testConfig(5, 2, 6, 1, 3)
	cfg.MaxWorkHoursPerDay = 4
	cfg.MaxWorkHoursPerWeek = 8
	cfg.MinWorkHoursPerWeek = 2
	return mustProblem(t, cfg, roster)
}
