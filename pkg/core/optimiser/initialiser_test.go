package optimiser

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jakechorley/shift-optimiser/pkg/core/model"
)

func TestInitialise_PopulationSizeAndLength(t *testing.T) {
	p := richProblem(t)
	rng := rand.New(rand.NewPCG(1, 1))

	pop := Initialise(p, newRepairer(p), rng)

	assert.Len(t, pop, p.Config.PopulationSize)
	for _, ind := range pop {
		assert.Len(t, ind.Genes, p.Shape.Len())
	}
}

func TestInitialise_NeverAssignsUnavailableHours(t *testing.T) {
	p := richProblem(t)

	for _, ratio := range []float64{0, 0.5, 1} {
		p.Config.SmartSeedRatio = ratio
		rng := rand.New(rand.NewPCG(2, 2))

		for _, ind := range Initialise(p, newRepairer(p), rng) {
			for i, g := range ind.Genes {
				if g {
					s, d, h := p.Shape.Coords(i)
					assert.False(t, p.Unavailable(s, d, h), "staff %d assigned unavailable day %d hour %d", s, d, h)
				}
			}
		}
	}
}

func TestInitialise_SmartSeedHonoursDesiredHours(t *testing.T) {
	roster := newRoster(3, 1, 4)
	roster.Staff[2].SetPreference(0, 1, model.Desired)
	roster.Staff[2].SetPreference(0, 2, model.Desired)

	cfg := testConfig(3, 1, 4, 1, 2)
	cfg.SmartSeedRatio = 1
	p := mustProblem(t, cfg, roster)
	rng := rand.New(rand.NewPCG(3, 3))

	for _, ind := range Initialise(p, newRepairer(p), rng) {
		assert.True(t, ind.Genes[p.Shape.Index(2, 0, 1)])
		assert.True(t, ind.Genes[p.Shape.Index(2, 0, 2)])

		// Every slot reaches the minimum when enough staff are available
		for h := range p.Shape.Hours {
			assert.GreaterOrEqual(t, p.slotCount(ind.Genes, 0, h), 1)
		}
	}
}

func TestInitialise_RedrawsDuplicates(t *testing.T) {
	p := richProblem(t)
	p.Config.SmartSeedRatio = 0
	rng := rand.New(rand.NewPCG(4, 4))

	seen := make(map[string]bool)
	for _, ind := range Initialise(p, newRepairer(p), rng) {
		seen[ind.Genes.Key()] = true
	}

	// Random seeds over 60 genes are practically never identical once redrawn
	assert.Len(t, seen, p.Config.PopulationSize)
}
