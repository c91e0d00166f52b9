package optimiser

import "math/rand/v2"

// Selector picks a parent from a population and returns its index
type Selector interface {
	Select(pop Population, rng *rand.Rand) int
}

// NewSelector returns the selector configured by cfg
func NewSelector(cfg Config) Selector {
	if cfg.Selection == SelectionRoulette {
		return RouletteSelector{}
	}
	return TournamentSelector{Size: cfg.TournamentSize}
}

// TournamentSelector draws Size individuals uniformly with replacement and keeps the fittest.
// On equal fitness the first one drawn wins.
type TournamentSelector struct {
	Size int
}

func (t TournamentSelector) Select(pop Population, rng *rand.Rand) int {
	size := max(t.Size, 1)
	best := rng.IntN(len(pop))
	for range size - 1 {
		c := rng.IntN(len(pop))
		if pop[c].Fitness > pop[best].Fitness {
			best = c
		}
	}
	return best
}

// RouletteSelector picks an individual with probability proportional to its fitness
// shifted so the worst individual has weight 1.
type RouletteSelector struct{}

func (RouletteSelector) Select(pop Population, rng *rand.Rand) int {
	worst := pop[pop.Worst()].Fitness

	total := 0.0
	for _, ind := range pop {
		total += ind.Fitness - worst + 1
	}

	pick := rng.Float64() * total
	acc := 0.0
	for i, ind := range pop {
		acc += ind.Fitness - worst + 1
		if pick < acc {
			return i
		}
	}
	return len(pop) - 1
}
