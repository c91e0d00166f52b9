package optimiser

import "math/rand/v2"

// Mutator flips genes of a chromosome
type Mutator struct {
	// GeneFlipProb is the chance each gene is flipped. 0 means 1/len(chromosome).
	GeneFlipProb float64
}

// Mutate returns a copy of ch with each gene flipped independently.
// At least one gene is flipped so a mutation is never a no-op.
func (m Mutator) Mutate(ch Chromosome, rng *rand.Rand) Chromosome {
	out := ch.Clone()
	if len(out) == 0 {
		return out
	}

	rate := m.GeneFlipProb
	if rate == 0 {
		rate = 1 / float64(len(out))
	}

	flipped := false
	for i := range out {
		if rng.Float64() < rate {
			out[i] = !out[i]
			flipped = true
		}
	}
	if !flipped {
		i := rng.IntN(len(out))
		out[i] = !out[i]
	}
	return out
}

// AdaptiveRate tracks the per-chromosome mutation probability across generations.
// While the population's fitness variance is below the threshold the rate is boosted,
// otherwise it decays back towards the base rate.
type AdaptiveRate struct {
	base     float64
	current  float64
	settings AdaptiveMutation
}

// NewAdaptiveRate creates an AdaptiveRate starting at base
func NewAdaptiveRate(base float64, settings AdaptiveMutation) *AdaptiveRate {
	return &AdaptiveRate{base: base, current: base, settings: settings}
}

// Current returns the rate to use for the next generation
func (a *AdaptiveRate) Current() float64 {
	return a.current
}

// Observe updates the rate from a generation's fitness variance and returns the new rate
func (a *AdaptiveRate) Observe(variance float64) float64 {
	if variance < a.settings.VarianceThreshold {
		a.current = max(a.current, min(1, a.base*a.settings.Boost))
	} else {
		a.current = a.base + (a.current-a.base)*a.settings.Decay
	}
	return a.current
}
