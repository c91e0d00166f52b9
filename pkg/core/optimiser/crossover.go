package optimiser

import "math/rand/v2"

// Crossover recombines two parents into two children.
// Children never share memory with their parents.
type Crossover interface {
	Cross(a, b Chromosome, rng *rand.Rand) (Chromosome, Chromosome)
}

// BlockCrossover exchanges a contiguous block of days (for every staff member)
// or a contiguous block of staff (for every day) between two parents.
// Whole days and whole rosters move together, so daily patterns survive recombination.
type BlockCrossover struct {
	Shape Shape
	Mode  CrossoverMode
}

func (x BlockCrossover) Cross(a, b Chromosome, rng *rand.Rand) (Chromosome, Chromosome) {
	c1, c2 := a.Clone(), b.Clone()
	if len(a) != len(b) || len(a) != x.Shape.Len() || len(a) == 0 {
		return c1, c2
	}

	mode := x.Mode
	if mode == CrossoverMixed {
		mode = CrossoverDayBlock
		if rng.IntN(2) == 1 {
			mode = CrossoverStaffBlock
		}
	}

	// A dimension of size 1 can only be exchanged whole, which just swaps the parents
	switch {
	case x.Shape.Days < 2 && x.Shape.Staff < 2:
		return c1, c2
	case mode == CrossoverDayBlock && x.Shape.Days < 2:
		mode = CrossoverStaffBlock
	case mode == CrossoverStaffBlock && x.Shape.Staff < 2:
		mode = CrossoverDayBlock
	}

	switch mode {
	case CrossoverStaffBlock:
		lo, hi := blockBounds(x.Shape.Staff, rng)
		// Staff are the outermost index, so a staff block is one contiguous run of genes
		from := x.Shape.Index(lo, 0, 0)
		to := x.Shape.Index(hi, 0, 0)
		swapRange(c1, c2, from, to)
	default:
		lo, hi := blockBounds(x.Shape.Days, rng)
		for s := range x.Shape.Staff {
			from := x.Shape.Index(s, lo, 0)
			to := x.Shape.Index(s, hi, 0)
			swapRange(c1, c2, from, to)
		}
	}
	return c1, c2
}

// blockBounds draws a non-empty half-open range [lo, hi) within [0, n), n >= 2,
// that leaves at least one index outside the block
func blockBounds(n int, rng *rand.Rand) (int, int) {
	lo := rng.IntN(n)
	hi := lo + 1 + rng.IntN(n-lo)
	if lo == 0 && hi == n {
		hi = n - 1
	}
	return lo, hi
}

func swapRange(a, b Chromosome, from, to int) {
	for i := from; i < to; i++ {
		a[i], b[i] = b[i], a[i]
	}
}
