package optimiser

// Shape describes the dimensions of the schedule encoded by a chromosome
type Shape struct {
	Staff int
	Days  int
	Hours int
}

// Len returns the number of genes in a chromosome of this shape
func (s Shape) Len() int {
	return s.Staff * s.Days * s.Hours
}

// Index returns the gene position for (staff, day, hour)
func (s Shape) Index(staff, day, hour int) int {
	return (staff*s.Days+day)*s.Hours + hour
}

// Coords is the inverse of Index
func (s Shape) Coords(i int) (staff, day, hour int) {
	hour = i % s.Hours
	i /= s.Hours
	day = i % s.Days
	staff = i / s.Days
	return staff, day, hour
}

// Chromosome is a flat bit-vector: gene Index(s, d, h) is true when staff s works hour h of day d
type Chromosome []bool

// Clone returns an independent copy
func (c Chromosome) Clone() Chromosome {
	if c == nil {
		return nil
	}
	out := make(Chromosome, len(c))
	copy(out, c)
	return out
}

func (c Chromosome) Equal(other Chromosome) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// Key packs the genes into a string usable as a map key for duplicate detection
func (c Chromosome) Key() string {
	buf := make([]byte, (len(c)+7)/8)
	for i, g := range c {
		if g {
			buf[i/8] |= 1 << (i % 8)
		}
	}
	return string(buf)
}

// CountTrue returns the number of assigned genes
func (c Chromosome) CountTrue() int {
	n := 0
	for _, g := range c {
		if g {
			n++
		}
	}
	return n
}

// Individual is a chromosome paired with its cached fitness
type Individual struct {
	Genes   Chromosome
	Fitness float64
}

// Population is a fixed-size set of individuals
type Population []Individual

// Best returns the index of the fittest individual, the first one on ties.
// Returns -1 for an empty population.
func (p Population) Best() int {
	best := -1
	for i := range p {
		if best < 0 || p[i].Fitness > p[best].Fitness {
			best = i
		}
	}
	return best
}

// Worst returns the index of the least fit individual, the first one on ties
func (p Population) Worst() int {
	worst := -1
	for i := range p {
		if worst < 0 || p[i].Fitness < p[worst].Fitness {
			worst = i
		}
	}
	return worst
}

// GenerationStats summarises the fitness distribution of one generation
type GenerationStats struct {
	Generation int
	Max        float64
	Mean       float64
	Variance   float64

	// MutationProb is the effective per-chromosome mutation probability used to breed the next generation
	MutationProb float64
}

func computeStats(gen int, pop Population) GenerationStats {
	stats := GenerationStats{Generation: gen}
	if len(pop) == 0 {
		return stats
	}

	sum := 0.0
	stats.Max = pop[0].Fitness
	for _, ind := range pop {
		sum += ind.Fitness
		if ind.Fitness > stats.Max {
			stats.Max = ind.Fitness
		}
	}
	stats.Mean = sum / float64(len(pop))

	sq := 0.0
	for _, ind := range pop {
		d := ind.Fitness - stats.Mean
		sq += d * d
	}
	stats.Variance = sq / float64(len(pop))
	return stats
}
