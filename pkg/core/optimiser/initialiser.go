package optimiser

import (
	"math"
	"math/rand/v2"
)

// Initialise builds the generation-0 population.
//
// The first SmartSeedRatio share of individuals is seeded greedily from staff
// preferences, the rest are random and repaired. An individual identical to one
// already accepted is redrawn up to SeedRetries times before being accepted anyway.
// Fitness values are left at zero for the caller to evaluate.
func Initialise(problem *Problem, repairer *Repairer, rng *rand.Rand) Population {
	cfg := problem.Config
	pop := make(Population, cfg.PopulationSize)
	smart := int(math.Round(float64(cfg.PopulationSize) * cfg.SmartSeedRatio))

	seen := make(map[string]bool, cfg.PopulationSize)
	for i := range pop {
		build := func() Chromosome {
			if i < smart {
				return smartSeed(problem, rng)
			}
			return repairer.Repair(randomSeed(problem, rng), rng)
		}

		ch := build()
		for retry := 0; retry < cfg.SeedRetries && seen[ch.Key()]; retry++ {
			ch = build()
		}
		seen[ch.Key()] = true
		pop[i] = Individual{Genes: ch}
	}
	return pop
}

// randomSeed assigns every available gene with probability one half
func randomSeed(p *Problem, rng *rand.Rand) Chromosome {
	ch := make(Chromosome, p.Shape.Len())
	for i := range ch {
		ch[i] = !p.unavailable[i] && rng.IntN(2) == 1
	}
	return ch
}

// smartSeed builds a schedule that honours desired hours first, then tops up understaffed slots
func smartSeed(p *Problem, rng *rand.Rand) Chromosome {
	ch := make(Chromosome, p.Shape.Len())
	cfg := p.Config

	// Desired hours, visiting staff in random order so no one is always first in line
	for _, s := range rng.Perm(p.Shape.Staff) {
		for d := range p.Shape.Days {
			for h := range p.Shape.Hours {
				if !p.Desired(s, d, h) {
					continue
				}
				if p.slotCount(ch, d, h) >= cfg.MaxStaffPerHour {
					continue
				}
				if p.dailyHours(ch, s, d) >= cfg.MaxWorkHoursPerDay {
					continue
				}
				ch[p.Shape.Index(s, d, h)] = true
			}
		}
	}

	// Top up slots below the minimum in tiers: first without opening a gap and
	// under the daily cap, then anyone under the cap, then anyone available
	tiers := []func(s, d, h int) bool{
		func(s, d, h int) bool {
			return p.dailyHours(ch, s, d) < cfg.MaxWorkHoursPerDay && placement(p, ch, s, d, h) < 2
		},
		func(s, d, h int) bool {
			return p.dailyHours(ch, s, d) < cfg.MaxWorkHoursPerDay
		},
		func(s, d, h int) bool {
			return true
		},
	}

	for d := range p.Shape.Days {
		for h := range p.Shape.Hours {
			for _, allowed := range tiers {
				shortfall := cfg.MinStaffPerHour - p.slotCount(ch, d, h)
				if shortfall <= 0 {
					break
				}
				for _, s := range rng.Perm(p.Shape.Staff) {
					if shortfall == 0 {
						break
					}
					idx := p.Shape.Index(s, d, h)
					if ch[idx] || p.unavailable[idx] || !allowed(s, d, h) {
						continue
					}
					ch[idx] = true
					shortfall--
				}
			}
		}
	}
	return ch
}
