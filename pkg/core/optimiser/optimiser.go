package optimiser

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-optimiser/pkg/core/model"
)

// ErrAlreadyRun is returned when Run is called more than once on the same Optimiser
var ErrAlreadyRun = errors.New("optimiser has already run")

// State is the lifecycle stage of an Optimiser
type State string

const (
	StateInitialising State = "initialising"
	StateEvolving     State = "evolving"
	StateConverged    State = "converged"
	StateTerminated   State = "terminated"
)

// StopReason records why evolution ended
type StopReason string

const (
	StopGenerationBudget StopReason = "generation_budget"
	StopPlateau          StopReason = "plateau"
	StopCancelled        StopReason = "cancelled"
	StopTimeLimit        StopReason = "time_limit"
	StopDegenerate       StopReason = "degenerate"
)

// Optimiser evolves a population of schedules for a single problem.
// Operators are fixed at construction; all randomness flows from one seeded source.
type Optimiser struct {
	problem   *Problem
	evaluator *Evaluator
	repairer  *Repairer
	selector  Selector
	crossover Crossover
	mutator   Mutator
	rate      *AdaptiveRate

	seed   uint64
	rng    *rand.Rand
	logger *zap.Logger

	mu    sync.Mutex
	state State
	ran   bool
}

// NewOptimiser wires the operators configured for the problem.
// When the config seed is 0 a seed is drawn and reported in the Result.
func NewOptimiser(problem *Problem, logger *zap.Logger) *Optimiser {
	cfg := problem.Config

	seed := cfg.Seed
	for seed == 0 {
		seed = rand.Uint64()
	}

	evaluator := NewEvaluator(problem)
	return &Optimiser{
		problem:   problem,
		evaluator: evaluator,
		repairer:  NewRepairer(evaluator),
		selector:  NewSelector(cfg),
		crossover: BlockCrossover{Shape: problem.Shape, Mode: cfg.Crossover},
		mutator:   Mutator{GeneFlipProb: cfg.GeneFlipProb},
		rate:      NewAdaptiveRate(cfg.MutationProb, cfg.Adaptive),
		seed:      seed,
		rng:       rand.New(rand.NewPCG(seed, seed)),
		logger:    logger,
		state:     StateInitialising,
	}
}

// Optimise validates the inputs and runs a single optimisation to completion
func Optimise(ctx context.Context, cfg Config, roster model.Roster, logger *zap.Logger) (*Result, error) {
	problem, err := NewProblem(cfg, roster)
	if err != nil {
		return nil, err
	}
	return NewOptimiser(problem, logger).Run(ctx)
}

// Seed returns the seed driving this optimiser's random source
func (o *Optimiser) Seed() uint64 {
	return o.seed
}

// State returns the current lifecycle stage. Safe to call while Run is in progress.
func (o *Optimiser) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Optimiser) setState(s State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = s
}

// Run evolves the population until the generation budget is spent, the best
// fitness plateaus, the time limit passes or ctx is cancelled. Cancellation is
// only observed between generations and still yields the best schedule found.
// Optimisation itself never fails; the only error is ErrAlreadyRun.
func (o *Optimiser) Run(ctx context.Context) (*Result, error) {
	o.mu.Lock()
	if o.ran {
		o.mu.Unlock()
		return nil, ErrAlreadyRun
	}
	o.ran = true
	o.mu.Unlock()

	cfg := o.problem.Config
	start := time.Now()

	if o.problem.Degenerate() {
		o.logger.Info("Nothing to optimise",
			zap.Int("staff", o.problem.Shape.Staff),
			zap.Int("generations", cfg.Generations))
		o.setState(StateTerminated)
		empty := make(Chromosome, o.problem.Shape.Len())
		return o.result(empty, nil, StateTerminated, StopDegenerate), nil
	}

	o.logger.Debug("Initialising population",
		zap.Int("population_size", cfg.PopulationSize),
		zap.Int("chromosome_length", o.problem.Shape.Len()),
		zap.Uint64("seed", o.seed))

	pop := Initialise(o.problem, o.repairer, o.rng)
	o.evaluatePopulation(pop)
	o.setState(StateEvolving)

	var (
		elite   Individual
		stats   = make([]GenerationStats, 0, cfg.Generations)
		stale   int
		state   State
		reason  StopReason
		hasBest bool
	)

	for gen := 0; ; gen++ {
		genStats := computeStats(gen, pop)

		// The elite only changes on strict improvement
		best := pop[pop.Best()]
		if !hasBest || best.Fitness > elite.Fitness {
			elite = Individual{Genes: best.Genes.Clone(), Fitness: best.Fitness}
			hasBest = true
			stale = 0
		} else {
			stale++
		}

		genStats.MutationProb = o.rate.Observe(genStats.Variance)
		stats = append(stats, genStats)

		if cfg.LogInterval > 0 && gen%cfg.LogInterval == 0 {
			o.logger.Info("Generation complete",
				zap.Int("generation", gen),
				zap.Float64("best", elite.Fitness),
				zap.Float64("mean", genStats.Mean),
				zap.Float64("variance", genStats.Variance),
				zap.Float64("mutation_prob", genStats.MutationProb))
		}

		state, reason = o.checkTermination(ctx, gen, stale, start)
		if state != "" {
			break
		}

		pop = o.breed(pop, elite)
	}

	o.setState(state)
	o.logger.Info("Optimisation finished",
		zap.String("state", string(state)),
		zap.String("reason", string(reason)),
		zap.Int("generations", len(stats)),
		zap.Float64("fitness", elite.Fitness),
		zap.Duration("elapsed", time.Since(start)))

	return o.result(elite.Genes, stats, state, reason), nil
}

// checkTermination returns the terminal state and reason once the run should stop, or "" to continue
func (o *Optimiser) checkTermination(ctx context.Context, gen, stale int, start time.Time) (State, StopReason) {
	cfg := o.problem.Config

	if gen+1 >= cfg.Generations {
		return StateConverged, StopGenerationBudget
	}
	if cfg.PlateauGenerations > 0 && stale >= cfg.PlateauGenerations {
		return StateConverged, StopPlateau
	}
	if ctx.Err() != nil {
		return StateTerminated, StopCancelled
	}
	if cfg.TimeLimit > 0 && time.Since(start) >= cfg.TimeLimit {
		return StateTerminated, StopTimeLimit
	}
	return "", ""
}

// offspring is a child awaiting repair and evaluation
type offspring struct {
	genes  Chromosome
	repair bool
	seed   uint64
}

// breed produces the next generation and splices the elite over its weakest member.
// All draws from the shared random source happen sequentially here; repair of each
// child runs in parallel on its own source seeded from the shared one.
func (o *Optimiser) breed(pop Population, elite Individual) Population {
	cfg := o.problem.Config
	mutationProb := o.rate.Current()

	children := make([]offspring, 0, cfg.PopulationSize)
	for len(children) < cfg.PopulationSize {
		a := pop[o.selector.Select(pop, o.rng)].Genes
		b := pop[o.selector.Select(pop, o.rng)].Genes

		var c1, c2 Chromosome
		if o.rng.Float64() < cfg.CrossoverProb {
			c1, c2 = o.crossover.Cross(a, b, o.rng)
		} else {
			c1, c2 = a.Clone(), b.Clone()
		}

		for _, child := range []Chromosome{c1, c2} {
			if len(children) == cfg.PopulationSize {
				break
			}
			if o.rng.Float64() < mutationProb {
				child = o.mutator.Mutate(child, o.rng)
			}
			children = append(children, offspring{
				genes:  child,
				repair: o.rng.Float64() < cfg.RepairProb,
				seed:   o.rng.Uint64(),
			})
		}
	}

	next := make(Population, len(children))
	p := pool.New().WithMaxGoroutines(cfg.Parallelism)
	for i, child := range children {
		p.Go(func() {
			genes := child.genes
			if child.repair {
				genes = o.repairer.Repair(genes, rand.New(rand.NewPCG(child.seed, uint64(i))))
			}
			next[i] = Individual{Genes: genes, Fitness: o.evaluator.Evaluate(genes)}
		})
	}
	p.Wait()

	next[next.Worst()] = Individual{Genes: elite.Genes.Clone(), Fitness: elite.Fitness}
	return next
}

// evaluatePopulation scores every individual concurrently, bounded by Parallelism
func (o *Optimiser) evaluatePopulation(pop Population) {
	p := pool.New().WithMaxGoroutines(o.problem.Config.Parallelism)
	for i := range pop {
		p.Go(func() {
			pop[i].Fitness = o.evaluator.Evaluate(pop[i].Genes)
		})
	}
	p.Wait()
}

func (o *Optimiser) result(best Chromosome, stats []GenerationStats, state State, reason StopReason) *Result {
	if stats == nil {
		stats = []GenerationStats{}
	}
	return &Result{
		Schedule:    NewSchedule(o.problem.Shape, o.problem.Roster.StaffIDs(), best),
		Fitness:     o.evaluator.Evaluate(best),
		Breakdown:   o.evaluator.Breakdown(best),
		Violations:  o.evaluator.Violations(best),
		Stats:       stats,
		State:       state,
		StopReason:  reason,
		Generations: len(stats),
		Seed:        o.seed,
	}
}
