package optimiser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-optimiser/pkg/core/model"
)

func runOnce(t *testing.T, p *Problem) *Result {
	t.Helper()
	result, err := NewOptimiser(p, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	return result
}

func TestRun_BestFitnessNeverDecreases(t *testing.T) {
	p := richProblem(t)
	p.Config.Generations = 25

	result := runOnce(t, p)

	require.Len(t, result.Stats, 25)
	for i := 1; i < len(result.Stats); i++ {
		assert.GreaterOrEqual(t, result.Stats[i].Max, result.Stats[i-1].Max, "generation %d", i)
	}
	assert.Equal(t, result.Stats[len(result.Stats)-1].Max, result.Fitness)
	assert.LessOrEqual(t, result.Fitness, 0.0)
	assert.Equal(t, StateConverged, result.State)
	assert.Equal(t, StopGenerationBudget, result.StopReason)
	assert.Equal(t, 25, result.Generations)
}

func TestRun_GenerationBudgetIncludesInitialPopulation(t *testing.T) {
	p := richProblem(t)
	p.Config.Generations = 4

	result := runOnce(t, p)

	// Generation 0 is the initial population, followed by three bred generations
	require.Len(t, result.Stats, 4)
	for i, s := range result.Stats {
		assert.Equal(t, i, s.Generation)
	}
	assert.Equal(t, StopGenerationBudget, result.StopReason)
}

func TestRun_StatsAreConsistent(t *testing.T) {
	p := richProblem(t)

	result := runOnce(t, p)

	for i, s := range result.Stats {
		assert.Equal(t, i, s.Generation)
		assert.LessOrEqual(t, s.Mean, s.Max)
		assert.GreaterOrEqual(t, s.Variance, 0.0)
		assert.Greater(t, s.MutationProb, 0.0)
		assert.LessOrEqual(t, s.MutationProb, 1.0)
	}
}

func TestRun_SameSeedReproducesRun(t *testing.T) {
	first := runOnce(t, richProblem(t))
	second := runOnce(t, richProblem(t))

	assert.Equal(t, uint64(42), first.Seed)
	assert.True(t, first.Schedule.Chromosome().Equal(second.Schedule.Chromosome()))
	assert.Equal(t, first.Stats, second.Stats)
}

func TestRun_ZeroSeedIsDrawnAndReported(t *testing.T) {
	p := richProblem(t)
	p.Config.Seed = 0
	p.Config.Generations = 2

	o := NewOptimiser(p, zap.NewNop())
	result, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.NotZero(t, result.Seed)
	assert.Equal(t, o.Seed(), result.Seed)
}

func TestRun_FindsFeasibleScheduleForEasyProblem(t *testing.T) {
	roster := newRoster(4, 2, 4)
	roster.Staff[0].SetPreference(0, 0, model.Desired)
	roster.Staff[1].SetPreference(1, 3, model.Unavailable)

	cfg := testConfig(4, 2, 4, 1, 2)
	cfg.Generations = 30
	p := mustProblem(t, cfg, roster)

	result := runOnce(t, p)

	assert.Equal(t, 0.0, result.Fitness)
	assert.Empty(t, result.Violations)
	assert.True(t, result.Schedule.Assigned(0, 0, 0))
	assert.False(t, result.Schedule.Assigned(1, 1, 3))
}

func TestRun_CancelledContextStopsBetweenGenerations(t *testing.T) {
	p := richProblem(t)
	p.Config.Generations = 100

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewOptimiser(p, zap.NewNop()).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, StateTerminated, result.State)
	assert.Equal(t, StopCancelled, result.StopReason)
	assert.Len(t, result.Stats, 1)
	assert.NotNil(t, result.Schedule)
}

func TestRun_PlateauConverges(t *testing.T) {
	// Nothing is required, so the initial population is already optimal
	cfg := testConfig(2, 1, 2, 0, 2)
	cfg.Generations = 100
	cfg.PlateauGenerations = 3
	p := mustProblem(t, cfg, newRoster(2, 1, 2))

	result := runOnce(t, p)

	assert.Equal(t, StateConverged, result.State)
	assert.Equal(t, StopPlateau, result.StopReason)
	assert.Len(t, result.Stats, 4)
	assert.Equal(t, 0.0, result.Fitness)
}

func TestRun_ZeroStaffIsDegenerate(t *testing.T) {
	cfg := testConfig(0, 2, 3, 0, 0)
	p := mustProblem(t, cfg, model.Roster{})

	result := runOnce(t, p)

	assert.Equal(t, StopDegenerate, result.StopReason)
	assert.Equal(t, StateTerminated, result.State)
	assert.Empty(t, result.Stats)
	assert.Empty(t, result.Schedule.Assignments())
	assert.Equal(t, 0, result.Generations)
}

func TestRun_ZeroGenerationsIsDegenerate(t *testing.T) {
	cfg := testConfig(2, 1, 2, 1, 2)
	cfg.Generations = 0
	p := mustProblem(t, cfg, newRoster(2, 1, 2))

	result := runOnce(t, p)

	assert.Equal(t, StopDegenerate, result.StopReason)
	assert.Empty(t, result.Stats)
	assert.Empty(t, result.Schedule.Assignments())
}

func TestRun_SecondCallFails(t *testing.T) {
	p := richProblem(t)
	p.Config.Generations = 1
	o := NewOptimiser(p, zap.NewNop())
	assert.Equal(t, StateInitialising, o.State())

	_, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateConverged, o.State())

	_, err = o.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRun)
}

func TestRun_RouletteAndStaffBlockCrossover(t *testing.T) {
	p := richProblem(t)
	p.Config.Selection = SelectionRoulette
	p.Config.Crossover = CrossoverStaffBlock
	p.Config.RepairProb = 0.3
	p.Config.Generations = 15

	result := runOnce(t, p)

	assert.Len(t, result.Stats, 15)
	for i := 1; i < len(result.Stats); i++ {
		assert.GreaterOrEqual(t, result.Stats[i].Max, result.Stats[i-1].Max)
	}
}

func TestBreed_KeepsPopulationSizeAndElite(t *testing.T) {
	p := richProblem(t)
	o := NewOptimiser(p, zap.NewNop())

	pop := Initialise(p, o.repairer, o.rng)
	o.evaluatePopulation(pop)
	best := pop[pop.Best()]

	for range 5 {
		next := o.breed(pop, best)
		require.Len(t, next, p.Config.PopulationSize)

		found := false
		for _, ind := range next {
			if ind.Genes.Equal(best.Genes) {
				found = true
			}
		}
		assert.True(t, found, "elite must survive breeding")
		assert.GreaterOrEqual(t, next[next.Best()].Fitness, best.Fitness)
		pop = next
		best = pop[pop.Best()]
	}
}

func TestOptimise_RejectsInvalidInput(t *testing.T) {
	cfg := testConfig(2, 1, 2, 3, 2)
	_, err := Optimise(context.Background(), cfg, newRoster(2, 1, 2), zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = testConfig(3, 1, 2, 1, 2)
	_, err = Optimise(context.Background(), cfg, newRoster(2, 1, 2), zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	roster := newRoster(2, 1, 2)
	roster.Incompatible = []model.IncompatiblePair{{A: "s0", B: "ghost"}}
	_, err = Optimise(context.Background(), testConfig(2, 1, 2, 1, 2), roster, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid roster")
}

func TestSchedule_Accessors(t *testing.T) {
	shape := Shape{Staff: 2, Days: 2, Hours: 3}
	genes := assign(shape, [3]int{0, 0, 0}, [3]int{0, 0, 1}, [3]int{1, 0, 1}, [3]int{1, 1, 2})
	s := NewSchedule(shape, []string{"a", "b"}, genes)

	assert.True(t, s.Assigned(1, 1, 2))
	assert.False(t, s.Assigned(5, 0, 0))
	assert.Equal(t, []int{0, 1}, s.StaffOn(0, 1))
	assert.Equal(t, 2, s.DailyHours(0, 0))
	assert.Equal(t, 2, s.HoursFor(1))
	assert.Equal(t, "b", s.StaffID(1))

	assignments := s.Assignments()
	require.Len(t, assignments, 4)
	assert.Equal(t, Assignment{Staff: 1, StaffID: "b", Day: 1, Hour: 2}, assignments[3])

	// The schedule keeps its own copy of the genes
	genes[0] = false
	assert.True(t, s.Assigned(0, 0, 0))
}
