package opt

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/mayfly"

	"github.com/cwbudde/blackboxopt/internal/search"
)

// mayflyMinPop is the smallest population size mayfly v0.1.0 accepts.
const mayflyMinPop = 20

// MayflySearcher adapts the external mayfly metaheuristic to the Stepping
// protocol: every Step runs a short burst of mayfly iterations against an
// objective closure that routes through the run's Evaluator, so evaluation
// counting, archive updates, and termination budgets all apply unchanged.
//
// Each burst starts from a fresh mayfly population; continuity across steps
// comes from the archive, not from mayfly's internal state. Budget checks
// only run between bursts, so MayflyBurstIters should stay small relative to
// the evaluation budget.
type MayflySearcher struct {
	ev         *Evaluator
	space      *search.Space
	rng        *rand.Rand
	burstIters int
	popSize    int
}

// NewMayflySearcher creates a mayfly adapter for one run.
func NewMayflySearcher(ev *Evaluator, cfg Config, rng *rand.Rand) (*MayflySearcher, error) {
	space := ev.Problem().Space
	if space == nil {
		return nil, fmt.Errorf("mayfly search needs a problem with a search space")
	}

	popSize := cfg.PopulationSize
	if popSize < mayflyMinPop {
		popSize = mayflyMinPop
	}

	return &MayflySearcher{
		ev:         ev,
		space:      space,
		rng:        rng,
		burstIters: cfg.MayflyBurstIters,
		popSize:    popSize,
	}, nil
}

// Name returns "mayfly".
func (m *MayflySearcher) Name() string { return "mayfly" }

// Protocol returns Stepping.
func (m *MayflySearcher) Protocol() Protocol { return Stepping }

// Step runs one burst of mayfly iterations. Returns the number of archive
// improvements the burst produced.
func (m *MayflySearcher) Step() int {
	config := mayfly.NewDefaultConfig()

	// Mayfly minimizes cost; for maximization problems the sign is flipped
	// before handing the value to the library. Candidates are projected into
	// the box first, since mayfly only supports scalar bounds.
	maximize := m.ev.Problem().Scheme == Maximize
	config.ObjectiveFunc = func(x []float64) float64 {
		fitness := m.ev.Evaluate(m.space.Feasible(search.Individual(x)))
		if maximize {
			return -fitness
		}
		return fitness
	}

	config.ProblemSize = m.space.NumDims()
	config.MaxIterations = m.burstIters
	config.NPop = m.popSize

	// Scalar bounds: use the widest per-dimension extent so no dimension is
	// truncated; Feasible above projects back into the true box.
	lower, upper := m.space.DimMin(0), m.space.DimMax(0)
	for i := 1; i < m.space.NumDims(); i++ {
		if m.space.DimMin(i) < lower {
			lower = m.space.DimMin(i)
		}
		if m.space.DimMax(i) > upper {
			upper = m.space.DimMax(i)
		}
	}
	config.LowerBound = lower
	config.UpperBound = upper
	config.Rand = m.rng

	before := m.ev.Archive().NumImprovements()
	if _, err := mayfly.Optimize(config); err != nil {
		// The archive already holds everything the burst evaluated; a
		// library error just means this step made no extra progress.
		return 0
	}
	return m.ev.Archive().NumImprovements() - before
}
