package opt

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/blackboxopt/internal/search"
)

// Objective is a black-box function to optimize. It must return a numeric
// value for every point inside the problem's search space.
type Objective func(search.Individual) float64

// FitnessScheme fixes the ordering used to compare fitness values.
type FitnessScheme int

const (
	// Minimize treats numerically smaller fitness as better.
	Minimize FitnessScheme = iota
	// Maximize treats numerically larger fitness as better.
	Maximize
)

func (fs FitnessScheme) String() string {
	if fs == Maximize {
		return "maximize"
	}
	return "minimize"
}

// Problem bundles an objective function with its search space and fitness
// scheme. Optimum, when non-nil, is the known optimal fitness value and
// enables the fitness-tolerance termination check.
type Problem struct {
	Name      string
	Objective Objective
	Scheme    FitnessScheme
	Space     *search.Space
	Optimum   *float64
}

// Probe evaluates the objective once at a random point and verifies the
// result is numeric. A NaN result means the objective is misconfigured;
// this is checked during setup, before the run loop starts.
func (p *Problem) Probe(rng *rand.Rand) error {
	if p.Objective == nil {
		return fmt.Errorf("problem %q has no objective function", p.Name)
	}
	if p.Space == nil {
		return fmt.Errorf("problem %q has no search space", p.Name)
	}
	probe := p.Space.RandomIndividual(rng)
	if math.IsNaN(p.Objective(probe)) {
		return fmt.Errorf("objective for problem %q returned NaN during probe evaluation", p.Name)
	}
	return nil
}
