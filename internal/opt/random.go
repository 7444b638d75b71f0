package opt

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/blackboxopt/internal/search"
)

// RandomSearcher is a stateless random-search baseline using the Ask-Tell
// protocol: every Ask proposes one Latin-hypercube batch of candidates, the
// driver evaluates them, and Tell has nothing to update since the archive
// already retains the best point. Useful as a sanity baseline and as the
// reference Ask-Tell implementation.
type RandomSearcher struct {
	space   *search.Space
	rng     *rand.Rand
	popSize int
}

// NewRandomSearcher creates a random-search baseline for one run.
func NewRandomSearcher(ev *Evaluator, cfg Config, rng *rand.Rand) (*RandomSearcher, error) {
	space := ev.Problem().Space
	if space == nil {
		return nil, fmt.Errorf("random search needs a problem with a search space")
	}
	return &RandomSearcher{
		space:   space,
		rng:     rng,
		popSize: cfg.PopulationSize,
	}, nil
}

// Name returns "random".
func (rs *RandomSearcher) Name() string { return "random" }

// Protocol returns AskTell.
func (rs *RandomSearcher) Protocol() Protocol { return AskTell }

// Ask proposes a stratified batch of candidates without evaluating any.
func (rs *RandomSearcher) Ask() []search.Individual {
	return rs.space.LatinHypercube(rs.rng, rs.popSize)
}

// Tell receives the externally computed fitness values. Random search keeps
// no population state, so there is nothing to update.
func (rs *RandomSearcher) Tell(candidates []search.Individual, fitnesses []float64) {}
