package opt

import (
	"math"
	"time"

	"github.com/cwbudde/blackboxopt/internal/search"
)

// Improvement records one improving update of the archive's best fitness,
// together with when (eval count and elapsed time) it happened. The slice of
// improvements is the history that trace/export consumers work from.
type Improvement struct {
	Fitness  float64       `json:"fitness"`
	NumEvals int           `json:"numEvals"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Archive tracks the best individual and fitness seen over a whole run.
// It only ever improves: Report replaces the best iff the reported fitness
// is strictly better under the configured scheme.
type Archive struct {
	scheme  FitnessScheme
	start   time.Time
	best    search.Individual
	bestFit float64
	hasBest bool
	history []Improvement
}

// NewArchive creates an empty archive for the given fitness scheme.
func NewArchive(scheme FitnessScheme) *Archive {
	return &Archive{
		scheme: scheme,
		start:  time.Now(),
	}
}

// isBetter reports whether fitness a is strictly better than b under the
// archive's scheme.
func (a *Archive) isBetter(fa, fb float64) bool {
	if a.scheme == Maximize {
		return fa > fb
	}
	return fa < fb
}

// Report offers a candidate and its fitness to the archive. The best entry
// is replaced only on strict improvement; the candidate is copied, never
// aliased. Returns true if the archive improved.
func (a *Archive) Report(candidate search.Individual, fitness float64, numEvals int) bool {
	if a.hasBest && !a.isBetter(fitness, a.bestFit) {
		return false
	}

	a.best = candidate.Clone()
	a.bestFit = fitness
	a.hasBest = true
	a.history = append(a.history, Improvement{
		Fitness:  fitness,
		NumEvals: numEvals,
		Elapsed:  time.Since(a.start),
	})
	return true
}

// BestFitness returns the best fitness seen so far. Before any report it is
// the scheme's worst possible value (+Inf when minimizing, -Inf when
// maximizing) so any first report improves on it.
func (a *Archive) BestFitness() float64 {
	if !a.hasBest {
		if a.scheme == Maximize {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	return a.bestFit
}

// BestCandidate returns a copy of the best individual seen so far, or nil if
// nothing has been reported yet.
func (a *Archive) BestCandidate() search.Individual {
	if !a.hasBest {
		return nil
	}
	return a.best.Clone()
}

// DeltaFitness returns the magnitude of change between the two most recent
// improving updates. Until two improvements have occurred it is +Inf, so it
// never triggers convergence on a fresh archive.
func (a *Archive) DeltaFitness() float64 {
	n := len(a.history)
	if n < 2 {
		return math.Inf(1)
	}
	return math.Abs(a.history[n-1].Fitness - a.history[n-2].Fitness)
}

// NumImprovements returns how many improving updates the archive has seen.
func (a *Archive) NumImprovements() int {
	return len(a.history)
}

// History returns a copy of all improving updates in the order they occurred.
func (a *Archive) History() []Improvement {
	out := make([]Improvement, len(a.history))
	copy(out, a.history)
	return out
}
