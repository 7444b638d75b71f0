package opt

import (
	"github.com/cwbudde/blackboxopt/internal/search"
)

// Evaluator wraps a problem's objective function, counts evaluations, and
// feeds every result into an Archive. One evaluator is created per
// optimization run and must not be shared across concurrent runs; all calls
// are strictly sequential.
type Evaluator struct {
	problem     *Problem
	archive     *Archive
	numEvals    int
	lastFitness float64
}

// NewEvaluator creates an evaluator with a fresh archive for one run.
func NewEvaluator(problem *Problem) *Evaluator {
	return &Evaluator{
		problem: problem,
		archive: NewArchive(problem.Scheme),
	}
}

// Problem returns the problem this evaluator wraps.
func (ev *Evaluator) Problem() *Problem { return ev.problem }

// Archive returns the run's archive.
func (ev *Evaluator) Archive() *Archive { return ev.archive }

// Evaluate invokes the objective function exactly once, increments the
// evaluation counter, and reports the result to the archive. Aside from the
// counter and archive updates the call has no observable side effects.
func (ev *Evaluator) Evaluate(ind search.Individual) float64 {
	fitness := ev.problem.Objective(ind)
	ev.numEvals++
	ev.lastFitness = fitness
	ev.archive.Report(ind, fitness, ev.numEvals)
	return fitness
}

// IsBetter reports whether fitness a is strictly better than b under the
// problem's fitness scheme.
func (ev *Evaluator) IsBetter(a, b float64) bool {
	return ev.archive.isBetter(a, b)
}

// BestOf evaluates both candidates (two evaluations) and returns whichever
// is better together with its fitness. Ties go to the first argument.
func (ev *Evaluator) BestOf(a, b search.Individual) (search.Individual, float64) {
	fa := ev.Evaluate(a)
	fb := ev.Evaluate(b)
	if ev.IsBetter(fb, fa) {
		return b, fb
	}
	return a, fa
}

// NumEvals returns the number of objective evaluations so far. It increases
// by exactly one per Evaluate call and is never reset during a run.
func (ev *Evaluator) NumEvals() int { return ev.numEvals }

// LastFitness returns the most recently computed fitness value.
func (ev *Evaluator) LastFitness() float64 { return ev.lastFitness }

// BestFitness returns the archive's current best fitness.
func (ev *Evaluator) BestFitness() float64 { return ev.archive.BestFitness() }

// BestCandidate returns a copy of the archive's current best individual.
func (ev *Evaluator) BestCandidate() search.Individual { return ev.archive.BestCandidate() }

// DeltaFitness returns the archive's delta between its two latest improving
// updates; +Inf until two improvements have occurred.
func (ev *Evaluator) DeltaFitness() float64 { return ev.archive.DeltaFitness() }
