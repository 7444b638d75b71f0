package opt

import "github.com/cwbudde/blackboxopt/internal/search"

// Protocol identifies which of the two interaction protocols a concrete
// optimizer implements. The set is closed: every optimizer is exactly one of
// the two, and the driver dispatches on this tag.
type Protocol int

const (
	// AskTell optimizers propose candidates without evaluating them and are
	// told externally computed fitness values afterwards.
	AskTell Protocol = iota
	// Stepping optimizers perform one self-contained unit of work per call,
	// including any evaluations they need.
	Stepping
)

func (p Protocol) String() string {
	if p == Stepping {
		return "stepping"
	}
	return "ask-tell"
}

// Optimizer is the common surface of all concrete search algorithms.
// Concrete types additionally implement AskTellOptimizer or
// SteppingOptimizer, matching their Protocol tag.
type Optimizer interface {
	Name() string
	Protocol() Protocol
}

// AskTellOptimizer separates candidate proposal from fitness reporting so a
// driver can batch (or, in a future extension, parallelize) evaluation.
// Ask must not evaluate; Tell must not re-evaluate. Tell must be called with
// exactly the candidates most recently returned by Ask, in the same order.
type AskTellOptimizer interface {
	Optimizer
	Ask() []search.Individual
	Tell(candidates []search.Individual, fitnesses []float64)
}

// SteppingOptimizer performs one complete unit of search per Step call,
// running its own evaluations through the run's Evaluator. Step returns the
// number of fitness improvements achieved during the call (0 if none, or if
// the algorithm does not track this).
type SteppingOptimizer interface {
	Optimizer
	Step() int
}
