package opt

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/cwbudde/blackboxopt/internal/search"
)

// Termination reasons. A finished run reports exactly one of these.
const (
	ReasonMaxTime          = "Max time reached"
	ReasonMaxFuncEvals     = "Max number of function evaluations reached"
	ReasonStagnation       = "Too many steps without function evaluations (stagnation)"
	ReasonMaxSteps         = "Max number of steps reached"
	ReasonDeltaFitness     = "Delta fitness below tolerance"
	ReasonFitnessTolerance = "Within fitness tolerance of optimum"
)

// ProgressReport is one throttled progress update handed to a TraceSink.
type ProgressReport struct {
	Step           int
	Elapsed        time.Duration
	NumEvals       int
	BestFitness    float64
	Best           search.Individual
	Improvements   int
	EvalsPerSecond float64
}

// TraceSink receives progress reports during a run. It is an external
// collaborator: the driver only promises to call it no more often than the
// configured trace interval.
type TraceSink interface {
	Report(ProgressReport)
}

// SlogSink logs progress reports through slog.
type SlogSink struct{}

// Report logs one progress line.
func (SlogSink) Report(r ProgressReport) {
	slog.Info("Optimization progress",
		"step", r.Step,
		"elapsed", r.Elapsed,
		"evals", r.NumEvals,
		"best_fitness", r.BestFitness,
		"evals_per_second", fmt.Sprintf("%.0f", r.EvalsPerSecond),
	)
}

// RunResult is the final outcome of one optimization run.
type RunResult struct {
	Best        search.Individual
	BestFitness float64
	Reason      string
	Elapsed     time.Duration
	NumEvals    int
	Steps       int

	// Config is the final parameter set including runtime-resolved values
	// such as the actually-used random seed.
	Config Config

	// Evaluator exposes the run's archive (improvement history) to export
	// collaborators. It must not be reused for another run.
	Evaluator *Evaluator
}

// Runner drives optimization runs: it constructs the optimizer from the
// registry, enforces the termination budgets, and reports progress.
type Runner struct {
	registry *Registry
	sink     TraceSink
}

// NewRunner creates a runner. The sink may be nil to disable progress
// reporting.
func NewRunner(registry *Registry, sink TraceSink) *Runner {
	return &Runner{registry: registry, sink: sink}
}

// resolveSeed applies the seed policy: with RandomizeRngSeed a fresh seed is
// drawn from a wide range before any other random draws; otherwise the
// configured seed is used as-is. The resolved seed is recorded in the result
// config either way, for reproducibility.
func resolveSeed(cfg Config) int64 {
	if !cfg.RandomizeRngSeed {
		return cfg.RngSeed
	}
	return rand.New(rand.NewSource(time.Now().UnixNano())).Int63n(1_000_000_000) + 1
}

// effectiveBudgets applies the precedence contract: a time budget disables
// the evaluation and step budgets, an evaluation budget disables the step
// budget, and with nothing configured the default step budget is the sole
// bound so a run is always boundable. Returned zero values mean "infinite".
func effectiveBudgets(cfg Config) (maxTime time.Duration, maxEvals, maxSteps int) {
	if cfg.MaxTime > 0 {
		return time.Duration(cfg.MaxTime * float64(time.Second)), 0, 0
	}
	if cfg.MaxFuncEvals > 0 {
		return 0, cfg.MaxFuncEvals, 0
	}
	return 0, 0, cfg.MaxSteps
}

// Run executes one optimization of problem under cfg. All configuration
// errors surface here, before the loop starts. Context cancellation aborts
// the run between iterations and returns ctx.Err(); it is not one of the six
// termination reasons.
func (r *Runner) Run(ctx context.Context, problem *Problem, cfg Config) (*RunResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	space, err := cfg.ResolveSpace(problem)
	if err != nil {
		return nil, err
	}

	cfg.ResolvedSeed = resolveSeed(cfg)
	rng := rand.New(rand.NewSource(cfg.ResolvedSeed))

	// The run's problem carries the resolved space so optimizers see one
	// consistent view.
	runProblem := &Problem{
		Name:      problem.Name,
		Objective: problem.Objective,
		Scheme:    problem.Scheme,
		Space:     space,
		Optimum:   problem.Optimum,
	}
	if err := runProblem.Probe(rng); err != nil {
		return nil, err
	}

	if cfg.MaxFuncEvals > budgetWarnThreshold {
		slog.Warn("Very large evaluation budget, this run may take a long time", "max_func_evals", cfg.MaxFuncEvals)
	}
	if cfg.MaxSteps > budgetWarnThreshold {
		slog.Warn("Very large step budget, this run may take a long time", "max_steps", cfg.MaxSteps)
	}

	ev := NewEvaluator(runProblem)
	optimizer, err := r.registry.New(cfg.Method, ev, cfg, rng)
	if err != nil {
		return nil, err
	}

	slog.Info("Starting optimization",
		"problem", runProblem.Name,
		"method", optimizer.Name(),
		"protocol", optimizer.Protocol().String(),
		"dimensions", space.NumDims(),
		"seed", cfg.ResolvedSeed,
	)

	maxTime, maxEvals, maxSteps := effectiveBudgets(cfg)
	traceInterval := time.Duration(cfg.TraceInterval * float64(time.Second))

	start := time.Now()
	lastReport := start
	prevEvals := ev.NumEvals()
	staleSteps := 0
	step := 0
	reason := ""

	for {
		if err := ctx.Err(); err != nil {
			return r.result(ev, cfg, "", start, step), err
		}

		elapsed := time.Since(start)
		switch {
		case maxTime > 0 && elapsed > maxTime:
			reason = ReasonMaxTime
		case maxEvals > 0 && ev.NumEvals() > maxEvals:
			reason = ReasonMaxFuncEvals
		case staleSteps > cfg.MaxNumStepsWithoutFuncEvals:
			reason = ReasonStagnation
		case maxSteps > 0 && step > maxSteps:
			reason = ReasonMaxSteps
		case ev.DeltaFitness() < cfg.MinDeltaFitnessTolerance:
			reason = ReasonDeltaFitness
		case runProblem.Optimum != nil && math.Abs(ev.BestFitness()-*runProblem.Optimum) < cfg.FitnessTolerance:
			reason = ReasonFitnessTolerance
		}
		if reason != "" {
			break
		}

		if r.sink != nil && time.Since(lastReport) >= traceInterval {
			eps := float64(0)
			if elapsed.Seconds() > 0 {
				eps = float64(ev.NumEvals()) / elapsed.Seconds()
			}
			r.sink.Report(ProgressReport{
				Step:           step,
				Elapsed:        elapsed,
				NumEvals:       ev.NumEvals(),
				BestFitness:    ev.BestFitness(),
				Best:           ev.BestCandidate(),
				Improvements:   ev.Archive().NumImprovements(),
				EvalsPerSecond: eps,
			})
			lastReport = time.Now()
		}

		// One driver iteration: a single Step for stepping optimizers, one
		// full ask/evaluate/tell cycle for ask-tell optimizers.
		if optimizer.Protocol() == Stepping {
			optimizer.(SteppingOptimizer).Step()
		} else {
			at := optimizer.(AskTellOptimizer)
			candidates := at.Ask()
			fitnesses := make([]float64, len(candidates))
			for i, cand := range candidates {
				fitnesses[i] = ev.Evaluate(cand)
			}
			at.Tell(candidates, fitnesses)
		}

		if ev.NumEvals() == prevEvals {
			staleSteps++
		} else {
			staleSteps = 0
			prevEvals = ev.NumEvals()
		}
		step++
	}

	result := r.result(ev, cfg, reason, start, step)
	slog.Info("Optimization complete",
		"problem", runProblem.Name,
		"reason", reason,
		"best_fitness", result.BestFitness,
		"evals", result.NumEvals,
		"steps", result.Steps,
		"elapsed", result.Elapsed,
	)
	return result, nil
}

func (r *Runner) result(ev *Evaluator, cfg Config, reason string, start time.Time, steps int) *RunResult {
	return &RunResult{
		Best:        ev.BestCandidate(),
		BestFitness: ev.BestFitness(),
		Reason:      reason,
		Elapsed:     time.Since(start),
		NumEvals:    ev.NumEvals(),
		Steps:       steps,
		Config:      cfg,
		Evaluator:   ev,
	}
}
