package opt

import (
	"fmt"

	"github.com/cwbudde/blackboxopt/internal/search"
)

// Range is a single (min, max) pair applied to every dimension when no
// explicit per-dimension search space is given.
type Range struct {
	Min float64
	Max float64
}

// Config holds every recognized run option as a typed field. It replaces the
// layered key/value dictionaries of looser designs: overrides are merged over
// defaults explicitly via ApplyOverrides, and unknown keys are an error.
//
// Once a run starts the config is immutable except for ResolvedSeed, which
// the driver fills in and hands back in the run result.
type Config struct {
	// Method names the optimizer to construct; must be registered.
	Method string

	// NumDimensions together with SearchRange defines the search space for
	// dimension-agnostic problems. SearchSpace, when set, wins over both.
	NumDimensions int
	SearchRange   *Range
	SearchSpace   *search.Space

	// Termination budgets. MaxTime (seconds), when positive, disables the
	// evaluation and step budgets; MaxFuncEvals, when positive, disables the
	// step budget. MaxSteps is the always-present fallback bound.
	MaxTime      float64
	MaxFuncEvals int
	MaxSteps     int

	// Convergence tolerances.
	MinDeltaFitnessTolerance    float64
	FitnessTolerance            float64
	MaxNumStepsWithoutFuncEvals int

	// PopulationSize is used by population-based methods (mayfly).
	PopulationSize int

	// RandomizeRngSeed draws a fresh seed at run start; otherwise RngSeed is
	// used as-is. ResolvedSeed is the seed the run actually used.
	RandomizeRngSeed bool
	RngSeed          int64
	ResolvedSeed     int64

	// TraceInterval is the minimum number of seconds between progress
	// reports to the trace sink.
	TraceInterval float64

	// Memetic-search tuning.
	PrecisionRatio     float64
	InheritanceRatio   float64
	PrecisionThreshold float64

	// MayflyBurstIters is how many mayfly iterations one driver step runs.
	MayflyBurstIters int

	// InitialCandidate seeds the searcher's elite (used when resuming from a
	// checkpoint). Nil means start from a random individual.
	InitialCandidate search.Individual
}

// DefaultConfig returns the default value for every recognized option.
func DefaultConfig() Config {
	return Config{
		Method:                      "rs",
		MaxSteps:                    10000,
		MinDeltaFitnessTolerance:    1e-50,
		FitnessTolerance:            1e-8,
		MaxNumStepsWithoutFuncEvals: 100,
		PopulationSize:              50,
		RandomizeRngSeed:            true,
		TraceInterval:               0.5,
		PrecisionRatio:              0.40,
		InheritanceRatio:            0.30,
		PrecisionThreshold:          1e-6,
		MayflyBurstIters:            10,
	}
}

// budgetWarnThreshold is the heuristic size above which eval/step budgets get
// a warning (a run that large is probably a misconfiguration).
const budgetWarnThreshold = 1e7

// Validate checks the configuration eagerly, before the run loop starts.
// Every violation is fatal to setup; there is no retry path.
func (c Config) Validate() error {
	if c.Method == "" {
		return fmt.Errorf("no optimizer method configured")
	}
	if c.MaxTime < 0 {
		return fmt.Errorf("MaxTime must be positive, got %g", c.MaxTime)
	}
	if c.MaxFuncEvals < 0 {
		return fmt.Errorf("MaxFuncEvals must be at least 1, got %d", c.MaxFuncEvals)
	}
	if c.MaxSteps < 1 {
		return fmt.Errorf("MaxSteps must be at least 1, got %d", c.MaxSteps)
	}
	if c.PopulationSize < 2 {
		return fmt.Errorf("PopulationSize must be at least 2, got %d", c.PopulationSize)
	}
	if c.MinDeltaFitnessTolerance < 0 {
		return fmt.Errorf("MinDeltaFitnessTolerance must not be negative, got %g", c.MinDeltaFitnessTolerance)
	}
	if c.FitnessTolerance <= 0 {
		return fmt.Errorf("FitnessTolerance must be positive, got %g", c.FitnessTolerance)
	}
	if c.MaxNumStepsWithoutFuncEvals < 1 {
		return fmt.Errorf("MaxNumStepsWithoutFuncEvals must be at least 1, got %d", c.MaxNumStepsWithoutFuncEvals)
	}
	if c.PrecisionRatio <= 0 || c.PrecisionRatio > 1 {
		return fmt.Errorf("PrecisionRatio must be in (0, 1], got %g", c.PrecisionRatio)
	}
	if c.InheritanceRatio <= 0 || c.InheritanceRatio > 1 {
		return fmt.Errorf("InheritanceRatio must be in (0, 1], got %g", c.InheritanceRatio)
	}
	if c.PrecisionThreshold <= 0 {
		return fmt.Errorf("PrecisionThreshold must be positive, got %g", c.PrecisionThreshold)
	}
	if c.MayflyBurstIters < 1 {
		return fmt.Errorf("MayflyBurstIters must be at least 1, got %d", c.MayflyBurstIters)
	}
	if c.SearchRange != nil && c.SearchRange.Min > c.SearchRange.Max {
		return fmt.Errorf("SearchRange min %g > max %g", c.SearchRange.Min, c.SearchRange.Max)
	}
	return nil
}

// ResolveSpace determines the search space for a run: an explicit
// Config.SearchSpace wins, then SearchRange + NumDimensions, then the
// problem's own space. A SearchRange without a dimensionality is a
// configuration error.
func (c Config) ResolveSpace(problem *Problem) (*search.Space, error) {
	if c.SearchSpace != nil {
		return c.SearchSpace, nil
	}
	if c.SearchRange != nil {
		if c.NumDimensions < 1 {
			return nil, fmt.Errorf("SearchRange given but NumDimensions is not set")
		}
		return search.NewSymmetric(c.NumDimensions, c.SearchRange.Min, c.SearchRange.Max)
	}
	if problem != nil && problem.Space != nil {
		return problem.Space, nil
	}
	return nil, fmt.Errorf("no search space: set SearchSpace, or SearchRange with NumDimensions")
}

// ApplyOverrides merges a partial key/value mapping over the receiver,
// returning a new config. Keys present in the overrides replace the base
// value; missing keys keep it. Unknown keys are an error, as are values of
// the wrong shape.
func (c Config) ApplyOverrides(overrides map[string]any) (Config, error) {
	out := c
	for key, val := range overrides {
		var err error
		switch key {
		case "Method":
			out.Method, err = asString(val)
		case "NumDimensions":
			out.NumDimensions, err = asInt(val)
		case "SearchRange":
			out.SearchRange, err = asRange(val)
		case "MaxTime":
			out.MaxTime, err = asFloat(val)
		case "MaxFuncEvals":
			out.MaxFuncEvals, err = asInt(val)
		case "MaxSteps":
			out.MaxSteps, err = asInt(val)
		case "MinDeltaFitnessTolerance":
			out.MinDeltaFitnessTolerance, err = asFloat(val)
		case "FitnessTolerance":
			out.FitnessTolerance, err = asFloat(val)
		case "MaxNumStepsWithoutFuncEvals":
			out.MaxNumStepsWithoutFuncEvals, err = asInt(val)
		case "PopulationSize":
			out.PopulationSize, err = asInt(val)
		case "RandomizeRngSeed":
			out.RandomizeRngSeed, err = asBool(val)
		case "RngSeed":
			var seed int
			seed, err = asInt(val)
			out.RngSeed = int64(seed)
		case "TraceInterval":
			out.TraceInterval, err = asFloat(val)
		case "PrecisionRatio":
			out.PrecisionRatio, err = asFloat(val)
		case "InheritanceRatio":
			out.InheritanceRatio, err = asFloat(val)
		case "PrecisionThreshold":
			out.PrecisionThreshold, err = asFloat(val)
		case "MayflyBurstIters":
			out.MayflyBurstIters, err = asInt(val)
		default:
			return out, fmt.Errorf("unknown option %q", key)
		}
		if err != nil {
			return out, fmt.Errorf("option %q: %w", key, err)
		}
	}
	return out, nil
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", v)
	}
	return s, nil
}

func asBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expected bool, got %T", v)
	}
	return b, nil
}

// asInt accepts the integer shapes YAML and JSON decoders produce.
func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("expected integer, got %g", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

// asRange accepts a two-element sequence of numbers, e.g. [-10, 10].
func asRange(v any) (*Range, error) {
	seq, ok := v.([]any)
	if !ok || len(seq) != 2 {
		return nil, fmt.Errorf("expected a [min, max] pair, got %T", v)
	}
	min, err := asFloat(seq[0])
	if err != nil {
		return nil, err
	}
	max, err := asFloat(seq[1])
	if err != nil {
		return nil, err
	}
	return &Range{Min: min, Max: max}, nil
}
