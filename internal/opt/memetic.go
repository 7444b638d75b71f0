package opt

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/blackboxopt/internal/search"
)

// ResampleStrategy selects how the memetic searcher draws fresh candidates.
type ResampleStrategy int

const (
	// ResampleRandom (RS) draws candidates uniformly from the search space,
	// unrelated to the elite.
	ResampleRandom ResampleStrategy = iota
	// ResampleInheritance (RIS) biases fresh candidates toward inheriting a
	// contiguous circular run of the elite's coordinates.
	ResampleInheritance
)

// ResamplingMemeticSearcher implements resampling (inheritance) memetic
// search: a single elite candidate, a per-dimension precision vector, and a
// coordinate-wise local search with precision halving. It uses the Stepping
// protocol; every Step resamples, updates the elite, and runs one local
// search from it.
type ResamplingMemeticSearcher struct {
	name     string
	ev       *Evaluator
	space    *search.Space
	rng      *rand.Rand
	strategy ResampleStrategy

	elite        search.Individual
	eliteFitness float64

	// diameters and initialPrecisions are cached at construction;
	// precisions shrinks during local search and is reset from
	// initialPrecisions at the start of every local-search call.
	diameters          []float64
	initialPrecisions  []float64
	precisions         []float64
	inheritanceRatio   float64
	precisionThreshold float64
}

// NewResamplingMemeticSearcher draws (or adopts, when cfg.InitialCandidate is
// set) an initial elite, evaluates it, and caches the precision vector as
// cfg.PrecisionRatio of each dimension's diameter.
func NewResamplingMemeticSearcher(ev *Evaluator, cfg Config, rng *rand.Rand, strategy ResampleStrategy) (*ResamplingMemeticSearcher, error) {
	space := ev.Problem().Space
	if space == nil {
		return nil, fmt.Errorf("memetic search needs a problem with a search space")
	}

	name := "rs"
	if strategy == ResampleInheritance {
		name = "ris"
	}

	rms := &ResamplingMemeticSearcher{
		name:               name,
		ev:                 ev,
		space:              space,
		rng:                rng,
		strategy:           strategy,
		diameters:          space.Deltas(),
		inheritanceRatio:   cfg.InheritanceRatio,
		precisionThreshold: cfg.PrecisionThreshold,
	}

	rms.initialPrecisions = make([]float64, space.NumDims())
	rms.precisions = make([]float64, space.NumDims())
	for i := range rms.initialPrecisions {
		rms.initialPrecisions[i] = cfg.PrecisionRatio * rms.diameters[i]
	}

	if cfg.InitialCandidate != nil {
		if len(cfg.InitialCandidate) != space.NumDims() {
			return nil, fmt.Errorf("initial candidate has %d dimensions, search space has %d",
				len(cfg.InitialCandidate), space.NumDims())
		}
		rms.elite = space.Feasible(cfg.InitialCandidate)
	} else {
		rms.elite = space.RandomIndividual(rng)
	}
	rms.eliteFitness = ev.Evaluate(rms.elite)

	return rms, nil
}

// Name returns "rs" or "ris" depending on the resampling strategy.
func (rms *ResamplingMemeticSearcher) Name() string { return rms.name }

// Protocol returns Stepping.
func (rms *ResamplingMemeticSearcher) Protocol() Protocol { return Stepping }

// Elite returns a copy of the current elite and its fitness. The elite is the
// searcher's local best and can lag the archive's global best.
func (rms *ResamplingMemeticSearcher) Elite() (search.Individual, float64) {
	return rms.elite.Clone(), rms.eliteFitness
}

// Step resamples two candidates, keeps the better one, adopts it as elite if
// it improves, then runs one local search from the elite. Returns the number
// of elite improvements achieved during the step.
func (rms *ResamplingMemeticSearcher) Step() int {
	improved := 0

	trial, trialFitness := rms.ev.BestOf(rms.resample(), rms.resample())
	if rms.updateElite(trial, trialFitness) {
		improved++
	}

	improved += rms.localSearch()
	return improved
}

// updateElite adopts the candidate as the new elite iff it is strictly
// better. An improving trial is always adopted immediately; the archive
// retains the globally best point regardless, so this costs nothing.
func (rms *ResamplingMemeticSearcher) updateElite(cand search.Individual, fitness float64) bool {
	if !rms.ev.IsBetter(fitness, rms.eliteFitness) {
		return false
	}
	rms.elite = cand.Clone()
	rms.eliteFitness = fitness
	return true
}

// resample draws a fresh candidate according to the configured strategy.
func (rms *ResamplingMemeticSearcher) resample() search.Individual {
	cand := rms.space.RandomIndividual(rms.rng)
	if rms.strategy == ResampleRandom {
		return cand
	}

	// Inheritance-biased resampling: starting at a random dimension and
	// advancing circularly, overwrite coordinates with the elite's while
	// Uniform(0,1) draws stay below Cr, for at most n overwrites. With
	// Cr = 0.5^(1/(ratio*n)) the expected inherited fraction tracks the
	// configured inheritance ratio.
	n := len(cand)
	cr := math.Pow(0.5, 1.0/(rms.inheritanceRatio*float64(n)))
	i := rms.rng.Intn(n)
	for k := 0; k < n && rms.rng.Float64() < cr; k++ {
		cand[i] = rms.elite[i]
		i = (i + 1) % n
	}
	return cand
}

// localSearch runs coordinate-wise line search from a copy of the elite.
// For each dimension it first tries stepping down by the dimension's
// precision, then up by half of it. After every full pass it attempts to
// promote the result to elite; a pass with no strict improvement halves the
// whole precision vector. The loop stops once the Euclidean norm of
// precision/diameter drops below the precision threshold, which ties the
// stopping test to each dimension's physical scale.
//
// The elite and the cached precision vector are never mutated except through
// updateElite and the halving rule. Returns the number of elite improvements.
func (rms *ResamplingMemeticSearcher) localSearch() int {
	copy(rms.precisions, rms.initialPrecisions)

	x := rms.elite.Clone()
	fitness := rms.eliteFitness
	improved := 0

	for !rms.precisionConverged() {
		for i := range x {
			down := x.Clone()
			down[i] = clampDim(rms.space, i, down[i]-rms.precisions[i])
			if f := rms.ev.Evaluate(down); rms.ev.IsBetter(f, fitness) {
				x = down
				fitness = f
				continue
			}

			up := x.Clone()
			up[i] = clampDim(rms.space, i, up[i]+rms.precisions[i]/2)
			if f := rms.ev.Evaluate(up); rms.ev.IsBetter(f, fitness) {
				x = up
				fitness = f
			}
		}

		if rms.updateElite(x, fitness) {
			improved++
		} else {
			// Halving strictly decreases the precision norm, so the
			// stopping test below is always reached eventually.
			for i := range rms.precisions {
				rms.precisions[i] /= 2
			}
		}
	}

	return improved
}

// precisionConverged reports whether ||precision_i/diameter_i||_2 has fallen
// below the configured threshold.
func (rms *ResamplingMemeticSearcher) precisionConverged() bool {
	var sum float64
	for i := range rms.precisions {
		if rms.diameters[i] == 0 {
			continue
		}
		ratio := rms.precisions[i] / rms.diameters[i]
		sum += ratio * ratio
	}
	return math.Sqrt(sum) < rms.precisionThreshold
}

func clampDim(space *search.Space, i int, v float64) float64 {
	return math.Max(space.DimMin(i), math.Min(space.DimMax(i), v))
}
