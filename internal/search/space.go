package search

import (
	"fmt"
	"math"
	"math/rand"
)

// Individual is a candidate solution: one coordinate per search-space dimension.
type Individual []float64

// Clone returns an independent copy of the individual.
func (ind Individual) Clone() Individual {
	out := make(Individual, len(ind))
	copy(out, ind)
	return out
}

// Space is an axis-aligned bounding box in R^n. It is immutable after
// construction; all random draws go through an explicitly passed *rand.Rand.
type Space struct {
	mins   []float64
	maxs   []float64
	deltas []float64
}

// New creates a search space from per-dimension bounds.
// Returns an error if the slices differ in length, are empty, or any
// dimension has min > max.
func New(mins, maxs []float64) (*Space, error) {
	if len(mins) != len(maxs) {
		return nil, fmt.Errorf("bounds length mismatch: %d mins vs %d maxs", len(mins), len(maxs))
	}
	if len(mins) == 0 {
		return nil, fmt.Errorf("search space needs at least one dimension")
	}

	s := &Space{
		mins:   make([]float64, len(mins)),
		maxs:   make([]float64, len(maxs)),
		deltas: make([]float64, len(mins)),
	}
	for i := range mins {
		if mins[i] > maxs[i] {
			return nil, fmt.Errorf("dimension %d: min %g > max %g", i, mins[i], maxs[i])
		}
		s.mins[i] = mins[i]
		s.maxs[i] = maxs[i]
		s.deltas[i] = maxs[i] - mins[i]
	}
	return s, nil
}

// NewSymmetric creates a space with the same (min, max) range in every dimension.
func NewSymmetric(numDims int, min, max float64) (*Space, error) {
	if numDims < 1 {
		return nil, fmt.Errorf("number of dimensions must be at least 1, got %d", numDims)
	}
	mins := make([]float64, numDims)
	maxs := make([]float64, numDims)
	for i := range mins {
		mins[i] = min
		maxs[i] = max
	}
	return New(mins, maxs)
}

// NumDims returns the dimensionality of the space.
func (s *Space) NumDims() int {
	return len(s.mins)
}

// DimMin returns the lower bound of dimension i.
func (s *Space) DimMin(i int) float64 { return s.mins[i] }

// DimMax returns the upper bound of dimension i.
func (s *Space) DimMax(i int) float64 { return s.maxs[i] }

// DimDelta returns the diameter (max - min) of dimension i.
func (s *Space) DimDelta(i int) float64 { return s.deltas[i] }

// Mins returns a copy of all lower bounds.
func (s *Space) Mins() []float64 {
	out := make([]float64, len(s.mins))
	copy(out, s.mins)
	return out
}

// Maxs returns a copy of all upper bounds.
func (s *Space) Maxs() []float64 {
	out := make([]float64, len(s.maxs))
	copy(out, s.maxs)
	return out
}

// Deltas returns a copy of all per-dimension diameters.
func (s *Space) Deltas() []float64 {
	out := make([]float64, len(s.deltas))
	copy(out, s.deltas)
	return out
}

// RandomIndividual draws a point uniformly from the box, each coordinate
// independent of the others.
func (s *Space) RandomIndividual(rng *rand.Rand) Individual {
	ind := make(Individual, len(s.mins))
	for i := range ind {
		ind[i] = s.mins[i] + rng.Float64()*s.deltas[i]
	}
	return ind
}

// RandomIndividuals draws k independent uniform individuals.
func (s *Space) RandomIndividuals(rng *rand.Rand, k int) []Individual {
	inds := make([]Individual, k)
	for i := range inds {
		inds[i] = s.RandomIndividual(rng)
	}
	return inds
}

// LatinHypercube draws k individuals with stratified coverage: each
// dimension's range is split into k equal sub-intervals and every
// sub-interval is used exactly once per dimension, with the interval
// assignment permuted independently across dimensions.
func (s *Space) LatinHypercube(rng *rand.Rand, k int) []Individual {
	inds := make([]Individual, k)
	for i := range inds {
		inds[i] = make(Individual, len(s.mins))
	}

	for d := range s.mins {
		perm := rng.Perm(k)
		width := s.deltas[d] / float64(k)
		for i := 0; i < k; i++ {
			lo := s.mins[d] + float64(perm[i])*width
			inds[i][d] = lo + rng.Float64()*width
		}
	}
	return inds
}

// Feasible projects an arbitrary vector into the space by clamping every
// coordinate to its dimension's closed interval. Coordinates beyond the
// space's dimensionality are dropped. The input is not modified.
// Idempotent: Feasible(Feasible(x)) == Feasible(x).
func (s *Space) Feasible(x Individual) Individual {
	n := len(x)
	if n > len(s.mins) {
		n = len(s.mins)
	}
	out := make(Individual, n)
	for i := range out {
		out[i] = clamp(x[i], s.mins[i], s.maxs[i])
	}
	return out
}

// Membership reports whether every coordinate of x lies inside its
// dimension's closed interval.
func (s *Space) Membership(x Individual) bool {
	if len(x) != len(s.mins) {
		return false
	}
	for i := range x {
		if x[i] < s.mins[i] || x[i] > s.maxs[i] {
			return false
		}
	}
	return true
}

// Concat builds a new space whose dimensions are a's dimensions followed by
// b's. Used to compose sub-problems.
func Concat(a, b *Space) *Space {
	mins := append(a.Mins(), b.Mins()...)
	maxs := append(a.Maxs(), b.Maxs()...)
	// Inputs are already validated, so New cannot fail here.
	s, _ := New(mins, maxs)
	return s
}

func clamp(val, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, val))
}
