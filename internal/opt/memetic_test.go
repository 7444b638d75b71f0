package opt

import (
	"math/rand"
	"testing"

	"github.com/cwbudde/blackboxopt/internal/search"
)

func newTestRng() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

// newMemetic builds a searcher over a small sphere problem with a coarse
// precision threshold so local search stays cheap.
func newMemetic(t *testing.T, strategy ResampleStrategy, cfg Config) (*ResamplingMemeticSearcher, *Evaluator) {
	t.Helper()

	ev := NewEvaluator(newTestProblem(t, 2))
	rms, err := NewResamplingMemeticSearcher(ev, cfg, newTestRng(), strategy)
	if err != nil {
		t.Fatalf("Failed to create searcher: %v", err)
	}
	return rms, ev
}

func coarseConfig() Config {
	cfg := DefaultConfig()
	cfg.PrecisionThreshold = 1e-2
	return cfg
}

func TestMemeticNames(t *testing.T) {
	rs, _ := newMemetic(t, ResampleRandom, coarseConfig())
	if rs.Name() != "rs" {
		t.Errorf("Expected name rs, got %q", rs.Name())
	}
	if rs.Protocol() != Stepping {
		t.Errorf("Expected stepping protocol, got %v", rs.Protocol())
	}

	ris, _ := newMemetic(t, ResampleInheritance, coarseConfig())
	if ris.Name() != "ris" {
		t.Errorf("Expected name ris, got %q", ris.Name())
	}
}

func TestConstructionEvaluatesElite(t *testing.T) {
	_, ev := newMemetic(t, ResampleRandom, coarseConfig())
	if ev.NumEvals() != 1 {
		t.Errorf("Expected 1 eval for the initial elite, got %d", ev.NumEvals())
	}
}

func TestInitialCandidateAdoptedAndClamped(t *testing.T) {
	cfg := coarseConfig()
	cfg.InitialCandidate = search.Individual{12, -15}

	rms, _ := newMemetic(t, ResampleRandom, cfg)
	elite, fitness := rms.Elite()
	if elite[0] != 10 || elite[1] != -10 {
		t.Errorf("Expected elite clamped to [10, -10], got %v", elite)
	}
	if fitness != 200 {
		t.Errorf("Expected elite fitness 200, got %f", fitness)
	}
}

func TestInitialCandidateDimensionMismatch(t *testing.T) {
	cfg := coarseConfig()
	cfg.InitialCandidate = search.Individual{1, 2, 3}

	ev := NewEvaluator(newTestProblem(t, 2))
	if _, err := NewResamplingMemeticSearcher(ev, cfg, newTestRng(), ResampleRandom); err == nil {
		t.Fatal("Expected error for mismatched initial candidate")
	}
}

func TestStepNeverWorsensElite(t *testing.T) {
	for _, strategy := range []ResampleStrategy{ResampleRandom, ResampleInheritance} {
		rms, _ := newMemetic(t, strategy, coarseConfig())

		_, prev := rms.Elite()
		for i := 0; i < 5; i++ {
			rms.Step()
			_, cur := rms.Elite()
			if cur > prev {
				t.Fatalf("Elite fitness worsened from %f to %f at step %d", prev, cur, i)
			}
			prev = cur
		}
	}
}

func TestStepReachesHighPrecisionOnSphere(t *testing.T) {
	cfg := DefaultConfig()
	rms, ev := newMemetic(t, ResampleRandom, cfg)

	for i := 0; i < 3; i++ {
		rms.Step()
	}

	// With the default precision threshold the final line-search step size is
	// well below 1e-4 of the diameter, which pins the sphere minimum down to
	// a fitness far under the usual convergence tolerance.
	if best := ev.BestFitness(); best > 1e-6 {
		t.Errorf("Expected best fitness below 1e-6 after 3 steps, got %g", best)
	}
}

func TestStepReportsImprovements(t *testing.T) {
	rms, ev := newMemetic(t, ResampleRandom, coarseConfig())

	improved := rms.Step()
	if improved < 1 {
		t.Errorf("Expected at least one improvement on the first step, got %d", improved)
	}
	if ev.Archive().NumImprovements() < improved {
		t.Errorf("Archive records %d improvements, step reported %d",
			ev.Archive().NumImprovements(), improved)
	}
}

func TestLocalSearchTerminatesOnFlatObjective(t *testing.T) {
	space, err := search.NewSymmetric(2, -1, 1)
	if err != nil {
		t.Fatalf("Failed to create space: %v", err)
	}
	flat := &Problem{
		Name:      "flat",
		Objective: func(search.Individual) float64 { return 7 },
		Scheme:    Minimize,
		Space:     space,
	}

	cfg := coarseConfig()
	rms, err := NewResamplingMemeticSearcher(NewEvaluator(flat), cfg, newTestRng(), ResampleRandom)
	if err != nil {
		t.Fatalf("Failed to create searcher: %v", err)
	}

	// No candidate ever improves, so every pass halves the precision vector
	// until the convergence norm is reached. Step must return without any
	// improvement rather than loop.
	if improved := rms.Step(); improved != 0 {
		t.Errorf("Expected 0 improvements on a flat objective, got %d", improved)
	}
}

func TestMaximizeSchemeAdoptsLargerFitness(t *testing.T) {
	space, err := search.NewSymmetric(2, -10, 10)
	if err != nil {
		t.Fatalf("Failed to create space: %v", err)
	}
	problem := &Problem{
		Name:      "negsphere",
		Objective: func(x search.Individual) float64 { return -sphereObjective(x) },
		Scheme:    Maximize,
		Space:     space,
	}

	rms, err := NewResamplingMemeticSearcher(NewEvaluator(problem), coarseConfig(), newTestRng(), ResampleRandom)
	if err != nil {
		t.Fatalf("Failed to create searcher: %v", err)
	}

	_, before := rms.Elite()
	rms.Step()
	_, after := rms.Elite()
	if after < before {
		t.Errorf("Elite fitness fell from %f to %f under maximize", before, after)
	}
}

func TestInheritanceResamplingCopiesEliteRun(t *testing.T) {
	dims := 10
	space, err := search.NewSymmetric(dims, -10, 10)
	if err != nil {
		t.Fatalf("Failed to create space: %v", err)
	}
	problem := &Problem{
		Name:      "sphere",
		Objective: sphereObjective,
		Scheme:    Minimize,
		Space:     space,
	}

	cfg := coarseConfig()
	cfg.InheritanceRatio = 0.5
	rms, err := NewResamplingMemeticSearcher(NewEvaluator(problem), cfg, newTestRng(), ResampleInheritance)
	if err != nil {
		t.Fatalf("Failed to create searcher: %v", err)
	}

	// A uniformly drawn coordinate almost surely differs from the elite's, so
	// exact matches count inherited coordinates. With ratio 0.5 over many
	// draws the average inherited fraction sits near one half.
	trials := 2000
	matches := 0
	for i := 0; i < trials; i++ {
		cand := rms.resample()
		for j, v := range cand {
			if v == rms.elite[j] {
				matches++
			}
		}
	}

	frac := float64(matches) / float64(trials*dims)
	if frac < 0.3 || frac > 0.7 {
		t.Errorf("Inherited fraction %f, expected near 0.5", frac)
	}
	if matches == 0 {
		t.Error("Inheritance resampling never copied an elite coordinate")
	}
}

func TestRandomResamplingIgnoresElite(t *testing.T) {
	rms, _ := newMemetic(t, ResampleRandom, coarseConfig())

	for i := 0; i < 100; i++ {
		cand := rms.resample()
		if !rms.space.Membership(cand) {
			t.Fatalf("Resampled candidate %v outside the search space", cand)
		}
		for j, v := range cand {
			if v == rms.elite[j] {
				t.Fatalf("Random resampling copied elite coordinate %d", j)
			}
		}
	}
}
