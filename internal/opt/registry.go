package opt

import (
	"fmt"
	"math/rand"
	"sort"
)

// Constructor builds a concrete optimizer for one run. The evaluator, config,
// and random source are owned by the run; the constructor must not retain any
// process-global state.
type Constructor func(ev *Evaluator, cfg Config, rng *rand.Rand) (Optimizer, error)

// Registry maps method names to optimizer constructors. It is built once at
// startup and read-only afterwards; setup functions receive it explicitly
// rather than consulting a mutable global.
type Registry struct {
	methods map[string]Constructor
}

// NewRegistry returns the registry of built-in methods.
func NewRegistry() *Registry {
	return &Registry{
		methods: map[string]Constructor{
			"rs": func(ev *Evaluator, cfg Config, rng *rand.Rand) (Optimizer, error) {
				return NewResamplingMemeticSearcher(ev, cfg, rng, ResampleRandom)
			},
			"ris": func(ev *Evaluator, cfg Config, rng *rand.Rand) (Optimizer, error) {
				return NewResamplingMemeticSearcher(ev, cfg, rng, ResampleInheritance)
			},
			"mayfly": func(ev *Evaluator, cfg Config, rng *rand.Rand) (Optimizer, error) {
				return NewMayflySearcher(ev, cfg, rng)
			},
			"random": func(ev *Evaluator, cfg Config, rng *rand.Rand) (Optimizer, error) {
				return NewRandomSearcher(ev, cfg, rng)
			},
		},
	}
}

// New constructs the named optimizer. Unrecognized names are a setup error.
func (r *Registry) New(name string, ev *Evaluator, cfg Config, rng *rand.Rand) (Optimizer, error) {
	ctor, ok := r.methods[name]
	if !ok {
		return nil, fmt.Errorf("unknown optimizer method %q (available: %v)", name, r.Methods())
	}
	return ctor(ev, cfg, rng)
}

// Methods returns the registered method names, sorted.
func (r *Registry) Methods() []string {
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
