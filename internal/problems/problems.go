// Package problems provides a small catalog of named example objective
// functions so runs, jobs, and tests can refer to problems by name. All of
// them are dimension-agnostic minimization problems with a known optimum.
package problems

import (
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/blackboxopt/internal/opt"
	"github.com/cwbudde/blackboxopt/internal/search"
)

// Definition describes one catalog entry: the objective, its conventional
// per-dimension search range, and the known optimal fitness.
type Definition struct {
	Name        string
	Description string
	Objective   opt.Objective
	Range       opt.Range
	Optimum     float64
}

// Problem instantiates the definition for the given dimensionality.
func (d Definition) Problem(numDims int) (*opt.Problem, error) {
	space, err := search.NewSymmetric(numDims, d.Range.Min, d.Range.Max)
	if err != nil {
		return nil, fmt.Errorf("problem %q: %w", d.Name, err)
	}
	optimum := d.Optimum
	return &opt.Problem{
		Name:      d.Name,
		Objective: d.Objective,
		Scheme:    opt.Minimize,
		Space:     space,
		Optimum:   &optimum,
	}, nil
}

var catalog = map[string]Definition{
	"sphere": {
		Name:        "sphere",
		Description: "Sum of squares, minimum 0 at the origin",
		Objective:   sphere,
		Range:       opt.Range{Min: -10, Max: 10},
	},
	"rosenbrock": {
		Name:        "rosenbrock",
		Description: "Banana-shaped valley, minimum 0 at (1,...,1)",
		Objective:   rosenbrock,
		Range:       opt.Range{Min: -5, Max: 10},
	},
	"rastrigin": {
		Name:        "rastrigin",
		Description: "Highly multimodal, minimum 0 at the origin",
		Objective:   rastrigin,
		Range:       opt.Range{Min: -5.12, Max: 5.12},
	},
	"ackley": {
		Name:        "ackley",
		Description: "Nearly flat outer region with a central funnel, minimum 0 at the origin",
		Objective:   ackley,
		Range:       opt.Range{Min: -32.768, Max: 32.768},
	},
}

// Get looks up a definition by name.
func Get(name string) (Definition, bool) {
	def, ok := catalog[name]
	return def, ok
}

// Names returns all catalog names, sorted.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sphere(x search.Individual) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum
}

func rosenbrock(x search.Individual) float64 {
	var sum float64
	for i := 0; i+1 < len(x); i++ {
		a := x[i+1] - x[i]*x[i]
		b := 1 - x[i]
		sum += 100*a*a + b*b
	}
	return sum
}

func rastrigin(x search.Individual) float64 {
	sum := 10 * float64(len(x))
	for _, v := range x {
		sum += v*v - 10*math.Cos(2*math.Pi*v)
	}
	return sum
}

func ackley(x search.Individual) float64 {
	n := float64(len(x))
	var sumSq, sumCos float64
	for _, v := range x {
		sumSq += v * v
		sumCos += math.Cos(2 * math.Pi * v)
	}
	return -20*math.Exp(-0.2*math.Sqrt(sumSq/n)) - math.Exp(sumCos/n) + 20 + math.E
}
