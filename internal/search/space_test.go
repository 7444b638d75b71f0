package search

import (
	"math"
	"math/rand"
	"testing"
)

func TestNewRejectsInvertedBounds(t *testing.T) {
	_, err := New([]float64{0, 5}, []float64{1, 3})
	if err == nil {
		t.Fatal("Expected error for min > max")
	}
}

func TestNewRejectsEmptyAndMismatched(t *testing.T) {
	if _, err := New([]float64{}, []float64{}); err == nil {
		t.Error("Expected error for empty bounds")
	}
	if _, err := New([]float64{0}, []float64{1, 2}); err == nil {
		t.Error("Expected error for mismatched bounds lengths")
	}
}

func TestAccessors(t *testing.T) {
	s, err := New([]float64{0, 2, 4}, []float64{1, 3, 5})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if s.NumDims() != 3 {
		t.Errorf("Expected 3 dimensions, got %d", s.NumDims())
	}
	for i := 0; i < 3; i++ {
		if s.DimMin(i) != float64(2*i) {
			t.Errorf("DimMin(%d) = %f, expected %d", i, s.DimMin(i), 2*i)
		}
		if s.DimMax(i) != float64(2*i+1) {
			t.Errorf("DimMax(%d) = %f, expected %d", i, s.DimMax(i), 2*i+1)
		}
		if s.DimDelta(i) != 1 {
			t.Errorf("DimDelta(%d) = %f, expected 1", i, s.DimDelta(i))
		}
	}
}

func TestRandomIndividualMembership(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for dims := 1; dims <= 100; dims++ {
		mins := make([]float64, dims)
		maxs := make([]float64, dims)
		for i := range mins {
			mins[i] = -float64(i+1) * 3
			maxs[i] = float64(i+1) * 7
		}
		s, err := New(mins, maxs)
		if err != nil {
			t.Fatalf("New failed for %d dims: %v", dims, err)
		}

		for draw := 0; draw < 10; draw++ {
			ind := s.RandomIndividual(rng)
			if len(ind) != dims {
				t.Fatalf("Expected %d coordinates, got %d", dims, len(ind))
			}
			if !s.Membership(ind) {
				t.Fatalf("Random individual %v outside %d-dim space", ind, dims)
			}
		}
	}
}

func TestFeasibleClamping(t *testing.T) {
	s, err := New([]float64{0, 2, 4}, []float64{1, 3, 5})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	tests := []struct {
		name  string
		input Individual
		want  Individual
	}{
		{"above first dim", Individual{1.1, 2.0, 4.0}, Individual{1.0, 2.0, 4.0}},
		{"mixed violations", Individual{-0.4, 3.3, 14.5}, Individual{0.0, 3.0, 5.0}},
		{"already feasible", Individual{0.5, 2.5, 4.5}, Individual{0.5, 2.5, 4.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Feasible(tt.input)
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Feasible(%v)[%d] = %f, expected %f", tt.input, i, got[i], tt.want[i])
				}
			}

			// Idempotent
			again := s.Feasible(got)
			for i := range again {
				if again[i] != got[i] {
					t.Errorf("Feasible not idempotent at dim %d: %f != %f", i, again[i], got[i])
				}
			}
		})
	}
}

func TestFeasibleTruncatesExtraCoordinates(t *testing.T) {
	s, _ := New([]float64{0, 2}, []float64{1, 3})

	got := s.Feasible(Individual{5, -1, 42})
	if len(got) != 2 {
		t.Fatalf("Expected 2 coordinates, got %d", len(got))
	}
	want := Individual{1, 2}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("Feasible[%d] = %f, expected %f", i, got[i], want[i])
		}
	}

	short := s.Feasible(Individual{-4})
	if len(short) != 1 || short[0] != 0 {
		t.Errorf("Short input should clamp in place, got %v", short)
	}
}

func TestFeasibleDoesNotMutateInput(t *testing.T) {
	s, _ := New([]float64{0}, []float64{1})
	input := Individual{5.0}
	s.Feasible(input)
	if input[0] != 5.0 {
		t.Errorf("Feasible mutated its input: %f", input[0])
	}
}

func TestMembershipWrongLength(t *testing.T) {
	s, _ := New([]float64{0, 0}, []float64{1, 1})
	if s.Membership(Individual{0.5}) {
		t.Error("Membership should reject wrong-length individuals")
	}
}

func TestConcat(t *testing.T) {
	a, _ := New([]float64{0, 2}, []float64{1, 3})
	b, _ := New([]float64{4}, []float64{5})

	c := Concat(a, b)

	if c.NumDims() != 3 {
		t.Fatalf("Expected 3 dimensions, got %d", c.NumDims())
	}
	wantMins := []float64{0, 2, 4}
	wantMaxs := []float64{1, 3, 5}
	for i := 0; i < 3; i++ {
		if c.DimMin(i) != wantMins[i] || c.DimMax(i) != wantMaxs[i] {
			t.Errorf("Dim %d bounds (%f, %f), expected (%f, %f)",
				i, c.DimMin(i), c.DimMax(i), wantMins[i], wantMaxs[i])
		}
	}
}

func TestRandomIndividualsCount(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s, _ := NewSymmetric(4, -1, 1)

	inds := s.RandomIndividuals(rng, 7)
	if len(inds) != 7 {
		t.Fatalf("Expected 7 individuals, got %d", len(inds))
	}
	for _, ind := range inds {
		if !s.Membership(ind) {
			t.Errorf("Individual %v outside space", ind)
		}
	}
}

func TestLatinHypercubeStratification(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s, _ := NewSymmetric(3, 0, 10)

	k := 5
	inds := s.LatinHypercube(rng, k)
	if len(inds) != k {
		t.Fatalf("Expected %d individuals, got %d", k, len(inds))
	}

	// Each of the k sub-intervals must be hit exactly once per dimension.
	width := 10.0 / float64(k)
	for d := 0; d < s.NumDims(); d++ {
		seen := make([]bool, k)
		for _, ind := range inds {
			if !s.Membership(ind) {
				t.Fatalf("Individual %v outside space", ind)
			}
			bin := int(math.Floor(ind[d] / width))
			if bin == k {
				bin = k - 1
			}
			if seen[bin] {
				t.Errorf("Dimension %d: sub-interval %d used twice", d, bin)
			}
			seen[bin] = true
		}
	}
}

func TestCloneIndependence(t *testing.T) {
	orig := Individual{1, 2, 3}
	clone := orig.Clone()
	clone[0] = 99
	if orig[0] != 1 {
		t.Errorf("Clone aliases original: %f", orig[0])
	}
}
