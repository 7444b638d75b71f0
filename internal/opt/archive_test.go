package opt

import (
	"math"
	"testing"

	"github.com/cwbudde/blackboxopt/internal/search"
)

func TestEmptyArchiveSentinels(t *testing.T) {
	min := NewArchive(Minimize)
	if !math.IsInf(min.BestFitness(), 1) {
		t.Errorf("Empty minimizing archive best = %f, expected +Inf", min.BestFitness())
	}

	max := NewArchive(Maximize)
	if !math.IsInf(max.BestFitness(), -1) {
		t.Errorf("Empty maximizing archive best = %f, expected -Inf", max.BestFitness())
	}

	if min.BestCandidate() != nil {
		t.Error("Empty archive must have no best candidate")
	}
	if !math.IsInf(min.DeltaFitness(), 1) {
		t.Errorf("Empty archive delta = %f, expected +Inf", min.DeltaFitness())
	}
}

func TestArchiveMaximizeKeepsLargest(t *testing.T) {
	a := NewArchive(Maximize)

	a.Report(search.Individual{1}, 10, 1)
	if improved := a.Report(search.Individual{2}, 5, 2); improved {
		t.Error("A smaller fitness must not improve a maximizing archive")
	}
	if improved := a.Report(search.Individual{3}, 20, 3); !improved {
		t.Error("A larger fitness must improve a maximizing archive")
	}
	if a.BestFitness() != 20 {
		t.Errorf("Best fitness = %f, expected 20", a.BestFitness())
	}
}

func TestArchiveTiesDoNotImprove(t *testing.T) {
	a := NewArchive(Minimize)

	a.Report(search.Individual{1}, 3, 1)
	if improved := a.Report(search.Individual{2}, 3, 2); improved {
		t.Error("Equal fitness must not count as an improvement")
	}
	if a.NumImprovements() != 1 {
		t.Errorf("Expected 1 improvement, got %d", a.NumImprovements())
	}
}

func TestArchiveHistoryOrder(t *testing.T) {
	a := NewArchive(Minimize)

	a.Report(search.Individual{1}, 9, 1)
	a.Report(search.Individual{2}, 12, 2)
	a.Report(search.Individual{3}, 4, 3)
	a.Report(search.Individual{4}, 1, 4)

	history := a.History()
	if len(history) != 3 {
		t.Fatalf("Expected 3 improvements in history, got %d", len(history))
	}
	wantFitness := []float64{9, 4, 1}
	wantEvals := []int{1, 3, 4}
	for i, imp := range history {
		if imp.Fitness != wantFitness[i] || imp.NumEvals != wantEvals[i] {
			t.Errorf("History[%d] = (%f, %d), expected (%f, %d)",
				i, imp.Fitness, imp.NumEvals, wantFitness[i], wantEvals[i])
		}
	}
}

func TestFitnessSchemeStrings(t *testing.T) {
	if Minimize.String() != "minimize" || Maximize.String() != "maximize" {
		t.Errorf("Scheme strings = %q, %q", Minimize.String(), Maximize.String())
	}
}
