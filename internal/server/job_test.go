package server

import (
	"context"
	"testing"
)

func testJobConfig() JobConfig {
	return JobConfig{
		Problem:       "sphere",
		Method:        "rs",
		NumDimensions: 2,
		MaxFuncEvals:  500,
		Seed:          42,
	}
}

func TestJobManager_CreateJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(testJobConfig())

	if job.ID == "" {
		t.Error("Job ID should not be empty")
	}
	if job.State != StatePending {
		t.Errorf("Initial state should be pending, got %s", job.State)
	}
	if job.Config.Problem != "sphere" {
		t.Errorf("Config not set correctly")
	}
	if job.StartTime.IsZero() {
		t.Error("StartTime should be set")
	}
}

func TestJobManager_GetJob(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testJobConfig())

	retrieved, exists := jm.GetJob(job.ID)
	if !exists {
		t.Error("Job should exist")
	}
	if retrieved.ID != job.ID {
		t.Error("Retrieved wrong job")
	}

	if _, exists := jm.GetJob("nonexistent"); exists {
		t.Error("Should not find nonexistent job")
	}
}

func TestJobManager_ListJobs(t *testing.T) {
	jm := NewJobManager()

	if len(jm.ListJobs()) != 0 {
		t.Error("Should start with no jobs")
	}

	jm.CreateJob(testJobConfig())
	jm.CreateJob(testJobConfig())

	if len(jm.ListJobs()) != 2 {
		t.Errorf("Expected 2 jobs, got %d", len(jm.ListJobs()))
	}
}

func TestJobManager_UpdateJob(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testJobConfig())

	err := jm.UpdateJob(job.ID, func(j *Job) {
		j.State = StateRunning
		j.BestFitness = 0.25
		j.NumEvals = 100
	})
	if err != nil {
		t.Fatalf("UpdateJob failed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateRunning || updated.BestFitness != 0.25 || updated.NumEvals != 100 {
		t.Errorf("Update not applied: %+v", updated)
	}

	if err := jm.UpdateJob("nonexistent", func(j *Job) {}); err == nil {
		t.Error("Expected error for unknown job")
	}
}

func TestJobManager_SnapshotsAreIsolated(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testJobConfig())

	before, _ := jm.GetJob(job.ID)
	jm.UpdateJob(job.ID, func(j *Job) {
		j.State = StateRunning
		j.BestFitness = 1.5
		j.BestCandidate = []float64{1, 2}
	})

	// A snapshot taken earlier keeps its own state.
	if before.State != StatePending {
		t.Errorf("Earlier snapshot mutated to state %s", before.State)
	}
	if before.BestCandidate != nil {
		t.Errorf("Earlier snapshot gained a candidate: %v", before.BestCandidate)
	}

	// Writing through a snapshot must not reach the stored job.
	after, _ := jm.GetJob(job.ID)
	after.State = StateFailed
	after.BestCandidate[0] = 99

	fresh, _ := jm.GetJob(job.ID)
	if fresh.State != StateRunning {
		t.Errorf("Stored state changed through a snapshot: %s", fresh.State)
	}
	if fresh.BestCandidate[0] != 1 {
		t.Errorf("Stored candidate changed through a snapshot: %v", fresh.BestCandidate)
	}

	for _, listed := range jm.ListJobs() {
		listed.State = StateCancelled
	}
	fresh, _ = jm.GetJob(job.ID)
	if fresh.State != StateRunning {
		t.Errorf("Stored state changed through ListJobs: %s", fresh.State)
	}
}

func TestJobManager_GetRunningJobs(t *testing.T) {
	jm := NewJobManager()

	running := jm.CreateJob(testJobConfig())
	jm.CreateJob(testJobConfig())
	jm.UpdateJob(running.ID, func(j *Job) { j.State = StateRunning })

	got := jm.GetRunningJobs()
	if len(got) != 1 || got[0].ID != running.ID {
		t.Errorf("Expected only the running job, got %d jobs", len(got))
	}
}

func TestJobManager_Cancel(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(testJobConfig())

	if jm.Cancel(job.ID) {
		t.Error("Cancel should fail before a cancel function is registered")
	}

	ctx, cancel := context.WithCancel(context.Background())
	jm.RegisterCancel(job.ID, cancel)

	if !jm.Cancel(job.ID) {
		t.Error("Cancel should succeed for a registered job")
	}
	if ctx.Err() == nil {
		t.Error("Context should be cancelled")
	}

	// Second cancel finds nothing to do.
	if jm.Cancel(job.ID) {
		t.Error("Cancel should fail once the function has been consumed")
	}
}
