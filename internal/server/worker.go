package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/blackboxopt/internal/opt"
	"github.com/cwbudde/blackboxopt/internal/problems"
	"github.com/cwbudde/blackboxopt/internal/store"
)

// BuildRun translates a job configuration into the problem and typed run
// config the driver expects. Shared by the worker and the resume command.
func BuildRun(config JobConfig) (*opt.Problem, opt.Config, error) {
	def, ok := problems.Get(config.Problem)
	if !ok {
		return nil, opt.Config{}, fmt.Errorf("unknown problem: %s (available: %v)", config.Problem, problems.Names())
	}

	problem, err := def.Problem(config.NumDimensions)
	if err != nil {
		return nil, opt.Config{}, err
	}

	cfg := opt.DefaultConfig()
	cfg.Method = config.Method
	cfg.NumDimensions = config.NumDimensions
	cfg.MaxTime = config.MaxTime
	cfg.MaxFuncEvals = config.MaxFuncEvals
	if config.MaxSteps > 0 {
		cfg.MaxSteps = config.MaxSteps
	}
	cfg.RandomizeRngSeed = config.RandomizeSeed
	cfg.RngSeed = config.Seed
	if config.TraceInterval > 0 {
		cfg.TraceInterval = config.TraceInterval
	}
	return problem, cfg, nil
}

// jobSink feeds driver progress reports into the job manager and the SSE
// broadcaster. The driver throttles reports to the configured trace interval.
type jobSink struct {
	jm    *JobManager
	jobID string
}

func (s *jobSink) Report(r opt.ProgressReport) {
	s.jm.UpdateJob(s.jobID, func(j *Job) {
		j.Steps = r.Step
		j.NumEvals = r.NumEvals
		j.BestFitness = r.BestFitness
		j.BestCandidate = r.Best
	})

	job, exists := s.jm.GetJob(s.jobID)
	if !exists {
		return
	}
	s.jm.broadcaster.Broadcast(ProgressEvent{
		JobID:          s.jobID,
		State:          job.State,
		Steps:          r.Step,
		NumEvals:       r.NumEvals,
		BestFitness:    r.BestFitness,
		EvalsPerSecond: r.EvalsPerSecond,
		Timestamp:      time.Now(),
	})
}

// runJob executes an optimization job in the background. If checkpointStore
// is not nil and the job has CheckpointInterval > 0, periodic checkpoints are
// saved, and the improvement history is exported once the run finishes.
func runJob(ctx context.Context, jm *JobManager, checkpointStore store.Store, registry *opt.Registry, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	problem, cfg, err := BuildRun(job.Config)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	if err := jm.UpdateJob(jobID, func(j *Job) { j.State = StateRunning }); err != nil {
		return err
	}

	slog.Info("Starting job", "job_id", jobID, "problem", job.Config.Problem, "method", job.Config.Method)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	jm.RegisterCancel(jobID, cancel)

	// Periodic checkpointing while the run is in flight. The done channel is
	// only closed when the monitor was actually started.
	checkpointing := checkpointStore != nil && job.Config.CheckpointInterval > 0
	checkpointDone := make(chan struct{})
	if checkpointing {
		go monitorCheckpoints(runCtx, jm, checkpointStore, jobID, checkpointDone)
	}

	runner := opt.NewRunner(registry, &jobSink{jm: jm, jobID: jobID})
	result, err := runner.Run(runCtx, problem, cfg)

	if checkpointing {
		close(checkpointDone)
	}

	if err != nil {
		if runCtx.Err() != nil {
			markJobCancelled(jm, jobID)
			return err
		}
		markJobFailed(jm, jobID, err)
		return err
	}

	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.BestCandidate = result.Best
		j.BestFitness = result.BestFitness
		j.NumEvals = result.NumEvals
		j.Steps = result.Steps
		j.Reason = result.Reason
		j.Config.Seed = result.Config.ResolvedSeed
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}

	elapsed := result.Elapsed
	eps := float64(0)
	if elapsed.Seconds() > 0 {
		eps = float64(result.NumEvals) / elapsed.Seconds()
	}

	slog.Info("Job completed",
		"job_id", jobID,
		"reason", result.Reason,
		"elapsed", elapsed,
		"best_fitness", result.BestFitness,
		"evals", result.NumEvals,
	)

	if checkpointStore != nil {
		if err := saveCheckpoint(jm, checkpointStore, jobID); err != nil {
			slog.Warn("Failed to save final checkpoint", "job_id", jobID, "error", err)
		}
		if fsStore, ok := checkpointStore.(*store.FSStore); ok {
			if err := store.ExportHistory(fsStore.BaseDir(), jobID, result.Evaluator.Archive()); err != nil {
				slog.Warn("Failed to export improvement history", "job_id", jobID, "error", err)
			}
		}
	}

	// Broadcast final completion event
	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:          jobID,
		State:          StateCompleted,
		Steps:          result.Steps,
		NumEvals:       result.NumEvals,
		BestFitness:    result.BestFitness,
		EvalsPerSecond: eps,
		Timestamp:      time.Now(),
	})

	return nil
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
}

// monitorCheckpoints periodically saves checkpoints during optimization
func monitorCheckpoints(ctx context.Context, jm *JobManager, checkpointStore store.Store, jobID string, done chan struct{}) {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return
	}

	interval := time.Duration(job.Config.CheckpointInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := saveCheckpoint(jm, checkpointStore, jobID); err != nil {
				slog.Error("Failed to save checkpoint", "job_id", jobID, "error", err)
			}
		}
	}
}

// saveCheckpoint saves a checkpoint for the given job
func saveCheckpoint(jm *JobManager, checkpointStore store.Store, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	// Skip if no best candidate yet
	if len(job.BestCandidate) == 0 {
		slog.Debug("Skipping checkpoint, no best candidate yet", "job_id", jobID)
		return nil
	}

	checkpoint := store.NewCheckpoint(
		jobID,
		job.BestCandidate,
		job.BestFitness,
		job.NumEvals,
		job.Steps,
		job.Config,
	)

	if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Info("Checkpoint saved",
		"job_id", jobID,
		"steps", job.Steps,
		"best_fitness", job.BestFitness,
	)
	return nil
}
