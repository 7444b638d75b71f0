package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cwbudde/blackboxopt/internal/opt"
	"github.com/cwbudde/blackboxopt/internal/server"
	"github.com/cwbudde/blackboxopt/internal/store"
)

var resumeDataDir string

var resumeCmd = &cobra.Command{
	Use:   "resume [job-id]",
	Short: "Resume an optimization from a checkpoint",
	Long: `Resumes an optimization from its saved checkpoint. The optimizer is
rebuilt with its starting elite seeded from the checkpointed best candidate;
internal optimizer state (precision vector, population) starts fresh.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeDataDir, "data-dir", "./data", "Base directory for checkpoint storage")
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	checkpointStore, err := store.NewFSStore(resumeDataDir)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint store: %w", err)
	}

	checkpoint, err := checkpointStore.LoadCheckpoint(jobID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if err := checkpoint.Validate(); err != nil {
		return fmt.Errorf("checkpoint is not usable: %w", err)
	}

	slog.Info("Resuming from checkpoint",
		"job_id", jobID,
		"problem", checkpoint.Config.Problem,
		"method", checkpoint.Config.Method,
		"best_fitness", checkpoint.BestFitness,
		"steps", checkpoint.Steps,
	)

	problem, cfg, err := server.BuildRun(checkpoint.Config)
	if err != nil {
		return err
	}
	cfg.InitialCandidate = checkpoint.BestCandidate

	runner := opt.NewRunner(opt.NewRegistry(), opt.SlogSink{})
	result, err := runner.Run(context.Background(), problem, cfg)
	if err != nil {
		return err
	}

	// Persist the continued run's state over the old checkpoint. The best
	// fitness can only improve: the resumed elite starts from the old best.
	updated := store.NewCheckpoint(
		jobID,
		result.Best,
		result.BestFitness,
		checkpoint.NumEvals+result.NumEvals,
		checkpoint.Steps+result.Steps,
		checkpoint.Config,
	)
	if err := checkpointStore.SaveCheckpoint(jobID, updated); err != nil {
		return fmt.Errorf("failed to save updated checkpoint: %w", err)
	}

	fmt.Printf("Resumed %s: best fitness %.6g -> %.6g (%s)\n",
		jobID, checkpoint.BestFitness, result.BestFitness, result.Reason)

	return nil
}
