package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/blackboxopt/internal/opt"
	"github.com/cwbudde/blackboxopt/internal/problems"
	"github.com/cwbudde/blackboxopt/internal/store"
)

var (
	problemName   string
	method        string
	numDims       int
	maxSteps      int
	maxEvals      int
	maxTime       float64
	seed          int64
	randomizeSeed bool
	traceInterval float64
	rangeMin      float64
	rangeMax      float64
	paramsPath    string
	outPath       string
	historyDir    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run single-shot optimization",
	Long:  `Runs one optimization of a named problem and prints the result.`,
	RunE:  runOptimization,
}

func init() {
	runCmd.Flags().StringVar(&problemName, "problem", "sphere", "Problem to optimize (see 'blackboxopt problems')")
	runCmd.Flags().StringVar(&method, "method", "rs", "Optimizer method: rs, ris, mayfly, random")
	runCmd.Flags().IntVar(&numDims, "dims", 2, "Number of dimensions")
	runCmd.Flags().IntVar(&maxSteps, "max-steps", 0, "Step budget (0 = default 10000)")
	runCmd.Flags().IntVar(&maxEvals, "max-evals", 0, "Evaluation budget (0 = unset; disables the step budget when set)")
	runCmd.Flags().Float64Var(&maxTime, "max-time", 0, "Time budget in seconds (0 = unset; disables step/eval budgets when set)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	runCmd.Flags().BoolVar(&randomizeSeed, "randomize-seed", false, "Draw a fresh random seed instead of --seed")
	runCmd.Flags().Float64Var(&traceInterval, "trace-interval", 0.5, "Seconds between progress reports")
	runCmd.Flags().Float64Var(&rangeMin, "min", 0, "Override search range lower bound (with --max)")
	runCmd.Flags().Float64Var(&rangeMax, "max", 0, "Override search range upper bound (with --min)")
	runCmd.Flags().StringVar(&paramsPath, "params", "", "YAML file with option overrides (keys as in the option reference)")
	runCmd.Flags().StringVar(&outPath, "out", "", "Write the run result as JSON to this path")
	runCmd.Flags().StringVar(&historyDir, "history", "", "Export the improvement history as JSONL under this directory")

	rootCmd.AddCommand(runCmd)
}

func runOptimization(cmd *cobra.Command, args []string) error {
	def, ok := problems.Get(problemName)
	if !ok {
		return fmt.Errorf("unknown problem %q (available: %v)", problemName, problems.Names())
	}

	problem, err := def.Problem(numDims)
	if err != nil {
		return err
	}

	cfg := opt.DefaultConfig()
	cfg.Method = method
	cfg.NumDimensions = numDims
	if maxSteps > 0 {
		cfg.MaxSteps = maxSteps
	}
	cfg.MaxFuncEvals = maxEvals
	cfg.MaxTime = maxTime
	cfg.RngSeed = seed
	cfg.RandomizeRngSeed = randomizeSeed
	cfg.TraceInterval = traceInterval
	if cmd.Flags().Changed("min") || cmd.Flags().Changed("max") {
		cfg.SearchRange = &opt.Range{Min: rangeMin, Max: rangeMax}
	}

	// Options from a params file override the flag values.
	if paramsPath != "" {
		overrides, err := loadParams(paramsPath)
		if err != nil {
			return err
		}
		cfg, err = cfg.ApplyOverrides(overrides)
		if err != nil {
			return fmt.Errorf("invalid params file %s: %w", paramsPath, err)
		}
	}

	slog.Info("Starting optimization run", "problem", problemName, "method", cfg.Method, "dims", numDims)

	runner := opt.NewRunner(opt.NewRegistry(), opt.SlogSink{})
	result, err := runner.Run(context.Background(), problem, cfg)
	if err != nil {
		return err
	}

	if historyDir != "" {
		jobID := uuid.New().String()
		if err := store.ExportHistory(historyDir, jobID, result.Evaluator.Archive()); err != nil {
			return fmt.Errorf("failed to export history: %w", err)
		}
		slog.Info("Exported improvement history", "dir", historyDir, "job_id", jobID)
	}

	if outPath != "" {
		if err := writeResult(outPath, result); err != nil {
			return err
		}
	}

	fmt.Printf("%s: best fitness %.6g after %d evals in %s (%s, seed %d)\n",
		problemName, result.BestFitness, result.NumEvals, result.Elapsed, result.Reason, result.Config.ResolvedSeed)

	return nil
}

// loadParams reads a YAML option-override mapping.
func loadParams(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read params file: %w", err)
	}
	var overrides map[string]any
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse params file: %w", err)
	}
	return overrides, nil
}

func writeResult(path string, result *opt.RunResult) error {
	payload := map[string]any{
		"best":        result.Best,
		"bestFitness": result.BestFitness,
		"reason":      result.Reason,
		"elapsed":     result.Elapsed.Seconds(),
		"numEvals":    result.NumEvals,
		"steps":       result.Steps,
		"seed":        result.Config.ResolvedSeed,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize result: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
