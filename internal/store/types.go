package store

import (
	"fmt"
	"time"
)

// RunConfig holds the configuration of an optimization run in a serializable
// form (checkpoint copy). This avoids import cycles with the server package.
type RunConfig struct {
	Problem            string  `json:"problem"`
	Method             string  `json:"method"` // rs, ris, mayfly
	NumDimensions      int     `json:"numDimensions"`
	MaxSteps           int     `json:"maxSteps,omitempty"`
	MaxFuncEvals       int     `json:"maxFuncEvals,omitempty"`
	MaxTime            float64 `json:"maxTime,omitempty"` // seconds
	Seed               int64   `json:"seed"`
	RandomizeSeed      bool    `json:"randomizeSeed,omitempty"`
	TraceInterval      float64 `json:"traceInterval,omitempty"`      // seconds between progress reports
	CheckpointInterval int     `json:"checkpointInterval,omitempty"` // checkpoint every N seconds (0 = disabled)
}

// Checkpoint represents a saved optimization state that can be resumed later.
// All fields are serialized to JSON for persistence.
//
// The checkpoint saves the best candidate found so far, but NOT the internal
// optimizer state (elite, precision vector, mayfly population). On resume the
// optimizer is rebuilt and its starting elite is seeded from BestCandidate.
// A resumed run is therefore not a perfect continuation, but the best fitness
// can never get worse, and serializing per-optimizer internals would tie the
// checkpoint format to individual algorithms.
type Checkpoint struct {
	// JobID is the unique identifier for this optimization job.
	JobID string `json:"jobId"`

	// BestCandidate is the best point found so far, one coordinate per
	// search-space dimension.
	BestCandidate []float64 `json:"bestCandidate"`

	// BestFitness is the fitness achieved by BestCandidate.
	BestFitness float64 `json:"bestFitness"`

	// NumEvals is the total number of objective evaluations when this
	// checkpoint was created.
	NumEvals int `json:"numEvals"`

	// Steps is the driver iteration count at checkpoint time.
	Steps int `json:"steps"`

	// Timestamp records when this checkpoint was created.
	Timestamp time.Time `json:"timestamp"`

	// Config holds the run configuration, needed for validation during
	// resume. Resumed jobs must use compatible settings (same problem,
	// method, and dimensionality).
	Config RunConfig `json:"config"`
}

// CheckpointInfo contains metadata about a checkpoint without the candidate
// data. Used for listing checkpoints efficiently.
type CheckpointInfo struct {
	JobID         string    `json:"jobId"`
	BestFitness   float64   `json:"bestFitness"`
	NumEvals      int       `json:"numEvals"`
	Steps         int       `json:"steps"`
	Timestamp     time.Time `json:"timestamp"`
	Problem       string    `json:"problem"`
	Method        string    `json:"method"`
	NumDimensions int       `json:"numDimensions"`
}

// NewCheckpoint creates a checkpoint from run state.
func NewCheckpoint(jobID string, bestCandidate []float64, bestFitness float64, numEvals, steps int, config RunConfig) *Checkpoint {
	return &Checkpoint{
		JobID:         jobID,
		BestCandidate: bestCandidate,
		BestFitness:   bestFitness,
		NumEvals:      numEvals,
		Steps:         steps,
		Timestamp:     time.Now(),
		Config:        config,
	}
}

// ToInfo converts a full Checkpoint to CheckpointInfo (metadata only).
func (c *Checkpoint) ToInfo() CheckpointInfo {
	return CheckpointInfo{
		JobID:         c.JobID,
		BestFitness:   c.BestFitness,
		NumEvals:      c.NumEvals,
		Steps:         c.Steps,
		Timestamp:     c.Timestamp,
		Problem:       c.Config.Problem,
		Method:        c.Config.Method,
		NumDimensions: c.Config.NumDimensions,
	}
}

// Validate checks if the checkpoint has valid data.
// Returns an error if any required field is missing or invalid.
func (c *Checkpoint) Validate() error {
	if c.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if len(c.BestCandidate) == 0 {
		return &ValidationError{Field: "BestCandidate", Reason: "cannot be empty"}
	}
	if c.NumEvals < 0 {
		return &ValidationError{Field: "NumEvals", Reason: "cannot be negative"}
	}
	if c.Steps < 0 {
		return &ValidationError{Field: "Steps", Reason: "cannot be negative"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if c.Config.Problem == "" {
		return &ValidationError{Field: "Config.Problem", Reason: "cannot be empty"}
	}
	if c.Config.Method == "" {
		return &ValidationError{Field: "Config.Method", Reason: "cannot be empty"}
	}
	if c.Config.NumDimensions <= 0 {
		return &ValidationError{Field: "Config.NumDimensions", Reason: "must be positive"}
	}
	if len(c.BestCandidate) != c.Config.NumDimensions {
		return &ValidationError{
			Field:  "BestCandidate",
			Reason: fmt.Sprintf("length mismatch: %d coordinates for %d dimensions", len(c.BestCandidate), c.Config.NumDimensions),
		}
	}
	return nil
}

// ValidationError represents a checkpoint validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// IsCompatible checks if this checkpoint can be resumed with the given
// config. Returns an error if the configs are incompatible.
func (c *Checkpoint) IsCompatible(config RunConfig) error {
	if c.Config.Problem != config.Problem {
		return &CompatibilityError{
			Field:    "Problem",
			Expected: c.Config.Problem,
			Actual:   config.Problem,
		}
	}
	if c.Config.Method != config.Method {
		return &CompatibilityError{
			Field:    "Method",
			Expected: c.Config.Method,
			Actual:   config.Method,
		}
	}
	if c.Config.NumDimensions != config.NumDimensions {
		return &CompatibilityError{
			Field:    "NumDimensions",
			Expected: fmt.Sprintf("%d", c.Config.NumDimensions),
			Actual:   fmt.Sprintf("%d", config.NumDimensions),
		}
	}
	return nil
}

// CompatibilityError represents a checkpoint compatibility error.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}
