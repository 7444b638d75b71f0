package store

import (
	"fmt"
	"time"

	"github.com/cwbudde/blackboxopt/internal/opt"
)

// ExportHistory persists a run's fitness-improvement history as trace.jsonl
// under <baseDir>/jobs/<jobID>/: one entry per improving archive update, in
// order, with the best candidate attached to the final entry.
func ExportHistory(baseDir, jobID string, archive *opt.Archive) error {
	tw, err := NewTraceWriter(baseDir, jobID, false)
	if err != nil {
		return fmt.Errorf("failed to create trace writer: %w", err)
	}

	history := archive.History()
	for i, imp := range history {
		entry := TraceEntry{
			NumEvals:  imp.NumEvals,
			Fitness:   imp.Fitness,
			Elapsed:   imp.Elapsed.Seconds(),
			Timestamp: time.Now(),
		}
		if i == len(history)-1 {
			entry.Candidate = archive.BestCandidate()
		}
		if err := tw.Write(entry); err != nil {
			tw.Close()
			return err
		}
	}

	return tw.Close()
}
