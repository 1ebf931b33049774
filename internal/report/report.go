// Package report builds the end-of-run summary: every job with its
// terminal state, so a failing combination is individually identifiable
// instead of being masked by a single aggregate bit.
package report

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/avask/buildgrid/internal/job"
)

// Summary is the aggregate result of one pipeline run.
type Summary struct {
	RunID      string      `yaml:"run_id"`
	Pipeline   string      `yaml:"pipeline"`
	StartedAt  time.Time   `yaml:"started_at"`
	FinishedAt time.Time   `yaml:"finished_at"`
	Success    bool        `yaml:"success"`
	Jobs       []JobResult `yaml:"jobs"`
}

// JobResult is one job's row in the summary.
type JobResult struct {
	ID       string            `yaml:"id"`
	Values   map[string]string `yaml:"values"`
	State    string            `yaml:"state"`
	Error    string            `yaml:"error,omitempty"`
	Artifact string            `yaml:"artifact,omitempty"`
	// Duration is time.Duration's string form, e.g. "1.5s".
	Duration string `yaml:"duration"`
}

// Build assembles the summary from the finished jobs. The run succeeds
// only if every job reached the published state.
func Build(runID, pipeline string, startedAt time.Time, jobs []*job.Job) *Summary {
	s := &Summary{
		RunID:      runID,
		Pipeline:   pipeline,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Success:    true,
		Jobs:       make([]JobResult, 0, len(jobs)),
	}

	for _, j := range jobs {
		snap := j.Snapshot()
		s.Jobs = append(s.Jobs, JobResult{
			ID:       snap.ID,
			Values:   snap.Values,
			State:    snap.State,
			Error:    snap.Error,
			Artifact: snap.Artifact,
			Duration: j.Duration().String(),
		})
		if j.State() != job.Published {
			s.Success = false
		}
	}
	return s
}

// Log writes one line per job plus the aggregate verdict to the logger.
func (s *Summary) Log(logger *slog.Logger) {
	for _, r := range s.Jobs {
		attrs := []any{"jobID", r.ID, "state", r.State}
		if r.Artifact != "" {
			attrs = append(attrs, "artifact", r.Artifact)
		}
		if r.Error != "" {
			attrs = append(attrs, "error", r.Error)
		}
		if r.State == job.Published.String() {
			logger.Info("Job summary.", attrs...)
		} else {
			logger.Error("Job summary.", attrs...)
		}
	}

	if s.Success {
		logger.Info("Run succeeded.", "runID", s.RunID, "jobs", len(s.Jobs))
	} else {
		logger.Error("Run failed.", "runID", s.RunID, "jobs", len(s.Jobs))
	}
}

// WriteFile marshals the summary as YAML to the given path.
func (s *Summary) WriteFile(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write run summary to %s: %w", path, err)
	}
	return nil
}
