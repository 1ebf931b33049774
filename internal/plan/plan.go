// Package plan resolves expanded matrix entries into complete Job
// Descriptors by merging every matching override record, surfacing
// ambiguity and incompleteness before any job runs.
package plan

import (
	"context"
	"fmt"

	"github.com/avask/buildgrid/internal/config"
	"github.com/avask/buildgrid/internal/ctxlog"
	"github.com/avask/buildgrid/internal/job"
	"github.com/avask/buildgrid/internal/matrix"
)

// ConflictError reports two override records supplying the same field for
// the same matrix entry. Ambiguity fails planning outright; the planner
// never guesses a precedence order.
type ConflictError struct {
	EntryID string
	Field   string
	First   string
	Second  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("configuration conflict for %s: overrides %q and %q both supply %s",
		e.EntryID, e.First, e.Second, e.Field)
}

// MissingFieldError reports an entry left without a required field after
// all matching overrides were merged.
type MissingFieldError struct {
	EntryID string
	Field   string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("combination %s is missing required field %s after override merge", e.EntryID, e.Field)
}

// fieldSource tracks which override supplied a field, for conflict reports.
type fieldSource map[string]string

func (fs fieldSource) claim(entryID, field, label string) error {
	if prev, ok := fs[field]; ok {
		return &ConflictError{EntryID: entryID, Field: field, First: prev, Second: label}
	}
	fs[field] = label
	return nil
}

// Resolve merges the pipeline's override records into each expanded matrix
// entry and returns one complete Job Descriptor per entry, in entry order.
// Planning is pure: the same pipeline and entries always yield identical
// descriptors. Any conflict or missing required field aborts planning with
// zero jobs planned.
func Resolve(ctx context.Context, entries []matrix.Entry, p *config.Pipeline) ([]*job.Descriptor, error) {
	logger := ctxlog.FromContext(ctx)

	descs := make([]*job.Descriptor, 0, len(entries))
	for _, entry := range entries {
		desc, err := resolveEntry(entry, p.Overrides)
		if err != nil {
			return nil, err
		}
		descs = append(descs, desc)
	}

	logger.Debug("Planning complete.", "jobs", len(descs))
	return descs, nil
}

func resolveEntry(entry matrix.Entry, overrides []config.Override) (*job.Descriptor, error) {
	id := entry.ID()
	desc := &job.Descriptor{
		ID:        id,
		AxisNames: entry.AxisNames,
		Values:    entry.Values,
		Env:       map[string]string{},
	}

	sources := fieldSource{}
	for _, ov := range overrides {
		if !entry.Matches(ov.Match) {
			continue
		}
		if ov.Flags != nil {
			if err := sources.claim(id, "flags", ov.Label); err != nil {
				return nil, err
			}
			// Copy preserving non-nil-ness: an explicitly empty flag set
			// stays distinct from "no flags supplied".
			desc.Flags = make([]string, len(ov.Flags))
			copy(desc.Flags, ov.Flags)
		}
		if ov.Target != nil {
			if err := sources.claim(id, "target", ov.Label); err != nil {
				return nil, err
			}
			desc.Target = *ov.Target
		}
		if ov.TargetName != nil {
			if err := sources.claim(id, "target_name", ov.Label); err != nil {
				return nil, err
			}
			desc.TargetName = *ov.TargetName
		}
		// Env is merged per key: two records may both contribute variables
		// as long as no single variable has two suppliers.
		for k, v := range ov.Env {
			if err := sources.claim(id, "env."+k, ov.Label); err != nil {
				return nil, err
			}
			desc.Env[k] = v
		}
	}

	// Every field required downstream must be present after the merge.
	if desc.Target == "" {
		return nil, &MissingFieldError{EntryID: id, Field: "target"}
	}
	if desc.TargetName == "" {
		return nil, &MissingFieldError{EntryID: id, Field: "target_name"}
	}

	return desc, nil
}
