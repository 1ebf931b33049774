package app

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/avask/buildgrid/internal/artifact"
	"github.com/avask/buildgrid/internal/config"
	"github.com/avask/buildgrid/internal/executor"
	"github.com/avask/buildgrid/internal/job"
	"github.com/avask/buildgrid/internal/matrix"
	"github.com/avask/buildgrid/internal/plan"
	"github.com/avask/buildgrid/internal/report"
	"github.com/avask/buildgrid/internal/toolchain"
)

// Run executes the pipeline: load, expand, plan, then either print the
// plan or execute every job and report the aggregate result. The returned
// error is non-nil if planning fails or any job ends in a failed state.
func (a *App) Run(ctx context.Context) error {
	ctx = a.context(ctx)
	startedAt := time.Now()

	pipeline, err := a.loader.Load(ctx, a.cfg.PipelinePath)
	if err != nil {
		return fmt.Errorf("failed to load pipeline: %w", err)
	}
	a.logger.Info("Pipeline loaded.", "pipeline", pipeline.Name, "axes", len(pipeline.Axes))

	if !a.cfg.PlanOnly && pipeline.Trigger != nil && !pipeline.Trigger.Matches(a.cfg.Event, a.cfg.Branch) {
		a.logger.Info("Trigger did not match, nothing to do.",
			"event", a.cfg.Event, "branch", a.cfg.Branch)
		return nil
	}

	// Expansion and planning run before any job starts: a configuration
	// conflict or missing field aborts the whole run with zero jobs
	// executed.
	entries, err := matrix.Expand(pipeline.Axes)
	if err != nil {
		return fmt.Errorf("matrix expansion failed: %w", err)
	}
	a.logger.Info("Matrix expanded.", "combinations", len(entries))

	descs, err := plan.Resolve(ctx, entries, pipeline)
	if err != nil {
		return fmt.Errorf("planning failed: %w", err)
	}

	if a.cfg.PlanOnly {
		return a.printPlan(descs)
	}

	jobs := make([]*job.Job, len(descs))
	for i, desc := range descs {
		jobs[i] = job.New(desc)
	}

	if a.cfg.StatusPort > 0 {
		server := a.startStatusServer(a.cfg.StatusPort, jobs)
		defer a.stopStatusServer(server)
	}

	tc := a.toolchain
	if tc == nil {
		tc = toolchain.NewCargo(a.cfg.ProjectDir, pipeline.Toolchain.Installer)
	}

	publisher := a.buildPublisher(pipeline)

	a.logger.Info("Starting matrix execution.", "jobs", len(jobs), "workers", a.cfg.Workers)
	exec := executor.New(jobs, a.cfg.Workers, tc, publisher, pipeline.Profile, pipeline.Toolchain.Components)
	runErr := exec.Run(ctx)

	summary := report.Build(a.runID, pipeline.Name, startedAt, jobs)
	summary.Log(a.logger)
	if a.cfg.ReportPath != "" {
		if err := summary.WriteFile(a.cfg.ReportPath); err != nil {
			a.logger.Error("Failed to write run summary.", "path", a.cfg.ReportPath, "error", err)
		} else {
			a.logger.Info("Run summary written.", "path", a.cfg.ReportPath)
		}
	}

	return runErr
}

// buildPublisher assembles the artifact stores from the pipeline's publish
// targets plus the artifact-dir flag. With nothing configured, artifacts
// land in a local "dist" directory.
func (a *App) buildPublisher(pipeline *config.Pipeline) *artifact.Publisher {
	var stores []artifact.Store
	for _, pub := range pipeline.Publish {
		switch {
		case pub.Directory != "":
			stores = append(stores, artifact.NewDirStore(pub.Name, pub.Directory))
		case pub.URL != "":
			stores = append(stores, artifact.NewHTTPStore(pub.Name, pub.URL, nil))
		}
	}
	if a.cfg.ArtifactDir != "" {
		stores = append(stores, artifact.NewDirStore("artifact-dir", a.cfg.ArtifactDir))
	}
	if len(stores) == 0 {
		stores = append(stores, artifact.NewDirStore("local", "dist"))
	}
	return artifact.NewPublisher(stores...)
}

// printPlan renders the resolved job descriptors to the output writer.
func (a *App) printPlan(descs []*job.Descriptor) error {
	out, err := yaml.Marshal(descs)
	if err != nil {
		return fmt.Errorf("failed to render plan: %w", err)
	}
	if _, err := a.outW.Write(out); err != nil {
		return err
	}
	return nil
}
