// Package executor runs planned jobs concurrently on a worker pool. Jobs
// are independent: one job's failure never cancels a sibling, while a
// global context cancellation stops everything still in flight. Inside a
// job the pipeline is strictly sequential: build, then test, then publish.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/avask/buildgrid/internal/artifact"
	"github.com/avask/buildgrid/internal/ctxlog"
	"github.com/avask/buildgrid/internal/job"
	"github.com/avask/buildgrid/internal/toolchain"
)

// Executor orchestrates one run of the planned matrix.
type Executor struct {
	jobs       []*job.Job
	numWorkers int
	tc         toolchain.Toolchain
	publisher  *artifact.Publisher

	profile    string
	components []string

	wg sync.WaitGroup
}

// New returns an executor over the given jobs.
func New(jobs []*job.Job, workers int, tc toolchain.Toolchain, publisher *artifact.Publisher, profile string, components []string) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{
		jobs:       jobs,
		numWorkers: workers,
		tc:         tc,
		publisher:  publisher,
		profile:    profile,
		components: components,
	}
}

// Run executes every job and blocks until all of them reach a terminal
// state. It returns an error enumerating each failed combination; per-job
// failures are aggregated here, never propagated between jobs, and nothing
// is retried.
func (e *Executor) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	readyChan := make(chan *job.Job, len(e.jobs))
	for _, j := range e.jobs {
		readyChan <- j
	}
	close(readyChan)

	e.wg.Add(len(e.jobs))
	logger.Debug("Starting worker pool.", "workers", e.numWorkers, "jobs", len(e.jobs))
	for i := 0; i < e.numWorkers; i++ {
		go e.worker(ctx, readyChan, i)
	}

	logger.Info("Waiting for all jobs to complete...")
	e.wg.Wait()
	logger.Info("All jobs completed.")

	var failed []string
	for _, j := range e.jobs {
		if j.State().Failed() {
			logger.Error("Job failed.", "jobID", j.Desc.ID, "state", j.State().String(), "error", j.Err())
			failed = append(failed, fmt.Sprintf("%s (%s)", j.Desc.ID, j.State()))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("run failed for %s", strings.Join(failed, ", "))
	}
	return nil
}

// worker is the processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, readyChan chan *job.Job, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for j := range readyChan {
		workerLogger := logger.With("workerID", workerID, "jobID", j.Desc.ID)

		if ctx.Err() != nil {
			workerLogger.Warn("Run aborted, job will not start.")
			j.Fail(job.BuildFailed, fmt.Errorf("aborted before start: %w", ctx.Err()))
			e.wg.Done()
			continue
		}

		workerLogger.Debug("Worker picked up job.")
		e.runJob(ctx, workerLogger, j)
		e.wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// runJob drives one job through its state machine. Each phase must finish
// before the next starts, and the first failure parks the job in the
// corresponding terminal state.
func (e *Executor) runJob(ctx context.Context, logger *slog.Logger, j *job.Job) {
	desc := j.Desc
	j.Start()

	j.SetState(job.Building)
	if err := e.tc.Install(ctx, desc.Toolchain(), e.components, desc.Target); err != nil {
		logger.Error("Toolchain unavailable.", "error", err)
		j.Fail(job.BuildFailed, err)
		return
	}

	result, err := e.tc.Build(ctx, toolchain.BuildRequest{
		Toolchain:  desc.Toolchain(),
		Target:     desc.Target,
		TargetName: desc.TargetName,
		Profile:    e.profile,
		Flags:      desc.Flags,
		Env:        desc.Env,
	})
	if err != nil {
		logger.Error("Build failed.", "error", err)
		j.Fail(job.BuildFailed, err)
		return
	}
	j.SetState(job.Built)
	j.SetArtifact(&job.Artifact{Name: desc.ArtifactName(), Path: result.BinaryPath})
	logger.Info("Build succeeded.", "binary", result.BinaryPath)

	j.SetState(job.Testing)
	if err := e.tc.Test(ctx, desc.Toolchain(), false); err != nil {
		logger.Error("Tests failed.", "error", err)
		j.Fail(job.TestFailed, err)
		return
	}
	j.SetState(job.Tested)
	logger.Info("Tests passed.")

	if err := e.publisher.Publish(ctx, j.Artifact()); err != nil {
		logger.Error("Publish failed.", "error", err)
		j.Fail(job.PublishFailed, err)
		return
	}
	j.Finish(job.Published)
	logger.Info("Artifact published.", "artifact", j.Artifact().Name)
}
