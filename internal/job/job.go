// Package job defines the resolved Job Descriptor, the per-job runtime
// state machine, and the Artifact a successful build produces.
package job

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Descriptor is the fully resolved, immutable description of one build:
// the axis values identifying the combination plus every field merged from
// the matching override records. Descriptors are created by the planner and
// treated as read-only everywhere downstream; no job may mutate another
// job's descriptor.
type Descriptor struct {
	// ID is the axis values joined in axis declaration order, e.g.
	// "linux-stable".
	ID string

	// AxisNames preserves axis declaration order for reporting.
	AxisNames []string
	// Values maps each axis name to this combination's value.
	Values map[string]string

	// Flags are extra toolchain flags. An empty slice is a valid
	// configuration, not an error: it produces a build invocation with no
	// extra flags.
	Flags []string
	// Target is the compilation target triple. Required.
	Target string
	// TargetName is the output binary name, e.g. "aarf" or "aarf.exe".
	// Required.
	TargetName string
	// Env holds additional environment variables for the build.
	Env map[string]string
}

// OS returns the combination's operating-system axis value.
func (d *Descriptor) OS() string { return d.Values["os"] }

// Toolchain returns the combination's toolchain axis value.
func (d *Descriptor) Toolchain() string { return d.Values["toolchain"] }

// ArtifactName derives the published artifact name: the target binary name
// suffixed with every axis value in axis order. Since axis values are
// slug-safe and distinct descriptors differ in at least one value, no two
// descriptors can collide on this name.
func (d *Descriptor) ArtifactName() string {
	return d.TargetName + "-" + d.ID
}

// Artifact is the compiled binary produced for one descriptor. It is
// created by the build phase, consumed once by the publisher, and never
// mutated.
type Artifact struct {
	Name string
	Path string
}

// State is the lifecycle state of one job. Transitions are strictly
// forward: Planned → Building → {Built | BuildFailed} → Testing →
// {Tested | TestFailed} → Published | PublishFailed.
type State int32

const (
	Planned State = iota
	Building
	Built
	BuildFailed
	Testing
	Tested
	TestFailed
	Published
	PublishFailed
)

// String returns the state name used in logs, reports, and the status API.
func (s State) String() string {
	switch s {
	case Planned:
		return "planned"
	case Building:
		return "building"
	case Built:
		return "built"
	case BuildFailed:
		return "build_failed"
	case Testing:
		return "testing"
	case Tested:
		return "tested"
	case TestFailed:
		return "test_failed"
	case Published:
		return "published"
	case PublishFailed:
		return "publish_failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Terminal reports whether a job in this state has finished for good.
// There are no retries: a job reaches exactly one terminal state per run.
func (s State) Terminal() bool {
	switch s {
	case BuildFailed, TestFailed, Published, PublishFailed:
		return true
	}
	return false
}

// Failed reports whether the state is a failure terminal state.
func (s State) Failed() bool {
	switch s {
	case BuildFailed, TestFailed, PublishFailed:
		return true
	}
	return false
}

// Job is the runtime pairing of a descriptor with its state machine. The
// state is atomic so the status server can observe it while a worker owns
// the job; Err and Artifact are written only by the owning worker and read
// by others only after the run's join point, or through Snapshot.
type Job struct {
	Desc *Descriptor

	state atomic.Int32

	mu         sync.Mutex
	err        error
	artifact   *Artifact
	startedAt  time.Time
	finishedAt time.Time
}

// New wraps a descriptor in a runtime job in the Planned state.
func New(desc *Descriptor) *Job {
	j := &Job{Desc: desc}
	j.state.Store(int32(Planned))
	return j
}

// State returns the job's current state.
func (j *Job) State() State {
	return State(j.state.Load())
}

// SetState advances the job's state.
func (j *Job) SetState(s State) {
	j.state.Store(int32(s))
}

// Fail moves the job into the given failure terminal state and records the
// cause.
func (j *Job) Fail(s State, err error) {
	j.mu.Lock()
	j.err = err
	j.finishedAt = time.Now()
	j.mu.Unlock()
	j.state.Store(int32(s))
}

// Finish moves the job into a success terminal state.
func (j *Job) Finish(s State) {
	j.mu.Lock()
	j.finishedAt = time.Now()
	j.mu.Unlock()
	j.state.Store(int32(s))
}

// Start records the moment the job left the Planned state.
func (j *Job) Start() {
	j.mu.Lock()
	j.startedAt = time.Now()
	j.mu.Unlock()
}

// Err returns the failure cause, if any.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// SetArtifact records the build output.
func (j *Job) SetArtifact(a *Artifact) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.artifact = a
}

// Artifact returns the build output, or nil if the build has not succeeded.
func (j *Job) Artifact() *Artifact {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.artifact
}

// Duration returns how long the job ran, or 0 if it never started or has
// not finished.
func (j *Job) Duration() time.Duration {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.startedAt.IsZero() || j.finishedAt.IsZero() {
		return 0
	}
	return j.finishedAt.Sub(j.startedAt)
}

// Snapshot is a read-only copy of a job's observable state, safe to hand
// to the status server or the report builder while the run is in flight.
type Snapshot struct {
	ID       string            `json:"id"`
	Values   map[string]string `json:"values"`
	State    string            `json:"state"`
	Error    string            `json:"error,omitempty"`
	Artifact string            `json:"artifact,omitempty"`
}

// Snapshot captures the job's current observable state.
func (j *Job) Snapshot() Snapshot {
	values := make(map[string]string, len(j.Desc.Values))
	for k, v := range j.Desc.Values {
		values[k] = v
	}
	snap := Snapshot{
		ID:     j.Desc.ID,
		Values: values,
		State:  j.State().String(),
	}
	j.mu.Lock()
	if j.err != nil {
		snap.Error = j.err.Error()
	}
	if j.artifact != nil {
		snap.Artifact = j.artifact.Name
	}
	j.mu.Unlock()
	return snap
}
