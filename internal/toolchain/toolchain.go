// Package toolchain abstracts the native toolchain the orchestrator drives:
// installing a requested toolchain version, compiling a job's target, and
// running the test suite on the host.
package toolchain

import (
	"context"
	"fmt"
)

// BuildRequest carries everything a single build invocation needs. Flags
// may be empty: absence of extra flags is a valid configuration and the
// build proceeds without any.
type BuildRequest struct {
	Toolchain  string
	Target     string
	TargetName string
	Profile    string
	Flags      []string
	Env        map[string]string
	Verbose    bool
}

// BuildResult reports where a successful build left the compiled binary.
type BuildResult struct {
	BinaryPath string
}

// Toolchain is the external-toolchain interface the executor calls into.
// All methods honor context cancellation; none of them retries.
type Toolchain interface {
	// Install makes the requested toolchain version available along with
	// the optional components and the cross-compilation target. Failure is
	// fatal for the calling job.
	Install(ctx context.Context, version string, components []string, target string) error

	// Build compiles the target and returns the produced binary's path, or
	// an error carrying the toolchain's output on a non-zero exit.
	Build(ctx context.Context, req BuildRequest) (*BuildResult, error)

	// Test runs the full test suite once with the given toolchain on the
	// host, regardless of any cross-compilation target.
	Test(ctx context.Context, version string, verbose bool) error
}

// InstallError marks a toolchain-unavailable failure so reporting can
// distinguish it from an ordinary compile failure.
type InstallError struct {
	Version string
	Err     error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("toolchain %s unavailable: %v", e.Version, e.Err)
}

func (e *InstallError) Unwrap() error { return e.Err }
