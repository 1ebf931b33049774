package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/avask/buildgrid/internal/toolchain"
)

// FakeToolchain is a scriptable in-memory toolchain. It fabricates a
// binary file per successful build and records every invocation, so tests
// can assert exactly which combinations reached which phase.
type FakeToolchain struct {
	dir string

	mu          sync.Mutex
	installErrs map[string]error
	buildErrs   map[string]error
	testErrs    map[string]error
	installs    []string
	builds      []toolchain.BuildRequest
	tests       []string
}

// NewFakeToolchain returns a fake that writes its binaries under a
// test-scoped temporary directory.
func NewFakeToolchain(t *testing.T) *FakeToolchain {
	return &FakeToolchain{
		dir:         t.TempDir(),
		installErrs: map[string]error{},
		buildErrs:   map[string]error{},
		testErrs:    map[string]error{},
	}
}

// buildKey scripts failures per (target, toolchain) combination.
func buildKey(target, version string) string {
	return target + "@" + version
}

// FailInstall makes Install fail for the given toolchain version.
func (f *FakeToolchain) FailInstall(version string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.installErrs[version] = err
}

// FailBuild makes Build fail for the given target/toolchain combination.
func (f *FakeToolchain) FailBuild(target, version string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buildErrs[buildKey(target, version)] = err
}

// FailTest makes Test fail for the given toolchain version.
func (f *FakeToolchain) FailTest(version string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.testErrs[version] = err
}

// Install implements toolchain.Toolchain.
func (f *FakeToolchain) Install(ctx context.Context, version string, components []string, target string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.installs = append(f.installs, version)
	if err := f.installErrs[version]; err != nil {
		return &toolchain.InstallError{Version: version, Err: err}
	}
	return nil
}

// Build implements toolchain.Toolchain.
func (f *FakeToolchain) Build(ctx context.Context, req toolchain.BuildRequest) (*toolchain.BuildResult, error) {
	f.mu.Lock()
	f.builds = append(f.builds, req)
	err := f.buildErrs[buildKey(req.Target, req.Toolchain)]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	binary := filepath.Join(f.dir, req.Target+"-"+req.Toolchain+"-"+req.TargetName)
	if err := os.WriteFile(binary, []byte("binary for "+req.Target), 0o755); err != nil {
		return nil, err
	}
	return &toolchain.BuildResult{BinaryPath: binary}, nil
}

// Test implements toolchain.Toolchain.
func (f *FakeToolchain) Test(ctx context.Context, version string, verbose bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tests = append(f.tests, version)
	return f.testErrs[version]
}

// Builds returns a copy of every recorded build request.
func (f *FakeToolchain) Builds() []toolchain.BuildRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]toolchain.BuildRequest(nil), f.builds...)
}

// Installs returns the toolchain versions Install was called with.
func (f *FakeToolchain) Installs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.installs...)
}

// Tests returns the toolchain versions Test was called with.
func (f *FakeToolchain) Tests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tests...)
}
