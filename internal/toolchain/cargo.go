package toolchain

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/avask/buildgrid/internal/ctxlog"
)

// Cargo drives the Rust toolchain through rustup and cargo, the command set
// the default pipeline targets. Dir is the project root the commands run
// in; Installer names the toolchain selector binary (normally "rustup").
type Cargo struct {
	Dir       string
	Installer string

	// run is swappable in tests. It executes one command and returns its
	// combined output alongside any exit error.
	run func(ctx context.Context, dir string, env map[string]string, name string, args ...string) (string, error)
}

// NewCargo returns a Cargo toolchain rooted at dir.
func NewCargo(dir, installer string) *Cargo {
	if installer == "" {
		installer = "rustup"
	}
	return &Cargo{Dir: dir, Installer: installer, run: runCommand}
}

// runCommand executes one external command, capturing stdout and stderr
// together so a failure's output can travel inside the returned error.
func runCommand(ctx context.Context, dir string, env map[string]string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	return out.String(), err
}

// Install runs the toolchain installer for the requested version, its
// optional components, and the job's cross-compilation target.
func (c *Cargo) Install(ctx context.Context, version string, components []string, target string) error {
	logger := ctxlog.FromContext(ctx)

	args := []string{"toolchain", "install", version, "--profile", "minimal"}
	for _, comp := range components {
		args = append(args, "--component", comp)
	}
	logger.Debug("Installing toolchain.", "version", version, "components", components)
	if out, err := c.run(ctx, c.Dir, nil, c.Installer, args...); err != nil {
		return &InstallError{Version: version, Err: fmt.Errorf("%w: %s", err, out)}
	}

	logger.Debug("Adding compilation target.", "version", version, "target", target)
	if out, err := c.run(ctx, c.Dir, nil, c.Installer, "target", "add", target, "--toolchain", version); err != nil {
		return &InstallError{Version: version, Err: fmt.Errorf("%w: %s", err, out)}
	}

	return nil
}

// Build invokes cargo for one job: the toolchain pinned with "+", the
// resolved profile and target triple, and whatever extra flags the job's
// overrides supplied. An empty flag set adds nothing.
func (c *Cargo) Build(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	logger := ctxlog.FromContext(ctx)

	args := []string{"+" + req.Toolchain, "build", "--profile", req.Profile, "--target", req.Target}
	if req.Verbose {
		args = append(args, "--verbose")
	}
	args = append(args, req.Flags...)

	logger.Info("Building.", "toolchain", req.Toolchain, "target", req.Target, "flags", req.Flags)
	if out, err := c.run(ctx, c.Dir, req.Env, "cargo", args...); err != nil {
		return nil, fmt.Errorf("cargo build failed: %w: %s", err, out)
	}

	binary := filepath.Join(c.Dir, "target", req.Target, profileDir(req.Profile), req.TargetName)
	if _, err := os.Stat(binary); err != nil {
		return nil, fmt.Errorf("build succeeded but binary not found at %s: %w", binary, err)
	}

	return &BuildResult{BinaryPath: binary}, nil
}

// Test runs the project's test suite with the pinned toolchain on the
// host's native target.
func (c *Cargo) Test(ctx context.Context, version string, verbose bool) error {
	logger := ctxlog.FromContext(ctx)

	args := []string{"+" + version, "test"}
	if verbose {
		args = append(args, "--verbose")
	}

	logger.Info("Running test suite.", "toolchain", version)
	if out, err := c.run(ctx, c.Dir, nil, "cargo", args...); err != nil {
		return fmt.Errorf("cargo test failed: %w: %s", err, out)
	}
	return nil
}

// profileDir maps a cargo profile name to its output directory. Cargo
// writes the "dev" profile under target/<triple>/debug.
func profileDir(profile string) string {
	if profile == "dev" {
		return "debug"
	}
	return profile
}
