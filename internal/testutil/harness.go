// Package testutil provides the shared harness for end-to-end pipeline
// tests: temporary pipeline files, a captured logger, and a scriptable
// fake toolchain.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avask/buildgrid/internal/app"
	"github.com/avask/buildgrid/internal/hcl"
	"github.com/avask/buildgrid/internal/toolchain"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements io.Writer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements fmt.Stringer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Result holds the outcomes of a harness run.
type Result struct {
	LogOutput   string
	Err         error
	ArtifactDir string
}

// RunPipeline writes the given pipeline files into a temporary directory
// and runs the app end to end against the provided toolchain, capturing
// all log output. Keys of files are paths relative to the temp root.
func RunPipeline(t *testing.T, files map[string]string, tc toolchain.Toolchain, mutate func(*app.Config)) *Result {
	t.Helper()
	return RunPipelineWithContext(context.Background(), t, files, tc, mutate)
}

// RunPipelineWithContext is RunPipeline with a caller-provided context,
// for abort scenarios.
func RunPipelineWithContext(ctx context.Context, t *testing.T, files map[string]string, tc toolchain.Toolchain, mutate func(*app.Config)) *Result {
	t.Helper()

	tmpDir := t.TempDir()
	pipelineDir := filepath.Join(tmpDir, "pipeline")
	artifactDir := filepath.Join(tmpDir, "dist")
	require.NoError(t, os.Mkdir(pipelineDir, 0o755))

	for name, content := range files {
		filePath := filepath.Join(pipelineDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	cfg, err := app.NewConfig(app.Config{
		PipelinePath: pipelineDir,
		ProjectDir:   tmpDir,
		ArtifactDir:  artifactDir,
		LogFormat:    "text",
		LogLevel:     "debug",
		Workers:      4,
	})
	require.NoError(t, err)
	if mutate != nil {
		mutate(cfg)
	}

	logBuffer := &SafeBuffer{}
	a := app.NewApp(logBuffer, cfg, hcl.NewLoader(), tc)
	runErr := a.Run(ctx)

	return &Result{
		LogOutput:   logBuffer.String(),
		Err:         runErr,
		ArtifactDir: cfg.ArtifactDir,
	}
}
