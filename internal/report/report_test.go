package report

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/avask/buildgrid/internal/job"
)

func finishedJob(id string, values map[string]string, terminal job.State, err error) *job.Job {
	j := job.New(&job.Descriptor{
		ID:         id,
		AxisNames:  []string{"os", "toolchain"},
		Values:     values,
		Target:     "t",
		TargetName: "aarf",
	})
	j.Start()
	if err != nil {
		j.Fail(terminal, err)
	} else {
		j.SetArtifact(&job.Artifact{Name: "aarf-" + id, Path: "/tmp/aarf"})
		j.Finish(terminal)
	}
	return j
}

func TestBuild_EnumeratesEveryJob(t *testing.T) {
	jobs := []*job.Job{
		finishedJob("linux-stable", map[string]string{"os": "linux", "toolchain": "stable"}, job.Published, nil),
		finishedJob("windows-nightly", map[string]string{"os": "windows", "toolchain": "nightly"}, job.BuildFailed, errors.New("link error")),
	}

	s := Build("run-1", "aarf", time.Now().Add(-time.Minute), jobs)

	assert.False(t, s.Success, "one failed job fails the run")
	require.Len(t, s.Jobs, 2)
	assert.Equal(t, "published", s.Jobs[0].State)
	assert.Equal(t, "aarf-linux-stable", s.Jobs[0].Artifact)
	assert.Equal(t, "build_failed", s.Jobs[1].State)
	assert.Equal(t, "link error", s.Jobs[1].Error)
}

func TestBuild_DurationIsHumanReadable(t *testing.T) {
	jobs := []*job.Job{
		finishedJob("linux-stable", map[string]string{"os": "linux", "toolchain": "stable"}, job.Published, nil),
	}

	s := Build("run-4", "aarf", time.Now(), jobs)

	require.Len(t, s.Jobs, 1)
	d, err := time.ParseDuration(s.Jobs[0].Duration)
	require.NoError(t, err, "duration must marshal in time.Duration string form, not nanoseconds")
	assert.GreaterOrEqual(t, d, time.Duration(0))
}

func TestBuild_SuccessRequiresEveryJobPublished(t *testing.T) {
	jobs := []*job.Job{
		finishedJob("linux-stable", map[string]string{"os": "linux", "toolchain": "stable"}, job.Published, nil),
		finishedJob("linux-nightly", map[string]string{"os": "linux", "toolchain": "nightly"}, job.Published, nil),
	}

	s := Build("run-2", "aarf", time.Now(), jobs)
	assert.True(t, s.Success)
}

func TestWriteFile(t *testing.T) {
	jobs := []*job.Job{
		finishedJob("linux-stable", map[string]string{"os": "linux", "toolchain": "stable"}, job.Published, nil),
	}
	s := Build("run-3", "aarf", time.Now(), jobs)

	path := filepath.Join(t.TempDir(), "summary.yaml")
	require.NoError(t, s.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Summary
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "run-3", decoded.RunID)
	assert.True(t, decoded.Success)
	require.Len(t, decoded.Jobs, 1)
	assert.Equal(t, "published", decoded.Jobs[0].State)
}
