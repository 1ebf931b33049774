package matrix

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avask/buildgrid/internal/config"
)

func TestExpand_ProducesFullCartesianProduct(t *testing.T) {
	axes := []config.Axis{
		{Name: "os", Values: []string{"linux", "windows", "macos"}},
		{Name: "toolchain", Values: []string{"nightly", "stable"}},
	}

	entries, err := Expand(axes)
	require.NoError(t, err)
	require.Len(t, entries, 6)

	seen := map[string]bool{}
	for _, e := range entries {
		id := e.ID()
		assert.False(t, seen[id], "duplicate combination %s", id)
		seen[id] = true
	}
}

func TestExpand_OrderIsDeterministic(t *testing.T) {
	axes := []config.Axis{
		{Name: "os", Values: []string{"linux", "windows"}},
		{Name: "toolchain", Values: []string{"nightly", "stable"}},
	}

	first, err := Expand(axes)
	require.NoError(t, err)
	second, err := Expand(axes)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(first, second))

	ids := make([]string, len(first))
	for i, e := range first {
		ids[i] = e.ID()
	}
	// Axis order, then value order.
	assert.Equal(t, []string{
		"linux-nightly", "linux-stable",
		"windows-nightly", "windows-stable",
	}, ids)
}

func TestExpand_ThreeAxes(t *testing.T) {
	axes := []config.Axis{
		{Name: "os", Values: []string{"linux", "macos"}},
		{Name: "toolchain", Values: []string{"stable"}},
		{Name: "arch", Values: []string{"amd64", "arm64", "riscv64"}},
	}

	entries, err := Expand(axes)
	require.NoError(t, err)
	assert.Len(t, entries, 2*1*3)
	assert.Equal(t, "linux-stable-amd64", entries[0].ID())
	assert.Equal(t, "macos-stable-riscv64", entries[5].ID())
}

func TestExpand_EmptyAxisIsAnError(t *testing.T) {
	axes := []config.Axis{
		{Name: "os", Values: []string{"linux"}},
		{Name: "toolchain", Values: nil},
	}

	_, err := Expand(axes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `axis "toolchain" has no values`)
}

func TestExpand_NoAxesIsAnError(t *testing.T) {
	_, err := Expand(nil)
	require.Error(t, err)
}

func TestEntry_Matches(t *testing.T) {
	entry := Entry{
		AxisNames: []string{"os", "toolchain"},
		Values:    map[string]string{"os": "windows", "toolchain": "nightly"},
	}

	assert.True(t, entry.Matches(map[string]string{"os": "windows"}))
	assert.True(t, entry.Matches(map[string]string{"os": "windows", "toolchain": "nightly"}))
	assert.False(t, entry.Matches(map[string]string{"os": "windows", "toolchain": "stable"}))
	assert.False(t, entry.Matches(map[string]string{"os": "linux"}))
}
