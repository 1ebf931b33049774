package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPipeline() *Pipeline {
	target := "x86_64-unknown-linux-gnu"
	name := "aarf"
	return &Pipeline{
		Name: "aarf",
		Axes: []Axis{
			{Name: "os", Values: []string{"linux", "windows"}},
			{Name: "toolchain", Values: []string{"nightly", "stable"}},
		},
		Overrides: []Override{
			{
				Label:      "linux",
				Match:      map[string]string{"os": "linux"},
				Target:     &target,
				TargetName: &name,
			},
		},
		Publish: []Publish{
			{Name: "local", Directory: "dist"},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validPipeline().Validate())
}

func TestValidate_MissingName(t *testing.T) {
	p := validPipeline()
	p.Name = ""
	assert.ErrorContains(t, p.Validate(), "pipeline block")
}

func TestValidate_DuplicateAxis(t *testing.T) {
	p := validPipeline()
	p.Axes = append(p.Axes, Axis{Name: "os", Values: []string{"plan9"}})
	assert.ErrorContains(t, p.Validate(), `duplicate axis "os"`)
}

func TestValidate_DuplicateAxisValue(t *testing.T) {
	p := validPipeline()
	p.Axes[0].Values = []string{"linux", "linux"}
	assert.ErrorContains(t, p.Validate(), `duplicate value "linux"`)
}

func TestValidate_NonSlugAxisValue(t *testing.T) {
	p := validPipeline()
	// A value containing the name separator could make two published
	// artifact names collide.
	p.Axes[0].Values = []string{"linux-gnu/extra"}
	assert.ErrorContains(t, p.Validate(), "not a valid name segment")
}

func TestValidate_DuplicateOverrideLabel(t *testing.T) {
	p := validPipeline()
	p.Overrides = append(p.Overrides, Override{
		Label: "linux",
		Match: map[string]string{"os": "windows"},
	})
	assert.ErrorContains(t, p.Validate(), `duplicate override "linux"`)
}

func TestValidate_EmptyMatch(t *testing.T) {
	p := validPipeline()
	p.Overrides[0].Match = nil
	assert.ErrorContains(t, p.Validate(), "empty match block")
}

func TestValidate_UnknownAxisInMatch(t *testing.T) {
	p := validPipeline()
	p.Overrides[0].Match = map[string]string{"arch": "amd64"}
	assert.ErrorContains(t, p.Validate(), `unknown axis "arch"`)
}

func TestValidate_UndeclaredValueInMatch(t *testing.T) {
	p := validPipeline()
	p.Overrides[0].Match = map[string]string{"os": "plan9"}
	assert.ErrorContains(t, p.Validate(), "not declared")
}

func TestTriggerMatches(t *testing.T) {
	tr := &Trigger{Branch: "master", Events: []string{"push", "pull_request"}}
	assert.True(t, tr.Matches("push", "master"))
	assert.True(t, tr.Matches("pull_request", "master"))
	assert.False(t, tr.Matches("push", "develop"))
	assert.False(t, tr.Matches("schedule", "master"))

	anyEvent := &Trigger{Branch: "master"}
	assert.True(t, anyEvent.Matches("schedule", "master"))

	anyBranch := &Trigger{Events: []string{"push"}}
	assert.True(t, anyBranch.Matches("push", "feature/x"))
}

func TestValidate_PublishTargetShape(t *testing.T) {
	p := validPipeline()
	p.Publish = []Publish{{Name: "broken"}}
	assert.ErrorContains(t, p.Validate(), "exactly one of directory or url")

	p.Publish = []Publish{{Name: "both", Directory: "dist", URL: "https://example.com"}}
	assert.ErrorContains(t, p.Validate(), "exactly one of directory or url")
}
