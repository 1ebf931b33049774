package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const aarfPipeline = `
pipeline "aarf" {
  profile = "release"
}

axis "os" {
  values = ["linux", "windows", "macos"]
}

axis "toolchain" {
  values = ["nightly", "stable"]
}

override "linux" {
  match { os = "linux" }
  target      = "x86_64-unknown-linux-gnu"
  target_name = "aarf"
}

override "windows" {
  match { os = "windows" }
  target      = "x86_64-pc-windows-msvc"
  target_name = "aarf.exe"
}

override "macos" {
  match { os = "macos" }
  target      = "x86_64-apple-darwin"
  target_name = "aarf"
}

override "nightly-flags" {
  match { toolchain = "nightly" }
  flags = ["-Z", "build-std"]
  env   = { RUSTC_BOOTSTRAP = "1" }
}

toolchain {
  installer  = "rustup"
  components = ["rustfmt"]
}

publish "local" {
  directory = "dist"
}

publish "remote" {
  url = "https://artifacts.example.com/aarf/"
}
`

func writePipeline(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestLoad_FullPipeline(t *testing.T) {
	dir := writePipeline(t, map[string]string{"aarf.hcl": aarfPipeline})

	p, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, "aarf", p.Name)
	assert.Equal(t, "release", p.Profile)

	require.Len(t, p.Axes, 2)
	assert.Equal(t, "os", p.Axes[0].Name)
	assert.Equal(t, []string{"linux", "windows", "macos"}, p.Axes[0].Values)
	assert.Equal(t, "toolchain", p.Axes[1].Name)

	require.Len(t, p.Overrides, 4)
	windows := p.Overrides[1]
	assert.Equal(t, "windows", windows.Label)
	assert.Equal(t, map[string]string{"os": "windows"}, windows.Match)
	require.NotNil(t, windows.TargetName)
	assert.Equal(t, "aarf.exe", *windows.TargetName)
	assert.Nil(t, windows.Flags)

	nightly := p.Overrides[3]
	assert.Equal(t, []string{"-Z", "build-std"}, nightly.Flags)
	assert.Equal(t, map[string]string{"RUSTC_BOOTSTRAP": "1"}, nightly.Env)

	assert.Equal(t, "rustup", p.Toolchain.Installer)
	assert.Equal(t, []string{"rustfmt"}, p.Toolchain.Components)

	require.Len(t, p.Publish, 2)
	assert.Equal(t, "dist", p.Publish[0].Directory)
	assert.Equal(t, "https://artifacts.example.com/aarf/", p.Publish[1].URL)
}

func TestLoad_SingleFilePath(t *testing.T) {
	dir := writePipeline(t, map[string]string{"aarf.hcl": aarfPipeline})

	p, err := NewLoader().Load(context.Background(), filepath.Join(dir, "aarf.hcl"))
	require.NoError(t, err)
	assert.Equal(t, "aarf", p.Name)
}

func TestLoad_BlocksMergeAcrossFiles(t *testing.T) {
	dir := writePipeline(t, map[string]string{
		"a_pipeline.hcl": `
pipeline "aarf" {}
axis "os" { values = ["linux"] }
axis "toolchain" { values = ["stable"] }
`,
		"b_overrides.hcl": `
override "linux" {
  match { os = "linux" }
  target      = "x86_64-unknown-linux-gnu"
  target_name = "aarf"
}
`,
	})

	p, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, p.Axes, 2)
	assert.Len(t, p.Overrides, 1)
	assert.Equal(t, "release", p.Profile, "profile defaults when unset")
}

func TestLoad_TriggerBlock(t *testing.T) {
	dir := writePipeline(t, map[string]string{"a.hcl": `
pipeline "aarf" {}
trigger {
  branch = "master"
  events = ["push", "pull_request"]
}
axis "os" { values = ["linux"] }
`})

	p, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	require.NotNil(t, p.Trigger)
	assert.Equal(t, "master", p.Trigger.Branch)
	assert.Equal(t, []string{"push", "pull_request"}, p.Trigger.Events)
}

func TestLoad_InvalidHCLIsRejected(t *testing.T) {
	dir := writePipeline(t, map[string]string{"bad.hcl": `pipeline "aarf" {`})

	_, err := NewLoader().Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestLoad_DuplicatePipelineBlock(t *testing.T) {
	dir := writePipeline(t, map[string]string{
		"a.hcl": `pipeline "aarf" {}
axis "os" { values = ["linux"] }`,
		"b.hcl": `pipeline "other" {}`,
	})

	_, err := NewLoader().Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only one pipeline block")
}

func TestLoad_MissingMatchBlock(t *testing.T) {
	dir := writePipeline(t, map[string]string{"a.hcl": `
pipeline "aarf" {}
axis "os" { values = ["linux"] }
override "nameless" {
  target = "x86_64-unknown-linux-gnu"
}
`})

	_, err := NewLoader().Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no match block")
}

func TestLoad_NonStringMatchValue(t *testing.T) {
	dir := writePipeline(t, map[string]string{"a.hcl": `
pipeline "aarf" {}
axis "os" { values = ["linux"] }
override "bad" {
  match { os = 42 }
  target = "t"
}
`})

	_, err := NewLoader().Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a string")
}

func TestLoad_EmptyDirectory(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .hcl pipeline files")
}

func TestLoad_ValidationErrorsSurface(t *testing.T) {
	dir := writePipeline(t, map[string]string{"a.hcl": `
pipeline "aarf" {}
axis "os" { values = ["linux"] }
override "ghost" {
  match { arch = "amd64" }
  target = "t"
}
`})

	_, err := NewLoader().Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown axis")
}
