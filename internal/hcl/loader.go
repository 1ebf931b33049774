// Package hcl is the HCL implementation of the config.Loader interface.
// It parses pipeline definition files and translates them into the
// format-agnostic config model.
package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/avask/buildgrid/internal/config"
	"github.com/avask/buildgrid/internal/ctxlog"
)

// Loader parses HCL pipeline definitions.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load implements config.Loader. The path may be one .hcl file or a
// directory; all discovered files are parsed and their blocks merged, with
// files visited in sorted order so the merged axis order is stable.
func (l *Loader) Load(ctx context.Context, path string) (*config.Pipeline, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := findHCLFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl pipeline files found at %s", path)
	}
	logger.Debug("Discovered pipeline files.", "count", len(files))

	parser := hclparse.NewParser()
	pipeline := &config.Pipeline{}
	var havePipeline, haveToolchain bool

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse %s: %s", file, diags.Error())
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode %s: %s", file, diags.Error())
		}

		if len(root.Pipelines) > 1 || (havePipeline && len(root.Pipelines) > 0) {
			return nil, fmt.Errorf("%s: only one pipeline block is allowed", file)
		}
		if len(root.Pipelines) == 1 {
			havePipeline = true
			pipeline.Name = root.Pipelines[0].Name
			pipeline.Profile = root.Pipelines[0].Profile
		}

		if len(root.Triggers) > 1 || (pipeline.Trigger != nil && len(root.Triggers) > 0) {
			return nil, fmt.Errorf("%s: only one trigger block is allowed", file)
		}
		if len(root.Triggers) == 1 {
			pipeline.Trigger = &config.Trigger{
				Branch: root.Triggers[0].Branch,
				Events: root.Triggers[0].Events,
			}
		}

		for _, axis := range root.Axes {
			pipeline.Axes = append(pipeline.Axes, config.Axis{
				Name:   axis.Name,
				Values: axis.Values,
			})
		}

		for _, ov := range root.Overrides {
			translated, err := l.translateOverride(ov)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			pipeline.Overrides = append(pipeline.Overrides, *translated)
		}

		if len(root.Toolchain) > 1 || (haveToolchain && len(root.Toolchain) > 0) {
			return nil, fmt.Errorf("%s: only one toolchain block is allowed", file)
		}
		if len(root.Toolchain) == 1 {
			haveToolchain = true
			pipeline.Toolchain = config.Toolchain{
				Installer:  root.Toolchain[0].Installer,
				Components: root.Toolchain[0].Components,
			}
		}

		for _, pub := range root.Publish {
			pipeline.Publish = append(pipeline.Publish, config.Publish{
				Name:      pub.Name,
				Directory: pub.Directory,
				URL:       pub.URL,
			})
		}
	}

	if pipeline.Profile == "" {
		pipeline.Profile = "release"
	}

	if err := pipeline.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline definition: %w", err)
	}

	logger.Debug("Pipeline definition loaded.",
		"pipeline", pipeline.Name,
		"axes", len(pipeline.Axes),
		"overrides", len(pipeline.Overrides),
		"publish_targets", len(pipeline.Publish))
	return pipeline, nil
}

// findHCLFiles resolves a path to the sorted list of .hcl files it names.
func findHCLFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read pipeline path %s: %w", path, err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".hcl") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", path, err)
	}

	sort.Strings(files)
	return files, nil
}
