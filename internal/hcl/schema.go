package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes all top-level blocks a pipeline definition file may
// contain. Blocks from multiple files merge into a single model.
type fileRoot struct {
	Pipelines []*pipelineBlock  `hcl:"pipeline,block"`
	Triggers  []*triggerBlock   `hcl:"trigger,block"`
	Axes      []*axisBlock      `hcl:"axis,block"`
	Overrides []*overrideBlock  `hcl:"override,block"`
	Toolchain []*toolchainBlock `hcl:"toolchain,block"`
	Publish   []*publishBlock   `hcl:"publish,block"`
	Remain    hcl.Body          `hcl:",remain"`
}

// pipelineBlock names the project and selects the build profile.
type pipelineBlock struct {
	Name    string `hcl:"name,label"`
	Profile string `hcl:"profile,optional"`
}

// triggerBlock restricts which hosting events start a run.
type triggerBlock struct {
	Branch string   `hcl:"branch,optional"`
	Events []string `hcl:"events,optional"`
}

// axisBlock declares one matrix axis with its ordered values.
type axisBlock struct {
	Name   string   `hcl:"name,label"`
	Values []string `hcl:"values"`
}

// overrideBlock binds axis values to extra job fields. The match block
// holds free-form axis = value attributes, resolved during translation.
type overrideBlock struct {
	Label      string            `hcl:"name,label"`
	Match      *matchBlock       `hcl:"match,block"`
	Flags      []string          `hcl:"flags,optional"`
	Target     *string           `hcl:"target,optional"`
	TargetName *string           `hcl:"target_name,optional"`
	Env        map[string]string `hcl:"env,optional"`
}

type matchBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// toolchainBlock configures the external toolchain installer.
type toolchainBlock struct {
	Installer  string   `hcl:"installer,optional"`
	Components []string `hcl:"components,optional"`
}

// publishBlock declares one artifact destination.
type publishBlock struct {
	Name      string `hcl:"name,label"`
	Directory string `hcl:"directory,optional"`
	URL       string `hcl:"url,optional"`
}
