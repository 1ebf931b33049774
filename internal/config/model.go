package config

import (
	"fmt"
	"regexp"
)

// Pipeline is the unified, format-agnostic representation of one pipeline
// definition: the build matrix axes, the override records that specialize
// individual combinations, the toolchain settings, and the publish targets.
// It is loaded once by a Loader and never mutated during a run.
type Pipeline struct {
	Name      string
	Profile   string
	Trigger   *Trigger
	Axes      []Axis
	Overrides []Override
	Toolchain Toolchain
	Publish   []Publish
}

// Trigger restricts which hosting events start a run. A nil Trigger means
// the pipeline runs unconditionally.
type Trigger struct {
	Branch string
	Events []string
}

// Matches reports whether the given event payload satisfies the trigger.
// An empty Events list accepts any event; an empty Branch accepts any
// branch.
func (t *Trigger) Matches(event, branch string) bool {
	if t.Branch != "" && t.Branch != branch {
		return false
	}
	if len(t.Events) == 0 {
		return true
	}
	for _, e := range t.Events {
		if e == event {
			return true
		}
	}
	return false
}

// Axis is one independent dimension of build variation, with an ordered set
// of discrete values. Declaration order is significant: it fixes both the
// expansion order of the matrix and the order of value segments in job and
// artifact names.
type Axis struct {
	Name   string
	Values []string
}

// Override binds one or more axis values to additional job fields. A record
// applies to a matrix entry only if the entry carries every axis/value pair
// in Match. Field presence is significant: a nil slice or nil pointer means
// the record does not supply that field, while an empty non-nil Flags slice
// supplies an explicitly empty flag set.
type Override struct {
	Label      string
	Match      map[string]string
	Flags      []string
	Target     *string
	TargetName *string
	Env        map[string]string
}

// Toolchain holds the settings passed to the toolchain installer.
type Toolchain struct {
	Installer  string
	Components []string
}

// Publish describes one artifact publish target. Exactly one of Directory
// or URL is set.
type Publish struct {
	Name      string
	Directory string
	URL       string
}

// slugRe constrains axis values so that joining them with "-" can never
// produce the same string for two distinct value tuples.
var slugRe = regexp.MustCompile(`^[A-Za-z0-9._]+$`)

// Validate checks the structural integrity of a loaded pipeline: axis and
// override names must be unique, every match pair must reference a declared
// axis value, and axis values must be slug-safe so published artifact names
// stay collision-free.
func (p *Pipeline) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("pipeline block is missing or has no name")
	}

	axes := make(map[string]map[string]bool, len(p.Axes))
	for _, axis := range p.Axes {
		if _, ok := axes[axis.Name]; ok {
			return fmt.Errorf("duplicate axis %q", axis.Name)
		}
		values := make(map[string]bool, len(axis.Values))
		for _, v := range axis.Values {
			if !slugRe.MatchString(v) {
				return fmt.Errorf("axis %q: value %q is not a valid name segment", axis.Name, v)
			}
			if values[v] {
				return fmt.Errorf("axis %q: duplicate value %q", axis.Name, v)
			}
			values[v] = true
		}
		axes[axis.Name] = values
	}

	labels := make(map[string]bool, len(p.Overrides))
	for _, ov := range p.Overrides {
		if labels[ov.Label] {
			return fmt.Errorf("duplicate override %q", ov.Label)
		}
		labels[ov.Label] = true

		if len(ov.Match) == 0 {
			return fmt.Errorf("override %q has an empty match block", ov.Label)
		}
		for axisName, value := range ov.Match {
			values, ok := axes[axisName]
			if !ok {
				return fmt.Errorf("override %q matches unknown axis %q", ov.Label, axisName)
			}
			if !values[value] {
				return fmt.Errorf("override %q matches axis %q value %q, which is not declared", ov.Label, axisName, value)
			}
		}
	}

	publishNames := make(map[string]bool, len(p.Publish))
	for _, pub := range p.Publish {
		if publishNames[pub.Name] {
			return fmt.Errorf("duplicate publish target %q", pub.Name)
		}
		publishNames[pub.Name] = true
		if (pub.Directory == "") == (pub.URL == "") {
			return fmt.Errorf("publish target %q must set exactly one of directory or url", pub.Name)
		}
	}

	return nil
}
