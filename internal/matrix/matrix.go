// Package matrix expands the build matrix: the Cartesian product of all
// declared axes, in a deterministic order so downstream job and artifact
// names are reproducible across runs.
package matrix

import (
	"fmt"
	"strings"

	"github.com/avask/buildgrid/internal/config"
)

// Entry is one combination of axis values produced by expansion. AxisNames
// preserves declaration order; Values maps each axis name to the value this
// entry carries for it.
type Entry struct {
	AxisNames []string
	Values    map[string]string
}

// ID returns the entry's identity: its axis values joined in axis
// declaration order. Axis values are validated to be slug-safe at load
// time, so two distinct entries can never share an ID.
func (e Entry) ID() string {
	parts := make([]string, len(e.AxisNames))
	for i, name := range e.AxisNames {
		parts[i] = e.Values[name]
	}
	return strings.Join(parts, "-")
}

// Value returns the entry's value for the named axis, or "" if the axis is
// not part of the matrix.
func (e Entry) Value(axis string) string {
	return e.Values[axis]
}

// Matches reports whether the entry carries every axis/value pair of the
// given match set.
func (e Entry) Matches(match map[string]string) bool {
	for axis, value := range match {
		if e.Values[axis] != value {
			return false
		}
	}
	return true
}

// Expand computes the Cartesian product of the given axes. The result has
// exactly the product of the axis cardinalities as its length, ordered by
// axis declaration order and then value order, so repeated expansion of the
// same configuration yields an identical slice.
//
// An axis with zero values is an error: an empty product would silently
// plan no jobs, which must be reported rather than swallowed. A pipeline
// with no axes at all is rejected for the same reason.
func Expand(axes []config.Axis) ([]Entry, error) {
	if len(axes) == 0 {
		return nil, fmt.Errorf("matrix has no axes")
	}

	names := make([]string, len(axes))
	total := 1
	for i, axis := range axes {
		if len(axis.Values) == 0 {
			return nil, fmt.Errorf("axis %q has no values", axis.Name)
		}
		names[i] = axis.Name
		total *= len(axis.Values)
	}

	entries := make([]Entry, 0, total)
	current := make(map[string]string, len(axes))

	var walk func(depth int)
	walk = func(depth int) {
		if depth == len(axes) {
			values := make(map[string]string, len(current))
			for k, v := range current {
				values[k] = v
			}
			entries = append(entries, Entry{AxisNames: names, Values: values})
			return
		}
		for _, value := range axes[depth].Values {
			current[axes[depth].Name] = value
			walk(depth + 1)
		}
	}
	walk(0)

	return entries, nil
}
