// Package config defines the format-agnostic pipeline model and the Loader
// interface that concrete formats (currently HCL) implement. The model is
// an immutable value: it is loaded once at startup and passed explicitly to
// the matrix expander and the job planner, never mutated during a run.
package config
