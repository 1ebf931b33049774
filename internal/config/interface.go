package config

import "context"

// Loader abstracts the configuration format from the rest of the
// application. Implementations parse one or more definition files and
// translate them into the format-agnostic Pipeline model.
type Loader interface {
	// Load reads the pipeline definition from path, which may be a single
	// file or a directory of definition files whose blocks are merged.
	Load(ctx context.Context, path string) (*Pipeline, error)
}
