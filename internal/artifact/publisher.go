// Package artifact publishes compiled binaries under their derived names.
// Each artifact is consumed exactly once; a publish failure is reported to
// the caller but never invalidates the build and test results the job
// already earned.
package artifact

import (
	"context"
	"errors"
	"fmt"

	"github.com/avask/buildgrid/internal/ctxlog"
	"github.com/avask/buildgrid/internal/job"
)

// Store is one artifact destination.
type Store interface {
	// Name identifies the store in logs and error messages.
	Name() string
	// Put stores the file at sourcePath under the given artifact name.
	Put(ctx context.Context, name, sourcePath string) error
}

// Publisher fans one artifact out to every configured store.
type Publisher struct {
	stores []Store
}

// NewPublisher returns a publisher over the given stores.
func NewPublisher(stores ...Store) *Publisher {
	return &Publisher{stores: stores}
}

// Publish uploads the artifact to all stores, joining every failure so a
// partially successful publish still reports each broken destination.
func (p *Publisher) Publish(ctx context.Context, a *job.Artifact) error {
	logger := ctxlog.FromContext(ctx)

	var errs []error
	for _, store := range p.stores {
		logger.Info("Publishing artifact.", "artifact", a.Name, "store", store.Name())
		if err := store.Put(ctx, a.Name, a.Path); err != nil {
			errs = append(errs, fmt.Errorf("store %s: %w", store.Name(), err))
		}
	}
	return errors.Join(errs...)
}
