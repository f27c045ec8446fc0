package ports

import (
	"context"

	"github.com/aretw0/parley/pkg/domain"
)

// RunStore persists sealed TestRun payloads for later inspection (the CLI
// serve command and the HTTP API read from it). Stores only ever see sealed
// runs; they never observe a run mid-flight.
type RunStore interface {
	// Save persists the run under run.ID.
	Save(ctx context.Context, run *domain.TestRun) error

	// Load retrieves a run by id.
	// Returns domain.ErrRunNotFound if the id is unknown.
	Load(ctx context.Context, id string) (*domain.TestRun, error)

	// List returns the known run ids, most recent first.
	List(ctx context.Context) ([]string, error)

	// Delete removes a run by id.
	Delete(ctx context.Context, id string) error
}
