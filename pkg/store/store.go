// Package store provides durable persistence of agent cards keyed by name.
package store

import (
	"context"

	"github.com/jllopis/agentdir/pkg/agentcard"
)

// Store is the persistence contract shared by the file and SQLite backends.
// Both implementations produce identical outcomes for identical operation
// sequences; the order of List results is unspecified.
type Store interface {
	// List returns every stored card, in no guaranteed order.
	List(ctx context.Context) ([]agentcard.Card, error)

	// Get returns the card stored under name. Absence is not an error.
	Get(ctx context.Context, name string) (agentcard.Card, bool, error)

	// Create stores a new card keyed by its name. It fails with an
	// ALREADY_EXISTS error when the name is taken and never overwrites.
	Create(ctx context.Context, card agentcard.Card) (agentcard.Card, error)

	// Replace fully replaces the card stored under name. The boolean is false
	// when name is not present; that is not an error.
	Replace(ctx context.Context, name string, card agentcard.Card) (agentcard.Card, bool, error)

	// Delete removes the card stored under name and reports whether a removal
	// occurred. Deleting an absent name is a no-op.
	Delete(ctx context.Context, name string) (bool, error)
}
