package ports

import (
	"context"
)

// ArchiveStore persists the final documents of ended sessions.
// Documents are opaque JSON bytes produced by the registry.
type ArchiveStore interface {
	// Save stores the document for a given session ID, replacing any previous one.
	Save(ctx context.Context, sessionID string, doc []byte) error

	// Load retrieves the document for a given session ID.
	// Returns domain.ErrArchiveNotFound if the session was never archived.
	Load(ctx context.Context, sessionID string) ([]byte, error)

	// Delete removes the document for a given session ID.
	// Deleting an unknown ID is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the archived session IDs.
	List(ctx context.Context) ([]string, error)
}
