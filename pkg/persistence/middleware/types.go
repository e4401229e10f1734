// Package middleware wraps an ArchiveStore to transform documents on their way to storage.
package middleware

import "github.com/aretw0/complog/pkg/ports"

// Middleware allows wrapping an ArchiveStore to add behavior.
type Middleware func(ports.ArchiveStore) ports.ArchiveStore

// Chain applies middlewares so that the first one sees Save calls first.
func Chain(store ports.ArchiveStore, mws ...Middleware) ports.ArchiveStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
