// Package middleware decorates preset stores with validation and
// observability.
package middleware

import "github.com/aretw0/stepwise/pkg/ports"

// Middleware allows wrapping a PresetStore to add behavior.
type Middleware func(ports.PresetStore) ports.PresetStore

// Chain wraps store so that the first middleware is the outermost.
func Chain(store ports.PresetStore, mws ...Middleware) ports.PresetStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
