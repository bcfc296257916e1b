// Package apikey resolves the upstream API key lazily and caches it for the
// lifetime of the process.
package apikey

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"component-generator/internal/domain"
)

// Placeholder is the value shipped in sample .env files. It counts as unset.
const Placeholder = "your_api_key_here"

// Func returns the raw API key.
type Func func(ctx context.Context) (string, error)

// Static returns a Func that always yields key.
func Static(key string) Func {
	return func(context.Context) (string, error) {
		return key, nil
	}
}

// Resolver calls its Func until it yields a usable key, then keeps it.
// Failed lookups are not cached so a transient SSM error does not poison
// the process.
type Resolver struct {
	fn Func

	mu  sync.Mutex
	key string
}

func NewResolver(fn Func) *Resolver {
	return &Resolver{fn: fn}
}

// Key returns the cached key, resolving it on first use. An empty or
// placeholder key yields domain.ErrMissingAPIKey.
func (r *Resolver) Key(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.key != "" {
		return r.key, nil
	}
	if r.fn == nil {
		return "", domain.ErrMissingAPIKey
	}
	key, err := r.fn(ctx)
	if err != nil {
		return "", fmt.Errorf("apikey: resolve: %w", err)
	}
	key = strings.TrimSpace(key)
	if key == "" || key == Placeholder {
		return "", domain.ErrMissingAPIKey
	}
	r.key = key
	return key, nil
}
