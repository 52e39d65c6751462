package history

import (
	"context"
	"sync"
)

// Indexed wraps a Provider with a commit-hash set built from one full walk.
// Lookups after the first are map hits instead of history scans.
type Indexed struct {
	Provider

	mu     sync.Mutex
	hashes map[string]bool
}

// NewIndexed wraps p. The index is built lazily on the first Contains call.
func NewIndexed(p Provider) *Indexed {
	return &Indexed{Provider: p}
}

func (x *Indexed) Contains(ctx context.Context, hash string) (bool, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.hashes == nil {
		hashes := make(map[string]bool)
		err := x.Provider.Walk(ctx, func(h string) bool {
			hashes[h] = true
			return true
		})
		if err != nil {
			return false, err
		}
		x.hashes = hashes
	}
	return x.hashes[hash], nil
}

// Reset drops the index, e.g. after the underlying clone was fetched.
func (x *Indexed) Reset() {
	x.mu.Lock()
	x.hashes = nil
	x.mu.Unlock()
}
