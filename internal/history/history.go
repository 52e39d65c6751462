// Package history provides commit traversal and per-commit file changes.
package history

import (
	"context"
	"errors"

	"github.com/sprite-ai/warnctx/internal/model"
)

// ErrUnknownCommit is returned by Provider.Commit for a hash the history
// does not contain.
var ErrUnknownCommit = errors.New("unknown commit")

// Provider exposes a repository's history.
type Provider interface {
	// Walk visits commit hashes in traversal order (oldest first) until
	// visit returns false or history is exhausted.
	Walk(ctx context.Context, visit func(hash string) bool) error

	// Commit returns the commit with its modified files. Sources are not
	// loaded; see Hydrate.
	Commit(ctx context.Context, hash string) (*model.Commit, error)

	// Hydrate loads the before- and/or after-change text of mf as it was
	// in commit hash. A side that does not exist stays empty.
	Hydrate(ctx context.Context, hash string, mf *model.ModifiedFile, before, after bool) error
}

// Index answers commit membership without a history walk.
type Index interface {
	Contains(ctx context.Context, hash string) (bool, error)
}
