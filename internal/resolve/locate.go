// Package resolve correlates a warning with the commit and file change
// that explain it.
package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/sprite-ai/warnctx/internal/history"
	"github.com/sprite-ai/warnctx/internal/model"
)

var (
	// ErrCommitNotFound means the local history lacks the commit, usually
	// because the clone is stale.
	ErrCommitNotFound = errors.New("commit not found")
	// ErrFileNotModified means the commit exists but does not touch the file.
	ErrFileNotModified = errors.New("file not modified in commit")
)

// LocateCommit scans p's history for hash. Providers that keep a hash index
// are asked directly instead of walked.
func LocateCommit(ctx context.Context, p history.Provider, hash string) (*model.Commit, error) {
	var found bool
	if idx, ok := p.(history.Index); ok {
		has, err := idx.Contains(ctx, hash)
		if err != nil {
			return nil, fmt.Errorf("indexing history: %w", err)
		}
		found = has
	} else {
		err := p.Walk(ctx, func(h string) bool {
			if h == hash {
				found = true
				return false
			}
			return true
		})
		if err != nil {
			return nil, fmt.Errorf("walking history: %w", err)
		}
	}

	if !found {
		return nil, fmt.Errorf("%w: %s", ErrCommitNotFound, hash)
	}

	c, err := p.Commit(ctx, hash)
	if err != nil {
		if errors.Is(err, history.ErrUnknownCommit) {
			return nil, fmt.Errorf("%w: %s", ErrCommitNotFound, hash)
		}
		return nil, err
	}
	return c, nil
}
