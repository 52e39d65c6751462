package history

import (
	"context"
	"fmt"

	"github.com/sprite-ai/warnctx/internal/model"
)

// Memory is an in-memory history. Commits are kept in traversal order and
// their files carry both sources up front.
type Memory struct {
	commits []*model.Commit
}

// NewMemory returns a history over commits, oldest first.
func NewMemory(commits ...*model.Commit) *Memory {
	return &Memory{commits: commits}
}

// Add appends a commit to the end of the history.
func (m *Memory) Add(c *model.Commit) {
	m.commits = append(m.commits, c)
}

func (m *Memory) Walk(ctx context.Context, visit func(hash string) bool) error {
	for _, c := range m.commits {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !visit(c.Hash) {
			return nil
		}
	}
	return nil
}

// Commit returns a copy so callers can hydrate or trim it freely.
func (m *Memory) Commit(ctx context.Context, hash string) (*model.Commit, error) {
	for _, c := range m.commits {
		if c.Hash != hash {
			continue
		}
		out := &model.Commit{Hash: c.Hash, Files: make([]*model.ModifiedFile, 0, len(c.Files))}
		for _, f := range c.Files {
			cp := *f
			cp.Hunks = append([]model.Hunk(nil), f.Hunks...)
			out.Files = append(out.Files, &cp)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCommit, hash)
}

// Hydrate is a no-op: Memory files already hold their sources.
func (m *Memory) Hydrate(ctx context.Context, hash string, mf *model.ModifiedFile, before, after bool) error {
	return nil
}
