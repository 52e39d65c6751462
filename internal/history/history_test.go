package history

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprite-ai/warnctx/internal/model"
)

type countingProvider struct {
	Provider
	walks int
}

func (c *countingProvider) Walk(ctx context.Context, visit func(string) bool) error {
	c.walks++
	return c.Provider.Walk(ctx, visit)
}

func sampleMemory() *Memory {
	return NewMemory(
		&model.Commit{Hash: "a1", Files: []*model.ModifiedFile{{NewPath: "x.c", ChangeType: model.ChangeAdd}}},
		&model.Commit{Hash: "b2", Files: []*model.ModifiedFile{{
			OldPath: "x.c", NewPath: "x.c", ChangeType: model.ChangeModify,
			Hunks: []model.Hunk{{Line: 1, Text: "y", Kind: model.HunkAdded}},
		}}},
	)
}

func TestMemoryWalkOrderAndStop(t *testing.T) {
	m := sampleMemory()

	var seen []string
	require.NoError(t, m.Walk(context.Background(), func(h string) bool {
		seen = append(seen, h)
		return true
	}))
	assert.Equal(t, []string{"a1", "b2"}, seen)

	seen = nil
	require.NoError(t, m.Walk(context.Background(), func(h string) bool {
		seen = append(seen, h)
		return false
	}))
	assert.Equal(t, []string{"a1"}, seen)
}

func TestMemoryCommitCopies(t *testing.T) {
	m := sampleMemory()

	c, err := m.Commit(context.Background(), "b2")
	require.NoError(t, err)
	c.Files[0].Hunks[0].Text = "mutated"
	c.Files[0].SourceAfter = "mutated"

	again, err := m.Commit(context.Background(), "b2")
	require.NoError(t, err)
	assert.Equal(t, "y", again.Files[0].Hunks[0].Text)
	assert.Empty(t, again.Files[0].SourceAfter)

	_, err = m.Commit(context.Background(), "zz")
	assert.True(t, errors.Is(err, ErrUnknownCommit))
}

func TestIndexedWalksOnce(t *testing.T) {
	inner := &countingProvider{Provider: sampleMemory()}
	x := NewIndexed(inner)
	ctx := context.Background()

	ok, err := x.Contains(ctx, "b2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = x.Contains(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, inner.walks)

	x.Reset()
	_, err = x.Contains(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.walks)
}

func TestPoolLocalPath(t *testing.T) {
	p := NewPool("/clones", false, nil)
	for _, url := range []string{
		"https://github.com/ishepard/pydriller",
		"https://github.com/ishepard/pydriller.git",
		"https://github.com/ishepard/pydriller/",
		"git@github.com:pydriller",
	} {
		got, err := p.LocalPath(url)
		require.NoError(t, err, url)
		assert.Equal(t, "/clones/pydriller", got, url)
	}
}

func TestPoolLocalPathRejectsEscapes(t *testing.T) {
	p := NewPool("/clones", true, nil)
	for _, url := range []string{
		"https://host/owner/..",
		"https://host/owner/../",
		"https://host/owner/.",
		"https://host/owner/..git",
		"https://host/owner/.git",
	} {
		_, err := p.LocalPath(url)
		assert.ErrorIs(t, err, ErrBadRepoName, url)
	}

	_, err := p.Open(context.Background(), "https://host/owner/..")
	assert.ErrorIs(t, err, ErrBadRepoName)
}

func TestPoolOpenSurvivesCancelledCaller(t *testing.T) {
	p := NewPool(t.TempDir(), false, nil)
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	p.openRepo = func(ctx context.Context, url string) (*GitRepo, error) {
		calls.Add(1)
		close(entered)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return &GitRepo{dir: "/repo"}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := p.Open(ctx, "https://github.com/acme/widget")
		done <- err
	}()

	<-entered
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	close(release)

	r, err := p.Open(context.Background(), "https://github.com/acme/widget")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPoolWithoutCloneReportsMissing(t *testing.T) {
	p := NewPool(t.TempDir(), false, nil)
	_, err := p.Open(context.Background(), "https://github.com/example/missing")
	assert.True(t, errors.Is(err, ErrNotCloned), "got %v", err)
}

// --- git integration ---

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func gitCmd(t *testing.T, dir string, args ...string) string {
	t.Helper()
	full := append([]string{"-C", dir, "-c", "user.name=test", "-c", "user.email=test@example.com", "-c", "commit.gpgsign=false"}, args...)
	out, err := exec.Command("git", full...).CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return strings.TrimSpace(string(out))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestGitRepo(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	ctx := context.Background()

	gitCmd(t, dir, "init", "-q")
	writeFile(t, dir, "file.c", "a\nb\nc\nd\ne\n")
	gitCmd(t, dir, "add", ".")
	gitCmd(t, dir, "commit", "-q", "-m", "add")
	first := gitCmd(t, dir, "rev-parse", "HEAD")

	writeFile(t, dir, "file.c", "a\nb\nC\nd\n")
	gitCmd(t, dir, "commit", "-q", "-am", "modify")
	second := gitCmd(t, dir, "rev-parse", "HEAD")

	g, err := OpenGit(ctx, dir, nil)
	require.NoError(t, err)

	var hashes []string
	require.NoError(t, g.Walk(ctx, func(h string) bool {
		hashes = append(hashes, h)
		return true
	}))
	assert.Equal(t, []string{first, second}, hashes)

	c, err := g.Commit(ctx, first)
	require.NoError(t, err)
	require.Len(t, c.Files, 1)
	assert.Equal(t, model.ChangeAdd, c.Files[0].ChangeType)
	assert.Equal(t, "file.c", c.Files[0].EffectivePath())

	c, err = g.Commit(ctx, second)
	require.NoError(t, err)
	require.Len(t, c.Files, 1)
	mf := c.Files[0]
	assert.Equal(t, model.ChangeModify, mf.ChangeType)
	assert.Equal(t, []model.Hunk{
		{Line: 3, Text: "c", Kind: model.HunkDeleted},
		{Line: 5, Text: "e", Kind: model.HunkDeleted},
		{Line: 3, Text: "C", Kind: model.HunkAdded},
	}, sortHunks(mf.Hunks))

	require.NoError(t, g.Hydrate(ctx, second, mf, true, true))
	assert.Equal(t, "a\nb\nc\nd\ne\n", mf.SourceBefore)
	assert.Equal(t, "a\nb\nC\nd\n", mf.SourceAfter)

	_, err = g.Commit(ctx, strings.Repeat("0", 40))
	assert.True(t, errors.Is(err, ErrUnknownCommit))
}

// sortHunks orders deleted before added, each by line, so the assertion
// does not depend on how git splits fragments.
func sortHunks(in []model.Hunk) []model.Hunk {
	var del, add []model.Hunk
	for _, h := range in {
		if h.Kind == model.HunkDeleted {
			del = append(del, h)
		} else {
			add = append(add, h)
		}
	}
	return append(del, add...)
}
