package history

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sprite-ai/warnctx/internal/diff"
	"github.com/sprite-ai/warnctx/internal/model"
)

// GitRepo reads history from a local clone by running the git CLI.
type GitRepo struct {
	dir    string
	logger *slog.Logger
}

// OpenGit returns a GitRepo for dir, which must be a git work tree or bare
// repository.
func OpenGit(ctx context.Context, dir string, logger *slog.Logger) (*GitRepo, error) {
	if logger == nil {
		logger = slog.Default()
	}
	g := &GitRepo{dir: dir, logger: logger}
	if _, err := g.run(ctx, "rev-parse", "--git-dir"); err != nil {
		return nil, fmt.Errorf("not a git repository %s: %w", dir, err)
	}
	return g, nil
}

// Clone clones url into dest and opens it.
func Clone(ctx context.Context, url, dest string, logger *slog.Logger) (*GitRepo, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("creating clone root: %w", err)
	}

	logger.Info("Cloning repository", "url", url, "dest", dest)
	cmd := exec.CommandContext(ctx, "git", "clone", "--quiet", url, dest)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git clone %s: %w: %s", url, err, strings.TrimSpace(stderr.String()))
	}
	return OpenGit(ctx, dest, logger)
}

// Dir returns the repository directory.
func (g *GitRepo) Dir() string {
	return g.dir
}

// Walk streams `git rev-list --reverse HEAD`.
func (g *GitRepo) Walk(ctx context.Context, visit func(hash string) bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "-C", g.dir, "rev-list", "--reverse", "HEAD")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("git rev-list: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("git rev-list: %w", err)
	}

	stopped := false
	sc := bufio.NewScanner(out)
	for sc.Scan() {
		hash := strings.TrimSpace(sc.Text())
		if hash == "" {
			continue
		}
		if !visit(hash) {
			stopped = true
			break
		}
	}
	scanErr := sc.Err()

	if stopped {
		// The rest of the output is not needed.
		cancel()
		_ = cmd.Wait()
		return nil
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("git rev-list: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if scanErr != nil {
		return fmt.Errorf("reading rev-list: %w", scanErr)
	}
	return nil
}

// Commit diffs hash against its first parent (or the empty tree for a root
// commit). Merge commits report no modified files.
func (g *GitRepo) Commit(ctx context.Context, hash string) (*model.Commit, error) {
	if _, err := g.run(ctx, "cat-file", "-e", hash+"^{commit}"); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommit, hash)
	}

	raw, err := g.run(ctx, "diff-tree", "-p", "-M", "-r", "--root", "--no-commit-id",
		"--no-color", "--no-ext-diff", "--full-index", hash)
	if err != nil {
		return nil, err
	}

	ds, err := diff.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", hash, err)
	}

	return &model.Commit{Hash: hash, Files: ds.ModifiedFiles()}, nil
}

// Hydrate reads the file blobs with `git show rev:path`.
func (g *GitRepo) Hydrate(ctx context.Context, hash string, mf *model.ModifiedFile, before, after bool) error {
	if before && !model.IsDeletionMarker(mf.OldPath) && mf.ChangeType != model.ChangeAdd {
		src, err := g.run(ctx, "show", hash+"^:"+mf.OldPath)
		if err != nil {
			return fmt.Errorf("reading %s before %s: %w", mf.OldPath, hash, err)
		}
		mf.SourceBefore = src
	}
	if after && !model.IsDeletionMarker(mf.NewPath) && mf.ChangeType != model.ChangeDelete {
		src, err := g.run(ctx, "show", hash+":"+mf.NewPath)
		if err != nil {
			return fmt.Errorf("reading %s at %s: %w", mf.NewPath, hash, err)
		}
		mf.SourceAfter = src
	}
	return nil
}

func (g *GitRepo) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", g.dir}, args...)...)

	g.logger.Debug("Executing git command", "dir", g.dir, "args", args)

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return string(out), nil
}
