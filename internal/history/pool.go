package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrNotCloned is returned when a repository has no local clone and
	// cloning is disabled.
	ErrNotCloned = errors.New("repository not cloned")
	// ErrBadRepoName means a URL does not end in a usable directory name.
	ErrBadRepoName = errors.New("invalid repository name")
)

// Pool hands out one indexed provider per repository URL, cloning into
// cloneDir on first use when allowed. Safe for concurrent use.
type Pool struct {
	cloneDir string
	clone    bool
	logger   *slog.Logger
	openRepo func(ctx context.Context, url string) (*GitRepo, error)

	group singleflight.Group
	mu    sync.Mutex
	repos map[string]*Indexed
}

// NewPool returns a pool rooted at cloneDir.
func NewPool(cloneDir string, clone bool, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{
		cloneDir: cloneDir,
		clone:    clone,
		logger:   logger,
		repos:    make(map[string]*Indexed),
	}
	p.openRepo = p.open
	return p
}

// Open returns the provider for url. A url that names an existing local
// directory is opened in place.
func (p *Pool) Open(ctx context.Context, url string) (*Indexed, error) {
	p.mu.Lock()
	if r, ok := p.repos[url]; ok {
		p.mu.Unlock()
		return r, nil
	}
	p.mu.Unlock()

	// The open is shared by every waiter, so it runs detached from the
	// caller that started it. Each waiter still returns on its own ctx.
	openCtx := context.WithoutCancel(ctx)
	ch := p.group.DoChan(url, func() (any, error) {
		g, err := p.openRepo(openCtx, url)
		if err != nil {
			return nil, err
		}
		r := NewIndexed(g)
		p.mu.Lock()
		p.repos[url] = r
		p.mu.Unlock()
		return r, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Indexed), nil
	}
}

func (p *Pool) open(ctx context.Context, url string) (*GitRepo, error) {
	if !isRemote(url) {
		return OpenGit(ctx, url, p.logger)
	}

	dest, err := p.LocalPath(url)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		return OpenGit(ctx, dest, p.logger)
	}
	if !p.clone {
		return nil, fmt.Errorf("%w: %s (expected at %s)", ErrNotCloned, url, dest)
	}
	return Clone(ctx, url, dest, p.logger)
}

// LocalPath is where the clone of url lives: <cloneDir>/<repository name>.
func (p *Pool) LocalPath(url string) (string, error) {
	name := strings.TrimSuffix(strings.TrimRight(url, "/"), ".git")
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || name == "." || name == ".." || strings.ContainsRune(name, '\\') {
		return "", fmt.Errorf("%w: %q", ErrBadRepoName, url)
	}
	return filepath.Join(p.cloneDir, name), nil
}

func isRemote(url string) bool {
	for _, prefix := range []string{"http://", "https://", "ssh://", "git://", "git@"} {
		if strings.HasPrefix(url, prefix) {
			return true
		}
	}
	return false
}
