package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sprite-ai/warnctx/internal/config"
	"github.com/sprite-ai/warnctx/internal/history"
	"github.com/sprite-ai/warnctx/internal/resolve"
)

// OpenFunc returns the history provider for a repository URL.
type OpenFunc func(ctx context.Context, url string) (history.Provider, error)

// PoolOpener adapts a history.Pool to an OpenFunc.
func PoolOpener(pool *history.Pool) OpenFunc {
	return func(ctx context.Context, url string) (history.Provider, error) {
		p, err := pool.Open(ctx, url)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// Builder resolves every warning file in a folder.
type Builder struct {
	workers          int
	introducedMarker string
	filter           *Filter
	resolver         *resolve.Resolver
	open             OpenFunc
	logger           *slog.Logger
}

// NewBuilder wires a Builder from configuration.
func NewBuilder(cfg *config.Config, open OpenFunc, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Builder{
		workers:          workers,
		introducedMarker: cfg.Dataset.IntroducedMarker,
		filter:           NewFilter(cfg.Filter, logger),
		resolver:         resolve.New(logger),
		open:             open,
		logger:           logger,
	}
}

// Introduced reports whether warnings under dir were introduced by their
// commit.
func (b *Builder) Introduced(dir string) bool {
	return b.introducedMarker != "" && strings.Contains(dir, b.introducedMarker)
}

// Build resolves all *.json files in dir, one job per file, and returns the
// successfully enriched records in file-name order. A file that cannot be
// read or decoded is logged and skipped. Whether the warnings were
// introduced is decided by the folder name.
func (b *Builder) Build(ctx context.Context, dir string) ([]*Record, error) {
	return b.BuildDir(ctx, dir, b.Introduced(dir))
}

// BuildDir is Build with an explicit introduced flag.
func (b *Builder) BuildDir(ctx context.Context, dir string, introduced bool) ([]*Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}

	log := b.logger.With("run", uuid.NewString(), "dir", dir)
	log.Info("Building dataset", "files", len(files), "introduced", introduced, "workers", b.workers)

	results := make([][]*Record, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			recs, err := b.BuildFile(gctx, path, introduced)
			if err != nil {
				log.Error("Skipping warning file", "file", path, "err", err)
				return nil
			}
			results[i] = recs
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []*Record
	for _, recs := range results {
		out = append(out, recs...)
	}
	log.Info("Dataset built", "records", len(out))
	return out, nil
}

// BuildFile resolves the records of a single warning file sequentially.
func (b *Builder) BuildFile(ctx context.Context, path string, introduced bool) ([]*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var recs []*Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	failed := make(map[string]bool)
	var out []*Record
	for _, r := range recs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if r == nil {
			continue
		}
		t, ok := b.filter.Check(r)
		if !ok || failed[t.Link.RepoURL] {
			continue
		}

		p, err := b.open(ctx, t.Link.RepoURL)
		if err != nil {
			failed[t.Link.RepoURL] = true
			b.logger.Error("Cannot open repository", "repo", t.Link.RepoURL, "err", err)
			continue
		}

		res, err := b.resolver.Resolve(ctx, p, resolve.Query{
			Commit:     t.Link.Hash,
			File:       t.Path,
			Line:       t.Line,
			Introduced: introduced,
		})
		if err != nil {
			b.logger.Error("Resolution failed", "commit", t.Link.Hash, "file", t.Path, "err", err)
			continue
		}
		if !res.OK() {
			continue
		}

		r.RepositoryName = t.Link.Name
		r.Difftext = res.Patch
		r.WarningContext = res.Snippet
		out = append(out, r)
	}
	return out, nil
}
