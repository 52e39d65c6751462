package resolve

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sprite-ai/warnctx/internal/history"
	"github.com/sprite-ai/warnctx/internal/model"
	"github.com/sprite-ai/warnctx/internal/snippet"
)

// Outcome tags a Result.
type Outcome int

const (
	Success Outcome = iota
	CommitNotFound
	FileNotModified
	// NotApplicable means the file was found but its change type does not
	// admit the requested extraction (e.g. an introduced warning in a
	// deleted file).
	NotApplicable
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case CommitNotFound:
		return "commit_not_found"
	case FileNotModified:
		return "file_not_modified"
	case NotApplicable:
		return "not_applicable"
	default:
		return "unknown"
	}
}

// Query identifies one warning to resolve.
type Query struct {
	Commit     string
	File       string
	Line       int
	Introduced bool
}

// Result is the outcome of one resolution. Patch is set for Success and
// NotApplicable; Snippet only for Success.
type Result struct {
	Outcome Outcome
	Mode    snippet.Mode
	Patch   *model.Patch
	Snippet string
}

// OK reports whether the record should be kept.
func (r Result) OK() bool {
	return r.Outcome == Success
}

// Resolver runs the per-warning pipeline. It holds no per-call state and is
// safe for concurrent use.
type Resolver struct {
	logger *slog.Logger
}

// New returns a Resolver logging to logger (slog.Default when nil).
func New(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger}
}

// Resolve locates q's commit and file in p and extracts the warning context.
// Missing commits and untouched files are reported as outcomes; only
// provider failures are returned as errors.
func (r *Resolver) Resolve(ctx context.Context, p history.Provider, q Query) (Result, error) {
	log := r.logger.With("commit", q.Commit, "file", q.File, "line", q.Line)

	commit, err := LocateCommit(ctx, p, q.Commit)
	if errors.Is(err, ErrCommitNotFound) {
		log.Error("Commit not in local history, update the local clone")
		return r.done(Result{Outcome: CommitNotFound}), nil
	}
	if err != nil {
		return Result{}, err
	}

	mf, err := FindModifiedFile(commit, q.File)
	if errors.Is(err, ErrFileNotModified) {
		log.Debug("Warning file not modified by commit")
		return r.done(Result{Outcome: FileNotModified}), nil
	}
	if err != nil {
		return Result{}, err
	}

	patch := ExtractPatch(mf)
	mode, ok := snippet.ModeFor(q.Introduced, mf.ChangeType)
	if !ok {
		log.Debug("Change type does not admit context extraction",
			"change_type", mf.ChangeType.String(),
			"mode", mode.String(),
		)
		return r.done(Result{Outcome: NotApplicable, Mode: mode, Patch: patch}), nil
	}

	before, after := mode == snippet.ModeHistorical, mode == snippet.ModeIntroduced
	if err := p.Hydrate(ctx, commit.Hash, mf, before, after); err != nil {
		return Result{}, err
	}

	return r.done(Result{
		Outcome: Success,
		Mode:    mode,
		Patch:   patch,
		Snippet: snippet.Extract(mode, mf, q.Line, patch),
	}), nil
}

func (r *Resolver) done(res Result) Result {
	resolutions.WithLabelValues(res.Outcome.String()).Inc()
	return res
}
