package dataset

import (
	"log/slog"
	"strings"

	"github.com/sprite-ai/warnctx/internal/config"
)

// Target is what the resolver needs from an accepted record.
type Target struct {
	Link CommitLink
	Path string // repository-relative
	Line int
}

// Filter drops records the resolver cannot or should not handle.
type Filter struct {
	pathMarker    string
	stripSegments int
	rejectPhrases []string
	logger        *slog.Logger
}

// NewFilter builds a Filter from configuration.
func NewFilter(cfg config.FilterConfig, logger *slog.Logger) *Filter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Filter{
		pathMarker:    cfg.PathMarker,
		stripSegments: cfg.StripSegments,
		rejectPhrases: cfg.RejectPhrases,
		logger:        logger,
	}
}

// Check reports whether r should be resolved and, if so, where.
func (f *Filter) Check(r *Record) (Target, bool) {
	if !strings.HasPrefix(r.CommitLink, "http://") && !strings.HasPrefix(r.CommitLink, "https://") {
		f.logger.Error("Invalid commit link", "link", r.CommitLink, "file", r.FilePath)
		return Target{}, false
	}

	if !strings.HasPrefix(r.FilePath, f.pathMarker) {
		f.logger.Debug("Warning outside clone root", "file", r.FilePath)
		return Target{}, false
	}
	for _, phrase := range f.rejectPhrases {
		if phrase != "" && strings.Contains(r.WarningMessage, phrase) {
			f.logger.Debug("Rejected warning message", "file", r.FilePath, "phrase", phrase)
			return Target{}, false
		}
	}

	link, err := ParseCommitLink(r.CommitLink)
	if err != nil {
		f.logger.Error("Invalid commit link", "link", r.CommitLink, "err", err)
		return Target{}, false
	}
	if r.LineNumber < 1 {
		f.logger.Error("Invalid line number", "file", r.FilePath, "line", string(r.lineRaw))
		return Target{}, false
	}

	return Target{
		Link: link,
		Path: TargetPath(r.FilePath, f.stripSegments),
		Line: r.LineNumber,
	}, true
}

// TargetPath removes the first n "/"-separated segments of filePath.
func TargetPath(filePath string, n int) string {
	parts := strings.Split(filePath, "/")
	if n >= len(parts) {
		return ""
	}
	return strings.Join(parts[n:], "/")
}
