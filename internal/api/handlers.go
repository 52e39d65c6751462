package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/sprite-ai/warnctx/internal/diff"
	"github.com/sprite-ai/warnctx/internal/model"
	"github.com/sprite-ai/warnctx/internal/resolve"
	"github.com/sprite-ai/warnctx/internal/snippet"
)

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Parse ---

type parseRequest struct {
	Diff string `json:"diff"`
}

type parseResponse struct {
	Files []fileJSON    `json:"files"`
	Stats diffStatsJSON `json:"stats"`
}

type diffStatsJSON struct {
	Files   int `json:"files"`
	Added   int `json:"added"`
	Deleted int `json:"deleted"`
}

type fileJSON struct {
	Name       string       `json:"name"`
	OldPath    string       `json:"old_path,omitempty"`
	NewPath    string       `json:"new_path,omitempty"`
	ChangeType string       `json:"change_type"`
	Patch      *model.Patch `json:"patch"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	if req.Diff == "" {
		s.writeError(w, http.StatusBadRequest, "diff is required")
		return
	}

	ds, err := diff.Parse(req.Diff)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "parsing diff: "+err.Error())
		return
	}

	nFiles, added, deleted := ds.Stats()
	resp := parseResponse{
		Files: []fileJSON{},
		Stats: diffStatsJSON{
			Files:   nFiles,
			Added:   added,
			Deleted: deleted,
		},
	}
	for _, mf := range ds.ModifiedFiles() {
		resp.Files = append(resp.Files, fileJSON{
			Name:       mf.EffectivePath(),
			OldPath:    mf.OldPath,
			NewPath:    mf.NewPath,
			ChangeType: mf.ChangeType.String(),
			Patch:      resolve.ExtractPatch(mf),
		})
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// --- Context ---

type contextRequest struct {
	ChangeType string           `json:"change_type"`
	Added      []model.LineText `json:"added"`
	Deleted    []model.LineText `json:"deleted"`
	Source     string           `json:"source"`
	Line       int              `json:"line"`
	Introduced bool             `json:"introduced"`
}

type contextResponse struct {
	Mode    string `json:"mode"`
	Snippet string `json:"snippet"`
}

var errNotApplicable = errors.New("change type does not admit this extraction")

// contextSnippet runs the extractor on caller-supplied source text. Source
// is the after-change file for introduced warnings and the before-change
// file otherwise.
func contextSnippet(req contextRequest) (contextResponse, error) {
	if req.Line < 1 {
		return contextResponse{}, requestError{"line must be at least 1"}
	}
	ct := model.ParseChangeType(req.ChangeType)
	mode, ok := snippet.ModeFor(req.Introduced, ct)
	if !ok {
		return contextResponse{Mode: mode.String()}, errNotApplicable
	}

	patch := &model.Patch{Added: req.Added, Deleted: req.Deleted, ChangeType: ct}
	var text string
	if mode == snippet.ModeIntroduced {
		text = snippet.Introduced(req.Source, req.Line)
	} else {
		text = snippet.Historical(req.Source, req.Line, patch)
	}
	return contextResponse{Mode: mode.String(), Snippet: text}, nil
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	resp, err := contextSnippet(req)
	var reqErr requestError
	switch {
	case errors.As(err, &reqErr):
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// --- Resolve ---

type resolveRequest struct {
	Repo       string `json:"repo"`
	Commit     string `json:"commit"`
	File       string `json:"file"`
	Line       int    `json:"line"`
	Introduced bool   `json:"introduced"`
}

type resolveResponse struct {
	Outcome string       `json:"outcome"`
	Mode    string       `json:"mode,omitempty"`
	Patch   *model.Patch `json:"patch,omitempty"`
	Snippet string       `json:"snippet,omitempty"`
}

type requestError struct{ msg string }

func (e requestError) Error() string { return e.msg }

func (s *Server) resolveOne(ctx context.Context, req resolveRequest) (resolveResponse, error) {
	switch {
	case req.Repo == "":
		return resolveResponse{}, requestError{"repo is required"}
	case req.Commit == "":
		return resolveResponse{}, requestError{"commit is required"}
	case req.File == "":
		return resolveResponse{}, requestError{"file is required"}
	case req.Line < 1:
		return resolveResponse{}, requestError{"line must be at least 1"}
	}

	p, err := s.open(ctx, req.Repo)
	if err != nil {
		return resolveResponse{}, err
	}
	res, err := s.resolver.Resolve(ctx, p, resolve.Query{
		Commit:     req.Commit,
		File:       req.File,
		Line:       req.Line,
		Introduced: req.Introduced,
	})
	if err != nil {
		return resolveResponse{}, err
	}

	resp := resolveResponse{Outcome: res.Outcome.String(), Patch: res.Patch, Snippet: res.Snippet}
	if res.Patch != nil {
		resp.Mode = res.Mode.String()
	}
	return resp, nil
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	resp, err := s.resolveOne(r.Context(), req)
	var reqErr requestError
	switch {
	case errors.As(err, &reqErr):
		s.writeError(w, http.StatusBadRequest, reqErr.msg)
	case err != nil:
		s.logger.Error("resolve failed", "repo", req.Repo, "commit", req.Commit, "err", err)
		s.writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.writeJSON(w, http.StatusOK, resp)
	}
}
