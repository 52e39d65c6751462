// Package dataset turns folders of static-analysis warning files into
// context-enriched datasets.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sprite-ai/warnctx/internal/model"
)

// JSON keys read from and written to warning files.
const (
	keyCommitLink     = "githubCommitLink"
	keyFilePath       = "filePath"
	keyLineNumber     = "lineNumber"
	keyWarningMessage = "warningMessage"
	keyRepository     = "repositoryName"
	keyDifftext       = "difftext"
	keyContext        = "warningContext"
)

// Record is one warning. Fields warnctx does not know about are kept in
// Extra and written back unchanged.
type Record struct {
	CommitLink     string
	FilePath       string
	LineNumber     int
	WarningMessage string

	RepositoryName string
	Difftext       *model.Patch
	WarningContext string

	Extra map[string]json.RawMessage

	// lineRaw is lineNumber as it appeared in the input.
	lineRaw json.RawMessage
}

func (r *Record) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}

	*r = Record{}
	str := func(key string, dst *string) error {
		raw, ok := fields[key]
		if !ok {
			return nil
		}
		delete(fields, key)
		if isNull(raw) {
			return nil
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return nil
	}
	for key, dst := range map[string]*string{
		keyCommitLink:     &r.CommitLink,
		keyFilePath:       &r.FilePath,
		keyWarningMessage: &r.WarningMessage,
		keyRepository:     &r.RepositoryName,
		keyContext:        &r.WarningContext,
	} {
		if err := str(key, dst); err != nil {
			return err
		}
	}

	if raw, ok := fields[keyLineNumber]; ok {
		delete(fields, keyLineNumber)
		r.lineRaw = raw
		// Unparseable values are left at zero and rejected by the filter.
		r.LineNumber, _ = parseLineNumber(raw)
	}

	if raw, ok := fields[keyDifftext]; ok {
		delete(fields, keyDifftext)
		if !isNull(raw) {
			var p model.Patch
			if err := json.Unmarshal(raw, &p); err != nil {
				return fmt.Errorf("%s: %w", keyDifftext, err)
			}
			r.Difftext = &p
		}
	}

	if len(fields) > 0 {
		r.Extra = fields
	}
	return nil
}

func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+7)
	for k, v := range r.Extra {
		out[k] = v
	}
	out[keyCommitLink] = r.CommitLink
	out[keyFilePath] = r.FilePath
	out[keyWarningMessage] = r.WarningMessage
	if r.lineRaw != nil {
		out[keyLineNumber] = r.lineRaw
	} else {
		out[keyLineNumber] = r.LineNumber
	}
	if r.RepositoryName != "" {
		out[keyRepository] = r.RepositoryName
	}
	if r.Difftext != nil {
		out[keyDifftext] = r.Difftext
		out[keyContext] = r.WarningContext
	}
	return json.Marshal(out)
}

// parseLineNumber accepts a JSON number or a string holding an integer.
func parseLineNumber(raw json.RawMessage) (int, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("lineNumber: %s is neither a number nor a string", raw)
		}
		n = json.Number(strings.TrimSpace(s))
	}
	i, err := strconv.Atoi(n.String())
	if err != nil {
		return 0, fmt.Errorf("lineNumber: %w", err)
	}
	return i, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// ErrBadCommitLink is returned for links without owner, repository and
// commit segments.
var ErrBadCommitLink = errors.New("malformed commit link")

// CommitLink is a parsed https://host/owner/repo/commit/<hash> URL.
type CommitLink struct {
	RepoURL string // scheme://host/owner/repo
	Name    string // owner/repo
	Hash    string
}

// ParseCommitLink splits a commit URL on "/": the first five segments form
// the repository URL, the last one is the commit hash.
func ParseCommitLink(link string) (CommitLink, error) {
	parts := strings.Split(strings.TrimSpace(link), "/")
	if len(parts) < 6 || parts[3] == "" || parts[4] == "" {
		return CommitLink{}, fmt.Errorf("%w: %q", ErrBadCommitLink, link)
	}
	hash := parts[len(parts)-1]
	if hash == "" {
		return CommitLink{}, fmt.Errorf("%w: %q has no commit hash", ErrBadCommitLink, link)
	}
	return CommitLink{
		RepoURL: strings.Join(parts[:5], "/"),
		Name:    parts[3] + "/" + parts[4],
		Hash:    hash,
	}, nil
}
