// Package model defines the core data types shared across warnctx.
package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ChangeType classifies how a file changed in a commit.
type ChangeType int

const (
	ChangeUnknown ChangeType = iota
	ChangeAdd
	ChangeDelete
	ChangeModify
	ChangeRename
)

func (c ChangeType) String() string {
	switch c {
	case ChangeAdd:
		return "ADD"
	case ChangeDelete:
		return "DELETE"
	case ChangeModify:
		return "MODIFY"
	case ChangeRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// ParseChangeType is the inverse of String. Unrecognized names map to ChangeUnknown.
func ParseChangeType(s string) ChangeType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ADD":
		return ChangeAdd
	case "DELETE":
		return ChangeDelete
	case "MODIFY":
		return ChangeModify
	case "RENAME":
		return ChangeRename
	default:
		return ChangeUnknown
	}
}

func (c ChangeType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ChangeType) UnmarshalText(b []byte) error {
	*c = ParseChangeType(string(b))
	return nil
}

// HunkKind says which side of a diff a hunk line belongs to.
type HunkKind int

const (
	HunkAdded HunkKind = iota
	HunkDeleted
)

func (k HunkKind) String() string {
	if k == HunkDeleted {
		return "DELETED"
	}
	return "ADDED"
}

// Hunk is a single added or deleted line. Added lines are numbered in the
// after-change file, deleted lines in the before-change file.
type Hunk struct {
	Line int
	Text string
	Kind HunkKind
}

// IsDeletionMarker reports whether a diff path denotes a missing side.
func IsDeletionMarker(path string) bool {
	return path == "" || path == "/dev/null"
}

// NormalizePath unifies path separators to forward slashes.
func NormalizePath(path string) string {
	return strings.ReplaceAll(path, `\`, "/")
}

// ModifiedFile is one file touched by a commit.
type ModifiedFile struct {
	OldPath    string
	NewPath    string
	ChangeType ChangeType

	// Full file text on either side. Filled on demand by the history
	// provider; empty when the side does not exist.
	SourceBefore string
	SourceAfter  string

	Hunks []Hunk
}

// EffectivePath is NewPath, or OldPath when the file was removed.
func (m *ModifiedFile) EffectivePath() string {
	if IsDeletionMarker(m.NewPath) {
		return m.OldPath
	}
	return m.NewPath
}

// Name returns the display name for the file.
func (m *ModifiedFile) Name() string {
	if m.ChangeType == ChangeRename {
		return fmt.Sprintf("%s → %s", m.OldPath, m.NewPath)
	}
	return m.EffectivePath()
}

// Commit is a read-only view of a commit and its modified files.
type Commit struct {
	Hash  string
	Files []*ModifiedFile
}

// LineText is a numbered source line. It serializes as [line, "text"].
type LineText struct {
	Line int
	Text string
}

func (lt LineText) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{lt.Line, lt.Text})
}

func (lt *LineText) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("line text: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("line text: expected 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &lt.Line); err != nil {
		return fmt.Errorf("line text number: %w", err)
	}
	if err := json.Unmarshal(pair[1], &lt.Text); err != nil {
		return fmt.Errorf("line text body: %w", err)
	}
	return nil
}

// Patch is the structured summary of one file's change in one commit.
type Patch struct {
	Added      []LineText `json:"added"`
	Deleted    []LineText `json:"deleted"`
	ChangeType ChangeType `json:"change_type"`
}

// LineNumbers returns the ascending, deduplicated union of added and
// deleted line numbers.
func (p *Patch) LineNumbers() []int {
	seen := make(map[int]bool, len(p.Added)+len(p.Deleted))
	var out []int
	for _, group := range [][]LineText{p.Added, p.Deleted} {
		for _, lt := range group {
			if !seen[lt.Line] {
				seen[lt.Line] = true
				out = append(out, lt.Line)
			}
		}
	}
	sort.Ints(out)
	return out
}
