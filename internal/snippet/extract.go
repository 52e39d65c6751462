package snippet

import (
	"sort"
	"strings"

	"github.com/sprite-ai/warnctx/internal/model"
)

// Mode selects how a warning's context is extracted.
type Mode int

const (
	// ModeIntroduced takes the warning line from the after-change source.
	ModeIntroduced Mode = iota
	// ModeHistorical takes a window around the line from the before-change
	// source, widened by the nearest cluster of changed lines.
	ModeHistorical
)

func (m Mode) String() string {
	if m == ModeHistorical {
		return "historical"
	}
	return "introduced"
}

// ModeFor gates extraction on the change type. Introduced warnings need an
// after-change file (ADD or MODIFY); removed warnings need a before-change
// file that the diff line numbers refer to (MODIFY only).
func ModeFor(introduced bool, ct model.ChangeType) (Mode, bool) {
	if introduced {
		if ct == model.ChangeAdd || ct == model.ChangeModify {
			return ModeIntroduced, true
		}
		return ModeIntroduced, false
	}
	if ct == model.ChangeModify {
		return ModeHistorical, true
	}
	return ModeHistorical, false
}

// Lines splits source text into 1-indexed lines. A single trailing newline
// ends the last line instead of opening an empty one.
func Lines(source string) []string {
	if source == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(source, "\n"), "\n")
}

// Select returns the requested lines in ascending line order, joined with
// newlines. Numbers outside the file are skipped.
func Select(source string, numbers []int) string {
	lines := Lines(source)

	sorted := append([]int(nil), numbers...)
	sort.Ints(sorted)

	var out []string
	prev := 0
	for _, n := range sorted {
		if n == prev || n < 1 || n > len(lines) {
			continue
		}
		prev = n
		out = append(out, lines[n-1])
	}
	return strings.Join(out, "\n")
}

// Introduced returns the literal line at lineNumber of the after-change source.
func Introduced(sourceAfter string, lineNumber int) string {
	return Select(sourceAfter, []int{lineNumber})
}

// Window returns the line numbers Historical selects: the target with one
// line either side plus the changed-line cluster closest to it.
func Window(lineNumber int, patch *model.Patch) []int {
	set := map[int]bool{lineNumber - 1: true, lineNumber: true, lineNumber + 1: true}
	for _, n := range ClosestCluster(patch.LineNumbers(), lineNumber) {
		set[n] = true
	}

	out := make([]int, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Historical returns the before-change lines around lineNumber, widened to
// the closest cluster of lines the patch touched.
func Historical(sourceBefore string, lineNumber int, patch *model.Patch) string {
	return Select(sourceBefore, Window(lineNumber, patch))
}

// Extract dispatches to the extractor for mode.
func Extract(mode Mode, mf *model.ModifiedFile, lineNumber int, patch *model.Patch) string {
	if mode == ModeHistorical {
		return Historical(mf.SourceBefore, lineNumber, patch)
	}
	return Introduced(mf.SourceAfter, lineNumber)
}
