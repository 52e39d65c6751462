package tui

import (
	"fmt"
	"path"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sprite-ai/warnctx/internal/dataset"
	"github.com/sprite-ai/warnctx/internal/diff"
	"github.com/sprite-ai/warnctx/internal/model"
	"github.com/sprite-ai/warnctx/internal/snippet"
)

type lineKind int

const (
	lineText lineKind = iota
	lineSection
	lineContext
	lineAdded
	lineDeleted
)

// renderedLine is a single line of the detail view ready for display.
type renderedLine struct {
	Kind    lineKind
	Num     int // 0 when unknown
	Content string
	Warning bool // the line the warning points at

	// Syntax highlighting spans (nil = no highlighting)
	Spans []diff.Span
}

// renderRecord lays out a dataset record: message, context, then patch.
func renderRecord(r *dataset.Record, showPatch bool) []renderedLine {
	lines := []renderedLine{
		{Kind: lineText, Content: r.WarningMessage},
		{Kind: lineText},
		{Kind: lineSection, Content: "Context"},
	}

	ctx := snippet.Lines(r.WarningContext)
	nums := contextLineNumbers(r, len(ctx))
	highlighted := diff.HighlightLines(path.Base(r.FilePath), ctx)
	for i, text := range ctx {
		rl := renderedLine{Kind: lineContext, Num: nums[i], Content: text}
		rl.Warning = rl.Num != 0 && rl.Num == r.LineNumber
		if i < len(highlighted) {
			rl.Spans = highlighted[i].Spans
		}
		lines = append(lines, rl)
	}

	if !showPatch || r.Difftext == nil {
		return lines
	}

	lines = append(lines, renderedLine{Kind: lineText}, renderedLine{
		Kind:    lineSection,
		Content: fmt.Sprintf("Patch (%s)", r.Difftext.ChangeType),
	})
	for _, lt := range r.Difftext.Deleted {
		lines = append(lines, renderedLine{Kind: lineDeleted, Num: lt.Line, Content: lt.Text})
	}
	for _, lt := range r.Difftext.Added {
		lines = append(lines, renderedLine{Kind: lineAdded, Num: lt.Line, Content: lt.Text})
	}
	return lines
}

// contextLineNumbers recovers the source line numbers of a stored context.
// A single line is the warning line itself; longer contexts are the
// historical window, whose trailing numbers may have fallen off the file.
func contextLineNumbers(r *dataset.Record, n int) []int {
	nums := make([]int, n)
	if n == 1 {
		nums[0] = r.LineNumber
		return nums
	}
	if r.Difftext == nil {
		return nums
	}

	var window []int
	for _, k := range snippet.Window(r.LineNumber, r.Difftext) {
		if k >= 1 {
			window = append(window, k)
		}
	}
	if len(window) < n {
		return nums
	}
	copy(nums, window[:n])
	return nums
}

// styleLine applies styling to a rendered line.
func styleLine(rl renderedLine, width int) string {
	switch rl.Kind {
	case lineSection:
		return sectionStyle.Width(width).Render(rl.Content)
	case lineText:
		return messageStyle.Render(truncate(rl.Content, width))
	}

	num := "     "
	if rl.Num > 0 {
		num = fmt.Sprintf("%5d", rl.Num)
	}
	gutter := lineNumberStyle.Render(num) + " "
	maxContent := width - 8

	switch rl.Kind {
	case lineAdded:
		return gutter + addedLineStyle.Render("+"+truncate(rl.Content, maxContent))
	case lineDeleted:
		return gutter + deletedLineStyle.Render("-"+truncate(rl.Content, maxContent))
	}

	if rl.Warning {
		return gutter + warningLineStyle.Render(">"+truncate(rl.Content, maxContent))
	}
	content := renderHighlightedContent(rl, " ")
	if lipgloss.Width(content) > maxContent+1 {
		content = " " + truncate(rl.Content, maxContent)
	}
	return gutter + content
}

// renderHighlightedContent renders line content with syntax spans.
func renderHighlightedContent(rl renderedLine, prefix string) string {
	if len(rl.Spans) == 0 {
		return prefix + rl.Content
	}

	var b strings.Builder
	b.WriteString(prefix)
	for _, sp := range rl.Spans {
		if sp.Color != "" {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(sp.Color)).Render(sp.Text))
		} else {
			b.WriteString(sp.Text)
		}
	}
	return b.String()
}

func recordTitle(r *dataset.Record) string {
	return fmt.Sprintf("%s:%d", path.Base(r.FilePath), r.LineNumber)
}

func recordMatches(r *dataset.Record, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, field := range []string{r.FilePath, r.RepositoryName, r.WarningMessage, r.CommitLink} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func changeType(r *dataset.Record) model.ChangeType {
	if r.Difftext == nil {
		return model.ChangeUnknown
	}
	return r.Difftext.ChangeType
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) > max {
		return s[:max-1] + "…"
	}
	return s
}
