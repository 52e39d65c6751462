package diff

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

const highlightStyle = "dracula"

// HighlightedLine is one source line split into colored spans.
type HighlightedLine struct {
	Spans []Span
}

// Span is a run of text sharing one color.
type Span struct {
	Text  string
	Color string // hex, empty for the default foreground
}

// Plain returns the line without colors.
func (hl HighlightedLine) Plain() string {
	var b strings.Builder
	for _, s := range hl.Spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// HighlightLines colors lines using the language of filename and returns
// exactly one entry per input line. Unknown languages yield one uncolored
// span per line.
func HighlightLines(filename string, lines []string) []HighlightedLine {
	out := make([]HighlightedLine, len(lines))
	for i, l := range lines {
		out[i] = HighlightedLine{Spans: []Span{{Text: l}}}
	}

	it, ok := tokenise(filename, strings.Join(lines, "\n"))
	if !ok {
		return out
	}
	style := codeStyle()
	for i, toks := range chroma.SplitTokensIntoLines(it.Tokens()) {
		if i >= len(out) {
			break
		}
		var hl HighlightedLine
		for _, tok := range toks {
			text := strings.TrimSuffix(tok.Value, "\n")
			if text == "" {
				continue
			}
			hl.Spans = append(hl.Spans, Span{Text: text, Color: spanColor(style, tok.Type)})
		}
		out[i] = hl
	}
	return out
}

// HighlightANSI renders source as 256-color terminal text. Unknown languages
// and formatter failures return the source unchanged.
func HighlightANSI(filename, source string) string {
	it, ok := tokenise(filename, source)
	if !ok {
		return source
	}
	f := formatters.Get("terminal256")
	if f == nil {
		return source
	}
	var b strings.Builder
	if err := f.Format(&b, codeStyle(), it); err != nil {
		return source
	}
	return b.String()
}

func tokenise(filename, source string) (chroma.Iterator, bool) {
	lexer := lexers.Match(filepath.Base(filename))
	if lexer == nil {
		return nil, false
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, source)
	if err != nil {
		return nil, false
	}
	return it, true
}

func codeStyle() *chroma.Style {
	if s := styles.Get(highlightStyle); s != nil {
		return s
	}
	return styles.Fallback
}

func spanColor(style *chroma.Style, tt chroma.TokenType) string {
	if e := style.Get(tt); e.Colour.IsSet() {
		return e.Colour.String()
	}
	return ""
}
