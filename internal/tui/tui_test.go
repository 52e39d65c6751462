package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sprite-ai/warnctx/internal/dataset"
	"github.com/sprite-ai/warnctx/internal/model"
)

func testRecords() []*dataset.Record {
	return []*dataset.Record{
		{
			CommitLink:     "https://github.com/acme/widget/commit/0123456789abcdef",
			FilePath:       "tmp_github/widget/src/file.c",
			LineNumber:     12,
			WarningMessage: "Null pointer dereference: p",
			RepositoryName: "acme/widget",
			Difftext: &model.Patch{
				Added:      []model.LineText{{Line: 22, Text: "x = 1;"}, {Line: 23, Text: "y = 2;"}},
				Deleted:    []model.LineText{{Line: 10, Text: "free(p);"}},
				ChangeType: model.ChangeModify,
			},
			WarningContext: "free(p);\nint a;\n*p = 3;\nreturn a;",
		},
		{
			CommitLink:     "https://github.com/acme/gadget/commit/fedcba",
			FilePath:       "tmp_github/gadget/lib/new.c",
			LineNumber:     3,
			WarningMessage: "Uninitialized variable: n",
			RepositoryName: "acme/gadget",
			Difftext:       &model.Patch{Added: []model.LineText{}, Deleted: []model.LineText{}, ChangeType: model.ChangeAdd},
			WarningContext: "return n;",
		},
	}
}

func setupModel(t *testing.T) Model {
	t.Helper()
	m := New(testRecords())
	// Simulate window size
	newM, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return newM.(Model)
}

func press(m Model, keys ...tea.KeyMsg) Model {
	for _, k := range keys {
		newM, _ := m.Update(k)
		m = newM.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelInit(t *testing.T) {
	m := setupModel(t)

	if m.index != 0 {
		t.Errorf("expected index 0, got %d", m.index)
	}
	if len(m.visible) != 2 {
		t.Errorf("expected 2 visible records, got %d", len(m.visible))
	}
	if len(m.lines) == 0 {
		t.Error("expected lines to be rendered")
	}
}

func TestNavigation(t *testing.T) {
	m := setupModel(t)

	m = press(m, runes("n"))
	if m.index != 1 {
		t.Errorf("expected index 1 after next, got %d", m.index)
	}

	// Move past end, should stay
	m = press(m, runes("n"))
	if m.index != 1 {
		t.Errorf("expected index 1 at end, got %d", m.index)
	}

	m = press(m, runes("N"))
	if m.index != 0 {
		t.Errorf("expected index 0 after prev, got %d", m.index)
	}
}

func TestScrolling(t *testing.T) {
	m := setupModel(t)

	m = press(m, runes("j"))
	if m.scrollOffset != 1 {
		t.Errorf("expected scrollOffset 1, got %d", m.scrollOffset)
	}

	m = press(m, runes("k"), runes("k"))
	if m.scrollOffset != 0 {
		t.Errorf("expected scrollOffset 0 at top, got %d", m.scrollOffset)
	}
}

func TestSectionJumps(t *testing.T) {
	m := setupModel(t)

	m = press(m, runes("]"))
	if m.lines[m.scrollOffset].Content != "Context" {
		t.Errorf("expected Context section, got %q", m.lines[m.scrollOffset].Content)
	}
	m = press(m, runes("]"))
	if !strings.HasPrefix(m.lines[m.scrollOffset].Content, "Patch") {
		t.Errorf("expected Patch section, got %q", m.lines[m.scrollOffset].Content)
	}
	m = press(m, runes("["))
	if m.lines[m.scrollOffset].Content != "Context" {
		t.Errorf("expected Context section after jumping back, got %q", m.lines[m.scrollOffset].Content)
	}
}

func TestTogglePatch(t *testing.T) {
	m := setupModel(t)
	withPatch := len(m.lines)

	m = press(m, runes("p"))
	if m.showPatch {
		t.Error("expected patch hidden after toggle")
	}
	if len(m.lines) >= withPatch {
		t.Errorf("expected fewer lines without patch, got %d vs %d", len(m.lines), withPatch)
	}
}

func TestContextLineNumbers(t *testing.T) {
	recs := testRecords()

	lines := renderRecord(recs[0], false)
	var nums []int
	var warning string
	for _, rl := range lines {
		if rl.Kind == lineContext {
			nums = append(nums, rl.Num)
			if rl.Warning {
				warning = rl.Content
			}
		}
	}
	want := []int{10, 11, 12, 13}
	if len(nums) != len(want) {
		t.Fatalf("expected %v, got %v", want, nums)
	}
	for i := range want {
		if nums[i] != want[i] {
			t.Errorf("expected %v, got %v", want, nums)
			break
		}
	}
	if warning != "*p = 3;" {
		t.Errorf("expected warning line marked, got %q", warning)
	}

	single := renderRecord(recs[1], false)
	last := single[len(single)-1]
	if last.Num != 3 || !last.Warning {
		t.Errorf("expected single context line numbered 3, got %+v", last)
	}
}

func TestSearchFilter(t *testing.T) {
	m := setupModel(t)

	m = press(m, runes("/"))
	if !m.searching {
		t.Fatal("expected search mode")
	}
	m = press(m, runes("gadget"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.searching {
		t.Error("expected search mode to end on enter")
	}
	if len(m.visible) != 1 || m.current().RepositoryName != "acme/gadget" {
		t.Errorf("expected only gadget visible, got %d records", len(m.visible))
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if len(m.visible) != 2 {
		t.Errorf("expected filter cleared, got %d records", len(m.visible))
	}
}

func TestSearchWithoutMatches(t *testing.T) {
	m := setupModel(t)
	m = press(m, runes("/"), runes("nothing-like-this"), tea.KeyMsg{Type: tea.KeyEnter})

	if m.current() != nil {
		t.Error("expected no current record")
	}
	if !strings.Contains(m.View(), "No warnings") {
		t.Error("expected empty detail view")
	}
}

func TestViewRenders(t *testing.T) {
	m := setupModel(t)

	view := m.View()
	if !strings.Contains(view, "file.c:12") {
		t.Error("expected view to list 'file.c:12'")
	}
	if !strings.Contains(view, "Null pointer dereference") {
		t.Error("expected view to contain the warning message")
	}
	if !strings.Contains(view, "0123456789ab") {
		t.Error("expected view to contain the short commit hash")
	}
	if !strings.Contains(view, "x = 1;") {
		t.Error("expected view to contain the patch")
	}
}

func TestHelpToggle(t *testing.T) {
	m := setupModel(t)

	m = press(m, runes("?"))
	if !m.showHelp {
		t.Error("expected help to be shown")
	}

	view := m.View()
	if !strings.Contains(view, "Keyboard Shortcuts") {
		t.Error("expected help view to contain shortcuts")
	}
}

func TestEmptyDataset(t *testing.T) {
	m := New(nil)
	newM, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	m = newM.(Model)

	m = press(m, runes("n"), runes("j"), runes("]"))
	if !strings.Contains(m.View(), "No warnings") {
		t.Error("expected empty view")
	}
}
