// Package tui implements the Bubble Tea dataset browser.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sprite-ai/warnctx/internal/dataset"
	"github.com/sprite-ai/warnctx/internal/model"
)

// Model is the top-level Bubble Tea model for the browser.
type Model struct {
	records []*dataset.Record
	visible []int // indexes into records that match the filter

	// UI state
	width  int
	height int

	index        int // position in visible
	scrollOffset int
	viewHeight   int

	// Rendered lines for the selected record
	lines     []renderedLine
	showPatch bool

	search    textinput.Model
	searching bool
	showHelp  bool
}

// New creates a browser over recs.
func New(recs []*dataset.Record) Model {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "file, repository or message"

	m := Model{
		records:   recs,
		showPatch: true,
		search:    ti,
	}
	m.applyFilter()
	return m
}

func (m *Model) applyFilter() {
	query := strings.TrimSpace(m.search.Value())
	m.visible = nil
	for i, r := range m.records {
		if recordMatches(r, query) {
			m.visible = append(m.visible, i)
		}
	}
	m.index = 0
	m.scrollOffset = 0
	m.updateLines()
}

func (m *Model) current() *dataset.Record {
	if len(m.visible) == 0 {
		return nil
	}
	return m.records[m.visible[m.index]]
}

func (m *Model) updateLines() {
	r := m.current()
	if r == nil {
		m.lines = nil
		return
	}
	m.lines = renderRecord(r, m.showPatch)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewHeight = m.height - 4 // status bar + borders
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Down):
			if m.scrollOffset < len(m.lines)-1 {
				m.scrollOffset++
			}

		case key.Matches(msg, keys.Up):
			if m.scrollOffset > 0 {
				m.scrollOffset--
			}

		case key.Matches(msg, keys.NextRecord):
			if m.index < len(m.visible)-1 {
				m.index++
				m.scrollOffset = 0
				m.updateLines()
			}

		case key.Matches(msg, keys.PrevRecord):
			if m.index > 0 {
				m.index--
				m.scrollOffset = 0
				m.updateLines()
			}

		case key.Matches(msg, keys.NextSection):
			m.jumpToNextSection()

		case key.Matches(msg, keys.PrevSection):
			m.jumpToPrevSection()

		case key.Matches(msg, keys.TogglePatch):
			m.showPatch = !m.showPatch
			m.updateLines()
			if m.scrollOffset >= len(m.lines) {
				m.scrollOffset = 0
			}

		case key.Matches(msg, keys.Search):
			m.searching = true
			return m, m.search.Focus()

		case key.Matches(msg, keys.Cancel):
			if m.search.Value() != "" {
				m.search.SetValue("")
				m.applyFilter()
			}

		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
		}
	}

	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Accept):
		m.searching = false
		m.search.Blur()
		m.applyFilter()
		return m, nil
	case key.Matches(msg, keys.Cancel):
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.applyFilter()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) jumpToNextSection() {
	for i := m.scrollOffset + 1; i < len(m.lines); i++ {
		if m.lines[i].Kind == lineSection {
			m.scrollOffset = i
			return
		}
	}
}

func (m *Model) jumpToPrevSection() {
	for i := m.scrollOffset - 1; i >= 0; i-- {
		if m.lines[i].Kind == lineSection {
			m.scrollOffset = i
			return
		}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	listWidth := m.listWidth()
	detailWidth := m.width - listWidth - 1

	list := m.renderList(listWidth, m.height-2)
	detail := m.renderDetail(detailWidth, m.height-2)

	main := lipgloss.JoinHorizontal(lipgloss.Top, list, " ", detail)
	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) listWidth() int {
	maxLen := 20
	for _, i := range m.visible {
		if n := len(recordTitle(m.records[i])); n > maxLen {
			maxLen = n
		}
	}
	w := maxLen + 4
	if w > m.width/3 {
		w = m.width / 3
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) renderList(width, height int) string {
	innerHeight := height - 2
	if innerHeight < 1 {
		innerHeight = 1
	}

	// Keep the selection in view.
	start := 0
	if m.index >= innerHeight {
		start = m.index - innerHeight + 1
	}
	end := start + innerHeight
	if end > len(m.visible) {
		end = len(m.visible)
	}

	var b strings.Builder
	for pos := start; pos < end; pos++ {
		r := m.records[m.visible[pos]]
		name := recordTitle(r)

		maxName := width - 4
		if maxName > 0 && len(name) > maxName {
			name = "…" + name[len(name)-maxName+1:]
		}

		var style lipgloss.Style
		switch {
		case pos == m.index:
			style = itemSelectedStyle
		case changeType(r) == model.ChangeAdd:
			style = itemAddStyle
		default:
			style = itemStyle
		}

		b.WriteString(style.Width(width - 4).Render(name))
		if pos < end-1 {
			b.WriteByte('\n')
		}
	}

	return listStyle.Width(width).Height(innerHeight).Render(b.String())
}

func (m Model) renderDetail(width, height int) string {
	innerHeight := height - 2
	r := m.current()
	if r == nil {
		return detailStyle.Width(width).Height(innerHeight).Render("No warnings")
	}

	innerWidth := width - 4

	link, err := dataset.ParseCommitLink(r.CommitLink)
	commit := link.Hash
	if err != nil {
		commit = r.CommitLink
	}
	if len(commit) > 12 {
		commit = commit[:12]
	}
	header := headerStyle.Render(fmt.Sprintf("%s  %s  %s", r.RepositoryName, r.FilePath, commit))

	visibleLines := innerHeight - 2
	if visibleLines < 1 {
		visibleLines = 1
	}
	end := m.scrollOffset + visibleLines
	if end > len(m.lines) {
		end = len(m.lines)
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	for i := m.scrollOffset; i < end; i++ {
		b.WriteString(styleLine(m.lines[i], innerWidth))
		if i < end-1 {
			b.WriteByte('\n')
		}
	}

	return detailStyle.Width(width).Height(innerHeight).Render(b.String())
}

func (m Model) renderStatusBar() string {
	if m.searching {
		return statusBarStyle.Width(m.width).Render(m.search.View())
	}

	left := fmt.Sprintf(" Warning %d/%d", m.index+1, len(m.visible))
	if len(m.visible) == 0 {
		left = " Warning 0/0"
	}
	if len(m.visible) != len(m.records) {
		left += fmt.Sprintf(" (of %d)", len(m.records))
	}
	if q := m.search.Value(); q != "" {
		left += fmt.Sprintf("  filter: %q", q)
	}

	right := "? help "
	if r := m.current(); r != nil {
		right = fmt.Sprintf("%s  %s", changeType(r), right)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderHelp() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("warnctx browse: Keyboard Shortcuts"))
	b.WriteString("\n\n")

	for _, k := range []key.Binding{
		keys.Up, keys.Down, keys.NextRecord, keys.PrevRecord,
		keys.NextSection, keys.PrevSection, keys.TogglePatch,
		keys.Search, keys.Cancel, keys.Help, keys.Quit,
	} {
		h := k.Help()
		fmt.Fprintf(&b, "  %s  %s\n", helpKeyStyle.Width(12).Render(h.Key), h.Desc)
	}

	b.WriteString("\n")
	b.WriteString(helpBarStyle.Render("Press ? to close help"))
	return b.String()
}

// Run starts the browser.
func Run(recs []*dataset.Record) error {
	p := tea.NewProgram(New(recs), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
