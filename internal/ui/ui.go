// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-visibility/internal/population"
	"github.com/litescript/ls-visibility/internal/version"
)

// Styles for the browser
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("60"))
)

// ViewMode represents the current browser view.
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
)

// Browser is the root Bubble Tea model: a list of catalog entries with a
// detail view of the selected one.
type Browser struct {
	catalog *population.Catalog

	viewMode ViewMode
	cursor   int
	offset   int
	width    int
	height   int
	ready    bool
}

// NewBrowser creates a browser over cat.
func NewBrowser(cat *population.Catalog) Browser {
	return Browser{catalog: cat, width: 80, height: 24}
}

// Init implements tea.Model.
func (m Browser) Init() tea.Cmd {
	return nil
}

// Cursor returns the index of the selected entry.
func (m Browser) Cursor() int { return m.cursor }

// Mode returns the current view.
func (m Browser) Mode() ViewMode { return m.viewMode }

func (m Browser) entries() []population.Entry {
	if m.catalog == nil {
		return nil
	}
	return m.catalog.Entries
}

// listHeight is the number of entry rows that fit under the header.
func (m Browser) listHeight() int {
	h := m.height - 6
	if h < 1 {
		h = 1
	}
	return h
}

// Update implements tea.Model.
func (m Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		n := len(m.entries())
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < n-1 {
				m.cursor++
			}
		case "home":
			m.cursor = 0
		case "end":
			if n > 0 {
				m.cursor = n - 1
			}
		case "enter":
			if n > 0 {
				m.viewMode = ViewDetail
			}
		case "esc", "backspace":
			m.viewMode = ViewList
		}
		m.scroll()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.scroll()
	}
	return m, nil
}

// scroll keeps the cursor inside the visible rows.
func (m *Browser) scroll() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
}

// View implements tea.Model.
func (m Browser) View() string {
	if !m.ready {
		return "Initializing..."
	}
	header := titleStyle.Render("ls-visibility "+version.Version) + m.renderSummary()

	var content string
	switch m.viewMode {
	case ViewDetail:
		content = m.renderDetail()
	default:
		content = m.renderList()
	}
	return header + "\n\n" + content + "\n" + m.renderFooter()
}

func (m Browser) renderSummary() string {
	if m.catalog == nil {
		return ""
	}
	return dimStyle.Render(fmt.Sprintf("  run %s  %d units  %d visible tonight",
		m.catalog.RunID, len(m.catalog.Entries), m.catalog.VisibleTonight()))
}

func (m Browser) renderList() string {
	entries := m.entries()
	if len(entries) == 0 {
		return dimStyle.Render("  No entries")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-16s %-9s %-8s %-8s %s", "UNIT", "OUTCOME", "TONIGHT", "TRIGGER", "FIRST WINDOW")))
	b.WriteString("\n")

	end := m.offset + m.listHeight()
	if end > len(entries) {
		end = len(entries)
	}
	for i := m.offset; i < end; i++ {
		line := m.renderRow(entries[i])
		switch {
		case i == m.cursor:
			line = selectedRowStyle.Render(line)
		case entries[i].Result == nil:
			line = failedStyle.Render(line)
		default:
			line = rowStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Browser) renderRow(e population.Entry) string {
	tonight, trigger, first := "-", "-", "--"
	if e.Result != nil {
		tonight = yesNo(e.Result.VisibleTonight())
		trigger = yesNo(e.Result.VisibleAtTrigger())
		if w, ok := e.Result.Visible().First(); ok {
			first = formatWindow(w)
		}
	}
	return fmt.Sprintf("%-16s %-9s %-8s %-8s %s", e.Name, e.Outcome, tonight, trigger, first)
}

func (m Browser) renderDetail() string {
	entries := m.entries()
	if m.cursor >= len(entries) {
		return ""
	}
	e := entries[m.cursor]
	if e.Result == nil {
		return failedStyle.Render(fmt.Sprintf("%s: %s", e.Name, e.Outcome)) + "\n" + dimStyle.Render(e.Error) + "\n"
	}
	barWidth := m.width - 8
	if barWidth < 10 {
		barWidth = 10
	}
	return RenderResult(e.Result) + "\n" + RenderTimeline(e.Result, barWidth) + "\n"
}

func (m Browser) renderFooter() string {
	if m.viewMode == ViewDetail {
		return dimStyle.Render("  esc: back | ↑↓: previous/next | q: quit")
	}
	return dimStyle.Render("  ↑↓: navigate | enter: details | q: quit")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
