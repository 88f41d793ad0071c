package stats

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/julianstephens/routinely/internal/stats"
)

// ShiftDayMsg moves the statistics date by Days.
type ShiftDayMsg struct {
	Days int
}

// TodayMsg resets the statistics date to today.
type TodayMsg struct{}

type KeyMap struct {
	Prev  key.Binding
	Next  key.Binding
	Today key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Prev: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous day"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next day"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "today"),
		),
	}
}

type Model struct {
	viewport viewport.Model
	keys     KeyMap
	report   stats.Report
	ready    bool
	width    int
}

func New(width, height int) Model {
	return Model{
		viewport: viewport.New(width, height),
		keys:     DefaultKeyMap(),
		width:    width,
	}
}

// SetReport replaces the report on screen.
func (m *Model) SetReport(r stats.Report) {
	m.report = r
	m.ready = true
	m.render()
}

// Report returns the report on screen.
func (m Model) Report() (stats.Report, bool) {
	return m.report, m.ready
}

func (m *Model) render() {
	if !m.ready {
		return
	}
	md := stats.Markdown(m.report)
	width := max(m.width, 20)
	// Auto style would query the terminal from inside the running program.
	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle("dark"), glamour.WithWordWrap(width))
	if err == nil {
		if out, err := r.Render(md); err == nil {
			md = out
		}
	}
	m.viewport.SetContent(md)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Prev):
			return m, func() tea.Msg { return ShiftDayMsg{Days: -1} }
		case key.Matches(msg, m.keys.Next):
			return m, func() tea.Msg { return ShiftDayMsg{Days: 1} }
		case key.Matches(msg, m.keys.Today):
			return m, func() tea.Msg { return TodayMsg{} }
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "\n  Loading statistics..."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.viewport.Width = width
	m.viewport.Height = height
	m.render()
}
