package settings

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/routinely/internal/models"
)

type EditSettingsMsg struct{}

type ToggleNotificationsMsg struct{}

type ResetDataMsg struct{}

type Model struct {
	settings models.Settings
	width    int
	height   int
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(25)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			MarginTop(1).
			MarginBottom(1)
)

func New(settings models.Settings, width, height int) Model {
	return Model{
		settings: settings,
		width:    width,
		height:   height,
	}
}

func (m *Model) SetSettings(settings models.Settings) {
	m.settings = settings
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "e":
			return m, func() tea.Msg { return EditSettingsMsg{} }
		case "n":
			return m, func() tea.Msg { return ToggleNotificationsMsg{} }
		case "R":
			return m, func() tea.Msg { return ResetDataMsg{} }
		}
	}
	return m, nil
}

func row(label, value string) string {
	return fmt.Sprintf("%s %s", labelStyle.Render(label), valueStyle.Render(value))
}

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	var sections []string

	category := m.settings.DefaultCategory
	if category == "" {
		category = "(any)"
	}
	order := "A → Z"
	if !m.settings.NameAscending {
		order = "Z → A"
	}

	generalTitle := titleStyle.Render("General")
	generalContent := lipgloss.JoinVertical(
		lipgloss.Left,
		row("Timezone:", m.settings.Timezone),
		row("Notifications:", fmt.Sprintf("%t", m.settings.NotificationsEnabled)),
	)
	sections = append(sections, sectionStyle.Render(generalTitle+"\n"+generalContent))

	viewTitle := titleStyle.Render("Habit List")
	viewContent := lipgloss.JoinVertical(
		lipgloss.Left,
		row("Filter:", m.settings.DefaultFilter),
		row("Sort:", m.settings.DefaultSort),
		row("Name order:", order),
		row("Category:", category),
	)
	sections = append(sections, sectionStyle.Render(viewTitle+"\n"+viewContent))

	helpText := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true).
		MarginTop(2).
		Render("Press 'e' to edit, 'n' to toggle notifications, 'R' to delete all habits")

	sections = append(sections, helpText)

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Left,
		lipgloss.Top,
		lipgloss.NewStyle().Padding(2, 4).Render(content),
	)
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
