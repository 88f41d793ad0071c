package habits

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/projection"
	"github.com/julianstephens/routinely/internal/schedule"
	"github.com/julianstephens/routinely/internal/streak"
)

type AddHabitMsg struct{}

type EditHabitMsg struct {
	ID int64
}

type DeleteHabitMsg struct {
	ID int64
}

type ToggleHabitMsg struct {
	ID      int64
	Checked bool
}

type IncrementHabitMsg struct {
	ID int64
}

type DecrementHabitMsg struct {
	ID int64
}

type SetProgressMsg struct {
	ID int64
}

type SortMsg struct {
	Mode projection.SortMode
}

type CycleFilterMsg struct{}

type CycleCategoryMsg struct{}

type Item struct {
	Habit models.Habit
	Done  bool
	Due   bool
}

func (i Item) Title() string {
	mark := "○"
	if i.Done {
		mark = "✓"
	}
	name := i.Habit.Name
	if i.Habit.Icon != "" {
		name = i.Habit.Icon + " " + name
	}
	if i.Habit.Color != "" {
		name = lipgloss.NewStyle().Foreground(lipgloss.Color(i.Habit.Color)).Render(name)
	}
	return mark + " " + name
}

func (i Item) Description() string {
	parts := []string{}
	if !i.Habit.IsBinary() {
		parts = append(parts, fmt.Sprintf("%d/%d", i.Habit.CurrentValue, i.Habit.TargetValue))
	}
	parts = append(parts, fmt.Sprintf("streak %d (best %d)", i.Habit.CurrentStreak, i.Habit.BestStreak))
	parts = append(parts, schedule.Describe(i.Habit.Schedule))
	if i.Habit.HasReminder() {
		parts = append(parts, "⏰ "+i.Habit.NotificationTime)
	}
	if i.Habit.Category != "" {
		parts = append(parts, "#"+i.Habit.Category)
	}
	if !i.Due {
		parts = append(parts, "not due today")
	}
	return strings.Join(parts, " · ")
}

func (i Item) FilterValue() string { return i.Habit.Name }

type KeyMap struct {
	Add       key.Binding
	Edit      key.Binding
	Delete    key.Binding
	Toggle    key.Binding
	Increment key.Binding
	Decrement key.Binding
	Set       key.Binding
	Filter    key.Binding
	Category  key.Binding
	ByDate    key.Binding
	ByName    key.Binding
	ByStreak  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "done/undo"),
		),
		Increment: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "increment"),
		),
		Decrement: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "decrement"),
		),
		Set: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "set value"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "cycle filter"),
		),
		Category: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cycle category"),
		),
		ByDate: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "sort by date"),
		),
		ByName: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "sort by name"),
		),
		ByStreak: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "sort by streak"),
		),
	}
}

func (k KeyMap) bindings() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Delete, k.Toggle, k.Increment, k.Decrement, k.Set,
		k.Filter, k.Category, k.ByDate, k.ByName, k.ByStreak}
}

type Model struct {
	list list.Model
	keys KeyMap
	view projection.View
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Toggle, keys.Increment, keys.Decrement}
	}
	l.AdditionalFullHelpKeys = keys.bindings

	return Model{list: l, keys: keys}
}

// SetView replaces the items with a projection published at now.
func (m *Model) SetView(v projection.View, now time.Time) {
	m.view = v
	items := make([]list.Item, len(v.Habits))
	for i, h := range v.Habits {
		items[i] = Item{
			Habit: h,
			Done:  streak.CompletedOn(h, now),
			Due:   schedule.IsDueAt(h.Schedule, now),
		}
	}
	m.list.SetItems(items)
}

// Options returns the options of the view on screen.
func (m Model) Options() projection.Options {
	return m.view.Options
}

// Categories lists the categories of the view on screen.
func (m Model) Categories() []string {
	return m.view.Categories
}

// Selected returns the highlighted item.
func (m Model) Selected() (Item, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i, ok
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		if c := m.handleKey(msg); c != nil {
			return m, c
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Add):
		return emit(AddHabitMsg{})
	case key.Matches(msg, m.keys.Filter):
		return emit(CycleFilterMsg{})
	case key.Matches(msg, m.keys.Category):
		return emit(CycleCategoryMsg{})
	case key.Matches(msg, m.keys.ByDate):
		return emit(SortMsg{Mode: projection.ByCreationDate})
	case key.Matches(msg, m.keys.ByName):
		return emit(SortMsg{Mode: projection.ByName})
	case key.Matches(msg, m.keys.ByStreak):
		return emit(SortMsg{Mode: projection.ByStreak})
	}

	i, ok := m.Selected()
	if !ok {
		return nil
	}
	id := i.Habit.ID
	switch {
	case key.Matches(msg, m.keys.Edit):
		return emit(EditHabitMsg{ID: id})
	case key.Matches(msg, m.keys.Delete):
		return emit(DeleteHabitMsg{ID: id})
	case key.Matches(msg, m.keys.Toggle):
		return emit(ToggleHabitMsg{ID: id, Checked: !i.Done})
	case key.Matches(msg, m.keys.Increment):
		return emit(IncrementHabitMsg{ID: id})
	case key.Matches(msg, m.keys.Decrement):
		return emit(DecrementHabitMsg{ID: id})
	case key.Matches(msg, m.keys.Set):
		if !i.Habit.IsBinary() {
			return emit(SetProgressMsg{ID: id})
		}
	}
	return nil
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func (m Model) View() string {
	header := m.header()
	if len(m.list.Items()) == 0 {
		if m.view.Total == 0 {
			return header + "\n\n  No habits yet.\n  Press 'a' to add one."
		}
		return header + "\n\n  Nothing matches this view.\n  Press 'f' to change the filter."
	}
	return header + "\n" + m.list.View()
}

func (m Model) header() string {
	o := m.view.Options
	sort := o.Sort.String()
	if o.Sort == projection.ByName {
		if o.NameAscending {
			sort += " ↑"
		} else {
			sort += " ↓"
		}
	}
	category := o.Category
	if category == "" {
		category = "any"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(
		fmt.Sprintf("filter: %s · sort: %s · category: %s · %d/%d shown",
			o.Filter, sort, category, len(m.view.Habits), m.view.Total))
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height-1)
}
