package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/routinely/internal/constants"
	"github.com/julianstephens/routinely/internal/habits"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/projection"
	"github.com/julianstephens/routinely/internal/stats"
	"github.com/julianstephens/routinely/internal/tui/state"
	"github.com/julianstephens/routinely/internal/utils"
)

// refreshInterval is how often the TUI re-reads storage and checks for a
// new day.
const refreshInterval = time.Minute

type viewMsg projection.View

type reportMsg stats.Report

type tickMsg time.Time

type Model struct {
	state.Model

	views   <-chan projection.View
	reports <-chan stats.Report
	day     string
}

// NewModel wires the projector and statistics watcher to store and starts
// them; both stop when ctx is done.
func NewModel(ctx context.Context, store *habits.Store, saver state.SettingsSaver, s models.Settings) Model {
	projector := projection.NewProjector(projection.FromSettings(s), store.Now)
	watcher := stats.NewWatcher(store.Now())

	habitsForProjector, _ := store.Subscribe()
	habitsForWatcher, _ := store.Subscribe()
	records, _ := store.SubscribeCompletions()
	go projector.Run(ctx, habitsForProjector)
	go watcher.Run(ctx, habitsForWatcher, records)

	views, _ := projector.Subscribe()
	reports, _ := watcher.Subscribe()

	m := Model{
		Model:   state.New(ctx, store, projector, watcher, saver, s),
		views:   views,
		reports: reports,
		day:     utils.DayKey(store.Now()),
	}
	m.UpdateValidationStatus()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	return []key.Binding{m.Keys.Tab, m.Keys.Quit, m.Keys.Help}
}

func (m Model) FullHelp() [][]key.Binding {
	return m.Keys.FullHelp()
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForView(m.views), waitForReport(m.reports), tick())
}

func waitForView(ch <-chan projection.View) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return nil
		}
		return viewMsg(v)
	}
}

func waitForReport(ch <-chan stats.Report) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return reportMsg(r)
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// refresh picks up writes from other processes and starts a new day after
// midnight.
func (m *Model) refresh() {
	ctx := m.Context()
	if err := m.Store.Refresh(ctx); err != nil {
		m.Fail(err)
		return
	}
	today := utils.DayKey(m.Store.Now())
	if today == m.day {
		return
	}
	m.day = today
	m.Fail(m.Store.BeginDay(ctx))
	m.Projector.Recompute()
	if m.State != constants.StateStats {
		m.Watcher.Select(m.Store.Now())
	}
}
