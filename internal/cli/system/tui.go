package system

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Habits(ctx.Ctx())
	if err != nil {
		return err
	}
	defer store.Close()

	settings, err := ctx.Settings(ctx.Ctx())
	if err != nil {
		return err
	}

	// Perform automatic backup on TUI startup (after successful load)
	ctx.PerformAutomaticBackup(ctx.Ctx())

	runCtx, cancel := context.WithCancel(ctx.Ctx())
	defer cancel()

	p := tea.NewProgram(tui.NewModel(runCtx, store, ctx.Store, settings), tea.WithAltScreen(), tea.WithContext(runCtx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui failed: %w", err)
	}
	return nil
}
