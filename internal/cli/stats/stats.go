package stats

import (
	"fmt"

	"github.com/charmbracelet/glamour"

	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/stats"
)

type StatsCmd struct {
	Date  string `help:"Day to report on in YYYY-MM-DD format (default: today)." default:""`
	Raw   bool   `help:"Print markdown without styling."`
	Width int    `help:"Wrap rendered output at this width." default:"80"`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Habits(ctx.Ctx())
	if err != nil {
		return err
	}
	day, err := ctx.ParseDay(ctx.Ctx(), c.Date)
	if err != nil {
		return err
	}

	md := stats.Markdown(stats.Build(store.Habits(), store.Completions(), day))
	if c.Raw {
		fmt.Print(md)
		return nil
	}

	out, err := render(md, c.Width)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func render(md string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render statistics: %w", err)
	}
	return out, nil
}
