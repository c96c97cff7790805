package system

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/dragx/internal/cli"
	"github.com/julianstephens/dragx/internal/logger"
	"github.com/julianstephens/dragx/internal/tui"
)

type TuiCmd struct {
	Paths  []string `arg:"" optional:"" help:"Image files or directories to preload." type:"path"`
	Prefix string   `help:"Initial file name prefix." short:"p"`
	Out    string   `help:"Archive written by the export key." type:"path" short:"o" default:"${archive_name}"`
}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	b, previews := ctx.NewBoard()
	m := tui.NewModel(b, previews, tui.Options{
		Paths:  c.Paths,
		Prefix: strings.TrimSpace(c.Prefix),
		Out:    c.Out,
	})

	logger.Info("Starting board", "slots", b.Len(), "preload", len(c.Paths))
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("board session failed: %w", err)
	}
	return nil
}
