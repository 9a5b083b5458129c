package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/BaptisteVlt/astrology-generator/internal/ephem"
	"github.com/BaptisteVlt/astrology-generator/internal/logging"
	"github.com/BaptisteVlt/astrology-generator/internal/state"
	"github.com/BaptisteVlt/astrology-generator/internal/ui"
	"github.com/BaptisteVlt/astrology-generator/internal/zodiac"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui [date]",
		Short: "Step through days interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context(), args)
		},
	}
}

func (a *app) runTUI(ctx context.Context, args []string) error {
	day, err := a.parseDay(args)
	if err != nil {
		return err
	}

	p, closeFn, err := a.openProvider(ctx)
	defer func() {
		if err := closeFn(); err != nil {
			a.logger.Warn("close provider: %v", err)
		}
	}()
	if err != nil {
		return err
	}

	// Log lines would tear the alt screen.
	a.logger.SetLevel(logging.LevelError)

	snapper := ephem.NewSnapshotter(p)
	take := func(ctx context.Context, date time.Time) (zodiac.Snapshot, error) {
		snap := snapper.Take(ctx, date)
		return snap, ctx.Err()
	}

	stateMgr := state.NewManager(state.DefaultConfig(), day)
	model := ui.New(ctx, stateMgr, take, a.cfg.Features.Orb)

	prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}
