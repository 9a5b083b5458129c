package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BaptisteVlt/astrology-generator/internal/ephem"
	"github.com/BaptisteVlt/astrology-generator/internal/ui"
	"github.com/BaptisteVlt/astrology-generator/internal/zodiac"
)

func newFeaturesCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "features [date]",
		Short: "Print signs, lunar phase and aspects for a date (default today)",
		Example: `  astrogen features 2023-10-25
  astrogen features --json --provider table --table longitudes.csv 2023-10-25`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFeatures(cmd.Context(), args, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the feature record as JSON")
	return cmd
}

func (a *app) runFeatures(ctx context.Context, args []string, asJSON bool) error {
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

	snap := ephem.NewSnapshotter(p).Take(ctx, day)
	if err := ctx.Err(); err != nil {
		return err
	}
	rec := zodiac.Compute(snap, a.cfg.Features.Orb)
	for b, reason := range rec.Unavailable {
		a.logger.Debug("%s unavailable: %s (%s)", b, reason, snap.Reading(b).Detail)
	}
	if !rec.Complete() {
		a.logger.Warn("%d of %d bodies unavailable for %s", len(rec.Unavailable), len(zodiac.Bodies), day.Format(dateLayout))
	}

	switch {
	case asJSON:
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
	case a.isTTY():
		fmt.Fprintln(a.stdout, ui.RenderSummary(rec))
	default:
		ui.WriteSummary(a.stdout, rec)
	}
	return nil
}
