package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/BaptisteVlt/astrology-generator/internal/batch"
	"github.com/BaptisteVlt/astrology-generator/internal/dataset"
	"github.com/BaptisteVlt/astrology-generator/internal/zodiac"
)

func newPromptsCmd(a *app) *cobra.Command {
	var csvPath, out string
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Build prompt/completion JSONL from a scraped horoscope CSV",
		Long: `Reads a CSV with the columns "Date", "Zodiac Sign" and "Horoscope Text",
computes the features for every distinct date, and writes one
{"prompt": ..., "completion": ...} object per row.`,
		Example: `  astrogen prompts --csv horoscopes.csv --out horoscope_finetune.jsonl`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPrompts(cmd.Context(), csvPath, out)
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "horoscopes.csv", "Horoscope CSV to read")
	cmd.Flags().StringVarP(&out, "out", "o", "horoscope_finetune.jsonl", "Output file (- for stdout)")
	return cmd
}

func (a *app) runPrompts(ctx context.Context, csvPath, out string) error {
	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("open horoscopes: %w", err)
	}
	horoscopes, err := dataset.ReadHoroscopes(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("read %s: %w", csvPath, err)
	}
	dates := dataset.Dates(horoscopes)
	a.logger.Info("read %d horoscopes over %d dates", len(horoscopes), len(dates))

	p, closeFn, err := a.openProvider(ctx)
	defer func() {
		if err := closeFn(); err != nil {
			a.logger.Warn("close provider: %v", err)
		}
	}()
	if err != nil {
		return err
	}

	records, err := batch.Run(ctx, p, dates, batch.Options{
		Workers: a.cfg.Batch.Workers,
		Orb:     a.cfg.Features.Orb,
		Logger:  a.logger,
	})
	if err != nil {
		return err
	}

	byDate := make(map[time.Time]zodiac.FeatureRecord, len(records))
	for i, rec := range records {
		byDate[dates[i]] = rec
	}
	examples, skipped := dataset.BuildExamples(horoscopes, byDate)
	if skipped > 0 {
		a.logger.Warn("skipped %d rows without features", skipped)
	}

	w, closeOut, err := a.openOutput(out)
	if err != nil {
		return err
	}
	defer closeOut()
	if err := dataset.WriteJSONL(w, examples); err != nil {
		return err
	}
	a.logger.Info("wrote %d examples to %s", len(examples), out)
	return nil
}
