// Package batch computes feature records for many dates in parallel.
package batch

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/BaptisteVlt/astrology-generator/internal/astro"
	"github.com/BaptisteVlt/astrology-generator/internal/ephem"
	"github.com/BaptisteVlt/astrology-generator/internal/logging"
	"github.com/BaptisteVlt/astrology-generator/internal/zodiac"
)

// DefaultWorkers bounds concurrent snapshots when Options.Workers is unset.
const DefaultWorkers = 4

// RecordCounter is notified once per computed record.
type RecordCounter interface {
	IncRecords()
}

// Options configures a batch run.
type Options struct {
	Workers  int
	Orb      float64
	Logger   *logging.Logger
	Recorder ephem.Recorder
	Counter  RecordCounter
}

func (o Options) withDefaults() Options {
	if o.Workers < 1 {
		o.Workers = DefaultWorkers
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}

// Run computes one record per date. Results keep the order of dates.
// Provider failures become unavailable readings inside each record; Run
// itself only fails when ctx is cancelled.
func Run(ctx context.Context, p ephem.Provider, dates []time.Time, opts Options) ([]zodiac.FeatureRecord, error) {
	opts = opts.withDefaults()

	var snapOpts []ephem.SnapshotOption
	if opts.Recorder != nil {
		snapOpts = append(snapOpts, ephem.WithRecorder(opts.Recorder))
	}
	snapper := ephem.NewSnapshotter(p, snapOpts...)

	out := make([]zodiac.FeatureRecord, len(dates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i, d := range dates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			snap := snapper.Take(gctx, d)
			if err := gctx.Err(); err != nil {
				return err
			}
			rec := zodiac.Compute(snap, opts.Orb)
			if !rec.Complete() {
				opts.Logger.Warn("%s: %d bodies unavailable", d.Format("2006-01-02"), len(rec.Unavailable))
			}
			if opts.Counter != nil {
				opts.Counter.IncRecords()
			}
			out[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch run: %w", err)
	}
	opts.Logger.Debug("computed %d records with %d workers", len(out), opts.Workers)
	return out, nil
}

// Days lists every UTC midnight from from to to, inclusive. It returns nil
// when to precedes from.
func Days(from, to time.Time) []time.Time {
	start, end := astro.StartOfDay(from), astro.StartOfDay(to)
	if end.Before(start) {
		return nil
	}
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}
