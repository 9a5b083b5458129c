package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/BaptisteVlt/astrology-generator/internal/batch"
	"github.com/BaptisteVlt/astrology-generator/internal/dataset"
	"github.com/BaptisteVlt/astrology-generator/internal/metrics"
)

func newBatchCmd(a *app) *cobra.Command {
	var (
		from, to    string
		out         string
		workers     int
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Compute feature records for a date range as JSON lines",
		Example: `  astrogen batch --from 2023-10-01 --to 2023-10-31 --out october.jsonl
  astrogen batch --from 2024-01-01 --to 2024-12-31 --metrics-addr :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := time.Parse(dateLayout, from)
			if err != nil {
				return fmt.Errorf("invalid --from: %w", err)
			}
			end, err := time.Parse(dateLayout, to)
			if err != nil {
				return fmt.Errorf("invalid --to: %w", err)
			}
			days := batch.Days(start, end)
			if len(days) == 0 {
				return errors.New("--to precedes --from")
			}
			if cmd.Flags().Changed("workers") {
				a.cfg.Batch.Workers = workers
			}
			if cmd.Flags().Changed("metrics-addr") {
				a.cfg.Metrics.Addr = metricsAddr
			}
			return a.runBatch(cmd.Context(), days, out)
		},
	}
	f := cmd.Flags()
	f.StringVar(&from, "from", "", "First date, YYYY-MM-DD (required)")
	f.StringVar(&to, "to", "", "Last date, YYYY-MM-DD, inclusive (required)")
	f.StringVarP(&out, "out", "o", "-", "Output file (- for stdout)")
	f.IntVar(&workers, "workers", batch.DefaultWorkers, "Concurrent days")
	f.StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func (a *app) runBatch(ctx context.Context, days []time.Time, out string) error {
	collector, stopMetrics, err := a.startMetrics()
	if err != nil {
		return err
	}
	defer stopMetrics()

	p, closeFn, err := a.openProvider(ctx)
	defer func() {
		if err := closeFn(); err != nil {
			a.logger.Warn("close provider: %v", err)
		}
	}()
	if err != nil {
		return err
	}

	opts := batch.Options{
		Workers: a.cfg.Batch.Workers,
		Orb:     a.cfg.Features.Orb,
		Logger:  a.logger,
	}
	if collector != nil {
		opts.Recorder = collector
		opts.Counter = collector
	}

	started := time.Now()
	records, err := batch.Run(ctx, p, days, opts)
	if err != nil {
		return err
	}
	a.logger.Info("computed %d records in %v", len(records), time.Since(started).Round(time.Millisecond))

	w, closeOut, err := a.openOutput(out)
	if err != nil {
		return err
	}
	defer closeOut()
	return dataset.WriteRecordsJSONL(w, records)
}

// startMetrics serves the collector when an address is configured. The
// returned collector is nil otherwise; stop is never nil.
func (a *app) startMetrics() (*metrics.Collector, func(), error) {
	if a.cfg.Metrics.Addr == "" {
		return nil, func() {}, nil
	}

	collector, err := metrics.NewCollector(prometheus.NewRegistry())
	if err != nil {
		return nil, func() {}, fmt.Errorf("register metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server: %v", err)
		}
	}()
	a.logger.Info("serving metrics on %s/metrics", a.cfg.Metrics.Addr)

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	return collector, stop, nil
}

// openOutput returns stdout for "-" or a created file.
func (a *app) openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return a.stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, func() {
		if err := f.Close(); err != nil {
			a.logger.Warn("close %s: %v", path, err)
		}
	}, nil
}
