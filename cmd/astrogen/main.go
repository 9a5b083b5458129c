// Command astrogen derives zodiac signs, lunar phase and planetary aspects
// for a date and turns them into prompts for horoscope generation.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/BaptisteVlt/astrology-generator/internal/config"
	"github.com/BaptisteVlt/astrology-generator/internal/ephem"
	"github.com/BaptisteVlt/astrology-generator/internal/logging"
	"github.com/BaptisteVlt/astrology-generator/internal/version"
)

const dateLayout = "2006-01-02"

// app carries what every subcommand needs once flags and config are resolved.
type app struct {
	configPath string
	logLevel   string
	provider   string
	tablePath  string
	cachePath  string
	orb        float64

	cfg    *config.Config
	logger *logging.Logger
	stdout io.Writer
	isTTY  func() bool
	now    func() time.Time
}

func newApp() *app {
	return &app{
		stdout: os.Stdout,
		isTTY:  func() bool { return term.IsTerminal(int(os.Stdout.Fd())) },
		now:    time.Now,
		logger: logging.Discard(),
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "astrogen [date]",
		Short: "Astrological features for horoscope generation",
		Long: `astrogen reads ecliptic longitudes for the Sun, Moon and planets and
derives each body's zodiac sign, the lunar phase and the major aspects
between bodies.

Run without a subcommand to open the TUI on a terminal, or to print the
features for today when output is piped.`,
		Version:       version.Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.isTTY() {
				return a.runTUI(cmd.Context(), args)
			}
			return a.runFeatures(cmd.Context(), args, false)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "astrogen.yaml", "Path to YAML config file")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&a.provider, "provider", "", "Longitude source: auto, horizons or table")
	pf.StringVar(&a.tablePath, "table", "", "Path to a longitude table CSV (date,body,longitude)")
	pf.StringVar(&a.cachePath, "cache", "", "Path to a sqlite longitude cache")
	pf.Float64Var(&a.orb, "orb", -1, "Aspect orb in degrees (default from config)")

	root.AddCommand(newFeaturesCmd(a))
	root.AddCommand(newBatchCmd(a))
	root.AddCommand(newPromptsCmd(a))
	root.AddCommand(newTUICmd(a))
	return root
}

// setup loads config, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Provider.Mode = ephem.ParseMode(a.provider)
	}
	if flags.Changed("table") {
		cfg.Provider.Table.Path = a.tablePath
	}
	if flags.Changed("cache") {
		cfg.Provider.Cache.Path = a.cachePath
	}
	if flags.Changed("orb") {
		cfg.Features.Orb = a.orb
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logging.New(cfg.LogLevel())
	a.logger.Debug("config loaded from %s: provider=%s orb=%.2f", a.configPath, cfg.Provider.Mode, cfg.Features.Orb)
	return nil
}

// openProvider builds the configured provider. The close function is never nil.
func (a *app) openProvider(ctx context.Context) (ephem.Provider, func() error, error) {
	p, closeFn, err := ephem.New(ctx, a.cfg.Provider)
	if err != nil {
		return nil, closeFn, fmt.Errorf("open provider: %w", err)
	}
	a.logger.Debug("using provider %s", p.Name())
	return p, closeFn, nil
}

// parseDay reads a YYYY-MM-DD argument, defaulting to today in UTC.
func (a *app) parseDay(args []string) (time.Time, error) {
	if len(args) == 0 || args[0] == "" {
		t := a.now().UTC()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(dateLayout, args[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", args[0], err)
	}
	return t, nil
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := newRootCmd(newApp()).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
