// Package ephem supplies ecliptic longitudes for the tracked bodies.
//
// Providers own whatever raw shape their source uses (Horizons text tables,
// CSV rows, cache rows) and hand back plain degrees. Snapshotter turns those
// into zodiac readings, classifying every failure per body.
package ephem

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BaptisteVlt/astrology-generator/internal/zodiac"
)

var (
	// ErrMissingBody means the source has no data for the body at the instant.
	ErrMissingBody = errors.New("no longitude for body")

	// ErrInvalidLongitude means the source returned something that is not a
	// usable longitude.
	ErrInvalidLongitude = errors.New("invalid longitude")

	// ErrUnknownBody means the body has no mapping for this provider.
	ErrUnknownBody = errors.New("unknown body")
)

// Provider defines the interface for longitude sources.
type Provider interface {
	// Name returns the provider name for display/logging.
	Name() string

	// Longitude returns the geocentric ecliptic longitude of body at t, in
	// degrees. Implementations return raw values; range checks happen in
	// Snapshotter.
	Longitude(ctx context.Context, t time.Time, body zodiac.Body) (float64, error)
}

// Mode selects which longitude source to use.
type Mode int

const (
	ModeAuto     Mode = iota // Table when configured, Horizons otherwise or as fallback
	ModeHorizons             // JPL Horizons only
	ModeTable                // Local ephemeris table only
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeHorizons:
		return "horizons"
	case ModeTable:
		return "table"
	case ModeAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode string.
func ParseMode(s string) Mode {
	switch s {
	case "horizons":
		return ModeHorizons
	case "table":
		return ModeTable
	case "auto":
		return ModeAuto
	default:
		return ModeAuto
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	*m = ParseMode(string(text))
	return nil
}

// Config describes how to build a provider. Every path and endpoint lives
// here, so two providers in one process can point at different sources.
type Config struct {
	Mode     Mode           `yaml:"mode"`
	Horizons HorizonsConfig `yaml:"horizons"`
	Table    TableConfig    `yaml:"table"`
	Cache    CacheConfig    `yaml:"cache"`
}

// DefaultConfig returns the default provider configuration.
func DefaultConfig() Config {
	return Config{
		Mode:     ModeAuto,
		Horizons: DefaultHorizonsConfig(),
	}
}

// New builds the provider described by cfg. The returned close function
// releases any cache handle and is never nil.
func New(ctx context.Context, cfg Config) (Provider, func() error, error) {
	noop := func() error { return nil }

	var p Provider
	switch cfg.Mode {
	case ModeHorizons:
		p = NewHorizonsProvider(cfg.Horizons)
	case ModeTable:
		tp, err := NewTableProvider(cfg.Table)
		if err != nil {
			return nil, noop, err
		}
		p = tp
	case ModeAuto:
		hp := NewHorizonsProvider(cfg.Horizons)
		if cfg.Table.Path == "" {
			p = hp
			break
		}
		tp, err := NewTableProvider(cfg.Table)
		if err != nil {
			return nil, noop, err
		}
		p = NewAutoProvider(tp, hp)
	default:
		return nil, noop, fmt.Errorf("unsupported provider mode %d", cfg.Mode)
	}

	if cfg.Cache.Path == "" {
		return p, noop, nil
	}
	cp, err := NewCachedProvider(ctx, p, cfg.Cache)
	if err != nil {
		return nil, noop, err
	}
	return cp, cp.Close, nil
}

// AutoProvider tries a primary source and falls back to a secondary one.
type AutoProvider struct {
	primary  Provider
	fallback Provider
}

// NewAutoProvider creates a provider that consults fallback only when
// primary fails.
func NewAutoProvider(primary, fallback Provider) *AutoProvider {
	return &AutoProvider{primary: primary, fallback: fallback}
}

// Name implements Provider.
func (p *AutoProvider) Name() string {
	return p.primary.Name() + "+" + p.fallback.Name()
}

// Longitude implements Provider.
func (p *AutoProvider) Longitude(ctx context.Context, t time.Time, body zodiac.Body) (float64, error) {
	lon, err := p.primary.Longitude(ctx, t, body)
	if err == nil {
		return lon, nil
	}
	lon, fbErr := p.fallback.Longitude(ctx, t, body)
	if fbErr == nil {
		return lon, nil
	}
	return 0, errors.Join(err, fbErr)
}
