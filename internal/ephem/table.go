package ephem

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BaptisteVlt/astrology-generator/internal/astro"
	"github.com/BaptisteVlt/astrology-generator/internal/zodiac"
)

// TableConfig points a TableProvider at an ephemeris table on disk.
type TableConfig struct {
	Path string `yaml:"path"`
}

// TableProvider serves longitudes from a precomputed daily table.
//
// The table is CSV with a header row naming at least the columns date, body
// and longitude. Dates are YYYY-MM-DD or RFC3339; lookups match on the UTC
// calendar day. Rows for bodies outside zodiac.Bodies are ignored.
type TableProvider struct {
	path    string
	rows    map[int64]map[zodiac.Body]float64
	skipped int
}

// NewTableProvider loads the table at cfg.Path.
func NewTableProvider(cfg TableConfig) (*TableProvider, error) {
	if cfg.Path == "" {
		return nil, errors.New("ephemeris table path is empty")
	}
	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open ephemeris table: %w", err)
	}
	defer f.Close()

	p, err := LoadTable(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", cfg.Path, err)
	}
	p.path = cfg.Path
	return p, nil
}

// LoadTable parses an ephemeris table from r.
func LoadTable(r io.Reader) (*TableProvider, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range []string{"date", "body", "longitude"} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	p := &TableProvider{rows: make(map[int64]map[zodiac.Body]float64)}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		day, err := parseTableDate(rec[cols["date"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		body, ok := zodiac.ParseBody(rec[cols["body"]])
		if !ok {
			p.skipped++
			continue
		}

		// Keep unparseable cells as NaN so the lookup reports an invalid
		// longitude instead of a missing one.
		lon, err := strconv.ParseFloat(strings.TrimSpace(rec[cols["longitude"]]), 64)
		if err != nil {
			lon = math.NaN()
		}

		key := day.Unix()
		if p.rows[key] == nil {
			p.rows[key] = make(map[zodiac.Body]float64, len(zodiac.Bodies))
		}
		p.rows[key][body] = lon
	}
	return p, nil
}

func parseTableDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return astro.StartOfDay(t), nil
	}
	return time.Time{}, fmt.Errorf("unable to parse date %q", s)
}

// Name implements Provider.
func (p *TableProvider) Name() string {
	return "table"
}

// Longitude implements Provider.
func (p *TableProvider) Longitude(ctx context.Context, t time.Time, body zodiac.Body) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	day := astro.StartOfDay(t)
	lon, ok := p.rows[day.Unix()][body]
	if !ok {
		return 0, fmt.Errorf("%w: %v on %s", ErrMissingBody, body, day.Format("2006-01-02"))
	}
	if math.IsNaN(lon) {
		return 0, fmt.Errorf("%w: %v on %s is not numeric", ErrInvalidLongitude, body, day.Format("2006-01-02"))
	}
	return lon, nil
}

// Days returns the number of distinct days in the table.
func (p *TableProvider) Days() int {
	return len(p.rows)
}

// Skipped returns how many rows named bodies outside zodiac.Bodies.
func (p *TableProvider) Skipped() int {
	return p.skipped
}

// Path returns the file the table was loaded from, if any.
func (p *TableProvider) Path() string {
	return p.path
}
