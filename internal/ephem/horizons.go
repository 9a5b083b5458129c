package ephem

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/BaptisteVlt/astrology-generator/internal/astro"
	"github.com/BaptisteVlt/astrology-generator/internal/zodiac"
)

const (
	// HorizonsAPIURL is the JPL Horizons JSON API endpoint.
	HorizonsAPIURL = "https://ssd.jpl.nasa.gov/api/horizons.api"

	// DefaultRequestTimeout is the HTTP request timeout.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultCacheTTL is how long a fetched longitude is reused.
	DefaultCacheTTL = 6 * time.Hour

	// geocentric observer: body center of the Earth
	horizonsCenter = "'500@399'"

	// 31 = observer-centered ecliptic longitude and latitude
	horizonsQuantities = "'31'"
)

// HorizonsConfig configures a HorizonsProvider.
type HorizonsConfig struct {
	URL       string        `yaml:"url"`
	Timeout   time.Duration `yaml:"timeout"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
	UserAgent string        `yaml:"user_agent"`
}

// DefaultHorizonsConfig returns the public Horizons endpoint settings.
func DefaultHorizonsConfig() HorizonsConfig {
	return HorizonsConfig{
		URL:       HorizonsAPIURL,
		Timeout:   DefaultRequestTimeout,
		CacheTTL:  DefaultCacheTTL,
		UserAgent: "astrogen/1.0 (ecliptic longitude lookup)",
	}
}

// HorizonsOption configures a HorizonsProvider.
type HorizonsOption func(*HorizonsProvider)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) HorizonsOption {
	return func(p *HorizonsProvider) {
		p.client = client
	}
}

// HorizonsProvider queries JPL Horizons for geocentric ecliptic longitudes.
type HorizonsProvider struct {
	client *http.Client
	cfg    HorizonsConfig

	mu    sync.RWMutex
	cache map[cacheKey]cachedLongitude
}

type cacheKey struct {
	target TargetID
	minute int64
}

// cachedLongitude stores a fetched value.
type cachedLongitude struct {
	lon       float64
	fetchedAt time.Time
}

// NewHorizonsProvider creates a new Horizons API client.
func NewHorizonsProvider(cfg HorizonsConfig, opts ...HorizonsOption) *HorizonsProvider {
	def := DefaultHorizonsConfig()
	if cfg.URL == "" {
		cfg.URL = def.URL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}

	p := &HorizonsProvider{
		cfg:   cfg,
		cache: make(map[cacheKey]cachedLongitude),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: cfg.Timeout}
	}
	return p
}

// Name implements Provider.
func (p *HorizonsProvider) Name() string {
	return "horizons"
}

// Longitude implements Provider.
// Answers come from the cache when a value for the same minute is fresh.
func (p *HorizonsProvider) Longitude(ctx context.Context, t time.Time, body zodiac.Body) (float64, error) {
	target, ok := GetTarget(body)
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnknownBody, body)
	}

	key := cacheKey{target: target.NAIFID, minute: t.UTC().Truncate(time.Minute).Unix()}
	if p.cfg.CacheTTL > 0 {
		p.mu.RLock()
		cached, ok := p.cache[key]
		p.mu.RUnlock()
		if ok && time.Since(cached.fetchedAt) < p.cfg.CacheTTL {
			return cached.lon, nil
		}
	}

	lon, err := p.queryHorizons(ctx, target.NAIFID, t)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", body, err)
	}

	if p.cfg.CacheTTL > 0 {
		p.mu.Lock()
		p.cache[key] = cachedLongitude{lon: lon, fetchedAt: time.Now()}
		p.mu.Unlock()
	}
	return lon, nil
}

// InvalidateCache clears all cached longitudes.
func (p *HorizonsProvider) InvalidateCache() {
	p.mu.Lock()
	p.cache = make(map[cacheKey]cachedLongitude)
	p.mu.Unlock()
}

// queryHorizons asks for a single observer-table row at t.
func (p *HorizonsProvider) queryHorizons(ctx context.Context, target TargetID, t time.Time) (float64, error) {
	// Values must be quoted with single quotes
	params := url.Values{}
	params.Set("format", "json")
	params.Set("COMMAND", fmt.Sprintf("'%d'", target))
	params.Set("OBJ_DATA", "NO")
	params.Set("MAKE_EPHEM", "YES")
	params.Set("EPHEM_TYPE", "OBSERVER")
	params.Set("CENTER", horizonsCenter)
	params.Set("TLIST", fmt.Sprintf("'%.6f'", astro.JulianDate(t)))
	params.Set("TLIST_TYPE", "JD")
	params.Set("TIME_TYPE", "UT")
	params.Set("QUANTITIES", horizonsQuantities)
	params.Set("CSV_FORMAT", "NO")

	reqURL := p.cfg.URL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", p.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("horizons request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("horizons returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	return parseHorizonsResponse(body)
}

// parseHorizonsResponse extracts the longitude from the Horizons JSON body.
// The ephemeris itself is a text blob in the "result" field.
func parseHorizonsResponse(body []byte) (float64, error) {
	if !gjson.ValidBytes(body) {
		return 0, fmt.Errorf("%w: response is not JSON", ErrInvalidLongitude)
	}
	if apiErr := gjson.GetBytes(body, "error"); apiErr.Exists() {
		return 0, fmt.Errorf("%w: horizons error: %s", ErrMissingBody, apiErr.String())
	}
	result := gjson.GetBytes(body, "result")
	if !result.Exists() {
		return 0, fmt.Errorf("%w: response has no result field", ErrMissingBody)
	}

	rows, err := parseLongitudeTable(result.String())
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("%w: empty ephemeris table", ErrMissingBody)
	}
	return rows[0].lon, nil
}

type longitudeRow struct {
	time time.Time
	lon  float64
	lat  float64
}

// parseLongitudeTable extracts rows from the text between $$SOE and $$EOE.
func parseLongitudeTable(result string) ([]longitudeRow, error) {
	soeIdx := strings.Index(result, "$$SOE")
	eoeIdx := strings.Index(result, "$$EOE")
	if soeIdx == -1 || eoeIdx == -1 || soeIdx >= eoeIdx {
		return nil, fmt.Errorf("%w: could not find ephemeris data markers", ErrMissingBody)
	}

	var rows []longitudeRow
	for _, line := range strings.Split(result[soeIdx+5:eoeIdx], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		row, err := parseLongitudeLine(line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseLongitudeLine parses a single observer-table line.
// Format for QUANTITIES='31':
// 2023-Oct-25 00:00     211.7326318  -0.0001234
// Fields: date, time, optional flags, ecliptic longitude, ecliptic latitude
func parseLongitudeLine(line string) (longitudeRow, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return longitudeRow{}, fmt.Errorf("%w: insufficient fields: %d", ErrInvalidLongitude, len(fields))
	}

	t, err := parseHorizonsDateTime(fields[0] + " " + fields[1])
	if err != nil {
		return longitudeRow{}, fmt.Errorf("%w: %v", ErrInvalidLongitude, err)
	}

	// Skip flag fields (like *, m, Cm, Nm)
	var values []float64
	for _, f := range fields[2:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			continue
		}
		values = append(values, v)
		if len(values) == 2 {
			break
		}
	}
	if len(values) == 0 {
		return longitudeRow{}, fmt.Errorf("%w: no numeric longitude in %q", ErrInvalidLongitude, line)
	}

	row := longitudeRow{time: t, lon: values[0]}
	if len(values) > 1 {
		row.lat = values[1]
	}
	return row, nil
}

// parseHorizonsDateTime parses Horizons date format like "2025-Dec-05 00:00".
func parseHorizonsDateTime(s string) (time.Time, error) {
	for _, layout := range []string{
		"2006-Jan-02 15:04",
		"2006-Jan-02 15:04:05",
		"2006-Jan-02 15:04:05.000",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
