package ephem

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BaptisteVlt/astrology-generator/internal/astro"
	"github.com/BaptisteVlt/astrology-generator/internal/zodiac"
)

const sampleResult = `*******************************************************************************
Ephemeris / API_USER Wed Oct 25 00:00:00 2023 Pasadena, USA      / Horizons
*******************************************************************************
Target body name: Sun (10)                        {source: DE441}
Center body name: Earth (399)                     {source: DE441}
*******************************************************************************
 Date__(UT)__HR:MN     ObsEcLon    ObsEcLat
**********************************************
$$SOE
 2023-Oct-25 00:00 *   211.7326318  -0.0001234
$$EOE
*******************************************************************************`

func horizonsBody(t *testing.T, result string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"signature": map[string]string{"version": "1.2", "source": "NASA/JPL Horizons API"},
		"result":    result,
	})
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func TestHorizonsProvider_Longitude(t *testing.T) {
	var hits atomic.Int32
	var gotQuery map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(horizonsBody(t, sampleResult))
	}))
	defer srv.Close()

	cfg := DefaultHorizonsConfig()
	cfg.URL = srv.URL
	p := NewHorizonsProvider(cfg, WithHTTPClient(srv.Client()))

	when := time.Date(2023, 10, 25, 0, 0, 0, 0, time.UTC)
	lon, err := p.Longitude(context.Background(), when, zodiac.Sun)
	if err != nil {
		t.Fatalf("Longitude: %v", err)
	}
	if lon != 211.7326318 {
		t.Errorf("lon = %v, want 211.7326318", lon)
	}

	if got := gotQuery["COMMAND"]; len(got) != 1 || got[0] != "'10'" {
		t.Errorf("COMMAND = %v", got)
	}
	if got := gotQuery["QUANTITIES"]; len(got) != 1 || got[0] != "'31'" {
		t.Errorf("QUANTITIES = %v", got)
	}
	if got := gotQuery["CENTER"]; len(got) != 1 || got[0] != "'500@399'" {
		t.Errorf("CENTER = %v", got)
	}
	if got := gotQuery["TLIST"]; len(got) != 1 || got[0] != "'2460242.500000'" {
		t.Errorf("TLIST = %v (JD %.6f)", got, astro.JulianDate(when))
	}

	// Same minute: served from cache.
	if _, err := p.Longitude(context.Background(), when.Add(20*time.Second), zodiac.Sun); err != nil {
		t.Fatalf("cached Longitude: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}

	p.InvalidateCache()
	if _, err := p.Longitude(context.Background(), when, zodiac.Sun); err != nil {
		t.Fatalf("Longitude after invalidate: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("server hit %d times after invalidate, want 2", hits.Load())
	}
}

func TestHorizonsProvider_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"api error", http.StatusOK, `{"error":"No ephemeris for target"}`, ErrMissingBody},
		{"no markers", http.StatusOK, `{"result":"nothing here"}`, ErrMissingBody},
		{"not json", http.StatusOK, `<html>`, ErrInvalidLongitude},
		{"garbage row", http.StatusOK, `{"result":"$$SOE\n 2023-Oct-25 00:00 * n.a. n.a.\n$$EOE"}`, ErrInvalidLongitude},
		{"server error", http.StatusServiceUnavailable, `busy`, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			p := NewHorizonsProvider(HorizonsConfig{URL: srv.URL}, WithHTTPClient(srv.Client()))
			_, err := p.Longitude(context.Background(), time.Now(), zodiac.Moon)
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestHorizonsProvider_UnknownBody(t *testing.T) {
	p := NewHorizonsProvider(DefaultHorizonsConfig())
	_, err := p.Longitude(context.Background(), time.Now(), zodiac.Body(77))
	if !errors.Is(err, ErrUnknownBody) {
		t.Errorf("err = %v, want ErrUnknownBody", err)
	}
}

func TestHorizonsProvider_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	p := NewHorizonsProvider(DefaultHorizonsConfig())
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// Around the 2024 March equinox the Sun sits at the first point of Aries.
	when := time.Date(2024, 3, 20, 3, 6, 0, 0, time.UTC)
	lon, err := p.Longitude(ctx, when, zodiac.Sun)
	if err != nil {
		t.Skipf("Horizons unavailable: %v", err)
	}
	if sep := astro.CircularSeparation(lon, 0); sep > 0.1 {
		t.Errorf("Sun longitude at equinox = %v, want ~0", lon)
	}
	t.Logf("Sun at %s: %.6f", when.Format(time.RFC3339), lon)
}

func TestParseLongitudeLine(t *testing.T) {
	tests := []struct {
		line    string
		wantLon float64
		wantLat float64
		wantErr bool
	}{
		{
			line:    "2023-Oct-25 00:00 *   211.7326318  -0.0001234",
			wantLon: 211.7326318,
			wantLat: -0.0001234,
		},
		{
			line:    "2023-Oct-25 06:00 Cm  302.4417001   4.9934112",
			wantLon: 302.4417001,
			wantLat: 4.9934112,
		},
		{
			line:    "2023-Oct-25 12:00:00.000     0.0012345   0.0000000",
			wantLon: 0.0012345,
		},
		{
			line:    "invalid",
			wantErr: true,
		},
		{
			line:    "2023-Oct-25 00:00 * n.a.",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		name := tc.line
		if len(name) > 20 {
			name = name[:20]
		}
		t.Run(name, func(t *testing.T) {
			row, err := parseLongitudeLine(tc.line)
			if tc.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if row.lon != tc.wantLon {
				t.Errorf("lon = %v, want %v", row.lon, tc.wantLon)
			}
			if row.lat != tc.wantLat {
				t.Errorf("lat = %v, want %v", row.lat, tc.wantLat)
			}
		})
	}
}

func TestParseLongitudeTable(t *testing.T) {
	rows, err := parseLongitudeTable(sampleResult)
	if err != nil {
		t.Fatalf("parseLongitudeTable: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	want := time.Date(2023, 10, 25, 0, 0, 0, 0, time.UTC)
	if !rows[0].time.Equal(want) {
		t.Errorf("time = %v, want %v", rows[0].time, want)
	}
}
