package ephem

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaptisteVlt/astrology-generator/internal/zodiac"
)

const sampleTable = "\ufeffDate,Body,Longitude\n" +
	"2023-10-25,Sun,211.73\n" +
	"2023-10-25,Moon,302.44\n" +
	"2023-10-25T18:00:00Z,Mars,219.2\n" +
	"2023-10-25,Chiron,17.5\n" +
	"2023-10-25,Venus,n/a\n" +
	"2023-10-26,Sun,212.73\n"

func TestLoadTable(t *testing.T) {
	p, err := LoadTable(strings.NewReader(sampleTable))
	require.NoError(t, err)

	assert.Equal(t, 2, p.Days())
	assert.Equal(t, 1, p.Skipped(), "Chiron is not a tracked body")
	assert.Equal(t, "table", p.Name())

	ctx := context.Background()
	day := time.Date(2023, 10, 25, 15, 30, 0, 0, time.UTC)

	lon, err := p.Longitude(ctx, day, zodiac.Sun)
	require.NoError(t, err)
	assert.Equal(t, 211.73, lon)

	lon, err = p.Longitude(ctx, day, zodiac.Mars)
	require.NoError(t, err)
	assert.Equal(t, 219.2, lon, "RFC3339 rows key on the UTC day")

	_, err = p.Longitude(ctx, day, zodiac.Venus)
	assert.ErrorIs(t, err, ErrInvalidLongitude)

	_, err = p.Longitude(ctx, day, zodiac.Pluto)
	assert.ErrorIs(t, err, ErrMissingBody)

	_, err = p.Longitude(ctx, day.AddDate(0, 0, 5), zodiac.Sun)
	assert.ErrorIs(t, err, ErrMissingBody)
}

func TestLoadTable_BadInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing column", "date,body\n2023-10-25,Sun\n"},
		{"bad date", "date,body,longitude\n25/10/2023,Sun,1\n"},
		{"ragged row", "date,body,longitude\n2023-10-25,Sun\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadTable(strings.NewReader(tc.input))
			assert.Error(t, err)
		})
	}
}

func TestNewTableProvider_FromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ephem.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleTable), 0o644))

	p, err := NewTableProvider(TableConfig{Path: path})
	require.NoError(t, err)
	assert.Equal(t, path, p.Path())

	_, err = NewTableProvider(TableConfig{Path: filepath.Join(t.TempDir(), "missing.csv")})
	assert.Error(t, err)

	_, err = NewTableProvider(TableConfig{})
	assert.Error(t, err)
}

func TestTableProvider_SeparateInstances(t *testing.T) {
	a, err := LoadTable(strings.NewReader("date,body,longitude\n2023-10-25,Sun,10\n"))
	require.NoError(t, err)
	b, err := LoadTable(strings.NewReader("date,body,longitude\n2023-10-25,Sun,20\n"))
	require.NoError(t, err)

	day := time.Date(2023, 10, 25, 0, 0, 0, 0, time.UTC)
	lonA, _ := a.Longitude(context.Background(), day, zodiac.Sun)
	lonB, _ := b.Longitude(context.Background(), day, zodiac.Sun)
	assert.Equal(t, 10.0, lonA)
	assert.Equal(t, 20.0, lonB)
}
