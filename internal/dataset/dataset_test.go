package dataset

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaptisteVlt/astrology-generator/internal/zodiac"
)

const sampleCSV = `Date,Zodiac Sign,Horoscope Text
2023-10-25,Aries,"Take the lead, gently."
2023-10-25,Taurus,Slow down.
2023-10-26,Aries,A new rhythm emerges.
`

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, s)
	require.NoError(t, err)
	return d
}

func TestReadHoroscopes(t *testing.T) {
	hs, err := ReadHoroscopes(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, hs, 3)

	assert.Equal(t, mustDate(t, "2023-10-25"), hs[0].Date)
	assert.Equal(t, "Aries", hs[0].Sign)
	assert.Equal(t, "Take the lead, gently.", hs[0].Text)
	assert.Equal(t, "Taurus", hs[1].Sign)

	dates := Dates(hs)
	assert.Equal(t, []time.Time{mustDate(t, "2023-10-25"), mustDate(t, "2023-10-26")}, dates)
}

func TestReadHoroscopes_ReorderedColumns(t *testing.T) {
	in := "\ufeffHoroscope Text,Source,Date,Zodiac Sign\nHello,site,2024-01-01,Leo\n"
	hs, err := ReadHoroscopes(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, hs, 1)
	assert.Equal(t, "Leo", hs[0].Sign)
	assert.Equal(t, "Hello", hs[0].Text)
}

func TestReadHoroscopes_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"missing column", "Date,Zodiac Sign\n2023-10-25,Aries\n"},
		{"bad date", "Date,Zodiac Sign,Horoscope Text\n25/10/2023,Aries,x\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadHoroscopes(strings.NewReader(tc.in))
			assert.Error(t, err)
		})
	}

	_, err := ReadHoroscopes(strings.NewReader("Date,Zodiac Sign\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func sampleRecord(t *testing.T) zodiac.FeatureRecord {
	t.Helper()
	snap := zodiac.NewSnapshot(mustDate(t, "2023-10-25"), map[zodiac.Body]float64{
		zodiac.Sun:  190,
		zodiac.Moon: 10,
	})
	return zodiac.Compute(snap, zodiac.DefaultOrb)
}

func TestBuildPrompt(t *testing.T) {
	h := Horoscope{Date: mustDate(t, "2023-10-25"), Sign: "Aries", Text: "x"}
	got := BuildPrompt(h, sampleRecord(t))

	want := "Date: 2023-10-25 | Zodiac: Aries | Sun: Libra | Moon: Aries | " +
		"Mercury: Unknown | Venus: Unknown | Mars: Unknown | Jupiter: Unknown | " +
		"Saturn: Unknown | Uranus: Unknown | Neptune: Unknown | Pluto: Unknown | " +
		"Lunar Phase: Full Moon | Aspects: Sun Opposition Moon"
	assert.Equal(t, want, got)
}

func TestBuildPrompt_NoAspects(t *testing.T) {
	h := Horoscope{Date: mustDate(t, "2023-10-25"), Sign: "Leo"}
	rec := zodiac.Compute(zodiac.NewSnapshot(h.Date, nil), zodiac.DefaultOrb)

	got := BuildPrompt(h, rec)
	assert.True(t, strings.HasSuffix(got, "| Lunar Phase: Unknown | Aspects: "), got)
}

func TestBuildExamplesAndWriteJSONL(t *testing.T) {
	hs, err := ReadHoroscopes(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	records := map[time.Time]zodiac.FeatureRecord{
		mustDate(t, "2023-10-25"): sampleRecord(t),
	}
	examples, skipped := BuildExamples(hs, records)
	assert.Equal(t, 1, skipped)
	require.Len(t, examples, 2)
	assert.Equal(t, "Slow down.", examples[1].Completion)

	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, examples))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var ex Example
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ex))
	assert.Equal(t, examples[0], ex)
}

func TestWriteRecordsJSONL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecordsJSONL(&buf, []zodiac.FeatureRecord{sampleRecord(t)}))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "2023-10-25", got["date"])
	assert.Equal(t, "Full Moon", got["lunar_phase"])
	signs := got["signs"].(map[string]interface{})
	assert.Equal(t, "Libra", signs["Sun"])
}
