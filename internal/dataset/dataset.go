// Package dataset turns scraped horoscope rows and feature records into
// prompt/completion examples for fine-tuning.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BaptisteVlt/astrology-generator/internal/zodiac"
)

// DateLayout is the day format used in the horoscope CSV and in prompts.
const DateLayout = "2006-01-02"

// Column headers of the horoscope CSV.
const (
	ColumnDate = "Date"
	ColumnSign = "Zodiac Sign"
	ColumnText = "Horoscope Text"
)

// ErrMissingColumn is returned when the CSV header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Horoscope is one scraped row.
type Horoscope struct {
	Date time.Time
	Sign string
	Text string
}

// Example is one fine-tuning record.
type Example struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
}

// ReadHoroscopes parses a horoscope CSV. Columns are located by header name
// and extra columns are ignored.
func ReadHoroscopes(r io.Reader) ([]Horoscope, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range []string{ColumnDate, ColumnSign, ColumnText} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, col)
		}
	}

	var out []Horoscope
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		get := func(col string) string {
			i := idx[col]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		date, err := time.Parse(DateLayout, get(ColumnDate))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date: %w", line, err)
		}
		out = append(out, Horoscope{
			Date: date,
			Sign: get(ColumnSign),
			Text: get(ColumnText),
		})
	}
	return out, nil
}

// Dates returns the distinct dates of hs in first-seen order.
func Dates(hs []Horoscope) []time.Time {
	seen := make(map[time.Time]bool)
	var out []time.Time
	for _, h := range hs {
		if seen[h.Date] {
			continue
		}
		seen[h.Date] = true
		out = append(out, h.Date)
	}
	return out
}

// BuildPrompt renders the prompt for one horoscope row:
//
//	Date: 2023-10-25 | Zodiac: Aries | Sun: Scorpio | ... | Pluto: Capricorn | Lunar Phase: Full Moon | Aspects: Sun Trine Moon
func BuildPrompt(h Horoscope, rec zodiac.FeatureRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s | Zodiac: %s", h.Date.Format(DateLayout), h.Sign)
	for _, body := range zodiac.Bodies {
		fmt.Fprintf(&b, " | %s: %s", body, rec.Sign(body))
	}
	fmt.Fprintf(&b, " | Lunar Phase: %s | Aspects: %s", rec.Phase, strings.Join(rec.AspectStrings(), ", "))
	return b.String()
}

// BuildExamples pairs each horoscope with the record for its date. Rows with
// no record are skipped and counted.
func BuildExamples(hs []Horoscope, records map[time.Time]zodiac.FeatureRecord) ([]Example, int) {
	out := make([]Example, 0, len(hs))
	skipped := 0
	for _, h := range hs {
		rec, ok := records[h.Date]
		if !ok {
			skipped++
			continue
		}
		out = append(out, Example{Prompt: BuildPrompt(h, rec), Completion: h.Text})
	}
	return out, skipped
}

// WriteJSONL writes one JSON object per line.
func WriteJSONL(w io.Writer, examples []Example) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, ex := range examples {
		if err := enc.Encode(ex); err != nil {
			return fmt.Errorf("encode example %d: %w", i, err)
		}
	}
	return nil
}

// WriteRecordsJSONL writes one feature record per line.
func WriteRecordsJSONL(w io.Writer, records []zodiac.FeatureRecord) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode record %d: %w", i, err)
		}
	}
	return nil
}
