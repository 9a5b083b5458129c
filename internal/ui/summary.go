package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/BaptisteVlt/astrology-generator/internal/zodiac"
)

// WriteSummary writes a plain-text report of rec, suitable for pipes and logs.
func WriteSummary(w io.Writer, rec zodiac.FeatureRecord) {
	fmt.Fprintf(w, "Astrological features @ %s\n", rec.Instant.UTC().Format("2006-01-02"))
	fmt.Fprintln(w, strings.Repeat("─", 44))

	fmt.Fprintf(w, "%-8s %-12s %s\n", "Body", "Sign", "Status")
	fmt.Fprintln(w, strings.Repeat("─", 44))
	for _, b := range zodiac.Bodies {
		status := "ok"
		if reason, bad := rec.Unavailable[b]; bad {
			status = reason.String()
		}
		fmt.Fprintf(w, "%-8s %-12s %s\n", b, rec.Sign(b), status)
	}

	fmt.Fprintf(w, "\nLunar phase: %s\n", rec.Phase)

	if len(rec.Aspects) == 0 {
		fmt.Fprintln(w, "Aspects: none")
		return
	}
	fmt.Fprintf(w, "Aspects (%d):\n", len(rec.Aspects))
	for _, e := range rec.Aspects {
		fmt.Fprintf(w, "  %-32s %6.2f°\n", e.String(), e.Separation)
	}
}

// RenderSummary renders rec with the chart styles for a terminal.
func RenderSummary(rec zodiac.FeatureRecord) string {
	m := NewChartModel()
	m.snapshot.Record = &rec
	m.snapshot.Date = rec.Instant
	m.height = len(zodiac.Bodies) + 8 + len(rec.Aspects)
	m.cursor = -1

	var b strings.Builder
	b.WriteString(titleStyle.Render("Astrological features @ " + rec.Instant.UTC().Format("2006-01-02")))
	b.WriteString("\n\n")
	b.WriteString(m.View())
	return b.String()
}
