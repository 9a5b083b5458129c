// Package metrics exposes Prometheus collectors for longitude lookups and
// feature computation.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BaptisteVlt/astrology-generator/internal/zodiac"
)

// Collector holds the lookup and batch metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	LookupsTotal     *prometheus.CounterVec
	LookupDuration   *prometheus.HistogramVec
	UnavailableTotal *prometheus.CounterVec
	RecordsTotal     prometheus.Counter
}

// NewCollector registers the collectors against reg (the default registerer
// when nil). Registering twice on the same registry reuses the existing
// collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	lookups, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "astrogen_longitude_lookups_total",
		Help: "Longitude lookups by provider and outcome.",
	}, []string{"provider", "outcome"}), "astrogen_longitude_lookups_total")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "astrogen_longitude_lookup_duration_seconds",
		Help:    "Latency of longitude lookups by provider.",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"provider"}), "astrogen_longitude_lookup_duration_seconds")
	if err != nil {
		return nil, err
	}

	unavailable, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "astrogen_unavailable_bodies_total",
		Help: "Bodies marked unavailable, by body and reason.",
	}, []string{"body", "reason"}), "astrogen_unavailable_bodies_total")
	if err != nil {
		return nil, err
	}

	records := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "astrogen_feature_records_total",
		Help: "Feature records computed.",
	})
	if err := reg.Register(records); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(prometheus.Counter)
		if !ok {
			return nil, fmt.Errorf("collector astrogen_feature_records_total already registered with incompatible type")
		}
		records = existing
	}

	return &Collector{
		gatherer:         gatherer,
		LookupsTotal:     lookups,
		LookupDuration:   duration,
		UnavailableTotal: unavailable,
		RecordsTotal:     records,
	}, nil
}

// ObserveLookup records one longitude lookup. It satisfies ephem.Recorder.
func (c *Collector) ObserveLookup(provider string, body zodiac.Body, reason zodiac.Reason, d time.Duration) {
	if c == nil {
		return
	}
	outcome := "ok"
	if reason != zodiac.ReasonNone {
		outcome = "unavailable"
		c.UnavailableTotal.WithLabelValues(body.String(), reason.String()).Inc()
	}
	c.LookupsTotal.WithLabelValues(provider, outcome).Inc()
	c.LookupDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// IncRecords counts a computed feature record.
func (c *Collector) IncRecords() {
	if c == nil {
		return
	}
	c.RecordsTotal.Inc()
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *Collector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.Gatherer(), promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
