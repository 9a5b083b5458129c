package ephem

import (
	"context"
	"errors"
	"time"

	"github.com/BaptisteVlt/astrology-generator/internal/zodiac"
)

// Recorder receives per-lookup outcomes. internal/metrics implements it.
type Recorder interface {
	ObserveLookup(provider string, body zodiac.Body, reason zodiac.Reason, d time.Duration)
}

// Snapshotter queries a provider for every body and converts the answers
// into zodiac readings.
type Snapshotter struct {
	provider Provider
	recorder Recorder
	bodies   []zodiac.Body
}

// SnapshotOption configures a Snapshotter.
type SnapshotOption func(*Snapshotter)

// WithRecorder attaches a lookup recorder.
func WithRecorder(r Recorder) SnapshotOption {
	return func(s *Snapshotter) {
		s.recorder = r
	}
}

// WithBodies limits the snapshot to the given bodies. Bodies left out read
// as missing.
func WithBodies(bodies ...zodiac.Body) SnapshotOption {
	return func(s *Snapshotter) {
		s.bodies = bodies
	}
}

// NewSnapshotter creates a snapshotter over p.
func NewSnapshotter(p Provider, opts ...SnapshotOption) *Snapshotter {
	s := &Snapshotter{provider: p, bodies: zodiac.Bodies}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provider returns the underlying provider.
func (s *Snapshotter) Provider() Provider {
	return s.provider
}

// Take reads every configured body at t. Failures are recorded per body and
// never abort the snapshot; a cancelled context marks the remaining bodies
// as missing.
func (s *Snapshotter) Take(ctx context.Context, t time.Time) zodiac.Snapshot {
	snap := zodiac.Snapshot{
		Instant:  t,
		Readings: make(map[zodiac.Body]zodiac.Reading, len(s.bodies)),
	}
	for _, b := range s.bodies {
		start := time.Now()
		r := s.read(ctx, t, b)
		if s.recorder != nil {
			s.recorder.ObserveLookup(s.provider.Name(), b, r.Reason, time.Since(start))
		}
		snap.Readings[b] = r
	}
	return snap
}

// TakeSnapshot reads bodies from p at t. With no bodies it reads all ten.
func TakeSnapshot(ctx context.Context, p Provider, t time.Time, bodies ...zodiac.Body) zodiac.Snapshot {
	var opts []SnapshotOption
	if len(bodies) > 0 {
		opts = append(opts, WithBodies(bodies...))
	}
	return NewSnapshotter(p, opts...).Take(ctx, t)
}

func (s *Snapshotter) read(ctx context.Context, t time.Time, b zodiac.Body) zodiac.Reading {
	if err := ctx.Err(); err != nil {
		return zodiac.Unavailable(zodiac.ReasonMissingBody, err.Error())
	}
	lon, err := s.provider.Longitude(ctx, t, b)
	if err != nil {
		return zodiac.Unavailable(ReasonFor(err), err.Error())
	}
	return zodiac.ReadingFromDegrees(lon)
}

// ReasonFor classifies a provider error. Anything that is not explicitly an
// invalid longitude counts as a missing body.
func ReasonFor(err error) zodiac.Reason {
	switch {
	case err == nil:
		return zodiac.ReasonNone
	case errors.Is(err, ErrInvalidLongitude):
		return zodiac.ReasonInvalidLongitude
	default:
		return zodiac.ReasonMissingBody
	}
}
