package zodiac

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDetectAspects_SinglePair(t *testing.T) {
	tests := []struct {
		name     string
		sun, mon float64
		orb      float64
		want     []AspectEvent
	}{
		{
			name: "sextile only",
			sun:  10, mon: 70, orb: 5,
			want: []AspectEvent{{First: Sun, Aspect: Sextile, Second: Moon, Separation: 60}},
		},
		{
			name: "conjunction within default orb",
			sun:  0, mon: 3, orb: DefaultOrb,
			want: []AspectEvent{{First: Sun, Aspect: Conjunction, Second: Moon, Separation: 3}},
		},
		{
			name: "opposition across 180",
			sun:  0, mon: 181, orb: 5,
			want: []AspectEvent{{First: Sun, Aspect: Opposition, Second: Moon, Separation: 179}},
		},
		{
			name: "conjunction across zero",
			sun:  358, mon: 2, orb: 5,
			want: []AspectEvent{{First: Sun, Aspect: Conjunction, Second: Moon, Separation: 4}},
		},
		{
			name: "orb boundary is inclusive",
			sun:  0, mon: 95, orb: 5,
			want: []AspectEvent{{First: Sun, Aspect: Square, Second: Moon, Separation: 95}},
		},
		{
			name: "nothing in orb",
			sun:  0, mon: 40, orb: 5,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lons := map[Body]Longitude{Sun: Longitude(tt.sun), Moon: Longitude(tt.mon)}
			got := DetectAspects(lons, tt.orb)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DetectAspects() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDetectAspects_Symmetric(t *testing.T) {
	a := map[Body]Longitude{Mars: 12, Venus: 133, Saturn: 192}
	b := map[Body]Longitude{Mars: 133, Venus: 12, Saturn: 192}

	type key struct {
		pair   [2]Body
		aspect Aspect
	}
	collect := func(events []AspectEvent) map[key]bool {
		m := make(map[key]bool)
		for _, e := range events {
			m[key{[2]Body{e.First, e.Second}, e.Aspect}] = true
		}
		return m
	}

	// Swapping the longitudes of two bodies keeps the same set of matched
	// separations. Mars-Venus (121) is a trine either way.
	gotA := DetectAspects(a, 5)
	gotB := DetectAspects(b, 5)
	if len(gotA) != len(gotB) {
		t.Fatalf("len differs: %d vs %d", len(gotA), len(gotB))
	}
	if !collect(gotA)[key{[2]Body{Venus, Mars}, Trine}] {
		t.Errorf("expected Venus Trine Mars in %v", gotA)
	}
	if !collect(gotB)[key{[2]Body{Venus, Mars}, Trine}] {
		t.Errorf("expected Venus Trine Mars in %v", gotB)
	}
}

func TestDetectAspects_OrderAndDistinctPairs(t *testing.T) {
	lons := make(map[Body]Longitude, len(Bodies))
	for _, b := range Bodies {
		lons[b] = 100 // everything conjunct
	}

	got := DetectAspects(lons, DefaultOrb)
	if want := len(Bodies) * (len(Bodies) - 1) / 2; len(got) != want {
		t.Fatalf("got %d events, want %d", len(got), want)
	}

	seen := make(map[[2]Body]bool)
	for i, e := range got {
		if e.First == e.Second {
			t.Errorf("self pair at %d: %v", i, e)
		}
		if e.First >= e.Second {
			t.Errorf("pair not in canonical order at %d: %v", i, e)
		}
		p := [2]Body{e.First, e.Second}
		if seen[p] {
			t.Errorf("pair repeated: %v", p)
		}
		seen[p] = true
		if i > 0 {
			prev := got[i-1]
			if prev.First > e.First || (prev.First == e.First && prev.Second > e.Second) {
				t.Errorf("events out of order at %d: %v after %v", i, e, prev)
			}
		}
	}

	if got[0].String() != "Sun Conjunction Moon" {
		t.Errorf("first event = %q", got[0].String())
	}
	if got[len(got)-1].String() != "Neptune Conjunction Pluto" {
		t.Errorf("last event = %q", got[len(got)-1].String())
	}
}

func TestDetectAspects_SkipsAbsentBodies(t *testing.T) {
	lons := map[Body]Longitude{Sun: 0, Mars: 90}
	got := DetectAspects(lons, 5)
	want := []AspectEvent{{First: Sun, Aspect: Square, Second: Mars, Separation: 90}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if got := DetectAspects(map[Body]Longitude{Sun: 10}, 5); len(got) != 0 {
		t.Errorf("single body yielded %v", got)
	}
	if got := DetectAspects(nil, 5); len(got) != 0 {
		t.Errorf("nil map yielded %v", got)
	}
}

// Neighbouring aspect angles are at least 30 degrees apart (Sextile/Square,
// Square/Trine), so windows only overlap once orb exceeds 15.
func TestDetectAspects_OrbOverlapThreshold(t *testing.T) {
	lons := map[Body]Longitude{Sun: 0, Moon: 75} // midway between Sextile and Square

	atThreshold := DetectAspects(lons, 15)
	want := []AspectEvent{
		{First: Sun, Aspect: Sextile, Second: Moon, Separation: 75},
		{First: Sun, Aspect: Square, Second: Moon, Separation: 75},
	}
	if diff := cmp.Diff(want, atThreshold); diff != "" {
		t.Errorf("orb 15 at midpoint (-want +got):\n%s", diff)
	}

	lons[Moon] = 74
	if got := DetectAspects(lons, 15); len(got) != 1 || got[0].Aspect != Sextile {
		t.Errorf("orb 15 at 74 should match Sextile only, got %v", got)
	}

	lons[Moon] = 90
	if got := DetectAspects(lons, 15); len(got) != 1 || got[0].Aspect != Square {
		t.Errorf("orb 15 at exact square should match Square only, got %v", got)
	}

	lons[Moon] = 80
	got := DetectAspects(lons, 20)
	if len(got) != 2 || got[0].Aspect != Sextile || got[1].Aspect != Square {
		t.Errorf("orb 20 at 80 should report Sextile then Square, got %v", got)
	}

	// No overlap is possible at the default orb.
	for deg := 0.0; deg <= 180; deg += 0.5 {
		lons[Moon] = Longitude(deg)
		if got := DetectAspects(lons, DefaultOrb); len(got) > 1 {
			t.Fatalf("default orb matched %d aspects at %v", len(got), deg)
		}
	}
}

func TestDetectAspects_Idempotent(t *testing.T) {
	lons := map[Body]Longitude{Sun: 12, Moon: 250, Mars: 131, Jupiter: 72, Pluto: 299}
	first := DetectAspects(lons, DefaultOrb)
	second := DetectAspects(lons, DefaultOrb)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated call differs:\n%s", diff)
	}
	if lons[Sun] != 12 || len(lons) != 5 {
		t.Error("input map was modified")
	}
}

func TestAspectAngles(t *testing.T) {
	want := map[Aspect]float64{Conjunction: 0, Sextile: 60, Square: 90, Trine: 120, Opposition: 180}
	for a, deg := range want {
		if a.Angle() != deg {
			t.Errorf("%v.Angle() = %v, want %v", a, a.Angle(), deg)
		}
	}
}

func TestAspectEvent_JSON(t *testing.T) {
	e := AspectEvent{First: Sun, Aspect: Trine, Second: Jupiter, Separation: 118.5}
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"first":"Sun","aspect":"Trine","second":"Jupiter","separation":118.5}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}
