package route

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestHaversine(t *testing.T) {
	// One degree of latitude on a 6371 km sphere.
	want := EarthRadius * math.Pi / 180
	got := Haversine(orb.Point{2.35, 48.0}, orb.Point{2.35, 49.0})
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("expected %v got %v", want, got)
	}
	if d := Haversine(orb.Point{4.8, 45.7}, orb.Point{4.8, 45.7}); d != 0 {
		t.Fatalf("expected 0 for identical points, got %v", d)
	}
}

func TestParseCoordinates(t *testing.T) {
	g := ParseCoordinates([][]float64{
		{2.0, 48.0, 35},
		{2.1},
		{2.2, 48.2},
		{math.NaN(), 48.3},
	})
	if len(g) != 4 {
		t.Fatalf("expected 4 points, got %d", len(g))
	}
	if g[0].Missing || g[0].Elevation == nil || *g[0].Elevation != 35 {
		t.Fatalf("unexpected first point %+v", g[0])
	}
	if !g[1].Missing || !g[3].Missing {
		t.Fatal("expected short and NaN tuples to be missing")
	}
	if g[2].Elevation != nil {
		t.Fatal("expected no elevation on 2-tuple")
	}
	if g.Usable() != 2 {
		t.Fatalf("expected 2 usable points, got %d", g.Usable())
	}
	if _, ok := g.Elevations(); ok {
		t.Fatal("expected Elevations to report incomplete profile")
	}
}

func TestBuildSegments(t *testing.T) {
	tests := []struct {
		name       string
		raw        [][]float64
		elevations []float64
		wantErr    error
		wantCount  int
		check      func(t *testing.T, segs []Segment)
	}{
		{
			name:       "simple climb",
			raw:        [][]float64{{0, 0}, {0, 0.009}},
			elevations: []float64{0, 50},
			wantCount:  1,
			check: func(t *testing.T, segs []Segment) {
				want := 50 / segs[0].DistanceM
				if math.Abs(segs[0].Slope-want) > 1e-12 {
					t.Fatalf("expected slope %v got %v", want, segs[0].Slope)
				}
			},
		},
		{
			name:       "near vertical slope clamped",
			raw:        [][]float64{{0, 0}, {0, 0.0001}},
			elevations: []float64{0, 100},
			wantCount:  1,
			check: func(t *testing.T, segs []Segment) {
				if segs[0].Slope != 0.5 {
					t.Fatalf("expected clamped slope 0.5 got %v", segs[0].Slope)
				}
				if segs[0].Rise != 100 {
					t.Fatalf("expected raw rise 100 got %v", segs[0].Rise)
				}
			},
		},
		{
			name:       "missing point bridged",
			raw:        [][]float64{{0, 0}, {7}, {0, 0.01}},
			elevations: []float64{10, 999, 20},
			wantCount:  1,
			check: func(t *testing.T, segs []Segment) {
				if segs[0].Rise != 10 {
					t.Fatalf("expected bridged rise 10 got %v", segs[0].Rise)
				}
				if segs[0].To != (orb.Point{0, 0.01}) {
					t.Fatalf("unexpected endpoint %v", segs[0].To)
				}
			},
		},
		{
			name:       "duplicate point dropped",
			raw:        [][]float64{{0, 0}, {0, 0}, {0, 0.01}},
			elevations: []float64{0, 0, 0},
			wantCount:  1,
		},
		{
			name:       "too few usable points",
			raw:        [][]float64{{0, 0}, {1}},
			elevations: []float64{0, 0},
			wantErr:    ErrTooFewPoints,
		},
		{
			name:       "elevation mismatch",
			raw:        [][]float64{{0, 0}, {0, 1}},
			elevations: []float64{0},
			wantErr:    ErrElevationMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs, err := BuildSegments(ParseCoordinates(tt.raw), tt.elevations)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(segs) != tt.wantCount {
				t.Fatalf("expected %d segments, got %d", tt.wantCount, len(segs))
			}
			for i, s := range segs {
				if s.Index != i || s.DistanceM < MinSegmentM {
					t.Fatalf("bad segment %+v at %d", s, i)
				}
			}
			if tt.check != nil {
				tt.check(t, segs)
			}
		})
	}
}

func TestOutAndBackElevationBalance(t *testing.T) {
	raw := [][]float64{{5.0, 45.0}, {5.01, 45.0}, {5.02, 45.01}, {5.01, 45.0}, {5.0, 45.0}}
	elev := []float64{200, 260, 310, 260, 200}
	segs, err := BuildSegments(ParseCoordinates(raw), elev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := Summarize(segs)
	if math.Abs(s.ElevationGainM-s.ElevationLossM) > 1e-9 {
		t.Fatalf("gain %v != loss %v", s.ElevationGainM, s.ElevationLossM)
	}
	if s.ElevationGainM != 110 {
		t.Fatalf("expected 110 m gain, got %v", s.ElevationGainM)
	}
	if !s.Bound.Contains(orb.Point{5.02, 45.01}) {
		t.Fatalf("bound %v misses route point", s.Bound)
	}
}

func TestElevationOfDroppedHops(t *testing.T) {
	tests := []struct {
		name      string
		raw       [][]float64
		elev      []float64
		wantSegs  int
		wantGain  float64
		wantLoss  float64
		firstRise float64
	}{
		{
			name:      "duplicate vertex on out and back",
			raw:       [][]float64{{5, 45}, {5, 45}, {5.02, 45.01}, {5, 45}},
			elev:      []float64{200, 205, 310, 200},
			wantSegs:  2,
			wantGain:  110,
			wantLoss:  110,
			firstRise: 105,
		},
		{
			name:      "duplicate vertex at the end",
			raw:       [][]float64{{5, 45}, {5.01, 45}, {5.01, 45}},
			elev:      []float64{200, 250, 240},
			wantSegs:  1,
			wantGain:  50,
			wantLoss:  10,
			firstRise: 50,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs, err := BuildSegments(ParseCoordinates(tt.raw), tt.elev)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(segs) != tt.wantSegs {
				t.Fatalf("expected %d segments, got %d", tt.wantSegs, len(segs))
			}
			// The dropped hop's change shows up in the totals only.
			if segs[0].Rise != tt.firstRise {
				t.Fatalf("expected first rise %v, got %v", tt.firstRise, segs[0].Rise)
			}
			if want := tt.firstRise / segs[0].DistanceM; math.Abs(segs[0].Slope-want) > 1e-12 {
				t.Fatalf("expected slope %v, got %v", want, segs[0].Slope)
			}

			s := Summarize(segs)
			if math.Abs(s.ElevationGainM-tt.wantGain) > 1e-9 || math.Abs(s.ElevationLossM-tt.wantLoss) > 1e-9 {
				t.Fatalf("expected gain %v loss %v, got %v %v", tt.wantGain, tt.wantLoss, s.ElevationGainM, s.ElevationLossM)
			}
		})
	}
}

func TestDensify(t *testing.T) {
	g := ParseCoordinates([][]float64{{0, 0}, {0.9, 0.9}})
	d := g.Densify(10)
	if len(d) != 10 {
		t.Fatalf("expected 10 points, got %d", len(d))
	}
	if d[0].Coord != (orb.Point{0, 0}) || d[9].Coord != (orb.Point{0.9, 0.9}) {
		t.Fatalf("endpoints not preserved: %v %v", d[0].Coord, d[9].Coord)
	}
	if math.Abs(d[1].Coord.Lon()-0.1) > 1e-12 {
		t.Fatalf("unexpected interpolation %v", d[1].Coord)
	}

	three := ParseCoordinates([][]float64{{0, 0}, {1, 1}, {2, 2}})
	if len(three.Densify(10)) != 3 {
		t.Fatal("expected non two-point geometry to be unchanged")
	}
}

func TestManeuverFromCode(t *testing.T) {
	tests := []struct {
		code float64
		want Maneuver
	}{
		{0, ManeuverLeft},
		{1, ManeuverRight},
		{6, ManeuverStraight},
		{7, ManeuverEnterRoundabout},
		{11, ManeuverDepart},
		{13, ManeuverKeepRight},
		{-1, ManeuverUnknown},
		{14, ManeuverUnknown},
		{2.5, ManeuverUnknown},
		{math.NaN(), ManeuverUnknown},
	}
	for _, tt := range tests {
		if got := ManeuverFromCode(tt.code); got != tt.want {
			t.Errorf("ManeuverFromCode(%v) = %v, want %v", tt.code, got, tt.want)
		}
	}

	var zero Step
	if zero.Maneuver.Known() || zero.Maneuver != ManeuverUnknown {
		t.Fatalf("zero step should carry an unknown maneuver, got %v", zero.Maneuver)
	}
}

func TestParseMetadata(t *testing.T) {
	payload := []byte(`{
		"segments": [
			{"distance": 1200, "steps": [
				{"instruction": "Head north", "type": 11, "distance": 200, "way_type": "residential"},
				{"instruction": "Turn right onto A7", "type": 1, "distance": 1000, "road_type": "motorway"}
			]},
			{"steps": [
				{"text": "Au rond-point, prenez la 2e sortie", "distance": 80, "way_type": 3},
				{"instruction": "Arrive", "maneuver_type": 10, "distance": 0}
			]}
		]
	}`)

	groups, err := ParseMetadata(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Distance() != 1200 || groups[0].Road() != "residential" {
		t.Fatalf("unexpected first group %+v", groups[0])
	}
	if groups[1].Distance() != 80 || groups[1].Road() != "" {
		t.Fatalf("unexpected second group %+v", groups[1])
	}

	steps := FlattenSteps(groups)
	if len(steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(steps))
	}
	if steps[1].Maneuver != ManeuverRight || steps[0].Maneuver != ManeuverDepart {
		t.Fatalf("unexpected maneuvers %v %v", steps[0].Maneuver, steps[1].Maneuver)
	}
	if steps[2].Maneuver != ManeuverUnknown || steps[2].Instruction == "" {
		t.Fatalf("expected text fallback and unknown maneuver, got %+v", steps[2])
	}
	if steps[3].Maneuver != ManeuverGoal {
		t.Fatalf("expected maneuver_type fallback, got %v", steps[3].Maneuver)
	}

	bare, err := ParseMetadata([]byte(`[{"distance_m": 50, "road_type": "service", "steps": []}]`))
	if err != nil || len(bare) != 1 || bare[0].Road() != "service" {
		t.Fatalf("bare array: %v %+v", err, bare)
	}

	if none, err := ParseMetadata(nil); err != nil || none != nil {
		t.Fatalf("empty payload: %v %+v", err, none)
	}
	if _, err := ParseMetadata([]byte(`{"segments": 4}`)); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
