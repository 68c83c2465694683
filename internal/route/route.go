// Package route provides the route geometry and metadata types consumed by the
// engine, the geodesic segment builder, and the boundary parser that turns
// loosely-shaped routing payloads into typed steps.
package route

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
)

var (
	// ErrTooFewPoints is returned when fewer than two points carry coordinates.
	ErrTooFewPoints = errors.New("route geometry needs at least 2 usable points")
	// ErrElevationMismatch is returned when the elevation array and the geometry differ in length.
	ErrElevationMismatch = errors.New("elevation profile length does not match geometry")
)

// Point is one route vertex. Coord is [lon, lat] in degrees.
// Missing marks a vertex whose payload lacked coordinates; it keeps its slot so
// that parallel elevation arrays stay aligned.
type Point struct {
	Coord     orb.Point `json:"coord"`
	Elevation *float64  `json:"elevation,omitempty"` // metres
	Missing   bool      `json:"missing,omitempty"`
}

// Geometry is an ordered sequence of points; index order is travel order.
type Geometry []Point

// Segment is the stretch between two consecutive usable points.
type Segment struct {
	Index     int       `json:"index"`
	From      orb.Point `json:"from"`
	To        orb.Point `json:"to"`
	DistanceM float64   `json:"distance_m"`
	Slope     float64   `json:"slope"`  // rise/run, clamped to ±physics.MaxSlope
	Rise      float64   `json:"rise_m"` // raw elevation change, unclamped

	// Climb and descent of hops dropped as too short just before this segment
	// (or after it, for the last one). Only Summarize reads them.
	carriedGain, carriedLoss float64
}

// ParseCoordinates converts raw [lon, lat(, elevation)] tuples into a Geometry.
// Tuples with fewer than two finite values are kept as Missing points.
func ParseCoordinates(raw [][]float64) Geometry {
	g := make(Geometry, len(raw))
	for i, c := range raw {
		if len(c) < 2 || !finite(c[0]) || !finite(c[1]) {
			g[i] = Point{Missing: true}
			continue
		}
		g[i] = Point{Coord: orb.Point{c[0], c[1]}}
		if len(c) >= 3 && finite(c[2]) {
			z := c[2]
			g[i].Elevation = &z
		}
	}
	return g
}

// Usable returns the number of points that carry coordinates.
func (g Geometry) Usable() int {
	n := 0
	for _, p := range g {
		if !p.Missing {
			n++
		}
	}
	return n
}

// Elevations returns the embedded elevation of every point, or false if any
// point (missing ones included) has none.
func (g Geometry) Elevations() ([]float64, bool) {
	out := make([]float64, len(g))
	for i, p := range g {
		if p.Elevation == nil {
			return nil, false
		}
		out[i] = *p.Elevation
	}
	return out, len(g) > 0
}

// LineString returns the usable points as an orb.LineString.
func (g Geometry) LineString() orb.LineString {
	ls := make(orb.LineString, 0, len(g))
	for _, p := range g {
		if !p.Missing {
			ls = append(ls, p.Coord)
		}
	}
	return ls
}

// Flat returns a zero elevation profile matching g.
func (g Geometry) Flat() []float64 {
	return make([]float64, len(g))
}

// Densify replaces a two-point geometry by n points linearly interpolated in
// lon/lat with no elevation. Other geometries are returned unchanged.
func (g Geometry) Densify(n int) Geometry {
	ls := g.LineString()
	if len(ls) != 2 || n <= 2 {
		return g
	}
	a, b := ls[0], ls[1]
	out := make(Geometry, n)
	for i := 0; i < n; i++ {
		f := float64(i) / float64(n-1)
		out[i] = Point{Coord: orb.Point{a[0] + f*(b[0]-a[0]), a[1] + f*(b[1]-a[1])}}
	}
	return out
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
