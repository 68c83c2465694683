package route

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/cxd309/ecospeed/internal/physics"
)

const (
	EarthRadius = 6371000.0 // metres

	// MinSegmentM is the shortest segment that is traversed; shorter ones are dropped.
	MinSegmentM = 0.01
)

// Haversine returns the great-circle distance in metres between two [lon, lat] points.
func Haversine(a, b orb.Point) float64 {
	lat1 := a.Lat() * math.Pi / 180
	lat2 := b.Lat() * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Lon() - a.Lon()) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadius * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// BuildSegments turns g and its parallel elevation profile into distance/slope
// segments in travel order.
//
// Missing points are skipped silently: the last usable point is joined directly
// to the next usable one, bridging the gap. Segments shorter than MinSegmentM
// are dropped; their elevation change still counts towards Summarize. Slopes
// are clamped to ±physics.MaxSlope.
func BuildSegments(g Geometry, elevations []float64) ([]Segment, error) {
	if len(elevations) != len(g) {
		return nil, fmt.Errorf("%w: %d elevations for %d points", ErrElevationMismatch, len(elevations), len(g))
	}
	if g.Usable() < 2 {
		return nil, ErrTooFewPoints
	}

	segments := make([]Segment, 0, len(g)-1)
	prev := -1
	var gain, loss float64 // from dropped hops not yet attached to a segment
	for i, p := range g {
		if p.Missing {
			continue
		}
		if prev < 0 {
			prev = i
			continue
		}

		from := g[prev].Coord
		d := Haversine(from, p.Coord)
		rise := elevations[i] - elevations[prev]
		prev = i
		if d < MinSegmentM {
			if rise > 0 {
				gain += rise
			} else {
				loss -= rise
			}
			continue
		}

		segments = append(segments, Segment{
			Index:       len(segments),
			From:        from,
			To:          p.Coord,
			DistanceM:   d,
			Slope:       physics.ClampSlope(rise / d),
			Rise:        rise,
			carriedGain: gain,
			carriedLoss: loss,
		})
		gain, loss = 0, 0
	}
	if n := len(segments); n > 0 {
		segments[n-1].carriedGain += gain
		segments[n-1].carriedLoss += loss
	}
	return segments, nil
}

// Stats summarises a built route.
type Stats struct {
	DistanceM      float64   `json:"distance_m"`
	ElevationGainM float64   `json:"elevation_gain_m"`
	ElevationLossM float64   `json:"elevation_loss_m"`
	Segments       int       `json:"segments"`
	Bound          orb.Bound `json:"bound"`
}

// Summarize totals distance and climb over segments.
func Summarize(segments []Segment) Stats {
	s := Stats{Segments: len(segments)}
	if len(segments) == 0 {
		return s
	}
	s.Bound = orb.Bound{Min: segments[0].From, Max: segments[0].From}
	for _, seg := range segments {
		s.DistanceM += seg.DistanceM
		if seg.Rise > 0 {
			s.ElevationGainM += seg.Rise
		} else {
			s.ElevationLossM -= seg.Rise
		}
		s.ElevationGainM += seg.carriedGain
		s.ElevationLossM += seg.carriedLoss
		s.Bound = s.Bound.Extend(seg.To)
	}
	return s
}
