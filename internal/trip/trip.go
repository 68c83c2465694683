// Package trip aggregates per-segment energy and time over a whole route under
// a speed profile.
package trip

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/floats"

	"github.com/cxd309/ecospeed/internal/physics"
	"github.com/cxd309/ecospeed/internal/route"
)

// ErrNonFinite is returned when aggregation produces NaN or infinite totals.
var ErrNonFinite = errors.New("non-finite energy or time")

// SpeedProfile is either a constant cruise speed or one speed per segment.
type SpeedProfile struct {
	Constant   float64   `json:"constant,omitempty"`
	PerSegment []float64 `json:"per_segment,omitempty"`
}

// Uniform returns a constant-speed profile.
func Uniform(kmh float64) SpeedProfile { return SpeedProfile{Constant: kmh} }

// PerSegment returns a profile assigning speeds[i] to segment i.
func PerSegment(speeds []float64) SpeedProfile { return SpeedProfile{PerSegment: speeds} }

// resolve returns the speed lookup for n segments. A per-segment list whose
// length differs from n degrades to its first element as a constant speed;
// the second return value reports that fallback.
func (p SpeedProfile) resolve(n int) (func(i int) float64, bool) {
	if p.PerSegment == nil {
		return func(int) float64 { return p.Constant }, false
	}
	if len(p.PerSegment) == n {
		return func(i int) float64 { return p.PerSegment[i] }, false
	}
	var first float64
	if len(p.PerSegment) > 0 {
		first = p.PerSegment[0]
	}
	return func(int) float64 { return first }, true
}

// SegmentResult is the evaluated state of one segment.
type SegmentResult struct {
	Index     int       `json:"index"`
	DistanceM float64   `json:"distance_m"`
	Slope     float64   `json:"slope"`
	SpeedKmh  float64   `json:"speed_kmh"`
	EnergyWh  float64   `json:"energy_wh"`
	TimeH     float64   `json:"time_h"`
	From      orb.Point `json:"from"`
	To        orb.Point `json:"to"`
}

// Result is the aggregate over a route.
type Result struct {
	EnergyWh   float64         `json:"energy_wh"`
	TimeH      float64         `json:"time_h"`
	DistanceKm float64         `json:"distance_km"`
	FellBack   bool            `json:"fell_back,omitempty"` // profile length mismatch
	Segments   []SegmentResult `json:"segments,omitempty"`
}

// Aggregate evaluates model on every segment in order at the profile's speed
// and sums the results.
func Aggregate(segments []route.Segment, profile SpeedProfile, model physics.EnergyModel) (Result, error) {
	speedAt, fellBack := profile.resolve(len(segments))

	res := Result{FellBack: fellBack, Segments: make([]SegmentResult, len(segments))}
	energy := make([]float64, len(segments))
	hours := make([]float64, len(segments))
	dist := make([]float64, len(segments))

	for i, seg := range segments {
		v := speedAt(i)
		e, h := model.SegmentEnergy(seg.DistanceM, seg.Slope, v)
		energy[i], hours[i], dist[i] = e, h, seg.DistanceM
		res.Segments[i] = SegmentResult{
			Index:     seg.Index,
			DistanceM: seg.DistanceM,
			Slope:     seg.Slope,
			SpeedKmh:  v,
			EnergyWh:  e,
			TimeH:     h,
			From:      seg.From,
			To:        seg.To,
		}
	}

	res.EnergyWh = floats.Sum(energy)
	res.TimeH = floats.Sum(hours)
	res.DistanceKm = floats.Sum(dist) / 1000

	if !finite(res.EnergyWh) || !finite(res.TimeH) {
		return Result{}, ErrNonFinite
	}
	return res, nil
}

// AverageSpeedKmh is distance over time, or 0 for a zero-time trip.
func (r Result) AverageSpeedKmh() float64 {
	if r.TimeH <= 0 {
		return 0
	}
	return r.DistanceKm / r.TimeH
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
