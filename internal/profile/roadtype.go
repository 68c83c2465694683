// Package profile assigns a target speed to every geometric segment of a route:
// legal limits derived from road classification, plus local slowdowns at
// roundabouts and tight turns.
package profile

import (
	"math"
	"strings"

	"github.com/cxd309/ecospeed/internal/route"
)

const (
	// UrbanDefaultKmh applies to unclassified or unrecognised roads.
	UrbanDefaultKmh = 50.0
	// FloorKmh is the lowest speed the profiler will ever assign.
	FloorKmh = 30.0
)

// roadClass maps road-type substrings to a legal limit. capped classes are
// additionally bounded by the user's maximum speed.
type roadClass struct {
	keywords []string
	limitKmh float64
	capped   bool
}

// Order matters: the first class with a matching keyword wins.
var roadClasses = []roadClass{
	{keywords: []string{"motorway"}, limitKmh: 130, capped: true},
	{keywords: []string{"trunk"}, limitKmh: 110, capped: true},
	{keywords: []string{"primary", "secondary", "tertiary"}, limitKmh: 90, capped: true},
	{keywords: []string{"unclassified", "residential"}, limitKmh: 50},
	{keywords: []string{"service"}, limitKmh: 30},
}

// LegalLimit returns the speed limit for roadType and whether the type was
// recognised. Unrecognised or empty types get UrbanDefaultKmh.
func LegalLimit(roadType string, userMaxKmh float64) (float64, bool) {
	rt := strings.ToLower(roadType)
	if rt == "" {
		return UrbanDefaultKmh, false
	}
	for _, c := range roadClasses {
		for _, kw := range c.keywords {
			if strings.Contains(rt, kw) {
				if c.capped {
					return math.Min(c.limitKmh, userMaxKmh), true
				}
				return c.limitKmh, true
			}
		}
	}
	return UrbanDefaultKmh, false
}

// Profiler derives per-segment speeds from road metadata for one candidate
// cruise speed. The zero value is not useful; set UserMaxKmh.
type Profiler struct {
	UserMaxKmh       float64
	MinSpeedDeltaKmh float64
}

// TargetSpeed clamps candidate into [max(FloorKmh, limit-delta), limit].
func (p Profiler) TargetSpeed(candidateKmh, limitKmh float64) float64 {
	lo := math.Max(FloorKmh, limitKmh-p.MinSpeedDeltaKmh)
	return math.Min(math.Max(candidateKmh, lo), limitKmh)
}

// Profile returns one speed per segment for candidateKmh. The second return
// value is false when no group carries a recognisable road type; every segment
// then gets candidateKmh unchanged.
func (p Profiler) Profile(segments []route.Segment, groups []route.SegmentMeta, candidateKmh float64) ([]float64, bool) {
	speeds := make([]float64, len(segments))

	owners := GroupsBySegment(segments, groups)
	if owners == nil || !HasRoadTypes(groups) {
		for i := range speeds {
			speeds[i] = candidateKmh
		}
		return speeds, false
	}

	limits := make([]float64, len(groups))
	for i, g := range groups {
		limits[i], _ = LegalLimit(g.Road(), p.UserMaxKmh)
	}
	for i, g := range owners {
		speeds[i] = p.TargetSpeed(candidateKmh, limits[g])
	}
	return speeds, true
}

// HasRoadTypes reports whether any group carries a recognisable road type.
func HasRoadTypes(groups []route.SegmentMeta) bool {
	for _, g := range groups {
		if _, ok := LegalLimit(g.Road(), 0); ok {
			return true
		}
	}
	return false
}

// Covers reports whether Profile will use road metadata for segments rather
// than falling back to a uniform speed.
func Covers(segments []route.Segment, groups []route.SegmentMeta) bool {
	return HasRoadTypes(groups) && GroupsBySegment(segments, groups) != nil
}

// GroupsBySegment associates each segment with the metadata group covering its
// midpoint. The groups' cumulative distances are rescaled so their total equals
// the geometric route length. Returns nil if groups carry no distance.
func GroupsBySegment(segments []route.Segment, groups []route.SegmentMeta) []int {
	var metaTotal, geoTotal float64
	ends := make([]float64, len(groups))
	for i, g := range groups {
		metaTotal += g.Distance()
		ends[i] = metaTotal
	}
	for _, s := range segments {
		geoTotal += s.DistanceM
	}
	if metaTotal <= 0 || len(groups) == 0 {
		return nil
	}

	scale := geoTotal / metaTotal
	owners := make([]int, len(segments))
	var cum float64
	g := 0
	for i, s := range segments {
		mid := cum + s.DistanceM/2
		cum += s.DistanceM
		for g < len(groups)-1 && ends[g]*scale < mid {
			g++
		}
		owners[i] = g
	}
	return owners
}
