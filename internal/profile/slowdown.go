package profile

import (
	"math"
	"strings"

	"github.com/cxd309/ecospeed/internal/route"
)

// EventKind classifies a slowdown.
type EventKind string

const (
	KindRoundabout EventKind = "roundabout"
	KindSharpTurn  EventKind = "sharp_turn"
)

const (
	// SlowdownFactor scales the speed of the segment hosting a slowdown.
	SlowdownFactor = 0.7
	// SharpTurnMaxM is the step length below which a turn counts as tight.
	SharpTurnMaxM = 100.0
)

// Event is a maneuver requiring a local speed reduction. SegmentIndex is -1
// until the event is mapped onto the geometry.
type Event struct {
	Kind         EventKind `json:"kind"`
	StepIndex    int       `json:"step_index"`
	SegmentIndex int       `json:"segment_index"`
}

// Detection is the result of scanning a step list.
type Detection struct {
	Intersections []int   `json:"intersections"`
	Events        []Event `json:"events"`
}

// English and French instruction fragments, matched against lower-cased text.
var (
	junctionKeywords = []string{
		"turn", "tournez", "tourner",
		"merge", "insérez", "rejoignez",
		"fork", "bifurquez", "embranchement", "bifurcation",
		"exit", "sortie", "sortez",
		"u-turn", "demi-tour",
		"keep left", "keep right", "serrez",
		"junction", "intersection", "carrefour", "crossing", "croisement",
	}
	roundaboutKeywords = []string{"roundabout", "traffic circle", "rond-point", "rond point", "giratoire"}
)

// turnManeuvers are the codes that can produce a sharp-turn slowdown.
var turnManeuvers = map[route.Maneuver]bool{
	route.ManeuverLeft:        true,
	route.ManeuverRight:       true,
	route.ManeuverSharpLeft:   true,
	route.ManeuverSharpRight:  true,
	route.ManeuverSlightLeft:  true,
	route.ManeuverSlightRight: true,
	route.ManeuverUTurn:       true,
}

// Detect flags intersections and slowdown events among steps.
//
// Steps with a known maneuver code are classified from the code; the keyword
// heuristic only runs on steps whose code is unknown.
func Detect(steps []route.Step) Detection {
	d := Detection{Intersections: []int{}, Events: []Event{}}
	for i, s := range steps {
		var junction, roundabout bool
		if s.Maneuver.Known() {
			junction = isJunctionManeuver(s.Maneuver)
			roundabout = s.Maneuver == route.ManeuverEnterRoundabout || s.Maneuver == route.ManeuverExitRoundabout
		} else {
			text := strings.ToLower(s.Instruction)
			roundabout = containsAny(text, roundaboutKeywords)
			junction = roundabout || containsAny(text, junctionKeywords)
		}

		if junction {
			d.Intersections = append(d.Intersections, i)
		}
		if roundabout {
			d.Events = append(d.Events, Event{Kind: KindRoundabout, StepIndex: i, SegmentIndex: -1})
		} else if turnManeuvers[s.Maneuver] && s.DistanceM < SharpTurnMaxM {
			d.Events = append(d.Events, Event{Kind: KindSharpTurn, StepIndex: i, SegmentIndex: -1})
		}
	}
	return d
}

func isJunctionManeuver(m route.Maneuver) bool {
	switch m {
	case route.ManeuverStraight, route.ManeuverGoal, route.ManeuverDepart:
		return false
	}
	return true
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// MapEvents places each event on a segment by step-index proportion:
// floor(step / stepCount × segmentCount). This is independent of the
// distance-based mapping in GroupsBySegment and may disagree with it.
func MapEvents(events []Event, stepCount, segmentCount int) []Event {
	out := make([]Event, len(events))
	for i, e := range events {
		e.SegmentIndex = -1
		if stepCount > 0 && segmentCount > 0 {
			idx := int(float64(e.StepIndex) / float64(stepCount) * float64(segmentCount))
			e.SegmentIndex = min(max(idx, 0), segmentCount-1)
		}
		out[i] = e
	}
	return out
}

// ApplySlowdowns returns a copy of speeds with every mapped segment slowed by
// SlowdownFactor. The FloorKmh floor never raises a segment above its original
// speed, and a segment hosting several events is slowed once.
func ApplySlowdowns(speeds []float64, events []Event) []float64 {
	out := append([]float64(nil), speeds...)
	done := make(map[int]bool, len(events))
	for _, e := range events {
		i := e.SegmentIndex
		if i < 0 || i >= len(out) || done[i] {
			continue
		}
		done[i] = true
		out[i] = math.Max(out[i]*SlowdownFactor, math.Min(out[i], FloorKmh))
	}
	return out
}
