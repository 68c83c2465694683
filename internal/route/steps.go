package route

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Maneuver is the structured turn-instruction code of a step. The zero value
// is ManeuverUnknown; the remaining values follow the OpenRouteService step
// type enumeration, see ManeuverFromCode.
type Maneuver int

const (
	ManeuverUnknown Maneuver = iota

	ManeuverLeft
	ManeuverRight
	ManeuverSharpLeft
	ManeuverSharpRight
	ManeuverSlightLeft
	ManeuverSlightRight
	ManeuverStraight
	ManeuverEnterRoundabout
	ManeuverExitRoundabout
	ManeuverUTurn
	ManeuverGoal
	ManeuverDepart
	ManeuverKeepLeft
	ManeuverKeepRight
)

// ManeuverFromCode maps an OpenRouteService step type (0 = left ... 13 = keep
// right) to a Maneuver. Fractional or out-of-range codes are unknown.
func ManeuverFromCode(code float64) Maneuver {
	if code < 0 || code > float64(ManeuverKeepRight-ManeuverLeft) || code != math.Trunc(code) {
		return ManeuverUnknown
	}
	return ManeuverLeft + Maneuver(code)
}

// Known reports whether m is a recognised code.
func (m Maneuver) Known() bool {
	return m >= ManeuverLeft && m <= ManeuverKeepRight
}

// Step is one routing instruction.
type Step struct {
	Instruction string   `json:"instruction"`
	Maneuver    Maneuver `json:"maneuver"`
	DistanceM   float64  `json:"distance_m"`
	RoadType    string   `json:"road_type,omitempty"` // road_type or way_type; empty when absent
}

// SegmentMeta is a group of steps covering one stretch of the route, used only
// for speed and slowdown mapping. It is unrelated to the geometric Segment.
type SegmentMeta struct {
	DistanceM float64 `json:"distance_m"`
	RoadType  string  `json:"road_type,omitempty"`
	Steps     []Step  `json:"steps"`
}

// Distance returns the group's own distance, or the sum of its steps when the
// group carries none.
func (m SegmentMeta) Distance() float64 {
	if m.DistanceM > 0 {
		return m.DistanceM
	}
	var d float64
	for _, s := range m.Steps {
		d += s.DistanceM
	}
	return d
}

// Road returns the group's road type, falling back to the first step that has one.
func (m SegmentMeta) Road() string {
	if m.RoadType != "" {
		return m.RoadType
	}
	for _, s := range m.Steps {
		if s.RoadType != "" {
			return s.RoadType
		}
	}
	return ""
}

// FlattenSteps concatenates the steps of every group in order.
func FlattenSteps(groups []SegmentMeta) []Step {
	var steps []Step
	for _, g := range groups {
		steps = append(steps, g.Steps...)
	}
	return steps
}

// rawStep accepts the field spellings seen across routing providers.
type rawStep struct {
	Instruction  string          `json:"instruction"`
	Text         string          `json:"text"`
	Type         *float64        `json:"type"`
	ManeuverType *float64        `json:"maneuver_type"`
	Distance     float64         `json:"distance"`
	DistanceM    float64         `json:"distance_m"`
	RoadType     json.RawMessage `json:"road_type"`
	WayType      json.RawMessage `json:"way_type"`
}

type rawGroup struct {
	Distance  float64         `json:"distance"`
	DistanceM float64         `json:"distance_m"`
	RoadType  json.RawMessage `json:"road_type"`
	WayType   json.RawMessage `json:"way_type"`
	Steps     []rawStep       `json:"steps"`
}

// ParseMetadata parses a routing payload into typed step groups. Accepted
// shapes are a bare JSON array of groups, or an object with a "segments" array
// (the OpenRouteService directions layout). Empty input yields no groups.
func ParseMetadata(data []byte) ([]SegmentMeta, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	var groups []rawGroup
	if data[0] == '[' {
		if err := json.Unmarshal(data, &groups); err != nil {
			return nil, fmt.Errorf("parsing route metadata: %w", err)
		}
	} else {
		var wrapper struct {
			Segments []rawGroup `json:"segments"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("parsing route metadata: %w", err)
		}
		groups = wrapper.Segments
	}

	out := make([]SegmentMeta, len(groups))
	for i, g := range groups {
		out[i] = SegmentMeta{
			DistanceM: firstPositive(g.DistanceM, g.Distance),
			RoadType:  firstString(g.RoadType, g.WayType),
			Steps:     make([]Step, len(g.Steps)),
		}
		for j, s := range g.Steps {
			step := Step{
				Instruction: s.Instruction,
				DistanceM:   firstPositive(s.DistanceM, s.Distance),
				RoadType:    firstString(s.RoadType, s.WayType),
			}
			if step.Instruction == "" {
				step.Instruction = s.Text
			}
			code := s.Type
			if code == nil {
				code = s.ManeuverType
			}
			if code != nil {
				step.Maneuver = ManeuverFromCode(*code)
			}
			out[i].Steps[j] = step
		}
	}
	return out, nil
}

func firstPositive(vals ...float64) float64 {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}

// firstString returns the first raw value that decodes as a non-empty JSON
// string. Numeric provider codes are ignored.
func firstString(raws ...json.RawMessage) string {
	for _, raw := range raws {
		var s string
		if len(raw) > 0 && json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
	}
	return ""
}
