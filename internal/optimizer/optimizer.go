// Package optimizer selects the cruise speed that minimises energy under a
// travel-time tolerance, or a weighted energy/time score.
package optimizer

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// ErrNoCandidates is returned when there is nothing to select from.
var ErrNoCandidates = errors.New("no candidate evaluations")

// Objective names the selection rule.
type Objective string

const (
	MinimizeEnergy Objective = "min_energy"
	WeightedScore  Objective = "weighted"
)

// Evaluation is the outcome of simulating the route at one candidate cruise speed.
type Evaluation struct {
	CruiseSpeedKmh  float64 `json:"cruise_speed_kmh"`
	EnergyWh        float64 `json:"energy_wh"`
	TimeH           float64 `json:"time_h"`
	DistanceKm      float64 `json:"distance_km"`
	AverageSpeedKmh float64 `json:"average_actual_speed_kmh"`
}

// Options parameterises Select.
type Options struct {
	Objective    Objective
	TolerancePct float64 // allowed time increase over the fastest candidate, %
	Lambda       float64 // time weight for WeightedScore
}

// Selection is the result of Select.
type Selection struct {
	Best          Evaluation   `json:"best"`
	Fastest       Evaluation   `json:"fastest"`
	Feasible      []Evaluation `json:"feasible"`
	MaxAllowedH   float64      `json:"max_allowed_time_h"`
	EnergyDeltaWh float64      `json:"energy_delta_wh"` // best - fastest
	TimeDeltaH    float64      `json:"time_delta_h"`    // best - fastest
}

// Candidates de-duplicates and sorts speeds, then keeps those not above
// userMaxKmh. If none remain the set collapses to {userMaxKmh}.
func Candidates(speeds []float64, userMaxKmh float64) []float64 {
	seen := make(map[float64]bool, len(speeds))
	var out []float64
	for _, s := range speeds {
		if s <= userMaxKmh && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return []float64{userMaxKmh}
	}
	sort.Float64s(out)
	return out
}

// Select picks the best evaluation under opts. Ties resolve to the earliest
// evaluation in the input order.
func Select(evals []Evaluation, opts Options) (Selection, error) {
	if len(evals) == 0 {
		return Selection{}, ErrNoCandidates
	}

	times := make([]float64, len(evals))
	for i, e := range evals {
		times[i] = e.TimeH
	}
	fastest := evals[floats.MinIdx(times)]
	maxAllowed := fastest.TimeH * (1 + opts.TolerancePct/100)

	feasible := make([]Evaluation, 0, len(evals))
	for _, e := range evals {
		if e.TimeH <= maxAllowed {
			feasible = append(feasible, e)
		}
	}
	if len(feasible) == 0 {
		feasible = append(feasible, evals...)
	}

	var best Evaluation
	switch opts.Objective {
	case MinimizeEnergy, "":
		best = feasible[floats.MinIdx(energies(feasible))]
	case WeightedScore:
		best = feasible[floats.MinIdx(scores(feasible, opts.Lambda))]
	default:
		return Selection{}, fmt.Errorf("unknown objective %q", opts.Objective)
	}

	return Selection{
		Best:          best,
		Fastest:       fastest,
		Feasible:      feasible,
		MaxAllowedH:   maxAllowed,
		EnergyDeltaWh: best.EnergyWh - fastest.EnergyWh,
		TimeDeltaH:    best.TimeH - fastest.TimeH,
	}, nil
}

func energies(evals []Evaluation) []float64 {
	out := make([]float64, len(evals))
	for i, e := range evals {
		out[i] = e.EnergyWh
	}
	return out
}

// scores min-max normalises energy and time independently across evals and
// returns energy + lambda*time for each.
func scores(evals []Evaluation, lambda float64) []float64 {
	e := energies(evals)
	t := make([]float64, len(evals))
	for i, ev := range evals {
		t[i] = ev.TimeH
	}
	normalize(e)
	normalize(t)

	out := make([]float64, len(evals))
	floats.AddScaledTo(out, e, lambda, t)
	return out
}

// normalize rescales s in place to [0, 1]; a constant slice becomes all zeros.
func normalize(s []float64) {
	lo, hi := floats.Min(s), floats.Max(s)
	if lo == hi {
		for i := range s {
			s[i] = 0
		}
		return
	}
	for i, v := range s {
		s[i] = (v - lo) / (hi - lo)
	}
}
