package optimizer

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

// sweep builds evaluations over a 100 km route where energy rises and time
// falls with speed.
func sweep(speeds ...float64) []Evaluation {
	evals := make([]Evaluation, len(speeds))
	for i, s := range speeds {
		evals[i] = Evaluation{
			CruiseSpeedKmh:  s,
			EnergyWh:        100 * (80 + 0.01*s*s),
			TimeH:           100 / s,
			DistanceKm:      100,
			AverageSpeedKmh: s,
		}
	}
	return evals
}

func TestCandidates(t *testing.T) {
	tests := []struct {
		name    string
		speeds  []float64
		userMax float64
		want    []float64
	}{
		{"filtered by max", []float64{80, 90, 100, 110, 120, 130}, 110, []float64{80, 90, 100, 110}},
		{"dedup and sort", []float64{120, 90, 90, 80}, 130, []float64{80, 90, 120}},
		{"none qualify", []float64{120, 130}, 90, []float64{90}},
		{"empty", nil, 100, []float64{100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Candidates(tt.speeds, tt.userMax); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v got %v", tt.want, got)
			}
		})
	}
}

func TestSelectMinimizeEnergyRespectsTolerance(t *testing.T) {
	evals := sweep(80, 90, 100, 110, 120, 130)
	sel, err := Select(evals, Options{Objective: MinimizeEnergy, TolerancePct: 15})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 100/130 h × 1.15 admits only 120 and 130 km/h.
	if sel.Best.CruiseSpeedKmh != 120 {
		t.Fatalf("expected 120 km/h, got %v", sel.Best.CruiseSpeedKmh)
	}
	if sel.Fastest.CruiseSpeedKmh != 130 {
		t.Fatalf("expected fastest 130 km/h, got %v", sel.Fastest.CruiseSpeedKmh)
	}
	if len(sel.Feasible) != 2 {
		t.Fatalf("expected 2 feasible candidates, got %d", len(sel.Feasible))
	}
	for _, e := range sel.Feasible {
		if e.TimeH > sel.MaxAllowedH {
			t.Fatalf("infeasible candidate %+v selected into feasible set", e)
		}
	}
	if sel.EnergyDeltaWh >= 0 || sel.TimeDeltaH <= 0 {
		t.Fatalf("expected energy saving and added time, got %+v", sel)
	}
	wantDT := 100.0/120 - 100.0/130
	if math.Abs(sel.TimeDeltaH-wantDT) > 1e-12 {
		t.Fatalf("expected time delta %v got %v", wantDT, sel.TimeDeltaH)
	}
}

func TestSelectWideToleranceChoosesSlowest(t *testing.T) {
	sel, err := Select(sweep(80, 90, 100, 110, 120, 130), Options{Objective: MinimizeEnergy, TolerancePct: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.Best.CruiseSpeedKmh != 80 {
		t.Fatalf("expected 80 km/h, got %v", sel.Best.CruiseSpeedKmh)
	}
}

func TestSelectWeightedScore(t *testing.T) {
	evals := sweep(80, 90, 100, 110, 120, 130)
	tests := []struct {
		name   string
		lambda float64
		want   float64
	}{
		{"time heavy", 2, 130},
		{"energy heavy", 0.5, 120},
		{"tie goes to first", 1, 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := Select(evals, Options{Objective: WeightedScore, TolerancePct: 15, Lambda: tt.lambda})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sel.Best.CruiseSpeedKmh != tt.want {
				t.Fatalf("expected %v km/h, got %v", tt.want, sel.Best.CruiseSpeedKmh)
			}
		})
	}
}

func TestSelectTieBreakFirst(t *testing.T) {
	evals := []Evaluation{
		{CruiseSpeedKmh: 90, EnergyWh: 500, TimeH: 1},
		{CruiseSpeedKmh: 100, EnergyWh: 500, TimeH: 1},
	}
	sel, err := Select(evals, Options{Objective: MinimizeEnergy})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.Best.CruiseSpeedKmh != 90 || sel.Fastest.CruiseSpeedKmh != 90 {
		t.Fatalf("expected first candidate to win ties, got %+v", sel)
	}

	// Identical candidates normalise to zero; the first still wins.
	sel, err = Select(evals, Options{Objective: WeightedScore, Lambda: 3})
	if err != nil || sel.Best.CruiseSpeedKmh != 90 {
		t.Fatalf("weighted tie: %v %+v", err, sel.Best)
	}
}

func TestSelectEmptyFeasibleFallsBack(t *testing.T) {
	sel, err := Select(sweep(80, 100, 130), Options{Objective: MinimizeEnergy, TolerancePct: -50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sel.Feasible) != 3 || sel.Best.CruiseSpeedKmh != 80 {
		t.Fatalf("expected fallback to all candidates, got %+v", sel)
	}
}

func TestSelectErrors(t *testing.T) {
	if _, err := Select(nil, Options{}); !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
	if _, err := Select(sweep(90), Options{Objective: "fastest"}); err == nil {
		t.Fatal("expected error for unknown objective")
	}
}
