// Package charging estimates how many charging stops a trip needs from its
// energy requirement and the battery state. The estimate is a capacity budget,
// not a routed charging plan.
package charging

import "math"

const (
	// SafetyMarginFraction of capacity is always reserved and never spent.
	SafetyMarginFraction = 0.10
	// InfeasibleStops marks a plan whose usable capacity per leg is not positive.
	InfeasibleStops = 999
)

// Plan is the charging-stop estimate for one trip.
type Plan struct {
	NumStops                    int     `json:"num_stops"`
	UsableBatteryKWh            float64 `json:"usable_battery_kwh"`
	AvailableBeforeFirstStopKWh float64 `json:"energy_available_before_first_stop_kwh"`
	SafetyMarginKWh             float64 `json:"safety_margin_kwh"`
}

// Feasible reports whether the plan is not the InfeasibleStops sentinel.
func (p Plan) Feasible() bool { return p.NumStops != InfeasibleStops }

// Compute returns the plan for a trip needing neededKWh, departing at startPct
// and planning to arrive no lower than endPct (both 0-100).
func Compute(capacityKWh, neededKWh, startPct, endPct float64) Plan {
	margin := SafetyMarginFraction * capacityKWh
	usable := capacityKWh - margin
	if usable <= 0 {
		return Plan{NumStops: InfeasibleStops, UsableBatteryKWh: usable, SafetyMarginKWh: margin}
	}

	available := capacityKWh*startPct/100 - math.Max(margin, capacityKWh*endPct/100)
	p := Plan{UsableBatteryKWh: usable, AvailableBeforeFirstStopKWh: available, SafetyMarginKWh: margin}
	if neededKWh <= available {
		return p
	}
	p.NumStops = max(int(math.Ceil((neededKWh-available)/usable)), 0)
	return p
}
