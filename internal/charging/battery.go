package charging

// Level classifies the charge left on arrival.
type Level string

const (
	LevelOK       Level = "ok"
	LevelModerate Level = "moderate" // below 50 %
	LevelLow      Level = "low"      // below 20 %
)

// Load classifies the trip energy against the full pack.
type Load string

const (
	LoadNormal     Load = "normal"
	LoadRisky      Load = "risky"      // above 80 % of capacity
	LoadImpossible Load = "impossible" // above capacity
)

// Assessment is the battery state after the trip, assuming no charging en route.
type Assessment struct {
	RemainingKWh float64 `json:"remaining_kwh"`
	RemainingPct float64 `json:"remaining_pct"`
	Level        Level   `json:"level"`
	Load         Load    `json:"load"`
}

// Assess computes the arrival state for a trip using neededKWh from a pack of
// capacityKWh charged to startPct.
func Assess(capacityKWh, neededKWh, startPct float64) Assessment {
	a := Assessment{RemainingKWh: capacityKWh*startPct/100 - neededKWh}
	if capacityKWh > 0 {
		a.RemainingPct = a.RemainingKWh / capacityKWh * 100
	}

	switch {
	case a.RemainingPct < 20:
		a.Level = LevelLow
	case a.RemainingPct < 50:
		a.Level = LevelModerate
	default:
		a.Level = LevelOK
	}

	switch {
	case neededKWh > capacityKWh:
		a.Load = LoadImpossible
	case neededKWh > 0.8*capacityKWh:
		a.Load = LoadRisky
	default:
		a.Load = LoadNormal
	}
	return a
}
