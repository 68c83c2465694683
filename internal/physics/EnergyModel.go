// Package physics defines the EnergyModel interface for per-segment traction
// energy, along with the built-in longitudinal dynamics implementation.
//
// The route aggregator only depends on EnergyModel, so swapping in a different
// physics model never requires changes to the aggregation or optimisation code.
package physics

// EnergyModel is the contract every segment energy implementation must satisfy.
// Distances are in metres, speeds in km/h, slopes are dimensionless rise/run.
type EnergyModel interface {
	// SegmentEnergy returns the electrical energy (Wh, negative when the segment
	// recovers more than the auxiliaries draw) and the travel time (hours) for
	// one segment driven at a constant speed.
	// Returns (0, 0) when distanceM ≤ 0 or speedKmh ≤ 0.
	SegmentEnergy(distanceM, slope, speedKmh float64) (energyWh, timeH float64)
}

// Environment holds the ambient conditions for one evaluation run.
type Environment struct {
	AirDensity   float64 `json:"air_density" yaml:"air_density" validate:"gt=0"` // kg/m³
	HeadwindMS   float64 `json:"headwind_ms" yaml:"headwind_ms"`                 // positive = headwind
	AmbientTempC float64 `json:"ambient_temp_c" yaml:"ambient_temp_c"`
	Rain         bool    `json:"rain" yaml:"rain"`
}

// StandardEnvironment is sea-level air at the 20 °C comfort baseline, dry and calm.
var StandardEnvironment = Environment{AirDensity: 1.225, AmbientTempC: ComfortTempC}
