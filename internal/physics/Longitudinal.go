package physics

import (
	"math"

	"github.com/cxd309/ecospeed/internal/vehicle"
)

const (
	Gravity = 9.81 // m/s²

	// MaxSlope bounds |rise/run| to suppress near-vertical artifacts from
	// near-duplicate points.
	MaxSlope = 0.5

	// ComfortTempC is the ambient temperature at which climate control draws nothing extra.
	ComfortTempC = 20.0
	// MaxClimatePenaltyKW is reached once ambient departs from ComfortTempC by 20 °C.
	MaxClimatePenaltyKW = 1.5

	rainRollingFactor = 1.15
	minSpeedKmh       = 1e-3
	minSpeedMS        = 1e-6
)

// Longitudinal implements EnergyModel with a steady-speed road-load balance:
// aerodynamic drag, rolling resistance, and grade force at the wheels, converted
// to battery power through the drivetrain (traction) or regeneration (braking)
// efficiency, plus auxiliary and climate-control draw.
type Longitudinal struct {
	Vehicle vehicle.Profile
	Env     Environment
}

func (m Longitudinal) SegmentEnergy(distanceM, slope, speedKmh float64) (float64, float64) {
	return SegmentEnergy(distanceM, slope, speedKmh, m.Vehicle, m.Env)
}

// SegmentEnergy is the pure segment model behind Longitudinal.
func SegmentEnergy(distanceM, slope, speedKmh float64, veh vehicle.Profile, env Environment) (energyWh, timeH float64) {
	if distanceM <= 0 || speedKmh <= 0 {
		return 0, 0
	}

	v := math.Max(speedKmh, minSpeedKmh) * 1000 / 3600
	pWheel := WheelPower(slope, speedKmh, veh, env)

	var pElec float64
	if pWheel >= 0 {
		pElec = pWheel / veh.DrivetrainEfficiency
	} else {
		// Regen is lossy: recovered power never exceeds |pWheel|.
		pElec = pWheel * veh.RegenEfficiency
	}

	pTotal := pElec + (veh.AuxPowerKW+ClimatePenaltyKW(env.AmbientTempC))*1000

	timeH = distanceM / math.Max(v, minSpeedMS) / 3600
	return pTotal * timeH, timeH
}

// WheelPower returns the mechanical power (W) required at the wheels to hold
// speedKmh on the given slope. Negative values mean the vehicle must brake.
func WheelPower(slope, speedKmh float64, veh vehicle.Profile, env Environment) float64 {
	v := math.Max(speedKmh, minSpeedKmh) * 1000 / 3600
	vAir := math.Max(v-env.HeadwindMS, 0)
	theta := math.Atan(ClampSlope(slope))

	crr := veh.Crr
	if env.Rain {
		crr *= rainRollingFactor
	}

	fAero := 0.5 * env.AirDensity * veh.CdA * vAir * vAir
	fRoll := crr * veh.MassKg * Gravity * math.Cos(theta)
	fGrade := veh.MassKg * Gravity * math.Sin(theta)

	// Ground speed, not air speed: the wheels only travel v.
	return (fAero + fRoll + fGrade) * v
}

// ClimatePenaltyKW models added heating/cooling draw as ambient temperature
// departs from ComfortTempC, saturating at MaxClimatePenaltyKW.
func ClimatePenaltyKW(ambientC float64) float64 {
	return math.Min(math.Abs(ambientC-ComfortTempC)/20, 1) * MaxClimatePenaltyKW
}

// ClampSlope bounds s to [-MaxSlope, MaxSlope].
func ClampSlope(s float64) float64 {
	return math.Max(-MaxSlope, math.Min(MaxSlope, s))
}
