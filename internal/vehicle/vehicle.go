// Package vehicle defines the electric vehicle parameters consumed by the energy
// model, the built-in catalog of common models, and the override spec used to
// derive a run's profile from a catalog entry.
package vehicle

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Profile holds the static parameters of one vehicle. A Profile is treated as
// immutable for the duration of an evaluation run.
type Profile struct {
	Name                 string  `json:"name" yaml:"name"`
	MassKg               float64 `json:"mass_kg" yaml:"mass_kg" validate:"gt=0"`
	CdA                  float64 `json:"cda" yaml:"cda" validate:"gte=0"` // m²
	Crr                  float64 `json:"crr" yaml:"crr" validate:"gte=0"`
	DrivetrainEfficiency float64 `json:"eta_drive" yaml:"eta_drive" validate:"gt=0,lte=1"`
	RegenEfficiency      float64 `json:"regen_eff" yaml:"regen_eff" validate:"gte=0,lte=1"`
	AuxPowerKW           float64 `json:"aux_power_kw" yaml:"aux_power_kw" validate:"gte=0"`
	BatteryKWh           float64 `json:"battery_kwh" yaml:"battery_kwh" validate:"gt=0"`
}

// Validate checks the physical bounds of every parameter.
func (p Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("vehicle %q: %w", p.Name, err)
	}
	return nil
}

// WithPassengers returns a copy of p with count occupants of avgKg each folded
// into the vehicle mass.
func (p Profile) WithPassengers(count int, avgKg float64) Profile {
	if count > 0 && avgKg > 0 {
		p.MassKg += float64(count) * avgKg
	}
	return p
}

// Spec selects a catalog profile by model name and optionally overrides
// individual parameters. Nil fields keep the catalog value.
//
// An empty Model resolves to the custom defaults.
type Spec struct {
	Model                string   `json:"model" yaml:"model"`
	MassKg               *float64 `json:"mass_kg,omitempty" yaml:"mass_kg,omitempty"`
	CdA                  *float64 `json:"cda,omitempty" yaml:"cda,omitempty"`
	Crr                  *float64 `json:"crr,omitempty" yaml:"crr,omitempty"`
	DrivetrainEfficiency *float64 `json:"eta_drive,omitempty" yaml:"eta_drive,omitempty"`
	RegenEfficiency      *float64 `json:"regen_eff,omitempty" yaml:"regen_eff,omitempty"`
	AuxPowerKW           *float64 `json:"aux_power_kw,omitempty" yaml:"aux_power_kw,omitempty"`
	BatteryKWh           *float64 `json:"battery_kwh,omitempty" yaml:"battery_kwh,omitempty"`
}

// Resolve looks up the catalog entry named by s.Model, applies the overrides,
// and validates the result.
func (s Spec) Resolve() (Profile, error) {
	model := s.Model
	if model == "" {
		model = CustomModel
	}
	p, err := Lookup(model)
	if err != nil {
		return Profile{}, err
	}

	override := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	override(&p.MassKg, s.MassKg)
	override(&p.CdA, s.CdA)
	override(&p.Crr, s.Crr)
	override(&p.DrivetrainEfficiency, s.DrivetrainEfficiency)
	override(&p.RegenEfficiency, s.RegenEfficiency)
	override(&p.AuxPowerKW, s.AuxPowerKW)
	override(&p.BatteryKWh, s.BatteryKWh)

	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}
