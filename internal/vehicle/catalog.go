package vehicle

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownModel is returned by Lookup for a model outside the catalog.
var ErrUnknownModel = errors.New("unknown vehicle model")

// CustomModel is the catalog key for the generic user-tunable profile.
const CustomModel = "custom"

var catalog = map[string]Profile{
	"Tesla Model 3":   {MassKg: 1850, CdA: 0.58, Crr: 0.008, DrivetrainEfficiency: 0.95, RegenEfficiency: 0.85, AuxPowerKW: 2.0, BatteryKWh: 75},
	"Tesla Model Y":   {MassKg: 2000, CdA: 0.62, Crr: 0.008, DrivetrainEfficiency: 0.95, RegenEfficiency: 0.85, AuxPowerKW: 2.2, BatteryKWh: 75},
	"Audi Q4 e-tron":  {MassKg: 2100, CdA: 0.70, Crr: 0.009, DrivetrainEfficiency: 0.92, RegenEfficiency: 0.80, AuxPowerKW: 2.5, BatteryKWh: 82},
	"BMW iX3":         {MassKg: 2180, CdA: 0.68, Crr: 0.009, DrivetrainEfficiency: 0.93, RegenEfficiency: 0.82, AuxPowerKW: 2.3, BatteryKWh: 80},
	"Mercedes EQC":    {MassKg: 2425, CdA: 0.72, Crr: 0.010, DrivetrainEfficiency: 0.91, RegenEfficiency: 0.78, AuxPowerKW: 2.8, BatteryKWh: 80},
	"Volkswagen ID.4": {MassKg: 2120, CdA: 0.66, Crr: 0.009, DrivetrainEfficiency: 0.90, RegenEfficiency: 0.75, AuxPowerKW: 2.0, BatteryKWh: 77},
	"Renault Zoe":     {MassKg: 1500, CdA: 0.65, Crr: 0.010, DrivetrainEfficiency: 0.90, RegenEfficiency: 0.70, AuxPowerKW: 1.5, BatteryKWh: 52},
	"BMW i3":          {MassKg: 1200, CdA: 0.50, Crr: 0.008, DrivetrainEfficiency: 0.92, RegenEfficiency: 0.80, AuxPowerKW: 1.8, BatteryKWh: 42},
	"Nissan Leaf":     {MassKg: 1600, CdA: 0.68, Crr: 0.010, DrivetrainEfficiency: 0.88, RegenEfficiency: 0.75, AuxPowerKW: 1.7, BatteryKWh: 40},
	"Hyundai IONIQ 5": {MassKg: 1950, CdA: 0.64, Crr: 0.008, DrivetrainEfficiency: 0.94, RegenEfficiency: 0.83, AuxPowerKW: 2.1, BatteryKWh: 73},
	"Kia EV6":         {MassKg: 1980, CdA: 0.63, Crr: 0.008, DrivetrainEfficiency: 0.94, RegenEfficiency: 0.83, AuxPowerKW: 2.1, BatteryKWh: 77},
	CustomModel:       {MassKg: 1900, CdA: 0.62, Crr: 0.010, DrivetrainEfficiency: 0.90, RegenEfficiency: 0.60, AuxPowerKW: 2.0, BatteryKWh: 60},
}

// Lookup returns the catalog profile for model. Matching is case-insensitive.
func Lookup(model string) (Profile, error) {
	if p, ok := catalog[model]; ok {
		p.Name = model
		return p, nil
	}
	for name, p := range catalog {
		if strings.EqualFold(name, model) {
			p.Name = name
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w %q", ErrUnknownModel, model)
}

// Catalog returns every built-in profile sorted by name.
func Catalog() []Profile {
	out := make([]Profile, 0, len(catalog))
	for name, p := range catalog {
		p.Name = name
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
