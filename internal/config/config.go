// Package config holds the run configuration: one immutable value built from
// defaults, optionally overlaid by a YAML file or JSON request, and validated
// before any evaluation starts.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"github.com/cxd309/ecospeed/internal/optimizer"
	"github.com/cxd309/ecospeed/internal/physics"
	"github.com/cxd309/ecospeed/internal/vehicle"
)

var validate = validator.New()

// DefaultCandidates is the candidate cruise speed set used when none is given.
var DefaultCandidates = []float64{80, 90, 100, 110, 120, 130}

// Config is the complete configuration surface of one advisory run.
type Config struct {
	Vehicle           vehicle.Spec        `json:"vehicle" yaml:"vehicle"`
	Passengers        Passengers          `json:"passengers" yaml:"passengers"`
	Environment       physics.Environment `json:"environment" yaml:"environment"`
	Speeds            Speeds              `json:"speeds" yaml:"speeds"`
	Objective         Objective           `json:"objective" yaml:"objective"`
	Battery           Battery             `json:"battery" yaml:"battery"`
	Route             RouteOptions        `json:"route" yaml:"route"`
	EnergyPricePerKWh float64             `json:"energy_price_per_kwh" yaml:"energy_price_per_kwh" validate:"gte=0"`
	Breakdown         bool                `json:"breakdown" yaml:"breakdown"`
}

// Passengers are folded into the vehicle mass before evaluation.
type Passengers struct {
	Count       int     `json:"count" yaml:"count" validate:"gte=0"`
	AvgWeightKg float64 `json:"avg_weight_kg" yaml:"avg_weight_kg" validate:"gte=0"`
}

type Speeds struct {
	Candidates       []float64 `json:"candidates" yaml:"candidates" validate:"min=1"`
	UserMaxKmh       float64   `json:"user_max_kmh" yaml:"user_max_kmh" validate:"gt=0"`
	Segmentation     bool      `json:"segmentation" yaml:"segmentation"`
	MinSpeedDeltaKmh float64   `json:"min_speed_delta_kmh" yaml:"min_speed_delta_kmh" validate:"gte=0"`
}

type Objective struct {
	Mode         optimizer.Objective `json:"mode" yaml:"mode" validate:"oneof=min_energy weighted"`
	TolerancePct float64             `json:"time_tolerance_pct" yaml:"time_tolerance_pct" validate:"gte=0"`
	Lambda       float64             `json:"lambda" yaml:"lambda" validate:"gte=0"`
}

// Battery state of charge at departure and the lowest acceptable on arrival, in %.
type Battery struct {
	StartPct float64 `json:"start_pct" yaml:"start_pct" validate:"gte=0,lte=100"`
	EndPct   float64 `json:"end_pct" yaml:"end_pct" validate:"gte=0,lte=100"`
}

type RouteOptions struct {
	// UseElevation false forces a flat elevation profile.
	UseElevation bool `json:"use_elevation" yaml:"use_elevation"`
	// Densify interpolates two-point routes to DensifyPoints points.
	Densify       bool `json:"densify" yaml:"densify"`
	DensifyPoints int  `json:"densify_points" yaml:"densify_points" validate:"gte=0"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Vehicle:     vehicle.Spec{Model: vehicle.CustomModel},
		Passengers:  Passengers{AvgWeightKg: 75},
		Environment: physics.StandardEnvironment,
		Speeds: Speeds{
			Candidates:       append([]float64(nil), DefaultCandidates...),
			UserMaxKmh:       110,
			Segmentation:     true,
			MinSpeedDeltaKmh: 20,
		},
		Objective:         Objective{Mode: optimizer.MinimizeEnergy, TolerancePct: 15, Lambda: 2},
		Battery:           Battery{StartPct: 100, EndPct: 20},
		Route:             RouteOptions{UseElevation: true, DensifyPoints: 10},
		EnergyPricePerKWh: 0.20,
	}
}

// Load reads a YAML file over Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every bounded field.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// VehicleProfile resolves the vehicle spec and folds in the passengers.
func (c Config) VehicleProfile() (vehicle.Profile, error) {
	p, err := c.Vehicle.Resolve()
	if err != nil {
		return vehicle.Profile{}, err
	}
	return p.WithPassengers(c.Passengers.Count, c.Passengers.AvgWeightKg), nil
}

// OptimizerOptions maps the objective section onto optimizer.Options.
func (c Config) OptimizerOptions() optimizer.Options {
	return optimizer.Options{
		Objective:    c.Objective.Mode,
		TolerancePct: c.Objective.TolerancePct,
		Lambda:       c.Objective.Lambda,
	}
}

// ParseSpeeds parses a comma-separated speed list such as "80, 90,100".
func ParseSpeeds(s string) ([]float64, error) {
	var out []float64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid speed %q: %w", field, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no speeds in %q", s)
	}
	return out, nil
}
