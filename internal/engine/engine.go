// Package engine implements the eco-speed advisory pipeline.
//
// A run has two phases:
//
//  1. Preparation - the configuration and vehicle are validated, the route
//     geometry is turned into segments, and step metadata is parsed and scanned
//     for slowdowns. Any failure here aborts the run.
//
//  2. Evaluation - every candidate cruise speed is profiled and aggregated
//     independently (and concurrently); a failing candidate is skipped without
//     affecting the others. The optimizer then picks the best candidate and the
//     charging plan is derived from its energy.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cxd309/ecospeed/internal/charging"
	"github.com/cxd309/ecospeed/internal/optimizer"
	"github.com/cxd309/ecospeed/internal/physics"
	"github.com/cxd309/ecospeed/internal/profile"
	"github.com/cxd309/ecospeed/internal/route"
	"github.com/cxd309/ecospeed/internal/trip"
)

var (
	// ErrNoValidResult is returned when every candidate failed.
	ErrNoValidResult = errors.New("no valid result")
	// ErrInvalidSpeed is returned for a non-positive or non-finite candidate speed.
	ErrInvalidSpeed = errors.New("invalid cruise speed")
)

// NewAdvisor validates in and prepares the route for evaluation.
func NewAdvisor(in Input, opts ...Option) (*Advisor, error) {
	a := &Advisor{
		cfg:     in.Config,
		log:     zap.NewNop().Sugar(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(a)
	}

	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	veh, err := a.cfg.VehicleProfile()
	if err != nil {
		return nil, fmt.Errorf("resolving vehicle: %w", err)
	}
	a.vehicle = veh
	a.model = physics.Longitudinal{Vehicle: veh, Env: a.cfg.Environment}
	a.profiler = profile.Profiler{
		UserMaxKmh:       a.cfg.Speeds.UserMaxKmh,
		MinSpeedDeltaKmh: a.cfg.Speeds.MinSpeedDeltaKmh,
	}

	geom := route.ParseCoordinates(in.Route.Coordinates)
	densified := false
	if a.cfg.Route.Densify {
		dense := geom.Densify(a.cfg.Route.DensifyPoints)
		densified = len(dense) != len(geom)
		geom = dense
	}

	elevations := a.resolveElevations(geom, in.Route.Elevations, densified)
	a.segments, err = route.BuildSegments(geom, elevations)
	if err != nil {
		return nil, fmt.Errorf("building segments: %w", err)
	}
	a.stats = route.Summarize(a.segments)

	a.groups, err = route.ParseMetadata(in.Route.Metadata)
	if err != nil {
		return nil, err
	}
	a.covered = profile.Covers(a.segments, a.groups)
	if a.cfg.Speeds.Segmentation && !a.covered {
		a.log.Infow("no road types in route metadata, using uniform candidate speed", "groups", len(a.groups))
	}

	steps := route.FlattenSteps(a.groups)
	a.detection = profile.Detect(steps)
	a.detection.Events = profile.MapEvents(a.detection.Events, len(steps), len(a.segments))

	return a, nil
}

// resolveElevations picks the elevation profile for geom: flat when disabled or
// after densification, the explicit array when given, the embedded third
// coordinate when every point has one, flat otherwise.
func (a *Advisor) resolveElevations(geom route.Geometry, provided []float64, densified bool) []float64 {
	switch {
	case !a.cfg.Route.UseElevation:
		a.log.Debugw("elevation disabled, using flat profile")
		return geom.Flat()
	case densified:
		a.log.Infow("two-point route densified, using flat profile", "points", len(geom))
		return geom.Flat()
	case len(provided) > 0:
		return provided
	}
	if elev, ok := geom.Elevations(); ok {
		return elev
	}
	a.log.Infow("no elevation data, using flat profile", "points", len(geom))
	return geom.Flat()
}

// Segments returns the prepared route segments.
func (a *Advisor) Segments() []route.Segment { return a.segments }

// Run evaluates every candidate speed and assembles the report. Cancelling ctx
// stops candidates that have not started yet and fails the run.
func (a *Advisor) Run(ctx context.Context) (Report, error) {
	speeds := optimizer.Candidates(a.cfg.Speeds.Candidates, a.cfg.Speeds.UserMaxKmh)
	outcomes := make([]outcome, len(speeds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, speed := range speeds {
		i, speed := i, speed
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			eval, res, err := a.Evaluate(speed)
			outcomes[i] = outcome{eval: eval, result: res, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report := Report{
		RunID:            uuid.NewString(),
		Vehicle:          a.vehicle,
		Route:            a.stats,
		Intersections:    a.detection.Intersections,
		Slowdowns:        a.detection.Events,
		RoadTypeFallback: a.cfg.Speeds.Segmentation && !a.covered,
	}

	results := make(map[float64]trip.Result, len(outcomes))
	for i, o := range outcomes {
		if o.err != nil {
			a.log.Warnw("skipping candidate", "speed_kmh", speeds[i], "error", o.err)
			report.Skipped = append(report.Skipped, CandidateFailure{SpeedKmh: speeds[i], Error: o.err.Error()})
			continue
		}
		report.Candidates = append(report.Candidates, o.eval)
		results[o.eval.CruiseSpeedKmh] = o.result
	}
	if len(report.Candidates) == 0 {
		return Report{}, fmt.Errorf("%w: all %d candidates failed", ErrNoValidResult, len(speeds))
	}

	sel, err := optimizer.Select(report.Candidates, a.cfg.OptimizerOptions())
	if err != nil {
		return Report{}, err
	}
	report.Best = sel.Best
	report.Fastest = sel.Fastest
	report.MaxAllowedH = sel.MaxAllowedH
	report.EnergyDeltaWh = sel.EnergyDeltaWh
	report.TimeDeltaMin = sel.TimeDeltaH * 60

	neededKWh := sel.Best.EnergyWh / 1000
	report.Charging = charging.Compute(a.vehicle.BatteryKWh, neededKWh, a.cfg.Battery.StartPct, a.cfg.Battery.EndPct)
	report.Battery = charging.Assess(a.vehicle.BatteryKWh, neededKWh, a.cfg.Battery.StartPct)
	report.EnergyCost = neededKWh * a.cfg.EnergyPricePerKWh
	if sel.Best.DistanceKm > 0 {
		report.ConsumptionKWhPerKm = neededKWh / sel.Best.DistanceKm
	}
	if a.cfg.Breakdown {
		report.Breakdown = results[sel.Best.CruiseSpeedKmh].Segments
	}

	a.log.Infow("advisory run complete",
		"run_id", report.RunID,
		"candidates", len(report.Candidates),
		"skipped", len(report.Skipped),
		"best_kmh", sel.Best.CruiseSpeedKmh,
		"energy_kwh", neededKWh,
		"charging_stops", report.Charging.NumStops,
	)
	return report, nil
}

// Evaluate simulates the route at one candidate cruise speed.
func (a *Advisor) Evaluate(speedKmh float64) (optimizer.Evaluation, trip.Result, error) {
	if speedKmh <= 0 || math.IsNaN(speedKmh) || math.IsInf(speedKmh, 0) {
		return optimizer.Evaluation{}, trip.Result{}, fmt.Errorf("%w: %v km/h", ErrInvalidSpeed, speedKmh)
	}

	sp := trip.Uniform(speedKmh)
	if a.cfg.Speeds.Segmentation {
		speeds, _ := a.profiler.Profile(a.segments, a.groups, speedKmh)
		sp = trip.PerSegment(profile.ApplySlowdowns(speeds, a.detection.Events))
	}

	res, err := trip.Aggregate(a.segments, sp, a.model)
	if err != nil {
		return optimizer.Evaluation{}, trip.Result{}, fmt.Errorf("candidate %v km/h: %w", speedKmh, err)
	}
	if res.FellBack {
		a.log.Warnw("speed profile length mismatch, using constant speed", "speed_kmh", speedKmh)
	}

	return optimizer.Evaluation{
		CruiseSpeedKmh:  speedKmh,
		EnergyWh:        res.EnergyWh,
		TimeH:           res.TimeH,
		DistanceKm:      res.DistanceKm,
		AverageSpeedKmh: res.AverageSpeedKmh(),
	}, res, nil
}

// RunJSON is the primary entry point for the CLI and WASM targets. It accepts
// a JSON-encoded Input, runs the advisory, and returns a JSON-encoded Report.
func RunJSON(jsonInput string, opts ...Option) (string, error) {
	in, err := DecodeInput([]byte(jsonInput))
	if err != nil {
		return "", fmt.Errorf("invalid input JSON: %w", err)
	}

	advisor, err := NewAdvisor(in, opts...)
	if err != nil {
		return "", err
	}

	report, err := advisor.Run(context.Background())
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(out), nil
}
