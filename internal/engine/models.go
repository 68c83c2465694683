package engine

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/cxd309/ecospeed/internal/charging"
	"github.com/cxd309/ecospeed/internal/config"
	"github.com/cxd309/ecospeed/internal/optimizer"
	"github.com/cxd309/ecospeed/internal/physics"
	"github.com/cxd309/ecospeed/internal/profile"
	"github.com/cxd309/ecospeed/internal/route"
	"github.com/cxd309/ecospeed/internal/trip"
	"github.com/cxd309/ecospeed/internal/vehicle"
)

// RouteInput is the route as delivered by the routing and elevation collaborators.
type RouteInput struct {
	// Coordinates are [lon, lat(, elevation)] tuples in travel order.
	Coordinates [][]float64 `json:"coordinates"`
	// Elevations, when present, must match Coordinates in length.
	Elevations []float64 `json:"elevations,omitempty"`
	// Metadata is the routing service's step payload; see route.ParseMetadata.
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// Input is the JSON-serialisable input to the engine.
type Input struct {
	Config config.Config `json:"config"`
	Route  RouteInput    `json:"route"`
}

// DecodeInput parses a JSON Input, starting from config.Default so omitted
// settings keep their defaults.
func DecodeInput(data []byte) (Input, error) {
	return DecodeInputOver(data, config.Default())
}

// DecodeInputOver parses a JSON Input whose config overlays base.
func DecodeInputOver(data []byte, base config.Config) (Input, error) {
	in := Input{Config: base}
	if err := json.Unmarshal(data, &in); err != nil {
		return Input{}, err
	}
	return in, nil
}

// CandidateFailure records a candidate speed that could not be evaluated.
type CandidateFailure struct {
	SpeedKmh float64 `json:"speed_kmh"`
	Error    string  `json:"error"`
}

// Report is the complete output of one advisory run.
type Report struct {
	RunID      string                 `json:"run_id"`
	Vehicle    vehicle.Profile        `json:"vehicle"`
	Route      route.Stats            `json:"route"`
	Candidates []optimizer.Evaluation `json:"candidates"`
	Skipped    []CandidateFailure     `json:"skipped,omitempty"`

	Best          optimizer.Evaluation `json:"best"`
	Fastest       optimizer.Evaluation `json:"fastest"`
	MaxAllowedH   float64              `json:"max_allowed_time_h"`
	EnergyDeltaWh float64              `json:"energy_delta_wh"` // best - fastest
	TimeDeltaMin  float64              `json:"time_delta_min"`  // best - fastest

	Charging            charging.Plan       `json:"charging"`
	Battery             charging.Assessment `json:"battery"`
	EnergyCost          float64             `json:"energy_cost"`
	ConsumptionKWhPerKm float64             `json:"consumption_kwh_per_km"`

	Intersections    []int           `json:"intersections"`
	Slowdowns        []profile.Event `json:"slowdowns"`
	RoadTypeFallback bool            `json:"road_type_fallback"`

	// Breakdown is the per-segment state of the best candidate, when requested.
	Breakdown []trip.SegmentResult `json:"breakdown,omitempty"`
}

// Advisor holds the immutable inputs of one run: resolved vehicle, built
// segments, and parsed metadata. Candidate evaluations share it read-only.
type Advisor struct {
	cfg       config.Config
	vehicle   vehicle.Profile
	model     physics.EnergyModel
	profiler  profile.Profiler
	segments  []route.Segment
	groups    []route.SegmentMeta
	detection profile.Detection
	stats     route.Stats
	covered   bool // road metadata drives the speed profile

	log     *zap.SugaredLogger
	workers int
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithLogger sets the logger used for warnings and run summaries.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(a *Advisor) {
		if l != nil {
			a.log = l
		}
	}
}

// WithWorkers bounds the number of candidates evaluated concurrently.
func WithWorkers(n int) Option {
	return func(a *Advisor) {
		if n > 0 {
			a.workers = n
		}
	}
}

// outcome is the per-candidate slot filled by the evaluation workers.
type outcome struct {
	eval   optimizer.Evaluation
	result trip.Result
	err    error
}
