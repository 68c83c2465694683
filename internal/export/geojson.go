package export

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/cxd309/ecospeed/internal/trip"
)

// BreakdownGeoJSON encodes a per-segment breakdown as a FeatureCollection of
// LineString features, one per segment, carrying the evaluated speed, energy,
// and slope as properties.
func BreakdownGeoJSON(segments []trip.SegmentResult) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, s := range segments {
		f := geojson.NewFeature(orb.LineString{s.From, s.To})
		f.Properties["index"] = s.Index
		f.Properties["distance_m"] = s.DistanceM
		f.Properties["slope"] = s.Slope
		f.Properties["speed_kmh"] = s.SpeedKmh
		f.Properties["energy_wh"] = s.EnergyWh
		f.Properties["time_s"] = s.TimeH * 3600
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding breakdown geojson: %w", err)
	}
	return data, nil
}
