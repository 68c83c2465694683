// Package export renders advisory reports into the formats external tools
// consume: an XLSX workbook for spreadsheets and GeoJSON for map viewers.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/cxd309/ecospeed/internal/engine"
)

const (
	CandidatesSheet = "Candidates"
	SegmentsSheet   = "Segments"
	SummarySheet    = "Summary"
)

var (
	candidateHeaders = []string{
		"Cruise Speed (km/h)", "Energy (kWh)", "Time (min)", "Distance (km)",
		"Avg Speed (km/h)", "Best", "Fastest",
	}
	segmentHeaders = []string{
		"Segment", "Distance (m)", "Slope (%)", "Speed (km/h)", "Energy (Wh)", "Time (s)",
		"From Lon", "From Lat", "To Lon", "To Lat",
	}
)

// WriteWorkbook writes report as an XLSX workbook to w. The Segments sheet is
// only present when the report carries a breakdown.
func WriteWorkbook(w io.Writer, report engine.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6FA"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("renaming default sheet: %w", err)
	}
	if err := writeSummary(f, report, header); err != nil {
		return err
	}

	rows := make([][]interface{}, len(report.Candidates))
	for i, c := range report.Candidates {
		rows[i] = []interface{}{
			c.CruiseSpeedKmh, c.EnergyWh / 1000, c.TimeH * 60, c.DistanceKm, c.AverageSpeedKmh,
			c.CruiseSpeedKmh == report.Best.CruiseSpeedKmh,
			c.CruiseSpeedKmh == report.Fastest.CruiseSpeedKmh,
		}
	}
	if err := writeTable(f, CandidatesSheet, candidateHeaders, rows, header); err != nil {
		return err
	}

	if len(report.Breakdown) > 0 {
		rows = make([][]interface{}, len(report.Breakdown))
		for i, s := range report.Breakdown {
			rows[i] = []interface{}{
				s.Index, s.DistanceM, s.Slope * 100, s.SpeedKmh, s.EnergyWh, s.TimeH * 3600,
				s.From.Lon(), s.From.Lat(), s.To.Lon(), s.To.Lat(),
			}
		}
		if err := writeTable(f, SegmentsSheet, segmentHeaders, rows, header); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, r engine.Report, header int) error {
	pairs := [][]interface{}{
		{"Run ID", r.RunID},
		{"Vehicle", r.Vehicle.Name},
		{"Distance (km)", r.Route.DistanceM / 1000},
		{"Elevation Gain (m)", r.Route.ElevationGainM},
		{"Elevation Loss (m)", r.Route.ElevationLossM},
		{"Recommended Speed (km/h)", r.Best.CruiseSpeedKmh},
		{"Energy (kWh)", r.Best.EnergyWh / 1000},
		{"Energy Saved vs Fastest (kWh)", -r.EnergyDeltaWh / 1000},
		{"Extra Time vs Fastest (min)", r.TimeDeltaMin},
		{"Consumption (kWh/km)", r.ConsumptionKWhPerKm},
		{"Energy Cost", r.EnergyCost},
		{"Charging Stops", r.Charging.NumStops},
		{"Remaining Battery (%)", r.Battery.RemainingPct},
		{"Battery Status", string(r.Battery.Level)},
	}
	return writeTable(f, SummarySheet, []string{"Metric", "Value"}, pairs, header)
}

// writeTable fills sheet with a styled header row followed by rows, creating
// the sheet when needed.
func writeTable(f *excelize.File, sheet string, headers []string, rows [][]interface{}, style int) error {
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("creating sheet %s: %w", sheet, err)
		}
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
		return fmt.Errorf("styling header of %s: %w", sheet, err)
	}

	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, 18)
}
