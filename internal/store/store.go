// Package store persists advisory run history in SQLite through GORM.
package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cxd309/ecospeed/internal/engine"
	"github.com/cxd309/ecospeed/internal/log"
)

// RunRecord is one stored advisory run.
type RunRecord struct {
	ID                  string            `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt           time.Time         `gorm:"index" json:"created_at"`
	Vehicle             string            `json:"vehicle"`
	DistanceKm          float64           `json:"distance_km"`
	ElevationGainM      float64           `json:"elevation_gain_m"`
	BestSpeedKmh        float64           `json:"best_speed_kmh"`
	EnergyKWh           float64           `json:"energy_kwh"`
	TimeH               float64           `json:"time_h"`
	EnergyDeltaWh       float64           `json:"energy_delta_wh"`
	ConsumptionKWhPerKm float64           `json:"consumption_kwh_per_km"`
	ChargingStops       int               `json:"charging_stops"`
	BatteryLevel        string            `json:"battery_level"`
	Candidates          []CandidateRecord `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"candidates"`
}

// CandidateRecord is one evaluated candidate of a stored run.
type CandidateRecord struct {
	ID             uint    `gorm:"primaryKey" json:"-"`
	RunID          string  `gorm:"index;size:36" json:"-"`
	CruiseSpeedKmh float64 `json:"cruise_speed_kmh"`
	EnergyWh       float64 `json:"energy_wh"`
	TimeH          float64 `json:"time_h"`
}

// Store wraps the run history database.
type Store struct {
	DB *gorm.DB
}

// Open connects to the SQLite database at dsn and migrates the schema. Use
// ":memory:" for a throwaway database.
func Open(dsn string) (*Store, error) {
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("opening run store %s: %w", dsn, err)
	}
	// SQLite serialises writers, and every connection to ":memory:" opens a
	// separate database.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&RunRecord{}, &CandidateRecord{}); err != nil {
		return nil, fmt.Errorf("migrating run store: %w", err)
	}
	return &Store{DB: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveReport records r and its candidates in one transaction.
func (s *Store) SaveReport(ctx context.Context, r engine.Report) error {
	rec := RunRecord{
		ID:                  r.RunID,
		Vehicle:             r.Vehicle.Name,
		DistanceKm:          r.Route.DistanceM / 1000,
		ElevationGainM:      r.Route.ElevationGainM,
		BestSpeedKmh:        r.Best.CruiseSpeedKmh,
		EnergyKWh:           r.Best.EnergyWh / 1000,
		TimeH:               r.Best.TimeH,
		EnergyDeltaWh:       r.EnergyDeltaWh,
		ConsumptionKWhPerKm: r.ConsumptionKWhPerKm,
		ChargingStops:       r.Charging.NumStops,
		BatteryLevel:        string(r.Battery.Level),
		Candidates:          make([]CandidateRecord, len(r.Candidates)),
	}
	for i, c := range r.Candidates {
		rec.Candidates[i] = CandidateRecord{
			CruiseSpeedKmh: c.CruiseSpeedKmh,
			EnergyWh:       c.EnergyWh,
			TimeH:          c.TimeH,
		}
	}

	if err := s.DB.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("saving run %s: %w", r.RunID, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first, with their candidates.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	var runs []RunRecord
	err := s.DB.WithContext(ctx).
		Preload("Candidates", func(db *gorm.DB) *gorm.DB { return db.Order("cruise_speed_kmh") }).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("querying recent runs: %w", err)
	}
	return runs, nil
}
