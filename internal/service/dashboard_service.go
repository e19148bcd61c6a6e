// Package service assembles the dashboard state: it refreshes the sensor set
// from the reading store, recomputes the derived metrics and trend, and hands
// the result to the alert engine, publishing one consistent snapshot at a
// time.
package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/suhani1920/Aura-Grow/internal/aggregate"
	"github.com/suhani1920/Aura-Grow/internal/alerting"
	"github.com/suhani1920/Aura-Grow/internal/config"
	"github.com/suhani1920/Aura-Grow/internal/models"
	"github.com/suhani1920/Aura-Grow/internal/repository"
)

// TrendWindow is the retention period used for the trend chart.
const TrendWindow = 24 * time.Hour

// Fallback coordinates for sensors registered without a location.
const (
	fallbackLatitude  = 29.375055
	fallbackLongitude = 79.531300
)

// Snapshot is the consistent unit of dashboard state readers see. Sensors,
// metrics and trend always come from the same refresh; a reader can never
// observe metrics computed against a half-updated sensor set.
type Snapshot struct {
	Sensors     []models.Sensor         `json:"sensors"`
	Metrics     models.AggregateMetrics `json:"metrics"`
	Trend       []models.TrendPoint     `json:"trend"`
	GeneratedAt time.Time               `json:"generated_at"`
}

// Broadcaster pushes a fresh snapshot to connected dashboard clients.
type Broadcaster interface {
	BroadcastSnapshot(snapshot interface{})
}

// DashboardService owns the published snapshot and the refresh loop.
type DashboardService struct {
	repo        repository.ReadingRepository
	engine      *alerting.Engine
	monitoring  config.Monitoring
	broadcaster Broadcaster
	now         func() time.Time

	mu           sync.RWMutex
	snapshot     Snapshot
	nextSeq      uint64
	publishedSeq uint64

	changes   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func NewDashboardService(repo repository.ReadingRepository, engine *alerting.Engine, monitoring config.Monitoring, broadcaster Broadcaster) *DashboardService {
	return &DashboardService{
		repo:        repo,
		engine:      engine,
		monitoring:  monitoring,
		broadcaster: broadcaster,
		now:         time.Now,
		changes:     make(chan struct{}, 1),
		done:        make(chan struct{}),
	}
}

// Refresh re-runs the full ingestion cycle: fetch the latest reading per
// sensor and the trailing window, derive statuses, recompute metrics and
// trend, publish the snapshot, then evaluate alerts. A fetch superseded by a
// later-started one is discarded on completion (last-started-fetch wins), so
// out-of-order responses never roll the snapshot backwards.
func (s *DashboardService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.nextSeq++
	seq := s.nextSeq
	s.mu.Unlock()

	latest, err := s.repo.LatestReadings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load sensor data: %w", err)
	}
	window, err := s.repo.ReadingsSince(ctx, s.now().Add(-TrendWindow))
	if err != nil {
		return fmt.Errorf("failed to load trend data: %w", err)
	}

	sensors := s.buildSensors(latest)
	snapshot := Snapshot{
		Sensors:     sensors,
		Metrics:     aggregate.Metrics(sensors),
		Trend:       aggregate.Trend(window, s.categoryOf),
		GeneratedAt: s.now(),
	}

	s.mu.Lock()
	if seq <= s.publishedSeq {
		s.mu.Unlock()
		return nil // superseded by a newer refresh
	}
	s.publishedSeq = seq
	s.snapshot = snapshot
	s.mu.Unlock()

	s.engine.Evaluate(sensors)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastSnapshot(snapshot)
	}
	return nil
}

// buildSensors joins the configured inventory with the latest readings and
// derives each sensor's status. A sensor without a reading stays normal; a
// sensor without coordinates gets the fallback pair.
func (s *DashboardService) buildSensors(latest map[string]models.SensorReading) []models.Sensor {
	sensors := make([]models.Sensor, 0, len(s.monitoring.Sensors))
	for _, def := range s.monitoring.Sensors {
		sensor := models.Sensor{
			ID:        def.ID,
			Name:      def.Name,
			Category:  models.SensorCategory(def.Category),
			Unit:      def.Unit,
			Latitude:  def.Latitude,
			Longitude: def.Longitude,
			Status:    models.StatusNormal,
		}
		if sensor.Latitude == nil || sensor.Longitude == nil {
			lat, lng := fallbackLatitude, fallbackLongitude
			sensor.Latitude = &lat
			sensor.Longitude = &lng
		}
		if reading, ok := latest[def.ID]; ok {
			r := reading
			if r.Unit == "" {
				r.Unit = def.Unit
			}
			sensor.LatestReading = &r
			sensor.Status = models.DeriveStatus(r.Value, s.monitoring.ThresholdsFor(sensor.Category))
		}
		sensors = append(sensors, sensor)
	}
	return sensors
}

func (s *DashboardService) categoryOf(sensorID string) models.SensorCategory {
	for _, def := range s.monitoring.Sensors {
		if def.ID == sensorID {
			return models.SensorCategory(def.Category)
		}
	}
	return models.CategoryOther
}

// Snapshot returns the currently published snapshot.
func (s *DashboardService) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// NotifyChange signals that new readings arrived. Signals coalesce: many
// notifications during one refresh trigger a single follow-up run.
func (s *DashboardService) NotifyChange() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// Run consumes change signals until Close is called. Refresh failures keep
// the previous snapshot and are logged, never fatal.
func (s *DashboardService) Run() {
	for {
		select {
		case <-s.changes:
			if err := s.Refresh(context.Background()); err != nil {
				log.Printf("Background refresh failed: %v", err)
			}
		case <-s.done:
			return
		}
	}
}

// Close stops the refresh loop. Safe to call more than once.
func (s *DashboardService) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}
