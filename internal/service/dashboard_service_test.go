package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suhani1920/Aura-Grow/internal/alerting"
	"github.com/suhani1920/Aura-Grow/internal/config"
	"github.com/suhani1920/Aura-Grow/internal/models"
)

type fakeRepo struct {
	mu       sync.Mutex
	latest   map[string]models.SensorReading
	window   []models.SensorReading
	err      error
	calls    int32
	latestFn func(ctx context.Context) (map[string]models.SensorReading, error)
}

func (f *fakeRepo) WriteReading(ctx context.Context, reading models.SensorReading) error {
	return nil
}

func (f *fakeRepo) LatestReadings(ctx context.Context) (map[string]models.SensorReading, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.latestFn != nil {
		return f.latestFn(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.latest, nil
}

func (f *fakeRepo) ReadingsSince(ctx context.Context, start time.Time) ([]models.SensorReading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.window, nil
}

func (f *fakeRepo) EnsureBucket(ctx context.Context) error { return nil }

func testMonitoring() config.Monitoring {
	lat, lng := 29.4, 79.5
	return config.Monitoring{
		Thresholds: map[string]models.Thresholds{
			"soil_moisture": {Low: 30, High: 70},
			"temperature":   {Low: 10, High: 35},
			"water_level":   {Low: 20, High: 90},
		},
		Sensors: []config.SensorDef{
			{ID: "m1", Name: "Field A Moisture", Category: "soil_moisture", Unit: "%", Latitude: &lat, Longitude: &lng},
			{ID: "m2", Name: "Field B Moisture", Category: "soil_moisture", Unit: "%"},
			{ID: "tank", Name: "Water Tank A", Category: "water_level", Unit: "%"},
		},
	}
}

func reading(id string, value float64, at time.Time) models.SensorReading {
	return models.SensorReading{SensorID: id, Value: value, Unit: "%", Timestamp: at}
}

func TestRefreshPublishesConsistentSnapshot(t *testing.T) {
	now := time.Now()
	repo := &fakeRepo{
		latest: map[string]models.SensorReading{
			"m1":   reading("m1", 40, now),
			"m2":   reading("m2", 60, now),
			"tank": reading("tank", 75, now),
		},
		window: []models.SensorReading{
			reading("m1", 40, now.Add(-time.Hour)),
		},
	}
	svc := NewDashboardService(repo, alerting.NewEngine(), testMonitoring(), nil)

	require.NoError(t, svc.Refresh(context.Background()))
	snap := svc.Snapshot()

	require.Len(t, snap.Sensors, 3)
	assert.Equal(t, 50.0, snap.Metrics.AvgSoilMoisture)
	assert.Equal(t, 75.0, snap.Metrics.TankLevel)
	require.Len(t, snap.Trend, 1)
	assert.False(t, snap.GeneratedAt.IsZero())
}

func TestRefreshDerivesStatuses(t *testing.T) {
	now := time.Now()
	repo := &fakeRepo{
		latest: map[string]models.SensorReading{
			"m1":   reading("m1", 12, now), // below low threshold
			"m2":   reading("m2", 80, now), // above high threshold
			"tank": reading("tank", 50, now),
		},
	}
	engine := alerting.NewEngine()
	svc := NewDashboardService(repo, engine, testMonitoring(), nil)

	require.NoError(t, svc.Refresh(context.Background()))

	byID := map[string]models.Sensor{}
	for _, s := range svc.Snapshot().Sensors {
		byID[s.ID] = s
	}
	assert.Equal(t, models.StatusLow, byID["m1"].Status)
	assert.Equal(t, models.StatusHigh, byID["m2"].Status)
	assert.Equal(t, models.StatusNormal, byID["tank"].Status)

	// The alert engine saw the same derived set.
	alerts := engine.Alerts()
	require.Len(t, alerts, 2)
	assert.Equal(t, 2, engine.UnreadCount())
}

func TestSensorWithoutReadingStaysNormal(t *testing.T) {
	repo := &fakeRepo{latest: map[string]models.SensorReading{}}
	svc := NewDashboardService(repo, alerting.NewEngine(), testMonitoring(), nil)

	require.NoError(t, svc.Refresh(context.Background()))

	for _, s := range svc.Snapshot().Sensors {
		assert.Equal(t, models.StatusNormal, s.Status)
		assert.Nil(t, s.LatestReading)
	}
	assert.Equal(t, 0.0, svc.Snapshot().Metrics.AvgSoilMoisture)
}

func TestMissingCoordinatesGetFallback(t *testing.T) {
	repo := &fakeRepo{latest: map[string]models.SensorReading{}}
	svc := NewDashboardService(repo, alerting.NewEngine(), testMonitoring(), nil)

	require.NoError(t, svc.Refresh(context.Background()))

	byID := map[string]models.Sensor{}
	for _, s := range svc.Snapshot().Sensors {
		byID[s.ID] = s
	}
	require.NotNil(t, byID["m2"].Latitude)
	assert.Equal(t, fallbackLatitude, *byID["m2"].Latitude)
	assert.Equal(t, fallbackLongitude, *byID["m2"].Longitude)
	// Configured coordinates are kept.
	assert.Equal(t, 29.4, *byID["m1"].Latitude)
}

func TestRefreshErrorKeepsPreviousSnapshot(t *testing.T) {
	now := time.Now()
	repo := &fakeRepo{
		latest: map[string]models.SensorReading{"m1": reading("m1", 40, now)},
	}
	svc := NewDashboardService(repo, alerting.NewEngine(), testMonitoring(), nil)
	require.NoError(t, svc.Refresh(context.Background()))
	before := svc.Snapshot()

	repo.mu.Lock()
	repo.err = errors.New("influx unreachable")
	repo.mu.Unlock()

	err := svc.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, before, svc.Snapshot())
}

func TestStaleFetchIsDiscarded(t *testing.T) {
	now := time.Now()
	release := make(chan struct{})
	var calls int32
	repo := &fakeRepo{}
	repo.latestFn = func(ctx context.Context) (map[string]models.SensorReading, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			// First fetch stalls until a newer one has published.
			<-release
			return map[string]models.SensorReading{"m1": reading("m1", 10, now)}, nil
		}
		return map[string]models.SensorReading{"m1": reading("m1", 55, now)}, nil
	}
	svc := NewDashboardService(repo, alerting.NewEngine(), testMonitoring(), nil)

	done := make(chan error, 1)
	go func() { done <- svc.Refresh(context.Background()) }()

	// Wait for the first fetch to be in flight before starting the second.
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 1 }, time.Second, time.Millisecond)
	require.NoError(t, svc.Refresh(context.Background()))
	fresh := svc.Snapshot()

	close(release)
	require.NoError(t, <-done)

	// The slower, earlier-started fetch must not overwrite the newer one.
	assert.Equal(t, fresh, svc.Snapshot())
	require.NotNil(t, svc.Snapshot().Sensors[0].LatestReading)
	assert.Equal(t, 55.0, svc.Snapshot().Sensors[0].LatestReading.Value)
}

func TestNotifyChangeCoalesces(t *testing.T) {
	repo := &fakeRepo{latest: map[string]models.SensorReading{}}
	svc := NewDashboardService(repo, alerting.NewEngine(), testMonitoring(), nil)

	// Both signals land before the loop starts; they must collapse into one.
	svc.NotifyChange()
	svc.NotifyChange()

	go svc.Run()
	defer svc.Close()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&repo.calls) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&repo.calls))
}

type captureBroadcaster struct {
	mu        sync.Mutex
	snapshots []interface{}
}

func (c *captureBroadcaster) BroadcastSnapshot(snapshot interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots = append(c.snapshots, snapshot)
}

func TestRefreshBroadcastsSnapshot(t *testing.T) {
	repo := &fakeRepo{latest: map[string]models.SensorReading{}}
	b := &captureBroadcaster{}
	svc := NewDashboardService(repo, alerting.NewEngine(), testMonitoring(), b)

	require.NoError(t, svc.Refresh(context.Background()))

	b.mu.Lock()
	defer b.mu.Unlock()
	require.Len(t, b.snapshots, 1)
}
