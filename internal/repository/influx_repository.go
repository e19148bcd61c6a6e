package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/query"

	"github.com/suhani1920/Aura-Grow/internal/models"
)

// ReadingRepository is the ingestion-side contract: it persists raw sensor
// readings and serves the two views the dashboard needs, the latest reading
// per sensor and the trailing time window for the trend chart.
type ReadingRepository interface {
	WriteReading(ctx context.Context, reading models.SensorReading) error
	LatestReadings(ctx context.Context) (map[string]models.SensorReading, error)
	ReadingsSince(ctx context.Context, start time.Time) ([]models.SensorReading, error)
	EnsureBucket(ctx context.Context) error
}

const measurement = "sensor_readings"

// latestLookback bounds how far back LatestReadings searches for a sensor's
// most recent point. A sensor silent for longer drops out of the snapshot
// until it reports again.
const latestLookback = "-30d"

// InfluxRepository stores readings in InfluxDB.
type InfluxRepository struct {
	client influxdb2.Client
	org    string
	bucket string
}

// NewInfluxRepository creates a new InfluxRepository.
func NewInfluxRepository(url, token, org, bucket string) *InfluxRepository {
	client := influxdb2.NewClient(url, token)
	return &InfluxRepository{
		client: client,
		org:    org,
		bucket: bucket,
	}
}

// EnsureBucket creates the readings bucket if it does not exist yet.
func (r *InfluxRepository) EnsureBucket(ctx context.Context) error {
	bucketsAPI := r.client.BucketsAPI()
	if _, err := bucketsAPI.FindBucketByName(ctx, r.bucket); err == nil {
		return nil
	}

	org, err := r.client.OrganizationsAPI().FindOrganizationByName(ctx, r.org)
	if err != nil {
		return fmt.Errorf("error finding organization %q: %w", r.org, err)
	}
	if _, err := bucketsAPI.CreateBucketWithName(ctx, org, r.bucket); err != nil {
		return fmt.Errorf("error creating bucket %q: %w", r.bucket, err)
	}
	log.Printf("Bucket %q created", r.bucket)
	return nil
}

// WriteReading writes one reading as a point tagged with its sensor ID. A
// zero timestamp falls back to server time.
func (r *InfluxRepository) WriteReading(ctx context.Context, reading models.SensorReading) error {
	if reading.SensorID == "" {
		return fmt.Errorf("sensor_id is required")
	}

	ts := reading.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	p := influxdb2.NewPoint(
		measurement,
		map[string]string{"sensor_id": reading.SensorID, "unit": reading.Unit},
		map[string]interface{}{"value": reading.Value},
		ts,
	)

	writeAPI := r.client.WriteAPIBlocking(r.org, r.bucket)
	if err := writeAPI.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("error writing to InfluxDB: %w", err)
	}
	return nil
}

// LatestReadings returns the most recent reading per sensor.
func (r *InfluxRepository) LatestReadings(ctx context.Context) (map[string]models.SensorReading, error) {
	result, err := r.client.QueryAPI(r.org).Query(ctx, latestReadingsQuery(r.bucket))
	if err != nil {
		return nil, fmt.Errorf("error querying InfluxDB: %w", err)
	}

	latest := make(map[string]models.SensorReading)
	for result.Next() {
		reading, ok := recordToReading(result.Record())
		if !ok {
			continue
		}
		latest[reading.SensorID] = reading
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("query error: %w", result.Err())
	}
	return latest, nil
}

// ReadingsSince returns all readings from start onward, oldest first.
func (r *InfluxRepository) ReadingsSince(ctx context.Context, start time.Time) ([]models.SensorReading, error) {
	result, err := r.client.QueryAPI(r.org).Query(ctx, readingsSinceQuery(r.bucket, start))
	if err != nil {
		return nil, fmt.Errorf("error querying InfluxDB: %w", err)
	}

	var readings []models.SensorReading
	for result.Next() {
		if reading, ok := recordToReading(result.Record()); ok {
			readings = append(readings, reading)
		}
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("query error: %w", result.Err())
	}
	return readings, nil
}

func latestReadingsQuery(bucket string) string {
	return fmt.Sprintf(`
		from(bucket: "%s")
		|> range(start: %s)
		|> filter(fn: (r) => r["_measurement"] == "%s")
		|> filter(fn: (r) => r["_field"] == "value")
		|> last()
	`, bucket, latestLookback, measurement)
}

func readingsSinceQuery(bucket string, start time.Time) string {
	return fmt.Sprintf(`
		from(bucket: "%s")
		|> range(start: %s)
		|> filter(fn: (r) => r["_measurement"] == "%s")
		|> filter(fn: (r) => r["_field"] == "value")
		|> sort(columns: ["_time"])
	`, bucket, start.UTC().Format(time.RFC3339), measurement)
}

func recordToReading(record *query.FluxRecord) (models.SensorReading, bool) {
	sensorID, ok := record.ValueByKey("sensor_id").(string)
	if !ok {
		return models.SensorReading{}, false
	}

	var value float64
	switch v := record.Value().(type) {
	case float64:
		value = v
	case int64:
		value = float64(v)
	default:
		return models.SensorReading{}, false
	}

	unit, _ := record.ValueByKey("unit").(string)
	return models.SensorReading{
		SensorID:  sensorID,
		Value:     value,
		Unit:      unit,
		Timestamp: record.Time(),
	}, true
}
