// Package aggregate reduces the current sensor set into the dashboard
// overview metrics and the 24-hour trend series. Everything in here is a pure
// function of its inputs so a refresh can re-run it on every ingestion event.
package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/suhani1920/Aura-Grow/internal/models"
)

// Metrics computes the per-category averages and the tank level from the
// sensors' latest readings. Categories with no readings average to 0: the
// denominator is floored at 1 so an empty category never divides by zero.
func Metrics(sensors []models.Sensor) models.AggregateMetrics {
	return models.AggregateMetrics{
		AvgSoilMoisture: categoryAverage(sensors, models.CategorySoilMoisture),
		AvgTemperature:  categoryAverage(sensors, models.CategoryTemperature),
		TankLevel:       tankLevel(sensors),
	}
}

func categoryAverage(sensors []models.Sensor, category models.SensorCategory) float64 {
	var sum float64
	count := 0
	for _, s := range sensors {
		if s.Category != category || !s.HasReading() {
			continue
		}
		sum += s.LatestReading.Value
		count++
	}
	if count < 1 {
		count = 1
	}
	return sum / float64(count)
}

// tankLevel returns the latest reading of the sensor whose name contains
// "tank". The lookup key is the case-insensitive substring, not a category;
// callers relying on this must keep tank sensors named accordingly.
func tankLevel(sensors []models.Sensor) float64 {
	for _, s := range sensors {
		if strings.Contains(strings.ToLower(s.Name), "tank") && s.HasReading() {
			return s.LatestReading.Value
		}
	}
	return 0
}

// Trend folds the readings of the trailing 24-hour window into hour-of-day
// buckets keyed "HH:00". Readings are processed in ascending timestamp order;
// the last reading seen for a bucket wins its moisture/temperature slot.
// Buckets appear in the order they were first created, and readings from
// different calendar days at the same hour share a bucket.
func Trend(readings []models.SensorReading, categoryOf func(sensorID string) models.SensorCategory) []models.TrendPoint {
	sorted := make([]models.SensorReading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var points []models.TrendPoint
	index := make(map[string]int)

	for _, r := range sorted {
		key := fmt.Sprintf("%02d:00", r.Timestamp.Local().Hour())
		i, ok := index[key]
		if !ok {
			points = append(points, models.TrendPoint{Time: key})
			i = len(points) - 1
			index[key] = i
		}

		v := r.Value
		switch categoryOf(r.SensorID) {
		case models.CategorySoilMoisture:
			points[i].Moisture = &v
		case models.CategoryTemperature:
			points[i].Temperature = &v
		}
	}

	return points
}
