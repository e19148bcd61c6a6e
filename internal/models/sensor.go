package models

import "time"

// SensorCategory classifies what a device measures.
type SensorCategory string

const (
	CategorySoilMoisture SensorCategory = "soil_moisture"
	CategoryTemperature  SensorCategory = "temperature"
	CategoryWaterLevel   SensorCategory = "water_level"
	CategoryOther        SensorCategory = "other"
)

// Status is derived from a sensor's latest value against its category
// thresholds. It is never stored or set independently.
type Status string

const (
	StatusNormal Status = "normal"
	StatusLow    Status = "low"
	StatusHigh   Status = "high"
)

// Thresholds are the static low/high bounds for one sensor category.
type Thresholds struct {
	Low  float64 `mapstructure:"low" json:"low"`
	High float64 `mapstructure:"high" json:"high"`
}

// DeriveStatus classifies a reading value against category thresholds.
func DeriveStatus(value float64, t Thresholds) Status {
	if value < t.Low {
		return StatusLow
	}
	if value > t.High {
		return StatusHigh
	}
	return StatusNormal
}

// SensorReading is one immutable observation from a device.
type SensorReading struct {
	SensorID  string    `json:"sensor_id"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
	Timestamp time.Time `json:"timestamp"`
}

// Sensor is a monitored device together with its most recent reading and the
// status derived from it.
type Sensor struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Category      SensorCategory `json:"category"`
	Unit          string         `json:"unit,omitempty"`
	Latitude      *float64       `json:"location_lat,omitempty"`
	Longitude     *float64       `json:"location_lng,omitempty"`
	Status        Status         `json:"status"`
	LatestReading *SensorReading `json:"latest_reading,omitempty"`
}

// HasReading reports whether the sensor has at least one observation.
func (s Sensor) HasReading() bool {
	return s.LatestReading != nil
}
