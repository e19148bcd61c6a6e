package models

// AggregateMetrics is the dashboard overview, recomputed from the current
// sensor set on every refresh. Categories with no readings report 0.
type AggregateMetrics struct {
	AvgSoilMoisture float64 `json:"avg_soil_moisture"`
	AvgTemperature  float64 `json:"avg_temperature"`
	TankLevel       float64 `json:"tank_level"`
}

// TrendPoint is one hour-of-day bucket of the 24-hour trend chart.
// Readings from different calendar days at the same hour share a bucket.
type TrendPoint struct {
	Time        string   `json:"time"` // "HH:00"
	Moisture    *float64 `json:"moisture,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}
