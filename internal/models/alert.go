package models

import "time"

// Severity of an alert. Low readings are critical, high readings are warnings.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is raised when a sensor crosses a threshold. At most one
// unacknowledged alert exists per sensor at any time.
type Alert struct {
	ID           string    `json:"id"`
	SensorID     string    `json:"sensor_id"`
	Severity     Severity  `json:"severity"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
	Acknowledged bool      `json:"acknowledged"`
}
