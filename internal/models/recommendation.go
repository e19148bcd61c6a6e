package models

import "time"

// RecommendationStatus tracks what the user did with a recommendation.
type RecommendationStatus string

const (
	RecommendationPending   RecommendationStatus = "pending"
	RecommendationApplied   RecommendationStatus = "applied"
	RecommendationDismissed RecommendationStatus = "dismissed"
)

// Recommendation is an AI-generated suggestion tied to a sensor. Status is
// mutated only by point updates keyed by ID (apply/dismiss).
type Recommendation struct {
	ID              string               `json:"id"`
	SensorID        string               `json:"sensor_id,omitempty"`
	Type            string               `json:"recommendation_type"` // irrigation, fertilization, pest_control, harvest
	Message         string               `json:"message"`
	ConfidenceScore float64              `json:"confidence_score"`
	Status          RecommendationStatus `json:"status"`
	CreatedAt       time.Time            `json:"created_at"`
}
