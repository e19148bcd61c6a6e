package utils

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/suhani1920/Aura-Grow/internal/models"
)

// RespondWithError sends a JSON error response using the APIError model.
// It sets the HTTP status code from the APIError and encodes the entire struct.
func RespondWithError(writer http.ResponseWriter, apiErr models.APIError) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(apiErr.StatusCode)

	if err := json.NewEncoder(writer).Encode(apiErr); err != nil {
		log.Printf("Failed to encode error response: %v", err)
		http.Error(writer, "Failed to send error response", http.StatusInternalServerError)
	}
}

// RespondWithJSON sends a JSON success response.
func RespondWithJSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(statusCode)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(writer).Encode(payload); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
		http.Error(writer, "Failed to send JSON response", http.StatusInternalServerError)
	}
}
