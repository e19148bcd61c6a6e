package controller

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/suhani1920/Aura-Grow/internal/alerting"
	"github.com/suhani1920/Aura-Grow/internal/models"
	"github.com/suhani1920/Aura-Grow/internal/repository"
	"github.com/suhani1920/Aura-Grow/internal/service"
	"github.com/suhani1920/Aura-Grow/internal/utils"
)

// DashboardController handles HTTP requests for readings, the dashboard
// snapshot and the alert list.
type DashboardController struct {
	service *service.DashboardService
	repo    repository.ReadingRepository
	engine  *alerting.Engine
}

// NewDashboardController creates a new DashboardController.
func NewDashboardController(svc *service.DashboardService, repo repository.ReadingRepository, engine *alerting.Engine) *DashboardController {
	return &DashboardController{
		service: svc,
		repo:    repo,
		engine:  engine,
	}
}

// HandleIngestReadings accepts a batch of raw sensor readings, persists them
// and signals the dashboard to re-derive its state.
func (c *DashboardController) HandleIngestReadings(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		apiErr := models.NewAPIError(models.ErrorCodeBadRequest, fmt.Sprintf("error reading request body: %v", err), nil, http.StatusBadRequest)
		utils.RespondWithError(w, apiErr)
		return
	}
	defer r.Body.Close()

	var readings []models.SensorReading
	if err := json.Unmarshal(body, &readings); err != nil {
		apiErr := models.NewAPIError(models.ErrorCodeInvalidFormat, fmt.Sprintf("error unmarshalling JSON: %v", err), nil, http.StatusBadRequest)
		utils.RespondWithError(w, apiErr)
		return
	}
	if len(readings) == 0 {
		apiErr := models.NewAPIError(models.ErrorCodeMissingParameter, "at least one reading is required", nil, http.StatusBadRequest)
		utils.RespondWithError(w, apiErr)
		return
	}

	for i, reading := range readings {
		if err := c.repo.WriteReading(r.Context(), reading); err != nil {
			// Readings before the failure are already persisted; the
			// dashboard must still pick them up.
			if i > 0 {
				c.service.NotifyChange()
			}
			apiErr := models.NewAPIError(models.ErrorCodeInternalServerError, fmt.Sprintf("error storing reading %d of %d: %v", i+1, len(readings), err), nil, http.StatusInternalServerError)
			utils.RespondWithError(w, apiErr)
			return
		}
	}
	log.Printf("Ingested %d readings", len(readings))

	c.service.NotifyChange()
	utils.RespondWithJSON(w, http.StatusCreated, map[string]string{"message": "readings received"})
}

// HandleGetDashboard returns the currently published snapshot.
func (c *DashboardController) HandleGetDashboard(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, c.service.Snapshot())
}

// HandleRefresh is the manual retry: it re-runs the full ingestion cycle
// synchronously and surfaces a fetch failure to the caller.
func (c *DashboardController) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Refresh(r.Context()); err != nil {
		apiErr := models.NewAPIError(models.ErrorCodeUpstreamUnavailable, fmt.Sprintf("refresh failed: %v", err), nil, http.StatusBadGateway)
		utils.RespondWithError(w, apiErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, c.service.Snapshot())
}

// HandleGetAlerts returns the alert list, newest first, with the unread count.
func (c *DashboardController) HandleGetAlerts(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"alerts":       c.engine.Alerts(),
		"unread_count": c.engine.UnreadCount(),
	})
}

// HandleAcknowledgeAlert marks one alert read, re-arming emission for its sensor.
func (c *DashboardController) HandleAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !c.engine.Acknowledge(id) {
		apiErr := models.NewAPIError(models.ErrorCodeResourceNotFound, fmt.Sprintf("alert not found: %s", id), nil, http.StatusNotFound)
		utils.RespondWithError(w, apiErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "alert acknowledged"})
}

// HandleClearAlerts drops the whole alert list.
func (c *DashboardController) HandleClearAlerts(w http.ResponseWriter, r *http.Request) {
	c.engine.ClearAll()
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "alerts cleared"})
}
