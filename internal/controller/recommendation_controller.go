package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/suhani1920/Aura-Grow/internal/models"
	"github.com/suhani1920/Aura-Grow/internal/repository"
	"github.com/suhani1920/Aura-Grow/internal/utils"
)

// RecommendationController handles HTTP requests for AI recommendations.
type RecommendationController struct {
	store repository.RecommendationStore
}

func NewRecommendationController(store repository.RecommendationStore) *RecommendationController {
	return &RecommendationController{store: store}
}

// HandleListRecommendations returns pending recommendations, newest first.
func (c *RecommendationController) HandleListRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := c.store.Pending(r.Context())
	if err != nil {
		apiErr := models.NewAPIError(models.ErrorCodeInternalServerError, fmt.Sprintf("error listing recommendations: %v", err), nil, http.StatusInternalServerError)
		utils.RespondWithError(w, apiErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, recs)
}

// HandleCreateRecommendation stores a recommendation produced by the AI
// pipeline, starting it out as pending.
func (c *RecommendationController) HandleCreateRecommendation(w http.ResponseWriter, r *http.Request) {
	var rec models.Recommendation
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		apiErr := models.NewAPIError(models.ErrorCodeInvalidFormat, fmt.Sprintf("error unmarshalling JSON: %v", err), nil, http.StatusBadRequest)
		utils.RespondWithError(w, apiErr)
		return
	}
	defer r.Body.Close()

	if rec.Message == "" {
		apiErr := models.NewAPIError(models.ErrorCodeMissingParameter, "message is required", nil, http.StatusBadRequest)
		utils.RespondWithError(w, apiErr)
		return
	}

	stored, err := c.store.Add(r.Context(), rec)
	if err != nil {
		apiErr := models.NewAPIError(models.ErrorCodeInternalServerError, fmt.Sprintf("error storing recommendation: %v", err), nil, http.StatusInternalServerError)
		utils.RespondWithError(w, apiErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, stored)
}

// HandleApplyRecommendation marks a recommendation applied.
func (c *RecommendationController) HandleApplyRecommendation(w http.ResponseWriter, r *http.Request) {
	c.setStatus(w, r, models.RecommendationApplied)
}

// HandleDismissRecommendation marks a recommendation dismissed.
func (c *RecommendationController) HandleDismissRecommendation(w http.ResponseWriter, r *http.Request) {
	c.setStatus(w, r, models.RecommendationDismissed)
}

func (c *RecommendationController) setStatus(w http.ResponseWriter, r *http.Request, status models.RecommendationStatus) {
	id := mux.Vars(r)["id"]
	if err := c.store.SetStatus(r.Context(), id, status); err != nil {
		apiErr := models.NewAPIError(models.ErrorCodeResourceNotFound, fmt.Sprintf("error updating recommendation: %v", err), nil, http.StatusNotFound)
		utils.RespondWithError(w, apiErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("recommendation %s", status)})
}
