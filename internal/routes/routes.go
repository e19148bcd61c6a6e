package routes

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/suhani1920/Aura-Grow/internal/controller"
	"github.com/suhani1920/Aura-Grow/internal/push"
)

// SetupRouter registers all application routes.
func SetupRouter(dashboard *controller.DashboardController, recommendations *controller.RecommendationController, hub *push.Hub) *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/readings", dashboard.HandleIngestReadings).Methods(http.MethodPost)
	api.HandleFunc("/dashboard", dashboard.HandleGetDashboard).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/refresh", dashboard.HandleRefresh).Methods(http.MethodPost)

	api.HandleFunc("/alerts", dashboard.HandleGetAlerts).Methods(http.MethodGet)
	api.HandleFunc("/alerts/clear", dashboard.HandleClearAlerts).Methods(http.MethodPost)
	api.HandleFunc("/alerts/{id}/ack", dashboard.HandleAcknowledgeAlert).Methods(http.MethodPost)

	if recommendations != nil {
		api.HandleFunc("/recommendations", recommendations.HandleListRecommendations).Methods(http.MethodGet)
		api.HandleFunc("/recommendations", recommendations.HandleCreateRecommendation).Methods(http.MethodPost)
		api.HandleFunc("/recommendations/{id}/apply", recommendations.HandleApplyRecommendation).Methods(http.MethodPost)
		api.HandleFunc("/recommendations/{id}/dismiss", recommendations.HandleDismissRecommendation).Methods(http.MethodPost)
	}

	router.HandleFunc("/ws", hub.ServeWS)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	}).Methods(http.MethodGet)

	return router
}
