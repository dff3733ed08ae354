package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter mounts every endpoint under /api/v1. Ingest endpoints are
// open; review, training, metrics and settings require a reviewer token,
// settings writes an admin one.
func NewRouter(h *Handler, log *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	v1 := router.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/moderate", h.ModerateContent).Methods(http.MethodPost)
	v1.HandleFunc("/batch_moderate", h.BatchModerate).Methods(http.MethodPost)

	v1.HandleFunc("/content/{id:[0-9]+}", RequireReviewer(log, h.GetContent)).Methods(http.MethodGet)
	v1.HandleFunc("/content/{id:[0-9]+}/status", RequireReviewer(log, h.UpdateContentStatus)).Methods(http.MethodPut)
	v1.HandleFunc("/content/batch_status", RequireReviewer(log, h.BatchUpdateContentStatus)).Methods(http.MethodPost)
	v1.HandleFunc("/review_queue", RequireReviewer(log, h.ReviewQueue)).Methods(http.MethodGet)
	v1.HandleFunc("/flag_types", RequireReviewer(log, h.FlagTypes)).Methods(http.MethodGet)

	v1.HandleFunc("/metrics", RequireReviewer(log, h.GetMetrics)).Methods(http.MethodGet)
	v1.HandleFunc("/metrics/generate", RequireReviewer(log, h.GenerateMetrics)).Methods(http.MethodPost)

	v1.HandleFunc("/train", RequireAdmin(log, h.TrainModel)).Methods(http.MethodPost)
	v1.HandleFunc("/model/info", RequireReviewer(log, h.ModelInfo)).Methods(http.MethodGet)
	v1.HandleFunc("/sample_training_data", RequireReviewer(log, h.SampleTrainingData)).Methods(http.MethodGet)
	v1.HandleFunc("/evaluate", RequireReviewer(log, h.EvaluateText)).Methods(http.MethodPost)

	v1.HandleFunc("/settings", RequireReviewer(log, h.ListSettings)).Methods(http.MethodGet)
	v1.HandleFunc("/settings", RequireAdmin(log, h.UpsertSetting)).Methods(http.MethodPut)

	return router
}
