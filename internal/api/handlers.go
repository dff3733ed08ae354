// Package api exposes the moderation service as a JSON HTTP boundary.
// Handlers stay thin: decode, call the service, map errors, encode.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"modguard/internal/common"
	"modguard/internal/dbmysql"
	"modguard/internal/metrics"
	"modguard/internal/moderation"
	"modguard/internal/training"
)

// Moderator is the content-processing surface the handlers call.
type Moderator interface {
	Process(ctx context.Context, req moderation.ProcessRequest) (*moderation.ProcessResult, error)
	BatchProcess(ctx context.Context, reqs []moderation.ProcessRequest) []moderation.BatchItemResult
	UpdateStatus(ctx context.Context, contentID uint64, status string, reviewerID *uint64, notes string) (*dbmysql.ModerationStatus, error)
	BatchUpdateStatus(ctx context.Context, reviewerID *uint64, updates []moderation.StatusUpdateRequest) int
	GetContent(ctx context.Context, contentID uint64) (*dbmysql.Content, error)
	ListReviewQueue(ctx context.Context, status string, limit, offset int) ([]dbmysql.Content, error)
	FlagTypes(ctx context.Context) ([]string, error)
}

// TrainingService runs training and reports model state.
type TrainingService interface {
	TrainFromCSV(ctx context.Context, path string, testFraction float64, seed int64) (*training.Report, error)
	Info(ctx context.Context) (*training.ModelInfo, error)
}

// MetricsService generates and serves daily metric series.
type MetricsService interface {
	GenerateDaily(ctx context.Context) error
	GetMetrics(ctx context.Context, days int) (map[string][]metrics.DatedValue, error)
}

// SettingsStore backs the admin settings endpoints.
type SettingsStore interface {
	List(ctx context.Context) ([]dbmysql.ModerationSetting, error)
	Upsert(ctx context.Context, name, value, description string) error
}

// Handler carries the service dependencies for every route.
type Handler struct {
	moderator Moderator
	trainer   TrainingService
	metrics   MetricsService
	settings  SettingsStore
	scorer    moderation.Scorer
	dataDir   string
	log       *zap.Logger
}

func NewHandler(moderator Moderator, trainer TrainingService, metricsService MetricsService, settings SettingsStore, scorer moderation.Scorer, dataDir string, log *zap.Logger) *Handler {
	return &Handler{
		moderator: moderator,
		trainer:   trainer,
		metrics:   metricsService,
		settings:  settings,
		scorer:    scorer,
		dataDir:   dataDir,
		log:       log,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type moderateRequest struct {
	Content     string         `json:"content"`
	ContentType string         `json:"content_type"`
	UserID      *uint64        `json:"user_id"`
	Metadata    common.JSONMap `json:"metadata"`
}

func flagSummaries(flags []dbmysql.ContentFlag) []map[string]any {
	out := make([]map[string]any, 0, len(flags))
	for _, flag := range flags {
		out = append(out, map[string]any{
			"flag_type": flag.FlagType,
			"score":     flag.FlagScore,
		})
	}
	return out
}

// ModerateContent processes one submitted item.
func (h *Handler) ModerateContent(w http.ResponseWriter, r *http.Request) {
	var req moderateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "Missing required content field")
		return
	}

	result, err := h.moderator.Process(r.Context(), moderation.ProcessRequest{
		Content:     req.Content,
		ContentType: req.ContentType,
		UserID:      req.UserID,
		Metadata:    req.Metadata,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"content_id":       result.Content.ContentID,
		"status":           result.Status.Status,
		"moderation_score": result.Status.ModerationScore,
		"processing_time":  result.ProcessingTime,
		"flags":            flagSummaries(result.Flags),
	})
}

// BatchModerate processes a batch; failed items are reported but do not
// fail the request.
func (h *Handler) BatchModerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []moderateRequest `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Items == nil {
		writeError(w, http.StatusBadRequest, "Missing or invalid items field")
		return
	}

	reqs := make([]moderation.ProcessRequest, len(req.Items))
	for i, item := range req.Items {
		reqs[i] = moderation.ProcessRequest{
			Content:     item.Content,
			ContentType: item.ContentType,
			UserID:      item.UserID,
			Metadata:    item.Metadata,
		}
	}

	results := h.moderator.BatchProcess(r.Context(), reqs)

	items := make([]map[string]any, 0, len(results))
	var processed int
	for _, item := range results {
		if item.Err != nil {
			items = append(items, map[string]any{
				"index": item.Index,
				"error": item.Err.Error(),
			})
			continue
		}
		processed++
		items = append(items, map[string]any{
			"index":            item.Index,
			"content_id":       item.Result.Content.ContentID,
			"status":           item.Result.Status.Status,
			"moderation_score": item.Result.Status.ModerationScore,
			"flags":            flagSummaries(item.Result.Flags),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"processed_count": processed,
		"results":         items,
	})
}

// GetContent returns one item with its verdict, flags and audit trail.
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	contentID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid content id")
		return
	}

	content, err := h.moderator.GetContent(r.Context(), contentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	flags := make([]map[string]any, 0, len(content.Flags))
	for _, flag := range content.Flags {
		flags = append(flags, map[string]any{
			"flag_type": flag.FlagType,
			"score":     flag.FlagScore,
			"details":   flag.FlagDetails,
		})
	}
	actions := make([]map[string]any, 0, len(content.Actions))
	for _, action := range content.Actions {
		actions = append(actions, map[string]any{
			"action_type":     action.ActionType,
			"action_notes":    action.ActionNotes,
			"user_id":         action.UserID,
			"previous_status": action.PreviousStatus,
			"created_at":      action.CreatedAt,
		})
	}

	response := map[string]any{
		"success": true,
		"content": map[string]any{
			"id":           content.ContentID,
			"user_id":      content.UserID,
			"content_type": content.ContentType,
			"content_text": content.ContentText,
			"created_at":   content.CreatedAt,
		},
		"flags":   flags,
		"actions": actions,
	}
	if content.Status != nil {
		response["status"] = map[string]any{
			"status":           content.Status.Status,
			"moderation_score": content.Status.ModerationScore,
			"is_automated":     content.Status.IsAutomated,
			"processing_time":  content.Status.ProcessingTime,
			"last_updated":     content.Status.LastUpdated,
		}
	}
	writeJSON(w, http.StatusOK, response)
}

// UpdateContentStatus applies a human review decision to one item.
func (h *Handler) UpdateContentStatus(w http.ResponseWriter, r *http.Request) {
	contentID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid content id")
		return
	}

	var req struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := h.moderator.UpdateStatus(r.Context(), contentID, req.Status, reviewerID(r.Context()), req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"content_id":   contentID,
		"status":       status.Status,
		"is_automated": status.IsAutomated,
		"last_updated": status.LastUpdated,
	})
}

// BatchUpdateContentStatus applies the same decision to many items and
// reports how many succeeded.
func (h *Handler) BatchUpdateContentStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ContentIDs []uint64 `json:"content_ids"`
		Status     string   `json:"status"`
		Notes      string   `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.ContentIDs) == 0 {
		writeError(w, http.StatusBadRequest, "missing content_ids")
		return
	}

	updates := make([]moderation.StatusUpdateRequest, len(req.ContentIDs))
	for i, contentID := range req.ContentIDs {
		updates[i] = moderation.StatusUpdateRequest{
			ContentID: contentID,
			Status:    req.Status,
			Notes:     req.Notes,
		}
	}

	updated := h.moderator.BatchUpdateStatus(r.Context(), reviewerID(r.Context()), updates)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"updated_count": updated,
		"total":         len(req.ContentIDs),
	})
}

// ReviewQueue pages content by disposition.
func (h *Handler) ReviewQueue(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	contents, err := h.moderator.ListReviewQueue(r.Context(), r.URL.Query().Get("status"), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	items := make([]map[string]any, 0, len(contents))
	for _, content := range contents {
		item := map[string]any{
			"id":           content.ContentID,
			"content_type": content.ContentType,
			"content_text": content.ContentText,
			"created_at":   content.CreatedAt,
			"flags":        flagSummaries(content.Flags),
		}
		if content.Status != nil {
			item["status"] = content.Status.Status
			item["moderation_score"] = content.Status.ModerationScore
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"items":   items,
		"count":   len(items),
	})
}

// FlagTypes lists every flag category observed so far.
func (h *Handler) FlagTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.moderator.FlagTypes(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"flag_types": types,
	})
}

// GetMetrics returns the metric series for the requested window.
func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			days = parsed
		}
	}

	series, err := h.metrics.GetMetrics(r.Context(), days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"metrics": series,
	})
}

// GenerateMetrics triggers the daily aggregation on demand.
func (h *Handler) GenerateMetrics(w http.ResponseWriter, r *http.Request) {
	if err := h.metrics.GenerateDaily(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Daily metrics generated successfully",
	})
}

// TrainModel trains from a server-side CSV path.
func (h *Handler) TrainModel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FilePath string  `json:"file_path"`
		TestSize float64 `json:"test_size"`
		Seed     int64   `json:"seed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FilePath == "" {
		writeError(w, http.StatusBadRequest, "missing file_path")
		return
	}

	report, err := h.trainer.TrainFromCSV(r.Context(), req.FilePath, req.TestSize, req.Seed)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Model trained successfully",
		"report":  report,
	})
}

// ModelInfo describes the persisted artifact and the live engine.
func (h *Handler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.trainer.Info(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"model":   info,
	})
}

// SampleTrainingData generates the demo dataset under the data dir if it
// does not exist yet and returns its path.
func (h *Handler) SampleTrainingData(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(h.dataDir, "sample_training_data.csv")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(h.dataDir, 0o755); err != nil {
			writeServiceError(w, err)
			return
		}
		samples := training.GenerateSampleDataset(100, 0.3, 42)
		if err := training.WriteSampleCSV(path, samples); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"file_path": path,
	})
}

// EvaluateText classifies and explains a probe text without persisting
// anything.
func (h *Handler) EvaluateText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeError(w, http.StatusBadRequest, "missing text")
		return
	}

	normalized := moderation.Normalize(req.Text)
	scores := h.scorer.Classify(normalized)

	results := make(map[string]any, len(scores))
	for category, score := range scores {
		results[category] = map[string]any{
			"score":       score.Score,
			"fallback":    score.Fallback,
			"explanation": h.scorer.Explain(normalized, category),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"results": results,
	})
}

// ListSettings returns every moderation setting.
func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	items := make([]map[string]any, 0, len(settings))
	for _, setting := range settings {
		items = append(items, map[string]any{
			"name":        setting.SettingName,
			"value":       setting.SettingValue,
			"description": setting.SettingDescription,
			"updated_at":  setting.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"settings": items,
	})
}

// UpsertSetting creates or updates one named setting.
func (h *Handler) UpsertSetting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Value       string `json:"value"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Value == "" {
		writeError(w, http.StatusBadRequest, "missing setting name or value")
		return
	}

	if err := h.settings.Upsert(r.Context(), req.Name, req.Value, req.Description); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"name":    req.Name,
	})
}
