package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"modguard/internal/classifier"
	"modguard/internal/common"
	"modguard/internal/dbmysql"
	"modguard/internal/metrics"
	"modguard/internal/moderation"
	"modguard/internal/training"
)

// ---- Fakes ----

type fakeModerator struct {
	processErr error
	lastReq    moderation.ProcessRequest
	contents   map[uint64]*dbmysql.Content
}

func (f *fakeModerator) Process(ctx context.Context, req moderation.ProcessRequest) (*moderation.ProcessResult, error) {
	f.lastReq = req
	if f.processErr != nil {
		return nil, f.processErr
	}
	processing := 0.01
	return &moderation.ProcessResult{
		Content: &dbmysql.Content{ContentID: 1, ContentText: req.Content},
		Status: &dbmysql.ModerationStatus{
			ContentID:       1,
			Status:          common.StatusApproved,
			ModerationScore: 0.12,
			ProcessingTime:  &processing,
		},
		Flags:          []dbmysql.ContentFlag{{FlagType: "profanity", FlagScore: 0.4}},
		Score:          0.12,
		ProcessingTime: processing,
	}, nil
}

func (f *fakeModerator) BatchProcess(ctx context.Context, reqs []moderation.ProcessRequest) []moderation.BatchItemResult {
	results := make([]moderation.BatchItemResult, len(reqs))
	for i, req := range reqs {
		if req.Content == "" {
			results[i] = moderation.BatchItemResult{Index: i, Err: common.ErrMissingContent}
			continue
		}
		result, _ := f.Process(ctx, req)
		results[i] = moderation.BatchItemResult{Index: i, Result: result}
	}
	return results
}

func (f *fakeModerator) UpdateStatus(ctx context.Context, contentID uint64, status string, reviewerID *uint64, notes string) (*dbmysql.ModerationStatus, error) {
	if _, ok := f.contents[contentID]; !ok {
		return nil, common.ErrNotFound
	}
	return &dbmysql.ModerationStatus{ContentID: contentID, Status: status, IsAutomated: false}, nil
}

func (f *fakeModerator) BatchUpdateStatus(ctx context.Context, reviewerID *uint64, updates []moderation.StatusUpdateRequest) int {
	var updated int
	for _, update := range updates {
		if _, ok := f.contents[update.ContentID]; ok {
			updated++
		}
	}
	return updated
}

func (f *fakeModerator) GetContent(ctx context.Context, contentID uint64) (*dbmysql.Content, error) {
	content, ok := f.contents[contentID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return content, nil
}

func (f *fakeModerator) ListReviewQueue(ctx context.Context, status string, limit, offset int) ([]dbmysql.Content, error) {
	return nil, nil
}

func (f *fakeModerator) FlagTypes(ctx context.Context) ([]string, error) {
	return []string{"profanity", "violence"}, nil
}

type fakeTrainer struct{}

func (f *fakeTrainer) TrainFromCSV(ctx context.Context, path string, testFraction float64, seed int64) (*training.Report, error) {
	return &training.Report{ArtifactSaved: true, Categories: map[string]training.CategoryResult{}}, nil
}

func (f *fakeTrainer) Info(ctx context.Context) (*training.ModelInfo, error) {
	return &training.ModelInfo{Exists: false, Categories: classifier.DefaultCategories()}, nil
}

type fakeMetrics struct {
	generated int
}

func (f *fakeMetrics) GenerateDaily(ctx context.Context) error {
	f.generated++
	return nil
}

func (f *fakeMetrics) GetMetrics(ctx context.Context, days int) (map[string][]metrics.DatedValue, error) {
	return map[string][]metrics.DatedValue{
		metrics.TypeDailyProcessed: {{Date: "2026-08-23", Value: common.JSONMap{"count": 5}}},
	}, nil
}

type fakeSettings struct {
	upserts map[string]string
}

func (f *fakeSettings) List(ctx context.Context) ([]dbmysql.ModerationSetting, error) {
	return []dbmysql.ModerationSetting{{SettingName: "flag_threshold", SettingValue: "0.3"}}, nil
}

func (f *fakeSettings) Upsert(ctx context.Context, name, value, description string) error {
	if f.upserts == nil {
		f.upserts = map[string]string{}
	}
	f.upserts[name] = value
	return nil
}

type fakeAPIScorer struct{}

func (f *fakeAPIScorer) Classify(text string) map[string]classifier.ScoreResult {
	return map[string]classifier.ScoreResult{
		"violence": {Score: 0.9},
	}
}

func (f *fakeAPIScorer) Explain(text, category string) []classifier.TermWeight {
	return []classifier.TermWeight{{Term: "kill", Weight: 0.8}}
}

func newTestHandler(t *testing.T, moderator *fakeModerator) *Handler {
	t.Helper()
	if moderator == nil {
		moderator = &fakeModerator{contents: map[uint64]*dbmysql.Content{}}
	}
	return NewHandler(moderator, &fakeTrainer{}, &fakeMetrics{}, &fakeSettings{}, &fakeAPIScorer{}, t.TempDir(), zap.NewNop())
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// ---- Moderate ----

func TestModerateContentSuccess(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/moderate",
		bytes.NewBufferString(`{"content":"hello there","content_type":"text"}`))
	rec := httptest.NewRecorder()
	h.ModerateContent(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["content_id"])
	assert.Equal(t, common.StatusApproved, body["status"])
	assert.Len(t, body["flags"], 1)
}

func TestModerateContentMissingContent(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/moderate", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	h.ModerateContent(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
}

func TestModerateContentInvalidJSON(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/moderate", bytes.NewBufferString(`{nope`))
	rec := httptest.NewRecorder()
	h.ModerateContent(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchModerateCountsOnlySuccesses(t *testing.T) {
	h := newTestHandler(t, nil)

	payload := `{"items":[{"content":"one"},{"content":""},{"content":"three"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/batch_moderate", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	h.BatchModerate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["processed_count"])
	assert.Len(t, body["results"], 3)
}

func TestBatchModerateMissingItems(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/batch_moderate", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	h.BatchModerate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- Content ----

func TestGetContentNotFound(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/content/99", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "99"})
	rec := httptest.NewRecorder()
	h.GetContent(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetContentSuccess(t *testing.T) {
	moderator := &fakeModerator{contents: map[uint64]*dbmysql.Content{
		5: {
			ContentID:   5,
			ContentType: common.ContentTypeText,
			ContentText: "hello",
			Status:      &dbmysql.ModerationStatus{Status: common.StatusPending, ModerationScore: 0.5},
			Flags:       []dbmysql.ContentFlag{{FlagType: "harassment", FlagScore: 0.5}},
		},
	}}
	h := newTestHandler(t, moderator)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/content/5", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "5"})
	rec := httptest.NewRecorder()
	h.GetContent(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	content := body["content"].(map[string]any)
	assert.Equal(t, float64(5), content["id"])
	status := body["status"].(map[string]any)
	assert.Equal(t, common.StatusPending, status["status"])
}

func TestUpdateContentStatus(t *testing.T) {
	moderator := &fakeModerator{contents: map[uint64]*dbmysql.Content{3: {ContentID: 3}}}
	h := newTestHandler(t, moderator)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/content/3/status",
		bytes.NewBufferString(`{"status":"approved","notes":"ok"}`))
	req = mux.SetURLVars(req, map[string]string{"id": "3"})
	rec := httptest.NewRecorder()
	h.UpdateContentStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, common.StatusApproved, body["status"])
	assert.Equal(t, false, body["is_automated"])
}

func TestBatchUpdateContentStatus(t *testing.T) {
	moderator := &fakeModerator{contents: map[uint64]*dbmysql.Content{
		1: {ContentID: 1},
		2: {ContentID: 2},
	}}
	h := newTestHandler(t, moderator)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/content/batch_status",
		bytes.NewBufferString(`{"content_ids":[1,2,77],"status":"rejected"}`))
	rec := httptest.NewRecorder()
	h.BatchUpdateContentStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["updated_count"])
	assert.Equal(t, float64(3), body["total"])
}

// ---- Metrics / training / evaluate ----

func TestGetMetricsEndpoint(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics?days=3", nil)
	rec := httptest.NewRecorder()
	h.GetMetrics(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["metrics"], metrics.TypeDailyProcessed)
}

func TestTrainModelRequiresPath(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/train", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	h.TrainModel(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSampleTrainingDataGeneratesFile(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sample_training_data", nil)
	rec := httptest.NewRecorder()
	h.SampleTrainingData(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["file_path"])
}

func TestEvaluateText(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate",
		bytes.NewBufferString(`{"text":"I will kill you"}`))
	rec := httptest.NewRecorder()
	h.EvaluateText(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	results := body["results"].(map[string]any)
	violence := results["violence"].(map[string]any)
	assert.Equal(t, 0.9, violence["score"])
	assert.NotEmpty(t, violence["explanation"])
}

// ---- Settings ----

func TestSettingsEndpoints(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	h.ListSettings(rec, httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Len(t, body["settings"], 1)

	rec = httptest.NewRecorder()
	h.UpsertSetting(rec, httptest.NewRequest(http.MethodPut, "/api/v1/settings",
		bytes.NewBufferString(`{"name":"flag_threshold","value":"0.25"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.UpsertSetting(rec, httptest.NewRequest(http.MethodPut, "/api/v1/settings",
		bytes.NewBufferString(`{"value":"0.25"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- Auth middleware ----

func TestRequireReviewerRejectsMissingToken(t *testing.T) {
	called := false
	guarded := RequireReviewer(zap.NewNop(), func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	rec := httptest.NewRecorder()
	guarded(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestRequireReviewerAcceptsValidToken(t *testing.T) {
	token, err := common.GenerateToken(7, "reviewer", false)
	require.NoError(t, err)

	var gotID *uint64
	guarded := RequireReviewer(zap.NewNop(), func(w http.ResponseWriter, r *http.Request) {
		gotID = reviewerID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	guarded(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotID)
	assert.Equal(t, uint64(7), *gotID)
}

func TestRequireAdminRejectsNonAdmin(t *testing.T) {
	token, err := common.GenerateToken(7, "reviewer", false)
	require.NoError(t, err)

	guarded := RequireAdmin(zap.NewNop(), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/train", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	guarded(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
