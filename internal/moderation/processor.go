package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"modguard/internal/classifier"
	"modguard/internal/common"
	"modguard/internal/dbmysql"
)

// Stored content text is truncated to this many characters; the full
// payload is kept in original_content.
const displayTextLimit = 1000

// truncateDisplay caps text at displayTextLimit characters. The cut falls
// on a rune boundary, so the stored value is always valid UTF-8.
func truncateDisplay(text string) string {
	if len(text) <= displayTextLimit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= displayTextLimit {
		return text
	}
	return string(runes[:displayTextLimit])
}

// Store is the persistence surface the processing service needs.
type Store interface {
	CreateProcessed(ctx context.Context, content *dbmysql.Content, status *dbmysql.ModerationStatus, flags []dbmysql.ContentFlag, action *dbmysql.ModerationAction) error
	GetContent(ctx context.Context, contentID uint64) (*dbmysql.Content, error)
	GetStatus(ctx context.Context, contentID uint64) (*dbmysql.ModerationStatus, error)
	SaveStatusWithAction(ctx context.Context, status *dbmysql.ModerationStatus, action *dbmysql.ModerationAction) error
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]dbmysql.Content, error)
	DistinctFlagTypes(ctx context.Context) ([]string, error)
}

// Scorer classifies text and explains category scores.
type Scorer interface {
	Classify(text string) map[string]classifier.ScoreResult
	Explain(text, category string) []classifier.TermWeight
}

// Service runs submitted content through classification, decides a
// disposition, and persists the verdict with its audit trail.
type Service struct {
	store  Store
	scorer Scorer
	log    *zap.Logger
}

func NewService(store Store, scorer Scorer, log *zap.Logger) *Service {
	return &Service{store: store, scorer: scorer, log: log}
}

// ProcessRequest is one item submitted for moderation.
type ProcessRequest struct {
	Content     string
	ContentType string
	UserID      *uint64
	Metadata    common.JSONMap
}

// ProcessResult is the outcome of one processed item.
type ProcessResult struct {
	Content        *dbmysql.Content
	Status         *dbmysql.ModerationStatus
	Flags          []dbmysql.ContentFlag
	Score          float64
	ProcessingTime float64
}

// BatchItemResult pairs one batch entry with its outcome; failed entries
// carry the error and do not abort the rest of the batch.
type BatchItemResult struct {
	Index  int
	Result *ProcessResult
	Err    error
}

// Process classifies the submitted content, derives a disposition from
// the highest category score, and persists content, verdict, flags and
// the automated audit entry atomically.
func (s *Service) Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	start := time.Now()

	if strings.TrimSpace(req.Content) == "" {
		return nil, common.ErrMissingContent
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = common.ContentTypeText
	}
	if err := common.ValidateContentType(contentType); err != nil {
		return nil, err
	}

	displayText := req.Content
	originalContent := req.Content
	classifyText := Normalize(req.Content)
	var scores map[string]classifier.ScoreResult

	if contentType == common.ContentTypeText {
		displayText = truncateDisplay(displayText)
		scores = s.scorer.Classify(classifyText)
	} else {
		// Large media payloads are never retained; both stored fields
		// carry a reference string instead of the raw bytes.
		filename := mediaFilename(req.Metadata)
		if len(req.Content) > displayTextLimit {
			reference := fmt.Sprintf("[%s content] - %s", strings.ToUpper(contentType), filename)
			displayText = reference
			originalContent = reference
		}
		classifyText = fmt.Sprintf("analyzing %s content: %s", contentType, filename)
		scores = mediaScores(contentType, req.Metadata)
	}

	var overall float64
	for _, result := range scores {
		if result.Score > overall {
			overall = result.Score
		}
	}
	disposition := DecideStatus(overall)

	now := time.Now()
	content := &dbmysql.Content{
		UserID:          req.UserID,
		ContentType:     contentType,
		ContentText:     displayText,
		OriginalContent: originalContent,
		ContentMetadata: req.Metadata,
		CreatedAt:       now,
	}

	var flags []dbmysql.ContentFlag
	for category, result := range scores {
		if result.Score <= flagThreshold {
			continue
		}
		flags = append(flags, dbmysql.ContentFlag{
			FlagType:  category,
			FlagScore: result.Score,
			FlagDetails: common.JSONMap{
				"explanation": s.scorer.Explain(classifyText, category),
				"fallback":    result.Fallback,
			},
			CreatedAt: now,
		})
	}

	processingTime := time.Since(start).Seconds()
	status := &dbmysql.ModerationStatus{
		Status:          disposition,
		ModerationScore: overall,
		IsAutomated:     true,
		ProcessingTime:  &processingTime,
		LastUpdated:     now,
	}
	action := &dbmysql.ModerationAction{
		ActionType:  "automated_" + disposition,
		ActionNotes: fmt.Sprintf("Automated %s with score %.2f", disposition, overall),
		CreatedAt:   now,
	}

	if err := s.store.CreateProcessed(ctx, content, status, flags, action); err != nil {
		return nil, fmt.Errorf("persist moderation result: %w", err)
	}

	s.log.Info("content processed",
		zap.Uint64("content_id", content.ContentID),
		zap.String("content_type", contentType),
		zap.String("status", disposition),
		zap.Float64("score", overall),
		zap.Int("flags", len(flags)))

	return &ProcessResult{
		Content:        content,
		Status:         status,
		Flags:          flags,
		Score:          overall,
		ProcessingTime: processingTime,
	}, nil
}

// BatchProcess runs every item independently; one bad item does not
// abort its neighbors.
func (s *Service) BatchProcess(ctx context.Context, reqs []ProcessRequest) []BatchItemResult {
	results := make([]BatchItemResult, len(reqs))
	for i, req := range reqs {
		result, err := s.Process(ctx, req)
		results[i] = BatchItemResult{Index: i, Result: result, Err: err}
		if err != nil {
			s.log.Warn("batch item failed",
				zap.Int("index", i),
				zap.Error(err))
		}
	}
	return results
}

// UpdateStatus applies a human review decision. Only approved and
// rejected are accepted; the previous disposition is preserved in the
// audit entry and the verdict is marked as no longer automated.
func (s *Service) UpdateStatus(ctx context.Context, contentID uint64, newStatus string, reviewerID *uint64, notes string) (*dbmysql.ModerationStatus, error) {
	if err := common.ValidateReviewStatus(newStatus); err != nil {
		return nil, err
	}

	status, err := s.store.GetStatus(ctx, contentID)
	if err != nil {
		return nil, err
	}

	previous := status.Status
	status.Status = newStatus
	status.IsAutomated = false
	status.LastUpdated = time.Now()

	action := &dbmysql.ModerationAction{
		ContentID:      contentID,
		UserID:         reviewerID,
		ActionType:     newStatus,
		ActionNotes:    notes,
		PreviousStatus: &previous,
		CreatedAt:      status.LastUpdated,
	}

	if err := s.store.SaveStatusWithAction(ctx, status, action); err != nil {
		return nil, fmt.Errorf("apply review decision: %w", err)
	}

	s.log.Info("status updated",
		zap.Uint64("content_id", contentID),
		zap.String("previous", previous),
		zap.String("status", newStatus))
	return status, nil
}

// StatusUpdateRequest is one entry of a batch review decision.
type StatusUpdateRequest struct {
	ContentID uint64
	Status    string
	Notes     string
}

// BatchUpdateStatus applies review decisions independently and returns
// how many succeeded.
func (s *Service) BatchUpdateStatus(ctx context.Context, reviewerID *uint64, updates []StatusUpdateRequest) int {
	var updated int
	for _, update := range updates {
		if _, err := s.UpdateStatus(ctx, update.ContentID, update.Status, reviewerID, update.Notes); err != nil {
			s.log.Warn("batch status update failed",
				zap.Uint64("content_id", update.ContentID),
				zap.Error(err))
			continue
		}
		updated++
	}
	return updated
}

// GetContent returns one content item with verdict, flags and audit trail.
func (s *Service) GetContent(ctx context.Context, contentID uint64) (*dbmysql.Content, error) {
	return s.store.GetContent(ctx, contentID)
}

// ListReviewQueue returns content awaiting (or past) a given disposition.
func (s *Service) ListReviewQueue(ctx context.Context, status string, limit, offset int) ([]dbmysql.Content, error) {
	if status == "" {
		status = common.StatusPending
	}
	if status != common.StatusPending && status != common.StatusApproved && status != common.StatusRejected {
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidStatus, status)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListByStatus(ctx, status, limit, offset)
}

// FlagTypes returns every flag category observed so far.
func (s *Service) FlagTypes(ctx context.Context) ([]string, error) {
	return s.store.DistinctFlagTypes(ctx)
}
