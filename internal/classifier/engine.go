package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"modguard/internal/common"
)

const explanationLimit = 10

// ScoreResult is one category's classification outcome. Fallback marks
// placeholder scores (untrained model, media stub) so callers can tell
// genuine model output from substitutes.
type ScoreResult struct {
	Score    float64 `json:"score"`
	Fallback bool    `json:"fallback"`
	Reason   string  `json:"reason,omitempty"`
}

// TermWeight is one entry of an explanation, a vocabulary term and its
// learned (or heuristic) weight.
type TermWeight struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}

// categoryModel pairs one category's vectorizer with its classifier.
// Instances are immutable once published into the engine state; training
// builds a fresh pair and swaps the reference.
type categoryModel struct {
	vectorizer *Vectorizer
	model      *LogisticModel
}

func (cm *categoryModel) trained() bool {
	return cm != nil && cm.vectorizer.Trained() && cm.model.Trained()
}

type engineState struct {
	categories []string
	models     map[string]*categoryModel
	thresholds map[string]float64
}

// Engine scores text against every known category. Reads proceed
// concurrently; training and artifact loads publish whole replacement
// models under the write lock, so a classify call observes either the
// fully-old or fully-new state, never a partial swap.
type Engine struct {
	mu    sync.RWMutex
	state *engineState
	log   *zap.Logger
}

// DefaultCategories returns the closed category set in scoring order.
func DefaultCategories() []string {
	return []string{"profanity", "hate_speech", "violence", "sexual_content", "harassment"}
}

func defaultThresholds() map[string]float64 {
	return map[string]float64{
		"profanity":      0.7,
		"hate_speech":    0.65,
		"violence":       0.7,
		"sexual_content": 0.7,
		"harassment":     0.65,
		"overall":        0.6,
	}
}

// NewEngine creates an untrained engine over the default category set.
func NewEngine(log *zap.Logger) *Engine {
	categories := DefaultCategories()
	models := make(map[string]*categoryModel, len(categories))
	for _, category := range categories {
		models[category] = &categoryModel{
			vectorizer: NewVectorizer(),
			model:      NewLogisticModel(),
		}
	}

	return &Engine{
		state: &engineState{
			categories: categories,
			models:     models,
			thresholds: defaultThresholds(),
		},
		log: log,
	}
}

func (e *Engine) snapshotState() *engineState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Categories returns a copy of the category set.
func (e *Engine) Categories() []string {
	state := e.snapshotState()
	out := make([]string, len(state.categories))
	copy(out, state.categories)
	return out
}

// Threshold returns the configured threshold for a category, defaulting
// to 0.5 for unknown categories.
func (e *Engine) Threshold(category string) float64 {
	state := e.snapshotState()
	if threshold, ok := state.thresholds[category]; ok {
		return threshold
	}
	return 0.5
}

// Thresholds returns a copy of the full threshold map.
func (e *Engine) Thresholds() map[string]float64 {
	state := e.snapshotState()
	out := make(map[string]float64, len(state.thresholds))
	for category, threshold := range state.thresholds {
		out[category] = threshold
	}
	return out
}

// Train fits the category's vectorizer and classifier on the given texts
// and binary labels and returns the training-set accuracy. Unknown
// categories and failed fits return an error the caller may log and skip;
// the previous model for the category stays in place on failure.
func (e *Engine) Train(category string, texts []string, labels []int) (float64, error) {
	state := e.snapshotState()
	if _, ok := state.models[category]; !ok {
		return 0, fmt.Errorf("%w: %q", common.ErrUnknownCategory, category)
	}

	vectorizer := NewVectorizer()
	vectorizer.Fit(texts)

	samples := make([]map[int]float64, len(texts))
	for i, text := range texts {
		samples[i] = vectorizer.Transform(text)
	}

	model := NewLogisticModel()
	if err := model.Fit(samples, labels, len(vectorizer.IDF)); err != nil {
		e.log.Warn("training failed",
			zap.String("category", category),
			zap.Error(err))
		return 0, fmt.Errorf("fit %s classifier: %w", category, err)
	}

	var correct int
	for i, x := range samples {
		predicted := 0
		if model.Prob(x) >= 0.5 {
			predicted = 1
		}
		actual := 0
		if labels[i] != 0 {
			actual = 1
		}
		if predicted == actual {
			correct++
		}
	}
	accuracy := float64(correct) / float64(len(samples))

	// Published states are immutable; swap in a copy with the new model
	// so concurrent readers never observe a map write.
	e.mu.Lock()
	old := e.state
	models := make(map[string]*categoryModel, len(old.models))
	for name, cm := range old.models {
		models[name] = cm
	}
	models[category] = &categoryModel{vectorizer: vectorizer, model: model}
	e.state = &engineState{
		categories: old.categories,
		models:     models,
		thresholds: old.thresholds,
	}
	e.mu.Unlock()

	e.log.Info("trained category classifier",
		zap.String("category", category),
		zap.Int("samples", len(samples)),
		zap.Float64("train_accuracy", accuracy))
	return accuracy, nil
}

// Classify scores text against every known category. A category whose
// model is untrained or unusable falls back to a pseudo-random score in
// (0.1, 0.9) so the pipeline never blocks on a missing model.
func (e *Engine) Classify(text string) map[string]ScoreResult {
	state := e.snapshotState()

	results := make(map[string]ScoreResult, len(state.categories))
	for _, category := range state.categories {
		cm := state.models[category]
		if !cm.trained() {
			results[category] = fallbackScore("model not trained")
			continue
		}
		if len(cm.model.Weights) != len(cm.vectorizer.IDF) {
			e.log.Warn("model/vocabulary size mismatch, using fallback score",
				zap.String("category", category))
			results[category] = fallbackScore("model/vocabulary mismatch")
			continue
		}

		x := cm.vectorizer.Transform(text)
		results[category] = ScoreResult{Score: cm.model.Prob(x)}
	}
	return results
}

// Explain returns the top terms behind a category's score, sorted by
// absolute weight. Trained models expose their learned coefficients; for
// untrained models a heuristic built from the category lexicon stands in,
// so every classification has an explanation even before training.
func (e *Engine) Explain(text, category string) []TermWeight {
	state := e.snapshotState()

	cm, ok := state.models[category]
	if !ok || !cm.trained() {
		return heuristicExplanation(text, category)
	}

	terms := cm.vectorizer.TermsIn(text)
	pairs := make([]TermWeight, 0, len(terms))
	for _, term := range terms {
		idx := cm.vectorizer.Vocabulary[term]
		if idx < len(cm.model.Weights) {
			pairs = append(pairs, TermWeight{Term: term, Weight: cm.model.Weights[idx]})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return math.Abs(pairs[i].Weight) > math.Abs(pairs[j].Weight)
	})
	if len(pairs) > explanationLimit {
		pairs = pairs[:explanationLimit]
	}
	return pairs
}

// Snapshot serializes the full engine state as a versioned artifact.
func (e *Engine) Snapshot() *Artifact {
	state := e.snapshotState()

	artifact := &Artifact{
		SchemaVersion: SchemaVersion,
		ArtifactID:    uuid.NewString(),
		SavedAt:       time.Now().UTC(),
		Categories:    append([]string(nil), state.categories...),
		Thresholds:    make(map[string]float64, len(state.thresholds)),
		Models:        make(map[string]ArtifactModel, len(state.models)),
	}
	for category, threshold := range state.thresholds {
		artifact.Thresholds[category] = threshold
	}
	for category, cm := range state.models {
		artifact.Models[category] = ArtifactModel{
			Vocabulary: cm.vectorizer.Vocabulary,
			IDF:        cm.vectorizer.IDF,
			Weights:    cm.model.Weights,
			Intercept:  cm.model.Intercept,
			Trained:    cm.trained(),
		}
	}
	return artifact
}

// Restore replaces the engine state with the artifact's contents. The new
// state is built completely before being published.
func (e *Engine) Restore(artifact *Artifact) error {
	if artifact.SchemaVersion != SchemaVersion {
		return fmt.Errorf("%w: got %d, want %d",
			common.ErrSchemaVersion, artifact.SchemaVersion, SchemaVersion)
	}

	state := &engineState{
		categories: append([]string(nil), artifact.Categories...),
		models:     make(map[string]*categoryModel, len(artifact.Categories)),
		thresholds: make(map[string]float64, len(artifact.Thresholds)),
	}
	for category, threshold := range artifact.Thresholds {
		state.thresholds[category] = threshold
	}
	for _, category := range artifact.Categories {
		vectorizer := NewVectorizer()
		model := NewLogisticModel()
		if am, ok := artifact.Models[category]; ok {
			vectorizer.Vocabulary = am.Vocabulary
			vectorizer.IDF = am.IDF
			model.Weights = am.Weights
			model.Intercept = am.Intercept
		}
		state.models[category] = &categoryModel{vectorizer: vectorizer, model: model}
	}

	e.mu.Lock()
	e.state = state
	e.mu.Unlock()
	return nil
}

// Save serializes the engine into the artifact store.
func (e *Engine) Save(ctx context.Context, store ArtifactStore) error {
	data, err := json.Marshal(e.Snapshot())
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	if err := store.Save(ctx, data); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	e.log.Info("model artifact saved", zap.Int("bytes", len(data)))
	return nil
}

// Load replaces the engine state from the artifact store. On any failure
// (missing blob, corrupt payload, schema mismatch) the current state is
// left untouched so the caller can keep running untrained.
func (e *Engine) Load(ctx context.Context, store ArtifactStore) error {
	data, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return fmt.Errorf("decode artifact: %w", err)
	}
	if err := e.Restore(&artifact); err != nil {
		return err
	}

	e.log.Info("model artifact loaded",
		zap.String("artifact_id", artifact.ArtifactID),
		zap.Strings("categories", artifact.Categories))
	return nil
}

func fallbackScore(reason string) ScoreResult {
	return ScoreResult{
		Score:    0.1 + rand.Float64()*0.8,
		Fallback: true,
		Reason:   reason,
	}
}

// heuristicExplanation matches words in the text against the category
// lexicon with high positive weights, mixes in a sample of other words
// with small weights, and sorts like the trained path.
func heuristicExplanation(text, category string) []TermWeight {
	words := strings.Fields(strings.ToLower(text))
	lexicon := make(map[string]bool)
	for _, word := range lexiconFor(category) {
		lexicon[word] = true
	}

	var matched, other []string
	for _, word := range words {
		clean := cleanWord(word)
		if clean == "" {
			continue
		}
		if lexicon[clean] {
			matched = append(matched, clean)
		} else {
			other = append(other, clean)
		}
	}

	sampled := len(other)
	if sampled > 5 {
		sampled = 5
	}
	for _, i := range rand.Perm(len(other))[:sampled] {
		matched = append(matched, other[i])
	}

	explanation := make([]TermWeight, 0, len(matched))
	for _, word := range matched {
		var weight float64
		if lexicon[word] {
			weight = 0.2 + rand.Float64()*0.7
		} else {
			weight = -0.4 + rand.Float64()*0.8
		}
		explanation = append(explanation, TermWeight{
			Term:   word,
			Weight: math.Round(weight*10000) / 10000,
		})
	}

	sort.Slice(explanation, func(i, j int) bool {
		return math.Abs(explanation[i].Weight) > math.Abs(explanation[j].Weight)
	})
	return explanation
}

func cleanWord(word string) string {
	var b strings.Builder
	for _, r := range word {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
