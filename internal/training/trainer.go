// Package training fits category models from labeled CSV datasets and
// reports per-category evaluation metrics.
package training

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"modguard/internal/classifier"
	"modguard/internal/common"
	"modguard/internal/moderation"
)

// Trainer fits the engine's category models and persists the resulting
// artifact.
type Trainer struct {
	engine *classifier.Engine
	store  classifier.ArtifactStore
	log    *zap.Logger
}

func NewTrainer(engine *classifier.Engine, store classifier.ArtifactStore, log *zap.Logger) *Trainer {
	return &Trainer{engine: engine, store: store, log: log}
}

// EvalMetrics is the held-out evaluation of one category model.
// Precision, recall and F1 degrade to zero when their denominators are
// empty rather than erroring.
type EvalMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1_score"`
}

// CategoryResult summarizes one category's training run.
type CategoryResult struct {
	TrainSize     int     `json:"train_size"`
	TestSize      int     `json:"test_size"`
	TrainAccuracy float64 `json:"train_accuracy"`
	TestAccuracy  float64 `json:"test_accuracy"`
	Precision     float64 `json:"precision"`
	Recall        float64 `json:"recall"`
	F1            float64 `json:"f1_score"`
}

// Report is the outcome of one full training run.
type Report struct {
	TrainedAt     time.Time                 `json:"trained_at"`
	ArtifactSaved bool                      `json:"artifact_saved"`
	Skipped       []string                  `json:"skipped_categories,omitempty"`
	Categories    map[string]CategoryResult `json:"categories"`
}

// ModelInfo describes the persisted artifact and the live engine.
type ModelInfo struct {
	Exists       bool               `json:"model_exists"`
	Location     string             `json:"location,omitempty"`
	LastModified *time.Time         `json:"last_modified,omitempty"`
	Categories   []string           `json:"categories"`
	Thresholds   map[string]float64 `json:"thresholds"`
}

type labeledSample struct {
	text  string
	label int
}

// TrainFromCSV trains every category present in the CSV at path and
// saves the artifact. Both dataset shapes are accepted: long rows of
// (text, category, label) and wide rows of text plus one binary column
// per category. Unknown categories are skipped with a warning; a
// category whose fit fails (for example a single-class split) is skipped
// the same way so the remaining categories still train.
func (t *Trainer) TrainFromCSV(ctx context.Context, path string, testFraction float64, seed int64) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open training data: %w", err)
	}
	defer f.Close()

	byCategory, err := readDataset(f)
	if err != nil {
		return nil, err
	}
	if testFraction <= 0 || testFraction >= 1 {
		testFraction = 0.2
	}

	report := &Report{
		TrainedAt:  time.Now().UTC(),
		Categories: make(map[string]CategoryResult),
	}

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	rng := rand.New(rand.NewSource(seed))
	for _, category := range categories {
		samples := byCategory[category]

		trainSet, testSet := stratifiedSplit(samples, testFraction, rng)

		trainTexts := make([]string, len(trainSet))
		trainLabels := make([]int, len(trainSet))
		for i, s := range trainSet {
			trainTexts[i] = moderation.Normalize(s.text)
			trainLabels[i] = s.label
		}

		trainAccuracy, err := t.engine.Train(category, trainTexts, trainLabels)
		if err != nil {
			if errors.Is(err, common.ErrUnknownCategory) {
				t.log.Warn("skipping unknown category", zap.String("category", category))
			} else {
				t.log.Warn("skipping category after failed fit",
					zap.String("category", category),
					zap.Error(err))
			}
			report.Skipped = append(report.Skipped, category)
			continue
		}

		testTexts := make([]string, len(testSet))
		testLabels := make([]int, len(testSet))
		for i, s := range testSet {
			testTexts[i] = moderation.Normalize(s.text)
			testLabels[i] = s.label
		}
		metrics := t.EvaluateCategory(category, testTexts, testLabels)

		report.Categories[category] = CategoryResult{
			TrainSize:     len(trainSet),
			TestSize:      len(testSet),
			TrainAccuracy: trainAccuracy,
			TestAccuracy:  metrics.Accuracy,
			Precision:     metrics.Precision,
			Recall:        metrics.Recall,
			F1:            metrics.F1,
		}
	}

	if len(report.Categories) == 0 {
		return report, fmt.Errorf("no trainable categories in %s", path)
	}

	if err := t.engine.Save(ctx, t.store); err != nil {
		t.log.Error("trained models could not be persisted", zap.Error(err))
	} else {
		report.ArtifactSaved = true
	}
	return report, nil
}

// EvaluateCategory scores texts with the current model and compares the
// thresholded predictions to the labels. Empty input yields all zeros.
func (t *Trainer) EvaluateCategory(category string, texts []string, labels []int) EvalMetrics {
	if len(texts) == 0 {
		return EvalMetrics{}
	}

	threshold := t.engine.Threshold(category)
	var correct, truePos, falsePos, falseNeg int
	for i, text := range texts {
		scores := t.engine.Classify(text)
		predicted := 0
		if result, ok := scores[category]; ok && result.Score >= threshold {
			predicted = 1
		}
		actual := 0
		if labels[i] != 0 {
			actual = 1
		}

		if predicted == actual {
			correct++
		}
		switch {
		case predicted == 1 && actual == 1:
			truePos++
		case predicted == 1 && actual == 0:
			falsePos++
		case predicted == 0 && actual == 1:
			falseNeg++
		}
	}

	metrics := EvalMetrics{
		Accuracy: float64(correct) / float64(len(texts)),
	}
	if truePos+falsePos > 0 {
		metrics.Precision = float64(truePos) / float64(truePos+falsePos)
	}
	if truePos+falseNeg > 0 {
		metrics.Recall = float64(truePos) / float64(truePos+falseNeg)
	}
	if metrics.Precision+metrics.Recall > 0 {
		metrics.F1 = 2 * metrics.Precision * metrics.Recall / (metrics.Precision + metrics.Recall)
	}
	return metrics
}

// Info reports the persisted artifact state and the live category set.
func (t *Trainer) Info(ctx context.Context) (*ModelInfo, error) {
	artifactInfo, err := t.store.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("artifact info: %w", err)
	}

	info := &ModelInfo{
		Exists:     artifactInfo.Exists,
		Location:   artifactInfo.Location,
		Categories: t.engine.Categories(),
		Thresholds: t.engine.Thresholds(),
	}
	if artifactInfo.Exists {
		modified := artifactInfo.LastModified
		info.LastModified = &modified
	}
	return info, nil
}

// readDataset parses either dataset shape into per-category samples.
func readDataset(r io.Reader) (map[string][]labeledSample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read dataset header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	textCol, hasText := columns["text"]
	if !hasText {
		return nil, fmt.Errorf("dataset missing required column %q", "text")
	}

	byCategory := make(map[string][]labeledSample)

	if categoryCol, long := columns["category"]; long {
		labelCol, hasLabel := columns["label"]
		if !hasLabel {
			return nil, fmt.Errorf("dataset missing required column %q", "label")
		}
		for {
			record, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("read dataset row: %w", err)
			}
			if len(record) <= textCol || len(record) <= categoryCol || len(record) <= labelCol {
				continue
			}
			label := 0
			if record[labelCol] == "1" {
				label = 1
			}
			category := record[categoryCol]
			byCategory[category] = append(byCategory[category], labeledSample{
				text:  record[textCol],
				label: label,
			})
		}
		return byCategory, nil
	}

	// Wide shape: every non-text column is a binary category column.
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dataset row: %w", err)
		}
		if len(record) <= textCol {
			continue
		}
		for name, col := range columns {
			if name == "text" || len(record) <= col {
				continue
			}
			label := 0
			if record[col] == "1" {
				label = 1
			}
			byCategory[name] = append(byCategory[name], labeledSample{
				text:  record[textCol],
				label: label,
			})
		}
	}
	return byCategory, nil
}

// stratifiedSplit shuffles each class independently and holds out
// testFraction of it, so both splits keep the dataset's class balance.
func stratifiedSplit(samples []labeledSample, testFraction float64, rng *rand.Rand) (train, test []labeledSample) {
	var positives, negatives []labeledSample
	for _, s := range samples {
		if s.label != 0 {
			positives = append(positives, s)
		} else {
			negatives = append(negatives, s)
		}
	}

	splitClass := func(class []labeledSample) {
		rng.Shuffle(len(class), func(i, j int) {
			class[i], class[j] = class[j], class[i]
		})
		holdout := int(float64(len(class)) * testFraction)
		test = append(test, class[:holdout]...)
		train = append(train, class[holdout:]...)
	}
	splitClass(negatives)
	splitClass(positives)
	return train, test
}
