package classifier

import (
	"fmt"
	"math"
)

// LogisticModel is a binary logistic regression classifier trained with
// batch gradient descent. Class-imbalance correction weighs each class
// inversely to its frequency, matching a "balanced" fit.
type LogisticModel struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`

	MaxIter      int     `json:"max_iter"`
	LearningRate float64 `json:"learning_rate"`
	L2Penalty    float64 `json:"l2_penalty"`
}

func NewLogisticModel() *LogisticModel {
	return &LogisticModel{
		MaxIter:      1000,
		LearningRate: 0.5,
		L2Penalty:    1e-4,
	}
}

// Trained reports whether Fit has produced weights.
func (m *LogisticModel) Trained() bool {
	return len(m.Weights) > 0
}

// Fit trains the model on sparse samples with binary labels. dim is the
// feature-space dimensionality. Fitting a single-class dataset fails.
func (m *LogisticModel) Fit(samples []map[int]float64, labels []int, dim int) error {
	if len(samples) == 0 || len(samples) != len(labels) {
		return fmt.Errorf("invalid training set: %d samples, %d labels", len(samples), len(labels))
	}

	var positives int
	for _, label := range labels {
		if label != 0 {
			positives++
		}
	}
	negatives := len(labels) - positives
	if positives == 0 || negatives == 0 {
		return fmt.Errorf("training set contains a single class (%d positive, %d negative)", positives, negatives)
	}

	n := float64(len(samples))
	posWeight := n / (2 * float64(positives))
	negWeight := n / (2 * float64(negatives))

	weights := make([]float64, dim)
	var intercept float64
	grad := make([]float64, dim)

	for iter := 0; iter < m.MaxIter; iter++ {
		for i := range grad {
			grad[i] = 0
		}
		var gradB float64

		for i, x := range samples {
			var z float64
			for idx, val := range x {
				z += weights[idx] * val
			}
			z += intercept

			p := sigmoid(z)
			y := 0.0
			classWeight := negWeight
			if labels[i] != 0 {
				y = 1.0
				classWeight = posWeight
			}

			e := (p - y) * classWeight
			for idx, val := range x {
				grad[idx] += e * val
			}
			gradB += e
		}

		for j := range weights {
			weights[j] -= m.LearningRate * (grad[j]/n + m.L2Penalty*weights[j])
		}
		intercept -= m.LearningRate * gradB / n
	}

	m.Weights = weights
	m.Intercept = intercept
	return nil
}

// Prob returns the probability of the positive (violating) class.
func (m *LogisticModel) Prob(x map[int]float64) float64 {
	var z float64
	for idx, val := range x {
		if idx < len(m.Weights) {
			z += m.Weights[idx] * val
		}
	}
	return sigmoid(z + m.Intercept)
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
