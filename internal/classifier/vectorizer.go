package classifier

import (
	"math"
	"sort"
	"strings"
)

const (
	defaultMaxFeatures = 5000
	defaultNgramMax    = 2
)

// Vectorizer maps text onto L2-normalized TF-IDF features over a bag of
// 1..NgramMax grams with a bounded vocabulary.
type Vectorizer struct {
	MaxFeatures int            `json:"max_features"`
	NgramMax    int            `json:"ngram_max"`
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
}

func NewVectorizer() *Vectorizer {
	return &Vectorizer{
		MaxFeatures: defaultMaxFeatures,
		NgramMax:    defaultNgramMax,
	}
}

// Trained reports whether Fit has built a vocabulary.
func (v *Vectorizer) Trained() bool {
	return len(v.Vocabulary) > 0
}

// Fit builds the vocabulary and inverse document frequencies from the
// corpus. When the corpus yields more terms than MaxFeatures, the most
// frequent terms win; ties break lexicographically so fits are reproducible.
func (v *Vectorizer) Fit(texts []string) {
	df := make(map[string]int)
	counts := make(map[string]int)

	for _, text := range texts {
		seen := make(map[string]bool)
		for _, term := range v.ngrams(text) {
			counts[term]++
			if !seen[term] {
				seen[term] = true
				df[term]++
			}
		}
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > v.MaxFeatures {
		terms = terms[:v.MaxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(texts))
	v.Vocabulary = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	for i, term := range terms {
		v.Vocabulary[term] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
}

// Transform converts text into a sparse feature vector. Unknown terms are
// dropped; the result is L2-normalized.
func (v *Vectorizer) Transform(text string) map[int]float64 {
	vec := make(map[int]float64)
	for _, term := range v.ngrams(text) {
		if idx, ok := v.Vocabulary[term]; ok {
			vec[idx] += v.IDF[idx]
		}
	}

	var norm float64
	for _, val := range vec {
		norm += val * val
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range vec {
			vec[idx] /= norm
		}
	}
	return vec
}

// TermsIn returns the vocabulary terms present in text, deduplicated.
func (v *Vectorizer) TermsIn(text string) []string {
	seen := make(map[string]bool)
	var present []string
	for _, term := range v.ngrams(text) {
		if _, ok := v.Vocabulary[term]; ok && !seen[term] {
			seen[term] = true
			present = append(present, term)
		}
	}
	return present
}

func (v *Vectorizer) ngrams(text string) []string {
	words := strings.Fields(strings.ToLower(text))
	terms := make([]string, 0, len(words)*v.NgramMax)
	for i := range words {
		terms = append(terms, words[i])
		for n := 2; n <= v.NgramMax; n++ {
			if i+n <= len(words) {
				terms = append(terms, strings.Join(words[i:i+n], " "))
			}
		}
	}
	return terms
}
