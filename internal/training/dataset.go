package training

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
)

// Sample is one labeled row of a training dataset.
type Sample struct {
	Text     string `json:"text"`
	Category string `json:"category"`
	Label    int    `json:"label"`
}

type pooledText struct {
	text  string
	label int
}

// Curated example pools per category, each text carrying its true label.
var samplePools = map[string][]pooledText{
	"profanity": {
		{"This is a normal sentence without any issues.", 0},
		{"I hate when people use bad words like d**n and f**k.", 1},
		{"What the heck is going on with this service?", 0},
		{"This product is really great, I love it!", 0},
		{"You are such an idiot for making this decision.", 1},
		{"This stupid app keeps crashing on my phone.", 1},
		{"Are you out of your mind with these prices?", 0},
		{"The customer service was actually quite helpful.", 0},
		{"That's complete garbage and you know it.", 1},
		{"These new features are really cool and useful.", 0},
	},
	"hate_speech": {
		{"I believe all people deserve equal treatment and respect.", 0},
		{"People from that country are always causing problems.", 1},
		{"Different cultural perspectives enrich our community.", 0},
		{"I can't stand how those people always behave.", 1},
		{"We should learn from diverse experiences and backgrounds.", 0},
		{"Why do they let those kind of people work here?", 1},
		{"Everyone has unique talents to contribute to society.", 0},
		{"Those people don't belong in our neighborhood.", 1},
		{"It's important to understand different viewpoints.", 0},
		{"I don't want my kids around people like that.", 1},
	},
	"violence": {
		{"Let's discuss this issue calmly and find a solution.", 0},
		{"I'm going to punch you if you say that again.", 1},
		{"The movie had some intense action scenes.", 0},
		{"I'll break your face if you don't back off.", 1},
		{"The sports team really crushed their opponents yesterday.", 0},
		{"I want to kill whoever designed this user interface.", 1},
		{"The debate was heated but remained respectful.", 0},
		{"Someone should take a bat to that car.", 1},
		{"Please handle this delicate situation with care.", 0},
		{"I'm going to destroy anyone who stands in my way.", 1},
	},
	"sexual_content": {
		{"The restaurant offers a lovely atmosphere for dining.", 0},
		{"She looked so hot in that outfit last night.", 1},
		{"The weather forecast predicts warm temperatures tomorrow.", 0},
		{"That's a very provocative and revealing photo.", 1},
		{"The art exhibit features various landscape paintings.", 0},
		{"This movie has too many naked scenes for my taste.", 1},
		{"The new coffee shop has a cozy, welcoming interior.", 0},
		{"I want to see you without those clothes on later.", 1},
		{"The hiking trail offers beautiful scenic views.", 0},
		{"Your body looks amazing in that swimsuit photo.", 1},
	},
	"harassment": {
		{"Please let me know if you need any assistance.", 0},
		{"I'm going to keep messaging you until you respond.", 1},
		{"I respect your decision and won't pressure you further.", 0},
		{"Why do you keep ignoring me? Answer me now!", 1},
		{"Thank you for your time and consideration.", 0},
		{"I know where you live and I'll find you.", 1},
		{"Let's schedule a meeting at your convenience.", 0},
		{"You can't avoid me forever, I'll make sure of that.", 1},
		{"I understand this isn't a good time, I'll check back later.", 0},
		{"I'm watching everything you do online.", 1},
	},
}

// GenerateSampleDataset builds a labeled dataset in the long CSV shape
// from the curated pools. noiseFraction of the rows get a random label
// instead of the true one, so trained demo models stay imperfect on
// purpose. The same seed reproduces the same dataset.
func GenerateSampleDataset(numSamples int, noiseFraction float64, seed int64) []Sample {
	if numSamples <= 0 {
		numSamples = 100
	}
	if noiseFraction < 0 || noiseFraction > 1 {
		noiseFraction = 0.3
	}

	categories := make([]string, 0, len(samplePools))
	for category := range samplePools {
		categories = append(categories, category)
	}
	// Map iteration order is random; sort for reproducibility.
	sort.Strings(categories)

	rng := rand.New(rand.NewSource(seed))
	samples := make([]Sample, 0, numSamples)
	for i := 0; i < numSamples; i++ {
		category := categories[rng.Intn(len(categories))]
		pool := samplePools[category]
		entry := pool[rng.Intn(len(pool))]

		label := entry.label
		if rng.Float64() < noiseFraction {
			label = rng.Intn(2)
		}

		samples = append(samples, Sample{
			Text:     entry.text,
			Category: category,
			Label:    label,
		})
	}
	return samples
}

// WriteSampleCSV writes samples in the long shape TrainFromCSV accepts.
func WriteSampleCSV(path string, samples []Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create sample dataset: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write([]string{"text", "category", "label"}); err != nil {
		return fmt.Errorf("write dataset header: %w", err)
	}
	for _, sample := range samples {
		record := []string{sample.Text, sample.Category, strconv.Itoa(sample.Label)}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write dataset row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush dataset: %w", err)
	}
	return nil
}
