package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modguard/internal/common"
)

func TestMediaScoresCategorySets(t *testing.T) {
	image := mediaScores(common.ContentTypeImage, common.JSONMap{"filename": "a.png"})
	video := mediaScores(common.ContentTypeVideo, common.JSONMap{"filename": "a.mp4"})

	imageTypes := make([]string, 0, len(image))
	for category := range image {
		imageTypes = append(imageTypes, category)
	}
	videoTypes := make([]string, 0, len(video))
	for category := range video {
		videoTypes = append(videoTypes, category)
	}

	assert.ElementsMatch(t,
		[]string{"violence", "adult_content", "graphic_violence", "sexual_content", "hate_symbols"},
		imageTypes)
	assert.ElementsMatch(t,
		[]string{"violence", "adult_content", "graphic_violence", "sexual_content", "dangerous_activity", "hate_speech"},
		videoTypes)
}

func TestMediaScoresBoundedAndFlaggedFallback(t *testing.T) {
	scores := mediaScores(common.ContentTypeImage, common.JSONMap{"filename": "b.png"})
	require.NotEmpty(t, scores)

	for category, result := range scores {
		assert.True(t, result.Fallback, category)
		assert.GreaterOrEqual(t, result.Score, 0.05, category)
		assert.LessOrEqual(t, result.Score, 0.95, category)
	}
}
