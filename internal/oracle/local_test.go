package oracle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalAnalyzerSentimentBoundedAndOrdered(t *testing.T) {
	analyzer := NewLocalAnalyzer()
	ctx := context.Background()

	positive, err := analyzer.AnalyzeSubmission(ctx, "This library is wonderful", "I love how great and helpful it is, amazing work!")
	require.NoError(t, err)
	negative, err := analyzer.AnalyzeSubmission(ctx, "This library is terrible", "I hate how broken and awful it is, horrible work.")
	require.NoError(t, err)

	for _, analysis := range []float64{positive.Sentiment, negative.Sentiment} {
		assert.GreaterOrEqual(t, analysis, 0.0)
		assert.LessOrEqual(t, analysis, 1.0)
	}
	assert.Greater(t, positive.Sentiment, negative.Sentiment)
	assert.Equal(t, []string{"general"}, positive.Topics)
}

func TestLocalAnalyzerPlaceholderScores(t *testing.T) {
	analyzer := NewLocalAnalyzer()
	ctx := context.Background()

	relevance, err := analyzer.Relevance(ctx, "text", "golang")
	require.NoError(t, err)
	assert.Equal(t, 0.5, relevance)

	novelty, err := analyzer.Novelty(ctx, "text", "golang")
	require.NoError(t, err)
	assert.Equal(t, 0.5, novelty)
}
