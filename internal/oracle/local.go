package oracle

import (
	"context"

	"github.com/spacesedan/subsight/internal/models"
	"github.com/spacesedan/subsight/internal/sentiment"
)

// LocalAnalyzer scores content without the external service: VADER for
// sentiment, neutral placeholders for everything else. Used when no API key
// is configured.
type LocalAnalyzer struct{}

func NewLocalAnalyzer() *LocalAnalyzer {
	return &LocalAnalyzer{}
}

func (l *LocalAnalyzer) AnalyzeSubmission(_ context.Context, title, content string) (models.ContentAnalysis, error) {
	text := title
	if content != "" {
		text = title + "\n\n" + content
	}

	return models.ContentAnalysis{
		Sentiment: sentiment.Score01(text),
		Topics:    []string{"general"},
	}, nil
}

func (l *LocalAnalyzer) Relevance(_ context.Context, _, _ string) (float64, error) {
	return 0.5, nil
}

func (l *LocalAnalyzer) Novelty(_ context.Context, _, _ string) (float64, error) {
	return 0.5, nil
}
