package agent

import (
	"github.com/spacesedan/subsight/config"
	"github.com/spacesedan/subsight/internal/models"
)

// UtilityWeights are the four non-negative coefficients of the utility
// function.
type UtilityWeights struct {
	Engagement float64
	Sentiment  float64
	Relevance  float64
	Novelty    float64
}

// DefaultWeights reads the coefficients from the environment, falling back
// to the stock 0.4/0.2/0.2/0.2 split.
func DefaultWeights() UtilityWeights {
	return UtilityWeights{
		Engagement: config.GetFloat("WEIGHT_ENGAGEMENT", 0.4),
		Sentiment:  config.GetFloat("WEIGHT_SENTIMENT", 0.2),
		Relevance:  config.GetFloat("WEIGHT_RELEVANCE", 0.2),
		Novelty:    config.GetFloat("WEIGHT_NOVELTY", 0.2),
	}
}

// Score is the weighted sum of the metrics. No normalization is applied: if
// the weights do not sum to 1 the result can leave the nominal [0,1] range.
func (w UtilityWeights) Score(m models.UtilityMetrics) float64 {
	return w.Engagement*m.EngagementRate +
		w.Sentiment*m.SentimentScore +
		w.Relevance*m.RelevanceScore +
		w.Novelty*m.NoveltyScore
}
