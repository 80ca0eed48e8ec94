// Package recommend renders learned patterns into actionable posting
// suggestions.
package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spacesedan/subsight/internal/agent"
	"github.com/spacesedan/subsight/internal/models"
)

const maxRecommendations = 5

// PatternSource is the read side of the persistence layer.
type PatternSource interface {
	GetPatterns(ctx context.Context, subreddit string) ([]models.LearnedPattern, error)
}

type Recommendation struct {
	Type       string
	Confidence float64
	Suggestion string
}

// Engine ranks stored patterns by confidence and turns the best ones into
// suggestions.
type Engine struct {
	patterns PatternSource
	states   *agent.StateStore
}

func NewEngine(patterns PatternSource, states *agent.StateStore) *Engine {
	return &Engine{patterns: patterns, states: states}
}

// Recommend returns up to five suggestions for a subreddit, highest
// confidence first; empty when nothing has been learned yet.
func (e *Engine) Recommend(ctx context.Context, subreddit string) ([]Recommendation, error) {
	patterns, err := e.patterns.GetPatterns(ctx, subreddit)
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		return []Recommendation{}, nil
	}
	// Patterns persist across runs but the model does not; without model
	// data for this community there is nothing current to recommend against.
	if e.states != nil && len(e.states.Get(subreddit)) == 0 {
		return []Recommendation{}, nil
	}

	// The store already orders by confidence, but a stable re-sort keeps the
	// contract independent of the source.
	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Confidence > patterns[j].Confidence
	})

	if len(patterns) > maxRecommendations {
		patterns = patterns[:maxRecommendations]
	}

	recommendations := make([]Recommendation, 0, len(patterns))
	for _, p := range patterns {
		recommendations = append(recommendations, Recommendation{
			Type:       p.PatternType,
			Confidence: p.Confidence,
			Suggestion: suggestionFor(p),
		})
	}

	return recommendations, nil
}

func suggestionFor(p models.LearnedPattern) string {
	if p.PatternType == models.PatternTypeSuccessfulPost {
		return fmt.Sprintf(
			"Consider posting during hour %d with content length around %d characters focusing on topics: %s",
			p.Data.PostHour, p.Data.ContentLength, strings.Join(p.Data.Topics, ", "))
	}

	return "No specific suggestion available"
}
