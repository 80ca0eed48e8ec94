package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spacesedan/subsight/internal/models"
)

const (
	relevanceThreshold = 0.3 // inclusive gate, better to over-research
	needThreshold      = 0.6
)

// DiscoverySource extends the content source with community search.
type DiscoverySource interface {
	ContentSource
	SearchSubreddits(ctx context.Context, query string, limit int) ([]models.SubredditInfo, error)
}

// ResearchOracle supplies the market-research judgments.
type ResearchOracle interface {
	IsRelevantSubreddit(ctx context.Context, description, targetMarket string) (models.SubredditRelevance, error)
	AnalyzeMarketNeed(ctx context.Context, text string) (models.MarketNeed, error)
}

// Researcher discovers communities relevant to a target market and mines
// their fresh posts for product needs.
type Researcher struct {
	source DiscoverySource
	oracle ResearchOracle
	outDir string
	now    func() time.Time
}

func NewResearcher(source DiscoverySource, oracle ResearchOracle, outDir string) *Researcher {
	return &Researcher{source: source, oracle: oracle, outDir: outDir, now: time.Now}
}

// Research searches communities matching the query, keeps the ones the
// oracle judges relevant to the target market, and analyzes their newest
// posts for needs. A failing subreddit is logged and skipped.
func (r *Researcher) Research(ctx context.Context, market, query string, subredditLimit, postLimit int) ([]models.SubredditInsights, error) {
	slog.Info("[Researcher] Searching for subreddits",
		slog.String("query", query),
		slog.String("market", market))

	// Overscan so relevance filtering still fills the limit.
	candidates, err := r.source.SearchSubreddits(ctx, query, subredditLimit*2)
	if err != nil {
		return nil, fmt.Errorf("[Researcher] Subreddit search failed: %w", err)
	}

	var reports []models.SubredditInsights
	for _, candidate := range candidates {
		if len(reports) >= subredditLimit {
			break
		}
		select {
		case <-ctx.Done():
			return reports, ctx.Err()
		default:
		}

		description := candidate.Description
		if description == "" {
			description = candidate.Title
		}

		relevance, err := r.oracle.IsRelevantSubreddit(ctx, description, market)
		if err != nil {
			slog.Warn("[Researcher] Relevance check failed",
				slog.String("subreddit", candidate.Name),
				slog.String("error", err.Error()))
			continue
		}

		slog.Info("[Researcher] Relevance analysis",
			slog.String("subreddit", candidate.Name),
			slog.Bool("relevant", relevance.IsRelevant),
			slog.Float64("confidence", relevance.Confidence),
			slog.String("reason", relevance.Reason))

		if !relevance.IsRelevant || relevance.Confidence <= relevanceThreshold {
			continue
		}

		insights, err := r.analyzeSubreddit(ctx, candidate, postLimit)
		if err != nil {
			slog.Error("[Researcher] Error analyzing subreddit",
				slog.String("subreddit", candidate.Name),
				slog.String("error", err.Error()))
			continue
		}
		if len(insights.NeedsFound) == 0 {
			continue
		}

		reports = append(reports, insights)
		if err := r.saveInsights(insights); err != nil {
			slog.Error("[Researcher] Error saving insights",
				slog.String("subreddit", insights.Subreddit),
				slog.String("error", err.Error()))
		}
	}

	return reports, nil
}

func (r *Researcher) analyzeSubreddit(ctx context.Context, info models.SubredditInfo, postLimit int) (models.SubredditInsights, error) {
	insights := models.SubredditInsights{
		Subreddit:   info.Name,
		Title:       info.Title,
		Description: info.Description,
		Subscribers: info.Subscribers,
		NeedsFound:  []models.NeedFinding{},
	}

	posts, err := r.source.FetchNewest(ctx, info.Name, postLimit)
	if err != nil {
		return insights, err
	}

	analyzed := 0
	for _, post := range posts {
		if post.Stickied {
			continue
		}

		text := fmt.Sprintf("Title: %s\n\nContent: %s", post.Title, post.Selftext)
		need, err := r.oracle.AnalyzeMarketNeed(ctx, text)
		if err != nil {
			slog.Warn("[Researcher] Need analysis failed",
				slog.String("submission_id", post.ID),
				slog.String("error", err.Error()))
			continue
		}
		analyzed++

		if need.IsNeed && need.Confidence > needThreshold {
			insights.NeedsFound = append(insights.NeedsFound, models.NeedFinding{
				URL:        "https://reddit.com" + post.Permalink,
				Title:      post.Title,
				Score:      post.Score,
				Confidence: need.Confidence,
				Need:       need,
			})
		}
	}

	slog.Info("[Researcher] Analyzed posts",
		slog.String("subreddit", info.Name),
		slog.Int("analyzed", analyzed),
		slog.Int("needs_found", len(insights.NeedsFound)))

	return insights, nil
}

func (r *Researcher) saveInsights(insights models.SubredditInsights) error {
	if r.outDir == "" {
		return nil
	}

	payload, err := json.MarshalIndent(insights, "", "  ")
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("market_insights_%s_%s.json", insights.Subreddit, r.now().Format("20060102_150405"))
	path := filepath.Join(r.outDir, filename)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return err
	}

	slog.Info("[Researcher] Saved insights", slog.String("path", path))
	return nil
}
