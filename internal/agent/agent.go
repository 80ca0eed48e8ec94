// Package agent implements the utility-based learning loop: fetch new
// submissions, score them, remember what worked, and keep a per-subreddit
// model of what the community rewards.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/subsight/internal/clients"
	"github.com/spacesedan/subsight/internal/models"
)

// patternThreshold gates which submissions are remembered as successful
// patterns. Strictly greater than: a score of exactly 0.7 does not qualify.
const patternThreshold = 0.7

// ContentSource is the subreddit-facing collaborator.
type ContentSource interface {
	About(ctx context.Context, subreddit string) (*models.SubredditInfo, error)
	FetchNewest(ctx context.Context, subreddit string, limit int) ([]models.Submission, error)
}

// ScoringOracle supplies the delegated signals. Implementations may fail;
// the agent degrades to neutral defaults instead of aborting the batch.
type ScoringOracle interface {
	AnalyzeSubmission(ctx context.Context, title, content string) (models.ContentAnalysis, error)
	Relevance(ctx context.Context, text, subreddit string) (float64, error)
	Novelty(ctx context.Context, text, subreddit string) (float64, error)
}

// Store is the durable memory the agent writes through.
type Store interface {
	HasProcessed(ctx context.Context, submissionID string) (bool, error)
	StoreSubmission(ctx context.Context, rec models.SubmissionRecord) (bool, error)
	StorePattern(ctx context.Context, subreddit, patternType string, data models.PatternData, confidence float64) (int64, error)
}

// DedupCache short-circuits repeat lookups before they reach the store.
// Optional; a nil cache means every check goes to the store.
type DedupCache interface {
	IsSubmissionProcessed(ctx context.Context, submissionID string) bool
	MarkProcessed(ctx context.Context, submissionID string) error
}

type OutcomeStatus string

const (
	StatusProcessed OutcomeStatus = "processed"
	StatusSkipped   OutcomeStatus = "skipped"
	StatusFailed    OutcomeStatus = "failed"
)

// SubmissionOutcome is the per-item result; partial batch success is the
// normal outcome, not an error.
type SubmissionOutcome struct {
	ID      string
	Title   string
	Status  OutcomeStatus
	Reason  string
	Utility float64
	Metrics models.UtilityMetrics
}

// BatchReport summarizes one ProcessSubreddit call.
type BatchReport struct {
	Subreddit string
	Outcomes  []SubmissionOutcome
	Processed int
	Skipped   int
	Failed    int
}

func (r *BatchReport) add(o SubmissionOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case StatusProcessed:
		r.Processed++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
	}
}

// Agent owns the state model and orchestrates the per-submission pipeline.
// One agent processes one batch at a time; the moving-average update is not
// commutative under concurrent writers.
type Agent struct {
	source ContentSource
	oracle ScoringOracle
	store  Store
	cache  DedupCache
	states *StateStore

	weights UtilityWeights
	now     func() time.Time
}

func New(source ContentSource, oracle ScoringOracle, store Store, opts ...Option) *Agent {
	a := &Agent{
		source:  source,
		oracle:  oracle,
		store:   store,
		states:  NewStateStore(0.1),
		weights: DefaultWeights(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type Option func(*Agent)

func WithWeights(w UtilityWeights) Option {
	return func(a *Agent) { a.weights = w }
}

func WithLearningRate(alpha float64) Option {
	return func(a *Agent) { a.states = NewStateStore(alpha) }
}

func WithDedupCache(cache DedupCache) Option {
	return func(a *Agent) { a.cache = cache }
}

func WithClock(now func() time.Time) Option {
	return func(a *Agent) { a.now = now }
}

// States exposes the per-subreddit model for the recommendation engine and
// summary logging.
func (a *Agent) States() *StateStore {
	return a.states
}

// ProcessSubreddit runs the learning pipeline over the newest submissions of
// one subreddit. Inaccessible communities and per-submission failures are
// contained and reported; only storage unavailability returns an error.
func (a *Agent) ProcessSubreddit(ctx context.Context, subreddit string, limit int) (BatchReport, error) {
	report := BatchReport{Subreddit: subreddit}

	if _, err := a.source.About(ctx, subreddit); err != nil {
		switch {
		case errors.Is(err, clients.ErrSubredditPrivate):
			slog.Error("[Agent] Subreddit is private and cannot be accessed", slog.String("subreddit", subreddit))
		case errors.Is(err, clients.ErrSubredditForbidden):
			slog.Error("[Agent] Access to subreddit is forbidden", slog.String("subreddit", subreddit))
		case errors.Is(err, clients.ErrSubredditNotFound):
			slog.Error("[Agent] Subreddit does not exist", slog.String("subreddit", subreddit))
		default:
			slog.Error("[Agent] Error validating subreddit",
				slog.String("subreddit", subreddit),
				slog.String("error", err.Error()))
		}
		return report, nil
	}

	submissions, err := a.source.FetchNewest(ctx, subreddit, limit)
	if err != nil {
		slog.Error("[Agent] Error fetching submissions",
			slog.String("subreddit", subreddit),
			slog.String("error", err.Error()))
		return report, nil
	}

	for _, sub := range submissions {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		if sub.Stickied {
			continue
		}

		outcome, err := a.processSubmission(ctx, subreddit, sub)
		if err != nil {
			// Storage unavailability has no degraded mode; surface it.
			report.add(SubmissionOutcome{ID: sub.ID, Title: sub.Title, Status: StatusFailed, Reason: err.Error()})
			return report, err
		}
		report.add(outcome)
	}

	slog.Info("[Agent] Batch complete",
		slog.String("subreddit", subreddit),
		slog.Int("processed", report.Processed),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed))

	return report, nil
}

func (a *Agent) processSubmission(ctx context.Context, subreddit string, sub models.Submission) (SubmissionOutcome, error) {
	if a.cache != nil && a.cache.IsSubmissionProcessed(ctx, sub.ID) {
		return SubmissionOutcome{ID: sub.ID, Title: sub.Title, Status: StatusSkipped, Reason: "already processed"}, nil
	}

	seen, err := a.store.HasProcessed(ctx, sub.ID)
	if err != nil {
		return SubmissionOutcome{}, fmt.Errorf("[Agent] Dedup check failed for %s: %w", sub.ID, err)
	}
	if seen {
		a.markCache(ctx, sub.ID)
		return SubmissionOutcome{ID: sub.ID, Title: sub.Title, Status: StatusSkipped, Reason: "already processed"}, nil
	}

	analysis := a.analyze(ctx, sub)
	metrics := models.UtilityMetrics{
		EngagementRate: EngagementRate(sub.Score, sub.NumComments, sub.CreatedUTC, a.now()),
		SentimentScore: analysis.Sentiment,
		RelevanceScore: a.delegatedScore(ctx, a.oracle.Relevance, sub, subreddit),
		NoveltyScore:   a.delegatedScore(ctx, a.oracle.Novelty, sub, subreddit),
	}
	utility := a.weights.Score(metrics)

	inserted, err := a.store.StoreSubmission(ctx, models.SubmissionRecord{
		SubmissionID: sub.ID,
		Title:        sub.Title,
		Content:      sub.Selftext,
		Author:       sub.Author,
		Subreddit:    subreddit,
		CreatedUTC:   int64(sub.CreatedUTC),
		ProcessedAt:  a.now(),
		Sentiment:    metrics.SentimentScore,
		Topics:       analysis.Topics,
		Engagement:   metrics.EngagementRate,
		Utility:      utility,
	})
	if err != nil {
		return SubmissionOutcome{}, err
	}
	if !inserted {
		// Another writer won the insert race; nothing more to do here.
		a.markCache(ctx, sub.ID)
		return SubmissionOutcome{ID: sub.ID, Title: sub.Title, Status: StatusSkipped, Reason: "already processed"}, nil
	}

	a.states.Update(subreddit, map[string]any{
		"avg_engagement": metrics.EngagementRate,
		"avg_sentiment":  metrics.SentimentScore,
		"avg_relevance":  metrics.RelevanceScore,
		"avg_novelty":    metrics.NoveltyScore,
	})

	if utility > patternThreshold {
		if err := a.learnFromSubmission(ctx, subreddit, sub, analysis, utility); err != nil {
			return SubmissionOutcome{}, err
		}
	}

	a.markCache(ctx, sub.ID)

	return SubmissionOutcome{
		ID:      sub.ID,
		Title:   sub.Title,
		Status:  StatusProcessed,
		Utility: utility,
		Metrics: metrics,
	}, nil
}

// analyze asks the oracle for sentiment and topics, degrading to neutral
// defaults when the call fails.
func (a *Agent) analyze(ctx context.Context, sub models.Submission) models.ContentAnalysis {
	analysis, err := a.oracle.AnalyzeSubmission(ctx, sub.Title, sub.Selftext)
	if err != nil {
		slog.Warn("[Agent] Oracle analysis failed, using defaults",
			slog.String("submission_id", sub.ID),
			slog.String("error", err.Error()))
		return models.ContentAnalysis{Sentiment: 0.5, Topics: []string{"general"}}
	}
	if len(analysis.Topics) == 0 {
		analysis.Topics = []string{"general"}
	}
	return analysis
}

func (a *Agent) delegatedScore(ctx context.Context, score func(context.Context, string, string) (float64, error), sub models.Submission, subreddit string) float64 {
	v, err := score(ctx, sub.Title+"\n\n"+sub.Selftext, subreddit)
	if err != nil {
		return 0.5
	}
	return v
}

func (a *Agent) learnFromSubmission(ctx context.Context, subreddit string, sub models.Submission, analysis models.ContentAnalysis, utility float64) error {
	data := models.PatternData{
		TitleLength:   len(sub.Title),
		ContentLength: len(sub.Selftext),
		PostHour:      time.Unix(int64(sub.CreatedUTC), 0).Hour(),
		Topics:        analysis.Topics,
	}

	if _, err := a.store.StorePattern(ctx, subreddit, models.PatternTypeSuccessfulPost, data, utility); err != nil {
		return err
	}

	slog.Info("[Agent] Learned pattern from high-utility submission",
		slog.String("subreddit", subreddit),
		slog.String("submission_id", sub.ID),
		slog.Float64("utility", utility))
	return nil
}

func (a *Agent) markCache(ctx context.Context, submissionID string) {
	if a.cache == nil {
		return
	}
	if err := a.cache.MarkProcessed(ctx, submissionID); err != nil {
		slog.Warn("[Agent] Error marking submission in dedup cache",
			slog.String("submission_id", submissionID),
			slog.String("error", err.Error()))
	}
}
