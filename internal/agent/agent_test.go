package agent

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/subsight/internal/clients"
	"github.com/spacesedan/subsight/internal/db"
	"github.com/spacesedan/subsight/internal/models"
)

type fakeSource struct {
	aboutErr    error
	submissions []models.Submission
	fetchErr    error
}

func (f *fakeSource) About(_ context.Context, name string) (*models.SubredditInfo, error) {
	if f.aboutErr != nil {
		return nil, f.aboutErr
	}
	return &models.SubredditInfo{Name: name, SubredditType: "public"}, nil
}

func (f *fakeSource) FetchNewest(_ context.Context, _ string, limit int) ([]models.Submission, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if limit < len(f.submissions) {
		return f.submissions[:limit], nil
	}
	return f.submissions, nil
}

type fakeOracle struct {
	analysis    models.ContentAnalysis
	analysisErr error
	relevance   float64
	novelty     float64
	scoreErr    error
}

func (f *fakeOracle) AnalyzeSubmission(context.Context, string, string) (models.ContentAnalysis, error) {
	if f.analysisErr != nil {
		return models.ContentAnalysis{}, f.analysisErr
	}
	return f.analysis, nil
}

func (f *fakeOracle) Relevance(context.Context, string, string) (float64, error) {
	return f.relevance, f.scoreErr
}

func (f *fakeOracle) Novelty(context.Context, string, string) (float64, error) {
	return f.novelty, f.scoreErr
}

type failingStore struct{}

func (failingStore) HasProcessed(context.Context, string) (bool, error) {
	return false, errors.New("database is locked")
}

func (failingStore) StoreSubmission(context.Context, models.SubmissionRecord) (bool, error) {
	return false, errors.New("database is locked")
}

func (failingStore) StorePattern(context.Context, string, string, models.PatternData, float64) (int64, error) {
	return 0, errors.New("database is locked")
}

func openStore(t *testing.T) *db.Store {
	t.Helper()
	store, err := db.Open(filepath.Join(t.TempDir(), "memory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestProcessSubredditEndToEnd(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := openStore(t)
	ctx := context.Background()

	// Seed one submission as already processed.
	seen := models.SubmissionRecord{
		SubmissionID: "seen1",
		Subreddit:    "x",
		ProcessedAt:  now,
		Topics:       []string{"general"},
	}
	_, err := store.StoreSubmission(ctx, seen)
	require.NoError(t, err)

	source := &fakeSource{submissions: []models.Submission{
		{ID: "sticky1", Title: "Rules", Subreddit: "x", Stickied: true},
		{ID: "seen1", Title: "Old news", Subreddit: "x", CreatedUTC: float64(now.Unix() - 7200)},
		{ID: "new1", Title: "Fresh post", Selftext: "body", Subreddit: "x",
			Score: 50, NumComments: 10, CreatedUTC: float64(now.Unix() - 3600)},
	}}
	oracle := &fakeOracle{
		analysis:  models.ContentAnalysis{Sentiment: 0.9, Topics: []string{"general"}},
		relevance: 0.5,
		novelty:   0.5,
	}

	a := New(source, oracle, store,
		WithWeights(stockWeights()),
		WithLearningRate(0.1),
		WithClock(fixedClock(now)))

	report, err := a.ProcessSubreddit(ctx, "x", 10)
	require.NoError(t, err)

	// Stickied posts never enter the report; the seen one is skipped.
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	require.Len(t, report.Outcomes, 2)

	processed := report.Outcomes[1]
	assert.Equal(t, "new1", processed.ID)
	assert.Equal(t, StatusProcessed, processed.Status)
	assert.InDelta(t, 0.6, processed.Metrics.EngagementRate, 1e-9)
	assert.InDelta(t, 0.62, processed.Utility, 1e-9)

	// 0.62 is below the learning threshold, so no pattern was written.
	patterns, err := store.GetPatterns(ctx, "x")
	require.NoError(t, err)
	assert.Empty(t, patterns)

	// The record is durable and dedup now covers it.
	seenNow, err := store.HasProcessed(ctx, "new1")
	require.NoError(t, err)
	assert.True(t, seenNow)

	// State picked up the four metric averages.
	state := a.States().Get("x")
	assert.InDelta(t, 0.6, state["avg_engagement"].(float64), 1e-9)
	assert.InDelta(t, 0.9, state["avg_sentiment"].(float64), 1e-9)
	assert.InDelta(t, 0.5, state["avg_relevance"].(float64), 1e-9)
	assert.InDelta(t, 0.5, state["avg_novelty"].(float64), 1e-9)
}

func TestProcessSubredditSecondRunSkipsEverything(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := openStore(t)

	source := &fakeSource{submissions: []models.Submission{
		{ID: "a1", Title: "one", Subreddit: "x", Score: 10, CreatedUTC: float64(now.Unix() - 3600)},
		{ID: "a2", Title: "two", Subreddit: "x", Score: 20, CreatedUTC: float64(now.Unix() - 3600)},
	}}
	oracle := &fakeOracle{analysis: models.ContentAnalysis{Sentiment: 0.5, Topics: []string{"general"}}, relevance: 0.5, novelty: 0.5}

	a := New(source, oracle, store, WithWeights(stockWeights()), WithClock(fixedClock(now)))

	first, err := a.ProcessSubreddit(context.Background(), "x", 10)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Processed)

	second, err := a.ProcessSubreddit(context.Background(), "x", 10)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Processed)
	assert.Equal(t, 2, second.Skipped)
}

func TestPatternThresholdIsStrict(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	engagementOnly := UtilityWeights{Engagement: 1}
	oracle := &fakeOracle{analysis: models.ContentAnalysis{Sentiment: 0.5, Topics: []string{"general"}}, relevance: 0.5, novelty: 0.5}

	tests := []struct {
		name        string
		score       int
		wantPattern bool
	}{
		{"exactly at threshold learns nothing", 70, false},
		{"just above threshold learns", 71, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := openStore(t)
			source := &fakeSource{submissions: []models.Submission{
				{ID: "p1", Title: "candidate", Selftext: "body", Subreddit: "x",
					Score: tt.score, CreatedUTC: float64(now.Unix() - 3600)},
			}}

			a := New(source, oracle, store, WithWeights(engagementOnly), WithClock(fixedClock(now)))

			report, err := a.ProcessSubreddit(context.Background(), "x", 10)
			require.NoError(t, err)
			require.Equal(t, 1, report.Processed)

			patterns, err := store.GetPatterns(context.Background(), "x")
			require.NoError(t, err)
			if tt.wantPattern {
				require.Len(t, patterns, 1)
				assert.Equal(t, models.PatternTypeSuccessfulPost, patterns[0].PatternType)
				assert.Equal(t, len("candidate"), patterns[0].Data.TitleLength)
				assert.Equal(t, len("body"), patterns[0].Data.ContentLength)
				assert.Equal(t, []string{"general"}, patterns[0].Data.Topics)
				assert.InDelta(t, report.Outcomes[0].Utility, patterns[0].Confidence, 1e-9)
			} else {
				assert.Empty(t, patterns)
			}
		})
	}
}

func TestProcessSubredditContainsAccessFailures(t *testing.T) {
	store := openStore(t)
	oracle := &fakeOracle{}

	accessErrs := []error{
		fmt.Errorf("r/x: %w", clients.ErrSubredditPrivate),
		fmt.Errorf("r/x: %w", clients.ErrSubredditForbidden),
		fmt.Errorf("r/x: %w", clients.ErrSubredditNotFound),
		errors.New("connection reset"),
	}

	for _, accessErr := range accessErrs {
		a := New(&fakeSource{aboutErr: accessErr}, oracle, store, WithWeights(stockWeights()))

		report, err := a.ProcessSubreddit(context.Background(), "x", 10)
		require.NoError(t, err)
		assert.Zero(t, report.Processed)
		assert.Empty(t, report.Outcomes)
	}
}

func TestProcessSubredditOracleFailureDegradesToDefaults(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := openStore(t)

	source := &fakeSource{submissions: []models.Submission{
		{ID: "o1", Title: "post", Subreddit: "x", CreatedUTC: float64(now.Unix() - 3600)},
	}}
	oracle := &fakeOracle{
		analysisErr: errors.New("oracle unreachable"),
		scoreErr:    errors.New("oracle unreachable"),
	}

	a := New(source, oracle, store, WithWeights(stockWeights()), WithClock(fixedClock(now)))

	report, err := a.ProcessSubreddit(context.Background(), "x", 10)
	require.NoError(t, err)
	require.Equal(t, 1, report.Processed)

	metrics := report.Outcomes[0].Metrics
	assert.Equal(t, 0.5, metrics.SentimentScore)
	assert.Equal(t, 0.5, metrics.RelevanceScore)
	assert.Equal(t, 0.5, metrics.NoveltyScore)
}

func TestProcessSubredditStoreFailureIsFatal(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	source := &fakeSource{submissions: []models.Submission{
		{ID: "s1", Title: "post", Subreddit: "x", CreatedUTC: float64(now.Unix() - 3600)},
	}}
	oracle := &fakeOracle{analysis: models.ContentAnalysis{Sentiment: 0.5, Topics: []string{"general"}}}

	a := New(source, oracle, failingStore{}, WithWeights(stockWeights()), WithClock(fixedClock(now)))

	report, err := a.ProcessSubreddit(context.Background(), "x", 10)
	require.Error(t, err)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, StatusFailed, report.Outcomes[0].Status)
	assert.Equal(t, 1, report.Failed)
}
