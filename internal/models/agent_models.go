package models

import "time"

// UtilityMetrics holds the four bounded signals a submission is scored on.
// Values are expected in [0,1]; the struct is built once per submission and
// never mutated.
type UtilityMetrics struct {
	EngagementRate float64 `json:"engagement_rate"`
	SentimentScore float64 `json:"sentiment_score"`
	RelevanceScore float64 `json:"relevance_score"`
	NoveltyScore   float64 `json:"novelty_score"`
}

// SubmissionRecord is the durable row written once per processed submission.
type SubmissionRecord struct {
	SubmissionID string
	Title        string
	Content      string
	Author       string
	Subreddit    string
	CreatedUTC   int64
	ProcessedAt  time.Time
	Sentiment    float64
	Topics       []string
	Engagement   float64
	Utility      float64
}

// PatternData is the attribute bundle remembered from a high-utility post.
type PatternData struct {
	TitleLength   int      `json:"title_length"`
	ContentLength int      `json:"content_length"`
	PostHour      int      `json:"post_time"`
	Topics        []string `json:"topics"`
}

// LearnedPattern is an append-only learned row; Confidence carries the
// utility score at creation time and drives read-time ranking.
type LearnedPattern struct {
	PatternID   int64
	Subreddit   string
	PatternType string
	Data        PatternData
	Confidence  float64
	Utility     float64
	LastUpdated time.Time
}

const PatternTypeSuccessfulPost = "successful_post"
