package models

// ContentAnalysis is what the scoring oracle returns for a single
// submission.
type ContentAnalysis struct {
	Sentiment float64  `json:"sentiment"`
	Topics    []string `json:"topics"`
}

// SubredditRelevance answers whether a community is worth researching for a
// given target market.
type SubredditRelevance struct {
	IsRelevant bool    `json:"is_relevant"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// MarketNeed is the structured result of need analysis on one post.
type MarketNeed struct {
	IsNeed           bool    `json:"is_need"`
	Confidence       float64 `json:"confidence"`
	NeedType         string  `json:"need_type"`
	TargetMarket     string  `json:"target_market"`
	Problem          string  `json:"problem"`
	CurrentSolutions string  `json:"current_solutions"`
	Opportunity      string  `json:"opportunity"`
}

// MarketInsights aggregates need analysis over many posts.
type MarketInsights struct {
	CommonNeeds     []string `json:"common_needs"`
	UserSegments    []string `json:"user_segments"`
	PainPoints      []string `json:"pain_points"`
	Competition     []string `json:"competition"`
	Opportunities   []string `json:"opportunities"`
	Recommendations []string `json:"recommendations"`
}

// NeedFinding ties a detected market need back to the post it came from.
type NeedFinding struct {
	URL        string     `json:"url"`
	Title      string     `json:"title"`
	Score      int        `json:"score"`
	Confidence float64    `json:"confidence"`
	Need       MarketNeed `json:"need"`
}

// SubredditInsights is the per-community research report written to disk.
type SubredditInsights struct {
	Subreddit   string        `json:"subreddit"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Subscribers int           `json:"subscribers"`
	NeedsFound  []NeedFinding `json:"needs_found"`
}
