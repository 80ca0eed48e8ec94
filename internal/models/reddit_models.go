package models

// Submission is a single post pulled from a subreddit listing.
type Submission struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Stickied    bool    `json:"stickied"`
	Permalink   string  `json:"permalink"`
}

// SubredditInfo is the about-endpoint metadata used to validate access
// and to feed relevance analysis during discovery.
type SubredditInfo struct {
	Name          string `json:"display_name"`
	Title         string `json:"title"`
	Description   string `json:"public_description"`
	Subscribers   int    `json:"subscribers"`
	SubredditType string `json:"subreddit_type"`
}

type RedditListingResponse struct {
	Data RedditListingData `json:"data"`
}

type RedditListingData struct {
	After    string              `json:"after"`
	Children []RedditListingItem `json:"children"`
}

type RedditListingItem struct {
	Data Submission `json:"data"`
}

type RedditAboutResponse struct {
	Data SubredditInfo `json:"data"`
}

type RedditSearchResponse struct {
	Data RedditSearchData `json:"data"`
}

type RedditSearchData struct {
	After    string              `json:"after"`
	Children []RedditSearchChild `json:"children"`
}

type RedditSearchChild struct {
	Data SubredditInfo `json:"data"`
}
