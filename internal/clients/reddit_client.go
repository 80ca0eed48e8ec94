package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/spacesedan/subsight/internal/models"
)

const (
	REDDIT_AUTH_URL = "https://www.reddit.com/api/v1/access_token"
	REDDIT_API_URL  = "https://oauth.reddit.com"
)

// Accessibility errors, one per failure kind so callers can log the exact
// reason before moving on to the next community.
var (
	ErrSubredditNotFound  = errors.New("subreddit does not exist")
	ErrSubredditForbidden = errors.New("subreddit access is forbidden")
	ErrSubredditPrivate   = errors.New("subreddit is private")
)

var (
	redditClientInstance *RedditClient
	redditClientOnce     sync.Once
)

type RedditClient struct {
	Config  *clientcredentials.Config
	Client  *http.Client
	BaseURL string
	mu      sync.Mutex
}

func GetRedditClient() *RedditClient {
	redditClientOnce.Do(func() {
		oauthConf := &clientcredentials.Config{
			ClientID:     os.Getenv("REDDIT_CLIENT_ID"),
			ClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
			TokenURL:     REDDIT_AUTH_URL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}

		redditClientInstance = &RedditClient{
			Config:  oauthConf,
			Client:  oauthConf.Client(context.Background()),
			BaseURL: REDDIT_API_URL,
		}
	})

	return redditClientInstance
}

func (rc *RedditClient) RefreshClient() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.Config != nil {
		rc.Client = rc.Config.Client(context.Background())
	}
}

// About fetches subreddit metadata and maps HTTP failures onto the
// accessibility error kinds. A private subreddit answers 200 with
// subreddit_type=private, so that case is checked after decoding.
func (rc *RedditClient) About(ctx context.Context, subreddit string) (*models.SubredditInfo, error) {
	body, err := rc.get(ctx, fmt.Sprintf("%s/r/%s/about", rc.BaseURL, subreddit), nil, 0)
	if err != nil {
		return nil, err
	}

	var resp models.RedditAboutResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("[RedditClient] Failed to decode about response: %w", err)
	}

	if resp.Data.SubredditType == "private" {
		return nil, fmt.Errorf("[RedditClient] r/%s: %w", subreddit, ErrSubredditPrivate)
	}
	if resp.Data.Name == "" {
		return nil, fmt.Errorf("[RedditClient] r/%s: %w", subreddit, ErrSubredditNotFound)
	}

	return &resp.Data, nil
}

// FetchNewest returns up to limit submissions from the subreddit's new
// listing, source order preserved.
func (rc *RedditClient) FetchNewest(ctx context.Context, subreddit string, limit int) ([]models.Submission, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	body, err := rc.get(ctx, fmt.Sprintf("%s/r/%s/new", rc.BaseURL, subreddit), params, 0)
	if err != nil {
		return nil, err
	}

	var resp models.RedditListingResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("[RedditClient] Failed to decode listing: %w", err)
	}

	posts := make([]models.Submission, 0, len(resp.Data.Children))
	for _, child := range resp.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts, nil
}

// SearchSubreddits looks up communities matching the query.
func (rc *RedditClient) SearchSubreddits(ctx context.Context, query string, limit int) ([]models.SubredditInfo, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	body, err := rc.get(ctx, fmt.Sprintf("%s/subreddits/search", rc.BaseURL), params, 0)
	if err != nil {
		return nil, err
	}

	var resp models.RedditSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("[RedditClient] Failed to decode search response: %w", err)
	}

	subs := make([]models.SubredditInfo, 0, len(resp.Data.Children))
	for _, child := range resp.Data.Children {
		subs = append(subs, child.Data)
	}
	return subs, nil
}

func (rc *RedditClient) get(ctx context.Context, rawURL string, params url.Values, attempt int) ([]byte, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("[RedditClient] Failed to parse URL: %w", err)
	}
	if params != nil {
		parsedURL.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsedURL.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := rc.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return io.ReadAll(resp.Body)
	case http.StatusUnauthorized:
		if attempt >= MAX_RETRIES {
			return nil, fmt.Errorf("[RedditClient] Unauthorized after token refresh")
		}
		slog.Warn("[RedditClient] Token expired - Refreshing and Retrying...")
		rc.RefreshClient()
		return rc.get(ctx, rawURL, params, attempt+1)
	case http.StatusTooManyRequests:
		return rc.retryWithBackoff(ctx, rawURL, params, attempt)
	case http.StatusForbidden:
		return nil, ErrSubredditForbidden
	case http.StatusNotFound:
		return nil, ErrSubredditNotFound
	}

	return nil, fmt.Errorf("[RedditClient] Unexpected status %d from %s", resp.StatusCode, parsedURL.Path)
}

func (rc *RedditClient) retryWithBackoff(ctx context.Context, rawURL string, params url.Values, attempt int) ([]byte, error) {
	backoff := INITIAL_BACKOFF
	for i := attempt + 1; i < MAX_RETRIES; i++ {
		slog.Warn("[RedditClient] 429 Too Many Requests - Retrying with backoff",
			slog.Int("attempt", i), slog.Duration("backoff", backoff))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > MAX_BACKOFF {
			backoff = MAX_BACKOFF
		}

		data, err := rc.get(ctx, rawURL, params, i)
		if err == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("[RedditClient] Max retries reached request failed")
}
