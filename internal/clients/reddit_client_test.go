package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(server *httptest.Server) *RedditClient {
	return &RedditClient{
		Client:  server.Client(),
		BaseURL: server.URL,
	}
}

func TestFetchNewestParsesListing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/golang/new", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.Write([]byte(`{
			"data": {
				"after": "t3_next",
				"children": [
					{"data": {"id": "abc", "title": "Generics in practice", "selftext": "body",
					          "author": "gopher", "subreddit": "golang", "score": 42,
					          "num_comments": 7, "created_utc": 1700000000.0, "stickied": false,
					          "permalink": "/r/golang/comments/abc/"}},
					{"data": {"id": "def", "title": "Weekly thread", "stickied": true}}
				]
			}
		}`))
	}))
	defer server.Close()

	posts, err := testClient(server).FetchNewest(context.Background(), "golang", 10)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "abc", posts[0].ID)
	assert.Equal(t, "Generics in practice", posts[0].Title)
	assert.Equal(t, 42, posts[0].Score)
	assert.Equal(t, 7, posts[0].NumComments)
	assert.Equal(t, float64(1700000000), posts[0].CreatedUTC)
	assert.False(t, posts[0].Stickied)
	assert.True(t, posts[1].Stickied)
}

func TestAboutMapsAccessibilityErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"forbidden", http.StatusForbidden, "", ErrSubredditForbidden},
		{"not found", http.StatusNotFound, "", ErrSubredditNotFound},
		{"private", http.StatusOK,
			`{"data": {"display_name": "secretclub", "subreddit_type": "private"}}`,
			ErrSubredditPrivate},
		{"empty payload", http.StatusOK, `{"data": {}}`, ErrSubredditNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := testClient(server).About(context.Background(), "secretclub")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAboutReturnsMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/golang/about", r.URL.Path)
		w.Write([]byte(`{"data": {"display_name": "golang", "title": "The Go Programming Language",
			"public_description": "Ask questions and post articles about Go",
			"subscribers": 250000, "subreddit_type": "public"}}`))
	}))
	defer server.Close()

	info, err := testClient(server).About(context.Background(), "golang")
	require.NoError(t, err)
	assert.Equal(t, "golang", info.Name)
	assert.Equal(t, 250000, info.Subscribers)
}

func TestSearchSubredditsParsesResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subreddits/search", r.URL.Path)
		assert.Equal(t, "note taking", r.URL.Query().Get("q"))
		w.Write([]byte(`{"data": {"children": [
			{"data": {"display_name": "productivity", "title": "Productivity", "subscribers": 90000}},
			{"data": {"display_name": "notetaking", "title": "Note Taking", "subscribers": 40000}}
		]}}`))
	}))
	defer server.Close()

	subs, err := testClient(server).SearchSubreddits(context.Background(), "note taking", 10)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "productivity", subs[0].Name)
}
