package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spacesedan/subsight/config"
	"github.com/spacesedan/subsight/internal/agent"
	"github.com/spacesedan/subsight/internal/clients"
	"github.com/spacesedan/subsight/internal/db"
	"github.com/spacesedan/subsight/internal/logging"
	"github.com/spacesedan/subsight/internal/oracle"
	"github.com/spacesedan/subsight/internal/recommend"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger(os.Getenv("DEBUG") == "true")

	store, err := db.Open(config.GetString("DB_PATH", "reddit_memory.db"))
	if err != nil {
		slog.Error("Failed to open store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	source := clients.GetRedditClient()

	var scorer agent.ScoringOracle
	var research agent.ResearchOracle
	if clients.HasOpenAIKey() {
		analyzer := oracle.NewAnalyzer(clients.GetOpenAIClient().Client, os.Getenv("OPENAI_MODEL"))
		scorer = analyzer
		research = analyzer
	} else {
		slog.Warn("No OPENAI_API_KEY set, scoring with the local analyzer")
		scorer = oracle.NewLocalAnalyzer()
	}

	opts := []agent.Option{
		agent.WithLearningRate(config.GetFloat("LEARNING_RATE", 0.1)),
		agent.WithWeights(agent.DefaultWeights()),
	}
	if os.Getenv("VALKEY_INIT_ADDRESS") != "" {
		opts = append(opts, agent.WithDedupCache(clients.InitValkey()))
		defer clients.CloseValkey()
	}

	learner := agent.New(source, scorer, store, opts...)
	engine := recommend.NewEngine(store, learner.States())

	subreddits := config.GetStrings("SUBREDDITS", []string{"programming"})
	postLimit := config.GetInt("POST_LIMIT", 10)
	fetchInterval := config.GetInt("FETCH_INTERVAL", 1800)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stopChan
		slog.Info("Shutting down agent gracefully...")
		cancel()
	}()

	// One-shot market research pass when configured.
	if query := os.Getenv("RESEARCH_QUERY"); query != "" && research != nil {
		researcher := agent.NewResearcher(source, research, config.GetString("RESEARCH_OUT_DIR", "."))
		reports, err := researcher.Research(ctx,
			config.GetString("RESEARCH_MARKET", query), query,
			config.GetInt("RESEARCH_SUBREDDIT_LIMIT", 5),
			config.GetInt("RESEARCH_POST_LIMIT", 30))
		if err != nil {
			slog.Error("Market research failed", slog.String("error", err.Error()))
		} else {
			slog.Info("Market research complete", slog.Int("subreddits", len(reports)))
		}
	}

	ticker := time.NewTicker(time.Duration(fetchInterval) * time.Second)
	defer ticker.Stop()

	runBatch(ctx, learner, engine, subreddits, postLimit)

	for {
		select {
		case <-ticker.C:
			runBatch(ctx, learner, engine, subreddits, postLimit)
		case <-ctx.Done():
			for subreddit, state := range learner.States().Snapshot() {
				slog.Info("Final model state",
					slog.String("subreddit", subreddit),
					slog.Any("model", state))
			}
			return
		}
	}
}

func runBatch(ctx context.Context, learner *agent.Agent, engine *recommend.Engine, subreddits []string, postLimit int) {
	for _, subreddit := range subreddits {
		report, err := learner.ProcessSubreddit(ctx, subreddit, postLimit)
		if err != nil {
			slog.Error("Batch aborted",
				slog.String("subreddit", subreddit),
				slog.String("error", err.Error()))
			continue
		}

		for _, outcome := range report.Outcomes {
			if outcome.Status == agent.StatusProcessed {
				slog.Debug("Processed submission",
					slog.String("id", outcome.ID),
					slog.String("title", outcome.Title),
					slog.Float64("utility", outcome.Utility))
			}
		}

		recommendations, err := engine.Recommend(ctx, subreddit)
		if err != nil {
			slog.Error("Failed to build recommendations",
				slog.String("subreddit", subreddit),
				slog.String("error", err.Error()))
			continue
		}
		for _, rec := range recommendations {
			slog.Info("Recommendation",
				slog.String("subreddit", subreddit),
				slog.Float64("confidence", rec.Confidence),
				slog.String("suggestion", rec.Suggestion))
		}
	}
}
