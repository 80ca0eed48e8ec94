// Package oracle talks to the external scoring service. Every method
// degrades to a neutral default instead of failing the caller: a broken or
// unreachable oracle must never abort a submission batch.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/spacesedan/subsight/internal/models"
)

const (
	completionRetryAttempts = 3
	defaultModel            = openai.GPT4oMini
)

const systemPrompt = `You are a helpful AI that provides analysis in JSON format. Always ensure your responses are valid JSON objects.
When analyzing relevance, be inclusive rather than exclusive - if there's any possibility the content could be relevant, mark it as relevant.`

// Analyzer scores content through an OpenAI-compatible chat completion API.
type Analyzer struct {
	client *openai.Client
	model  string
}

func NewAnalyzer(client *openai.Client, model string) *Analyzer {
	if model == "" {
		model = defaultModel
	}
	return &Analyzer{client: client, model: model}
}

func (a *Analyzer) completion(ctx context.Context, prompt string, temperature float32) (string, error) {
	var resp openai.ChatCompletionResponse
	var err error

	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   1024,
	}

	for attempt := 1; attempt <= completionRetryAttempts; attempt++ {
		start := time.Now()
		resp, err = a.client.CreateChatCompletion(ctx, req)
		if err == nil {
			break
		}
		slog.Warn("[Oracle] Failed to get a completion, retrying...",
			slog.Int("attempt", attempt),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Second):
		}
	}
	if err != nil {
		return "", fmt.Errorf("[Oracle] Completion failed after %d attempts: %w", completionRetryAttempts, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("[Oracle] Completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// AnalyzeSubmission returns sentiment and topics for one submission.
func (a *Analyzer) AnalyzeSubmission(ctx context.Context, title, content string) (models.ContentAnalysis, error) {
	prompt := fmt.Sprintf(`Analyze the following post. Return a JSON object with ONLY these fields:
{
    "sentiment": float between 0 and 1 where 0 is extremely negative and 1 is extremely positive,
    "topics": list of short topic strings
}

Title: %s

Content: %s`, title, content)

	raw, err := a.completion(ctx, prompt, 0.3)
	if err != nil {
		return models.ContentAnalysis{}, err
	}

	obj := extractObject(raw)
	if obj == "" {
		return models.ContentAnalysis{}, fmt.Errorf("[Oracle] No JSON object in analysis response")
	}

	var analysis models.ContentAnalysis
	if err := json.Unmarshal([]byte(obj), &analysis); err != nil {
		return models.ContentAnalysis{}, fmt.Errorf("[Oracle] Failed to parse analysis response: %w", err)
	}

	return analysis, nil
}

// Relevance scores how relevant the text is to the subreddit, in [0,1].
func (a *Analyzer) Relevance(ctx context.Context, text, subreddit string) (float64, error) {
	prompt := fmt.Sprintf(`On a scale of 0 to 1, how relevant is this text to the %s subreddit?
Consider the typical content and discussions in this subreddit. Return only the numeric score.

Text: %s`, subreddit, text)

	return a.numericScore(ctx, prompt)
}

// Novelty scores how novel the text is for the subreddit, in [0,1].
func (a *Analyzer) Novelty(ctx context.Context, text, subreddit string) (float64, error) {
	prompt := fmt.Sprintf(`On a scale of 0 to 1, how novel or unique is this content for the %s subreddit?
Consider common topics and patterns in this subreddit. Return only the numeric score.

Text: %s`, subreddit, text)

	return a.numericScore(ctx, prompt)
}

func (a *Analyzer) numericScore(ctx context.Context, prompt string) (float64, error) {
	raw, err := a.completion(ctx, prompt, 0.3)
	if err != nil {
		return 0, err
	}

	score, err := strconv.ParseFloat(strings.TrimSpace(cleanResponse(raw)), 64)
	if err != nil {
		return 0, fmt.Errorf("[Oracle] Failed to parse numeric score: %w", err)
	}
	return score, nil
}

// IsRelevantSubreddit judges whether a community could hold discussions
// useful for the target market.
func (a *Analyzer) IsRelevantSubreddit(ctx context.Context, description, targetMarket string) (models.SubredditRelevance, error) {
	prompt := fmt.Sprintf(`Analyze if this subreddit could potentially contain discussions about product needs, market opportunities, or user feedback related to %s.
Even if the connection seems indirect, consider how the community might discuss relevant topics.
Return a JSON object with ONLY these fields:
{
    "is_relevant": boolean,
    "confidence": float between 0 and 1,
    "reason": string explaining the decision
}

Target Market: %s
Subreddit description: %s`, targetMarket, targetMarket, description)

	raw, err := a.completion(ctx, prompt, 0.3)
	if err != nil {
		return models.SubredditRelevance{}, err
	}

	var relevance models.SubredditRelevance
	if obj := extractObject(raw); obj != "" {
		if err := json.Unmarshal([]byte(obj), &relevance); err != nil {
			slog.Error("[Oracle] Failed to parse relevance response", slog.String("raw", raw))
			return models.SubredditRelevance{}, nil
		}
	}

	return relevance, nil
}

// AnalyzeMarketNeed checks one post for product needs or opportunities.
func (a *Analyzer) AnalyzeMarketNeed(ctx context.Context, text string) (models.MarketNeed, error) {
	prompt := `Analyze if this text contains any discussion of problems, needs, requests, or opportunities that could be addressed by products or services.
Be inclusive - if there's any hint of a need or opportunity, include it.
Return a JSON object with ONLY these fields:
{
    "is_need": boolean,
    "confidence": float between 0 and 1,
    "need_type": "product" or "feature" or "service" or "improvement" or "other",
    "target_market": string describing who would use this,
    "problem": string describing the problem/need,
    "current_solutions": string describing existing solutions mentioned,
    "opportunity": string describing the potential opportunity
}

Text: ` + text

	raw, err := a.completion(ctx, prompt, 0.3)
	if err != nil {
		return models.MarketNeed{}, err
	}

	var need models.MarketNeed
	if obj := extractObject(raw); obj != "" {
		if err := json.Unmarshal([]byte(obj), &need); err != nil {
			slog.Error("[Oracle] Failed to parse market need response", slog.String("raw", raw))
			return models.MarketNeed{}, nil
		}
	}

	return need, nil
}

// ExtractMarketInsights aggregates insights over a set of findings.
func (a *Analyzer) ExtractMarketInsights(ctx context.Context, findings []models.NeedFinding) (models.MarketInsights, error) {
	var sb strings.Builder
	for _, f := range findings {
		fmt.Fprintf(&sb, "Title: %s\nProblem: %s\nOpportunity: %s\n\n", f.Title, f.Need.Problem, f.Need.Opportunity)
	}

	prompt := `Analyze these posts and extract market insights.
Return a JSON object with ONLY these fields:
{
    "common_needs": list of strings,
    "user_segments": list of strings,
    "pain_points": list of strings,
    "competition": list of strings,
    "opportunities": list of strings,
    "recommendations": list of strings
}

Posts:
` + sb.String()

	raw, err := a.completion(ctx, prompt, 0.7)
	if err != nil {
		return models.MarketInsights{}, err
	}

	var insights models.MarketInsights
	if obj := extractObject(raw); obj != "" {
		if err := json.Unmarshal([]byte(obj), &insights); err != nil {
			slog.Error("[Oracle] Failed to parse insights response", slog.String("raw", raw))
			return models.MarketInsights{}, nil
		}
	}

	return insights, nil
}
