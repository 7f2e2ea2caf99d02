package langchain

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/poiesic/ontomap/core"
	"github.com/poiesic/ontomap/matcher"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const lmMaxAttempts = 3

// rankedMatch is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type rankedMatch struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// ranking is the wrapper structure for the LLM's JSON response.
type ranking struct {
	Matches []rankedMatch `json:"matches"`
}

// LMMatcher ranks corpus labels per query with a chat language model.
type LMMatcher struct {
	req    matcher.Request
	client llms.Model
	logger *slog.Logger
}

var _ matcher.Matcher = (*LMMatcher)(nil)

func newLMMatcher(config *Config, req matcher.Request) (*LMMatcher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't
	// require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken("none"),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &LMMatcher{
		req:    req,
		client: client,
		logger: slog.Default().With("component", "lm-matcher"),
	}, nil
}

// GetMatchResults ranks the corpus for every query, one model call per query.
func (m *LMMatcher) GetMatchResults(ctx context.Context, _ map[string]string, topK int, env string) (*matcher.Result, error) {
	m.logger.Info("ranking queries with language model",
		"queries", len(m.req.Queries), "corpus", len(m.req.Corpus), "env", env)

	systemPrompt := buildRankingPrompt(m.req.Category, m.req.Corpus, topK)

	rows := make([]matcher.Row, len(m.req.Queries))
	for i, query := range m.req.Queries {
		ranked, err := m.rankQuery(ctx, systemPrompt, query)
		if err != nil {
			return nil, fmt.Errorf("ranking %q: %w", query, err)
		}

		if len(ranked.Matches) > topK {
			ranked.Matches = ranked.Matches[:topK]
		}
		candidates := make([]core.Candidate, len(ranked.Matches))
		for j, rm := range ranked.Matches {
			candidates[j] = core.Candidate{
				Match: rm.Label,
				Score: fmt.Sprintf("%.2f", rm.Confidence),
			}
		}
		rows[i] = matcher.Row{Query: query, Candidates: candidates}
	}

	return &matcher.Result{Rows: rows}, nil
}

// rankQuery asks the model once per attempt until the response parses.
func (m *LMMatcher) rankQuery(ctx context.Context, systemPrompt, query string) (*ranking, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(query)},
		},
	}

	var lastErr error
	for attempt := 0; attempt < lmMaxAttempts; attempt++ {
		response, err := m.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			m.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			m.logger.Debug("no choices returned from model", "query", query)
			return &ranking{}, nil
		}

		responseText := cleanModelJSON(response.Choices[0].Content)

		var result ranking
		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			m.logger.Warn("error parsing ranking response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}
		return &result, nil
	}

	m.logger.Error("failed to parse ranking response after retries", "err", lastErr)
	return nil, lastErr
}
