package langchain

import (
	"context"
	"log/slog"
	"runtime"
	"slices"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/ontomap/core"
	"github.com/poiesic/ontomap/matcher"
)

// STMatcher scores queries against the corpus by embedding cosine similarity.
type STMatcher struct {
	req    matcher.Request
	embed  textEmbedder
	logger *slog.Logger
}

var _ matcher.Matcher = (*STMatcher)(nil)

func newSTMatcher(config *Config, req matcher.Request) (*STMatcher, error) {
	embed, err := newServiceEmbedder(config)
	if err != nil {
		return nil, err
	}
	return &STMatcher{
		req:    req,
		embed:  embed,
		logger: slog.Default().With("component", "st-matcher"),
	}, nil
}

// GetMatchResults embeds the corpus once and every query, then ranks corpus
// labels per query by dot product. Per-query scoring is fanned out on a
// worker pool.
func (m *STMatcher) GetMatchResults(ctx context.Context, _ map[string]string, topK int, env string) (*matcher.Result, error) {
	m.logger.Info("scoring queries by embedding similarity",
		"queries", len(m.req.Queries), "corpus", len(m.req.Corpus), "env", env)

	corpusVecs, err := m.embed.embedTexts(ctx, m.req.Corpus)
	if err != nil {
		return nil, err
	}
	queryVecs, err := m.embed.embedTexts(ctx, m.req.Queries)
	if err != nil {
		return nil, err
	}

	poolSize := runtime.NumCPU()
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	rows := make([]matcher.Row, len(m.req.Queries))
	var wg sync.WaitGroup
	for i := range m.req.Queries {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			rows[i] = matcher.Row{
				Query:      m.req.Queries[i],
				Candidates: m.rankCorpus(queryVecs[i], corpusVecs, topK),
			}
		}
		if err := pool.Submit(task); err != nil {
			// Pool refused the task, run it inline
			task()
		}
	}
	wg.Wait()

	return &matcher.Result{Rows: rows}, nil
}

// rankCorpus returns the topK corpus labels most similar to the query vector.
func (m *STMatcher) rankCorpus(queryVec []float32, corpusVecs [][]float32, topK int) []core.Candidate {
	type scored struct {
		index int
		score float32
	}
	scores := make([]scored, len(corpusVecs))
	for i, cv := range corpusVecs {
		scores[i] = scored{index: i, score: dotProduct(queryVec, cv)}
	}
	slices.SortFunc(scores, func(a, b scored) int {
		if a.score > b.score {
			return -1
		}
		if a.score < b.score {
			return 1
		}
		return 0
	})

	if topK > len(scores) {
		topK = len(scores)
	}
	candidates := make([]core.Candidate, topK)
	for i := 0; i < topK; i++ {
		candidates[i] = core.Candidate{
			Match: m.req.Corpus[scores[i].index],
			Score: formatScore(scores[i].score),
		}
	}
	return candidates
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
