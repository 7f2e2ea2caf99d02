package matcher

import (
	"context"

	"github.com/poiesic/ontomap/core"
	"github.com/poiesic/ontomap/corpus"
)

// Strategy names a matching strategy.
type Strategy string

// Recognized strategies.
const (
	// StrategyLM ranks corpus labels with a language model.
	StrategyLM Strategy = "lm"
	// StrategyST scores queries against the corpus by embedding similarity.
	StrategyST Strategy = "st"
	// StrategyRAG retrieves candidates from a vector index over the reference table.
	StrategyRAG Strategy = "rag"
	// StrategyBIE is retrieval augmented with bi-encoder re-scoring.
	StrategyBIE Strategy = "rag_bie"
)

// Environment flags passed through to backends.
const (
	EnvTest = "test"
	EnvProd = "prod"
)

// ValidStage2 reports whether the strategy may serve as stage 2.
func (s Strategy) ValidStage2() bool {
	return s == StrategyLM || s == StrategyST
}

// ValidStage3 reports whether the strategy may serve as stage 3.
func (s Strategy) ValidStage3() bool {
	return s == StrategyRAG || s == StrategyBIE
}

// Request carries everything a factory needs to build a Matcher for one
// stage invocation. Method and Category are opaque passthroughs to the
// backend; ReferenceTable and QueryTable are only consulted by the
// retrieval strategies.
type Request struct {
	Method         string
	Category       string
	Strategy       Strategy
	Queries        []string
	Corpus         []string
	TopK           int
	ReferenceTable *corpus.Table
	QueryTable     *corpus.Table
}

// Matcher scores a fixed query list against a corpus.
// Implementations are built per stage invocation and are not required to
// be safe for concurrent use.
type Matcher interface {
	// GetMatchResults returns one row per query the backend scored.
	// curaMap is the curation mapping re-keyed to the backend's query
	// strings; env is the test/prod flag. Both are opaque to the engine.
	GetMatchResults(ctx context.Context, curaMap map[string]string, topK int, env string) (*Result, error)
}

// Factory resolves a Request to a Matcher.
type Factory interface {
	New(req Request) (Matcher, error)
}

// Row is a single scored query.
type Row struct {
	Query      string
	Candidates []core.Candidate // top-K candidates, highest ranked first
}

// Result is the table a backend returns, keyed by query string.
type Result struct {
	Rows []Row
}

// HasScores reports whether any candidate in the result carries a score.
// A scoreless result disables confidence-gated escalation.
func (r *Result) HasScores() bool {
	if r == nil {
		return false
	}
	for _, row := range r.Rows {
		for _, c := range row.Candidates {
			if c.Score != "" {
				return true
			}
		}
	}
	return false
}
