package langchain

import (
	"context"
	"log/slog"
	"slices"

	"github.com/poiesic/ontomap/core"
	"github.com/poiesic/ontomap/matcher"
)

// Query-table columns consulted for bi-encoder context.
const (
	queryColumn       = "query"
	descriptionColumn = "description"
)

// Blend weights for re-scoring retrieved candidates with query context.
const (
	labelWeight   = 0.7
	contextWeight = 0.3
)

// candidatePoolFactor widens retrieval before re-scoring.
const candidatePoolFactor = 4

// BIEMatcher is retrieval augmented with bi-encoder re-scoring: retrieved
// candidates are re-ranked by blending label similarity with the similarity
// of the query's descriptive context, when the query table provides one.
type BIEMatcher struct {
	req       matcher.Request
	embed     textEmbedder
	indexPath string
	logger    *slog.Logger
}

var _ matcher.Matcher = (*BIEMatcher)(nil)

func newBIEMatcher(config *Config, req matcher.Request) (*BIEMatcher, error) {
	if req.ReferenceTable == nil {
		return nil, ErrReferenceTableRequired
	}
	embed, err := newServiceEmbedder(config)
	if err != nil {
		return nil, err
	}
	return &BIEMatcher{
		req:       req,
		embed:     embed,
		indexPath: config.IndexPath,
		logger:    slog.Default().With("component", "bie-matcher"),
	}, nil
}

// GetMatchResults retrieves a widened candidate pool per query and re-scores
// it against the query's context before truncating to topK.
func (m *BIEMatcher) GetMatchResults(ctx context.Context, _ map[string]string, topK int, env string) (*matcher.Result, error) {
	m.logger.Info("retrieving matches with bi-encoder re-scoring",
		"queries", len(m.req.Queries), "env", env)

	ix, err := openReferenceIndex(ctx, m.embed, m.req.ReferenceTable, m.indexPath, m.logger)
	if err != nil {
		return nil, err
	}
	defer ix.Close()

	queryVecs, err := m.embed.embedTexts(ctx, m.req.Queries)
	if err != nil {
		return nil, err
	}

	contexts := m.queryContexts()

	rows := make([]matcher.Row, len(m.req.Queries))
	for i, query := range m.req.Queries {
		pool, err := ix.FindSimilar(ctx, queryVecs[i], -1, topK*candidatePoolFactor)
		if err != nil {
			return nil, err
		}

		var ctxVec []float32
		if text, ok := contexts[query]; ok && text != "" {
			vecs, err := m.embed.embedTexts(ctx, []string{text})
			if err != nil {
				return nil, err
			}
			ctxVec = vecs[0]
		}

		rescore(pool, ctxVec)
		if len(pool) > topK {
			pool = pool[:topK]
		}
		rows[i] = matcher.Row{Query: query, Candidates: matchesToCandidates(pool)}
	}

	return &matcher.Result{Rows: rows}, nil
}

// queryContexts maps query strings to their descriptive context from the
// query table. Missing table or columns mean no context, not an error.
func (m *BIEMatcher) queryContexts() map[string]string {
	contexts := make(map[string]string)
	if m.req.QueryTable == nil {
		return contexts
	}
	queries, err := m.req.QueryTable.Column(queryColumn)
	if err != nil {
		m.logger.Debug("query table has no query column, skipping context re-scoring")
		return contexts
	}
	descriptions, err := m.req.QueryTable.Column(descriptionColumn)
	if err != nil {
		m.logger.Debug("query table has no description column, skipping context re-scoring")
		return contexts
	}
	for i, q := range queries {
		if q == "" {
			continue
		}
		contexts[q] = descriptions[i]
	}
	return contexts
}

// rescore blends each candidate's label similarity with its similarity to
// the query context and re-sorts. A nil context leaves scores untouched.
func rescore(pool []*core.EntryMatch, ctxVec []float32) {
	if ctxVec != nil {
		for _, em := range pool {
			ctxSim := dotProduct(ctxVec, em.Entry.Vector)
			em.Score = labelWeight*em.Score + contextWeight*ctxSim
		}
	}
	slices.SortFunc(pool, func(a, b *core.EntryMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})
}
