package langchain

import (
	"context"
	"log/slog"

	"github.com/poiesic/ontomap/core"
	"github.com/poiesic/ontomap/corpus"
	"github.com/poiesic/ontomap/matcher"
	"github.com/poiesic/ontomap/vecindex"
)

// RAGMatcher answers queries by vector retrieval over an indexed reference table.
type RAGMatcher struct {
	req       matcher.Request
	embed     textEmbedder
	indexPath string
	logger    *slog.Logger
}

var _ matcher.Matcher = (*RAGMatcher)(nil)

func newRAGMatcher(config *Config, req matcher.Request) (*RAGMatcher, error) {
	if req.ReferenceTable == nil {
		return nil, ErrReferenceTableRequired
	}
	embed, err := newServiceEmbedder(config)
	if err != nil {
		return nil, err
	}
	return &RAGMatcher{
		req:       req,
		embed:     embed,
		indexPath: config.IndexPath,
		logger:    slog.Default().With("component", "rag-matcher"),
	}, nil
}

// GetMatchResults retrieves the topK nearest reference entries per query.
func (m *RAGMatcher) GetMatchResults(ctx context.Context, _ map[string]string, topK int, env string) (*matcher.Result, error) {
	m.logger.Info("retrieving matches from reference index",
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

	rows := make([]matcher.Row, len(m.req.Queries))
	for i, query := range m.req.Queries {
		matches, err := ix.FindSimilar(ctx, queryVecs[i], -1, topK)
		if err != nil {
			return nil, err
		}
		rows[i] = matcher.Row{Query: query, Candidates: matchesToCandidates(matches)}
	}

	return &matcher.Result{Rows: rows}, nil
}

// matchesToCandidates converts index matches to ranked candidates.
func matchesToCandidates(matches []*core.EntryMatch) []core.Candidate {
	candidates := make([]core.Candidate, len(matches))
	for i, em := range matches {
		candidates[i] = core.Candidate{
			Match: em.Entry.Label,
			Code:  em.Entry.Code,
			Score: formatScore(em.Score),
		}
	}
	return candidates
}

// openReferenceIndex opens the retrieval index and populates it from the
// normalized reference table when empty. A persistent index path lets the
// corpus embedding survive across runs; the in-memory index is rebuilt.
func openReferenceIndex(ctx context.Context, embed textEmbedder, table *corpus.Table, path string, logger *slog.Logger) (*vecindex.Index, error) {
	ix, err := vecindex.Open(path, path == "")
	if err != nil {
		return nil, err
	}

	count, err := ix.Count(ctx)
	if err != nil {
		ix.Close()
		return nil, err
	}
	if count > 0 {
		logger.Debug("reusing populated reference index", "entries", count)
		return ix, nil
	}

	labels, err := table.Column(corpus.ColumnOfficialLabel)
	if err != nil {
		ix.Close()
		return nil, err
	}
	// clean_code is guaranteed by normalization for retrieval configurations
	codes, err := table.Column(corpus.ColumnCleanCode)
	if err != nil {
		codes = make([]string, len(labels))
	}

	// First occurrence wins for duplicated labels
	seen := make(map[string]bool, len(labels))
	uniqueLabels := make([]string, 0, len(labels))
	labelCodes := make(map[string]string, len(labels))
	for i, label := range labels {
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		uniqueLabels = append(uniqueLabels, label)
		labelCodes[label] = codes[i]
	}

	logger.Info("building reference index", "entries", len(uniqueLabels))
	vectors, err := embed.embedTexts(ctx, uniqueLabels)
	if err != nil {
		ix.Close()
		return nil, err
	}

	entries := make([]*core.CorpusEntry, len(uniqueLabels))
	for i, label := range uniqueLabels {
		entries[i] = &core.CorpusEntry{
			Label:  label,
			Code:   labelCodes[label],
			Vector: vectors[i],
		}
	}
	if err := ix.Add(ctx, entries...); err != nil {
		ix.Close()
		return nil, err
	}

	return ix, nil
}
