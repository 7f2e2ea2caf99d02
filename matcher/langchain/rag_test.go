package langchain

import (
	"context"
	"log/slog"
	"testing"

	"github.com/poiesic/ontomap/core"
	"github.com/poiesic/ontomap/corpus"
	"github.com/poiesic/ontomap/matcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referenceTable(t *testing.T) *corpus.Table {
	t.Helper()
	table := corpus.NewTable(corpus.ColumnOfficialLabel, corpus.ColumnCleanCode)
	table.AppendRow(map[string]string{corpus.ColumnOfficialLabel: "Lung Carcinoma", corpus.ColumnCleanCode: "C2926"})
	table.AppendRow(map[string]string{corpus.ColumnOfficialLabel: "Melanoma", corpus.ColumnCleanCode: "C3224"})
	return table
}

func TestRAGMatcher(t *testing.T) {
	embed := &fakeEmbedder{
		dim: 3,
		vectors: map[string][]float32{
			"lung cancer":    {1, 0, 0},
			"Lung Carcinoma": {0.95, 0.05, 0},
			"Melanoma":       {0, 1, 0},
		},
	}
	m := &RAGMatcher{
		req: matcher.Request{
			Queries:        []string{"lung cancer"},
			ReferenceTable: referenceTable(t),
		},
		embed:  embed,
		logger: slog.Default(),
	}

	res, err := m.GetMatchResults(context.Background(), nil, 1, matcher.EnvTest)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Len(t, res.Rows[0].Candidates, 1)

	top := res.Rows[0].Candidates[0]
	assert.Equal(t, "Lung Carcinoma", top.Match)
	assert.Equal(t, "C2926", top.Code)
	assert.NotEmpty(t, top.Score)
}

func TestRAGMatcherRequiresReferenceTable(t *testing.T) {
	_, err := newRAGMatcher(DefaultConfig(), matcher.Request{Strategy: matcher.StrategyRAG})
	assert.ErrorIs(t, err, ErrReferenceTableRequired)

	_, err = newBIEMatcher(DefaultConfig(), matcher.Request{Strategy: matcher.StrategyBIE})
	assert.ErrorIs(t, err, ErrReferenceTableRequired)
}

func TestBIEMatcherRescoring(t *testing.T) {
	// The query alone is ambiguous between the two labels; its description
	// pulls Melanoma ahead.
	embed := &fakeEmbedder{
		dim: 3,
		vectors: map[string][]float32{
			"MEL":            {0.7, 0.7, 0},
			"skin cancer":    {0, 1, 0},
			"Lung Carcinoma": {1, 0, 0},
			"Melanoma":       {0, 1, 0},
		},
	}

	queryTable := corpus.NewTable(queryColumn, descriptionColumn)
	queryTable.AppendRow(map[string]string{queryColumn: "MEL", descriptionColumn: "skin cancer"})

	m := &BIEMatcher{
		req: matcher.Request{
			Queries:        []string{"MEL"},
			ReferenceTable: referenceTable(t),
			QueryTable:     queryTable,
		},
		embed:  embed,
		logger: slog.Default(),
	}

	res, err := m.GetMatchResults(context.Background(), nil, 2, matcher.EnvTest)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.NotEmpty(t, res.Rows[0].Candidates)
	assert.Equal(t, "Melanoma", res.Rows[0].Candidates[0].Match)
}

func TestRescoreWithoutContextKeepsOrder(t *testing.T) {
	pool := []*core.EntryMatch{
		{Entry: &core.CorpusEntry{Label: "A"}, Score: 0.9},
		{Entry: &core.CorpusEntry{Label: "B"}, Score: 0.5},
	}
	rescore(pool, nil)
	assert.Equal(t, "A", pool[0].Entry.Label)
	assert.Equal(t, float32(0.9), pool[0].Score)
}
