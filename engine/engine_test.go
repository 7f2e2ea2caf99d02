package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/poiesic/ontomap/core"
	"github.com/poiesic/ontomap/corpus"
	"github.com/poiesic/ontomap/matcher"
	"github.com/poiesic/ontomap/matcher/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identityExpander trims queries without consulting any lookup table.
type identityExpander struct {
	overrides map[string]string
}

func (x *identityExpander) Expand(queries []string) map[string]string {
	out := make(map[string]string, len(queries))
	for _, q := range queries {
		if name, ok := x.overrides[q]; ok {
			out[q] = name
			continue
		}
		out[q] = strings.TrimSpace(q)
	}
	return out
}

func newTestEngine(t *testing.T, queries []string, factory matcher.Factory, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{
		WithStage2Strategy(matcher.StrategyST),
		WithExpander(&identityExpander{}),
	}, opts...)
	e, err := New("ontomap", "disease", queries, []string{"Lung Cancer", "Breast Cancer"},
		map[string]string{"Lung Cancer": "Lung Carcinoma", "lung cancer": "Lung Carcinoma"},
		matcher.EnvTest, factory, opts...)
	require.NoError(t, err)
	return e
}

func testReferenceTable() *corpus.Table {
	table := corpus.NewTable(corpus.ColumnOfficialLabel, corpus.ColumnCleanCode)
	table.AppendRow(map[string]string{corpus.ColumnOfficialLabel: "Melanoma", corpus.ColumnCleanCode: "C3224"})
	table.AppendRow(map[string]string{corpus.ColumnOfficialLabel: "Lung Carcinoma", corpus.ColumnCleanCode: "C2926"})
	return table
}

// scoredResult answers every query with a single candidate carrying the
// configured score.
func scoredResult(scores map[string]string) mock.MatchFunc {
	return func(_ context.Context, req matcher.Request, _ map[string]string, _ int, _ string) (*matcher.Result, error) {
		rows := make([]matcher.Row, len(req.Queries))
		for i, q := range req.Queries {
			rows[i] = matcher.Row{Query: q, Candidates: []core.Candidate{
				{Match: "Melanoma", Score: scores[q]},
			}}
		}
		return &matcher.Result{Rows: rows}, nil
	}
}

func TestNewValidation(t *testing.T) {
	factory := mock.NewMockFactory()
	queries := []string{"XYZ"}
	corpusList := []string{"Melanoma"}

	t.Run("missing environment", func(t *testing.T) {
		_, err := New("m", "c", queries, corpusList, nil, "", factory)
		assert.ErrorIs(t, err, ErrEnvironmentRequired)
	})

	t.Run("nil factory", func(t *testing.T) {
		_, err := New("m", "c", queries, corpusList, nil, matcher.EnvTest, nil)
		assert.ErrorIs(t, err, ErrMatcherFactoryRequired)
	})

	t.Run("non-positive top-K", func(t *testing.T) {
		_, err := New("m", "c", queries, corpusList, nil, matcher.EnvTest, factory, WithTopK(0))
		assert.ErrorIs(t, err, ErrInvalidTopK)
	})

	t.Run("threshold out of range", func(t *testing.T) {
		_, err := New("m", "c", queries, corpusList, nil, matcher.EnvTest, factory,
			WithStage3Threshold(1.5))
		assert.ErrorIs(t, err, ErrInvalidThreshold)
	})

	t.Run("invalid stage-2 strategy", func(t *testing.T) {
		_, err := New("m", "c", queries, corpusList, nil, matcher.EnvTest, factory,
			WithStage2Strategy(matcher.StrategyRAG))
		assert.ErrorIs(t, err, ErrInvalidStage2Strategy)
	})

	t.Run("invalid stage-3 strategy", func(t *testing.T) {
		_, err := New("m", "c", queries, corpusList, nil, matcher.EnvTest, factory,
			WithStage3Strategy(matcher.StrategyLM))
		assert.ErrorIs(t, err, ErrInvalidStage3Strategy)
	})

	t.Run("stage 3 without reference table", func(t *testing.T) {
		_, err := New("m", "c", queries, corpusList, nil, matcher.EnvTest, factory,
			WithStage3Strategy(matcher.StrategyRAG))
		assert.ErrorIs(t, err, ErrReferenceTableRequired)
	})

	t.Run("reference table replaces corpus", func(t *testing.T) {
		e, err := New("m", "c", queries, corpusList, nil, matcher.EnvTest, factory,
			WithStage3Strategy(matcher.StrategyRAG),
			WithReferenceTable(testReferenceTable()))
		require.NoError(t, err)
		assert.Equal(t, []string{"Melanoma", "Lung Carcinoma"}, e.corpus)
	})
}

func TestRunExactMatches(t *testing.T) {
	factory := mock.NewMockFactory()
	e := newTestEngine(t, []string{"Lung Cancer", "lung cancer", "XYZ"}, factory)

	rows, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Case and whitespace variants of a corpus entry resolve exactly, with
	// the same curated label.
	for _, row := range rows[:2] {
		assert.Equal(t, core.StageExact, row.Stage)
		assert.Equal(t, core.MatchLevelExact, row.MatchLevel)
		assert.Equal(t, "Lung Carcinoma", row.CuratedOntology)
		require.Len(t, row.Candidates, DefaultTopK)
		for _, c := range row.Candidates {
			assert.Equal(t, "Lung Carcinoma", c.Match)
			assert.Equal(t, "1.00", c.Score)
		}
	}

	xyz := rows[2]
	assert.Equal(t, "XYZ", xyz.OriginalValue)
	assert.Equal(t, core.StageSemantic, xyz.Stage)
	assert.Equal(t, 0, xyz.MatchLevel)
	assert.Equal(t, core.CuratedNotFound, xyz.CuratedOntology)
	assert.NotEmpty(t, xyz.Candidates)

	assert.Equal(t, 1, factory.CallCount(matcher.StrategyST))
}

func TestRunAllExactTerminatesEarly(t *testing.T) {
	factory := mock.NewMockFactory()
	e := newTestEngine(t, []string{"Lung Cancer", "BREAST CANCER "}, factory)

	rows, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Empty(t, factory.Requests())
}

func TestRunDuplicateHandling(t *testing.T) {
	factory := mock.NewMockFactory()
	e := newTestEngine(t, []string{"Lung Cancer", "Lung Cancer", "XYZ", "XYZ"}, factory)

	rows, err := e.Run(context.Background())
	require.NoError(t, err)

	// Exact duplicates survive as separate rows; unresolved duplicates
	// collapse into the unique remaining set.
	require.Len(t, rows, 3)
	assert.Equal(t, "Lung Cancer", rows[0].OriginalValue)
	assert.Equal(t, "Lung Cancer", rows[1].OriginalValue)
	assert.Equal(t, "XYZ", rows[2].OriginalValue)
	assert.Equal(t, core.StageSemantic, rows[2].Stage)
}

func TestRunEscalation(t *testing.T) {
	factory := mock.NewMockFactory().
		WithStrategy(matcher.StrategyST, scoredResult(map[string]string{
			"ABC": "0.95",
			"XYZ": "0.40",
		}))
	e := newTestEngine(t, []string{"melanoma", "XYZ", "ABC"}, factory,
		WithStage3Strategy(matcher.StrategyRAG),
		WithReferenceTable(testReferenceTable()))

	rows, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	byQuery := make(map[string]core.ResultRow, len(rows))
	for _, row := range rows {
		byQuery[row.OriginalValue] = row
	}
	assert.Equal(t, core.StageExact, byQuery["melanoma"].Stage)
	assert.Equal(t, core.StageSemantic, byQuery["ABC"].Stage)
	assert.Equal(t, core.StageRetrieval, byQuery["XYZ"].Stage)

	// Stage 3 was invoked over exactly the escalated query.
	requests := factory.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, matcher.StrategyST, requests[0].Strategy)
	assert.Equal(t, matcher.StrategyRAG, requests[1].Strategy)
	assert.Equal(t, []string{"XYZ"}, requests[1].Queries)
	assert.NotNil(t, requests[1].ReferenceTable)
}

func TestRunMalformedScoreEscalates(t *testing.T) {
	factory := mock.NewMockFactory().
		WithStrategy(matcher.StrategyST, scoredResult(map[string]string{
			"ABC": "high",
			"XYZ": "0.95",
		}))
	e := newTestEngine(t, []string{"XYZ", "ABC"}, factory,
		WithStage3Strategy(matcher.StrategyRAG),
		WithReferenceTable(testReferenceTable()))

	rows, err := e.Run(context.Background())
	require.NoError(t, err)

	byQuery := make(map[string]core.ResultRow, len(rows))
	for _, row := range rows {
		byQuery[row.OriginalValue] = row
	}
	assert.Equal(t, core.StageRetrieval, byQuery["ABC"].Stage)
	assert.Equal(t, core.StageSemantic, byQuery["XYZ"].Stage)
}

func TestRunDegradedCascade(t *testing.T) {
	noScores := func(_ context.Context, req matcher.Request, _ map[string]string, _ int, _ string) (*matcher.Result, error) {
		rows := make([]matcher.Row, len(req.Queries))
		for i, q := range req.Queries {
			rows[i] = matcher.Row{Query: q, Candidates: []core.Candidate{{Match: "Melanoma"}}}
		}
		return &matcher.Result{Rows: rows}, nil
	}
	factory := mock.NewMockFactory().WithStrategy(matcher.StrategyST, noScores)
	e := newTestEngine(t, []string{"XYZ"}, factory,
		WithStage3Strategy(matcher.StrategyRAG),
		WithReferenceTable(testReferenceTable()))

	rows, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, core.StageSemantic, rows[0].Stage)
	assert.Equal(t, 0, factory.CallCount(matcher.StrategyRAG))
}

func TestRunNoEscalationAboveThreshold(t *testing.T) {
	// DefaultResult's top score is 0.95, above the default 0.9 threshold.
	factory := mock.NewMockFactory()
	e := newTestEngine(t, []string{"XYZ"}, factory,
		WithStage3Strategy(matcher.StrategyRAG),
		WithReferenceTable(testReferenceTable()))

	rows, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, core.StageSemantic, rows[0].Stage)
	assert.Equal(t, 0, factory.CallCount(matcher.StrategyRAG))
}

func TestRunStage3Disabled(t *testing.T) {
	factory := mock.NewMockFactory().
		WithStrategy(matcher.StrategyST, scoredResult(map[string]string{"XYZ": "0.10"}))
	e := newTestEngine(t, []string{"XYZ"}, factory)

	rows, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, core.StageSemantic, rows[0].Stage)
	assert.Len(t, factory.Requests(), 1)
}

func TestRunAbbreviationRekeying(t *testing.T) {
	var backendCura map[string]string
	capture := func(_ context.Context, req matcher.Request, curaMap map[string]string, topK int, _ string) (*matcher.Result, error) {
		backendCura = curaMap
		return mock.DefaultResult(req), nil
	}
	factory := mock.NewMockFactory().WithStrategy(matcher.StrategyST, capture)

	expander := &identityExpander{overrides: map[string]string{
		"NSCLC": "Non-Small Cell Lung Cancer",
	}}
	e, err := New("ontomap", "disease", []string{"NSCLC"}, []string{"Melanoma"},
		map[string]string{"NSCLC": "Lung Non-Small Cell Carcinoma"},
		matcher.EnvTest, factory,
		WithStage2Strategy(matcher.StrategyST),
		WithExpander(expander))
	require.NoError(t, err)

	rows, err := e.Run(context.Background())
	require.NoError(t, err)

	// The backend saw the expanded query and the curation entry re-keyed
	// under it.
	require.Len(t, factory.Requests(), 1)
	assert.Equal(t, []string{"Non-Small Cell Lung Cancer"}, factory.Requests()[0].Queries)
	assert.Equal(t, map[string]string{
		"Non-Small Cell Lung Cancer": "Lung Non-Small Cell Carcinoma",
	}, backendCura)

	// The result row keeps the original key and its curated label.
	require.Len(t, rows, 1)
	assert.Equal(t, "NSCLC", rows[0].OriginalValue)
	assert.Equal(t, "Non-Small Cell Lung Cancer", rows[0].UpdatedValue)
	assert.Equal(t, "Lung Non-Small Cell Carcinoma", rows[0].CuratedOntology)
}

func TestRunBackendDroppedQuery(t *testing.T) {
	dropAll := func(_ context.Context, _ matcher.Request, _ map[string]string, _ int, _ string) (*matcher.Result, error) {
		return &matcher.Result{}, nil
	}
	factory := mock.NewMockFactory().WithStrategy(matcher.StrategyST, dropAll)
	e := newTestEngine(t, []string{"XYZ"}, factory)

	rows, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "XYZ", rows[0].OriginalValue)
	assert.Empty(t, rows[0].Candidates)
}

func TestRunBackendError(t *testing.T) {
	boom := func(_ context.Context, _ matcher.Request, _ map[string]string, _ int, _ string) (*matcher.Result, error) {
		return nil, fmt.Errorf("backend unavailable")
	}
	factory := mock.NewMockFactory().WithStrategy(matcher.StrategyST, boom)
	e := newTestEngine(t, []string{"XYZ"}, factory)

	_, err := e.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage 2")
}

func TestRunCoverage(t *testing.T) {
	factory := mock.NewMockFactory().
		WithStrategy(matcher.StrategyST, scoredResult(map[string]string{
			"ABC": "0.95",
			"XYZ": "0.40",
		}))
	queries := []string{"Lung Cancer", "XYZ", "ABC", "lung cancer"}
	e := newTestEngine(t, queries, factory,
		WithStage3Strategy(matcher.StrategyRAG),
		WithReferenceTable(testReferenceTable()))

	rows, err := e.Run(context.Background())
	require.NoError(t, err)

	// Every input query appears in exactly one stage's rows.
	counts := make(map[string]int)
	stages := make(map[string]int)
	for _, row := range rows {
		counts[row.OriginalValue]++
		if prev, ok := stages[row.OriginalValue]; ok {
			assert.Equal(t, prev, row.Stage, "query %q tagged with two stages", row.OriginalValue)
		}
		stages[row.OriginalValue] = row.Stage
	}
	for _, q := range queries {
		assert.Equal(t, 1, counts[q], "query %q row count", q)
	}
}
