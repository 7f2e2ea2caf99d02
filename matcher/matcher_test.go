package matcher

import (
	"context"
	"testing"

	"github.com/poiesic/ontomap/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategyValidity(t *testing.T) {
	tests := []struct {
		strategy Strategy
		stage2   bool
		stage3   bool
	}{
		{StrategyLM, true, false},
		{StrategyST, true, false},
		{StrategyRAG, false, true},
		{StrategyBIE, false, true},
		{Strategy("fuzzy"), false, false},
		{Strategy(""), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			assert.Equal(t, tt.stage2, tt.strategy.ValidStage2())
			assert.Equal(t, tt.stage3, tt.strategy.ValidStage3())
		})
	}
}

type staticMatcher struct {
	result *Result
}

func (m *staticMatcher) GetMatchResults(_ context.Context, _ map[string]string, _ int, _ string) (*Result, error) {
	return m.result, nil
}

func TestRegistry(t *testing.T) {
	t.Run("resolves registered strategy", func(t *testing.T) {
		reg := NewRegistry()
		want := &staticMatcher{result: &Result{}}
		require.NoError(t, reg.Register(StrategyST, func(Request) (Matcher, error) {
			return want, nil
		}))

		got, err := reg.New(Request{Strategy: StrategyST})
		require.NoError(t, err)
		assert.Same(t, want, got)
	})

	t.Run("unknown strategy fails at invocation", func(t *testing.T) {
		reg := NewRegistry()
		_, err := reg.New(Request{Strategy: StrategyRAG})
		assert.ErrorIs(t, err, ErrUnknownStrategy)
	})

	t.Run("nil builder rejected", func(t *testing.T) {
		reg := NewRegistry()
		assert.ErrorIs(t, reg.Register(StrategyLM, nil), ErrNilBuilder)
	})
}

func TestResultHasScores(t *testing.T) {
	t.Run("nil result", func(t *testing.T) {
		var r *Result
		assert.False(t, r.HasScores())
	})

	t.Run("no rows", func(t *testing.T) {
		assert.False(t, (&Result{}).HasScores())
	})

	t.Run("candidates without scores", func(t *testing.T) {
		r := &Result{Rows: []Row{
			{Query: "XYZ", Candidates: []core.Candidate{{Match: "Melanoma"}}},
		}}
		assert.False(t, r.HasScores())
	})

	t.Run("any scored candidate", func(t *testing.T) {
		r := &Result{Rows: []Row{
			{Query: "XYZ", Candidates: []core.Candidate{{Match: "Melanoma"}}},
			{Query: "ABC", Candidates: []core.Candidate{{Match: "Lung Carcinoma", Score: "0.7"}}},
		}}
		assert.True(t, r.HasScores())
	})
}
