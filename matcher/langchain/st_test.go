package langchain

import (
	"context"
	"log/slog"
	"testing"

	"github.com/poiesic/ontomap/matcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder returns fixed vectors by text, zero vectors for unknown text.
type fakeEmbedder struct {
	vectors map[string][]float32
	dim     int
}

func (f *fakeEmbedder) embedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := f.vectors[text]; ok {
			out[i] = v
			continue
		}
		out[i] = make([]float32, f.dim)
	}
	return out, nil
}

func TestSTMatcherRanking(t *testing.T) {
	embed := &fakeEmbedder{
		dim: 3,
		vectors: map[string][]float32{
			"lung cancer":     {1, 0, 0},
			"Lung Carcinoma":  {0.9, 0.1, 0},
			"Melanoma":        {0, 1, 0},
			"Prostate Cancer": {0, 0, 1},
		},
	}
	m := &STMatcher{
		req: matcher.Request{
			Queries: []string{"lung cancer"},
			Corpus:  []string{"Melanoma", "Lung Carcinoma", "Prostate Cancer"},
		},
		embed:  embed,
		logger: slog.Default(),
	}

	res, err := m.GetMatchResults(context.Background(), nil, 2, matcher.EnvTest)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	row := res.Rows[0]
	assert.Equal(t, "lung cancer", row.Query)
	require.Len(t, row.Candidates, 2)
	assert.Equal(t, "Lung Carcinoma", row.Candidates[0].Match)
	assert.Equal(t, "0.9000", row.Candidates[0].Score)
	assert.True(t, res.HasScores())
}

func TestSTMatcherTopKLargerThanCorpus(t *testing.T) {
	embed := &fakeEmbedder{
		dim: 2,
		vectors: map[string][]float32{
			"XYZ":      {1, 0},
			"Melanoma": {0, 1},
		},
	}
	m := &STMatcher{
		req: matcher.Request{
			Queries: []string{"XYZ"},
			Corpus:  []string{"Melanoma"},
		},
		embed:  embed,
		logger: slog.Default(),
	}

	res, err := m.GetMatchResults(context.Background(), nil, 5, matcher.EnvTest)
	require.NoError(t, err)
	assert.Len(t, res.Rows[0].Candidates, 1)
}

func TestNormalizeVector(t *testing.T) {
	t.Run("unit length", func(t *testing.T) {
		v := normalizeVector([]float32{3, 4})
		assert.InDelta(t, 0.6, v[0], 1e-6)
		assert.InDelta(t, 0.8, v[1], 1e-6)
	})

	t.Run("zero vector unchanged", func(t *testing.T) {
		v := normalizeVector([]float32{0, 0})
		assert.Equal(t, []float32{0, 0}, v)
	})
}
