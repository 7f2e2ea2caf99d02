package langchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"plain json untouched",
			`{"matches":[{"label":"Melanoma","confidence":0.9}]}`,
			`{"matches":[{"label":"Melanoma","confidence":0.9}]}`,
		},
		{
			"fenced json",
			"```json\n{\"matches\":[]}\n```",
			`{"matches":[]}`,
		},
		{
			"bare fence",
			"```\n{\"matches\":[]}\n```",
			`{"matches":[]}`,
		},
		{
			"missing opening quote on key",
			`{"label":"Melanoma", confidence": 0.9}`,
			`{"label":"Melanoma", "confidence": 0.9}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanModelJSON(tt.input))
		})
	}
}
