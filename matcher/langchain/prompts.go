package langchain

import (
	"fmt"
	"strings"
)

const rankingResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "matches": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "label": {
            "type": "string"
          },
          "confidence": {
            "type": "number",
            "minimum": 0,
            "maximum": 1
          }
        },
        "required": ["label", "confidence"],
        "additionalProperties": false
      }
    }
  },
  "required": ["matches"],
  "additionalProperties": false
}`

const rankingPromptTemplate = `You map free-text %s terms to entries of a controlled ontology.

Given a query term, pick the %d ontology labels from the candidate list below
that best match it, ordered from best to worst, each with a confidence between
0.0 and 1.0.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Every label in your output must be copied verbatim from the candidate list.
- Confidence reflects how certain you are that the label denotes the same entity as the query.
- If nothing in the list is a plausible match, return "matches": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Candidate list:
%s`

// buildRankingPrompt assembles the system prompt for the lm strategy.
// category describes the term domain (e.g. "cancer type"); it is an opaque
// passthrough from the caller.
func buildRankingPrompt(category string, corpus []string, topK int) string {
	if category == "" {
		category = "biomedical"
	}
	return fmt.Sprintf(rankingPromptTemplate, category, topK, rankingResponseSchema,
		strings.Join(corpus, "\n"))
}
