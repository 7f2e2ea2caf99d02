package engine

import (
	"slices"

	"github.com/poiesic/ontomap/core"
	"github.com/poiesic/ontomap/corpus"
)

// exactScore is the fixed confidence attached to exact matches.
const exactScore = "1.00"

// exactMatch splits the query list into stage-1 rows for queries whose
// trimmed, case-folded form appears in the corpus, and the remaining
// queries. Matched rows preserve input order and duplicates; the remaining
// list is the sorted unique set difference.
func (e *Engine) exactMatch() ([]core.ResultRow, []string) {
	members := make(map[string]bool, len(e.corpus))
	for _, entry := range e.corpus {
		members[corpus.NormalizeTerm(entry)] = true
	}

	var rows []core.ResultRow
	var remaining []string
	seen := make(map[string]bool)
	for _, q := range e.queries {
		if !members[corpus.NormalizeTerm(q)] {
			if !seen[q] {
				seen[q] = true
				remaining = append(remaining, q)
			}
			continue
		}
		rows = append(rows, e.exactRow(q))
	}
	slices.Sort(remaining)

	return rows, remaining
}

// exactRow builds a stage-1 row: every candidate slot holds the curated
// value, falling back to the query text when no curation entry exists.
func (e *Engine) exactRow(q string) core.ResultRow {
	curated, ok := e.curaMap[q]
	if !ok {
		curated = q
	}
	candidates := make([]core.Candidate, e.topK)
	for i := range candidates {
		candidates[i] = core.Candidate{Match: curated, Score: exactScore}
	}
	return core.ResultRow{
		OriginalValue:   q,
		CuratedOntology: curated,
		MatchLevel:      core.MatchLevelExact,
		Stage:           core.StageExact,
		Candidates:      candidates,
	}
}
