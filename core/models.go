package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for indexed corpus entries.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Cascade stage tags recorded on result rows.
const (
	// StageExact marks rows produced by exact matching.
	StageExact = 1
	// StageSemantic marks rows produced by the stage-2 semantic strategy (lm or st).
	StageSemantic = 2
	// StageRetrieval marks rows produced by the stage-3 retrieval strategy (rag or rag_bie).
	StageRetrieval = 3
)

// MatchLevelExact is the match level assigned to exact matches.
// Rows from later stages carry match level 0.
const MatchLevelExact = 1

// CuratedNotFound is the curated label attached to rows whose original
// query has no entry in the curation map.
const CuratedNotFound = "Not Found"

// Candidate is a single ranked match returned by a matching strategy.
type Candidate struct {
	Match string
	Code  string // ontology code, populated by retrieval strategies
	Score string // score as reported by the backend; may be empty or non-numeric
}

// ResultRow is one row of the final unified result table.
// Every input query appears in exactly one stage's rows.
type ResultRow struct {
	OriginalValue   string
	UpdatedValue    string // abbreviation-expanded query; empty for stage-1 rows
	CuratedOntology string
	MatchLevel      int
	Stage           int
	Candidates      []Candidate // top-K matches, highest ranked first
}

// TopScore returns the row's top-1 confidence as a number.
// Missing or non-numeric scores count as 0.
func (r *ResultRow) TopScore() float64 {
	if len(r.Candidates) == 0 {
		return 0
	}
	return ParseScore(r.Candidates[0].Score)
}

// CorpusEntry is one ontology entry held by the vector index.
type CorpusEntry struct {
	Id     ID
	Label  string
	Code   string
	Vector []float32 // embedding vector, normalized for cosine similarity
}

// EntryMatch is a corpus entry returned from vector similarity search.
type EntryMatch struct {
	Entry *CorpusEntry
	Score float32
}
