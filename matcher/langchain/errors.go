package langchain

import "errors"

var (
	// ErrReferenceTableRequired is returned when a retrieval strategy is
	// built without a reference table.
	ErrReferenceTableRequired = errors.New("reference table required for retrieval strategies")

	// ErrEmbeddingCountMismatch is returned when the embedding service
	// returns a different number of vectors than texts submitted.
	ErrEmbeddingCountMismatch = errors.New("embedding service returned wrong number of vectors")
)
