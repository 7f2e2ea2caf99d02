package core

import "fmt"

// ValidateCorpusEntry validates a CorpusEntry according to domain rules.
//
// Validation rules:
//   - Label must not be empty
//
// NOT validated (populated by backends):
//   - Vector (can be empty until the entry is embedded)
//   - Code (optional for corpora without ontology codes)
//   - ID (derived from the label when 0)
func ValidateCorpusEntry(entry *CorpusEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidCorpusEntry)
	}

	if entry.Label == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCorpusEntry, ErrEmptyLabel)
	}

	return nil
}
