// Package abbrev expands short ontology codes to their display names.
//
// The lookup table is a two-column code,name CSV reloaded on every Expand
// call: the candidate set differs between cascade stages, so the mapping is
// recomputed rather than cached. A missing or unreadable table degrades to
// the identity mapping and is logged, never fatal.
package abbrev

import (
	"log/slog"
	"strings"

	"github.com/poiesic/ontomap/corpus"
)

// DefaultTablePath is the fixed logical path of the code-to-name table.
const DefaultTablePath = "data/corpus/oncotree_code_to_name.csv"

// Column names expected in the lookup table.
const (
	codeColumn = "code"
	nameColumn = "name"
)

// Resolver maps short codes to expanded display names.
type Resolver struct {
	path   string
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPath overrides the lookup table path.
// Default is DefaultTablePath.
func WithPath(path string) Option {
	return func(r *Resolver) {
		r.path = path
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// NewResolver creates a resolver backed by the code-to-name table.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		path:   DefaultTablePath,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Expand returns a mapping from each query to its expanded form.
// Queries are trimmed before lookup; queries with no code entry map to
// their trimmed selves.
func (r *Resolver) Expand(queries []string) map[string]string {
	shortToName := r.loadTable()

	expanded := make(map[string]string, len(queries))
	for _, q := range queries {
		trimmed := strings.TrimSpace(q)
		name, ok := shortToName[trimmed]
		if !ok {
			expanded[q] = trimmed
			continue
		}
		expanded[q] = name
		r.logger.Info("expanded abbreviation", "code", trimmed, "name", name)
	}
	return expanded
}

// loadTable reads the code-to-name table, returning an empty mapping when
// the table cannot be loaded.
func (r *Resolver) loadTable() map[string]string {
	table, err := corpus.LoadTable(r.path)
	if err != nil {
		r.logger.Warn("abbreviation table unavailable, skipping abbreviation replacement",
			"path", r.path, "err", err)
		return map[string]string{}
	}

	codes, err := table.Column(codeColumn)
	if err != nil {
		r.logger.Warn("abbreviation table missing code column, skipping abbreviation replacement",
			"path", r.path, "err", err)
		return map[string]string{}
	}
	names, err := table.Column(nameColumn)
	if err != nil {
		r.logger.Warn("abbreviation table missing name column, skipping abbreviation replacement",
			"path", r.path, "err", err)
		return map[string]string{}
	}

	shortToName := make(map[string]string, len(codes))
	for i, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		shortToName[code] = strings.TrimSpace(names[i])
	}
	return shortToName
}
