// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package engine

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/ontomap/abbrev"
	"github.com/poiesic/ontomap/corpus"
	"github.com/poiesic/ontomap/matcher"
)

// Defaults applied when the corresponding option is not given.
const (
	DefaultTopK            = 5
	DefaultStage2Strategy  = matcher.StrategyLM
	DefaultStage3Threshold = 0.9
)

// Expander maps query strings to their abbreviation-expanded forms.
// abbrev.Resolver is the production implementation.
type Expander interface {
	Expand(queries []string) map[string]string
}

// Engine resolves queries against the corpus through the matching cascade.
// All inputs are fixed at construction; Run never mutates them.
type Engine struct {
	method   string
	category string
	queries  []string
	corpus   []string
	curaMap  map[string]string
	env      string
	factory  matcher.Factory

	topK       int
	s2Strategy matcher.Strategy
	s3Strategy matcher.Strategy // empty means stage 3 disabled
	threshold  float64

	refTable   *corpus.Table // normalized, stage-3 configurations only
	queryTable *corpus.Table
	expander   Expander
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTopK sets how many candidates each stage reports per query.
// Default is DefaultTopK.
func WithTopK(k int) Option {
	return func(e *Engine) {
		e.topK = k
	}
}

// WithStage2Strategy sets the semantic strategy, lm or st.
// Default is DefaultStage2Strategy.
func WithStage2Strategy(s matcher.Strategy) Option {
	return func(e *Engine) {
		e.s2Strategy = s
	}
}

// WithStage3Strategy enables the retrieval stage with the given strategy,
// rag or rag_bie. Stage 3 is disabled when this option is absent.
func WithStage3Strategy(s matcher.Strategy) Option {
	return func(e *Engine) {
		e.s3Strategy = s
	}
}

// WithStage3Threshold sets the confidence below which stage-2 rows are
// escalated to stage 3. Default is DefaultStage3Threshold.
func WithStage3Threshold(threshold float64) Option {
	return func(e *Engine) {
		e.threshold = threshold
	}
}

// WithReferenceTable supplies the reference table retrieval strategies
// index. Required when a stage-3 strategy is configured; normalized once
// at construction.
func WithReferenceTable(t *corpus.Table) Option {
	return func(e *Engine) {
		e.refTable = t
	}
}

// WithQueryTable supplies per-query context consulted by the rag_bie
// strategy. Optional.
func WithQueryTable(t *corpus.Table) Option {
	return func(e *Engine) {
		e.queryTable = t
	}
}

// WithExpander overrides the abbreviation expander.
// Default is an abbrev.Resolver on its default table path.
func WithExpander(x Expander) Option {
	return func(e *Engine) {
		e.expander = x
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// New validates the cascade configuration and builds an Engine.
//
// Method and category are opaque passthroughs to the backends. The corpus
// list is deduplicated preserving order; for stage-3 configurations the
// reference table is normalized here and its unique labels replace the
// working corpus.
func New(method, category string, queries, corpusList []string, curaMap map[string]string,
	env string, factory matcher.Factory, opts ...Option) (*Engine, error) {

	e := &Engine{
		method:     method,
		category:   category,
		queries:    queries,
		curaMap:    curaMap,
		env:        env,
		factory:    factory,
		topK:       DefaultTopK,
		s2Strategy: DefaultStage2Strategy,
		threshold:  DefaultStage3Threshold,
		logger:     slog.Default().With("component", "engine"),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.env == "" {
		return nil, ErrEnvironmentRequired
	}
	if e.factory == nil {
		return nil, ErrMatcherFactoryRequired
	}
	if e.topK < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTopK, e.topK)
	}
	if e.threshold < 0 || e.threshold > 1 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidThreshold, e.threshold)
	}
	if !e.s2Strategy.ValidStage2() {
		return nil, fmt.Errorf("%w: %q (want lm or st)", ErrInvalidStage2Strategy, e.s2Strategy)
	}

	if e.s3Strategy != "" {
		if !e.s3Strategy.ValidStage3() {
			return nil, fmt.Errorf("%w: %q (want rag or rag_bie)", ErrInvalidStage3Strategy, e.s3Strategy)
		}
		if e.refTable == nil {
			return nil, ErrReferenceTableRequired
		}
		normalized, err := corpus.Normalize(e.refTable, true, e.logger)
		if err != nil {
			return nil, fmt.Errorf("normalizing reference table: %w", err)
		}
		e.refTable = normalized
		labels, err := corpus.UniqueLabels(normalized)
		if err != nil {
			return nil, err
		}
		e.corpus = labels
	} else {
		e.corpus = corpus.Dedupe(corpusList)
	}

	if e.expander == nil {
		e.expander = abbrev.NewResolver(abbrev.WithLogger(e.logger))
	}

	e.logger.Info("cascade configured",
		"queries", len(e.queries),
		"corpus", len(e.corpus),
		"stage2", e.s2Strategy,
		"stage3", stageName(e.s3Strategy),
		"threshold", e.threshold,
		"top_k", e.topK)

	return e, nil
}

func stageName(s matcher.Strategy) string {
	if s == "" {
		return "disabled"
	}
	return string(s)
}

// request builds the adapter request for one stage invocation.
func (e *Engine) request(strategy matcher.Strategy, queries []string) matcher.Request {
	return matcher.Request{
		Method:         e.method,
		Category:       e.category,
		Strategy:       strategy,
		Queries:        queries,
		Corpus:         e.corpus,
		TopK:           e.topK,
		ReferenceTable: e.refTable,
		QueryTable:     e.queryTable,
	}
}
