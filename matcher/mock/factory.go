package mock

import (
	"context"
	"fmt"

	"github.com/poiesic/ontomap/core"
	"github.com/poiesic/ontomap/matcher"
)

// MatchFunc is injectable backend behavior for one strategy.
type MatchFunc func(ctx context.Context, req matcher.Request, curaMap map[string]string, topK int, env string) (*matcher.Result, error)

// MockFactory is a test double for matcher.Factory.
// It records resolved requests and builds MockMatchers.
type MockFactory struct {
	funcs      map[matcher.Strategy]MatchFunc
	requests   []matcher.Request
	callCounts map[matcher.Strategy]int
}

var _ matcher.Factory = (*MockFactory)(nil)

// NewMockFactory creates a factory whose matchers answer with
// DefaultResult unless a MatchFunc is installed for the strategy.
func NewMockFactory() *MockFactory {
	return &MockFactory{
		funcs:      make(map[matcher.Strategy]MatchFunc),
		callCounts: make(map[matcher.Strategy]int),
	}
}

// WithStrategy installs custom behavior for a strategy. Chainable.
func (f *MockFactory) WithStrategy(s matcher.Strategy, fn MatchFunc) *MockFactory {
	f.funcs[s] = fn
	return f
}

// New records the request and returns a mock matcher bound to it.
func (f *MockFactory) New(req matcher.Request) (matcher.Matcher, error) {
	f.requests = append(f.requests, req)
	return &MockMatcher{factory: f, req: req}, nil
}

// Requests returns every request the factory has resolved, in order.
func (f *MockFactory) Requests() []matcher.Request {
	return f.requests
}

// CallCount returns how many times matchers of the given strategy were invoked.
func (f *MockFactory) CallCount(s matcher.Strategy) int {
	return f.callCounts[s]
}

// MockMatcher is a test double for matcher.Matcher built by MockFactory.
type MockMatcher struct {
	factory *MockFactory
	req     matcher.Request
}

// GetMatchResults invokes the installed MatchFunc for the request's
// strategy, or DefaultResult when none is installed.
func (m *MockMatcher) GetMatchResults(ctx context.Context, curaMap map[string]string, topK int, env string) (*matcher.Result, error) {
	m.factory.callCounts[m.req.Strategy]++
	if fn := m.factory.funcs[m.req.Strategy]; fn != nil {
		return fn(ctx, m.req, curaMap, topK, env)
	}
	return DefaultResult(m.req), nil
}

// DefaultResult builds a deterministic result: every query gets topK
// candidates drawn from the front of the corpus with descending scores
// starting at 0.95.
func DefaultResult(req matcher.Request) *matcher.Result {
	rows := make([]matcher.Row, len(req.Queries))
	for i, q := range req.Queries {
		k := req.TopK
		if k > len(req.Corpus) {
			k = len(req.Corpus)
		}
		candidates := make([]core.Candidate, 0, k)
		for j := 0; j < k; j++ {
			candidates = append(candidates, core.Candidate{
				Match: req.Corpus[j],
				Score: fmt.Sprintf("%.2f", 0.95-0.05*float64(j)),
			})
		}
		rows[i] = matcher.Row{Query: q, Candidates: candidates}
	}
	return &matcher.Result{Rows: rows}
}
