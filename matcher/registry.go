package matcher

import "fmt"

// Builder constructs a Matcher for one stage invocation.
type Builder func(req Request) (Matcher, error)

// Registry is a Factory backed by a strategy-to-builder lookup table.
// Selection is a pure lookup; the registry holds no behavior of its own.
type Registry struct {
	builders map[Strategy]Builder
}

var _ Factory = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[Strategy]Builder)}
}

// Register binds a strategy name to a builder, replacing any previous binding.
func (r *Registry) Register(s Strategy, b Builder) error {
	if b == nil {
		return fmt.Errorf("%w: strategy %q", ErrNilBuilder, s)
	}
	r.builders[s] = b
	return nil
}

// New resolves the request's strategy and builds a matcher for it.
// An unregistered strategy is a fatal configuration error, raised here at
// invocation time rather than at engine construction.
func (r *Registry) New(req Request) (Matcher, error) {
	b, ok := r.builders[req.Strategy]
	if !ok {
		return nil, fmt.Errorf("%w: %q (want lm, st, rag, or rag_bie)", ErrUnknownStrategy, req.Strategy)
	}
	return b(req)
}
