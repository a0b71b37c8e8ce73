package strategy

import "github.com/alejandrodnm/botsim/internal/ports"

// Registry holds the available strategies indexed by name.
type Registry map[string]ports.Strategy

// NewRegistry creates an empty registry.
func NewRegistry() Registry {
	return make(Registry)
}

// Register adds a strategy to the registry.
func (r Registry) Register(s ports.Strategy) {
	r[s.Name()] = s
}

// Get returns the strategy by name.
func (r Registry) Get(name string) (ports.Strategy, bool) {
	s, ok := r[name]
	return s, ok
}

// Names returns the registered strategy names.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	return names
}
