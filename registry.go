package classicbloom

import "sync"

// Source is a registered supplier of bloom parameters, standing in for a
// scene component owned by the host. The pipeline never retains a Source
// beyond reading its snapshot for one invocation.
type Source struct {
	mu     sync.Mutex
	params Parameters
	active bool
}

// NewSource returns an active source carrying params.
func NewSource(params Parameters) *Source {
	return &Source{params: params, active: true}
}

// SetActive toggles whether the source participates in selection.
func (s *Source) SetActive(active bool) {
	s.mu.Lock()
	s.active = active
	s.mu.Unlock()
}

// SetParameters replaces the source's configuration.
func (s *Source) SetParameters(params Parameters) {
	s.mu.Lock()
	s.params = params
	s.mu.Unlock()
}

// Snapshot returns the current configuration.
func (s *Source) Snapshot() Parameters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

func (s *Source) isActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Registry tracks the sources registered by a host. When several sources are
// active at once, the first registered wins; registration order is the only
// priority the host expresses.
type Registry struct {
	mu      sync.Mutex
	sources []*Source
}

// Register adds src if not already present.
func (r *Registry) Register(src *Source) {
	if src == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sources {
		if s == src {
			return
		}
	}
	r.sources = append(r.sources, src)
}

// Unregister removes src.
func (r *Registry) Unregister(src *Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.sources {
		if s == src {
			r.sources = append(r.sources[:i], r.sources[i+1:]...)
			return
		}
	}
}

// Active returns the parameter snapshot of the first active source.
func (r *Registry) Active() (Parameters, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sources {
		if s.isActive() {
			return s.Snapshot(), true
		}
	}
	return Parameters{}, false
}
