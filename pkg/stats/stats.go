package stats

import (
	"sort"
	"sync"
	"time"
)

// SourceStats tracks upstream health for a single catalog
type SourceStats struct {
	Name         string    `json:"name"`
	Requests     int64     `json:"requests"`
	Failures     int64     `json:"failures"`
	LastError    string    `json:"lastError,omitempty"`
	LastFailure  time.Time `json:"lastFailure,omitzero"`
	LastSuccess  time.Time `json:"lastSuccess,omitzero"`
	LastDuration string    `json:"lastDuration"`
}

// Registry holds per-source statistics for the lifetime of the process
type Registry struct {
	mu      sync.RWMutex
	sources map[string]*SourceStats
	now     func() time.Time
}

// NewRegistry creates a registry pre-populated with the given sources
func NewRegistry(sources ...string) *Registry {
	r := &Registry{
		sources: make(map[string]*SourceStats, len(sources)),
		now:     time.Now,
	}
	for _, name := range sources {
		r.sources[name] = &SourceStats{Name: name}
	}
	return r
}

func (r *Registry) get(name string) *SourceStats {
	s, ok := r.sources[name]
	if !ok {
		s = &SourceStats{Name: name}
		r.sources[name] = s
	}
	return s
}

// RecordSuccess marks a completed upstream call
func (r *Registry) RecordSuccess(name string, took time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.get(name)
	s.Requests++
	s.LastSuccess = r.now()
	s.LastDuration = took.String()
}

// RecordFailure marks a failed upstream call
func (r *Registry) RecordFailure(name string, took time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.get(name)
	s.Requests++
	s.Failures++
	s.LastFailure = r.now()
	s.LastDuration = took.String()
	if err != nil {
		s.LastError = err.Error()
	}
}

// Snapshot returns a copy of every source's statistics, sorted by name
func (r *Registry) Snapshot() []SourceStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]SourceStats, 0, len(r.sources))
	for _, s := range r.sources {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
