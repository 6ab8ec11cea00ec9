// Package health aggregates named subsystem checks for the assessment
// service. The server registers a checker for the classifier (model
// trained) and reports the aggregate on /health.
package health

import (
	"context"
	"sync"
	"time"
)

// Status is the outcome of one subsystem check.
type Status struct {
	Name      string `json:"name"`
	Healthy   bool   `json:"healthy"`
	Detail    string `json:"detail,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// Checker probes one subsystem. It must respect ctx cancellation.
type Checker func(ctx context.Context) Status

// Registry holds named checkers in registration order.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	checkers map[string]Checker
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{checkers: make(map[string]Checker)}
}

// Register adds a checker under the given name. Re-registering a name
// replaces the previous checker but keeps its position.
func (r *Registry) Register(name string, check Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.checkers[name]; !exists {
		r.order = append(r.order, name)
	}
	r.checkers[name] = check
}

// CheckAll runs every checker in registration order and reports the
// aggregate: healthy only if every subsystem is.
func (r *Registry) CheckAll(ctx context.Context) (bool, []Status) {
	r.mu.RLock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	checks := make(map[string]Checker, len(r.checkers))
	for name, c := range r.checkers {
		checks[name] = c
	}
	r.mu.RUnlock()

	healthy := true
	statuses := make([]Status, 0, len(names))

	for _, name := range names {
		start := time.Now()
		st := checks[name](ctx)
		st.Name = name
		st.LatencyMS = time.Since(start).Milliseconds()
		if !st.Healthy {
			healthy = false
		}
		statuses = append(statuses, st)
	}

	return healthy, statuses
}
