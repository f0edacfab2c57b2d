package trading

import (
	"sort"
	"sync"

	"ashare-trader/internal/errors"
)

// Registry holds one engine per configured model. It replaces ambient
// process-global engine state; its lifecycle is tied to configuration
// load, and a reload builds a fresh registry.
type Registry struct {
	mu      sync.RWMutex
	engines map[int64]*Engine
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{engines: make(map[int64]*Engine)}
}

// Register adds or replaces the engine for its model id.
func (r *Registry) Register(e *Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[e.ModelID()] = e
}

// Engine returns the engine for a model id.
func (r *Registry) Engine(modelID int64) (*Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[modelID]
	if !ok {
		return nil, errors.ErrModelNotFound
	}
	return e, nil
}

// Engines returns all registered engines ordered by model id.
func (r *Registry) Engines() []*Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Engine, 0, len(r.engines))
	for _, e := range r.engines {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModelID() < out[j].ModelID() })
	return out
}
