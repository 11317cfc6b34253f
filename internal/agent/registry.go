package agent

import (
	"fmt"
	"sync"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/pkg/models"
)

// Registry maps agent categories to their runners. The engine resolves every
// dispatch through a registry so tests can swap in fakes per category.
type Registry struct {
	mu      sync.RWMutex
	runners map[models.AgentKind]Runner
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{runners: make(map[models.AgentKind]Runner)}
}

// Register adds a runner for its agent kind, replacing any previous one.
func (r *Registry) Register(runner Runner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runners[runner.Kind()] = runner
}

// Get returns the runner for the given kind.
func (r *Registry) Get(kind models.AgentKind) (Runner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runner, ok := r.runners[kind]
	if !ok {
		return nil, fmt.Errorf("no runner registered for agent %q", kind)
	}
	return runner, nil
}

// Kinds returns the registered agent kinds.
func (r *Registry) Kinds() []models.AgentKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]models.AgentKind, 0, len(r.runners))
	for k := range r.runners {
		kinds = append(kinds, k)
	}
	return kinds
}
