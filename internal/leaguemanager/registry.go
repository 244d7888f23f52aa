package leaguemanager

import (
	"fmt"
	"sync"

	"github.com/leaguerunner/tournament/internal/domain"
)

// registry tracks one kind of agent (players or referees), assigning
// ids in registration order and preserving that order for scheduling
// and round-robin referee assignment.
type registry struct {
	mu     sync.RWMutex
	prefix string
	order  []string
	agents map[string]*domain.Agent
}

func newRegistry(prefix string) *registry {
	return &registry{prefix: prefix, agents: make(map[string]*domain.Agent)}
}

// nextID returns the next id of the form "{prefix}{NN}", one-indexed
// and zero-padded to two digits (wider once past 99).
func (r *registry) nextID() string {
	return fmt.Sprintf("%s%02d", r.prefix, len(r.order)+1)
}

// add assigns an id to agent and stores it, returning the assigned id.
func (r *registry) add(agent *domain.Agent) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID()
	agent.ID = id
	r.order = append(r.order, id)
	r.agents[id] = agent
	return id
}

func (r *registry) get(id string) (*domain.Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[id]
	return a, ok
}

// orderedIDs returns registered ids in registration order.
func (r *registry) orderedIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *registry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
