// Package wsobserver fans league.v2 envelopes out to spectator
// websocket connections, one fan-out group per league_id. It observes
// the league manager's outbound traffic; it never feeds decisions back
// into the match protocol.
package wsobserver

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/leaguerunner/tournament/pkg/logger"
)

// Hub manages spectator connections grouped by league_id.
type Hub struct {
	leagues map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *Event

	mu  sync.RWMutex
	log *logger.Logger
}

// Event is one observed envelope, rebroadcast verbatim to spectators
// of its league.
type Event struct {
	LeagueID string          `json:"league_id"`
	Envelope json.RawMessage `json:"envelope"`
}

// NewHub creates an idle hub; call Run to start its dispatch loop.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		leagues:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Event, 256),
		log:        log,
	}
}

// Run processes register/unregister/broadcast until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.leagues[client.leagueID] == nil {
		h.leagues[client.leagueID] = make(map[*Client]bool)
	}
	h.leagues[client.leagueID][client] = true

	h.log.Info("spectator registered", zap.String("league_id", client.leagueID))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.leagues[client.leagueID]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.leagues, client.leagueID)
	}

	h.log.Info("spectator unregistered", zap.String("league_id", client.leagueID))
}

func (h *Hub) broadcastEvent(event *Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.leagues[event.LeagueID]
	if !ok {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.log.LogError("failed to marshal spectator event", err)
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			h.log.Info("spectator send buffer full, disconnecting", zap.String("league_id", event.LeagueID))
			close(client.send)
			delete(clients, client)
		}
	}
}

// Broadcast queues envelope for fan-out to leagueID's spectators.
func (h *Hub) Broadcast(leagueID string, envelope json.RawMessage) {
	event := &Event{LeagueID: leagueID, Envelope: envelope}
	select {
	case h.broadcast <- event:
	default:
		h.log.Error("spectator broadcast channel full, event dropped", zap.String("league_id", leagueID))
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for leagueID, clients := range h.leagues {
		for client := range clients {
			close(client.send)
			delete(clients, client)
		}
		delete(h.leagues, leagueID)
	}

	h.log.Info("spectator hub shutdown complete")
}

// Stats reports current fan-out group sizes.
func (h *Hub) Stats() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.leagues {
		total += len(clients)
	}

	return map[string]interface{}{
		"leagues":       len(h.leagues),
		"total_clients": total,
	}
}
