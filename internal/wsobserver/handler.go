package wsobserver

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	ws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/leaguerunner/tournament/pkg/logger"
)

func writeJSON(w http.ResponseWriter, v interface{}) error {
	return json.NewEncoder(w).Encode(v)
}

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		allowed := os.Getenv("WEBSOCKET_ALLOWED_ORIGINS")
		if allowed == "" {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range strings.Split(allowed, ",") {
			if strings.TrimSpace(o) == origin {
				return true
			}
		}
		return false
	},
}

// Handler upgrades HTTP connections into spectator websocket clients.
type Handler struct {
	hub *Hub
	log *logger.Logger
}

// NewHandler wires a Handler around hub.
func NewHandler(hub *Hub, log *logger.Logger) *Handler {
	return &Handler{hub: hub, log: log}
}

// HandleLeague upgrades GET /ws/leagues/{id} into a spectator stream.
func (h *Handler) HandleLeague(w http.ResponseWriter, r *http.Request) {
	leagueID := chi.URLParam(r, "id")
	if leagueID == "" {
		http.Error(w, "league id required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.LogError("failed to upgrade spectator connection", err, zap.String("league_id", leagueID))
		return
	}

	client := NewClient(h.hub, conn, leagueID, h.log)
	client.Register()

	go client.WritePump()
	go client.ReadPump()
}

// Stats serves GET /ws/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = writeJSON(w, h.hub.Stats())
}
