// internal/handlers/game.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jason-s-yu/uno/internal/game"
)

// ServeHTTP parses the /game/* HTTP routes. For the WebSocket gateway, see
// game_ws.go's GameWSHandler.
func (gs *GameServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/game/state/") && r.Method == http.MethodGet {
		gs.handleGameState(w, r)
		return
	}

	if strings.HasPrefix(r.URL.Path, "/game/reset/") && r.Method == http.MethodPost {
		gs.handleAdminReset(w, r)
		return
	}

	http.Error(w, "unsupported route, use /game/ws/{room_id} for websockets", http.StatusNotFound)
}

// handleGameState returns the public snapshot of a room's game. Hands are
// never included; those travel only over each player's own WebSocket.
func (gs *GameServer) handleGameState(w http.ResponseWriter, r *http.Request) {
	roomID := strings.TrimPrefix(r.URL.Path, "/game/state/")
	if roomID == "" {
		http.Error(w, "missing room id", http.StatusBadRequest)
		return
	}
	g, ok := gs.Registry.GameInRoom(roomID)
	if !ok {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(g.Snapshot())
}

// handleAdminReset force-discards a room's game regardless of state.
func (gs *GameServer) handleAdminReset(w http.ResponseWriter, r *http.Request) {
	roomID := strings.TrimPrefix(r.URL.Path, "/game/reset/")
	if roomID == "" {
		http.Error(w, "missing room id", http.StatusBadRequest)
		return
	}
	if err := gs.Registry.AdminReset(roomID); err != nil {
		if err == game.ErrGameNotFound {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"room_id": roomID,
		"reset":   true,
	})
}

// HealthzHandler reports liveness.
func HealthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
