// internal/handlers/game_server.go
package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/uno/internal/database"
	"github.com/jason-s-yu/uno/internal/game"
)

// GameServer fans game events out to the WebSocket clients of each room and
// records finished matches. It owns the connection index; the engine only
// ever sees the callback functions wired in attachGame.
type GameServer struct {
	Registry *game.Registry
	Logger   *logrus.Logger

	mu    sync.Mutex
	rooms map[string]map[string]*websocket.Conn // roomID -> playerID -> conn
}

func NewGameServer(reg *game.Registry, logger *logrus.Logger) *GameServer {
	return &GameServer{
		Registry: reg,
		Logger:   logger,
		rooms:    make(map[string]map[string]*websocket.Conn),
	}
}

// registerConn indexes a player's connection under its room.
func (gs *GameServer) registerConn(roomID, playerID string, c *websocket.Conn) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if gs.rooms[roomID] == nil {
		gs.rooms[roomID] = make(map[string]*websocket.Conn)
	}
	gs.rooms[roomID][playerID] = c
}

// unregisterConn drops the player's connection, but only if it is still the
// one we registered; a reconnect may have replaced it.
func (gs *GameServer) unregisterConn(roomID, playerID string, c *websocket.Conn) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if conns, ok := gs.rooms[roomID]; ok && conns[playerID] == c {
		delete(conns, playerID)
		if len(conns) == 0 {
			delete(gs.rooms, roomID)
		}
	}
}

// roomConns snapshots the current connections for a room.
func (gs *GameServer) roomConns(roomID string) []*websocket.Conn {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	conns := make([]*websocket.Conn, 0, len(gs.rooms[roomID]))
	for _, c := range gs.rooms[roomID] {
		conns = append(conns, c)
	}
	return conns
}

// attachGame wires the engine's callbacks for a freshly opened game. The
// engine invokes both while holding its own lock, so neither callback may
// call back into the game synchronously.
func (gs *GameServer) attachGame(g *game.Game) {
	roomID := g.RoomID
	g.BroadcastFn = func(ev game.GameEvent) {
		data, err := json.Marshal(ev)
		if err != nil {
			gs.Logger.Errorf("marshal event %s for room %s: %v", ev.Type, roomID, err)
			return
		}
		// Send asynchronously; the engine must never block on a slow client.
		go gs.broadcastRaw(roomID, data)
	}
	g.OnGameEnd = func(roomID, winnerID string, turns int) {
		go gs.recordResult(g, winnerID, turns)
	}
}

func (gs *GameServer) broadcastRaw(roomID string, data []byte) {
	for _, c := range gs.roomConns(roomID) {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := c.Write(ctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			gs.Logger.Warnf("write broadcast to room %s: %v", roomID, err)
		}
	}
}

// recordResult persists the terminal standings. It runs on its own
// goroutine and takes the game lock via Snapshot, so it must only be
// scheduled, never called, from inside the engine.
func (gs *GameServer) recordResult(g *game.Game, winnerID string, turns int) {
	snap := g.Snapshot()
	rows := make([]database.MatchResultRow, 0, len(snap.Players))
	for _, p := range snap.Players {
		rows = append(rows, database.MatchResultRow{
			PlayerID: p.ID,
			HandSize: p.HandSize,
			DidWin:   p.ID == winnerID,
		})
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.RecordMatchResult(ctx, g.ID, snap.RoomID, winnerID, turns, rows); err != nil {
		gs.Logger.Errorf("record match result for room %s: %v", snap.RoomID, err)
	}
}
