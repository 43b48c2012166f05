// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/middleware"
	"github.com/jason-s-yu/uno/internal/models"
)

// GameMessage is the structure for incoming WebSocket intents.
type GameMessage struct {
	Type string `json:"type"`

	// Card is the action-identifier encoding of the card being played
	// (e.g. "Red-5", "Green-Skip", "Wild").
	Card string `json:"card,omitempty"`

	// HandIndex pins the intent to a specific hand slot; a draw between
	// render and click invalidates the index rather than landing on a
	// shifted card.
	HandIndex int `json:"hand_index,omitempty"`

	// Color resolves a pending wild prompt ("Red", "Green", "Blue", "Yellow").
	Color string `json:"color,omitempty"`
}

// GameWSHandler upgrades the HTTP connection to WebSocket for a room. The
// client identifies itself with a player_id query parameter and then drives
// the session with JSON intents: start, join, leave, cancel, start_turns,
// play_card, wild_color, draw_card, call_out, hand, ping.
func GameWSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Extract room ID from URL path: /game/ws/{room_id}
		pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/game/ws/"), "/")
		if len(pathParts) < 1 || pathParts[0] == "" {
			http.Error(w, "Missing room_id in path (/game/ws/{room_id})", http.StatusBadRequest)
			return
		}
		roomID := pathParts[0]

		playerID := r.URL.Query().Get("player_id")
		if playerID == "" {
			http.Error(w, "Missing player_id query parameter", http.StatusBadRequest)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"uno"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for room %s: %v", roomID, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != "uno" {
			logger.Warnf("Client for room %s connected with invalid subprotocol: %s", roomID, c.Subprotocol())
			c.Close(BadSubprotocolError, "Client must use the 'uno' subprotocol.")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, roomID, playerID)

		gs.registerConn(roomID, playerID, c)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		readErr := readGameMessages(ctx, c, gs, roomID, playerID, logger)

		gs.unregisterConn(roomID, playerID, c)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, roomID, playerID, readErr)
	}
}

// readGameMessages reads intents from one client until the connection
// closes, routing each to the registry and replying with the result.
func readGameMessages(ctx context.Context, c *websocket.Conn, gs *GameServer, roomID, playerID string, logger *logrus.Logger) error {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return nil
			}
			if strings.Contains(err.Error(), "context canceled") {
				return nil
			}
			return err
		}

		if msgType != websocket.MessageText {
			logger.Warnf("Received non-text message type %d from player %s in room %s. Ignoring.", msgType, playerID, roomID)
			continue
		}

		var msg GameMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("Invalid JSON from player %s in room %s: %v. Data: %s", playerID, roomID, err, string(data))
			sendWsError(ctx, c, "bad_message", "Invalid JSON format.")
			continue
		}

		logger.Debugf("Received intent '%s' from player %s in room %s.", msg.Type, playerID, roomID)
		dispatchIntent(ctx, c, gs, roomID, playerID, msg, logger)

		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
}

// dispatchIntent routes one decoded intent. Engine events reach every
// client through the broadcast callback; the direct replies here carry only
// what the acting client alone needs (its hand, errors, the color prompt).
func dispatchIntent(ctx context.Context, c *websocket.Conn, gs *GameServer, roomID, playerID string, msg GameMessage, logger *logrus.Logger) {
	reg := gs.Registry

	switch msg.Type {
	case "start":
		g, err := reg.StartGame(playerID, roomID)
		if err != nil {
			sendWsFailure(ctx, c, err)
			return
		}
		gs.attachGame(g)
		sendWsMessage(ctx, c, map[string]interface{}{
			"type":     "started",
			"snapshot": g.Snapshot(),
		})
		sendHand(ctx, c, g, playerID)

	case "join":
		g, ok := reg.GameInRoom(roomID)
		if !ok {
			sendWsFailure(ctx, c, game.ErrGameNotFound)
			return
		}
		if _, err := reg.JoinGame(g.HostID, playerID); err != nil {
			sendWsFailure(ctx, c, err)
			return
		}
		sendHand(ctx, c, g, playerID)

	case "leave":
		g, ok := reg.GameInRoom(roomID)
		if !ok {
			sendWsFailure(ctx, c, game.ErrGameNotFound)
			return
		}
		if _, err := reg.LeaveGame(g.HostID, playerID); err != nil {
			sendWsFailure(ctx, c, err)
		}

	case "cancel":
		g, ok := reg.GameInRoom(roomID)
		if !ok {
			sendWsFailure(ctx, c, game.ErrGameNotFound)
			return
		}
		if err := reg.CancelGame(g.HostID, playerID); err != nil {
			sendWsFailure(ctx, c, err)
		}

	case "start_turns":
		g, ok := reg.GameInRoom(roomID)
		if !ok {
			sendWsFailure(ctx, c, game.ErrGameNotFound)
			return
		}
		if _, err := reg.StartTurns(g.HostID, playerID); err != nil {
			sendWsFailure(ctx, c, err)
			return
		}
		sendHand(ctx, c, g, playerID)

	case "play_card":
		card, err := models.ParseCard(msg.Card)
		if err != nil {
			sendWsError(ctx, c, "bad_message", err.Error())
			return
		}
		res, err := reg.PlayCard(roomID, playerID, card, msg.HandIndex)
		if err != nil {
			sendWsFailure(ctx, c, err)
			return
		}
		if res.Outcome == game.PlayNeedsColorChoice {
			sendWsMessage(ctx, c, map[string]interface{}{
				"type":       "choose_color",
				"card":       res.Card.Encode(),
				"hand_index": msg.HandIndex,
			})
			return
		}
		sendHandByRoom(ctx, c, gs, roomID, playerID)

	case "wild_color":
		card, err := models.ParseCard(msg.Card)
		if err != nil {
			sendWsError(ctx, c, "bad_message", err.Error())
			return
		}
		color, err := models.ParseColor(msg.Color)
		if err != nil {
			sendWsError(ctx, c, "bad_message", err.Error())
			return
		}
		if _, err := reg.ResolveWildColor(roomID, playerID, color, card.Special, msg.HandIndex); err != nil {
			sendWsFailure(ctx, c, err)
			return
		}
		sendHandByRoom(ctx, c, gs, roomID, playerID)

	case "draw_card":
		res, err := reg.DrawCard(roomID, playerID)
		if err != nil {
			sendWsFailure(ctx, c, err)
			return
		}
		if !res.Eliminated {
			sendWsMessage(ctx, c, map[string]interface{}{
				"type": "drew",
				"card": res.Card.Encode(),
			})
			sendHandByRoom(ctx, c, gs, roomID, playerID)
		}

	case "call_out":
		res, err := reg.DeclareCallOut(roomID, playerID)
		if err != nil {
			sendWsFailure(ctx, c, err)
			return
		}
		sendWsMessage(ctx, c, map[string]interface{}{
			"type":      "call_out_result",
			"outcome":   int(res.Outcome),
			"penalized": res.PenalizedID,
		})

	case "hand":
		sendHandByRoom(ctx, c, gs, roomID, playerID)

	case "ping":
		logger.Tracef("Received ping from player %s, sending pong.", playerID)
		sendWsMessage(ctx, c, map[string]string{"type": "pong"})

	default:
		logger.Warnf("Unknown intent type '%s' from player %s in room %s.", msg.Type, playerID, roomID)
		sendWsError(ctx, c, "bad_message", fmt.Sprintf("Unknown intent type: %s", msg.Type))
	}
}

// sendHand privately sends a player their current hand. Hands never ride on
// broadcasts; only sizes are public.
func sendHand(ctx context.Context, c *websocket.Conn, g *game.Game, playerID string) {
	hand, err := g.HandOf(playerID)
	if err != nil {
		return
	}
	encoded := make([]string, len(hand))
	for i, card := range hand {
		encoded[i] = card.Encode()
	}
	sendWsMessage(ctx, c, map[string]interface{}{
		"type": "hand",
		"hand": encoded,
	})
}

func sendHandByRoom(ctx context.Context, c *websocket.Conn, gs *GameServer, roomID, playerID string) {
	if g, ok := gs.Registry.GameInRoom(roomID); ok {
		sendHand(ctx, c, g, playerID)
	}
}

// wsErrorCodes maps engine sentinels to stable client-facing codes.
var wsErrorCodes = map[error]string{
	game.ErrRoomBusy:        "room_busy",
	game.ErrPlayerBusy:      "player_busy",
	game.ErrAlreadyStarted:  "already_started",
	game.ErrAlreadyJoined:   "already_joined",
	game.ErrIsHost:          "is_host",
	game.ErrRoomFull:        "room_full",
	game.ErrNotInGame:       "not_in_game",
	game.ErrNotHost:         "not_host",
	game.ErrNotYourTurn:     "not_your_turn",
	game.ErrCardNotPlayable: "card_not_playable",
	game.ErrBadHandIndex:    "bad_hand_index",
	game.ErrBadColorChoice:  "bad_color_choice",
	game.ErrGameNotFound:    "game_not_found",
	game.ErrGameOver:        "game_over",
	game.ErrNotStarted:      "not_started",
}

// sendWsFailure translates an engine error into a structured error reply.
func sendWsFailure(ctx context.Context, c *websocket.Conn, err error) {
	code := "internal"
	for sentinel, name := range wsErrorCodes {
		if errors.Is(err, sentinel) {
			code = name
			break
		}
	}
	sendWsError(ctx, c, code, err.Error())
}

// sendWsMessage marshals a message and sends it to the WebSocket client.
func sendWsMessage(ctx context.Context, c *websocket.Conn, message interface{}) {
	if c == nil {
		log.Println("Error: Attempted to send WebSocket message on nil connection.")
		return
	}
	msgBytes, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling WebSocket message: %v", err)
		return
	}

	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = c.Write(writeCtx, websocket.MessageText, msgBytes)
	if err != nil {
		status := websocket.CloseStatus(err)
		if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
			log.Printf("Error writing WebSocket message: %v (Status: %d)", err, status)
		}
	}
}

// sendWsError sends a structured error message to the client.
func sendWsError(ctx context.Context, c *websocket.Conn, code, errorMsg string) {
	sendWsMessage(ctx, c, map[string]interface{}{
		"type":    "error",
		"code":    code,
		"message": errorMsg,
	})
}
