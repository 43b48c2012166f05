// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Custom WebSocket close codes used by the game gateway. These provide more
// specific reasons for closure than the standard codes.
const (
	BadSubprotocolError websocket.StatusCode = 3000 // Client connected with an unsupported subprotocol.
	MissingPlayerError  websocket.StatusCode = 3001 // No player_id was supplied on the upgrade request.
	InvalidRoomError    websocket.StatusCode = 3002 // Target room specified in the WS URL was malformed.
)
