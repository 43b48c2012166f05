// internal/game/events.go
package game

// GameEventType is an enum-like type for broadcasting game actions to the
// rendering collaborator.
type GameEventType string

const (
	EventPlayerJoined     GameEventType = "player_joined"
	EventPlayerLeft       GameEventType = "player_left"
	EventGameStarted      GameEventType = "game_started"
	EventCardPlayed       GameEventType = "card_played"
	EventCardDrawn        GameEventType = "card_drawn"
	EventForcedDraw       GameEventType = "forced_draw"         // stack settlement
	EventPlayerEliminated GameEventType = "player_eliminated"   // hand-size cap
	EventCallOutSafe      GameEventType = "callout_safe"        // eligible player declared first
	EventCallOutCaught    GameEventType = "callout_caught"      // someone else declared first
	EventGameCancelled    GameEventType = "game_cancelled"
	EventGameEnd          GameEventType = "game_end"
)

// PlayerStatus is the per-player slice of a snapshot. Hand contents stay
// private; only the size and call-out eligibility are visible to the room.
type PlayerStatus struct {
	ID             string `json:"id"`
	HandSize       int    `json:"hand_size"`
	IsHost         bool   `json:"is_host"`
	CanBeCalledOut bool   `json:"can_be_called_out"`
}

// Snapshot is the render-sufficient view of a game returned from every
// mutating call. The engine returns state, never rendered artifacts; button
// layout and message formatting belong to the collaborator.
type Snapshot struct {
	RoomID          string         `json:"room_id"`
	HostID          string         `json:"host_id"`
	Started         bool           `json:"started"`
	Over            bool           `json:"over"`
	WinnerID        string         `json:"winner_id,omitempty"`
	CurrentPlayerID string         `json:"current_player_id,omitempty"`
	TopCard         string         `json:"top_card"` // action-identifier encoding
	Reversed        bool           `json:"reversed"`
	PendingDraw     int            `json:"pending_draw"`
	TurnNumber      int            `json:"turn_number"`
	Players         []PlayerStatus `json:"players"`
}

// GameEvent holds data about an event that can be broadcast to the room in
// a consistent format. Every event carries the post-action snapshot.
type GameEvent struct {
	Type     GameEventType          `json:"type"`
	Actor    string                 `json:"actor,omitempty"`
	Card     string                 `json:"card,omitempty"`
	Detail   map[string]interface{} `json:"detail,omitempty"`
	Snapshot *Snapshot              `json:"snapshot,omitempty"`
}
