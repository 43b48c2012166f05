// internal/game/errors.go
package game

import "errors"

// Admission errors returned when a new game cannot be opened.
var (
	ErrRoomBusy   = errors.New("room already hosts an active game")
	ErrPlayerBusy = errors.New("player is already in an active game")
)

// Join errors.
var (
	ErrAlreadyStarted = errors.New("game has already started")
	ErrAlreadyJoined  = errors.New("player already joined this game")
	ErrIsHost         = errors.New("player is the host of this game")
	ErrRoomFull       = errors.New("game has reached the maximum player count")
)

// Leave/cancel/start errors.
var (
	ErrNotInGame = errors.New("player is not in this game")
	ErrNotHost   = errors.New("only the host may do that")
)

// Turn and play errors.
var (
	ErrNotYourTurn     = errors.New("not this player's turn")
	ErrCardNotPlayable = errors.New("card cannot be played on the current top card")
	ErrBadHandIndex    = errors.New("hand index does not match the referenced card")
	ErrBadColorChoice  = errors.New("chosen color is not a concrete color")
)

// State errors.
var (
	ErrGameNotFound = errors.New("no active game found")
	ErrGameOver     = errors.New("game is over")
	ErrNotStarted   = errors.New("game has not started")
)
