// internal/handlers/game_server_test.go
package handlers

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/uno/internal/game"
)

func newTestServer() *GameServer {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewGameServer(game.NewRegistry(0, 0), logger)
}

func TestConnIndexLifecycle(t *testing.T) {
	gs := newTestServer()

	gs.registerConn("room1", "a", nil)
	gs.registerConn("room1", "b", nil)
	assert.Len(t, gs.roomConns("room1"), 2)
	assert.Empty(t, gs.roomConns("room2"))

	gs.unregisterConn("room1", "a", nil)
	assert.Len(t, gs.roomConns("room1"), 1)

	gs.unregisterConn("room1", "b", nil)
	assert.Empty(t, gs.roomConns("room1"))

	gs.mu.Lock()
	_, stillIndexed := gs.rooms["room1"]
	gs.mu.Unlock()
	assert.False(t, stillIndexed, "an emptied room drops out of the index")
}

func TestAttachGameWiresCallbacks(t *testing.T) {
	gs := newTestServer()
	g, err := gs.Registry.StartGame("host", "room1")
	require.NoError(t, err)
	gs.attachGame(g)

	assert.NotNil(t, g.BroadcastFn)
	assert.NotNil(t, g.OnGameEnd)
}

func TestWsErrorCodesCoverEverySentinel(t *testing.T) {
	sentinels := []error{
		game.ErrRoomBusy, game.ErrPlayerBusy, game.ErrAlreadyStarted,
		game.ErrAlreadyJoined, game.ErrIsHost, game.ErrRoomFull,
		game.ErrNotInGame, game.ErrNotHost, game.ErrNotYourTurn,
		game.ErrCardNotPlayable, game.ErrBadHandIndex, game.ErrBadColorChoice,
		game.ErrGameNotFound, game.ErrGameOver, game.ErrNotStarted,
	}
	seen := make(map[string]bool)
	for _, err := range sentinels {
		code, ok := wsErrorCodes[err]
		require.True(t, ok, "no client code for %v", err)
		assert.False(t, seen[code], "code %q mapped twice", code)
		seen[code] = true
	}
}
