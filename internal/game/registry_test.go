// internal/game/registry_test.go
package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(maxPlayers int) *Registry {
	r := NewRegistry(maxPlayers, DefaultIdleTimeout)
	r.newRand = func() *rand.Rand { return rand.New(rand.NewSource(11)) }
	return r
}

// backdate shifts a game's last activity into the past so idle eviction
// can be exercised without sleeping.
func backdate(g *Game, d time.Duration) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	g.lastActivity = time.Now().Add(-d)
}

func TestStartGameAdmission(t *testing.T) {
	r := newTestRegistry(0)

	g, err := r.StartGame("host1", "room1")
	require.NoError(t, err)
	require.NotNil(t, g)

	// The room is taken.
	_, err = r.StartGame("host2", "room1")
	assert.ErrorIs(t, err, ErrRoomBusy)

	// The host already runs a game elsewhere.
	_, err = r.StartGame("host1", "room2")
	assert.ErrorIs(t, err, ErrPlayerBusy)

	// A seated non-host cannot open a game either.
	_, err = r.JoinGame("host1", "guest")
	require.NoError(t, err)
	_, err = r.StartGame("guest", "room2")
	assert.ErrorIs(t, err, ErrPlayerBusy)
}

func TestJoinGameRules(t *testing.T) {
	r := newTestRegistry(3)
	_, err := r.StartGame("host", "room1")
	require.NoError(t, err)

	_, err = r.JoinGame("nobody", "p1")
	assert.ErrorIs(t, err, ErrGameNotFound)

	_, err = r.JoinGame("host", "host")
	assert.ErrorIs(t, err, ErrIsHost)

	_, err = r.JoinGame("host", "p1")
	require.NoError(t, err)
	_, err = r.JoinGame("host", "p1")
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	// p1 is seated here, so a second host's lobby rejects them.
	_, err = r.StartGame("host2", "room2")
	require.NoError(t, err)
	_, err = r.JoinGame("host2", "p1")
	assert.ErrorIs(t, err, ErrPlayerBusy)

	// Seat cap counts the host.
	snap, err := r.JoinGame("host", "p2")
	require.NoError(t, err)
	require.Len(t, snap.Players, 3)
	_, err = r.JoinGame("host", "p3")
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestJoinAfterStartRejected(t *testing.T) {
	r := newTestRegistry(0)
	_, err := r.StartGame("host", "room1")
	require.NoError(t, err)
	_, err = r.JoinGame("host", "p1")
	require.NoError(t, err)

	snap, err := r.StartTurns("host", "host")
	require.NoError(t, err)
	require.True(t, snap.Started)

	_, err = r.JoinGame("host", "p2")
	assert.ErrorIs(t, err, ErrAlreadyStarted)
}

func TestStartTurnsHostOnly(t *testing.T) {
	r := newTestRegistry(0)
	_, err := r.StartGame("host", "room1")
	require.NoError(t, err)
	_, err = r.JoinGame("host", "p1")
	require.NoError(t, err)

	_, err = r.StartTurns("host", "p1")
	assert.ErrorIs(t, err, ErrNotHost)

	snap, err := r.StartTurns("host", "host")
	require.NoError(t, err)
	assert.True(t, snap.Started)
}

func TestIdleGamesEvictedOnAdmission(t *testing.T) {
	r := newTestRegistry(0)
	g, err := r.StartGame("host", "room1")
	require.NoError(t, err)

	// A fresh game blocks the room.
	_, err = r.StartGame("host2", "room1")
	require.ErrorIs(t, err, ErrRoomBusy)

	backdate(g, DefaultIdleTimeout+time.Minute)

	// The idle game is reclaimed lazily by the next admission check.
	g2, err := r.StartGame("host2", "room1")
	require.NoError(t, err)
	assert.NotSame(t, g, g2)

	// The stale host's slot was released with the eviction.
	_, err = r.StartGame("host", "room3")
	assert.NoError(t, err)
}

func TestFinishedGameFreesRoom(t *testing.T) {
	r := newTestRegistry(0)
	g, err := r.StartGame("host", "room1")
	require.NoError(t, err)
	_, err = r.JoinGame("host", "p1")
	require.NoError(t, err)
	_, err = r.StartTurns("host", "host")
	require.NoError(t, err)

	// The last opponent leaving ends the game and evicts it.
	snap, err := r.LeaveGame("host", "p1")
	require.NoError(t, err)
	assert.True(t, snap.Over)
	assert.Equal(t, "host", snap.WinnerID)

	_, ok := r.GameInRoom("room1")
	assert.False(t, ok)
	_ = g

	// All participants are free to play again immediately.
	_, err = r.StartGame("p1", "room1")
	assert.NoError(t, err)
	_, err = r.StartGame("host", "room2")
	assert.NoError(t, err)
}

func TestLeaveGameHostMustCancel(t *testing.T) {
	r := newTestRegistry(0)
	_, err := r.StartGame("host", "room1")
	require.NoError(t, err)

	_, err = r.LeaveGame("host", "host")
	assert.ErrorIs(t, err, ErrIsHost)

	_, err = r.LeaveGame("host", "stranger")
	assert.ErrorIs(t, err, ErrNotInGame)
}

func TestCancelGame(t *testing.T) {
	r := newTestRegistry(0)
	_, err := r.StartGame("host", "room1")
	require.NoError(t, err)
	_, err = r.JoinGame("host", "p1")
	require.NoError(t, err)

	err = r.CancelGame("host", "p1")
	assert.ErrorIs(t, err, ErrNotHost)

	err = r.CancelGame("host", "host")
	require.NoError(t, err)

	_, ok := r.GameInRoom("room1")
	assert.False(t, ok)

	// Every seat was released.
	_, err = r.StartGame("p1", "room1")
	assert.NoError(t, err)
}

func TestAdminReset(t *testing.T) {
	r := newTestRegistry(0)
	_, err := r.StartGame("host", "room1")
	require.NoError(t, err)

	assert.ErrorIs(t, r.AdminReset("room9"), ErrGameNotFound)
	require.NoError(t, r.AdminReset("room1"))

	_, ok := r.GameInRoom("room1")
	assert.False(t, ok)
	_, err = r.StartGame("host", "room1")
	assert.NoError(t, err)
}

func TestRoomActionsRequireAGame(t *testing.T) {
	r := newTestRegistry(0)

	_, err := r.DrawCard("room1", "p1")
	assert.ErrorIs(t, err, ErrGameNotFound)
	_, err = r.DeclareCallOut("room1", "p1")
	assert.ErrorIs(t, err, ErrGameNotFound)
	_, err = r.StartTurns("nobody", "nobody")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestEliminationReleasesSeat(t *testing.T) {
	r := newTestRegistry(0)
	g, err := r.StartGame("host", "room1")
	require.NoError(t, err)
	_, err = r.JoinGame("host", "p1")
	require.NoError(t, err)
	_, err = r.JoinGame("host", "p2")
	require.NoError(t, err)
	_, err = r.StartTurns("host", "host")
	require.NoError(t, err)

	// Forcing p1 out mid-game must free their registry slot.
	g.Mu.Lock()
	g.playerByID("p1").drawN(HandLimit)
	g.Mu.Unlock()
	require.False(t, g.HasPlayer("p1"))

	_, err = r.StartGame("p1", "room2")
	assert.NoError(t, err)
}
