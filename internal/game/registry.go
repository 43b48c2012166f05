// internal/game/registry.go
package game

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/jason-s-yu/uno/internal/models"
)

// DefaultMaxPlayers caps a single game's seating.
const DefaultMaxPlayers = 12

// DefaultIdleTimeout is how long a game may sit without a state-mutating
// action before it is reclaimable.
const DefaultIdleTimeout = 10 * time.Minute

// Registry maps rooms and players to at most one active Game each and
// enforces the admission rules: one game per room, one hosted game and one
// seat per player. Idle or finished games are evicted lazily on the next
// admission check that touches them; there is no background sweep.
type Registry struct {
	mu       sync.Mutex
	byRoom   map[string]*Game
	byHost   map[string]*Game
	byPlayer map[string]*Game

	maxPlayers  int
	idleTimeout time.Duration

	// newRand supplies each new game's random source; overridable in tests
	// for deterministic deals.
	newRand func() *rand.Rand
}

// NewRegistry builds an empty registry. Non-positive arguments fall back to
// the defaults.
func NewRegistry(maxPlayers int, idleTimeout time.Duration) *Registry {
	if maxPlayers <= 0 {
		maxPlayers = DefaultMaxPlayers
	}
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Registry{
		byRoom:      make(map[string]*Game),
		byHost:      make(map[string]*Game),
		byPlayer:    make(map[string]*Game),
		maxPlayers:  maxPlayers,
		idleTimeout: idleTimeout,
		newRand:     func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) },
	}
}

// StartGame opens a new lobby in the room with the given host. Stale games
// blocking the room or the host are reclaimed on the way.
func (r *Registry) StartGame(hostID, roomID string) (*Game, error) {
	if g := r.gameInRoom(roomID); g != nil {
		if !r.evictIfStale(g) {
			return nil, ErrRoomBusy
		}
	}
	if g := r.gameOf(hostID); g != nil {
		if !r.evictIfStale(g) {
			return nil, ErrPlayerBusy
		}
	}

	g := NewGame(roomID, hostID, r.newRand())
	g.onPlayerRemoved = r.releasePlayer

	r.mu.Lock()
	r.byRoom[roomID] = g
	r.byHost[hostID] = g
	r.byPlayer[hostID] = g
	r.mu.Unlock()

	log.Printf("Registry: game %s opened in room %s by host %s", g.ID, roomID, hostID)
	return g, nil
}

// JoinGame seats a player in the host's lobby.
func (r *Registry) JoinGame(hostID, playerID string) (Snapshot, error) {
	g := r.gameOfHost(hostID)
	if g == nil || r.evictIfStale(g) {
		return Snapshot{}, ErrGameNotFound
	}
	if playerID == hostID {
		return g.Snapshot(), ErrIsHost
	}
	if g.HasPlayer(playerID) {
		return g.Snapshot(), ErrAlreadyJoined
	}
	if other := r.gameOf(playerID); other != nil && !r.evictIfStale(other) {
		return g.Snapshot(), ErrPlayerBusy
	}

	snap := g.Snapshot()
	if snap.Started {
		return snap, ErrAlreadyStarted
	}
	if len(snap.Players) >= r.maxPlayers {
		return snap, ErrRoomFull
	}

	g.AddPlayer(playerID)
	r.mu.Lock()
	r.byPlayer[playerID] = g
	r.mu.Unlock()
	return g.Snapshot(), nil
}

// LeaveGame removes a player. In the lobby this just frees the seat; during
// play the engine re-runs the winner check, and a finishing game is evicted.
func (r *Registry) LeaveGame(hostID, playerID string) (Snapshot, error) {
	g := r.gameOfHost(hostID)
	if g == nil || r.evictIfStale(g) {
		return Snapshot{}, ErrGameNotFound
	}
	if playerID == hostID {
		return g.Snapshot(), ErrIsHost
	}
	snap, err := g.RemovePlayer(playerID)
	if err != nil {
		return snap, err
	}
	if snap.Over {
		r.evict(g)
	}
	return snap, nil
}

// CancelGame tears the session down; host only.
func (r *Registry) CancelGame(hostID, requesterID string) error {
	g := r.gameOfHost(hostID)
	if g == nil {
		return ErrGameNotFound
	}
	if requesterID != hostID {
		return ErrNotHost
	}
	g.Cancel(requesterID)
	r.evict(g)
	return nil
}

// StartTurns transitions the host's lobby to in-progress; host only.
func (r *Registry) StartTurns(hostID, requesterID string) (Snapshot, error) {
	g := r.gameOfHost(hostID)
	if g == nil || r.evictIfStale(g) {
		return Snapshot{}, ErrGameNotFound
	}
	if requesterID != hostID {
		return g.Snapshot(), ErrNotHost
	}
	g.Start()
	return g.Snapshot(), nil
}

// PlayCard submits a play-card intent for the game in the room.
func (r *Registry) PlayCard(roomID, playerID string, card models.Card, handIndex int) (*PlayResult, error) {
	g := r.gameInRoom(roomID)
	if g == nil {
		return nil, ErrGameNotFound
	}
	return g.HandlePlay(playerID, card, handIndex)
}

// ResolveWildColor confirms a pending wild-card color prompt.
func (r *Registry) ResolveWildColor(roomID, playerID string, color models.Color, special models.Special, handIndex int) (*PlayResult, error) {
	g := r.gameInRoom(roomID)
	if g == nil {
		return nil, ErrGameNotFound
	}
	return g.HandleWildColor(playerID, color, special, handIndex)
}

// DrawCard submits a voluntary draw for the game in the room.
func (r *Registry) DrawCard(roomID, playerID string) (*DrawResult, error) {
	g := r.gameInRoom(roomID)
	if g == nil {
		return nil, ErrGameNotFound
	}
	return g.HandleDraw(playerID)
}

// DeclareCallOut submits an UNO declaration for the game in the room.
func (r *Registry) DeclareCallOut(roomID, playerID string) (*CallOutResult, error) {
	g := r.gameInRoom(roomID)
	if g == nil {
		return nil, ErrGameNotFound
	}
	return g.HandleCallOut(playerID)
}

// AdminReset force-discards the room's game regardless of state.
func (r *Registry) AdminReset(roomID string) error {
	g := r.gameInRoom(roomID)
	if g == nil {
		return ErrGameNotFound
	}
	g.Cancel("admin")
	r.evict(g)
	return nil
}

// GameInRoom exposes the room lookup to the gateway layer.
func (r *Registry) GameInRoom(roomID string) (*Game, bool) {
	g := r.gameInRoom(roomID)
	return g, g != nil
}

// --- internals ---

func (r *Registry) gameInRoom(roomID string) *Game {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byRoom[roomID]
}

func (r *Registry) gameOfHost(hostID string) *Game {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byHost[hostID]
}

func (r *Registry) gameOf(playerID string) *Game {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byPlayer[playerID]
}

// evictIfStale reclaims a game that is finished or idle. Returns true if
// the game was removed from the registry.
func (r *Registry) evictIfStale(g *Game) bool {
	if !g.Finished() && !g.IsIdle(r.idleTimeout) {
		return false
	}
	r.evict(g)
	return true
}

// evict unmaps the game and every player still seated in it. The game's
// state is read before the registry lock is taken so the engine's
// player-removal callback can never deadlock against an eviction.
func (r *Registry) evict(g *Game) {
	players := g.PlayerIDs()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byRoom[g.RoomID] == g {
		delete(r.byRoom, g.RoomID)
	}
	if r.byHost[g.HostID] == g {
		delete(r.byHost, g.HostID)
	}
	for _, id := range players {
		if r.byPlayer[id] == g {
			delete(r.byPlayer, id)
		}
	}
	if r.byPlayer[g.HostID] == g {
		delete(r.byPlayer, g.HostID)
	}
	log.Printf("Registry: game %s evicted from room %s", g.ID, g.RoomID)
}

// releasePlayer is wired as each game's onPlayerRemoved callback.
func (r *Registry) releasePlayer(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byPlayer, playerID)
}
