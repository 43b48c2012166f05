// internal/game/game.go
package game

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/jason-s-yu/uno/internal/models"
)

// OnGameEndFunc handles a finished game: recording results, notifying the
// room, etc. winnerID is empty when the game was cancelled or reset.
type OnGameEndFunc func(roomID string, winnerID string, turns int)

// Game holds the entire state for a single UNO session in memory. One Game
// is acted on by one external action at a time; the calling layer serializes
// per room, and the mutex covers incidental cross-room reads (snapshots,
// idle sweeps).
type Game struct {
	ID     uuid.UUID
	RoomID string
	HostID string

	Players            []*Player
	CurrentPlayerIndex int
	TopCard            models.Card
	PendingDraw        int
	TurnNumber         int

	Started  bool
	Over     bool
	WinnerID string

	reversed     bool
	lastActivity time.Time

	// rng is shared per game instance and injected for deterministic tests.
	rng *rand.Rand

	actionIndex int

	Mu sync.Mutex

	// BroadcastFn sends events to the room. If nil, no broadcast is done.
	BroadcastFn func(ev GameEvent)

	// OnGameEnd is invoked once when the game reaches its terminal state.
	OnGameEnd OnGameEndFunc

	// onPlayerRemoved lets the registry release its player index when the
	// engine removes a player (leave, elimination). May be nil.
	onPlayerRemoved func(playerID string)
}

// NewGame opens a lobby with the host as sole seated player. A nil rng gets
// a time-seeded source; tests pass a seeded one for reproducible deals.
func NewGame(roomID, hostID string, rng *rand.Rand) *Game {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	id, _ := uuid.NewRandom()
	g := &Game{
		ID:         id,
		RoomID:     roomID,
		HostID:     hostID,
		TurnNumber: 1,
		rng:        rng,
	}
	// The opening discard top may never be a special effect.
	g.TopCard = models.RandomCard(rng)
	for g.TopCard.Special != models.SpecialNone {
		g.TopCard = models.RandomCard(rng)
	}
	g.Players = []*Player{newPlayer(hostID, g)}
	g.touch()
	return g
}

// PlayOutcome distinguishes an applied play from one awaiting a wild-color
// choice. A colorless wild is never removed from the hand until its color is
// confirmed, so cancelling the prompt needs no restore.
type PlayOutcome int

const (
	PlayAccepted PlayOutcome = iota
	PlayNeedsColorChoice
)

// PlayResult reports a resolved (or color-pending) play.
type PlayResult struct {
	Outcome  PlayOutcome
	Card     models.Card
	Snapshot Snapshot
}

// DrawResult reports a voluntary draw.
type DrawResult struct {
	Card       models.Card
	Eliminated bool
	Snapshot   Snapshot
}

// CallOutOutcome is the result of an UNO declaration attempt.
type CallOutOutcome int

const (
	CallOutSafe    CallOutOutcome = iota // the one-card player declared first
	CallOutCaught                        // another player declared first; the one-card player draws 2
	CallOutTooLate                       // window already closed for the current one-card player
	CallOutNoneEligible
)

// CallOutResult reports a declaration attempt.
type CallOutResult struct {
	Outcome     CallOutOutcome
	PenalizedID string
	Snapshot    Snapshot
}

// AddPlayer seats a new player in the lobby phase and deals the starting
// hand. The registry enforces admission rules before calling this.
func (g *Game) AddPlayer(playerID string) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	g.Players = append(g.Players, newPlayer(playerID, g))
	g.touch()
	g.logAction(playerID, "player_join", nil)
	g.fireEvent(GameEvent{Type: EventPlayerJoined, Actor: playerID, Snapshot: g.snapshotRef()})
}

// Start transitions the lobby to in-progress. The host check happens in the
// registry; the engine only guards double starts.
func (g *Game) Start() {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if g.Started || g.Over {
		return
	}
	g.Started = true
	g.touch()
	g.logAction(g.HostID, "game_start", nil)
	g.fireEvent(GameEvent{Type: EventGameStarted, Actor: g.HostID, Snapshot: g.snapshotRef()})
}

// HandlePlay validates and applies a play-card intent. Legality is checked
// here, before turn resolution; resolveTurn trusts its input.
func (g *Game) HandlePlay(playerID string, card models.Card, handIndex int) (*PlayResult, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p, err := g.actingPlayer(playerID)
	if err != nil {
		return nil, err
	}
	if !p.holdsAt(handIndex, card) {
		return nil, ErrBadHandIndex
	}
	if !p.canPlay(card) {
		return nil, ErrCardNotPlayable
	}

	if card.IsWild() && card.Color == models.ColorWild {
		// Hand untouched until the color prompt confirms.
		return &PlayResult{Outcome: PlayNeedsColorChoice, Card: card, Snapshot: g.snapshot()}, nil
	}

	played, _ := p.removeCardAt(handIndex)
	if played.IsWild() {
		// A color-resolved wild intent carries its chosen color inline; the
		// held card is colorless, and the top must never be.
		played = played.WithColor(card.Color)
	}
	g.logAction(playerID, "card_played", map[string]interface{}{"card": played.Encode()})
	g.resolveTurn(played, true)
	g.fireEvent(GameEvent{Type: EventCardPlayed, Actor: playerID, Card: played.Encode(), Snapshot: g.snapshotRef()})
	return &PlayResult{Outcome: PlayAccepted, Card: played, Snapshot: g.snapshot()}, nil
}

// HandleWildColor resolves a pending wild-color prompt: the hand slot must
// still hold the colorless wild, and only now is it removed and played.
func (g *Game) HandleWildColor(playerID string, color models.Color, special models.Special, handIndex int) (*PlayResult, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p, err := g.actingPlayer(playerID)
	if err != nil {
		return nil, err
	}
	if color == models.ColorWild {
		return nil, ErrBadColorChoice
	}
	claimed := models.NewSpecialCard(models.ColorWild, special)
	if !claimed.IsWild() {
		return nil, ErrCardNotPlayable
	}
	if !p.holdsAt(handIndex, claimed) {
		return nil, ErrBadHandIndex
	}

	p.removeCardAt(handIndex)
	played := claimed.WithColor(color)
	g.logAction(playerID, "card_played", map[string]interface{}{"card": played.Encode()})
	g.resolveTurn(played, true)
	g.fireEvent(GameEvent{Type: EventCardPlayed, Actor: playerID, Card: played.Encode(), Snapshot: g.snapshotRef()})
	return &PlayResult{Outcome: PlayAccepted, Card: played, Snapshot: g.snapshot()}, nil
}

// HandleDraw applies a voluntary draw. The drawn card stays private to the
// caller; the turn passes with the top card unchanged. Drawing settles any
// pending pickup stack onto the drawer.
func (g *Game) HandleDraw(playerID string) (*DrawResult, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p, err := g.actingPlayer(playerID)
	if err != nil {
		return nil, err
	}

	card := models.RandomCard(g.rng)
	p.addCard(card)
	p.CanBeCalledOut = false
	g.logAction(playerID, "card_drawn", nil)

	if len(p.Hand) >= HandLimit {
		p.Hand = nil
		g.removePlayer(playerID)
		g.fireEvent(GameEvent{Type: EventPlayerEliminated, Actor: playerID, Snapshot: g.snapshotRef()})
		g.resolveTurn(g.TopCard, true)
		g.fireEvent(GameEvent{Type: EventCardDrawn, Actor: playerID, Snapshot: g.snapshotRef()})
		return &DrawResult{Card: card, Eliminated: true, Snapshot: g.snapshot()}, nil
	}

	g.resolveTurn(g.TopCard, false)
	g.fireEvent(GameEvent{Type: EventCardDrawn, Actor: playerID, Snapshot: g.snapshotRef()})
	return &DrawResult{Card: card, Eliminated: false, Snapshot: g.snapshot()}, nil
}

// HandleCallOut runs the "say UNO" race. The first declaration while a
// one-card player's window is open wins: the window closes, and if the
// declarer is anyone but the one-card player, that player draws 2.
func (g *Game) HandleCallOut(callerID string) (*CallOutResult, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.Over {
		return nil, ErrGameOver
	}
	if !g.Started {
		return nil, ErrNotStarted
	}
	if g.playerByID(callerID) == nil {
		return nil, ErrNotInGame
	}
	g.touch()

	var eligible *Player
	for _, p := range g.Players {
		if p.CanBeCalledOut {
			eligible = p
			break
		}
	}
	if eligible == nil {
		outcome := CallOutNoneEligible
		for _, p := range g.Players {
			if len(p.Hand) == 1 {
				outcome = CallOutTooLate
				break
			}
		}
		return &CallOutResult{Outcome: outcome, Snapshot: g.snapshot()}, nil
	}

	if eligible.ID == callerID {
		eligible.CanBeCalledOut = false
		g.logAction(callerID, "callout_safe", nil)
		g.fireEvent(GameEvent{Type: EventCallOutSafe, Actor: callerID, Snapshot: g.snapshotRef()})
		return &CallOutResult{Outcome: CallOutSafe, Snapshot: g.snapshot()}, nil
	}

	penalized := eligible.ID
	eligible.drawN(2)
	g.logAction(callerID, "callout_caught", map[string]interface{}{"penalized": penalized})
	g.fireEvent(GameEvent{
		Type:     EventCallOutCaught,
		Actor:    callerID,
		Detail:   map[string]interface{}{"penalized": penalized},
		Snapshot: g.snapshotRef(),
	})
	return &CallOutResult{Outcome: CallOutCaught, PenalizedID: penalized, Snapshot: g.snapshot()}, nil
}

// RemovePlayer takes a player out of the session. During play this re-runs
// the winner check, since a leave can end the game.
func (g *Game) RemovePlayer(playerID string) (Snapshot, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if g.playerByID(playerID) == nil {
		return g.snapshot(), ErrNotInGame
	}
	g.touch()
	g.removePlayer(playerID)
	g.logAction(playerID, "player_leave", nil)
	g.fireEvent(GameEvent{Type: EventPlayerLeft, Actor: playerID, Snapshot: g.snapshotRef()})
	if g.Started {
		g.checkForWinner()
	}
	return g.snapshot(), nil
}

// Cancel terminates the session without a winner (host cancel, admin reset).
func (g *Game) Cancel(requesterID string) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if g.Over {
		return
	}
	g.Over = true
	g.logAction(requesterID, "game_cancelled", nil)
	g.fireEvent(GameEvent{Type: EventGameCancelled, Actor: requesterID, Snapshot: g.snapshotRef()})
	if g.OnGameEnd != nil {
		g.OnGameEnd(g.RoomID, "", g.TurnNumber)
	}
}

// IsIdle reports whether the session has seen no state-mutating action for
// longer than the given threshold.
func (g *Game) IsIdle(threshold time.Duration) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return time.Since(g.lastActivity) > threshold
}

// Finished reports the terminal flag.
func (g *Game) Finished() bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.Over
}

// Snapshot returns the render-sufficient view of the session.
func (g *Game) Snapshot() Snapshot {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.snapshot()
}

// PlayerIDs lists the seated players. Used by the registry to release its
// player index when a whole game is evicted.
func (g *Game) PlayerIDs() []string {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	ids := make([]string, 0, len(g.Players))
	for _, p := range g.Players {
		ids = append(ids, p.ID)
	}
	return ids
}

// HasPlayer reports membership.
func (g *Game) HasPlayer(playerID string) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.playerByID(playerID) != nil
}

// HandOf returns a copy of a player's current hand in display order, with
// each card's action encoding, for the private card-menu render.
func (g *Game) HandOf(playerID string) ([]models.Card, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	p := g.playerByID(playerID)
	if p == nil {
		return nil, ErrNotInGame
	}
	hand := make([]models.Card, len(p.Hand))
	copy(hand, p.Hand)
	return hand, nil
}

// --- internals; assume lock is held ---

// resolveTurn is the core turn-resolution algorithm. Card legality was
// validated by the acting player's command path; resolveTurn trusts its
// input. wasPlayed is false when the turn resolves from a voluntary draw,
// which keeps the top card and settles any pending stack onto the drawer.
func (g *Game) resolveTurn(card models.Card, wasPlayed bool) {
	if g.Over {
		return
	}
	g.TurnNumber++
	g.touch()

	g.checkForWinner()
	if g.Over {
		return
	}

	previousPlayer := g.Players[g.CurrentPlayerIndex]
	lastCard := g.TopCard
	g.TopCard = card

	switch {
	case card.Special == models.SpecialReverse && len(g.Players) == 2:
		// A reverse between two players acts as a skip; direction is not
		// toggled.
		g.incrementTurn()
		g.incrementTurn()
	case card.Special == models.SpecialReverse:
		g.reversed = !g.reversed
		g.incrementTurn()
	case card.Special == models.SpecialSkip:
		g.incrementTurn()
		g.incrementTurn()
	default:
		g.incrementTurn()
	}

	switch card.Special {
	case models.SpecialDrawTwo:
		g.PendingDraw += 2
	case models.SpecialWildDrawFour:
		g.PendingDraw += 4
	}

	// The stack keeps growing while draw specials chain; the instant the
	// chain breaks (a non-draw play, or a draw instead of a play) the whole
	// accumulated penalty lands on the player who broke it.
	chainBroken := g.PendingDraw > 0 && lastCard.IsDrawSpecial() && !card.IsDrawSpecial()
	if (chainBroken || !wasPlayed) && g.PendingDraw > 0 {
		count := g.PendingDraw
		g.PendingDraw = 0
		eliminated := previousPlayer.drawN(count)
		g.logAction(previousPlayer.ID, "forced_draw", map[string]interface{}{"count": count})
		g.fireEvent(GameEvent{
			Type:     EventForcedDraw,
			Actor:    previousPlayer.ID,
			Detail:   map[string]interface{}{"count": count},
			Snapshot: g.snapshotRef(),
		})
		if eliminated {
			g.fireEvent(GameEvent{Type: EventPlayerEliminated, Actor: previousPlayer.ID, Snapshot: g.snapshotRef()})
			g.checkForWinner()
		}
	}
}

// incrementTurn advances the turn pointer one seat in the active direction,
// wrapping around the seating order.
func (g *Game) incrementTurn() {
	if len(g.Players) == 0 {
		return
	}
	if g.reversed {
		g.CurrentPlayerIndex--
		if g.CurrentPlayerIndex < 0 {
			g.CurrentPlayerIndex = len(g.Players) - 1
		}
	} else {
		g.CurrentPlayerIndex++
		if g.CurrentPlayerIndex >= len(g.Players) {
			g.CurrentPlayerIndex = 0
		}
	}
}

// checkForWinner fires at the start of every resolveTurn and after any
// player removal: a sole remaining player wins, as does the first player to
// empty their hand.
func (g *Game) checkForWinner() {
	if g.Over {
		return
	}
	var winner *Player
	if len(g.Players) == 1 {
		winner = g.Players[0]
	} else {
		for _, p := range g.Players {
			if len(p.Hand) == 0 {
				winner = p
				break
			}
		}
	}
	if winner == nil {
		return
	}
	g.Over = true
	g.WinnerID = winner.ID
	g.logAction(winner.ID, "game_end", map[string]interface{}{"turns": g.TurnNumber})
	g.fireEvent(GameEvent{
		Type:     EventGameEnd,
		Actor:    winner.ID,
		Detail:   map[string]interface{}{"turns": g.TurnNumber},
		Snapshot: g.snapshotRef(),
	})
	if g.OnGameEnd != nil {
		g.OnGameEnd(g.RoomID, winner.ID, g.TurnNumber)
	}
}

// removePlayer drops a player from the seating order, keeping the turn
// pointer on the same seat where possible.
func (g *Game) removePlayer(playerID string) {
	idx := -1
	for i, p := range g.Players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}
	g.Players = append(g.Players[:idx], g.Players[idx+1:]...)
	if idx < g.CurrentPlayerIndex {
		g.CurrentPlayerIndex--
	}
	if g.CurrentPlayerIndex >= len(g.Players) {
		g.CurrentPlayerIndex = 0
	}
	if g.onPlayerRemoved != nil {
		g.onPlayerRemoved(playerID)
	}
}

// actingPlayer resolves the common preconditions for in-turn actions.
func (g *Game) actingPlayer(playerID string) (*Player, error) {
	if g.Over {
		return nil, ErrGameOver
	}
	if !g.Started {
		return nil, ErrNotStarted
	}
	p := g.playerByID(playerID)
	if p == nil {
		return nil, ErrNotInGame
	}
	if !p.isMyTurn() {
		return nil, ErrNotYourTurn
	}
	g.touch()
	return p, nil
}

func (g *Game) playerByID(playerID string) *Player {
	for _, p := range g.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func (g *Game) touch() {
	g.lastActivity = time.Now()
}

func (g *Game) snapshot() Snapshot {
	snap := Snapshot{
		RoomID:      g.RoomID,
		HostID:      g.HostID,
		Started:     g.Started,
		Over:        g.Over,
		WinnerID:    g.WinnerID,
		TopCard:     g.TopCard.Encode(),
		Reversed:    g.reversed,
		PendingDraw: g.PendingDraw,
		TurnNumber:  g.TurnNumber,
	}
	if len(g.Players) > 0 && g.CurrentPlayerIndex < len(g.Players) {
		snap.CurrentPlayerID = g.Players[g.CurrentPlayerIndex].ID
	}
	for _, p := range g.Players {
		snap.Players = append(snap.Players, PlayerStatus{
			ID:             p.ID,
			HandSize:       len(p.Hand),
			IsHost:         p.ID == g.HostID,
			CanBeCalledOut: p.CanBeCalledOut,
		})
	}
	return snap
}

func (g *Game) snapshotRef() *Snapshot {
	snap := g.snapshot()
	return &snap
}

// fireEvent broadcasts an event to the room. Assumes lock is held; the
// broadcast function must not call back into the game synchronously.
func (g *Game) fireEvent(ev GameEvent) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	}
}

// logAction pushes an action record onto the historian queue. Fire and
// forget; a missing Redis client is tolerated.
func (g *Game) logAction(actorID string, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.GameActionRecord{
		GameID:        g.ID,
		RoomID:        g.RoomID,
		ActionIndex:   g.actionIndex,
		ActorID:       actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	go func(rec cache.GameActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if cache.Rdb == nil {
			return
		}
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			log.Printf("Error publishing action %d for game %s: %v", rec.ActionIndex, g.ID, err)
		}
	}(record)
}
