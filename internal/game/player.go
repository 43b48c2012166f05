// internal/game/player.go
package game

import (
	"sort"

	"github.com/jason-s-yu/uno/internal/models"
)

// HandLimit is the forced-loss hand-size cap: a player whose hand reaches
// this many cards is eliminated from the game.
const HandLimit = 24

// StartingHandSize is dealt to every player on seat-in.
const StartingHandSize = 7

// Player owns a hand of cards inside exactly one Game. The ID is the opaque
// user reference supplied by the calling platform.
type Player struct {
	ID   string
	Hand []models.Card

	// CanBeCalledOut is true exactly while this player sits at one card and
	// nobody has declared UNO for them yet.
	CanBeCalledOut bool

	game *Game
}

func newPlayer(id string, g *Game) *Player {
	p := &Player{ID: id, game: g}
	for i := 0; i < StartingHandSize; i++ {
		p.addCard(models.RandomCard(g.rng))
	}
	return p
}

// addCard appends a card and re-sorts the hand by (color, number, special).
// The order is a display convenience only; it must stay deterministic so a
// seeded game deals reproducible hands.
func (p *Player) addCard(card models.Card) {
	p.Hand = append(p.Hand, card)
	sort.SliceStable(p.Hand, func(i, j int) bool {
		return p.Hand[i].SortsBefore(p.Hand[j])
	})
}

// removeCardAt takes the card out of the given hand slot. Reaching a single
// remaining card opens the call-out window for this player; the window is
// exclusive, so any other open window closes.
func (p *Player) removeCardAt(index int) (models.Card, bool) {
	if index < 0 || index >= len(p.Hand) {
		return models.Card{}, false
	}
	card := p.Hand[index]
	p.Hand = append(p.Hand[:index], p.Hand[index+1:]...)
	if len(p.Hand) == 1 {
		for _, other := range p.game.Players {
			other.CanBeCalledOut = false
		}
		p.CanBeCalledOut = true
	}
	return card, true
}

// drawN adds n random cards. Hitting the hand cap is a forced loss: the hand
// is cleared and the player leaves the game. Any draw closes the player's
// call-out window. Reports whether the player was eliminated.
func (p *Player) drawN(n int) bool {
	for i := 0; i < n; i++ {
		p.addCard(models.RandomCard(p.game.rng))
	}
	p.CanBeCalledOut = false
	if len(p.Hand) >= HandLimit {
		p.Hand = nil
		p.game.removePlayer(p.ID)
		return true
	}
	return false
}

// isMyTurn reports whether this player occupies the game's turn pointer.
func (p *Player) isMyTurn() bool {
	g := p.game
	if len(g.Players) == 0 || g.CurrentPlayerIndex >= len(g.Players) {
		return false
	}
	return g.Players[g.CurrentPlayerIndex] == p
}

// canPlay delegates to the card match predicate against the discard top.
func (p *Player) canPlay(card models.Card) bool {
	return card.Matches(p.game.TopCard)
}

// holdsAt reports whether the given hand slot still holds a card with the
// claimed identity. Guards against stale action identifiers after a re-sort.
func (p *Player) holdsAt(index int, claimed models.Card) bool {
	if index < 0 || index >= len(p.Hand) {
		return false
	}
	held := p.Hand[index]
	return held.Number == claimed.Number && held.Special == claimed.Special &&
		(held.Color == claimed.Color || held.IsWild())
}
