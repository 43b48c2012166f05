// internal/game/player_test.go
package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/uno/internal/models"
)

func newTestPlayer(t *testing.T) (*Game, *Player) {
	t.Helper()
	g := NewGame("room-1", "a", rand.New(rand.NewSource(3)))
	g.AddPlayer("b")
	return g, g.playerByID("a")
}

func TestAddCardKeepsHandSorted(t *testing.T) {
	_, p := newTestPlayer(t)
	p.Hand = nil
	p.addCard(models.NewNumberCard(models.ColorGreen, 4))
	p.addCard(models.NewNumberCard(models.ColorRed, 7))
	p.addCard(models.NewSpecialCard(models.ColorRed, models.SpecialSkip))
	p.addCard(models.NewNumberCard(models.ColorRed, 2))

	for i := 1; i < len(p.Hand); i++ {
		assert.False(t, p.Hand[i].SortsBefore(p.Hand[i-1]),
			"hand out of order at %d: %v", i, p.Hand)
	}
}

func TestRemoveCardAtBounds(t *testing.T) {
	_, p := newTestPlayer(t)
	p.Hand = []models.Card{models.NewNumberCard(models.ColorRed, 1), models.NewNumberCard(models.ColorRed, 2)}

	_, ok := p.removeCardAt(-1)
	assert.False(t, ok)
	_, ok = p.removeCardAt(2)
	assert.False(t, ok)

	card, ok := p.removeCardAt(1)
	require.True(t, ok)
	assert.Equal(t, models.NewNumberCard(models.ColorRed, 2), card)
	assert.Len(t, p.Hand, 1)
}

func TestRemoveToOneCardOpensWindow(t *testing.T) {
	g, p := newTestPlayer(t)
	other := g.playerByID("b")
	other.CanBeCalledOut = true // pretend b's window was open

	p.Hand = []models.Card{models.NewNumberCard(models.ColorRed, 1), models.NewNumberCard(models.ColorRed, 2)}
	_, ok := p.removeCardAt(0)
	require.True(t, ok)

	assert.True(t, p.CanBeCalledOut, "dropping to one card opens the window")
	assert.False(t, other.CanBeCalledOut, "an open window elsewhere closes")
}

func TestDrawNClosesWindowAndEliminatesAtCap(t *testing.T) {
	_, p := newTestPlayer(t)
	p.Hand = []models.Card{models.NewNumberCard(models.ColorRed, 1)}
	p.CanBeCalledOut = true

	eliminated := p.drawN(2)
	assert.False(t, eliminated)
	assert.False(t, p.CanBeCalledOut, "any draw closes the call-out window")
	assert.Len(t, p.Hand, 3)

	eliminated = p.drawN(HandLimit)
	assert.True(t, eliminated, "reaching the cap is a forced loss")
	assert.Empty(t, p.Hand, "the hand clears on elimination")
	assert.False(t, p.game.HasPlayer("a"))
}

func TestHoldsAtGuardsStaleIdentity(t *testing.T) {
	_, p := newTestPlayer(t)
	wild := models.NewSpecialCard(models.ColorWild, models.SpecialWild)
	p.Hand = []models.Card{models.NewNumberCard(models.ColorRed, 5), wild.WithColor(models.ColorWild)}

	assert.True(t, p.holdsAt(0, models.NewNumberCard(models.ColorRed, 5)))
	assert.False(t, p.holdsAt(0, models.NewNumberCard(models.ColorBlue, 5)), "color is part of the identity")
	assert.False(t, p.holdsAt(1, models.NewNumberCard(models.ColorRed, 5)), "index must line up")
	assert.False(t, p.holdsAt(7, models.NewNumberCard(models.ColorRed, 5)))
	assert.True(t, p.holdsAt(1, wild.WithColor(models.ColorBlue)),
		"a held wild answers to any color claim")
}
