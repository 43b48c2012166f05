// internal/models/card_test.go
package models

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEncodeParseRoundTrip verifies every canonical card, plus every
// color-resolved wild, survives the action-identifier round trip.
func TestEncodeParseRoundTrip(t *testing.T) {
	cards := AllCards()
	for _, color := range []Color{ColorRed, ColorGreen, ColorBlue, ColorYellow} {
		cards = append(cards,
			NewSpecialCard(ColorWild, SpecialWild).WithColor(color),
			NewSpecialCard(ColorWild, SpecialWildDrawFour).WithColor(color),
		)
	}
	for _, card := range cards {
		parsed, err := ParseCard(card.Encode())
		require.NoError(t, err, "card %s should parse", card)
		assert.Equal(t, card, parsed, "round trip should preserve %s", card)
	}
}

func TestParseCardRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"Red",             // color with no face
		"Purple-3",        // unknown color
		"Red-10",          // number out of range
		"Red-minus",       // unknown face
		"Skip",            // colorless non-wild
		"Wild-Skip",       // wild-colored effect card
		"Wild-5",          // wild-colored number card
		"Red-None",        // None is not a playable face
		"Green-Skip-Extra", // trailing junk
	}
	for _, s := range bad {
		_, err := ParseCard(s)
		assert.Error(t, err, "%q should not parse", s)
	}
}

func TestMatches(t *testing.T) {
	top := NewNumberCard(ColorRed, 5)

	assert.True(t, NewNumberCard(ColorRed, 9).Matches(top), "same color should match")
	assert.True(t, NewNumberCard(ColorBlue, 5).Matches(top), "same number should match")
	assert.True(t, NewSpecialCard(ColorRed, SpecialSkip).Matches(top), "same color effect should match")
	assert.True(t, NewSpecialCard(ColorWild, SpecialWild).Matches(top), "wild always matches")
	assert.True(t, NewSpecialCard(ColorWild, SpecialWildDrawFour).Matches(top), "wild draw four always matches")
	assert.False(t, NewNumberCard(ColorBlue, 6).Matches(top), "different color and number should not match")
	assert.False(t, NewSpecialCard(ColorGreen, SpecialSkip).Matches(top), "off-color effect on number top should not match")

	specialTop := NewSpecialCard(ColorGreen, SpecialDrawTwo)
	assert.True(t, NewSpecialCard(ColorBlue, SpecialDrawTwo).Matches(specialTop), "same effect should match across colors")
	assert.True(t, NewNumberCard(ColorGreen, 0).Matches(specialTop), "same color number should match effect top")
	assert.False(t, NewSpecialCard(ColorBlue, SpecialSkip).Matches(specialTop), "different effect and color should not match")
}

func TestNewSpecialCardForcesWildColorless(t *testing.T) {
	w := NewSpecialCard(ColorRed, SpecialWild)
	assert.Equal(t, ColorWild, w.Color, "wilds are created colorless regardless of argument")

	resolved := w.WithColor(ColorBlue)
	assert.Equal(t, ColorBlue, resolved.Color)
	assert.Equal(t, SpecialWild, resolved.Special)
	assert.Equal(t, ColorWild, w.Color, "WithColor must not mutate the receiver")
}

func TestRandomCardDeterministicAndInSet(t *testing.T) {
	set := make(map[Card]bool)
	for _, c := range AllCards() {
		set[c] = true
	}
	require.Len(t, set, 54, "canonical set should hold 54 distinct cards")

	a := rand.New(rand.NewSource(42))
	b := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		ca := RandomCard(a)
		cb := RandomCard(b)
		assert.Equal(t, ca, cb, "same seed should yield the same draw sequence")
		assert.True(t, set[ca], "draw %s should come from the canonical set", ca)
	}
}

func TestSortsBeforeOrdersColorNumberSpecial(t *testing.T) {
	red5 := NewNumberCard(ColorRed, 5)
	red9 := NewNumberCard(ColorRed, 9)
	redSkip := NewSpecialCard(ColorRed, SpecialSkip)
	green0 := NewNumberCard(ColorGreen, 0)

	assert.True(t, red5.SortsBefore(red9), "lower number first within a color")
	assert.True(t, redSkip.SortsBefore(red5), "effects sort ahead of numbers within a color")
	assert.True(t, red5.SortsBefore(green0), "color is the primary key")
	assert.False(t, green0.SortsBefore(red5))
}
