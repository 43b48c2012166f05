// internal/models/card.go
package models

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// Color is the face color of a card. Wild cards are colorless (ColorWild)
// until the playing player resolves them to a concrete color.
type Color int

const (
	ColorRed Color = iota
	ColorGreen
	ColorBlue
	ColorYellow
	ColorWild
)

var colorNames = map[Color]string{
	ColorRed:    "Red",
	ColorGreen:  "Green",
	ColorBlue:   "Blue",
	ColorYellow: "Yellow",
	ColorWild:   "Wild",
}

func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Color(%d)", int(c))
}

// ParseColor resolves a color name produced by Color.String.
func ParseColor(s string) (Color, error) {
	for c, name := range colorNames {
		if name == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("invalid color %q", s)
}

// Special is the effect a non-number card carries.
type Special int

const (
	SpecialNone Special = iota
	SpecialSkip
	SpecialReverse
	SpecialDrawTwo
	SpecialWild
	SpecialWildDrawFour
)

var specialNames = map[Special]string{
	SpecialNone:         "None",
	SpecialSkip:         "Skip",
	SpecialReverse:      "Reverse",
	SpecialDrawTwo:      "DrawTwo",
	SpecialWild:         "Wild",
	SpecialWildDrawFour: "WildDrawFour",
}

func (s Special) String() string {
	if name, ok := specialNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Special(%d)", int(s))
}

// ParseSpecial resolves a special name produced by Special.String.
func ParseSpecial(s string) (Special, error) {
	for sp, name := range specialNames {
		if name == s {
			return sp, nil
		}
	}
	return 0, fmt.Errorf("invalid special %q", s)
}

// Card is an immutable color/number/special triple. Exactly one of Number
// (0-9) or a non-None Special is set; Number is -1 on special cards.
type Card struct {
	Color   Color   `json:"color"`
	Number  int     `json:"number"`
	Special Special `json:"special"`
}

// NewNumberCard builds a colored number card (number must be 0-9).
func NewNumberCard(color Color, number int) Card {
	return Card{Color: color, Number: number, Special: SpecialNone}
}

// NewSpecialCard builds an effect card. Wild/WildDrawFour cards are created
// colorless regardless of the color argument.
func NewSpecialCard(color Color, special Special) Card {
	c := Card{Color: color, Number: -1, Special: special}
	if c.IsWild() {
		c.Color = ColorWild
	}
	return c
}

// IsWild reports whether the card needs a color choice when played.
func (c Card) IsWild() bool {
	return c.Special == SpecialWild || c.Special == SpecialWildDrawFour
}

// IsDrawSpecial reports whether the card adds to the pickup stack.
func (c Card) IsDrawSpecial() bool {
	return c.Special == SpecialDrawTwo || c.Special == SpecialWildDrawFour
}

// WithColor returns a copy of the card with its color resolved. Used when a
// wild card's color prompt is confirmed.
func (c Card) WithColor(color Color) Card {
	c.Color = color
	return c
}

// Matches is the legal-play predicate: true iff the card may be played on
// top of `top`, independent of whose turn it is.
func (c Card) Matches(top Card) bool {
	if c.IsWild() {
		return true
	}
	if c.Color == top.Color {
		return true
	}
	if c.Number >= 0 && c.Number == top.Number {
		return true
	}
	if c.Special != SpecialNone && c.Special == top.Special {
		return true
	}
	return false
}

// SortsBefore orders cards by (color, number, special). The order carries no
// gameplay meaning; hands are kept sorted for stable display.
func (c Card) SortsBefore(other Card) bool {
	if c.Color != other.Color {
		return c.Color < other.Color
	}
	if c.Number != other.Number {
		return c.Number < other.Number
	}
	return c.Special < other.Special
}

// Encode renders the card's stable action identifier. The encoding is the
// wire form embedded in play-card intents and must round-trip via ParseCard:
//
//	"Red-5"          colored number card
//	"Green-Skip"     colored effect card
//	"Wild"           colorless wild
//	"Blue-Wild"      wild resolved to blue
func (c Card) Encode() string {
	if c.Special == SpecialNone {
		return fmt.Sprintf("%s-%d", c.Color, c.Number)
	}
	if c.Color == ColorWild {
		return c.Special.String()
	}
	return fmt.Sprintf("%s-%s", c.Color, c.Special)
}

// String is the display identity; identical to the action encoding so the
// rendering collaborator and the intent decoder can never disagree.
func (c Card) String() string { return c.Encode() }

// ParseCard decodes an action identifier produced by Encode.
func ParseCard(s string) (Card, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) == 1 {
		special, err := ParseSpecial(parts[0])
		if err != nil {
			return Card{}, fmt.Errorf("invalid card %q: %w", s, err)
		}
		if special != SpecialWild && special != SpecialWildDrawFour {
			return Card{}, fmt.Errorf("invalid card %q: colorless cards must be wild", s)
		}
		return NewSpecialCard(ColorWild, special), nil
	}

	color, err := ParseColor(parts[0])
	if err != nil {
		return Card{}, fmt.Errorf("invalid card %q: %w", s, err)
	}
	if number, numErr := strconv.Atoi(parts[1]); numErr == nil {
		if number < 0 || number > 9 {
			return Card{}, fmt.Errorf("invalid card %q: number out of range", s)
		}
		if color == ColorWild {
			return Card{}, fmt.Errorf("invalid card %q: number cards must be colored", s)
		}
		return NewNumberCard(color, number), nil
	}
	special, err := ParseSpecial(parts[1])
	if err != nil || special == SpecialNone {
		return Card{}, fmt.Errorf("invalid card %q: unknown face", s)
	}
	if special == SpecialWild || special == SpecialWildDrawFour {
		// Resolved wild; keep the chosen color.
		return Card{Color: color, Number: -1, Special: special}, nil
	}
	if color == ColorWild {
		return Card{}, fmt.Errorf("invalid card %q: %s cards must be colored", s, special)
	}
	return NewSpecialCard(color, special), nil
}

// cardSet is the canonical 54-distinct-card set random draws are taken from:
// each color's ten numbers plus Skip/Reverse/DrawTwo, and the two colorless
// wilds. Cards are generated parametrically; there is no finite shoe.
var cardSet = buildCardSet()

func buildCardSet() []Card {
	colors := []Color{ColorRed, ColorGreen, ColorBlue, ColorYellow}
	set := make([]Card, 0, 54)
	for _, color := range colors {
		for n := 0; n <= 9; n++ {
			set = append(set, NewNumberCard(color, n))
		}
		set = append(set,
			NewSpecialCard(color, SpecialSkip),
			NewSpecialCard(color, SpecialReverse),
			NewSpecialCard(color, SpecialDrawTwo),
		)
	}
	return append(set,
		NewSpecialCard(ColorWild, SpecialWild),
		NewSpecialCard(ColorWild, SpecialWildDrawFour),
	)
}

// RandomCard draws uniformly from the canonical card set using the supplied
// source, so a seeded source yields reproducible deals.
func RandomCard(rng *rand.Rand) Card {
	return cardSet[rng.Intn(len(cardSet))]
}

// AllCards returns a copy of the canonical card set.
func AllCards() []Card {
	out := make([]Card, len(cardSet))
	copy(out, cardSet)
	return out
}
