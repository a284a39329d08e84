package main

import (
	"fmt"
	"math/rand"
)

// Color is a player skin. It doubles as the only cross-reference key between
// a DeadBody and the player it belonged to, so colors must stay unique among
// the players of one session.
type Color int

const (
	ColorRed Color = iota
	ColorPink
	ColorBlue
	ColorOrange
	ColorWhite
	ColorBlack
	ColorGreen
	ColorYellow
	ColorPurple
	ColorGray
)

// AllColors lists every color in a fixed order.
func AllColors() []Color {
	return []Color{
		ColorRed, ColorPink, ColorBlue, ColorOrange, ColorWhite,
		ColorBlack, ColorGreen, ColorYellow, ColorPurple, ColorGray,
	}
}

var colorNames = map[Color]string{
	ColorRed:    "red",
	ColorPink:   "pink",
	ColorBlue:   "blue",
	ColorOrange: "orange",
	ColorWhite:  "white",
	ColorBlack:  "black",
	ColorGreen:  "green",
	ColorYellow: "yellow",
	ColorPurple: "purple",
	ColorGray:   "gray",
}

var colorHex = map[Color]string{
	ColorRed:    "#ff0102",
	ColorPink:   "#ff69b4",
	ColorBlue:   "#1601ff",
	ColorOrange: "#ffa502",
	ColorWhite:  "#ffffff",
	ColorBlack:  "#000000",
	ColorGreen:  "#01ff02",
	ColorYellow: "#ffff66",
	ColorPurple: "#8a2be2",
	ColorGray:   "#333333",
}

func (c Color) String() string {
	if n, ok := colorNames[c]; ok {
		return n
	}
	return fmt.Sprintf("color(%d)", int(c))
}

// Hex returns the CSS color used to render the skin.
func (c Color) Hex() string {
	return colorHex[c]
}

// ParseColor is the inverse of String.
func ParseColor(s string) (Color, error) {
	for c, n := range colorNames {
		if n == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown color %q", s)
}

// RandomColor picks a color uniformly from the session RNG.
func RandomColor(rng *rand.Rand) Color {
	all := AllColors()
	return all[rng.Intn(len(all))]
}

// MarshalText serializes the color by name.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
