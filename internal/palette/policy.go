package palette

import (
	"fmt"
	"image/color"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

var Black = color.RGBA{A: 255}

// Policy supplies the stroke color for the current frame.
// Reset is called when a run or a sub-pattern starts.
type Policy interface {
	Name() string
	Color() color.RGBA
	Advance()
	Reset(rng *rand.Rand)
}

// ParseHex parses "#rrggbb" or "#rgb" into an opaque color.
func ParseHex(s string) (color.RGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

type Static struct {
	c color.RGBA
}

func NewStatic(c color.RGBA) *Static {
	c.A = 255
	return &Static{c: c}
}

func (s *Static) Name() string         { return "static" }
func (s *Static) Color() color.RGBA    { return s.c }
func (s *Static) Advance()             {}
func (s *Static) Reset(rng *rand.Rand) {}

type Cycling struct {
	cycle       *HueCycle
	saturation  float64
	lightness   float64
	randomStart bool
	perPattern  bool
	started     bool
}

// NewCycling cycles from a fixed hue. With randomStart the base hue is drawn
// on the first Reset and the hue then runs on across sub-patterns; with
// perPattern as well it is redrawn on every Reset.
func NewCycling(base, step, saturation, lightness float64, randomStart, perPattern bool) *Cycling {
	return &Cycling{
		cycle:       NewHueCycle(base, step),
		saturation:  saturation,
		lightness:   lightness,
		randomStart: randomStart,
		perPattern:  perPattern,
	}
}

func (c *Cycling) Name() string { return "cycle" }

func (c *Cycling) Color() color.RGBA {
	return HSLToRGB(c.cycle.Hue(), c.saturation, c.lightness)
}

func (c *Cycling) Hue() float64 { return c.cycle.Hue() }

func (c *Cycling) Advance() { c.cycle.Advance() }

func (c *Cycling) Reset(rng *rand.Rand) {
	if c.randomStart && (!c.started || c.perPattern) {
		c.cycle.Rewind(rng.Float64() * 360)
	}
	c.started = true
}

// Coin picks black or the cycling hue on the first Reset, or on every Reset
// when perPattern is set. The hue keeps advancing while black is selected.
type Coin struct {
	hue        *Cycling
	black      bool
	perPattern bool
	flipped    bool
}

func NewCoin(hue *Cycling, perPattern bool) *Coin {
	return &Coin{hue: hue, perPattern: perPattern}
}

func (c *Coin) Name() string { return "coin" }

func (c *Coin) Color() color.RGBA {
	if c.black {
		return Black
	}
	return c.hue.Color()
}

func (c *Coin) Black() bool { return c.black }

func (c *Coin) Advance() { c.hue.Advance() }

func (c *Coin) Reset(rng *rand.Rand) {
	if !c.flipped || c.perPattern {
		c.black = rng.Intn(2) == 0
		c.flipped = true
	}
	c.hue.Reset(rng)
}
