package linkage

import (
	"fmt"
	"math"
	"strings"
)

// Arm is a rotating vector pivoting on the end of the previous arm.
// Angle is in radians and never wrapped; Speed is radians per frame.
type Arm struct {
	Angle  float64 `json:"angle" yaml:"angle"`
	Radius float64 `json:"radius" yaml:"radius"`
	Speed  float64 `json:"speed" yaml:"speed"`
}

func (a Arm) IsValid() bool {
	for _, v := range []float64{a.Angle, a.Radius, a.Speed} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return a.Radius >= 0
}

type Point struct {
	X, Y int
}

func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

func (p Point) Dist(q Point) float64 {
	dx := float64(p.X - q.X)
	dy := float64(p.Y - q.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Rounding selects how arm contributions are quantized to pixels.
type Rounding int

const (
	// RoundTruncate truncates each arm contribution toward zero.
	RoundTruncate Rounding = iota
	// RoundNearest rounds each arm contribution half away from zero.
	RoundNearest
	// RoundFinal accumulates in float and rounds only the pivots it reports.
	RoundFinal
)

var roundingNames = map[Rounding]string{
	RoundTruncate: "truncate",
	RoundNearest:  "nearest",
	RoundFinal:    "final",
}

func (r Rounding) String() string {
	if name, ok := roundingNames[r]; ok {
		return name
	}
	return fmt.Sprintf("rounding(%d)", int(r))
}

func ParseRounding(s string) (Rounding, error) {
	for r, name := range roundingNames {
		if strings.EqualFold(name, s) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown rounding mode: %s", s)
}

// Chain is an ordered arm sequence evaluated jointly into one tracing point.
type Chain []Arm

func (c Chain) Clone() Chain {
	out := make(Chain, len(c))
	copy(out, c)
	return out
}

func (c Chain) Validate() error {
	if len(c) == 0 {
		return ErrEmptyChain
	}
	for i, a := range c {
		if !a.IsValid() {
			return &ArmError{Index: i, Arm: a, Wrapped: ErrInvalidArm}
		}
	}
	return nil
}

// Reach is the largest distance the tip can be from the origin.
func (c Chain) Reach() float64 {
	sum := 0.0
	for _, a := range c {
		sum += a.Radius
	}
	return sum
}

// Evaluate computes the terminal point for the current angles, then advances
// every arm by its speed. The returned pivots start with origin and end with
// the terminal point, so len(pivots) == len(c)+1.
func (c Chain) Evaluate(origin Point, mode Rounding) (Point, []Point) {
	pivots := make([]Point, 0, len(c)+1)
	pivots = append(pivots, origin)

	cur := origin
	fx, fy := float64(origin.X), float64(origin.Y)

	for i := range c {
		dx := math.Cos(c[i].Angle) * c[i].Radius
		dy := math.Sin(c[i].Angle) * c[i].Radius

		switch mode {
		case RoundNearest:
			cur = cur.Add(int(math.Round(dx)), int(math.Round(dy)))
		case RoundFinal:
			fx += dx
			fy += dy
			cur = Point{X: int(math.Round(fx)), Y: int(math.Round(fy))}
		default:
			cur = cur.Add(int(dx), int(dy))
		}
		pivots = append(pivots, cur)

		c[i].Angle += c[i].Speed
	}

	return cur, pivots
}
