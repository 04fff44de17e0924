package linkage

import (
	"fmt"
	"math"
	"math/rand"
)

type SpeedMode int

const (
	// SpeedUniform draws uniform(-Range, Range) / Divisor.
	SpeedUniform SpeedMode = iota
	// SpeedHarmonic draws π / d / Divisor with d picked from Denominators.
	SpeedHarmonic
)

func ParseSpeedMode(s string) (SpeedMode, error) {
	switch s {
	case "", "uniform":
		return SpeedUniform, nil
	case "harmonic":
		return SpeedHarmonic, nil
	}
	return 0, fmt.Errorf("unknown speed mode: %s", s)
}

// DefaultDenominators are the harmonic divisors used by the reset preset.
var DefaultDenominators = []int{-8, -7, -6, -5, -4, -3, -2, 2, 3, 4, 5, 6, 7, 8}

// Sampler draws fresh chains. Radii are uniform in [0, MaxRadius) scaled by
// RadiusScale; all start angles are zero.
type Sampler struct {
	MinArms      int
	MaxArms      int
	MaxRadius    float64
	RadiusScale  float64
	SpeedMode    SpeedMode
	SpeedRange   float64
	Divisor      float64
	Denominators []int
}

func (s Sampler) Validate() error {
	if s.MinArms < 1 || s.MaxArms < s.MinArms {
		return fmt.Errorf("%w: arms [%d, %d]", ErrSamplerBounds, s.MinArms, s.MaxArms)
	}
	if s.MaxRadius < 0 || s.RadiusScale < 0 {
		return fmt.Errorf("%w: radius %.2f scale %.2f", ErrSamplerBounds, s.MaxRadius, s.RadiusScale)
	}
	if s.Divisor == 0 {
		return fmt.Errorf("%w: speed divisor must be non-zero", ErrSamplerBounds)
	}
	if s.SpeedMode == SpeedHarmonic {
		if len(s.Denominators) == 0 {
			return fmt.Errorf("%w: harmonic speeds need denominators", ErrSamplerBounds)
		}
		for _, d := range s.Denominators {
			if d == 0 {
				return fmt.Errorf("%w: zero denominator", ErrSamplerBounds)
			}
		}
	}
	return nil
}

func (s Sampler) Sample(rng *rand.Rand) Chain {
	n := s.MinArms
	if s.MaxArms > s.MinArms {
		n += rng.Intn(s.MaxArms - s.MinArms + 1)
	}

	chain := make(Chain, n)
	for i := range chain {
		chain[i].Radius = rng.Float64() * s.MaxRadius * s.RadiusScale
	}
	for i := range chain {
		chain[i].Speed = s.speed(rng)
	}
	return chain
}

func (s Sampler) speed(rng *rand.Rand) float64 {
	if s.SpeedMode == SpeedHarmonic {
		d := s.Denominators[rng.Intn(len(s.Denominators))]
		return math.Pi / float64(d) / s.Divisor
	}
	return (rng.Float64()*2 - 1) * s.SpeedRange / s.Divisor
}
