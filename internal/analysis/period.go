package analysis

import (
	"math"

	"github.com/san-kum/spirograph/internal/linkage"
)

// ChainPeriod returns the first frame t in [1, limit] at which every arm has
// turned a whole number of revolutions within tol radians, or 0 if none does.
// Stationary arms never constrain the period.
func ChainPeriod(chain linkage.Chain, limit int, tol float64) int {
	moving := false
	for _, a := range chain {
		if a.Speed != 0 {
			moving = true
			break
		}
	}
	if !moving {
		return 1
	}

	for t := 1; t <= limit; t++ {
		if closedAt(chain, float64(t), tol) {
			return t
		}
	}
	return 0
}

func closedAt(chain linkage.Chain, t, tol float64) bool {
	for _, a := range chain {
		if a.Speed == 0 {
			continue
		}
		turn := math.Mod(math.Abs(a.Speed*t), 2*math.Pi)
		if turn > tol && 2*math.Pi-turn > tol {
			return false
		}
	}
	return true
}
