// Package linkage provides the rotating-arm kinematics behind a spirograph.
//
// The package defines the primitives of a planar arm chain:
//
//   - [Arm]: a rotating vector with fixed radius and angular speed
//   - [Chain]: ordered arms, each pivoting on the previous arm's end
//   - [Point]: an integer pixel coordinate
//   - [Sampler]: draws randomized chains from a seedable source
//
// # Example
//
//	chain := linkage.Chain{
//	    {Radius: 100, Speed: math.Pi / 50},
//	    {Radius: 50, Speed: math.Pi / 30},
//	}
//	tip, pivots := chain.Evaluate(linkage.Point{X: 640, Y: 360}, linkage.RoundTruncate)
//
// # Rounding
//
// Each arm contribution is quantized to whole pixels before it is added to the
// running position. [RoundFinal] keeps float precision through the chain and
// rounds once; it produces a visibly different trace for large radii.
//
// # Thread Safety
//
// Evaluate mutates arm angles. A Chain must be owned by a single goroutine.
package linkage
