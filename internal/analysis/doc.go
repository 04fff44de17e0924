// Package analysis inspects recorded endpoint traces.
//
//   - [PowerSpectrum] and [DominantPeriod]: spectral view of one coordinate
//   - [ChainPeriod]: frames until every arm returns to its start angle
//   - [PatternToASCII]: quick terminal rendering of a trace
//
// A spirograph closes when all arms complete whole turns at the same frame,
// so for harmonic speeds the dominant spectral period and the chain period
// usually agree:
//
//	period := analysis.ChainPeriod(chain, 100000, 1e-6)
//	p, _ := analysis.DominantPeriod(storage.Xs(trace))
package analysis
