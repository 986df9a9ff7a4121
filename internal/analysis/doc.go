// Package analysis provides chaos and signal analysis for pendulum runs.
//
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//   - [PoincareSection]: (θ2, ω2) whenever the upper rod swings up through vertical
//   - [PowerSpectrum] and [DominantFrequency]: spectral content of a sampled series
//   - [Summarize]: mean, standard deviation and range of a series
//   - [ScatterASCII]: terminal rendering of 2D point clouds
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda, err := analysis.LyapunovExponent(p, analysis.DefaultLyapunovConfig())
//	if err == nil && lambda > 0 {
//	    // sensitive to initial conditions
//	}
package analysis
