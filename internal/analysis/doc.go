// Package analysis post-processes predator–prey runs:
//
//   - [PowerSpectrum]: amplitude spectrum of a sampled diagnostic such as
//     the centroid gap, for spotting periodic chasing
//   - [DominantFrequency]: strongest nonzero component of that spectrum
//   - [LyapunovExponent]: divergence rate of two nearby runs
//   - [Sweep]: evaluate a scalar outcome across a range of a parameter
//
// # Periodic Pursuit
//
// A chase that settles into a cycle shows up as a peak in the spectrum of
// the centroid gap:
//
//	times, gaps := gap.Series()
//	f := analysis.DominantFrequency(gaps, times[1]-times[0])
package analysis
