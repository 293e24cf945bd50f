// Package oscillator evaluates the stationary states of the one-dimensional
// quantum harmonic oscillator in dimensionless units (ħ = m = ω = 1).
//
// # Eigenstates
//
// The n-th eigenstate is
//
//	ψₙ(x, t) = φₙ(x)·e^(−i(n+½)t)
//	φₙ(x)    = (2ⁿ·n!)^(−1/2)·π^(−1/4)·e^(−x²/2)·Hₙ(x)
//
// where Hₙ is the physicists' Hermite polynomial. φₙ is never formed from its
// factors: the normalized Hermite functions obey
//
//	φ₀ = π^(−1/4)·e^(−x²/2)
//	φ₁ = √2·x·φ₀
//	φₖ₊₁ = √(2/(k+1))·x·φₖ − √(k/(k+1))·φₖ₋₁
//
// which stays bounded for any n, so level counts in the hundreds evaluate
// without overflow.
//
// # Periodicity
//
// The phase of level n turns at rate n+½. After t = 2π every level picks up a
// factor of exactly −1; after t = 4π every level is back where it started.
// The animation loop is built on the 4π period.
//
// # Grids
//
// NewGrid samples the half-open range [−R, R) at a fixed step. GridRadius
// derives R from the level count, R = √L·proportion, which keeps the classical
// turning point of the highest displayed level (√(2L−1)) near the plot edge.
package oscillator
