// Package continuum solves the 1-D nonlocal predator–prey aggregation model
//
//	∂t ρ1 = ∂x(ρ1 (W1' * ρ1 + K' * ρ2))
//	∂t ρ2 = ∂x(ρ2 (W2' * ρ2 − β K' * ρ1))
//
// with a first-order conservative upwind finite-volume scheme.
//
// A [Problem] owns the read-only setup: the grid and the interaction
// matrices built once from pairwise grid differences. The densities live in
// a flat [dynamo.State] laid out as [ρ1..., ρ2...], which the step loop owns
// and updates in place. [System] computes the velocity fields, splits them
// into positive and negative parts and returns the flux divergence, so an
// explicit Euler step reproduces
//
//	ρ_i^{n+1} = ρ_i^n − (Δt/Δx)(F_{i+1/2} − F_{i−1/2}).
//
// Densities are point masses per cell: Σρ = 1 is the total mass and is
// conserved up to roundoff while no mass reaches an outflow boundary.
package continuum
