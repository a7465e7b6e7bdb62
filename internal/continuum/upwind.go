package continuum

// SplitVelocity writes the positive part max(a, 0) into pos and the negative
// part max(−a, 0) into neg. At a == 0 both parts are 0. A NaN velocity is
// copied into both parts so it reaches the densities instead of reading as
// no motion.
func SplitVelocity(a, pos, neg []float64) {
	for i, v := range a {
		switch {
		case v > 0:
			pos[i], neg[i] = v, 0
		case v < 0:
			pos[i], neg[i] = 0, -v
		case v == 0:
			pos[i], neg[i] = 0, 0
		default:
			pos[i], neg[i] = v, v
		}
	}
}

// Fluxes writes the donor-cell interface fluxes into flux, which has one
// more entry than rho: flux[i] is F_{i−1/2}. Interior fluxes are
//
//	F_{i+1/2} = pos_i·ρ_i − neg_{i+1}·ρ_{i+1}.
//
// Cells outside the domain carry no density, so under Outflow the edge
// fluxes only move mass out of the boundary cells. Closed zeroes them.
func Fluxes(flux, pos, neg, rho []float64, b Boundary) {
	n := len(rho)
	for i := 0; i+1 < n; i++ {
		flux[i+1] = pos[i]*rho[i] - neg[i+1]*rho[i+1]
	}

	if b == Closed {
		flux[0], flux[n] = 0, 0
		return
	}
	flux[0] = -neg[0] * rho[0]
	flux[n] = pos[n-1] * rho[n-1]
}
