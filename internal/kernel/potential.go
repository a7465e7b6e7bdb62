// Package kernel evaluates interaction-potential derivatives.
//
// A Potential is described by its radial profile g(r) = φ'(r) for r > 0.
// Every evaluation goes through an explicit origin branch: the derivative is
// exactly 0 at zero separation, so kernel values are finite for finite input.
package kernel

import (
	"fmt"
	"math"

	"github.com/san-kum/predprey/internal/dynamo"
)

type Kind string

const (
	KindZero      Kind = "zero"
	KindAbs       Kind = "abs"
	KindQuadratic Kind = "quadratic"
	KindMorse     Kind = "morse"
	KindCustom    Kind = "custom"
)

// Potential is a named radial interaction potential.
type Potential struct {
	kind    Kind
	name    string
	profile func(r float64) float64
}

// Zero is the potential with no interaction.
func Zero() Potential {
	return Potential{kind: KindZero, name: "zero", profile: func(float64) float64 { return 0 }}
}

// Abs is φ(r) = c·r. Its signed derivative is c·sign(d).
func Abs(c float64) Potential {
	return Potential{
		kind:    KindAbs,
		name:    fmt.Sprintf("abs(%g)", c),
		profile: func(float64) float64 { return c },
	}
}

// Quadratic is φ(r) = c·r²/2.
func Quadratic(c float64) Potential {
	return Potential{
		kind:    KindQuadratic,
		name:    fmt.Sprintf("quadratic(%g)", c),
		profile: func(r float64) float64 { return c * r },
	}
}

// Morse is the attractive-repulsive potential φ(r) = Cr·exp(-r/lr) - Ca·exp(-r/la).
func Morse(cr, lr, ca, la float64) Potential {
	return Potential{
		kind: KindMorse,
		name: fmt.Sprintf("morse(%g,%g,%g,%g)", cr, lr, ca, la),
		profile: func(r float64) float64 {
			return -cr/lr*math.Exp(-r/lr) + ca/la*math.Exp(-r/la)
		},
	}
}

// Custom wraps a caller-supplied radial derivative g(r), evaluated for r > 0 only.
func Custom(name string, g func(r float64) float64) Potential {
	return Potential{kind: KindCustom, name: name, profile: g}
}

func (p Potential) Kind() Kind   { return p.kind }
func (p Potential) Name() string { return p.name }

// Radial returns φ'(r) for r > 0 and exactly 0 at r = 0.
func (p Potential) Radial(r float64) float64 {
	if r == 0 || p.profile == nil {
		return 0
	}
	return p.profile(r)
}

// Signed returns d/dd φ(|d|) = sign(d)·φ'(|d|), with value 0 at d = 0.
func (p Potential) Signed(d float64) float64 {
	switch {
	case d > 0:
		return p.Radial(d)
	case d < 0:
		return -p.Radial(-d)
	default:
		return 0
	}
}

// IsZero reports whether p is the no-interaction potential.
func (p Potential) IsZero() bool {
	return p.kind == KindZero || p.profile == nil
}

// originProbe holds the radii at which CheckOrigin samples the profile.
// A profile with a finite limit at 0 changes little between them.
var originProbe = [2]float64{1e-9, 1e-6}

// CheckOrigin verifies that the profile is finite and bounded as r → 0.
// Radial and Signed pin the value at r = 0 to 0, and the particle solver
// divides by a sentinel distance of 1 at coincident pairs; both are only
// sound when the masked jump at the origin is finite.
func CheckOrigin(p Potential) error {
	if p.profile == nil {
		return nil
	}
	near, far := p.profile(originProbe[0]), p.profile(originProbe[1])
	if math.IsNaN(near) || math.IsInf(near, 0) || math.IsNaN(far) || math.IsInf(far, 0) {
		return fmt.Errorf("%w: %s is not finite near the origin (%g at r=%g)",
			dynamo.ErrSingularKernel, p.name, near, originProbe[0])
	}
	if math.Abs(near) > 2*math.Abs(far)+1 {
		return fmt.Errorf("%w: %s diverges at the origin (%g at r=%g, %g at r=%g)",
			dynamo.ErrSingularKernel, p.name, near, originProbe[0], far, originProbe[1])
	}
	return nil
}

// Sign is the sign function with Sign(0) = 0.
func Sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
