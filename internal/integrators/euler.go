package integrators

import "github.com/san-kum/predprey/internal/dynamo"

// Euler is the explicit forward Euler scheme x <- x + dt*f(x, t), applied in
// place. The derivative buffer is reused across steps.
type Euler struct {
	dx dynamo.State
}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) ensureScratch(n int) {
	if len(e.dx) != n {
		e.dx = make(dynamo.State, n)
	}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, t, dt float64) {
	e.ensureScratch(len(x))

	sys.Derive(e.dx, x, t)
	for i := range x {
		x[i] += dt * e.dx[i]
	}
}
