// Package dynamo provides the step-loop primitives shared by the continuum
// and particle solvers.
//
// A run is a fixed sequence of explicit steps over a flat state vector:
//
//   - [State]: flat vector holding densities or particle coordinates
//   - [System]: evaluates the time derivative of a state (dX/dt = f(X, t))
//   - [Integrator]: advances a state in place by one step
//   - [Metric], [Observer]: read-only hooks called after every step
//   - [Simulator]: orchestrates a run from an initial state to the final time
//
// # Example
//
//	sys := continuum.NewSystem(problem)
//	s := dynamo.New(sys, integrators.NewEuler())
//	result, err := s.Run(ctx, x0, dynamo.Config{Duration: 2, Steps: 1000})
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. The state vector is owned by the
// step loop and mutated in place; observers must copy it if they keep it.
package dynamo
