package metrics

import "github.com/san-kum/predprey/internal/dynamo"

// CoincidenceCounter is implemented by systems that can count the particle
// pairs sharing a position in a state.
type CoincidenceCounter interface {
	CountCoincident(x dynamo.State) int
}

// Coincidence is the largest number of coincident pairs over the observed
// states, initial state included.
type Coincidence struct {
	src CoincidenceCounter
	max int
}

func NewCoincidence(src CoincidenceCounter) *Coincidence {
	return &Coincidence{src: src}
}

func (c *Coincidence) Name() string { return "coincident_pairs" }

func (c *Coincidence) Observe(x dynamo.State, t float64) {
	if n := c.src.CountCoincident(x); n > c.max {
		c.max = n
	}
}

func (c *Coincidence) Value() float64 { return float64(c.max) }

func (c *Coincidence) Reset() { c.max = 0 }
