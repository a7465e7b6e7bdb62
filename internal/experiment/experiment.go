package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/predprey/internal/config"
	"github.com/san-kum/predprey/internal/dynamo"
)

type Experiment struct {
	cfg       *config.Config
	built     *Built
	simulator *dynamo.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup builds the configured model and wires it to an explicit Euler
// simulator together with the model's metrics.
func (e *Experiment) Setup(r *Registry) error {
	built, err := r.Build(e.cfg)
	if err != nil {
		return err
	}
	integ, err := r.GetIntegrator("euler")
	if err != nil {
		return err
	}

	e.built = built
	e.simulator = dynamo.New(built.System, integ)
	for _, m := range built.Metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.built.X0, e.cfg.Run())
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *dynamo.Simulator {
	return e.simulator
}

func (e *Experiment) Built() *Built { return e.built }

func (e *Experiment) Config() *config.Config { return e.cfg }
