package FerroX

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/notargets/goferrox/InputParameters"
	"github.com/notargets/goferrox/WarnManager"
	"github.com/notargets/goferrox/boundary"
	"github.com/notargets/goferrox/geometry"
	"github.com/notargets/goferrox/utils"
)

// Stepper advances the solution one box at a time. Step is called
// concurrently for boxes on different units and never concurrently for the
// same box.
type Stepper interface {
	Setup(geom *geometry.Geometry, params InputParameters.FerroXParameters) error
	Step(kc *KernelContext) error
}

// Plotter is called every plot_int steps once all units finish the step.
type Plotter interface {
	Plot(fx *FerroX, step int, time float64) error
}

// KernelContext is what a unit sees while it works on one box.
type KernelContext struct {
	Unit     int
	LocalBox int // Index of Box among the unit's boxes
	Box      *geometry.Box
	Step     int
	Time     float64
	Params   InputParameters.FerroXParameters
	Geom     *geometry.Geometry
	BCs      *boundary.BoundaryConditions
	fx       *FerroX
}

func (kc *KernelContext) RecordWarning(topic, text string, prio WarnManager.Priority) {
	kc.fx.RecordUnitWarning(kc.Unit, topic, text, prio)
}

// Run advances Timestep to TotalSteps. Each step fans out one goroutine per
// execution unit over that unit's boxes. The global warning report is
// printed when Run returns.
func (fx *FerroX) Run(ctx context.Context, stepper Stepper) (err error) {
	defer utils.Region("FerroX::Run")()
	switch fx.State() {
	case Constructed:
		return ErrNotInitialized
	case Destroyed:
		return ErrDestroyed
	}
	defer fx.PrintGlobalWarnings("after run")

	if err = stepper.Setup(fx.Geom, fx.Params); err != nil {
		return fmt.Errorf("stepper setup: %w", err)
	}
	fx.log.Infof("FerroX: steps %d -> %d, dt = %g", fx.Timestep, fx.TotalSteps, fx.Params.Dt)
	for fx.Timestep < fx.TotalSteps {
		if err = ctx.Err(); err != nil {
			return err
		}
		step := fx.Timestep + 1
		time := float64(step) * fx.Params.Dt
		if err = fx.advance(ctx, stepper, step, time); err != nil {
			return err
		}
		fx.Timestep = step
		fx.log.Debugf("FerroX: step %d, time %g", step, time)
		if fx.plotter != nil && fx.Params.PlotInt > 0 && step%fx.Params.PlotInt == 0 {
			if err = fx.plotter.Plot(fx, step, time); err != nil {
				return fmt.Errorf("plot step %d: %w", step, err)
			}
		}
	}
	return nil
}

func (fx *FerroX) advance(ctx context.Context, stepper Stepper, step int, time float64) error {
	g, gctx := errgroup.WithContext(ctx)
	for u := 0; u < fx.NumUnits; u++ {
		u := u
		g.Go(func() error {
			for i, b := range fx.Geom.BoxesForUnit(u) {
				if err := gctx.Err(); err != nil {
					return err
				}
				kc := &KernelContext{
					Unit:     u,
					LocalBox: i,
					Box:      b,
					Step:     step,
					Time:     time,
					Params:   fx.Params,
					Geom:     fx.Geom,
					BCs:      fx.BCs,
					fx:       fx,
				}
				if err := stepper.Step(kc); err != nil {
					return fmt.Errorf("unit %d box %d step %d: %w", u, b.ID, step, err)
				}
			}
			return nil
		})
	}
	return g.Wait()
}
