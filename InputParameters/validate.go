package InputParameters

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/notargets/goferrox/types"
)

// Validate checks the ranges the solver depends on. All violations are
// returned together.
func (p *FerroXParameters) Validate() (err error) {
	invalid := func(key, format string, args ...interface{}) {
		err = multierr.Append(err, &KeyError{Key: key, Err: ErrInvalidParameter,
			Detail: fmt.Sprintf(format, args...)})
	}
	if p.Dt <= 0 {
		invalid("dt", "must be positive, got %g", p.Dt)
	}
	if p.NSteps < 0 {
		invalid("nsteps", "must be non-negative, got %d", p.NSteps)
	}
	if p.TimeIntegratorOrder != 1 && p.TimeIntegratorOrder != 2 {
		invalid("TimeIntegratorOrder", "must be 1 or 2, got %d", p.TimeIntegratorOrder)
	}
	if p.Epsilon0 <= 0 {
		invalid("epsilon_0", "must be positive, got %g", p.Epsilon0)
	}
	for _, eps := range []struct {
		key string
		val float64
	}{
		{"epsilonX_fe", p.EpsilonXFE},
		{"epsilonZ_fe", p.EpsilonZFE},
		{"epsilon_de", p.EpsilonDE},
		{"epsilon_si", p.EpsilonSI},
	} {
		if eps.val <= 0 {
			invalid(eps.key, "relative permittivity must be positive, got %g", eps.val)
		}
	}
	for d := 0; d < SpaceDim; d++ {
		if _, e := types.NewPolarizationBC(p.PBCFlagLo[d]); e != nil {
			invalid("P_BC_flag_lo", "component %d: %v", d, e)
		}
		if _, e := types.NewPolarizationBC(p.PBCFlagHi[d]); e != nil {
			invalid("P_BC_flag_hi", "component %d: %v", d, e)
		}
	}
	if p.HasRobinBC() && p.Lambda == 0 {
		invalid("lambda", "must be non-zero with a %s polarization boundary", types.P_Robin)
	}
	for _, reg := range []struct {
		name   string
		lo, hi [SpaceDim]float64
	}{
		{"DE", p.DElo, p.DEhi},
		{"FE", p.FElo, p.FEhi},
		{"SC", p.SClo, p.SChi},
	} {
		for d := 0; d < SpaceDim; d++ {
			if reg.hi[d] < reg.lo[d] {
				invalid(reg.name+"_hi", "component %d: %g is below %s_lo %g",
					d, reg.hi[d], reg.name, reg.lo[d])
			}
		}
	}
	return
}
