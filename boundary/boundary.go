package boundary

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/notargets/goferrox/InputParameters"
	"github.com/notargets/goferrox/geometry"
	"github.com/notargets/goferrox/types"
)

const SpaceDim = InputParameters.SpaceDim

var ErrPeriodicity = errors.New("boundary periodicity does not match the domain")

type PotentialBCKind uint8

const (
	Neumann PotentialBCKind = iota
	Dirichlet
	Periodic
)

var PotentialBCKindNames = map[PotentialBCKind]string{
	Neumann:   "neu",
	Dirichlet: "dir",
	Periodic:  "per",
}

func (k PotentialBCKind) String() string {
	if name, ok := PotentialBCKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("PotentialBCKind(%d)", uint8(k))
}

// PotentialBC is the electrostatic potential condition on one face.
// Value is the Dirichlet potential and unused otherwise.
type PotentialBC struct {
	Kind  PotentialBCKind
	Value float64
}

func (p PotentialBC) String() string {
	if p.Kind == Dirichlet {
		return fmt.Sprintf("dir(%g)", p.Value)
	}
	return p.Kind.String()
}

// ParsePotentialBC reads one of "dir(<value>)", "neu", "neumann", "per" or
// "periodic".
func ParsePotentialBC(tok string) (bc PotentialBC, err error) {
	tok = strings.ToLower(strings.TrimSpace(tok))
	switch {
	case tok == "neu" || tok == "neumann":
		bc.Kind = Neumann
	case tok == "per" || tok == "periodic":
		bc.Kind = Periodic
	case strings.HasPrefix(tok, "dir(") && strings.HasSuffix(tok, ")"):
		bc.Kind = Dirichlet
		if bc.Value, err = strconv.ParseFloat(tok[4:len(tok)-1], 64); err != nil {
			return bc, fmt.Errorf("potential BC %q: %w", tok, err)
		}
	default:
		err = fmt.Errorf("potential BC %q not one of dir(<value>), neu, per", tok)
	}
	return
}

// BoundaryConditions holds the potential conditions read from boundary.lo
// and boundary.hi and the polarization view of P_BC_flag_lo/hi.
type BoundaryConditions struct {
	PhiLo, PhiHi [SpaceDim]PotentialBC
	PLo, PHi     [SpaceDim]types.PolarizationBC
	Lambda       float64
}

func New(r *InputParameters.Reader, params *InputParameters.FerroXParameters) (bc *BoundaryConditions, err error) {
	bc = &BoundaryConditions{Lambda: params.Lambda}
	sub := r.Sub("boundary")
	for _, side := range []struct {
		key string
		dst *[SpaceDim]PotentialBC
	}{{"lo", &bc.PhiLo}, {"hi", &bc.PhiHi}} {
		toks, found, e := sub.QueryStringArr(side.key)
		if e != nil {
			err = multierr.Append(err, e)
			continue
		}
		if !found {
			continue
		}
		if len(toks) != SpaceDim {
			err = multierr.Append(err, &InputParameters.KeyError{Key: "boundary." + side.key,
				Err:    InputParameters.ErrBadLength,
				Detail: fmt.Sprintf("expected %d components, got %d", SpaceDim, len(toks))})
			continue
		}
		for d, tok := range toks {
			if side.dst[d], e = ParsePotentialBC(tok); e != nil {
				err = multierr.Append(err, &InputParameters.KeyError{Key: "boundary." + side.key,
					Err: InputParameters.ErrBadValue, Detail: e.Error()})
			}
		}
	}
	for d := 0; d < SpaceDim; d++ {
		var e error
		if bc.PLo[d], e = types.NewPolarizationBC(params.PBCFlagLo[d]); e != nil {
			err = multierr.Append(err, e)
		}
		if bc.PHi[d], e = types.NewPolarizationBC(params.PBCFlagHi[d]); e != nil {
			err = multierr.Append(err, e)
		}
		if (bc.PhiLo[d].Kind == Periodic) != (bc.PhiHi[d].Kind == Periodic) {
			err = multierr.Append(err, fmt.Errorf("%w: axis %d is periodic on one side only", ErrPeriodicity, d))
		}
	}
	if bc.hasRobin() && bc.Lambda == 0 {
		err = multierr.Append(err, &InputParameters.KeyError{Key: "lambda",
			Err: InputParameters.ErrInvalidParameter, Detail: "robin polarization boundary needs a non-zero lambda"})
	}
	if err != nil {
		return nil, err
	}
	return bc, nil
}

func (bc *BoundaryConditions) hasRobin() bool {
	for d := 0; d < SpaceDim; d++ {
		if bc.PLo[d] == types.P_Robin || bc.PHi[d] == types.P_Robin {
			return true
		}
	}
	return false
}

// CheckPeriodicity verifies that periodic potential faces sit on periodic
// domain axes and vice versa.
func (bc *BoundaryConditions) CheckPeriodicity(g *geometry.Geometry) (err error) {
	for d := 0; d < SpaceDim; d++ {
		per := bc.PhiLo[d].Kind == Periodic && bc.PhiHi[d].Kind == Periodic
		if per != g.Periodic(d) {
			err = multierr.Append(err, fmt.Errorf("%w: axis %d boundary %s/%s, domain.is_periodic %d",
				ErrPeriodicity, d, bc.PhiLo[d], bc.PhiHi[d], g.IsPeriodic[d]))
		}
	}
	return
}

func (bc *BoundaryConditions) Potential(d int, side types.Side) PotentialBC {
	if side == types.Lo {
		return bc.PhiLo[d]
	}
	return bc.PhiHi[d]
}

func (bc *BoundaryConditions) Polarization(d int, side types.Side) types.PolarizationBC {
	if side == types.Lo {
		return bc.PLo[d]
	}
	return bc.PHi[d]
}

// GhostPolarization returns the ghost cell value across face (d, side) given
// the adjacent interior value and the cell width dx. The face value is the
// average of the interior and ghost cells; Robin faces decay into the wall
// over the length lambda.
func (bc *BoundaryConditions) GhostPolarization(d int, side types.Side, pInterior, dx float64) float64 {
	switch bc.Polarization(d, side) {
	case types.P_Zero:
		return -pInterior
	case types.P_Robin:
		return pInterior * (2*bc.Lambda - dx) / (2*bc.Lambda + dx)
	default:
		return pInterior
	}
}
