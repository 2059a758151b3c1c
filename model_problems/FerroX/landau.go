package FerroX

import (
	"fmt"

	"github.com/notargets/goferrox/InputParameters"
	"github.com/notargets/goferrox/WarnManager"
	"github.com/notargets/goferrox/geometry"
	"github.com/notargets/goferrox/types"
	"github.com/notargets/goferrox/utils"
)

// HomogeneousLK relaxes the polarization of every ferroelectric cell under
// the Landau-Khalatnikov equation without gradient or field terms:
//
//	dP/dt = -BigGamma * (2 alpha P + 4 beta P^3 + 6 gamma P^5)
type HomogeneousLK struct {
	P [][]float64 // Indexed by box ID, then box-local cell
}

func NewHomogeneousLK() *HomogeneousLK {
	return &HomogeneousLK{}
}

func (lk *HomogeneousLK) Setup(geom *geometry.Geometry, params InputParameters.FerroXParameters) error {
	boxes := geom.Boxes()
	lk.P = make([][]float64, len(boxes))
	for _, b := range boxes {
		lk.P[b.ID] = make([]float64, b.NumCells())
		for i, m := range b.Material {
			if m == types.M_Ferroelectric {
				lk.P[b.ID][i] = params.Delta
			}
		}
	}
	return nil
}

func (lk *HomogeneousLK) Step(kc *KernelContext) error {
	var (
		p         = &kc.Params
		P         = lk.P[kc.Box.ID]
		dt        = p.Dt
		nonFinite int
	)
	dPdt := func(P float64) float64 {
		P2 := P * P
		return -p.BigGamma * P * (2*p.Alpha + 4*p.Beta*P2 + 6*p.Gamma*P2*P2)
	}
	for i, m := range kc.Box.Material {
		if m != types.M_Ferroelectric {
			continue
		}
		switch p.TimeIntegratorOrder {
		case 1:
			P[i] += dt * dPdt(P[i])
		case 2:
			k1 := dPdt(P[i])
			k2 := dPdt(P[i] + dt*k1)
			P[i] += 0.5 * dt * (k1 + k2)
		default:
			return fmt.Errorf("time integrator order %d not supported", p.TimeIntegratorOrder)
		}
		if !utils.IsFinite(P[i]) {
			P[i] = 0
			nonFinite++
		}
	}
	if nonFinite > 0 {
		kc.RecordWarning("HomogeneousLK",
			fmt.Sprintf("%d non-finite polarization values in box %d reset to zero; reduce dt", nonFinite, kc.Box.ID),
			WarnManager.High)
	}
	return nil
}

// Mean returns the average polarization over the ferroelectric cells.
func (lk *HomogeneousLK) Mean(geom *geometry.Geometry) float64 {
	var (
		sum float64
		n   int
	)
	for _, b := range geom.Boxes() {
		for i, m := range b.Material {
			if m == types.M_Ferroelectric {
				sum += lk.P[b.ID][i]
				n++
			}
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
