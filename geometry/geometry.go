package geometry

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/multierr"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/goferrox/InputParameters"
	"github.com/notargets/goferrox/WarnManager"
	"github.com/notargets/goferrox/types"
	"github.com/notargets/goferrox/utils"
)

var ErrNotInitialized = errors.New("geometry not initialized")

// Warner receives warnings about the problem setup.
type Warner interface {
	RecordWarning(topic, text string, prio WarnManager.Priority)
}

type Geometry struct {
	ProbLo, ProbHi [SpaceDim]float64
	NCell          [SpaceDim]int
	MaxGridSize    int
	IsPeriodic     [SpaceDim]int

	dx      [SpaceDim]float64
	boxes   []*Box
	unitMap *utils.PartitionMap
}

// New reads the domain.* inputs. Boxes and materials are built by InitData.
func New(r *InputParameters.Reader) (g *Geometry, err error) {
	g = &Geometry{MaxGridSize: 32}
	dom := r.Sub("domain")
	err = multierr.Combine(
		dom.GetRealArr("prob_lo", g.ProbLo[:]),
		dom.GetRealArr("prob_hi", g.ProbHi[:]),
		dom.GetIntArr("n_cell", g.NCell[:]),
	)
	_, e := dom.QueryInt("max_grid_size", &g.MaxGridSize)
	err = multierr.Append(err, e)
	_, e = dom.QueryIntArr("is_periodic", g.IsPeriodic[:])
	err = multierr.Append(err, e)
	if err != nil {
		return nil, err
	}

	invalid := func(key, format string, args ...interface{}) {
		err = multierr.Append(err, &InputParameters.KeyError{Key: "domain." + key,
			Err: InputParameters.ErrInvalidParameter, Detail: fmt.Sprintf(format, args...)})
	}
	for d := 0; d < SpaceDim; d++ {
		if g.NCell[d] < 1 {
			invalid("n_cell", "component %d must be positive, got %d", d, g.NCell[d])
		}
		if g.ProbHi[d] <= g.ProbLo[d] {
			invalid("prob_hi", "component %d: %g must exceed prob_lo %g", d, g.ProbHi[d], g.ProbLo[d])
		}
		if g.IsPeriodic[d] != 0 && g.IsPeriodic[d] != 1 {
			invalid("is_periodic", "component %d must be 0 or 1, got %d", d, g.IsPeriodic[d])
		}
	}
	if g.MaxGridSize < 1 {
		invalid("max_grid_size", "must be positive, got %d", g.MaxGridSize)
	}
	if err != nil {
		return nil, err
	}
	ext := make([]float64, SpaceDim)
	floats.SubTo(ext, g.ProbHi[:], g.ProbLo[:])
	for d := 0; d < SpaceDim; d++ {
		g.dx[d] = ext[d] / float64(g.NCell[d])
	}
	return g, nil
}

func (g *Geometry) Initialized() bool { return g.boxes != nil }

// InitData chops the domain into boxes, spreads them over nUnits execution
// units and assigns a material to every cell from the region extents.
func (g *Geometry) InitData(params *InputParameters.FerroXParameters, nUnits int, warn Warner) error {
	defer utils.Region("Geometry::InitData")()
	if nUnits < 1 {
		return fmt.Errorf("geometry needs at least one execution unit, got %d", nUnits)
	}
	boxes := chop(g.NCell, g.MaxGridSize)
	g.unitMap = utils.NewPartitionMap(nUnits, len(boxes))
	for _, b := range boxes {
		b.Unit, _, _ = g.unitMap.GetBucket(b.ID)
	}
	if nUnits > len(boxes) {
		warn.RecordWarning("Geometry", fmt.Sprintf("%d execution units but only %d boxes; %d units will idle",
			nUnits, len(boxes), nUnits-len(boxes)), WarnManager.Low)
	}

	regions := newRegions(params)
	g.checkRegions(regions, warn)
	for _, b := range boxes {
		b.Material = make([]types.Material, b.NumCells())
		for i := range b.Material {
			x := g.cellCenter(b.CellIndex(i))
			for _, rg := range regions {
				if rg.contains(x[:]) {
					b.Material[i] = rg.mat
					break
				}
			}
		}
	}
	g.boxes = boxes
	return nil
}

func (g *Geometry) checkRegions(regions []region, warn Warner) {
	for i, rg := range regions {
		if rg.volume() == 0 {
			warn.RecordWarning("Geometry", fmt.Sprintf("%s region has zero volume and holds no cells", rg.mat),
				WarnManager.Low)
			continue
		}
		inside := g.domainRegion().overlap(rg)
		if inside < rg.volume()*(1-1.e-12) {
			warn.RecordWarning("Geometry", fmt.Sprintf("%s region %v -> %v extends outside the domain %v -> %v",
				rg.mat, rg.lo, rg.hi, g.ProbLo, g.ProbHi), WarnManager.Medium)
		}
		for _, other := range regions[i+1:] {
			if other.volume() == 0 {
				continue
			}
			if ov := rg.overlap(other); ov > 0 {
				warn.RecordWarning("Geometry", fmt.Sprintf("%s and %s regions overlap (volume %g); %s takes precedence",
					rg.mat, other.mat, ov, rg.mat), WarnManager.Medium)
			}
		}
	}
}

func (g *Geometry) domainRegion() region {
	return region{mat: types.M_None, lo: g.ProbLo[:], hi: g.ProbHi[:]}
}

func (g *Geometry) cellCenter(ijk [SpaceDim]int) (x [SpaceDim]float64) {
	for d := 0; d < SpaceDim; d++ {
		x[d] = g.ProbLo[d] + (float64(ijk[d])+0.5)*g.dx[d]
	}
	return
}

func (g *Geometry) CellSize() [SpaceDim]float64 { return g.dx }

func (g *Geometry) CellVolume() float64 {
	return floats.Prod(g.dx[:])
}

func (g *Geometry) CellCenter(b *Box, i int) [SpaceDim]float64 {
	return g.cellCenter(b.CellIndex(i))
}

func (g *Geometry) Periodic(d int) bool { return g.IsPeriodic[d] == 1 }

func (g *Geometry) Boxes() []*Box { return g.boxes }

func (g *Geometry) NumUnits() int {
	if g.unitMap == nil {
		return 0
	}
	return g.unitMap.ParallelDegree
}

// BoxesForUnit returns the contiguous run of boxes assigned to unit.
func (g *Geometry) BoxesForUnit(unit int) []*Box {
	if g.unitMap == nil || unit < 0 || unit >= g.unitMap.ParallelDegree {
		return nil
	}
	kMin, kMax := g.unitMap.GetBucketRange(unit)
	return g.boxes[kMin:kMax]
}

// LocalBoxIndex is the position of box among its unit's boxes.
func (g *Geometry) LocalBoxIndex(b *Box) int {
	k, _, _ := g.unitMap.GetLocalK(b.ID)
	return k
}

func (g *Geometry) MaterialAt(b *Box, i int) types.Material {
	return b.Material[i]
}

// RegionVolume is the total volume of the cells classified as m.
func (g *Geometry) RegionVolume(m types.Material) (float64, error) {
	if !g.Initialized() {
		return 0, ErrNotInitialized
	}
	var n int
	for _, b := range g.boxes {
		for _, cm := range b.Material {
			if cm == m {
				n++
			}
		}
	}
	return float64(n) * g.CellVolume(), nil
}

type region struct {
	mat    types.Material
	lo, hi []float64
}

// newRegions lists the material regions in precedence order.
func newRegions(p *InputParameters.FerroXParameters) []region {
	return []region{
		{mat: types.M_Ferroelectric, lo: p.FElo[:], hi: p.FEhi[:]},
		{mat: types.M_Dielectric, lo: p.DElo[:], hi: p.DEhi[:]},
		{mat: types.M_Semiconductor, lo: p.SClo[:], hi: p.SChi[:]},
	}
}

func (rg region) extent() []float64 {
	ext := make([]float64, len(rg.lo))
	floats.SubTo(ext, rg.hi, rg.lo)
	return ext
}

func (rg region) volume() float64 {
	ext := rg.extent()
	if floats.Min(ext) <= 0 {
		return 0
	}
	return floats.Prod(ext)
}

func (rg region) contains(x []float64) bool {
	if rg.volume() == 0 {
		return false
	}
	for d := range x {
		if x[d] < rg.lo[d] || x[d] > rg.hi[d] {
			return false
		}
	}
	return true
}

func (rg region) overlap(other region) float64 {
	ext := make([]float64, len(rg.lo))
	for d := range ext {
		ext[d] = math.Max(0, math.Min(rg.hi[d], other.hi[d])-math.Max(rg.lo[d], other.lo[d]))
	}
	return floats.Prod(ext)
}
