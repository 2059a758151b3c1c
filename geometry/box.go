package geometry

import (
	"github.com/notargets/goferrox/InputParameters"
	"github.com/notargets/goferrox/types"
)

const SpaceDim = InputParameters.SpaceDim

// Box is a logically rectangular block of cells owned by one execution unit.
// Lo and Hi are inclusive global cell indices. Cells are stored with the
// first axis varying fastest.
type Box struct {
	ID       int
	Unit     int
	Lo, Hi   [SpaceDim]int
	Material []types.Material
}

func (b *Box) Size(d int) int {
	return b.Hi[d] - b.Lo[d] + 1
}

func (b *Box) NumCells() (n int) {
	n = 1
	for d := 0; d < SpaceDim; d++ {
		n *= b.Size(d)
	}
	return
}

// CellIndex converts a box-local flat index into global cell indices.
func (b *Box) CellIndex(i int) (ijk [SpaceDim]int) {
	for d := 0; d < SpaceDim; d++ {
		sz := b.Size(d)
		ijk[d] = b.Lo[d] + i%sz
		i /= sz
	}
	return
}

// LocalIndex is the inverse of CellIndex; ok is false outside the box.
func (b *Box) LocalIndex(ijk [SpaceDim]int) (i int, ok bool) {
	stride := 1
	for d := 0; d < SpaceDim; d++ {
		if ijk[d] < b.Lo[d] || ijk[d] > b.Hi[d] {
			return 0, false
		}
		i += (ijk[d] - b.Lo[d]) * stride
		stride *= b.Size(d)
	}
	return i, true
}

// chop splits the index space [0,nCell) into boxes no wider than maxSize.
func chop(nCell [SpaceDim]int, maxSize int) (boxes []*Box) {
	var starts [SpaceDim][]int
	for d := 0; d < SpaceDim; d++ {
		for s := 0; s < nCell[d]; s += maxSize {
			starts[d] = append(starts[d], s)
		}
	}
	var walk func(d int, lo, hi [SpaceDim]int)
	walk = func(d int, lo, hi [SpaceDim]int) {
		if d < 0 {
			boxes = append(boxes, &Box{ID: len(boxes), Lo: lo, Hi: hi})
			return
		}
		for _, s := range starts[d] {
			lo[d] = s
			hi[d] = s + maxSize - 1
			if hi[d] > nCell[d]-1 {
				hi[d] = nCell[d] - 1
			}
			walk(d-1, lo, hi)
		}
	}
	walk(SpaceDim-1, [SpaceDim]int{}, [SpaceDim]int{})
	return
}
