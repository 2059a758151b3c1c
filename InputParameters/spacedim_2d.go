//go:build dim2

package InputParameters

const SpaceDim = 2
