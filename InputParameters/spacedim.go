//go:build !dim2

package InputParameters

// SpaceDim is the number of spatial dimensions the namespace arrays carry.
// Build with -tags dim2 for two dimensional runs.
const SpaceDim = 3
