package types

import (
	"fmt"
	"strconv"
	"strings"
)

// PolarizationBC selects how the polarization behaves on one side of one
// axis. The numeric values are the ones written in input files.
type PolarizationBC int

const (
	P_Zero         PolarizationBC = iota // P = 0
	P_Robin                              // dP/dn = P/lambda
	P_ZeroGradient                       // dP/dn = 0
)

var PolarizationBCNames = map[PolarizationBC]string{
	P_Zero:         "Zero",
	P_Robin:        "Robin",
	P_ZeroGradient: "ZeroGradient",
}

var PolarizationBCNameMap = map[string]PolarizationBC{
	"zero":          P_Zero,
	"fixed":         P_Zero,
	"robin":         P_Robin,
	"decay":         P_Robin,
	"zerogradient":  P_ZeroGradient,
	"zero_gradient": P_ZeroGradient,
	"neumann":       P_ZeroGradient,
}

func (bc PolarizationBC) String() string {
	if name, ok := PolarizationBCNames[bc]; ok {
		return name
	}
	return fmt.Sprintf("PolarizationBC(%d)", int(bc))
}

func (bc PolarizationBC) IsValid() bool {
	_, ok := PolarizationBCNames[bc]
	return ok
}

// NewPolarizationBC converts an input flag into a PolarizationBC.
func NewPolarizationBC(flag int) (PolarizationBC, error) {
	bc := PolarizationBC(flag)
	if !bc.IsValid() {
		return bc, fmt.Errorf("polarization BC flag %d not in {0: zero, 1: robin, 2: zero gradient}", flag)
	}
	return bc, nil
}

// ParsePolarizationBC accepts either a name from PolarizationBCNameMap or
// the numeric flag.
func ParsePolarizationBC(name string) (PolarizationBC, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	if bc, ok := PolarizationBCNameMap[label]; ok {
		return bc, nil
	}
	if flag, err := strconv.Atoi(label); err == nil {
		return NewPolarizationBC(flag)
	}
	return P_Zero, fmt.Errorf("unknown polarization BC %q", name)
}

// Side indexes the low and high faces of an axis.
type Side uint8

const (
	Lo Side = iota
	Hi
)

func (s Side) String() string {
	if s == Lo {
		return "lo"
	}
	return "hi"
}
