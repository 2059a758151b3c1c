package types

// Material identifies which layer of the device stack a cell belongs to.
type Material uint8

const (
	M_None Material = iota // outside every layer
	M_Dielectric
	M_Ferroelectric
	M_Semiconductor
)

var MaterialNames = map[Material]string{
	M_None:          "None",
	M_Dielectric:    "DE",
	M_Ferroelectric: "FE",
	M_Semiconductor: "SC",
}

func (m Material) String() string {
	if name, ok := MaterialNames[m]; ok {
		return name
	}
	return "Unknown"
}
