package InputParameters

import (
	"fmt"
	"strconv"
	"strings"
)

// KernelPreamble renders the namespace as preprocessor definitions so device
// kernels see the same read-only values as host code. Every macro carries
// the FX_ prefix.
func (p *FerroXParameters) KernelPreamble(useFloat32 bool) string {
	var sb strings.Builder

	floatTypeStr := "double"
	if useFloat32 {
		floatTypeStr = "float"
	}
	realStr := func(v float64) string {
		if useFloat32 {
			return strconv.FormatFloat(v, 'e', -1, 32) + "f"
		}
		return strconv.FormatFloat(v, 'e', -1, 64)
	}

	sb.WriteString("// FerroX parameter namespace\n")
	sb.WriteString(fmt.Sprintf("#define FX_SPACEDIM %d\n", SpaceDim))
	sb.WriteString(fmt.Sprintf("typedef %s real_t;\n", floatTypeStr))
	sb.WriteString("\n")

	for _, iv := range []struct {
		name string
		val  int
	}{
		{"NSTEPS", p.NSteps},
		{"PLOT_INT", p.PlotInt},
		{"MLMG_VERBOSITY", p.MLMGVerbosity},
		{"TIME_INTEGRATOR_ORDER", p.TimeIntegratorOrder},
		{"PROB_TYPE", p.ProbType},
		{"INC_STEP_SIGN_CHANGE", p.IncStepSignChange},
	} {
		sb.WriteString(fmt.Sprintf("#define FX_%s %d\n", iv.name, iv.val))
	}
	for _, rv := range []struct {
		name string
		val  float64
	}{
		{"DT", p.Dt}, {"DELTA", p.Delta},
		{"EPSILON_0", p.Epsilon0}, {"EPSILONX_FE", p.EpsilonXFE},
		{"EPSILONZ_FE", p.EpsilonZFE}, {"EPSILON_DE", p.EpsilonDE},
		{"EPSILON_SI", p.EpsilonSI},
		{"ALPHA", p.Alpha}, {"BETA", p.Beta}, {"GAMMA", p.Gamma},
		{"ALPHA_12", p.Alpha12}, {"ALPHA_112", p.Alpha112}, {"ALPHA_123", p.Alpha123},
		{"BIGGAMMA", p.BigGamma},
		{"G11", p.G11}, {"G44", p.G44}, {"G12", p.G12}, {"G44_P", p.G44p},
		{"LAMBDA", p.Lambda},
		{"NC", p.Nc}, {"NV", p.Nv}, {"EC", p.Ec}, {"EV", p.Ev},
		{"Q", p.Q}, {"KB", p.Kb}, {"T", p.T},
	} {
		sb.WriteString(fmt.Sprintf("#define FX_%s %s\n", rv.name, realStr(rv.val)))
	}
	sb.WriteString("\n")

	for d := 0; d < SpaceDim; d++ {
		sb.WriteString(fmt.Sprintf("#define FX_DE_LO_%d %s\n", d, realStr(p.DElo[d])))
		sb.WriteString(fmt.Sprintf("#define FX_DE_HI_%d %s\n", d, realStr(p.DEhi[d])))
		sb.WriteString(fmt.Sprintf("#define FX_FE_LO_%d %s\n", d, realStr(p.FElo[d])))
		sb.WriteString(fmt.Sprintf("#define FX_FE_HI_%d %s\n", d, realStr(p.FEhi[d])))
		sb.WriteString(fmt.Sprintf("#define FX_SC_LO_%d %s\n", d, realStr(p.SClo[d])))
		sb.WriteString(fmt.Sprintf("#define FX_SC_HI_%d %s\n", d, realStr(p.SChi[d])))
		sb.WriteString(fmt.Sprintf("#define FX_P_BC_FLAG_LO_%d %d\n", d, p.PBCFlagLo[d]))
		sb.WriteString(fmt.Sprintf("#define FX_P_BC_FLAG_HI_%d %d\n", d, p.PBCFlagHi[d]))
	}
	return sb.String()
}
