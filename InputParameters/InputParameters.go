package InputParameters

import (
	"fmt"
	"io"

	"github.com/ghodss/yaml"
	"go.uber.org/multierr"

	"github.com/notargets/goferrox/types"
	"github.com/notargets/goferrox/utils"
)

// Silicon at 300K
const (
	SiliconNc = 2.8e25
	SiliconNv = 1.04e25
	SiliconEc = 0.56
	SiliconEv = -0.56
	ChargeQ   = 1.602e-19
	Boltzmann = 1.38e-23
	RoomTemp  = 300.
)

// FerroXParameters is the run-wide namespace of physical and control
// parameters. It is written once by Ingest and read-only afterwards; kernels
// receive it by value.
type FerroXParameters struct {
	// Run control
	NSteps              int     `json:"nsteps"`
	PlotInt             int     `json:"plot_int"`
	Dt                  float64 `json:"dt"`
	MLMGVerbosity       int     `json:"mlmg_verbosity"`
	TimeIntegratorOrder int     `json:"TimeIntegratorOrder"`
	ProbType            int     `json:"prob_type"`
	Delta               float64 `json:"delta"`
	IncStepSignChange   int     `json:"inc_step_sign_change"`

	// Material
	Epsilon0   float64 `json:"epsilon_0"`
	EpsilonXFE float64 `json:"epsilonX_fe"`
	EpsilonZFE float64 `json:"epsilonZ_fe"`
	EpsilonDE  float64 `json:"epsilon_de"`
	EpsilonSI  float64 `json:"epsilon_si"`
	Alpha      float64 `json:"alpha"`
	Beta       float64 `json:"beta"`
	Gamma      float64 `json:"gamma"`
	Alpha12    float64 `json:"alpha_12"`
	Alpha112   float64 `json:"alpha_112"`
	Alpha123   float64 `json:"alpha_123"`
	BigGamma   float64 `json:"BigGamma"`
	G11        float64 `json:"g11"`
	G44        float64 `json:"g44"`
	G12        float64 `json:"g12"`
	G44p       float64 `json:"g44_p"`
	Lambda     float64 `json:"lambda"`

	// Region extents
	DElo [SpaceDim]float64 `json:"DE_lo"`
	DEhi [SpaceDim]float64 `json:"DE_hi"`
	FElo [SpaceDim]float64 `json:"FE_lo"`
	FEhi [SpaceDim]float64 `json:"FE_hi"`
	SClo [SpaceDim]float64 `json:"SC_lo"`
	SChi [SpaceDim]float64 `json:"SC_hi"`

	PBCFlagLo [SpaceDim]int `json:"P_BC_flag_lo"`
	PBCFlagHi [SpaceDim]int `json:"P_BC_flag_hi"`

	// Semiconductor, never read from input
	Nc float64 `json:"Nc"`
	Nv float64 `json:"Nv"`
	Ec float64 `json:"Ec"`
	Ev float64 `json:"Ev"`
	Q  float64 `json:"q"`
	Kb float64 `json:"kb"`
	T  float64 `json:"T"`
}

func DefaultParameters() *FerroXParameters {
	p := &FerroXParameters{
		NSteps:            10,
		PlotInt:           -1,
		MLMGVerbosity:     1,
		Delta:             1.e-6,
		IncStepSignChange: -1,
	}
	p.setSemiconductorConstants()
	return p
}

// Ingest populates a fresh namespace from r. Every missing or malformed
// required key is reported in the returned error.
func Ingest(r *Reader) (*FerroXParameters, error) {
	p := DefaultParameters()
	if err := p.Ingest(r); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *FerroXParameters) Ingest(r *Reader) (err error) {
	defer utils.Region("InputParameters::Ingest")()
	var (
		required = func(key string, dst *float64) {
			v, e := r.GetReal(key)
			if e != nil {
				err = multierr.Append(err, e)
				return
			}
			*dst = v
		}
		requiredInt = func(key string, dst *int) {
			v, e := r.GetInt(key)
			if e != nil {
				err = multierr.Append(err, e)
				return
			}
			*dst = v
		}
		optional = func(found bool, e error) {
			err = multierr.Append(err, e)
		}
	)

	err = multierr.Append(err, queryBCFlags(r, "P_BC_flag_lo", &p.PBCFlagLo))
	err = multierr.Append(err, queryBCFlags(r, "P_BC_flag_hi", &p.PBCFlagHi))
	optional(r.QueryInt("inc_step_sign_change", &p.IncStepSignChange))

	requiredInt("TimeIntegratorOrder", &p.TimeIntegratorOrder)
	requiredInt("prob_type", &p.ProbType)

	required("epsilon_0", &p.Epsilon0)
	required("epsilonX_fe", &p.EpsilonXFE)
	required("epsilonZ_fe", &p.EpsilonZFE)
	required("epsilon_de", &p.EpsilonDE)
	required("epsilon_si", &p.EpsilonSI)
	required("alpha", &p.Alpha)
	required("beta", &p.Beta)
	required("gamma", &p.Gamma)
	required("alpha_12", &p.Alpha12)
	required("alpha_112", &p.Alpha112)
	required("alpha_123", &p.Alpha123)
	required("BigGamma", &p.BigGamma)
	required("g11", &p.G11)
	required("g44", &p.G44)
	required("g12", &p.G12)
	required("g44_p", &p.G44p)
	required("lambda", &p.Lambda)

	optional(r.QueryInt("mlmg_verbosity", &p.MLMGVerbosity))
	optional(r.QueryInt("nsteps", &p.NSteps))
	optional(r.QueryInt("plot_int", &p.PlotInt))
	required("dt", &p.Dt)
	optional(r.QueryReal("delta", &p.Delta))

	optional(r.QueryRealArr("DE_lo", p.DElo[:]))
	optional(r.QueryRealArr("DE_hi", p.DEhi[:]))
	optional(r.QueryRealArr("FE_lo", p.FElo[:]))
	optional(r.QueryRealArr("FE_hi", p.FEhi[:]))
	optional(r.QueryRealArr("SC_lo", p.SClo[:]))
	optional(r.QueryRealArr("SC_hi", p.SChi[:]))

	p.setSemiconductorConstants()
	return
}

// queryBCFlags accepts the numeric flags or their names, e.g. "zero robin 2".
func queryBCFlags(r *Reader, key string, dst *[SpaceDim]int) error {
	toks, found, err := r.QueryStringArr(key)
	if err != nil || !found {
		return err
	}
	if len(toks) != SpaceDim {
		return r.badLength(key, SpaceDim, len(toks))
	}
	var flags [SpaceDim]int
	for d, tok := range toks {
		bc, err := types.ParsePolarizationBC(tok)
		if err != nil {
			return r.badValue(key, tok, err)
		}
		flags[d] = int(bc)
	}
	*dst = flags
	return nil
}

func (p *FerroXParameters) setSemiconductorConstants() {
	p.Nc, p.Nv = SiliconNc, SiliconNv
	p.Ec, p.Ev = SiliconEc, SiliconEv
	p.Q, p.Kb, p.T = ChargeQ, Boltzmann, RoomTemp
}

// HasRobinBC is true when any polarization face uses the decay condition.
func (p *FerroXParameters) HasRobinBC() bool {
	for d := 0; d < SpaceDim; d++ {
		if types.PolarizationBC(p.PBCFlagLo[d]) == types.P_Robin ||
			types.PolarizationBC(p.PBCFlagHi[d]) == types.P_Robin {
			return true
		}
	}
	return false
}

// ToYAML snapshots the namespace using the input key names.
func (p *FerroXParameters) ToYAML() ([]byte, error) {
	return yaml.Marshal(p)
}

func (p *FerroXParameters) Print(w io.Writer) {
	fmt.Fprintf(w, "[%d]\t\t\t\t= SpaceDim\n", SpaceDim)
	fmt.Fprintf(w, "[%d]\t\t\t\t= Problem Type\n", p.ProbType)
	fmt.Fprintf(w, "[%d]\t\t\t\t= Time Integrator Order\n", p.TimeIntegratorOrder)
	fmt.Fprintf(w, "%8.5g\t\t= dt\n", p.Dt)
	fmt.Fprintf(w, "[%d]\t\t\t\t= nsteps\n", p.NSteps)
	fmt.Fprintf(w, "[%d]\t\t\t\t= plot_int\n", p.PlotInt)
	fmt.Fprintf(w, "%8.5g\t\t= delta\n", p.Delta)
	fmt.Fprintf(w, "%8.5g\t\t= epsilon_0\n", p.Epsilon0)
	fmt.Fprintf(w, "%8.5g %8.5g\t= epsilon fe (x, z)\n", p.EpsilonXFE, p.EpsilonZFE)
	fmt.Fprintf(w, "%8.5g %8.5g\t= epsilon de, si\n", p.EpsilonDE, p.EpsilonSI)
	fmt.Fprintf(w, "%8.5g %8.5g %8.5g\t= alpha, beta, gamma\n", p.Alpha, p.Beta, p.Gamma)
	fmt.Fprintf(w, "%8.5g %8.5g %8.5g\t= alpha_12, alpha_112, alpha_123\n", p.Alpha12, p.Alpha112, p.Alpha123)
	fmt.Fprintf(w, "%8.5g\t\t= BigGamma\n", p.BigGamma)
	fmt.Fprintf(w, "%8.5g %8.5g %8.5g %8.5g\t= g11, g44, g12, g44_p\n", p.G11, p.G44, p.G12, p.G44p)
	fmt.Fprintf(w, "%8.5g\t\t= lambda\n", p.Lambda)
	fmt.Fprintf(w, "%v -> %v\t= DE\n", p.DElo, p.DEhi)
	fmt.Fprintf(w, "%v -> %v\t= FE\n", p.FElo, p.FEhi)
	fmt.Fprintf(w, "%v -> %v\t= SC\n", p.SClo, p.SChi)
	fmt.Fprintf(w, "%v %v\t\t= P_BC_flag lo, hi\n", p.PBCFlagLo, p.PBCFlagHi)
}
