package FerroX

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/notargets/goferrox/InputParameters"
	"github.com/notargets/goferrox/WarnManager"
	"github.com/notargets/goferrox/boundary"
	"github.com/notargets/goferrox/geometry"
	"github.com/notargets/goferrox/utils"
)

var (
	ErrAlreadyInitialized = errors.New("FerroX already initialized")
	ErrNotInitialized     = errors.New("FerroX not initialized")
	ErrDestroyed          = errors.New("FerroX destroyed")
)

type State uint8

const (
	Constructed State = iota
	Initialized
	Destroyed
)

func (s State) String() string {
	switch s {
	case Constructed:
		return "Constructed"
	case Initialized:
		return "Initialized"
	case Destroyed:
		return "Destroyed"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// FerroX is the application root. It owns the warning manager, the geometry
// and the boundary conditions, and holds the parameter namespace.
type FerroX struct {
	Params                InputParameters.FerroXParameters
	Timestep, TotalSteps  int
	AlwaysWarnImmediately bool
	NumUnits              int

	Warn *WarnManager.WarnManager
	Geom *geometry.Geometry
	BCs  *boundary.BoundaryConditions

	mu, echoMu          sync.Mutex
	state               State
	log                 *logrus.Logger
	localOut, globalOut io.Writer
	warningsYAML        io.Writer
	plotter             Plotter
}

type Option func(fx *FerroX)

// WithUnits sets the number of execution units; the default is one per CPU.
func WithUnits(n int) Option {
	return func(fx *FerroX) {
		if n > 0 {
			fx.NumUnits = n
		}
	}
}

func WithAlwaysWarnImmediately(on bool) Option {
	return func(fx *FerroX) { fx.AlwaysWarnImmediately = on }
}

func WithLocalOutput(w io.Writer) Option {
	return func(fx *FerroX) { fx.localOut = w }
}

func WithGlobalOutput(w io.Writer) Option {
	return func(fx *FerroX) { fx.globalOut = w }
}

// WithWarningsYAML adds a YAML document to w for every global report.
func WithWarningsYAML(w io.Writer) Option {
	return func(fx *FerroX) { fx.warningsYAML = w }
}

func WithLogger(log *logrus.Logger) Option {
	return func(fx *FerroX) { fx.log = log }
}

func WithPlotter(p Plotter) Option {
	return func(fx *FerroX) { fx.plotter = p }
}

func NewFerroX(r *InputParameters.Reader, opts ...Option) (fx *FerroX, err error) {
	defer utils.Region("FerroX::FerroX")()
	fx = &FerroX{
		NumUnits:  runtime.NumCPU(),
		log:       logrus.StandardLogger(),
		localOut:  os.Stdout,
		globalOut: os.Stdout,
	}
	for _, opt := range opts {
		opt(fx)
	}
	fx.Warn = WarnManager.NewWarnManager(fx.NumUnits)
	if err = fx.readData(r); err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	if fx.Geom, err = geometry.New(r); err != nil {
		return nil, fmt.Errorf("read geometry: %w", err)
	}
	if fx.BCs, err = boundary.New(r, &fx.Params); err != nil {
		return nil, fmt.Errorf("read boundary conditions: %w", err)
	}
	return fx, nil
}

func (fx *FerroX) readData(r *InputParameters.Reader) (err error) {
	params, err := InputParameters.Ingest(r)
	if err != nil {
		return err
	}
	if err = params.Validate(); err != nil {
		return err
	}
	fx.Params = *params

	fx.Timestep = 0
	fx.TotalSteps = fx.Params.NSteps
	if _, err = r.QueryInt("timestep", &fx.Timestep); err != nil {
		return err
	}
	if _, err = r.QueryInt("steps", &fx.TotalSteps); err != nil {
		return err
	}
	if fx.Timestep < 0 || fx.Timestep > fx.TotalSteps {
		return &InputParameters.KeyError{Key: "timestep", Err: InputParameters.ErrInvalidParameter,
			Detail: fmt.Sprintf("%d outside [0, steps = %d]", fx.Timestep, fx.TotalSteps)}
	}
	return nil
}

func (fx *FerroX) State() State {
	fx.mu.Lock()
	defer fx.mu.Unlock()
	return fx.state
}

// InitData builds the boxes and material map from the ingested parameters.
func (fx *FerroX) InitData() (err error) {
	defer utils.Region("FerroX::InitData")()
	fx.mu.Lock()
	defer fx.mu.Unlock()
	switch fx.state {
	case Initialized:
		return ErrAlreadyInitialized
	case Destroyed:
		return ErrDestroyed
	}
	if err = fx.Geom.InitData(&fx.Params, fx.NumUnits, fx); err != nil {
		return err
	}
	if err = fx.BCs.CheckPeriodicity(fx.Geom); err != nil {
		return err
	}
	fx.state = Initialized
	fx.log.Infof("FerroX: %d boxes on %d execution units, SpaceDim = %d",
		len(fx.Geom.Boxes()), fx.NumUnits, InputParameters.SpaceDim)
	return nil
}

// RecordWarning records on the host unit. With AlwaysWarnImmediately set the
// warning is also logged right away.
func (fx *FerroX) RecordWarning(topic, text string, prio WarnManager.Priority) {
	fx.RecordUnitWarning(WarnManager.IOUnit, topic, text, prio)
}

// RecordUnitWarning records a warning raised by code running on unit.
func (fx *FerroX) RecordUnitWarning(unit int, topic, text string, prio WarnManager.Priority) {
	defer utils.Region("FerroX::RecordWarning")()
	if fx.AlwaysWarnImmediately {
		fx.warnNow(fmt.Sprintf("!!!!!! WARNING: [%s][%s] %s", prio, topic, text))
	}
	fx.Warn.RecordWarning(unit, topic, text, prio)
}

// warnNow logs msg at warning level even when the logger is set to a
// higher level.
func (fx *FerroX) warnNow(msg string) {
	if fx.log.IsLevelEnabled(logrus.WarnLevel) {
		fx.log.Warn(msg)
		return
	}
	entry := logrus.NewEntry(fx.log)
	entry.Time = time.Now()
	entry.Level = logrus.WarnLevel
	entry.Message = msg
	b, err := fx.log.Formatter.Format(entry)
	if err != nil {
		return
	}
	fx.echoMu.Lock()
	defer fx.echoMu.Unlock()
	_, _ = fx.log.Out.Write(b)
}

// PrintLocalWarnings writes each unit's report of the warnings raised since
// its previous local report. Units without new warnings are skipped unless
// no unit has any.
func (fx *FerroX) PrintLocalWarnings(when string) {
	defer utils.Region("FerroX::PrintLocalWarnings")()
	var printed bool
	for u := 0; u < fx.Warn.NumUnits(); u++ {
		if fx.Warn.Pending(u) == 0 {
			continue
		}
		fmt.Fprint(fx.localOut, fx.Warn.PrintLocalWarnings(u, when))
		printed = true
	}
	if !printed {
		fmt.Fprint(fx.localOut, fx.Warn.PrintLocalWarnings(WarnManager.IOUnit, when))
	}
}

func (fx *FerroX) PrintGlobalWarnings(when string) {
	defer utils.Region("FerroX::PrintGlobalWarnings")()
	if fx.warningsYAML != nil {
		fmt.Fprintln(fx.warningsYAML, "---")
		if err := fx.Warn.WriteYAML(fx.warningsYAML, when); err != nil {
			fx.log.Errorf("FerroX: %v", err)
		}
	}
	fmt.Fprint(fx.globalOut, fx.Warn.PrintGlobalWarnings(when))
}

func (fx *FerroX) Destroy() {
	fx.mu.Lock()
	defer fx.mu.Unlock()
	fx.state = Destroyed
}
