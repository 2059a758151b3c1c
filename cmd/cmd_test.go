package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/magiconair/properties/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/notargets/goferrox/InputParameters"
)

func vec(a, b string) string {
	return strings.Repeat(a+" ", InputParameters.SpaceDim-1) + b
}

func writeInputs(t *testing.T) string {
	fileInput := strings.Join([]string{`
# HZO on silicon
TimeIntegratorOrder = 2
prob_type = 2
epsilon_0 = 8.85e-12
epsilonX_fe = 24.0
epsilonZ_fe = 24.0
epsilon_de = 10.0
epsilon_si = 11.7
alpha = -2.5e9
beta = 6.0e10
gamma = 1.5e11
alpha_12 = 0.0
alpha_112 = 0.0
alpha_123 = 0.0
BigGamma = 100
g11 = 1.0e-9
g44 = 1.0e-9
g12 = 0.0
g44_p = 0.0
lambda = 3.0e-9
dt = 1.0e-13
nsteps = 20
domain.max_grid_size = 4`,
		"domain.prob_lo = " + vec("0.", "0."),
		"domain.prob_hi = " + vec("1.e-8", "1.2e-8"),
		"domain.n_cell = " + vec("4", "12"),
		"boundary.lo = " + vec("neu", "dir(0.0)"),
		"boundary.hi = " + vec("neu", "dir(1.0)"),
		"SC_lo = " + vec("0.", "0."),
		"SC_hi = " + vec("1.e-8", "4.e-9"),
		"DE_lo = " + vec("0.", "4.e-9"),
		"DE_hi = " + vec("1.e-8", "5.e-9"),
		"FE_lo = " + vec("0.", "5.e-9"),
		"FE_hi = " + vec("1.e-8", "1.2e-8"),
		"P_BC_flag_lo = " + vec("2", "0"),
		"P_BC_flag_hi = " + vec("2", "1"),
	}, "\n")
	path := filepath.Join(t.TempDir(), "inputs")
	require.NoError(t, os.WriteFile(path, []byte(fileInput), 0644))
	return path
}

func TestRunFerroX(t *testing.T) {
	inputs := writeInputs(t)
	warnFile := filepath.Join(t.TempDir(), "warnings.yaml")
	var out bytes.Buffer
	err := RunFerroX(context.Background(), &RunOptions{
		InputFile:    inputs,
		Overrides:    []string{"steps=3"},
		Units:        3,
		WarningsYAML: warnFile,
	}, &out)
	require.NoError(t, err)
	report := out.String()
	assert.Equal(t, strings.Contains(report, "GLOBAL WARNINGS [after InitData]"), true)
	assert.Equal(t, strings.Contains(report, "GLOBAL WARNINGS [after run]"), true)
	assert.Equal(t, strings.Contains(report, "Step 3:"), true)
	assert.Equal(t, strings.Contains(report, "FerroX::InitData"), true)

	data, err := os.ReadFile(warnFile)
	require.NoError(t, err)
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var whens []string
	for {
		var doc struct {
			When string `yaml:"when"`
		}
		if dec.Decode(&doc) != nil {
			break
		}
		whens = append(whens, doc.When)
	}
	assert.Equal(t, whens, []string{"after InitData", "after run"})

	err = RunFerroX(context.Background(), &RunOptions{
		InputFile: inputs,
		Overrides: []string{"epsilon_0=-1"},
		Units:     1,
	}, &out)
	assert.Equal(t, err != nil, true)
	assert.Matches(t, err.Error(), "epsilon_0")
}

func TestPrintParams(t *testing.T) {
	inputs := writeInputs(t)
	{
		var out bytes.Buffer
		require.NoError(t, PrintParams(&ParamsOptions{InputFile: inputs}, &out))
		assert.Matches(t, out.String(), `\[20\]\s+= nsteps`)
	}
	{
		var out bytes.Buffer
		require.NoError(t, PrintParams(&ParamsOptions{InputFile: inputs, YAML: true,
			Overrides: []string{"plot_int=5"}}, &out))
		var snap map[string]interface{}
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &snap))
		assert.Equal(t, snap["plot_int"], 5)
		assert.Equal(t, snap["TimeIntegratorOrder"], 2)
	}
	{
		var out bytes.Buffer
		require.NoError(t, PrintParams(&ParamsOptions{InputFile: inputs, Preamble: true, UseFloat32: true}, &out))
		assert.Matches(t, out.String(), `typedef float real_t;`)
		assert.Matches(t, out.String(), `#define FX_NSTEPS 20`)
	}
	{
		err := PrintParams(&ParamsOptions{InputFile: inputs, Overrides: []string{"nsteps"}}, &bytes.Buffer{})
		assert.Equal(t, err != nil, true)
	}
}
