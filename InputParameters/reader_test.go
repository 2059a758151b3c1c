package InputParameters

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader(t *testing.T) {
	inputs := []byte(`
# run control
nsteps = 50   # overrides the default
dt = 1.e-13
tag = "hzo"
domain.n_cell = 64 64 32
domain.prob_lo = -1.e-7 -1.e-7 0.
bad_int = 3.5
padded = 010
padded_arr = 08 010 +3
hex = 0x10
`)
	r, err := NewReaderFromBytes(inputs, "properties")
	require.NoError(t, err)
	{ // Scalars
		n, err := r.GetInt("nsteps")
		assert.NoError(t, err)
		assert.Equal(t, 50, n)
		dt, err := r.GetReal("dt")
		assert.NoError(t, err)
		assert.Equal(t, 1.e-13, dt)
		tag, err := r.GetString("tag")
		assert.NoError(t, err)
		assert.Equal(t, "hzo", tag)
	}
	{ // Keys are case insensitive
		n, err := r.GetInt("NSTEPS")
		assert.NoError(t, err)
		assert.Equal(t, 50, n)
	}
	{ // Missing and malformed values
		_, err := r.GetReal("epsilon_0")
		assert.True(t, errors.Is(err, ErrMissingKey))
		var ke *KeyError
		require.True(t, errors.As(err, &ke))
		assert.Equal(t, "epsilon_0", ke.Key)

		_, err = r.GetInt("bad_int")
		assert.True(t, errors.Is(err, ErrBadValue))

		_, err = r.GetInt("domain.n_cell")
		assert.True(t, errors.Is(err, ErrBadLength))
	}
	{ // Integers are always decimal
		n, err := r.GetInt("padded")
		assert.NoError(t, err)
		assert.Equal(t, 10, n)
		arr := make([]int, 3)
		_, err = r.QueryIntArr("padded_arr", arr)
		assert.NoError(t, err)
		assert.Equal(t, []int{8, 10, 3}, arr)
		_, err = r.GetInt("hex")
		assert.True(t, errors.Is(err, ErrBadValue))
	}
	{ // Query leaves the destination alone when absent
		v := 7
		found, err := r.QueryInt("plot_int", &v)
		assert.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, 7, v)
	}
	{ // Arrays
		nCell := make([]int, 3)
		found, err := r.QueryIntArr("domain.n_cell", nCell)
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []int{64, 64, 32}, nCell)

		short := []int{1, 2}
		_, err = r.QueryIntArr("domain.n_cell", short)
		assert.True(t, errors.Is(err, ErrBadLength))
		assert.Contains(t, err.Error(), "expected 2 components, got 3")
		assert.Equal(t, []int{1, 2}, short)

		toks, found, err := r.QueryStringArr("domain.prob_lo")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []string{"-1.e-7", "-1.e-7", "0."}, toks)
	}
	{ // Sub readers resolve under their prefix
		dom := r.Sub("domain")
		assert.True(t, dom.Has("n_cell"))
		assert.False(t, dom.Has("nsteps"))
		assert.ElementsMatch(t, []string{"n_cell", "prob_lo"}, dom.Keys())
	}
	{ // Command line overrides win
		require.NoError(t, r.Override([]string{"nsteps=5", "domain.n_cell = 8 8 8"}))
		n, _ := r.GetInt("nsteps")
		assert.Equal(t, 5, n)
		nCell := make([]int, 3)
		_, err := r.Sub("domain").QueryIntArr("n_cell", nCell)
		assert.NoError(t, err)
		assert.Equal(t, []int{8, 8, 8}, nCell)
		assert.Error(t, r.Override([]string{"nsteps"}))
	}
}

func TestReaderSources(t *testing.T) {
	{ // In-memory values, including typed slices
		r := NewReaderFromMap(map[string]interface{}{
			"dt":           1.e-12,
			"P_BC_flag_lo": []int{0, 1, 2},
		})
		dt, err := r.GetReal("dt")
		assert.NoError(t, err)
		assert.Equal(t, 1.e-12, dt)
		flags := make([]int, 3)
		_, err = r.QueryIntArr("P_BC_flag_lo", flags)
		assert.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2}, flags)
	}
	{ // YAML lists are taken element-wise
		r, err := NewReaderFromBytes([]byte("DE_lo: [0., 1.5, -2.]\nnsteps: 3\n"), "yaml")
		require.NoError(t, err)
		lo := make([]float64, 3)
		_, err = r.QueryRealArr("DE_lo", lo)
		assert.NoError(t, err)
		assert.Equal(t, []float64{0, 1.5, -2}, lo)
	}
	{ // Files without a known extension are read as inputs files
		assert.Equal(t, "properties", FormatFromPath("run/inputs"))
		assert.Equal(t, "yaml", FormatFromPath("run/inputs.yaml"))
		path := filepath.Join(t.TempDir(), "inputs")
		require.NoError(t, os.WriteFile(path, []byte("nsteps = 12\n"), 0644))
		r, err := NewReaderFromFile(path)
		require.NoError(t, err)
		n, err := r.GetInt("nsteps")
		assert.NoError(t, err)
		assert.Equal(t, 12, n)

		_, err = NewReaderFromFile(filepath.Join(t.TempDir(), "missing"))
		assert.Error(t, err)
	}
}
