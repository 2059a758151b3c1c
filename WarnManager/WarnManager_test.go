package WarnManager

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestPriority(t *testing.T) {
	assert.Equal(t, "low", Low.String())
	assert.Equal(t, "medium", Medium.String())
	assert.Equal(t, "high", High.String())
	p, err := ParsePriority(" HIGH")
	assert.NoError(t, err)
	assert.Equal(t, High, p)
	_, err = ParsePriority("urgent")
	assert.Error(t, err)
}

func TestGlobalReport(t *testing.T) {
	{ // Topics A, B, A with different priorities stay three entries
		wm := NewWarnManager(1)
		wm.RecordWarning(0, "A", "first", Low)
		wm.RecordWarning(0, "B", "second", High)
		wm.RecordWarning(0, "A", "third", Medium)
		recs := wm.GlobalRecords()
		require.Len(t, recs, 3)
		assert.Equal(t, "A", recs[0].Topic)
		assert.Equal(t, Low, recs[0].Priority)
		assert.Equal(t, "B", recs[1].Topic)
		assert.Equal(t, High, recs[1].Priority)
		assert.Equal(t, "A", recs[2].Topic)
		assert.Equal(t, Medium, recs[2].Priority)

		out := wm.PrintGlobalWarnings("end")
		assert.Contains(t, out, "GLOBAL WARNINGS [end]")
		assert.Equal(t, 3, strings.Count(out, "* --> "))
		assert.Contains(t, out, "[!  high  ] [B]")
		assert.Len(t, wm.GlobalRecords(), 0)
	}
	{ // N concurrent units with distinct topics give N records
		const N = 16
		wm := NewWarnManager(N)
		var wg sync.WaitGroup
		for u := 0; u < N; u++ {
			wg.Add(1)
			go func(u int) {
				defer wg.Done()
				wm.RecordWarning(u, fmt.Sprintf("topic%d", u), "raised", Medium)
			}(u)
		}
		wg.Wait()
		recs := wm.GlobalRecords()
		require.Len(t, recs, N)
		seen := make(map[string]bool)
		for _, rec := range recs {
			seen[rec.Topic] = true
			assert.Equal(t, int64(1), rec.Counter)
			assert.Len(t, rec.Units, 1)
		}
		assert.Len(t, seen, N)
	}
	{ // Concurrent writers on one unit lose nothing
		wm := NewWarnManager(2)
		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				wm.RecordWarning(1, "spin", fmt.Sprintf("msg %d", i%10), Low)
			}(i)
		}
		wg.Wait()
		recs := wm.GlobalRecords()
		require.Len(t, recs, 10)
		var total int64
		for _, rec := range recs {
			total += rec.Counter
		}
		assert.Equal(t, int64(100), total)
	}
	{ // The same warning everywhere is raised by ALL
		wm := NewWarnManager(3)
		for u := 0; u < 3; u++ {
			wm.RecordWarning(u, "grid", "coarse", Low)
		}
		wm.RecordWarning(2, "grid", "only here", Low)
		recs := wm.GlobalRecords()
		require.Len(t, recs, 2)
		assert.Equal(t, []int{0, 1, 2}, recs[0].Units)
		assert.Equal(t, int64(3), recs[0].Counter)
		out := wm.PrintGlobalWarnings("init")
		assert.Contains(t, out, "@ Raised by: ALL")
		assert.Contains(t, out, "@ Raised by: 2\n")
		assert.Contains(t, out, "[raised 3 times]")
	}
}

func TestLocalReport(t *testing.T) {
	wm := NewWarnManager(2)
	wm.RecordWarning(1, "solver", "slow convergence", High)
	wm.RecordWarning(1, "io", "plotfile skipped", Low)
	wm.RecordWarning(0, "host", "not on unit 1", Low)
	assert.Equal(t, 2, wm.Pending(1))

	out := wm.PrintLocalWarnings(1, "phaseA")
	assert.Contains(t, out, "phaseA")
	assert.Contains(t, out, "[solver]")
	assert.Contains(t, out, "slow convergence")
	assert.Contains(t, out, "high")
	assert.Contains(t, out, "[io]")
	assert.Contains(t, out, "low")
	assert.NotContains(t, out, "not on unit 1")
	assert.Equal(t, 0, wm.Pending(1))

	out = wm.PrintLocalWarnings(1, "phaseB")
	assert.Contains(t, out, "No recorded warnings")

	// Local reports do not consume the global view
	assert.Len(t, wm.GlobalRecords(), 3)
	assert.Panics(t, func() { wm.RecordWarning(2, "x", "y", Low) })
}

func TestWriteYAML(t *testing.T) {
	wm := NewWarnManager(2)
	wm.RecordWarning(0, "A", "first", Low)
	wm.RecordWarning(1, "A", "first", Low)
	var buf bytes.Buffer
	require.NoError(t, wm.WriteYAML(&buf, "final"))
	var rep struct {
		When     string `yaml:"when"`
		Warnings []struct {
			Topic    string `yaml:"topic"`
			Priority string `yaml:"priority"`
			Count    int    `yaml:"count"`
			Units    []int  `yaml:"units"`
		} `yaml:"warnings"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &rep))
	assert.Equal(t, "final", rep.When)
	require.Len(t, rep.Warnings, 1)
	assert.Equal(t, "low", rep.Warnings[0].Priority)
	assert.Equal(t, 2, rep.Warnings[0].Count)
	assert.Equal(t, []int{0, 1}, rep.Warnings[0].Units)
	// Exporting is not a report; records remain
	assert.Len(t, wm.GlobalRecords(), 1)
}
