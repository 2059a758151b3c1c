package WarnManager

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/notargets/goferrox/utils"
)

// IOUnit is the execution unit that owns global reports.
const IOUnit = 0

// WarnManager collects warnings raised by any number of execution units.
// Recording is safe from concurrent goroutines; each unit has its own lock.
type WarnManager struct {
	units    []*unitLog
	reportMu sync.Mutex
}

type unitLog struct {
	mu      sync.Mutex
	all     recordList // Everything since the last global report
	pending recordList // Everything since the last local report
}

func NewWarnManager(nUnits int) *WarnManager {
	if nUnits < 1 {
		nUnits = 1
	}
	wm := &WarnManager{units: make([]*unitLog, nUnits)}
	for u := range wm.units {
		wm.units[u] = &unitLog{}
	}
	return wm
}

func (wm *WarnManager) NumUnits() int { return len(wm.units) }

func (wm *WarnManager) unit(u int) *unitLog {
	if u < 0 || u >= len(wm.units) {
		panic(fmt.Sprintf("warning unit %d out of range [0,%d)", u, len(wm.units)))
	}
	return wm.units[u]
}

func (wm *WarnManager) RecordWarning(unit int, topic, text string, prio Priority) {
	ul := wm.unit(unit)
	rec := Record{Topic: topic, Message: text, Priority: prio, Counter: 1}
	ul.mu.Lock()
	ul.all.add(rec)
	ul.pending.add(rec)
	ul.mu.Unlock()
}

// Pending returns the number of distinct records unit holds for its next
// local report.
func (wm *WarnManager) Pending(unit int) int {
	ul := wm.unit(unit)
	ul.mu.Lock()
	defer ul.mu.Unlock()
	return len(ul.pending.records)
}

// PrintLocalWarnings renders the records raised on unit since its previous
// local report and starts a new reporting window for it.
func (wm *WarnManager) PrintLocalWarnings(unit int, when string) string {
	defer utils.Region("WarnManager::PrintLocalWarnings")()
	ul := wm.unit(unit)
	ul.mu.Lock()
	recs := ul.pending.records
	ul.pending.reset()
	ul.mu.Unlock()
	return render(fmt.Sprintf("LOCAL WARNINGS (unit %d)", unit), when, recs, 0)
}

// PrintGlobalWarnings gathers every unit's records onto the IO unit, merges
// them, renders the result and clears all units.
func (wm *WarnManager) PrintGlobalWarnings(when string) string {
	defer utils.Region("WarnManager::PrintGlobalWarnings")()
	wm.reportMu.Lock()
	defer wm.reportMu.Unlock()
	recs := wm.gather(true)
	return render("GLOBAL WARNINGS", when, recs, len(wm.units))
}

// GlobalRecords is the merged view PrintGlobalWarnings would render, without
// clearing anything.
func (wm *WarnManager) GlobalRecords() []Record {
	wm.reportMu.Lock()
	defer wm.reportMu.Unlock()
	return wm.gather(false)
}

type report struct {
	When     string   `yaml:"when"`
	Units    int      `yaml:"units"`
	Warnings []Record `yaml:"warnings"`
}

func (wm *WarnManager) WriteYAML(w io.Writer, when string) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report{When: when, Units: wm.NumUnits(), Warnings: wm.GlobalRecords()}); err != nil {
		return fmt.Errorf("encode warnings: %w", err)
	}
	return enc.Close()
}

type unitRecord struct {
	unit int
	rec  Record
}

func (wm *WarnManager) gather(clear bool) []Record {
	var (
		np = len(wm.units)
		mb = utils.NewMailBox[unitRecord](np)
		wg sync.WaitGroup
	)
	wg.Add(np)
	for u := 0; u < np; u++ {
		go func(u int) {
			defer wg.Done()
			ul := wm.units[u]
			ul.mu.Lock()
			for _, rec := range ul.all.records {
				mb.PostMessage(u, IOUnit, unitRecord{unit: u, rec: rec})
			}
			if clear {
				ul.all.reset()
				ul.pending.reset()
			}
			ul.mu.Unlock()
			mb.DeliverMyMessages(u)
		}(u)
	}
	wg.Wait()
	mb.ReceiveMyMessages(IOUnit)
	defer mb.ClearMyMessages(IOUnit)

	incoming := mb.ReceiveMsgQs[IOUnit].Cells()
	sort.SliceStable(incoming, func(i, j int) bool { return incoming[i].unit < incoming[j].unit })
	var merged recordList
	for _, ur := range incoming {
		rec := ur.rec
		rec.Units = nil
		m := merged.add(rec)
		if len(m.Units) == 0 || m.Units[len(m.Units)-1] != ur.unit {
			m.Units = append(m.Units, ur.unit)
		}
	}
	return merged.records
}

// render formats a report; nUnits > 0 adds the raising units to each record.
func render(title, when string, recs []Record, nUnits int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**** %s [%s] ****\n", title, when))
	if len(recs) == 0 {
		sb.WriteString("* No recorded warnings.\n")
	}
	for _, rec := range recs {
		sb.WriteString(fmt.Sprintf("* --> [!  %-6s] [%s] [raised %d time", rec.Priority, rec.Topic, rec.Counter))
		if rec.Counter != 1 {
			sb.WriteString("s")
		}
		sb.WriteString("]\n")
		for _, line := range strings.Split(rec.Message, "\n") {
			sb.WriteString("*     " + line + "\n")
		}
		if nUnits > 0 {
			sb.WriteString("*     @ Raised by: " + unitList(rec.Units, nUnits) + "\n")
		}
	}
	sb.WriteString("****\n")
	return sb.String()
}

// unitList prints the raising units, or ALL when every unit raised the record.
func unitList(units []int, nUnits int) string {
	if nUnits > 0 && len(units) == nUnits {
		return "ALL"
	}
	labels := make([]string, len(units))
	for i, u := range units {
		labels[i] = strconv.Itoa(u)
	}
	return strings.Join(labels, " ")
}
