package WarnManager

import (
	"fmt"
	"strings"
)

type Priority uint8

const (
	Low Priority = iota
	Medium
	High
)

var PriorityNames = map[Priority]string{
	Low:    "low",
	Medium: "medium",
	High:   "high",
}

func (p Priority) String() string {
	if name, ok := PriorityNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Priority(%d)", uint8(p))
}

func (p Priority) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

func ParsePriority(label string) (Priority, error) {
	label = strings.ToLower(strings.TrimSpace(label))
	for p, name := range PriorityNames {
		if name == label {
			return p, nil
		}
	}
	return Low, fmt.Errorf("unknown warning priority %q", label)
}

// Record is one distinct warning. Identical topic, message and priority
// raised repeatedly share a Record and bump Counter.
type Record struct {
	Topic    string   `yaml:"topic"`
	Message  string   `yaml:"message"`
	Priority Priority `yaml:"priority"`
	Counter  int64    `yaml:"count"`
	Units    []int    `yaml:"units,omitempty"` // Set on gathered records only
}

type recordKey struct {
	topic, msg string
	prio       Priority
}

func (r *Record) key() recordKey {
	return recordKey{r.Topic, r.Message, r.Priority}
}

// recordList keeps records in arrival order, merging duplicates.
type recordList struct {
	records []Record
	index   map[recordKey]int
}

func (rl *recordList) add(rec Record) *Record {
	if rl.index == nil {
		rl.index = make(map[recordKey]int)
	}
	if i, ok := rl.index[rec.key()]; ok {
		rl.records[i].Counter += rec.Counter
		return &rl.records[i]
	}
	rl.index[rec.key()] = len(rl.records)
	rl.records = append(rl.records, rec)
	return &rl.records[len(rl.records)-1]
}

func (rl *recordList) reset() {
	rl.records = nil
	rl.index = nil
}
