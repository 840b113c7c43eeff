package entity

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Priority is the risk level the detection engine assigned to a finding.
// Higher values are more severe.
type Priority int

const (
	PriorityNone Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

var priorityNames = map[Priority]string{
	PriorityNone:     "NONE",
	PriorityLow:      "LOW",
	PriorityMedium:   "MEDIUM",
	PriorityHigh:     "HIGH",
	PriorityCritical: "CRITICAL",
}

// Priorities lists every level, most severe first.
var Priorities = []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow, PriorityNone}

func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

// ParsePriority accepts a level name in any case.
func ParsePriority(name string) (Priority, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for p, n := range priorityNames {
		if n == upper {
			return p, nil
		}
	}
	return PriorityNone, fmt.Errorf("unknown priority %q", name)
}

func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Priority) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return fmt.Errorf("priority must be a string: %w", err)
	}
	parsed, err := ParsePriority(name)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
