package riskposture

import (
	"fmt"
	"io"
	"strings"

	"kscan/pkg/entity"
)

// RiskPosture counts findings per priority over a whole run.
type RiskPosture struct {
	counts map[entity.Priority]int
}

// NewRiskPosture creates an empty RiskPosture.
func NewRiskPosture() *RiskPosture {
	return &RiskPosture{counts: map[entity.Priority]int{}}
}

// Count adds findings to the posture.
func Count[T entity.Finding](rp *RiskPosture, findings []T) {
	for _, f := range findings {
		rp.counts[f.Base().Priority]++
	}
}

// CountPods adds every container of pods to the posture.
func (rp *RiskPosture) CountPods(pods []entity.Pod) {
	for _, pod := range pods {
		Count(rp, pod.Containers)
	}
}

// CountRiskLevels returns the number of findings at priority p.
func (rp *RiskPosture) CountRiskLevels(p entity.Priority) int {
	return rp.counts[p]
}

// Total returns the number of counted findings.
func (rp *RiskPosture) Total() int {
	total := 0
	for _, n := range rp.counts {
		total += n
	}
	return total
}

// DisplayRiskLevels writes a one-line summary, most severe level first.
// NONE is only shown when something was counted at that level.
func (rp *RiskPosture) DisplayRiskLevels(w io.Writer) {
	var parts []string
	for _, p := range entity.Priorities {
		if p == entity.PriorityNone && rp.counts[p] == 0 {
			continue
		}
		name := p.String()
		parts = append(parts, fmt.Sprintf("%s%s risk: %d", name[:1], strings.ToLower(name[1:]), rp.counts[p]))
	}
	fmt.Fprintf(w, "%s (total %d)\n", strings.Join(parts, ", "), rp.Total())
}
