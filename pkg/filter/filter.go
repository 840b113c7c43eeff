// Package filter narrows finding collections by age, priority and
// namespace. Filters never modify their input and compose by applying
// them one after another.
package filter

import (
	"strings"

	"k8s.io/utils/clock"

	"kscan/pkg/entity"
)

// ByAge keeps findings created fewer than days calendar days ago.
// Findings without a creation time are always dropped.
func ByAge[T entity.Finding](clk clock.PassiveClock, days int, findings []T) []T {
	now := clk.Now()
	out := make([]T, 0, len(findings))
	for _, f := range findings {
		age, ok := f.Base().AgeDays(now)
		if ok && age < days {
			out = append(out, f)
		}
	}
	return out
}

// ByPriority keeps findings whose priority name matches name, ignoring case.
func ByPriority[T entity.Finding](name string, findings []T) []T {
	out := make([]T, 0, len(findings))
	for _, f := range findings {
		if strings.EqualFold(f.Base().Priority.String(), strings.TrimSpace(name)) {
			out = append(out, f)
		}
	}
	return out
}

// ByNamespace keeps findings in namespace ns. An empty ns keeps everything.
func ByNamespace[T entity.Finding](ns string, findings []T) []T {
	if ns == "" {
		return findings
	}
	out := make([]T, 0, len(findings))
	for _, f := range findings {
		if f.Base().Namespace == ns {
			out = append(out, f)
		}
	}
	return out
}

// PodsByPriority applies ByPriority to the containers of every pod. Pods
// keep their place even when no container survives.
func PodsByPriority(name string, pods []entity.Pod) []entity.Pod {
	out := make([]entity.Pod, len(pods))
	for i, pod := range pods {
		pod.Containers = ByPriority(name, pod.Containers)
		out[i] = pod
	}
	return out
}

// Options is the set of filters a report command applies. Zero values
// disable a filter.
type Options struct {
	Days      int
	Priority  string
	Namespace string
}

// Apply runs the enabled filters in age, priority, namespace order.
func Apply[T entity.Finding](clk clock.PassiveClock, opts Options, findings []T) []T {
	if opts.Days != 0 {
		findings = ByAge(clk, opts.Days, findings)
	}
	if opts.Priority != "" {
		findings = ByPriority(opts.Priority, findings)
	}
	return ByNamespace(opts.Namespace, findings)
}

// PodsByNamespace keeps pods in namespace ns. An empty ns keeps everything.
func PodsByNamespace(ns string, pods []entity.Pod) []entity.Pod {
	if ns == "" {
		return pods
	}
	out := make([]entity.Pod, 0, len(pods))
	for _, pod := range pods {
		if pod.Namespace == ns {
			out = append(out, pod)
		}
	}
	return out
}
