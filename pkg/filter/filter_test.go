package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	clocktesting "k8s.io/utils/clock/testing"

	"kscan/pkg/entity"
)

var now = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func role(name, ns string, p entity.Priority, ageDays int) entity.Role {
	r := entity.Role{Common: entity.Common{Priority: p, Kind: entity.KindRole, Namespace: ns, Name: name}}
	if ageDays >= 0 {
		r.CreationTime = &metav1.Time{Time: now.AddDate(0, 0, -ageDays)}
	}
	return r
}

func names[T entity.Finding](findings []T) []string {
	out := []string{}
	for _, f := range findings {
		out = append(out, f.Base().Name)
	}
	return out
}

func TestByAge(t *testing.T) {
	clk := clocktesting.NewFakePassiveClock(now)
	findings := []entity.Role{
		role("fresh", "default", entity.PriorityHigh, 10),
		role("old", "default", entity.PriorityHigh, 40),
		role("undated", "default", entity.PriorityHigh, -1),
	}

	assert.Equal(t, []string{"fresh"}, names(ByAge(clk, 30, findings)))
	assert.Len(t, findings, 3)
}

func TestByAgeZeroDays(t *testing.T) {
	clk := clocktesting.NewFakePassiveClock(now)
	findings := []entity.Role{
		role("today", "default", entity.PriorityHigh, 0),
		role("old", "default", entity.PriorityHigh, 40),
	}

	assert.Empty(t, ByAge(clk, 0, findings))
}

func TestByAgeBoundary(t *testing.T) {
	clk := clocktesting.NewFakePassiveClock(now)
	findings := []entity.Role{
		role("29", "default", entity.PriorityHigh, 29),
		role("30", "default", entity.PriorityHigh, 30),
	}

	assert.Equal(t, []string{"29"}, names(ByAge(clk, 30, findings)))
}

func TestByPriority(t *testing.T) {
	findings := []entity.Role{
		role("a", "default", entity.PriorityCritical, 1),
		role("b", "default", entity.PriorityHigh, 1),
		role("c", "default", entity.PriorityCritical, 1),
	}

	assert.Equal(t, []string{"a", "c"}, names(ByPriority("critical", findings)))
	assert.Equal(t, []string{"b"}, names(ByPriority("HIGH", findings)))
	assert.Empty(t, ByPriority("low", findings))
}

func TestByNamespace(t *testing.T) {
	findings := []entity.Role{
		role("a", "default", entity.PriorityCritical, 1),
		role("b", "kube-system", entity.PriorityHigh, 1),
	}

	assert.Equal(t, []string{"b"}, names(ByNamespace("kube-system", findings)))
	assert.Equal(t, []string{"a", "b"}, names(ByNamespace("", findings)))
	assert.Empty(t, ByNamespace("Default", findings))
}

func TestApply(t *testing.T) {
	clk := clocktesting.NewFakePassiveClock(now)
	findings := []entity.Role{
		role("a", "default", entity.PriorityCritical, 1),
		role("b", "default", entity.PriorityHigh, 1),
		role("c", "dev", entity.PriorityCritical, 1),
		role("d", "default", entity.PriorityCritical, 90),
		role("e", "default", entity.PriorityCritical, -1),
	}

	got := Apply(clk, Options{Days: 30, Priority: "critical", Namespace: "default"}, findings)
	assert.Equal(t, []string{"a"}, names(got))

	// Zero options disable every filter, undated findings included.
	assert.Len(t, Apply(clk, Options{}, findings), 5)
}

func TestPodsByPriority(t *testing.T) {
	pod := entity.Pod{Name: "web", Namespace: "default"}
	pod.Containers = []entity.Container{
		entity.NewContainerFinding(pod, "nginx", entity.PriorityCritical, "default", []string{"admin"}),
		entity.NewContainerFinding(pod, "sidecar", entity.PriorityLow, "default", []string{"default"}),
	}

	got := PodsByPriority("critical", []entity.Pod{pod})
	assert.Len(t, got, 1)
	assert.Equal(t, []string{"nginx"}, names(got[0].Containers))
	assert.Len(t, pod.Containers, 2)
}

func TestPodsByNamespace(t *testing.T) {
	pods := []entity.Pod{{Name: "a", Namespace: "prod"}, {Name: "b", Namespace: "dev"}}

	got := PodsByNamespace("dev", pods)
	assert.Len(t, got, 1)
	assert.Equal(t, "b", got[0].Name)
	assert.Len(t, PodsByNamespace("", pods), 2)
}
