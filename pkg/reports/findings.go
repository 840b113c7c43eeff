package reports

import (
	"strconv"
	"strings"
	"time"

	rbacv1 "k8s.io/api/rbac/v1"

	"kscan/pkg/entity"
)

const noCreationTime = "No creation time"

// PriorityTone maps a finding priority onto terminal styling.
func PriorityTone(p entity.Priority) Tone {
	switch p {
	case entity.PriorityCritical:
		return ToneAlert
	case entity.PriorityHigh:
		return ToneWarn
	default:
		return ToneDefault
	}
}

// FindingsTable renders roles, cluster roles and bindings. With showRules
// a Rules column is appended.
func FindingsTable[T entity.Finding](header string, findings []T, showRules bool, now time.Time) *Table {
	columns := []string{"Priority", "Kind", "Namespace", "Name", "Creation Time"}
	if showRules {
		columns = append(columns, "Rules")
	}

	t := NewTable(header, columns...)
	for _, f := range findings {
		c := f.Base()
		cells := []string{c.Priority.String(), c.Kind, c.Namespace, c.Name, creationCell(c, now)}
		if showRules {
			cells = append(cells, PrettyRules(c.Rules))
		}
		t.AddRow(PriorityTone(c.Priority), cells...)
	}
	return t
}

// SubjectsTable renders risky users, groups and service accounts. There is
// no creation time column since subjects are not API objects.
func SubjectsTable(header string, subjects []entity.Subject, showRules bool) *Table {
	columns := []string{"Priority", "Kind", "Namespace", "Name"}
	if showRules {
		columns = append(columns, "Rules")
	}

	t := NewTable(header, columns...)
	for _, s := range subjects {
		cells := []string{s.Priority.String(), s.Kind, s.Namespace, s.Name}
		if showRules {
			cells = append(cells, PrettyRules(s.Rules))
		}
		t.AddRow(PriorityTone(s.Priority), cells...)
	}
	return t
}

// ContainersTable renders one row per risky container.
func ContainersTable(header string, pods []entity.Pod) *Table {
	t := NewTable(header, "Priority", "PodName", "Namespace", "ContainerName", "ServiceAccountNamespace", "ServiceAccountName")
	for _, pod := range pods {
		for _, c := range pod.Containers {
			t.AddRow(PriorityTone(c.Priority),
				c.Priority.String(),
				c.PodName,
				pod.Namespace,
				c.Name,
				c.ServiceAccountNamespace,
				strings.Join(c.ServiceAccountNames, ", "),
			)
		}
	}
	return t
}

// SubjectListTable lists binding subjects without any risk context.
func SubjectListTable(header string, subjects []rbacv1.Subject) *Table {
	t := NewTable(header, "Kind", "Namespace", "Name")
	for _, s := range subjects {
		t.AddRow(ToneDefault, s.Kind, s.Namespace, s.Name)
	}
	return t
}

// BindingListTable lists bindings by kind, name and namespace.
func BindingListTable(header string, bindings []entity.Binding) *Table {
	t := NewTable(header, "Kind", "Name", "Namespace")
	for _, b := range bindings {
		t.AddRow(ToneDefault, b.Kind, b.Name, b.Namespace)
	}
	return t
}

// RoleRulesTable lists roles with their rules.
func RoleRulesTable(header string, roles []entity.Finding) *Table {
	t := NewTable(header, "Kind", "Namespace", "Name", "Rules")
	t.RowLines = true
	for _, r := range roles {
		c := r.Base()
		t.AddRow(ToneDefault, c.Kind, c.Namespace, c.Name, PrettyRules(c.Rules))
	}
	return t
}

// PrettyRules renders one rule per line. Nil rules render as "".
func PrettyRules(rules []entity.PolicyRule) string {
	lines := make([]string, len(rules))
	for i, r := range rules {
		lines[i] = r.String()
	}
	return strings.Join(lines, "\n")
}

func creationCell(c entity.Common, now time.Time) string {
	days, ok := c.AgeDays(now)
	if !ok {
		return noCreationTime
	}
	created := c.CreationTime.Time.In(now.Location())
	return created.Format(time.ANSIC) + " (" + strconv.Itoa(days) + " days)"
}
