package entity

import (
	"strings"
	"time"

	rbacv1 "k8s.io/api/rbac/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	KindRole               = "Role"
	KindClusterRole        = "ClusterRole"
	KindRoleBinding        = "RoleBinding"
	KindClusterRoleBinding = "ClusterRoleBinding"
)

// PolicyRule is a permission grant: a set of verbs over a set of resources.
type PolicyRule struct {
	// Verbs is a list of verbs that apply to all the resources of the rule.
	Verbs []string `json:"verbs"`
	// Resources is nil when the rule does not name any resource, e.g. a
	// nonResourceURLs rule.
	Resources []string `json:"resources"`
}

// String renders the rule as "(get,list)->(pods,secrets)". A rule without
// resources renders its resources as "(None)".
func (r PolicyRule) String() string {
	resources := "None"
	if r.Resources != nil {
		resources = strings.Join(r.Resources, ",")
	}
	return "(" + strings.Join(r.Verbs, ",") + ")->(" + resources + ")"
}

// ConvertPolicyRules converts Kubernetes policy rules, keeping nil resource
// lists nil.
func ConvertPolicyRules(input []rbacv1.PolicyRule) []PolicyRule {
	if input == nil {
		return nil
	}
	output := make([]PolicyRule, 0, len(input))
	for _, rule := range input {
		output = append(output, PolicyRule{
			Verbs:     rule.Verbs,
			Resources: rule.Resources,
		})
	}
	return output
}

// Common holds the fields shared by every finding kind.
type Common struct {
	Priority  Priority
	Kind      string
	Namespace string
	Name      string
	// CreationTime is nil when the object carries no creation timestamp.
	CreationTime *metav1.Time
	// Rules is nil for kinds that do not carry rules.
	Rules []PolicyRule
}

// Base returns the shared fields.
func (c Common) Base() Common { return c }

// AgeDays returns the number of calendar days between the creation date
// and now's date, both taken in now's location. ok is false when the
// finding has no creation time.
func (c Common) AgeDays(now time.Time) (days int, ok bool) {
	if c.CreationTime == nil {
		return 0, false
	}
	return calendarDays(c.CreationTime.Time.In(now.Location()), now), true
}

func calendarDays(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// Finding is a reportable risk object. The concrete types are Role,
// ClusterRole, Binding, Subject and Container.
type Finding interface {
	Base() Common
	finding()
}

// Role is a risky namespaced Role.
type Role struct{ Common }

// ClusterRole is a risky ClusterRole.
type ClusterRole struct{ Common }

// Binding is a risky RoleBinding or ClusterRoleBinding.
type Binding struct {
	Common
	// RoleRef is the Role or ClusterRole the binding grants.
	RoleRef rbacv1.RoleRef
	// Subjects granted by the binding.
	Subjects []rbacv1.Subject
}

// Subject is a user, group or service account holding risky permissions.
type Subject struct{ Common }

func (Role) finding()        {}
func (ClusterRole) finding() {}
func (Binding) finding()     {}
func (Subject) finding()     {}
func (Container) finding()   {}

func creationTime(meta metav1.ObjectMeta) *metav1.Time {
	if meta.CreationTimestamp.IsZero() {
		return nil
	}
	t := meta.CreationTimestamp
	return &t
}

// NewRoleFinding wraps a Role the engine marked with priority p.
func NewRoleFinding(role rbacv1.Role, p Priority) Role {
	return Role{Common{
		Priority:     p,
		Kind:         KindRole,
		Namespace:    role.Namespace,
		Name:         role.Name,
		CreationTime: creationTime(role.ObjectMeta),
		Rules:        ConvertPolicyRules(role.Rules),
	}}
}

// NewClusterRoleFinding wraps a ClusterRole the engine marked with priority p.
func NewClusterRoleFinding(role rbacv1.ClusterRole, p Priority) ClusterRole {
	return ClusterRole{Common{
		Priority:     p,
		Kind:         KindClusterRole,
		Name:         role.Name,
		CreationTime: creationTime(role.ObjectMeta),
		Rules:        ConvertPolicyRules(role.Rules),
	}}
}

// NewRoleBindingFinding wraps a RoleBinding the engine marked with priority p.
func NewRoleBindingFinding(rb rbacv1.RoleBinding, p Priority) Binding {
	return Binding{
		Common: Common{
			Priority:     p,
			Kind:         KindRoleBinding,
			Namespace:    rb.Namespace,
			Name:         rb.Name,
			CreationTime: creationTime(rb.ObjectMeta),
		},
		RoleRef:  rb.RoleRef,
		Subjects: rb.Subjects,
	}
}

// NewClusterRoleBindingFinding wraps a ClusterRoleBinding the engine marked
// with priority p.
func NewClusterRoleBindingFinding(crb rbacv1.ClusterRoleBinding, p Priority) Binding {
	return Binding{
		Common: Common{
			Priority:     p,
			Kind:         KindClusterRoleBinding,
			Name:         crb.Name,
			CreationTime: creationTime(crb.ObjectMeta),
		},
		RoleRef:  crb.RoleRef,
		Subjects: crb.Subjects,
	}
}

// NewSubjectFinding wraps a binding subject and the rules it ends up holding.
func NewSubjectFinding(s rbacv1.Subject, p Priority, rules []rbacv1.PolicyRule) Subject {
	return Subject{Common{
		Priority:  p,
		Kind:      s.Kind,
		Namespace: s.Namespace,
		Name:      s.Name,
		Rules:     ConvertPolicyRules(rules),
	}}
}
