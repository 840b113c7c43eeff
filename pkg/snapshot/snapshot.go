// Package snapshot loads findings captured from a cluster ahead of time.
//
// A snapshot is a YAML or JSON document pairing Kubernetes RBAC objects
// with the priority the detection engine assigned to them:
//
//	roles:
//	- priority: CRITICAL
//	  object:
//	    metadata: {name: secret-reader, namespace: default, creationTimestamp: "2024-03-01T12:00:00Z"}
//	    rules:
//	    - {verbs: [get, list], resources: [secrets]}
//	subjects:
//	- priority: HIGH
//	  subject: {kind: ServiceAccount, name: deployer, namespace: ci}
//	  rules: [{verbs: ["*"], resources: ["*"]}]
//	pods:
//	- name: web-0
//	  namespace: prod
//	  containers:
//	  - {name: app, priority: CRITICAL, serviceAccountNamespace: prod, serviceAccounts: [admin]}
package snapshot

import (
	"fmt"
	"os"

	rbacv1 "k8s.io/api/rbac/v1"
	"sigs.k8s.io/yaml"

	"kscan/pkg/entity"
)

type RoleEntry struct {
	Priority entity.Priority `json:"priority"`
	Object   rbacv1.Role     `json:"object"`
}

type ClusterRoleEntry struct {
	Priority entity.Priority    `json:"priority"`
	Object   rbacv1.ClusterRole `json:"object"`
}

type RoleBindingEntry struct {
	Priority entity.Priority    `json:"priority"`
	Object   rbacv1.RoleBinding `json:"object"`
}

type ClusterRoleBindingEntry struct {
	Priority entity.Priority           `json:"priority"`
	Object   rbacv1.ClusterRoleBinding `json:"object"`
}

type SubjectEntry struct {
	Priority entity.Priority     `json:"priority"`
	Subject  rbacv1.Subject      `json:"subject"`
	Rules    []rbacv1.PolicyRule `json:"rules,omitempty"`
}

type ContainerEntry struct {
	Name                    string          `json:"name"`
	Priority                entity.Priority `json:"priority"`
	ServiceAccountNamespace string          `json:"serviceAccountNamespace,omitempty"`
	ServiceAccounts         []string        `json:"serviceAccounts,omitempty"`
}

type PodEntry struct {
	Name       string           `json:"name"`
	Namespace  string           `json:"namespace"`
	Containers []ContainerEntry `json:"containers"`
}

// File is the on-disk layout of a snapshot.
type File struct {
	Roles               []RoleEntry               `json:"roles,omitempty"`
	ClusterRoles        []ClusterRoleEntry        `json:"clusterRoles,omitempty"`
	RoleBindings        []RoleBindingEntry        `json:"roleBindings,omitempty"`
	ClusterRoleBindings []ClusterRoleBindingEntry `json:"clusterRoleBindings,omitempty"`
	Subjects            []SubjectEntry            `json:"subjects,omitempty"`
	Pods                []PodEntry                `json:"pods,omitempty"`
}

// Snapshot holds the findings of a snapshot file. Every accessor returns
// a fresh slice.
type Snapshot struct {
	file File
}

// Load reads the snapshot at path.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML or JSON snapshot. Unknown fields are rejected.
func Parse(data []byte) (*Snapshot, error) {
	var f File
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &Snapshot{file: f}, nil
}

func (s *Snapshot) Roles() []entity.Role {
	out := make([]entity.Role, 0, len(s.file.Roles))
	for _, e := range s.file.Roles {
		out = append(out, entity.NewRoleFinding(e.Object, e.Priority))
	}
	return out
}

func (s *Snapshot) ClusterRoles() []entity.ClusterRole {
	out := make([]entity.ClusterRole, 0, len(s.file.ClusterRoles))
	for _, e := range s.file.ClusterRoles {
		out = append(out, entity.NewClusterRoleFinding(e.Object, e.Priority))
	}
	return out
}

// AnyRoles returns roles followed by cluster roles.
func (s *Snapshot) AnyRoles() []entity.Finding {
	var out []entity.Finding
	for _, r := range s.Roles() {
		out = append(out, r)
	}
	for _, r := range s.ClusterRoles() {
		out = append(out, r)
	}
	return out
}

func (s *Snapshot) RoleBindings() []entity.Binding {
	out := make([]entity.Binding, 0, len(s.file.RoleBindings))
	for _, e := range s.file.RoleBindings {
		out = append(out, entity.NewRoleBindingFinding(e.Object, e.Priority))
	}
	return out
}

func (s *Snapshot) ClusterRoleBindings() []entity.Binding {
	out := make([]entity.Binding, 0, len(s.file.ClusterRoleBindings))
	for _, e := range s.file.ClusterRoleBindings {
		out = append(out, entity.NewClusterRoleBindingFinding(e.Object, e.Priority))
	}
	return out
}

// AnyRoleBindings returns role bindings followed by cluster role bindings.
func (s *Snapshot) AnyRoleBindings() []entity.Binding {
	return append(s.RoleBindings(), s.ClusterRoleBindings()...)
}

func (s *Snapshot) Subjects() []entity.Subject {
	out := make([]entity.Subject, 0, len(s.file.Subjects))
	for _, e := range s.file.Subjects {
		out = append(out, entity.NewSubjectFinding(e.Subject, e.Priority, e.Rules))
	}
	return out
}

func (s *Snapshot) Pods() []entity.Pod {
	out := make([]entity.Pod, 0, len(s.file.Pods))
	for _, e := range s.file.Pods {
		pod := entity.Pod{Name: e.Name, Namespace: e.Namespace}
		for _, c := range e.Containers {
			pod.Containers = append(pod.Containers,
				entity.NewContainerFinding(pod, c.Name, c.Priority, c.ServiceAccountNamespace, c.ServiceAccounts))
		}
		out = append(out, pod)
	}
	return out
}
