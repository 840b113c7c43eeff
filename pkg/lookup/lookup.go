// Package lookup answers relationship queries over captured roles and
// bindings: which bindings grant a role, which subjects a binding names
// and which roles a subject ends up holding.
package lookup

import (
	"errors"
	"fmt"
	"strings"

	rbacv1 "k8s.io/api/rbac/v1"

	"kscan/pkg/entity"
)

var (
	ErrBindingNotFound = errors.New("binding not found")
	ErrRoleNotFound    = errors.New("role not found")
)

// SubjectsByKind returns the distinct subjects of kind named by any
// binding, in order of first appearance.
func SubjectsByKind(bindings []entity.Binding, kind string) []rbacv1.Subject {
	seen := map[rbacv1.Subject]bool{}
	var out []rbacv1.Subject
	for _, b := range bindings {
		for _, s := range b.Subjects {
			if !strings.EqualFold(s.Kind, kind) {
				continue
			}
			key := rbacv1.Subject{Kind: s.Kind, Namespace: s.Namespace, Name: s.Name}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, s)
		}
	}
	return out
}

// BindingsToRole returns the RoleBindings in namespace granting Role name.
func BindingsToRole(bindings []entity.Binding, name, namespace string) []entity.Binding {
	var out []entity.Binding
	for _, b := range bindings {
		if b.Kind == entity.KindRoleBinding && b.Namespace == namespace &&
			b.RoleRef.Kind == entity.KindRole && b.RoleRef.Name == name {
			out = append(out, b)
		}
	}
	return out
}

// BindingsToClusterRole returns every RoleBinding and ClusterRoleBinding
// granting ClusterRole name.
func BindingsToClusterRole(bindings []entity.Binding, name string) []entity.Binding {
	var out []entity.Binding
	for _, b := range bindings {
		if b.RoleRef.Kind == entity.KindClusterRole && b.RoleRef.Name == name {
			out = append(out, b)
		}
	}
	return out
}

// BindingsToSubject returns the bindings naming the subject. An empty
// namespace matches subjects in any namespace.
func BindingsToSubject(bindings []entity.Binding, name, kind, namespace string) []entity.Binding {
	var out []entity.Binding
	for _, b := range bindings {
		for _, s := range b.Subjects {
			if s.Name == name && strings.EqualFold(s.Kind, kind) && (namespace == "" || s.Namespace == namespace) {
				out = append(out, b)
				break
			}
		}
	}
	return out
}

// FindBinding returns the binding of kind called name. Namespace is
// ignored for ClusterRoleBindings.
func FindBinding(bindings []entity.Binding, kind, name, namespace string) (entity.Binding, error) {
	for _, b := range bindings {
		if b.Kind != kind || b.Name != name {
			continue
		}
		if kind == entity.KindRoleBinding && b.Namespace != namespace {
			continue
		}
		return b, nil
	}
	if kind == entity.KindRoleBinding {
		return entity.Binding{}, fmt.Errorf("%w: %s %s/%s", ErrBindingNotFound, kind, namespace, name)
	}
	return entity.Binding{}, fmt.Errorf("%w: %s %s", ErrBindingNotFound, kind, name)
}

// BindingRole resolves the role b grants. A Role is looked up in the
// binding's namespace.
func BindingRole(b entity.Binding, roles []entity.Finding) (entity.Finding, error) {
	for _, r := range roles {
		c := r.Base()
		if c.Kind != b.RoleRef.Kind || c.Name != b.RoleRef.Name {
			continue
		}
		if c.Kind == entity.KindRole && c.Namespace != b.Namespace {
			continue
		}
		return r, nil
	}
	return nil, fmt.Errorf("%w: %s %s referenced by %s %s", ErrRoleNotFound, b.RoleRef.Kind, b.RoleRef.Name, b.Kind, b.Name)
}

// RolesForSubject returns the distinct roles granted to the subject by
// any binding. Roles missing from roles are skipped.
func RolesForSubject(bindings []entity.Binding, roles []entity.Finding, name, kind, namespace string) []entity.Finding {
	type key struct{ kind, namespace, name string }
	seen := map[key]bool{}
	var out []entity.Finding
	for _, b := range BindingsToSubject(bindings, name, kind, namespace) {
		r, err := BindingRole(b, roles)
		if err != nil {
			continue
		}
		c := r.Base()
		k := key{c.Kind, c.Namespace, c.Name}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}
