package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	rbacv1 "k8s.io/api/rbac/v1"

	"kscan/pkg/entity"
	"kscan/pkg/lookup"
	"kscan/pkg/reports"
)

var subjectKinds = []string{rbacv1.UserKind, rbacv1.GroupKind, rbacv1.ServiceAccountKind}

// subjectKind returns the canonical spelling of kind.
func subjectKind(kind string) (string, error) {
	for _, k := range subjectKinds {
		if strings.EqualFold(k, kind) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown subject kind %q, expected one of %s", kind, strings.Join(subjectKinds, ", "))
}

// subjectQuery validates the kind and namespace naming one subject.
// Service accounts are namespaced, so they need a namespace.
func subjectQuery(kind, namespace string) (string, error) {
	kind, err := subjectKind(kind)
	if err != nil {
		return "", err
	}
	if kind == rbacv1.ServiceAccountKind && namespace == "" {
		return "", fmt.Errorf("--namespace is required for kind %s", kind)
	}
	return kind, nil
}

func (a *app) newSubjectsCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "subjects",
		Short: "List the Users, Groups or ServiceAccounts named by any binding",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := subjectKind(kind)
			if err != nil {
				return err
			}
			snap, err := a.findings()
			if err != nil {
				return err
			}
			subjects := lookup.SubjectsByKind(snap.AnyRoleBindings(), kind)
			header := fmt.Sprintf("|Subjects (kind: %s)|", kind)
			if err := a.rc.Render(reports.SubjectListTable(header, subjects)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Total number: %d\n", len(subjects))
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Subject kind: User, Group or ServiceAccount")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func (a *app) newRoleBindingRulesCmd() *cobra.Command {
	var namespace string
	cmd := &cobra.Command{
		Use:     "rolebinding-rules NAME",
		Aliases: []string{"rru"},
		Short:   "Show the rules a RoleBinding grants",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.renderBindingRules(entity.KindRoleBinding, args[0], namespace)
		},
	}
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "Namespace of the RoleBinding")
	_ = cmd.MarkFlagRequired("namespace")
	return cmd
}

func (a *app) newClusterRoleBindingRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "clusterrolebinding-rules NAME",
		Aliases: []string{"crru"},
		Short:   "Show the rules a ClusterRoleBinding grants",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.renderBindingRules(entity.KindClusterRoleBinding, args[0], "")
		},
	}
}

func (a *app) renderBindingRules(kind, name, namespace string) error {
	snap, err := a.findings()
	if err != nil {
		return err
	}
	b, err := lookup.FindBinding(snap.AnyRoleBindings(), kind, name, namespace)
	if err != nil {
		return err
	}
	role, err := lookup.BindingRole(b, snap.AnyRoles())
	if err != nil {
		return err
	}
	header := fmt.Sprintf("|%s %s rules|", kind, name)
	if namespace != "" {
		header = fmt.Sprintf("|%s %s/%s rules|", kind, namespace, name)
	}
	return a.rc.Render(reports.RoleRulesTable(header, []entity.Finding{role}))
}

func (a *app) newRoleBindingsToRoleCmd() *cobra.Command {
	var namespace string
	cmd := &cobra.Command{
		Use:     "role-bindings ROLE",
		Aliases: []string{"aarbr"},
		Short:   "List the RoleBindings granting a Role",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.findings()
			if err != nil {
				return err
			}
			bindings := lookup.BindingsToRole(snap.AnyRoleBindings(), args[0], namespace)
			header := fmt.Sprintf("|Bindings of Role %s/%s|", namespace, args[0])
			return a.rc.Render(reports.BindingListTable(header, bindings))
		},
	}
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "Namespace of the Role")
	_ = cmd.MarkFlagRequired("namespace")
	return cmd
}

func (a *app) newBindingsToClusterRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "clusterrole-bindings CLUSTERROLE",
		Aliases: []string{"aarbcr"},
		Short:   "List the RoleBindings and ClusterRoleBindings granting a ClusterRole",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.findings()
			if err != nil {
				return err
			}
			bindings := lookup.BindingsToClusterRole(snap.AnyRoleBindings(), args[0])
			header := fmt.Sprintf("|Bindings of ClusterRole %s|", args[0])
			return a.rc.Render(reports.BindingListTable(header, bindings))
		},
	}
}

func (a *app) newSubjectBindingsCmd() *cobra.Command {
	var kind, namespace string
	cmd := &cobra.Command{
		Use:     "subject-bindings NAME",
		Aliases: []string{"aarbs"},
		Short:   "List the bindings naming a User, Group or ServiceAccount",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := subjectQuery(kind, namespace)
			if err != nil {
				return err
			}
			snap, err := a.findings()
			if err != nil {
				return err
			}
			bindings := lookup.BindingsToSubject(snap.AnyRoleBindings(), args[0], kind, namespace)
			header := fmt.Sprintf("|Bindings of %s %s|", kind, args[0])
			return a.rc.Render(reports.BindingListTable(header, bindings))
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Subject kind: User, Group or ServiceAccount")
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "Subject namespace, required for ServiceAccounts")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func (a *app) newSubjectRolesCmd() *cobra.Command {
	var kind, namespace string
	cmd := &cobra.Command{
		Use:     "subject-roles NAME",
		Aliases: []string{"aars"},
		Short:   "Show the Roles and ClusterRoles granted to a User, Group or ServiceAccount",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := subjectQuery(kind, namespace)
			if err != nil {
				return err
			}
			snap, err := a.findings()
			if err != nil {
				return err
			}
			roles := lookup.RolesForSubject(snap.AnyRoleBindings(), snap.AnyRoles(), args[0], kind, namespace)
			header := fmt.Sprintf("|Roles of %s %s|", kind, args[0])
			return a.rc.Render(reports.RoleRulesTable(header, roles))
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Subject kind: User, Group or ServiceAccount")
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "Subject namespace, required for ServiceAccounts")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}
