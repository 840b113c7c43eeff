package cmd

import (
	"github.com/spf13/cobra"

	"kscan/pkg/entity"
	"kscan/pkg/filter"
	"kscan/pkg/reports"
)

const (
	headerRoles               = "|Risky Roles|"
	headerClusterRoles        = "|Risky ClusterRoles|"
	headerAnyRoles            = "|Risky Roles and ClusterRoles|"
	headerRoleBindings        = "|Risky RoleBindings|"
	headerClusterRoleBindings = "|Risky ClusterRoleBindings|"
	headerAnyRoleBindings     = "|Risky RoleBindings and ClusterRoleBindings|"
	headerSubjects            = "|Risky Users|"
	headerContainers          = "|Risky Containers|"
)

// findingFlags are the filters shared by the risky-* commands.
type findingFlags struct {
	rules     bool
	days      int
	priority  string
	namespace string
}

func (f *findingFlags) register(cmd *cobra.Command, withRules, withDays bool) {
	if withRules {
		cmd.Flags().BoolVarP(&f.rules, "rules", "r", false, "Show the rules of every finding")
	}
	if withDays {
		cmd.Flags().IntVarP(&f.days, "days", "d", 0, "Only show findings created fewer than this many days ago")
	}
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "", "Only show findings with this priority (CRITICAL, HIGH, MEDIUM, LOW)")
	cmd.Flags().StringVarP(&f.namespace, "namespace", "n", "", "Only show findings in this namespace")
}

func (f *findingFlags) options() filter.Options {
	return filter.Options{Days: f.days, Priority: f.priority, Namespace: f.namespace}
}

// clusterScoped drops the namespace filter, warning when one was given.
func (a *app) clusterScoped(f *findingFlags, what string) filter.Options {
	opts := f.options()
	if opts.Namespace != "" {
		a.logger.Warnf("--namespace is ignored for %s", what)
		opts.Namespace = ""
	}
	return opts
}

func renderFindings[T entity.Finding](a *app, header string, findings []T, opts filter.Options, showRules bool) error {
	findings = filter.Apply(a.rc.Clock, opts, findings)
	return a.rc.Render(reports.FindingsTable(header, findings, showRules, a.rc.Clock.Now()))
}

func (a *app) newRiskyRolesCmd() *cobra.Command {
	f := &findingFlags{}
	cmd := &cobra.Command{
		Use:     "risky-roles",
		Aliases: []string{"rr"},
		Short:   "Show risky Roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.findings()
			if err != nil {
				return err
			}
			return renderFindings(a, headerRoles, snap.Roles(), f.options(), f.rules)
		},
	}
	f.register(cmd, true, true)
	return cmd
}

func (a *app) newRiskyClusterRolesCmd() *cobra.Command {
	f := &findingFlags{}
	cmd := &cobra.Command{
		Use:     "risky-clusterroles",
		Aliases: []string{"rcr"},
		Short:   "Show risky ClusterRoles",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.findings()
			if err != nil {
				return err
			}
			opts := a.clusterScoped(f, "ClusterRoles")
			return renderFindings(a, headerClusterRoles, snap.ClusterRoles(), opts, f.rules)
		},
	}
	f.register(cmd, true, true)
	return cmd
}

func (a *app) newRiskyAnyRolesCmd() *cobra.Command {
	f := &findingFlags{}
	cmd := &cobra.Command{
		Use:     "risky-any-roles",
		Aliases: []string{"rar"},
		Short:   "Show risky Roles and ClusterRoles",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.findings()
			if err != nil {
				return err
			}
			opts := a.clusterScoped(f, "Roles and ClusterRoles")
			return renderFindings(a, headerAnyRoles, snap.AnyRoles(), opts, f.rules)
		},
	}
	f.register(cmd, true, true)
	return cmd
}

func (a *app) newRiskyRoleBindingsCmd() *cobra.Command {
	f := &findingFlags{}
	cmd := &cobra.Command{
		Use:     "risky-rolebindings",
		Aliases: []string{"rb"},
		Short:   "Show risky RoleBindings",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.findings()
			if err != nil {
				return err
			}
			return renderFindings(a, headerRoleBindings, snap.RoleBindings(), f.options(), false)
		},
	}
	f.register(cmd, false, true)
	return cmd
}

func (a *app) newRiskyClusterRoleBindingsCmd() *cobra.Command {
	f := &findingFlags{}
	cmd := &cobra.Command{
		Use:     "risky-clusterrolebindings",
		Aliases: []string{"rcb"},
		Short:   "Show risky ClusterRoleBindings",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.findings()
			if err != nil {
				return err
			}
			opts := a.clusterScoped(f, "ClusterRoleBindings")
			return renderFindings(a, headerClusterRoleBindings, snap.ClusterRoleBindings(), opts, false)
		},
	}
	f.register(cmd, false, true)
	return cmd
}

func (a *app) newRiskyAnyRoleBindingsCmd() *cobra.Command {
	f := &findingFlags{}
	cmd := &cobra.Command{
		Use:     "risky-any-rolebindings",
		Aliases: []string{"rab"},
		Short:   "Show risky RoleBindings and ClusterRoleBindings",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.findings()
			if err != nil {
				return err
			}
			opts := a.clusterScoped(f, "RoleBindings and ClusterRoleBindings")
			return renderFindings(a, headerAnyRoleBindings, snap.AnyRoleBindings(), opts, false)
		},
	}
	f.register(cmd, false, true)
	return cmd
}

func (a *app) newRiskySubjectsCmd() *cobra.Command {
	f := &findingFlags{}
	cmd := &cobra.Command{
		Use:     "risky-subjects",
		Aliases: []string{"rs"},
		Short:   "Show risky Users, Groups and ServiceAccounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.findings()
			if err != nil {
				return err
			}
			subjects := filter.Apply(a.rc.Clock, f.options(), snap.Subjects())
			return a.rc.Render(reports.SubjectsTable(headerSubjects, subjects, f.rules))
		},
	}
	f.register(cmd, true, false)
	return cmd
}

func (a *app) newRiskyPodsCmd() *cobra.Command {
	f := &findingFlags{}
	cmd := &cobra.Command{
		Use:     "risky-pods",
		Aliases: []string{"rp"},
		Short:   "Show risky containers",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.findings()
			if err != nil {
				return err
			}
			return a.rc.Render(reports.ContainersTable(headerContainers, f.pods(snap.Pods())))
		},
	}
	f.register(cmd, false, false)
	return cmd
}

func (f *findingFlags) pods(pods []entity.Pod) []entity.Pod {
	pods = filter.PodsByNamespace(f.namespace, pods)
	if f.priority != "" {
		pods = filter.PodsByPriority(f.priority, pods)
	}
	return pods
}
