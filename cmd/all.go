package cmd

import (
	"github.com/spf13/cobra"

	"kscan/pkg/filter"
	"kscan/pkg/reports"
	"kscan/pkg/riskposture"
)

func (a *app) newAllCmd() *cobra.Command {
	f := &findingFlags{}
	cmd := &cobra.Command{
		Use:     "all",
		Aliases: []string{"a"},
		Short:   "Show every risky Role, binding, subject and container",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.findings()
			if err != nil {
				return err
			}
			clk := a.rc.Clock
			opts := filter.Options{Days: f.days, Priority: f.priority}
			posture := riskposture.NewRiskPosture()

			roles := filter.Apply(clk, opts, snap.AnyRoles())
			riskposture.Count(posture, roles)
			if err := a.rc.Render(reports.FindingsTable(headerAnyRoles, roles, false, clk.Now())); err != nil {
				return err
			}

			bindings := filter.Apply(clk, opts, snap.AnyRoleBindings())
			riskposture.Count(posture, bindings)
			if err := a.rc.Render(reports.FindingsTable(headerAnyRoleBindings, bindings, false, clk.Now())); err != nil {
				return err
			}

			subjects := filter.Apply(clk, filter.Options{Priority: f.priority}, snap.Subjects())
			riskposture.Count(posture, subjects)
			if err := a.rc.Render(reports.SubjectsTable(headerSubjects, subjects, false)); err != nil {
				return err
			}

			pods := f.pods(snap.Pods())
			posture.CountPods(pods)
			if err := a.rc.Render(reports.ContainersTable(headerContainers, pods)); err != nil {
				return err
			}

			posture.DisplayRiskLevels(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().IntVarP(&f.days, "days", "d", 0, "Only show Roles and bindings created fewer than this many days ago")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "", "Only show findings with this priority (CRITICAL, HIGH, MEDIUM, LOW)")
	return cmd
}
