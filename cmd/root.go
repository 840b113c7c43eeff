package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kscan/pkg/logging"
	"kscan/pkg/reports"
	"kscan/pkg/snapshot"
)

const reportTitle = "Kubernetes RBAC and CVE audit"

// app is the state shared by every command of one invocation.
type app struct {
	jsonPath       string
	htmlPath       string
	snapshotPath   string
	kubeconfig     string
	noColor        bool
	debug          bool
	discardCorrupt bool

	logger *zap.SugaredLogger
	rc     *reports.ReportContext
	snap   *snapshot.Snapshot
}

// NewRootCmd builds the command tree writing tables to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "kscan",
		Short:         "Audit Kubernetes RBAC risks and known CVEs",
		Long:          `kscan renders risky roles, bindings, subjects and containers from a captured snapshot, and lists the known CVEs affecting a cluster version.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(out)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.finish()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.jsonPath, "json", "j", "", "Export rendered tables to this JSON file, locked through a sibling .lock file")
	flags.StringVar(&a.htmlPath, "html", "", "Write an HTML report of every table rendered in this run")
	flags.StringVarP(&a.snapshotPath, "snapshot", "s", "", "Findings snapshot file (YAML or JSON)")
	flags.StringVar(&a.kubeconfig, "kubeconfig", "", "Path to the kubeconfig file (defaults to $KUBECONFIG)")
	flags.BoolVar(&a.noColor, "no-color", false, "Print tables without colors")
	flags.BoolVar(&a.debug, "debug", false, "Enable debug logging")
	flags.BoolVar(&a.discardCorrupt, "discard-corrupt-json", false, "Overwrite a JSON export file that cannot be parsed instead of failing")

	rootCmd.AddCommand(
		a.newRiskyRolesCmd(),
		a.newRiskyClusterRolesCmd(),
		a.newRiskyAnyRolesCmd(),
		a.newRiskyRoleBindingsCmd(),
		a.newRiskyClusterRoleBindingsCmd(),
		a.newRiskyAnyRoleBindingsCmd(),
		a.newRiskySubjectsCmd(),
		a.newRiskyPodsCmd(),
		a.newAllCmd(),
		a.newCVECmd(),
		a.newSubjectsCmd(),
		a.newRoleBindingRulesCmd(),
		a.newClusterRoleBindingRulesCmd(),
		a.newRoleBindingsToRoleCmd(),
		a.newBindingsToClusterRoleCmd(),
		a.newSubjectBindingsCmd(),
		a.newSubjectRolesCmd(),
	)
	return rootCmd
}

// Execute runs the CLI against stdout.
func Execute() {
	if err := NewRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) setup(out io.Writer) error {
	logger, err := logging.New(a.debug)
	if err != nil {
		return err
	}
	a.logger = logger

	a.rc = reports.NewReportContext(out, logger)
	a.rc.NoColor = a.noColor
	if a.jsonPath != "" {
		acc := reports.NewAccumulator(a.jsonPath, logger)
		acc.DiscardCorrupt = a.discardCorrupt
		a.rc.Accumulator = acc
	}
	return nil
}

func (a *app) finish() error {
	defer a.logger.Sync() //nolint:errcheck

	if a.htmlPath == "" {
		return nil
	}
	view := reports.BuildReportView(reportTitle, a.rc.Sections(), a.rc.Clock.Now())
	if err := reports.GenerateHTMLReport(view, a.htmlPath); err != nil {
		return err
	}
	a.logger.Infow("wrote html report", "path", a.htmlPath)
	return nil
}

// findings loads the snapshot on first use.
func (a *app) findings() (*snapshot.Snapshot, error) {
	if a.snap != nil {
		return a.snap, nil
	}
	if a.snapshotPath == "" {
		return nil, errors.New("no findings source: pass --snapshot")
	}
	snap, err := snapshot.Load(a.snapshotPath)
	if err != nil {
		return nil, err
	}
	a.snap = snap
	return snap, nil
}
