package cmd

import (
	"github.com/spf13/cobra"

	"kscan/pkg/cve"
	"kscan/pkg/k8s"
	"kscan/pkg/version"
)

func (a *app) newCVECmd() *cobra.Command {
	var catalogPath, clusterVersion string

	cmd := &cobra.Command{
		Use:   "cve",
		Short: "Show known Kubernetes CVEs affecting the cluster version",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := clusterVersion
			if raw == "" {
				clientset, err := k8s.NewClientSet(a.kubeconfig)
				if err != nil {
					return err
				}
				if raw, err = k8s.ServerVersion(clientset.Discovery()); err != nil {
					return err
				}
			}
			cluster, err := version.Parse(raw)
			if err != nil {
				return err
			}
			a.logger.Debugw("matching cve catalog", "catalog", catalogPath, "cluster", cluster.String())

			catalog, err := cve.LoadCatalog(catalogPath)
			if err != nil {
				return err
			}
			t, err := cve.BuildTable(catalog, cluster)
			if err != nil {
				return err
			}
			return a.rc.Render(t)
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "CVE.json", "CVE catalog file")
	cmd.Flags().StringVar(&clusterVersion, "cluster-version", "", "Cluster version to check instead of asking the API server, e.g. v1.27.4-eks")
	return cmd
}
