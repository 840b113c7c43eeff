package k8s

import (
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/client-go/discovery"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// NewClientSet builds a clientset from the in-cluster config, falling back
// to kubeconfig, then $KUBECONFIG, then ~/.kube/config.
func NewClientSet(kubeconfig string) (*kubernetes.Clientset, error) {
	config, err := rest.InClusterConfig()
	if err != nil {
		if kubeconfig == "" {
			kubeconfig = os.Getenv("KUBECONFIG")
		}
		if kubeconfig == "" {
			kubeconfig = filepath.Join(os.Getenv("HOME"), ".kube", "config")
		}
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
		if err != nil {
			return nil, fmt.Errorf("failed to build config: %w", err)
		}
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return clientset, nil
}

// ServerVersion returns the raw git version reported by the API server,
// e.g. "v1.27.4-eks-2d98532".
func ServerVersion(client discovery.ServerVersionInterface) (string, error) {
	info, err := client.ServerVersion()
	if err != nil {
		return "", fmt.Errorf("failed to fetch server version: %w", err)
	}
	return info.GitVersion, nil
}
