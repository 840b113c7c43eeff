package k8s

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/version"

	"kscan/pkg/k8s/internal/testutil"
)

func TestServerVersion(t *testing.T) {
	client := testutil.NewTestClientset("v1.27.4-eks-2d98532")

	got, err := ServerVersion(client.Discovery())
	require.NoError(t, err)
	assert.Equal(t, "v1.27.4-eks-2d98532", got)
}

type failingDiscovery struct{}

func (failingDiscovery) ServerVersion() (*version.Info, error) {
	return nil, errors.New("connection refused")
}

func TestServerVersionError(t *testing.T) {
	_, err := ServerVersion(failingDiscovery{})
	assert.ErrorContains(t, err, "connection refused")
}

func TestNewClientSetMissingKubeconfig(t *testing.T) {
	t.Setenv("KUBERNETES_SERVICE_HOST", "")
	_, err := NewClientSet(filepath.Join(t.TempDir(), "missing-kubeconfig"))
	assert.Error(t, err)
}
