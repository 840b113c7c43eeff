package testutil

import (
	rbacv1 "k8s.io/api/rbac/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/version"
	fakediscovery "k8s.io/client-go/discovery/fake"
	"k8s.io/client-go/kubernetes/fake"
)

// NewTestClientset returns a fake clientset whose API server reports
// gitVersion.
func NewTestClientset(gitVersion string, objs ...runtime.Object) *fake.Clientset {
	defaults := []runtime.Object{
		&rbacv1.ClusterRole{ObjectMeta: metav1.ObjectMeta{Name: "system:auth-delegator"}},
		&rbacv1.ClusterRoleBinding{ObjectMeta: metav1.ObjectMeta{Name: "system:auth-delegator"}},
	}
	client := fake.NewSimpleClientset(append(defaults, objs...)...)

	client.Discovery().(*fakediscovery.FakeDiscovery).FakedServerVersion = &version.Info{
		GitVersion: gitVersion,
	}
	return client
}
