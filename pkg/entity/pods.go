package entity

// Container is a container whose mounted service account token grants
// risky permissions.
type Container struct {
	Common
	PodName                 string
	ServiceAccountNamespace string
	ServiceAccountNames     []string
}

// Pod groups the risky containers of one pod.
type Pod struct {
	Name       string
	Namespace  string
	Containers []Container
}

// NewContainerFinding builds a container finding inside pod.
func NewContainerFinding(pod Pod, name string, p Priority, saNamespace string, saNames []string) Container {
	return Container{
		Common: Common{
			Priority:  p,
			Kind:      "Container",
			Namespace: pod.Namespace,
			Name:      name,
		},
		PodName:                 pod.Name,
		ServiceAccountNamespace: saNamespace,
		ServiceAccountNames:     saNames,
	}
}
