package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kscan/pkg/lookup"
)

const bindingsSnapshot = `
roles:
- priority: CRITICAL
  object:
    metadata: {name: secret-reader, namespace: default}
    rules:
    - {verbs: [get, list], resources: [secrets]}
clusterRoles:
- priority: CRITICAL
  object:
    metadata: {name: cluster-admin}
    rules:
    - {verbs: ["*"], resources: ["*"]}
roleBindings:
- priority: HIGH
  object:
    metadata: {name: read-secrets, namespace: default}
    roleRef: {apiGroup: rbac.authorization.k8s.io, kind: Role, name: secret-reader}
    subjects:
    - {kind: User, name: jane, apiGroup: rbac.authorization.k8s.io}
    - {kind: ServiceAccount, name: deployer, namespace: ci}
clusterRoleBindings:
- priority: CRITICAL
  object:
    metadata: {name: ci-admin}
    roleRef: {apiGroup: rbac.authorization.k8s.io, kind: ClusterRole, name: cluster-admin}
    subjects:
    - {kind: ServiceAccount, name: deployer, namespace: ci}
    - {kind: Group, name: ops, apiGroup: rbac.authorization.k8s.io}
`

func TestSubjectsByKindCmd(t *testing.T) {
	snap := writeFile(t, "snapshot.yaml", bindingsSnapshot)

	out, err := run(t, "--no-color", "--snapshot", snap, "subjects", "--kind", "serviceaccount")
	require.NoError(t, err)
	assert.Contains(t, out, "|Subjects (kind: ServiceAccount)|")
	assert.Contains(t, out, "deployer")
	assert.NotContains(t, out, "jane")
	assert.Contains(t, out, "Total number: 1\n")
}

func TestSubjectsUnknownKind(t *testing.T) {
	snap := writeFile(t, "snapshot.yaml", bindingsSnapshot)

	_, err := run(t, "--snapshot", snap, "subjects", "--kind", "Robot")
	assert.ErrorContains(t, err, "unknown subject kind")
}

func TestRoleBindingRulesCmd(t *testing.T) {
	snap := writeFile(t, "snapshot.yaml", bindingsSnapshot)

	out, err := run(t, "--no-color", "--snapshot", snap, "rolebinding-rules", "read-secrets", "-n", "default")
	require.NoError(t, err)
	assert.Contains(t, out, "|RoleBinding default/read-secrets rules|")
	assert.Contains(t, out, "(get,list)->(secrets)")

	_, err = run(t, "--snapshot", snap, "rolebinding-rules", "read-secrets", "-n", "dev")
	assert.ErrorIs(t, err, lookup.ErrBindingNotFound)

	_, err = run(t, "--snapshot", snap, "rolebinding-rules", "read-secrets")
	assert.Error(t, err)
}

func TestClusterRoleBindingRulesCmd(t *testing.T) {
	snap := writeFile(t, "snapshot.yaml", bindingsSnapshot)

	out, err := run(t, "--no-color", "--snapshot", snap, "crru", "ci-admin")
	require.NoError(t, err)
	assert.Contains(t, out, "cluster-admin")
	assert.Contains(t, out, "(*)->(*)")
}

func TestBindingsToRoleCmds(t *testing.T) {
	snap := writeFile(t, "snapshot.yaml", bindingsSnapshot)

	out, err := run(t, "--no-color", "--snapshot", snap, "role-bindings", "secret-reader", "-n", "default")
	require.NoError(t, err)
	assert.Contains(t, out, "read-secrets")

	out, err = run(t, "--no-color", "--snapshot", snap, "clusterrole-bindings", "cluster-admin")
	require.NoError(t, err)
	assert.Contains(t, out, "ci-admin")
	assert.NotContains(t, out, "read-secrets")
}

func TestSubjectCmds(t *testing.T) {
	snap := writeFile(t, "snapshot.yaml", bindingsSnapshot)

	out, err := run(t, "--no-color", "--snapshot", snap, "subject-bindings", "deployer", "--kind", "ServiceAccount", "-n", "ci")
	require.NoError(t, err)
	assert.Contains(t, out, "read-secrets")
	assert.Contains(t, out, "ci-admin")

	out, err = run(t, "--no-color", "--snapshot", snap, "subject-roles", "jane", "--kind", "User")
	require.NoError(t, err)
	assert.Contains(t, out, "secret-reader")
	assert.NotContains(t, out, "cluster-admin")

	_, err = run(t, "--snapshot", snap, "subject-roles", "deployer", "--kind", "ServiceAccount")
	assert.ErrorContains(t, err, "--namespace is required")
}
