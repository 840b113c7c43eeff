package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	rbacv1 "k8s.io/api/rbac/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

func TestPolicyRuleString(t *testing.T) {
	tests := []struct {
		name string
		rule PolicyRule
		want string
	}{
		{"verbs and resources", PolicyRule{Verbs: []string{"get", "list"}, Resources: []string{"pods", "secrets"}}, "(get,list)->(pods,secrets)"},
		{"nil resources", PolicyRule{Verbs: []string{"get"}}, "(get)->(None)"},
		{"wildcards", PolicyRule{Verbs: []string{"*"}, Resources: []string{"*"}}, "(*)->(*)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.String())
		})
	}
}

func TestConvertPolicyRules(t *testing.T) {
	assert.Nil(t, ConvertPolicyRules(nil))

	rules := ConvertPolicyRules([]rbacv1.PolicyRule{
		{Verbs: []string{"get"}, Resources: []string{"secrets"}, APIGroups: []string{""}},
		{Verbs: []string{"get"}, NonResourceURLs: []string{"/healthz"}},
	})
	require.Len(t, rules, 2)
	assert.Equal(t, []string{"secrets"}, rules[0].Resources)
	assert.Nil(t, rules[1].Resources)
}

func TestNewRoleFinding(t *testing.T) {
	created := metav1.NewTime(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	role := rbacv1.Role{
		ObjectMeta: metav1.ObjectMeta{Name: "secret-reader", Namespace: "default", CreationTimestamp: created},
		Rules:      []rbacv1.PolicyRule{{Verbs: []string{"get"}, Resources: []string{"secrets"}}},
	}

	f := NewRoleFinding(role, PriorityCritical)
	assert.Equal(t, KindRole, f.Kind)
	assert.Equal(t, "default", f.Namespace)
	require.NotNil(t, f.CreationTime)
	assert.True(t, f.CreationTime.Equal(&created))
	assert.Len(t, f.Rules, 1)

	undated := NewClusterRoleFinding(rbacv1.ClusterRole{ObjectMeta: metav1.ObjectMeta{Name: "admin"}}, PriorityHigh)
	assert.Nil(t, undated.CreationTime)
	assert.Empty(t, undated.Namespace)
}

func TestNewBindingFindings(t *testing.T) {
	rb := NewRoleBindingFinding(rbacv1.RoleBinding{
		ObjectMeta: metav1.ObjectMeta{Name: "read-secrets", Namespace: "dev"},
		RoleRef:    rbacv1.RoleRef{Kind: "Role", Name: "secret-reader"},
		Subjects:   []rbacv1.Subject{{Kind: "User", Name: "jane"}},
	}, PriorityHigh)
	assert.Equal(t, KindRoleBinding, rb.Kind)
	assert.Equal(t, rbacv1.RoleRef{Kind: "Role", Name: "secret-reader"}, rb.RoleRef)
	assert.Nil(t, rb.Rules)

	crb := NewClusterRoleBindingFinding(rbacv1.ClusterRoleBinding{
		ObjectMeta: metav1.ObjectMeta{Name: "admins"},
		RoleRef:    rbacv1.RoleRef{Kind: "ClusterRole", Name: "cluster-admin"},
	}, PriorityCritical)
	assert.Equal(t, KindClusterRoleBinding, crb.Kind)
	assert.Equal(t, rbacv1.RoleRef{Kind: "ClusterRole", Name: "cluster-admin"}, crb.RoleRef)
}

func TestAgeDays(t *testing.T) {
	now := time.Date(2024, 3, 11, 0, 30, 0, 0, time.UTC)

	c := Common{CreationTime: &metav1.Time{Time: time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)}}
	days, ok := c.AgeDays(now)
	assert.True(t, ok)
	assert.Equal(t, 10, days)

	_, ok = Common{}.AgeDays(now)
	assert.False(t, ok)
}

func TestParsePriority(t *testing.T) {
	for _, name := range []string{"critical", "CRITICAL", "Critical", " critical "} {
		p, err := ParsePriority(name)
		require.NoError(t, err)
		assert.Equal(t, PriorityCritical, p)
	}

	_, err := ParsePriority("urgent")
	assert.Error(t, err)
}

func TestPriorityJSON(t *testing.T) {
	var got struct {
		Priority Priority `json:"priority"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"priority":"high"}`), &got))
	assert.Equal(t, PriorityHigh, got.Priority)

	out, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"priority":"HIGH"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"priority":"urgent"}`), &got))
}
