package tfplan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const planFixture = `{
  "format_version": "1.2",
  "terraform_version": "1.9.5",
  "resource_changes": [
    {
      "address": "aws_instance.web",
      "mode": "managed",
      "type": "aws_instance",
      "name": "web",
      "provider_name": "registry.terraform.io/hashicorp/aws",
      "change": {"actions": ["create"], "before": null, "after": {"instance_type": "t3.micro"}}
    },
    {
      "address": "aws_security_group.web",
      "mode": "managed",
      "type": "aws_security_group",
      "name": "web",
      "change": {"actions": ["update"], "before": {}, "after": {}}
    },
    {
      "address": "aws_db_instance.main",
      "mode": "managed",
      "type": "aws_db_instance",
      "name": "main",
      "change": {"actions": ["delete", "create"], "before": {}, "after": {"engine": "postgres"}},
      "action_reason": "replace_because_cannot_update"
    },
    {
      "address": "aws_s3_bucket.artifacts",
      "mode": "managed",
      "type": "aws_s3_bucket",
      "name": "artifacts",
      "change": {"actions": ["update"], "before": {"force_destroy": false}, "after": {"force_destroy": true}}
    },
    {
      "address": "aws_iam_role.old",
      "mode": "managed",
      "type": "aws_iam_role",
      "name": "old",
      "change": {"actions": ["delete"], "before": {}, "after": null}
    },
    {
      "address": "data.aws_ami.ubuntu",
      "mode": "data",
      "type": "aws_ami",
      "name": "ubuntu",
      "change": {"actions": ["read"], "before": null, "after": {}}
    },
    {
      "address": "aws_vpc.main",
      "mode": "managed",
      "type": "aws_vpc",
      "name": "main",
      "change": {"actions": ["no-op"], "before": {}, "after": {}}
    }
  ]
}`

func TestParsePlan(t *testing.T) {
	plan, err := ParsePlan([]byte(planFixture))
	require.NoError(t, err)

	assert.Equal(t, "1.2", plan.FormatVersion)
	assert.Equal(t, "1.9.5", plan.TerraformVersion)
	require.Len(t, plan.ResourceChanges, 7)

	assert.Equal(t, "aws_instance.web", plan.ResourceChanges[0].Address)
	assert.Equal(t, ActionCreate, plan.ResourceChanges[0].Change.Kind())
	assert.Equal(t, ActionReplace, plan.ResourceChanges[2].Change.Kind())
	assert.Equal(t, "replace_because_cannot_update", plan.ResourceChanges[2].ActionReason)
}

func TestParsePlan_NotAPlanExport(t *testing.T) {
	_, err := ParsePlan([]byte(`{"foo": 1}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a terraform plan export")
}

func TestParsePlan_BadJSON(t *testing.T) {
	_, err := ParsePlan([]byte("terraform will perform the following actions"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse plan JSON")
}

func TestLoadPlanJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(planFixture), 0o644))

	plan, err := LoadPlanJSON(path)
	require.NoError(t, err)
	assert.Equal(t, "1.9.5", plan.TerraformVersion)
}

func TestLoadPlanJSON_MissingFile(t *testing.T) {
	_, err := LoadPlanJSON(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read plan JSON file")
}

func TestChangeKind(t *testing.T) {
	tests := []struct {
		actions []string
		want    ActionKind
	}{
		{[]string{"create"}, ActionCreate},
		{[]string{"update"}, ActionUpdate},
		{[]string{"delete"}, ActionDelete},
		{[]string{"delete", "create"}, ActionReplace},
		{[]string{"create", "delete"}, ActionReplace},
		{[]string{"read"}, ActionRead},
		{[]string{"no-op"}, ActionNoOp},
		{nil, ActionNoOp},
	}
	for _, tt := range tests {
		change := Change{Actions: tt.actions}
		assert.Equal(t, tt.want, change.Kind(), "actions %v", tt.actions)
	}
}

func TestDestroyBeforeCreate(t *testing.T) {
	assert.True(t, (&Change{Actions: []string{"delete", "create"}}).DestroyBeforeCreate())
	assert.False(t, (&Change{Actions: []string{"create", "delete"}}).DestroyBeforeCreate())
	assert.False(t, (&Change{Actions: []string{"create"}}).DestroyBeforeCreate())
}
