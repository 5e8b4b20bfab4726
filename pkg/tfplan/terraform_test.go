package tfplan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStubTerraform(t *testing.T, script string) {
	t.Helper()
	binDir := t.TempDir()
	stub := filepath.Join(binDir, "terraform")
	require.NoError(t, os.WriteFile(stub, []byte("#!/bin/sh\n"+script), 0o755))
	t.Setenv("PATH", binDir+":"+os.Getenv("PATH"))
}

func TestLoadBinaryPlan(t *testing.T) {
	workDir := t.TempDir()
	planPath := filepath.Join(workDir, "plan.tfplan")
	require.NoError(t, os.WriteFile(planPath, []byte("binary plan bytes"), 0o644))

	exportPath := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(exportPath, []byte(planFixture), 0o644))

	writeStubTerraform(t, fmt.Sprintf(`case "$*" in
  "-chdir=%s show -json plan.tfplan") cat %s ;;
  *) echo "unexpected args: $*" >&2; exit 64 ;;
esac`, workDir, exportPath))

	plan, err := LoadBinaryPlan(context.Background(), planPath, 0)
	require.NoError(t, err)
	assert.Equal(t, "1.9.5", plan.TerraformVersion)
	assert.Len(t, plan.ResourceChanges, 7)
}

func TestLoadBinaryPlan_ShowFails(t *testing.T) {
	writeStubTerraform(t, `echo "Error: stale plan" >&2
exit 1`)

	_, err := LoadBinaryPlan(context.Background(), filepath.Join(t.TempDir(), "plan.tfplan"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "terraform show failed")
	assert.Contains(t, err.Error(), "stale plan")
}

func TestLoadBinaryPlan_TerraformMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := LoadBinaryPlan(context.Background(), "plan.tfplan", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing dependency: terraform")
}
