package cmdexec

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureBinary(t *testing.T) {
	assert.NoError(t, EnsureBinary("sh", ""))

	err := EnsureBinary("definitely-not-installed-xyz", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing dependency")
	assert.Contains(t, err.Error(), "definitely-not-installed-xyz")
}

func TestEnsureBinary_Hint(t *testing.T) {
	err := EnsureBinary("definitely-not-installed-xyz", "https://example.com/install")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "https://example.com/install")
}

func TestRun(t *testing.T) {
	out, err := Run(context.Background(), 0, "sh", "-c", "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestRun_CombinesStderr(t *testing.T) {
	out, err := Run(context.Background(), 0, "sh", "-c", "echo oops >&2; echo ok")
	require.NoError(t, err)
	assert.Contains(t, out, "oops")
	assert.Contains(t, out, "ok")
}

func TestRun_NonZeroExit(t *testing.T) {
	_, err := Run(context.Background(), 0, "sh", "-c", "echo broken; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited with status 3")
	assert.Contains(t, err.Error(), "broken")
}

func TestRunEnv(t *testing.T) {
	out, err := RunEnv(context.Background(), 0, []string{"CMDEXEC_PROBE=from-test"}, "sh", "-c", "echo $CMDEXEC_PROBE")
	require.NoError(t, err)
	assert.Equal(t, "from-test\n", out)
}

func TestRun_Timeout(t *testing.T) {
	start := time.Now()
	_, err := Run(context.Background(), 100*time.Millisecond, "sh", "-c", "sleep 5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestOutput_StdoutOnly(t *testing.T) {
	out, err := Output(context.Background(), 0, "sh", "-c", "echo noise >&2; echo '{\"ok\":true}'")
	require.NoError(t, err)
	assert.Equal(t, "{\"ok\":true}\n", string(out))
}

func TestOutput_ErrorIncludesStderr(t *testing.T) {
	_, err := Output(context.Background(), 0, "sh", "-c", "echo 'no such resource' >&2; exit 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited with status 1")
	assert.Contains(t, err.Error(), "no such resource")
}
