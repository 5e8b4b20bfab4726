// Package cmdexec runs the external CLIs the skills wrap (kubectl,
// terraform, promtool, openclaw). Every invocation is synchronous and
// bounded by a timeout; there are no retries.
package cmdexec

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/anvil-ai/cacheforge-skills/pkg/logger"
)

// DefaultTimeout bounds a single external tool invocation.
const DefaultTimeout = 30 * time.Second

// EnsureBinary checks that the named binary is on PATH. The optional hint is
// appended to the error to tell the user how to install it.
func EnsureBinary(name string, hint string) error {
	if _, err := exec.LookPath(name); err != nil {
		if hint != "" {
			return errors.Errorf("missing dependency: %s not found in PATH (%s)", name, hint)
		}
		return errors.Errorf("missing dependency: %s not found in PATH", name)
	}
	return nil
}

// Run executes a command and returns its combined stdout and stderr. A zero
// timeout falls back to DefaultTimeout. Non-zero exits come back as errors
// carrying the exit status and the command output.
func Run(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
	return RunEnv(ctx, timeout, nil, name, args...)
}

// RunEnv is Run with extra "KEY=value" entries appended to the inherited
// environment, for tools configured through env vars (OPENCLAW_CONFIG_PATH).
func RunEnv(ctx context.Context, timeout time.Duration, extraEnv []string, name string, args ...string) (string, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger.G(ctx).WithField("command", name+" "+strings.Join(args, " ")).Debug("running external tool")

	cmd := exec.CommandContext(ctx, name, args...)
	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return string(output), errors.Errorf("%s timed out after %s", name, timeout)
		}
		if status, ok := err.(*exec.ExitError); ok {
			return string(output), errors.Errorf("%s exited with status %d: %s",
				name, status.ExitCode(), strings.TrimSpace(string(output)))
		}
		return string(output), errors.Wrapf(err, "failed to run %s", name)
	}

	return string(output), nil
}

// Output executes a command and returns stdout only. Stderr is folded into
// the error on failure. Used for tools queried for machine-readable output
// (kubectl -o json, terraform show -json).
func Output(ctx context.Context, timeout time.Duration, name string, args ...string) ([]byte, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger.G(ctx).WithField("command", name+" "+strings.Join(args, " ")).Debug("running external tool")

	cmd := exec.CommandContext(ctx, name, args...)
	stdout, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Errorf("%s timed out after %s", name, timeout)
		}
		if status, ok := err.(*exec.ExitError); ok {
			return stdout, errors.Errorf("%s exited with status %d: %s",
				name, status.ExitCode(), strings.TrimSpace(string(status.Stderr)))
		}
		return nil, errors.Wrapf(err, "failed to run %s", name)
	}

	return stdout, nil
}
