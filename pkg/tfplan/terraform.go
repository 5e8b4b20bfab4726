package tfplan

import (
	"context"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/anvil-ai/cacheforge-skills/pkg/cmdexec"
)

const binaryName = "terraform"

// EnsureInstalled checks that terraform is on PATH. Only needed for binary
// plan files; JSON exports are read directly.
func EnsureInstalled() error {
	return cmdexec.EnsureBinary(binaryName, "install terraform, see https://developer.hashicorp.com/terraform/install")
}

// LoadBinaryPlan converts a binary plan file to JSON via `terraform show`
// and parses it. terraform must run from the plan's working directory, so
// the file's directory is passed through -chdir.
func LoadBinaryPlan(ctx context.Context, path string, timeout time.Duration) (*Plan, error) {
	if err := EnsureInstalled(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve plan path %s", path)
	}

	out, err := cmdexec.Output(ctx, timeout, binaryName,
		"-chdir="+filepath.Dir(abs), "show", "-json", filepath.Base(abs))
	if err != nil {
		return nil, errors.Wrap(err, "terraform show failed")
	}
	return ParsePlan(out)
}
