package kubehealth

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/anvil-ai/cacheforge-skills/pkg/cmdexec"
)

const binaryName = "kubectl"

// EnsureInstalled checks that kubectl is on PATH.
func EnsureInstalled() error {
	return cmdexec.EnsureBinary(binaryName, "install kubectl, see https://kubernetes.io/docs/tasks/tools/")
}

// Kubectl invokes the kubectl binary with shared connection flags.
type Kubectl struct {
	Context    string
	Kubeconfig string
	Timeout    time.Duration
}

func (k *Kubectl) commonArgs() []string {
	var args []string
	if k.Context != "" {
		args = append(args, "--context", k.Context)
	}
	if k.Kubeconfig != "" {
		args = append(args, "--kubeconfig", k.Kubeconfig)
	}
	return args
}

// ClientVersion runs the client-side sanity check and returns the version.
func (k *Kubectl) ClientVersion(ctx context.Context) (string, error) {
	args := append(k.commonArgs(), "version", "--client", "--output=json")
	out, err := cmdexec.Output(ctx, k.Timeout, binaryName, args...)
	if err != nil {
		return "", errors.Wrap(err, "kubectl is installed but not working")
	}
	version := gjson.GetBytes(out, "clientVersion.gitVersion").String()
	if version == "" {
		return "", errors.New("could not parse kubectl version output")
	}
	return version, nil
}

func (k *Kubectl) getJSON(ctx context.Context, out any, resource ...string) error {
	args := append(k.commonArgs(), resource...)
	data, err := cmdexec.Output(ctx, k.Timeout, binaryName, args...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "failed to decode kubectl %s output", strings.Join(resource, " "))
	}
	return nil
}

// Nodes fetches every node in the cluster.
func (k *Kubectl) Nodes(ctx context.Context) (*NodeList, error) {
	var list NodeList
	if err := k.getJSON(ctx, &list, "get", "nodes", "-o", "json"); err != nil {
		return nil, err
	}
	return &list, nil
}

// Pods fetches pods across all namespaces.
func (k *Kubectl) Pods(ctx context.Context) (*PodList, error) {
	var list PodList
	if err := k.getJSON(ctx, &list, "get", "pods", "-A", "-o", "json"); err != nil {
		return nil, err
	}
	return &list, nil
}

// WarningEvents fetches warning-type events across all namespaces.
func (k *Kubectl) WarningEvents(ctx context.Context) (*EventList, error) {
	var list EventList
	if err := k.getJSON(ctx, &list, "get", "events", "-A", "--field-selector", "type=Warning", "-o", "json"); err != nil {
		return nil, err
	}
	return &list, nil
}
