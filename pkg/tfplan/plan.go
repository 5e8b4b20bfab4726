// Package tfplan digests terraform plan exports: change counts per action
// and resource type, plus risk flags for destructive changes to stateful
// infrastructure.
package tfplan

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// ActionKind is the effective action for one resource change.
type ActionKind string

const (
	ActionCreate  ActionKind = "create"
	ActionUpdate  ActionKind = "update"
	ActionDelete  ActionKind = "delete"
	ActionReplace ActionKind = "replace"
	ActionRead    ActionKind = "read"
	ActionNoOp    ActionKind = "no-op"
)

// Plan is the subset of the terraform JSON plan format the digest reads.
type Plan struct {
	FormatVersion    string           `json:"format_version"`
	TerraformVersion string           `json:"terraform_version"`
	ResourceChanges  []ResourceChange `json:"resource_changes"`
}

// ResourceChange is one entry of resource_changes.
type ResourceChange struct {
	Address      string `json:"address"`
	Mode         string `json:"mode"`
	Type         string `json:"type"`
	Name         string `json:"name"`
	ProviderName string `json:"provider_name"`
	Change       Change `json:"change"`
	ActionReason string `json:"action_reason,omitempty"`
}

// Change carries the planned actions and values. Before/After stay raw so
// risk probes can inspect attributes without modeling every provider schema.
type Change struct {
	Actions []string        `json:"actions"`
	Before  json.RawMessage `json:"before"`
	After   json.RawMessage `json:"after"`
}

// Kind collapses the actions array into a single effective action. Terraform
// encodes a replacement as both create and delete, ordered by which happens
// first.
func (c *Change) Kind() ActionKind {
	var create, del, update, read bool
	for _, action := range c.Actions {
		switch action {
		case "create":
			create = true
		case "delete":
			del = true
		case "update":
			update = true
		case "read":
			read = true
		}
	}
	switch {
	case create && del:
		return ActionReplace
	case create:
		return ActionCreate
	case del:
		return ActionDelete
	case update:
		return ActionUpdate
	case read:
		return ActionRead
	default:
		return ActionNoOp
	}
}

// DestroyBeforeCreate reports whether a replacement tears the resource down
// before the new one exists, i.e. the lifecycle lacks create_before_destroy.
func (c *Change) DestroyBeforeCreate() bool {
	return c.Kind() == ActionReplace && len(c.Actions) > 0 && c.Actions[0] == "delete"
}

// ParsePlan decodes a terraform JSON plan export.
func ParsePlan(data []byte) (*Plan, error) {
	var plan Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, errors.Wrap(err, "failed to parse plan JSON")
	}
	if plan.FormatVersion == "" {
		return nil, errors.New("not a terraform plan export (missing format_version)")
	}
	return &plan, nil
}

// LoadPlanJSON reads an already exported plan, as produced by
// `terraform show -json plan.tfplan`.
func LoadPlanJSON(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read plan JSON file")
	}
	return ParsePlan(data)
}
