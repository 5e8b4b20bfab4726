package tfplan

import (
	"fmt"
	"sort"

	"github.com/tidwall/gjson"
)

// statefulTypes hold data that cannot be recreated from configuration.
// Deleting or replacing one is flagged regardless of what else the plan does.
var statefulTypes = map[string]struct{}{
	"aws_db_instance":              {},
	"aws_rds_cluster":              {},
	"aws_dynamodb_table":           {},
	"aws_s3_bucket":                {},
	"aws_ebs_volume":               {},
	"aws_efs_file_system":          {},
	"aws_elasticache_cluster":      {},
	"google_sql_database_instance": {},
	"google_storage_bucket":        {},
	"google_bigtable_instance":     {},
	"azurerm_sql_database":         {},
	"azurerm_storage_account":      {},
	"azurerm_cosmosdb_account":     {},
}

// StatefulType reports whether a resource type is on the stateful list.
func StatefulType(resourceType string) bool {
	_, ok := statefulTypes[resourceType]
	return ok
}

// ActionCounts tallies resource changes per effective action.
type ActionCounts struct {
	Create  int `json:"create"`
	Update  int `json:"update"`
	Delete  int `json:"delete"`
	Replace int `json:"replace"`
}

// Total is the number of resources the plan will touch.
func (c ActionCounts) Total() int {
	return c.Create + c.Update + c.Delete + c.Replace
}

func (c *ActionCounts) add(kind ActionKind) {
	switch kind {
	case ActionCreate:
		c.Create++
	case ActionUpdate:
		c.Update++
	case ActionDelete:
		c.Delete++
	case ActionReplace:
		c.Replace++
	}
}

// TypeCount is the per-resource-type row of the digest.
type TypeCount struct {
	Type string `json:"type"`
	ActionCounts
}

// Risk flags one resource change worth a second look before applying.
type Risk struct {
	Address string `json:"address"`
	Type    string `json:"type"`
	Reason  string `json:"reason"`
}

// ResourceLine is one resource change for the detailed listing.
type ResourceLine struct {
	Address      string     `json:"address"`
	Type         string     `json:"type"`
	Action       ActionKind `json:"action"`
	ActionReason string     `json:"action_reason,omitempty"`
}

// Digest is the summarized plan.
type Digest struct {
	TerraformVersion string         `json:"terraform_version"`
	Counts           ActionCounts   `json:"counts"`
	ByType           []TypeCount    `json:"by_type"`
	Risks            []Risk         `json:"risks,omitempty"`
	Changes          []ResourceLine `json:"changes,omitempty"`
}

// BuildDigest summarizes a parsed plan. Data-source reads and no-ops are
// excluded from the counts and the detail listing.
func BuildDigest(plan *Plan) *Digest {
	digest := &Digest{TerraformVersion: plan.TerraformVersion}
	byType := make(map[string]*TypeCount)

	for _, rc := range plan.ResourceChanges {
		if rc.Mode != "" && rc.Mode != "managed" {
			continue
		}
		kind := rc.Change.Kind()
		if kind == ActionNoOp || kind == ActionRead {
			continue
		}

		digest.Counts.add(kind)
		tc, ok := byType[rc.Type]
		if !ok {
			tc = &TypeCount{Type: rc.Type}
			byType[rc.Type] = tc
		}
		tc.add(kind)

		digest.Changes = append(digest.Changes, ResourceLine{
			Address:      rc.Address,
			Type:         rc.Type,
			Action:       kind,
			ActionReason: rc.ActionReason,
		})
		digest.Risks = append(digest.Risks, assessRisks(rc, kind)...)
	}

	for _, tc := range byType {
		digest.ByType = append(digest.ByType, *tc)
	}
	sort.Slice(digest.ByType, func(i, j int) bool {
		return digest.ByType[i].Type < digest.ByType[j].Type
	})
	sort.Slice(digest.Changes, func(i, j int) bool {
		return digest.Changes[i].Address < digest.Changes[j].Address
	})

	return digest
}

func assessRisks(rc ResourceChange, kind ActionKind) []Risk {
	var risks []Risk
	flag := func(reason string) {
		risks = append(risks, Risk{Address: rc.Address, Type: rc.Type, Reason: reason})
	}

	if StatefulType(rc.Type) {
		switch kind {
		case ActionDelete:
			flag("stateful resource will be destroyed")
		case ActionReplace:
			flag("stateful resource will be replaced")
		}
	}

	if kind == ActionReplace && rc.Change.DestroyBeforeCreate() {
		flag("replacement does not use create_before_destroy")
	}

	if len(rc.Change.After) > 0 && gjson.GetBytes(rc.Change.After, "force_destroy").Bool() {
		flag(fmt.Sprintf("force_destroy is enabled on %s", rc.Type))
	}

	return risks
}
