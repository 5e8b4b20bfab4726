// Package promrules audits Prometheus rule and config files: it wraps
// promtool's syntax checks and independently inventories the rules so the
// report can show what a file defines, not just whether it parses.
package promrules

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/anvil-ai/cacheforge-skills/pkg/cmdexec"
)

const binaryName = "promtool"

// EnsureInstalled checks that promtool is on PATH.
func EnsureInstalled() error {
	return cmdexec.EnsureBinary(binaryName, "promtool ships with prometheus, see https://prometheus.io/download/")
}

// Promtool wraps the promtool binary.
type Promtool struct {
	Timeout time.Duration
}

// CheckResult is the parsed outcome of one promtool check.
type CheckResult struct {
	File       string `json:"file"`
	Passed     bool   `json:"passed"`
	RulesFound int    `json:"rules_found,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// CheckRules runs `promtool check rules` on one file.
func (p *Promtool) CheckRules(ctx context.Context, path string) (*CheckResult, error) {
	return p.check(ctx, "rules", path)
}

// CheckConfig runs `promtool check config` on one file.
func (p *Promtool) CheckConfig(ctx context.Context, path string) (*CheckResult, error) {
	return p.check(ctx, "config", path)
}

func (p *Promtool) check(ctx context.Context, kind string, path string) (*CheckResult, error) {
	out, runErr := cmdexec.Run(ctx, p.Timeout, binaryName, "check", kind, path)

	result, ok := parseCheckOutput(path, out)
	if !ok {
		// A failed check still prints FAILED; anything else is promtool
		// itself breaking.
		if runErr != nil {
			return nil, errors.Wrapf(runErr, "promtool check %s failed", kind)
		}
		return nil, errors.Errorf("could not parse promtool check %s output for %s", kind, path)
	}
	return result, nil
}

var rulesFoundRe = regexp.MustCompile(`(\d+) rules found`)

func parseCheckOutput(path string, out string) (*CheckResult, bool) {
	if idx := strings.Index(out, "FAILED"); idx >= 0 {
		detail := strings.TrimSpace(strings.TrimPrefix(out[idx:], "FAILED"))
		detail = strings.TrimSpace(strings.TrimPrefix(detail, ":"))
		return &CheckResult{File: path, Detail: detail}, true
	}
	if strings.Contains(out, "SUCCESS") {
		result := &CheckResult{File: path, Passed: true}
		if m := rulesFoundRe.FindStringSubmatch(out); m != nil {
			result.RulesFound, _ = strconv.Atoi(m[1])
		}
		return result, true
	}
	return nil, false
}
