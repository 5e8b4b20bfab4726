// Package kubehealth turns kubectl's JSON output into a prioritized cluster
// triage report: unhealthy nodes, stuck or crashing pods, and recent warning
// events, classified by severity.
package kubehealth

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"

	"github.com/anvil-ai/cacheforge-skills/pkg/logger"
)

// Severity ranks a finding.
type Severity string

const (
	// SeverityCritical marks findings needing immediate attention.
	SeverityCritical Severity = "critical"
	// SeverityWarning marks degraded but functioning state.
	SeverityWarning Severity = "warning"
	// SeverityInfo marks context worth seeing, like recent warning events.
	SeverityInfo Severity = "info"
)

// pendingGrace is how long a pod may sit in Pending before it is flagged.
const pendingGrace = 10 * time.Minute

// highRestartThreshold flags pods whose containers restarted this many times.
const highRestartThreshold = 5

// Options configure a triage run.
type Options struct {
	Namespace   string
	Context     string
	Kubeconfig  string
	EventsSince time.Duration
	Timeout     time.Duration
}

// Finding is one classified problem.
type Finding struct {
	Severity  Severity `json:"severity"`
	Kind      string   `json:"kind"`
	Namespace string   `json:"namespace,omitempty"`
	Name      string   `json:"name"`
	Reason    string   `json:"reason"`
	Detail    string   `json:"detail,omitempty"`
}

// Suspect is a workload row for the suspect table: pods that are crashing or
// restarting heavily.
type Suspect struct {
	Namespace string `json:"namespace"`
	Pod       string `json:"pod"`
	Restarts  int    `json:"restarts"`
	Reason    string `json:"reason"`
}

// Summary is the cluster health headline.
type Summary struct {
	NodesTotal    int `json:"nodesTotal"`
	NodesReady    int `json:"nodesReady"`
	PodsTotal     int `json:"podsTotal"`
	PodsHealthy   int `json:"podsHealthy"`
	WarningEvents int `json:"warningEvents"`
}

// Report is the full triage result.
type Report struct {
	Summary     Summary   `json:"summary"`
	EventWindow string    `json:"eventWindow"`
	Findings    []Finding `json:"findings"`
	Suspects    []Suspect `json:"suspects,omitempty"`
}

// Healthy reports whether triage found nothing above info severity.
func (r *Report) Healthy() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityCritical || f.Severity == SeverityWarning {
			return false
		}
	}
	return true
}

// Run performs the full triage: sanity-check kubectl, fetch cluster state,
// classify. Findings are a report, not a failure; the error is only set when
// the cluster could not be queried.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if err := EnsureInstalled(); err != nil {
		return nil, err
	}

	kubectl := &Kubectl{Context: opts.Context, Kubeconfig: opts.Kubeconfig, Timeout: opts.Timeout}
	version, err := kubectl.ClientVersion(ctx)
	if err != nil {
		return nil, err
	}
	logger.G(ctx).WithField("kubectl", version).Debug("kubectl sanity check passed")

	nodes, err := kubectl.Nodes(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list nodes")
	}
	pods, err := kubectl.Pods(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list pods")
	}
	events, err := kubectl.WarningEvents(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list events")
	}

	return Triage(nodes, pods, events, opts, time.Now())
}

// Triage classifies already-fetched cluster state. Split out from Run so the
// rules can be exercised against fixture data.
func Triage(nodes *NodeList, pods *PodList, events *EventList, opts Options, now time.Time) (*Report, error) {
	var nsFilter glob.Glob
	if opts.Namespace != "" {
		compiled, err := glob.Compile(opts.Namespace)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid namespace pattern %q", opts.Namespace)
		}
		nsFilter = compiled
	}
	if opts.EventsSince <= 0 {
		opts.EventsSince = time.Hour
	}

	report := &Report{EventWindow: opts.EventsSince.String()}
	report.triageNodes(nodes)
	report.triagePods(pods, nsFilter, now)
	report.triageEvents(events, nsFilter, now.Add(-opts.EventsSince))

	sort.SliceStable(report.Findings, func(i, j int) bool {
		return severityRank(report.Findings[i].Severity) < severityRank(report.Findings[j].Severity)
	})
	sort.Slice(report.Suspects, func(i, j int) bool {
		if report.Suspects[i].Restarts != report.Suspects[j].Restarts {
			return report.Suspects[i].Restarts > report.Suspects[j].Restarts
		}
		return report.Suspects[i].Pod < report.Suspects[j].Pod
	})
	return report, nil
}

func severityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

var pressureConditions = map[string]struct{}{
	"MemoryPressure":     {},
	"DiskPressure":       {},
	"PIDPressure":        {},
	"NetworkUnavailable": {},
}

func (r *Report) triageNodes(nodes *NodeList) {
	for _, node := range nodes.Items {
		r.Summary.NodesTotal++

		ready := false
		var readyMessage string
		for _, cond := range node.Status.Conditions {
			if cond.Type == "Ready" {
				ready = cond.Status == "True"
				readyMessage = cond.Message
				continue
			}
			if _, pressure := pressureConditions[cond.Type]; pressure && cond.Status == "True" {
				r.Findings = append(r.Findings, Finding{
					Severity: SeverityWarning,
					Kind:     "Node",
					Name:     node.Metadata.Name,
					Reason:   cond.Type,
					Detail:   firstLine(cond.Message),
				})
			}
		}

		if ready {
			r.Summary.NodesReady++
			continue
		}
		r.Findings = append(r.Findings, Finding{
			Severity: SeverityCritical,
			Kind:     "Node",
			Name:     node.Metadata.Name,
			Reason:   "NotReady",
			Detail:   firstLine(readyMessage),
		})
	}
}

// waitingSeverity classifies a container waiting reason. Transient startup
// states are not findings; the pending-age rule covers pods stuck there.
func waitingSeverity(reason string) (Severity, bool) {
	switch reason {
	case "CrashLoopBackOff", "ImagePullBackOff", "ErrImagePull", "CreateContainerConfigError", "CreateContainerError":
		return SeverityCritical, true
	case "", "ContainerCreating", "PodInitializing":
		return "", false
	default:
		return SeverityWarning, true
	}
}

func (r *Report) triagePods(pods *PodList, nsFilter glob.Glob, now time.Time) {
	for _, pod := range pods.Items {
		if nsFilter != nil && !nsFilter.Match(pod.Metadata.Namespace) {
			continue
		}
		r.Summary.PodsTotal++

		restarts := 0
		var waiting *StateWaiting
		for _, cs := range pod.Status.ContainerStatuses {
			restarts += cs.RestartCount
			if waiting == nil && cs.State.Waiting != nil {
				waiting = cs.State.Waiting
			}
		}

		flagged := false
		phase := pod.Status.Phase

		if waiting != nil {
			if severity, bad := waitingSeverity(waiting.Reason); bad {
				flagged = true
				r.Findings = append(r.Findings, Finding{
					Severity:  severity,
					Kind:      "Pod",
					Namespace: pod.Metadata.Namespace,
					Name:      pod.Metadata.Name,
					Reason:    waiting.Reason,
					Detail:    firstLine(waiting.Message),
				})
			}
		}

		switch {
		case phase == "Failed":
			flagged = true
			reason := pod.Status.Reason
			if reason == "" {
				reason = "Failed"
			}
			r.Findings = append(r.Findings, Finding{
				Severity:  SeverityCritical,
				Kind:      "Pod",
				Namespace: pod.Metadata.Namespace,
				Name:      pod.Metadata.Name,
				Reason:    reason,
			})
		case phase == "Pending":
			if age := now.Sub(pod.Metadata.CreationTimestamp); age > pendingGrace {
				flagged = true
				r.Findings = append(r.Findings, Finding{
					Severity:  SeverityWarning,
					Kind:      "Pod",
					Namespace: pod.Metadata.Namespace,
					Name:      pod.Metadata.Name,
					Reason:    "PendingTooLong",
					Detail:    fmt.Sprintf("pending for %s", age.Round(time.Minute)),
				})
			}
		case phase != "Running" && phase != "Succeeded":
			flagged = true
			r.Findings = append(r.Findings, Finding{
				Severity:  SeverityWarning,
				Kind:      "Pod",
				Namespace: pod.Metadata.Namespace,
				Name:      pod.Metadata.Name,
				Reason:    phase,
			})
		}

		if restarts >= highRestartThreshold {
			flagged = true
			r.Findings = append(r.Findings, Finding{
				Severity:  SeverityWarning,
				Kind:      "Pod",
				Namespace: pod.Metadata.Namespace,
				Name:      pod.Metadata.Name,
				Reason:    "HighRestartCount",
				Detail:    fmt.Sprintf("%d restarts", restarts),
			})
		}

		if restarts >= highRestartThreshold || (waiting != nil && waiting.Reason == "CrashLoopBackOff") {
			reason := "restarts"
			if waiting != nil {
				reason = waiting.Reason
			}
			r.Suspects = append(r.Suspects, Suspect{
				Namespace: pod.Metadata.Namespace,
				Pod:       pod.Metadata.Name,
				Restarts:  restarts,
				Reason:    reason,
			})
		}

		if !flagged && (phase == "Running" || phase == "Succeeded") {
			r.Summary.PodsHealthy++
		}
	}
}

type eventGroup struct {
	finding Finding
	count   int
}

func (r *Report) triageEvents(events *EventList, nsFilter glob.Glob, cutoff time.Time) {
	groups := make(map[string]*eventGroup)
	var keys []string

	for _, ev := range events.Items {
		if ev.Type != "Warning" {
			continue
		}
		namespace := ev.InvolvedObject.Namespace
		if nsFilter != nil && namespace != "" && !nsFilter.Match(namespace) {
			continue
		}
		if ev.when().Before(cutoff) {
			continue
		}

		count := ev.Count
		if count < 1 {
			count = 1
		}
		r.Summary.WarningEvents += count

		key := namespace + "/" + ev.InvolvedObject.Name + "/" + ev.Reason
		group, ok := groups[key]
		if !ok {
			group = &eventGroup{finding: Finding{
				Severity:  SeverityInfo,
				Kind:      ev.InvolvedObject.Kind,
				Namespace: namespace,
				Name:      ev.InvolvedObject.Name,
				Reason:    ev.Reason,
				Detail:    firstLine(ev.Message),
			}}
			groups[key] = group
			keys = append(keys, key)
		}
		group.count += count
	}

	sort.SliceStable(keys, func(i, j int) bool {
		if groups[keys[i]].count != groups[keys[j]].count {
			return groups[keys[i]].count > groups[keys[j]].count
		}
		return keys[i] < keys[j]
	})
	if len(keys) > 10 {
		keys = keys[:10]
	}

	for _, key := range keys {
		group := groups[key]
		finding := group.finding
		if group.count > 1 {
			finding.Detail = fmt.Sprintf("%dx: %s", group.count, finding.Detail)
		}
		r.Findings = append(r.Findings, finding)
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 160 {
		s = s[:157] + "..."
	}
	return s
}
