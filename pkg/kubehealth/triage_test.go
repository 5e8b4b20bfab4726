package kubehealth

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nodesFixture = `{
  "items": [
    {
      "metadata": {"name": "node-a", "creationTimestamp": "2025-01-01T00:00:00Z"},
      "status": {"conditions": [
        {"type": "MemoryPressure", "status": "False"},
        {"type": "Ready", "status": "True"}
      ]}
    },
    {
      "metadata": {"name": "node-b", "creationTimestamp": "2025-01-01T00:00:00Z"},
      "status": {"conditions": [
        {"type": "Ready", "status": "False", "message": "kubelet stopped posting node status"}
      ]}
    },
    {
      "metadata": {"name": "node-c", "creationTimestamp": "2025-01-01T00:00:00Z"},
      "status": {"conditions": [
        {"type": "DiskPressure", "status": "True", "message": "imagefs low"},
        {"type": "Ready", "status": "True"}
      ]}
    }
  ]
}`

const podsFixture = `{
  "items": [
    {
      "metadata": {"name": "api", "namespace": "prod", "creationTimestamp": "2025-06-01T10:00:00Z"},
      "status": {
        "phase": "Running",
        "containerStatuses": [{"name": "api", "restartCount": 0, "state": {"running": {}}}]
      }
    },
    {
      "metadata": {"name": "crash", "namespace": "prod", "creationTimestamp": "2025-06-01T10:00:00Z"},
      "status": {
        "phase": "Running",
        "containerStatuses": [{
          "name": "main",
          "restartCount": 7,
          "state": {"waiting": {"reason": "CrashLoopBackOff", "message": "back-off 5m0s restarting failed container"}}
        }]
      }
    },
    {
      "metadata": {"name": "stuckimage", "namespace": "prod", "creationTimestamp": "2025-06-01T11:58:00Z"},
      "status": {
        "phase": "Pending",
        "containerStatuses": [{
          "name": "main",
          "restartCount": 0,
          "state": {"waiting": {"reason": "ImagePullBackOff", "message": "Back-off pulling image \"ghcr.io/acme/api:v9\""}}
        }]
      }
    },
    {
      "metadata": {"name": "unscheduled", "namespace": "prod", "creationTimestamp": "2025-06-01T11:30:00Z"},
      "status": {"phase": "Pending"}
    },
    {
      "metadata": {"name": "evicted", "namespace": "prod", "creationTimestamp": "2025-06-01T09:00:00Z"},
      "status": {"phase": "Failed", "reason": "Evicted"}
    },
    {
      "metadata": {"name": "migrate-done", "namespace": "prod", "creationTimestamp": "2025-06-01T09:00:00Z"},
      "status": {"phase": "Succeeded"}
    }
  ]
}`

const eventsFixture = `{
  "items": [
    {
      "metadata": {"name": "crash.1", "namespace": "prod", "creationTimestamp": "2025-06-01T11:00:00Z"},
      "type": "Warning",
      "reason": "BackOff",
      "message": "Back-off restarting failed container",
      "count": 12,
      "lastTimestamp": "2025-06-01T11:50:00Z",
      "involvedObject": {"kind": "Pod", "namespace": "prod", "name": "crash"}
    },
    {
      "metadata": {"name": "unscheduled.1", "namespace": "prod", "creationTimestamp": "2025-06-01T11:30:00Z"},
      "type": "Warning",
      "reason": "FailedScheduling",
      "message": "0/3 nodes are available: 3 Insufficient memory.",
      "count": 3,
      "lastTimestamp": "2025-06-01T11:55:00Z",
      "involvedObject": {"kind": "Pod", "namespace": "prod", "name": "unscheduled"}
    },
    {
      "metadata": {"name": "old.1", "namespace": "prod", "creationTimestamp": "2025-06-01T10:00:00Z"},
      "type": "Warning",
      "reason": "Unhealthy",
      "message": "Readiness probe failed",
      "count": 40,
      "lastTimestamp": "2025-06-01T10:30:00Z",
      "involvedObject": {"kind": "Pod", "namespace": "prod", "name": "api"}
    },
    {
      "metadata": {"name": "pull.1", "namespace": "prod", "creationTimestamp": "2025-06-01T11:59:00Z"},
      "type": "Warning",
      "reason": "Failed",
      "message": "Error: ErrImagePull",
      "count": 0,
      "lastTimestamp": null,
      "involvedObject": {"kind": "Pod", "namespace": "prod", "name": "stuckimage"}
    }
  ]
}`

func decodeFixtures(t *testing.T) (*NodeList, *PodList, *EventList) {
	t.Helper()
	var nodes NodeList
	var pods PodList
	var events EventList
	require.NoError(t, json.Unmarshal([]byte(nodesFixture), &nodes))
	require.NoError(t, json.Unmarshal([]byte(podsFixture), &pods))
	require.NoError(t, json.Unmarshal([]byte(eventsFixture), &events))
	return &nodes, &pods, &events
}

func TestTriage(t *testing.T) {
	nodes, pods, events := decodeFixtures(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	report, err := Triage(nodes, pods, events, Options{}, now)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Summary.NodesTotal)
	assert.Equal(t, 2, report.Summary.NodesReady)
	assert.Equal(t, 6, report.Summary.PodsTotal)
	assert.Equal(t, 2, report.Summary.PodsHealthy)
	assert.Equal(t, 16, report.Summary.WarningEvents)
	assert.Equal(t, "1h0m0s", report.EventWindow)
	assert.False(t, report.Healthy())

	critical := report.findingsBySeverity(SeverityCritical)
	require.Len(t, critical, 4)
	assert.Equal(t, Finding{
		Severity: SeverityCritical,
		Kind:     "Node",
		Name:     "node-b",
		Reason:   "NotReady",
		Detail:   "kubelet stopped posting node status",
	}, critical[0])
	assert.Equal(t, "CrashLoopBackOff", critical[1].Reason)
	assert.Equal(t, "ImagePullBackOff", critical[2].Reason)
	assert.Equal(t, "Evicted", critical[3].Reason)

	warning := report.findingsBySeverity(SeverityWarning)
	require.Len(t, warning, 3)
	assert.Equal(t, "DiskPressure", warning[0].Reason)
	assert.Equal(t, "imagefs low", warning[0].Detail)
	assert.Equal(t, "HighRestartCount", warning[1].Reason)
	assert.Equal(t, "7 restarts", warning[1].Detail)
	assert.Equal(t, "PendingTooLong", warning[2].Reason)
	assert.Equal(t, "pending for 30m0s", warning[2].Detail)

	info := report.findingsBySeverity(SeverityInfo)
	require.Len(t, info, 3)
	assert.Equal(t, "BackOff", info[0].Reason)
	assert.Equal(t, "12x: Back-off restarting failed container", info[0].Detail)
	assert.Equal(t, "FailedScheduling", info[1].Reason)
	assert.Equal(t, "Failed", info[2].Reason)
	assert.Equal(t, "Error: ErrImagePull", info[2].Detail)

	// Findings come back sorted critical, warning, info.
	assert.Equal(t, SeverityCritical, report.Findings[0].Severity)
	assert.Equal(t, SeverityInfo, report.Findings[len(report.Findings)-1].Severity)

	require.Len(t, report.Suspects, 1)
	assert.Equal(t, Suspect{Namespace: "prod", Pod: "crash", Restarts: 7, Reason: "CrashLoopBackOff"}, report.Suspects[0])
}

func TestTriage_NamespaceFilter(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-5 * time.Minute)

	pods := &PodList{Items: []Pod{
		{
			Metadata: ObjectMeta{Name: "api", Namespace: "prod-api", CreationTimestamp: now.Add(-time.Hour)},
			Status: PodStatus{Phase: "Running", ContainerStatuses: []ContainerStatus{
				{Name: "main", State: ContainerState{Waiting: &StateWaiting{Reason: "CrashLoopBackOff"}}},
			}},
		},
		{
			Metadata: ObjectMeta{Name: "scratch", Namespace: "dev", CreationTimestamp: now.Add(-time.Hour)},
			Status: PodStatus{Phase: "Running", ContainerStatuses: []ContainerStatus{
				{Name: "main", State: ContainerState{Waiting: &StateWaiting{Reason: "CrashLoopBackOff"}}},
			}},
		},
	}}
	events := &EventList{Items: []Event{
		{Type: "Warning", Reason: "BackOff", Count: 2, LastTimestamp: &recent,
			InvolvedObject: ObjectRef{Kind: "Pod", Namespace: "prod-api", Name: "api"}},
		{Type: "Warning", Reason: "BackOff", Count: 9, LastTimestamp: &recent,
			InvolvedObject: ObjectRef{Kind: "Pod", Namespace: "dev", Name: "scratch"}},
		{Type: "Warning", Reason: "SystemOOM", Count: 1, LastTimestamp: &recent,
			InvolvedObject: ObjectRef{Kind: "Node", Namespace: "", Name: "node-a"}},
	}}

	report, err := Triage(&NodeList{}, pods, events, Options{Namespace: "prod-*"}, now)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Summary.PodsTotal)
	// Cluster-scoped events pass the namespace filter.
	assert.Equal(t, 3, report.Summary.WarningEvents)

	for _, f := range report.Findings {
		assert.NotEqual(t, "dev", f.Namespace)
	}
	for _, s := range report.Suspects {
		assert.NotEqual(t, "dev", s.Namespace)
	}
}

func TestTriage_InvalidNamespacePattern(t *testing.T) {
	_, err := Triage(&NodeList{}, &PodList{}, &EventList{}, Options{Namespace: "["}, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid namespace pattern "["`)
}

func TestTriage_EventFindingsCapped(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-time.Minute)

	events := &EventList{}
	for i := 0; i < 12; i++ {
		events.Items = append(events.Items, Event{
			Type:          "Warning",
			Reason:        "Unhealthy",
			Message:       "Liveness probe failed",
			Count:         i + 1,
			LastTimestamp: &recent,
			InvolvedObject: ObjectRef{
				Kind:      "Pod",
				Namespace: "prod",
				Name:      fmt.Sprintf("web-%02d", i),
			},
		})
	}

	report, err := Triage(&NodeList{}, &PodList{}, events, Options{}, now)
	require.NoError(t, err)

	info := report.findingsBySeverity(SeverityInfo)
	assert.Len(t, info, 10)
	// All events still count, even the ones cut from the finding list.
	assert.Equal(t, 78, report.Summary.WarningEvents)
	// Noisiest group first.
	assert.Equal(t, "12x: Liveness probe failed", info[0].Detail)
	assert.Equal(t, "web-11", info[0].Name)
}

func TestTriage_RepeatedEventsGrouped(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-time.Minute)

	events := &EventList{Items: []Event{
		{Type: "Warning", Reason: "BackOff", Message: "Back-off restarting failed container",
			Count: 4, LastTimestamp: &recent,
			InvolvedObject: ObjectRef{Kind: "Pod", Namespace: "prod", Name: "crash"}},
		{Type: "Warning", Reason: "BackOff", Message: "Back-off restarting failed container",
			Count: 6, LastTimestamp: &recent,
			InvolvedObject: ObjectRef{Kind: "Pod", Namespace: "prod", Name: "crash"}},
	}}

	report, err := Triage(&NodeList{}, &PodList{}, events, Options{}, now)
	require.NoError(t, err)

	info := report.findingsBySeverity(SeverityInfo)
	require.Len(t, info, 1)
	assert.Equal(t, "10x: Back-off restarting failed container", info[0].Detail)
	assert.Equal(t, 10, report.Summary.WarningEvents)
}

func TestWaitingSeverity(t *testing.T) {
	tests := []struct {
		reason   string
		severity Severity
		flagged  bool
	}{
		{"CrashLoopBackOff", SeverityCritical, true},
		{"ImagePullBackOff", SeverityCritical, true},
		{"ErrImagePull", SeverityCritical, true},
		{"CreateContainerConfigError", SeverityCritical, true},
		{"CreateContainerError", SeverityCritical, true},
		{"ContainerCreating", "", false},
		{"PodInitializing", "", false},
		{"", "", false},
		{"SomethingElse", SeverityWarning, true},
	}
	for _, tt := range tests {
		t.Run("reason "+tt.reason, func(t *testing.T) {
			severity, flagged := waitingSeverity(tt.reason)
			assert.Equal(t, tt.flagged, flagged)
			assert.Equal(t, tt.severity, severity)
		})
	}
}

func TestHealthy(t *testing.T) {
	healthy := &Report{Findings: []Finding{{Severity: SeverityInfo, Reason: "BackOff"}}}
	assert.True(t, healthy.Healthy())

	degraded := &Report{Findings: []Finding{{Severity: SeverityWarning, Reason: "DiskPressure"}}}
	assert.False(t, degraded.Healthy())
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "first", firstLine(" first\nsecond\n"))
	assert.Equal(t, "", firstLine(""))

	long := firstLine(strings.Repeat("a", 300))
	assert.Len(t, long, 160)
	assert.True(t, strings.HasSuffix(long, "..."))
}
