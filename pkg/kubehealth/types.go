package kubehealth

import "time"

// Minimal shapes for the kubectl -o json output the triage consumes. Only
// the fields the classifier reads are declared; everything else is dropped
// during decoding.

// ObjectMeta is the common metadata block on every object.
type ObjectMeta struct {
	Name              string    `json:"name"`
	Namespace         string    `json:"namespace,omitempty"`
	CreationTimestamp time.Time `json:"creationTimestamp"`
}

// Condition is a node or pod status condition.
type Condition struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// NodeList mirrors `kubectl get nodes -o json`.
type NodeList struct {
	Items []Node `json:"items"`
}

// Node is one cluster node.
type Node struct {
	Metadata ObjectMeta `json:"metadata"`
	Status   NodeStatus `json:"status"`
}

// NodeStatus carries the node conditions.
type NodeStatus struct {
	Conditions []Condition `json:"conditions"`
}

// PodList mirrors `kubectl get pods -A -o json`.
type PodList struct {
	Items []Pod `json:"items"`
}

// Pod is one pod with the status fields triage inspects.
type Pod struct {
	Metadata ObjectMeta `json:"metadata"`
	Status   PodStatus  `json:"status"`
}

// PodStatus is the pod phase plus per-container state.
type PodStatus struct {
	Phase             string            `json:"phase"`
	Reason            string            `json:"reason,omitempty"`
	StartTime         *time.Time        `json:"startTime,omitempty"`
	ContainerStatuses []ContainerStatus `json:"containerStatuses,omitempty"`
}

// ContainerStatus is one container's restart count and current state.
type ContainerStatus struct {
	Name         string         `json:"name"`
	RestartCount int            `json:"restartCount"`
	State        ContainerState `json:"state"`
}

// ContainerState holds whichever state block the container is in.
type ContainerState struct {
	Waiting    *StateWaiting    `json:"waiting,omitempty"`
	Terminated *StateTerminated `json:"terminated,omitempty"`
}

// StateWaiting explains why a container has not started.
type StateWaiting struct {
	Reason  string `json:"reason"`
	Message string `json:"message,omitempty"`
}

// StateTerminated records how a container exited.
type StateTerminated struct {
	Reason   string `json:"reason"`
	ExitCode int    `json:"exitCode"`
}

// EventList mirrors `kubectl get events -A -o json`.
type EventList struct {
	Items []Event `json:"items"`
}

// Event is one cluster event.
type Event struct {
	Metadata       ObjectMeta `json:"metadata"`
	Type           string     `json:"type"`
	Reason         string     `json:"reason"`
	Message        string     `json:"message"`
	Count          int        `json:"count"`
	LastTimestamp  *time.Time `json:"lastTimestamp"`
	InvolvedObject ObjectRef  `json:"involvedObject"`
}

// ObjectRef names the object an event is about.
type ObjectRef struct {
	Kind      string `json:"kind"`
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

// when returns the best-effort event timestamp. lastTimestamp is null for
// events reported through the newer events API.
func (e *Event) when() time.Time {
	if e.LastTimestamp != nil {
		return *e.LastTimestamp
	}
	return e.Metadata.CreationTimestamp
}
