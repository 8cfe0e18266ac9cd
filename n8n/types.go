// Package n8n is a thin client for the n8n public REST API. Every
// exported operation maps one-to-one onto a single engine endpoint;
// the package keeps no state of its own beyond the configured HTTP
// client.
package n8n

import "time"

// Workflow is the engine-side workflow representation used by the
// create, update, and read endpoints.
type Workflow struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Active      bool           `json:"active,omitempty"`
	Nodes       []Node         `json:"nodes"`
	Connections ConnectionMap  `json:"connections"`
	Settings    map[string]any `json:"settings"`
	CreatedAt   *time.Time     `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time     `json:"updatedAt,omitempty"`
}

// Node is the engine-side node representation.
type Node struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	TypeVersion float64        `json:"typeVersion"`
	Position    [2]float64     `json:"position"`
	Parameters  map[string]any `json:"parameters"`
}

// ConnectionMap is the engine's connection encoding: outgoing
// connections grouped under the source node's name, with one port
// group per output index.
type ConnectionMap map[string]NodeConnections

// NodeConnections holds the per-output port groups of one source node.
// Main[i] lists the connections leaving output port i.
type NodeConnections struct {
	Main [][]Port `json:"main"`
}

// Port addresses one input port of a target node.
type Port struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// WorkflowList is the paginated response of the workflow list
// endpoint.
type WorkflowList struct {
	Data       []Workflow `json:"data"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

// Execution is one workflow execution record.
type Execution struct {
	ID         int64      `json:"id"`
	WorkflowID string     `json:"workflowId"`
	Status     string     `json:"status"`
	Mode       string     `json:"mode,omitempty"`
	Finished   bool       `json:"finished"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	StoppedAt  *time.Time `json:"stoppedAt,omitempty"`
	Data       any        `json:"data,omitempty"`
}

// Execution status values reported by the engine.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusRunning = "running"
	StatusWaiting = "waiting"
)

// ExecutionList is the paginated response of the execution list
// endpoint.
type ExecutionList struct {
	Data       []Execution `json:"data"`
	NextCursor string      `json:"nextCursor,omitempty"`
}
