// Package workflow compiles simplified, human-authored workflow
// descriptions into the fully-resolved graph representation the n8n
// engine expects: index-based port wiring, stable per-node
// identifiers, and default canvas layout.
//
// Compilation is a pure, synchronous transformation. It performs no
// I/O and keeps no state between calls, so it is safe to invoke
// concurrently.
package workflow

// NodeSpec describes a single node in a simplified workflow
// description. Name must be unique within a spec; Type identifies the
// node behavior and is opaque to the compiler.
type NodeSpec struct {
	// Name is the user-facing node name, unique within the spec.
	Name string `json:"name"`

	// Type is the engine node type (e.g. "n8n-nodes-base.httpRequest").
	// The compiler does not interpret it; type validity is the
	// engine's concern at execution time.
	Type string `json:"type"`

	// Parameters is the node configuration, passed through verbatim.
	Parameters map[string]any `json:"parameters,omitempty"`

	// Position optionally pins the node to a canvas position. Nodes
	// without one are assigned a deterministic default during
	// compilation.
	Position *Position `json:"position,omitempty"`
}

// ConnectionSpec describes a directed, port-addressed link between two
// named nodes. Port indices are optional; an omitted index selects
// port 0.
type ConnectionSpec struct {
	// Source is the name of the node the connection leaves from.
	Source string `json:"source"`

	// Target is the name of the node the connection arrives at.
	Target string `json:"target"`

	// SourceOutput selects which output port of the source node the
	// connection attaches to. Nil means port 0.
	SourceOutput *int `json:"sourceOutput,omitempty"`

	// TargetInput selects which input port of the target node the
	// connection attaches to. Nil means port 0.
	TargetInput *int `json:"targetInput,omitempty"`
}

// WorkflowSpec is the simplified workflow description accepted by
// Compile. Node order is significant only for identifier assignment
// and default layout; connection order is preserved in the compiled
// output.
type WorkflowSpec struct {
	// Name is the workflow name. Empty defaults to DefaultName.
	Name string `json:"name,omitempty"`

	// Nodes is the ordered node list. Must be non-empty.
	Nodes []NodeSpec `json:"nodes"`

	// Connections is the ordered connection list. May be empty; a
	// workflow of disconnected nodes is permitted.
	Connections []ConnectionSpec `json:"connections,omitempty"`
}

// Position is a 2-D canvas position.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DefaultName is used when a spec carries no workflow name.
const DefaultName = "My workflow"
