package workflow

// Node is a resolved node in a compiled workflow: the input NodeSpec
// plus a stable identifier and a canvas position. Identifier
// assignment is a deterministic function of input order, so compiling
// the same spec twice yields identical IDs.
type Node struct {
	// ID is the stable node identifier used by compiled connections.
	ID string `json:"id"`

	// Name is the user-facing node name carried over from the spec.
	Name string `json:"name"`

	// Type is the engine node type, unchanged from the spec.
	Type string `json:"type"`

	// Parameters is the node configuration, unchanged from the spec.
	Parameters map[string]any `json:"parameters,omitempty"`

	// Position is the node's canvas position, either user-supplied or
	// a default assigned during compilation.
	Position Position `json:"position"`
}

// Connection is a compiled connection keyed by resolved node
// identifiers rather than names. Fan-out, fan-in, and self-loops are
// all permitted at this layer; loop semantics are the engine's call.
type Connection struct {
	// Source is the resolved identifier of the source node.
	Source string `json:"source"`

	// Target is the resolved identifier of the target node.
	Target string `json:"target"`

	// SourceOutput is the zero-based output port on the source node.
	SourceOutput int `json:"sourceOutput"`

	// TargetInput is the zero-based input port on the target node.
	TargetInput int `json:"targetInput"`
}

// Compiled is the engine-ready workflow graph produced by Compile. It
// holds no reference back to the input spec and is never mutated after
// construction.
//
// Nodes preserve the spec's node order and Connections preserve the
// spec's connection order. The engine may treat connection order as
// execution or rendering priority, so the compiler never regroups or
// sorts it.
type Compiled struct {
	// Name is the workflow name, defaulted when the spec omitted one.
	Name string `json:"name"`

	// Nodes is the ordered resolved node list.
	Nodes []Node `json:"nodes"`

	// Connections is the ordered compiled connection list.
	Connections []Connection `json:"connections"`
}

// NodeByID returns the node carrying the given identifier, or nil.
func (c *Compiled) NodeByID(id string) *Node {
	for i := range c.Nodes {
		if c.Nodes[i].ID == id {
			return &c.Nodes[i]
		}
	}
	return nil
}
