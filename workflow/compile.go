package workflow

import (
	"fmt"

	"github.com/google/uuid"
)

// nodeIDNamespace seeds SHA1-based node identifiers. IDs must be
// stable across compiles of the same spec, so they are derived from
// the node's position and name rather than drawn randomly.
var nodeIDNamespace = uuid.MustParse("8a6e1c2d-43b7-4b5e-9f0d-2c71a9d4e6b3")

// Compile turns a simplified workflow spec into an engine-ready
// compiled workflow. It runs name resolution, connection
// normalization, structural validation, and layout assignment in
// strict sequence, failing fast with a single *Error on the first
// rejected input. The spec is never mutated.
func Compile(spec *WorkflowSpec) (*Compiled, error) {
	if spec == nil || len(spec.Nodes) == 0 {
		return nil, errEmptyWorkflow()
	}

	ids, err := resolveNames(spec.Nodes)
	if err != nil {
		return nil, err
	}

	norm, err := normalizeConnections(spec.Connections)
	if err != nil {
		return nil, err
	}

	if err := validateReferences(norm, ids); err != nil {
		return nil, err
	}

	compiled := &Compiled{
		Name:        spec.Name,
		Nodes:       make([]Node, len(spec.Nodes)),
		Connections: make([]Connection, len(norm)),
	}
	if compiled.Name == "" {
		compiled.Name = DefaultName
	}

	for i, n := range spec.Nodes {
		compiled.Nodes[i] = Node{
			ID:         ids[n.Name],
			Name:       n.Name,
			Type:       n.Type,
			Parameters: n.Parameters,
		}
		if n.Position != nil {
			compiled.Nodes[i].Position = *n.Position
		} else {
			compiled.Nodes[i].Position = defaultPosition(i)
		}
	}

	for i, c := range norm {
		compiled.Connections[i] = Connection{
			Source:       ids[c.source],
			Target:       ids[c.target],
			SourceOutput: c.sourceOutput,
			TargetInput:  c.targetInput,
		}
	}

	return compiled, nil
}

// resolveNames maps each node name to a stable identifier, preserving
// input order for identifier assignment. Names are matched exactly and
// case-sensitively; a duplicate fails the whole resolution with no
// partial mapping.
func resolveNames(nodes []NodeSpec) (map[string]string, error) {
	ids := make(map[string]string, len(nodes))
	for i, n := range nodes {
		if _, exists := ids[n.Name]; exists {
			return nil, errDuplicateNodeName(n.Name)
		}
		ids[n.Name] = nodeID(i, n.Name)
	}
	return ids, nil
}

// nodeID derives the identifier for the i-th node. SHA1-based UUIDs
// keep IDs engine-shaped while staying a pure function of input order.
func nodeID(i int, name string) string {
	return uuid.NewSHA1(nodeIDNamespace, []byte(fmt.Sprintf("%d/%s", i, name))).String()
}

// normConnection is a connection with port defaults applied, still
// addressed by node name. Reference resolution happens in a later
// stage.
type normConnection struct {
	source       string
	target       string
	sourceOutput int
	targetInput  int
}

// normalizeConnections applies port-index defaults and rejects
// negative indices. Output preserves input order.
func normalizeConnections(conns []ConnectionSpec) ([]normConnection, error) {
	norm := make([]normConnection, len(conns))
	for i, c := range conns {
		n := normConnection{source: c.Source, target: c.Target}
		if c.SourceOutput != nil {
			if *c.SourceOutput < 0 {
				return nil, errInvalidPortIndex(i, "sourceOutput")
			}
			n.sourceOutput = *c.SourceOutput
		}
		if c.TargetInput != nil {
			if *c.TargetInput < 0 {
				return nil, errInvalidPortIndex(i, "targetInput")
			}
			n.targetInput = *c.TargetInput
		}
		norm[i] = n
	}
	return norm, nil
}

// validateReferences checks that both endpoints of every connection
// name a declared node. Source is checked before target so the
// reported side is deterministic. Self-loops resolve like any other
// connection; whether a loop makes sense is decided by the engine.
func validateReferences(conns []normConnection, ids map[string]string) error {
	for i, c := range conns {
		if _, ok := ids[c.source]; !ok {
			return errUnknownNodeReference(i, SideSource, c.source)
		}
		if _, ok := ids[c.target]; !ok {
			return errUnknownNodeReference(i, SideTarget, c.target)
		}
	}
	return nil
}
