package workflow

import "fmt"

// ErrorKind classifies compile failures. Every rejected spec produces
// exactly one *Error carrying one of these kinds.
type ErrorKind string

const (
	// KindEmptyWorkflow indicates a spec with no nodes.
	KindEmptyWorkflow ErrorKind = "empty_workflow"

	// KindDuplicateNodeName indicates two or more nodes sharing a name.
	KindDuplicateNodeName ErrorKind = "duplicate_node_name"

	// KindUnknownNodeReference indicates a connection endpoint naming
	// a node that is not declared in the spec.
	KindUnknownNodeReference ErrorKind = "unknown_node_reference"

	// KindInvalidPortIndex indicates a negative port index on a
	// connection.
	KindInvalidPortIndex ErrorKind = "invalid_port_index"
)

// Side identifies which endpoint of a connection an error refers to.
type Side string

const (
	// SideSource is the connection's source endpoint.
	SideSource Side = "source"

	// SideTarget is the connection's target endpoint.
	SideTarget Side = "target"
)

// Error is the structured compile failure returned by Compile. The
// zero-valued fields that do not apply to a given kind are left empty;
// Connection is only meaningful for connection-scoped kinds.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Name is the offending node name, for duplicate-name and
	// unknown-reference failures.
	Name string

	// Side distinguishes source-side from target-side failures for
	// unknown-reference errors.
	Side Side

	// Connection is the zero-based position of the offending
	// connection in the input sequence.
	Connection int

	// Field names the offending connection field for invalid port
	// indices ("sourceOutput" or "targetInput").
	Field string
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case KindEmptyWorkflow:
		return "workflow has no nodes"
	case KindDuplicateNodeName:
		return fmt.Sprintf("duplicate node name %q", e.Name)
	case KindUnknownNodeReference:
		return fmt.Sprintf("connection %d: %s node %q is not declared", e.Connection, e.Side, e.Name)
	case KindInvalidPortIndex:
		return fmt.Sprintf("connection %d: %s must not be negative", e.Connection, e.Field)
	default:
		return fmt.Sprintf("invalid workflow spec (%s)", e.Kind)
	}
}

func errEmptyWorkflow() *Error {
	return &Error{Kind: KindEmptyWorkflow}
}

func errDuplicateNodeName(name string) *Error {
	return &Error{Kind: KindDuplicateNodeName, Name: name}
}

func errUnknownNodeReference(conn int, side Side, name string) *Error {
	return &Error{Kind: KindUnknownNodeReference, Connection: conn, Side: side, Name: name}
}

func errInvalidPortIndex(conn int, field string) *Error {
	return &Error{Kind: KindInvalidPortIndex, Connection: conn, Field: field}
}
