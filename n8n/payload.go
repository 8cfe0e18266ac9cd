package n8n

import (
	"github.com/n8n-contrib/n8n-mcp-go/workflow"
)

// defaultTypeVersion is applied to every node the compiler emits; the
// engine bumps it per node type on its side.
const defaultTypeVersion = 1

// portTypeMain is the only port class the simplified spec addresses.
const portTypeMain = "main"

// FromCompiled converts a compiled workflow into the engine's wire
// shape. The engine groups connections under the source node's name
// and indexes them by output port; that regrouping belongs here, at
// the engine boundary, so the compiler's output order stays intact for
// everyone else. Within one (source, output) group the compiler's
// connection order is preserved.
func FromCompiled(c *workflow.Compiled) *Workflow {
	wf := &Workflow{
		Name:        c.Name,
		Nodes:       make([]Node, len(c.Nodes)),
		Connections: make(ConnectionMap, len(c.Nodes)),
		Settings:    map[string]any{},
	}

	names := make(map[string]string, len(c.Nodes))
	for i, n := range c.Nodes {
		wf.Nodes[i] = Node{
			ID:          n.ID,
			Name:        n.Name,
			Type:        n.Type,
			TypeVersion: defaultTypeVersion,
			Position:    [2]float64{n.Position.X, n.Position.Y},
			Parameters:  n.Parameters,
		}
		if wf.Nodes[i].Parameters == nil {
			wf.Nodes[i].Parameters = map[string]any{}
		}
		names[n.ID] = n.Name
	}

	for _, conn := range c.Connections {
		source := names[conn.Source]
		groups := wf.Connections[source]
		for len(groups.Main) <= conn.SourceOutput {
			groups.Main = append(groups.Main, []Port{})
		}
		groups.Main[conn.SourceOutput] = append(groups.Main[conn.SourceOutput], Port{
			Node:  names[conn.Target],
			Type:  portTypeMain,
			Index: conn.TargetInput,
		})
		wf.Connections[source] = groups
	}

	return wf
}
