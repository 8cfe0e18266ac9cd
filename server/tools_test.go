package server

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mcp "trpc.group/trpc-go/trpc-mcp-go"

	"github.com/n8n-contrib/n8n-mcp-go/config"
	"github.com/n8n-contrib/n8n-mcp-go/n8n"
)

// fakeEngine records calls and serves canned responses.
type fakeEngine struct {
	created     *n8n.Workflow
	updatedID   string
	updated     *n8n.Workflow
	activated   []string
	deactivated []string
	deletedWF   []string
	deletedExec []int64
	execs       []n8n.Execution
	execOpts    n8n.ExecutionListOptions
	runInput    map[string]any
	err         error
}

func (f *fakeEngine) ListWorkflows(ctx context.Context, opts n8n.WorkflowListOptions) (*n8n.WorkflowList, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &n8n.WorkflowList{Data: []n8n.Workflow{{ID: "wf-1", Name: "one"}}}, nil
}

func (f *fakeEngine) GetWorkflow(ctx context.Context, id string) (*n8n.Workflow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &n8n.Workflow{ID: id, Name: "fetched"}, nil
}

func (f *fakeEngine) CreateWorkflow(ctx context.Context, wf *n8n.Workflow) (*n8n.Workflow, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = wf
	out := *wf
	out.ID = "wf-new"
	return &out, nil
}

func (f *fakeEngine) UpdateWorkflow(ctx context.Context, id string, wf *n8n.Workflow) (*n8n.Workflow, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.updatedID = id
	f.updated = wf
	out := *wf
	out.ID = id
	return &out, nil
}

func (f *fakeEngine) DeleteWorkflow(ctx context.Context, id string) error {
	f.deletedWF = append(f.deletedWF, id)
	return f.err
}

func (f *fakeEngine) ActivateWorkflow(ctx context.Context, id string) (*n8n.Workflow, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.activated = append(f.activated, id)
	return &n8n.Workflow{ID: id, Active: true}, nil
}

func (f *fakeEngine) DeactivateWorkflow(ctx context.Context, id string) (*n8n.Workflow, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deactivated = append(f.deactivated, id)
	return &n8n.Workflow{ID: id, Active: false}, nil
}

func (f *fakeEngine) RunWorkflow(ctx context.Context, id string, input map[string]any) (*n8n.Execution, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.runInput = input
	return &n8n.Execution{ID: 7, WorkflowID: id, Status: n8n.StatusRunning}, nil
}

func (f *fakeEngine) ListExecutions(ctx context.Context, opts n8n.ExecutionListOptions) (*n8n.ExecutionList, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.execOpts = opts
	return &n8n.ExecutionList{Data: f.execs}, nil
}

func (f *fakeEngine) GetExecution(ctx context.Context, id int64, includeData bool) (*n8n.Execution, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &n8n.Execution{ID: id, Status: n8n.StatusSuccess}, nil
}

func (f *fakeEngine) DeleteExecution(ctx context.Context, id int64) error {
	f.deletedExec = append(f.deletedExec, id)
	return f.err
}

func newTestServer(engine *fakeEngine) *Server {
	return New(&config.Config{Transport: config.TransportStdio}, engine)
}

func callReq(args map[string]any) *mcp.CallToolRequest {
	req := &mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func specArgs() map[string]any {
	return map[string]any{
		"name": "pair",
		"nodes": []any{
			map[string]any{"name": "A", "type": "n8n-nodes-base.manualTrigger"},
			map[string]any{"name": "B", "type": "n8n-nodes-base.noOp"},
		},
		"connections": []any{
			map[string]any{"source": "A", "target": "B"},
		},
	}
}

func TestToolsRegistered(t *testing.T) {
	s := newTestServer(&fakeEngine{})
	tools := s.tools()

	names := make(map[string]bool, len(tools))
	for _, rt := range tools {
		require.NotNil(t, rt.tool)
		require.NotNil(t, rt.handler)
		names[rt.tool.Name] = true
	}

	for _, want := range []string{
		"workflow_create", "workflow_update", "workflow_validate",
		"workflow_get", "workflow_list", "workflow_delete",
		"workflow_activate", "workflow_deactivate", "workflow_run",
		"execution_list", "execution_get", "execution_delete",
		"execution_stats",
	} {
		assert.True(t, names[want], "missing tool %s", want)
	}
}

func TestHandleWorkflowCreate(t *testing.T) {
	engine := &fakeEngine{}
	s := newTestServer(engine)

	result, err := s.handleWorkflowCreate(context.Background(), callReq(specArgs()))
	require.NoError(t, err)

	require.NotNil(t, engine.created)
	assert.Equal(t, "pair", engine.created.Name)
	require.Len(t, engine.created.Nodes, 2)
	require.Contains(t, engine.created.Connections, "A")
	assert.Empty(t, engine.activated)

	var created n8n.Workflow
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &created))
	assert.Equal(t, "wf-new", created.ID)
}

func TestHandleWorkflowCreateAndActivate(t *testing.T) {
	engine := &fakeEngine{}
	s := newTestServer(engine)

	args := specArgs()
	args["activate"] = true

	_, err := s.handleWorkflowCreate(context.Background(), callReq(args))
	require.NoError(t, err)
	assert.Equal(t, []string{"wf-new"}, engine.activated)
}

func TestHandleWorkflowCreateCompileFailure(t *testing.T) {
	engine := &fakeEngine{}
	s := newTestServer(engine)

	args := specArgs()
	args["connections"] = []any{
		map[string]any{"source": "A", "target": "Z"},
	}

	result, err := s.handleWorkflowCreate(context.Background(), callReq(args))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "unknown_node_reference")

	// A rejected spec never reaches the engine.
	assert.Nil(t, engine.created)
}

func TestHandleWorkflowUpdate(t *testing.T) {
	engine := &fakeEngine{}
	s := newTestServer(engine)

	args := specArgs()
	args["id"] = "wf-9"

	_, err := s.handleWorkflowUpdate(context.Background(), callReq(args))
	require.NoError(t, err)
	assert.Equal(t, "wf-9", engine.updatedID)
	require.NotNil(t, engine.updated)
	assert.Equal(t, "pair", engine.updated.Name)
}

func TestHandleWorkflowValidate(t *testing.T) {
	s := newTestServer(&fakeEngine{})

	result, err := s.handleWorkflowValidate(context.Background(), callReq(specArgs()))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var compiled struct {
		Nodes []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &compiled))
	require.Len(t, compiled.Nodes, 2)
	assert.NotEmpty(t, compiled.Nodes[0].ID)
}

func TestHandleWorkflowValidateDuplicateName(t *testing.T) {
	s := newTestServer(&fakeEngine{})

	result, err := s.handleWorkflowValidate(context.Background(), callReq(map[string]any{
		"nodes": []any{
			map[string]any{"name": "A", "type": "x"},
			map[string]any{"name": "A", "type": "y"},
		},
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "duplicate_node_name")
}

func TestHandleWorkflowIDTools(t *testing.T) {
	engine := &fakeEngine{}
	s := newTestServer(engine)
	ctx := context.Background()

	_, err := s.handleWorkflowGet(ctx, callReq(map[string]any{"id": "wf-1"}))
	require.NoError(t, err)

	_, err = s.handleWorkflowDelete(ctx, callReq(map[string]any{"id": "wf-2"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"wf-2"}, engine.deletedWF)

	_, err = s.handleWorkflowActivate(ctx, callReq(map[string]any{"id": "wf-3"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"wf-3"}, engine.activated)

	_, err = s.handleWorkflowDeactivate(ctx, callReq(map[string]any{"id": "wf-3"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"wf-3"}, engine.deactivated)

	// Missing id is a tool error, not a protocol error.
	result, err := s.handleWorkflowGet(ctx, callReq(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleWorkflowRun(t *testing.T) {
	engine := &fakeEngine{}
	s := newTestServer(engine)

	result, err := s.handleWorkflowRun(context.Background(), callReq(map[string]any{
		"id":    "wf-1",
		"input": map[string]any{"city": "Berlin"},
	}))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"city": "Berlin"}, engine.runInput)

	var exec n8n.Execution
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &exec))
	assert.Equal(t, n8n.StatusRunning, exec.Status)
}

func TestHandleExecutionTools(t *testing.T) {
	engine := &fakeEngine{
		execs: []n8n.Execution{
			{ID: 1, Status: n8n.StatusSuccess, Finished: true},
			{ID: 2, Status: n8n.StatusError, Finished: true},
		},
	}
	s := newTestServer(engine)
	ctx := context.Background()

	_, err := s.handleExecutionList(ctx, callReq(map[string]any{"workflowId": "wf-1"}))
	require.NoError(t, err)
	assert.Equal(t, "wf-1", engine.execOpts.WorkflowID)

	_, err = s.handleExecutionGet(ctx, callReq(map[string]any{"id": 2, "includeData": true}))
	require.NoError(t, err)

	_, err = s.handleExecutionDelete(ctx, callReq(map[string]any{"id": 2}))
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, engine.deletedExec)
}

func TestHandleExecutionStats(t *testing.T) {
	engine := &fakeEngine{
		execs: []n8n.Execution{
			{ID: 1, Status: n8n.StatusSuccess, Finished: true},
			{ID: 2, Status: n8n.StatusSuccess, Finished: true},
			{ID: 3, Status: n8n.StatusError, Finished: true},
		},
	}
	s := newTestServer(engine)

	result, err := s.handleExecutionStats(context.Background(), callReq(map[string]any{}))
	require.NoError(t, err)

	// Default window applies when the caller gives no limit.
	assert.Equal(t, defaultStatsWindow, engine.execOpts.Limit)

	var stats n8n.Stats
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &stats))
	assert.Equal(t, 3, stats.Total)
	assert.InDelta(t, 2.0/3.0, stats.SuccessRate, 1e-9)
}

func TestEngineErrorsPropagate(t *testing.T) {
	engine := &fakeEngine{err: fmt.Errorf("engine unreachable")}
	s := newTestServer(engine)

	_, err := s.handleWorkflowList(context.Background(), callReq(map[string]any{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine unreachable")
}
