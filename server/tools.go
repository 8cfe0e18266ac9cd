package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcp "trpc.group/trpc-go/trpc-mcp-go"

	"github.com/n8n-contrib/n8n-mcp-go/n8n"
	"github.com/n8n-contrib/n8n-mcp-go/workflow"
)

// registeredTool pairs a tool definition with its handler so both
// transports can register the same set.
type registeredTool struct {
	tool    *mcp.Tool
	handler func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// nodeArg mirrors workflow.NodeSpec for the tool schema.
type nodeArg struct {
	Name       string         `json:"name" jsonschema:"required,description=Unique node name"`
	Type       string         `json:"type" jsonschema:"required,description=Engine node type (e.g. n8n-nodes-base.httpRequest)"`
	Parameters map[string]any `json:"parameters,omitempty" jsonschema:"description=Node parameters passed to the engine verbatim"`
	Position   *[2]float64    `json:"position,omitempty" jsonschema:"description=Canvas position [x,y]; assigned automatically when omitted"`
}

// connectionArg mirrors workflow.ConnectionSpec for the tool schema.
type connectionArg struct {
	Source       string `json:"source" jsonschema:"required,description=Source node name"`
	Target       string `json:"target" jsonschema:"required,description=Target node name"`
	SourceOutput *int   `json:"sourceOutput,omitempty" jsonschema:"description=Output port of the source node (default 0)"`
	TargetInput  *int   `json:"targetInput,omitempty" jsonschema:"description=Input port of the target node (default 0)"`
}

type workflowSpecArgs struct {
	Name        string          `json:"name,omitempty" jsonschema:"description=Workflow name"`
	Nodes       []nodeArg       `json:"nodes" jsonschema:"required,description=Ordered node list"`
	Connections []connectionArg `json:"connections,omitempty" jsonschema:"description=Ordered source-to-target connection list"`
}

type createWorkflowArgs struct {
	workflowSpecArgs
	Activate bool `json:"activate,omitempty" jsonschema:"description=Activate the workflow after creation"`
}

type updateWorkflowArgs struct {
	ID string `json:"id" jsonschema:"required,description=Workflow identifier"`
	workflowSpecArgs
}

type workflowIDArgs struct {
	ID string `json:"id" jsonschema:"required,description=Workflow identifier"`
}

type listWorkflowsArgs struct {
	Active *bool  `json:"active,omitempty" jsonschema:"description=Filter by activation state"`
	Limit  int    `json:"limit,omitempty" jsonschema:"description=Page size"`
	Cursor string `json:"cursor,omitempty" jsonschema:"description=Pagination cursor from a previous page"`
}

type runWorkflowArgs struct {
	ID    string         `json:"id" jsonschema:"required,description=Workflow identifier"`
	Input map[string]any `json:"input,omitempty" jsonschema:"description=Input data for the manual run"`
}

type listExecutionsArgs struct {
	WorkflowID string `json:"workflowId,omitempty" jsonschema:"description=Filter by workflow identifier"`
	Status     string `json:"status,omitempty" jsonschema:"description=Filter by status,enum=success,enum=error,enum=running,enum=waiting"`
	Limit      int    `json:"limit,omitempty" jsonschema:"description=Page size"`
	Cursor     string `json:"cursor,omitempty" jsonschema:"description=Pagination cursor from a previous page"`
}

type getExecutionArgs struct {
	ID          int64 `json:"id" jsonschema:"required,description=Execution identifier"`
	IncludeData bool  `json:"includeData,omitempty" jsonschema:"description=Include the execution's run data"`
}

type deleteExecutionArgs struct {
	ID int64 `json:"id" jsonschema:"required,description=Execution identifier"`
}

type executionStatsArgs struct {
	WorkflowID string `json:"workflowId,omitempty" jsonschema:"description=Restrict statistics to one workflow"`
	Limit      int    `json:"limit,omitempty" jsonschema:"description=How many recent executions to aggregate (default 100)"`
}

// defaultStatsWindow bounds the execution page aggregated by
// execution_stats when the caller gives no limit.
const defaultStatsWindow = 100

// tools returns every tool the server exposes.
func (s *Server) tools() []registeredTool {
	return []registeredTool{
		{
			tool: mcp.NewTool("workflow_create",
				mcp.WithDescription("Compile a simplified workflow spec (named nodes plus source-to-target connections) and create it on the n8n instance."),
				mcp.WithInputStruct[createWorkflowArgs](),
			),
			handler: s.handleWorkflowCreate,
		},
		{
			tool: mcp.NewTool("workflow_update",
				mcp.WithDescription("Compile a simplified workflow spec and replace an existing workflow's definition."),
				mcp.WithInputStruct[updateWorkflowArgs](),
			),
			handler: s.handleWorkflowUpdate,
		},
		{
			tool: mcp.NewTool("workflow_validate",
				mcp.WithDescription("Compile a simplified workflow spec without touching the n8n instance; reports the engine-ready graph or the first validation error."),
				mcp.WithInputStruct[workflowSpecArgs](),
			),
			handler: s.handleWorkflowValidate,
		},
		{
			tool: mcp.NewTool("workflow_get",
				mcp.WithDescription("Fetch a workflow by identifier."),
				mcp.WithInputStruct[workflowIDArgs](),
			),
			handler: s.handleWorkflowGet,
		},
		{
			tool: mcp.NewTool("workflow_list",
				mcp.WithDescription("List workflows on the n8n instance."),
				mcp.WithInputStruct[listWorkflowsArgs](),
			),
			handler: s.handleWorkflowList,
		},
		{
			tool: mcp.NewTool("workflow_delete",
				mcp.WithDescription("Delete a workflow."),
				mcp.WithInputStruct[workflowIDArgs](),
			),
			handler: s.handleWorkflowDelete,
		},
		{
			tool: mcp.NewTool("workflow_activate",
				mcp.WithDescription("Activate a workflow's triggers."),
				mcp.WithInputStruct[workflowIDArgs](),
			),
			handler: s.handleWorkflowActivate,
		},
		{
			tool: mcp.NewTool("workflow_deactivate",
				mcp.WithDescription("Deactivate a workflow's triggers."),
				mcp.WithInputStruct[workflowIDArgs](),
			),
			handler: s.handleWorkflowDeactivate,
		},
		{
			tool: mcp.NewTool("workflow_run",
				mcp.WithDescription("Trigger a manual execution of a workflow."),
				mcp.WithInputStruct[runWorkflowArgs](),
			),
			handler: s.handleWorkflowRun,
		},
		{
			tool: mcp.NewTool("execution_list",
				mcp.WithDescription("List execution records, optionally filtered by workflow and status."),
				mcp.WithInputStruct[listExecutionsArgs](),
			),
			handler: s.handleExecutionList,
		},
		{
			tool: mcp.NewTool("execution_get",
				mcp.WithDescription("Fetch one execution record."),
				mcp.WithInputStruct[getExecutionArgs](),
			),
			handler: s.handleExecutionGet,
		},
		{
			tool: mcp.NewTool("execution_delete",
				mcp.WithDescription("Delete one execution record."),
				mcp.WithInputStruct[deleteExecutionArgs](),
			),
			handler: s.handleExecutionDelete,
		},
		{
			tool: mcp.NewTool("execution_stats",
				mcp.WithDescription("Aggregate recent executions into counts by status, success rate, and average duration."),
				mcp.WithInputStruct[executionStatsArgs](),
			),
			handler: s.handleExecutionStats,
		},
	}
}

// parseArgs decodes tool call arguments into a strongly typed struct.
func parseArgs[T any](req *mcp.CallToolRequest) (T, error) {
	var args T
	if req == nil || req.Params.Arguments == nil {
		return args, fmt.Errorf("missing arguments")
	}
	data, err := json.Marshal(req.Params.Arguments)
	if err != nil {
		return args, fmt.Errorf("marshal arguments: %w", err)
	}
	if err := json.Unmarshal(data, &args); err != nil {
		return args, fmt.Errorf("unmarshal arguments: %w", err)
	}
	return args, nil
}

// jsonResult renders v as an indented JSON text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewTextResult(string(data)), nil
}

// toSpec converts tool arguments into the compiler's input type.
func (a workflowSpecArgs) toSpec() *workflow.WorkflowSpec {
	spec := &workflow.WorkflowSpec{
		Name:        a.Name,
		Nodes:       make([]workflow.NodeSpec, len(a.Nodes)),
		Connections: make([]workflow.ConnectionSpec, len(a.Connections)),
	}
	for i, n := range a.Nodes {
		spec.Nodes[i] = workflow.NodeSpec{
			Name:       n.Name,
			Type:       n.Type,
			Parameters: n.Parameters,
		}
		if n.Position != nil {
			spec.Nodes[i].Position = &workflow.Position{X: n.Position[0], Y: n.Position[1]}
		}
	}
	for i, c := range a.Connections {
		spec.Connections[i] = workflow.ConnectionSpec{
			Source:       c.Source,
			Target:       c.Target,
			SourceOutput: c.SourceOutput,
			TargetInput:  c.TargetInput,
		}
	}
	return spec
}

// compileSpec compiles tool arguments. Validation failures come back
// as a tool error result so the agent can correct and resubmit the
// spec; they are never protocol errors.
func compileSpec(args workflowSpecArgs) (*workflow.Compiled, *mcp.CallToolResult) {
	compiled, err := workflow.Compile(args.toSpec())
	if err != nil {
		var cerr *workflow.Error
		if errors.As(err, &cerr) {
			return nil, mcp.NewErrorResult(fmt.Sprintf("invalid workflow spec (%s): %s", cerr.Kind, cerr.Error()))
		}
		return nil, mcp.NewErrorResult("invalid workflow spec: " + err.Error())
	}
	return compiled, nil
}

func (s *Server) handleWorkflowCreate(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs[createWorkflowArgs](req)
	if err != nil {
		return nil, err
	}

	compiled, errResult := compileSpec(args.workflowSpecArgs)
	if errResult != nil {
		return errResult, nil
	}

	created, err := s.engine.CreateWorkflow(ctx, n8n.FromCompiled(compiled))
	if err != nil {
		return nil, err
	}

	if args.Activate {
		activated, err := s.engine.ActivateWorkflow(ctx, created.ID)
		if err != nil {
			return nil, fmt.Errorf("workflow %s created but activation failed: %w", created.ID, err)
		}
		created = activated
	}

	return jsonResult(created)
}

func (s *Server) handleWorkflowUpdate(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs[updateWorkflowArgs](req)
	if err != nil {
		return nil, err
	}
	if args.ID == "" {
		return mcp.NewErrorResult("id is required"), nil
	}

	compiled, errResult := compileSpec(args.workflowSpecArgs)
	if errResult != nil {
		return errResult, nil
	}

	updated, err := s.engine.UpdateWorkflow(ctx, args.ID, n8n.FromCompiled(compiled))
	if err != nil {
		return nil, err
	}
	return jsonResult(updated)
}

func (s *Server) handleWorkflowValidate(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs[workflowSpecArgs](req)
	if err != nil {
		return nil, err
	}

	compiled, errResult := compileSpec(args)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(compiled)
}

func (s *Server) handleWorkflowGet(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs[workflowIDArgs](req)
	if err != nil {
		return nil, err
	}
	if args.ID == "" {
		return mcp.NewErrorResult("id is required"), nil
	}

	wf, err := s.engine.GetWorkflow(ctx, args.ID)
	if err != nil {
		return nil, err
	}
	return jsonResult(wf)
}

func (s *Server) handleWorkflowList(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs[listWorkflowsArgs](req)
	if err != nil {
		return nil, err
	}

	list, err := s.engine.ListWorkflows(ctx, n8n.WorkflowListOptions{
		Active: args.Active,
		Limit:  args.Limit,
		Cursor: args.Cursor,
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(list)
}

func (s *Server) handleWorkflowDelete(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs[workflowIDArgs](req)
	if err != nil {
		return nil, err
	}
	if args.ID == "" {
		return mcp.NewErrorResult("id is required"), nil
	}

	if err := s.engine.DeleteWorkflow(ctx, args.ID); err != nil {
		return nil, err
	}
	return mcp.NewTextResult(fmt.Sprintf("workflow %s deleted", args.ID)), nil
}

func (s *Server) handleWorkflowActivate(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs[workflowIDArgs](req)
	if err != nil {
		return nil, err
	}
	if args.ID == "" {
		return mcp.NewErrorResult("id is required"), nil
	}

	wf, err := s.engine.ActivateWorkflow(ctx, args.ID)
	if err != nil {
		return nil, err
	}
	return jsonResult(wf)
}

func (s *Server) handleWorkflowDeactivate(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs[workflowIDArgs](req)
	if err != nil {
		return nil, err
	}
	if args.ID == "" {
		return mcp.NewErrorResult("id is required"), nil
	}

	wf, err := s.engine.DeactivateWorkflow(ctx, args.ID)
	if err != nil {
		return nil, err
	}
	return jsonResult(wf)
}

func (s *Server) handleWorkflowRun(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs[runWorkflowArgs](req)
	if err != nil {
		return nil, err
	}
	if args.ID == "" {
		return mcp.NewErrorResult("id is required"), nil
	}

	exec, err := s.engine.RunWorkflow(ctx, args.ID, args.Input)
	if err != nil {
		return nil, err
	}
	return jsonResult(exec)
}

func (s *Server) handleExecutionList(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs[listExecutionsArgs](req)
	if err != nil {
		return nil, err
	}

	list, err := s.engine.ListExecutions(ctx, n8n.ExecutionListOptions{
		WorkflowID: args.WorkflowID,
		Status:     args.Status,
		Limit:      args.Limit,
		Cursor:     args.Cursor,
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(list)
}

func (s *Server) handleExecutionGet(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs[getExecutionArgs](req)
	if err != nil {
		return nil, err
	}
	if args.ID == 0 {
		return mcp.NewErrorResult("id is required"), nil
	}

	exec, err := s.engine.GetExecution(ctx, args.ID, args.IncludeData)
	if err != nil {
		return nil, err
	}
	return jsonResult(exec)
}

func (s *Server) handleExecutionDelete(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs[deleteExecutionArgs](req)
	if err != nil {
		return nil, err
	}
	if args.ID == 0 {
		return mcp.NewErrorResult("id is required"), nil
	}

	if err := s.engine.DeleteExecution(ctx, args.ID); err != nil {
		return nil, err
	}
	return mcp.NewTextResult(fmt.Sprintf("execution %d deleted", args.ID)), nil
}

func (s *Server) handleExecutionStats(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs[executionStatsArgs](req)
	if err != nil {
		return nil, err
	}

	limit := args.Limit
	if limit <= 0 {
		limit = defaultStatsWindow
	}

	list, err := s.engine.ListExecutions(ctx, n8n.ExecutionListOptions{
		WorkflowID: args.WorkflowID,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}

	return jsonResult(n8n.ComputeStats(list.Data))
}
