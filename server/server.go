// Package server exposes an n8n instance to MCP clients: workflow
// CRUD, activation, manual runs, and execution history as tools.
//
// Apart from spec compilation (the workflow package), every tool is a
// direct pass-through to a single engine REST call.
package server

import (
	"context"
	"net/http"

	"github.com/rs/cors"
	mcp "trpc.group/trpc-go/trpc-mcp-go"

	"github.com/n8n-contrib/n8n-mcp-go/config"
	"github.com/n8n-contrib/n8n-mcp-go/log"
	"github.com/n8n-contrib/n8n-mcp-go/n8n"
)

const (
	serverName    = "n8n-mcp"
	serverVersion = "0.1.0"
)

// Engine is the slice of the n8n client the tools need. *n8n.Client
// satisfies it; tests substitute a fake.
type Engine interface {
	ListWorkflows(ctx context.Context, opts n8n.WorkflowListOptions) (*n8n.WorkflowList, error)
	GetWorkflow(ctx context.Context, id string) (*n8n.Workflow, error)
	CreateWorkflow(ctx context.Context, wf *n8n.Workflow) (*n8n.Workflow, error)
	UpdateWorkflow(ctx context.Context, id string, wf *n8n.Workflow) (*n8n.Workflow, error)
	DeleteWorkflow(ctx context.Context, id string) error
	ActivateWorkflow(ctx context.Context, id string) (*n8n.Workflow, error)
	DeactivateWorkflow(ctx context.Context, id string) (*n8n.Workflow, error)
	RunWorkflow(ctx context.Context, id string, input map[string]any) (*n8n.Execution, error)
	ListExecutions(ctx context.Context, opts n8n.ExecutionListOptions) (*n8n.ExecutionList, error)
	GetExecution(ctx context.Context, id int64, includeData bool) (*n8n.Execution, error)
	DeleteExecution(ctx context.Context, id int64) error
}

// Server wires the MCP transport to the engine client.
type Server struct {
	cfg    *config.Config
	engine Engine
}

// New builds a Server from the given configuration and engine client.
func New(cfg *config.Config, engine Engine) *Server {
	return &Server{cfg: cfg, engine: engine}
}

// Run starts the configured transport and blocks until it stops.
func (s *Server) Run() error {
	switch s.cfg.Transport {
	case config.TransportHTTP:
		return s.runHTTP()
	default:
		return s.runStdio()
	}
}

func (s *Server) runStdio() error {
	srv := mcp.NewStdioServer(serverName, serverVersion)
	for _, t := range s.tools() {
		srv.RegisterTool(t.tool, t.handler)
	}
	log.Infof("starting %s on stdio", serverName)
	return srv.Start()
}

func (s *Server) runHTTP() error {
	srv := mcp.NewServer(
		serverName,
		serverVersion,
		mcp.WithServerAddress(s.cfg.Addr),
		mcp.WithServerPath(s.cfg.Path),
	)
	for _, t := range s.tools() {
		srv.RegisterTool(t.tool, t.handler)
	}

	handler := cors.Default().Handler(srv.HTTPHandler())
	mux := http.NewServeMux()
	mux.Handle(s.cfg.Path, handler)

	log.Infof("starting %s on %s%s", serverName, s.cfg.Addr, s.cfg.Path)
	return http.ListenAndServe(s.cfg.Addr, mux)
}
