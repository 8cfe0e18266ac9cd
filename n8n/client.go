package n8n

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/n8n-contrib/n8n-mcp-go/log"
)

// apiPrefix is the public API mount point of an n8n instance.
const apiPrefix = "/api/v1"

// ClientConfig configures a Client.
type ClientConfig struct {
	// BaseURL is the n8n instance root, e.g. "http://localhost:5678".
	BaseURL string

	// APIKey is the n8n API key sent on every request.
	APIKey string

	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration

	// Debug enables request/response logging on the HTTP client.
	Debug bool
}

// DefaultTimeout is applied when ClientConfig.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Client performs authenticated requests against the n8n public API.
type Client struct {
	http *resty.Client
}

// NewClient builds a Client from the given configuration.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("n8n base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("n8n API key is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL+apiPrefix).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("X-N8N-API-KEY", cfg.APIKey).
		SetRetryCount(2).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)

	client.AddRetryCondition(retryCondition)

	if cfg.Debug {
		client.SetDebug(true)
	}

	return &Client{http: client}, nil
}

// retryCondition retries network errors and transient server
// responses. Nothing here is stateful, so a retried request is always
// safe to resend.
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code >= 500 || code == 429 || code == 408
}

// APIError is the error payload the engine returns on failed requests.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("n8n API error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("n8n API error (status %d)", e.Status)
}

// doRequest performs one request with context cancellation support and
// decodes the response into result when non-nil.
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	req := c.http.R().SetContext(ctx).SetError(&APIError{})
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if err := responseError(resp); err != nil {
		return err
	}

	log.Debugf("n8n API request completed: %s %s (status %d)", method, path, resp.StatusCode())
	return nil
}

func responseError(resp *resty.Response) error {
	if resp.StatusCode() < 400 {
		return nil
	}
	if apiErr, ok := resp.Error().(*APIError); ok && apiErr != nil {
		apiErr.Status = resp.StatusCode()
		return apiErr
	}
	return fmt.Errorf("n8n API error: %s (status %d)", resp.String(), resp.StatusCode())
}

// WorkflowListOptions filters the workflow list endpoint.
type WorkflowListOptions struct {
	Active *bool
	Limit  int
	Cursor string
}

// ListWorkflows returns one page of workflows.
func (c *Client) ListWorkflows(ctx context.Context, opts WorkflowListOptions) (*WorkflowList, error) {
	var result WorkflowList
	req := c.http.R().SetContext(ctx).SetError(&APIError{}).SetResult(&result)

	if opts.Active != nil {
		req.SetQueryParam("active", strconv.FormatBool(*opts.Active))
	}
	if opts.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		req.SetQueryParam("cursor", opts.Cursor)
	}

	resp, err := req.Get("/workflows")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	if err := responseError(resp); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetWorkflow fetches a single workflow by identifier.
func (c *Client) GetWorkflow(ctx context.Context, id string) (*Workflow, error) {
	var result Workflow
	if err := c.doRequest(ctx, resty.MethodGet, "/workflows/"+id, nil, &result); err != nil {
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}
	return &result, nil
}

// CreateWorkflow creates a workflow on the engine and returns it with
// the engine-assigned identifier.
func (c *Client) CreateWorkflow(ctx context.Context, wf *Workflow) (*Workflow, error) {
	var result Workflow
	if err := c.doRequest(ctx, resty.MethodPost, "/workflows", wf, &result); err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}
	return &result, nil
}

// UpdateWorkflow replaces a workflow's definition.
func (c *Client) UpdateWorkflow(ctx context.Context, id string, wf *Workflow) (*Workflow, error) {
	var result Workflow
	if err := c.doRequest(ctx, resty.MethodPut, "/workflows/"+id, wf, &result); err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}
	return &result, nil
}

// DeleteWorkflow removes a workflow from the engine.
func (c *Client) DeleteWorkflow(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, resty.MethodDelete, "/workflows/"+id, nil, nil); err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}
	return nil
}

// ActivateWorkflow enables a workflow's triggers.
func (c *Client) ActivateWorkflow(ctx context.Context, id string) (*Workflow, error) {
	var result Workflow
	if err := c.doRequest(ctx, resty.MethodPost, "/workflows/"+id+"/activate", nil, &result); err != nil {
		return nil, fmt.Errorf("failed to activate workflow: %w", err)
	}
	return &result, nil
}

// DeactivateWorkflow disables a workflow's triggers.
func (c *Client) DeactivateWorkflow(ctx context.Context, id string) (*Workflow, error) {
	var result Workflow
	if err := c.doRequest(ctx, resty.MethodPost, "/workflows/"+id+"/deactivate", nil, &result); err != nil {
		return nil, fmt.Errorf("failed to deactivate workflow: %w", err)
	}
	return &result, nil
}

// RunWorkflow triggers a manual execution of a workflow with the given
// input data and returns the created execution record.
func (c *Client) RunWorkflow(ctx context.Context, id string, input map[string]any) (*Execution, error) {
	var body any
	if input != nil {
		body = map[string]any{"data": input}
	}
	var result Execution
	if err := c.doRequest(ctx, resty.MethodPost, "/workflows/"+id+"/run", body, &result); err != nil {
		return nil, fmt.Errorf("failed to run workflow: %w", err)
	}
	return &result, nil
}

// ExecutionListOptions filters the execution list endpoint.
type ExecutionListOptions struct {
	WorkflowID string
	Status     string
	Limit      int
	Cursor     string
}

// ListExecutions returns one page of execution records.
func (c *Client) ListExecutions(ctx context.Context, opts ExecutionListOptions) (*ExecutionList, error) {
	var result ExecutionList
	req := c.http.R().SetContext(ctx).SetError(&APIError{}).SetResult(&result)

	if opts.WorkflowID != "" {
		req.SetQueryParam("workflowId", opts.WorkflowID)
	}
	if opts.Status != "" {
		req.SetQueryParam("status", opts.Status)
	}
	if opts.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		req.SetQueryParam("cursor", opts.Cursor)
	}

	resp, err := req.Get("/executions")
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	if err := responseError(resp); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetExecution fetches one execution, optionally with its run data.
func (c *Client) GetExecution(ctx context.Context, id int64, includeData bool) (*Execution, error) {
	var result Execution
	req := c.http.R().SetContext(ctx).SetError(&APIError{}).SetResult(&result)
	if includeData {
		req.SetQueryParam("includeData", "true")
	}

	resp, err := req.Get("/executions/" + strconv.FormatInt(id, 10))
	if err != nil {
		return nil, fmt.Errorf("failed to get execution: %w", err)
	}
	if err := responseError(resp); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteExecution removes one execution record.
func (c *Client) DeleteExecution(ctx context.Context, id int64) error {
	if err := c.doRequest(ctx, resty.MethodDelete, "/executions/"+strconv.FormatInt(id, 10), nil, nil); err != nil {
		return fmt.Errorf("failed to delete execution: %w", err)
	}
	return nil
}
