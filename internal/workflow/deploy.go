package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/floworx/triage-agent/internal/db"
	"github.com/floworx/triage-agent/internal/types"
)

// N8NClient is a minimal client for the n8n public API
type N8NClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewN8NClient creates a client for an n8n instance
func NewN8NClient(baseURL, apiKey string) *N8NClient {
	return &N8NClient{
		httpClient: &http.Client{},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

func (c *N8NClient) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build n8n request: %w", err)
	}
	req.Header.Set("X-N8N-API-KEY", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("n8n request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read n8n response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("n8n %s %s: status %d: %s", method, path, resp.StatusCode, respBody)
	}
	return respBody, nil
}

// CreateWorkflow uploads a new workflow and returns its n8n ID
func (c *N8NClient) CreateWorkflow(ctx context.Context, doc []byte) (string, error) {
	body, err := c.do(ctx, "POST", "/api/v1/workflows", doc)
	if err != nil {
		return "", err
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("failed to decode n8n workflow: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("n8n returned a workflow without an ID")
	}
	return created.ID, nil
}

// UpdateWorkflow replaces an existing workflow's definition
func (c *N8NClient) UpdateWorkflow(ctx context.Context, id string, doc []byte) error {
	_, err := c.do(ctx, "PUT", "/api/v1/workflows/"+id, doc)
	return err
}

// Activate turns a workflow on
func (c *N8NClient) Activate(ctx context.Context, id string) error {
	_, err := c.do(ctx, "POST", "/api/v1/workflows/"+id+"/activate", nil)
	return err
}

// DeployStore is the subset of db.DB deployment tracking needs
type DeployStore interface {
	GetDeployment(ctx context.Context, mailboxID uuid.UUID) (*db.WorkflowDeployment, error)
	RecordDeployment(ctx context.Context, businessID, mailboxID uuid.UUID, templateVersion, configHash, n8nWorkflowID, status string) (*db.WorkflowDeployment, error)
}

// Engine is the subset of N8NClient deployment needs; tests fake it
type Engine interface {
	CreateWorkflow(ctx context.Context, doc []byte) (string, error)
	UpdateWorkflow(ctx context.Context, id string, doc []byte) error
	Activate(ctx context.Context, id string) error
}

// Deployer deploys injected workflows and tracks them per mailbox
type Deployer struct {
	store DeployStore
	n8n   Engine
}

// NewDeployer creates a Deployer
func NewDeployer(store DeployStore, n8n Engine) *Deployer {
	return &Deployer{store: store, n8n: n8n}
}

// DeployOutcome reports what one deploy call did
type DeployOutcome struct {
	Skipped         bool   `json:"skipped"`
	WorkflowID      string `json:"workflow_id"`
	ConfigHash      string `json:"config_hash"`
	TemplateVersion string `json:"template_version"`
}

// Deploy injects the current template with the config and pushes it to n8n.
// If the mailbox already runs the same template version with the same config
// hash, nothing is pushed.
func (d *Deployer) Deploy(ctx context.Context, businessID, mailboxID uuid.UUID, cfg *types.WorkflowConfig) (*DeployOutcome, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	hash := cfg.Hash()

	existing, err := d.store.GetDeployment(ctx, mailboxID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == db.DeploymentStatusActive &&
		existing.TemplateVersion == CurrentTemplateVersion && existing.ConfigHash == hash {
		return &DeployOutcome{
			Skipped:         true,
			WorkflowID:      existing.N8NWorkflowID,
			ConfigHash:      hash,
			TemplateVersion: existing.TemplateVersion,
		}, nil
	}

	template, err := LoadTemplate(CurrentTemplateVersion)
	if err != nil {
		return nil, err
	}
	doc, err := Inject(template, cfg)
	if err != nil {
		return nil, err
	}

	var workflowID string
	if existing != nil && existing.N8NWorkflowID != "" {
		workflowID = existing.N8NWorkflowID
		if err := d.n8n.UpdateWorkflow(ctx, workflowID, doc); err != nil {
			return nil, fmt.Errorf("failed to update workflow: %w", err)
		}
	} else {
		workflowID, err = d.n8n.CreateWorkflow(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("failed to create workflow: %w", err)
		}
	}

	if err := d.n8n.Activate(ctx, workflowID); err != nil {
		// Record the failed deploy so operators can see the stuck state.
		if _, recErr := d.store.RecordDeployment(ctx, businessID, mailboxID,
			CurrentTemplateVersion, hash, workflowID, db.DeploymentStatusFailed); recErr != nil {
			return nil, fmt.Errorf("failed to activate workflow: %w (and failed to record: %v)", err, recErr)
		}
		return nil, fmt.Errorf("failed to activate workflow: %w", err)
	}

	if _, err := d.store.RecordDeployment(ctx, businessID, mailboxID,
		CurrentTemplateVersion, hash, workflowID, db.DeploymentStatusActive); err != nil {
		return nil, err
	}

	return &DeployOutcome{
		WorkflowID:      workflowID,
		ConfigHash:      hash,
		TemplateVersion: CurrentTemplateVersion,
	}, nil
}
