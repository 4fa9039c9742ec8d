package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floworx/triage-agent/internal/db"
)

type fakeEngine struct {
	nextID      string
	creates     int
	updates     int
	activations int
	activateErr error
	lastDoc     []byte
}

func (f *fakeEngine) CreateWorkflow(_ context.Context, doc []byte) (string, error) {
	f.creates++
	f.lastDoc = doc
	return f.nextID, nil
}

func (f *fakeEngine) UpdateWorkflow(_ context.Context, _ string, doc []byte) error {
	f.updates++
	f.lastDoc = doc
	return nil
}

func (f *fakeEngine) Activate(_ context.Context, _ string) error {
	f.activations++
	return f.activateErr
}

type fakeDeployStore struct {
	deployments map[uuid.UUID]*db.WorkflowDeployment
}

func newFakeDeployStore() *fakeDeployStore {
	return &fakeDeployStore{deployments: make(map[uuid.UUID]*db.WorkflowDeployment)}
}

func (s *fakeDeployStore) GetDeployment(_ context.Context, mailboxID uuid.UUID) (*db.WorkflowDeployment, error) {
	return s.deployments[mailboxID], nil
}

func (s *fakeDeployStore) RecordDeployment(_ context.Context, businessID, mailboxID uuid.UUID, templateVersion, configHash, n8nWorkflowID, status string) (*db.WorkflowDeployment, error) {
	d := &db.WorkflowDeployment{
		BusinessID:      businessID,
		MailboxID:       mailboxID,
		TemplateVersion: templateVersion,
		ConfigHash:      configHash,
		N8NWorkflowID:   n8nWorkflowID,
		Status:          status,
	}
	s.deployments[mailboxID] = d
	return d, nil
}

func TestDeployCreatesAndActivates(t *testing.T) {
	engine := &fakeEngine{nextID: "wf-1"}
	store := newFakeDeployStore()
	d := NewDeployer(store, engine)
	businessID, mailboxID := uuid.New(), uuid.New()

	outcome, err := d.Deploy(context.Background(), businessID, mailboxID, testConfig())
	require.NoError(t, err)

	assert.False(t, outcome.Skipped)
	assert.Equal(t, "wf-1", outcome.WorkflowID)
	assert.Equal(t, CurrentTemplateVersion, outcome.TemplateVersion)
	assert.Equal(t, 1, engine.creates)
	assert.Equal(t, 1, engine.activations)

	recorded := store.deployments[mailboxID]
	require.NotNil(t, recorded)
	assert.Equal(t, db.DeploymentStatusActive, recorded.Status)
	assert.Equal(t, outcome.ConfigHash, recorded.ConfigHash)
}

func TestDeployUnchangedConfigSkips(t *testing.T) {
	engine := &fakeEngine{nextID: "wf-1"}
	store := newFakeDeployStore()
	d := NewDeployer(store, engine)
	businessID, mailboxID := uuid.New(), uuid.New()
	ctx := context.Background()

	_, err := d.Deploy(ctx, businessID, mailboxID, testConfig())
	require.NoError(t, err)

	outcome, err := d.Deploy(ctx, businessID, mailboxID, testConfig())
	require.NoError(t, err)

	assert.True(t, outcome.Skipped)
	assert.Equal(t, "wf-1", outcome.WorkflowID)
	assert.Equal(t, 1, engine.creates, "unchanged config must not touch n8n")
	assert.Equal(t, 1, engine.activations)
}

func TestDeployChangedConfigUpdatesInPlace(t *testing.T) {
	engine := &fakeEngine{nextID: "wf-1"}
	store := newFakeDeployStore()
	d := NewDeployer(store, engine)
	businessID, mailboxID := uuid.New(), uuid.New()
	ctx := context.Background()

	_, err := d.Deploy(ctx, businessID, mailboxID, testConfig())
	require.NoError(t, err)

	changed := testConfig()
	changed.LabelIDs["FloWorx/Sales"] = "Label_3"
	outcome, err := d.Deploy(ctx, businessID, mailboxID, changed)
	require.NoError(t, err)

	assert.False(t, outcome.Skipped)
	assert.Equal(t, "wf-1", outcome.WorkflowID, "existing workflow is updated, not recreated")
	assert.Equal(t, 1, engine.creates)
	assert.Equal(t, 1, engine.updates)
	assert.Equal(t, 2, engine.activations)
}

func TestDeployActivationFailureRecordsFailed(t *testing.T) {
	engine := &fakeEngine{nextID: "wf-1", activateErr: errors.New("license expired")}
	store := newFakeDeployStore()
	d := NewDeployer(store, engine)
	mailboxID := uuid.New()

	_, err := d.Deploy(context.Background(), uuid.New(), mailboxID, testConfig())
	require.Error(t, err)

	recorded := store.deployments[mailboxID]
	require.NotNil(t, recorded)
	assert.Equal(t, db.DeploymentStatusFailed, recorded.Status)
}

func TestDeployNilConfig(t *testing.T) {
	d := NewDeployer(newFakeDeployStore(), &fakeEngine{})
	_, err := d.Deploy(context.Background(), uuid.New(), uuid.New(), nil)
	assert.ErrorIs(t, err, ErrNilConfig)
}
