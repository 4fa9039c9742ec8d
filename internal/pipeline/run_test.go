package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floworx/triage-agent/internal/classify"
	"github.com/floworx/triage-agent/internal/db"
	"github.com/floworx/triage-agent/internal/llm"
	"github.com/floworx/triage-agent/internal/pipeline/steps"
	"github.com/floworx/triage-agent/internal/routing"
	"github.com/floworx/triage-agent/internal/taxonomy"
	"github.com/floworx/triage-agent/internal/types"
)

// fakeLLM returns canned JSON for classification calls
type fakeLLM struct {
	response string
	content  string
}

func (f *fakeLLM) GenerateContent(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	if f.content == "" {
		return "Thanks for reaching out, we will call you shortly.", nil
	}
	return f.content, nil
}

func (f *fakeLLM) GenerateJSON(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	return f.response, nil
}

func (f *fakeLLM) GetModel(_ llm.ModelTier) string { return "fake" }
func (f *fakeLLM) Close() error                    { return nil }

// fakeMailer serves raw messages from memory and records label applies
type fakeMailer struct {
	messages map[string][]byte
	applied  map[string]string // message ID -> label ID
	drafts   int
	listErr  error
}

func (m *fakeMailer) ListUnreadMessages(_ context.Context, max int) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var ids []string
	for id := range m.messages {
		if len(ids) == max {
			break
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *fakeMailer) GetRawMessage(_ context.Context, id string) (*types.RawMessage, error) {
	raw, ok := m.messages[id]
	if !ok {
		return nil, fmt.Errorf("no such message: %s", id)
	}
	return &types.RawMessage{ID: id, ThreadID: "thread-" + id, Raw: raw}, nil
}

func (m *fakeMailer) ApplyLabel(_ context.Context, messageID, labelID string) error {
	if m.applied == nil {
		m.applied = make(map[string]string)
	}
	m.applied[messageID] = labelID
	return nil
}

func (m *fakeMailer) CreateReplyDraft(_ context.Context, _ *types.EmailMessage, _ string) error {
	m.drafts++
	return nil
}

// fakeRunStore is an in-memory Store
type fakeRunStore struct {
	runs      map[uuid.UUID]string
	artifacts map[string]any
	triaged   map[string]*db.TriagedEmail
	syncMark  string
	processed int
	failed    int
}

func newFakeRunStore() *fakeRunStore {
	return &fakeRunStore{
		runs:      make(map[uuid.UUID]string),
		artifacts: make(map[string]any),
		triaged:   make(map[string]*db.TriagedEmail),
	}
}

func (s *fakeRunStore) CreateTriageRun(_ context.Context, _, _ uuid.UUID) (uuid.UUID, error) {
	id := uuid.New()
	s.runs[id] = db.RunStatusRunning
	return id, nil
}

func (s *fakeRunStore) CompleteTriageRun(_ context.Context, runID uuid.UUID, status string, processed, failed int) error {
	s.runs[runID] = status
	s.processed = processed
	s.failed = failed
	return nil
}

func (s *fakeRunStore) SaveArtifact(_ context.Context, _ uuid.UUID, step, _ string, content any) error {
	s.artifacts[step] = content
	return nil
}

func (s *fakeRunStore) WasTriaged(_ context.Context, _ uuid.UUID, providerMessageID string) (bool, error) {
	_, ok := s.triaged[providerMessageID]
	return ok, nil
}

func (s *fakeRunStore) RecordTriagedEmail(_ context.Context, runID, mailboxID uuid.UUID, msg *types.EmailMessage, cls *types.ClassificationResult, route *types.RoutingDecision, status string) (*db.TriagedEmail, error) {
	e := &db.TriagedEmail{
		RunID:             runID,
		MailboxID:         mailboxID,
		ProviderMessageID: msg.MessageID,
		Category:          cls.Category,
		AssigneeEmail:     route.AssigneeEmail,
		Status:            status,
	}
	s.triaged[msg.MessageID] = e
	return e, nil
}

func (s *fakeRunStore) UpdateMailboxSyncState(_ context.Context, _ uuid.UUID, historyMark string) error {
	s.syncMark = historyMark
	return nil
}

func rawMessage(from, subject, body string) []byte {
	return []byte("From: " + from + "\r\nTo: info@thehottubman.example\r\nSubject: " + subject +
		"\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n" + body + "\r\n")
}

func testTeam() *types.Team {
	return &types.Team{
		Managers: []types.Manager{
			{Name: "Hailey", Email: "hailey@thehottubman.example", Specialties: []string{"service"}, OnCall: true},
		},
		Suppliers: []types.Supplier{
			{Name: "Aqua Spa Parts", Domains: []string{"aquaspaparts.example"}, Owner: "Hailey"},
		},
	}
}

func testOptions(t *testing.T, mailer *fakeMailer, store *fakeRunStore, llmClient llm.Client) RunOptions {
	t.Helper()

	team := testTeam()
	tax, err := taxonomy.Generate("hot_tub_spa", team, nil)
	require.NoError(t, err)

	classifier, err := classify.New(llmClient, tax, team,
		classify.BusinessInfo{Name: "The Hot Tub Man", Industry: "hot_tub_spa"})
	require.NoError(t, err)

	router, err := routing.NewEngine(team, "Owner", "owner@thehottubman.example")
	require.NoError(t, err)

	labelIDs := make(map[string]string)
	i := 0
	tax.Walk(func(path string, _ *types.CategoryNode) {
		i++
		labelIDs[path] = fmt.Sprintf("Label_%d", i)
	})

	return RunOptions{
		BusinessID: uuid.New(),
		MailboxID:  uuid.New(),
		Mailer:     mailer,
		Classifier: classifier,
		Router:     router,
		Store:      store,
		LabelIDs:   labelIDs,
	}
}

func TestRunTriagesMessages(t *testing.T) {
	mailer := &fakeMailer{messages: map[string][]byte{
		"m1": rawMessage("Joe Customer <joe@example.com>", "EMERGENCY: tub is leaking", "Water everywhere, please help."),
		"m2": rawMessage("orders@aquaspaparts.example", "Order #4417 shipped", "Your pump order is on the way."),
	}}
	store := newFakeRunStore()
	opts := testOptions(t, mailer, store, &fakeLLM{})

	result, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 0, result.Failed)
	assert.Len(t, mailer.applied, 2)

	// Urgent rule hit
	urgent := store.triaged["m1"]
	require.NotNil(t, urgent)
	assert.Equal(t, "FloWorx/Urgent", urgent.Category)
	assert.Equal(t, "hailey@thehottubman.example", urgent.AssigneeEmail, "urgent mail goes to the on-call manager")

	// Supplier domain rule hit
	supplier := store.triaged["m2"]
	require.NotNil(t, supplier)
	assert.Equal(t, "FloWorx/Suppliers/Aqua Spa Parts", supplier.Category)

	assert.Equal(t, db.RunStatusCompleted, store.runs[result.RunID])
	assert.NotEmpty(t, store.syncMark)
	assert.Contains(t, store.artifacts, db.StepRunSummary)
}

func TestRunPersistsArtifactForEveryStep(t *testing.T) {
	mailer := &fakeMailer{messages: map[string][]byte{
		"m1": rawMessage("orders@aquaspaparts.example", "Order #4417 shipped", "Your pump order is on the way."),
	}}
	store := newFakeRunStore()
	opts := testOptions(t, mailer, store, &fakeLLM{})

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	order, err := steps.ExecutionOrder()
	require.NoError(t, err)
	for _, step := range order {
		assert.Contains(t, store.artifacts, step, "every registered step leaves an artifact")
	}

	routed, ok := store.artifacts[db.StepRoute].([]routedMessage)
	require.True(t, ok)
	require.Len(t, routed, 1)
	assert.Equal(t, "m1", routed[0].MessageID)
	assert.Equal(t, "Hailey", routed[0].Assignee)
	assert.Equal(t, types.RouteReasonSupplierDomain, routed[0].Reason)

	labeled, ok := store.artifacts[db.StepApplyLabels].([]labeledMessage)
	require.True(t, ok)
	require.Len(t, labeled, 1)
	assert.Equal(t, mailer.applied["m1"], labeled[0].LabelID)
	assert.Equal(t, db.EmailStatusClassified, labeled[0].Status)
}

func TestRunSkipsAlreadyTriaged(t *testing.T) {
	mailer := &fakeMailer{messages: map[string][]byte{
		"m1": rawMessage("joe@example.com", "EMERGENCY leak", "help"),
	}}
	store := newFakeRunStore()
	store.triaged["m1"] = &db.TriagedEmail{ProviderMessageID: "m1"}
	opts := testOptions(t, mailer, store, &fakeLLM{})

	result, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, mailer.applied)
}

func TestRunUnprovisionedCategoryFallsBackToDefault(t *testing.T) {
	mailer := &fakeMailer{messages: map[string][]byte{
		"m1": rawMessage("joe@example.com", "EMERGENCY leak", "help"),
	}}
	store := newFakeRunStore()
	opts := testOptions(t, mailer, store, &fakeLLM{})

	// Simulate a stale label map missing the urgent label
	delete(opts.LabelIDs, "FloWorx/Urgent")

	result, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, 1, result.Processed)
	assert.Equal(t, opts.LabelIDs[taxonomy.DefaultCategory], mailer.applied["m1"])
}

func TestRunCountsUnparseableMessages(t *testing.T) {
	mailer := &fakeMailer{messages: map[string][]byte{
		"bad": []byte(""),
		"ok":  rawMessage("joe@example.com", "EMERGENCY leak", "help"),
	}}
	store := newFakeRunStore()
	opts := testOptions(t, mailer, store, &fakeLLM{})

	result, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, db.RunStatusCompleted, store.runs[result.RunID])
}

func TestRunFetchFailureFailsRun(t *testing.T) {
	mailer := &fakeMailer{listErr: fmt.Errorf("mailbox unavailable")}
	store := newFakeRunStore()
	opts := testOptions(t, mailer, store, &fakeLLM{})

	_, err := Run(context.Background(), opts)
	require.Error(t, err)

	for _, status := range store.runs {
		assert.Equal(t, db.RunStatusFailed, status)
	}
}

func TestRunDraftsSalesReplies(t *testing.T) {
	mailer := &fakeMailer{messages: map[string][]byte{
		"m1": rawMessage("buyer@example.com", "Looking for a 6-person tub", "What models do you carry?"),
	}}
	store := newFakeRunStore()

	// No rule matches a quote request; the fake LLM classifies it as sales.
	llmClient := &fakeLLM{
		response: `{"category": "FloWorx/Sales/New Inquiry", "confidence": 0.91, "urgency": "normal", "is_supplier": false, "reasoning": "quote request"}`,
	}
	opts := testOptions(t, mailer, store, llmClient)

	drafter, err := NewDrafter(llmClient, "The Hot Tub Man", "hot_tub_spa", "")
	require.NoError(t, err)
	opts.Drafter = drafter

	result, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Drafted)
	assert.Equal(t, 1, mailer.drafts)
}

func TestRunValidatesOptions(t *testing.T) {
	store := newFakeRunStore()
	opts := testOptions(t, &fakeMailer{}, store, &fakeLLM{})
	opts.LabelIDs = map[string]string{"FloWorx": "Label_1"}

	_, err := Run(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), taxonomy.DefaultCategory)
}

func TestDrafterShouldDraft(t *testing.T) {
	drafter, err := NewDrafter(&fakeLLM{}, "The Hot Tub Man", "hot_tub_spa", "")
	require.NoError(t, err)

	assert.True(t, drafter.ShouldDraft(&types.ClassificationResult{Category: "FloWorx/Sales/New Inquiry"}))
	assert.False(t, drafter.ShouldDraft(&types.ClassificationResult{Category: "FloWorx/Billing/Invoices"}))
	assert.False(t, drafter.ShouldDraft(&types.ClassificationResult{
		Category:   "FloWorx/Sales/New Inquiry",
		IsSupplier: true,
	}))
}
