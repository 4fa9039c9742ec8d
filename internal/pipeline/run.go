// Package pipeline provides the high-level orchestration for one triage run:
// fetch unread mail, parse it, classify it, route it, file it under the right
// label, and record every outcome.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/floworx/triage-agent/internal/classify"
	"github.com/floworx/triage-agent/internal/db"
	"github.com/floworx/triage-agent/internal/mail"
	"github.com/floworx/triage-agent/internal/pipeline/steps"
	"github.com/floworx/triage-agent/internal/routing"
	"github.com/floworx/triage-agent/internal/taxonomy"
	"github.com/floworx/triage-agent/internal/types"
)

// ProgressEvent represents a progress update during a triage run
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when run progress occurs
type ProgressCallback func(event ProgressEvent)

// Mailer is the provider surface a run drives. Gmail and Outlook clients
// both satisfy it.
type Mailer interface {
	ListUnreadMessages(ctx context.Context, max int) ([]string, error)
	GetRawMessage(ctx context.Context, id string) (*types.RawMessage, error)
	ApplyLabel(ctx context.Context, messageID, labelID string) error
	CreateReplyDraft(ctx context.Context, msg *types.EmailMessage, body string) error
}

// Store is the subset of db.DB a run persists through
type Store interface {
	CreateTriageRun(ctx context.Context, businessID, mailboxID uuid.UUID) (uuid.UUID, error)
	CompleteTriageRun(ctx context.Context, runID uuid.UUID, status string, processed, failed int) error
	SaveArtifact(ctx context.Context, runID uuid.UUID, step, category string, content any) error
	WasTriaged(ctx context.Context, mailboxID uuid.UUID, providerMessageID string) (bool, error)
	RecordTriagedEmail(ctx context.Context, runID, mailboxID uuid.UUID, msg *types.EmailMessage, cls *types.ClassificationResult, route *types.RoutingDecision, status string) (*db.TriagedEmail, error)
	UpdateMailboxSyncState(ctx context.Context, id uuid.UUID, historyMark string) error
}

// RunOptions holds everything one triage run needs
type RunOptions struct {
	BusinessID  uuid.UUID
	MailboxID   uuid.UUID
	Mailer      Mailer
	Classifier  *classify.Classifier
	Router      *routing.Engine
	Store       Store
	LabelIDs    map[string]string // taxonomy path -> provider label ID
	MaxMessages int
	Drafter     *Drafter // optional; nil disables reply drafts
	Verbose     bool
	OnProgress  ProgressCallback
}

// RunResult summarizes one triage run
type RunResult struct {
	RunID      uuid.UUID      `json:"run_id"`
	Processed  int            `json:"processed"`
	Failed     int            `json:"failed"`
	Skipped    int            `json:"skipped"`
	Drafted    int            `json:"drafted"`
	ByCategory map[string]int `json:"by_category"`
}

// stepTrace collects the per-step artifact payloads while messages move
// through the run. Each field becomes one artifact row when the run ends,
// so every step in the registry has a queryable record.
type stepTrace struct {
	parsed     []parsedMessage
	classified []classifiedMessage
	routed     []routedMessage
	labeled    []labeledMessage
	drafted    []string
}

type parsedMessage struct {
	MessageID string `json:"message_id"`
	From      string `json:"from"`
	Subject   string `json:"subject"`
}

type classifiedMessage struct {
	MessageID  string  `json:"message_id"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
	Reasoning  string  `json:"reasoning,omitempty"`
}

type routedMessage struct {
	MessageID     string `json:"message_id"`
	Assignee      string `json:"assignee"`
	AssigneeEmail string `json:"assignee_email"`
	Reason        string `json:"reason"`
}

type labeledMessage struct {
	MessageID string `json:"message_id"`
	LabelID   string `json:"label_id"`
	Status    string `json:"status"`
}

// saveArtifact persists one step artifact, resolving the category from the
// step registry. Failures are logged rather than fatal: a run that already
// filed the mail should not fail over a missing artifact row.
func saveArtifact(ctx context.Context, store Store, runID uuid.UUID, step string, content any) {
	def, err := steps.GetStepDefinition(step)
	if err != nil {
		log.Printf("triage: cannot save artifact for unregistered step %q: %v", step, err)
		return
	}
	if err := store.SaveArtifact(ctx, runID, step, def.Category, content); err != nil {
		log.Printf("triage: failed to save %s artifact for run %s: %v", step, runID, err)
	}
}

func emitProgress(opts *RunOptions, step, category, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:     step,
			Category: category,
			Message:  message,
			Content:  content,
		})
	}
}

func (opts *RunOptions) validate() error {
	if opts.Mailer == nil {
		return fmt.Errorf("mailer is required")
	}
	if opts.Classifier == nil {
		return fmt.Errorf("classifier is required")
	}
	if opts.Router == nil {
		return fmt.Errorf("router is required")
	}
	if opts.Store == nil {
		return fmt.Errorf("store is required")
	}
	if len(opts.LabelIDs) == 0 {
		return fmt.Errorf("label ID map is empty; provision the mailbox first")
	}
	if opts.LabelIDs[taxonomy.DefaultCategory] == "" {
		return fmt.Errorf("label ID map has no entry for %q", taxonomy.DefaultCategory)
	}
	return nil
}

// Run executes one triage pass over a mailbox. Individual message failures
// are counted, not fatal; the run fails only when the mailbox itself cannot
// be read.
func Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.MaxMessages <= 0 {
		opts.MaxMessages = 50
	}

	runID, err := opts.Store.CreateTriageRun(ctx, opts.BusinessID, opts.MailboxID)
	if err != nil {
		return nil, err
	}

	result := &RunResult{RunID: runID, ByCategory: make(map[string]int)}

	ids, err := opts.Mailer.ListUnreadMessages(ctx, opts.MaxMessages)
	if err != nil {
		if cerr := opts.Store.CompleteTriageRun(ctx, runID, db.RunStatusFailed, 0, 0); cerr != nil {
			log.Printf("triage: failed to mark run %s failed: %v", runID, cerr)
		}
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	emitProgress(&opts, db.StepFetchMessages, db.CategoryIngestion,
		fmt.Sprintf("Fetched %d unread messages", len(ids)), nil)
	saveArtifact(ctx, opts.Store, runID, db.StepFetchMessages, ids)

	trace := &stepTrace{}
	for i, id := range ids {
		if opts.Verbose {
			log.Printf("[VERBOSE] Message %d/%d: %s", i+1, len(ids), id)
		}

		triaged, err := opts.Store.WasTriaged(ctx, opts.MailboxID, id)
		if err != nil {
			return nil, err
		}
		if triaged {
			result.Skipped++
			continue
		}

		category, err := processMessage(ctx, &opts, runID, id, result, trace)
		if err != nil {
			// Message-level failure: log and keep going.
			log.Printf("triage: message %s failed: %v", id, err)
			result.Failed++
			continue
		}
		result.Processed++
		result.ByCategory[category]++
	}

	saveArtifact(ctx, opts.Store, runID, db.StepParseMessages, trace.parsed)
	saveArtifact(ctx, opts.Store, runID, db.StepClassify, trace.classified)
	saveArtifact(ctx, opts.Store, runID, db.StepRoute, trace.routed)
	saveArtifact(ctx, opts.Store, runID, db.StepApplyLabels, trace.labeled)
	saveArtifact(ctx, opts.Store, runID, db.StepDraftReplies, map[string]any{
		"enabled": opts.Drafter != nil,
		"drafted": trace.drafted,
	})
	saveArtifact(ctx, opts.Store, runID, db.StepRunSummary, result)

	status := db.RunStatusCompleted
	if result.Processed == 0 && result.Failed > 0 {
		status = db.RunStatusFailed
	}
	if err := opts.Store.CompleteTriageRun(ctx, runID, status, result.Processed, result.Failed); err != nil {
		return nil, err
	}

	// The sync mark is a timestamp, not a provider cursor; it exists so
	// operators can see when a mailbox was last looked at.
	mark := time.Now().UTC().Format(time.RFC3339)
	if err := opts.Store.UpdateMailboxSyncState(ctx, opts.MailboxID, mark); err != nil {
		log.Printf("triage: failed to update sync state for mailbox %s: %v", opts.MailboxID, err)
	}

	return result, nil
}

func processMessage(ctx context.Context, opts *RunOptions, runID uuid.UUID, providerID string, result *RunResult, trace *stepTrace) (string, error) {
	raw, err := opts.Mailer.GetRawMessage(ctx, providerID)
	if err != nil {
		return "", err
	}

	msg, err := mail.ParseMessage(raw.Raw)
	if err != nil {
		return "", fmt.Errorf("parse failed: %w", err)
	}
	// Provider identifiers replace header values; everything downstream
	// keys on what the provider understands.
	msg.MessageID = raw.ID
	msg.ThreadID = raw.ThreadID
	trace.parsed = append(trace.parsed, parsedMessage{
		MessageID: msg.MessageID,
		From:      msg.From.Email,
		Subject:   msg.Subject,
	})

	cls, err := opts.Classifier.Classify(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("classify failed: %w", err)
	}
	trace.classified = append(trace.classified, classifiedMessage{
		MessageID:  msg.MessageID,
		Category:   cls.Category,
		Confidence: cls.Confidence,
		Source:     string(cls.Source),
		Reasoning:  cls.Reasoning,
	})

	route := opts.Router.Route(msg, cls)
	trace.routed = append(trace.routed, routedMessage{
		MessageID:     msg.MessageID,
		Assignee:      route.AssigneeName,
		AssigneeEmail: route.AssigneeEmail,
		Reason:        string(route.Reason),
	})

	labelID := opts.LabelIDs[cls.Category]
	if labelID == "" {
		// Classifier picked a category that was never provisioned.
		// File under the default rather than dropping the message.
		log.Printf("triage: no label ID for %q, filing under %s", cls.Category, taxonomy.DefaultCategory)
		labelID = opts.LabelIDs[taxonomy.DefaultCategory]
	}

	status := db.EmailStatusClassified
	if err := opts.Mailer.ApplyLabel(ctx, providerID, labelID); err != nil {
		log.Printf("triage: failed to apply label to %s: %v", providerID, err)
		status = db.EmailStatusFailed
	}
	trace.labeled = append(trace.labeled, labeledMessage{
		MessageID: msg.MessageID,
		LabelID:   labelID,
		Status:    status,
	})

	if opts.Drafter != nil && status == db.EmailStatusClassified && opts.Drafter.ShouldDraft(cls) {
		if err := opts.Drafter.Draft(ctx, opts.Mailer, msg, cls, route); err != nil {
			log.Printf("triage: failed to draft reply for %s: %v", providerID, err)
		} else {
			result.Drafted++
			trace.drafted = append(trace.drafted, msg.MessageID)
		}
	}

	if _, err := opts.Store.RecordTriagedEmail(ctx, runID, opts.MailboxID, msg, cls, route, status); err != nil {
		return "", err
	}

	emitProgress(opts, db.StepRoute, db.CategoryRouting,
		fmt.Sprintf("%s -> %s (%s)", msg.From.Email, cls.Category, route.AssigneeName), nil)

	if status == db.EmailStatusFailed {
		return "", fmt.Errorf("label apply failed")
	}

	return cls.Category, nil
}
