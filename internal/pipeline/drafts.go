package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/floworx/triage-agent/internal/llm"
	"github.com/floworx/triage-agent/internal/mail"
	"github.com/floworx/triage-agent/internal/prompts"
	"github.com/floworx/triage-agent/internal/types"
)

// Drafter writes reply drafts for sales inquiries in the owner's voice.
// Drafts land in the mailbox's drafts folder; nothing is ever sent.
type Drafter struct {
	client       llm.Client
	businessName string
	industry     string
	voice        string
}

// NewDrafter creates a Drafter. voice may be empty; the default voice from
// the prompt pack is used.
func NewDrafter(client llm.Client, businessName, industry, voice string) (*Drafter, error) {
	if client == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	if voice == "" {
		voice = prompts.MustGet("drafts.json", "default_voice")
	}
	return &Drafter{
		client:       client,
		businessName: businessName,
		industry:     industry,
		voice:        voice,
	}, nil
}

// ShouldDraft reports whether a classification warrants a reply draft.
// Only new business gets drafts; suppliers and internal mail do not.
func (d *Drafter) ShouldDraft(cls *types.ClassificationResult) bool {
	if cls.IsSupplier {
		return false
	}
	return strings.Contains(cls.Category, "/Sales")
}

// Draft generates a reply and saves it through the mailer
func (d *Drafter) Draft(ctx context.Context, mailer Mailer, msg *types.EmailMessage, cls *types.ClassificationResult, route *types.RoutingDecision) error {
	template, err := prompts.Get("drafts.json", "draft_reply")
	if err != nil {
		return err
	}

	prompt := prompts.Format(template, map[string]string{
		"BusinessName": d.businessName,
		"Industry":     d.industry,
		"Voice":        d.voice,
		"Category":     cls.Category,
		"Assignee":     route.AssigneeName,
		"From":         msg.From.String(),
		"Subject":      msg.Subject,
		"Body":         mail.TruncateForPrompt(msg.BodyText),
	})

	reply, err := d.client.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		return fmt.Errorf("failed to generate reply draft: %w", err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return fmt.Errorf("model returned an empty draft")
	}

	return mailer.CreateReplyDraft(ctx, msg, reply)
}
