package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/floworx/triage-agent/internal/classify"
	"github.com/floworx/triage-agent/internal/llm"
	"github.com/floworx/triage-agent/internal/observability"
	"github.com/floworx/triage-agent/internal/pipeline"
	"github.com/floworx/triage-agent/internal/routing"
)

var (
	triageConfigPath  string
	triageMailboxID   string
	triageMaxMessages int
	triageDrafts      bool
	triageVerbose     bool
)

var triageCmd = &cobra.Command{
	Use:   "triage",
	Short: "Run one triage pass over a mailbox",
	Long: `Fetches unread inbox messages, classifies each against the business
taxonomy, applies the matching label, routes it to a team member, and
optionally drafts replies for sales leads. Already-triaged messages are
skipped.`,
	RunE: runTriage,
}

func init() {
	triageCmd.Flags().StringVar(&triageConfigPath, "config", "", "Path to config.json file")
	triageCmd.Flags().StringVarP(&triageMailboxID, "mailbox", "m", "", "Mailbox ID (required)")
	triageCmd.Flags().IntVar(&triageMaxMessages, "max", 0, "Maximum messages to process (default from config)")
	triageCmd.Flags().BoolVar(&triageDrafts, "drafts", false, "Generate reply drafts for sales leads")
	triageCmd.Flags().BoolVarP(&triageVerbose, "verbose", "v", false, "Print detailed progress")
	_ = triageCmd.MarkFlagRequired("mailbox")
	rootCmd.AddCommand(triageCmd)
}

func runTriage(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(triageConfigPath)
	if err != nil {
		return err
	}
	if cfg.GeminiKey == "" {
		return fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or gemini_api_key in config)")
	}

	database, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	mailbox, err := loadMailbox(ctx, database, triageMailboxID)
	if err != nil {
		return err
	}

	bc, err := loadBusinessContext(ctx, database, mailbox.BusinessID)
	if err != nil {
		return err
	}

	client, err := llm.NewClient(ctx, llm.DefaultGeminiConfig(), cfg.GeminiKey)
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck

	classifier, err := classify.New(client, bc.Taxonomy, bc.Team, classify.BusinessInfo{
		Name:     bc.Business.Name,
		Industry: bc.Business.Industry,
	})
	if err != nil {
		return err
	}

	router, err := routing.NewEngine(bc.Team, bc.Business.DefaultName, bc.Business.DefaultRecipient)
	if err != nil {
		return err
	}

	labelIDs, err := database.LabelIDMap(ctx, mailbox.ID)
	if err != nil {
		return err
	}

	mailer, err := mailClientFor(ctx, cfg, database, mailbox)
	if err != nil {
		return err
	}

	var drafter *pipeline.Drafter
	if triageDrafts {
		voice := ""
		if bc.Business.VoiceSummary != nil {
			voice = *bc.Business.VoiceSummary
		}
		drafter, err = pipeline.NewDrafter(client, bc.Business.Name, bc.Business.Industry, voice)
		if err != nil {
			return err
		}
	}

	maxMessages := triageMaxMessages
	if maxMessages <= 0 {
		maxMessages = cfg.MaxMessagesPerRun
	}

	opts := pipeline.RunOptions{
		BusinessID:  mailbox.BusinessID,
		MailboxID:   mailbox.ID,
		Mailer:      mailer,
		Classifier:  classifier,
		Router:      router,
		Store:       database,
		LabelIDs:    labelIDs,
		MaxMessages: maxMessages,
		Drafter:     drafter,
		Verbose:     triageVerbose,
	}
	if triageVerbose {
		opts.OnProgress = func(event pipeline.ProgressEvent) {
			fmt.Fprintf(os.Stdout, "[%s] %s\n", event.Step, event.Message)
		}
	}

	result, err := pipeline.Run(ctx, opts)
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintRunSummary(result)
	return nil
}
