package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/floworx/triage-agent/internal/classify"
	"github.com/floworx/triage-agent/internal/llm"
	"github.com/floworx/triage-agent/internal/mail"
	"github.com/floworx/triage-agent/internal/observability"
	"github.com/floworx/triage-agent/internal/routing"
)

var (
	classifyConfigPath string
	classifyBusinessID string
	classifyFile       string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a single raw email message",
	Long: `Parses an RFC 822 message from a file (or stdin with -), classifies it
against the business taxonomy, and prints the classification and routing
decision. Nothing is labeled or persisted; this is a dry run for debugging
taxonomies and rosters.`,
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringVar(&classifyConfigPath, "config", "", "Path to config.json file")
	classifyCmd.Flags().StringVarP(&classifyBusinessID, "business", "b", "", "Business ID (required)")
	classifyCmd.Flags().StringVarP(&classifyFile, "file", "f", "", "Path to raw message file, or - for stdin (required)")
	_ = classifyCmd.MarkFlagRequired("business")
	_ = classifyCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(classifyConfigPath)
	if err != nil {
		return err
	}
	if cfg.GeminiKey == "" {
		return fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or gemini_api_key in config)")
	}

	businessID, err := uuid.Parse(classifyBusinessID)
	if err != nil {
		return fmt.Errorf("invalid business ID %q: %w", classifyBusinessID, err)
	}

	var raw []byte
	if classifyFile == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(classifyFile)
	}
	if err != nil {
		return fmt.Errorf("failed to read message: %w", err)
	}

	msg, err := mail.ParseMessage(raw)
	if err != nil {
		return fmt.Errorf("failed to parse message: %w", err)
	}

	database, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	bc, err := loadBusinessContext(ctx, database, businessID)
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

	cls, err := classifier.Classify(ctx, msg)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintClassification(msg, cls)

	router, err := routing.NewEngine(bc.Team, bc.Business.DefaultName, bc.Business.DefaultRecipient)
	if err != nil {
		return err
	}
	printer.PrintRoutingDecision(router.Route(msg, cls))

	return nil
}
