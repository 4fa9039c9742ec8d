package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/floworx/triage-agent/internal/observability"
	"github.com/floworx/triage-agent/internal/provision"
)

var (
	verifyConfigPath string
	verifyMailboxID  string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify stored provider label IDs and repair stale ones",
	Long: `Checks every stored provider label ID against the mailbox. Labels that
were deleted and recreated by hand get their IDs re-resolved by path; labels
gone entirely are reported so the next provision pass recreates them.`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyConfigPath, "config", "", "Path to config.json file")
	verifyCmd.Flags().StringVarP(&verifyMailboxID, "mailbox", "m", "", "Mailbox ID (required)")
	_ = verifyCmd.MarkFlagRequired("mailbox")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(verifyConfigPath)
	if err != nil {
		return err
	}

	database, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	mailbox, err := loadMailbox(ctx, database, verifyMailboxID)
	if err != nil {
		return err
	}

	client, err := mailClientFor(ctx, cfg, database, mailbox)
	if err != nil {
		return err
	}

	report, err := provision.New(client, database, cfg.ProvisionWorkers).Verify(ctx, mailbox.ID)
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintRepairReport(report)
	return nil
}
