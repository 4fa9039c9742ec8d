package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/floworx/triage-agent/internal/observability"
	"github.com/floworx/triage-agent/internal/provision"
)

var (
	provisionConfigPath string
	provisionMailboxID  string
	provisionApply      bool
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Reconcile a mailbox's labels against the business taxonomy",
	Long: `Diffs the generated label taxonomy against the labels in the connected
mailbox and prints the plan. With --apply, creates missing labels, adopts
existing ones, fixes colors, and records verified provider IDs.`,
	RunE: runProvision,
}

func init() {
	provisionCmd.Flags().StringVar(&provisionConfigPath, "config", "", "Path to config.json file")
	provisionCmd.Flags().StringVarP(&provisionMailboxID, "mailbox", "m", "", "Mailbox ID (required)")
	provisionCmd.Flags().BoolVar(&provisionApply, "apply", false, "Apply the plan instead of only printing it")
	_ = provisionCmd.MarkFlagRequired("mailbox")
	rootCmd.AddCommand(provisionCmd)
}

func runProvision(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(provisionConfigPath)
	if err != nil {
		return err
	}

	database, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	mailbox, err := loadMailbox(ctx, database, provisionMailboxID)
	if err != nil {
		return err
	}

	bc, err := loadBusinessContext(ctx, database, mailbox.BusinessID)
	if err != nil {
		return err
	}

	client, err := mailClientFor(ctx, cfg, database, mailbox)
	if err != nil {
		return err
	}

	provisioner := provision.New(client, database, cfg.ProvisionWorkers)
	printer := observability.NewPrinter(os.Stdout)

	plan, err := provisioner.BuildPlan(ctx, bc.Taxonomy)
	if err != nil {
		return err
	}
	printer.PrintPlan(plan)

	if !provisionApply {
		return nil
	}

	result, err := provisioner.Apply(ctx, mailbox.BusinessID, mailbox.ID, plan)
	if err != nil {
		return err
	}
	printer.PrintApplyResult(result)

	return nil
}
