package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/floworx/triage-agent/internal/types"
	"github.com/floworx/triage-agent/internal/workflow"
)

var (
	deployConfigPath string
	deployMailboxID  string
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the triage workflow for a mailbox to n8n",
	Long: `Injects the current workflow template with the business's label map,
team roster, and schedule, then creates or updates the workflow in n8n and
activates it. Unchanged configurations are skipped.`,
	RunE: runDeploy,
}

func init() {
	deployCmd.Flags().StringVar(&deployConfigPath, "config", "", "Path to config.json file")
	deployCmd.Flags().StringVarP(&deployMailboxID, "mailbox", "m", "", "Mailbox ID (required)")
	_ = deployCmd.MarkFlagRequired("mailbox")
	rootCmd.AddCommand(deployCmd)
}

func runDeploy(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(deployConfigPath)
	if err != nil {
		return err
	}
	if cfg.N8NBaseURL == "" || cfg.N8NAPIKey == "" {
		return fmt.Errorf("n8n configuration is required (set N8N_BASE_URL and N8N_API_KEY)")
	}

	database, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	mailbox, err := loadMailbox(ctx, database, deployMailboxID)
	if err != nil {
		return err
	}

	bc, err := loadBusinessContext(ctx, database, mailbox.BusinessID)
	if err != nil {
		return err
	}

	labelIDs, err := database.LabelIDMap(ctx, mailbox.ID)
	if err != nil {
		return err
	}

	wcfg := &types.WorkflowConfig{
		BusinessName:  bc.Business.Name,
		Industry:      bc.Business.Industry,
		Mailbox:       mailbox.Address,
		MailboxID:     mailbox.ID.String(),
		Provider:      mailbox.Provider,
		Timezone:      bc.Business.Timezone,
		AgentBaseURL:  cfg.AgentBaseURL,
		LabelIDs:      labelIDs,
		Managers:      bc.Team.Managers,
		Suppliers:     bc.Team.Suppliers,
		CredentialRef: mailbox.Provider + "-" + mailbox.ID.String(),
	}

	deployer := workflow.NewDeployer(database, workflow.NewN8NClient(cfg.N8NBaseURL, cfg.N8NAPIKey))
	outcome, err := deployer.Deploy(ctx, mailbox.BusinessID, mailbox.ID, wcfg)
	if err != nil {
		return err
	}

	if outcome.Skipped {
		fmt.Fprintf(os.Stdout, "Workflow %s is up to date (hash %.12s), nothing to deploy\n",
			outcome.WorkflowID, outcome.ConfigHash)
		return nil
	}

	fmt.Fprintf(os.Stdout, "Deployed workflow %s (template %s, hash %.12s)\n",
		outcome.WorkflowID, outcome.TemplateVersion, outcome.ConfigHash)
	return nil
}
