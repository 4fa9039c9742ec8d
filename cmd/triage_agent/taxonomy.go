package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/floworx/triage-agent/internal/observability"
)

var (
	taxonomyConfigPath string
	taxonomyBusinessID string
)

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Print the generated label taxonomy for a business",
	Long:  `Generates and prints the label tree a business would be provisioned with: the industry base tree plus dynamic branches for its current team roster.`,
	RunE:  runTaxonomy,
}

func init() {
	taxonomyCmd.Flags().StringVar(&taxonomyConfigPath, "config", "", "Path to config.json file")
	taxonomyCmd.Flags().StringVarP(&taxonomyBusinessID, "business", "b", "", "Business ID (required)")
	_ = taxonomyCmd.MarkFlagRequired("business")
	rootCmd.AddCommand(taxonomyCmd)
}

func runTaxonomy(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(taxonomyConfigPath)
	if err != nil {
		return err
	}

	businessID, err := uuid.Parse(taxonomyBusinessID)
	if err != nil {
		return fmt.Errorf("invalid business ID %q: %w", taxonomyBusinessID, err)
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

	observability.NewPrinter(os.Stdout).PrintTaxonomy(bc.Taxonomy)
	return nil
}
