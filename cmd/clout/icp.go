package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avisanghavi/clout/internal/icp"
	"github.com/avisanghavi/clout/internal/ingestion"
	"github.com/avisanghavi/clout/internal/logging"
)

var extractICPCmd = &cobra.Command{
	Use:   "extract-icp",
	Short: "Derive the ideal customer profile and personas from a product description",
	Long: `Sends the product description to the text-generation service and stores the resulting
ideal customer profile and buyer/user personas. A fixed default profile is used when generation
is unavailable or returns something unusable.`,
	RunE: runExtractICP,
}

var showICPCmd = &cobra.Command{
	Use:   "show-icp",
	Short: "Print the stored ideal customer profile",
	RunE:  runShowICP,
}

var (
	extractICPProduct string
	extractICPOutput  string
)

func init() {
	extractICPCmd.Flags().StringVarP(&extractICPProduct, "product", "p", "", "Path to product description text file (required)")
	extractICPCmd.Flags().StringVarP(&extractICPOutput, "out", "o", "", "Also write the profile as JSON to this path")
	markRequired(extractICPCmd, "product")

	rootCmd.AddCommand(extractICPCmd, showICPCmd)
}

func runExtractICP(cmd *cobra.Command, _ []string) error {
	product, _, err := ingestion.IngestProductDescription(extractICPProduct)
	if err != nil {
		return fmt.Errorf("failed to load product description: %w", err)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	bundle := icp.NewExtractor(a.client, a.params(), logging.Named(a.logger, "icp")).Extract(cmd.Context(), product)
	if err := a.store.SaveICP(cmd.Context(), bundle); err != nil {
		return fmt.Errorf("failed to save ICP: %w", err)
	}
	if extractICPOutput != "" {
		if err := ingestion.WriteJSONFile(extractICPOutput, bundle); err != nil {
			return err
		}
	}

	a.printer.PrintICP(&bundle)
	return nil
}

func runShowICP(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	bundle, err := a.store.LoadICP(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load ICP: %w", err)
	}
	a.printer.PrintICP(&bundle)
	return nil
}
