package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/avisanghavi/clout/internal/ingestion"
)

var importNetworkCmd = &cobra.Command{
	Use:   "import-network",
	Short: "Replace the trusted network with contacts from a CSV or JSON file",
	Long: `Imports trusted contacts. CSV files need a name column and may carry trust_score (1-10,
default 5) and notes columns; JSON files hold an array of {name, trust_score, notes}.
Any invalid row aborts the import and the stored network is left unchanged.`,
	RunE: runImportNetwork,
}

var exportNetworkCmd = &cobra.Command{
	Use:   "export-network",
	Short: "Export the trusted network as CSV",
	RunE:  runExportNetwork,
}

var (
	importNetworkFile string
	exportNetworkOut  string
)

func init() {
	importNetworkCmd.Flags().StringVarP(&importNetworkFile, "file", "f", "", "Path to contacts .csv or .json file (required)")
	markRequired(importNetworkCmd, "file")

	exportNetworkCmd.Flags().StringVarP(&exportNetworkOut, "out", "o", "-", "Output CSV path, - for stdout")

	rootCmd.AddCommand(importNetworkCmd, exportNetworkCmd)
}

func runImportNetwork(cmd *cobra.Command, _ []string) error {
	contacts, err := ingestion.LoadContactsFile(importNetworkFile)
	if err != nil {
		return fmt.Errorf("failed to load contacts: %w", err)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.SaveTrustedContacts(cmd.Context(), contacts); err != nil {
		return fmt.Errorf("failed to save trusted network: %w", err)
	}

	_, _ = fmt.Fprintf(a.out, "Imported %d trusted contacts from %s\n", len(contacts), importNetworkFile)
	if a.cfg.Verbose {
		a.printer.PrintTrustedNetwork(contacts)
	}
	return nil
}

func runExportNetwork(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	contacts, err := a.store.ListTrustedContacts(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load trusted network: %w", err)
	}

	var w io.Writer = a.out
	if exportNetworkOut != "-" {
		f, err := os.Create(exportNetworkOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportNetworkOut, err)
		}
		defer f.Close()
		w = f
	}

	if err := ingestion.ExportContactsCSV(w, contacts); err != nil {
		return err
	}
	if exportNetworkOut != "-" {
		_, _ = fmt.Fprintf(a.out, "Exported %d trusted contacts to %s\n", len(contacts), exportNetworkOut)
	}
	return nil
}
