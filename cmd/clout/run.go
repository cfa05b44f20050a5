package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/avisanghavi/clout/internal/ingestion"
	"github.com/avisanghavi/clout/internal/pipeline"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline end-to-end",
	Long: `Orchestrates the whole process: product description -> ICP (optional) -> trusted network ->
candidates -> network matching -> ranking -> message drafting.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runPipelineCmd,
}

var (
	runCandidates     string
	runNetwork        string
	runProduct        string
	runExtractICPFlag bool
	runOutDir         string
)

func init() {
	runCommand.Flags().StringVarP(&runCandidates, "candidates", "c", "", "Path to candidates JSON file (required)")
	runCommand.Flags().StringVarP(&runNetwork, "network", "n", "", "Import this contacts file first (optional, defaults to the stored network)")
	runCommand.Flags().StringVarP(&runProduct, "product", "p", "", "Path to product description text file (optional)")
	runCommand.Flags().BoolVar(&runExtractICPFlag, "extract-icp", false, "Extract and store the ICP from the product description")
	runCommand.Flags().StringVarP(&runOutDir, "out-dir", "o", "", "Write snapshot.json, messages.json and icp.json into this directory")
	markRequired(runCommand, "candidates")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	if runExtractICPFlag && runProduct == "" {
		return fmt.Errorf("--extract-icp requires --product")
	}
	if runOutDir != "" {
		if err := os.MkdirAll(runOutDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := pipeline.RunOptions{
		CandidatesPath: runCandidates,
		ContactsPath:   runNetwork,
		ProductPath:    runProduct,
		ExtractICP:     runExtractICPFlag,
		Workers:        a.cfg.Concurrency,
		Store:          a.store,
		Client:         a.client,
		Params:         a.params(),
		Finder:         a.finder(),
		Logger:         a.logger,
		Out:            a.out,
		Verbose:        a.cfg.Verbose,
	}
	if runOutDir != "" {
		opts.SnapshotOut = filepath.Join(runOutDir, "snapshot.json")
	}

	result, err := pipeline.RunPipeline(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if runOutDir != "" {
		if err := ingestion.WriteJSONFile(filepath.Join(runOutDir, "messages.json"), result.Messages); err != nil {
			return err
		}
		if result.ICP != nil {
			if err := ingestion.WriteJSONFile(filepath.Join(runOutDir, "icp.json"), result.ICP); err != nil {
				return err
			}
		}
	}

	if !a.cfg.Verbose {
		a.printer.PrintRankedLeads(result.Snapshot.Profiles)
		a.printer.PrintMessages(result.Messages)
	}
	_, _ = fmt.Fprintf(a.out, "\n✅ Pipeline completed: %d leads ranked, %d messages drafted (snapshot %s)\n",
		len(result.Snapshot.Profiles), len(result.Messages), result.Snapshot.ID)
	return nil
}
