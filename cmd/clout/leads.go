package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avisanghavi/clout/internal/ingestion"
	"github.com/avisanghavi/clout/internal/pipeline"
	"github.com/avisanghavi/clout/internal/pipeline/steps"
)

var rankLeadsCmd = &cobra.Command{
	Use:   "rank-leads",
	Short: "Match candidates against the trusted network and save a ranked snapshot",
	Long: `Ingests a JSON candidate list, annotates each candidate with its connection level and
mutual trusted contacts, and ranks them: reachable through trusted contacts first, then closer
connections, then more mutuals. The ranked list becomes the latest snapshot.`,
	RunE: runRankLeads,
}

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Draft an outreach message for every lead in the latest snapshot",
	RunE:  runCompose,
}

var (
	rankLeadsCandidates string
	rankLeadsNetwork    string
	rankLeadsOutput     string

	composeProduct string
	composeOutput  string
)

func init() {
	rankLeadsCmd.Flags().StringVarP(&rankLeadsCandidates, "candidates", "c", "", "Path to candidates JSON file (required)")
	rankLeadsCmd.Flags().StringVarP(&rankLeadsNetwork, "network", "n", "", "Import this contacts file first (optional, defaults to the stored network)")
	rankLeadsCmd.Flags().StringVarP(&rankLeadsOutput, "out", "o", "", "Also write the ranked snapshot as JSON to this path")
	markRequired(rankLeadsCmd, "candidates")

	composeCmd.Flags().StringVarP(&composeProduct, "product", "p", "", "Path to product description used as message context (optional)")
	composeCmd.Flags().StringVarP(&composeOutput, "out", "o", "", "Also write the drafted messages as JSON to this path")

	rootCmd.AddCommand(rankLeadsCmd, composeCmd)
}

func runRankLeads(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := pipeline.RunPipeline(cmd.Context(), pipeline.RunOptions{
		CandidatesPath: rankLeadsCandidates,
		ContactsPath:   rankLeadsNetwork,
		Target:         steps.RankLeads,
		SnapshotOut:    rankLeadsOutput,
		Store:          a.store,
		Client:         a.client,
		Params:         a.params(),
		Finder:         a.finder(),
		Logger:         a.logger,
		Out:            a.out,
		Verbose:        a.cfg.Verbose,
	})
	if err != nil {
		return err
	}

	if !a.cfg.Verbose {
		a.printer.PrintRankedLeads(result.Snapshot.Profiles)
	}
	_, _ = fmt.Fprintf(a.out, "Saved snapshot %s\n", result.Snapshot.ID)
	return nil
}

func runCompose(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := pipeline.ComposeLatest(cmd.Context(), pipeline.RunOptions{
		ProductPath: composeProduct,
		Workers:     a.cfg.Concurrency,
		Store:       a.store,
		Client:      a.client,
		Params:      a.params(),
		Logger:      a.logger,
		Out:         a.out,
		Verbose:     a.cfg.Verbose,
	})
	if err != nil {
		return err
	}

	if composeOutput != "" {
		if err := ingestion.WriteJSONFile(composeOutput, result.Messages); err != nil {
			return err
		}
	}
	if !a.cfg.Verbose {
		a.printer.PrintMessages(result.Messages)
	}
	return nil
}
