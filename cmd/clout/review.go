package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/avisanghavi/clout/internal/approval"
	"github.com/avisanghavi/clout/internal/db"
	"github.com/avisanghavi/clout/internal/ingestion"
	"github.com/avisanghavi/clout/internal/types"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Approve, edit or reject the drafted message for a lead",
	Long: `Appends one decision to the approval log. The profile must be part of the latest ranked
snapshot. approve and reject record the drafted message unless --message is given; edit
requires --message.
Decisions are never changed or removed once recorded.`,
	RunE: runReview,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show every recorded approval decision",
	RunE:  runHistory,
}

var (
	reviewProfileID string
	reviewAction    string
	reviewMessage   string

	historyOutput string
)

func init() {
	reviewCmd.Flags().StringVar(&reviewProfileID, "profile-id", "", "ID of the lead being reviewed (required)")
	reviewCmd.Flags().StringVarP(&reviewAction, "action", "a", "", "approve, edit or reject (required)")
	reviewCmd.Flags().StringVarP(&reviewMessage, "message", "m", "", "Final message text (defaults to the drafted message)")
	markRequired(reviewCmd, "profile-id", "action")

	historyCmd.Flags().StringVarP(&historyOutput, "out", "o", "", "Also export the history as JSON to this path")

	rootCmd.AddCommand(reviewCmd, historyCmd)
}

func runReview(cmd *cobra.Command, _ []string) error {
	profileID, err := uuid.Parse(reviewProfileID)
	if err != nil {
		return fmt.Errorf("invalid profile-id format: %w", err)
	}
	status, err := approval.ParseAction(reviewAction)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	text := reviewMessage
	if !cmd.Flags().Changed("message") && status != types.ApprovalEdited {
		draft, err := a.store.GetDraft(ctx, profileID)
		switch {
		case errors.Is(err, db.ErrNotFound) && status == types.ApprovalRejected:
			// A rejection without any draft is recorded with empty text.
		case errors.Is(err, db.ErrNotFound):
			return fmt.Errorf("no drafted message for %s; run compose first or pass --message", profileID)
		case err != nil:
			return err
		default:
			text = draft.Text
		}
	}

	workflow := approval.NewWorkflow(a.store, approval.WithLogger(a.logger))
	record, err := workflow.Review(ctx, approval.ReviewRequest{
		ProfileID:   profileID,
		MessageText: text,
		Action:      reviewAction,
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(a.out, "Recorded %s decision %s for %s\n", record.Status, record.ID, record.ProfileRef)
	return nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := approval.NewWorkflow(a.store, approval.WithLogger(a.logger)).History(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load approval history: %w", err)
	}

	if historyOutput != "" {
		if err := ingestion.WriteJSONFile(historyOutput, entries); err != nil {
			return err
		}
	}
	a.printer.PrintHistory(entries)
	return nil
}
