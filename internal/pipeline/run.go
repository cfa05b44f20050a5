// Package pipeline provides the high-level orchestration for one lead prioritization run:
// ingest, match against the trusted network, rank, persist the snapshot and draft messages.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avisanghavi/clout/internal/db"
	"github.com/avisanghavi/clout/internal/icp"
	"github.com/avisanghavi/clout/internal/ingestion"
	"github.com/avisanghavi/clout/internal/llm"
	"github.com/avisanghavi/clout/internal/logging"
	"github.com/avisanghavi/clout/internal/network"
	"github.com/avisanghavi/clout/internal/observability"
	"github.com/avisanghavi/clout/internal/outreach"
	"github.com/avisanghavi/clout/internal/pipeline/steps"
	"github.com/avisanghavi/clout/internal/ranking"
	"github.com/avisanghavi/clout/internal/types"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	// Inputs
	CandidatesPath string
	ContactsPath   string // Replaces the stored trusted network when set
	ProductPath    string // Product description used for ICP extraction and message context
	ExtractICP     bool

	// Target is the last step to run; defaults to steps.ComposeMessages.
	Target string
	// Workers bounds concurrent message generation.
	Workers     int
	SnapshotOut string // Optional JSON copy of the ranked snapshot

	// Collaborators
	Store  db.Store
	Client llm.Client
	Params llm.Params
	Finder network.SharedConnectionFinder
	Logger *zap.Logger
	Now    func() time.Time

	Out        io.Writer
	Verbose    bool
	OnProgress ProgressCallback
}

// Result holds what a run produced
type Result struct {
	RunID     uuid.UUID
	ICP       *types.ICPPersonaBundle
	Contacts  []types.TrustedContact
	Snapshot  *types.Snapshot
	Messages  []types.OutreachMessage
	Completed []string
}

// run carries the state shared between steps
type run struct {
	opts    RunOptions
	printer *observability.Printer
	result  *Result
	product string

	candidates []types.CandidateProfile
	matched    []types.CandidateProfile
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, runID uuid.UUID, step, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:     step,
			Category: steps.StepRegistry[step].Category,
			Message:  message,
			RunID:    runID.String(),
			Content:  content,
		})
	}
}

func (o *RunOptions) setDefaults() {
	if o.Target == "" {
		o.Target = steps.ComposeMessages
	}
	if o.Client == nil {
		o.Client = llm.Unavailable
	}
	if o.Finder == nil {
		o.Finder = network.NewSeededFinder(time.Now().UnixNano())
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
}

// buildPlan returns the steps for opts in execution order.
func buildPlan(opts *RunOptions) ([]string, error) {
	plan, err := steps.Plan(opts.Target)
	if err != nil {
		return nil, err
	}

	included := map[string]bool{}
	for _, s := range plan {
		included[s] = true
	}
	if opts.ProductPath != "" {
		included[steps.IngestProduct] = true
	}
	if opts.ExtractICP {
		if opts.ProductPath == "" {
			return nil, errors.New("ICP extraction requires a product description")
		}
		included[steps.ExtractICP] = true
	}
	if included[steps.IngestCandidates] && opts.CandidatesPath == "" {
		return nil, errors.New("a candidate file is required")
	}

	plan = plan[:0]
	for s := range included {
		plan = append(plan, s)
	}
	sort.Slice(plan, func(i, j int) bool {
		return steps.StepRegistry[plan[i]].Order < steps.StepRegistry[plan[j]].Order
	})
	return plan, nil
}

// RunPipeline executes the steps needed to reach opts.Target, sequentially.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func RunPipeline(ctx context.Context, opts RunOptions) (*Result, error) {
	if opts.Store == nil {
		return nil, errors.New("pipeline requires a store")
	}
	opts.setDefaults()

	plan, err := buildPlan(&opts)
	if err != nil {
		return nil, err
	}

	r := &run{
		opts:    opts,
		printer: observability.NewPrinter(opts.Out),
		result:  &Result{RunID: uuid.New()},
	}
	logger := opts.Logger.With(zap.String("run_id", r.result.RunID.String()))

	completed := map[string]bool{}
	for i, step := range plan {
		if err := steps.ValidateDependencies(completed, step); err != nil {
			return nil, err
		}
		fmt.Fprintf(opts.Out, "Step %d/%d: %s...\n", i+1, len(plan), stepTitle(step))
		logger.Debug("running step", zap.String("step", step))

		if err := r.execute(ctx, step); err != nil {
			return nil, fmt.Errorf("%s failed: %w", step, err)
		}
		completed[step] = true
		r.result.Completed = append(r.result.Completed, step)
	}

	logger.Info("pipeline completed", zap.Strings("steps", r.result.Completed))
	return r.result, nil
}

func stepTitle(step string) string {
	switch step {
	case steps.IngestProduct:
		return "Loading product description"
	case steps.ExtractICP:
		return "Extracting ideal customer profile"
	case steps.ImportNetwork:
		return "Loading trusted network"
	case steps.IngestCandidates:
		return "Ingesting candidates"
	case steps.MatchNetwork:
		return "Matching candidates against trusted network"
	case steps.RankLeads:
		return "Ranking leads"
	case steps.ComposeMessages:
		return "Drafting outreach messages"
	default:
		return step
	}
}

func (r *run) execute(ctx context.Context, step string) error {
	opts := &r.opts
	runID := r.result.RunID

	switch step {
	case steps.IngestProduct:
		text, meta, err := ingestion.IngestProductDescription(opts.ProductPath)
		if err != nil {
			return err
		}
		r.product = text
		emitProgress(opts, runID, step, fmt.Sprintf("Loaded product description (%d chars)", meta.Chars), meta)

	case steps.ExtractICP:
		extractor := icp.NewExtractor(opts.Client, opts.Params, logging.Named(opts.Logger, "icp"))
		bundle := extractor.Extract(ctx, r.product)
		if err := opts.Store.SaveICP(ctx, bundle); err != nil {
			return err
		}
		r.result.ICP = &bundle
		if opts.Verbose {
			r.printer.PrintICP(&bundle)
		}
		emitProgress(opts, runID, step, fmt.Sprintf("Target industry: %s", bundle.ICP.Industry), bundle)

	case steps.ImportNetwork:
		contacts, err := r.loadNetwork(ctx)
		if err != nil {
			return err
		}
		r.result.Contacts = contacts
		if opts.Verbose {
			r.printer.PrintTrustedNetwork(contacts)
		}
		emitProgress(opts, runID, step, fmt.Sprintf("%d trusted contacts", len(contacts)), nil)

	case steps.IngestCandidates:
		candidates, err := ingestion.LoadCandidatesFile(opts.CandidatesPath)
		if err != nil {
			return err
		}
		r.candidates = candidates
		emitProgress(opts, runID, step, fmt.Sprintf("Ingested %d candidates", len(candidates)), nil)

	case steps.MatchNetwork:
		matched, err := network.NewMatcher(opts.Finder).Match(ctx, r.candidates, r.result.Contacts)
		if err != nil {
			return err
		}
		r.matched = matched
		tnl := 0
		for _, p := range matched {
			if p.TNLConnection {
				tnl++
			}
		}
		emitProgress(opts, runID, step, fmt.Sprintf("%d of %d candidates reachable through trusted contacts", tnl, len(matched)), nil)

	case steps.RankLeads:
		snapshot := &types.Snapshot{
			ID:        uuid.New(),
			CreatedAt: opts.Now().UTC(),
			Profiles:  ranking.RankLeads(r.matched),
		}
		if err := opts.Store.SaveSnapshot(ctx, snapshot); err != nil {
			return err
		}
		if opts.SnapshotOut != "" {
			if err := ingestion.WriteJSONFile(opts.SnapshotOut, snapshot); err != nil {
				return err
			}
		}
		r.result.Snapshot = snapshot
		if opts.Verbose {
			r.printer.PrintRankedLeads(snapshot.Profiles)
		}
		emitProgress(opts, runID, step, fmt.Sprintf("Saved snapshot %s with %d leads", snapshot.ID, len(snapshot.Profiles)), nil)

	case steps.ComposeMessages:
		messages, err := composeAndSave(ctx, opts, r.result.Snapshot.Profiles, r.product)
		if err != nil {
			return err
		}
		r.result.Messages = messages
		if opts.Verbose {
			r.printer.PrintMessages(messages)
		}
		emitProgress(opts, runID, step, fmt.Sprintf("Drafted %d messages", len(messages)), nil)

	default:
		return fmt.Errorf("unknown step: %s", step)
	}
	return nil
}

// loadNetwork imports the contacts file when one is given, otherwise reads the stored network.
func (r *run) loadNetwork(ctx context.Context) ([]types.TrustedContact, error) {
	if r.opts.ContactsPath == "" {
		return r.opts.Store.ListTrustedContacts(ctx)
	}
	contacts, err := ingestion.LoadContactsFile(r.opts.ContactsPath)
	if err != nil {
		return nil, err
	}
	if err := r.opts.Store.SaveTrustedContacts(ctx, contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

func composeAndSave(ctx context.Context, opts *RunOptions, profiles []types.CandidateProfile, product string) ([]types.OutreachMessage, error) {
	composer := outreach.NewComposer(opts.Client, opts.Params, logging.Named(opts.Logger, "outreach"))
	messages, err := composer.ComposeAll(ctx, profiles, product, opts.Workers)
	if err != nil {
		return nil, err
	}
	if err := opts.Store.SaveDrafts(ctx, messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// ComposeLatest drafts messages for the latest stored snapshot without re-ranking.
func ComposeLatest(ctx context.Context, opts RunOptions) (*Result, error) {
	if opts.Store == nil {
		return nil, errors.New("pipeline requires a store")
	}
	opts.setDefaults()

	product := ""
	if opts.ProductPath != "" {
		text, _, err := ingestion.IngestProductDescription(opts.ProductPath)
		if err != nil {
			return nil, fmt.Errorf("%s failed: %w", steps.IngestProduct, err)
		}
		product = text
	}

	snapshot, err := opts.Store.LatestSnapshot(ctx)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("no ranked snapshot found, run rank-leads first: %w", err)
		}
		return nil, err
	}

	messages, err := composeAndSave(ctx, &opts, snapshot.Profiles, product)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", steps.ComposeMessages, err)
	}
	if opts.Verbose {
		observability.NewPrinter(opts.Out).PrintMessages(messages)
	}

	return &Result{
		RunID:     uuid.New(),
		Snapshot:  snapshot,
		Messages:  messages,
		Completed: []string{steps.ComposeMessages},
	}, nil
}
