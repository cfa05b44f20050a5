package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/avisanghavi/clout/internal/db"
	"github.com/avisanghavi/clout/internal/db/sqlite"
	"github.com/avisanghavi/clout/internal/llm"
	"github.com/avisanghavi/clout/internal/network"
	"github.com/avisanghavi/clout/internal/pipeline/steps"
	"github.com/avisanghavi/clout/internal/types"
)

const candidatesJSON = `[
	{"name": "Zara Khan", "headline": "Founder at Nimbus", "connection_level": "3rd+"},
	{"name": "Carol Diaz", "headline": "CTO at Initech", "connection_level": "1st"},
	{"name": "Alice Wong", "headline": "VP Sales at Acme", "connection_level": "2nd degree connection"}
]`

const icpJSON = `{
	"icp": {"industry": "Fintech", "company_size": "10-200", "geography": "Europe", "other_criteria": []},
	"buyer_persona": {"title": "CFO", "role": "Decision maker", "pain_points": [], "search_terms": "CFO"},
	"user_persona": {"title": "Analyst", "role": "End user", "pain_points": [], "search_terms": "Analyst"}
}`

var fixedNow = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

type fixture struct {
	dir   string
	store db.Store
	out   *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := sqlite.NewStore(filepath.Join(dir, "data"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	write("candidates.json", candidatesJSON)
	write("network.csv", "name,trust_score,notes\nBob Smith,8,former manager\n")
	write("product.md", "# Ledger\nReconciles payments   automatically.\n")

	return &fixture{dir: dir, store: store, out: &bytes.Buffer{}}
}

func (f *fixture) path(name string) string { return filepath.Join(f.dir, name) }

func (f *fixture) options() RunOptions {
	return RunOptions{
		CandidatesPath: f.path("candidates.json"),
		ContactsPath:   f.path("network.csv"),
		Workers:        2,
		Store:          f.store,
		Finder:         network.NewSeededFinder(1),
		Now:            fixedNow,
		Out:            f.out,
	}
}

func TestRunPipeline_FullRun(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var events []ProgressEvent
	opts := f.options()
	opts.OnProgress = func(e ProgressEvent) { events = append(events, e) }

	result, err := RunPipeline(ctx, opts)
	require.NoError(t, err)

	require.NotNil(t, result.Snapshot)
	names := []string{}
	for _, p := range result.Snapshot.Profiles {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Alice Wong", "Carol Diaz", "Zara Khan"}, names)
	assert.Equal(t, fixedNow(), result.Snapshot.CreatedAt)

	alice := result.Snapshot.Profiles[0]
	assert.True(t, alice.TNLConnection)
	assert.Equal(t, []types.MutualConnectionEvidence{{Name: "Bob Smith", InTNL: true, TNLScore: 8}}, alice.MutualConnections)

	require.Len(t, result.Messages, 3)
	assert.Equal(t, types.MessageIntroRequest, result.Messages[0].MessageType)
	assert.Equal(t, "Bob Smith", result.Messages[0].Recipient)
	assert.Equal(t, types.MessageDirectExisting, result.Messages[1].MessageType)
	assert.Equal(t, types.MessageColdOutreach, result.Messages[2].MessageType)
	for _, m := range result.Messages {
		assert.Equal(t, types.GeneratedByFallback, m.GeneratedBy)
	}

	latest, err := f.store.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, result.Snapshot.ID, latest.ID)

	draft, err := f.store.GetDraft(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Messages[0].Text, draft.Text)

	contacts, err := f.store.ListTrustedContacts(ctx)
	require.NoError(t, err)
	assert.Len(t, contacts, 1)

	wantSteps := []string{steps.ImportNetwork, steps.IngestCandidates, steps.MatchNetwork, steps.RankLeads, steps.ComposeMessages}
	assert.Equal(t, wantSteps, result.Completed)
	require.Len(t, events, len(wantSteps))
	for i, e := range events {
		assert.Equal(t, wantSteps[i], e.Step)
		assert.Equal(t, result.RunID.String(), e.RunID)
		assert.NotEmpty(t, e.Category)
	}
	assert.Contains(t, f.out.String(), "Step 1/5: Loading trusted network...")
	assert.Contains(t, f.out.String(), "Step 5/5: Drafting outreach messages...")
}

func TestRunPipeline_RankOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	opts := f.options()
	opts.Target = steps.RankLeads
	opts.SnapshotOut = f.path("snapshot.json")

	result, err := RunPipeline(ctx, opts)
	require.NoError(t, err)

	assert.Nil(t, result.Messages)
	assert.NotContains(t, result.Completed, steps.ComposeMessages)
	_, err = f.store.GetDraft(ctx, result.Snapshot.Profiles[0].ID)
	assert.ErrorIs(t, err, db.ErrNotFound)

	data, err := os.ReadFile(opts.SnapshotOut)
	require.NoError(t, err)
	assert.Contains(t, string(data), result.Snapshot.ID.String())
}

func TestRunPipeline_UsesStoredNetwork(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.SaveTrustedContacts(ctx, []types.TrustedContact{{Name: "Stored Sam", TrustScore: 9}}))

	opts := f.options()
	opts.ContactsPath = ""
	opts.Target = steps.RankLeads

	result, err := RunPipeline(ctx, opts)
	require.NoError(t, err)

	assert.Equal(t, "Stored Sam", result.Snapshot.Profiles[0].MutualConnections[0].Name)
}

func TestRunPipeline_EmptyNetworkHasNoTNL(t *testing.T) {
	f := newFixture(t)

	opts := f.options()
	opts.ContactsPath = ""
	opts.Target = steps.RankLeads

	result, err := RunPipeline(context.Background(), opts)
	require.NoError(t, err)

	for _, p := range result.Snapshot.Profiles {
		assert.False(t, p.TNLConnection)
		assert.Empty(t, p.MutualConnections)
	}
	assert.Equal(t, "Carol Diaz", result.Snapshot.Profiles[0].Name)
}

func TestRunPipeline_ExtractsICPAndUsesProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var prompts []string
	opts := f.options()
	opts.Workers = 1
	opts.ProductPath = f.path("product.md")
	opts.ExtractICP = true
	opts.Client = llm.ClientFunc(func(_ context.Context, prompt string, _ llm.Params) (string, error) {
		prompts = append(prompts, prompt)
		if strings.Contains(prompt, "Ideal Customer Profile") {
			return icpJSON, nil
		}
		return "", errors.New("generation down")
	})

	result, err := RunPipeline(ctx, opts)
	require.NoError(t, err)

	require.NotNil(t, result.ICP)
	assert.Equal(t, "Fintech", result.ICP.ICP.Industry)
	stored, err := f.store.LoadICP(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Fintech", stored.ICP.Industry)

	assert.Equal(t, []string{steps.IngestProduct, steps.ExtractICP}, result.Completed[:2])
	require.Len(t, prompts, 4)
	for _, p := range prompts {
		assert.Contains(t, p, "Reconciles payments automatically.")
	}
}

func TestRunPipeline_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := RunPipeline(ctx, RunOptions{})
	assert.ErrorContains(t, err, "requires a store")

	opts := f.options()
	opts.ExtractICP = true
	_, err = RunPipeline(ctx, opts)
	assert.ErrorContains(t, err, "requires a product description")

	opts = f.options()
	opts.CandidatesPath = ""
	_, err = RunPipeline(ctx, opts)
	assert.ErrorContains(t, err, "candidate file is required")

	opts = f.options()
	opts.Target = "deploy"
	_, err = RunPipeline(ctx, opts)
	assert.ErrorContains(t, err, "unknown step")
}

func TestRunPipeline_InvalidCandidatesAbortBeforeSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(f.path("candidates.json"), []byte(`[{"headline": "no name"}]`), 0644))

	_, err := RunPipeline(ctx, f.options())
	require.Error(t, err)
	assert.Contains(t, err.Error(), steps.IngestCandidates)

	_, err = f.store.LatestSnapshot(ctx)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestComposeLatest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := ComposeLatest(ctx, f.options())
	assert.ErrorIs(t, err, db.ErrNotFound)

	opts := f.options()
	opts.Target = steps.RankLeads
	ranked, err := RunPipeline(ctx, opts)
	require.NoError(t, err)

	result, err := ComposeLatest(ctx, f.options())
	require.NoError(t, err)
	assert.Equal(t, ranked.Snapshot.ID, result.Snapshot.ID)
	require.Len(t, result.Messages, 3)

	for i, p := range ranked.Snapshot.Profiles {
		draft, err := f.store.GetDraft(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, result.Messages[i], *draft)
	}
}

func TestRunPipeline_ComponentLoggers(t *testing.T) {
	f := newFixture(t)
	core, logs := observer.New(zapcore.WarnLevel)

	opts := f.options()
	opts.Logger = zap.New(core)
	_, err := RunPipeline(context.Background(), opts)
	require.NoError(t, err)

	fallbacks := logs.FilterMessage("message generation failed, using fallback template").All()
	require.Len(t, fallbacks, 3)
	for _, entry := range fallbacks {
		assert.Equal(t, "outreach", entry.LoggerName)
	}
}
