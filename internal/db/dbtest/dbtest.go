// Package dbtest holds the behaviour tests every db.Store implementation must pass.
package dbtest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avisanghavi/clout/internal/db"
	"github.com/avisanghavi/clout/internal/types"
)

// OpenFunc returns a fresh, empty store. The store is closed by the caller.
type OpenFunc func(t *testing.T) db.Store

// RunStoreTests runs the shared store behaviour tests against open.
func RunStoreTests(t *testing.T, open OpenFunc) {
	t.Run("TrustedContacts", func(t *testing.T) { testTrustedContacts(t, open(t)) })
	t.Run("SnapshotRoundTrip", func(t *testing.T) { testSnapshotRoundTrip(t, open(t)) })
	t.Run("LatestSnapshotWins", func(t *testing.T) { testLatestSnapshotWins(t, open(t)) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, open(t)) })
	t.Run("Drafts", func(t *testing.T) { testDrafts(t, open(t)) })
	t.Run("ApprovalsAppendOnly", func(t *testing.T) { testApprovalsAppendOnly(t, open(t)) })
	t.Run("ConcurrentAppends", func(t *testing.T) { testConcurrentAppends(t, open(t)) })
	t.Run("ICP", func(t *testing.T) { testICP(t, open(t)) })
}

// Profile builds an annotated profile for store tests.
func Profile(name string, level types.ConnectionLevel, mutuals ...types.MutualConnectionEvidence) types.CandidateProfile {
	return types.CandidateProfile{
		ID:                  uuid.New(),
		Name:                name,
		Headline:            "Engineer at Initech",
		Location:            "Austin, TX",
		RawConnectionLabel:  string(level) + " degree connection",
		ConnectionLevel:     level,
		ConnectionLevelRank: level.Rank(),
		MutualConnections:   append([]types.MutualConnectionEvidence{}, mutuals...),
		TNLConnection:       len(mutuals) > 0,
	}
}

func testTrustedContacts(t *testing.T, store db.Store) {
	defer store.Close()
	ctx := context.Background()

	empty, err := store.ListTrustedContacts(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	contacts := []types.TrustedContact{
		{Name: "Bob", TrustScore: 8, Notes: "college roommate"},
		{Name: "Bob", TrustScore: 8, Notes: "college roommate"},
		{Name: "Ana", TrustScore: 5},
	}
	require.NoError(t, store.SaveTrustedContacts(ctx, contacts))

	got, err := store.ListTrustedContacts(ctx)
	require.NoError(t, err)
	assert.Equal(t, contacts, got, "duplicates and order are kept")

	replacement := []types.TrustedContact{{Name: "Cy", TrustScore: 1}}
	require.NoError(t, store.SaveTrustedContacts(ctx, replacement))
	got, err = store.ListTrustedContacts(ctx)
	require.NoError(t, err)
	assert.Equal(t, replacement, got)
}

func testSnapshotRoundTrip(t *testing.T, store db.Store) {
	defer store.Close()
	ctx := context.Background()

	snapshot := &types.Snapshot{
		ID:        uuid.New(),
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Profiles: []types.CandidateProfile{
			Profile("Alice Smith", types.ConnectionSecond, types.MutualConnectionEvidence{Name: "Bob", InTNL: true, TNLScore: 8}),
			Profile("Carl", types.ConnectionFirst),
			Profile("Dee", types.ConnectionThirdPlus),
		},
	}
	require.NoError(t, store.SaveSnapshot(ctx, snapshot))

	got, err := store.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, snapshot.ID, got.ID)
	assert.True(t, snapshot.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, snapshot.Profiles, got.Profiles)

	alice, err := store.GetProfile(ctx, snapshot.Profiles[0].ID)
	require.NoError(t, err)
	assert.Equal(t, snapshot.Profiles[0], *alice)
}

func testLatestSnapshotWins(t *testing.T, store db.Store) {
	defer store.Close()
	ctx := context.Background()

	old := &types.Snapshot{ID: uuid.New(), CreatedAt: time.Now().UTC(), Profiles: []types.CandidateProfile{Profile("Old", types.ConnectionFirst)}}
	newer := &types.Snapshot{ID: uuid.New(), CreatedAt: old.CreatedAt, Profiles: []types.CandidateProfile{Profile("New", types.ConnectionFirst)}}
	require.NoError(t, store.SaveSnapshot(ctx, old))
	require.NoError(t, store.SaveSnapshot(ctx, newer))

	latest, err := store.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, latest.ID)

	_, err = store.GetProfile(ctx, old.Profiles[0].ID)
	assert.ErrorIs(t, err, db.ErrNotFound, "profiles from older snapshots are stale references")
}

func testNotFound(t *testing.T, store db.Store) {
	defer store.Close()
	ctx := context.Background()

	_, err := store.LatestSnapshot(ctx)
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, err = store.GetProfile(ctx, uuid.New())
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, err = store.GetDraft(ctx, uuid.New())
	assert.ErrorIs(t, err, db.ErrNotFound)

	var storageErr *db.StorageError
	assert.False(t, errors.As(err, &storageErr), "not found is not a storage failure")
}

func testDrafts(t *testing.T, store db.Store) {
	defer store.Close()
	ctx := context.Background()

	id := uuid.New()
	first := types.OutreachMessage{ProfileID: id, Text: "v1", MessageType: types.MessageColdOutreach, Recipient: "Zara", GeneratedBy: types.GeneratedByFallback}
	require.NoError(t, store.SaveDrafts(ctx, []types.OutreachMessage{first}))

	second := first
	second.Text = "v2"
	second.GeneratedBy = types.GeneratedByAI
	require.NoError(t, store.SaveDrafts(ctx, []types.OutreachMessage{second}))

	got, err := store.GetDraft(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, second, *got)
}

func testApprovalsAppendOnly(t *testing.T, store db.Store) {
	defer store.Close()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	profileID := uuid.New()
	records := []types.ApprovalRecord{
		{ID: uuid.New(), ProfileRef: profileID, MessageText: "Hi Zara", Status: types.ApprovalApproved, Timestamp: base},
		{ID: uuid.New(), ProfileRef: profileID, MessageText: "Hi Zara!", Status: types.ApprovalEdited, Timestamp: base.Add(time.Minute)},
		{ID: uuid.New(), ProfileRef: uuid.New(), MessageText: "", Status: types.ApprovalRejected, Timestamp: base.Add(2 * time.Minute)},
	}

	for i := range records {
		require.NoError(t, store.AppendApproval(ctx, &records[i]))

		got, err := store.ListApprovals(ctx)
		require.NoError(t, err)
		require.Len(t, got, i+1)
		for j := 0; j <= i; j++ {
			assertRecordEqual(t, records[j], got[j])
		}
	}

	duplicate := records[0]
	assert.Error(t, store.AppendApproval(ctx, &duplicate), "record IDs are unique")

	got, err := store.ListApprovals(ctx)
	require.NoError(t, err)
	assert.Len(t, got, len(records))
}

func testConcurrentAppends(t *testing.T, store db.Store) {
	defer store.Close()
	ctx := context.Background()

	const writers, perWriter = 4, 10
	var wg sync.WaitGroup
	errs := make(chan error, writers*perWriter)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				errs <- store.AppendApproval(ctx, &types.ApprovalRecord{
					ID: uuid.New(), ProfileRef: uuid.New(), MessageText: "m",
					Status: types.ApprovalApproved, Timestamp: time.Now().UTC(),
				})
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := store.ListApprovals(ctx)
	require.NoError(t, err)
	assert.Len(t, got, writers*perWriter, "no appends are lost")
}

func testICP(t *testing.T, store db.Store) {
	defer store.Close()
	ctx := context.Background()

	bundle, err := store.LoadICP(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultICPPersonaBundle(), bundle)

	custom := types.DefaultICPPersonaBundle()
	custom.ICP.Industry = "Healthcare"
	require.NoError(t, store.SaveICP(ctx, custom))

	bundle, err = store.LoadICP(ctx)
	require.NoError(t, err)
	assert.Equal(t, custom, bundle)
}

func assertRecordEqual(t *testing.T, want, got types.ApprovalRecord) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.ProfileRef, got.ProfileRef)
	assert.Equal(t, want.MessageText, got.MessageText)
	assert.Equal(t, want.Status, got.Status)
	assert.True(t, want.Timestamp.Equal(got.Timestamp), "timestamp %v != %v", want.Timestamp, got.Timestamp)
}
