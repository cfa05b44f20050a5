package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avisanghavi/clout/internal/db"
	"github.com/avisanghavi/clout/internal/db/dbtest"
	"github.com/avisanghavi/clout/internal/types"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	return store
}

func TestStore_Behaviour(t *testing.T) {
	dbtest.RunStoreTests(t, func(t *testing.T) db.Store {
		return setupTestStore(t)
	})
}

func TestNewStore_CreatesFileInDataDir(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, FileName), store.Path())
	assert.FileExists(t, store.Path())
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	record := &types.ApprovalRecord{
		ID: uuid.New(), ProfileRef: uuid.New(), MessageText: "Hi",
		Status: types.ApprovalApproved, Timestamp: time.Now().UTC(),
	}
	require.NoError(t, store.AppendApproval(ctx, record))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.ListApprovals(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, record.ID, records[0].ID)
}

func TestApprovalRecords_RejectUpdateAndDelete(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()
	ctx := context.Background()

	record := &types.ApprovalRecord{
		ID: uuid.New(), ProfileRef: uuid.New(), MessageText: "original",
		Status: types.ApprovalApproved, Timestamp: time.Now().UTC(),
	}
	require.NoError(t, store.AppendApproval(ctx, record))

	_, err := store.db.ExecContext(ctx, `UPDATE approval_records SET message = 'changed'`)
	assert.Error(t, err)
	_, err = store.db.ExecContext(ctx, `DELETE FROM approval_records`)
	assert.Error(t, err)

	records, err := store.ListApprovals(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "original", records[0].MessageText)
}

func TestSaveTrustedContacts_RollsBackOnInvalidScore(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()
	ctx := context.Background()

	original := []types.TrustedContact{{Name: "Bob", TrustScore: 8}}
	require.NoError(t, store.SaveTrustedContacts(ctx, original))

	err := store.SaveTrustedContacts(ctx, []types.TrustedContact{
		{Name: "Ok", TrustScore: 5},
		{Name: "Broken", TrustScore: 42},
	})
	var storageErr *db.StorageError
	require.ErrorAs(t, err, &storageErr)

	got, err := store.ListTrustedContacts(ctx)
	require.NoError(t, err)
	assert.Equal(t, original, got, "failed import leaves the previous network intact")
}

func TestMigrate_FailedMigrationLeavesNoTrace(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	broken := fstest.MapFS{
		"002_notes.up.sql": {Data: []byte(`
			CREATE TABLE lead_notes (id INTEGER PRIMARY KEY);
			CREATE TABLE lead_notes (id INTEGER PRIMARY KEY);
		`)},
	}
	err := store.migrate(broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "002_notes.up.sql")

	var tables int
	require.NoError(t, store.db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'lead_notes'`).Scan(&tables))
	assert.Zero(t, tables)

	var version int
	require.NoError(t, store.db.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&version))
	assert.Equal(t, 1, version)

	fixed := fstest.MapFS{
		"002_notes.up.sql": {Data: []byte(`CREATE TABLE lead_notes (id INTEGER PRIMARY KEY);`)},
	}
	require.NoError(t, store.migrate(fixed))
	require.NoError(t, store.db.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&version))
	assert.Equal(t, 2, version)
}
