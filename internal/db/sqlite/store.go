// Package sqlite provides the local SQLite implementation of db.Store.
//
// It uses modernc.org/sqlite, a pure Go SQLite implementation that requires no CGO.
// The schema is managed through versioned migrations embedded from the migrations/
// directory. Writes go through a single connection, so concurrent appends are serialized
// by the database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/avisanghavi/clout/internal/db"
	"github.com/avisanghavi/clout/internal/db/sqlite/migrations"
	"github.com/avisanghavi/clout/internal/types"
)

// FileName is the database file created inside the data directory.
const FileName = "clout.db"

// Store is the SQLite-backed db.Store.
type Store struct {
	db   *sql.DB
	path string
}

var _ db.Store = (*Store)(nil)

// NewStore opens (or creates) the store in dataDir.
// If dataDir is empty, defaults to ~/.clout/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".clout", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, FileName)

	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	s := &Store{db: conn, path: dbPath}

	if err := s.migrate(migrations.FS); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations. Each migration and its version record commit together.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// e.g. "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		err = s.withTx(context.Background(), func(tx *sql.Tx) error {
			if _, err := tx.Exec(string(content)); err != nil {
				return fmt.Errorf("executing migration %s: %w", name, err)
			}
			if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
				return fmt.Errorf("recording migration %s: %w", name, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// withTx runs fn in a transaction, committing only if fn succeeds.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// ==================== Trusted Contacts ====================

// SaveTrustedContacts replaces the trusted network.
func (s *Store) SaveTrustedContacts(ctx context.Context, contacts []types.TrustedContact) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM trusted_contacts`); err != nil {
			return err
		}
		for i, c := range contacts {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO trusted_contacts (position, name, trust_score, notes) VALUES (?, ?, ?, ?)`,
				i, c.Name, c.TrustScore, c.Notes,
			); err != nil {
				return fmt.Errorf("inserting contact %q: %w", c.Name, err)
			}
		}
		return nil
	})
	return db.Wrap("save trusted contacts", err)
}

// ListTrustedContacts returns the trusted network in import order.
func (s *Store) ListTrustedContacts(ctx context.Context) ([]types.TrustedContact, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, trust_score, notes FROM trusted_contacts ORDER BY position`)
	if err != nil {
		return nil, db.Wrap("list trusted contacts", err)
	}
	defer rows.Close()

	contacts := []types.TrustedContact{}
	for rows.Next() {
		var c types.TrustedContact
		if err := rows.Scan(&c.Name, &c.TrustScore, &c.Notes); err != nil {
			return nil, db.Wrap("list trusted contacts", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, db.Wrap("list trusted contacts", rows.Err())
}

// ==================== Snapshots ====================

// SaveSnapshot stores a ranked lead list as the latest snapshot.
func (s *Store) SaveSnapshot(ctx context.Context, snapshot *types.Snapshot) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO snapshots (id, created_at) VALUES (?, ?)`,
			snapshot.ID.String(), formatTime(snapshot.CreatedAt),
		); err != nil {
			return err
		}
		for i, p := range snapshot.Profiles {
			content, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("marshalling profile: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO snapshot_profiles (snapshot_id, position, profile_id, content) VALUES (?, ?, ?, ?)`,
				snapshot.ID.String(), i, p.ID.String(), string(content),
			); err != nil {
				return err
			}
		}
		return nil
	})
	return db.Wrap("save snapshot", err)
}

// LatestSnapshot returns the most recently saved snapshot.
func (s *Store) LatestSnapshot(ctx context.Context) (*types.Snapshot, error) {
	var id, createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at FROM snapshots ORDER BY seq DESC LIMIT 1`,
	).Scan(&id, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot: %w", db.ErrNotFound)
	}
	if err != nil {
		return nil, db.Wrap("load snapshot", err)
	}

	snapshot := &types.Snapshot{}
	if snapshot.ID, err = uuid.Parse(id); err != nil {
		return nil, db.Wrap("load snapshot", err)
	}
	if snapshot.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, db.Wrap("load snapshot", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT content FROM snapshot_profiles WHERE snapshot_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, db.Wrap("load snapshot", err)
	}
	defer rows.Close()

	snapshot.Profiles = []types.CandidateProfile{}
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, db.Wrap("load snapshot", err)
		}
		var p types.CandidateProfile
		if err := json.Unmarshal([]byte(content), &p); err != nil {
			return nil, db.Wrap("load snapshot", err)
		}
		snapshot.Profiles = append(snapshot.Profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Wrap("load snapshot", err)
	}
	return snapshot, nil
}

// GetProfile looks up a profile in the latest snapshot.
func (s *Store) GetProfile(ctx context.Context, id uuid.UUID) (*types.CandidateProfile, error) {
	var content string
	err := s.db.QueryRowContext(ctx,
		`SELECT content FROM snapshot_profiles
		 WHERE snapshot_id = (SELECT id FROM snapshots ORDER BY seq DESC LIMIT 1)
		   AND profile_id = ?
		 ORDER BY position LIMIT 1`,
		id.String(),
	).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", id, db.ErrNotFound)
	}
	if err != nil {
		return nil, db.Wrap("get profile", err)
	}

	var p types.CandidateProfile
	if err := json.Unmarshal([]byte(content), &p); err != nil {
		return nil, db.Wrap("get profile", err)
	}
	return &p, nil
}

// ==================== Drafts ====================

// SaveDrafts upserts drafted messages keyed by profile.
func (s *Store) SaveDrafts(ctx context.Context, messages []types.OutreachMessage) error {
	now := formatTime(time.Now())
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, m := range messages {
			content, err := json.Marshal(m)
			if err != nil {
				return fmt.Errorf("marshalling draft: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO drafts (profile_id, content, updated_at) VALUES (?, ?, ?)
				 ON CONFLICT (profile_id) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
				m.ProfileID.String(), string(content), now,
			); err != nil {
				return err
			}
		}
		return nil
	})
	return db.Wrap("save drafts", err)
}

// GetDraft returns the drafted message for a profile.
func (s *Store) GetDraft(ctx context.Context, profileID uuid.UUID) (*types.OutreachMessage, error) {
	var content string
	err := s.db.QueryRowContext(ctx, `SELECT content FROM drafts WHERE profile_id = ?`, profileID.String()).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("draft for %s: %w", profileID, db.ErrNotFound)
	}
	if err != nil {
		return nil, db.Wrap("get draft", err)
	}

	var m types.OutreachMessage
	if err := json.Unmarshal([]byte(content), &m); err != nil {
		return nil, db.Wrap("get draft", err)
	}
	return &m, nil
}

// ==================== Approvals ====================

// AppendApproval adds one record to the approval log.
func (s *Store) AppendApproval(ctx context.Context, record *types.ApprovalRecord) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO approval_records (id, profile_id, message, status, recorded_at) VALUES (?, ?, ?, ?, ?)`,
			record.ID.String(), record.ProfileRef.String(), record.MessageText, string(record.Status), formatTime(record.Timestamp),
		)
		return err
	})
	return db.Wrap("append approval", err)
}

// ListApprovals returns the approval log in append order.
func (s *Store) ListApprovals(ctx context.Context) ([]types.ApprovalRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, profile_id, message, status, recorded_at FROM approval_records ORDER BY seq`)
	if err != nil {
		return nil, db.Wrap("list approvals", err)
	}
	defer rows.Close()

	records := []types.ApprovalRecord{}
	for rows.Next() {
		var id, profileID, status, recordedAt string
		var r types.ApprovalRecord
		if err := rows.Scan(&id, &profileID, &r.MessageText, &status, &recordedAt); err != nil {
			return nil, db.Wrap("list approvals", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, db.Wrap("list approvals", err)
		}
		if r.ProfileRef, err = uuid.Parse(profileID); err != nil {
			return nil, db.Wrap("list approvals", err)
		}
		if r.Timestamp, err = parseTime(recordedAt); err != nil {
			return nil, db.Wrap("list approvals", err)
		}
		r.Status = types.ApprovalStatus(status)
		records = append(records, r)
	}
	return records, db.Wrap("list approvals", rows.Err())
}

// ==================== ICP ====================

// SaveICP stores a bundle as the current ICP.
func (s *Store) SaveICP(ctx context.Context, bundle types.ICPPersonaBundle) error {
	content, err := json.Marshal(bundle)
	if err != nil {
		return db.Wrap("save icp", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO icp_bundles (content, created_at) VALUES (?, ?)`,
		string(content), formatTime(time.Now()),
	)
	return db.Wrap("save icp", err)
}

// LoadICP returns the current ICP, or the default bundle when none was saved.
func (s *Store) LoadICP(ctx context.Context) (types.ICPPersonaBundle, error) {
	var content string
	err := s.db.QueryRowContext(ctx, `SELECT content FROM icp_bundles ORDER BY seq DESC LIMIT 1`).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return types.DefaultICPPersonaBundle(), nil
	}
	if err != nil {
		return types.ICPPersonaBundle{}, db.Wrap("load icp", err)
	}

	var bundle types.ICPPersonaBundle
	if err := json.Unmarshal([]byte(content), &bundle); err != nil {
		return types.ICPPersonaBundle{}, db.Wrap("load icp", err)
	}
	return bundle, nil
}
