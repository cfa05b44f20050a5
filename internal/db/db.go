// Package db defines the storage interface for the lead pipeline and provides its
// PostgreSQL implementation.
package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avisanghavi/clout/internal/types"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

var _ Store = (*DB)(nil)

// Connect establishes a connection pool to the database and applies the schema
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

// Pool exposes the underlying pool for maintenance queries
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// withTx runs fn in a transaction, committing only if fn succeeds
func (db *DB) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SaveTrustedContacts replaces the trusted network
func (db *DB) SaveTrustedContacts(ctx context.Context, contacts []types.TrustedContact) error {
	err := db.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM trusted_contacts`); err != nil {
			return err
		}
		for i, c := range contacts {
			if _, err := tx.Exec(ctx,
				`INSERT INTO trusted_contacts (position, name, trust_score, notes) VALUES ($1, $2, $3, $4)`,
				i, c.Name, c.TrustScore, c.Notes,
			); err != nil {
				return fmt.Errorf("failed to insert contact %q: %w", c.Name, err)
			}
		}
		return nil
	})
	return Wrap("save trusted contacts", err)
}

// ListTrustedContacts returns the trusted network in import order
func (db *DB) ListTrustedContacts(ctx context.Context) ([]types.TrustedContact, error) {
	rows, err := db.pool.Query(ctx, `SELECT name, trust_score, notes FROM trusted_contacts ORDER BY position`)
	if err != nil {
		return nil, Wrap("list trusted contacts", err)
	}
	defer rows.Close()

	contacts := []types.TrustedContact{}
	for rows.Next() {
		var c types.TrustedContact
		if err := rows.Scan(&c.Name, &c.TrustScore, &c.Notes); err != nil {
			return nil, Wrap("list trusted contacts", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, Wrap("list trusted contacts", rows.Err())
}

// SaveSnapshot stores a ranked lead list as the latest snapshot
func (db *DB) SaveSnapshot(ctx context.Context, snapshot *types.Snapshot) error {
	err := db.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO snapshots (id, created_at) VALUES ($1, $2)`,
			snapshot.ID, snapshot.CreatedAt,
		); err != nil {
			return err
		}
		for i, p := range snapshot.Profiles {
			content, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("failed to marshal profile: %w", err)
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO snapshot_profiles (snapshot_id, position, profile_id, content) VALUES ($1, $2, $3, $4)`,
				snapshot.ID, i, p.ID, content,
			); err != nil {
				return err
			}
		}
		return nil
	})
	return Wrap("save snapshot", err)
}

// LatestSnapshot returns the most recently saved snapshot
func (db *DB) LatestSnapshot(ctx context.Context) (*types.Snapshot, error) {
	var snapshot types.Snapshot
	err := db.pool.QueryRow(ctx,
		`SELECT id, created_at FROM snapshots ORDER BY seq DESC LIMIT 1`,
	).Scan(&snapshot.ID, &snapshot.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("snapshot: %w", ErrNotFound)
		}
		return nil, Wrap("load snapshot", err)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT content FROM snapshot_profiles WHERE snapshot_id = $1 ORDER BY position`,
		snapshot.ID,
	)
	if err != nil {
		return nil, Wrap("load snapshot", err)
	}
	defer rows.Close()

	snapshot.Profiles = []types.CandidateProfile{}
	for rows.Next() {
		var content []byte
		if err := rows.Scan(&content); err != nil {
			return nil, Wrap("load snapshot", err)
		}
		var p types.CandidateProfile
		if err := json.Unmarshal(content, &p); err != nil {
			return nil, Wrap("load snapshot", err)
		}
		snapshot.Profiles = append(snapshot.Profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, Wrap("load snapshot", err)
	}
	return &snapshot, nil
}

// GetProfile looks up a profile in the latest snapshot
func (db *DB) GetProfile(ctx context.Context, id uuid.UUID) (*types.CandidateProfile, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT sp.content FROM snapshot_profiles sp
		 WHERE sp.snapshot_id = (SELECT id FROM snapshots ORDER BY seq DESC LIMIT 1)
		   AND sp.profile_id = $1
		 ORDER BY sp.position LIMIT 1`,
		id,
	).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile %s: %w", id, ErrNotFound)
		}
		return nil, Wrap("get profile", err)
	}

	var p types.CandidateProfile
	if err := json.Unmarshal(content, &p); err != nil {
		return nil, Wrap("get profile", err)
	}
	return &p, nil
}

// SaveDrafts upserts drafted messages keyed by profile
func (db *DB) SaveDrafts(ctx context.Context, messages []types.OutreachMessage) error {
	err := db.withTx(ctx, func(tx pgx.Tx) error {
		for _, m := range messages {
			content, err := json.Marshal(m)
			if err != nil {
				return fmt.Errorf("failed to marshal draft: %w", err)
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO drafts (profile_id, content) VALUES ($1, $2)
				 ON CONFLICT (profile_id) DO UPDATE SET content = $2, updated_at = NOW()`,
				m.ProfileID, content,
			); err != nil {
				return err
			}
		}
		return nil
	})
	return Wrap("save drafts", err)
}

// GetDraft returns the drafted message for a profile
func (db *DB) GetDraft(ctx context.Context, profileID uuid.UUID) (*types.OutreachMessage, error) {
	var content []byte
	err := db.pool.QueryRow(ctx, `SELECT content FROM drafts WHERE profile_id = $1`, profileID).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("draft for %s: %w", profileID, ErrNotFound)
		}
		return nil, Wrap("get draft", err)
	}

	var m types.OutreachMessage
	if err := json.Unmarshal(content, &m); err != nil {
		return nil, Wrap("get draft", err)
	}
	return &m, nil
}

// AppendApproval adds one record to the approval log
func (db *DB) AppendApproval(ctx context.Context, record *types.ApprovalRecord) error {
	err := db.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO approval_records (id, profile_id, message, status, recorded_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			record.ID, record.ProfileRef, record.MessageText, string(record.Status), record.Timestamp,
		)
		return err
	})
	return Wrap("append approval", err)
}

// ListApprovals returns the approval log in append order
func (db *DB) ListApprovals(ctx context.Context) ([]types.ApprovalRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, profile_id, message, status, recorded_at FROM approval_records ORDER BY seq`,
	)
	if err != nil {
		return nil, Wrap("list approvals", err)
	}
	defer rows.Close()

	records := []types.ApprovalRecord{}
	for rows.Next() {
		var r types.ApprovalRecord
		var status string
		if err := rows.Scan(&r.ID, &r.ProfileRef, &r.MessageText, &status, &r.Timestamp); err != nil {
			return nil, Wrap("list approvals", err)
		}
		r.Status = types.ApprovalStatus(status)
		records = append(records, r)
	}
	return records, Wrap("list approvals", rows.Err())
}

// SaveICP stores a bundle as the current ICP
func (db *DB) SaveICP(ctx context.Context, bundle types.ICPPersonaBundle) error {
	content, err := json.Marshal(bundle)
	if err != nil {
		return Wrap("save icp", err)
	}
	_, err = db.pool.Exec(ctx, `INSERT INTO icp_bundles (content) VALUES ($1)`, content)
	return Wrap("save icp", err)
}

// LoadICP returns the current ICP, or the default bundle when none was saved
func (db *DB) LoadICP(ctx context.Context) (types.ICPPersonaBundle, error) {
	var content []byte
	err := db.pool.QueryRow(ctx, `SELECT content FROM icp_bundles ORDER BY seq DESC LIMIT 1`).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.DefaultICPPersonaBundle(), nil
		}
		return types.ICPPersonaBundle{}, Wrap("load icp", err)
	}

	var bundle types.ICPPersonaBundle
	if err := json.Unmarshal(content, &bundle); err != nil {
		return types.ICPPersonaBundle{}, Wrap("load icp", err)
	}
	return bundle, nil
}
