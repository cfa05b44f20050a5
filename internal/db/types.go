package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/avisanghavi/clout/internal/types"
)

// Store persists the trusted network, ranked snapshots, drafted messages, ICP bundles and the
// approval log. Approval records are append-only: no implementation exposes update or delete.
type Store interface {
	// SaveTrustedContacts replaces the trusted network in one transaction. Order and duplicates are kept.
	SaveTrustedContacts(ctx context.Context, contacts []types.TrustedContact) error
	ListTrustedContacts(ctx context.Context) ([]types.TrustedContact, error)

	// SaveSnapshot stores a ranked lead list; it becomes the latest snapshot.
	SaveSnapshot(ctx context.Context, snapshot *types.Snapshot) error
	// LatestSnapshot returns ErrNotFound when no snapshot was saved.
	LatestSnapshot(ctx context.Context) (*types.Snapshot, error)
	// GetProfile looks up a profile in the latest snapshot, or returns ErrNotFound.
	GetProfile(ctx context.Context, id uuid.UUID) (*types.CandidateProfile, error)

	// SaveDrafts upserts the latest drafted message per profile.
	SaveDrafts(ctx context.Context, messages []types.OutreachMessage) error
	// GetDraft returns ErrNotFound when no message was drafted for the profile.
	GetDraft(ctx context.Context, profileID uuid.UUID) (*types.OutreachMessage, error)

	AppendApproval(ctx context.Context, record *types.ApprovalRecord) error
	// ListApprovals returns every record in append order.
	ListApprovals(ctx context.Context) ([]types.ApprovalRecord, error)

	SaveICP(ctx context.Context, bundle types.ICPPersonaBundle) error
	// LoadICP returns the most recently saved bundle, or the default bundle when none was saved.
	LoadICP(ctx context.Context) (types.ICPPersonaBundle, error)

	Close() error
}
