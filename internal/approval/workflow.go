// Package approval records user decisions on drafted messages in an append-only log.
package approval

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avisanghavi/clout/internal/db"
	"github.com/avisanghavi/clout/internal/types"
)

// UnknownProfileName is shown in history for records whose profile is no longer in the latest snapshot.
const UnknownProfileName = "Unknown"

// ParseAction maps a user action to the resulting status.
func ParseAction(action string) (types.ApprovalStatus, error) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "approve":
		return types.ApprovalApproved, nil
	case "edit":
		return types.ApprovalEdited, nil
	case "reject":
		return types.ApprovalRejected, nil
	default:
		return "", &ValidationError{Field: "action", Message: fmt.Sprintf("%q is not one of approve, edit, reject", action)}
	}
}

// ReviewRequest is one user decision on a drafted message.
type ReviewRequest struct {
	ProfileID   uuid.UUID
	MessageText string
	Action      string
}

// HistoryEntry is an approval record joined with the profile it refers to.
type HistoryEntry struct {
	Record  types.ApprovalRecord   `json:"record"`
	Profile types.CandidateProfile `json:"profile"`
	// Stale is set when the profile is not part of the latest snapshot.
	Stale bool `json:"stale"`
}

// Workflow appends review decisions to the store's approval log.
type Workflow struct {
	store  db.Store
	now    func() time.Time
	logger *zap.Logger

	mu sync.Mutex
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithClock overrides the record timestamp source.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Workflow) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWorkflow creates a Workflow backed by store.
func NewWorkflow(store db.Store, opts ...Option) *Workflow {
	w := &Workflow{
		store:  store,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Review validates req and appends exactly one record. Unknown profiles return an error
// wrapping db.ErrNotFound and nothing is written.
func (w *Workflow) Review(ctx context.Context, req ReviewRequest) (*types.ApprovalRecord, error) {
	status, err := ParseAction(req.Action)
	if err != nil {
		return nil, err
	}
	if status != types.ApprovalRejected && strings.TrimSpace(req.MessageText) == "" {
		return nil, &ValidationError{Field: "message", Message: fmt.Sprintf("text is required to %s", req.Action)}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.store.GetProfile(ctx, req.ProfileID); err != nil {
		return nil, fmt.Errorf("review %s: %w", req.ProfileID, err)
	}

	record := &types.ApprovalRecord{
		ID:          uuid.New(),
		ProfileRef:  req.ProfileID,
		MessageText: req.MessageText,
		Status:      status,
		Timestamp:   w.now().UTC(),
	}
	if err := w.store.AppendApproval(ctx, record); err != nil {
		return nil, err
	}

	w.logger.Info("recorded review",
		zap.String("profile_id", req.ProfileID.String()),
		zap.String("status", string(status)))
	return record, nil
}

// History returns all records in append order joined with profiles from the latest snapshot.
func (w *Workflow) History(ctx context.Context) ([]HistoryEntry, error) {
	records, err := w.store.ListApprovals(ctx)
	if err != nil {
		return nil, err
	}

	snapshot, err := w.store.LatestSnapshot(ctx)
	if err != nil && !isNotFound(err) {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(records))
	for _, r := range records {
		entry := HistoryEntry{Record: r}
		if profile, ok := snapshot.FindProfile(r.ProfileRef); ok {
			entry.Profile = profile
		} else {
			entry.Profile = types.CandidateProfile{ID: r.ProfileRef, Name: UnknownProfileName}
			entry.Stale = true
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
