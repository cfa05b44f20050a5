// Package types provides type definitions for structured data used throughout the clout pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// ConnectionLevel is the normalized degree of connection between the user and a candidate.
type ConnectionLevel string

const (
	// ConnectionFirst is a direct (1st degree) connection
	ConnectionFirst ConnectionLevel = "1st"
	// ConnectionSecond is a 2nd degree connection
	ConnectionSecond ConnectionLevel = "2nd"
	// ConnectionThirdPlus is anything further away, or an unrecognized label
	ConnectionThirdPlus ConnectionLevel = "3rd+"
)

// Rank returns the sort rank of the level: 1 for 1st, 2 for 2nd, 3 otherwise.
func (l ConnectionLevel) Rank() int {
	switch l {
	case ConnectionFirst:
		return 1
	case ConnectionSecond:
		return 2
	default:
		return 3
	}
}

// MutualConnectionEvidence asserts a shared contact between the user's trusted network and a candidate.
type MutualConnectionEvidence struct {
	Name     string `json:"name"`
	InTNL    bool   `json:"in_tnl"`
	TNLScore int    `json:"tnl_score"`
}

// CandidateRecord is a prospective contact as supplied by the scraping collaborator.
// ConnectionLevel holds the free-text label (e.g. "2nd degree connection").
type CandidateRecord struct {
	ID              string `json:"id,omitempty" validate:"omitempty,uuid"`
	Name            string `json:"name" validate:"required"`
	Headline        string `json:"headline"`
	Location        string `json:"location"`
	ConnectionLevel string `json:"connection_level"`
}

// CandidateProfile is an ingested candidate plus the annotations added by the trust network matcher.
type CandidateProfile struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Headline           string    `json:"headline"`
	Location           string    `json:"location"`
	RawConnectionLabel string    `json:"raw_connection_label"`

	ConnectionLevel     ConnectionLevel            `json:"connection_level"`
	ConnectionLevelRank int                        `json:"connection_level_rank"`
	MutualConnections   []MutualConnectionEvidence `json:"mutual_connections"`
	TNLConnection       bool                       `json:"tnl_connection"`
}

// Clone returns a deep copy of the profile so annotation never aliases the caller's evidence slice.
func (p CandidateProfile) Clone() CandidateProfile {
	out := p
	if p.MutualConnections != nil {
		out.MutualConnections = make([]MutualConnectionEvidence, len(p.MutualConnections))
		copy(out.MutualConnections, p.MutualConnections)
	}
	return out
}

// Snapshot is a persisted ranked lead list.
type Snapshot struct {
	ID        uuid.UUID          `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	Profiles  []CandidateProfile `json:"profiles"`
}

// FindProfile returns the profile with the given ID, or false.
func (s *Snapshot) FindProfile(id uuid.UUID) (CandidateProfile, bool) {
	if s == nil {
		return CandidateProfile{}, false
	}
	for _, p := range s.Profiles {
		if p.ID == id {
			return p, true
		}
	}
	return CandidateProfile{}, false
}
