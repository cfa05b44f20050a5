// Package network annotates candidates with their connection level and the trusted-network
// evidence that links them to the user.
package network

import (
	"context"
	"fmt"
	"strings"

	"github.com/avisanghavi/clout/internal/types"
)

// SharedConnectionFinder discovers trusted contacts shared between the user and a candidate.
// The Matcher only consults it for 2nd degree candidates and a non-empty trusted set.
type SharedConnectionFinder interface {
	FindShared(ctx context.Context, candidate types.CandidateProfile, trusted []types.TrustedContact) ([]types.MutualConnectionEvidence, error)
}

// Matcher annotates candidate profiles against a trusted network.
type Matcher struct {
	finder SharedConnectionFinder
}

// NewMatcher creates a Matcher backed by finder.
func NewMatcher(finder SharedConnectionFinder) *Matcher {
	return &Matcher{finder: finder}
}

// NormalizeConnectionLevel maps a free-text connection label to a ConnectionLevel.
func NormalizeConnectionLevel(label string) types.ConnectionLevel {
	switch {
	case strings.Contains(label, "1st"):
		return types.ConnectionFirst
	case strings.Contains(label, "2nd"):
		return types.ConnectionSecond
	default:
		return types.ConnectionThirdPlus
	}
}

// Match returns annotated copies of profiles in the same order. The input slice is not modified.
func (m *Matcher) Match(ctx context.Context, profiles []types.CandidateProfile, trusted []types.TrustedContact) ([]types.CandidateProfile, error) {
	annotated := make([]types.CandidateProfile, len(profiles))

	for i, original := range profiles {
		profile := original.Clone()
		profile.ConnectionLevel = NormalizeConnectionLevel(profile.RawConnectionLabel)
		profile.ConnectionLevelRank = profile.ConnectionLevel.Rank()
		profile.MutualConnections = []types.MutualConnectionEvidence{}
		profile.TNLConnection = false

		if profile.ConnectionLevel == types.ConnectionSecond && len(trusted) > 0 {
			evidence, err := m.finder.FindShared(ctx, profile, trusted)
			if err != nil {
				return nil, fmt.Errorf("failed to find shared connections for %q: %w", profile.Name, err)
			}
			if len(evidence) > 0 {
				profile.MutualConnections = evidence
				profile.TNLConnection = true
			}
		}

		annotated[i] = profile
	}

	return annotated, nil
}
