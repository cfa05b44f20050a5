// Package outreach classifies leads and drafts personalized outreach messages, falling back
// to fixed templates whenever text generation is unavailable.
package outreach

import (
	"strings"

	"github.com/avisanghavi/clout/internal/types"
)

// degreePhrases are removed from headlines before the role and company are parsed.
var degreePhrases = []string{
	"1st degree connection",
	"2nd degree connection",
	"3rd+ degree connection",
}

// Identity is the addressable part of a candidate profile.
type Identity struct {
	FirstName string
	Role      string
	Company   string
}

// Classify picks the message type for an annotated profile.
func Classify(profile *types.CandidateProfile) types.MessageType {
	switch {
	case profile.ConnectionLevel == types.ConnectionFirst:
		return types.MessageDirectExisting
	case profile.ConnectionLevel != types.ConnectionThirdPlus &&
		profile.TNLConnection && len(profile.MutualConnections) > 0:
		return types.MessageIntroRequest
	default:
		return types.MessageColdOutreach
	}
}

// ParseIdentity derives the first name, role and company from a full name and headline.
func ParseIdentity(fullName, headline string) Identity {
	id := Identity{FirstName: "there"}

	if name := strings.TrimSpace(fullName); name != "" {
		id.FirstName, _, _ = strings.Cut(name, " ")
	}

	for _, phrase := range degreePhrases {
		headline = strings.ReplaceAll(headline, phrase, "")
	}
	headline = strings.TrimSpace(headline)

	parts := strings.Split(headline, " at ")
	if len(parts) > 1 {
		id.Role = strings.TrimSpace(parts[0])
		id.Company = strings.TrimSpace(parts[1])
	} else {
		id.Role = headline
	}

	return id
}

// SelectConnectionPath returns the best introducer for a profile: the in-network mutual with
// the highest trust score (first wins ties), else the first mutual, else nil.
func SelectConnectionPath(profile *types.CandidateProfile) *types.MutualConnectionEvidence {
	if len(profile.MutualConnections) == 0 {
		return nil
	}

	var best *types.MutualConnectionEvidence
	for i := range profile.MutualConnections {
		m := &profile.MutualConnections[i]
		if !m.InTNL {
			continue
		}
		if best == nil || m.TNLScore > best.TNLScore {
			best = m
		}
	}
	if best == nil {
		best = &profile.MutualConnections[0]
	}

	path := *best
	return &path
}
