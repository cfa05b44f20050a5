// Package ranking orders annotated candidates so the warmest leads come first.
package ranking

import (
	"fmt"
	"sort"
	"strings"

	"github.com/avisanghavi/clout/internal/types"
)

// RankLeads returns a stably sorted copy of profiles. The ascending key is
// (not tnl_connection, connection_level_rank, -len(mutual_connections)); ties keep input order.
func RankLeads(profiles []types.CandidateProfile) []types.CandidateProfile {
	ranked := make([]types.CandidateProfile, len(profiles))
	copy(ranked, profiles)

	sort.SliceStable(ranked, func(i, j int) bool {
		return less(&ranked[i], &ranked[j])
	})

	return ranked
}

func less(a, b *types.CandidateProfile) bool {
	if a.TNLConnection != b.TNLConnection {
		return a.TNLConnection
	}
	if a.ConnectionLevelRank != b.ConnectionLevelRank {
		return a.ConnectionLevelRank < b.ConnectionLevelRank
	}
	return len(a.MutualConnections) > len(b.MutualConnections)
}

// Notes creates a brief explanation of where a profile lands in the ranking.
func Notes(profile *types.CandidateProfile) string {
	var parts []string

	switch profile.ConnectionLevel {
	case types.ConnectionFirst:
		parts = append(parts, "Direct connection")
	case types.ConnectionSecond:
		parts = append(parts, "2nd degree connection")
	default:
		parts = append(parts, "Outside your network")
	}

	if profile.TNLConnection {
		names := make([]string, 0, len(profile.MutualConnections))
		for _, m := range profile.MutualConnections {
			names = append(names, m.Name)
		}
		parts = append(parts, fmt.Sprintf("Trusted mutuals (%s)", strings.Join(names, ", ")))
	}

	return strings.Join(parts, ". ")
}
