//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionLevel_Rank(t *testing.T) {
	tests := []struct {
		level ConnectionLevel
		want  int
	}{
		{ConnectionFirst, 1},
		{ConnectionSecond, 2},
		{ConnectionThirdPlus, 3},
		{ConnectionLevel(""), 3},
		{ConnectionLevel("out of network"), 3},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.level.Rank())
		})
	}
}

func TestCandidateProfile_CloneDoesNotAlias(t *testing.T) {
	original := CandidateProfile{
		Name: "Alice Smith",
		MutualConnections: []MutualConnectionEvidence{
			{Name: "Bob", InTNL: true, TNLScore: 8},
		},
	}

	clone := original.Clone()
	clone.MutualConnections[0].Name = "Mallory"

	assert.Equal(t, "Bob", original.MutualConnections[0].Name)
	assert.Equal(t, "Mallory", clone.MutualConnections[0].Name)
}

func TestCandidateProfile_CloneKeepsNilEvidence(t *testing.T) {
	clone := CandidateProfile{Name: "Alice"}.Clone()
	assert.Nil(t, clone.MutualConnections)
}

func TestSnapshot_FindProfile(t *testing.T) {
	id := uuid.New()
	snap := &Snapshot{
		ID: uuid.New(),
		Profiles: []CandidateProfile{
			{ID: uuid.New(), Name: "Other"},
			{ID: id, Name: "Target"},
		},
	}

	p, ok := snap.FindProfile(id)
	require.True(t, ok)
	assert.Equal(t, "Target", p.Name)

	_, ok = snap.FindProfile(uuid.New())
	assert.False(t, ok)

	var nilSnap *Snapshot
	_, ok = nilSnap.FindProfile(id)
	assert.False(t, ok)
}

func TestCandidateProfile_JSONFieldNames(t *testing.T) {
	p := CandidateProfile{
		ID:                  uuid.MustParse("6f1c2a1e-3a8b-4f3e-9a57-0d4b0f6f2c11"),
		Name:                "Alice Smith",
		RawConnectionLabel:  "2nd degree connection",
		ConnectionLevel:     ConnectionSecond,
		ConnectionLevelRank: 2,
		MutualConnections:   []MutualConnectionEvidence{{Name: "Bob", InTNL: true, TNLScore: 8}},
		TNLConnection:       true,
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"connection_level":"2nd"`)
	assert.Contains(t, s, `"connection_level_rank":2`)
	assert.Contains(t, s, `"tnl_connection":true`)
	assert.Contains(t, s, `"in_tnl":true`)
	assert.Contains(t, s, `"tnl_score":8`)
}
