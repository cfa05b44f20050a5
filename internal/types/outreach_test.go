//nolint:revive // types is a standard Go package name pattern
package types

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestApprovalStatus_Valid(t *testing.T) {
	assert.True(t, ApprovalApproved.Valid())
	assert.True(t, ApprovalEdited.Valid())
	assert.True(t, ApprovalRejected.Valid())
	assert.False(t, ApprovalStatus("draft").Valid())
	assert.False(t, ApprovalStatus("").Valid())
}

func TestTrustedContact_Validation(t *testing.T) {
	validate := validator.New()

	tests := []struct {
		name    string
		contact TrustedContact
		wantErr bool
	}{
		{"valid", TrustedContact{Name: "Bob", TrustScore: 8}, false},
		{"missing name", TrustedContact{TrustScore: 5}, true},
		{"score too low", TrustedContact{Name: "Bob", TrustScore: 0}, true},
		{"score too high", TrustedContact{Name: "Bob", TrustScore: 11}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.contact)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCandidateRecord_Validation(t *testing.T) {
	validate := validator.New()

	assert.NoError(t, validate.Struct(CandidateRecord{Name: "Alice"}))
	assert.Error(t, validate.Struct(CandidateRecord{Headline: "CTO"}))
	assert.Error(t, validate.Struct(CandidateRecord{Name: "Alice", ID: "not-a-uuid"}))
	assert.NoError(t, validate.Struct(CandidateRecord{Name: "Alice", ID: "6f1c2a1e-3a8b-4f3e-9a57-0d4b0f6f2c11"}))
}
