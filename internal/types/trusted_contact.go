// Package types provides type definitions for structured data used throughout the clout pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

// DefaultTrustScore is applied to trusted contacts imported without a score.
const DefaultTrustScore = 5

// TrustedContact is a member of the user's trusted network (TNL).
// Contacts are keyed by name; duplicates are kept as-is.
type TrustedContact struct {
	Name       string `json:"name" validate:"required"`
	TrustScore int    `json:"trust_score" validate:"min=1,max=10"`
	Notes      string `json:"notes"`
}
