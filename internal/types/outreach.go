// Package types provides type definitions for structured data used throughout the clout pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// MessageType classifies an outreach message by the relationship it relies on.
type MessageType string

const (
	// MessageDirectExisting is a message to an existing 1st degree connection
	MessageDirectExisting MessageType = "direct_existing"
	// MessageIntroRequest asks a mutual trusted contact for an introduction
	MessageIntroRequest MessageType = "intro_request"
	// MessageColdOutreach is a connection request to someone with no usable path
	MessageColdOutreach MessageType = "cold_outreach"
)

// Generation sources for an OutreachMessage.
const (
	GeneratedByAI       = "ai"
	GeneratedByFallback = "fallback"
)

// OutreachMessage is a drafted message. It is produced once and never modified.
type OutreachMessage struct {
	ProfileID   uuid.UUID   `json:"profile_id"`
	Text        string      `json:"message"`
	MessageType MessageType `json:"type"`
	Recipient   string      `json:"recipient"`
	GeneratedBy string      `json:"generated_by"`
}

// ApprovalStatus is the outcome of a user review of a drafted message.
type ApprovalStatus string

const (
	// ApprovalApproved means the message was accepted as drafted
	ApprovalApproved ApprovalStatus = "approved"
	// ApprovalEdited means the user changed the text before accepting it
	ApprovalEdited ApprovalStatus = "edited"
	// ApprovalRejected is terminal for that message instance
	ApprovalRejected ApprovalStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalApproved, ApprovalEdited, ApprovalRejected:
		return true
	}
	return false
}

// ApprovalRecord is one entry of the append-only approval log.
type ApprovalRecord struct {
	ID          uuid.UUID      `json:"id"`
	ProfileRef  uuid.UUID      `json:"profile_id"`
	MessageText string         `json:"message"`
	Status      ApprovalStatus `json:"status"`
	Timestamp   time.Time      `json:"timestamp"`
}
