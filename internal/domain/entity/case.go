// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// CaseStatus is the lifecycle state of a support case. A case moves through
// these states only via the case state machine; every transition is validated
// against CanTransitionTo before it is persisted.
type CaseStatus string

const (
	// CaseStatusSubmitted indicates the case has been received from the user
	// but not yet forwarded to a manufacturer.
	CaseStatusSubmitted CaseStatus = "submitted"
	// CaseStatusAwaitingReply indicates the case has been forwarded and a
	// task number assigned; this is the steady state reminders act upon.
	CaseStatusAwaitingReply CaseStatus = "awaiting_reply"
	// CaseStatusReplyReceived indicates a manufacturer reply has arrived and
	// is being routed through the approval gate.
	CaseStatusReplyReceived CaseStatus = "reply_received"
	// CaseStatusPendingApproval indicates the translated reply is waiting for
	// manual sign-off before it reaches the user.
	CaseStatusPendingApproval CaseStatus = "pending_approval"
	// CaseStatusApproved indicates the reply has been released to the user.
	CaseStatusApproved CaseStatus = "approved"
	// CaseStatusClosed is the optional terminal state reached from approved.
	CaseStatusClosed CaseStatus = "closed"
)

// String returns the string representation of the CaseStatus.
func (s CaseStatus) String() string {
	return string(s)
}

// IsValid checks if the CaseStatus is a known value.
func (s CaseStatus) IsValid() bool {
	switch s {
	case CaseStatusSubmitted, CaseStatusAwaitingReply, CaseStatusReplyReceived,
		CaseStatusPendingApproval, CaseStatusApproved, CaseStatusClosed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is expected from this state.
// Approved is terminal unless the external archival trigger closes the case.
func (s CaseStatus) IsTerminal() bool {
	return s == CaseStatusClosed
}

// CanTransitionTo reports whether "to" is the immediate successor of the
// current state. A transition that is not the immediate successor always
// fails rather than reordering state.
func (s CaseStatus) CanTransitionTo(to CaseStatus) bool {
	switch s {
	case CaseStatusSubmitted:
		return to == CaseStatusAwaitingReply
	case CaseStatusAwaitingReply:
		return to == CaseStatusReplyReceived
	case CaseStatusReplyReceived:
		return to == CaseStatusPendingApproval || to == CaseStatusApproved
	case CaseStatusPendingApproval:
		return to == CaseStatusApproved
	case CaseStatusApproved:
		return to == CaseStatusClosed
	default:
		return false
	}
}

// Case is a single tracked support request from submission to resolution.
// It is created on submission and mutated only through case state machine
// transitions; the core never deletes a case (archival is external).
type Case struct {
	ID                uuid.UUID  `json:"id"`                           // The Global Unique Identifier (GUID) for the case.
	OwnerID           uuid.UUID  `json:"owner_id"`                     // The ID of the user who submitted the case.
	OriginalQuery     string     `json:"original_query"`               // The support query exactly as the user wrote it.
	Language          string     `json:"language"`                     // ISO 639-1 code of the original query language.
	ManufacturerID    string     `json:"manufacturer_id"`              // The configured manufacturer this case is routed to.
	TranslatedQuery   string     `json:"translated_query,omitempty"`   // English translation of the query; empty when translation is pending retry.
	TaskNumber        string     `json:"task_number,omitempty"`        // Manufacturer-issued task number; set iff the case progressed past submitted.
	Status            CaseStatus `json:"status"`                       // Current lifecycle state.
	SubmittedAt       time.Time  `json:"submitted_at"`                 // Timestamp of case creation.
	ForwardedAt       *time.Time `json:"forwarded_at,omitempty"`       // Timestamp of forwarding to the manufacturer.
	ReplyReceivedAt   *time.Time `json:"reply_received_at,omitempty"`  // Timestamp of the manufacturer reply arrival.
	ReminderSent      bool       `json:"reminder_sent"`                // Dispatch lock for the at-most-once reminder.
	ReminderSentAt    *time.Time `json:"reminder_sent_at,omitempty"`   // Set iff ReminderSent is true.
	NeedsApproval     bool       `json:"needs_approval"`               // Audit flag recorded by the approval gate decision.
	Approved          bool       `json:"approved"`                     // True once the reply has been released to the user.
	ApprovedAt        *time.Time `json:"approved_at,omitempty"`        // Set iff Approved is true.
	ManufacturerReply string     `json:"manufacturer_reply,omitempty"` // Raw manufacturer reply text (English).
	ReplyTranslated   string     `json:"reply_translated,omitempty"`   // Reply translated back to the case language.
	ClosedAt          *time.Time `json:"closed_at,omitempty"`          // Timestamp of archival closing.
}
