package service

import "caseflow/internal/domain/entity"

// Decision is the approval gate's verdict on a manufacturer reply.
type Decision int

const (
	// PendingApproval routes the reply to manual sign-off.
	PendingApproval Decision = iota
	// AutoApprove releases the reply to the user immediately.
	AutoApprove
)

// ApprovalGate decides whether a manufacturer reply may auto-forward to the
// user or requires manual sign-off. Implementations are pure functions of
// case attributes and configuration; the state machine applies the decision
// to the status/approval fields.
type ApprovalGate interface {
	Decide(c *entity.Case) Decision
}
