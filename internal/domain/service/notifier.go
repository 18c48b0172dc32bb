package service

import "context"

// NotificationKind classifies outgoing notifications so the transport can
// pick subject lines and templates per kind.
type NotificationKind string

const (
	// KindVerificationCode carries a one-time login/signup code.
	KindVerificationCode NotificationKind = "verification_code"
	// KindCaseSubmitted confirms a case was forwarded to the manufacturer.
	KindCaseSubmitted NotificationKind = "case_submitted"
	// KindReminder nudges a manufacturer about an overdue task.
	KindReminder NotificationKind = "reminder"
	// KindReplyAvailable tells the user their translated reply is released.
	KindReplyAvailable NotificationKind = "reply_available"
	// KindApprovalRequested asks the support team for manual sign-off.
	KindApprovalRequested NotificationKind = "approval_requested"
)

// Notification is a single outgoing message. The payload is a small bag of
// template values (code, case id, task number, reply text) interpreted by
// the transport.
type Notification struct {
	Recipient string
	Kind      NotificationKind
	Payload   map[string]string
}

// Notifier delivers notifications over an external channel (email in
// production). Delivery failures are non-fatal to state transitions: callers
// log them and rely on manual reconciliation, they never roll back a
// committed transition.
type Notifier interface {
	Send(ctx context.Context, n *Notification) error
}
