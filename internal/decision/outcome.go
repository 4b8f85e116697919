package decision

import "ownidp/internal/openid"

// State is the terminal or control-flow result of processing one request.
type State string

const (
	// StateNeedsLogin: the caller must authenticate the owner and retry.
	StateNeedsLogin State = "needs_login"
	// StateNeedsDecision: the owner must approve or decline interactively.
	StateNeedsDecision State = "needs_decision"
	// StateApproved: positive assertion, Wire holds the encoded response.
	StateApproved State = "approved"
	// StateDeclined: negative assertion, Wire holds the encoded response.
	StateDeclined State = "declined"
	// StateRejected: no processable request, Reason says why.
	StateRejected State = "rejected"
)

// Outcome is the tagged result of Begin or Resolve. Wire is only meaningful
// for Approved and Declined; Reason only for Rejected.
type Outcome struct {
	State  State
	Wire   openid.WireResponse
	Reason string
}

// Choice is the owner's answer on the confirmation page.
type Choice string

const (
	ChoiceApprove Choice = "approve"
	ChoiceAlways  Choice = "always"
	ChoiceDecline Choice = "decline"
)
