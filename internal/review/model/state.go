package model

import "fmt"

// State is the combined lifecycle state of a review and its reply.
// SendStatus is SendStatusNone while no reply row exists.
type State struct {
	Status     string
	SendStatus string
}

// Event is a lifecycle transition trigger.
type Event string

// Lifecycle events.
const (
	// EventDraftReady fires when a generated draft lands in the store
	// (initial generation or regeneration).
	EventDraftReady Event = "draft_ready"
	// EventApprove fires on a human (or auto) approval with final text.
	EventApprove Event = "approve"
	// EventSend fires when an approved reply is dispatched.
	EventSend Event = "send"
	// EventSendFailed fires when a dispatch attempt fails.
	EventSendFailed Event = "send_failed"
	// EventIgnore fires when the operator dismisses a review.
	EventIgnore Event = "ignore"
)

// Terminal reports whether the state accepts no further transitions except
// none: replied and ignored are terminal. An errored reply is NOT terminal;
// the operator may regenerate or retry the send.
func (s State) Terminal() bool {
	return s.Status == StatusReplied || s.Status == StatusIgnored
}

// Transition validates an event against the current state and returns the
// resulting state. It is pure: storage mutation happens in the service only
// after the transition is accepted.
//
// Retrying after a send failure is approve-then-send: a send error drops the
// reply out of approved, so the operator re-approves (final text survives on
// the row) before the next dispatch; regenerating over an errored reply
// likewise resets it to draft.
func Transition(s State, e Event) (State, error) {
	if s.Terminal() && e != EventIgnore {
		return s, fmt.Errorf("%w: %s from %s/%s", ErrIllegalTransition, e, s.Status, s.SendStatus)
	}

	switch e {
	case EventDraftReady:
		// Fresh draft, regeneration over a draft, or regeneration after a
		// send error.
		switch s.SendStatus {
		case SendStatusNone, SendStatusDraft, SendStatusError:
			return State{Status: StatusPending, SendStatus: SendStatusDraft}, nil
		}

	case EventApprove:
		// Approval is idempotent and may precede generation entirely (the
		// operator writes the reply by hand).
		switch s.SendStatus {
		case SendStatusNone, SendStatusDraft, SendStatusApproved, SendStatusError:
			return State{Status: StatusPending, SendStatus: SendStatusApproved}, nil
		}

	case EventSend:
		if s.SendStatus == SendStatusApproved {
			return State{Status: StatusReplied, SendStatus: SendStatusSent}, nil
		}
		if s.SendStatus == SendStatusNone {
			return s, ErrReplyNotFound
		}
		// A draft or errored reply must be (re-)approved before sending.
		return s, ErrReplyNotApproved

	case EventSendFailed:
		if s.SendStatus == SendStatusApproved {
			// Review status is intentionally left unchanged on failure.
			return State{Status: s.Status, SendStatus: SendStatusError}, nil
		}

	case EventIgnore:
		if s.Status == StatusReplied {
			return s, fmt.Errorf("%w: ignore from replied", ErrIllegalTransition)
		}
		// Ignoring an already ignored review is a no-op.
		return State{Status: StatusIgnored, SendStatus: s.SendStatus}, nil
	}

	return s, fmt.Errorf("%w: %s from %s/%s", ErrIllegalTransition, e, s.Status, s.SendStatus)
}
