package model

import "errors"

var (
	// ErrReviewNotFound indicates that the requested review does not exist.
	ErrReviewNotFound = errors.New("review not found")
	// ErrReplyNotFound indicates that no reply exists for the review.
	ErrReplyNotFound = errors.New("reply not found")
	// ErrReplyNotApproved indicates a send attempted on a reply that is not approved.
	ErrReplyNotApproved = errors.New("reply is not approved")
	// ErrIllegalTransition indicates a lifecycle event not valid in the current state.
	ErrIllegalTransition = errors.New("illegal lifecycle transition")
	// ErrEmptyFinalText indicates an approval without reply text.
	ErrEmptyFinalText = errors.New("final text is required")
	// ErrGenerationTimeout indicates the generation workflow produced no draft within the poll budget.
	ErrGenerationTimeout = errors.New("draft generation timed out")
	// ErrInvalidPage indicates invalid pagination parameters.
	ErrInvalidPage = errors.New("offset must be >= 0 and limit between 1 and 100")
	// ErrEmptySelection indicates a bulk operation with no review ids.
	ErrEmptySelection = errors.New("no reviews selected")
)
