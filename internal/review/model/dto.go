// Package model provides data transfer objects, domain models and the
// lifecycle state machine for the review module.
package model

// DefaultPageLimit applies when the caller omits the limit parameter.
const DefaultPageLimit = 20

// Filter narrows review listings.
type Filter struct {
	Status   string
	Rating   int
	Category string
}

// Page holds offset pagination parameters.
type Page struct {
	Offset int
	Limit  int
}

// Validate checks pagination bounds.
func (p Page) Validate() error {
	if p.Offset < 0 || p.Limit < 1 || p.Limit > 100 {
		return ErrInvalidPage
	}
	return nil
}

// ReviewWithReply pairs a review with its reply, if one exists.
type ReviewWithReply struct {
	Review Review `json:"review"`
	Reply  *Reply `json:"reply,omitempty"`
}

// ReviewListResponse is a paginated review listing.
type ReviewListResponse struct {
	Items   []ReviewWithReply `json:"items"`
	Total   int64             `json:"total"`
	Offset  int               `json:"offset"`
	Limit   int               `json:"limit"`
	HasMore bool              `json:"has_more"`
}

// ApproveReplyRequest carries the human-approved reply text.
type ApproveReplyRequest struct {
	FinalText string `json:"final_text" binding:"required"`
}

// BulkRequest selects reviews for a bulk operation.
type BulkRequest struct {
	ReviewIDs []string `json:"review_ids" binding:"required"`
}

// BulkResult reports a bulk operation outcome. Partial failure is expected;
// nothing is rolled back.
type BulkResult struct {
	SuccessCount int      `json:"success_count"`
	FailCount    int      `json:"fail_count"`
	Errors       []string `json:"errors,omitempty"`
}

// AutoProcessResult reports one auto-reply/auto-send sweep over an app.
type AutoProcessResult struct {
	GenerationsTriggered int `json:"generations_triggered"`
	Reconciled           int `json:"reconciled"`
	AutoSent             int `json:"auto_sent"`
	Failed               int `json:"failed"`
}
