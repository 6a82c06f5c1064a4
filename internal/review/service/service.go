// Package service provides the review/reply lifecycle. Draft generation and
// reply delivery are performed by the external workflow engine; every
// operation that depends on an asynchronous side effect is structured as
// "trigger, then bounded poll of the store, then give up" — the next
// scheduled sweep picks up whatever lands late.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appModel "github.com/playreply/playreply/internal/app/model"
	"github.com/playreply/playreply/internal/metrics"
	reviewModel "github.com/playreply/playreply/internal/review/model"
	"github.com/playreply/playreply/internal/review/repository"
	"github.com/playreply/playreply/internal/workflow"
	"github.com/playreply/playreply/pkg/retry"
)

// SettingsSource resolves automation settings for an app.
// Satisfied by the app repository.
type SettingsSource interface {
	GetSettings(ctx context.Context, appID string) (*appModel.AppSettings, error)
}

// Service defines the interface for review lifecycle operations.
type Service interface {
	// GenerateReply triggers draft generation and polls for the result.
	GenerateReply(ctx context.Context, reviewID string) (*reviewModel.Reply, error)

	// RegenerateReply replaces an existing draft with a fresh one.
	RegenerateReply(ctx context.Context, reviewID string) (*reviewModel.Reply, error)

	// ApproveReply records the human-approved final text (idempotent).
	ApproveReply(ctx context.Context, reviewID, finalText string) (*reviewModel.Reply, error)

	// SendReply dispatches an approved reply to the store.
	SendReply(ctx context.Context, reviewID string) (*reviewModel.Reply, error)

	// IgnoreReview dismisses a review.
	IgnoreReview(ctx context.Context, reviewID string) error

	// ListReviews returns a filtered, paginated listing with replies attached.
	ListReviews(ctx context.Context, appID string, filter reviewModel.Filter, page reviewModel.Page) (*reviewModel.ReviewListResponse, error)

	// BulkApprove approves each selected review using its draft text.
	BulkApprove(ctx context.Context, reviewIDs []string) (*reviewModel.BulkResult, error)

	// BulkIgnore dismisses each selected review.
	BulkIgnore(ctx context.Context, reviewIDs []string) (*reviewModel.BulkResult, error)

	// BulkSend sends each selected review's reply, approving drafts first.
	BulkSend(ctx context.Context, reviewIDs []string) (*reviewModel.BulkResult, error)

	// AutoProcess runs one auto-reply/auto-send sweep over an app.
	AutoProcess(ctx context.Context, appID string) (*reviewModel.AutoProcessResult, error)
}

type service struct {
	repo     repository.Repository
	trigger  workflow.Trigger
	settings SettingsSource
	pollCfg  retry.Config
	logger   *zap.SugaredLogger
}

// New creates a new review lifecycle service. pollCfg bounds the post-trigger
// store polling; tests inject a config with a fake sleep.
func New(
	repo repository.Repository,
	trigger workflow.Trigger,
	settings SettingsSource,
	pollCfg retry.Config,
	logger *zap.SugaredLogger,
) Service {
	return &service{
		repo:     repo,
		trigger:  trigger,
		settings: settings,
		pollCfg:  pollCfg,
		logger:   logger,
	}
}

// errDraftNotReady drives the poll loop; never escapes this package.
var errDraftNotReady = errors.New("draft not ready")

// GenerateReply triggers draft generation and polls for the result.
func (s *service) GenerateReply(ctx context.Context, reviewID string) (*reviewModel.Reply, error) {
	return s.generate(ctx, reviewID, false)
}

// RegenerateReply replaces an existing draft with a fresh one.
func (s *service) RegenerateReply(ctx context.Context, reviewID string) (*reviewModel.Reply, error) {
	return s.generate(ctx, reviewID, true)
}

func (s *service) generate(ctx context.Context, reviewID string, force bool) (*reviewModel.Reply, error) {
	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	state, prior, err := s.currentState(ctx, review)
	if err != nil {
		return nil, err
	}
	if _, err := reviewModel.Transition(state, reviewModel.EventDraftReady); err != nil {
		return nil, err
	}

	priorText := ""
	if prior != nil {
		priorText = prior.SuggestedText
	}

	if err := s.trigger.GenerateReply(ctx, review.ReviewID, force); err != nil {
		metrics.ObserveReplyOperation("generate", "trigger_error")
		return nil, err
	}

	// The workflow engine writes the draft to the store on its own schedule;
	// poll until it lands or the budget runs out.
	reply, err := retry.DoWithResult(ctx, s.pollCfg, func() (*reviewModel.Reply, error) {
		r, getErr := s.repo.GetReply(ctx, review.AppID, review.ReviewID)
		if getErr != nil {
			if errors.Is(getErr, reviewModel.ErrReplyNotFound) {
				return nil, errDraftNotReady
			}
			return nil, getErr
		}
		if r.SuggestedText == "" || (force && r.SuggestedText == priorText) {
			return nil, errDraftNotReady
		}
		return r, nil
	})
	if err != nil {
		if errors.Is(err, errDraftNotReady) || errors.Is(err, context.DeadlineExceeded) {
			metrics.ObserveReplyOperation("generate", "timeout")
			s.logger.Warnw("draft generation timed out",
				"review_id", reviewID,
				"attempts", s.pollCfg.MaxAttempts,
			)
			return nil, reviewModel.ErrGenerationTimeout
		}
		return nil, err
	}

	if review.Status == reviewModel.StatusNew {
		if err := s.repo.UpdateReviewStatus(ctx, review.ID, reviewModel.StatusPending); err != nil {
			return nil, err
		}
	}

	metrics.ObserveReplyOperation("generate", "success")
	s.logger.Infow("draft ready", "review_id", reviewID, "force", force)
	return reply, nil
}

// ApproveReply records the human-approved final text. Idempotent: approving
// twice with the same text leaves one approved reply row.
func (s *service) ApproveReply(ctx context.Context, reviewID, finalText string) (*reviewModel.Reply, error) {
	if finalText == "" {
		return nil, reviewModel.ErrEmptyFinalText
	}

	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	state, _, err := s.currentState(ctx, review)
	if err != nil {
		return nil, err
	}
	if _, err := reviewModel.Transition(state, reviewModel.EventApprove); err != nil {
		return nil, err
	}

	reply, err := s.repo.UpsertApproval(ctx, &reviewModel.Reply{
		ID:         uuid.NewString(),
		AppID:      review.AppID,
		ReviewID:   review.ReviewID,
		FinalText:  finalText,
		SendStatus: reviewModel.SendStatusApproved,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		return nil, err
	}

	if review.Status != reviewModel.StatusPending {
		if err := s.repo.UpdateReviewStatus(ctx, review.ID, reviewModel.StatusPending); err != nil {
			return nil, err
		}
	}

	metrics.ObserveReplyOperation("approve", "success")
	return reply, nil
}

// SendReply dispatches an approved reply to the store. The approval
// precondition is enforced here, not in the UI: a draft or errored reply is
// rejected with ErrReplyNotApproved before any trigger fires.
func (s *service) SendReply(ctx context.Context, reviewID string) (*reviewModel.Reply, error) {
	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	app, err := s.repo.GetApp(ctx, review.AppID)
	if err != nil {
		return nil, err
	}

	state, reply, err := s.currentState(ctx, review)
	if err != nil {
		return nil, err
	}
	if _, err := reviewModel.Transition(state, reviewModel.EventSend); err != nil {
		return nil, err
	}

	var sendErr error
	if app.Platform == appModel.PlatformIOS {
		sendErr = s.trigger.SendIOSReply(ctx, reply.ID)
	} else {
		sendErr = s.trigger.SendReply(ctx, reply.ID)
	}

	if sendErr != nil {
		if markErr := s.repo.MarkSendError(ctx, reply.ID, sendErr.Error()); markErr != nil {
			s.logger.Errorw("failed to record send error",
				"review_id", reviewID, "error", markErr)
		}
		metrics.ObserveReplyOperation("send", "error")
		s.logger.Warnw("reply send failed", "review_id", reviewID, "error", sendErr)
		return nil, sendErr
	}

	now := time.Now()
	if err := s.repo.MarkSent(ctx, review.ID, reply.ID, now); err != nil {
		return nil, err
	}

	metrics.ObserveReplyOperation("send", "success")
	s.logger.Infow("reply sent", "review_id", reviewID, "reply_id", reply.ID)

	reply.SendStatus = reviewModel.SendStatusSent
	reply.SentAt = &now
	reply.ErrorMessage = ""
	return reply, nil
}

// IgnoreReview dismisses a review. Ignoring an already ignored review is a
// no-op; a replied review cannot be ignored.
func (s *service) IgnoreReview(ctx context.Context, reviewID string) error {
	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}

	state, _, err := s.currentState(ctx, review)
	if err != nil {
		return err
	}
	if _, err := reviewModel.Transition(state, reviewModel.EventIgnore); err != nil {
		return err
	}

	if review.Status == reviewModel.StatusIgnored {
		return nil
	}

	if err := s.repo.UpdateReviewStatus(ctx, review.ID, reviewModel.StatusIgnored); err != nil {
		return err
	}

	metrics.ObserveReplyOperation("ignore", "success")
	return nil
}

// ListReviews returns a filtered, paginated listing with replies attached.
// Cheap by design: two indexed queries, no per-row fetches, so the UI can
// poll it on its reload cadence.
func (s *service) ListReviews(
	ctx context.Context,
	appID string,
	filter reviewModel.Filter,
	page reviewModel.Page,
) (*reviewModel.ReviewListResponse, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetApp(ctx, appID); err != nil {
		return nil, err
	}

	reviews, total, err := s.repo.List(ctx, appID, filter, page)
	if err != nil {
		return nil, err
	}

	reviewIDs := make([]string, 0, len(reviews))
	for i := range reviews {
		reviewIDs = append(reviewIDs, reviews[i].ReviewID)
	}

	replies, err := s.repo.RepliesFor(ctx, appID, reviewIDs)
	if err != nil {
		return nil, err
	}

	byReviewID := make(map[string]*reviewModel.Reply, len(replies))
	for i := range replies {
		byReviewID[replies[i].ReviewID] = &replies[i]
	}

	items := make([]reviewModel.ReviewWithReply, 0, len(reviews))
	for i := range reviews {
		items = append(items, reviewModel.ReviewWithReply{
			Review: reviews[i],
			Reply:  byReviewID[reviews[i].ReviewID],
		})
	}

	return &reviewModel.ReviewListResponse{
		Items:   items,
		Total:   total,
		Offset:  page.Offset,
		Limit:   page.Limit,
		HasMore: int64(page.Offset+page.Limit) < total,
	}, nil
}

// BulkApprove approves each selected review using its draft text.
func (s *service) BulkApprove(ctx context.Context, reviewIDs []string) (*reviewModel.BulkResult, error) {
	return s.bulk(ctx, reviewIDs, func(ctx context.Context, id string) error {
		return s.approveFromDraft(ctx, id)
	})
}

// BulkIgnore dismisses each selected review.
func (s *service) BulkIgnore(ctx context.Context, reviewIDs []string) (*reviewModel.BulkResult, error) {
	return s.bulk(ctx, reviewIDs, s.IgnoreReview)
}

// BulkSend sends each selected review's reply, approving drafts first.
func (s *service) BulkSend(ctx context.Context, reviewIDs []string) (*reviewModel.BulkResult, error) {
	return s.bulk(ctx, reviewIDs, func(ctx context.Context, id string) error {
		review, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		reply, err := s.repo.GetReply(ctx, review.AppID, review.ReviewID)
		if err != nil {
			return err
		}

		if reply.SendStatus == reviewModel.SendStatusDraft {
			if err := s.approveFromDraft(ctx, id); err != nil {
				return err
			}
		}

		_, err = s.SendReply(ctx, id)
		return err
	})
}

// approveFromDraft approves a review's reply using the draft's suggested
// text, preferring previously edited final text when present.
func (s *service) approveFromDraft(ctx context.Context, reviewID string) error {
	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}

	reply, err := s.repo.GetReply(ctx, review.AppID, review.ReviewID)
	if err != nil {
		return err
	}

	text := reply.FinalText
	if text == "" {
		text = reply.SuggestedText
	}
	if text == "" {
		return reviewModel.ErrEmptyFinalText
	}

	_, err = s.ApproveReply(ctx, reviewID, text)
	return err
}

// bulk iterates the selection sequentially — parallel fan-out would hammer
// the workflow engine — isolating per-item failures into counts.
func (s *service) bulk(
	ctx context.Context,
	reviewIDs []string,
	op func(ctx context.Context, id string) error,
) (*reviewModel.BulkResult, error) {
	if len(reviewIDs) == 0 {
		return nil, reviewModel.ErrEmptySelection
	}

	result := &reviewModel.BulkResult{}
	for _, id := range reviewIDs {
		if err := op(ctx, id); err != nil {
			result.FailCount++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", id, err))
			continue
		}
		result.SuccessCount++
	}

	s.logger.Infow("bulk operation finished",
		"selected", len(reviewIDs),
		"success", result.SuccessCount,
		"failed", result.FailCount,
	)
	return result, nil
}

// AutoProcess runs one auto-reply/auto-send sweep over an app, driven by its
// settings thresholds. Generation is trigger-only here: drafts that land
// after this sweep are reconciled and auto-sent by the next one.
func (s *service) AutoProcess(ctx context.Context, appID string) (*reviewModel.AutoProcessResult, error) {
	settings, err := s.settings.GetSettings(ctx, appID)
	if err != nil {
		return nil, err
	}

	result := &reviewModel.AutoProcessResult{}

	if settings.AutoReplyEnabled {
		newReviews, err := s.repo.ListByStatusAndMinRating(
			ctx, appID, reviewModel.StatusNew, settings.AutoReplyMinRating)
		if err != nil {
			return nil, err
		}

		for i := range newReviews {
			review := &newReviews[i]

			reply, getErr := s.repo.GetReply(ctx, appID, review.ReviewID)
			if getErr == nil && reply.SuggestedText != "" {
				// Draft already landed; pull the review forward.
				if updErr := s.repo.UpdateReviewStatus(ctx, review.ID, reviewModel.StatusPending); updErr != nil {
					result.Failed++
					continue
				}
				result.Reconciled++
				continue
			}
			if getErr != nil && !errors.Is(getErr, reviewModel.ErrReplyNotFound) {
				return nil, getErr
			}

			if trigErr := s.trigger.GenerateReply(ctx, review.ReviewID, false); trigErr != nil {
				result.Failed++
				continue
			}
			result.GenerationsTriggered++
		}
	}

	if settings.AutoApproveMinRating != nil {
		pending, err := s.repo.ListByStatusAndMinRating(
			ctx, appID, reviewModel.StatusPending, *settings.AutoApproveMinRating)
		if err != nil {
			return nil, err
		}

		for i := range pending {
			review := &pending[i]

			reply, getErr := s.repo.GetReply(ctx, appID, review.ReviewID)
			if getErr != nil || reply.SendStatus != reviewModel.SendStatusDraft || reply.SuggestedText == "" {
				continue
			}

			if apprErr := s.approveFromDraft(ctx, review.ID); apprErr != nil {
				result.Failed++
				continue
			}
			if _, sendErr := s.SendReply(ctx, review.ID); sendErr != nil {
				result.Failed++
				continue
			}
			result.AutoSent++
		}
	}

	s.logger.Infow("auto-process sweep finished",
		"app_id", appID,
		"generations", result.GenerationsTriggered,
		"reconciled", result.Reconciled,
		"auto_sent", result.AutoSent,
		"failed", result.Failed,
	)
	return result, nil
}

// currentState loads the combined review/reply state. The reply may be nil.
func (s *service) currentState(
	ctx context.Context,
	review *reviewModel.Review,
) (reviewModel.State, *reviewModel.Reply, error) {
	reply, err := s.repo.GetReply(ctx, review.AppID, review.ReviewID)
	if err != nil {
		if errors.Is(err, reviewModel.ErrReplyNotFound) {
			return reviewModel.State{
				Status:     review.Status,
				SendStatus: reviewModel.SendStatusNone,
			}, nil, nil
		}
		return reviewModel.State{}, nil, err
	}

	return reviewModel.State{
		Status:     review.Status,
		SendStatus: reply.SendStatus,
	}, reply, nil
}
