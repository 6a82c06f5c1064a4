// Package repository provides data access layer for the review module.
package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	appModel "github.com/playreply/playreply/internal/app/model"
	reviewModel "github.com/playreply/playreply/internal/review/model"
)

// Repository defines the interface for review data access operations.
type Repository interface {
	// GetByID finds a review by primary id.
	GetByID(ctx context.Context, id string) (*reviewModel.Review, error)

	// GetApp returns the app a review belongs to.
	GetApp(ctx context.Context, appID string) (*appModel.App, error)

	// GetReply returns the reply joined to a review via the external
	// review_id, or ErrReplyNotFound.
	GetReply(ctx context.Context, appID, reviewID string) (*reviewModel.Reply, error)

	// UpsertApproval inserts or updates the reply row for a review with the
	// approved final text. Keyed by (app_id, review_id); safe to call twice.
	UpsertApproval(ctx context.Context, reply *reviewModel.Reply) (*reviewModel.Reply, error)

	// UpdateReviewStatus sets a review's status.
	UpdateReviewStatus(ctx context.Context, id string, status string) error

	// MarkSent records a successful dispatch: reply sent + review replied,
	// atomically.
	MarkSent(ctx context.Context, reviewPK, replyID string, at time.Time) error

	// MarkSendError records a failed dispatch on the reply only.
	MarkSendError(ctx context.Context, replyID string, message string) error

	// List returns a filtered, paginated review page and the total count.
	List(ctx context.Context, appID string, filter reviewModel.Filter, page reviewModel.Page) ([]reviewModel.Review, int64, error)

	// RepliesFor returns replies for a set of external review ids.
	RepliesFor(ctx context.Context, appID string, reviewIDs []string) ([]reviewModel.Reply, error)

	// ListByStatusAndMinRating returns an app's reviews in a status at or
	// above a rating (auto-process sweep).
	ListByStatusAndMinRating(ctx context.Context, appID, status string, minRating int) ([]reviewModel.Review, error)
}

type repository struct {
	db *gorm.DB
}

// New creates a new review repository instance.
func New(db *gorm.DB) Repository {
	return &repository{db: db}
}

// GetByID finds a review by primary id.
func (r *repository) GetByID(ctx context.Context, id string) (*reviewModel.Review, error) {
	var review reviewModel.Review
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&review).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reviewModel.ErrReviewNotFound
		}
		return nil, err
	}

	return &review, nil
}

// GetApp returns the app a review belongs to.
func (r *repository) GetApp(ctx context.Context, appID string) (*appModel.App, error) {
	var app appModel.App
	err := r.db.WithContext(ctx).
		Where("id = ?", appID).
		First(&app).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appModel.ErrAppNotFound
		}
		return nil, err
	}

	return &app, nil
}

// GetReply returns the reply joined to a review via the external review_id.
func (r *repository) GetReply(ctx context.Context, appID, reviewID string) (*reviewModel.Reply, error) {
	var reply reviewModel.Reply
	err := r.db.WithContext(ctx).
		Where("app_id = ? AND review_id = ?", appID, reviewID).
		First(&reply).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reviewModel.ErrReplyNotFound
		}
		return nil, err
	}

	return &reply, nil
}

// UpsertApproval inserts or updates the reply row for a review with the
// approved final text. The (app_id, review_id) unique index keeps the
// one-reply-per-review invariant under webhook races.
func (r *repository) UpsertApproval(ctx context.Context, reply *reviewModel.Reply) (*reviewModel.Reply, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "app_id"}, {Name: "review_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"final_text", "send_status", "error_message",
			}),
		}).
		Create(reply).Error
	if err != nil {
		return nil, err
	}

	// Re-read so the caller sees the surviving row (the insert may have
	// collapsed onto an existing one with a different primary id).
	return r.GetReply(ctx, reply.AppID, reply.ReviewID)
}

// UpdateReviewStatus sets a review's status.
func (r *repository) UpdateReviewStatus(ctx context.Context, id string, status string) error {
	result := r.db.WithContext(ctx).
		Model(&reviewModel.Review{}).
		Where("id = ?", id).
		Update("status", status)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return reviewModel.ErrReviewNotFound
	}
	return nil
}

// MarkSent records a successful dispatch atomically: a crash can not leave a
// sent reply against a non-replied review.
func (r *repository) MarkSent(ctx context.Context, reviewPK, replyID string, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&reviewModel.Reply{}).
			Where("id = ?", replyID).
			Updates(map[string]interface{}{
				"send_status":   reviewModel.SendStatusSent,
				"sent_at":       at,
				"error_message": "",
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return reviewModel.ErrReplyNotFound
		}

		result = tx.Model(&reviewModel.Review{}).
			Where("id = ?", reviewPK).
			Update("status", reviewModel.StatusReplied)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return reviewModel.ErrReviewNotFound
		}
		return nil
	})
}

// MarkSendError records a failed dispatch on the reply only; the review's
// status stays as it was.
func (r *repository) MarkSendError(ctx context.Context, replyID string, message string) error {
	result := r.db.WithContext(ctx).
		Model(&reviewModel.Reply{}).
		Where("id = ?", replyID).
		Updates(map[string]interface{}{
			"send_status":   reviewModel.SendStatusError,
			"error_message": message,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return reviewModel.ErrReplyNotFound
	}
	return nil
}

// List returns a filtered, paginated review page and the total count.
// Ordering is created_at DESC with id as tie-breaker so pages concatenate
// without gaps or duplicates.
func (r *repository) List(
	ctx context.Context,
	appID string,
	filter reviewModel.Filter,
	page reviewModel.Page,
) ([]reviewModel.Review, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&reviewModel.Review{}).
		Where("app_id = ?", appID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Rating != 0 {
		query = query.Where("rating = ?", filter.Rating)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []reviewModel.Review
	err := query.
		Order("created_at DESC, id ASC").
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}

	if reviews == nil {
		reviews = []reviewModel.Review{}
	}

	return reviews, total, nil
}

// RepliesFor returns replies for a set of external review ids.
func (r *repository) RepliesFor(
	ctx context.Context,
	appID string,
	reviewIDs []string,
) ([]reviewModel.Reply, error) {
	if len(reviewIDs) == 0 {
		return []reviewModel.Reply{}, nil
	}

	var replies []reviewModel.Reply
	err := r.db.WithContext(ctx).
		Where("app_id = ? AND review_id IN ?", appID, reviewIDs).
		Find(&replies).Error
	if err != nil {
		return nil, err
	}

	if replies == nil {
		return []reviewModel.Reply{}, nil
	}

	return replies, nil
}

// ListByStatusAndMinRating returns an app's reviews in a status at or above a rating.
func (r *repository) ListByStatusAndMinRating(
	ctx context.Context,
	appID, status string,
	minRating int,
) ([]reviewModel.Review, error) {
	var reviews []reviewModel.Review
	err := r.db.WithContext(ctx).
		Where("app_id = ? AND status = ? AND rating >= ?", appID, status, minRating).
		Order("created_at ASC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}

	if reviews == nil {
		reviews = []reviewModel.Review{}
	}

	return reviews, nil
}
