// Package repository provides data access layer for statistics module.
package repository

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	appModel "github.com/playreply/playreply/internal/app/model"
	"github.com/playreply/playreply/internal/statistics/model"
)

// Repository defines the interface for statistics data access operations.
type Repository interface {
	// GetAppStatistics returns aggregated review and reply figures for an app.
	GetAppStatistics(ctx context.Context, appID string) (*model.AppStatistics, error)
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new statistics repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{
		db:     db,
		logger: logger,
	}
}

// GetAppStatistics returns aggregated review and reply figures for an app.
func (r *repository) GetAppStatistics(ctx context.Context, appID string) (*model.AppStatistics, error) {
	r.logger.Debugw("GetAppStatistics called", "app_id", appID)

	var exists int64
	if err := r.db.WithContext(ctx).
		Model(&appModel.App{}).
		Where("id = ?", appID).
		Count(&exists).Error; err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, appModel.ErrAppNotFound
	}

	var reviewAgg struct {
		Total     int64   `gorm:"column:total"`
		NewCount  int64   `gorm:"column:new_count"`
		Pending   int64   `gorm:"column:pending_count"`
		Replied   int64   `gorm:"column:replied_count"`
		Ignored   int64   `gorm:"column:ignored_count"`
		AvgRating float64 `gorm:"column:avg_rating"`
		Rating1   int64   `gorm:"column:rating_1"`
		Rating2   int64   `gorm:"column:rating_2"`
		Rating3   int64   `gorm:"column:rating_3"`
		Rating4   int64   `gorm:"column:rating_4"`
		Rating5   int64   `gorm:"column:rating_5"`
	}

	err := r.db.WithContext(ctx).
		Table("reviews").
		Select(`
			COUNT(*) as total,
			SUM(CASE WHEN status = 'new' THEN 1 ELSE 0 END) as new_count,
			SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END) as pending_count,
			SUM(CASE WHEN status = 'replied' THEN 1 ELSE 0 END) as replied_count,
			SUM(CASE WHEN status = 'ignored' THEN 1 ELSE 0 END) as ignored_count,
			COALESCE(AVG(CAST(rating AS REAL)), 0) as avg_rating,
			SUM(CASE WHEN rating = 1 THEN 1 ELSE 0 END) as rating_1,
			SUM(CASE WHEN rating = 2 THEN 1 ELSE 0 END) as rating_2,
			SUM(CASE WHEN rating = 3 THEN 1 ELSE 0 END) as rating_3,
			SUM(CASE WHEN rating = 4 THEN 1 ELSE 0 END) as rating_4,
			SUM(CASE WHEN rating = 5 THEN 1 ELSE 0 END) as rating_5
		`).
		Where("app_id = ?", appID).
		Scan(&reviewAgg).Error
	if err != nil {
		r.logger.Errorw("GetAppStatistics review aggregation error", "error", err)
		return nil, err
	}

	var replyAgg struct {
		Draft    int64 `gorm:"column:draft_count"`
		Approved int64 `gorm:"column:approved_count"`
		Sent     int64 `gorm:"column:sent_count"`
		Error    int64 `gorm:"column:error_count"`
	}

	err = r.db.WithContext(ctx).
		Table("replies").
		Select(`
			SUM(CASE WHEN send_status = 'draft' THEN 1 ELSE 0 END) as draft_count,
			SUM(CASE WHEN send_status = 'approved' THEN 1 ELSE 0 END) as approved_count,
			SUM(CASE WHEN send_status = 'sent' THEN 1 ELSE 0 END) as sent_count,
			SUM(CASE WHEN send_status = 'error' THEN 1 ELSE 0 END) as error_count
		`).
		Where("app_id = ?", appID).
		Scan(&replyAgg).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		r.logger.Errorw("GetAppStatistics reply aggregation error", "error", err)
		return nil, err
	}

	stats := &model.AppStatistics{
		AppID:        appID,
		TotalReviews: int(reviewAgg.Total),
		ByStatus: model.StatusCounts{
			New:     int(reviewAgg.NewCount),
			Pending: int(reviewAgg.Pending),
			Replied: int(reviewAgg.Replied),
			Ignored: int(reviewAgg.Ignored),
		},
		RatingHistogram: model.RatingHistogram{
			int(reviewAgg.Rating1),
			int(reviewAgg.Rating2),
			int(reviewAgg.Rating3),
			int(reviewAgg.Rating4),
			int(reviewAgg.Rating5),
		},
		AverageRating: reviewAgg.AvgRating,
		Replies: model.SendStatusCounts{
			Draft:    int(replyAgg.Draft),
			Approved: int(replyAgg.Approved),
			Sent:     int(replyAgg.Sent),
			Error:    int(replyAgg.Error),
		},
	}

	r.logger.Debugw("GetAppStatistics completed", "app_id", appID, "total", stats.TotalReviews)
	return stats, nil
}
