// Package service provides business logic layer for statistics module.
package service

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/playreply/playreply/internal/statistics/model"
	"github.com/playreply/playreply/internal/statistics/repository"
)

// Service defines the interface for statistics business logic operations.
type Service interface {
	// GetAppStatistics returns aggregated review and reply figures for an app.
	GetAppStatistics(ctx context.Context, appID string) (*model.AppStatisticsResponse, error)
}

type service struct {
	repo   repository.Repository
	logger *zap.SugaredLogger
}

// New creates a new statistics service instance.
func New(repo repository.Repository, logger *zap.SugaredLogger) Service {
	return &service{
		repo:   repo,
		logger: logger,
	}
}

// GetAppStatistics returns aggregated review and reply figures for an app.
// Ignored reviews don't count against the replied rate.
func (s *service) GetAppStatistics(ctx context.Context, appID string) (*model.AppStatisticsResponse, error) {
	s.logger.Debugw("GetAppStatistics called", "app_id", appID)

	stats, err := s.repo.GetAppStatistics(ctx, appID)
	if err != nil {
		s.logger.Errorw("GetAppStatistics failed", "app_id", appID, "error", err)
		return nil, err
	}

	actionable := stats.TotalReviews - stats.ByStatus.Ignored
	if actionable > 0 {
		stats.RepliedRate = round2(float64(stats.ByStatus.Replied) / float64(actionable))
	}
	stats.AverageRating = round2(stats.AverageRating)

	s.logger.Infow("GetAppStatistics completed", "app_id", appID, "total", stats.TotalReviews)
	return &model.AppStatisticsResponse{Statistics: *stats}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
