package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appModel "github.com/playreply/playreply/internal/app/model"
	"github.com/playreply/playreply/internal/statistics/model"
	"github.com/playreply/playreply/internal/statistics/repository"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) GetAppStatistics(ctx context.Context, appID string) (*model.AppStatistics, error) {
	args := m.Called(ctx, appID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AppStatistics), args.Error(1)
}

var _ repository.Repository = (*mockRepository)(nil)

func TestService_GetAppStatistics(t *testing.T) {
	t.Run("replied rate excludes ignored reviews", func(t *testing.T) {
		mockRepo := new(mockRepository)
		svc := New(mockRepo, zap.NewNop().Sugar())

		mockRepo.On("GetAppStatistics", mock.Anything, "app-1").Return(&model.AppStatistics{
			AppID:        "app-1",
			TotalReviews: 10,
			ByStatus: model.StatusCounts{
				New:     2,
				Pending: 2,
				Replied: 3,
				Ignored: 4,
			},
			AverageRating: 3.666666,
		}, nil)

		resp, err := svc.GetAppStatistics(context.Background(), "app-1")
		require.NoError(t, err)

		// 3 replied out of 6 actionable (10 total minus 4 ignored).
		assert.InDelta(t, 0.5, resp.Statistics.RepliedRate, 1e-9)
		assert.InDelta(t, 3.67, resp.Statistics.AverageRating, 1e-9)
	})

	t.Run("all reviews ignored", func(t *testing.T) {
		mockRepo := new(mockRepository)
		svc := New(mockRepo, zap.NewNop().Sugar())

		mockRepo.On("GetAppStatistics", mock.Anything, "app-1").Return(&model.AppStatistics{
			AppID:        "app-1",
			TotalReviews: 3,
			ByStatus:     model.StatusCounts{Ignored: 3},
		}, nil)

		resp, err := svc.GetAppStatistics(context.Background(), "app-1")
		require.NoError(t, err)
		assert.Zero(t, resp.Statistics.RepliedRate)
	})

	t.Run("no reviews at all", func(t *testing.T) {
		mockRepo := new(mockRepository)
		svc := New(mockRepo, zap.NewNop().Sugar())

		mockRepo.On("GetAppStatistics", mock.Anything, "app-1").Return(&model.AppStatistics{
			AppID: "app-1",
		}, nil)

		resp, err := svc.GetAppStatistics(context.Background(), "app-1")
		require.NoError(t, err)
		assert.Zero(t, resp.Statistics.RepliedRate)
		assert.Zero(t, resp.Statistics.AverageRating)
	})

	t.Run("unknown app", func(t *testing.T) {
		mockRepo := new(mockRepository)
		svc := New(mockRepo, zap.NewNop().Sugar())

		mockRepo.On("GetAppStatistics", mock.Anything, "missing").Return(nil, appModel.ErrAppNotFound)

		resp, err := svc.GetAppStatistics(context.Background(), "missing")
		assert.ErrorIs(t, err, appModel.ErrAppNotFound)
		assert.Nil(t, resp)
	})
}
