package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	appModel "github.com/playreply/playreply/internal/app/model"
	reviewModel "github.com/playreply/playreply/internal/review/model"
)

// sqlite-compatible mirrors of the production tables

type testApp struct {
	ID          string    `gorm:"primaryKey;column:id"`
	PackageName string    `gorm:"column:package_name;not null"`
	Platform    string    `gorm:"column:platform;not null"`
	Name        string    `gorm:"column:name;not null"`
	OwnerID     string    `gorm:"column:owner_id;not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (testApp) TableName() string {
	return "apps"
}

type testReview struct {
	ID         string    `gorm:"primaryKey;column:id"`
	AppID      string    `gorm:"column:app_id;not null;uniqueIndex:ux_reviews_app_review"`
	ReviewID   string    `gorm:"column:review_id;not null;uniqueIndex:ux_reviews_app_review"`
	Rating     int       `gorm:"column:rating;not null"`
	Text       string    `gorm:"column:text"`
	AuthorName string    `gorm:"column:author_name"`
	Language   string    `gorm:"column:language"`
	Category   string    `gorm:"column:category"`
	Status     string    `gorm:"column:status;not null;default:'new'"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (testReview) TableName() string {
	return "reviews"
}

type testReply struct {
	ID            string     `gorm:"primaryKey;column:id"`
	AppID         string     `gorm:"column:app_id;not null;uniqueIndex:ux_replies_app_review"`
	ReviewID      string     `gorm:"column:review_id;not null;uniqueIndex:ux_replies_app_review"`
	SuggestedText string     `gorm:"column:suggested_text"`
	FinalText     string     `gorm:"column:final_text"`
	SendStatus    string     `gorm:"column:send_status;not null;default:'draft'"`
	SentAt        *time.Time `gorm:"column:sent_at"`
	ErrorMessage  string     `gorm:"column:error_message"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
}

func (testReply) TableName() string {
	return "replies"
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&testApp{}, &testReview{}, &testReply{})
	require.NoError(t, err)

	return db
}

func seedReview(t *testing.T, db *gorm.DB, id, appID, extID, status string, rating int) {
	t.Helper()
	require.NoError(t, db.Create(&testReview{
		ID: id, AppID: appID, ReviewID: extID,
		Rating: rating, Status: status, CreatedAt: time.Now(),
	}).Error)
}

func TestRepository_UpsertApproval(t *testing.T) {
	ctx := context.Background()

	t.Run("approving twice keeps one row", func(t *testing.T) {
		db := setupTestDB(t)
		repo := New(db)

		first, err := repo.UpsertApproval(ctx, &reviewModel.Reply{
			ID: "reply-1", AppID: "app-1", ReviewID: "ext-1",
			FinalText: "Thanks!", SendStatus: reviewModel.SendStatusApproved,
			CreatedAt: time.Now(),
		})
		require.NoError(t, err)

		second, err := repo.UpsertApproval(ctx, &reviewModel.Reply{
			ID: "reply-2", AppID: "app-1", ReviewID: "ext-1",
			FinalText: "Thanks again!", SendStatus: reviewModel.SendStatusApproved,
			CreatedAt: time.Now(),
		})
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.Model(&testReply{}).Where("app_id = ?", "app-1").Count(&count).Error)
		assert.Equal(t, int64(1), count)

		// The original row survives with the new final text.
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "Thanks again!", second.FinalText)
		assert.Equal(t, reviewModel.SendStatusApproved, second.SendStatus)
	})

	t.Run("approval over generated draft preserves suggested text", func(t *testing.T) {
		db := setupTestDB(t)
		repo := New(db)

		require.NoError(t, db.Create(&testReply{
			ID: "reply-1", AppID: "app-1", ReviewID: "ext-1",
			SuggestedText: "generated draft", SendStatus: reviewModel.SendStatusDraft,
			CreatedAt: time.Now(),
		}).Error)

		saved, err := repo.UpsertApproval(ctx, &reviewModel.Reply{
			ID: "reply-new", AppID: "app-1", ReviewID: "ext-1",
			FinalText: "Edited by hand", SendStatus: reviewModel.SendStatusApproved,
			CreatedAt: time.Now(),
		})
		require.NoError(t, err)
		assert.Equal(t, "reply-1", saved.ID)
		assert.Equal(t, "generated draft", saved.SuggestedText)
		assert.Equal(t, "Edited by hand", saved.FinalText)
	})
}

func TestRepository_MarkSent(t *testing.T) {
	ctx := context.Background()

	t.Run("updates reply and review together", func(t *testing.T) {
		db := setupTestDB(t)
		repo := New(db)

		seedReview(t, db, "rev-1", "app-1", "ext-1", reviewModel.StatusPending, 5)
		require.NoError(t, db.Create(&testReply{
			ID: "reply-1", AppID: "app-1", ReviewID: "ext-1",
			FinalText: "Thanks!", SendStatus: reviewModel.SendStatusApproved,
			ErrorMessage: "previous failure", CreatedAt: time.Now(),
		}).Error)

		sentAt := time.Now()
		require.NoError(t, repo.MarkSent(ctx, "rev-1", "reply-1", sentAt))

		var reply testReply
		require.NoError(t, db.First(&reply, "id = ?", "reply-1").Error)
		assert.Equal(t, reviewModel.SendStatusSent, reply.SendStatus)
		require.NotNil(t, reply.SentAt)
		assert.Empty(t, reply.ErrorMessage)

		var review testReview
		require.NoError(t, db.First(&review, "id = ?", "rev-1").Error)
		assert.Equal(t, reviewModel.StatusReplied, review.Status)
	})

	t.Run("send error leaves review status alone", func(t *testing.T) {
		db := setupTestDB(t)
		repo := New(db)

		seedReview(t, db, "rev-1", "app-1", "ext-1", reviewModel.StatusPending, 5)
		require.NoError(t, db.Create(&testReply{
			ID: "reply-1", AppID: "app-1", ReviewID: "ext-1",
			FinalText: "Thanks!", SendStatus: reviewModel.SendStatusApproved,
			CreatedAt: time.Now(),
		}).Error)

		require.NoError(t, repo.MarkSendError(ctx, "reply-1", "engine returned 500"))

		var reply testReply
		require.NoError(t, db.First(&reply, "id = ?", "reply-1").Error)
		assert.Equal(t, reviewModel.SendStatusError, reply.SendStatus)
		assert.Equal(t, "engine returned 500", reply.ErrorMessage)

		var review testReview
		require.NoError(t, db.First(&review, "id = ?", "rev-1").Error)
		assert.Equal(t, reviewModel.StatusPending, review.Status)
	})
}

func TestRepository_GetReply(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := New(db)

	_, err := repo.GetReply(ctx, "app-1", "ext-404")
	assert.ErrorIs(t, err, reviewModel.ErrReplyNotFound)
}

func TestRepository_GetApp(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := New(db)

	require.NoError(t, db.Create(&testApp{
		ID: "app-1", PackageName: "com.example.app",
		Platform: appModel.PlatformAndroid, Name: "Example", OwnerID: "user-1",
	}).Error)

	app, err := repo.GetApp(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, "com.example.app", app.PackageName)

	_, err = repo.GetApp(ctx, "app-404")
	assert.ErrorIs(t, err, appModel.ErrAppNotFound)
}

func TestRepository_List(t *testing.T) {
	ctx := context.Background()

	seedMany := func(t *testing.T, db *gorm.DB, n int) {
		base := time.Now().Add(-time.Hour)
		for i := 0; i < n; i++ {
			require.NoError(t, db.Create(&testReview{
				ID:        fmt.Sprintf("rev-%02d", i),
				AppID:     "app-1",
				ReviewID:  fmt.Sprintf("ext-%02d", i),
				Rating:    i%5 + 1,
				Status:    reviewModel.StatusNew,
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			}).Error)
		}
	}

	t.Run("pages concatenate without gaps or duplicates", func(t *testing.T) {
		db := setupTestDB(t)
		repo := New(db)
		seedMany(t, db, 5)

		seen := make(map[string]bool)
		limit := 2
		for offset := 0; offset < 6; offset += limit {
			page, total, err := repo.List(ctx, "app-1", reviewModel.Filter{}, reviewModel.Page{Offset: offset, Limit: limit})
			require.NoError(t, err)
			assert.Equal(t, int64(5), total)
			for _, r := range page {
				assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
				seen[r.ID] = true
			}
		}
		assert.Len(t, seen, 5)
	})

	t.Run("newest first", func(t *testing.T) {
		db := setupTestDB(t)
		repo := New(db)
		seedMany(t, db, 3)

		page, _, err := repo.List(ctx, "app-1", reviewModel.Filter{}, reviewModel.Page{Offset: 0, Limit: 3})
		require.NoError(t, err)
		require.Len(t, page, 3)
		assert.Equal(t, "rev-02", page[0].ID)
		assert.Equal(t, "rev-00", page[2].ID)
	})

	t.Run("filters by status and rating", func(t *testing.T) {
		db := setupTestDB(t)
		repo := New(db)
		seedMany(t, db, 5)
		require.NoError(t, db.Model(&testReview{}).Where("id = ?", "rev-00").
			Update("status", reviewModel.StatusIgnored).Error)

		page, total, err := repo.List(ctx, "app-1",
			reviewModel.Filter{Status: reviewModel.StatusIgnored},
			reviewModel.Page{Offset: 0, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, page, 1)
		assert.Equal(t, "rev-00", page[0].ID)

		_, total, err = repo.List(ctx, "app-1",
			reviewModel.Filter{Rating: 3},
			reviewModel.Page{Offset: 0, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})
}

func TestRepository_ListByStatusAndMinRating(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := New(db)

	seedReview(t, db, "rev-1", "app-1", "ext-1", reviewModel.StatusNew, 5)
	seedReview(t, db, "rev-2", "app-1", "ext-2", reviewModel.StatusNew, 2)
	seedReview(t, db, "rev-3", "app-1", "ext-3", reviewModel.StatusPending, 5)

	reviews, err := repo.ListByStatusAndMinRating(ctx, "app-1", reviewModel.StatusNew, 4)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "rev-1", reviews[0].ID)
}

func TestRepository_RepliesFor(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := New(db)

	require.NoError(t, db.Create(&testReply{
		ID: "reply-1", AppID: "app-1", ReviewID: "ext-1",
		SuggestedText: "draft", CreatedAt: time.Now(),
	}).Error)

	replies, err := repo.RepliesFor(ctx, "app-1", []string{"ext-1", "ext-2"})
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, "ext-1", replies[0].ReviewID)

	replies, err = repo.RepliesFor(ctx, "app-1", nil)
	require.NoError(t, err)
	assert.Empty(t, replies)
}
