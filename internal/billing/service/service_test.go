package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/playreply/playreply/internal/billing/model"
	"github.com/playreply/playreply/internal/config"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) UpsertOrganization(ctx context.Context, org *model.Organization) (*model.Organization, error) {
	args := m.Called(ctx, org)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Organization), args.Error(1)
}

func (m *mockRepository) UpdateBySubscription(ctx context.Context, subscriptionID, status, plan string) error {
	args := m.Called(ctx, subscriptionID, status, plan)
	return args.Error(0)
}

func (m *mockRepository) GetByCustomerID(ctx context.Context, customerID string) (*model.Organization, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Organization), args.Error(1)
}

func (m *mockRepository) AppendEvent(ctx context.Context, event *model.BillingEvent) (bool, error) {
	args := m.Called(ctx, event)
	return args.Bool(0), args.Error(1)
}

const testSecret = "whsec_test_secret"

// sign produces a valid "ts=...;h1=..." header for a body.
func sign(secret string, body []byte) string {
	ts := fmt.Sprintf("%d", time.Now().Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + ":"))
	mac.Write(body)
	return fmt.Sprintf("ts=%s;h1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func newTestService(repo *mockRepository, secret, environment string) Service {
	return New(repo, config.BillingConfig{
		WebhookSecret: secret,
		Environment:   environment,
	}, zap.NewNop().Sugar())
}

func TestService_HandleWebhook_Signature(t *testing.T) {
	ctx := context.Background()
	body := []byte(`{"event_id":"evt-1","event_type":"subscription.canceled","data":{"subscription_id":"sub-1"}}`)

	t.Run("valid signature is accepted", func(t *testing.T) {
		repo := new(mockRepository)
		svc := newTestService(repo, testSecret, "production")

		repo.On("UpdateBySubscription", ctx, "sub-1", model.SubStatusCanceled, "").Return(nil)
		repo.On("AppendEvent", ctx, mock.Anything).Return(true, nil)

		err := svc.HandleWebhook(ctx, body, sign(testSecret, body))
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("tampered body is rejected", func(t *testing.T) {
		repo := new(mockRepository)
		svc := newTestService(repo, testSecret, "production")

		header := sign(testSecret, body)
		tampered := []byte(`{"event_id":"evt-1","event_type":"subscription.canceled","data":{"subscription_id":"sub-EVIL"}}`)

		err := svc.HandleWebhook(ctx, tampered, header)
		assert.ErrorIs(t, err, model.ErrInvalidSignature)
		repo.AssertNotCalled(t, "UpdateBySubscription", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		svc := newTestService(new(mockRepository), testSecret, "production")

		err := svc.HandleWebhook(ctx, body, sign("whsec_other", body))
		assert.ErrorIs(t, err, model.ErrInvalidSignature)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		svc := newTestService(new(mockRepository), testSecret, "production")

		err := svc.HandleWebhook(ctx, body, "")
		assert.ErrorIs(t, err, model.ErrMissingSignature)
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		svc := newTestService(new(mockRepository), testSecret, "production")

		err := svc.HandleWebhook(ctx, body, "h1=deadbeef")
		assert.ErrorIs(t, err, model.ErrInvalidSignature)
	})

	t.Run("no secret outside production skips verification", func(t *testing.T) {
		repo := new(mockRepository)
		svc := newTestService(repo, "", "development")

		repo.On("UpdateBySubscription", ctx, "sub-1", model.SubStatusCanceled, "").Return(nil)
		repo.On("AppendEvent", ctx, mock.Anything).Return(true, nil)

		err := svc.HandleWebhook(ctx, body, "")
		require.NoError(t, err)
	})

	t.Run("no secret in production rejects everything", func(t *testing.T) {
		svc := newTestService(new(mockRepository), "", "production")

		err := svc.HandleWebhook(ctx, body, sign(testSecret, body))
		assert.ErrorIs(t, err, model.ErrInvalidSignature)
	})
}

func TestService_HandleWebhook_Events(t *testing.T) {
	ctx := context.Background()

	handle := func(svc Service, body string) error {
		return svc.HandleWebhook(ctx, []byte(body), sign(testSecret, []byte(body)))
	}

	t.Run("subscription created upserts organization", func(t *testing.T) {
		repo := new(mockRepository)
		svc := newTestService(repo, testSecret, "production")

		repo.On("UpsertOrganization", ctx, mock.MatchedBy(func(o *model.Organization) bool {
			return o.ExternalCustomerID == "cus-1" &&
				o.ExternalSubscriptionID == "sub-1" &&
				o.Plan == "pro" &&
				o.SubscriptionStatus == model.SubStatusActive
		})).Return(&model.Organization{ID: "org-1", ExternalCustomerID: "cus-1"}, nil)
		repo.On("AppendEvent", ctx, mock.MatchedBy(func(e *model.BillingEvent) bool {
			return e.EventID == "evt-1" && e.OrganizationID == "org-1"
		})).Return(true, nil)

		err := handle(svc, `{"event_id":"evt-1","event_type":"subscription.created","data":{"customer_id":"cus-1","subscription_id":"sub-1","plan":"pro"}}`)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("subscription updated patches by subscription id", func(t *testing.T) {
		repo := new(mockRepository)
		svc := newTestService(repo, testSecret, "production")

		repo.On("UpdateBySubscription", ctx, "sub-1", "active", "scale").Return(nil)
		repo.On("AppendEvent", ctx, mock.Anything).Return(true, nil)

		err := handle(svc, `{"event_id":"evt-2","event_type":"subscription.updated","data":{"subscription_id":"sub-1","status":"active","plan":"scale"}}`)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("past due patches status only", func(t *testing.T) {
		repo := new(mockRepository)
		svc := newTestService(repo, testSecret, "production")

		repo.On("UpdateBySubscription", ctx, "sub-1", model.SubStatusPastDue, "").Return(nil)
		repo.On("AppendEvent", ctx, mock.Anything).Return(true, nil)

		err := handle(svc, `{"event_id":"evt-3","event_type":"subscription.past_due","data":{"subscription_id":"sub-1"}}`)
		require.NoError(t, err)
	})

	t.Run("transaction completed appends event with amount", func(t *testing.T) {
		repo := new(mockRepository)
		svc := newTestService(repo, testSecret, "production")

		repo.On("GetByCustomerID", ctx, "cus-1").Return(&model.Organization{ID: "org-1"}, nil)
		repo.On("AppendEvent", ctx, mock.MatchedBy(func(e *model.BillingEvent) bool {
			return e.OrganizationID == "org-1" && e.Amount == 49.0 && e.Currency == "USD"
		})).Return(true, nil)

		err := handle(svc, `{"event_id":"evt-4","event_type":"transaction.completed","data":{"customer_id":"cus-1","amount":49.0,"currency":"USD"}}`)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("unknown event type is a no-op", func(t *testing.T) {
		repo := new(mockRepository)
		svc := newTestService(repo, testSecret, "production")

		err := handle(svc, `{"event_id":"evt-5","event_type":"price.created","data":{}}`)
		require.NoError(t, err)
		repo.AssertNotCalled(t, "AppendEvent", mock.Anything, mock.Anything)
	})

	t.Run("redelivered event succeeds without reprocessing errors", func(t *testing.T) {
		repo := new(mockRepository)
		svc := newTestService(repo, testSecret, "production")

		repo.On("UpdateBySubscription", ctx, "sub-1", model.SubStatusCanceled, "").Return(nil)
		repo.On("AppendEvent", ctx, mock.Anything).Return(false, nil)

		err := handle(svc, `{"event_id":"evt-6","event_type":"subscription.canceled","data":{"subscription_id":"sub-1"}}`)
		require.NoError(t, err)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		svc := newTestService(new(mockRepository), testSecret, "production")

		body := `not json`
		err := svc.HandleWebhook(ctx, []byte(body), sign(testSecret, []byte(body)))
		assert.ErrorIs(t, err, model.ErrMalformedEvent)
	})

	t.Run("missing event id is rejected", func(t *testing.T) {
		svc := newTestService(new(mockRepository), testSecret, "production")

		body := `{"event_type":"subscription.canceled","data":{}}`
		err := svc.HandleWebhook(ctx, []byte(body), sign(testSecret, []byte(body)))
		assert.ErrorIs(t, err, model.ErrMalformedEvent)
	})
}

func TestParseSignatureHeader(t *testing.T) {
	t.Run("parses ts and h1", func(t *testing.T) {
		ts, h1, err := parseSignatureHeader("ts=1700000000;h1=abcdef")
		require.NoError(t, err)
		assert.Equal(t, "1700000000", ts)
		assert.Equal(t, "abcdef", h1)
	})

	t.Run("tolerates whitespace and extra fields", func(t *testing.T) {
		ts, h1, err := parseSignatureHeader("ts=1; v=9; h1=ff")
		require.NoError(t, err)
		assert.Equal(t, "1", ts)
		assert.Equal(t, "ff", h1)
	})

	t.Run("rejects missing parts", func(t *testing.T) {
		_, _, err := parseSignatureHeader("ts=1700000000")
		assert.ErrorIs(t, err, model.ErrInvalidSignature)
	})
}
