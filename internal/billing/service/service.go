// Package service provides business logic layer for billing module.
// Every event handler is an idempotent upsert keyed by a stable external id,
// so webhook redelivery is harmless.
package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/playreply/playreply/internal/billing/model"
	"github.com/playreply/playreply/internal/billing/repository"
	"github.com/playreply/playreply/internal/config"
	"github.com/playreply/playreply/internal/metrics"
)

// Service defines the interface for billing webhook processing.
type Service interface {
	// HandleWebhook verifies the signature and applies the event.
	HandleWebhook(ctx context.Context, rawBody []byte, signatureHeader string) error
}

type service struct {
	repo   repository.Repository
	cfg    config.BillingConfig
	logger *zap.SugaredLogger
}

// New creates a new billing service instance.
func New(repo repository.Repository, cfg config.BillingConfig, logger *zap.SugaredLogger) Service {
	return &service{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
	}
}

// HandleWebhook verifies the signature and applies the event. Signature
// verification is skipped only when no secret is configured outside
// production.
func (s *service) HandleWebhook(ctx context.Context, rawBody []byte, signatureHeader string) error {
	if err := s.checkSignature(rawBody, signatureHeader); err != nil {
		metrics.ObserveBillingEvent("unknown", "rejected")
		return err
	}

	var event model.WebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return model.ErrMalformedEvent
	}
	if event.EventID == "" || event.EventType == "" {
		return model.ErrMalformedEvent
	}

	if err := s.applyEvent(ctx, &event, rawBody); err != nil {
		metrics.ObserveBillingEvent(event.EventType, "error")
		return err
	}

	metrics.ObserveBillingEvent(event.EventType, "processed")
	return nil
}

func (s *service) checkSignature(rawBody []byte, signatureHeader string) error {
	if s.cfg.WebhookSecret == "" {
		if s.cfg.IsProduction() {
			return model.ErrInvalidSignature
		}
		s.logger.Warnw("billing webhook signature verification skipped: no secret configured")
		return nil
	}

	if signatureHeader == "" {
		return model.ErrMissingSignature
	}

	ts, h1, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return err
	}
	if !verifySignature(s.cfg.WebhookSecret, ts, rawBody, h1) {
		return model.ErrInvalidSignature
	}
	return nil
}

func (s *service) applyEvent(ctx context.Context, event *model.WebhookEvent, rawBody []byte) error {
	switch event.EventType {
	case model.EventSubscriptionCreated, model.EventSubscriptionActivated:
		org, err := s.repo.UpsertOrganization(ctx, &model.Organization{
			ID:                     uuid.NewString(),
			ExternalCustomerID:     event.Data.CustomerID,
			ExternalSubscriptionID: event.Data.SubscriptionID,
			Plan:                   event.Data.Plan,
			SubscriptionStatus:     model.SubStatusActive,
		})
		if err != nil {
			return err
		}
		return s.appendEvent(ctx, event, org.ID, rawBody)

	case model.EventSubscriptionUpdated:
		status := event.Data.Status
		if status == "" {
			status = model.SubStatusActive
		}
		if err := s.repo.UpdateBySubscription(ctx, event.Data.SubscriptionID, status, event.Data.Plan); err != nil {
			return err
		}
		return s.appendEvent(ctx, event, "", rawBody)

	case model.EventSubscriptionCanceled:
		if err := s.repo.UpdateBySubscription(ctx, event.Data.SubscriptionID, model.SubStatusCanceled, ""); err != nil {
			return err
		}
		return s.appendEvent(ctx, event, "", rawBody)

	case model.EventSubscriptionPastDue:
		if err := s.repo.UpdateBySubscription(ctx, event.Data.SubscriptionID, model.SubStatusPastDue, ""); err != nil {
			return err
		}
		return s.appendEvent(ctx, event, "", rawBody)

	case model.EventTransactionCompleted:
		org, err := s.repo.GetByCustomerID(ctx, event.Data.CustomerID)
		if err != nil {
			return err
		}
		return s.appendEvent(ctx, event, org.ID, rawBody)

	default:
		s.logger.Infow("ignoring unknown billing event type",
			"event_type", event.EventType, "event_id", event.EventID)
		return nil
	}
}

func (s *service) appendEvent(ctx context.Context, event *model.WebhookEvent, orgID string, rawBody []byte) error {
	inserted, err := s.repo.AppendEvent(ctx, &model.BillingEvent{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		EventID:        event.EventID,
		EventType:      event.EventType,
		Amount:         event.Data.Amount,
		Currency:       event.Data.Currency,
		Payload:        string(rawBody),
	})
	if err != nil {
		return err
	}
	if !inserted {
		s.logger.Infow("billing event redelivered, already recorded",
			"event_id", event.EventID, "event_type", event.EventType)
	}
	return nil
}
