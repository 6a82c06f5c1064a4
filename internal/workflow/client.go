// Package workflow provides the outbound client for the external workflow
// engine. Each method is a thin POST to a named webhook endpoint; the engine
// performs the actual store fetch, AI generation, and reply delivery, and
// writes its results to the database out of band.
package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/playreply/playreply/internal/config"
	"github.com/playreply/playreply/internal/metrics"
)

var (
	// ErrMissingField indicates a required request field is empty.
	ErrMissingField = errors.New("missing required field")
	// ErrTriggerFailed indicates the workflow engine returned a non-2xx
	// response or the request could not be delivered.
	ErrTriggerFailed = errors.New("workflow trigger failed")
)

// Trigger defines the operations dispatched to the workflow engine.
// Callers only learn transport success; the business result lands in the
// store asynchronously.
type Trigger interface {
	// FetchReviews triggers a review sync for an Android app.
	FetchReviews(ctx context.Context, appID, packageName string) error

	// FetchIOSReviews triggers a review sync for an iOS app.
	FetchIOSReviews(ctx context.Context, appID, bundleID string) error

	// GenerateReply triggers AI draft generation for a review.
	GenerateReply(ctx context.Context, reviewID string, forceRegenerate bool) error

	// SendReply triggers delivery of an approved reply to Google Play.
	SendReply(ctx context.Context, replyID string) error

	// SendIOSReply triggers delivery of an approved reply to the App Store.
	SendIOSReply(ctx context.Context, replyID string) error

	// ImportReviewsCSV triggers a CSV review import for an app.
	ImportReviewsCSV(ctx context.Context, appID, csvContent, platform string) error

	// FetchHistoricalReviews triggers a historical backfill from cloud storage.
	FetchHistoricalReviews(ctx context.Context, appID, bucketID, packageName string, year int) error
}

type client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

// NewClient creates a workflow engine client.
func NewClient(cfg config.WorkflowConfig, logger *zap.SugaredLogger) Trigger {
	return &client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// FetchReviews triggers a review sync for an Android app.
func (c *client) FetchReviews(ctx context.Context, appID, packageName string) error {
	if err := requireFields(map[string]string{
		"app_id":       appID,
		"package_name": packageName,
	}); err != nil {
		return err
	}

	return c.post(ctx, "fetch-reviews", map[string]interface{}{
		"app_id":       appID,
		"package_name": packageName,
	})
}

// FetchIOSReviews triggers a review sync for an iOS app.
func (c *client) FetchIOSReviews(ctx context.Context, appID, bundleID string) error {
	if err := requireFields(map[string]string{
		"app_id":    appID,
		"bundle_id": bundleID,
	}); err != nil {
		return err
	}

	return c.post(ctx, "fetch-ios-reviews", map[string]interface{}{
		"app_id":    appID,
		"bundle_id": bundleID,
	})
}

// GenerateReply triggers AI draft generation for a review.
func (c *client) GenerateReply(ctx context.Context, reviewID string, forceRegenerate bool) error {
	if err := requireFields(map[string]string{"review_id": reviewID}); err != nil {
		return err
	}

	body := map[string]interface{}{
		"review_id": reviewID,
	}
	if forceRegenerate {
		body["force_regenerate"] = true
	}

	return c.post(ctx, "generate-reply", body)
}

// SendReply triggers delivery of an approved reply to Google Play.
func (c *client) SendReply(ctx context.Context, replyID string) error {
	if err := requireFields(map[string]string{"reply_id": replyID}); err != nil {
		return err
	}

	return c.post(ctx, "send-reply", map[string]interface{}{
		"reply_id": replyID,
	})
}

// SendIOSReply triggers delivery of an approved reply to the App Store.
func (c *client) SendIOSReply(ctx context.Context, replyID string) error {
	if err := requireFields(map[string]string{"reply_id": replyID}); err != nil {
		return err
	}

	return c.post(ctx, "send-ios-reply", map[string]interface{}{
		"reply_id": replyID,
	})
}

// ImportReviewsCSV triggers a CSV review import for an app.
func (c *client) ImportReviewsCSV(ctx context.Context, appID, csvContent, platform string) error {
	if err := requireFields(map[string]string{
		"app_id":      appID,
		"csv_content": csvContent,
		"platform":    platform,
	}); err != nil {
		return err
	}

	return c.post(ctx, "import-reviews-csv", map[string]interface{}{
		"app_id":      appID,
		"csv_content": csvContent,
		"platform":    platform,
	})
}

// FetchHistoricalReviews triggers a historical backfill from cloud storage.
func (c *client) FetchHistoricalReviews(ctx context.Context, appID, bucketID, packageName string, year int) error {
	if err := requireFields(map[string]string{
		"app_id":       appID,
		"bucket_id":    bucketID,
		"package_name": packageName,
	}); err != nil {
		return err
	}
	if year <= 0 {
		return fmt.Errorf("%w: year", ErrMissingField)
	}

	return c.post(ctx, "fetch-historical-reviews", map[string]interface{}{
		"app_id":       appID,
		"bucket_id":    bucketID,
		"package_name": packageName,
		"year":         year,
	})
}

// post dispatches a JSON POST to a named webhook endpoint. The response body
// is drained but not interpreted; only the HTTP status matters here. Retry
// policy lives in the callers.
func (c *client) post(ctx context.Context, endpoint string, body map[string]interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTriggerFailed, endpoint, err)
	}

	url := c.baseURL + "/" + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTriggerFailed, endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveWorkflowTrigger(endpoint, "error")
		c.logger.Warnw("workflow trigger failed", "endpoint", endpoint, "error", err)
		return fmt.Errorf("%w: %s: %v", ErrTriggerFailed, endpoint, err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ObserveWorkflowTrigger(endpoint, "error")
		c.logger.Warnw("workflow trigger rejected",
			"endpoint", endpoint,
			"status", resp.StatusCode,
		)
		return fmt.Errorf("%w: %s: status %d", ErrTriggerFailed, endpoint, resp.StatusCode)
	}

	metrics.ObserveWorkflowTrigger(endpoint, "success")
	c.logger.Debugw("workflow trigger dispatched", "endpoint", endpoint)
	return nil
}

// requireFields validates that every named field has a value.
func requireFields(fields map[string]string) error {
	for name, value := range fields {
		if value == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}
	return nil
}
