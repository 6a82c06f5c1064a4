package config

import "fmt"

// BillingConfig holds configuration for the inbound billing webhook.
type BillingConfig struct {
	// WebhookSecret is the shared HMAC secret used to verify inbound events.
	// May be empty outside production, in which case verification is skipped.
	WebhookSecret string
	// Environment is the deployment environment (development, staging, production).
	Environment string
}

// LoadBillingConfigFromEnv loads billing configuration from environment variables.
func LoadBillingConfigFromEnv() BillingConfig {
	return BillingConfig{
		WebhookSecret: GetEnv("BILLING_WEBHOOK_SECRET", ""),
		Environment:   GetEnv("APP_ENV", "development"),
	}
}

// IsProduction returns true when running in the production environment.
func (c BillingConfig) IsProduction() bool {
	return c.Environment == "production"
}

// Validate validates billing configuration.
func (c BillingConfig) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid APP_ENV: %s (must be: development, staging, production)", c.Environment)
	}
	if c.IsProduction() && c.WebhookSecret == "" {
		return fmt.Errorf("BILLING_WEBHOOK_SECRET is required in production")
	}
	return nil
}
