package config

import (
	"fmt"
	"time"
)

// LifecycleConfig holds tuning for the review/reply lifecycle service.
// Reply generation is performed by the external workflow engine, which writes
// the draft to the store with no synchronous completion signal; the service
// polls the store for a bounded number of attempts before giving up.
type LifecycleConfig struct {
	// GeneratePollAttempts is the maximum number of store reads after a
	// generation trigger before reporting a timeout.
	GeneratePollAttempts int
	// GeneratePollInterval is the delay between store reads.
	GeneratePollInterval time.Duration
}

// LoadLifecycleConfigFromEnv loads lifecycle configuration from environment variables.
func LoadLifecycleConfigFromEnv() LifecycleConfig {
	return LifecycleConfig{
		GeneratePollAttempts: GetEnvInt("GENERATE_POLL_ATTEMPTS", 10),
		GeneratePollInterval: GetEnvDuration("GENERATE_POLL_INTERVAL", 2*time.Second),
	}
}

// Validate validates lifecycle configuration.
func (c LifecycleConfig) Validate() error {
	if c.GeneratePollAttempts <= 0 {
		return fmt.Errorf("GeneratePollAttempts must be greater than 0")
	}
	if c.GeneratePollInterval <= 0 {
		return fmt.Errorf("GeneratePollInterval must be greater than 0")
	}
	return nil
}
